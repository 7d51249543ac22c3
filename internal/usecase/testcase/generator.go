package testcase

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"

	"github.com/segaai/testcase-backend/internal/entity"
	"github.com/segaai/testcase-backend/internal/repository"
)

// maxGenerationAttempts bounds the generate-validate-retry loop. The
// last candidate is returned together with its recommendation even if
// it never passed validation.
const maxGenerationAttempts = 3

// Structural validation recommendations, checked in this order before
// the model is asked for a semantic verdict.
const (
	recommendNoSteps        = "Тест-кейс не содержит шагов. Добавьте как минимум один шаг с действием и ожидаемым результатом."
	recommendNoPrecondition = "Отсутствует предусловие. Укажите предусловие для тест-кейса."
	recommendBlankSteps     = "Один или несколько шагов содержат пустые поля Action или ExpectedResult. Убедитесь, что все шаги заполнены корректно."
	recommendNoTestCode     = "Код тест-кейса отсутствует. Убедитесь, что LLM генерирует валидный JUnit-код."
)

// generateCandidate asks the model for one test case candidate and
// normalizes it: fresh ID, Development status and number/author
// defaults when the model left them blank.
func (uc *TestCaseUsecase) generateCandidate(ctx context.Context, inputData, llmModel string, existing *entity.TestCase) (*entity.TestCase, error) {
	prompt, err := BuildGenerationPrompt(inputData, existing)
	if err != nil {
		return nil, err
	}

	answer, err := uc.llm.Call(ctx, prompt, llmModel)
	if err != nil {
		return nil, fmt.Errorf("call LLM: %w", err)
	}

	var envelope entity.GenerationEnvelope
	if err := json.Unmarshal([]byte(answer), &envelope); err != nil {
		return nil, fmt.Errorf("%w: %v", entity.ErrLLMContract, err)
	}
	if len(envelope.TestCase) == 0 {
		return nil, fmt.Errorf("%w: отсутствует поле testCase", entity.ErrLLMContract)
	}
	if envelope.TestCode == nil {
		return nil, fmt.Errorf("%w: отсутствует поле testCode", entity.ErrLLMContract)
	}

	var testCase entity.TestCase
	if err := json.Unmarshal(envelope.TestCase, &testCase); err != nil {
		return nil, fmt.Errorf("%w: %v", entity.ErrLLMContract, err)
	}

	testCase.ID = uuid.NewString()
	testCase.Status = entity.StatusDevelopment
	testCase.TestCode = *envelope.TestCode
	if testCase.CreationDate.IsZero() {
		testCase.CreationDate = entity.NewDate(time.Now())
	}
	if strings.TrimSpace(testCase.Number) == "" {
		testCase.Number = NewNumber()
	}
	if strings.TrimSpace(testCase.Author) == "" {
		testCase.Author = defaultAuthor
	}

	return &testCase, nil
}

// persistAttempt stores one generation attempt: the candidate itself
// plus its history row, in a single transaction.
func (uc *TestCaseUsecase) persistAttempt(ctx context.Context, testCase *entity.TestCase, isUpdate bool, action, details string) error {
	return uc.uow.WithinTx(ctx, func(repos repository.RepositorySet) error {
		var err error
		if isUpdate {
			err = repos.TestCases().Update(ctx, testCase)
		} else {
			err = repos.TestCases().Create(ctx, testCase)
		}
		if err != nil {
			return err
		}

		return repos.HistoryEntries().Add(ctx, &entity.HistoryEntry{
			ID:         uuid.NewString(),
			TestCaseID: testCase.ID,
			Timestamp:  time.Now().UTC(),
			Action:     action,
			User:       entity.HistoryUserSystem,
			Details:    details,
		})
	})
}

// validateCandidate runs the structural checks and, when they pass,
// asks the model for a semantic verdict. The model's verdict
// supersedes; its recommendation falls back to the structural one
// when omitted.
func (uc *TestCaseUsecase) validateCandidate(ctx context.Context, testCase *entity.TestCase, inputData, llmModel string) (bool, *string, error) {
	isValid := true
	var recommendation *string

	switch {
	case len(testCase.Steps) == 0:
		isValid, recommendation = false, ptr(recommendNoSteps)
	case strings.TrimSpace(testCase.Precondition) == "":
		isValid, recommendation = false, ptr(recommendNoPrecondition)
	case hasBlankStep(testCase.Steps):
		isValid, recommendation = false, ptr(recommendBlankSteps)
	case strings.TrimSpace(testCase.TestCode) == "":
		isValid, recommendation = false, ptr(recommendNoTestCode)
	}

	if isValid {
		prompt, err := BuildValidationPrompt(testCase, inputData)
		if err != nil {
			return false, nil, err
		}

		answer, err := uc.llm.Call(ctx, prompt, llmModel)
		if err != nil {
			return false, nil, fmt.Errorf("call LLM: %w", err)
		}

		var verdict entity.ValidationVerdict
		if err := json.Unmarshal([]byte(answer), &verdict); err != nil {
			return false, nil, fmt.Errorf("%w: %v", entity.ErrLLMContract, err)
		}

		isValid = verdict.IsValid
		if verdict.Recommendation != nil {
			recommendation = verdict.Recommendation
		}
	}

	ctxzap.Info(ctx, "test case validated",
		zap.String("test_case_id", testCase.ID),
		zap.Bool("is_valid", isValid),
		zap.Stringp("recommendation", recommendation),
	)

	return isValid, recommendation, nil
}

// generateWithRetry drives the bounded generate-validate loop. Each
// attempt persists its candidate; on an invalid verdict the input is
// augmented with the recommendation and the loop continues.
func (uc *TestCaseUsecase) generateWithRetry(
	ctx context.Context,
	inputData, llmModel string,
	attempt func(ctx context.Context, input string) (*entity.TestCase, error),
) (*entity.TestCase, *string, error) {
	input := inputData

	var (
		testCase       *entity.TestCase
		recommendation *string
	)

	for i := 1; i <= maxGenerationAttempts; i++ {
		var err error
		testCase, err = attempt(ctx, input)
		if err != nil {
			return nil, nil, err
		}

		var isValid bool
		isValid, recommendation, err = uc.validateCandidate(ctx, testCase, input, llmModel)
		if err != nil {
			return nil, nil, err
		}
		if isValid {
			return testCase, recommendation, nil
		}

		if i < maxGenerationAttempts {
			rec := ""
			if recommendation != nil {
				rec = *recommendation
			}
			input = fmt.Sprintf("%s (улучшите детализацию, учтите: %s)", input, rec)
			ctxzap.Warn(ctx, "test case invalid, retrying generation",
				zap.String("test_case_id", testCase.ID),
				zap.Int("attempt", i),
			)
		}
	}

	ctxzap.Warn(ctx, "test case still invalid after all attempts",
		zap.String("test_case_id", testCase.ID),
		zap.Int("attempts", maxGenerationAttempts),
	)

	return testCase, recommendation, nil
}

func hasBlankStep(steps []entity.TestStep) bool {
	for _, step := range steps {
		if strings.TrimSpace(step.Action) == "" || strings.TrimSpace(step.ExpectedResult) == "" {
			return true
		}
	}
	return false
}

func ptr(s string) *string {
	return &s
}
