package testcase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"

	"github.com/segaai/testcase-backend/internal/entity"
	"github.com/segaai/testcase-backend/internal/pkg/logger"
	"github.com/segaai/testcase-backend/internal/repository"
)

// TestCaseUsecase implements test case business logic: LLM-backed
// generation and update, step editing and plain CRUD.
type TestCaseUsecase struct {
	uow    repository.UnitOfWork
	llm    LLMConnector
	logger *zap.Logger
}

// NewUsecase creates a new test case use case
func NewUsecase(uow repository.UnitOfWork, llm LLMConnector, logger *zap.Logger) *TestCaseUsecase {
	return &TestCaseUsecase{
		uow:    uow,
		llm:    llm,
		logger: logger,
	}
}

func validateGenerationInput(inputData, llmModel string) error {
	if strings.TrimSpace(inputData) == "" {
		return entity.ErrEmptyInput
	}
	if strings.TrimSpace(llmModel) == "" {
		return entity.ErrEmptyModel
	}
	return nil
}

// Generate creates a new test case from input data with the given
// model, persists every attempt and returns the final candidate with
// the recommendation from its last validation.
func (uc *TestCaseUsecase) Generate(ctx context.Context, req *entity.GenerateTestCaseRequest) (*entity.TestCaseResponse, error) {
	if err := validateGenerationInput(req.InputData, req.LLMModel); err != nil {
		return nil, err
	}

	ctxzap.Info(ctx, "generating test case", zap.String("llm_model", req.LLMModel))

	testCase, recommendation, err := uc.generateWithRetry(ctx, req.InputData, req.LLMModel,
		func(ctx context.Context, input string) (*entity.TestCase, error) {
			candidate, err := uc.generateCandidate(ctx, input, req.LLMModel, nil)
			if err != nil {
				return nil, err
			}

			details := fmt.Sprintf("Test case and code generated using model %s", req.LLMModel)
			if err := uc.persistAttempt(ctx, candidate, false, entity.HistoryActionGenerated, details); err != nil {
				return nil, err
			}

			return candidate, nil
		})
	if err != nil {
		return nil, err
	}

	ctxzap.Info(ctx, "test case generated",
		zap.String("test_case_id", testCase.ID),
		zap.String("number", testCase.Number),
	)

	return &entity.TestCaseResponse{TestCase: testCase, Recommendation: recommendation}, nil
}

// UpdateWithChanges regenerates an existing test case from a change
// description. Identity, status, creation date and number survive the
// regeneration; steps and code are replaced by the new candidate.
func (uc *TestCaseUsecase) UpdateWithChanges(ctx context.Context, testCaseID string, req *entity.UpdateTestCaseRequest) (*entity.TestCaseResponse, error) {
	if err := validateGenerationInput(req.ChangesInput, req.LLMModel); err != nil {
		return nil, err
	}
	if strings.TrimSpace(testCaseID) == "" {
		return nil, entity.ErrEmptyID
	}

	ctx = logger.WithTestCase(ctx, testCaseID)
	ctxzap.Info(ctx, "updating test case with changes", zap.String("llm_model", req.LLMModel))

	testCase, recommendation, err := uc.generateWithRetry(ctx, req.ChangesInput, req.LLMModel,
		func(ctx context.Context, input string) (*entity.TestCase, error) {
			// Re-read on every attempt: the previous attempt already
			// persisted its candidate under the same ID.
			existing, err := uc.uow.TestCases().GetByID(ctx, testCaseID)
			if err != nil {
				return nil, err
			}

			candidate, err := uc.generateCandidate(ctx, input, req.LLMModel, existing)
			if err != nil {
				return nil, err
			}

			candidate.ID = existing.ID
			candidate.Status = existing.Status
			candidate.CreationDate = existing.CreationDate
			if strings.TrimSpace(candidate.Number) == "" {
				candidate.Number = existing.Number
			}

			details := fmt.Sprintf("Test case and code updated with changes: %s", input)
			if err := uc.persistAttempt(ctx, candidate, true, entity.HistoryActionUpdated, details); err != nil {
				return nil, err
			}

			return candidate, nil
		})
	if err != nil {
		return nil, err
	}

	ctxzap.Info(ctx, "test case updated")

	return &entity.TestCaseResponse{TestCase: testCase, Recommendation: recommendation}, nil
}

// UpdateSteps replaces the step list of a test case. Steps get fresh
// IDs and are renumbered 1..N in input order.
func (uc *TestCaseUsecase) UpdateSteps(ctx context.Context, testCaseID string, steps []entity.UpdateStepsRequest) (*entity.TestCase, error) {
	if strings.TrimSpace(testCaseID) == "" {
		return nil, entity.ErrEmptyID
	}
	if len(steps) == 0 {
		return nil, entity.ErrEmptySteps
	}

	ctx = logger.WithTestCase(ctx, testCaseID)

	testCase, err := uc.uow.TestCases().GetByID(ctx, testCaseID)
	if err != nil {
		return nil, err
	}

	newSteps := make([]entity.TestStep, 0, len(steps))
	for i, step := range steps {
		if strings.TrimSpace(step.Action) == "" || strings.TrimSpace(step.ExpectedResult) == "" {
			return nil, fmt.Errorf("шаг #%d содержит пустые поля Action или ExpectedResult: %w", i+1, entity.ErrMissingField)
		}
		newSteps = append(newSteps, entity.TestStep{
			ID:             uuid.NewString(),
			TestCaseID:     testCaseID,
			StepNumber:     i + 1,
			Action:         step.Action,
			ExpectedResult: step.ExpectedResult,
		})
	}
	testCase.Steps = newSteps

	err = uc.uow.WithinTx(ctx, func(repos repository.RepositorySet) error {
		if err := repos.TestCases().Update(ctx, testCase); err != nil {
			return err
		}

		return repos.HistoryEntries().Add(ctx, &entity.HistoryEntry{
			ID:         uuid.NewString(),
			TestCaseID: testCaseID,
			Timestamp:  time.Now().UTC(),
			Action:     entity.HistoryActionStepsUpdated,
			User:       entity.HistoryUserSystem,
			Details:    fmt.Sprintf("Обновлено %d шагов", len(newSteps)),
		})
	})
	if err != nil {
		return nil, err
	}

	ctxzap.Info(ctx, "test case steps updated", zap.Int("step_count", len(newSteps)))

	return testCase, nil
}

// Get returns a test case by ID with steps and history loaded
func (uc *TestCaseUsecase) Get(ctx context.Context, id string) (*entity.TestCase, error) {
	if strings.TrimSpace(id) == "" {
		return nil, entity.ErrEmptyID
	}

	return uc.uow.TestCases().GetByID(ctx, id)
}

// GetByNumber returns a test case by its human-readable number
func (uc *TestCaseUsecase) GetByNumber(ctx context.Context, number string) (*entity.TestCase, error) {
	if strings.TrimSpace(number) == "" {
		return nil, entity.ErrEmptyID
	}

	return uc.uow.TestCases().GetByNumber(ctx, number)
}

// List returns all test cases, optionally filtered by status
func (uc *TestCaseUsecase) List(ctx context.Context, status *entity.TestCaseStatus) ([]entity.TestCase, error) {
	if status != nil {
		if err := status.Validate(); err != nil {
			return nil, err
		}
	}

	listed, err := uc.uow.TestCases().List(ctx, status)
	if err != nil {
		return nil, err
	}

	testCases := make([]entity.TestCase, 0, len(listed))
	for _, tc := range listed {
		testCases = append(testCases, *tc)
	}

	ctxzap.Info(ctx, "test cases listed", zap.Int("count", len(testCases)))

	return testCases, nil
}

// Delete removes a test case together with its steps and history
func (uc *TestCaseUsecase) Delete(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return entity.ErrEmptyID
	}

	if err := uc.uow.TestCases().Delete(ctx, id); err != nil {
		return err
	}

	ctxzap.Info(ctx, "test case deleted", zap.String("test_case_id", id))

	return nil
}
