package testcase

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/segaai/testcase-backend/internal/entity"
	"github.com/segaai/testcase-backend/internal/repository"
)

// fakeStore is a shared in-memory backend for the fake repositories
type fakeStore struct {
	testCases map[string]*entity.TestCase
	history   []entity.HistoryEntry
}

func newFakeStore() *fakeStore {
	return &fakeStore{testCases: make(map[string]*entity.TestCase)}
}

type fakeUnitOfWork struct {
	store *fakeStore
}

func newFakeUnitOfWork() *fakeUnitOfWork {
	return &fakeUnitOfWork{store: newFakeStore()}
}

func (u *fakeUnitOfWork) TestCases() repository.TestCaseRepository {
	return &fakeTestCases{store: u.store}
}

func (u *fakeUnitOfWork) HistoryEntries() repository.HistoryEntryRepository {
	return &fakeHistory{store: u.store}
}

func (u *fakeUnitOfWork) InputData() repository.InputDataRepository { return nil }
func (u *fakeUnitOfWork) DataPools() repository.DataPoolRepository  { return nil }

func (u *fakeUnitOfWork) WithinTx(_ context.Context, fn func(repos repository.RepositorySet) error) error {
	return fn(u)
}

type fakeTestCases struct {
	store *fakeStore
}

func (r *fakeTestCases) Create(_ context.Context, tc *entity.TestCase) error {
	for i := range tc.Steps {
		if tc.Steps[i].ID == "" {
			tc.Steps[i].ID = uuid.NewString()
		}
		tc.Steps[i].TestCaseID = tc.ID
	}
	clone := *tc
	r.store.testCases[tc.ID] = &clone
	return nil
}

func (r *fakeTestCases) GetByID(_ context.Context, id string) (*entity.TestCase, error) {
	tc, ok := r.store.testCases[id]
	if !ok {
		return nil, entity.ErrTestCaseNotFound
	}
	clone := *tc
	return &clone, nil
}

func (r *fakeTestCases) GetByNumber(_ context.Context, number string) (*entity.TestCase, error) {
	for _, tc := range r.store.testCases {
		if tc.Number == number {
			clone := *tc
			return &clone, nil
		}
	}
	return nil, entity.ErrTestCaseNotFound
}

func (r *fakeTestCases) List(_ context.Context, status *entity.TestCaseStatus) ([]*entity.TestCase, error) {
	out := make([]*entity.TestCase, 0)
	for _, tc := range r.store.testCases {
		if status == nil || tc.Status == *status {
			clone := *tc
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (r *fakeTestCases) Update(_ context.Context, tc *entity.TestCase) error {
	if _, ok := r.store.testCases[tc.ID]; !ok {
		return entity.ErrTestCaseNotFound
	}
	for i := range tc.Steps {
		if tc.Steps[i].ID == "" {
			tc.Steps[i].ID = uuid.NewString()
		}
		tc.Steps[i].TestCaseID = tc.ID
	}
	clone := *tc
	r.store.testCases[tc.ID] = &clone
	return nil
}

func (r *fakeTestCases) Delete(_ context.Context, id string) error {
	if _, ok := r.store.testCases[id]; !ok {
		return entity.ErrTestCaseNotFound
	}
	delete(r.store.testCases, id)
	return nil
}

type fakeHistory struct {
	store *fakeStore
}

func (r *fakeHistory) Add(_ context.Context, entry *entity.HistoryEntry) error {
	r.store.history = append(r.store.history, *entry)
	return nil
}

func (r *fakeHistory) ListByTestCaseID(_ context.Context, testCaseID string) ([]entity.HistoryEntry, error) {
	out := make([]entity.HistoryEntry, 0)
	for _, e := range r.store.history {
		if e.TestCaseID == testCaseID {
			out = append(out, e)
		}
	}
	return out, nil
}

// scriptedLLM answers generation prompts from one queue and validation
// prompts from another. The last element of a queue is sticky.
type scriptedLLM struct {
	generations []string
	verdicts    []string

	generationPrompts []string
	validationPrompts []string
}

func (l *scriptedLLM) Call(_ context.Context, prompt, _ string) (string, error) {
	if strings.HasPrefix(prompt, "Проверьте тест-кейс") {
		l.validationPrompts = append(l.validationPrompts, prompt)
		return pop(&l.verdicts), nil
	}
	l.generationPrompts = append(l.generationPrompts, prompt)
	return pop(&l.generations), nil
}

func pop(queue *[]string) string {
	head := (*queue)[0]
	if len(*queue) > 1 {
		*queue = (*queue)[1:]
	}
	return head
}

func envelope(name string, withSteps bool) string {
	steps := "[]"
	if withSteps {
		steps = `[{"stepNumber": 1, "action": "Открыть страницу логина", "expectedResult": "Страница отображается"},
			{"stepNumber": 2, "action": "Ввести корректные данные", "expectedResult": "Пользователь авторизован"}]`
	}
	return fmt.Sprintf(`{
		"testCase": {
			"number": "TC-100",
			"creationDate": "2025-10-06",
			"name": "%s",
			"author": "AI Generated",
			"precondition": "Пользователь зарегистрирован",
			"steps": %s,
			"postcondition": "Сессия закрыта",
			"status": "Development"
		},
		"testCode": "@Test public void testLogin() {}"
	}`, name, steps)
}

const (
	verdictValid   = `{"isValid": true, "recommendation": null}`
	verdictInvalid = `{"isValid": false, "recommendation": "Добавьте негативные сценарии"}`
)

func newTestUsecase(llm LLMConnector) (*TestCaseUsecase, *fakeUnitOfWork) {
	uow := newFakeUnitOfWork()
	return NewUsecase(uow, llm, zap.NewNop()), uow
}

func TestGenerate_ValidFirstAttempt(t *testing.T) {
	llm := &scriptedLLM{
		generations: []string{envelope("Авторизация пользователя", true)},
		verdicts:    []string{verdictValid},
	}
	uc, uow := newTestUsecase(llm)

	resp, err := uc.Generate(context.Background(), &entity.GenerateTestCaseRequest{
		InputData: "Проверка авторизации",
		LLMModel:  entity.ModelQwen32B,
	})
	require.NoError(t, err)
	require.NotNil(t, resp.TestCase)

	assert.Nil(t, resp.Recommendation)
	assert.Equal(t, "Авторизация пользователя", resp.TestCase.Name)
	assert.Equal(t, entity.StatusDevelopment, resp.TestCase.Status)
	assert.Equal(t, "@Test public void testLogin() {}", resp.TestCase.TestCode)
	assert.Len(t, resp.TestCase.Steps, 2)

	assert.Len(t, uow.store.testCases, 1)
	require.Len(t, uow.store.history, 1)
	assert.Equal(t, entity.HistoryActionGenerated, uow.store.history[0].Action)
	assert.Equal(t, entity.HistoryUserSystem, uow.store.history[0].User)
	assert.Equal(t, "Test case and code generated using model "+entity.ModelQwen32B, uow.store.history[0].Details)

	assert.Len(t, llm.generationPrompts, 1)
	assert.Len(t, llm.validationPrompts, 1)
	assert.Contains(t, llm.generationPrompts[0], "На основе входных данных: Проверка авторизации")
}

func TestGenerate_RetriesWithAugmentedInput(t *testing.T) {
	llm := &scriptedLLM{
		generations: []string{envelope("Первая попытка", true), envelope("Вторая попытка", true)},
		verdicts:    []string{verdictInvalid, verdictValid},
	}
	uc, uow := newTestUsecase(llm)

	resp, err := uc.Generate(context.Background(), &entity.GenerateTestCaseRequest{
		InputData: "Проверка корзины",
		LLMModel:  entity.ModelQwen32B,
	})
	require.NoError(t, err)

	assert.Equal(t, "Вторая попытка", resp.TestCase.Name)
	assert.Nil(t, resp.Recommendation)

	// Every attempt persists its candidate with its own history row.
	assert.Len(t, uow.store.testCases, 2)
	assert.Len(t, uow.store.history, 2)

	require.Len(t, llm.generationPrompts, 2)
	assert.Contains(t, llm.generationPrompts[1], "(улучшите детализацию, учтите: Добавьте негативные сценарии)")
}

func TestGenerate_StructuralFailureSkipsSemanticCheck(t *testing.T) {
	llm := &scriptedLLM{
		generations: []string{envelope("Без шагов", false), envelope("Со шагами", true)},
		verdicts:    []string{verdictValid},
	}
	uc, _ := newTestUsecase(llm)

	resp, err := uc.Generate(context.Background(), &entity.GenerateTestCaseRequest{
		InputData: "Проверка профиля",
		LLMModel:  entity.ModelGemma27B,
	})
	require.NoError(t, err)

	assert.Equal(t, "Со шагами", resp.TestCase.Name)
	// The first attempt fails the structural check, so the model is
	// only asked for a verdict once.
	assert.Len(t, llm.validationPrompts, 1)
	require.Len(t, llm.generationPrompts, 2)
	assert.Contains(t, llm.generationPrompts[1], recommendNoSteps)
}

func TestGenerate_GivesUpAfterThreeAttempts(t *testing.T) {
	llm := &scriptedLLM{
		generations: []string{envelope("Кандидат", true)},
		verdicts:    []string{verdictInvalid},
	}
	uc, uow := newTestUsecase(llm)

	resp, err := uc.Generate(context.Background(), &entity.GenerateTestCaseRequest{
		InputData: "Проверка поиска",
		LLMModel:  entity.ModelQwen30B,
	})
	require.NoError(t, err)

	// The last candidate is returned with the recommendation attached.
	require.NotNil(t, resp.Recommendation)
	assert.Equal(t, "Добавьте негативные сценарии", *resp.Recommendation)
	assert.Len(t, llm.generationPrompts, maxGenerationAttempts)
	assert.Len(t, uow.store.testCases, maxGenerationAttempts)
	assert.Len(t, uow.store.history, maxGenerationAttempts)
}

func TestGenerate_InputValidation(t *testing.T) {
	uc, _ := newTestUsecase(&scriptedLLM{})

	_, err := uc.Generate(context.Background(), &entity.GenerateTestCaseRequest{
		InputData: "   ",
		LLMModel:  entity.ModelQwen32B,
	})
	assert.ErrorIs(t, err, entity.ErrEmptyInput)

	_, err = uc.Generate(context.Background(), &entity.GenerateTestCaseRequest{
		InputData: "Проверка авторизации",
		LLMModel:  "",
	})
	assert.ErrorIs(t, err, entity.ErrEmptyModel)
}

func TestGenerate_ContractViolation(t *testing.T) {
	llm := &scriptedLLM{generations: []string{"это не JSON"}}
	uc, _ := newTestUsecase(llm)

	_, err := uc.Generate(context.Background(), &entity.GenerateTestCaseRequest{
		InputData: "Проверка авторизации",
		LLMModel:  entity.ModelQwen32B,
	})
	assert.ErrorIs(t, err, entity.ErrLLMContract)
}

func TestGenerate_MissingTestCodeKeyFailsFast(t *testing.T) {
	// An absent testCode key breaks the answer contract outright; it
	// must not fall through to the structural retry loop as an empty
	// code string would.
	llm := &scriptedLLM{generations: []string{`{
		"testCase": {
			"number": "TC-100",
			"name": "Без кода",
			"precondition": "Пользователь зарегистрирован",
			"steps": [{"stepNumber": 1, "action": "Открыть страницу", "expectedResult": "Страница отображается"}],
			"status": "Development"
		}
	}`}}
	uc, uow := newTestUsecase(llm)

	_, err := uc.Generate(context.Background(), &entity.GenerateTestCaseRequest{
		InputData: "Проверка авторизации",
		LLMModel:  entity.ModelQwen32B,
	})
	require.ErrorIs(t, err, entity.ErrLLMContract)
	assert.Contains(t, err.Error(), "testCode")

	assert.Len(t, llm.generationPrompts, 1)
	assert.Empty(t, llm.validationPrompts)
	assert.Empty(t, uow.store.testCases)
	assert.Empty(t, uow.store.history)
}

func TestUpdateWithChanges_PreservesIdentity(t *testing.T) {
	llm := &scriptedLLM{
		generations: []string{envelope("Обновленный кейс", true)},
		verdicts:    []string{verdictValid},
	}
	uc, uow := newTestUsecase(llm)

	created := entity.NewDate(time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC))
	existing := &entity.TestCase{
		ID:           uuid.NewString(),
		Number:       "TC-42",
		CreationDate: created,
		Name:         "Старый кейс",
		Author:       "qa-team",
		Precondition: "Есть аккаунт",
		Status:       entity.StatusActive,
		TestCode:     "@Test public void old() {}",
		Steps:        []entity.TestStep{{StepNumber: 1, Action: "a", ExpectedResult: "b"}},
	}
	require.NoError(t, uow.TestCases().Create(context.Background(), existing))

	resp, err := uc.UpdateWithChanges(context.Background(), existing.ID, &entity.UpdateTestCaseRequest{
		ChangesInput: "Добавить проверку капчи",
		LLMModel:     entity.ModelQwen32B,
	})
	require.NoError(t, err)

	assert.Equal(t, existing.ID, resp.TestCase.ID)
	assert.Equal(t, entity.StatusActive, resp.TestCase.Status)
	assert.Equal(t, created.Format("2006-01-02"), resp.TestCase.CreationDate.Format("2006-01-02"))
	assert.Equal(t, "Обновленный кейс", resp.TestCase.Name)

	require.Len(t, uow.store.history, 1)
	assert.Equal(t, entity.HistoryActionUpdated, uow.store.history[0].Action)
	assert.Contains(t, uow.store.history[0].Details, "Добавить проверку капчи")

	require.Len(t, llm.generationPrompts, 1)
	assert.Contains(t, llm.generationPrompts[0], "На основе существующего тест-кейса")
}

func TestUpdateWithChanges_NotFound(t *testing.T) {
	uc, _ := newTestUsecase(&scriptedLLM{
		generations: []string{envelope("x", true)},
		verdicts:    []string{verdictValid},
	})

	_, err := uc.UpdateWithChanges(context.Background(), uuid.NewString(), &entity.UpdateTestCaseRequest{
		ChangesInput: "изменения",
		LLMModel:     entity.ModelQwen32B,
	})
	assert.ErrorIs(t, err, entity.ErrTestCaseNotFound)
}

func TestUpdateSteps_RenumbersAndRecordsHistory(t *testing.T) {
	uc, uow := newTestUsecase(&scriptedLLM{})

	existing := &entity.TestCase{
		ID:     uuid.NewString(),
		Number: "TC-7",
		Name:   "Кейс",
		Status: entity.StatusDevelopment,
		Steps: []entity.TestStep{
			{ID: uuid.NewString(), StepNumber: 1, Action: "старое", ExpectedResult: "старое"},
		},
	}
	require.NoError(t, uow.TestCases().Create(context.Background(), existing))

	updated, err := uc.UpdateSteps(context.Background(), existing.ID, []entity.UpdateStepsRequest{
		{Action: "Открыть форму", ExpectedResult: "Форма открыта"},
		{Action: "Отправить форму", ExpectedResult: "Данные сохранены"},
	})
	require.NoError(t, err)

	require.Len(t, updated.Steps, 2)
	assert.Equal(t, 1, updated.Steps[0].StepNumber)
	assert.Equal(t, 2, updated.Steps[1].StepNumber)
	assert.NotEmpty(t, updated.Steps[0].ID)
	assert.NotEqual(t, existing.Steps[0].ID, updated.Steps[0].ID)
	assert.Equal(t, existing.ID, updated.Steps[0].TestCaseID)

	require.Len(t, uow.store.history, 1)
	assert.Equal(t, entity.HistoryActionStepsUpdated, uow.store.history[0].Action)
	assert.Equal(t, "Обновлено 2 шагов", uow.store.history[0].Details)
}

func TestUpdateSteps_Validation(t *testing.T) {
	uc, uow := newTestUsecase(&scriptedLLM{})

	_, err := uc.UpdateSteps(context.Background(), "", []entity.UpdateStepsRequest{{Action: "a", ExpectedResult: "b"}})
	assert.ErrorIs(t, err, entity.ErrEmptyID)

	existing := &entity.TestCase{ID: uuid.NewString(), Number: "TC-8", Status: entity.StatusDevelopment}
	require.NoError(t, uow.TestCases().Create(context.Background(), existing))

	_, err = uc.UpdateSteps(context.Background(), existing.ID, nil)
	assert.ErrorIs(t, err, entity.ErrEmptySteps)

	_, err = uc.UpdateSteps(context.Background(), existing.ID, []entity.UpdateStepsRequest{
		{Action: "только действие", ExpectedResult: "  "},
	})
	assert.ErrorIs(t, err, entity.ErrMissingField)
}

func TestListAndDelete(t *testing.T) {
	uc, uow := newTestUsecase(&scriptedLLM{})
	ctx := context.Background()

	active := &entity.TestCase{ID: uuid.NewString(), Number: "TC-1", Status: entity.StatusActive}
	dev := &entity.TestCase{ID: uuid.NewString(), Number: "TC-2", Status: entity.StatusDevelopment}
	require.NoError(t, uow.TestCases().Create(ctx, active))
	require.NoError(t, uow.TestCases().Create(ctx, dev))

	all, err := uc.List(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	status := entity.StatusActive
	filtered, err := uc.List(ctx, &status)
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, "TC-1", filtered[0].Number)

	bad := entity.TestCaseStatus("Unknown")
	_, err = uc.List(ctx, &bad)
	assert.ErrorIs(t, err, entity.ErrInvalidStatus)

	require.NoError(t, uc.Delete(ctx, active.ID))
	assert.ErrorIs(t, uc.Delete(ctx, active.ID), entity.ErrTestCaseNotFound)
}
