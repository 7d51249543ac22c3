package export

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/segaai/testcase-backend/internal/entity"
	"github.com/segaai/testcase-backend/internal/repository"
)

type fakeStore struct {
	testCases map[string]*entity.TestCase
	pools     map[string]*entity.DataPool
	history   []entity.HistoryEntry
}

type fakeUnitOfWork struct {
	store *fakeStore
}

func newFakeUnitOfWork() *fakeUnitOfWork {
	return &fakeUnitOfWork{store: &fakeStore{
		testCases: make(map[string]*entity.TestCase),
		pools:     make(map[string]*entity.DataPool),
	}}
}

func (u *fakeUnitOfWork) TestCases() repository.TestCaseRepository {
	return &fakeTestCases{store: u.store}
}

func (u *fakeUnitOfWork) HistoryEntries() repository.HistoryEntryRepository {
	return &fakeHistory{store: u.store}
}

func (u *fakeUnitOfWork) InputData() repository.InputDataRepository { return nil }

func (u *fakeUnitOfWork) DataPools() repository.DataPoolRepository {
	return &fakeDataPools{store: u.store}
}

func (u *fakeUnitOfWork) WithinTx(_ context.Context, fn func(repos repository.RepositorySet) error) error {
	return fn(u)
}

type fakeTestCases struct{ store *fakeStore }

func (r *fakeTestCases) Create(_ context.Context, tc *entity.TestCase) error {
	r.store.testCases[tc.ID] = tc
	return nil
}

func (r *fakeTestCases) GetByID(_ context.Context, id string) (*entity.TestCase, error) {
	tc, ok := r.store.testCases[id]
	if !ok {
		return nil, entity.ErrTestCaseNotFound
	}
	return tc, nil
}

func (r *fakeTestCases) GetByNumber(_ context.Context, _ string) (*entity.TestCase, error) {
	return nil, entity.ErrTestCaseNotFound
}

func (r *fakeTestCases) List(_ context.Context, _ *entity.TestCaseStatus) ([]*entity.TestCase, error) {
	return nil, nil
}

func (r *fakeTestCases) Update(_ context.Context, _ *entity.TestCase) error { return nil }
func (r *fakeTestCases) Delete(_ context.Context, _ string) error           { return nil }

type fakeHistory struct{ store *fakeStore }

func (r *fakeHistory) Add(_ context.Context, entry *entity.HistoryEntry) error {
	r.store.history = append(r.store.history, *entry)
	return nil
}

func (r *fakeHistory) ListByTestCaseID(_ context.Context, _ string) ([]entity.HistoryEntry, error) {
	return nil, nil
}

type fakeDataPools struct{ store *fakeStore }

func (r *fakeDataPools) Create(_ context.Context, pool *entity.DataPool) error {
	r.store.pools[pool.ID] = pool
	return nil
}

func (r *fakeDataPools) GetByID(_ context.Context, id string) (*entity.DataPool, error) {
	pool, ok := r.store.pools[id]
	if !ok {
		return nil, entity.ErrDataPoolNotFound
	}
	return pool, nil
}

func (r *fakeDataPools) ListByTestCaseID(_ context.Context, _ string) ([]entity.DataPool, error) {
	return nil, nil
}

func (r *fakeDataPools) Delete(_ context.Context, _ string) error { return nil }

type fakeZephyr struct {
	pushed []*entity.TestCase
	err    error
}

func (z *fakeZephyr) PushTestCase(_ context.Context, testCase *entity.TestCase) error {
	if z.err != nil {
		return z.err
	}
	z.pushed = append(z.pushed, testCase)
	return nil
}

func seedTestCase(uow *fakeUnitOfWork, testCode string) *entity.TestCase {
	tc := &entity.TestCase{
		ID:       "tc-1",
		Number:   "TC-42",
		Name:     "Авторизация",
		Status:   entity.StatusActive,
		TestCode: testCode,
		Steps: []entity.TestStep{
			{StepNumber: 1, Action: "Открыть страницу", ExpectedResult: "Страница открыта"},
		},
	}
	uow.store.testCases[tc.ID] = tc
	return tc
}

func TestTestCode(t *testing.T) {
	uow := newFakeUnitOfWork()
	uc := NewUsecase(uow, &fakeZephyr{}, zap.NewNop())
	ctx := context.Background()

	seedTestCase(uow, "@Test public void testLogin() {}")

	code, err := uc.TestCode(ctx, "tc-1")
	require.NoError(t, err)
	assert.Equal(t, "@Test public void testLogin() {}", string(code))

	_, err = uc.TestCode(ctx, "missing")
	assert.ErrorIs(t, err, entity.ErrTestCaseNotFound)

	uow.store.testCases["tc-1"].TestCode = "  "
	_, err = uc.TestCode(ctx, "tc-1")
	assert.ErrorIs(t, err, entity.ErrEmptyTestCode)
}

func TestToZephyr_RecordsHistory(t *testing.T) {
	uow := newFakeUnitOfWork()
	zephyr := &fakeZephyr{}
	uc := NewUsecase(uow, zephyr, zap.NewNop())

	tc := seedTestCase(uow, "code")

	require.NoError(t, uc.ToZephyr(context.Background(), tc.ID))

	require.Len(t, zephyr.pushed, 1)
	assert.Equal(t, tc.ID, zephyr.pushed[0].ID)

	require.Len(t, uow.store.history, 1)
	assert.Equal(t, entity.HistoryActionExported, uow.store.history[0].Action)
	assert.Equal(t, "Exported to Zephyr Scale", uow.store.history[0].Details)
}

func TestToZephyr_PushFailureSkipsHistory(t *testing.T) {
	uow := newFakeUnitOfWork()
	uc := NewUsecase(uow, &fakeZephyr{err: errors.New("503")}, zap.NewNop())

	seedTestCase(uow, "code")

	err := uc.ToZephyr(context.Background(), "tc-1")
	require.Error(t, err)
	assert.Empty(t, uow.store.history)
}

func TestToCSV_NotFound(t *testing.T) {
	uc := NewUsecase(newFakeUnitOfWork(), &fakeZephyr{}, zap.NewNop())

	_, err := uc.ToCSV(context.Background(), "missing")
	assert.ErrorIs(t, err, entity.ErrDataPoolNotFound)
}

func TestToCSV(t *testing.T) {
	uow := newFakeUnitOfWork()
	uc := NewUsecase(uow, &fakeZephyr{}, zap.NewNop())

	uow.store.pools["pool-1"] = &entity.DataPool{
		ID: "pool-1",
		Items: []entity.DataPoolItem{
			{Data: `{"login": "user1", "ok": true}`},
		},
	}

	out, err := uc.ToCSV(context.Background(), "pool-1")
	require.NoError(t, err)
	assert.Equal(t, "login,ok\nuser1,true\n", string(out))
}
