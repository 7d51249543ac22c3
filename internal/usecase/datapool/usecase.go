package datapool

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"

	"github.com/segaai/testcase-backend/internal/entity"
	"github.com/segaai/testcase-backend/internal/repository"
	"github.com/segaai/testcase-backend/internal/usecase/testcase"
)

const generationPromptTemplate = `На основе тест-кейса: %s сгенерируйте тестовые данные (datapool) в формате JSON-массива объектов.
Каждый объект — один набор параметров для одного прогона тест-кейса, например: [{"email": "test@example.com", "password": "Pass1234"}].
Убедитесь, что:
- Ответ содержит ТОЛЬКО валидный JSON-массив, без Markdown-форматирования, тегов <think> или другого текста.
- Массив содержит как минимум один объект.
- Наборы покрывают как позитивные, так и негативные сценарии.`

// DataPoolUsecase manages parameter sets for test case runs: LLM
// generation from a test case and user uploads.
type DataPoolUsecase struct {
	uow    repository.UnitOfWork
	llm    testcase.LLMConnector
	logger *zap.Logger
}

// NewUsecase creates a new data pool use case
func NewUsecase(uow repository.UnitOfWork, llm testcase.LLMConnector, logger *zap.Logger) *DataPoolUsecase {
	return &DataPoolUsecase{
		uow:    uow,
		llm:    llm,
		logger: logger,
	}
}

// Generate asks the model for parameter rows based on a test case
// JSON document and stores them as one data pool.
func (uc *DataPoolUsecase) Generate(ctx context.Context, req *entity.GenerateDataPoolRequest) (*entity.DataPool, error) {
	if strings.TrimSpace(req.TestCaseJSON) == "" {
		return nil, fmt.Errorf("%w: testCaseJson", entity.ErrMissingField)
	}
	if strings.TrimSpace(req.LLMModel) == "" {
		return nil, entity.ErrEmptyModel
	}

	prompt := fmt.Sprintf(generationPromptTemplate, req.TestCaseJSON)
	answer, err := uc.llm.Call(ctx, prompt, req.LLMModel)
	if err != nil {
		return nil, fmt.Errorf("call LLM: %w", err)
	}

	rows, err := parseRows([]byte(answer))
	if err != nil {
		return nil, err
	}

	// The test case document may carry its ID; link the pool when it
	// does.
	var testCaseRef struct {
		ID string `json:"id"`
	}
	var testCaseID *string
	if err := json.Unmarshal([]byte(req.TestCaseJSON), &testCaseRef); err == nil && testCaseRef.ID != "" {
		testCaseID = &testCaseRef.ID
	}

	pool, err := uc.storePool(ctx, rows, testCaseID)
	if err != nil {
		return nil, err
	}

	ctxzap.Info(ctx, "data pool generated",
		zap.String("data_pool_id", pool.ID),
		zap.Int("item_count", len(pool.Items)),
		zap.String("llm_model", req.LLMModel),
	)

	return pool, nil
}

// SaveUserPool stores parameter rows uploaded as a JSON array file
func (uc *DataPoolUsecase) SaveUserPool(ctx context.Context, file *multipart.FileHeader, testCaseID *string) (*entity.DataPool, error) {
	if file == nil {
		return nil, fmt.Errorf("%w: file", entity.ErrMissingField)
	}

	f, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("open uploaded file: %w", err)
	}
	defer f.Close()

	raw, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("read uploaded file: %w", err)
	}

	rows, err := parseRows(raw)
	if err != nil {
		return nil, err
	}

	pool, err := uc.storePool(ctx, rows, testCaseID)
	if err != nil {
		return nil, err
	}

	ctxzap.Info(ctx, "user data pool saved",
		zap.String("data_pool_id", pool.ID),
		zap.Int("item_count", len(pool.Items)),
	)

	return pool, nil
}

// Get returns a data pool with its items by ID
func (uc *DataPoolUsecase) Get(ctx context.Context, id string) (*entity.DataPool, error) {
	if strings.TrimSpace(id) == "" {
		return nil, entity.ErrEmptyID
	}

	return uc.uow.DataPools().GetByID(ctx, id)
}

// ListByTestCaseID returns all data pools linked to a test case
func (uc *DataPoolUsecase) ListByTestCaseID(ctx context.Context, testCaseID string) ([]entity.DataPool, error) {
	if strings.TrimSpace(testCaseID) == "" {
		return nil, entity.ErrEmptyID
	}

	return uc.uow.DataPools().ListByTestCaseID(ctx, testCaseID)
}

// Delete removes a data pool together with its items
func (uc *DataPoolUsecase) Delete(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return entity.ErrEmptyID
	}

	return uc.uow.DataPools().Delete(ctx, id)
}

func (uc *DataPoolUsecase) storePool(ctx context.Context, rows []json.RawMessage, testCaseID *string) (*entity.DataPool, error) {
	pool := &entity.DataPool{
		ID:         uuid.NewString(),
		TestCaseID: testCaseID,
		CreatedAt:  time.Now().UTC(),
		Items:      make([]entity.DataPoolItem, 0, len(rows)),
	}
	for _, row := range rows {
		pool.Items = append(pool.Items, entity.DataPoolItem{
			ID:         uuid.NewString(),
			DataPoolID: pool.ID,
			Data:       string(row),
		})
	}

	if err := uc.uow.DataPools().Create(ctx, pool); err != nil {
		return nil, err
	}

	return pool, nil
}

// parseRows decodes a JSON array of objects into raw per-row blobs
func parseRows(raw []byte) ([]json.RawMessage, error) {
	var rows []json.RawMessage
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, fmt.Errorf("%w: %v", entity.ErrInvalidDataPool, err)
	}
	if len(rows) == 0 {
		return nil, entity.ErrEmptyDataPool
	}

	return rows, nil
}
