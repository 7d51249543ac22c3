package export

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"

	"github.com/segaai/testcase-backend/internal/entity"
	"github.com/segaai/testcase-backend/internal/pkg/formatter"
	"github.com/segaai/testcase-backend/internal/repository"
)

// ExportUsecase renders test cases and data pools into external
// formats and pushes test cases to Zephyr Scale.
type ExportUsecase struct {
	uow    repository.UnitOfWork
	zephyr ZephyrConnector
	excel  *formatter.ExcelFormatter
	csv    *formatter.CSVFormatter
	pdf    *formatter.PDFFormatter
	logger *zap.Logger
}

// NewUsecase creates a new export use case
func NewUsecase(uow repository.UnitOfWork, zephyr ZephyrConnector, logger *zap.Logger) *ExportUsecase {
	return &ExportUsecase{
		uow:    uow,
		zephyr: zephyr,
		excel:  formatter.NewExcelFormatter(),
		csv:    formatter.NewCSVFormatter(),
		pdf:    formatter.NewPDFFormatter(),
		logger: logger,
	}
}

// ToExcel renders a test case as an xlsx workbook
func (uc *ExportUsecase) ToExcel(ctx context.Context, testCaseID string) ([]byte, error) {
	testCase, err := uc.getTestCase(ctx, testCaseID)
	if err != nil {
		return nil, err
	}

	data, err := uc.excel.FormatTestCase(testCase)
	if err != nil {
		return nil, fmt.Errorf("format excel: %w", err)
	}

	ctxzap.Info(ctx, "test case exported to excel", zap.String("test_case_id", testCaseID))

	return data, nil
}

// ToPDF renders a test case as a printable PDF document
func (uc *ExportUsecase) ToPDF(ctx context.Context, testCaseID string) ([]byte, error) {
	testCase, err := uc.getTestCase(ctx, testCaseID)
	if err != nil {
		return nil, err
	}

	data, err := uc.pdf.FormatTestCase(testCase)
	if err != nil {
		return nil, fmt.Errorf("format pdf: %w", err)
	}

	ctxzap.Info(ctx, "test case exported to pdf", zap.String("test_case_id", testCaseID))

	return data, nil
}

// ToCSV renders the items of a data pool as CSV
func (uc *ExportUsecase) ToCSV(ctx context.Context, dataPoolID string) ([]byte, error) {
	if strings.TrimSpace(dataPoolID) == "" {
		return nil, entity.ErrEmptyID
	}

	pool, err := uc.uow.DataPools().GetByID(ctx, dataPoolID)
	if err != nil {
		return nil, err
	}

	data, err := uc.csv.FormatDataPool(pool)
	if err != nil {
		return nil, err
	}

	ctxzap.Info(ctx, "data pool exported to csv",
		zap.String("data_pool_id", dataPoolID),
		zap.Int("item_count", len(pool.Items)),
	)

	return data, nil
}

// TestCode returns the raw generated automation code of a test case
func (uc *ExportUsecase) TestCode(ctx context.Context, testCaseID string) ([]byte, error) {
	testCase, err := uc.getTestCase(ctx, testCaseID)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(testCase.TestCode) == "" {
		return nil, entity.ErrEmptyTestCode
	}

	return []byte(testCase.TestCode), nil
}

// ToZephyr pushes a test case to Zephyr Scale and records an
// "Exported" history entry in the same unit of work.
func (uc *ExportUsecase) ToZephyr(ctx context.Context, testCaseID string) error {
	testCase, err := uc.getTestCase(ctx, testCaseID)
	if err != nil {
		return err
	}

	if err := uc.zephyr.PushTestCase(ctx, testCase); err != nil {
		return fmt.Errorf("ошибка при экспорте в Zephyr Scale: %w", err)
	}

	err = uc.uow.WithinTx(ctx, func(repos repository.RepositorySet) error {
		return repos.HistoryEntries().Add(ctx, &entity.HistoryEntry{
			ID:         uuid.NewString(),
			TestCaseID: testCaseID,
			Timestamp:  time.Now().UTC(),
			Action:     entity.HistoryActionExported,
			User:       entity.HistoryUserSystem,
			Details:    "Exported to Zephyr Scale",
		})
	})
	if err != nil {
		return err
	}

	ctxzap.Info(ctx, "test case exported to zephyr", zap.String("test_case_id", testCaseID))

	return nil
}

func (uc *ExportUsecase) getTestCase(ctx context.Context, testCaseID string) (*entity.TestCase, error) {
	if strings.TrimSpace(testCaseID) == "" {
		return nil, entity.ErrEmptyID
	}

	return uc.uow.TestCases().GetByID(ctx, testCaseID)
}
