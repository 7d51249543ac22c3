package export

import "context"

type ExportUsecase interface {
	ToExcel(ctx context.Context, testCaseID string) ([]byte, error)
	ToPDF(ctx context.Context, testCaseID string) ([]byte, error)
	ToCSV(ctx context.Context, dataPoolID string) ([]byte, error)
	TestCode(ctx context.Context, testCaseID string) ([]byte, error)
	ToZephyr(ctx context.Context, testCaseID string) error
}
