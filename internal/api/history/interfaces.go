package history

import (
	"context"

	"github.com/segaai/testcase-backend/internal/entity"
)

type HistoryUsecase interface {
	Add(ctx context.Context, req *entity.AddHistoryEntryRequest) (*entity.HistoryEntry, error)
	ListByTestCaseID(ctx context.Context, testCaseID string) ([]entity.HistoryEntry, error)
}
