package history

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"

	"github.com/segaai/testcase-backend/internal/entity"
	"github.com/segaai/testcase-backend/internal/repository"
)

// HistoryUsecase manages the operation audit trail of test cases
type HistoryUsecase struct {
	uow    repository.UnitOfWork
	logger *zap.Logger
}

// NewUsecase creates a new history use case
func NewUsecase(uow repository.UnitOfWork, logger *zap.Logger) *HistoryUsecase {
	return &HistoryUsecase{
		uow:    uow,
		logger: logger,
	}
}

// Add records one manual history entry for an existing test case.
// User defaults to "System" when omitted.
func (uc *HistoryUsecase) Add(ctx context.Context, req *entity.AddHistoryEntryRequest) (*entity.HistoryEntry, error) {
	if strings.TrimSpace(req.TestCaseID) == "" {
		return nil, entity.ErrEmptyID
	}
	if strings.TrimSpace(req.Action) == "" {
		return nil, fmt.Errorf("%w: action", entity.ErrMissingField)
	}

	user := req.User
	if strings.TrimSpace(user) == "" {
		user = entity.HistoryUserSystem
	}

	// The entry must reference an existing test case.
	if _, err := uc.uow.TestCases().GetByID(ctx, req.TestCaseID); err != nil {
		return nil, err
	}

	entry := &entity.HistoryEntry{
		ID:         uuid.NewString(),
		TestCaseID: req.TestCaseID,
		Timestamp:  time.Now().UTC(),
		Action:     req.Action,
		User:       user,
		Details:    req.Details,
	}

	if err := uc.uow.HistoryEntries().Add(ctx, entry); err != nil {
		return nil, err
	}

	ctxzap.Info(ctx, "history entry added",
		zap.String("test_case_id", req.TestCaseID),
		zap.String("action", req.Action),
	)

	return entry, nil
}

// ListByTestCaseID returns the history of one test case in
// chronological order
func (uc *HistoryUsecase) ListByTestCaseID(ctx context.Context, testCaseID string) ([]entity.HistoryEntry, error) {
	if strings.TrimSpace(testCaseID) == "" {
		return nil, entity.ErrEmptyID
	}

	return uc.uow.HistoryEntries().ListByTestCaseID(ctx, testCaseID)
}
