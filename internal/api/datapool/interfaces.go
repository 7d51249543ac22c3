package datapool

import (
	"context"
	"mime/multipart"

	"github.com/segaai/testcase-backend/internal/entity"
)

type DataPoolUsecase interface {
	Generate(ctx context.Context, req *entity.GenerateDataPoolRequest) (*entity.DataPool, error)
	SaveUserPool(ctx context.Context, file *multipart.FileHeader, testCaseID *string) (*entity.DataPool, error)
	Get(ctx context.Context, id string) (*entity.DataPool, error)
	ListByTestCaseID(ctx context.Context, testCaseID string) ([]entity.DataPool, error)
	Delete(ctx context.Context, id string) error
}
