package inputdata

import (
	"context"
	"mime/multipart"

	"github.com/segaai/testcase-backend/internal/entity"
)

type InputDataUsecase interface {
	Save(ctx context.Context, file *multipart.FileHeader, textData, url, dataType string) (*entity.InputData, error)
	Get(ctx context.Context, id string) (*entity.InputData, error)
	GetByTestCaseID(ctx context.Context, testCaseID string) (*entity.InputData, error)
	AttachToTestCase(ctx context.Context, id, testCaseID string) error
}
