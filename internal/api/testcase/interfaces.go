package testcase

import (
	"context"

	"github.com/segaai/testcase-backend/internal/entity"
)

type TestCaseUsecase interface {
	Generate(ctx context.Context, req *entity.GenerateTestCaseRequest) (*entity.TestCaseResponse, error)
	UpdateWithChanges(ctx context.Context, testCaseID string, req *entity.UpdateTestCaseRequest) (*entity.TestCaseResponse, error)
	UpdateSteps(ctx context.Context, testCaseID string, steps []entity.UpdateStepsRequest) (*entity.TestCase, error)
	Get(ctx context.Context, id string) (*entity.TestCase, error)
	GetByNumber(ctx context.Context, number string) (*entity.TestCase, error)
	List(ctx context.Context, status *entity.TestCaseStatus) ([]entity.TestCase, error)
	Delete(ctx context.Context, id string) error
}
