package export

import (
	"context"

	"github.com/segaai/testcase-backend/internal/entity"
)

// ZephyrConnector pushes a test case to Zephyr Scale
type ZephyrConnector interface {
	PushTestCase(ctx context.Context, testCase *entity.TestCase) error
}
