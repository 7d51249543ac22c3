package zephyr

import (
	"context"
	"fmt"
	"net/http"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/segaai/testcase-backend/internal/config"
	"github.com/segaai/testcase-backend/internal/entity"
	"github.com/segaai/testcase-backend/internal/integration/common"
	pkghttp "github.com/segaai/testcase-backend/pkg/http"
	"go.uber.org/zap"
)

const createTestCaseEndpoint = "/v2/testcases"

// Connector pushes test cases to Zephyr Scale over its REST API.
type Connector struct {
	config    config.ZephyrConnectorConfig
	connector *pkghttp.Connector
	logger    *zap.Logger
}

func NewConnector(
	cfg config.ZephyrConnectorConfig,
	logger *zap.Logger,
) (*Connector, error) {
	base, err := common.NewBaseConnector(cfg.HTTPClientConfig, cfg.Retry.ToRetryOptions(), logger)
	if err != nil {
		return nil, err
	}

	return &Connector{
		connector: base,
		config:    cfg,
		logger:    logger,
	}, nil
}

type zephyrStep struct {
	Description    string `json:"description"`
	ExpectedResult string `json:"expectedResult"`
}

type createTestCasePayload struct {
	ProjectKey   string       `json:"projectKey"`
	Name         string       `json:"name"`
	Precondition string       `json:"precondition"`
	Objective    string       `json:"objective"`
	Status       string       `json:"status"`
	Steps        []zephyrStep `json:"steps"`
}

// PushTestCase creates the test case in Zephyr Scale.
func (c *Connector) PushTestCase(ctx context.Context, testCase *entity.TestCase) error {
	payload := createTestCasePayload{
		ProjectKey:   c.config.ProjectKey,
		Name:         testCase.Name,
		Precondition: testCase.Precondition,
		Objective:    fmt.Sprintf("Тест-кейс %s для проверки функционала", testCase.Number),
		Status:       string(testCase.Status),
		Steps:        make([]zephyrStep, 0, len(testCase.Steps)),
	}

	for _, step := range testCase.Steps {
		payload.Steps = append(payload.Steps, zephyrStep{
			Description:    step.Action,
			ExpectedResult: step.ExpectedResult,
		})
	}

	ctxzap.Info(ctx, "exporting test case to Zephyr Scale",
		zap.String("test_case_id", testCase.ID),
		zap.String("project_key", c.config.ProjectKey),
	)

	if err := c.connector.DoRequest(ctx, http.MethodPost, createTestCaseEndpoint, payload, nil); err != nil {
		return fmt.Errorf("export to Zephyr Scale: %w", err)
	}

	ctxzap.Info(ctx, "test case exported to Zephyr Scale", zap.String("test_case_id", testCase.ID))

	return nil
}

// MockConnector - мок-реализация Zephyr коннектора для тестирования
type MockConnector struct {
	logger *zap.Logger
}

func NewMockConnector(logger *zap.Logger) *MockConnector {
	return &MockConnector{logger: logger}
}

func (m *MockConnector) PushTestCase(ctx context.Context, testCase *entity.TestCase) error {
	ctxzap.Info(ctx, "[MOCK] exporting test case to Zephyr Scale", zap.String("test_case_id", testCase.ID))
	return nil
}
