package llm

import (
	"context"
	"strings"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// MockConnector - мок-реализация LLM коннектора для тестирования
type MockConnector struct {
	logger *zap.Logger
}

func NewMockConnector(logger *zap.Logger) *MockConnector {
	return &MockConnector{
		logger: logger,
	}
}

// Call - мок вызова LLM; различает промпты валидации, генерации
// datapool и генерации тест-кейса по их вводной фразе.
func (m *MockConnector) Call(ctx context.Context, prompt, model string) (string, error) {
	ctxzap.Info(ctx, "[MOCK] calling LLM", zap.String("model", model))

	switch {
	case strings.HasPrefix(prompt, "Проверьте тест-кейс"):
		return `{"isValid": true, "recommendation": null}`, nil

	case strings.HasPrefix(prompt, "На основе тест-кейса"):
		return `[
			{"email": "user1@example.com", "password": "Pass1234"},
			{"email": "user2@example.com", "password": "Qwerty5678"}
		]`, nil

	default:
		return `{
			"testCase": {
				"number": "TC-1000000000000000000",
				"creationDate": "2025-10-06",
				"name": "Авторизация пользователя",
				"author": "AI Generated",
				"precondition": "Пользователь находится на странице входа",
				"steps": [
					{
						"stepNumber": 1,
						"action": "Ввести email: test@example.com",
						"expectedResult": "Поле email заполнено корректно"
					},
					{
						"stepNumber": 2,
						"action": "Ввести пароль и нажать кнопку входа",
						"expectedResult": "Пользователь авторизован"
					}
				],
				"postcondition": "Открыта главная страница",
				"status": "Development"
			},
			"testCode": "@Test\npublic void testLogin() {\n    driver.get(\"https://example.com/login\");\n    driver.quit();\n}"
		}`, nil
	}
}
