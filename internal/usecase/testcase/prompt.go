package testcase

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/segaai/testcase-backend/internal/entity"
)

const (
	defaultAuthor = "AI Generated"

	promptRequirements = `Убедитесь, что:
- Ответ содержит ТОЛЬКО валидный JSON, без Markdown-форматирования (например, ` + "```json или ```" + `), тегов <think> или другого текста.
- Поле testCase.steps содержит как минимум один шаг с непустыми полями action и expectedResult.
- Поле testCode содержит полный Java-код с правильным экранированием кавычек (\") и переносов строк (\n).
- Код теста завершен (включает все шаги и закрытие WebDriver).
- Имена свойств в JSON используют camelCase (например, "number", "creationDate").
- Поле creationDate имеет формат "yyyy-MM-dd" (например, "2025-10-06").`

	validationPromptTemplate = `Проверьте тест-кейс: %s на соответствие входным данным: %s.
Убедитесь, что:
- Тест-кейс полностью соответствует входным данным.
- Шаги теста покрывают ключевые сценарии.
- Код теста (testCode) корректен и соответствует шагам.
Верните JSON:
{
    "isValid": true/false,
    "recommendation": "Рекомендация для улучшения или null"
}`
)

// NewNumber returns a fresh unique test case number
func NewNumber() string {
	return fmt.Sprintf("TC-%d", time.Now().UnixNano())
}

// BuildGenerationPrompt renders the prompt for a new test case, or for
// an update of existing when it is non-nil. The prompt embeds a JSON
// schema example and asks for a Java/JUnit/Selenium test alongside.
func BuildGenerationPrompt(inputData string, existing *entity.TestCase) (string, error) {
	isUpdate := existing != nil

	var promptStart string
	number := NewNumber()
	creationDate := time.Now().UTC().Format("2006-01-02")
	author := defaultAuthor
	status := string(entity.StatusDevelopment)

	if isUpdate {
		existingJSON, err := json.Marshal(existing)
		if err != nil {
			return "", fmt.Errorf("marshal existing test case: %w", err)
		}
		promptStart = fmt.Sprintf("На основе существующего тест-кейса: %s и новых изменений: %s Обнови тест-кейс", existingJSON, inputData)
		number = existing.Number
		creationDate = existing.CreationDate.Format("2006-01-02")
		author = existing.Author
		status = string(existing.Status)
	} else {
		promptStart = fmt.Sprintf("На основе входных данных: %s Сгенерируй тест-кейс", inputData)
	}

	pick := func(update, generate string) string {
		if isUpdate {
			return update
		}
		return generate
	}

	return fmt.Sprintf(`%s в формате JSON:
{
    "number": "%s",
    "creationDate": "%s",
    "name": "%s",
    "author": "%s",
    "precondition": "%s",
    "steps": [
        {
            "stepNumber": 1,
            "action": "%s",
            "expectedResult": "%s"
        }
    ],
    "postcondition": "%s",
    "status": "%s"
} и %s автоматизированный тест-кейс на Java с использованием Selenium WebDriver в формате JUnit:
    @Test
    public void testName() {
        // %s
    }
Ответ верни в формате JSON: { "testCase": { ... }, "testCode": "..." }
%s`,
		promptStart,
		number,
		creationDate,
		pick("Обновленное название", "Название тест-кейса"),
		author,
		pick("Обновленное предусловие", "Описание предусловия"),
		pick("Обновленное действие", "Описание действия"),
		pick("Обновленный результат", "Ожидаемый результат"),
		pick("Обновленное постусловие", "Описание постусловия"),
		status,
		pick("обнови", "сгенерируй"),
		pick("Обновлённый код теста", "Код теста"),
		promptRequirements,
	), nil
}

// BuildValidationPrompt renders the semantic validation prompt asking
// the model for an {"isValid", "recommendation"} verdict.
func BuildValidationPrompt(testCase *entity.TestCase, inputData string) (string, error) {
	testCaseJSON, err := json.Marshal(testCase)
	if err != nil {
		return "", fmt.Errorf("marshal test case: %w", err)
	}

	return fmt.Sprintf(validationPromptTemplate, testCaseJSON, inputData), nil
}
