package testcase

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/segaai/testcase-backend/internal/entity"
)

func TestNewNumber(t *testing.T) {
	first := NewNumber()
	second := NewNumber()

	assert.True(t, strings.HasPrefix(first, "TC-"))
	assert.NotEqual(t, first, second)
}

func TestBuildGenerationPrompt_NewTestCase(t *testing.T) {
	prompt, err := BuildGenerationPrompt("Авторизация на сайте", nil)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(prompt, "На основе входных данных: Авторизация на сайте Сгенерируй тест-кейс"))
	assert.Contains(t, prompt, `"author": "AI Generated"`)
	assert.Contains(t, prompt, `"status": "Development"`)
	assert.Contains(t, prompt, `"number": "TC-`)
	assert.Contains(t, prompt, "Selenium WebDriver")
	assert.Contains(t, prompt, `{ "testCase": { ... }, "testCode": "..." }`)
	assert.Contains(t, prompt, "Убедитесь, что:")
	assert.Contains(t, prompt, "camelCase")
	// Generation wording, not the update one
	assert.Contains(t, prompt, "Название тест-кейса")
	assert.NotContains(t, prompt, "Обновленное название")
}

func TestBuildGenerationPrompt_Update(t *testing.T) {
	existing := &entity.TestCase{
		ID:           "11111111-1111-1111-1111-111111111111",
		Number:       "TC-42",
		CreationDate: entity.NewDate(time.Date(2025, 10, 6, 0, 0, 0, 0, time.UTC)),
		Name:         "Старое название",
		Author:       "tester",
		Status:       entity.StatusActive,
	}

	prompt, err := BuildGenerationPrompt("добавить негативный сценарий", existing)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(prompt, "На основе существующего тест-кейса: "))
	assert.Contains(t, prompt, "и новых изменений: добавить негативный сценарий Обнови тест-кейс")
	// Identity of the existing test case flows into the schema example
	assert.Contains(t, prompt, `"number": "TC-42"`)
	assert.Contains(t, prompt, `"creationDate": "2025-10-06"`)
	assert.Contains(t, prompt, `"author": "tester"`)
	assert.Contains(t, prompt, `"status": "Active"`)
	assert.Contains(t, prompt, "Обновленное название")
	assert.Contains(t, prompt, "Обновлённый код теста")
}

func TestBuildValidationPrompt(t *testing.T) {
	testCase := &entity.TestCase{
		ID:     "11111111-1111-1111-1111-111111111111",
		Number: "TC-42",
		Name:   "Авторизация",
	}

	prompt, err := BuildValidationPrompt(testCase, "вход по email")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(prompt, "Проверьте тест-кейс: "))
	assert.Contains(t, prompt, `"number":"TC-42"`)
	assert.Contains(t, prompt, "на соответствие входным данным: вход по email.")
	assert.Contains(t, prompt, `"isValid": true/false`)
}
