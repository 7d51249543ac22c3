package entity

import "errors"

// Domain errors
var (
	// Input validation errors
	ErrEmptyInput    = errors.New("входные данные не могут быть пустыми")
	ErrEmptyPrompt   = errors.New("промпт не может быть пустым")
	ErrEmptyModel    = errors.New("модель LLM не указана")
	ErrInvalidModel  = errors.New("недопустимая модель LLM")
	ErrInvalidStatus = errors.New("недопустимый статус тест-кейса")
	ErrEmptyID       = errors.New("ID не может быть пустым")
	ErrEmptySteps    = errors.New("список шагов не может быть пустым")
	ErrMissingField  = errors.New("обязательное поле не заполнено")
	ErrNoDataSource  = errors.New("необходимо предоставить хотя бы один источник данных: файл, текст или URL")
	ErrFileTooLarge  = errors.New("размер файла превышает допустимый лимит")
	ErrEmptyContent  = errors.New("не удалось получить содержимое из предоставленных данных")

	// Not-found errors
	ErrTestCaseNotFound  = errors.New("тест-кейс не найден")
	ErrInputDataNotFound = errors.New("входные данные не найдены")
	ErrDataPoolNotFound  = errors.New("datapool не найден")

	// LLM contract errors: the envelope or its fields did not parse
	// into the expected shape after the gateway's self-heal retry.
	ErrLLMContract     = errors.New("ответ LLM не соответствует ожидаемому формату")
	ErrLLMEmptyAnswer  = errors.New("ответ LLM не содержит содержимого")
	ErrEmptyTestCode   = errors.New("тест-кейс не содержит кода теста")
	ErrEmptyDataPool   = errors.New("datapool пустой, нет данных для экспорта")
	ErrInvalidDataPool = errors.New("данные datapool должны быть JSON-массивом объектов")
)
