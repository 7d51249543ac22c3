package validator

import (
	"fmt"
	"mime/multipart"
	"strings"

	"github.com/segaai/testcase-backend/internal/config"
	"github.com/segaai/testcase-backend/internal/entity"
)

// Validator validates incoming API requests before they reach the
// business layer.
type Validator struct {
	cfg config.InputDataConfig
}

func NewValidator(cfg config.InputDataConfig) *Validator {
	return &Validator{cfg: cfg}
}

func (v *Validator) ValidateGenerateTestCase(req *entity.GenerateTestCaseRequest) error {
	if strings.TrimSpace(req.InputData) == "" {
		return entity.ErrEmptyInput
	}

	return validateModel(req.LLMModel)
}

func (v *Validator) ValidateUpdateTestCase(req *entity.UpdateTestCaseRequest) error {
	if strings.TrimSpace(req.ChangesInput) == "" {
		return entity.ErrEmptyInput
	}

	return validateModel(req.LLMModel)
}

func (v *Validator) ValidateUpdateSteps(steps []entity.UpdateStepsRequest) error {
	if len(steps) == 0 {
		return entity.ErrEmptySteps
	}

	for i, step := range steps {
		if strings.TrimSpace(step.Action) == "" {
			return fmt.Errorf("%w: action (шаг %d)", entity.ErrMissingField, i+1)
		}
		if strings.TrimSpace(step.ExpectedResult) == "" {
			return fmt.Errorf("%w: expectedResult (шаг %d)", entity.ErrMissingField, i+1)
		}
	}

	return nil
}

func (v *Validator) ValidateAddHistoryEntry(req *entity.AddHistoryEntryRequest) error {
	if req.TestCaseID == "" {
		return entity.ErrEmptyID
	}
	if strings.TrimSpace(req.Action) == "" {
		return fmt.Errorf("%w: action", entity.ErrMissingField)
	}

	return nil
}

func (v *Validator) ValidateGenerateDataPool(req *entity.GenerateDataPoolRequest) error {
	if strings.TrimSpace(req.TestCaseJSON) == "" {
		return fmt.Errorf("%w: testCaseJson", entity.ErrMissingField)
	}

	return validateModel(req.LLMModel)
}

// ValidateUpload checks a file attached to an input data request
func (v *Validator) ValidateUpload(fh *multipart.FileHeader) error {
	if fh.Size > v.cfg.MaxFileSize {
		return fmt.Errorf("%w: '%s', %d байт (максимум %d)", entity.ErrFileTooLarge, fh.Filename, fh.Size, v.cfg.MaxFileSize)
	}

	return nil
}

func validateModel(model string) error {
	if model == "" {
		return entity.ErrEmptyModel
	}
	if !entity.IsSupportedModel(model) {
		return fmt.Errorf("%w: %s", entity.ErrInvalidModel, model)
	}

	return nil
}
