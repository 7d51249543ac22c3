package response

import (
	"context"
	"errors"
	"net/http"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"

	"github.com/segaai/testcase-backend/internal/entity"
)

// DomainError maps a business error to an HTTP status and writes the
// error body. Unknown errors become 500 without leaking the message.
func DomainError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, entity.ErrTestCaseNotFound),
		errors.Is(err, entity.ErrInputDataNotFound),
		errors.Is(err, entity.ErrDataPoolNotFound),
		errors.Is(err, entity.ErrEmptyTestCode):
		ctxzap.Warn(ctx, "resource not found", zap.Error(err))
		Error(w, http.StatusNotFound, err.Error())

	case errors.Is(err, entity.ErrEmptyInput),
		errors.Is(err, entity.ErrEmptyPrompt),
		errors.Is(err, entity.ErrEmptyModel),
		errors.Is(err, entity.ErrInvalidModel),
		errors.Is(err, entity.ErrInvalidStatus),
		errors.Is(err, entity.ErrEmptyID),
		errors.Is(err, entity.ErrEmptySteps),
		errors.Is(err, entity.ErrMissingField),
		errors.Is(err, entity.ErrNoDataSource),
		errors.Is(err, entity.ErrEmptyContent),
		errors.Is(err, entity.ErrInvalidDataPool),
		errors.Is(err, entity.ErrEmptyDataPool):
		ctxzap.Warn(ctx, "invalid request", zap.Error(err))
		Error(w, http.StatusBadRequest, err.Error())

	case errors.Is(err, entity.ErrFileTooLarge):
		ctxzap.Warn(ctx, "uploaded file too large", zap.Error(err))
		Error(w, http.StatusRequestEntityTooLarge, err.Error())

	case errors.Is(err, entity.ErrLLMContract),
		errors.Is(err, entity.ErrLLMEmptyAnswer):
		ctxzap.Error(ctx, "LLM contract violation", zap.Error(err))
		Error(w, http.StatusBadGateway, err.Error())

	default:
		ctxzap.Error(ctx, "internal error", zap.Error(err))
		Error(w, http.StatusInternalServerError, "внутренняя ошибка сервера")
	}
}
