package history

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"

	"github.com/segaai/testcase-backend/internal/entity"
	"github.com/segaai/testcase-backend/internal/pkg/logger"
	"github.com/segaai/testcase-backend/internal/pkg/response"
	"github.com/segaai/testcase-backend/internal/pkg/validator"
)

type Handler struct {
	usecase   HistoryUsecase
	validator *validator.Validator
}

func NewHandler(usecase HistoryUsecase, validator *validator.Validator) *Handler {
	return &Handler{
		usecase:   usecase,
		validator: validator,
	}
}

// Add handles POST /api/history
func (h *Handler) Add(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "AddHistoryEntry")

	var req entity.AddHistoryEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ctxzap.Error(ctx, "failed to decode request body", zap.Error(err))
		response.Error(w, http.StatusBadRequest, "некорректное тело запроса")
		return
	}

	if err := h.validator.ValidateAddHistoryEntry(&req); err != nil {
		response.DomainError(ctx, w, err)
		return
	}

	entry, err := h.usecase.Add(ctx, &req)
	if err != nil {
		response.DomainError(ctx, w, err)
		return
	}

	response.Created(w, entry)
}

// ListByTestCase handles GET /api/history/by-testcase/{testCaseId}
func (h *Handler) ListByTestCase(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	testCaseID := chi.URLParam(r, "testCaseId")

	ctx = logger.AddFields(ctx,
		zap.String("test_case_id", testCaseID),
		zap.String("action", "ListHistory"),
	)

	entries, err := h.usecase.ListByTestCaseID(ctx, testCaseID)
	if err != nil {
		response.DomainError(ctx, w, err)
		return
	}

	response.Success(w, entries)
}
