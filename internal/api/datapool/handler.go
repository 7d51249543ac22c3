package datapool

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

const maxUploadSize = 10 << 20

type Handler struct {
	usecase   DataPoolUsecase
	validator *validator.Validator
}

func NewHandler(usecase DataPoolUsecase, validator *validator.Validator) *Handler {
	return &Handler{
		usecase:   usecase,
		validator: validator,
	}
}

// Generate handles POST /api/data-pools/generate
func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "GenerateDataPool")

	var req entity.GenerateDataPoolRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ctxzap.Error(ctx, "failed to decode request body", zap.Error(err))
		response.Error(w, http.StatusBadRequest, "некорректное тело запроса")
		return
	}

	if err := h.validator.ValidateGenerateDataPool(&req); err != nil {
		response.DomainError(ctx, w, err)
		return
	}

	ctxzap.Info(ctx, "generating data pool", zap.String("llm_model", req.LLMModel))

	pool, err := h.usecase.Generate(ctx, &req)
	if err != nil {
		response.DomainError(ctx, w, err)
		return
	}

	response.Created(w, pool)
}

// Upload handles POST /api/data-pools/upload (multipart: file, testCaseId)
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "UploadDataPool")

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		ctxzap.Error(ctx, "failed to parse multipart form", zap.Error(err))
		response.Error(w, http.StatusBadRequest, "некорректная форма или слишком большой файл")
		return
	}

	files := r.MultipartForm.File["file"]
	if len(files) == 0 {
		response.Error(w, http.StatusBadRequest, "файл не предоставлен")
		return
	}

	if err := h.validator.ValidateUpload(files[0]); err != nil {
		response.DomainError(ctx, w, err)
		return
	}

	var testCaseID *string
	if raw := r.FormValue("testCaseId"); raw != "" {
		testCaseID = &raw
	}

	pool, err := h.usecase.SaveUserPool(ctx, files[0], testCaseID)
	if err != nil {
		response.DomainError(ctx, w, err)
		return
	}

	response.Created(w, pool)
}

// Get handles GET /api/data-pools/{id}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	ctx = logger.AddFields(ctx,
		zap.String("data_pool_id", id),
		zap.String("action", "GetDataPool"),
	)

	pool, err := h.usecase.Get(ctx, id)
	if err != nil {
		response.DomainError(ctx, w, err)
		return
	}

	response.Success(w, pool)
}

// ListByTestCase handles GET /api/data-pools/by-testcase/{testCaseId}
func (h *Handler) ListByTestCase(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	testCaseID := chi.URLParam(r, "testCaseId")

	ctx = logger.AddFields(ctx,
		zap.String("test_case_id", testCaseID),
		zap.String("action", "ListDataPoolsByTestCase"),
	)

	pools, err := h.usecase.ListByTestCaseID(ctx, testCaseID)
	if err != nil {
		response.DomainError(ctx, w, err)
		return
	}

	response.Success(w, pools)
}

// Delete handles DELETE /api/data-pools/{id}
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	ctx = logger.AddFields(ctx,
		zap.String("data_pool_id", id),
		zap.String("action", "DeleteDataPool"),
	)

	if err := h.usecase.Delete(ctx, id); err != nil {
		response.DomainError(ctx, w, err)
		return
	}

	response.NoContent(w)
}
