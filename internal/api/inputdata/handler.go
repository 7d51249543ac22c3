package inputdata

import (
	"encoding/json"
	"mime/multipart"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"

	"github.com/segaai/testcase-backend/internal/config"
	"github.com/segaai/testcase-backend/internal/pkg/logger"
	"github.com/segaai/testcase-backend/internal/pkg/response"
)

type Handler struct {
	usecase InputDataUsecase
	cfg     config.InputDataConfig
}

func NewHandler(usecase InputDataUsecase, cfg config.InputDataConfig) *Handler {
	return &Handler{
		usecase: usecase,
		cfg:     cfg,
	}
}

// Save handles POST /api/input-data (multipart: file, textData, url, type)
func (h *Handler) Save(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "SaveInputData")

	if err := r.ParseMultipartForm(h.cfg.MaxFileSize); err != nil {
		ctxzap.Error(ctx, "failed to parse multipart form", zap.Error(err))
		response.Error(w, http.StatusBadRequest, "некорректная форма или слишком большой файл")
		return
	}

	var file *multipart.FileHeader
	if files := r.MultipartForm.File["file"]; len(files) > 0 {
		file = files[0]
	}

	data, err := h.usecase.Save(ctx, file,
		r.FormValue("textData"),
		r.FormValue("url"),
		r.FormValue("type"),
	)
	if err != nil {
		response.DomainError(ctx, w, err)
		return
	}

	response.Created(w, data)
}

// Get handles GET /api/input-data/{id}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	ctx = logger.AddFields(ctx,
		zap.String("input_data_id", id),
		zap.String("action", "GetInputData"),
	)

	data, err := h.usecase.Get(ctx, id)
	if err != nil {
		response.DomainError(ctx, w, err)
		return
	}

	response.Success(w, data)
}

// GetByTestCase handles GET /api/input-data/by-testcase/{testCaseId}
func (h *Handler) GetByTestCase(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	testCaseID := chi.URLParam(r, "testCaseId")

	ctx = logger.AddFields(ctx,
		zap.String("test_case_id", testCaseID),
		zap.String("action", "GetInputDataByTestCase"),
	)

	data, err := h.usecase.GetByTestCaseID(ctx, testCaseID)
	if err != nil {
		response.DomainError(ctx, w, err)
		return
	}

	response.Success(w, data)
}

// Attach handles POST /api/input-data/{id}/attach
func (h *Handler) Attach(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	ctx = logger.AddFields(ctx,
		zap.String("input_data_id", id),
		zap.String("action", "AttachInputData"),
	)

	var req struct {
		TestCaseID string `json:"testCaseId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ctxzap.Error(ctx, "failed to decode request body", zap.Error(err))
		response.Error(w, http.StatusBadRequest, "некорректное тело запроса")
		return
	}

	if err := h.usecase.AttachToTestCase(ctx, id, req.TestCaseID); err != nil {
		response.DomainError(ctx, w, err)
		return
	}

	response.Success(w, map[string]string{"status": "attached"})
}
