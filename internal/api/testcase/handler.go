package testcase

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
	usecase   TestCaseUsecase
	validator *validator.Validator
}

func NewHandler(usecase TestCaseUsecase, validator *validator.Validator) *Handler {
	return &Handler{
		usecase:   usecase,
		validator: validator,
	}
}

// Generate handles POST /api/test-cases/generate
func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "GenerateTestCase")

	var req entity.GenerateTestCaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ctxzap.Error(ctx, "failed to decode request body", zap.Error(err))
		response.Error(w, http.StatusBadRequest, "некорректное тело запроса")
		return
	}

	if err := h.validator.ValidateGenerateTestCase(&req); err != nil {
		response.DomainError(ctx, w, err)
		return
	}

	ctxzap.Info(ctx, "generating test case", zap.String("llm_model", req.LLMModel))

	resp, err := h.usecase.Generate(ctx, &req)
	if err != nil {
		response.DomainError(ctx, w, err)
		return
	}

	response.Created(w, resp)
}

// Update handles POST /api/test-cases/{id}/update
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	testCaseID := chi.URLParam(r, "id")

	ctx = logger.AddFields(ctx,
		zap.String("test_case_id", testCaseID),
		zap.String("action", "UpdateTestCase"),
	)

	var req entity.UpdateTestCaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ctxzap.Error(ctx, "failed to decode request body", zap.Error(err))
		response.Error(w, http.StatusBadRequest, "некорректное тело запроса")
		return
	}

	if err := h.validator.ValidateUpdateTestCase(&req); err != nil {
		response.DomainError(ctx, w, err)
		return
	}

	resp, err := h.usecase.UpdateWithChanges(ctx, testCaseID, &req)
	if err != nil {
		response.DomainError(ctx, w, err)
		return
	}

	response.Success(w, resp)
}

// UpdateSteps handles PUT /api/test-cases/{id}/steps
func (h *Handler) UpdateSteps(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	testCaseID := chi.URLParam(r, "id")

	ctx = logger.AddFields(ctx,
		zap.String("test_case_id", testCaseID),
		zap.String("action", "UpdateTestCaseSteps"),
	)

	var steps []entity.UpdateStepsRequest
	if err := json.NewDecoder(r.Body).Decode(&steps); err != nil {
		ctxzap.Error(ctx, "failed to decode request body", zap.Error(err))
		response.Error(w, http.StatusBadRequest, "некорректное тело запроса")
		return
	}

	if err := h.validator.ValidateUpdateSteps(steps); err != nil {
		response.DomainError(ctx, w, err)
		return
	}

	testCase, err := h.usecase.UpdateSteps(ctx, testCaseID, steps)
	if err != nil {
		response.DomainError(ctx, w, err)
		return
	}

	response.Success(w, testCase)
}

// Get handles GET /api/test-cases/{id}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	testCaseID := chi.URLParam(r, "id")

	ctx = logger.AddFields(ctx,
		zap.String("test_case_id", testCaseID),
		zap.String("action", "GetTestCase"),
	)

	testCase, err := h.usecase.Get(ctx, testCaseID)
	if err != nil {
		response.DomainError(ctx, w, err)
		return
	}

	response.Success(w, testCase)
}

// GetByNumber handles GET /api/test-cases/by-number/{number}
func (h *Handler) GetByNumber(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	number := chi.URLParam(r, "number")

	ctx = logger.AddFields(ctx,
		zap.String("number", number),
		zap.String("action", "GetTestCaseByNumber"),
	)

	testCase, err := h.usecase.GetByNumber(ctx, number)
	if err != nil {
		response.DomainError(ctx, w, err)
		return
	}

	response.Success(w, testCase)
}

// List handles GET /api/test-cases?status=...
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "ListTestCases")

	var status *entity.TestCaseStatus
	if raw := r.URL.Query().Get("status"); raw != "" {
		s := entity.TestCaseStatus(raw)
		status = &s
	}

	testCases, err := h.usecase.List(ctx, status)
	if err != nil {
		response.DomainError(ctx, w, err)
		return
	}

	response.Success(w, testCases)
}

// Delete handles DELETE /api/test-cases/{id}
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	testCaseID := chi.URLParam(r, "id")

	ctx = logger.AddFields(ctx,
		zap.String("test_case_id", testCaseID),
		zap.String("action", "DeleteTestCase"),
	)

	if err := h.usecase.Delete(ctx, testCaseID); err != nil {
		response.DomainError(ctx, w, err)
		return
	}

	response.NoContent(w)
}
