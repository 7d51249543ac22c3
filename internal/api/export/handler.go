package export

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/segaai/testcase-backend/internal/pkg/formatter"
	"github.com/segaai/testcase-backend/internal/pkg/logger"
	"github.com/segaai/testcase-backend/internal/pkg/response"
)

type Handler struct {
	usecase ExportUsecase
}

func NewHandler(usecase ExportUsecase) *Handler {
	return &Handler{usecase: usecase}
}

// Excel handles GET /api/export/testcase/{id}/excel
func (h *Handler) Excel(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	testCaseID := chi.URLParam(r, "id")

	ctx = logger.AddFields(ctx,
		zap.String("test_case_id", testCaseID),
		zap.String("action", "ExportExcel"),
	)

	data, err := h.usecase.ToExcel(ctx, testCaseID)
	if err != nil {
		response.DomainError(ctx, w, err)
		return
	}

	response.File(w, formatter.ExcelContentType, fileName("testcase", testCaseID, formatter.ExcelFileExtension), data)
}

// PDF handles GET /api/export/testcase/{id}/pdf
func (h *Handler) PDF(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	testCaseID := chi.URLParam(r, "id")

	ctx = logger.AddFields(ctx,
		zap.String("test_case_id", testCaseID),
		zap.String("action", "ExportPDF"),
	)

	data, err := h.usecase.ToPDF(ctx, testCaseID)
	if err != nil {
		response.DomainError(ctx, w, err)
		return
	}

	response.File(w, formatter.PDFContentType, fileName("testcase", testCaseID, formatter.PDFFileExtension), data)
}

// CSV handles GET /api/export/datapool/{id}/csv
func (h *Handler) CSV(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	dataPoolID := chi.URLParam(r, "id")

	ctx = logger.AddFields(ctx,
		zap.String("data_pool_id", dataPoolID),
		zap.String("action", "ExportCSV"),
	)

	data, err := h.usecase.ToCSV(ctx, dataPoolID)
	if err != nil {
		response.DomainError(ctx, w, err)
		return
	}

	response.File(w, formatter.CSVContentType, fileName("datapool", dataPoolID, formatter.CSVFileExtension), data)
}

// Code handles GET /api/export/testcase/{id}/code
func (h *Handler) Code(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	testCaseID := chi.URLParam(r, "id")

	ctx = logger.AddFields(ctx,
		zap.String("test_case_id", testCaseID),
		zap.String("action", "ExportTestCode"),
	)

	data, err := h.usecase.TestCode(ctx, testCaseID)
	if err != nil {
		response.DomainError(ctx, w, err)
		return
	}

	response.File(w, formatter.JavaContentType, fileName("testcase", testCaseID, formatter.JavaFileExtension), data)
}

// Zephyr handles POST /api/export/testcase/{id}/zephyr
func (h *Handler) Zephyr(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	testCaseID := chi.URLParam(r, "id")

	ctx = logger.AddFields(ctx,
		zap.String("test_case_id", testCaseID),
		zap.String("action", "ExportZephyr"),
	)

	if err := h.usecase.ToZephyr(ctx, testCaseID); err != nil {
		response.DomainError(ctx, w, err)
		return
	}

	response.Success(w, map[string]string{"status": "exported"})
}

func fileName(kind, id, ext string) string {
	return fmt.Sprintf("%s-%s%s", kind, id, ext)
}
