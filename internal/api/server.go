package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	datapoolapi "github.com/segaai/testcase-backend/internal/api/datapool"
	"github.com/segaai/testcase-backend/internal/api/docs"
	exportapi "github.com/segaai/testcase-backend/internal/api/export"
	historyapi "github.com/segaai/testcase-backend/internal/api/history"
	inputdataapi "github.com/segaai/testcase-backend/internal/api/inputdata"
	"github.com/segaai/testcase-backend/internal/api/middleware"
	testcaseapi "github.com/segaai/testcase-backend/internal/api/testcase"
)

// Handlers groups the per-resource HTTP handlers mounted by the router
type Handlers struct {
	TestCase  *testcaseapi.Handler
	InputData *inputdataapi.Handler
	DataPool  *datapoolapi.Handler
	History   *historyapi.Handler
	Export    *exportapi.Handler
}

// SetupRouter creates and configures the HTTP router
func SetupRouter(handlers *Handlers, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	// Middleware stack
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CORS)
	// Generation runs up to three sequential LLM round trips.
	r.Use(chimiddleware.Timeout(5 * time.Minute))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy"}`))
	})

	docs.RegisterRoutes(r)

	r.Route("/api", func(r chi.Router) {
		testcaseapi.RegisterRoutes(r, handlers.TestCase)
		inputdataapi.RegisterRoutes(r, handlers.InputData)
		datapoolapi.RegisterRoutes(r, handlers.DataPool)
		historyapi.RegisterRoutes(r, handlers.History)
		exportapi.RegisterRoutes(r, handlers.Export)
	})

	return r
}
