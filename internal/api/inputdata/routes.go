package inputdata

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers input data routes
func RegisterRoutes(r chi.Router, h *Handler) {
	r.Route("/input-data", func(r chi.Router) {
		r.Post("/", h.Save)
		r.Get("/by-testcase/{testCaseId}", h.GetByTestCase)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.Get)
			r.Post("/attach", h.Attach)
		})
	})
}
