package testcase

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers test case routes
func RegisterRoutes(r chi.Router, h *Handler) {
	r.Route("/test-cases", func(r chi.Router) {
		r.Post("/generate", h.Generate)
		r.Get("/", h.List)
		r.Get("/by-number/{number}", h.GetByNumber)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.Get)
			r.Delete("/", h.Delete)
			r.Post("/update", h.Update)
			r.Put("/steps", h.UpdateSteps)
		})
	})
}
