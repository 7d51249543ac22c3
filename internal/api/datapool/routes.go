package datapool

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers data pool routes
func RegisterRoutes(r chi.Router, h *Handler) {
	r.Route("/data-pools", func(r chi.Router) {
		r.Post("/generate", h.Generate)
		r.Post("/upload", h.Upload)
		r.Get("/by-testcase/{testCaseId}", h.ListByTestCase)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.Get)
			r.Delete("/", h.Delete)
		})
	})
}
