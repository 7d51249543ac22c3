package export

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers export routes
func RegisterRoutes(r chi.Router, h *Handler) {
	r.Route("/export", func(r chi.Router) {
		r.Route("/testcase/{id}", func(r chi.Router) {
			r.Get("/excel", h.Excel)
			r.Get("/pdf", h.PDF)
			r.Get("/code", h.Code)
			r.Post("/zephyr", h.Zephyr)
		})

		r.Get("/datapool/{id}/csv", h.CSV)
	})
}
