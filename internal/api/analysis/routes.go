package analysis

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers analysis tool routes
func RegisterRoutes(r chi.Router, h *Handler) {
	r.Route("/analyze", func(r chi.Router) {
		r.Post("/", h.Analyze)
		r.Get("/budget/export", h.ExportBudget)
	})
}
