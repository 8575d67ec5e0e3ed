package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all earnings routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/earnings", func(r chi.Router) {
		r.Get("/", h.HandleGetDay)
		r.Get("/stats", h.HandleGetStats)
		r.Get("/symbol/{symbol}", h.HandleGetSymbol)

		// Stateless calculators
		r.Post("/surprise", h.HandleComputeSurprise)
		r.Post("/sanitize", h.HandleSanitize)
	})
}
