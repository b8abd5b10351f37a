package admin

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/arleytruth/Magicwraptool-sub001/internal/middleware"
)

// Routes returns admin router
func (h *Handler) Routes(authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	if authMiddleware != nil {
		r.Use(authMiddleware)
	}
	r.Use(middleware.RequireAdmin())

	r.Route("/users/{id}", func(r chi.Router) {
		r.Get("/credits", h.UserCredits)
		r.Post("/credits/adjust", h.AdjustCredits)

		r.With(middleware.RequireOwner()).Patch("/role", h.SetRole)
	})

	r.Get("/credits/transactions", h.SearchTransactions)
	r.Get("/audit/logs", h.AuditLogs)

	return r
}
