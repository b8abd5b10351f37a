package user

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes returns the authenticated profile router
func (h *Handler) Routes(authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(authMiddleware)
	r.Get("/", h.Me)
	return r
}

// WebhookRoutes returns the identity provider webhook router
func (h *Handler) WebhookRoutes() chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.IdentityWebhook)
	return r
}
