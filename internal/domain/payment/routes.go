package payment

import "github.com/go-chi/chi/v5"

// Register mounts the authenticated payment routes.
func (h *Handler) Register(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/checkout", h.CreateCheckout)
}

// WebhookRoutes returns the payment processor webhook router
func (h *Handler) WebhookRoutes() chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.Webhook)
	return r
}
