package upload

import "github.com/go-chi/chi/v5"

// Register mounts upload routes.
func (h *Handler) Register(r chi.Router) {
	r.Post("/", h.Upload)
}
