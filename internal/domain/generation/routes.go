package generation

import "github.com/go-chi/chi/v5"

// Register mounts job submission next to the job read routes.
func (h *Handler) Register(r chi.Router) {
	r.Post("/", h.Submit)
}
