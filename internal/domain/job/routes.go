package job

import "github.com/go-chi/chi/v5"

// Register mounts the read and saved-flag routes. Submission is mounted by the generation handler.
func (h *Handler) Register(r chi.Router) {
	r.Get("/", h.List)
	r.Get("/saved", h.ListSaved)
	r.Get("/{id}", h.Get)
	r.Patch("/{id}/saved", h.SetSaved)
}
