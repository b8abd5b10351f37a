package content

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/arleytruth/Magicwraptool-sub001/internal/pkg/errorhandler"
	"github.com/arleytruth/Magicwraptool-sub001/internal/pkg/response"
)

// Handler handles content HTTP requests
type Handler struct {
	service *Service
}

// NewHandler creates content handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Get handles GET /content/{source}/{slug}
// @Summary Published CMS document by slug
// @Tags Content
// @Produce json
// @Param source path string true "pages or posts"
// @Param slug path string true "Document slug"
// @Success 200 {object} response.Response
// @Failure 400,404,502 {object} response.Response
// @Router /content/{source}/{slug} [get]
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	doc, err := h.service.Get(r.Context(), chi.URLParam(r, "source"), chi.URLParam(r, "slug"))
	if err != nil {
		errorhandler.HandleError(w, r, err)
		return
	}
	response.OK(w, doc)
}

// Register mounts content routes.
func (h *Handler) Register(r chi.Router) {
	r.Get("/{source}/{slug}", h.Get)
}
