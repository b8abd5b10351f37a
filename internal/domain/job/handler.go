package job

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/arleytruth/Magicwraptool-sub001/internal/middleware"
	"github.com/arleytruth/Magicwraptool-sub001/internal/pkg/errorhandler"
	"github.com/arleytruth/Magicwraptool-sub001/internal/pkg/i18n"
	"github.com/arleytruth/Magicwraptool-sub001/internal/pkg/response"
	"github.com/arleytruth/Magicwraptool-sub001/internal/pkg/validator"
)

// Handler handles job HTTP requests
type Handler struct {
	service *Service
}

// NewHandler creates job handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// List handles GET /jobs
// @Summary Caller's jobs, newest first
// @Tags Jobs
// @Security BearerAuth
// @Success 200 {object} response.Response{data=[]Response}
// @Router /jobs [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, false)
}

// ListSaved handles GET /jobs/saved
func (h *Handler) ListSaved(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, true)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request, savedOnly bool) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	userID := middleware.GetUserID(r.Context())

	var (
		items []Job
		err   error
	)
	if savedOnly {
		items, err = h.service.ListSaved(r.Context(), userID, limit, offset)
	} else {
		items, err = h.service.List(r.Context(), userID, limit, offset)
	}
	if err != nil {
		errorhandler.HandleError(w, r, err)
		return
	}

	limit, offset = clampPage(limit, offset)
	response.WithMeta(w, ResponsesFromEntities(items), response.Meta{
		Limit:   limit,
		Offset:  offset,
		Count:   len(items),
		HasNext: len(items) == limit,
	})
}

// Get handles GET /jobs/{id}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		errorhandler.BadRequest(w, r, i18n.MsgInvalidID)
		return
	}

	j, err := h.service.Get(r.Context(), middleware.GetUserID(r.Context()), id)
	if err != nil {
		errorhandler.HandleError(w, r, err)
		return
	}
	response.OK(w, ResponseFromEntity(j))
}

// SetSaved handles PATCH /jobs/{id}/saved
// @Summary Flag or unflag a job as saved
// @Tags Jobs
// @Security BearerAuth
// @Param request body SetSavedRequest true "Saved flag"
// @Success 200 {object} response.Response{data=Response}
// @Failure 400,403,404,422 {object} response.Response
// @Router /jobs/{id}/saved [patch]
func (h *Handler) SetSaved(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		errorhandler.BadRequest(w, r, i18n.MsgInvalidID)
		return
	}

	var req SetSavedRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		errorhandler.BadRequest(w, r, i18n.MsgInvalidJSON)
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		errorhandler.Validation(w, r, errs)
		return
	}

	j, err := h.service.SetSaved(r.Context(), middleware.GetUserID(r.Context()), id, *req.Saved)
	if err != nil {
		errorhandler.HandleError(w, r, err)
		return
	}
	response.OK(w, ResponseFromEntity(j))
}
