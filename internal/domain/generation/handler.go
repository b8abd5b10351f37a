package generation

import (
	"errors"
	"net/http"

	"github.com/arleytruth/Magicwraptool-sub001/internal/domain/job"
	"github.com/arleytruth/Magicwraptool-sub001/internal/middleware"
	"github.com/arleytruth/Magicwraptool-sub001/internal/pkg/errorhandler"
	"github.com/arleytruth/Magicwraptool-sub001/internal/pkg/i18n"
	"github.com/arleytruth/Magicwraptool-sub001/internal/pkg/response"
	"github.com/arleytruth/Magicwraptool-sub001/internal/pkg/validator"
)

// Handler handles generation HTTP requests
type Handler struct {
	service *Service
}

// NewHandler creates generation handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Submit handles POST /jobs
// @Summary Debit credits and run one generation
// @Tags Jobs
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body SubmitRequest true "Generation request"
// @Success 201 {object} response.Response{data=job.Response}
// @Failure 400,402,422 {object} response.Response
// @Failure 502 {object} response.Response "Generation failed, credits refunded"
// @Router /jobs [post]
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	var req SubmitRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		errorhandler.BadRequest(w, r, i18n.MsgInvalidJSON)
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		errorhandler.Validation(w, r, errs)
		return
	}

	j, err := h.service.Submit(r.Context(), middleware.GetUserID(r.Context()), &req)
	if err != nil {
		if errors.Is(err, ErrGenerationFailed) && j != nil {
			errorhandler.HandleErrorWithDetails(w, r, err, map[string]string{
				"job_id": j.ID.String(),
				"status": string(j.Status),
			})
			return
		}
		errorhandler.HandleError(w, r, err)
		return
	}

	response.Created(w, job.ResponseFromEntity(j))
}
