package user

import (
	"io"
	"net/http"

	"github.com/arleytruth/Magicwraptool-sub001/internal/middleware"
	"github.com/arleytruth/Magicwraptool-sub001/internal/pkg/errorhandler"
	"github.com/arleytruth/Magicwraptool-sub001/internal/pkg/identity"
	"github.com/arleytruth/Magicwraptool-sub001/internal/pkg/logger"
	"github.com/arleytruth/Magicwraptool-sub001/internal/pkg/response"
)

const maxWebhookBody = 1 << 20

// Handler handles user HTTP requests
type Handler struct {
	service  *Service
	verifier *identity.Verifier
}

// NewHandler creates user handler
func NewHandler(service *Service, verifier *identity.Verifier) *Handler {
	return &Handler{service: service, verifier: verifier}
}

// Me handles GET /me
// @Summary Current user profile and credit balance
// @Tags User
// @Security BearerAuth
// @Success 200 {object} response.Response{data=MeResponse}
// @Router /me [get]
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	u, err := h.service.Get(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		errorhandler.HandleError(w, r, err)
		return
	}
	response.OK(w, MeResponseFromEntity(u))
}

// IdentityWebhook handles POST /webhooks/identity
func (h *Handler) IdentityWebhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		errorhandler.HandleError(w, r, ErrInvalidPayload)
		return
	}

	if h.verifier == nil {
		errorhandler.HandleError(w, r, ErrInvalidSignature)
		return
	}
	if err := h.verifier.Verify(r.Header, payload); err != nil {
		logger.FromContext(r.Context()).Warn().Err(err).Msg("Identity webhook rejected")
		errorhandler.HandleError(w, r, ErrInvalidSignature)
		return
	}

	event, err := identity.ParseEvent(payload)
	if err != nil {
		errorhandler.HandleError(w, r, ErrInvalidPayload)
		return
	}

	if err := h.service.SyncFromIdentity(r.Context(), event); err != nil {
		errorhandler.HandleError(w, r, err)
		return
	}

	response.OK(w, map[string]bool{"received": true})
}
