package payment

import (
	"io"
	"net/http"
	"strconv"

	"github.com/arleytruth/Magicwraptool-sub001/internal/middleware"
	"github.com/arleytruth/Magicwraptool-sub001/internal/pkg/checkout"
	"github.com/arleytruth/Magicwraptool-sub001/internal/pkg/errorhandler"
	"github.com/arleytruth/Magicwraptool-sub001/internal/pkg/i18n"
	"github.com/arleytruth/Magicwraptool-sub001/internal/pkg/logger"
	"github.com/arleytruth/Magicwraptool-sub001/internal/pkg/response"
	"github.com/arleytruth/Magicwraptool-sub001/internal/pkg/validator"
)

const maxWebhookBody = 1 << 20

// Handler handles payment HTTP requests
type Handler struct {
	service  *Service
	verifier *checkout.WebhookVerifier
}

// NewHandler creates payment handler
func NewHandler(service *Service, verifier *checkout.WebhookVerifier) *Handler {
	return &Handler{service: service, verifier: verifier}
}

// ListPackages handles GET /credits/packages
func (h *Handler) ListPackages(w http.ResponseWriter, r *http.Request) {
	response.OK(w, h.service.Packages())
}

// CreateCheckout handles POST /payments/checkout
// @Summary Start a hosted checkout for a credit package
// @Tags Payments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CheckoutRequest true "Package"
// @Success 201 {object} response.Response{data=CheckoutResponse}
// @Failure 400,422,502 {object} response.Response
// @Router /payments/checkout [post]
func (h *Handler) CreateCheckout(w http.ResponseWriter, r *http.Request) {
	var req CheckoutRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		errorhandler.BadRequest(w, r, i18n.MsgInvalidJSON)
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		errorhandler.Validation(w, r, errs)
		return
	}

	session, err := h.service.CreateCheckout(r.Context(), middleware.GetUserID(r.Context()), req.PackageID)
	if err != nil {
		errorhandler.HandleError(w, r, err)
		return
	}
	response.Created(w, CheckoutResponse{SessionID: session.ID, CheckoutURL: session.CheckoutURL.String})
}

// List handles GET /payments
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	items, err := h.service.List(r.Context(), middleware.GetUserID(r.Context()), limit, offset)
	if err != nil {
		errorhandler.HandleError(w, r, err)
		return
	}

	out := make([]SessionResponse, 0, len(items))
	for i := range items {
		out = append(out, SessionResponseFromEntity(&items[i]))
	}
	response.OK(w, out)
}

// Webhook handles POST /webhooks/payments
func (h *Handler) Webhook(w http.ResponseWriter, r *http.Request) {
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
		logger.FromContext(r.Context()).Warn().Err(err).Msg("Payment webhook rejected")
		errorhandler.HandleError(w, r, ErrInvalidSignature)
		return
	}

	event, err := checkout.ParseEvent(payload)
	if err != nil {
		errorhandler.HandleError(w, r, ErrInvalidPayload)
		return
	}

	if err := h.service.HandleEvent(r.Context(), event); err != nil {
		errorhandler.HandleError(w, r, err)
		return
	}
	response.OK(w, map[string]bool{"received": true})
}
