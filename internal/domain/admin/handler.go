package admin

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/arleytruth/Magicwraptool-sub001/internal/domain/credit"
	"github.com/arleytruth/Magicwraptool-sub001/internal/domain/user"
	"github.com/arleytruth/Magicwraptool-sub001/internal/middleware"
	"github.com/arleytruth/Magicwraptool-sub001/internal/pkg/errorhandler"
	"github.com/arleytruth/Magicwraptool-sub001/internal/pkg/i18n"
	"github.com/arleytruth/Magicwraptool-sub001/internal/pkg/response"
	"github.com/arleytruth/Magicwraptool-sub001/internal/pkg/validator"
)

// Handler handles admin HTTP requests
type Handler struct {
	service *Service
}

// NewHandler creates admin handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// UserCredits handles GET /admin/users/{id}/credits
func (h *Handler) UserCredits(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDParam(w, r)
	if !ok {
		return
	}

	balance, err := h.service.Balance(r.Context(), userID)
	if err != nil {
		errorhandler.HandleError(w, r, err)
		return
	}
	response.OK(w, BalanceResponse{UserID: userID, Credits: balance})
}

// AdjustCredits handles POST /admin/users/{id}/credits/adjust
// @Summary Manual credit adjustment
// @Tags Admin
// @Security BearerAuth
// @Param body body AdjustCreditsRequest true "Adjustment"
// @Success 201 {object} response.Response{data=credit.TransactionResponse}
// @Failure 402,404,409,422 {object} response.Response
// @Router /admin/users/{id}/credits/adjust [post]
func (h *Handler) AdjustCredits(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDParam(w, r)
	if !ok {
		return
	}

	var req AdjustCreditsRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		errorhandler.BadRequest(w, r, i18n.MsgInvalidJSON)
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		errorhandler.Validation(w, r, errs)
		return
	}

	tx, err := h.service.AdjustCredits(r.Context(), actorFromRequest(r), userID, &req)
	if err != nil {
		errorhandler.HandleError(w, r, err)
		return
	}
	response.Created(w, credit.TransactionResponseFromEntity(tx))
}

// SearchTransactions handles GET /admin/credits/transactions
func (h *Handler) SearchTransactions(w http.ResponseWriter, r *http.Request) {
	filters, errs := parseSearchFilters(r)
	if errs != nil {
		errorhandler.Validation(w, r, errs)
		return
	}

	items, err := h.service.SearchTransactions(r.Context(), filters)
	if err != nil {
		errorhandler.HandleError(w, r, err)
		return
	}

	limit, offset := credit.ClampPage(filters.Limit, filters.Offset)
	response.WithMeta(w, credit.TransactionResponsesFromEntities(items), response.Meta{
		Limit:   limit,
		Offset:  offset,
		Count:   len(items),
		HasNext: len(items) == limit,
	})
}

// SetRole handles PATCH /admin/users/{id}/role
func (h *Handler) SetRole(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDParam(w, r)
	if !ok {
		return
	}

	var req SetRoleRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		errorhandler.BadRequest(w, r, i18n.MsgInvalidJSON)
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		errorhandler.Validation(w, r, errs)
		return
	}

	if err := h.service.SetRole(r.Context(), actorFromRequest(r), userID, user.Role(req.Role)); err != nil {
		errorhandler.HandleError(w, r, err)
		return
	}
	response.OK(w, map[string]string{"user_id": userID.String(), "role": req.Role})
}

// AuditLogs handles GET /admin/audit/logs
func (h *Handler) AuditLogs(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := AuditFilter{
		Action:     q.Get("action"),
		EntityType: q.Get("entity_type"),
	}
	filter.Limit, filter.Offset = credit.PageParams(r)
	if raw := q.Get("user_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			errorhandler.Validation(w, r, map[string]string{"user_id": "Invalid value"})
			return
		}
		filter.EntityID = &id
	}

	items, err := h.service.AuditLogs(r.Context(), filter)
	if err != nil {
		errorhandler.HandleError(w, r, err)
		return
	}
	response.OK(w, AuditLogResponsesFromEntities(items))
}

func userIDParam(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		errorhandler.BadRequest(w, r, i18n.MsgInvalidID)
		return uuid.Nil, false
	}
	return id, true
}

func actorFromRequest(r *http.Request) Actor {
	return Actor{
		ID:        middleware.GetUserID(r.Context()),
		IPAddress: r.RemoteAddr,
		UserAgent: r.UserAgent(),
	}
}

func parseSearchFilters(r *http.Request) (credit.SearchFilters, map[string]string) {
	q := r.URL.Query()
	errs := map[string]string{}
	var filters credit.SearchFilters

	if raw := q.Get("user_id"); raw != "" {
		if id, err := uuid.Parse(raw); err == nil {
			filters.UserID = &id
		} else {
			errs["user_id"] = "Invalid value"
		}
	}
	if raw := q.Get("type"); raw != "" {
		t := credit.TxType(raw)
		if t.Valid() {
			filters.Type = &t
		} else {
			errs["type"] = "Invalid transaction type"
		}
	}
	if raw := q.Get("reference_type"); raw != "" {
		filters.ReferenceType = &raw
	}
	if raw := q.Get("reference_id"); raw != "" {
		filters.ReferenceID = &raw
	}
	for _, field := range []string{"from", "to"} {
		raw := q.Get(field)
		if raw == "" {
			continue
		}
		ts, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			errs[field] = "Invalid RFC3339 timestamp"
			continue
		}
		if field == "from" {
			filters.DateFrom = &ts
		} else {
			filters.DateTo = &ts
		}
	}
	filters.Limit, _ = strconv.Atoi(q.Get("limit"))
	filters.Offset, _ = strconv.Atoi(q.Get("offset"))

	if len(errs) > 0 {
		return filters, errs
	}
	return filters, nil
}
