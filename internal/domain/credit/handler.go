package credit

import (
	"net/http"
	"strconv"

	"github.com/arleytruth/Magicwraptool-sub001/internal/middleware"
	"github.com/arleytruth/Magicwraptool-sub001/internal/pkg/errorhandler"
	"github.com/arleytruth/Magicwraptool-sub001/internal/pkg/response"
)

// Handler serves the caller's own ledger.
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Balance handles GET /credits/balance
func (h *Handler) Balance(w http.ResponseWriter, r *http.Request) {
	balance, err := h.service.Balance(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		errorhandler.HandleError(w, r, err)
		return
	}
	response.OK(w, BalanceResponse{Credits: balance})
}

// ListTransactions handles GET /credits/transactions
// @Summary Credit history, newest first
// @Tags Credits
// @Security BearerAuth
// @Param limit query int false "Page size (max 100)"
// @Param offset query int false "Offset"
// @Success 200 {object} response.Response{data=[]TransactionResponse}
// @Router /credits/transactions [get]
func (h *Handler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	limit, offset := PageParams(r)
	items, err := h.service.List(r.Context(), middleware.GetUserID(r.Context()), limit, offset)
	if err != nil {
		errorhandler.HandleError(w, r, err)
		return
	}

	limit, offset = ClampPage(limit, offset)
	response.WithMeta(w, TransactionResponsesFromEntities(items), response.Meta{
		Limit:   limit,
		Offset:  offset,
		Count:   len(items),
		HasNext: len(items) == limit,
	})
}

// PageParams reads limit and offset query parameters. Missing or malformed values are zero.
func PageParams(r *http.Request) (int, int) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	return limit, offset
}
