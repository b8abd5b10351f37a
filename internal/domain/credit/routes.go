package credit

import (
	"github.com/go-chi/chi/v5"
)

// Register mounts the caller's ledger endpoints on an authenticated router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/balance", h.Balance)
	r.Get("/transactions", h.ListTransactions)
}
