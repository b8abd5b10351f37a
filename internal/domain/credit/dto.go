package credit

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// TransactionResponse is the public view of a ledger row.
type TransactionResponse struct {
	ID            uuid.UUID       `json:"id"`
	UserID        uuid.UUID       `json:"user_id"`
	Type          TxType          `json:"type"`
	ReferenceType string          `json:"reference_type,omitempty"`
	ReferenceID   string          `json:"reference_id,omitempty"`
	Amount        int64           `json:"amount"`
	BalanceAfter  int64           `json:"balance_after"`
	Metadata      json.RawMessage `json:"metadata,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

func TransactionResponseFromEntity(t *Transaction) TransactionResponse {
	resp := TransactionResponse{
		ID:           t.ID,
		UserID:       t.UserID,
		Type:         t.Type,
		Amount:       t.Amount,
		BalanceAfter: t.BalanceAfter,
		CreatedAt:    t.CreatedAt,
	}
	if t.ReferenceType != nil {
		resp.ReferenceType = *t.ReferenceType
	}
	if t.ReferenceID != nil {
		resp.ReferenceID = *t.ReferenceID
	}
	if len(t.Metadata) > 0 {
		resp.Metadata = json.RawMessage(t.Metadata)
	}
	return resp
}

func TransactionResponsesFromEntities(items []Transaction) []TransactionResponse {
	out := make([]TransactionResponse, 0, len(items))
	for i := range items {
		out = append(out, TransactionResponseFromEntity(&items[i]))
	}
	return out
}

// BalanceResponse is the caller's balance.
type BalanceResponse struct {
	Credits int64 `json:"credits"`
}
