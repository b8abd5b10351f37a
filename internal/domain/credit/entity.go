package credit

import (
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx/types"
)

// TxType is the closed set of ledger transaction types.
type TxType string

const (
	TxTypePurchase    TxType = "purchase"
	TxTypeConsumption TxType = "consumption"
	TxTypeRefund      TxType = "refund"
	TxTypeAdjustment  TxType = "adjustment"
)

// Valid reports whether t is a known type.
func (t TxType) Valid() bool {
	switch t {
	case TxTypePurchase, TxTypeConsumption, TxTypeRefund, TxTypeAdjustment:
		return true
	}
	return false
}

// ValidAmount enforces the sign rule of each type:
// purchase and refund credit, consumption debits, adjustment may go either way but not zero.
func (t TxType) ValidAmount(amount int64) bool {
	switch t {
	case TxTypePurchase, TxTypeRefund:
		return amount > 0
	case TxTypeConsumption:
		return amount < 0
	case TxTypeAdjustment:
		return amount != 0
	}
	return false
}

// MaxAmount bounds the magnitude of a single transaction.
const MaxAmount int64 = 1_000_000_000

// Reference types naming what caused a transaction.
const (
	RefTypeJob            = "job"
	RefTypePaymentSession = "payment_session"
	RefTypeSignup         = "signup"
	RefTypeAdmin          = "admin"
)

// Transaction is one immutable ledger row.
type Transaction struct {
	ID            uuid.UUID      `db:"id" json:"id"`
	UserID        uuid.UUID      `db:"user_id" json:"user_id"`
	Type          TxType         `db:"type" json:"type"`
	ReferenceType *string        `db:"reference_type" json:"reference_type,omitempty"`
	ReferenceID   *string        `db:"reference_id" json:"reference_id,omitempty"`
	Amount        int64          `db:"amount" json:"amount"`
	BalanceAfter  int64          `db:"balance_after" json:"balance_after"`
	Seq           int64          `db:"seq" json:"seq"`
	Metadata      types.JSONText `db:"metadata" json:"metadata"`
	CreatedAt     time.Time      `db:"created_at" json:"created_at"`
}

// Account is the balance half of a user's ledger. Version advances by one per committed transaction.
type Account struct {
	UserID  uuid.UUID `db:"id"`
	Credits int64     `db:"credits"`
	Version int64     `db:"ledger_version"`
}

// Entry is a request to record one transaction.
type Entry struct {
	UserID        uuid.UUID
	Type          TxType
	Amount        int64
	ReferenceType string
	ReferenceID   string
	Metadata      map[string]any
}

// HasReference reports whether the entry is idempotent by reference.
func (e Entry) HasReference() bool {
	return e.ReferenceID != ""
}

// SearchFilters provides admin-facing transaction filtering.
type SearchFilters struct {
	UserID        *uuid.UUID
	Type          *TxType
	ReferenceType *string
	ReferenceID   *string
	DateFrom      *time.Time
	DateTo        *time.Time
	Limit         int
	Offset        int
}

func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
