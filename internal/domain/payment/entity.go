package payment

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// Status represents checkout session status
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusExpired   Status = "expired"
	StatusFailed    Status = "failed"
)

// Package is a purchasable bundle of credits.
type Package struct {
	ID          string `json:"id"`
	Credits     int64  `json:"credits"`
	AmountMinor int64  `json:"amount_minor"`
}

// Session is one hosted checkout attempt.
type Session struct {
	ID                uuid.UUID      `db:"id"`
	UserID            uuid.UUID      `db:"user_id"`
	ProviderSessionID sql.NullString `db:"provider_session_id"`
	PackageID         string         `db:"package_id"`
	Credits           int64          `db:"credits"`
	AmountMinor       int64          `db:"amount_minor"`
	Currency          string         `db:"currency"`
	Status            Status         `db:"status"`
	CheckoutURL       sql.NullString `db:"checkout_url"`
	CreatedAt         time.Time      `db:"created_at"`
	UpdatedAt         time.Time      `db:"updated_at"`
	CompletedAt       sql.NullTime   `db:"completed_at"`
}

// Metadata keys attached to the processor session and echoed back by the webhook.
const (
	MetaUserID    = "user_id"
	MetaCredits   = "credits"
	MetaPackageID = "package_id"
	MetaSessionID = "session_id"
)
