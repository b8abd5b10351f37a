package payment

import (
	"time"

	"github.com/google/uuid"
)

// CheckoutRequest is the body of POST /payments/checkout
type CheckoutRequest struct {
	PackageID string `json:"package_id" validate:"required,max=64"`
}

// CheckoutResponse points the client at the hosted checkout page.
type CheckoutResponse struct {
	SessionID   uuid.UUID `json:"session_id"`
	CheckoutURL string    `json:"checkout_url"`
}

// SessionResponse is the public view of a checkout session.
type SessionResponse struct {
	ID          uuid.UUID  `json:"id"`
	PackageID   string     `json:"package_id"`
	Credits     int64      `json:"credits"`
	AmountMinor int64      `json:"amount_minor"`
	Currency    string     `json:"currency"`
	Status      Status     `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

func SessionResponseFromEntity(s *Session) SessionResponse {
	resp := SessionResponse{
		ID:          s.ID,
		PackageID:   s.PackageID,
		Credits:     s.Credits,
		AmountMinor: s.AmountMinor,
		Currency:    s.Currency,
		Status:      s.Status,
		CreatedAt:   s.CreatedAt,
	}
	if s.CompletedAt.Valid {
		t := s.CompletedAt.Time
		resp.CompletedAt = &t
	}
	return resp
}
