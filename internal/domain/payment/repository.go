package payment

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Repository defines checkout session data access
type Repository interface {
	Create(ctx context.Context, s *Session) error
	// AttachProvider stores the processor's id and redirect URL on a pending session.
	AttachProvider(ctx context.Context, id uuid.UUID, providerSessionID, checkoutURL string) error
	// GetByProviderID returns nil when no session carries the provider id.
	GetByProviderID(ctx context.Context, providerSessionID string) (*Session, error)
	// SetStatus moves a session to status if it is still pending.
	SetStatus(ctx context.Context, id uuid.UUID, status Status) (bool, error)
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]Session, error)
}

type repository struct {
	db *sqlx.DB
}

// NewRepository creates payment repository
func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

const sessionColumns = `id, user_id, provider_session_id, package_id, credits, amount_minor, currency,
	status, checkout_url, created_at, updated_at, completed_at`

func (r *repository) Create(ctx context.Context, s *Session) error {
	err := r.db.QueryRowxContext(ctx, `
		INSERT INTO payment_sessions (id, user_id, package_id, credits, amount_minor, currency, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at
	`, s.ID, s.UserID, s.PackageID, s.Credits, s.AmountMinor, s.Currency, s.Status).Scan(&s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return fmt.Errorf("payment repository create: %w", err)
	}
	return nil
}

func (r *repository) AttachProvider(ctx context.Context, id uuid.UUID, providerSessionID, checkoutURL string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE payment_sessions
		SET provider_session_id = $2, checkout_url = $3, updated_at = NOW()
		WHERE id = $1
	`, id, providerSessionID, checkoutURL)
	if err != nil {
		return fmt.Errorf("payment repository attach provider: %w", err)
	}
	return nil
}

func (r *repository) GetByProviderID(ctx context.Context, providerSessionID string) (*Session, error) {
	var s Session
	err := r.db.GetContext(ctx, &s, `SELECT `+sessionColumns+` FROM payment_sessions WHERE provider_session_id = $1`, providerSessionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("payment repository get: %w", err)
	}
	return &s, nil
}

func (r *repository) SetStatus(ctx context.Context, id uuid.UUID, status Status) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE payment_sessions
		SET status = $2,
			completed_at = CASE WHEN $2 = 'completed' THEN NOW() ELSE completed_at END,
			updated_at = NOW()
		WHERE id = $1 AND status = 'pending'
	`, id, status)
	if err != nil {
		return false, fmt.Errorf("payment repository set status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("payment repository set status: %w", err)
	}
	return n > 0, nil
}

func (r *repository) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]Session, error) {
	items := []Session{}
	err := r.db.SelectContext(ctx, &items, `
		SELECT `+sessionColumns+`
		FROM payment_sessions
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("payment repository list: %w", err)
	}
	return items, nil
}
