package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Repository defines user data access interface
type Repository interface {
	// Upsert inserts or refreshes a profile keyed by external id and reports whether it was inserted.
	Upsert(ctx context.Context, p Profile) (*User, bool, error)
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetByExternalID(ctx context.Context, externalID string) (*User, error)
	MarkDeleted(ctx context.Context, externalID string) error
	UpdateRole(ctx context.Context, id uuid.UUID, role Role) error
	// ClearSignupBonus records that the owed welcome credit was granted.
	ClearSignupBonus(ctx context.Context, id uuid.UUID) error
}

type repository struct {
	db *sqlx.DB
}

// NewRepository creates new user repository
func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

const userColumns = `id, external_id, email, email_verified, name, avatar_url, role, status,
	credits, ledger_version, signup_bonus_due, created_at, updated_at, deleted_at`

type upsertRow struct {
	User
	Inserted bool `db:"inserted"`
}

// Upsert applies the role claim on insert, and on update only when the provider sent one.
func (r *repository) Upsert(ctx context.Context, p Profile) (*User, bool, error) {
	query := `
		INSERT INTO users (id, external_id, email, email_verified, name, avatar_url, role, signup_bonus_due)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $9)
		ON CONFLICT (external_id) DO UPDATE SET
			email = EXCLUDED.email,
			email_verified = EXCLUDED.email_verified,
			name = EXCLUDED.name,
			avatar_url = EXCLUDED.avatar_url,
			role = CASE WHEN $8 THEN EXCLUDED.role ELSE users.role END,
			updated_at = NOW()
		RETURNING ` + userColumns + `, (xmax = 0) AS inserted
	`

	var row upsertRow
	err := r.db.GetContext(ctx, &row, query,
		uuid.New(),
		p.ExternalID,
		p.Email,
		p.EmailVerified,
		p.Name,
		p.AvatarURL,
		NormalizeRole(p.RoleClaim),
		p.RoleClaim != "",
		p.SignupBonus,
	)
	if err != nil {
		return nil, false, fmt.Errorf("user repository upsert: %w", err)
	}
	u := row.User
	return &u, row.Inserted, nil
}

// GetByID returns user by ID
func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	var u User
	err := r.db.GetContext(ctx, &u, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("user repository get: %w", err)
	}
	return &u, nil
}

// GetByExternalID returns user by identity provider id
func (r *repository) GetByExternalID(ctx context.Context, externalID string) (*User, error) {
	var u User
	err := r.db.GetContext(ctx, &u, `SELECT `+userColumns+` FROM users WHERE external_id = $1`, externalID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("user repository get by external id: %w", err)
	}
	return &u, nil
}

// MarkDeleted soft deletes a user. Unknown external ids are ignored.
func (r *repository) MarkDeleted(ctx context.Context, externalID string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE users SET status = 'deleted', deleted_at = NOW(), updated_at = NOW()
		WHERE external_id = $1 AND status <> 'deleted'
	`, externalID)
	if err != nil {
		return fmt.Errorf("user repository mark deleted: %w", err)
	}
	return nil
}

// UpdateRole sets the role of a user
func (r *repository) UpdateRole(ctx context.Context, id uuid.UUID, role Role) error {
	res, err := r.db.ExecContext(ctx, `UPDATE users SET role = $2, updated_at = NOW() WHERE id = $1`, id, role)
	if err != nil {
		return fmt.Errorf("user repository update role: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("user repository update role: %w", err)
	}
	if n == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *repository) ClearSignupBonus(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, `UPDATE users SET signup_bonus_due = 0, updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("user repository clear signup bonus: %w", err)
	}
	return nil
}
