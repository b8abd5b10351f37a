package credit

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/arleytruth/Magicwraptool-sub001/internal/pkg/database"
)

const (
	constraintReference = "credit_transactions_reference_key"
	constraintUserSeq   = "credit_transactions_user_seq_key"
)

// Repository is the ledger store.
type Repository interface {
	// GetAccount returns nil when the user does not exist.
	GetAccount(ctx context.Context, userID uuid.UUID) (*Account, error)
	// Append commits t if the account is still at expectedVersion, filling t.CreatedAt.
	// Returns ErrConflict when the version moved and ErrDuplicateReference on a reused reference.
	Append(ctx context.Context, expectedVersion int64, t *Transaction) error
	// FindByReference returns nil when no transaction carries the reference.
	FindByReference(ctx context.Context, txType TxType, refType, refID string) (*Transaction, error)
	List(ctx context.Context, userID uuid.UUID, limit, offset int) ([]Transaction, error)
	Search(ctx context.Context, filters SearchFilters) ([]Transaction, error)
}

// PostgresRepository implements Repository with a compare-and-swap on users.ledger_version.
type PostgresRepository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const txColumns = `id, user_id, type, reference_type, reference_id, amount, balance_after, seq, metadata, created_at`

func (r *PostgresRepository) GetAccount(ctx context.Context, userID uuid.UUID) (*Account, error) {
	var a Account
	err := r.db.GetContext(ctx, &a, `SELECT id, credits, ledger_version FROM users WHERE id = $1`, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("credit repository get account: %w", err)
	}
	return &a, nil
}

func (r *PostgresRepository) Append(ctx context.Context, expectedVersion int64, t *Transaction) error {
	tx, err := r.db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return fmt.Errorf("credit repository begin: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE users
		SET credits = $3, ledger_version = ledger_version + 1, updated_at = NOW()
		WHERE id = $1 AND ledger_version = $2
	`, t.UserID, expectedVersion, t.BalanceAfter)
	if err != nil {
		return mapWriteError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("credit repository rows affected: %w", err)
	}
	if n == 0 {
		return ErrConflict
	}

	if len(t.Metadata) == 0 {
		t.Metadata = []byte(`{}`)
	}

	err = tx.QueryRowxContext(ctx, `
		INSERT INTO credit_transactions
			(id, user_id, type, reference_type, reference_id, amount, balance_after, seq, metadata)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at
	`, t.ID, t.UserID, t.Type, t.ReferenceType, t.ReferenceID, t.Amount, t.BalanceAfter, t.Seq, t.Metadata).Scan(&t.CreatedAt)
	if err != nil {
		return mapWriteError(err)
	}

	if err := tx.Commit(); err != nil {
		return mapWriteError(err)
	}
	return nil
}

func mapWriteError(err error) error {
	switch {
	case database.IsUniqueViolation(err, constraintReference):
		return ErrDuplicateReference
	case database.IsUniqueViolation(err, constraintUserSeq):
		return ErrConflict
	case database.IsCheckViolation(err):
		return ErrInsufficientCredits
	default:
		return fmt.Errorf("credit repository append: %w", err)
	}
}

func (r *PostgresRepository) FindByReference(ctx context.Context, txType TxType, refType, refID string) (*Transaction, error) {
	var t Transaction
	err := r.db.GetContext(ctx, &t, `
		SELECT `+txColumns+`
		FROM credit_transactions
		WHERE type = $1 AND reference_type = $2 AND reference_id = $3
	`, txType, refType, refID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("credit repository find by reference: %w", err)
	}
	return &t, nil
}

// List returns the user's history newest first.
func (r *PostgresRepository) List(ctx context.Context, userID uuid.UUID, limit, offset int) ([]Transaction, error) {
	items := []Transaction{}
	err := r.db.SelectContext(ctx, &items, `
		SELECT `+txColumns+`
		FROM credit_transactions
		WHERE user_id = $1
		ORDER BY seq DESC
		LIMIT $2 OFFSET $3
	`, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("credit repository list: %w", err)
	}
	return items, nil
}

func (r *PostgresRepository) Search(ctx context.Context, filters SearchFilters) ([]Transaction, error) {
	base := `SELECT ` + txColumns + ` FROM credit_transactions WHERE 1=1`
	args := []interface{}{}
	idx := 1

	if filters.UserID != nil {
		base += fmt.Sprintf(" AND user_id = $%d", idx)
		args = append(args, *filters.UserID)
		idx++
	}
	if filters.Type != nil {
		base += fmt.Sprintf(" AND type = $%d", idx)
		args = append(args, *filters.Type)
		idx++
	}
	if filters.ReferenceType != nil {
		base += fmt.Sprintf(" AND reference_type = $%d", idx)
		args = append(args, *filters.ReferenceType)
		idx++
	}
	if filters.ReferenceID != nil {
		base += fmt.Sprintf(" AND reference_id = $%d", idx)
		args = append(args, *filters.ReferenceID)
		idx++
	}
	if filters.DateFrom != nil {
		base += fmt.Sprintf(" AND created_at >= $%d", idx)
		args = append(args, *filters.DateFrom)
		idx++
	}
	if filters.DateTo != nil {
		base += fmt.Sprintf(" AND created_at <= $%d", idx)
		args = append(args, *filters.DateTo)
		idx++
	}

	base = strings.TrimSpace(base) + fmt.Sprintf(" ORDER BY created_at DESC, seq DESC LIMIT $%d OFFSET $%d", idx, idx+1)
	args = append(args, filters.Limit, filters.Offset)

	items := []Transaction{}
	if err := r.db.SelectContext(ctx, &items, base, args...); err != nil {
		return nil, fmt.Errorf("credit repository search: %w", err)
	}
	return items, nil
}
