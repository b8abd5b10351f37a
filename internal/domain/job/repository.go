package job

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Repository defines job data access
type Repository interface {
	Create(ctx context.Context, j *Job) error
	// GetByID returns nil when the job does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*Job, error)
	// Transition moves the job from -> to only if it is still in from.
	// Returns ok=false when no row matched.
	Transition(ctx context.Context, id uuid.UUID, from, to Status, out Outcome) (*Job, bool, error)
	ListByUser(ctx context.Context, userID uuid.UUID, savedOnly bool, limit, offset int) ([]Job, error)
	SetSaved(ctx context.Context, id uuid.UUID, saved bool) (*Job, error)
}

type repository struct {
	db *sqlx.DB
}

// NewRepository creates job repository
func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

const jobColumns = `id, user_id, category, object_image_url, material_image_url, prompt,
	output_image_url, status, saved, error_message, created_at, updated_at, completed_at`

const insertQuery = `
	INSERT INTO jobs (id, user_id, category, object_image_url, material_image_url, prompt, status)
	VALUES (:id, :user_id, :category, :object_image_url, :material_image_url, :prompt, :status)
	RETURNING created_at, updated_at
`

// Insert writes j through q, which may be a transaction shared with other writes.
func Insert(ctx context.Context, q sqlx.ExtContext, j *Job) error {
	rows, err := sqlx.NamedQueryContext(ctx, q, insertQuery, j)
	if err != nil {
		return fmt.Errorf("insert job: %w", err)
	}
	defer rows.Close()
	if rows.Next() {
		if err := rows.Scan(&j.CreatedAt, &j.UpdatedAt); err != nil {
			return fmt.Errorf("insert job scan: %w", err)
		}
	}
	return rows.Err()
}

func (r *repository) Create(ctx context.Context, j *Job) error {
	return Insert(ctx, r.db, j)
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Job, error) {
	var j Job
	err := r.db.GetContext(ctx, &j, `SELECT `+jobColumns+` FROM jobs WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("job repository get: %w", err)
	}
	return &j, nil
}

func (r *repository) Transition(ctx context.Context, id uuid.UUID, from, to Status, out Outcome) (*Job, bool, error) {
	var j Job
	err := r.db.GetContext(ctx, &j, `
		UPDATE jobs
		SET status = $3,
			output_image_url = COALESCE(NULLIF($4, ''), output_image_url),
			error_message = COALESCE(NULLIF($5, ''), error_message),
			completed_at = CASE WHEN $6 THEN NOW() ELSE completed_at END,
			updated_at = NOW()
		WHERE id = $1 AND status = $2
		RETURNING `+jobColumns,
		id, from, to, out.OutputImageURL, out.ErrorMessage, to.Terminal())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("job repository transition: %w", err)
	}
	return &j, true, nil
}

func (r *repository) ListByUser(ctx context.Context, userID uuid.UUID, savedOnly bool, limit, offset int) ([]Job, error) {
	query := `SELECT ` + jobColumns + ` FROM jobs WHERE user_id = $1`
	if savedOnly {
		query += ` AND saved`
	}
	query += ` ORDER BY created_at DESC LIMIT $2 OFFSET $3`

	items := []Job{}
	if err := r.db.SelectContext(ctx, &items, query, userID, limit, offset); err != nil {
		return nil, fmt.Errorf("job repository list: %w", err)
	}
	return items, nil
}

func (r *repository) SetSaved(ctx context.Context, id uuid.UUID, saved bool) (*Job, error) {
	var j Job
	err := r.db.GetContext(ctx, &j, `
		UPDATE jobs SET saved = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING `+jobColumns, id, saved)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrJobNotFound
		}
		return nil, fmt.Errorf("job repository set saved: %w", err)
	}
	return &j, nil
}
