package generation

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/arleytruth/Magicwraptool-sub001/internal/domain/job"
)

// Repository defines generation log data access
type Repository interface {
	// CreateJobWithLog inserts the job and its pending log atomically.
	CreateJobWithLog(ctx context.Context, j *job.Job, l *Log) error
	// MarkLog moves the job's log to status if it is currently in one of from.
	MarkLog(ctx context.Context, jobID uuid.UUID, from []LogStatus, to LogStatus, errMsg string) (bool, error)
	// ClaimStale leases up to limit open logs not touched since before.
	ClaimStale(ctx context.Context, before time.Time, limit int) ([]Log, error)
	// OrphanDebits lists job debits older than before that have no job row and no refund.
	OrphanDebits(ctx context.Context, before time.Time, limit int) ([]OrphanDebit, error)
}

type repository struct {
	db *sqlx.DB
}

// NewRepository creates generation log repository
func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

const logColumns = `id, job_id, user_id, status, credits_consumed, category, error, created_at, updated_at, completed_at`

func (r *repository) CreateJobWithLog(ctx context.Context, j *job.Job, l *Log) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("generation repository begin: %w", err)
	}
	defer tx.Rollback()

	if err := job.Insert(ctx, tx, j); err != nil {
		return err
	}

	err = tx.QueryRowxContext(ctx, `
		INSERT INTO generation_logs (id, job_id, user_id, status, credits_consumed, category)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at
	`, l.ID, l.JobID, l.UserID, l.Status, l.CreditsConsumed, l.Category).Scan(&l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert generation log: %w", err)
	}

	return tx.Commit()
}

func (r *repository) MarkLog(ctx context.Context, jobID uuid.UUID, from []LogStatus, to LogStatus, errMsg string) (bool, error) {
	statuses := make([]string, len(from))
	for i, s := range from {
		statuses[i] = string(s)
	}

	query, args, err := sqlx.In(`
		UPDATE generation_logs
		SET status = ?,
			error = COALESCE(NULLIF(?, ''), error),
			completed_at = CASE WHEN ? THEN NOW() ELSE completed_at END,
			updated_at = NOW()
		WHERE job_id = ? AND status IN (?)
	`, to, errMsg, to != LogPending, jobID, statuses)
	if err != nil {
		return false, fmt.Errorf("generation repository mark: %w", err)
	}

	res, err := r.db.ExecContext(ctx, r.db.Rebind(query), args...)
	if err != nil {
		return false, fmt.Errorf("generation repository mark: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("generation repository mark: %w", err)
	}
	return n > 0, nil
}

// ClaimStale bumps updated_at on the claimed rows so concurrent reconcilers skip them.
func (r *repository) ClaimStale(ctx context.Context, before time.Time, limit int) ([]Log, error) {
	items := []Log{}
	err := r.db.SelectContext(ctx, &items, `
		UPDATE generation_logs
		SET updated_at = NOW()
		WHERE id IN (
			SELECT id FROM generation_logs
			WHERE status IN ('pending', 'failed') AND updated_at < $1
			ORDER BY created_at
			LIMIT $2
			FOR UPDATE SKIP LOCKED
		)
		RETURNING `+logColumns, before, limit)
	if err != nil {
		return nil, fmt.Errorf("generation repository claim stale: %w", err)
	}
	return items, nil
}

func (r *repository) OrphanDebits(ctx context.Context, before time.Time, limit int) ([]OrphanDebit, error) {
	items := []OrphanDebit{}
	err := r.db.SelectContext(ctx, &items, `
		SELECT ct.user_id, ct.reference_id, ct.amount
		FROM credit_transactions ct
		WHERE ct.type = 'consumption'
			AND ct.reference_type = 'job'
			AND ct.created_at < $1
			AND NOT EXISTS (SELECT 1 FROM jobs j WHERE j.id::text = ct.reference_id)
			AND NOT EXISTS (
				SELECT 1 FROM credit_transactions r
				WHERE r.type = 'refund' AND r.reference_type = 'job' AND r.reference_id = ct.reference_id
			)
		ORDER BY ct.created_at
		LIMIT $2
	`, before, limit)
	if err != nil {
		return nil, fmt.Errorf("generation repository orphan debits: %w", err)
	}
	return items, nil
}
