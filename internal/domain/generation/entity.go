package generation

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// LogStatus tracks whether a job's debit has been settled.
type LogStatus string

const (
	LogPending   LogStatus = "pending"
	LogCompleted LogStatus = "completed"
	LogFailed    LogStatus = "failed"
	LogRefunded  LogStatus = "refunded"
)

// Log is the durable intent record linking a job to its debit.
// pending means the outcome is unknown; failed means the refund is still owed.
type Log struct {
	ID              uuid.UUID      `db:"id"`
	JobID           uuid.UUID      `db:"job_id"`
	UserID          uuid.UUID      `db:"user_id"`
	Status          LogStatus      `db:"status"`
	CreditsConsumed int64          `db:"credits_consumed"`
	Category        sql.NullString `db:"category"`
	Error           sql.NullString `db:"error"`
	CreatedAt       time.Time      `db:"created_at"`
	UpdatedAt       time.Time      `db:"updated_at"`
	CompletedAt     sql.NullTime   `db:"completed_at"`
}

// OrphanDebit is a job consumption with neither a job row nor a refund.
type OrphanDebit struct {
	UserID uuid.UUID `db:"user_id"`
	JobID  string    `db:"reference_id"`
	Amount int64     `db:"amount"`
}
