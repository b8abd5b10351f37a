package generation

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arleytruth/Magicwraptool-sub001/internal/domain/job"
)

func newMockRepo(t *testing.T) (Repository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewRepository(sqlx.NewDb(db, "postgres")), mock
}

func TestCreateJobWithLogIsOneTransaction(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now()
	j := &job.Job{ID: uuid.New(), UserID: uuid.New(), Category: job.CategoryWall, Status: job.StatusPending}
	l := &Log{ID: uuid.New(), JobID: j.ID, UserID: j.UserID, Status: LogPending, CreditsConsumed: 1,
		Category: sql.NullString{String: "wall", Valid: true}}

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO jobs`)).
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO generation_logs`)).
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))
	mock.ExpectCommit()

	require.NoError(t, repo.CreateJobWithLog(context.Background(), j, l))
	assert.Equal(t, now, j.CreatedAt)
	assert.Equal(t, now, l.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateJobWithLogRollsBack(t *testing.T) {
	repo, mock := newMockRepo(t)
	j := &job.Job{ID: uuid.New(), UserID: uuid.New(), Category: job.CategoryWall, Status: job.StatusPending}

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO jobs`)).
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(time.Now(), time.Now()))
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO generation_logs`)).WillReturnError(sql.ErrConnDone)
	mock.ExpectRollback()

	err := repo.CreateJobWithLog(context.Background(), j, &Log{ID: uuid.New(), JobID: j.ID, UserID: j.UserID, Status: LogPending})
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkLogExpandsStatuses(t *testing.T) {
	repo, mock := newMockRepo(t)
	jobID := uuid.New()

	mock.ExpectExec(regexp.QuoteMeta(`WHERE job_id = $4 AND status IN ($5, $6)`)).
		WithArgs("refunded", "", true, jobID.String(), "pending", "failed").
		WillReturnResult(sqlmock.NewResult(0, 1))

	ok, err := repo.MarkLog(context.Background(), jobID, []LogStatus{LogPending, LogFailed}, LogRefunded, "")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}
