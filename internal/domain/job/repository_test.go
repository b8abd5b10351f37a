package job

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var jobCols = []string{"id", "user_id", "category", "object_image_url", "material_image_url", "prompt",
	"output_image_url", "status", "saved", "error_message", "created_at", "updated_at", "completed_at"}

func TestRepositoryTransitionGuardedByStatus(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewRepository(sqlx.NewDb(db, "postgres"))

	id := uuid.New()
	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta(`WHERE id = $1 AND status = $2`)).
		WithArgs(id.String(), "processing", "completed", "https://cdn/out.png", "", true).
		WillReturnRows(sqlmock.NewRows(jobCols).AddRow(
			id.String(), uuid.NewString(), "vehicle", "o", "m", "p",
			"https://cdn/out.png", "completed", false, nil, now, now, now))

	j, ok, err := repo.Transition(context.Background(), id, StatusProcessing, StatusCompleted, Outcome{OutputImageURL: "https://cdn/out.png"})
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, StatusCompleted, j.Status)
	assert.True(t, j.CompletedAt.Valid)

	mock.ExpectQuery(regexp.QuoteMeta(`WHERE id = $1 AND status = $2`)).
		WillReturnRows(sqlmock.NewRows(jobCols))
	_, ok, err = repo.Transition(context.Background(), id, StatusProcessing, StatusFailed, Outcome{})
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}
