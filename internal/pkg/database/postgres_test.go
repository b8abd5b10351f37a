package database

import (
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestPgErrorClassification(t *testing.T) {
	unique := fmt.Errorf("insert: %w", &pq.Error{Code: "23505", Constraint: "credit_transactions_reference_key"})
	check := &pq.Error{Code: "23514", Constraint: "users_credits_non_negative"}

	assert.True(t, IsUniqueViolation(unique, ""))
	assert.True(t, IsUniqueViolation(unique, "credit_transactions_reference_key"))
	assert.False(t, IsUniqueViolation(unique, "credit_transactions_user_seq_key"))
	assert.False(t, IsUniqueViolation(check, ""))
	assert.True(t, IsCheckViolation(check))
	assert.False(t, IsCheckViolation(errors.New("plain")))

	_, _, ok := PgError(errors.New("plain"))
	assert.False(t, ok)
}
