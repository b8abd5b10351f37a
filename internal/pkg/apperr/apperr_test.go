package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOfWrapped(t *testing.T) {
	sentinel := New(KindInsufficientCredits, "insufficient_credits", "insufficient credits")
	wrapped := fmt.Errorf("record consumption: %w", sentinel)

	assert.True(t, errors.Is(wrapped, sentinel))
	assert.Equal(t, KindInsufficientCredits, KindOf(wrapped))
	assert.Equal(t, "insufficient_credits", MessageKeyOf(wrapped))
	assert.Equal(t, http.StatusPaymentRequired, KindOf(wrapped).Status())
}

func TestUnclassifiedIsInternal(t *testing.T) {
	err := errors.New("boom")
	assert.Equal(t, KindInternal, KindOf(err))
	assert.Equal(t, "", MessageKeyOf(err))
	assert.Equal(t, http.StatusInternalServerError, KindOf(err).Status())
}

func TestStatusMapping(t *testing.T) {
	cases := map[Kind]int{
		KindUnauthenticated:   http.StatusUnauthorized,
		KindForbidden:         http.StatusForbidden,
		KindNotFound:          http.StatusNotFound,
		KindValidation:        http.StatusBadRequest,
		KindConflict:          http.StatusConflict,
		KindConflictRetryable: http.StatusConflict,
		KindUpstream:          http.StatusBadGateway,
	}
	for kind, status := range cases {
		assert.Equal(t, status, kind.Status(), kind)
	}
}
