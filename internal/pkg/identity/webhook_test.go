package identity

import (
	"encoding/base64"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = "whsec_" + base64.StdEncoding.EncodeToString([]byte("identity-webhook-secret"))

func TestVerifyAcceptsValidSignature(t *testing.T) {
	v, err := NewVerifier(testSecret)
	require.NoError(t, err)

	payload := []byte(`{"type":"user.created","data":{"id":"user_1"}}`)
	headers := v.SignatureHeaders("msg_1", time.Now(), payload)

	assert.NoError(t, v.Verify(headers, payload))
}

func TestVerifyRejects(t *testing.T) {
	v, err := NewVerifier(testSecret)
	require.NoError(t, err)
	payload := []byte(`{"type":"user.created","data":{"id":"user_1"}}`)

	t.Run("tampered payload", func(t *testing.T) {
		headers := v.SignatureHeaders("msg_1", time.Now(), payload)
		assert.ErrorIs(t, v.Verify(headers, []byte(`{"type":"user.deleted"}`)), ErrInvalidSignature)
	})

	t.Run("old timestamp", func(t *testing.T) {
		headers := v.SignatureHeaders("msg_1", time.Now().Add(-time.Hour), payload)
		assert.ErrorIs(t, v.Verify(headers, payload), ErrTimestamp)
	})

	t.Run("missing headers", func(t *testing.T) {
		assert.ErrorIs(t, v.Verify(http.Header{}, payload), ErrMissingHeaders)
	})

	t.Run("other secret", func(t *testing.T) {
		other, err := NewVerifier("whsec_" + base64.StdEncoding.EncodeToString([]byte("other")))
		require.NoError(t, err)
		headers := other.SignatureHeaders("msg_1", time.Now(), payload)
		assert.ErrorIs(t, v.Verify(headers, payload), ErrInvalidSignature)
	})
}

func TestParseEvent(t *testing.T) {
	e, err := ParseEvent([]byte(`{
		"type": "user.updated",
		"data": {
			"id": "user_2",
			"first_name": "Ada",
			"last_name": "Lovelace",
			"primary_email_address_id": "idn_2",
			"email_addresses": [
				{"id": "idn_1", "email_address": "old@example.com"},
				{"id": "idn_2", "email_address": "ada@example.com", "verification": {"status": "verified"}}
			],
			"public_metadata": {"role": "admin"}
		}
	}`))
	require.NoError(t, err)

	email, verified := e.Data.PrimaryEmail()
	assert.Equal(t, "ada@example.com", email)
	assert.True(t, verified)
	assert.Equal(t, "Ada Lovelace", e.Data.FullName())
	assert.Equal(t, "admin", e.Data.RoleClaim())

	_, err = ParseEvent([]byte(`{"type":"user.created","data":{}}`))
	assert.ErrorIs(t, err, ErrInvalidPayload)
}

func TestNewVerifierRejectsBadSecret(t *testing.T) {
	_, err := NewVerifier("")
	assert.ErrorIs(t, err, ErrInvalidSecret)
	_, err = NewVerifier("whsec_%%%")
	assert.ErrorIs(t, err, ErrInvalidSecret)
}
