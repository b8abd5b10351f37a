package checkout

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arleytruth/Magicwraptool-sub001/internal/pkg/httpclient"
)

func TestCreateSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/checkout/sessions", r.URL.Path)
		assert.Equal(t, "Bearer sk_test", r.Header.Get("Authorization"))
		assert.Equal(t, "idem-1", r.Header.Get("Idempotency-Key"))
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "payment", r.PostForm.Get("mode"))
		assert.Equal(t, "999", r.PostForm.Get("line_items[0][price_data][unit_amount]"))
		assert.Equal(t, "usd", r.PostForm.Get("line_items[0][price_data][currency]"))
		assert.Equal(t, "50", r.PostForm.Get("metadata[credits]"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"cs_1","url":"https://pay.example/cs_1"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "sk_test", time.Second)
	session, err := c.CreateSession(context.Background(), SessionParams{
		AmountMinor:    999,
		Currency:       "USD",
		Description:    "50 credits",
		SuccessURL:     "https://app.example/ok",
		CancelURL:      "https://app.example/cancel",
		Metadata:       map[string]string{"credits": "50"},
		IdempotencyKey: "idem-1",
	})
	require.NoError(t, err)
	assert.Equal(t, "cs_1", session.ID)
	assert.Equal(t, "https://pay.example/cs_1", session.URL)
}

func TestCreateSessionUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"message":"bad currency"}}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "sk_test", time.Second)
	_, err := c.CreateSession(context.Background(), SessionParams{AmountMinor: 1, Currency: "xxx"})
	require.Error(t, err)
	assert.ErrorIs(t, err, httpclient.ErrStatus)
	assert.Contains(t, err.Error(), "bad currency")
}

func TestCreateSessionNotConfigured(t *testing.T) {
	_, err := NewClient("https://api.example", "", time.Second).CreateSession(context.Background(), SessionParams{})
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestWebhookVerify(t *testing.T) {
	v := NewWebhookVerifier("whsec_payments")
	payload := []byte(`{"id":"evt_1","type":"checkout.session.completed"}`)

	h := http.Header{}
	h.Set(SignatureHeader, v.Header(time.Now(), payload))
	assert.NoError(t, v.Verify(h, payload))

	assert.ErrorIs(t, v.Verify(h, []byte(`{"id":"evt_2"}`)), ErrInvalidSignature)

	stale := http.Header{}
	stale.Set(SignatureHeader, v.Header(time.Now().Add(-10*time.Minute), payload))
	assert.ErrorIs(t, v.Verify(stale, payload), ErrInvalidSignature)

	malformed := http.Header{}
	malformed.Set(SignatureHeader, "garbage")
	assert.ErrorIs(t, v.Verify(malformed, payload), ErrInvalidSignature)
}

func TestParseEvent(t *testing.T) {
	e, err := ParseEvent([]byte(`{
		"id": "evt_1",
		"type": "checkout.session.completed",
		"data": {"object": {
			"id": "cs_1",
			"payment_status": "paid",
			"metadata": {"user_id": "u1", "credits": "50", "package_id": "starter"}
		}}
	}`))
	require.NoError(t, err)
	assert.Equal(t, EventSessionCompleted, e.Type)
	assert.True(t, e.Data.Object.Paid())
	assert.Equal(t, "50", e.Data.Object.Metadata["credits"])

	_, err = ParseEvent([]byte(`{"type":"x"}`))
	assert.ErrorIs(t, err, ErrInvalidPayload)
}
