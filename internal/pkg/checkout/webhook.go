package checkout

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

const (
	SignatureHeader = "Stripe-Signature"
	tolerance       = 5 * time.Minute
)

// Event types handled by the payment webhook.
const (
	EventSessionCompleted = "checkout.session.completed"
	EventSessionExpired   = "checkout.session.expired"
)

var (
	ErrInvalidSignature = errors.New("invalid payment webhook signature")
	ErrInvalidPayload   = errors.New("invalid payment webhook payload")
)

// WebhookVerifier checks "t=<unix>,v1=<hex>" signatures.
type WebhookVerifier struct {
	secret []byte
	now    func() time.Time
}

func NewWebhookVerifier(secret string) *WebhookVerifier {
	return &WebhookVerifier{secret: []byte(strings.TrimSpace(secret)), now: time.Now}
}

// Verify validates the signature header against payload.
func (v *WebhookVerifier) Verify(headers http.Header, payload []byte) error {
	if len(v.secret) == 0 {
		return ErrInvalidSignature
	}
	header := strings.TrimSpace(headers.Get(SignatureHeader))
	if header == "" {
		return ErrInvalidSignature
	}

	ts, signatures, err := parseSignature(header)
	if err != nil {
		return ErrInvalidSignature
	}
	sec, err := strconv.ParseInt(ts, 10, 64)
	if err != nil {
		return ErrInvalidSignature
	}
	if d := v.now().Sub(time.Unix(sec, 0)); d > tolerance || d < -tolerance {
		return ErrInvalidSignature
	}

	expected := v.sign(ts, payload)
	for _, sig := range signatures {
		if hmac.Equal([]byte(sig), []byte(expected)) {
			return nil
		}
	}
	return ErrInvalidSignature
}

// Header returns a signature header value for payload signed at the given time.
func (v *WebhookVerifier) Header(at time.Time, payload []byte) string {
	ts := strconv.FormatInt(at.Unix(), 10)
	return fmt.Sprintf("t=%s,v1=%s", ts, v.sign(ts, payload))
}

func (v *WebhookVerifier) sign(ts string, payload []byte) string {
	mac := hmac.New(sha256.New, v.secret)
	_, _ = mac.Write([]byte(ts + "."))
	_, _ = mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

func parseSignature(header string) (string, []string, error) {
	var ts string
	var signatures []string
	for _, part := range strings.Split(header, ",") {
		key, value, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok {
			continue
		}
		switch strings.TrimSpace(key) {
		case "t":
			ts = strings.TrimSpace(value)
		case "v1":
			signatures = append(signatures, strings.TrimSpace(value))
		}
	}
	if ts == "" || len(signatures) == 0 {
		return "", nil, ErrInvalidSignature
	}
	return ts, signatures, nil
}

// Event is the subset of a processor event the service reads.
type Event struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		Object SessionObject `json:"object"`
	} `json:"data"`
}

// SessionObject is a checkout session embedded in an event.
type SessionObject struct {
	ID                string            `json:"id"`
	PaymentStatus     string            `json:"payment_status"`
	Status            string            `json:"status"`
	AmountTotal       int64             `json:"amount_total"`
	Currency          string            `json:"currency"`
	ClientReferenceID string            `json:"client_reference_id"`
	Metadata          map[string]string `json:"metadata"`
}

// Paid reports whether the session collected payment.
func (s SessionObject) Paid() bool {
	return s.PaymentStatus == "paid"
}

// ParseEvent decodes a webhook body.
func ParseEvent(payload []byte) (*Event, error) {
	var e Event
	if err := json.Unmarshal(payload, &e); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	if strings.TrimSpace(e.ID) == "" || strings.TrimSpace(e.Type) == "" {
		return nil, ErrInvalidPayload
	}
	return &e, nil
}
