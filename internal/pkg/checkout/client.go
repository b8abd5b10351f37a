// Package checkout talks to the hosted payment processor: session creation and webhook verification.
package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/arleytruth/Magicwraptool-sub001/internal/pkg/httpclient"
)

const serviceName = "checkout"

var (
	ErrNotConfigured   = errors.New("checkout is not configured")
	ErrInvalidResponse = errors.New("checkout returned an invalid response")
)

// SessionParams describes one hosted checkout session.
type SessionParams struct {
	AmountMinor    int64
	Currency       string
	Description    string
	SuccessURL     string
	CancelURL      string
	ClientRef      string
	Metadata       map[string]string
	IdempotencyKey string
}

// Session is the processor's view of a created checkout session.
type Session struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// Client creates checkout sessions over the processor's form-encoded REST API.
type Client struct {
	baseURL   string
	secretKey string
	http      *http.Client
}

func NewClient(baseURL, secretKey string, timeout time.Duration) *Client {
	return &Client{
		baseURL:   strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		secretKey: strings.TrimSpace(secretKey),
		http:      httpclient.New(timeout),
	}
}

type errorResponse struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// CreateSession creates a one-off payment session and returns its redirect URL.
func (c *Client) CreateSession(ctx context.Context, p SessionParams) (*Session, error) {
	if c.secretKey == "" || c.baseURL == "" {
		return nil, ErrNotConfigured
	}

	values := url.Values{}
	values.Set("mode", "payment")
	values.Set("success_url", p.SuccessURL)
	values.Set("cancel_url", p.CancelURL)
	values.Set("line_items[0][quantity]", "1")
	values.Set("line_items[0][price_data][currency]", strings.ToLower(p.Currency))
	values.Set("line_items[0][price_data][unit_amount]", strconv.FormatInt(p.AmountMinor, 10))
	values.Set("line_items[0][price_data][product_data][name]", p.Description)
	if p.ClientRef != "" {
		values.Set("client_reference_id", p.ClientRef)
	}
	for k, v := range p.Metadata {
		values.Set("metadata["+k+"]", v)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/checkout/sessions", strings.NewReader(values.Encode()))
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %v", serviceName, httpclient.ErrRequest, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if p.IdempotencyKey != "" {
		req.Header.Set("Idempotency-Key", p.IdempotencyKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, httpclient.ClassifyRequestError(ctx, serviceName, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		var perr errorResponse
		if err := json.NewDecoder(resp.Body).Decode(&perr); err == nil && perr.Error.Message != "" {
			return nil, fmt.Errorf("%s: %w: status=%d message=%s", serviceName, httpclient.ErrStatus, resp.StatusCode, perr.Error.Message)
		}
		return nil, fmt.Errorf("%s: %w: status=%d", serviceName, httpclient.ErrStatus, resp.StatusCode)
	}

	var session Session
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		return nil, fmt.Errorf("%s: %w: %v", serviceName, ErrInvalidResponse, err)
	}
	if session.ID == "" || session.URL == "" {
		return nil, ErrInvalidResponse
	}
	return &session, nil
}
