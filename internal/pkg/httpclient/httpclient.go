// Package httpclient builds tuned HTTP clients for external collaborators and classifies their failures.
package httpclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"os"
	"syscall"
	"time"
)

const defaultTimeout = 10 * time.Second

var (
	// ErrTimeout marks a call that ran out of time. Callers treat it as transient.
	ErrTimeout = errors.New("upstream timeout")
	// ErrNetwork marks a connection level failure. Callers treat it as transient.
	ErrNetwork = errors.New("upstream network error")
	// ErrStatus marks a non-success HTTP status from the upstream.
	ErrStatus = errors.New("upstream http error")
	// ErrRequest marks any other failure building or sending the request.
	ErrRequest = errors.New("upstream request error")
)

// New returns an http.Client with a pooled transport and an overall timeout.
func New(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   10,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}

	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}
}

// IsTransient reports whether err is a timeout or network failure.
func IsTransient(err error) bool {
	return errors.Is(err, ErrTimeout) || errors.Is(err, ErrNetwork)
}

// Kind returns a short label for metrics.
func Kind(err error) string {
	switch {
	case errors.Is(err, ErrTimeout):
		return "timeout"
	case errors.Is(err, ErrNetwork):
		return "network"
	case errors.Is(err, ErrStatus):
		return "status"
	default:
		return "request"
	}
}

// ClassifyRequestError wraps a transport error from client.Do.
func ClassifyRequestError(ctx context.Context, service string, err error) error {
	if isTimeoutError(ctx, err) {
		return fmt.Errorf("%s: %w: %v", service, ErrTimeout, err)
	}
	if isNetworkError(err) {
		return fmt.Errorf("%s: %w: %v", service, ErrNetwork, err)
	}
	return fmt.Errorf("%s: %w: %v", service, ErrRequest, err)
}

// StatusError reads a bounded body and builds an ErrStatus error.
func StatusError(service string, resp *http.Response) error {
	body, readErr := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if readErr != nil {
		return fmt.Errorf("%s: %w: status=%d body=<failed to read body: %v>", service, ErrStatus, resp.StatusCode, readErr)
	}
	return fmt.Errorf("%s: %w: status=%d body=%s", service, ErrStatus, resp.StatusCode, string(body))
}

func isTimeoutError(ctx context.Context, err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return true
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	if errors.Is(err, os.ErrDeadlineExceeded) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return false
}

func isNetworkError(err error) bool {
	if err == nil {
		return false
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		err = urlErr.Err
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}

	return errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ENETUNREACH) ||
		errors.Is(err, syscall.EHOSTUNREACH)
}
