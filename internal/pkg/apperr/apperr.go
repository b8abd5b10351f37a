// Package apperr defines the error kinds every domain error is classified under.
package apperr

import (
	"errors"
	"net/http"
)

// Kind is a closed classification of failures visible at the API boundary.
type Kind string

const (
	KindUnauthenticated     Kind = "UNAUTHENTICATED"
	KindForbidden           Kind = "FORBIDDEN"
	KindNotFound            Kind = "NOT_FOUND"
	KindValidation          Kind = "VALIDATION_ERROR"
	KindInsufficientCredits Kind = "INSUFFICIENT_CREDITS"
	KindConflict            Kind = "CONFLICT"
	KindConflictRetryable   Kind = "CONFLICT_RETRYABLE"
	KindUpstream            Kind = "UPSTREAM_FAILURE"
	KindInternal            Kind = "INTERNAL_ERROR"
)

// Error is a sentinel carrying its kind and a message key for localized output.
type Error struct {
	Kind       Kind
	MessageKey string
	msg        string
}

// New creates a classified sentinel error.
func New(kind Kind, messageKey, msg string) *Error {
	return &Error{Kind: kind, MessageKey: messageKey, msg: msg}
}

func (e *Error) Error() string { return e.msg }

// KindOf returns the kind of the first classified error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// MessageKeyOf returns the message key of the first classified error in err's chain.
func MessageKeyOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.MessageKey
	}
	return ""
}

// Status maps a kind to its HTTP status.
func (k Kind) Status() int {
	switch k {
	case KindUnauthenticated:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindValidation:
		return http.StatusBadRequest
	case KindInsufficientCredits:
		return http.StatusPaymentRequired
	case KindConflict, KindConflictRetryable:
		return http.StatusConflict
	case KindUpstream:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
