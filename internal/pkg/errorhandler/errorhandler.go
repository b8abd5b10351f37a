package errorhandler

import (
	"context"
	"net/http"

	"github.com/arleytruth/Magicwraptool-sub001/internal/pkg/apperr"
	"github.com/arleytruth/Magicwraptool-sub001/internal/pkg/i18n"
	"github.com/arleytruth/Magicwraptool-sub001/internal/pkg/logger"
	"github.com/arleytruth/Magicwraptool-sub001/internal/pkg/response"
)

// HandleError classifies err, logs it and writes a localized error envelope.
// Internal detail never reaches the response body.
func HandleError(w http.ResponseWriter, r *http.Request, err error) {
	ctx := r.Context()
	kind := apperr.KindOf(err)

	key := apperr.MessageKeyOf(err)
	if key == "" {
		key = i18n.MsgInternal
	}

	l := logger.FromContext(ctx)
	event := l.Warn()
	if kind == apperr.KindInternal || kind == apperr.KindUpstream {
		event = l.Error()
	}
	event.Err(err).
		Str("error_code", string(kind)).
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Int("status_code", kind.Status()).
		Msg("Request error")

	response.Error(w, kind.Status(), string(kind), i18n.T(ctx, key))
}

// HandleErrorWithDetails is HandleError plus a details map, used to point the client at a resource.
func HandleErrorWithDetails(w http.ResponseWriter, r *http.Request, err error, details map[string]string) {
	ctx := r.Context()
	kind := apperr.KindOf(err)
	key := apperr.MessageKeyOf(err)
	if key == "" {
		key = i18n.MsgInternal
	}

	logger.FromContext(ctx).Error().
		Err(err).
		Str("error_code", string(kind)).
		Interface("error_details", details).
		Msg("Request error with details")

	response.ErrorWithDetails(w, kind.Status(), string(kind), i18n.T(ctx, key), details)
}

// Validation writes a 422 with per-field details.
func Validation(w http.ResponseWriter, r *http.Request, fieldErrors map[string]string) {
	ctx := r.Context()
	logger.FromContext(ctx).Warn().
		Interface("validation_errors", fieldErrors).
		Msg("Validation error")
	response.ValidationError(w, i18n.T(ctx, i18n.MsgValidationFailed), fieldErrors)
}

// BadRequest writes a 400 with a localized message.
func BadRequest(w http.ResponseWriter, r *http.Request, key string) {
	response.BadRequest(w, i18n.T(r.Context(), key))
}

// LogExternalServiceError logs errors from external service calls
func LogExternalServiceError(ctx context.Context, service, operation string, err error) {
	logger.FromContext(ctx).Error().
		Str("external_service", service).
		Str("operation", operation).
		Err(err).
		Msg("External service error")
}
