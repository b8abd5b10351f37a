package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/arleytruth/Magicwraptool-sub001/internal/pkg/apperr"
	"github.com/arleytruth/Magicwraptool-sub001/internal/pkg/errorhandler"
	"github.com/arleytruth/Magicwraptool-sub001/internal/pkg/i18n"
	"github.com/arleytruth/Magicwraptool-sub001/internal/pkg/jwt"
	"github.com/arleytruth/Magicwraptool-sub001/internal/pkg/logger"
)

type contextKey string

const (
	UserIDKey contextKey = "user_id"
	RoleKey   contextKey = "role"
)

var (
	errUnauthenticated = apperr.New(apperr.KindUnauthenticated, i18n.MsgUnauthenticated, "missing or invalid session token")
	errTokenExpired    = apperr.New(apperr.KindUnauthenticated, i18n.MsgTokenExpired, "session token expired")
	errForbidden       = apperr.New(apperr.KindForbidden, i18n.MsgForbidden, "insufficient permissions")
)

// SessionResolver maps verified session claims to an internal user, creating it on first sight.
type SessionResolver interface {
	ResolveSession(ctx context.Context, claims *jwt.Claims) (userID uuid.UUID, role string, err error)
}

// Auth returns middleware that validates the session token and attaches the internal user.
func Auth(verifier *jwt.Verifier, resolver SessionResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := tokenFromRequest(r)
			if token == "" {
				errorhandler.HandleError(w, r, errUnauthenticated)
				return
			}

			claims, err := verifier.Verify(token)
			if err != nil {
				if errors.Is(err, jwt.ErrExpiredToken) {
					errorhandler.HandleError(w, r, errTokenExpired)
				} else {
					errorhandler.HandleError(w, r, errUnauthenticated)
				}
				return
			}

			userID, role, err := resolver.ResolveSession(r.Context(), claims)
			if err != nil {
				errorhandler.HandleError(w, r, err)
				return
			}

			ctx := context.WithValue(r.Context(), UserIDKey, userID)
			ctx = context.WithValue(ctx, RoleKey, role)
			l := logger.FromContext(ctx).With().Str("user_id", userID.String()).Logger()
			ctx = logger.WithContext(ctx, &l)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// tokenFromRequest reads the bearer header, falling back to the token query
// parameter used by websocket clients that cannot set headers.
func tokenFromRequest(r *http.Request) string {
	if authHeader := r.Header.Get("Authorization"); authHeader != "" {
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			return ""
		}
		return strings.TrimSpace(parts[1])
	}
	return strings.TrimSpace(r.URL.Query().Get("token"))
}

// GetUserID extracts user ID from context
func GetUserID(ctx context.Context) uuid.UUID {
	if id, ok := ctx.Value(UserIDKey).(uuid.UUID); ok {
		return id
	}
	return uuid.Nil
}

// GetRole extracts role from context
func GetRole(ctx context.Context) string {
	if role, ok := ctx.Value(RoleKey).(string); ok {
		return role
	}
	return ""
}

// WithUser attaches a user to ctx the way Auth does. Used by handler tests.
func WithUser(ctx context.Context, userID uuid.UUID, role string) context.Context {
	ctx = context.WithValue(ctx, UserIDKey, userID)
	return context.WithValue(ctx, RoleKey, role)
}

// RequireRole returns middleware that checks user role
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userRole := GetRole(r.Context())

			for _, role := range roles {
				if userRole == role {
					next.ServeHTTP(w, r)
					return
				}
			}

			errorhandler.HandleError(w, r, errForbidden)
		})
	}
}

// RequireAdmin returns middleware that requires admin or owner role
func RequireAdmin() func(http.Handler) http.Handler {
	return RequireRole("admin", "owner")
}

// RequireOwner returns middleware that requires owner role
func RequireOwner() func(http.Handler) http.Handler {
	return RequireRole("owner")
}
