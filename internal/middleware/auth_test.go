package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arleytruth/Magicwraptool-sub001/internal/pkg/apperr"
	"github.com/arleytruth/Magicwraptool-sub001/internal/pkg/i18n"
	"github.com/arleytruth/Magicwraptool-sub001/internal/pkg/jwt"
)

type stubResolver struct {
	id   uuid.UUID
	role string
	err  error
	seen string
}

func (s *stubResolver) ResolveSession(ctx context.Context, claims *jwt.Claims) (uuid.UUID, string, error) {
	s.seen = claims.Subject
	return s.id, s.role, s.err
}

func newVerifier(t *testing.T) *jwt.Verifier {
	t.Helper()
	v, err := jwt.NewVerifier("secret", "", "")
	require.NoError(t, err)
	return v
}

func okHandler(t *testing.T, wantID uuid.UUID, wantRole string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, wantID, GetUserID(r.Context()))
		assert.Equal(t, wantRole, GetRole(r.Context()))
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthMiddlewareAllowsValidToken(t *testing.T) {
	v := newVerifier(t)
	token, err := v.Sign("user_ext_1", jwt.Claims{Email: "a@example.com"}, time.Minute)
	require.NoError(t, err)

	resolver := &stubResolver{id: uuid.New(), role: "user"}
	protected := Auth(v, resolver)(okHandler(t, resolver.id, "user"))

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	protected.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "user_ext_1", resolver.seen)
}

func TestAuthMiddlewareAcceptsQueryToken(t *testing.T) {
	v := newVerifier(t)
	token, err := v.Sign("user_ext_1", jwt.Claims{}, time.Minute)
	require.NoError(t, err)

	resolver := &stubResolver{id: uuid.New(), role: "admin"}
	protected := Auth(v, resolver)(okHandler(t, resolver.id, "admin"))

	req := httptest.NewRequest(http.MethodGet, "/ws?token="+token, nil)
	w := httptest.NewRecorder()
	protected.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuthMiddlewareRejects(t *testing.T) {
	v := newVerifier(t)
	expired, err := v.Sign("user_ext_1", jwt.Claims{}, -time.Hour)
	require.NoError(t, err)
	valid, err := v.Sign("user_ext_1", jwt.Claims{}, time.Minute)
	require.NoError(t, err)

	deleted := apperr.New(apperr.KindForbidden, i18n.MsgAccountDeleted, "user deleted")

	tests := []struct {
		name     string
		header   string
		resolver *stubResolver
		want     int
	}{
		{"missing header", "", &stubResolver{}, http.StatusUnauthorized},
		{"malformed header", "Token abc", &stubResolver{}, http.StatusUnauthorized},
		{"expired", "Bearer " + expired, &stubResolver{}, http.StatusUnauthorized},
		{"garbage", "Bearer not.a.jwt", &stubResolver{}, http.StatusUnauthorized},
		{"deleted user", "Bearer " + valid, &stubResolver{err: deleted}, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			h := Auth(v, tt.resolver)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				called = true
			}))

			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)

			assert.Equal(t, tt.want, w.Code)
			assert.False(t, called)
		})
	}
}

func TestRequireRole(t *testing.T) {
	h := RequireAdmin()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	for role, want := range map[string]int{
		"admin": http.StatusNoContent,
		"owner": http.StatusNoContent,
		"user":  http.StatusForbidden,
		"":      http.StatusForbidden,
	} {
		req := httptest.NewRequest(http.MethodGet, "/api/admin/x", nil)
		req = req.WithContext(WithUser(req.Context(), uuid.New(), role))
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		assert.Equal(t, want, w.Code, "role %q", role)
	}
}

func TestRequestIDAndLocale(t *testing.T) {
	h := RequestID(Locale(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Kimlik doğrulaması gerekli", i18n.T(r.Context(), i18n.MsgUnauthenticated))
	})))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept-Language", "tr-TR,tr;q=0.9")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestRecover(t *testing.T) {
	h := Recover(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
