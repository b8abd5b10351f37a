package user

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arleytruth/Magicwraptool-sub001/internal/pkg/identity"
	"github.com/arleytruth/Magicwraptool-sub001/internal/pkg/jwt"
)

type memoryRepo struct {
	mu    sync.Mutex
	users map[string]*User
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{users: map[string]*User{}}
}

func (m *memoryRepo) Upsert(ctx context.Context, p Profile) (*User, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[p.ExternalID]; ok {
		u.Email, u.EmailVerified, u.Name, u.AvatarURL = p.Email, p.EmailVerified, p.Name, p.AvatarURL
		if p.RoleClaim != "" {
			u.Role = NormalizeRole(p.RoleClaim)
		}
		cp := *u
		return &cp, false, nil
	}
	u := &User{
		ID:             uuid.New(),
		ExternalID:     p.ExternalID,
		Email:          p.Email,
		EmailVerified:  p.EmailVerified,
		Name:           p.Name,
		AvatarURL:      p.AvatarURL,
		Role:           NormalizeRole(p.RoleClaim),
		Status:         StatusActive,
		SignupBonusDue: p.SignupBonus,
	}
	m.users[p.ExternalID] = u
	cp := *u
	return &cp, true, nil
}

func (m *memoryRepo) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.ID == id {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memoryRepo) GetByExternalID(ctx context.Context, externalID string) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[externalID]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, nil
}

func (m *memoryRepo) MarkDeleted(ctx context.Context, externalID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[externalID]; ok {
		u.Status = StatusDeleted
	}
	return nil
}

func (m *memoryRepo) UpdateRole(ctx context.Context, id uuid.UUID, role Role) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.ID == id {
			u.Role = role
			return nil
		}
	}
	return ErrUserNotFound
}

func (m *memoryRepo) ClearSignupBonus(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.ID == id {
			u.SignupBonusDue = 0
		}
	}
	return nil
}

type recordingGranter struct {
	grants map[uuid.UUID]int64
}

func (g *recordingGranter) GrantSignupBonus(ctx context.Context, userID uuid.UUID, amount int64) error {
	if g.grants == nil {
		g.grants = map[uuid.UUID]int64{}
	}
	g.grants[userID] += amount
	return nil
}

func TestNormalizeRole(t *testing.T) {
	assert.Equal(t, RoleOwner, NormalizeRole(" Owner "))
	assert.Equal(t, RoleAdmin, NormalizeRole("admin"))
	assert.Equal(t, RoleUser, NormalizeRole("superuser"))
	assert.Equal(t, RoleUser, NormalizeRole(""))
}

func TestResolveSessionCreatesOnFirstSight(t *testing.T) {
	repo := newMemoryRepo()
	granter := &recordingGranter{}
	svc := NewService(repo, granter, 5)

	claims := &jwt.Claims{Email: "a@example.com", Role: "ADMIN"}
	claims.Subject = "user_ext_1"

	id, role, err := svc.ResolveSession(context.Background(), claims)
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, id)
	assert.Equal(t, "admin", role)
	assert.Equal(t, int64(5), granter.grants[id])

	again, _, err := svc.ResolveSession(context.Background(), claims)
	require.NoError(t, err)
	assert.Equal(t, id, again)
	assert.Equal(t, int64(5), granter.grants[id], "bonus is granted once")
}

// flakyGranter fails its first call the way a transient database error would.
type flakyGranter struct {
	recordingGranter
	calls int
}

func (g *flakyGranter) GrantSignupBonus(ctx context.Context, userID uuid.UUID, amount int64) error {
	g.calls++
	if g.calls == 1 {
		return errors.New("transient db error")
	}
	return g.recordingGranter.GrantSignupBonus(ctx, userID, amount)
}

func TestResolveSessionRetriesFailedSignupBonus(t *testing.T) {
	repo := newMemoryRepo()
	granter := &flakyGranter{}
	svc := NewService(repo, granter, 5)

	claims := &jwt.Claims{}
	claims.Subject = "user_ext_flaky"

	_, _, err := svc.ResolveSession(context.Background(), claims)
	require.Error(t, err)

	id, _, err := svc.ResolveSession(context.Background(), claims)
	require.NoError(t, err)
	assert.Equal(t, int64(5), granter.grants[id])
	assert.Equal(t, 2, granter.calls)

	_, _, err = svc.ResolveSession(context.Background(), claims)
	require.NoError(t, err)
	assert.Equal(t, 2, granter.calls, "a granted bonus is not owed again")

	u, err := repo.GetByExternalID(context.Background(), "user_ext_flaky")
	require.NoError(t, err)
	assert.Zero(t, u.SignupBonusDue)
}

func TestSyncFromIdentityRetriesFailedSignupBonus(t *testing.T) {
	repo := newMemoryRepo()
	granter := &flakyGranter{}
	svc := NewService(repo, granter, 7)
	ctx := context.Background()

	created := &identity.Event{Type: identity.EventUserCreated, Data: identity.UserData{ID: "ext_hook_retry"}}
	require.Error(t, svc.SyncFromIdentity(ctx, created))
	require.NoError(t, svc.SyncFromIdentity(ctx, created))

	u, err := repo.GetByExternalID(ctx, "ext_hook_retry")
	require.NoError(t, err)
	assert.Equal(t, int64(7), granter.grants[u.ID])
	assert.Zero(t, u.SignupBonusDue)
}

func TestExistingUserNotOwedBonus(t *testing.T) {
	repo := newMemoryRepo()
	_, _, err := repo.Upsert(context.Background(), Profile{ExternalID: "before_bonus"})
	require.NoError(t, err)

	granter := &recordingGranter{}
	svc := NewService(repo, granter, 5)
	claims := &jwt.Claims{}
	claims.Subject = "before_bonus"

	_, _, err = svc.ResolveSession(context.Background(), claims)
	require.NoError(t, err)
	assert.Empty(t, granter.grants)
}

func TestResolveSessionRejectsDeletedUser(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil, 0)
	_, _, err := repo.Upsert(context.Background(), Profile{ExternalID: "gone"})
	require.NoError(t, err)
	require.NoError(t, repo.MarkDeleted(context.Background(), "gone"))

	claims := &jwt.Claims{}
	claims.Subject = "gone"
	_, _, err = svc.ResolveSession(context.Background(), claims)
	assert.ErrorIs(t, err, ErrUserDeleted)
}

func TestSyncFromIdentity(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil, 0)
	ctx := context.Background()

	created := &identity.Event{Type: identity.EventUserCreated, Data: identity.UserData{
		ID:        "ext_9",
		FirstName: "Grace",
		PublicMetadata: map[string]any{
			"role": "root",
		},
	}}
	require.NoError(t, svc.SyncFromIdentity(ctx, created))
	u, _ := repo.GetByExternalID(ctx, "ext_9")
	require.NotNil(t, u)
	assert.Equal(t, RoleUser, u.Role)
	assert.Equal(t, "Grace", u.Name)

	updated := &identity.Event{Type: identity.EventUserUpdated, Data: identity.UserData{ID: "ext_9", FirstName: "Grace", LastName: "Hopper"}}
	require.NoError(t, svc.SyncFromIdentity(ctx, updated))
	u, _ = repo.GetByExternalID(ctx, "ext_9")
	assert.Equal(t, "Grace Hopper", u.Name)

	require.NoError(t, svc.SyncFromIdentity(ctx, &identity.Event{Type: identity.EventUserDeleted, Data: identity.UserData{ID: "ext_9"}}))
	u, _ = repo.GetByExternalID(ctx, "ext_9")
	assert.True(t, u.IsDeleted())

	assert.NoError(t, svc.SyncFromIdentity(ctx, &identity.Event{Type: "session.created", Data: identity.UserData{ID: "ext_9"}}))
}

func TestSetRole(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil, 0)
	u, _, err := repo.Upsert(context.Background(), Profile{ExternalID: "x"})
	require.NoError(t, err)

	assert.ErrorIs(t, svc.SetRole(context.Background(), u.ID, Role("root")), ErrInvalidRole)
	require.NoError(t, svc.SetRole(context.Background(), u.ID, RoleOwner))
	got, err := svc.Get(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, RoleOwner, got.Role)

	_, err = svc.Get(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestIdentityWebhookHandler(t *testing.T) {
	repo := newMemoryRepo()
	verifier, err := identity.NewVerifier("whsec_" + base64.StdEncoding.EncodeToString([]byte("k")))
	require.NoError(t, err)
	h := NewHandler(NewService(repo, nil, 0), verifier)

	payload := []byte(`{"type":"user.created","data":{"id":"ext_hook","first_name":"Lin"}}`)

	t.Run("valid signature", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/webhooks/identity", bytes.NewReader(payload))
		for k, v := range verifier.SignatureHeaders("msg_1", time.Now(), payload) {
			req.Header[k] = v
		}
		w := httptest.NewRecorder()
		h.WebhookRoutes().ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		u, _ := repo.GetByExternalID(context.Background(), "ext_hook")
		require.NotNil(t, u)
	})

	t.Run("bad signature", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/webhooks/identity", bytes.NewReader(payload))
		req.Header.Set(identity.HeaderID, "msg_2")
		req.Header.Set(identity.HeaderTimestamp, "1")
		req.Header.Set(identity.HeaderSignature, "v1,AAAA")
		w := httptest.NewRecorder()
		h.WebhookRoutes().ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}
