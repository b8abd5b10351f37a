package admin

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arleytruth/Magicwraptool-sub001/internal/domain/credit"
	"github.com/arleytruth/Magicwraptool-sub001/internal/domain/user"
	"github.com/arleytruth/Magicwraptool-sub001/internal/middleware"
)

type fakeLedger struct {
	mu       sync.Mutex
	balances map[uuid.UUID]int64
	entries  []credit.Entry
	filters  credit.SearchFilters
}

func (l *fakeLedger) Record(ctx context.Context, e credit.Entry) (*credit.Transaction, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	bal, ok := l.balances[e.UserID]
	if !ok {
		return nil, credit.ErrUserNotFound
	}
	if bal+e.Amount < 0 {
		return nil, credit.ErrInsufficientCredits
	}
	l.balances[e.UserID] = bal + e.Amount
	l.entries = append(l.entries, e)
	return &credit.Transaction{ID: uuid.New(), UserID: e.UserID, Type: e.Type, Amount: e.Amount, BalanceAfter: bal + e.Amount}, nil
}

func (l *fakeLedger) Balance(ctx context.Context, userID uuid.UUID) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	bal, ok := l.balances[userID]
	if !ok {
		return 0, credit.ErrUserNotFound
	}
	return bal, nil
}

func (l *fakeLedger) Search(ctx context.Context, filters credit.SearchFilters) ([]credit.Transaction, error) {
	l.filters = filters
	return []credit.Transaction{}, nil
}

type fakeUsers map[uuid.UUID]*user.User

func (f fakeUsers) Get(ctx context.Context, id uuid.UUID) (*user.User, error) {
	u, ok := f[id]
	if !ok {
		return nil, user.ErrUserNotFound
	}
	return u, nil
}

func (f fakeUsers) SetRole(ctx context.Context, id uuid.UUID, role user.Role) error {
	f[id].Role = role
	return nil
}

type memoryAudit struct {
	logs []AuditLog
	err  error
}

func (m *memoryAudit) CreateAuditLog(ctx context.Context, entry *AuditLog) error {
	if m.err != nil {
		return m.err
	}
	m.logs = append(m.logs, *entry)
	return nil
}

func (m *memoryAudit) ListAuditLogs(ctx context.Context, filter AuditFilter) ([]AuditLog, error) {
	return m.logs, nil
}

type fixture struct {
	svc    *Service
	ledger *fakeLedger
	users  fakeUsers
	audit  *memoryAudit
	admin  uuid.UUID
	target uuid.UUID
}

func newFixture() *fixture {
	f := &fixture{
		ledger: &fakeLedger{balances: map[uuid.UUID]int64{}},
		users:  fakeUsers{},
		audit:  &memoryAudit{},
		admin:  uuid.New(),
		target: uuid.New(),
	}
	f.ledger.balances[f.target] = 10
	f.users[f.admin] = &user.User{ID: f.admin, Role: user.RoleOwner}
	f.users[f.target] = &user.User{ID: f.target, Role: user.RoleUser}
	f.svc = NewService(f.audit, f.ledger, f.users)
	return f
}

func TestAdjustCreditsRecordsAdjustment(t *testing.T) {
	f := newFixture()

	tx, err := f.svc.AdjustCredits(context.Background(), Actor{ID: f.admin}, f.target,
		&AdjustCreditsRequest{Amount: 25, Reason: "support goodwill", IdempotencyKey: "ticket-42"})
	require.NoError(t, err)
	assert.Equal(t, int64(35), tx.BalanceAfter)

	require.Len(t, f.ledger.entries, 1)
	e := f.ledger.entries[0]
	assert.Equal(t, credit.TxTypeAdjustment, e.Type)
	assert.Equal(t, credit.RefTypeAdmin, e.ReferenceType)
	assert.Equal(t, "ticket-42", e.ReferenceID)
	assert.Equal(t, f.admin.String(), e.Metadata["admin_id"])
	assert.Equal(t, "support goodwill", e.Metadata["reason"])

	require.Len(t, f.audit.logs, 1)
	assert.Equal(t, ActionCreditAdjust, f.audit.logs[0].Action)
	assert.Equal(t, f.target, f.audit.logs[0].EntityID.UUID)
}

func TestAdjustCreditsCannotOverdraw(t *testing.T) {
	f := newFixture()

	_, err := f.svc.AdjustCredits(context.Background(), Actor{ID: f.admin}, f.target,
		&AdjustCreditsRequest{Amount: -11, Reason: "chargeback"})
	assert.ErrorIs(t, err, credit.ErrInsufficientCredits)
	assert.Empty(t, f.audit.logs)
}

func TestAdjustCreditsSurvivesAuditFailure(t *testing.T) {
	f := newFixture()
	f.audit.err = errors.New("audit table down")

	_, err := f.svc.AdjustCredits(context.Background(), Actor{ID: f.admin}, f.target,
		&AdjustCreditsRequest{Amount: -5, Reason: "chargeback"})
	require.NoError(t, err)
	assert.Equal(t, int64(5), f.ledger.balances[f.target])
}

func TestSetRole(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	actor := Actor{ID: f.admin}

	require.NoError(t, f.svc.SetRole(ctx, actor, f.target, user.RoleAdmin))
	assert.Equal(t, user.RoleAdmin, f.users[f.target].Role)
	require.Len(t, f.audit.logs, 1)
	assert.JSONEq(t, `{"role":"user"}`, string(f.audit.logs[0].OldValue.JSONText))
	assert.JSONEq(t, `{"role":"admin"}`, string(f.audit.logs[0].NewValue.JSONText))

	// unchanged role writes nothing
	require.NoError(t, f.svc.SetRole(ctx, actor, f.target, user.RoleAdmin))
	assert.Len(t, f.audit.logs, 1)

	assert.ErrorIs(t, f.svc.SetRole(ctx, actor, f.admin, user.RoleUser), ErrSelfRoleChange)
	assert.ErrorIs(t, f.svc.SetRole(ctx, actor, f.target, user.Role("root")), user.ErrInvalidRole)
	assert.ErrorIs(t, f.svc.SetRole(ctx, actor, uuid.New(), user.RoleAdmin), user.ErrUserNotFound)
}

func newRouter(h *Handler, userID uuid.UUID, role string) http.Handler {
	r := chi.NewRouter()
	auth := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			next.ServeHTTP(w, req.WithContext(middleware.WithUser(req.Context(), userID, role)))
		})
	}
	r.Mount("/admin", h.Routes(auth))
	return r
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(method, path, &buf))
	return w
}

func TestRoutesRequireRole(t *testing.T) {
	f := newFixture()
	h := NewHandler(f.svc)
	path := "/admin/users/" + f.target.String() + "/credits"

	assert.Equal(t, http.StatusForbidden, do(t, newRouter(h, f.admin, "user"), http.MethodGet, path, nil).Code)
	assert.Equal(t, http.StatusOK, do(t, newRouter(h, f.admin, "admin"), http.MethodGet, path, nil).Code)

	rolePath := "/admin/users/" + f.target.String() + "/role"
	body := map[string]string{"role": "admin"}
	assert.Equal(t, http.StatusForbidden, do(t, newRouter(h, f.admin, "admin"), http.MethodPatch, rolePath, body).Code)
	assert.Equal(t, http.StatusOK, do(t, newRouter(h, f.admin, "owner"), http.MethodPatch, rolePath, body).Code)
}

func TestAdjustHandler(t *testing.T) {
	f := newFixture()
	router := newRouter(NewHandler(f.svc), f.admin, "admin")
	path := "/admin/users/" + f.target.String() + "/credits/adjust"

	w := do(t, router, http.MethodPost, path, map[string]any{"amount": 15, "reason": "promo"})
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"balance_after":25`)

	w = do(t, router, http.MethodPost, path, map[string]any{"amount": 0, "reason": "promo"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = do(t, router, http.MethodPost, path, map[string]any{"amount": -100, "reason": "chargeback"})
	assert.Equal(t, http.StatusPaymentRequired, w.Code)

	w = do(t, router, http.MethodPost, "/admin/users/not-a-uuid/credits/adjust", map[string]any{"amount": 1, "reason": "promo"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSearchTransactionsHandler(t *testing.T) {
	f := newFixture()
	router := newRouter(NewHandler(f.svc), f.admin, "admin")

	w := do(t, router, http.MethodGet, "/admin/credits/transactions?user_id="+f.target.String()+"&type=refund&reference_type=job&limit=10", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, f.ledger.filters.UserID)
	assert.Equal(t, f.target, *f.ledger.filters.UserID)
	assert.Equal(t, credit.TxTypeRefund, *f.ledger.filters.Type)
	assert.Equal(t, "job", *f.ledger.filters.ReferenceType)
	assert.Equal(t, 10, f.ledger.filters.Limit)

	w = do(t, router, http.MethodGet, "/admin/credits/transactions?type=gift&from=yesterday", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), `"type"`)
	assert.Contains(t, w.Body.String(), `"from"`)
}

func TestCreateAuditLogSQL(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewRepository(sqlx.NewDb(db, "postgres"))

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO audit_logs`)).
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(time.Now()))

	entry := &AuditLog{ID: uuid.New(), AdminID: uuid.New(), Action: ActionCreditAdjust, EntityType: "user"}
	require.NoError(t, repo.CreateAuditLog(context.Background(), entry))
	assert.False(t, entry.CreatedAt.IsZero())
	require.NoError(t, mock.ExpectationsWereMet())
}
