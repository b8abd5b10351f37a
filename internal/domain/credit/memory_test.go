package credit

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// memoryRepo mirrors the Postgres compare-and-swap semantics in process.
type memoryRepo struct {
	mu       sync.Mutex
	accounts map[uuid.UUID]*Account
	txs      []Transaction
	refs     map[string]int

	// appendHook runs before each append; returning an error aborts it.
	appendHook func() error
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{
		accounts: map[uuid.UUID]*Account{},
		refs:     map[string]int{},
	}
}

func (m *memoryRepo) addUser(credits int64) uuid.UUID {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := uuid.New()
	m.accounts[id] = &Account{UserID: id, Credits: credits}
	return id
}

func refKey(t TxType, refType, refID string) string {
	return string(t) + "|" + refType + "|" + refID
}

func (m *memoryRepo) GetAccount(ctx context.Context, userID uuid.UUID) (*Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.accounts[userID]
	if !ok {
		return nil, nil
	}
	cp := *a
	return &cp, nil
}

func (m *memoryRepo) Append(ctx context.Context, expectedVersion int64, t *Transaction) error {
	if m.appendHook != nil {
		if err := m.appendHook(); err != nil {
			return err
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	a, ok := m.accounts[t.UserID]
	if !ok || a.Version != expectedVersion {
		return ErrConflict
	}
	if t.BalanceAfter < 0 {
		return ErrInsufficientCredits
	}
	if t.ReferenceID != nil {
		key := refKey(t.Type, *t.ReferenceType, *t.ReferenceID)
		if _, dup := m.refs[key]; dup {
			return ErrDuplicateReference
		}
		m.refs[key] = len(m.txs)
	}

	a.Credits = t.BalanceAfter
	a.Version++
	t.CreatedAt = time.Now()
	m.txs = append(m.txs, *t)
	return nil
}

func (m *memoryRepo) FindByReference(ctx context.Context, txType TxType, refType, refID string) (*Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i, ok := m.refs[refKey(txType, refType, refID)]
	if !ok {
		return nil, nil
	}
	cp := m.txs[i]
	return &cp, nil
}

func (m *memoryRepo) List(ctx context.Context, userID uuid.UUID, limit, offset int) ([]Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Transaction
	for _, t := range m.txs {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Seq > out[j].Seq })
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memoryRepo) Search(ctx context.Context, f SearchFilters) ([]Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Transaction
	for _, t := range m.txs {
		if f.UserID != nil && t.UserID != *f.UserID {
			continue
		}
		if f.Type != nil && t.Type != *f.Type {
			continue
		}
		if f.ReferenceType != nil && (t.ReferenceType == nil || *t.ReferenceType != *f.ReferenceType) {
			continue
		}
		if f.ReferenceID != nil && (t.ReferenceID == nil || *t.ReferenceID != *f.ReferenceID) {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

// history returns the user's transactions oldest first.
func (m *memoryRepo) history(userID uuid.UUID) []Transaction {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Transaction
	for _, t := range m.txs {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	return out
}
