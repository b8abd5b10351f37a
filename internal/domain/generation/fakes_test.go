package generation

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/arleytruth/Magicwraptool-sub001/internal/domain/credit"
	"github.com/arleytruth/Magicwraptool-sub001/internal/domain/job"
	"github.com/arleytruth/Magicwraptool-sub001/internal/pkg/generator"
)

type fakeLedger struct {
	mu          sync.Mutex
	balances    map[uuid.UUID]int64
	txs         []credit.Transaction
	refs        map[string]int
	failRefunds bool
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{balances: map[uuid.UUID]int64{}, refs: map[string]int{}}
}

func (l *fakeLedger) Record(ctx context.Context, e credit.Entry) (*credit.Transaction, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if e.Type == credit.TxTypeRefund && l.failRefunds {
		return nil, errors.New("ledger unavailable")
	}
	key := string(e.Type) + "|" + e.ReferenceType + "|" + e.ReferenceID
	if i, ok := l.refs[key]; ok {
		if l.txs[i].Amount != e.Amount {
			return nil, credit.ErrReferenceConflict
		}
		cp := l.txs[i]
		return &cp, nil
	}

	next := l.balances[e.UserID] + e.Amount
	if next < 0 {
		return nil, credit.ErrInsufficientCredits
	}
	l.balances[e.UserID] = next
	refType, refID := e.ReferenceType, e.ReferenceID
	t := credit.Transaction{
		ID:            uuid.New(),
		UserID:        e.UserID,
		Type:          e.Type,
		ReferenceType: &refType,
		ReferenceID:   &refID,
		Amount:        e.Amount,
		BalanceAfter:  next,
		CreatedAt:     time.Now(),
	}
	l.refs[key] = len(l.txs)
	l.txs = append(l.txs, t)
	return &t, nil
}

func (l *fakeLedger) balance(userID uuid.UUID) int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.balances[userID]
}

func (l *fakeLedger) count(txType credit.TxType) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for _, t := range l.txs {
		if t.Type == txType {
			n++
		}
	}
	return n
}

// fakeStore implements both Repository and Jobs over shared maps.
type fakeStore struct {
	mu         sync.Mutex
	jobs       map[uuid.UUID]*job.Job
	logs       map[uuid.UUID]*Log
	ledger     *fakeLedger
	failCreate bool
}

func newFakeStore(ledger *fakeLedger) *fakeStore {
	return &fakeStore{jobs: map[uuid.UUID]*job.Job{}, logs: map[uuid.UUID]*Log{}, ledger: ledger}
}

func (s *fakeStore) CreateJobWithLog(ctx context.Context, j *job.Job, l *Log) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failCreate {
		return errors.New("database unavailable")
	}
	now := time.Now()
	j.CreatedAt, j.UpdatedAt = now, now
	l.CreatedAt, l.UpdatedAt = now, now
	jc, lc := *j, *l
	s.jobs[j.ID] = &jc
	s.logs[l.JobID] = &lc
	return nil
}

func (s *fakeStore) MarkLog(ctx context.Context, jobID uuid.UUID, from []LogStatus, to LogStatus, errMsg string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.logs[jobID]
	if !ok {
		return false, nil
	}
	for _, f := range from {
		if l.Status == f {
			l.Status = to
			if errMsg != "" {
				l.Error = sql.NullString{String: errMsg, Valid: true}
			}
			l.UpdatedAt = time.Now()
			return true, nil
		}
	}
	return false, nil
}

func (s *fakeStore) ClaimStale(ctx context.Context, before time.Time, limit int) ([]Log, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Log
	for _, l := range s.logs {
		if (l.Status == LogPending || l.Status == LogFailed) && l.UpdatedAt.Before(before) && len(out) < limit {
			l.UpdatedAt = time.Now()
			out = append(out, *l)
		}
	}
	return out, nil
}

func (s *fakeStore) OrphanDebits(ctx context.Context, before time.Time, limit int) ([]OrphanDebit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ledger.mu.Lock()
	defer s.ledger.mu.Unlock()

	var out []OrphanDebit
	for _, t := range s.ledger.txs {
		if t.Type != credit.TxTypeConsumption || *t.ReferenceType != credit.RefTypeJob || !t.CreatedAt.Before(before) {
			continue
		}
		id, err := uuid.Parse(*t.ReferenceID)
		if err == nil {
			if _, exists := s.jobs[id]; exists {
				continue
			}
		}
		if _, refunded := s.ledger.refs[string(credit.TxTypeRefund)+"|job|"+*t.ReferenceID]; refunded {
			continue
		}
		out = append(out, OrphanDebit{UserID: t.UserID, JobID: *t.ReferenceID, Amount: t.Amount})
	}
	return out, nil
}

func (s *fakeStore) GetByID(ctx context.Context, id uuid.UUID) (*job.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.jobs[id]
	if !ok {
		return nil, job.ErrJobNotFound
	}
	cp := *j
	return &cp, nil
}

func (s *fakeStore) Transition(ctx context.Context, id uuid.UUID, from, to job.Status, out job.Outcome) (*job.Job, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !job.CanTransition(from, to) {
		return nil, job.ErrInvalidTransition
	}
	j, ok := s.jobs[id]
	if !ok {
		return nil, job.ErrJobNotFound
	}
	if j.Status != from {
		return nil, job.ErrInvalidTransition
	}
	j.Status = to
	if out.OutputImageURL != "" {
		j.OutputImageURL = sql.NullString{String: out.OutputImageURL, Valid: true}
	}
	if out.ErrorMessage != "" {
		j.ErrorMessage = sql.NullString{String: out.ErrorMessage, Valid: true}
	}
	cp := *j
	return &cp, nil
}

func (s *fakeStore) log(jobID uuid.UUID) Log {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.logs[jobID]
}

// age backdates every log so the reconciler treats it as stale.
func (s *fakeStore) age(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, l := range s.logs {
		l.UpdatedAt = l.UpdatedAt.Add(-d)
	}
}

type fakeGenerator struct {
	mu     sync.Mutex
	calls  int
	err    error
	block  bool
	output string
	after  func()
}

func (g *fakeGenerator) Generate(ctx context.Context, req generator.Request) (*generator.Result, error) {
	g.mu.Lock()
	g.calls++
	g.mu.Unlock()
	if g.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if g.err != nil {
		return nil, g.err
	}
	if g.after != nil {
		g.after()
	}
	return &generator.Result{OutputURL: g.output}, nil
}
