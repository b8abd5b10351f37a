package credit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/arleytruth/Magicwraptool-sub001/internal/pkg/lock"
	"github.com/arleytruth/Magicwraptool-sub001/internal/pkg/metrics"
)

const (
	defaultMaxRetries = 5
	defaultListLimit  = 20
	maxListLimit      = 100

	EventBalanceUpdated = "balance_updated"
)

// EventPublisher pushes user-scoped events to connected clients.
type EventPublisher interface {
	Publish(ctx context.Context, userID uuid.UUID, eventType string, payload any)
}

// Config tunes the ledger service.
type Config struct {
	MaxRetries int
	Locker     lock.Locker
	Events     EventPublisher
}

// Service owns every balance mutation.
type Service struct {
	repo       Repository
	maxRetries int
	locker     lock.Locker
	events     EventPublisher
}

// NewService creates a new credit service
func NewService(repo Repository, cfg Config) *Service {
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = defaultMaxRetries
	}
	return &Service{
		repo:       repo,
		maxRetries: cfg.MaxRetries,
		locker:     cfg.Locker,
		events:     cfg.Events,
	}
}

// Record validates e and appends it to the user's ledger.
//
// A replay of an existing reference with the same user and amount returns the original
// transaction without mutating anything.
func (s *Service) Record(ctx context.Context, e Entry) (*Transaction, error) {
	start := time.Now()
	defer func() { metrics.LedgerRecordDuration.Observe(time.Since(start).Seconds()) }()

	if err := validateEntry(e); err != nil {
		metrics.LedgerTransactionsTotal.WithLabelValues(string(e.Type), "invalid").Inc()
		return nil, err
	}

	metadata, err := encodeMetadata(e.Metadata)
	if err != nil {
		metrics.LedgerTransactionsTotal.WithLabelValues(string(e.Type), "invalid").Inc()
		return nil, err
	}

	if s.locker != nil {
		unlock, err := s.locker.Lock(ctx, "ledger:"+e.UserID.String())
		if err != nil {
			log.Warn().Err(err).Str("user_id", e.UserID.String()).Msg("Ledger lock unavailable, relying on version check")
		} else {
			defer unlock()
		}
	}

	if e.HasReference() {
		existing, err := s.repo.FindByReference(ctx, e.Type, e.ReferenceType, e.ReferenceID)
		if err != nil {
			return nil, s.fail(e, "error", err)
		}
		if existing != nil {
			return s.replay(e, existing)
		}
	}

	for attempt := 0; ; attempt++ {
		acct, err := s.repo.GetAccount(ctx, e.UserID)
		if err != nil {
			return nil, s.fail(e, "error", err)
		}
		if acct == nil {
			return nil, s.fail(e, "not_found", ErrUserNotFound)
		}

		newBalance := acct.Credits + e.Amount
		if newBalance < 0 {
			return nil, s.fail(e, "insufficient", ErrInsufficientCredits)
		}

		t := &Transaction{
			ID:            uuid.New(),
			UserID:        e.UserID,
			Type:          e.Type,
			ReferenceType: strPtr(e.ReferenceType),
			ReferenceID:   strPtr(e.ReferenceID),
			Amount:        e.Amount,
			BalanceAfter:  newBalance,
			Seq:           acct.Version + 1,
			Metadata:      metadata,
		}

		err = s.repo.Append(ctx, acct.Version, t)
		switch {
		case err == nil:
			s.committed(ctx, t)
			return t, nil

		case errors.Is(err, ErrConflict):
			if attempt+1 >= s.maxRetries {
				return nil, s.fail(e, "conflict", ErrConflict)
			}
			metrics.LedgerConflictRetriesTotal.Inc()
			log.Debug().
				Str("user_id", e.UserID.String()).
				Int("attempt", attempt+1).
				Int64("version", acct.Version).
				Msg("Ledger version conflict, retrying")
			if err := backoff(ctx, attempt); err != nil {
				return nil, s.fail(e, "error", err)
			}

		case errors.Is(err, ErrDuplicateReference):
			existing, findErr := s.repo.FindByReference(ctx, e.Type, e.ReferenceType, e.ReferenceID)
			if findErr != nil {
				return nil, s.fail(e, "error", findErr)
			}
			if existing == nil {
				return nil, s.fail(e, "error", fmt.Errorf("reference %s/%s vanished after duplicate", e.ReferenceType, e.ReferenceID))
			}
			return s.replay(e, existing)

		case errors.Is(err, ErrInsufficientCredits):
			return nil, s.fail(e, "insufficient", ErrInsufficientCredits)

		default:
			return nil, s.fail(e, "error", err)
		}
	}
}

func (s *Service) replay(e Entry, existing *Transaction) (*Transaction, error) {
	if existing.UserID != e.UserID || existing.Amount != e.Amount {
		return nil, s.fail(e, "reference_conflict", ErrReferenceConflict)
	}
	metrics.LedgerTransactionsTotal.WithLabelValues(string(e.Type), "replayed").Inc()
	log.Debug().
		Str("user_id", e.UserID.String()).
		Str("reference", e.ReferenceType+"/"+e.ReferenceID).
		Msg("Ledger reference replayed")
	return existing, nil
}

func (s *Service) committed(ctx context.Context, t *Transaction) {
	metrics.LedgerTransactionsTotal.WithLabelValues(string(t.Type), "recorded").Inc()

	ref := ""
	if t.ReferenceType != nil && t.ReferenceID != nil {
		ref = *t.ReferenceType + "/" + *t.ReferenceID
	}
	log.Info().
		Str("user_id", t.UserID.String()).
		Str("type", string(t.Type)).
		Int64("amount", t.Amount).
		Int64("balance_after", t.BalanceAfter).
		Int64("seq", t.Seq).
		Str("reference", ref).
		Msg("Ledger transaction recorded")

	if s.events != nil {
		s.events.Publish(ctx, t.UserID, EventBalanceUpdated, map[string]any{
			"balance":        t.BalanceAfter,
			"transaction_id": t.ID,
			"type":           t.Type,
			"amount":         t.Amount,
		})
	}
}

func (s *Service) fail(e Entry, result string, err error) error {
	metrics.LedgerTransactionsTotal.WithLabelValues(string(e.Type), result).Inc()
	return err
}

// Balance returns the user's current balance.
func (s *Service) Balance(ctx context.Context, userID uuid.UUID) (int64, error) {
	acct, err := s.repo.GetAccount(ctx, userID)
	if err != nil {
		return 0, err
	}
	if acct == nil {
		return 0, ErrUserNotFound
	}
	return acct.Credits, nil
}

// List returns the user's transactions newest first. A user without history gets an empty slice.
func (s *Service) List(ctx context.Context, userID uuid.UUID, limit, offset int) ([]Transaction, error) {
	limit, offset = ClampPage(limit, offset)
	items, err := s.repo.List(ctx, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []Transaction{}
	}
	return items, nil
}

// Search returns filtered transactions (admin use)
func (s *Service) Search(ctx context.Context, filters SearchFilters) ([]Transaction, error) {
	filters.Limit, filters.Offset = ClampPage(filters.Limit, filters.Offset)
	items, err := s.repo.Search(ctx, filters)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []Transaction{}
	}
	return items, nil
}

// FindByReference returns the transaction for a reference, or nil.
func (s *Service) FindByReference(ctx context.Context, txType TxType, refType, refID string) (*Transaction, error) {
	return s.repo.FindByReference(ctx, txType, refType, refID)
}

// GrantSignupBonus records the one-time welcome adjustment for a new user.
func (s *Service) GrantSignupBonus(ctx context.Context, userID uuid.UUID, amount int64) error {
	_, err := s.Record(ctx, Entry{
		UserID:        userID,
		Type:          TxTypeAdjustment,
		Amount:        amount,
		ReferenceType: RefTypeSignup,
		ReferenceID:   userID.String(),
		Metadata:      map[string]any{"reason": "signup_bonus"},
	})
	return err
}

func validateEntry(e Entry) error {
	if !e.Type.Valid() {
		return ErrInvalidType
	}
	if !e.Type.ValidAmount(e.Amount) || e.Amount > MaxAmount || e.Amount < -MaxAmount {
		return ErrInvalidAmount
	}
	if e.ReferenceID != "" && e.ReferenceType == "" {
		return ErrInvalidReference
	}
	return nil
}

func encodeMetadata(m map[string]any) ([]byte, error) {
	if len(m) == 0 {
		return []byte(`{}`), nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("encode metadata: %w", err)
	}
	return b, nil
}

// ClampPage applies the default and maximum page size.
func ClampPage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// backoff sleeps a short jittered interval that grows with attempt.
func backoff(ctx context.Context, attempt int) error {
	d := time.Duration(attempt+1)*5*time.Millisecond + time.Duration(rand.IntN(5000))*time.Microsecond
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
