package admin

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx/types"
	"github.com/rs/zerolog/log"

	"github.com/arleytruth/Magicwraptool-sub001/internal/domain/credit"
	"github.com/arleytruth/Magicwraptool-sub001/internal/domain/user"
)

const (
	defaultAuditLimit = 50
	maxAuditLimit     = 200
)

// Ledger is the credit ledger as seen by admin tooling.
type Ledger interface {
	Record(ctx context.Context, e credit.Entry) (*credit.Transaction, error)
	Balance(ctx context.Context, userID uuid.UUID) (int64, error)
	Search(ctx context.Context, filters credit.SearchFilters) ([]credit.Transaction, error)
}

// Users is the user directory as seen by admin tooling.
type Users interface {
	Get(ctx context.Context, id uuid.UUID) (*user.User, error)
	SetRole(ctx context.Context, id uuid.UUID, role user.Role) error
}

// Service handles admin business logic
type Service struct {
	repo   Repository
	ledger Ledger
	users  Users
}

// NewService creates admin service
func NewService(repo Repository, ledger Ledger, users Users) *Service {
	return &Service{repo: repo, ledger: ledger, users: users}
}

// Balance returns a user's balance.
func (s *Service) Balance(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.ledger.Balance(ctx, userID)
}

// AdjustCredits records a manual adjustment. A non-empty key makes the request idempotent.
func (s *Service) AdjustCredits(ctx context.Context, actor Actor, userID uuid.UUID, req *AdjustCreditsRequest) (*credit.Transaction, error) {
	entry := credit.Entry{
		UserID: userID,
		Type:   credit.TxTypeAdjustment,
		Amount: req.Amount,
		Metadata: map[string]any{
			"admin_id": actor.ID.String(),
			"reason":   req.Reason,
		},
	}
	if req.IdempotencyKey != "" {
		entry.ReferenceType = credit.RefTypeAdmin
		entry.ReferenceID = req.IdempotencyKey
	}

	tx, err := s.ledger.Record(ctx, entry)
	if err != nil {
		return nil, err
	}

	s.audit(ctx, actor, ActionCreditAdjust, userID, nil, map[string]any{
		"transaction_id": tx.ID,
		"amount":         tx.Amount,
		"balance_after":  tx.BalanceAfter,
	}, req.Reason)
	return tx, nil
}

// SearchTransactions filters the ledger across users.
func (s *Service) SearchTransactions(ctx context.Context, filters credit.SearchFilters) ([]credit.Transaction, error) {
	return s.ledger.Search(ctx, filters)
}

// SetRole changes another user's role.
func (s *Service) SetRole(ctx context.Context, actor Actor, userID uuid.UUID, role user.Role) error {
	if actor.ID == userID {
		return ErrSelfRoleChange
	}
	if !role.Valid() {
		return user.ErrInvalidRole
	}

	current, err := s.users.Get(ctx, userID)
	if err != nil {
		return err
	}
	if current.Role == role {
		return nil
	}
	if err := s.users.SetRole(ctx, userID, role); err != nil {
		return err
	}

	log.Info().
		Str("admin_id", actor.ID.String()).
		Str("user_id", userID.String()).
		Str("old_role", string(current.Role)).
		Str("new_role", string(role)).
		Msg("User role changed")

	s.audit(ctx, actor, ActionRoleChange, userID,
		map[string]any{"role": current.Role},
		map[string]any{"role": role}, "")
	return nil
}

// AuditLogs lists recorded admin actions newest first.
func (s *Service) AuditLogs(ctx context.Context, filter AuditFilter) ([]AuditLog, error) {
	if filter.Limit <= 0 {
		filter.Limit = defaultAuditLimit
	}
	if filter.Limit > maxAuditLimit {
		filter.Limit = maxAuditLimit
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	return s.repo.ListAuditLogs(ctx, filter)
}

// audit writes the trail entry. The action already happened, so a failure is only logged.
func (s *Service) audit(ctx context.Context, actor Actor, action string, userID uuid.UUID, oldValue, newValue map[string]any, reason string) {
	entry := &AuditLog{
		ID:         uuid.New(),
		AdminID:    actor.ID,
		Action:     action,
		EntityType: "user",
		EntityID:   uuid.NullUUID{UUID: userID, Valid: true},
		OldValue:   jsonValue(oldValue),
		NewValue:   jsonValue(newValue),
		Reason:     nullString(reason),
		IPAddress:  nullString(actor.IPAddress),
		UserAgent:  nullString(actor.UserAgent),
	}
	if err := s.repo.CreateAuditLog(context.WithoutCancel(ctx), entry); err != nil {
		log.Error().Err(err).
			Str("action", action).
			Str("admin_id", actor.ID.String()).
			Str("user_id", userID.String()).
			Msg("Failed to write audit log")
	}
}

func jsonValue(v map[string]any) types.NullJSONText {
	if v == nil {
		return types.NullJSONText{}
	}
	b, err := json.Marshal(v)
	if err != nil {
		return types.NullJSONText{}
	}
	return types.NullJSONText{JSONText: b, Valid: true}
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
