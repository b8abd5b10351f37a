package user

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/arleytruth/Magicwraptool-sub001/internal/pkg/identity"
	"github.com/arleytruth/Magicwraptool-sub001/internal/pkg/jwt"
)

// CreditGranter grants the one-time signup bonus. Implementations must be idempotent per user.
type CreditGranter interface {
	GrantSignupBonus(ctx context.Context, userID uuid.UUID, amount int64) error
}

// Service handles user business logic
type Service struct {
	repo        Repository
	credits     CreditGranter
	signupBonus int64
}

// NewService creates user service. credits may be nil when no signup bonus is configured.
func NewService(repo Repository, credits CreditGranter, signupBonus int64) *Service {
	return &Service{
		repo:        repo,
		credits:     credits,
		signupBonus: signupBonus,
	}
}

// Get returns a user by internal id
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrUserNotFound
	}
	return u, nil
}

// ResolveSession maps verified session claims to a local user, creating it on first sight.
func (s *Service) ResolveSession(ctx context.Context, claims *jwt.Claims) (uuid.UUID, string, error) {
	u, err := s.repo.GetByExternalID(ctx, claims.Subject)
	if err != nil {
		return uuid.Nil, "", err
	}

	if u == nil {
		u, err = s.upsert(ctx, Profile{
			ExternalID:    claims.Subject,
			Email:         claims.Email,
			EmailVerified: claims.EmailVerified,
			Name:          claims.Name,
			AvatarURL:     claims.Picture,
			RoleClaim:     claims.RoleClaim(),
		})
		if err != nil {
			return uuid.Nil, "", err
		}
	}

	if u.IsDeleted() {
		return uuid.Nil, "", ErrUserDeleted
	}
	if err := s.grantOwedBonus(ctx, u); err != nil {
		return uuid.Nil, "", err
	}
	return u.ID, string(u.Role), nil
}

// SyncFromIdentity applies a lifecycle event from the identity provider. Unknown events are ignored.
func (s *Service) SyncFromIdentity(ctx context.Context, event *identity.Event) error {
	switch event.Type {
	case identity.EventUserCreated, identity.EventUserUpdated:
		email, verified := event.Data.PrimaryEmail()
		u, err := s.upsert(ctx, Profile{
			ExternalID:    event.Data.ID,
			Email:         email,
			EmailVerified: verified,
			Name:          event.Data.FullName(),
			AvatarURL:     event.Data.ImageURL,
			RoleClaim:     event.Data.RoleClaim(),
		})
		if err != nil {
			return err
		}
		if u.IsDeleted() {
			return nil
		}
		return s.grantOwedBonus(ctx, u)
	case identity.EventUserDeleted:
		if err := s.repo.MarkDeleted(ctx, event.Data.ID); err != nil {
			return err
		}
		log.Info().Str("external_id", event.Data.ID).Msg("User marked deleted")
		return nil
	default:
		log.Debug().Str("event_type", event.Type).Msg("Ignoring identity event")
		return nil
	}
}

// SetRole changes a user's role.
func (s *Service) SetRole(ctx context.Context, id uuid.UUID, role Role) error {
	if !role.Valid() {
		return ErrInvalidRole
	}
	return s.repo.UpdateRole(ctx, id, role)
}

func (s *Service) upsert(ctx context.Context, p Profile) (*User, error) {
	if s.credits != nil && s.signupBonus > 0 {
		p.SignupBonus = s.signupBonus
	}
	u, inserted, err := s.repo.Upsert(ctx, p)
	if err != nil {
		return nil, err
	}
	if inserted {
		log.Info().
			Str("user_id", u.ID.String()).
			Str("external_id", u.ExternalID).
			Str("role", string(u.Role)).
			Msg("User created")
	}
	return u, nil
}

// grantOwedBonus records the welcome credit the user was created with. The grant is
// idempotent by reference, so a failure anywhere leaves it owed for the next session or sync.
func (s *Service) grantOwedBonus(ctx context.Context, u *User) error {
	if s.credits == nil || u.SignupBonusDue <= 0 {
		return nil
	}
	if err := s.credits.GrantSignupBonus(ctx, u.ID, u.SignupBonusDue); err != nil {
		return fmt.Errorf("grant signup bonus: %w", err)
	}
	if err := s.repo.ClearSignupBonus(ctx, u.ID); err != nil {
		log.Warn().Err(err).Str("user_id", u.ID.String()).Msg("Signup bonus granted but still marked owed")
		return nil
	}
	u.SignupBonusDue = 0
	return nil
}
