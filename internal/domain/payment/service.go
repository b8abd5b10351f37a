package payment

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/arleytruth/Magicwraptool-sub001/internal/domain/credit"
	"github.com/arleytruth/Magicwraptool-sub001/internal/pkg/checkout"
	"github.com/arleytruth/Magicwraptool-sub001/internal/pkg/httpclient"
	"github.com/arleytruth/Magicwraptool-sub001/internal/pkg/metrics"
)

// CheckoutClient creates hosted checkout sessions.
type CheckoutClient interface {
	CreateSession(ctx context.Context, p checkout.SessionParams) (*checkout.Session, error)
}

// Ledger records credit transactions.
type Ledger interface {
	Record(ctx context.Context, e credit.Entry) (*credit.Transaction, error)
}

// Config holds checkout settings.
type Config struct {
	Packages    []Package
	Currency    string
	FrontendURL string
}

// Service handles payment business logic
type Service struct {
	repo     Repository
	checkout CheckoutClient
	ledger   Ledger
	cfg      Config
}

// NewService creates payment service
func NewService(repo Repository, client CheckoutClient, ledger Ledger, cfg Config) *Service {
	if cfg.Currency == "" {
		cfg.Currency = "usd"
	}
	cfg.FrontendURL = strings.TrimRight(cfg.FrontendURL, "/")
	return &Service{repo: repo, checkout: client, ledger: ledger, cfg: cfg}
}

// Packages returns the purchasable credit packages.
func (s *Service) Packages() []Package {
	return s.cfg.Packages
}

func (s *Service) packageByID(id string) (Package, bool) {
	for _, p := range s.cfg.Packages {
		if p.ID == id {
			return p, true
		}
	}
	return Package{}, false
}

// CreateCheckout opens a hosted checkout session for a package and returns its redirect URL.
func (s *Service) CreateCheckout(ctx context.Context, userID uuid.UUID, packageID string) (*Session, error) {
	pkg, ok := s.packageByID(packageID)
	if !ok {
		return nil, ErrUnknownPackage
	}

	session := &Session{
		ID:          uuid.New(),
		UserID:      userID,
		PackageID:   pkg.ID,
		Credits:     pkg.Credits,
		AmountMinor: pkg.AmountMinor,
		Currency:    s.cfg.Currency,
		Status:      StatusPending,
	}
	if err := s.repo.Create(ctx, session); err != nil {
		return nil, err
	}

	remote, err := s.checkout.CreateSession(ctx, checkout.SessionParams{
		AmountMinor: pkg.AmountMinor,
		Currency:    s.cfg.Currency,
		Description: fmt.Sprintf("%d Magic Wrapper credits", pkg.Credits),
		SuccessURL:  s.cfg.FrontendURL + "/credits?checkout=success&session=" + session.ID.String(),
		CancelURL:   s.cfg.FrontendURL + "/credits?checkout=cancel",
		ClientRef:   session.ID.String(),
		Metadata: map[string]string{
			MetaUserID:    userID.String(),
			MetaCredits:   strconv.FormatInt(pkg.Credits, 10),
			MetaPackageID: pkg.ID,
			MetaSessionID: session.ID.String(),
		},
		IdempotencyKey: session.ID.String(),
	})
	if err != nil {
		metrics.UpstreamErrorsTotal.WithLabelValues("checkout", httpclient.Kind(err)).Inc()
		log.Error().Err(err).
			Str("external_service", "checkout").
			Str("session_id", session.ID.String()).
			Msg("Checkout session creation failed")
		if _, markErr := s.repo.SetStatus(context.WithoutCancel(ctx), session.ID, StatusFailed); markErr != nil {
			log.Error().Err(markErr).Str("session_id", session.ID.String()).Msg("Failed to mark checkout session failed")
		}
		return nil, fmt.Errorf("%w: %v", ErrCheckoutFailed, err)
	}

	if err := s.repo.AttachProvider(ctx, session.ID, remote.ID, remote.URL); err != nil {
		return nil, err
	}
	session.ProviderSessionID.String, session.ProviderSessionID.Valid = remote.ID, true
	session.CheckoutURL.String, session.CheckoutURL.Valid = remote.URL, true

	log.Info().
		Str("user_id", userID.String()).
		Str("session_id", session.ID.String()).
		Str("package_id", pkg.ID).
		Msg("Checkout session created")
	return session, nil
}

// HandleEvent applies a verified processor webhook. Replays are harmless.
func (s *Service) HandleEvent(ctx context.Context, event *checkout.Event) error {
	obj := event.Data.Object
	switch event.Type {
	case checkout.EventSessionCompleted:
		if !obj.Paid() {
			log.Info().Str("provider_session_id", obj.ID).Str("payment_status", obj.PaymentStatus).Msg("Checkout completed without payment, ignoring")
			return nil
		}
		return s.completePurchase(ctx, obj)

	case checkout.EventSessionExpired:
		local, err := s.repo.GetByProviderID(ctx, obj.ID)
		if err != nil {
			return err
		}
		if local != nil {
			if _, err := s.repo.SetStatus(ctx, local.ID, StatusExpired); err != nil {
				return err
			}
		}
		return nil

	default:
		log.Debug().Str("event_type", event.Type).Msg("Ignoring payment webhook event")
		return nil
	}
}

func (s *Service) completePurchase(ctx context.Context, obj checkout.SessionObject) error {
	userID, err := uuid.Parse(obj.Metadata[MetaUserID])
	if err != nil {
		return fmt.Errorf("%w: user_id", ErrInvalidPayload)
	}
	credits, err := strconv.ParseInt(obj.Metadata[MetaCredits], 10, 64)
	if err != nil || credits <= 0 || credits > credit.MaxAmount {
		return fmt.Errorf("%w: credits", ErrInvalidPayload)
	}

	local, err := s.repo.GetByProviderID(ctx, obj.ID)
	if err != nil {
		return err
	}
	if local != nil {
		if local.UserID != userID || local.Credits != credits || (obj.AmountTotal != 0 && obj.AmountTotal != local.AmountMinor) {
			log.Error().
				Str("provider_session_id", obj.ID).
				Str("session_id", local.ID.String()).
				Int64("amount_total", obj.AmountTotal).
				Msg("Payment webhook does not match checkout session")
			return ErrSessionMismatch
		}
	}

	tx, err := s.ledger.Record(ctx, credit.Entry{
		UserID:        userID,
		Type:          credit.TxTypePurchase,
		Amount:        credits,
		ReferenceType: credit.RefTypePaymentSession,
		ReferenceID:   obj.ID,
		Metadata: map[string]any{
			"package_id":   obj.Metadata[MetaPackageID],
			"amount_total": obj.AmountTotal,
			"currency":     obj.Currency,
		},
	})
	if err != nil {
		if errors.Is(err, credit.ErrUserNotFound) {
			log.Error().Str("user_id", userID.String()).Str("provider_session_id", obj.ID).Msg("Payment for unknown user")
		}
		return err
	}

	if local != nil {
		if _, err := s.repo.SetStatus(ctx, local.ID, StatusCompleted); err != nil {
			log.Error().Err(err).Str("session_id", local.ID.String()).Msg("Failed to mark checkout session completed")
		}
	}

	log.Info().
		Str("user_id", userID.String()).
		Str("provider_session_id", obj.ID).
		Int64("credits", credits).
		Int64("balance_after", tx.BalanceAfter).
		Msg("Purchase credited")
	return nil
}

// List returns the user's checkout sessions newest first.
func (s *Service) List(ctx context.Context, userID uuid.UUID, limit, offset int) ([]Session, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.ListByUser(ctx, userID, limit, offset)
}
