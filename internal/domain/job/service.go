package job

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100

	EventJobUpdated = "job_updated"
)

// EventPublisher pushes user-scoped events to connected clients.
type EventPublisher interface {
	Publish(ctx context.Context, userID uuid.UUID, eventType string, payload any)
}

// Service handles job business logic
type Service struct {
	repo   Repository
	events EventPublisher
}

// NewService creates job service. events may be nil.
func NewService(repo Repository, events EventPublisher) *Service {
	return &Service{repo: repo, events: events}
}

// Create stores a new job. Jobs always start in pending.
func (s *Service) Create(ctx context.Context, j *Job) error {
	if !j.Category.Valid() {
		return ErrInvalidCategory
	}
	j.Status = StatusPending
	return s.repo.Create(ctx, j)
}

// GetByID returns a job without an ownership check.
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*Job, error) {
	j, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if j == nil {
		return nil, ErrJobNotFound
	}
	return j, nil
}

// Get returns a job owned by userID.
func (s *Service) Get(ctx context.Context, userID, id uuid.UUID) (*Job, error) {
	j, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if j.UserID != userID {
		return nil, ErrNotOwner
	}
	return j, nil
}

// Transition moves a job along a legal edge. A job that left from concurrently fails with
// ErrInvalidTransition.
func (s *Service) Transition(ctx context.Context, id uuid.UUID, from, to Status, out Outcome) (*Job, error) {
	if !CanTransition(from, to) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}

	j, ok, err := s.repo.Transition(ctx, id, from, to, out)
	if err != nil {
		return nil, err
	}
	if !ok {
		current, err := s.repo.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if current == nil {
			return nil, ErrJobNotFound
		}
		return nil, fmt.Errorf("%w: job is %s, not %s", ErrInvalidTransition, current.Status, from)
	}

	log.Info().
		Str("job_id", id.String()).
		Str("from", string(from)).
		Str("to", string(to)).
		Msg("Job status changed")

	if s.events != nil {
		s.events.Publish(ctx, j.UserID, EventJobUpdated, ResponseFromEntity(j))
	}
	return j, nil
}

// List returns the user's jobs newest first.
func (s *Service) List(ctx context.Context, userID uuid.UUID, limit, offset int) ([]Job, error) {
	limit, offset = clampPage(limit, offset)
	return s.repo.ListByUser(ctx, userID, false, limit, offset)
}

// ListSaved returns the user's saved jobs newest first.
func (s *Service) ListSaved(ctx context.Context, userID uuid.UUID, limit, offset int) ([]Job, error) {
	limit, offset = clampPage(limit, offset)
	return s.repo.ListByUser(ctx, userID, true, limit, offset)
}

// SetSaved flags or unflags a job. Only the owner may do so, in any status.
func (s *Service) SetSaved(ctx context.Context, userID, id uuid.UUID, saved bool) (*Job, error) {
	if _, err := s.Get(ctx, userID, id); err != nil {
		return nil, err
	}
	return s.repo.SetSaved(ctx, id, saved)
}

func clampPage(limit, offset int) (int, int) {
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
