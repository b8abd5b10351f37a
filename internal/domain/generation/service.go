package generation

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/arleytruth/Magicwraptool-sub001/internal/domain/credit"
	"github.com/arleytruth/Magicwraptool-sub001/internal/domain/job"
	"github.com/arleytruth/Magicwraptool-sub001/internal/pkg/generator"
	"github.com/arleytruth/Magicwraptool-sub001/internal/pkg/httpclient"
	"github.com/arleytruth/Magicwraptool-sub001/internal/pkg/metrics"
)

// Ledger records credit transactions.
type Ledger interface {
	Record(ctx context.Context, e credit.Entry) (*credit.Transaction, error)
}

// Generator produces one composite image.
type Generator interface {
	Generate(ctx context.Context, req generator.Request) (*generator.Result, error)
}

// Jobs drives job state.
type Jobs interface {
	GetByID(ctx context.Context, id uuid.UUID) (*job.Job, error)
	Transition(ctx context.Context, id uuid.UUID, from, to job.Status, out job.Outcome) (*job.Job, error)
}

// Config tunes the submit flow.
type Config struct {
	CreditCost int64
	Timeout    time.Duration
}

// Service orchestrates a generation: debit, job, generator call, settlement.
type Service struct {
	repo      Repository
	jobs      Jobs
	ledger    Ledger
	generator Generator
	cost      int64
	timeout   time.Duration
}

// NewService creates generation service
func NewService(repo Repository, jobs Jobs, ledger Ledger, gen Generator, cfg Config) *Service {
	if cfg.CreditCost <= 0 {
		cfg.CreditCost = 1
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 90 * time.Second
	}
	return &Service{
		repo:      repo,
		jobs:      jobs,
		ledger:    ledger,
		generator: gen,
		cost:      cfg.CreditCost,
		timeout:   cfg.Timeout,
	}
}

// Submit runs one generation synchronously.
//
// Credits are debited before anything else so an insufficient balance blocks the job.
// On generator failure the job ends failed and the debit is refunded; the failed job is
// returned together with ErrGenerationFailed.
func (s *Service) Submit(ctx context.Context, userID uuid.UUID, req *SubmitRequest) (*job.Job, error) {
	category := job.Category(req.Category)
	if !category.Valid() {
		return nil, job.ErrInvalidCategory
	}

	jobID := uuid.New()
	if _, err := s.ledger.Record(ctx, credit.Entry{
		UserID:        userID,
		Type:          credit.TxTypeConsumption,
		Amount:        -s.cost,
		ReferenceType: credit.RefTypeJob,
		ReferenceID:   jobID.String(),
		Metadata:      map[string]any{"category": req.Category},
	}); err != nil {
		metrics.GenerationJobsTotal.WithLabelValues(req.Category, "rejected").Inc()
		return nil, err
	}

	j := &job.Job{
		ID:               jobID,
		UserID:           userID,
		Category:         category,
		ObjectImageURL:   req.ObjectImageURL,
		MaterialImageURL: req.MaterialImageURL,
		Prompt:           job.BuildPrompt(category, req.Prompt),
		Status:           job.StatusPending,
	}
	l := &Log{
		ID:              uuid.New(),
		JobID:           jobID,
		UserID:          userID,
		Status:          LogPending,
		CreditsConsumed: s.cost,
		Category:        sql.NullString{String: req.Category, Valid: true},
	}
	if err := s.repo.CreateJobWithLog(ctx, j, l); err != nil {
		// Nothing references the debit yet; give it back now.
		s.refund(context.WithoutCancel(ctx), userID, jobID, "job_create_failed")
		return nil, fmt.Errorf("create job: %w", err)
	}

	j, err := s.jobs.Transition(ctx, jobID, job.StatusPending, job.StatusProcessing, job.Outcome{})
	if err != nil {
		return nil, s.settleFailure(ctx, userID, jobID, job.StatusPending, category, err)
	}

	start := time.Now()
	genCtx, cancel := context.WithTimeout(ctx, s.timeout)
	result, err := s.generator.Generate(genCtx, generator.Request{
		ObjectImageURL:   j.ObjectImageURL,
		MaterialImageURL: j.MaterialImageURL,
		Category:         string(category),
		Prompt:           j.Prompt,
	})
	cancel()
	metrics.GenerationDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.UpstreamErrorsTotal.WithLabelValues("generator", httpclient.Kind(err)).Inc()
		log.Error().Err(err).
			Str("job_id", jobID.String()).
			Str("external_service", "generator").
			Bool("transient", httpclient.IsTransient(err)).
			Msg("Generation call failed")
		return s.failed(ctx, userID, jobID, category, err)
	}

	// The image exists; settle even if the client hung up.
	settleCtx := context.WithoutCancel(ctx)
	done, err := s.jobs.Transition(settleCtx, jobID, job.StatusProcessing, job.StatusCompleted, job.Outcome{OutputImageURL: result.OutputURL})
	if err != nil {
		// The reconciler settles the pending log.
		return nil, fmt.Errorf("complete job: %w", err)
	}
	if _, err := s.repo.MarkLog(settleCtx, jobID, []LogStatus{LogPending}, LogCompleted, ""); err != nil {
		log.Error().Err(err).Str("job_id", jobID.String()).Msg("Failed to mark generation log completed")
	}

	metrics.GenerationJobsTotal.WithLabelValues(string(category), string(job.StatusCompleted)).Inc()
	return done, nil
}

// failed settles a generator failure and returns the failed job with ErrGenerationFailed.
func (s *Service) failed(ctx context.Context, userID, jobID uuid.UUID, category job.Category, cause error) (*job.Job, error) {
	if err := s.settleFailure(ctx, userID, jobID, job.StatusProcessing, category, cause); !errors.Is(err, ErrGenerationFailed) {
		return nil, err
	}
	j, err := s.jobs.GetByID(context.WithoutCancel(ctx), jobID)
	if err != nil {
		return nil, ErrGenerationFailed
	}
	return j, ErrGenerationFailed
}

// settleFailure moves the job to failed, then refunds. It survives a canceled request context.
func (s *Service) settleFailure(ctx context.Context, userID, jobID uuid.UUID, from job.Status, category job.Category, cause error) error {
	ctx = context.WithoutCancel(ctx)

	if _, err := s.jobs.Transition(ctx, jobID, from, job.StatusFailed, job.Outcome{ErrorMessage: failureMessage(cause)}); err != nil {
		log.Error().Err(err).Str("job_id", jobID.String()).Msg("Failed to mark job failed")
		return fmt.Errorf("fail job: %w", err)
	}
	if _, err := s.repo.MarkLog(ctx, jobID, []LogStatus{LogPending}, LogFailed, cause.Error()); err != nil {
		log.Error().Err(err).Str("job_id", jobID.String()).Msg("Failed to mark generation log failed")
	}
	if s.refund(ctx, userID, jobID, "generation_failed") {
		if _, err := s.repo.MarkLog(ctx, jobID, []LogStatus{LogPending, LogFailed}, LogRefunded, ""); err != nil {
			log.Error().Err(err).Str("job_id", jobID.String()).Msg("Failed to mark generation log refunded")
		}
	}

	metrics.GenerationJobsTotal.WithLabelValues(string(category), string(job.StatusFailed)).Inc()
	return ErrGenerationFailed
}

// refund returns the job's debit. It is idempotent by reference.
func (s *Service) refund(ctx context.Context, userID, jobID uuid.UUID, reason string) bool {
	return refundJob(ctx, s.ledger, userID, jobID.String(), s.cost, reason)
}

func refundJob(ctx context.Context, ledger Ledger, userID uuid.UUID, jobID string, amount int64, reason string) bool {
	_, err := ledger.Record(ctx, credit.Entry{
		UserID:        userID,
		Type:          credit.TxTypeRefund,
		Amount:        amount,
		ReferenceType: credit.RefTypeJob,
		ReferenceID:   jobID,
		Metadata:      map[string]any{"reason": reason},
	})
	if err != nil {
		log.Error().Err(err).
			Str("user_id", userID.String()).
			Str("job_id", jobID).
			Str("reason", reason).
			Msg("Refund failed, left for reconciliation")
		return false
	}
	return true
}

// failureMessage is stored on the job; upstream detail stays in logs.
func failureMessage(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, httpclient.ErrTimeout):
		return "generation timed out"
	case errors.Is(err, generator.ErrEmptyOutput):
		return "generation returned no image"
	default:
		return "generation failed"
	}
}
