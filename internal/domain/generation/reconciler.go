package generation

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/arleytruth/Magicwraptool-sub001/internal/domain/job"
	"github.com/arleytruth/Magicwraptool-sub001/internal/pkg/metrics"
)

// Report summarizes one reconciliation run.
type Report struct {
	Claimed   int
	Completed int
	Refunded  int
	Orphans   int
	Errors    int
}

// Reconciler settles generation logs left open by a crash or a failed refund.
type Reconciler struct {
	repo       Repository
	jobs       Jobs
	ledger     Ledger
	staleAfter time.Duration
	batchSize  int
	now        func() time.Time
}

// NewReconciler creates a reconciler
func NewReconciler(repo Repository, jobs Jobs, ledger Ledger, staleAfter time.Duration, batchSize int) *Reconciler {
	if staleAfter <= 0 {
		staleAfter = 10 * time.Minute
	}
	if batchSize <= 0 {
		batchSize = 50
	}
	return &Reconciler{
		repo:       repo,
		jobs:       jobs,
		ledger:     ledger,
		staleAfter: staleAfter,
		batchSize:  batchSize,
		now:        time.Now,
	}
}

// Run processes one batch of stale logs and orphan debits.
func (r *Reconciler) Run(ctx context.Context) (Report, error) {
	var rep Report
	cutoff := r.now().Add(-r.staleAfter)

	logs, err := r.repo.ClaimStale(ctx, cutoff, r.batchSize)
	if err != nil {
		return rep, err
	}
	rep.Claimed = len(logs)

	for i := range logs {
		outcome := r.settle(ctx, &logs[i])
		metrics.ReconcileItemsTotal.WithLabelValues(outcome).Inc()
		switch outcome {
		case "completed":
			rep.Completed++
		case "refunded":
			rep.Refunded++
		case "error":
			rep.Errors++
		}
	}

	orphans, err := r.repo.OrphanDebits(ctx, cutoff, r.batchSize)
	if err != nil {
		return rep, err
	}
	for _, o := range orphans {
		if refundJob(ctx, r.ledger, o.UserID, o.JobID, -o.Amount, "orphan_debit") {
			rep.Orphans++
			metrics.ReconcileItemsTotal.WithLabelValues("orphan_refunded").Inc()
		} else {
			rep.Errors++
			metrics.ReconcileItemsTotal.WithLabelValues("error").Inc()
		}
	}

	if rep.Claimed > 0 || rep.Orphans > 0 || rep.Errors > 0 {
		log.Info().
			Int("claimed", rep.Claimed).
			Int("completed", rep.Completed).
			Int("refunded", rep.Refunded).
			Int("orphans", rep.Orphans).
			Int("errors", rep.Errors).
			Msg("Reconciliation run finished")
	}
	return rep, nil
}

func (r *Reconciler) settle(ctx context.Context, l *Log) string {
	logger := log.With().Str("job_id", l.JobID.String()).Str("log_status", string(l.Status)).Logger()

	j, err := r.jobs.GetByID(ctx, l.JobID)
	if err != nil {
		logger.Error().Err(err).Msg("Reconcile: load job")
		return "error"
	}

	if j.Status == job.StatusCompleted {
		if _, err := r.repo.MarkLog(ctx, l.JobID, []LogStatus{LogPending, LogFailed}, LogCompleted, ""); err != nil {
			logger.Error().Err(err).Msg("Reconcile: mark completed")
			return "error"
		}
		return "completed"
	}

	if !j.Status.Terminal() {
		_, err := r.jobs.Transition(ctx, j.ID, j.Status, job.StatusFailed, job.Outcome{ErrorMessage: "generation did not finish"})
		if errors.Is(err, job.ErrInvalidTransition) {
			// Moved concurrently; the next run sees the new state.
			return "skipped"
		}
		if err != nil {
			logger.Error().Err(err).Msg("Reconcile: fail job")
			return "error"
		}
	}

	if !refundJob(ctx, r.ledger, l.UserID, l.JobID.String(), l.CreditsConsumed, "reconciled") {
		return "error"
	}
	if _, err := r.repo.MarkLog(ctx, l.JobID, []LogStatus{LogPending, LogFailed}, LogRefunded, ""); err != nil {
		logger.Error().Err(err).Msg("Reconcile: mark refunded")
		return "error"
	}
	logger.Info().Msg("Reconcile: job refunded")
	return "refunded"
}
