package main

import (
	"context"
	"errors"
	"flag"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
	_ "go.uber.org/automaxprocs"

	"github.com/arleytruth/Magicwraptool-sub001/internal/config"
	"github.com/arleytruth/Magicwraptool-sub001/internal/domain/credit"
	"github.com/arleytruth/Magicwraptool-sub001/internal/domain/generation"
	"github.com/arleytruth/Magicwraptool-sub001/internal/domain/job"
	"github.com/arleytruth/Magicwraptool-sub001/internal/domain/realtime"
	"github.com/arleytruth/Magicwraptool-sub001/internal/pkg/database"
	"github.com/arleytruth/Magicwraptool-sub001/internal/pkg/lock"
	"github.com/arleytruth/Magicwraptool-sub001/internal/pkg/logger"
)

const (
	runTimeout = 2 * time.Minute
	runLockKey = "reconciler:run"

	ledgerLockExpiry = 5 * time.Second
)

func main() {
	once := flag.Bool("once", false, "run a single reconciliation pass and exit")
	flag.Parse()

	cfg := config.Load()
	logger.Init(logger.Config{Level: cfg.LogLevel, Environment: cfg.Env, Service: "magicwrap-reconciler"})

	log.Info().
		Str("schedule", cfg.ReconcileSchedule).
		Dur("stale_after", cfg.ReconcileStaleAfter).
		Int("batch_size", cfg.ReconcileBatchSize).
		Msg("Starting reconciler")

	db, err := database.NewPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer database.ClosePostgres(db)

	redisClient, err := database.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer database.CloseRedis(redisClient)

	var locker lock.Locker
	if rl := lock.NewRedisLocker(redisClient, runTimeout); rl != nil {
		locker = rl
	}

	var creditEvents credit.EventPublisher
	var jobEvents job.EventPublisher
	if pub := realtime.NewPublisher(redisClient); pub != nil {
		defer pub.Shutdown()
		creditEvents, jobEvents = pub, pub
	}

	var ledgerLocker lock.Locker
	if cfg.LedgerLockEnabled {
		if rl := lock.NewRedisLocker(redisClient, ledgerLockExpiry); rl != nil {
			ledgerLocker = rl
		}
	}
	creditService := credit.NewService(credit.NewRepository(db), credit.Config{
		MaxRetries: cfg.LedgerMaxRetries,
		Locker:     ledgerLocker,
		Events:     creditEvents,
	})
	jobService := job.NewService(job.NewRepository(db), jobEvents)
	reconciler := generation.NewReconciler(generation.NewRepository(db), jobService, creditService,
		cfg.ReconcileStaleAfter, cfg.ReconcileBatchSize)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	run := func() { runOnce(ctx, reconciler, locker) }

	if *once {
		run()
		return
	}

	c := cron.New(cron.WithChain(cron.Recover(cron.DefaultLogger), cron.SkipIfStillRunning(cron.DefaultLogger)))
	if _, err := c.AddFunc(cfg.ReconcileSchedule, run); err != nil {
		log.Fatal().Err(err).Str("schedule", cfg.ReconcileSchedule).Msg("Invalid reconcile schedule")
	}
	c.Start()
	run()

	<-ctx.Done()
	log.Info().Msg("Shutdown signal received")
	<-c.Stop().Done()
	log.Info().Msg("Reconciler stopped")
}

// runOnce executes one pass. With a locker only one instance runs at a time.
func runOnce(ctx context.Context, reconciler *generation.Reconciler, locker lock.Locker) {
	ctx, cancel := context.WithTimeout(ctx, runTimeout)
	defer cancel()

	if locker != nil {
		unlock, err := locker.Lock(ctx, runLockKey)
		if err != nil {
			if errors.Is(err, lock.ErrNotAcquired) {
				log.Debug().Msg("Reconcile pass skipped, another instance holds the lock")
				return
			}
			log.Error().Err(err).Msg("Reconcile lock failed")
			return
		}
		defer unlock()
	}

	start := time.Now()
	rep, err := reconciler.Run(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Reconcile pass failed")
		return
	}

	event := log.Debug()
	if rep.Claimed > 0 || rep.Orphans > 0 {
		event = log.Info()
	}
	event.
		Int("claimed", rep.Claimed).
		Int("completed", rep.Completed).
		Int("refunded", rep.Refunded).
		Int("orphans", rep.Orphans).
		Int("errors", rep.Errors).
		Dur("took", time.Since(start)).
		Msg("Reconcile pass finished")
}
