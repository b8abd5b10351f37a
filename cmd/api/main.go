package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	_ "go.uber.org/automaxprocs"

	"github.com/arleytruth/Magicwraptool-sub001/internal/config"
	"github.com/arleytruth/Magicwraptool-sub001/internal/domain/admin"
	"github.com/arleytruth/Magicwraptool-sub001/internal/domain/content"
	"github.com/arleytruth/Magicwraptool-sub001/internal/domain/credit"
	"github.com/arleytruth/Magicwraptool-sub001/internal/domain/generation"
	"github.com/arleytruth/Magicwraptool-sub001/internal/domain/job"
	"github.com/arleytruth/Magicwraptool-sub001/internal/domain/payment"
	"github.com/arleytruth/Magicwraptool-sub001/internal/domain/realtime"
	"github.com/arleytruth/Magicwraptool-sub001/internal/domain/upload"
	"github.com/arleytruth/Magicwraptool-sub001/internal/domain/user"
	"github.com/arleytruth/Magicwraptool-sub001/internal/middleware"
	"github.com/arleytruth/Magicwraptool-sub001/internal/pkg/checkout"
	"github.com/arleytruth/Magicwraptool-sub001/internal/pkg/cms"
	"github.com/arleytruth/Magicwraptool-sub001/internal/pkg/database"
	"github.com/arleytruth/Magicwraptool-sub001/internal/pkg/generator"
	"github.com/arleytruth/Magicwraptool-sub001/internal/pkg/identity"
	"github.com/arleytruth/Magicwraptool-sub001/internal/pkg/imaging"
	"github.com/arleytruth/Magicwraptool-sub001/internal/pkg/jwt"
	"github.com/arleytruth/Magicwraptool-sub001/internal/pkg/lock"
	"github.com/arleytruth/Magicwraptool-sub001/internal/pkg/logger"
	"github.com/arleytruth/Magicwraptool-sub001/internal/pkg/migrate"
	pkgresponse "github.com/arleytruth/Magicwraptool-sub001/internal/pkg/response"
	"github.com/arleytruth/Magicwraptool-sub001/internal/pkg/storage"
)

const (
	upstreamTimeout = 15 * time.Second
	cmsTimeout      = 10 * time.Second
	lockExpiry      = 5 * time.Second
)

func main() {
	migrateOnly := flag.Bool("migrate", false, "apply database migrations and exit")
	flag.Parse()

	cfg := config.Load()
	logger.Init(logger.Config{Level: cfg.LogLevel, Environment: cfg.Env, Service: "magicwrap-api"})

	log.Info().
		Str("env", cfg.Env).
		Str("port", cfg.Port).
		Msg("Starting Magic Wrapper API")

	db, err := database.NewPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer database.ClosePostgres(db)

	if *migrateOnly || cfg.AutoMigrate {
		if err := migrate.Up(context.Background(), db.DB); err != nil {
			log.Fatal().Err(err).Msg("Failed to apply migrations")
		}
		log.Info().Msg("Migrations applied")
		if *migrateOnly {
			return
		}
	}

	redisClient, err := database.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer database.CloseRedis(redisClient)

	sessionVerifier, err := jwt.NewVerifier(cfg.SessionJWTSecret, cfg.SessionJWTPublicKey, cfg.SessionJWTIssuer)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to configure session verification")
	}

	identityVerifier, err := identity.NewVerifier(cfg.IdentityWebhookSecret)
	if err != nil {
		log.Warn().Err(err).Msg("Identity webhook secret not configured, identity webhooks will be rejected")
	}

	objectStorage, err := storage.New(storage.Config{
		Driver:      cfg.StorageDriver,
		LocalPath:   cfg.LocalStoragePath,
		LocalURL:    cfg.LocalStorageURL,
		S3Endpoint:  cfg.S3Endpoint,
		S3Region:    cfg.S3Region,
		S3Bucket:    cfg.S3Bucket,
		S3AccessKey: cfg.S3AccessKey,
		S3SecretKey: cfg.S3SecretKey,
		R2: storage.R2Config{
			AccountID:       cfg.R2AccountID,
			AccessKeyID:     cfg.R2AccessKeyID,
			AccessKeySecret: cfg.R2AccessKeySecret,
			BucketName:      cfg.R2BucketName,
			PublicURL:       cfg.R2PublicURL,
		},
	})
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.StorageDriver).Msg("Failed to create object storage")
	}

	if cfg.GeneratorBaseURL == "" {
		log.Warn().Msg("GENERATOR_BASE_URL not configured, generation requests will fail and be refunded")
	}
	generatorTimeout := time.Duration(cfg.GeneratorTimeoutSeconds) * time.Second

	// ---------- WebSocket hub ----------
	hub := realtime.NewHub(redisClient)
	go hub.Run()
	defer hub.Shutdown()

	// ---------- Repositories ----------
	userRepo := user.NewRepository(db)
	creditRepo := credit.NewRepository(db)
	jobRepo := job.NewRepository(db)
	generationRepo := generation.NewRepository(db)
	paymentRepo := payment.NewRepository(db)
	adminRepo := admin.NewRepository(db)

	// ---------- Services ----------
	var ledgerLocker lock.Locker
	if cfg.LedgerLockEnabled {
		if rl := lock.NewRedisLocker(redisClient, lockExpiry); rl != nil {
			ledgerLocker = rl
		}
	}
	creditService := credit.NewService(creditRepo, credit.Config{
		MaxRetries: cfg.LedgerMaxRetries,
		Locker:     ledgerLocker,
		Events:     hub,
	})
	userService := user.NewService(userRepo, creditService, int64(cfg.SignupBonusCredits))
	jobService := job.NewService(jobRepo, hub)
	generationService := generation.NewService(generationRepo, jobService, creditService,
		generator.NewClient(cfg.GeneratorBaseURL, cfg.GeneratorToken, cfg.GeneratorModel, generatorTimeout),
		generation.Config{
			CreditCost: int64(cfg.GenerationCreditCost),
			Timeout:    generatorTimeout,
		})
	paymentService := payment.NewService(paymentRepo,
		checkout.NewClient(cfg.CheckoutBaseURL, cfg.CheckoutSecretKey, upstreamTimeout),
		creditService,
		payment.Config{
			Packages:    paymentPackages(cfg.CreditPackages),
			Currency:    cfg.CheckoutCurrency,
			FrontendURL: cfg.FrontendURL,
		})
	uploadService := upload.NewService(objectStorage, imaging.NewProcessor(imaging.DefaultConfig()))
	contentService := content.NewService(contentFetchers(cfg, redisClient))
	adminService := admin.NewService(adminRepo, creditService, userService)

	// ---------- Handlers ----------
	userHandler := user.NewHandler(userService, identityVerifier)
	creditHandler := credit.NewHandler(creditService)
	jobHandler := job.NewHandler(jobService)
	generationHandler := generation.NewHandler(generationService)
	paymentHandler := payment.NewHandler(paymentService, checkout.NewWebhookVerifier(cfg.CheckoutWebhookSecret))
	uploadHandler := upload.NewHandler(uploadService)
	contentHandler := content.NewHandler(contentService)
	adminHandler := admin.NewHandler(adminService)
	wsHandler := realtime.NewHandler(hub, cfg.AllowedOrigins)

	authMiddleware := middleware.Auth(sessionVerifier, userService)

	// ---------- Router ----------
	r := chi.NewRouter()

	r.Use(chimw.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Locale)
	r.Use(middleware.Logger)
	r.Use(middleware.Recover)
	r.Use(middleware.Metrics)
	r.Use(middleware.CORSHandler(cfg.AllowedOrigins))

	// WebSocket endpoint (before Compress)
	r.With(authMiddleware).Get("/ws", wsHandler.WebSocket)

	mountOperational(r)

	if cfg.StorageDriver == storage.DriverLocal || cfg.StorageDriver == "" {
		r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.Dir(cfg.LocalStoragePath))))
	}

	r.Group(func(r chi.Router) {
		r.Use(chimw.Compress(5))

		r.Route("/api/v1", func(r chi.Router) {
			r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
				pkgresponse.OK(w, map[string]string{"message": "pong"})
			})

			r.Get("/credits/packages", paymentHandler.ListPackages)
			r.Route("/content", contentHandler.Register)

			r.Mount("/me", userHandler.Routes(authMiddleware))

			r.Group(func(r chi.Router) {
				r.Use(authMiddleware)

				r.Route("/credits", creditHandler.Register)
				r.Route("/jobs", func(r chi.Router) {
					generationHandler.Register(r)
					jobHandler.Register(r)
				})
				r.Route("/payments", paymentHandler.Register)
				r.Route("/uploads", uploadHandler.Register)
			})
		})

		r.Mount("/api/admin", adminHandler.Routes(authMiddleware))
	})

	r.Route("/webhooks", func(r chi.Router) {
		r.Mount("/identity", userHandler.WebhookRoutes())
		r.Mount("/payments", paymentHandler.WebhookRoutes())
	})

	server := &http.Server{
		Addr:        ":" + cfg.Port,
		Handler:     r,
		ReadTimeout: 15 * time.Second,
		// a submit holds the request open for the whole generation call
		WriteTimeout: generatorTimeout + 30*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited properly")
}

// mountOperational registers health and metrics endpoints.
func mountOperational(r chi.Router) {
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		pkgresponse.OK(w, map[string]string{
			"status":  "ok",
			"version": "1.0.0",
		})
	})
	r.Handle("/metrics", promhttp.Handler())
}

func paymentPackages(packages []config.CreditPackage) []payment.Package {
	out := make([]payment.Package, 0, len(packages))
	for _, p := range packages {
		out = append(out, payment.Package{
			ID:          p.ID,
			Credits:     int64(p.Credits),
			AmountMinor: p.AmountMinor,
		})
	}
	return out
}

// contentFetchers builds the CMS backends that are configured. Unconfigured sources stay nil.
func contentFetchers(cfg *config.Config, redisClient *redis.Client) (pages, posts cms.Fetcher) {
	if cfg.CMSPrimaryURL != "" {
		pages = cms.NewCachedFetcher(
			cms.NewQueryClient(cfg.CMSPrimaryURL, cfg.CMSPrimaryToken, cmsTimeout),
			redisClient, content.SourcePages, cfg.CMSCacheTTL)
	}
	if cfg.CMSSecondaryURL != "" {
		posts = cms.NewCachedFetcher(
			cms.NewCollectionClient(cfg.CMSSecondaryURL, content.SourcePosts, cfg.CMSSecondaryToken, cmsTimeout),
			redisClient, content.SourcePosts, cfg.CMSCacheTTL)
	}
	return pages, posts
}
