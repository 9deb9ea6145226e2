package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/errgroup"

	"github.com/meetscribe/backend/internal/adapter/ai"
	"github.com/meetscribe/backend/internal/adapter/postgres"
	automationrepo "github.com/meetscribe/backend/internal/adapter/postgres/automation"
	botrepo "github.com/meetscribe/backend/internal/adapter/postgres/bot"
	contentrepo "github.com/meetscribe/backend/internal/adapter/postgres/content"
	eventrepo "github.com/meetscribe/backend/internal/adapter/postgres/event"
	settingsrepo "github.com/meetscribe/backend/internal/adapter/postgres/settings"
	socialaccountrepo "github.com/meetscribe/backend/internal/adapter/postgres/socialaccount"
	transcriptrepo "github.com/meetscribe/backend/internal/adapter/postgres/transcript"
	"github.com/meetscribe/backend/internal/adapter/recall"
	"github.com/meetscribe/backend/internal/adapter/social"
	"github.com/meetscribe/backend/internal/config"
	"github.com/meetscribe/backend/internal/domain"
	contentsvc "github.com/meetscribe/backend/internal/service/content"
	ingestsvc "github.com/meetscribe/backend/internal/service/ingest"
	lifecyclesvc "github.com/meetscribe/backend/internal/service/lifecycle"
	publishsvc "github.com/meetscribe/backend/internal/service/publish"
	schedulersvc "github.com/meetscribe/backend/internal/service/scheduler"
	"github.com/meetscribe/backend/internal/transport/middleware"
	"github.com/meetscribe/backend/internal/transport/rest"
	"github.com/meetscribe/backend/internal/transport/webhook"
	"github.com/meetscribe/backend/internal/worker"
)

// Webhook deliveries come from one upstream, so the limit only has to stop
// runaway retry storms.
const webhookMaxPerMinute = 600

// Run is the application entry point. It loads configuration, connects to
// the database, wires the services, and runs the HTTP server together with
// the background workers until the context is cancelled or a signal arrives.
func Run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := NewLogger(cfg.Log)

	logger.Info("starting application",
		"version", BuildVersion(),
		"log_level", cfg.Log.Level,
	)

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Database.Migrate {
		if err := postgres.Migrate(ctx, cfg.Database.DSN); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer pool.Close()

	clock := clockwork.NewRealClock()

	events := eventrepo.New(pool)
	bots := botrepo.New(pool)
	transcripts := transcriptrepo.New(pool)
	automations := automationrepo.New(pool)
	contents := contentrepo.New(pool)
	settings := settingsrepo.New(pool)
	socialAccounts := socialaccountrepo.New(pool)
	txManager := postgres.NewTxManager(pool)

	recallClient := recall.NewClient(cfg.Recall, logger)
	generator := ai.NewGenerator(cfg.AI, logger)

	posters := social.NewRegistry()
	posters.Register(domain.SocialPlatformLinkedIn, social.NewLinkedIn(logger))
	posters.Register(domain.SocialPlatformFacebook, social.NewFacebook(logger))

	contentService := contentsvc.NewService(logger, events, bots, transcripts, automations, contents, generator)
	ingestService := ingestsvc.NewService(logger, bots, transcripts, recallClient, contentService, clock, ingestsvc.Config{
		MaxFetchAttempts: cfg.Lifecycle.IngestMaxAttempts,
	})
	lifecycleService := lifecyclesvc.NewService(logger, bots, recallClient, ingestService, clock, lifecyclesvc.Config{
		ReconcileConcurrency: cfg.Lifecycle.ReconcileConcurrency,
		WatchdogTimeout:      cfg.Lifecycle.WatchdogTimeout,
	})
	schedulerService := schedulersvc.NewService(logger, events, bots, settings, recallClient, clock, schedulersvc.Config{
		DefaultLeadTime:   time.Duration(cfg.Scheduler.DefaultLeadTimeMinutes) * time.Minute,
		MaxDeployAttempts: cfg.Scheduler.MaxDeployAttempts,
	})
	publishService := publishsvc.NewService(logger, txManager, contents, events, socialAccounts, posters, clock)

	limiter := middleware.NewRateLimiter(time.Minute)
	defer limiter.Stop()

	webhookHandler := webhook.NewHandler(logger, lifecycleService)
	webhookRoute := limiter.Limit(webhookMaxPerMinute)(http.HandlerFunc(webhookHandler.Receive))

	mux := rest.NewRouter(
		rest.NewHealthHandler(pool, BuildVersion()),
		rest.NewMeetingHandler(logger, events, bots, transcripts, contents, contentService, lifecycleService),
		rest.NewContentHandler(logger, contents, events, publishService),
		rest.NewSettingsHandler(logger, settings),
		webhookRoute,
	)

	handler := middleware.Chain(
		middleware.RequestID,
		middleware.Logger(logger),
		middleware.Recovery(logger),
		middleware.CORS(cfg.CORS),
		middleware.Account,
	)(mux)

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("http server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		logger.Info("shutting down http server")
		return srv.Shutdown(shutdownCtx)
	})

	runners := []*worker.Runner{
		worker.NewRunner("scheduler", cfg.Scheduler.TickInterval, schedulerService.Tick, clock, logger),
		worker.NewRunner("reconciler", cfg.Lifecycle.ReconcileInterval, lifecycleService.Reconcile, clock, logger),
		worker.NewRunner("watchdog", cfg.Lifecycle.WatchdogInterval, lifecycleService.ExpireStale, clock, logger),
	}
	for _, r := range runners {
		g.Go(func() error {
			if err := r.Run(gctx); !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	logger.Info("application stopped")
	return nil
}
