package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spec-kit/support-desk/internal/ai"
	httptransport "github.com/spec-kit/support-desk/internal/api/http"
	"github.com/spec-kit/support-desk/internal/api/http/handlers"
	"github.com/spec-kit/support-desk/internal/auth"
	"github.com/spec-kit/support-desk/internal/cache"
	"github.com/spec-kit/support-desk/internal/events"
	"github.com/spec-kit/support-desk/internal/observability"
	"github.com/spec-kit/support-desk/internal/persistence"
	"github.com/spec-kit/support-desk/internal/repository"
	"github.com/spec-kit/support-desk/internal/service"
	"github.com/spec-kit/support-desk/internal/worker"
)

const shutdownTimeout = 15 * time.Second

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the enrichment workers",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}
}

func runServe(parent context.Context) error {
	if parent == nil {
		parent = context.Background()
	}
	cfg, logger, err := bootstrap()
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(cfg.Postgres.DSN, logger); err != nil {
			return err
		}
	}

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		return err
	}
	defer pg.Close()

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	metrics := observability.NewMetrics(cfg.App.Name)

	pool := pg.PoolHandle()
	orgRepo := repository.NewOrganizationRepository(pool)
	userRepo := repository.NewUserRepository(pool)
	teamRepo := repository.NewTeamRepository(pool)
	categoryRepo := repository.NewCategoryRepository(pool)
	ticketRepo := repository.NewTicketRepository(pool)

	categoryNames := cache.NewCategoryNames(redis.Client, categoryRepo, cfg.Cache.CategoryTTL(), logger)
	dispatcher := events.NewInMemoryDispatcher(logger)

	model, err := ai.New(cfg.AI)
	if err != nil {
		return err
	}

	authService := service.NewAuthService(*cfg, service.AuthDependencies{
		OrganizationRepo: orgRepo,
		UserRepo:         userRepo,
		TeamRepo:         teamRepo,
	})
	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo: ticketRepo,
		UserRepo:   userRepo,
		TeamRepo:   teamRepo,
		Dispatcher: dispatcher,
		Logger:     logger,
	})
	enrichmentService := service.NewEnrichmentService(service.EnrichmentDependencies{
		TicketRepo:  ticketRepo,
		Categories:  categoryNames,
		Model:       model,
		ModelName:   cfg.AI.Model,
		Temperature: cfg.AI.Temperature,
		Retry:       service.RetryPolicy{MaxAttempts: cfg.Enrichment.MaxAttempts, Backoff: cfg.Enrichment.RetryBackoff()},
		Logger:      logger,
		Metrics:     metrics,
	})

	workers := worker.NewPool(worker.PoolConfig{
		Workers:     cfg.Enrichment.Workers,
		QueueSize:   cfg.Enrichment.QueueSize,
		TaskTimeout: cfg.Enrichment.TaskTimeout(),
	}, logger, metrics)
	workers.Start()
	worker.StartEnrichmentWorker(dispatcher, workers, enrichmentService, logger, metrics)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ErrorHandler: httptransport.ErrorHandler(logger),
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	routes := httptransport.RouteConfig{
		Health: handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, map[string]handlers.Pinger{
			"postgres": pg,
			"redis":    redis,
		}),
		Auth:           handlers.NewAuthHandler(authService),
		Tickets:        handlers.NewTicketsHandler(ticketService),
		Teams:          handlers.NewTeamsHandler(service.NewTeamService(teamRepo)),
		Categories:     handlers.NewCategoriesHandler(service.NewCategoryService(categoryRepo, categoryNames)),
		Users:          handlers.NewUsersHandler(service.NewUserService(userRepo, teamRepo)),
		Analytics:      handlers.NewAnalyticsHandler(service.NewAnalyticsService(service.NewInMemoryAggregator(ticketRepo))),
		AI:             handlers.NewAIHandler(enrichmentService),
		AuthMiddleware: auth.NewAuthMiddleware(authService.Tokens(), userRepo),
	}
	if cfg.Metrics.Enabled {
		routes.Metrics = metrics
		routes.MetricsPath = cfg.Metrics.Path
	}
	httptransport.RegisterRoutes(app, routes)

	listenErr := make(chan error, 1)
	go func() {
		logger.Info("http server starting", zap.String("addr", cfg.App.Addr()))
		listenErr <- app.Listen(cfg.App.Addr())
	}()

	select {
	case err := <-listenErr:
		if err != nil {
			logger.Error("fiber listen", zap.Error(err))
		}
	case <-ctx.Done():
		logger.Info("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Error("http shutdown", zap.Error(err))
	}
	if err := workers.Shutdown(shutdownCtx); err != nil {
		logger.Error("worker shutdown", zap.Error(err))
	}
	return nil
}
