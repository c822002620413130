package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/pulso-hq/pulso/internal/alerts"
	"github.com/pulso-hq/pulso/internal/app"
	"github.com/pulso-hq/pulso/internal/assignments"
	"github.com/pulso-hq/pulso/internal/audit"
	"github.com/pulso-hq/pulso/internal/auth"
	"github.com/pulso-hq/pulso/internal/authz"
	"github.com/pulso-hq/pulso/internal/checkins"
	"github.com/pulso-hq/pulso/internal/observability"
	"github.com/pulso-hq/pulso/internal/organizations"
	"github.com/pulso-hq/pulso/internal/platform/cache"
	"github.com/pulso-hq/pulso/internal/platform/db"
	"github.com/pulso-hq/pulso/internal/roles"
	"github.com/pulso-hq/pulso/internal/shared"
	"github.com/pulso-hq/pulso/internal/users"
	"github.com/pulso-hq/pulso/jobs"
	"github.com/pulso-hq/pulso/migrations"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	if err := db.Migrate(ctx, pool, migrations.Files); err != nil {
		logger.Error("apply migrations", slog.Any("error", err))
		os.Exit(1)
	}

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	sessionManager := shared.NewSessionManager(redisClient, "pulso_session", cfg.SessionSecret, cfg.SessionTTL, cfg.IsProduction())
	csrfManager := shared.NewCSRFManager(cfg.CSRFSecret)

	rolesRepo := roles.NewRepository(pool)
	rolesService := roles.NewService(rolesRepo)

	hierarchy, err := rolesService.LoadHierarchy(ctx)
	if err != nil {
		logger.Error("load role hierarchy", slog.Any("error", err))
		os.Exit(1)
	}
	registry, err := authz.NewRegistry(hierarchy, authz.DefaultRequirements())
	if err != nil {
		logger.Error("build operation registry", slog.Any("error", err))
		os.Exit(1)
	}

	assignmentsRepo := assignments.NewRepository(pool)
	roleStore := authz.NewCachedStore(assignmentsRepo, redisClient, cfg.RoleCacheTTL)
	resolver := authz.NewResolver(roleStore)
	engine := authz.NewEngine(hierarchy, resolver, logger)
	guard := authz.NewGuard(hierarchy, resolver)
	invalidator := authz.NewInvalidator(redisClient)

	metrics := observability.NewMetrics()
	gate := authz.Middleware{
		Engine:   engine,
		Registry: registry,
		Logger:   logger,
		Recorder: metrics,
	}

	auditLogger := shared.NewAuditLogger(pool)
	idempotencyStore := shared.NewIdempotencyStore(pool)

	authRepo := auth.NewRepository(pool)
	authService := auth.NewService(authRepo)
	authHandler := auth.NewHandler(logger, authService, sessionManager, csrfManager)

	rolesHandler := roles.NewHandler(logger, rolesService, gate)

	usersRepo := users.NewRepository(pool)
	usersService := users.NewService(usersRepo)
	usersHandler := users.NewHandler(logger, usersService, gate)

	orgsRepo := organizations.NewRepository(pool)
	orgsService := organizations.NewService(orgsRepo)
	orgsHandler := organizations.NewHandler(logger, orgsService, gate)

	assignmentsService := assignments.NewService(assignmentsRepo, guard, hierarchy, auditLogger, invalidator, logger)
	assignmentsHandler := assignments.NewHandler(logger, assignmentsService, gate)

	checkinsRepo := checkins.NewRepository(pool)
	checkinsService := checkins.NewService(checkinsRepo, idempotencyStore)
	checkinsHandler := checkins.NewHandler(logger, checkinsService, gate)

	jobClient, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	if err != nil {
		logger.Error("init job client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := jobClient.Close(); err != nil {
			logger.Warn("job client close", slog.Any("error", err))
		}
	}()

	alertsRepo := alerts.NewRepository(pool)
	alertNotifier := jobs.NewAlertNotifier(jobClient, cfg.AlertRecipient)
	alertsService := alerts.NewService(alertsRepo, alertNotifier, logger)
	alertsHandler := alerts.NewHandler(logger, alertsService, gate)

	auditRepo := audit.NewRepository(pool)
	auditService := audit.NewService(auditRepo)
	auditHandler := audit.NewHandler(logger, auditService, gate)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:               logger,
		Config:               cfg,
		SessionManager:       sessionManager,
		CSRFManager:          csrfManager,
		Gate:                 gate,
		AuthHandler:          authHandler,
		RolesHandler:         rolesHandler,
		UsersHandler:         usersHandler,
		OrganizationsHandler: orgsHandler,
		AssignmentsHandler:   assignmentsHandler,
		CheckinsHandler:      checkinsHandler,
		AlertsHandler:        alertsHandler,
		AuditHandler:         auditHandler,
		JobHandler:           jobHandler,
		Metrics:              metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
