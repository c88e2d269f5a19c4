package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"

	httpapi "github.com/CodeZobac/Scuzzy-goalkeeper-sub004/internal/authcode/http"
	"github.com/CodeZobac/Scuzzy-goalkeeper-sub004/internal/authcode/metrics"
	"github.com/CodeZobac/Scuzzy-goalkeeper-sub004/internal/authcode/notify"
	"github.com/CodeZobac/Scuzzy-goalkeeper-sub004/internal/authcode/service"
	"github.com/CodeZobac/Scuzzy-goalkeeper-sub004/internal/authcode/store"
	"github.com/CodeZobac/Scuzzy-goalkeeper-sub004/internal/authcode/store/drivers/postgres"
	"github.com/CodeZobac/Scuzzy-goalkeeper-sub004/internal/authcode/store/drivers/sqlite"
	"github.com/CodeZobac/Scuzzy-goalkeeper-sub004/pkg/cryptox"
	"github.com/CodeZobac/Scuzzy-goalkeeper-sub004/pkg/jwtx"
	"github.com/CodeZobac/Scuzzy-goalkeeper-sub004/pkg/lockx"
	"github.com/CodeZobac/Scuzzy-goalkeeper-sub004/pkg/slogx"
)

// BuildVersion is overridden at build time via -ldflags "-X".
var BuildVersion = "v0.1.0"

const startupTimeout = 15 * time.Second

// Application wires the auth code service together.
type Application struct {
	cfg    Config
	logger *slog.Logger

	db     store.Store
	redis  *redis.Client // nil without REDIS_ADDR
	hasher *cryptox.Fingerprinter

	registry *prometheus.Registry
	metrics  *metrics.Metrics

	issuer     *service.Issuer
	validator  *service.Validator
	cleanup    *service.CleanupScheduler
	controller *service.Controller
	mailer     *service.Mailer

	server *http.Server
	router *httpapi.Router
}

// New creates an Application with all dependencies initialized.
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "authcodes",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	defer cancel()

	if err := app.initDatabase(ctx); err != nil {
		return nil, err
	}

	if err := app.initHasher(); err != nil {
		app.closeResources()
		return nil, err
	}

	locker, err := app.initRedis(ctx)
	if err != nil {
		app.closeResources()
		return nil, err
	}

	app.initMetrics()

	if err := app.initServices(locker); err != nil {
		app.closeResources()
		return nil, err
	}

	if err := app.initHTTP(); err != nil {
		app.closeResources()
		return nil, err
	}

	return app, nil
}

// Run starts the cleanup scheduler and the HTTP server and blocks until a
// shutdown signal or a server failure.
func (app *Application) Run() error {
	app.cleanup.Start(app.cfg.CleanupInterval, app.cfg.CleanupRunImmediately)

	app.logger.Info("authcodes service starting",
		"port", app.cfg.Port,
		"version", BuildVersion,
		"driver", app.cfg.DatabaseDriver,
		"cleanup_interval", app.cfg.CleanupInterval,
	)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(shutdown)

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			app.cleanup.Stop()
			app.closeResources()
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown drains HTTP, stops the scheduler and closes Redis and the store.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down authcodes service...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	app.cleanup.Stop()

	if err := app.closeResources(); err != nil {
		return err
	}

	app.logger.Info("authcodes service stopped")
	return nil
}

// Handler exposes the routed HTTP handler.
func (app *Application) Handler() http.Handler {
	return app.router
}

func (app *Application) closeResources() error {
	var errs []error
	if app.redis != nil {
		if err := app.redis.Close(); err != nil {
			app.logger.Error("error closing redis", "error", err)
			errs = append(errs, err)
		}
		app.redis = nil
	}
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("error closing database", "error", err)
			errs = append(errs, err)
		}
		app.db = nil
	}
	return errors.Join(errs...)
}

// initDatabase opens the configured driver and applies migrations.
func (app *Application) initDatabase(ctx context.Context) error {
	var (
		db  store.Store
		err error
	)

	switch app.cfg.DatabaseDriver {
	case DriverPostgres:
		db, err = postgres.NewStore(ctx, app.cfg.DatabaseURL)
	default:
		dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", app.cfg.DatabaseFile)
		db, err = sqlite.NewStore(dsn)
	}
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		app.db = nil
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully", "driver", app.cfg.DatabaseDriver)
	return nil
}

// initHasher derives the fingerprint key. Prod never generates a pepper.
func (app *Application) initHasher() error {
	pepper, err := app.loadPepper()
	if err != nil {
		return fmt.Errorf("failed to load pepper: %w", err)
	}
	app.hasher, err = cryptox.NewFingerprinter(pepper)
	if err != nil {
		return fmt.Errorf("failed to derive fingerprint key: %w", err)
	}
	return nil
}

func (app *Application) loadPepper() (string, error) {
	if app.cfg.Pepper != "" {
		return app.cfg.Pepper, nil
	}
	if app.cfg.Env != "prod" {
		return cryptox.LoadOrCreatePepper(app.cfg.PepperFile)
	}

	pepper, err := cryptox.LoadPepper(app.cfg.PepperFile)
	if errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("PEPPER or an existing PEPPER_FILE is required in prod: %w", err)
	}
	return pepper, err
}

// initRedis connects the optional cleanup lock. A nil Locker means every
// instance runs its own cleanup.
func (app *Application) initRedis(ctx context.Context) (service.Locker, error) {
	if app.cfg.RedisAddr == "" {
		app.logger.Info("redis not configured, cleanup runs without a lock")
		return nil, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     app.cfg.RedisAddr,
		Password: app.cfg.RedisPassword,
		DB:       app.cfg.RedisDB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	app.redis = client

	app.logger.Info("redis cleanup lock enabled", "addr", app.cfg.RedisAddr)
	return lockx.New(client, "goalkeeper:"), nil
}

// initMetrics uses a private registry so every Application owns its collectors.
func (app *Application) initMetrics() {
	app.registry = prometheus.NewRegistry()
	app.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	app.metrics = metrics.New(app.registry)
}

func (app *Application) initServices(locker service.Locker) error {
	app.issuer = &service.Issuer{
		Store:      app.db,
		Hasher:     app.hasher,
		DefaultTTL: app.cfg.CodeTTL,
		Metrics:    app.metrics,
	}
	app.validator = &service.Validator{
		Store:        app.db,
		Hasher:       app.hasher,
		StoreTimeout: app.cfg.StoreTimeout,
		Metrics:      app.metrics,
	}
	app.cleanup = service.NewCleanupScheduler(app.db, app.logger, service.CleanupOptions{
		ExpiredRetention: app.cfg.CleanupExpiredRetention,
		UsedRetention:    app.cfg.CleanupUsedRetention,
		Locker:           locker,
		Metrics:          app.metrics,
	})
	app.controller = &service.Controller{
		Validator: app.validator,
		Cleanup:   app.cleanup,
	}

	sender, err := app.newSender()
	if err != nil {
		return err
	}
	templates, err := notify.LoadTemplates(app.cfg.AppName)
	if err != nil {
		return fmt.Errorf("failed to load email templates: %w", err)
	}
	app.mailer = &service.Mailer{
		Issuer:    app.issuer,
		Sender:    sender,
		Templates: templates,
		Links: service.Links{
			BaseURL:          app.cfg.AppBaseURL,
			ConfirmationPath: app.cfg.ConfirmationPath,
			ResetPath:        app.cfg.ResetPath,
		},
		TTL: app.cfg.CodeTTL,
	}
	return nil
}

func (app *Application) newSender() (notify.Sender, error) {
	switch app.cfg.EmailProvider {
	case EmailProviderResend:
		s, err := notify.NewResendSender(app.cfg.ResendAPIKey, app.cfg.EmailFrom)
		if err != nil {
			return nil, fmt.Errorf("failed to configure resend: %w", err)
		}
		app.logger.Info("email delivery via resend", "from", app.cfg.EmailFrom)
		return s, nil
	default:
		app.logger.Warn("email delivery via log sender, no mail leaves this process")
		includeBody := app.cfg.Env == "dev"
		if includeBody {
			app.logger.Warn("log sender writes plaintext codes and links to the log, do not use with real users")
		}
		return notify.LogSender{IncludeBody: includeBody}, nil
	}
}

func (app *Application) initHTTP() error {
	var verifier jwtx.Verifier
	if app.cfg.AdminJWTSecret != "" {
		hs, err := jwtx.NewHS256(app.cfg.AdminJWTSecret, app.cfg.AdminJWTIssuer)
		if err != nil {
			return fmt.Errorf("failed to configure admin tokens: %w", err)
		}
		verifier = hs
	} else {
		app.logger.Warn("ADMIN_JWT_SECRET not set, admin routes are unauthenticated")
	}

	router := httpapi.NewRouter(verifier, BuildVersion, app.db, app.logger)
	router.Controller = app.controller
	router.Issuer = app.issuer
	router.Mailer = app.mailer
	router.Cleanup = app.cleanup
	router.Metrics = app.registry
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
	return nil
}
