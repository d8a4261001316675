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

	httpapi "github.com/aussiebroadwan/siteauth/internal/auth/http"
	"github.com/aussiebroadwan/siteauth/internal/auth/mail"
	"github.com/aussiebroadwan/siteauth/internal/auth/metrics"
	"github.com/aussiebroadwan/siteauth/internal/auth/service"
	"github.com/aussiebroadwan/siteauth/internal/auth/settings"
	"github.com/aussiebroadwan/siteauth/internal/auth/store"
	"github.com/aussiebroadwan/siteauth/internal/auth/store/drivers/sqlite"
	"github.com/aussiebroadwan/siteauth/pkg/cryptox"
	"github.com/aussiebroadwan/siteauth/pkg/jwtx"
	"github.com/aussiebroadwan/siteauth/pkg/slogx"
)

// BuildVersion is overridden at build time via ldflags.
var BuildVersion = "v0.1.0"

// Option adjusts how New assembles the application.
type Option func(*options)

type options struct {
	logger *slog.Logger
	direct bool
}

// WithLogger replaces the logger built from Config.Log.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithDirectMail delivers mail on the caller's goroutine instead of through
// the worker queue. One-shot commands use it so nothing is lost on exit.
func WithDirectMail() Option {
	return func(o *options) { o.direct = true }
}

// Application encapsulates the siteauth service with all its dependencies
type Application struct {
	cfg    Config
	logger *slog.Logger

	// Core dependencies
	db       store.Store
	settings *settings.Cache
	hasher   cryptox.Hasher
	signer   jwtx.Signer
	verifier jwtx.Verifier
	registry *prometheus.Registry
	metrics  *metrics.Metrics

	// Mail
	queue    *mail.Queue // nil with WithDirectMail
	dispatch mail.Dispatcher

	// Services
	setupService        *service.SetupService
	inviteService       *service.InviteService
	resetService        *service.PasswordResetService
	massResetService    *service.MassResetService
	sessionService      *service.SessionService
	housekeepingService *service.HousekeepingService

	// HTTP server
	server *http.Server
	router *httpapi.Router
}

// New creates an Application with all dependencies initialized. Nothing is
// started until Run.
func New(cfg Config, opts ...Option) (*Application, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	app := &Application{cfg: cfg, logger: o.logger}
	if app.logger == nil {
		app.logger = slogx.New(slogx.Config{
			Service: "siteauth",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.Log.Level,
			Format:  cfg.Log.Format,
		})
	}

	if err := app.initSecrets(); err != nil {
		return nil, err
	}
	if err := app.initDatabase(); err != nil {
		return nil, err
	}
	if err := app.initSettings(context.Background()); err != nil {
		_ = app.db.Close()
		return nil, err
	}

	app.registry = metrics.NewRegistry()
	app.metrics = metrics.New(app.registry)

	if err := app.initMail(o.direct); err != nil {
		_ = app.db.Close()
		return nil, err
	}

	app.initServices()
	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested
func (app *Application) Run() error {
	if app.queue != nil {
		app.queue.Start()
	}
	app.housekeepingService.Start()

	app.logger.Info("siteauth starting", "port", app.cfg.HTTP.Port, "version", BuildVersion)

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
			app.stopWorkers()
			_ = app.db.Close()
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

// Shutdown drains HTTP requests, then the background workers, then closes
// the database.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down siteauth...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.HTTP.Shutdown)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	app.stopWorkers()

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("siteauth stopped")
	return nil
}

// Close releases the database for applications that were never Run.
func (app *Application) Close() error {
	if app.queue != nil {
		app.queue.Stop()
	}
	return app.db.Close()
}

func (app *Application) stopWorkers() {
	app.housekeepingService.Stop()
	if app.queue != nil {
		app.queue.Stop()
	}
}

// Handler exposes the HTTP surface, mainly for tests.
func (app *Application) Handler() http.Handler { return app.router }

func (app *Application) Logger() *slog.Logger { return app.logger }

func (app *Application) Invites() *service.InviteService { return app.inviteService }

func (app *Application) MassReset() *service.MassResetService { return app.massResetService }

// RotateInstallSecret replaces the stored install secret. Every outstanding
// reset token stops verifying once the server is restarted.
func (app *Application) RotateInstallSecret(ctx context.Context) error {
	if _, err := settings.RotateInstallSecret(ctx, app.db); err != nil {
		return err
	}
	app.logger.Warn("install secret rotated, restart the server to apply")
	return nil
}

// initDatabase opens the database and applies migrations
func (app *Application) initDatabase() error {
	db, err := sqlite.NewStore("file:" + app.cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully", "path", app.cfg.Database.Path)
	return nil
}

// initSettings creates the install secret on first start and loads the
// settings snapshot.
func (app *Application) initSettings(ctx context.Context) error {
	if _, err := settings.EnsureInstallSecret(ctx, app.db); err != nil {
		return fmt.Errorf("failed to ensure install secret: %w", err)
	}
	cache, err := settings.Load(ctx, app.db)
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}
	app.settings = cache
	return nil
}

func (app *Application) initMail(direct bool) error {
	var mailer mail.Mailer
	switch app.cfg.Mail.Transport {
	case TransportSMTP:
		m, err := mail.NewSMTPMailer(app.cfg.Mail.SMTP, app.cfg.Mail.From)
		if err != nil {
			return fmt.Errorf("failed to initialize smtp mailer: %w", err)
		}
		mailer = m
	default:
		mailer = mail.LogMailer{Logger: app.logger}
	}

	if direct {
		app.dispatch = mail.Direct{Mailer: mailer, Metrics: app.metrics}
		return nil
	}
	app.queue = mail.NewQueue(mailer, app.logger, app.metrics, mail.QueueOptions{
		Workers:     app.cfg.Mail.Workers,
		Size:        app.cfg.Mail.Queue,
		SendTimeout: app.cfg.Mail.Timeout,
	})
	app.dispatch = app.queue
	return nil
}

// initServices initializes all business logic services
func (app *Application) initServices() {
	composer := mail.Composer{SiteURL: app.cfg.Site.URL, Title: app.settings.Title}

	app.setupService = &service.SetupService{
		Store:      app.db,
		Hasher:     app.hasher,
		Settings:   app.settings,
		Mail:       app.dispatch,
		Composer:   composer,
		Metrics:    app.metrics,
		SessionTTL: app.cfg.TTL.Session,
	}
	app.inviteService = &service.InviteService{
		Store:      app.db,
		Hasher:     app.hasher,
		Mail:       app.dispatch,
		Composer:   composer,
		Metrics:    app.metrics,
		InviteTTL:  app.cfg.TTL.Invite,
		SessionTTL: app.cfg.TTL.Session,
	}
	app.resetService = &service.PasswordResetService{
		Store:    app.db,
		Hasher:   app.hasher,
		Codec:    cryptox.HMACResetCodec{},
		Settings: app.settings,
		Mail:     app.dispatch,
		Composer: composer,
		Metrics:  app.metrics,
		TTL:      app.cfg.TTL.Reset,
	}
	app.massResetService = &service.MassResetService{
		Store:   app.db,
		Resets:  app.resetService,
		Metrics: app.metrics,
	}
	app.sessionService = &service.SessionService{
		Store:   app.db,
		Hasher:  app.hasher,
		TTL:     app.cfg.TTL.Session,
		Metrics: app.metrics,
	}

	app.housekeepingService = service.NewHousekeepingService(
		app.db,
		app.logger,
		app.metrics,
		app.cfg.Housekeeping.Interval,
	)
}

// initHTTP initializes the HTTP router and server
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(BuildVersion, app.db, app.settings, app.logger)

	router.SetupService = app.setupService
	router.InviteService = app.inviteService
	router.PasswordResetService = app.resetService
	router.MassResetService = app.massResetService
	router.SessionService = app.sessionService
	router.InternalVerifier = app.verifier
	router.Metrics = metrics.Handler(app.registry)
	router.Cookie = app.cfg.HTTP.Cookie
	router.Limits = app.cfg.limits()
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.HTTP.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
