package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	httpapi "github.com/aussiebroadwan/alumnet/internal/membership/http"
	"github.com/aussiebroadwan/alumnet/internal/membership/mailer"
	"github.com/aussiebroadwan/alumnet/internal/membership/service"
	"github.com/aussiebroadwan/alumnet/internal/membership/store/drivers/postgres"
	"github.com/aussiebroadwan/alumnet/internal/membership/store/drivers/sqldb"
	"github.com/aussiebroadwan/alumnet/internal/membership/store/drivers/sqlite"
	"github.com/aussiebroadwan/alumnet/pkg/cryptox"
	"github.com/aussiebroadwan/alumnet/pkg/otelx"
	"github.com/aussiebroadwan/alumnet/pkg/slogx"
	"github.com/jonboulle/clockwork"
)

const (
	// BuildVersion should be set at build time via ldflags.
	BuildVersion = "v0.1.0"

	serviceName = "alumnet"
)

// Application holds the membership service and everything it depends on.
type Application struct {
	cfg    Config
	logger *slog.Logger
	clock  clockwork.Clock

	db            *sqldb.Store
	mail          mailer.Sender
	templates     *mailer.Templates
	traceShutdown func(context.Context) error

	// Services
	tokenService        *service.TokenService
	authService         *service.AuthService
	inviteService       *service.InviteService
	registrationService *service.RegistrationService
	adminService        *service.AdminService
	alumniService       *service.AlumniService
	bootstrapService    *service.BootstrapService
	feedService         *service.FeedService
	housekeepingService *service.HousekeepingService

	// HTTP server
	server *http.Server
	router *httpapi.Router
}

// New creates an Application with all dependencies initialized.
func New(cfg Config) (*Application, error) {
	logger, err := slogx.New(slogx.Config{
		Service: serviceName,
		Version: BuildVersion,
		Env:     cfg.Env,
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
		File:    cfg.LogFile,
		MaxAge:  cfg.LogMaxAge,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	app := &Application{
		cfg:    cfg,
		logger: logger,
		clock:  clockwork.NewRealClock(),
	}

	app.traceShutdown, err = otelx.Setup(context.Background(), otelx.Config{
		Service:  serviceName,
		Version:  BuildVersion,
		Endpoint: cfg.OTelEndpoint,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize tracing: %w", err)
	}

	cryptox.SetPepperPath(app.cfg.PepperFile)

	if err := app.initDatabase(); err != nil {
		return nil, err
	}
	if err := app.initMailer(); err != nil {
		_ = app.db.Close()
		return nil, err
	}
	if err := app.initServices(); err != nil {
		_ = app.db.Close()
		return nil, err
	}
	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested.
func (app *Application) Run() error {
	app.housekeepingService.Start()

	app.logger.Info("membership service starting",
		"port", app.cfg.Port,
		"version", BuildVersion,
		"database", app.cfg.DatabaseDriver,
		"mail", app.cfg.MailDriver,
	)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		app.housekeepingService.Stop()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
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

// Shutdown drains in-flight requests, then stops background work and
// releases the database.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down membership service...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	app.housekeepingService.Stop()

	if err := app.Close(ctx); err != nil {
		return err
	}

	app.logger.Info("membership service stopped")
	return nil
}

// Handler returns the fully wired HTTP handler without starting a listener.
func (app *Application) Handler() http.Handler {
	return app.router
}

// Close flushes traces and releases the database. Shutdown calls it; use it
// directly only when Run was never called.
func (app *Application) Close(ctx context.Context) error {
	if err := app.traceShutdown(ctx); err != nil {
		app.logger.Error("error flushing traces", "error", err)
	}

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}
	return nil
}

// initDatabase opens the configured driver and applies migrations.
func (app *Application) initDatabase() error {
	var (
		db  *sqldb.Store
		err error
	)
	switch strings.ToLower(app.cfg.DatabaseDriver) {
	case "postgres":
		db, err = postgres.NewStore(app.cfg.DatabaseURL)
	default:
		db, err = sqlite.NewStore(app.cfg.DatabaseFile)
	}
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully", "driver", app.cfg.DatabaseDriver)
	return nil
}

func (app *Application) initMailer() error {
	sender, err := mailer.New(mailer.Config{
		Driver:       app.cfg.MailDriver,
		From:         app.cfg.MailFrom,
		ResendAPIKey: app.cfg.ResendAPIKey,
		SMTPHost:     app.cfg.SMTPHost,
		SMTPPort:     app.cfg.SMTPPort,
		SMTPUsername: app.cfg.SMTPUsername,
		SMTPPassword: app.cfg.SMTPPassword,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize mailer: %w", err)
	}

	templates, err := mailer.NewTemplates(app.cfg.BrandName)
	if err != nil {
		return fmt.Errorf("failed to parse email templates: %w", err)
	}

	app.mail = sender
	app.templates = templates
	return nil
}

// initServices initializes all business logic services.
func (app *Application) initServices() error {
	tokens, err := service.NewTokenService([]byte(app.cfg.SessionSecret), app.cfg.Issuer, app.cfg.SessionTTL, app.clock)
	if err != nil {
		return fmt.Errorf("failed to initialize session signer: %w", err)
	}
	app.tokenService = tokens

	app.authService = &service.AuthService{Store: app.db, Tokens: tokens}
	app.inviteService = &service.InviteService{
		Store:           app.db,
		Mailer:          app.mail,
		Templates:       app.templates,
		Clock:           app.clock,
		FrontendURL:     app.cfg.FrontendURL,
		TTL:             app.cfg.InvitationTTL,
		DispatchTimeout: app.cfg.MailDispatchTimeout,
		BulkConcurrency: app.cfg.BulkInviteConcurrency,
	}
	app.registrationService = &service.RegistrationService{
		Store:           app.db,
		Tokens:          tokens,
		Mailer:          app.mail,
		Templates:       app.templates,
		Clock:           app.clock,
		DispatchTimeout: app.cfg.MailDispatchTimeout,
	}
	app.adminService = &service.AdminService{Store: app.db, Clock: app.clock}
	app.alumniService = &service.AlumniService{Store: app.db, Clock: app.clock}
	app.feedService = &service.FeedService{Store: app.db, Clock: app.clock}
	app.bootstrapService = &service.BootstrapService{
		Store: app.db,
		Clock: app.clock,
		Token: app.cfg.BootstrapToken,
	}
	if app.cfg.BootstrapToken == "" {
		app.logger.Info("bootstrap disabled: BOOTSTRAP_TOKEN not set")
	}

	app.housekeepingService = service.NewHousekeepingService(
		app.db,
		app.logger,
		app.clock,
		app.cfg.HousekeepingInterval,
	)
	return nil
}

// initHTTP initializes the HTTP router and server.
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(BuildVersion, app.db, app.cfg.RateLimits, app.logger)

	router.TokenService = app.tokenService
	router.AuthService = app.authService
	router.InviteService = app.inviteService
	router.RegistrationService = app.registrationService
	router.AdminService = app.adminService
	router.AlumniService = app.alumniService
	router.BootstrapService = app.bootstrapService
	router.FeedService = app.feedService
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
