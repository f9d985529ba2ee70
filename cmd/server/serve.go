package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	h "github.com/gorilla/handlers"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/Mister-Mana/Invitopia-App-sub002/internal/bus"
	"github.com/Mister-Mana/Invitopia-App-sub002/internal/checkin"
	"github.com/Mister-Mana/Invitopia-App-sub002/internal/config"
	"github.com/Mister-Mana/Invitopia-App-sub002/internal/database"
	"github.com/Mister-Mana/Invitopia-App-sub002/internal/handlers"
	"github.com/Mister-Mana/Invitopia-App-sub002/internal/middleware"
	"github.com/Mister-Mana/Invitopia-App-sub002/internal/migration"
	"github.com/Mister-Mana/Invitopia-App-sub002/internal/notification"
	"github.com/Mister-Mana/Invitopia-App-sub002/internal/repository"
	"github.com/Mister-Mana/Invitopia-App-sub002/internal/routes"
	"github.com/Mister-Mana/Invitopia-App-sub002/internal/scanner"
	"github.com/Mister-Mana/Invitopia-App-sub002/internal/telemetry"
)

// kioskDevice is the device id served by the frame directory camera.
const kioskDevice = "kiosk"

type application struct {
	config        *config.Config
	db            *database.DB
	bus           *bus.Bus
	logger        zerolog.Logger
	notifications notification.Service
	registry      *scanner.Registry
}

func newServeCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the check-in API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := opts.load()
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg, logger)
		},
	}
}

func serve(ctx context.Context, cfg *config.Config, logger zerolog.Logger) error {
	if ctx == nil {
		ctx = context.Background()
	}

	shutdownTracing, err := telemetry.Init(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.OTLPEndpoint)
	if err != nil {
		return err
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			logger.Error().Err(err).Msg("failed to shut down tracer provider")
		}
	}()

	// Initialize database connection and run migrations.
	db, err := database.Open(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := migration.RunMigrations(ctx, db, logger); err != nil {
		return err
	}

	app := &application{
		config: cfg,
		db:     db,
		logger: logger,
	}

	if cfg.NATS.URL != "" {
		b, err := bus.New(cfg.NATS.URL, cfg.NATS.SubjectPrefix, nats.Name(cfg.Telemetry.ServiceName))
		if err != nil {
			// check-in keeps working without the bus
			logger.Warn().Err(err).Str("url", cfg.NATS.URL).Msg("failed to connect to NATS, activity will not be published")
		} else {
			app.bus = b
			defer b.Close()
		}
	}

	app.notifications = notification.NewService(repository.NewActivityRepository(db), logger, app.notifiers()...)

	sampler := scanner.NewSampler(scanner.NewQRDecoder(), cfg.Scanner.Interval, cfg.Scanner.DedupeWindow, logger)
	app.registry = scanner.NewRegistry(app.newSource, sampler, cfg.Scanner.ResultBuffer, logger)

	// Initialize the HTTP router and middleware.
	router := app.initRouter()
	traced := telemetry.Middleware(cfg.Telemetry.ServiceName)(router)
	loggedRouter := middleware.LoggingMiddleware(logger)(traced)
	corsHandler := h.CORS(
		h.AllowedOrigins(cfg.AllowedOrigins),
		h.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		h.AllowedHeaders([]string{"Content-Type", "Authorization"}),
		h.AllowCredentials(),
	)(loggedRouter)

	app.startServer(corsHandler)

	logger.Info().Msg("Application terminated.")
	return nil
}

func (app *application) notifiers() []notification.Notifier {
	var notifiers []notification.Notifier
	if app.config.Email.SMTPHost != "" && len(app.config.Email.AlertRecipients) > 0 {
		email, err := notification.NewEmailNotifier(app.config.Email, app.logger)
		if err != nil {
			app.logger.Warn().Err(err).Msg("email alerts disabled")
		} else {
			notifiers = append(notifiers, email)
		}
	}
	if app.bus != nil {
		notifiers = append(notifiers, notification.NewBusNotifier(app.bus, app.logger))
	}
	return notifiers
}

func (app *application) newSource(deviceID string) scanner.Source {
	if deviceID == kioskDevice && app.config.Scanner.FrameDir != "" {
		return scanner.NewDirSource(app.config.Scanner.FrameDir)
	}
	return scanner.NewPushSource()
}

// initRouter sets up all HTTP handlers and returns the router.
func (app *application) initRouter() http.Handler {
	cfg, logger := app.config, app.logger

	// Repositories
	events := repository.NewEventRepository(app.db)
	guests := repository.NewGuestRepository(app.db)
	operators := repository.NewOperatorRepository(app.db)

	machine := checkin.NewStateMachine(guests, logger,
		checkin.WithPolicy(checkin.Policy{
			BlockDeclinedOnScan:   cfg.Scanner.Policy.BlockDeclinedOnScan,
			BlockDeclinedOnManual: cfg.Scanner.Policy.BlockDeclinedOnManual,
		}),
		checkin.WithRecorder(app.notifications),
	)

	// Mailer for check-in codes
	var mailer notification.CodeMailer
	if cfg.Email.SMTPHost != "" {
		m, err := notification.NewSMTPCodeMailer(cfg.Email)
		if err != nil {
			logger.Warn().Err(err).Msg("code emails disabled")
		} else {
			mailer = m
		}
	}

	// Handlers
	checkins := handlers.NewCheckInHandler(machine, app.notifications, logger)
	return routes.NewRouter(routes.Handlers{
		Auth:     handlers.NewAuthHandler(operators, cfg.JWTSecret, logger),
		Events:   handlers.NewEventHandler(events, guests, app.notifications, logger),
		Guests:   handlers.NewGuestHandler(events, guests, machine, app.notifications, mailer, logger),
		CheckIns: checkins,
		Scanner:  handlers.NewScannerHandler(app.registry, events, checkins, logger),
		Health:   handlers.HealthCheck(app.db),
	}, cfg.Scanner.RatePerMinute)
}

// startServer launches the HTTP server and handles graceful shutdown.
func (app *application) startServer(handler http.Handler) {
	logger := app.logger
	server := &http.Server{
		Addr:              ":" + app.config.ServerPort,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Channel to listen for server errors
	serverErrCh := make(chan error, 1)
	go func() {
		logger.Info().Msgf("Server listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrCh <- err
		}
	}()

	// Wait for an interrupt signal or a server error.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-quit:
		logger.Info().Msgf("Received signal: %s. Shutting down...", sig)
	case err := <-serverErrCh:
		logger.Error().Err(err).Msg("Server error occurred")
	}

	// Gracefully shut down the HTTP server.
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("HTTP server shutdown error")
	} else {
		logger.Info().Msg("HTTP server shutdown complete.")
	}

	// Release every camera.
	logger.Info().Msg("Stopping scanner sessions...")
	app.registry.Shutdown()
	logger.Info().Msg("Scanner sessions stopped.")

	// Deliver queued alerts before exit.
	drainCtx, drainCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer drainCancel()
	if err := app.notifications.Close(drainCtx); err != nil {
		logger.Warn().Err(err).Msg("Pending notifications dropped")
	}
}
