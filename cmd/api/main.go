package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"assistec_backend/internal/appointments"
	"assistec_backend/internal/calendar"
	"assistec_backend/internal/clients"
	"assistec_backend/internal/events"
	"assistec_backend/internal/geocode"
	apphttp "assistec_backend/internal/http"
	"assistec_backend/internal/http/router"
	"assistec_backend/internal/notification"
	"assistec_backend/internal/orders"
	"assistec_backend/internal/routing"
	"assistec_backend/internal/scheduler"
	"assistec_backend/platform/config"
	"assistec_backend/platform/db"
	"assistec_backend/platform/logger"
	"assistec_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// Initialize structured logger
	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	if err := withRetry(ctx, log, "database migrations", 5, 2*time.Second, func() error {
		return db.RunMigrations(ctx, cfg, "migrations")
	}); err != nil {
		log.Error("failed to run database migrations", "error", err)
		panic("failed to run database migrations: " + err.Error())
	}
	log.Info("database migrations complete")

	var pool *pgxpool.Pool
	if err := withRetry(ctx, log, "database connection", 5, 2*time.Second, func() error {
		p, err := db.NewPool(ctx, cfg)
		if err != nil {
			return err
		}
		pool = p
		return nil
	}); err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()
	log.Info("database connection established")

	// Event bus for decoupled communication between modules
	eventBus := events.NewInMemoryBus(log)

	// Shared validator instance for dependency injection
	val := validator.New()

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

	clientService := clients.NewService(clients.New(pool), log)

	appointmentsModule := appointments.NewModule(pool, val, eventBus, log)
	ordersModule := orders.NewModule(pool, appointmentsModule.Repository, clientService, val, eventBus, log)
	calendarModule := calendar.NewModule(pool, cfg, appointmentsModule.Repository, ordersModule.Repository, val, log)

	// Notification module is both HTTP-facing and an event subscriber
	notificationModule := notification.NewModule(pool, eventBus, log)

	routingModule := routing.NewModule(
		pool,
		calendarModule.Service.Workday(),
		appointmentsModule.Repository,
		calendarModule.Service,
		notificationModule.Service,
		val,
		eventBus,
		log,
	)

	// Geocoding runs off appointment-created events when a provider is set
	if cfg.IsGeocodeEnabled() {
		geocodeService := geocode.NewService(
			geocode.NewHTTPGeocoder(cfg.GetGeocodeBaseURL()),
			appointmentsModule.Repository,
			cfg.GetGeocodeBatchSize(),
			cfg.GetGeocodeBatchPause(),
			log,
		)
		geocodeService.RegisterEventHandlers(eventBus)
		log.Info("geocoding enabled", "baseURL", cfg.GetGeocodeBaseURL())
	}

	// Visit reminders need redis; without it confirmations still work
	closeScheduler := initReminderScheduler(cfg, eventBus, log)
	if closeScheduler != nil {
		defer closeScheduler()
	}

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config:   cfg,
		Logger:   log,
		Health:   pool,
		EventBus: eventBus,
		Modules: []apphttp.Module{
			appointmentsModule,
			ordersModule,
			calendarModule,
			routingModule,
			notificationModule,
		},
	}

	engine := router.New(app)

	srvErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		srvErr <- engine.Run(cfg.HTTPAddr)
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, gracefully shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = shutdownCtx
	case err := <-srvErr:
		if err != nil {
			log.Error("server error", "error", err)
			panic("server error: " + err.Error())
		}
	}
}

func initReminderScheduler(cfg config.SchedulerConfig, bus events.Bus, log *logger.Logger) func() {
	if cfg.GetRedisURL() == "" {
		log.Warn("REDIS_URL not configured; visit reminders disabled")
		return nil
	}

	reminderClient, err := scheduler.NewClient(cfg, log)
	if err != nil {
		log.Error("failed to initialize reminder scheduler client", "error", err)
		return nil
	}
	reminderClient.RegisterEventHandlers(bus)

	return func() {
		_ = reminderClient.Close()
	}
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return fmt.Errorf("%s: invalid retry attempts", name)
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
		}

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return errors.New(name + ": " + lastErr.Error())
}
