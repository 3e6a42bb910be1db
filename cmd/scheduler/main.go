package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	apptrepo "assistec_backend/internal/appointments/repository"
	"assistec_backend/internal/events"
	"assistec_backend/internal/geocode"
	"assistec_backend/internal/notification"
	"assistec_backend/internal/scheduler"
	"assistec_backend/platform/config"
	"assistec_backend/platform/db"
	"assistec_backend/platform/logger"

	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting scheduler", "env", cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

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

	eventBus := events.NewInMemoryBus(log)

	// Worker-side notification wiring: tasks publish events, the
	// notification service handles them (no HTTP handlers required).
	notificationModule := notification.NewModule(pool, eventBus, log)

	// Catch up outbox entries that came due while the worker was down.
	if recovered, err := notificationModule.Service.DispatchDue(ctx, 200); err != nil {
		log.Warn("outbox catch-up failed", "error", err)
	} else if recovered > 0 {
		log.Info("outbox catch-up complete", "dispatched", recovered)
	}

	// Backlog geocoding for appointments created while geocoding was off.
	if cfg.IsGeocodeEnabled() {
		geocodeService := geocode.NewService(
			geocode.NewHTTPGeocoder(cfg.GetGeocodeBaseURL()),
			apptrepo.New(pool),
			cfg.GetGeocodeBatchSize(),
			cfg.GetGeocodeBatchPause(),
			log,
		)
		go func() {
			if _, err := geocodeService.ProcessPending(ctx, 100); err != nil {
				log.Warn("geocode backlog processing failed", "error", err)
			}
		}()
	}

	dispatcher, err := scheduler.NewOutboxDispatcher(cfg, pool, log)
	if err != nil {
		log.Error("failed to initialize outbox dispatcher", "error", err)
		panic("failed to initialize outbox dispatcher: " + err.Error())
	}
	defer func() { _ = dispatcher.Close() }()
	go dispatcher.Run(ctx)

	worker, err := scheduler.NewWorker(cfg, pool, eventBus, log)
	if err != nil {
		log.Error("failed to initialize scheduler worker", "error", err)
		panic("failed to initialize scheduler worker: " + err.Error())
	}

	worker.Run(ctx)
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return errors.New(name + ": invalid retry attempts")
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
