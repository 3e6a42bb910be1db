package scheduler

import (
	"context"
	"fmt"
	"time"

	"assistec_backend/internal/notification/repository"
	"assistec_backend/platform/config"
	"assistec_backend/platform/logger"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
)

// OutboxDispatcher polls the notification outbox and hands due entries to
// asynq. The actual delivery (and the exclusive claim) happens in the
// notification service when the task fires, so enqueuing the same entry
// twice across ticks is harmless.
type OutboxDispatcher struct {
	client *asynq.Client
	queue  string
	repo   *repository.OutboxRepository
	log    *logger.Logger
}

func NewOutboxDispatcher(cfg config.SchedulerConfig, pool *pgxpool.Pool, log *logger.Logger) (*OutboxDispatcher, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	queue := cfg.GetAsynqQueueName()
	if queue == "" {
		queue = "default"
	}

	return &OutboxDispatcher{
		client: asynq.NewClient(opt),
		queue:  queue,
		repo:   repository.NewOutboxRepository(pool),
		log:    log,
	}, nil
}

func (d *OutboxDispatcher) Close() error {
	if d == nil || d.client == nil {
		return nil
	}
	return d.client.Close()
}

func (d *OutboxDispatcher) Run(ctx context.Context) {
	if d == nil || d.client == nil || d.repo == nil {
		return
	}

	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		entries, err := d.repo.ListDue(ctx, time.Now(), 50)
		if err != nil {
			d.log.Warn("outbox poll failed", "error", err)
			continue
		}

		for _, entry := range entries {
			task, err := NewNotificationOutboxDueTask(NotificationOutboxDuePayload{
				OutboxID: entry.ID.String(),
			})
			if err != nil {
				d.log.Warn("outbox task build failed", "outbox_id", entry.ID, "error", err)
				continue
			}

			if _, err := d.client.EnqueueContext(ctx, task, asynq.ProcessAt(entry.DueAt), asynq.Queue(d.queue)); err != nil {
				d.log.Warn("outbox enqueue failed", "outbox_id", entry.ID, "error", err)
			}
		}
	}
}
