package scheduler

import (
	"context"
	"crypto/tls"
	"fmt"
	"time"

	"assistec_backend/internal/events"
	"assistec_backend/platform/config"
	"assistec_backend/platform/logger"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
)

// reminderLead is how long before the confirmed visit the reminder fires.
const reminderLead = 24 * time.Hour

// Client enqueues scheduled tasks.
type Client struct {
	client *asynq.Client
	queue  string
	log    *logger.Logger
}

// NewClient creates an asynq client against the configured redis.
func NewClient(cfg config.SchedulerConfig, log *logger.Logger) (*Client, error) {
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

	return &Client{
		client: asynq.NewClient(opt),
		queue:  queue,
		log:    log,
	}, nil
}

func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

// ScheduleAppointmentReminder enqueues a reminder task to run at runAt.
func (c *Client) ScheduleAppointmentReminder(ctx context.Context, payload AppointmentReminderPayload, runAt time.Time) error {
	if c == nil || c.client == nil {
		return nil
	}

	task, err := NewAppointmentReminderTask(payload)
	if err != nil {
		return err
	}

	_, err = c.client.EnqueueContext(ctx, task, asynq.ProcessAt(runAt), asynq.Queue(c.queue))
	return err
}

// RegisterEventHandlers schedules a reminder for every confirmed
// appointment, one day before the visit. Scheduling failures are logged
// only: losing a reminder never breaks a confirmation.
func (c *Client) RegisterEventHandlers(bus events.Bus) {
	bus.Subscribe(events.EventNameAppointmentConfirmed, events.HandlerFunc(func(ctx context.Context, event events.Event) error {
		e, ok := event.(events.AppointmentConfirmed)
		if !ok {
			return nil
		}

		runAt := e.ScheduledAt.Add(-reminderLead)
		if runAt.Before(time.Now()) {
			return nil
		}

		err := c.ScheduleAppointmentReminder(ctx, AppointmentReminderPayload{
			AppointmentID: e.AppointmentID.String(),
		}, runAt)
		if err != nil {
			c.log.BestEffortFailure("reminder scheduling", err)
		}
		return nil
	}))
}

func redisClientOpt(redisURL string, tlsInsecure bool) (asynq.RedisClientOpt, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return asynq.RedisClientOpt{}, err
	}

	var tlsConfig *tls.Config
	if opt.TLSConfig != nil {
		clone := opt.TLSConfig.Clone()
		if tlsInsecure {
			clone.InsecureSkipVerify = true
		}
		tlsConfig = clone
	} else if tlsInsecure {
		tlsConfig = &tls.Config{InsecureSkipVerify: true}
	}

	return asynq.RedisClientOpt{
		Addr:      opt.Addr,
		Password:  opt.Password,
		DB:        opt.DB,
		TLSConfig: tlsConfig,
	}, nil
}
