// Package notification records in-app notifications and dispatches outbound
// messages through an observable outbox: every failed dispatch stays
// queryable with its error instead of vanishing into a log line.
package notification

import (
	"context"
	"fmt"
	"time"

	"assistec_backend/internal/events"
	"assistec_backend/internal/notification/repository"
	"assistec_backend/platform/apperr"
	"assistec_backend/platform/logger"

	"github.com/google/uuid"
)

// Store is the persistence interface for in-app notifications.
type Store interface {
	Create(ctx context.Context, n *repository.Notification) error
	ListRecent(ctx context.Context, limit int) ([]repository.Notification, error)
	MarkRead(ctx context.Context, id uuid.UUID) error
}

// OutboxStore is the persistence interface for the dispatch outbox.
type OutboxStore interface {
	Enqueue(ctx context.Context, e *repository.OutboxEntry) error
	GetByID(ctx context.Context, id uuid.UUID) (*repository.OutboxEntry, error)
	ListDue(ctx context.Context, now time.Time, limit int) ([]repository.OutboxEntry, error)
	MarkEnqueued(ctx context.Context, id uuid.UUID) error
	MarkSucceeded(ctx context.Context, id uuid.UUID) error
	MarkFailed(ctx context.Context, id uuid.UUID, dispatchErr error) error
}

// Sender delivers one outbox entry over its channel.
type Sender interface {
	Send(ctx context.Context, e *repository.OutboxEntry) error
}

// LogSender is the default sender: it only logs the delivery. Real channel
// integrations plug in behind the Sender interface.
type LogSender struct {
	Log *logger.Logger
}

// Send logs the entry as delivered.
func (s LogSender) Send(_ context.Context, e *repository.OutboxEntry) error {
	s.Log.Info("notification dispatched",
		"channel", e.Channel,
		"recipient", e.Recipient,
		"subject", e.Subject,
	)
	return nil
}

// Service records and dispatches notifications.
type Service struct {
	store  Store
	outbox OutboxStore
	sender Sender
	log    *logger.Logger
	now    func() time.Time
}

// NewService creates a notification service.
func NewService(store Store, outbox OutboxStore, sender Sender, log *logger.Logger) *Service {
	return &Service{store: store, outbox: outbox, sender: sender, log: log, now: time.Now}
}

// ListRecent returns the latest in-app notifications.
func (s *Service) ListRecent(ctx context.Context, limit int) ([]repository.Notification, error) {
	return s.store.ListRecent(ctx, limit)
}

// MarkRead stamps a notification as read.
func (s *Service) MarkRead(ctx context.Context, id uuid.UUID) error {
	return s.store.MarkRead(ctx, id)
}

// NotifyConfirmation records an in-app notification and an outbox row for a
// route-confirmed appointment. Used as the routing module's notifier.
func (s *Service) NotifyConfirmation(ctx context.Context, appointmentID uuid.UUID, clientName, technicianName string, scheduledAt time.Time) error {
	now := s.now()
	message := fmt.Sprintf("Visita de %s confirmada para %s às %02d:00 com %s",
		clientName, scheduledAt.Format("02/01/2006"), scheduledAt.Hour(), technicianName)

	if err := s.store.Create(ctx, &repository.Notification{
		ID:            uuid.New(),
		Kind:          repository.KindAppointmentConfirmed,
		Title:         "Agendamento confirmado",
		Message:       message,
		AppointmentID: &appointmentID,
		CreatedAt:     now,
	}); err != nil {
		return err
	}

	return s.outbox.Enqueue(ctx, &repository.OutboxEntry{
		ID:        uuid.New(),
		Channel:   "in_app",
		Recipient: clientName,
		Subject:   "Agendamento confirmado",
		Body:      message,
		Status:    repository.OutboxPending,
		DueAt:     now,
		CreatedAt: now,
		UpdatedAt: now,
	})
}

// Dispatch claims and delivers one outbox entry. The claim is exclusive, so
// two workers fighting over the same row produce one delivery.
func (s *Service) Dispatch(ctx context.Context, id uuid.UUID) error {
	entry, err := s.outbox.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.outbox.MarkEnqueued(ctx, id); err != nil {
		if apperr.Is(err, apperr.KindConflict) {
			return nil
		}
		return err
	}

	if err := s.sender.Send(ctx, entry); err != nil {
		s.log.BestEffortFailure("outbox dispatch", err)
		return s.outbox.MarkFailed(ctx, id, err)
	}

	return s.outbox.MarkSucceeded(ctx, id)
}

// DispatchDue delivers every due outbox entry and returns how many were
// processed.
func (s *Service) DispatchDue(ctx context.Context, limit int) (int, error) {
	due, err := s.outbox.ListDue(ctx, s.now(), limit)
	if err != nil {
		return 0, err
	}

	for i := range due {
		if err := s.Dispatch(ctx, due[i].ID); err != nil {
			s.log.BestEffortFailure("outbox dispatch", err)
		}
	}

	return len(due), nil
}

// RegisterEventHandlers subscribes the service to the domain events it
// records notifications for.
func (s *Service) RegisterEventHandlers(bus events.Bus) {
	bus.Subscribe(events.EventNameAppointmentCreated, events.HandlerFunc(s.onAppointmentCreated))
	bus.Subscribe(events.EventNameAppointmentConverted, events.HandlerFunc(s.onAppointmentConverted))
	bus.Subscribe(events.EventNameReminderDue, events.HandlerFunc(s.onReminderDue))
	bus.Subscribe(events.EventNameOutboxDue, events.HandlerFunc(s.onOutboxDue))
}

func (s *Service) onOutboxDue(ctx context.Context, event events.Event) error {
	e, ok := event.(events.NotificationOutboxDue)
	if !ok {
		return nil
	}
	return s.Dispatch(ctx, e.OutboxID)
}

func (s *Service) onAppointmentCreated(ctx context.Context, event events.Event) error {
	e, ok := event.(events.AppointmentCreated)
	if !ok {
		return nil
	}

	title := "Novo agendamento"
	if e.Urgent {
		title = "Novo agendamento urgente"
	}

	return s.store.Create(ctx, &repository.Notification{
		ID:            uuid.New(),
		Kind:          repository.KindAppointmentCreated,
		Title:         title,
		Message:       fmt.Sprintf("%s - %s (%s)", e.DisplayNumber, e.ClientName, e.Address),
		AppointmentID: &e.AppointmentID,
		CreatedAt:     s.now(),
	})
}

func (s *Service) onAppointmentConverted(ctx context.Context, event events.Event) error {
	e, ok := event.(events.AppointmentConverted)
	if !ok {
		return nil
	}

	var orderID *uuid.UUID
	if len(e.OrderIDs) > 0 {
		orderID = &e.OrderIDs[0]
	}

	return s.store.Create(ctx, &repository.Notification{
		ID:            uuid.New(),
		Kind:          repository.KindAppointmentConverted,
		Title:         "Agendamento convertido",
		Message:       fmt.Sprintf("%s gerou %d ordem(ns) de serviço", e.ClientName, len(e.OrderIDs)),
		AppointmentID: &e.AppointmentID,
		OrderID:       orderID,
		CreatedAt:     s.now(),
	})
}

func (s *Service) onReminderDue(ctx context.Context, event events.Event) error {
	e, ok := event.(events.AppointmentReminderDue)
	if !ok {
		return nil
	}

	now := s.now()
	return s.outbox.Enqueue(ctx, &repository.OutboxEntry{
		ID:        uuid.New(),
		Channel:   "whatsapp",
		Recipient: e.ClientPhone,
		Subject:   "Lembrete de visita",
		Body: fmt.Sprintf("Olá %s, sua visita técnica está agendada para %s às %02d:00.",
			e.ClientName, e.ScheduledAt.Format("02/01/2006"), e.ScheduledAt.Hour()),
		Status:    repository.OutboxPending,
		DueAt:     now,
		CreatedAt: now,
		UpdatedAt: now,
	})
}
