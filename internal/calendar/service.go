package calendar

import (
	"context"
	"time"

	apptrepo "assistec_backend/internal/appointments/repository"
	"assistec_backend/internal/calendar/repository"
	ordrepo "assistec_backend/internal/orders/repository"
	"assistec_backend/platform/logger"

	"github.com/google/uuid"
)

// AppointmentSource supplies the day's appointments for slot generation.
type AppointmentSource interface {
	ListForDay(ctx context.Context, technicianID uuid.UUID, day time.Time) ([]apptrepo.Agendamento, error)
}

// OrderSource supplies the day's active service orders.
type OrderSource interface {
	ListForDay(ctx context.Context, technicianID uuid.UUID, day time.Time) ([]ordrepo.ServiceOrder, error)
}

// EventStore persists the calendar-event mirror.
type EventStore interface {
	Create(ctx context.Context, e *repository.CalendarEvent) error
	ListForDay(ctx context.Context, technicianID uuid.UUID, day time.Time) ([]repository.CalendarEvent, error)
	DeleteByAppointmentIDs(ctx context.Context, ids []uuid.UUID) error
}

// Service generates slot views and answers availability queries.
type Service struct {
	workday      Workday
	appointments AppointmentSource
	orders       OrderSource
	events       EventStore
	log          *logger.Logger
}

// NewService creates a calendar service.
func NewService(workday Workday, appointments AppointmentSource, orders OrderSource, events EventStore, log *logger.Logger) *Service {
	return &Service{
		workday:      workday,
		appointments: appointments,
		orders:       orders,
		events:       events,
		log:          log,
	}
}

// Workday returns the configured slot-generation window.
func (s *Service) Workday() Workday {
	return s.workday
}

// DaySlots regenerates the technician's slot view from the current
// appointment and order snapshot.
func (s *Service) DaySlots(ctx context.Context, technicianID uuid.UUID, day time.Time) ([]Slot, error) {
	appointments, err := s.appointments.ListForDay(ctx, technicianID, day)
	if err != nil {
		return nil, err
	}
	orders, err := s.orders.ListForDay(ctx, technicianID, day)
	if err != nil {
		return nil, err
	}

	return GenerateDaySlots(s.workday, day, technicianID, appointments, orders), nil
}

// CheckAvailability validates every requested hour against the work window
// and the technician's existing orders. All conflicts are reported together.
func (s *Service) CheckAvailability(ctx context.Context, technicianID uuid.UUID, day time.Time, requests []HourRequest) (AvailabilityResult, error) {
	orders, err := s.orders.ListForDay(ctx, technicianID, day)
	if err != nil {
		return AvailabilityResult{}, err
	}

	return CheckHours(s.workday, requests, BusyHours(orders, day)), nil
}

// NextAvailable returns the first n free slots of the technician's day.
func (s *Service) NextAvailable(ctx context.Context, technicianID uuid.UUID, day time.Time, n int) ([]Slot, error) {
	slots, err := s.DaySlots(ctx, technicianID, day)
	if err != nil {
		return nil, err
	}
	return FindNextAvailable(slots, n), nil
}

// Alternatives returns up to n free slots outside the conflicting hours.
func (s *Service) Alternatives(ctx context.Context, technicianID uuid.UUID, day time.Time, conflicting []int, n int) ([]Slot, error) {
	slots, err := s.DaySlots(ctx, technicianID, day)
	if err != nil {
		return nil, err
	}

	exclude := make(map[int]bool, len(conflicting))
	for _, h := range conflicting {
		exclude[h] = true
	}

	return SuggestAlternatives(slots, exclude, n), nil
}

// MirrorConfirmation writes the mirror event for a confirmed appointment.
// Best-effort: a failure is logged and swallowed so it never breaks the
// confirmation itself.
func (s *Service) MirrorConfirmation(ctx context.Context, e *repository.CalendarEvent) bool {
	if err := s.events.Create(ctx, e); err != nil {
		s.log.BestEffortFailure("calendar mirror write", err)
		return false
	}
	return true
}

// DropMirrors deletes the mirror events for the given appointments,
// best-effort.
func (s *Service) DropMirrors(ctx context.Context, appointmentIDs []uuid.UUID) {
	if err := s.events.DeleteByAppointmentIDs(ctx, appointmentIDs); err != nil {
		s.log.BestEffortFailure("calendar mirror delete", err)
	}
}

// EventsForDay lists the persisted mirror events for a technician's day.
func (s *Service) EventsForDay(ctx context.Context, technicianID uuid.UUID, day time.Time) ([]repository.CalendarEvent, error) {
	return s.events.ListForDay(ctx, technicianID, day)
}
