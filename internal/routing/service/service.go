package service

import (
	"context"
	"fmt"
	"time"

	apptrepo "assistec_backend/internal/appointments/repository"
	"assistec_backend/internal/calendar"
	calrepo "assistec_backend/internal/calendar/repository"
	"assistec_backend/internal/events"
	"assistec_backend/internal/routing/transport"
	"assistec_backend/platform/apperr"
	"assistec_backend/platform/logger"

	"github.com/google/uuid"
)

// AppointmentStore is the slice of the appointments repository route
// application depends on.
type AppointmentStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*apptrepo.Agendamento, error)
	Confirm(ctx context.Context, id uuid.UUID, technicianID uuid.UUID, scheduledAt time.Time) error
	ResetToPending(ctx context.Context, id uuid.UUID) error
}

// Mirror writes and drops calendar-event projections. Implemented by the
// calendar service; all calls are best-effort.
type Mirror interface {
	MirrorConfirmation(ctx context.Context, e *calrepo.CalendarEvent) bool
	DropMirrors(ctx context.Context, appointmentIDs []uuid.UUID)
}

// TechnicianDirectory resolves a technician's display name.
type TechnicianDirectory interface {
	ResolveName(ctx context.Context, id uuid.UUID) (string, error)
}

// Notifier records a confirmation notification for later dispatch.
// Failures are logged, never propagated.
type Notifier interface {
	NotifyConfirmation(ctx context.Context, appointmentID uuid.UUID, clientName, technicianName string, scheduledAt time.Time) error
}

// Service applies and cancels routes.
type Service struct {
	workday      calendar.Workday
	appointments AppointmentStore
	mirror       Mirror
	directory    TechnicianDirectory
	notifier     Notifier
	eventBus     events.Bus
	log          *logger.Logger
}

// New creates a route application service.
func New(workday calendar.Workday, appointments AppointmentStore, mirror Mirror, directory TechnicianDirectory, notifier Notifier, eventBus events.Bus, log *logger.Logger) *Service {
	return &Service{
		workday:      workday,
		appointments: appointments,
		mirror:       mirror,
		directory:    directory,
		notifier:     notifier,
		eventBus:     eventBus,
		log:          log,
	}
}

// ValidateItems runs both validation gates over the whole batch and returns
// every violation. Nothing is mutated while violations exist.
func (s *Service) ValidateItems(items []transport.RouteItem) []string {
	violations := make([]string, 0)

	for _, item := range items {
		// gate 1: calendar availability (work window and lunch only;
		// existing orders are checked per appointment at confirm time)
		if reason := calendar.CheckWindow(s.workday, item.Hour); reason != "" {
			violations = append(violations, fmt.Sprintf("%02d:00 - %s", item.Hour, reason))
		}

		// gate 2: hourly alignment
		if item.Minute != 0 || item.Second != 0 {
			violations = append(violations, fmt.Sprintf("%02d:%02d:%02d - start time must be on the hour", item.Hour, item.Minute, item.Second))
		}
		if item.DurationMinutes > s.workday.SlotMinutes {
			violations = append(violations, fmt.Sprintf("%02d:00 - duration %d min exceeds the %d min slot", item.Hour, item.DurationMinutes, s.workday.SlotMinutes))
		}
	}

	return violations
}

// Apply confirms every appointment in the route against the technician's
// day. Validation is all-or-nothing; execution is per item, and earlier
// successes are never rolled back by a later failure.
func (s *Service) Apply(ctx context.Context, req transport.ApplyRouteRequest) (*transport.ApplyRouteResponse, error) {
	day, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return nil, apperr.Validation("date must be in YYYY-MM-DD format")
	}

	if violations := s.ValidateItems(req.Items); len(violations) > 0 {
		return nil, apperr.Validation("route validation failed").WithDetails(violations)
	}

	technicianName := s.resolveTechnicianName(ctx, req.TechnicianID)

	resp := &transport.ApplyRouteResponse{
		Slots:  make([]calendar.Slot, 0, len(req.Items)),
		Errors: make([]string, 0),
	}

	for _, item := range req.Items {
		startTime := time.Date(day.Year(), day.Month(), day.Day(), item.Hour, 0, 0, 0, day.Location())
		endTime := startTime.Add(time.Duration(item.DurationMinutes) * time.Minute)

		agendamento, err := s.appointments.GetByID(ctx, item.AppointmentID)
		if err != nil {
			resp.FailedCount++
			resp.Errors = append(resp.Errors, fmt.Sprintf("appointment %s: %v", item.AppointmentID, err))
			continue
		}

		if err := s.appointments.Confirm(ctx, item.AppointmentID, req.TechnicianID, startTime); err != nil {
			resp.FailedCount++
			resp.Errors = append(resp.Errors, fmt.Sprintf("failed to confirm %s (%s): %v", agendamento.ClientName, agendamento.DisplayNumber, err))
			continue
		}

		resp.ConfirmedCount++
		resp.Slots = append(resp.Slots, calendar.Slot{
			Start:        startTime,
			End:          endTime,
			TechnicianID: req.TechnicianID,
			Status:       calendar.SlotConfirmado,
			Occupants: []calendar.Occupant{{
				AppointmentID: agendamento.ID,
				DisplayNumber: agendamento.DisplayNumber,
				ClientName:    agendamento.ClientName,
			}},
		})

		s.mirror.MirrorConfirmation(ctx, &calrepo.CalendarEvent{
			ID:            uuid.New(),
			TechnicianID:  req.TechnicianID,
			AppointmentID: &agendamento.ID,
			Title:         fmt.Sprintf("Atendimento - %s", agendamento.ClientName),
			Description:   fmt.Sprintf("%s | Técnico: %s", agendamento.DisplayNumber, technicianName),
			StartsAt:      startTime,
			EndsAt:        endTime,
			Location:      agendamento.Address,
			Status:        string(calendar.SlotConfirmado),
			ServiceType:   string(agendamento.ServiceKind),
			CreatedAt:     time.Now(),
		})

		if s.notifier != nil {
			if err := s.notifier.NotifyConfirmation(ctx, agendamento.ID, agendamento.ClientName, technicianName, startTime); err != nil {
				s.log.BestEffortFailure("route confirmation notification", err)
			}
		}

		if s.eventBus != nil {
			s.eventBus.Publish(ctx, events.AppointmentConfirmed{
				BaseEvent:     events.NewBaseEvent(),
				AppointmentID: agendamento.ID,
				TechnicianID:  req.TechnicianID,
				ClientName:    agendamento.ClientName,
				ScheduledAt:   startTime,
			})
		}
	}

	if s.eventBus != nil {
		s.eventBus.Publish(ctx, events.RouteApplied{
			BaseEvent:      events.NewBaseEvent(),
			TechnicianID:   req.TechnicianID,
			Date:           day,
			ConfirmedCount: resp.ConfirmedCount,
			FailedCount:    resp.FailedCount,
		})
	}

	return resp, nil
}

// Cancel is the compensating operation: confirmed appointments return to the
// pending pool and their mirror events are dropped.
func (s *Service) Cancel(ctx context.Context, req transport.CancelRouteRequest) (*transport.ApplyRouteResponse, error) {
	resp := &transport.ApplyRouteResponse{Errors: make([]string, 0)}

	reset := make([]uuid.UUID, 0, len(req.AppointmentIDs))
	for _, id := range req.AppointmentIDs {
		if err := s.appointments.ResetToPending(ctx, id); err != nil {
			resp.FailedCount++
			resp.Errors = append(resp.Errors, fmt.Sprintf("appointment %s: %v", id, err))
			continue
		}
		resp.ConfirmedCount++
		reset = append(reset, id)
	}

	if len(reset) > 0 {
		s.mirror.DropMirrors(ctx, reset)
	}

	return resp, nil
}

func (s *Service) resolveTechnicianName(ctx context.Context, id uuid.UUID) string {
	if s.directory == nil {
		return "Técnico"
	}
	name, err := s.directory.ResolveName(ctx, id)
	if err != nil || name == "" {
		if err != nil {
			s.log.BestEffortFailure("technician name lookup", err)
		}
		return "Técnico"
	}
	return name
}
