package service

import (
	"context"
	"fmt"
	"time"

	"assistec_backend/internal/appointments/repository"
	"assistec_backend/internal/appointments/transport"
	"assistec_backend/internal/events"
	"assistec_backend/internal/numbering"
	"assistec_backend/platform/apperr"
	"assistec_backend/platform/logger"
	"assistec_backend/platform/phone"

	"github.com/google/uuid"
)

const dateFormat = "2006-01-02"

// Store is the appointment persistence interface the service depends on.
// Satisfied by repository.Repository (Postgres) and repository.Memory (tests).
type Store interface {
	Create(ctx context.Context, a *repository.Agendamento) error
	GetByID(ctx context.Context, id uuid.UUID) (*repository.Agendamento, error)
	List(ctx context.Context, filter repository.ListFilter) ([]repository.Agendamento, int, error)
	Update(ctx context.Context, a *repository.Agendamento) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status transport.Status) error
	Delete(ctx context.Context, id uuid.UUID) error
	RevertConversion(ctx context.Context, id uuid.UUID) error
}

// Service provides business logic for appointment intake and lifecycle.
type Service struct {
	store    Store
	numbers  *numbering.Generator
	eventBus events.Bus
	log      *logger.Logger
}

// New creates a new appointments service.
func New(store Store, numbers *numbering.Generator, eventBus events.Bus, log *logger.Logger) *Service {
	return &Service{
		store:    store,
		numbers:  numbers,
		eventBus: eventBus,
		log:      log,
	}
}

// Create registers a new appointment from intake data. The display number is
// assigned here; geocoding happens asynchronously off the published event.
func (s *Service) Create(ctx context.Context, req transport.CreateAgendamentoRequest) (*transport.AgendamentoResponse, error) {
	if len(req.AttendanceTypes) > 0 && len(req.AttendanceTypes) != len(req.Equipments) {
		return nil, apperr.Validation("attendanceTypes must match equipments length when provided")
	}

	now := time.Now()
	a := &repository.Agendamento{
		ID:              uuid.New(),
		DisplayNumber:   s.numbers.Next(ctx),
		ClientName:      req.ClientName,
		ClientPhone:     phone.NormalizeE164(req.ClientPhone),
		Address:         req.Address,
		Latitude:        req.Latitude,
		Longitude:       req.Longitude,
		ScheduledAt:     req.ScheduledAt,
		Status:          transport.StatusPendente,
		Urgent:          req.Urgent,
		ServiceKind:     req.ServiceKind,
		LogisticsGroup:  req.LogisticsGroup,
		Equipments:      req.Equipments,
		Problems:        req.Problems,
		AttendanceTypes: req.AttendanceTypes,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if req.ClientEmail != "" {
		email := req.ClientEmail
		a.ClientEmail = &email
	}

	if err := s.store.Create(ctx, a); err != nil {
		return nil, err
	}

	if s.eventBus != nil {
		s.eventBus.Publish(ctx, events.AppointmentCreated{
			BaseEvent:     events.NewBaseEvent(),
			AppointmentID: a.ID,
			DisplayNumber: a.DisplayNumber,
			ClientName:    a.ClientName,
			Address:       a.Address,
			Urgent:        a.Urgent,
		})
	}

	resp := a.ToResponse()
	return &resp, nil
}

// GetByID returns a single appointment.
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*transport.AgendamentoResponse, error) {
	a, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := a.ToResponse()
	return &resp, nil
}

// List returns appointments matching the request filters.
func (s *Service) List(ctx context.Context, req transport.ListAgendamentosRequest) (*transport.AgendamentoListResponse, error) {
	page := req.Page
	if page < 1 {
		page = 1
	}
	pageSize := req.PageSize
	if pageSize < 1 {
		pageSize = 20
	}

	filter := repository.ListFilter{
		Status:       req.Status,
		TechnicianID: req.TechnicianID,
		Limit:        pageSize,
		Offset:       (page - 1) * pageSize,
	}
	if req.Date != "" {
		day, err := time.Parse(dateFormat, req.Date)
		if err != nil {
			return nil, apperr.BadRequest("date must be formatted as YYYY-MM-DD")
		}
		filter.Date = &day
	}

	items, total, err := s.store.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	responses := make([]transport.AgendamentoResponse, 0, len(items))
	for i := range items {
		responses = append(responses, items[i].ToResponse())
	}

	totalPages := (total + pageSize - 1) / pageSize
	return &transport.AgendamentoListResponse{
		Items:      responses,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}, nil
}

// Update modifies the intake fields of a non-terminal appointment.
func (s *Service) Update(ctx context.Context, id uuid.UUID, req transport.UpdateAgendamentoRequest) (*transport.AgendamentoResponse, error) {
	a, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if a.Status.Terminal() {
		return nil, apperr.Conflict(fmt.Sprintf("appointment %s is %s and can no longer change", a.DisplayNumber, a.Status))
	}

	applyUpdate(a, req)
	if err := s.store.Update(ctx, a); err != nil {
		return nil, err
	}

	updated, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := updated.ToResponse()
	return &resp, nil
}

// UpdateStatus performs a validated lifecycle transition. Converting is the
// order converter's job and is rejected here; terminal states never move.
func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, next transport.Status) error {
	if next == transport.StatusConvertido {
		return apperr.BadRequest("conversion is performed by service order creation, not a status update")
	}

	a, err := s.store.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if a.Status.Terminal() {
		return apperr.Conflict(fmt.Sprintf("appointment %s is %s and can no longer change", a.DisplayNumber, a.Status))
	}
	if a.Status == next {
		return nil
	}

	return s.store.UpdateStatus(ctx, id, next)
}

// Delete removes a non-converted appointment.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	a, err := s.store.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if a.Status == transport.StatusConvertido {
		return apperr.Conflict("converted appointments are kept for audit and cannot be deleted")
	}

	return s.store.Delete(ctx, id)
}

// RevertConversion rolls a converted appointment back to confirmado after a
// downstream failure. Conversion fields are cleared; the orphaned orders,
// if any, are the caller's responsibility.
func (s *Service) RevertConversion(ctx context.Context, id uuid.UUID) error {
	if err := s.store.RevertConversion(ctx, id); err != nil {
		return err
	}
	s.log.Info("conversion reverted", "appointment_id", id.String())
	return nil
}

func applyUpdate(a *repository.Agendamento, req transport.UpdateAgendamentoRequest) {
	if req.ClientName != nil {
		a.ClientName = *req.ClientName
	}
	if req.ClientPhone != nil {
		a.ClientPhone = phone.NormalizeE164(*req.ClientPhone)
	}
	if req.ClientEmail != nil {
		a.ClientEmail = req.ClientEmail
	}
	if req.Address != nil {
		a.Address = *req.Address
		// new address invalidates stale coordinates unless provided too
		if req.Latitude == nil && req.Longitude == nil {
			a.Latitude = nil
			a.Longitude = nil
		}
	}
	if req.Latitude != nil {
		a.Latitude = req.Latitude
	}
	if req.Longitude != nil {
		a.Longitude = req.Longitude
	}
	if req.ScheduledAt != nil {
		a.ScheduledAt = req.ScheduledAt
	}
	if req.Urgent != nil {
		a.Urgent = *req.Urgent
	}
	if req.LogisticsGroup != nil {
		a.LogisticsGroup = req.LogisticsGroup
	}
	if req.Equipments != nil {
		a.Equipments = req.Equipments
	}
	if req.Problems != nil {
		a.Problems = req.Problems
	}
}
