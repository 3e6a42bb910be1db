package service

import (
	"context"
	"time"

	"assistec_backend/internal/numbering"
	"assistec_backend/internal/orders/repository"
	"assistec_backend/internal/orders/transport"
	"assistec_backend/platform/apperr"
	"assistec_backend/platform/logger"
	"assistec_backend/platform/phone"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Store is the persistence interface for service orders.
type Store interface {
	Create(ctx context.Context, o *repository.ServiceOrder) error
	CreateMany(ctx context.Context, orders []*repository.ServiceOrder) error
	GetByID(ctx context.Context, id uuid.UUID) (*repository.ServiceOrder, error)
	List(ctx context.Context, filter repository.ListFilter) ([]repository.ServiceOrder, int, error)
	ListForDay(ctx context.Context, technicianID uuid.UUID, day time.Time) ([]repository.ServiceOrder, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status transport.Status) error
	UpdateFinalCost(ctx context.Context, id uuid.UUID, cost decimal.Decimal) error
	MaxDisplayNumber(ctx context.Context) (string, error)
}

// Service contains the service order business logic outside the conversion
// flow.
type Service struct {
	store   Store
	numbers *numbering.Generator
	log     *logger.Logger
}

// New creates a new service order service.
func New(store Store, numbers *numbering.Generator, log *logger.Logger) *Service {
	return &Service{store: store, numbers: numbers, log: log}
}

// Create inserts an order created directly, outside the conversion flow.
func (s *Service) Create(ctx context.Context, req transport.CreateOrderRequest) (*repository.ServiceOrder, error) {
	now := time.Now()
	order := &repository.ServiceOrder{
		ID:             uuid.New(),
		DisplayNumber:  s.numbers.Next(ctx),
		ClientName:     req.ClientName,
		ClientPhone:    phone.NormalizeE164(req.ClientPhone),
		Equipment:      req.Equipment,
		Problem:        req.Problem,
		Status:         transport.StatusAgendado,
		ScheduledAt:    req.ScheduledAt,
		TechnicianID:   req.TechnicianID,
		AttendanceType: req.AttendanceType,
		LogisticsGroup: req.LogisticsGroup,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if req.EstimatedCost != nil {
		order.EstimatedCost = decimal.NewNullDecimal(*req.EstimatedCost)
	}

	if err := s.store.Create(ctx, order); err != nil {
		return nil, err
	}

	return order, nil
}

// GetByID retrieves a single service order.
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*repository.ServiceOrder, error) {
	return s.store.GetByID(ctx, id)
}

// List retrieves service orders matching the request filters.
func (s *Service) List(ctx context.Context, req transport.ListOrdersRequest) ([]repository.ServiceOrder, int, error) {
	filter := repository.ListFilter{
		Status:       req.Status,
		TechnicianID: req.TechnicianID,
	}
	if req.Date != "" {
		day, err := time.Parse("2006-01-02", req.Date)
		if err != nil {
			return nil, 0, apperr.Validation("date must be in YYYY-MM-DD format")
		}
		filter.Date = &day
	}

	pageSize := req.PageSize
	if pageSize == 0 {
		pageSize = 20
	}
	filter.Limit = pageSize
	filter.Offset = req.Page * pageSize

	return s.store.List(ctx, filter)
}

// UpdateStatus performs a workflow transition. Terminal orders admit no
// further transitions.
func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, status transport.Status) (*repository.ServiceOrder, error) {
	order, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.Status.Terminal() {
		return nil, apperr.Conflict("service order is in a terminal status")
	}

	if err := s.store.UpdateStatus(ctx, id, status); err != nil {
		return nil, err
	}
	order.Status = status

	return order, nil
}

// SetFinalCost records the workshop's final cost for an order.
func (s *Service) SetFinalCost(ctx context.Context, id uuid.UUID, cost decimal.Decimal) (*repository.ServiceOrder, error) {
	if cost.IsNegative() {
		return nil, apperr.Validation("final cost must not be negative")
	}

	order, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.store.UpdateFinalCost(ctx, id, cost); err != nil {
		return nil, err
	}
	order.FinalCost = decimal.NewNullDecimal(cost)

	return order, nil
}
