package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	apptrepo "assistec_backend/internal/appointments/repository"
	appttransport "assistec_backend/internal/appointments/transport"
	"assistec_backend/internal/clients"
	"assistec_backend/internal/events"
	"assistec_backend/internal/numbering"
	"assistec_backend/internal/orders/repository"
	"assistec_backend/internal/orders/transport"
	"assistec_backend/platform/apperr"
	"assistec_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AppointmentStore is the slice of the appointments repository the converter
// depends on.
type AppointmentStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*apptrepo.Agendamento, error)
	MarkConverted(ctx context.Context, id uuid.UUID, orderID uuid.UUID, technicianID *uuid.UUID) error
}

// ClientUpserter is the client upsert collaborator. Failures are non-fatal
// to conversion.
type ClientUpserter interface {
	CreateOrUpdate(ctx context.Context, contact clients.Contact) (*uuid.UUID, error)
}

// Converter promotes confirmed appointments into service orders.
type Converter struct {
	orders       Store
	appointments AppointmentStore
	clients      ClientUpserter
	numbers      *numbering.Generator
	eventBus     events.Bus
	log          *logger.Logger
}

// NewConverter creates an order lifecycle converter.
func NewConverter(orders Store, appointments AppointmentStore, upserter ClientUpserter, numbers *numbering.Generator, eventBus events.Bus, log *logger.Logger) *Converter {
	return &Converter{
		orders:       orders,
		appointments: appointments,
		clients:      upserter,
		numbers:      numbers,
		eventBus:     eventBus,
		log:          log,
	}
}

// ConversionResult carries the created orders and the consumed appointment.
type ConversionResult struct {
	Orders      []*repository.ServiceOrder
	Agendamento *apptrepo.Agendamento
}

// CreateFromAgendamento converts one appointment into a single service
// order. Conversion is one-way: an appointment that is already processado or
// convertido is rejected before anything is written.
func (c *Converter) CreateFromAgendamento(ctx context.Context, appointmentID uuid.UUID, req transport.ConvertRequest) (*ConversionResult, error) {
	agendamento, err := c.appointments.GetByID(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	if err := guardConvertible(agendamento); err != nil {
		return nil, err
	}

	clientID := c.upsertClient(ctx, agendamento)

	order := c.buildOrder(agendamento, clientID)
	order.DisplayNumber = c.numbers.Next(ctx)
	if req.Equipment != "" {
		order.Equipment = req.Equipment
	}
	if req.Problem != "" {
		order.Problem = req.Problem
	}
	if req.ScheduledAt != nil {
		order.ScheduledAt = req.ScheduledAt
	}
	if req.TechnicianID != nil {
		order.TechnicianID = req.TechnicianID
	}
	if req.AttendanceType != nil {
		order.AttendanceType = *req.AttendanceType
	}
	if req.EstimatedCost != nil {
		order.EstimatedCost = decimal.NewNullDecimal(*req.EstimatedCost)
	}

	if err := c.orders.Create(ctx, order); err != nil {
		return nil, err
	}

	c.markConverted(ctx, agendamento, order.ID, order.TechnicianID)
	c.publishConverted(ctx, agendamento, []uuid.UUID{order.ID})

	return &ConversionResult{Orders: []*repository.ServiceOrder{order}, Agendamento: agendamento}, nil
}

// CreateMultipleFromAgendamento converts one appointment into one service
// order per equipment group. The inserts run inside a single transaction, so
// a failing group leaves no orders behind.
func (c *Converter) CreateMultipleFromAgendamento(ctx context.Context, appointmentID uuid.UUID, req transport.MultiConvertRequest) (*ConversionResult, error) {
	agendamento, err := c.appointments.GetByID(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	if err := guardConvertible(agendamento); err != nil {
		return nil, err
	}

	clientID := c.upsertClient(ctx, agendamento)

	// One Next call reserves the base number; the remaining orders in the
	// batch take consecutive numbers so concurrent Next calls cannot hand
	// out duplicates mid-batch.
	first := c.numbers.Next(ctx)
	base, ok := numbering.Extract(first, numbering.KindServiceOrder)
	if !ok {
		return nil, apperr.Internal(fmt.Sprintf("unexpected display number %q", first))
	}

	orders := make([]*repository.ServiceOrder, 0, len(req.Groups))
	for i, group := range req.Groups {
		order := c.buildOrder(agendamento, clientID)
		order.DisplayNumber = numbering.Format(base+i, numbering.KindServiceOrder)
		order.Equipment = equipmentSummary(group.Equipments)
		order.Problem = strings.Join(group.Problems, "; ")
		order.AttendanceType = group.AttendanceType
		if group.TechnicianID != nil {
			order.TechnicianID = group.TechnicianID
		}
		if group.Notes != "" {
			order.Problem += "\nObservações: " + group.Notes
		}
		if group.EstimatedValue != nil && group.EstimatedValue.IsPositive() {
			order.EstimatedCost = decimal.NewNullDecimal(*group.EstimatedValue)
			breakdown := CalculatePaymentBreakdown(group.AttendanceType, *group.EstimatedValue)
			order.Problem += "\n" + breakdown.Summary()
		}
		orders = append(orders, order)
	}

	if err := c.orders.CreateMany(ctx, orders); err != nil {
		return nil, err
	}

	c.markConverted(ctx, agendamento, orders[0].ID, orders[0].TechnicianID)

	orderIDs := make([]uuid.UUID, 0, len(orders))
	for _, o := range orders {
		orderIDs = append(orderIDs, o.ID)
	}
	c.publishConverted(ctx, agendamento, orderIDs)

	return &ConversionResult{Orders: orders, Agendamento: agendamento}, nil
}

// SuggestGrouping returns the suggested equipment groups for an appointment.
func (c *Converter) SuggestGrouping(ctx context.Context, appointmentID uuid.UUID) ([]transport.GroupSuggestion, error) {
	agendamento, err := c.appointments.GetByID(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	return SuggestEquipmentGrouping(agendamento), nil
}

func guardConvertible(a *apptrepo.Agendamento) error {
	if a.Status == appttransport.StatusConvertido {
		return apperr.Conflict("appointment already converted")
	}
	if a.Processado {
		return apperr.Conflict("appointment already processed")
	}
	if a.Status == appttransport.StatusCancelado {
		return apperr.Conflict("appointment is cancelled")
	}
	return nil
}

// buildOrder assembles the order skeleton from appointment defaults. The
// caller assigns the display number.
func (c *Converter) buildOrder(a *apptrepo.Agendamento, clientID *uuid.UUID) *repository.ServiceOrder {
	now := time.Now()

	return &repository.ServiceOrder{
		ID:             uuid.New(),
		ClientID:       clientID,
		ClientName:     a.ClientName,
		ClientPhone:    a.ClientPhone,
		Equipment:      equipmentSummary(a.Equipments),
		Problem:        strings.Join(a.Problems, "; "),
		Status:         transport.StatusAgendado,
		ScheduledAt:    a.ScheduledAt,
		TechnicianID:   a.TechnicianID,
		AttendanceType: transport.NormalizeAttendanceType(string(a.ServiceKind)),
		AppointmentID:  &a.ID,
		LogisticsGroup: a.LogisticsGroup,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

func (c *Converter) upsertClient(ctx context.Context, a *apptrepo.Agendamento) *uuid.UUID {
	var email string
	if a.ClientEmail != nil {
		email = *a.ClientEmail
	}
	clientID, err := c.clients.CreateOrUpdate(ctx, clients.Contact{
		Name:    a.ClientName,
		Phone:   a.ClientPhone,
		Email:   email,
		Address: a.Address,
	})
	if err != nil {
		c.log.BestEffortFailure("client upsert", err)
		return nil
	}
	return clientID
}

// markConverted flips the appointment terminal. A failure here is logged but
// does not undo the created orders: the orders are real work the workshop
// will perform either way.
func (c *Converter) markConverted(ctx context.Context, a *apptrepo.Agendamento, orderID uuid.UUID, technicianID *uuid.UUID) {
	if err := c.appointments.MarkConverted(ctx, a.ID, orderID, technicianID); err != nil {
		c.log.ConversionEvent(a.ID.String(), []string{orderID.String()}, false, err.Error())
		return
	}

	now := time.Now()
	reason := appttransport.ProcessReasonConvertidoOS
	a.Status = appttransport.StatusConvertido
	a.Processado = true
	a.DataConversao = &now
	a.Motivo = &reason
	a.OrderID = &orderID
	if technicianID != nil {
		a.TechnicianID = technicianID
	}
}

func (c *Converter) publishConverted(ctx context.Context, a *apptrepo.Agendamento, orderIDs []uuid.UUID) {
	ids := make([]string, 0, len(orderIDs))
	for _, id := range orderIDs {
		ids = append(ids, id.String())
	}
	c.log.ConversionEvent(a.ID.String(), ids, true, "")

	if c.eventBus != nil {
		c.eventBus.Publish(ctx, events.AppointmentConverted{
			BaseEvent:     events.NewBaseEvent(),
			AppointmentID: a.ID,
			OrderIDs:      orderIDs,
			ClientName:    a.ClientName,
		})
	}
}

// equipmentSummary renders the equipment field: a single item verbatim, a
// multi-item list as a count summary.
func equipmentSummary(equipments []string) string {
	switch len(equipments) {
	case 0:
		return ""
	case 1:
		return equipments[0]
	default:
		return fmt.Sprintf("Múltiplos equipamentos (%d)", len(equipments))
	}
}
