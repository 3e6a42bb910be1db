package transport

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Status defines the service order workflow state.
type Status string

const (
	StatusAgendado            Status = "agendado"
	StatusEmAndamento         Status = "em_andamento"
	StatusDiagnostico         Status = "diagnostico"
	StatusAguardandoAprovacao Status = "aguardando_aprovacao"
	StatusEmReparo            Status = "em_reparo"
	StatusProntoEntrega       Status = "pronto_entrega"
	StatusConcluido           Status = "concluido"
	StatusCancelado           Status = "cancelado"
)

// Terminal reports whether the status admits no further transitions.
func (s Status) Terminal() bool {
	return s == StatusConcluido || s == StatusCancelado
}

// AttendanceType is the fulfillment mode that governs the payment split.
// Immutable after order creation for cost-calculation purposes.
type AttendanceType string

const (
	AttendanceEmDomicilio       AttendanceType = "em_domicilio"
	AttendanceColetaConserto    AttendanceType = "coleta_conserto"
	AttendanceColetaDiagnostico AttendanceType = "coleta_diagnostico"
)

// NormalizeAttendanceType maps intake-side labels onto attendance types.
// "in-home" is the legacy intake spelling of em_domicilio; anything that is
// not explicitly a repair pickup defaults to diagnosis pickup.
func NormalizeAttendanceType(raw string) AttendanceType {
	switch raw {
	case "em_domicilio", "in-home":
		return AttendanceEmDomicilio
	case "coleta_conserto":
		return AttendanceColetaConserto
	default:
		return AttendanceColetaDiagnostico
	}
}

// CreateOrderRequest is the request body for creating an order directly,
// outside the appointment conversion flow.
type CreateOrderRequest struct {
	ClientName     string          `json:"clientName" validate:"required,min=1,max=200"`
	ClientPhone    string          `json:"clientPhone" validate:"required,min=8,max=30"`
	Equipment      string          `json:"equipment" validate:"required,min=1,max=200"`
	Problem        string          `json:"problem" validate:"required,max=4000"`
	ScheduledAt    *time.Time      `json:"scheduledAt,omitempty"`
	TechnicianID   *uuid.UUID      `json:"technicianId,omitempty"`
	AttendanceType AttendanceType  `json:"attendanceType" validate:"required,oneof=em_domicilio coleta_conserto coleta_diagnostico"`
	EstimatedCost  *decimal.Decimal `json:"estimatedCost,omitempty"`
	LogisticsGroup *string         `json:"logisticsGroup,omitempty" validate:"omitempty,oneof=A B C"`
}

// ConvertRequest carries the caller-supplied overrides for converting one
// appointment into a single service order. Empty fields fall back to the
// appointment's own data.
type ConvertRequest struct {
	Equipment      string          `json:"equipment,omitempty" validate:"omitempty,max=200"`
	Problem        string          `json:"problem,omitempty" validate:"omitempty,max=4000"`
	ScheduledAt    *time.Time      `json:"scheduledAt,omitempty"`
	TechnicianID   *uuid.UUID      `json:"technicianId,omitempty"`
	AttendanceType *AttendanceType `json:"attendanceType,omitempty" validate:"omitempty,oneof=em_domicilio coleta_conserto coleta_diagnostico"`
	EstimatedCost  *decimal.Decimal `json:"estimatedCost,omitempty"`
}

// EquipmentGroup is one attendance-type group in a multi-equipment conversion.
type EquipmentGroup struct {
	Equipments     []string        `json:"equipments" validate:"required,min=1,dive,min=1,max=200"`
	Problems       []string        `json:"problems" validate:"required,min=1,dive,max=2000"`
	AttendanceType AttendanceType  `json:"attendanceType" validate:"required,oneof=em_domicilio coleta_conserto coleta_diagnostico"`
	TechnicianID   *uuid.UUID      `json:"technicianId,omitempty"`
	Notes          string          `json:"notes,omitempty" validate:"max=2000"`
	EstimatedValue *decimal.Decimal `json:"estimatedValue,omitempty"`
}

// MultiConvertRequest converts one appointment into one order per group.
type MultiConvertRequest struct {
	Groups []EquipmentGroup `json:"groups" validate:"required,min=1,dive"`
}

// UpdateOrderStatusRequest is the request body for a workflow transition.
type UpdateOrderStatusRequest struct {
	Status Status `json:"status" validate:"required,oneof=agendado em_andamento diagnostico aguardando_aprovacao em_reparo pronto_entrega concluido cancelado"`
}

// UpdateFinalCostRequest is the request body for recording the final cost.
type UpdateFinalCostRequest struct {
	FinalCost decimal.Decimal `json:"finalCost" validate:"required"`
}

// ListOrdersRequest is the query parameters for listing orders.
type ListOrdersRequest struct {
	Status       *Status    `form:"status" validate:"omitempty,oneof=agendado em_andamento diagnostico aguardando_aprovacao em_reparo pronto_entrega concluido cancelado"`
	TechnicianID *uuid.UUID `form:"technicianId"`
	Date         string     `form:"date"` // ISO date (2006-01-02)
	Page         int        `form:"page" validate:"min=0"`
	PageSize     int        `form:"pageSize" validate:"min=0,max=100"`
}

// OrderResponse is the response body for a service order.
type OrderResponse struct {
	ID             uuid.UUID        `json:"id"`
	DisplayNumber  string           `json:"displayNumber"`
	ClientID       *uuid.UUID       `json:"clientId,omitempty"`
	ClientName     string           `json:"clientName"`
	ClientPhone    string           `json:"clientPhone"`
	Equipment      string           `json:"equipment"`
	Problem        string           `json:"problem"`
	Status         Status           `json:"status"`
	ScheduledAt    *time.Time       `json:"scheduledAt,omitempty"`
	TechnicianID   *uuid.UUID       `json:"technicianId,omitempty"`
	AttendanceType AttendanceType   `json:"attendanceType"`
	EstimatedCost  *decimal.Decimal `json:"estimatedCost,omitempty"`
	FinalCost      *decimal.Decimal `json:"finalCost,omitempty"`
	AppointmentID  *uuid.UUID       `json:"appointmentId,omitempty"`
	LogisticsGroup *string          `json:"logisticsGroup,omitempty"`
	CreatedAt      time.Time        `json:"createdAt"`
	UpdatedAt      time.Time        `json:"updatedAt"`
}

// OrderListResponse is the paginated response for listing orders.
type OrderListResponse struct {
	Items      []OrderResponse `json:"items"`
	Total      int             `json:"total"`
	Page       int             `json:"page"`
	PageSize   int             `json:"pageSize"`
	TotalPages int             `json:"totalPages"`
}

// ConversionResponse returns the created order(s) and the converted
// appointment id after a conversion.
type ConversionResponse struct {
	AppointmentID uuid.UUID       `json:"appointmentId"`
	Orders        []OrderResponse `json:"orders"`
}

// GroupSuggestion is one suggested equipment group.
type GroupSuggestion struct {
	EquipmentIndices []int          `json:"equipmentIndices"`
	Equipments       []string       `json:"equipments"`
	Problems         []string       `json:"problems"`
	AttendanceType   AttendanceType `json:"attendanceType"`
	Reasoning        string         `json:"reasoning"`
}
