package transport

import (
	"time"

	"github.com/google/uuid"
)

// Status defines the appointment lifecycle status.
type Status string

const (
	// StatusPendente is the intake state, before routing.
	StatusPendente Status = "pendente"
	// StatusRoteirizado means the appointment was selected into a route.
	StatusRoteirizado Status = "roteirizado"
	// StatusConfirmado means a technician and date are assigned.
	StatusConfirmado Status = "confirmado"
	// StatusCancelado is terminal; cancelled appointments are never converted.
	StatusCancelado Status = "cancelado"
	// StatusConvertido is terminal; service orders were created from it.
	StatusConvertido Status = "convertido"
)

// Terminal reports whether the status admits no further transitions.
func (s Status) Terminal() bool {
	return s == StatusCancelado || s == StatusConvertido
}

// ServiceKind is the requested fulfillment mode at intake.
type ServiceKind string

const (
	ServiceKindEmDomicilio ServiceKind = "em_domicilio"
	ServiceKindColeta      ServiceKind = "coleta"
)

// ProcessReason records why an appointment left the active pool.
type ProcessReason string

const (
	ProcessReasonConvertidoOS ProcessReason = "convertido_os"
	ProcessReasonCancelado    ProcessReason = "cancelado"
)

// CreateAgendamentoRequest is the request body for appointment intake.
type CreateAgendamentoRequest struct {
	ClientName      string       `json:"clientName" validate:"required,min=1,max=200"`
	ClientPhone     string       `json:"clientPhone" validate:"required,min=8,max=30"`
	ClientEmail     string       `json:"clientEmail,omitempty" validate:"omitempty,email"`
	Address         string       `json:"address" validate:"required,max=500"`
	Latitude        *float64     `json:"latitude,omitempty"`
	Longitude       *float64     `json:"longitude,omitempty"`
	ScheduledAt     *time.Time   `json:"scheduledAt,omitempty"`
	Urgent          bool         `json:"urgent"`
	ServiceKind     ServiceKind  `json:"serviceKind" validate:"required,oneof=em_domicilio coleta"`
	LogisticsGroup  *string      `json:"logisticsGroup,omitempty" validate:"omitempty,oneof=A B C"`
	Equipments      []string     `json:"equipments" validate:"required,min=1,dive,min=1,max=200"`
	Problems        []string     `json:"problems" validate:"required,min=1,dive,max=2000"`
	AttendanceTypes []string     `json:"attendanceTypes,omitempty" validate:"omitempty,dive,oneof=em_domicilio coleta_conserto coleta_diagnostico"`
}

// UpdateAgendamentoRequest is the request body for updating an appointment.
type UpdateAgendamentoRequest struct {
	ClientName     *string    `json:"clientName,omitempty" validate:"omitempty,min=1,max=200"`
	ClientPhone    *string    `json:"clientPhone,omitempty" validate:"omitempty,min=8,max=30"`
	ClientEmail    *string    `json:"clientEmail,omitempty" validate:"omitempty,email"`
	Address        *string    `json:"address,omitempty" validate:"omitempty,max=500"`
	Latitude       *float64   `json:"latitude,omitempty"`
	Longitude      *float64   `json:"longitude,omitempty"`
	ScheduledAt    *time.Time `json:"scheduledAt,omitempty"`
	Urgent         *bool      `json:"urgent,omitempty"`
	LogisticsGroup *string    `json:"logisticsGroup,omitempty" validate:"omitempty,oneof=A B C"`
	Equipments     []string   `json:"equipments,omitempty" validate:"omitempty,dive,min=1,max=200"`
	Problems       []string   `json:"problems,omitempty" validate:"omitempty,dive,max=2000"`
}

// UpdateStatusRequest is the request body for a status transition.
type UpdateStatusRequest struct {
	Status Status `json:"status" validate:"required,oneof=pendente roteirizado confirmado cancelado"`
}

// ListAgendamentosRequest is the query parameters for listing appointments.
type ListAgendamentosRequest struct {
	Status       *Status    `form:"status" validate:"omitempty,oneof=pendente roteirizado confirmado cancelado convertido"`
	Date         string     `form:"date"` // ISO date (2006-01-02)
	TechnicianID *uuid.UUID `form:"technicianId"`
	Page         int        `form:"page" validate:"min=0"`
	PageSize     int        `form:"pageSize" validate:"min=0,max=100"`
}

// AgendamentoResponse is the response body for an appointment.
type AgendamentoResponse struct {
	ID              uuid.UUID      `json:"id"`
	DisplayNumber   string         `json:"displayNumber"`
	ClientName      string         `json:"clientName"`
	ClientPhone     string         `json:"clientPhone"`
	ClientEmail     *string        `json:"clientEmail,omitempty"`
	Address         string         `json:"address"`
	Latitude        *float64       `json:"latitude,omitempty"`
	Longitude       *float64       `json:"longitude,omitempty"`
	ScheduledAt     *time.Time     `json:"scheduledAt,omitempty"`
	Status          Status         `json:"status"`
	Urgent          bool           `json:"urgent"`
	ServiceKind     ServiceKind    `json:"serviceKind"`
	LogisticsGroup  *string        `json:"logisticsGroup,omitempty"`
	TechnicianID    *uuid.UUID     `json:"technicianId,omitempty"`
	OrderID         *uuid.UUID     `json:"orderId,omitempty"`
	Equipments      []string       `json:"equipments"`
	Problems        []string       `json:"problems"`
	AttendanceTypes []string       `json:"attendanceTypes,omitempty"`
	Processado      bool           `json:"processado"`
	DataConversao   *time.Time     `json:"dataConversao,omitempty"`
	Motivo          *ProcessReason `json:"motivoProcessamento,omitempty"`
	CreatedAt       time.Time      `json:"createdAt"`
	UpdatedAt       time.Time      `json:"updatedAt"`
}

// AgendamentoListResponse is the paginated response for listing appointments.
type AgendamentoListResponse struct {
	Items      []AgendamentoResponse `json:"items"`
	Total      int                   `json:"total"`
	Page       int                   `json:"page"`
	PageSize   int                   `json:"pageSize"`
	TotalPages int                   `json:"totalPages"`
}
