// Package transport defines the request and response shapes for route
// application.
package transport

import (
	"assistec_backend/internal/calendar"

	"github.com/google/uuid"
)

// RouteItem schedules one appointment at one target hour of the route's day.
type RouteItem struct {
	AppointmentID   uuid.UUID `json:"appointmentId" validate:"required"`
	Hour            int       `json:"hour" validate:"min=0,max=23"`
	Minute          int       `json:"minute" validate:"min=0,max=59"`
	Second          int       `json:"second" validate:"min=0,max=59"`
	DurationMinutes int       `json:"durationMinutes" validate:"min=1"`
}

// ApplyRouteRequest confirms a batch of appointments against one
// technician's day.
type ApplyRouteRequest struct {
	TechnicianID uuid.UUID   `json:"technicianId" validate:"required"`
	Date         string      `json:"date" validate:"required,datetime=2006-01-02"`
	Items        []RouteItem `json:"items" validate:"required,min=1,dive"`
}

// ApplyRouteResponse is the aggregate outcome of a route application.
// Partial success is expected: callers must inspect the counts and errors,
// not just the HTTP status.
type ApplyRouteResponse struct {
	ConfirmedCount int             `json:"confirmedCount"`
	FailedCount    int             `json:"failedCount"`
	Slots          []calendar.Slot `json:"slots"`
	Errors         []string        `json:"errors"`
}

// CancelRouteRequest resets previously confirmed appointments to pending.
type CancelRouteRequest struct {
	AppointmentIDs []uuid.UUID `json:"appointmentIds" validate:"required,min=1"`
}
