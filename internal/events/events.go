package events

import (
	"time"

	"github.com/google/uuid"
)

// Event names for subscription.
const (
	EventNameAppointmentCreated   = "appointments.created"
	EventNameAppointmentConfirmed = "appointments.confirmed"
	EventNameAppointmentConverted = "appointments.converted"
	EventNameRouteApplied         = "routing.applied"
	EventNameReminderDue          = "appointments.reminder_due"
	EventNameOutboxDue            = "notification.outbox_due"
)

// AppointmentCreated is published when a new appointment enters intake.
// Geocoding and notification handlers subscribe to it.
type AppointmentCreated struct {
	BaseEvent
	AppointmentID uuid.UUID
	DisplayNumber string
	ClientName    string
	Address       string
	Urgent        bool
}

func (AppointmentCreated) EventName() string { return EventNameAppointmentCreated }

// AppointmentConfirmed is published when an appointment is assigned a
// technician and date, either individually or through route application.
type AppointmentConfirmed struct {
	BaseEvent
	AppointmentID uuid.UUID
	TechnicianID  uuid.UUID
	ClientName    string
	ScheduledAt   time.Time
}

func (AppointmentConfirmed) EventName() string { return EventNameAppointmentConfirmed }

// AppointmentConverted is published after an appointment has been promoted
// into one or more service orders.
type AppointmentConverted struct {
	BaseEvent
	AppointmentID uuid.UUID
	OrderIDs      []uuid.UUID
	ClientName    string
}

func (AppointmentConverted) EventName() string { return EventNameAppointmentConverted }

// RouteApplied is published once per route application batch with the
// aggregate outcome.
type RouteApplied struct {
	BaseEvent
	TechnicianID   uuid.UUID
	Date           time.Time
	ConfirmedCount int
	FailedCount    int
}

func (RouteApplied) EventName() string { return EventNameRouteApplied }

// AppointmentReminderDue is published by the worker when a scheduled
// reminder task fires.
type AppointmentReminderDue struct {
	BaseEvent
	AppointmentID uuid.UUID
	TechnicianID  uuid.UUID
	ClientName    string
	ClientPhone   string
	ScheduledAt   time.Time
}

func (AppointmentReminderDue) EventName() string { return EventNameReminderDue }

// NotificationOutboxDue is published by the worker when an outbox row is
// due for dispatch.
type NotificationOutboxDue struct {
	BaseEvent
	OutboxID uuid.UUID
}

func (NotificationOutboxDue) EventName() string { return EventNameOutboxDue }
