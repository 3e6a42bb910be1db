// Package repository persists the calendar-event mirror. The mirror is a
// denormalized projection of confirmed appointments: writes are best-effort
// and callers log failures instead of propagating them.
package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CalendarEvent mirrors one confirmed appointment on a technician's agenda.
type CalendarEvent struct {
	ID            uuid.UUID  `db:"id" json:"id"`
	TechnicianID  uuid.UUID  `db:"technician_id" json:"technicianId"`
	AppointmentID *uuid.UUID `db:"appointment_id" json:"appointmentId,omitempty"`
	Title         string     `db:"title" json:"title"`
	Description   string     `db:"description" json:"description,omitempty"`
	StartsAt      time.Time  `db:"starts_at" json:"startsAt"`
	EndsAt        time.Time  `db:"ends_at" json:"endsAt"`
	Location      string     `db:"location" json:"location,omitempty"`
	Status        string     `db:"status" json:"status"`
	ServiceType   string     `db:"service_type" json:"serviceType,omitempty"`
	CreatedAt     time.Time  `db:"created_at" json:"createdAt"`
}

// Repository provides database operations for calendar events.
type Repository struct {
	pool *pgxpool.Pool
}

// New creates a new calendar event repository.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts one mirror event.
func (r *Repository) Create(ctx context.Context, e *CalendarEvent) error {
	query := `
		INSERT INTO calendar_events (
			id, technician_id, appointment_id, title, description,
			starts_at, ends_at, location, status, service_type, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := r.pool.Exec(ctx, query,
		e.ID, e.TechnicianID, e.AppointmentID, e.Title, e.Description,
		e.StartsAt, e.EndsAt, e.Location, e.Status, e.ServiceType, e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create calendar event: %w", err)
	}

	return nil
}

// ListForDay retrieves a technician's mirror events for one day.
func (r *Repository) ListForDay(ctx context.Context, technicianID uuid.UUID, day time.Time) ([]CalendarEvent, error) {
	query := `
		SELECT id, technician_id, appointment_id, title, description,
			starts_at, ends_at, location, status, service_type, created_at
		FROM calendar_events
		WHERE technician_id = $1 AND starts_at >= $2 AND starts_at < $3
		ORDER BY starts_at`

	dayStart := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	rows, err := r.pool.Query(ctx, query, technicianID, dayStart, dayStart.AddDate(0, 0, 1))
	if err != nil {
		return nil, fmt.Errorf("failed to list calendar events: %w", err)
	}
	defer rows.Close()

	events := make([]CalendarEvent, 0)
	for rows.Next() {
		var e CalendarEvent
		err := rows.Scan(
			&e.ID, &e.TechnicianID, &e.AppointmentID, &e.Title, &e.Description,
			&e.StartsAt, &e.EndsAt, &e.Location, &e.Status, &e.ServiceType, &e.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan calendar event: %w", err)
		}
		events = append(events, e)
	}

	return events, rows.Err()
}

// DeleteByAppointmentIDs removes the mirror events for the given
// appointments. Used when a route application is cancelled.
func (r *Repository) DeleteByAppointmentIDs(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}

	query := `DELETE FROM calendar_events WHERE appointment_id = ANY($1)`
	if _, err := r.pool.Exec(ctx, query, ids); err != nil {
		return fmt.Errorf("failed to delete calendar events: %w", err)
	}

	return nil
}
