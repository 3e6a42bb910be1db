// Package repository persists in-app notifications and the dispatch outbox.
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"assistec_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Kind classifies an in-app notification.
type Kind string

const (
	KindAppointmentCreated   Kind = "agendamento_criado"
	KindAppointmentConfirmed Kind = "agendamento_confirmado"
	KindAppointmentConverted Kind = "agendamento_convertido"
	KindReminder             Kind = "lembrete_visita"
)

// Notification is an insert-only in-app notification record.
type Notification struct {
	ID            uuid.UUID  `db:"id" json:"id"`
	Kind          Kind       `db:"kind" json:"kind"`
	Title         string     `db:"title" json:"title"`
	Message       string     `db:"message" json:"message"`
	AppointmentID *uuid.UUID `db:"appointment_id" json:"appointmentId,omitempty"`
	OrderID       *uuid.UUID `db:"order_id" json:"orderId,omitempty"`
	ReadAt        *time.Time `db:"read_at" json:"readAt,omitempty"`
	CreatedAt     time.Time  `db:"created_at" json:"createdAt"`
}

// Repository provides database operations for notifications.
type Repository struct {
	pool *pgxpool.Pool
}

// New creates a new notification repository.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts one notification.
func (r *Repository) Create(ctx context.Context, n *Notification) error {
	query := `
		INSERT INTO notifications (id, kind, title, message, appointment_id, order_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.pool.Exec(ctx, query, n.ID, n.Kind, n.Title, n.Message, n.AppointmentID, n.OrderID, n.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}

	return nil
}

// ListRecent retrieves the latest notifications, unread first.
func (r *Repository) ListRecent(ctx context.Context, limit int) ([]Notification, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT id, kind, title, message, appointment_id, order_id, read_at, created_at
		FROM notifications
		ORDER BY read_at IS NOT NULL, created_at DESC
		LIMIT $1`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	defer rows.Close()

	items := make([]Notification, 0)
	for rows.Next() {
		var n Notification
		err := rows.Scan(&n.ID, &n.Kind, &n.Title, &n.Message, &n.AppointmentID, &n.OrderID, &n.ReadAt, &n.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		items = append(items, n)
	}

	return items, rows.Err()
}

// MarkRead stamps the notification as read.
func (r *Repository) MarkRead(ctx context.Context, id uuid.UUID) error {
	result, err := r.pool.Exec(ctx,
		`UPDATE notifications SET read_at = $2 WHERE id = $1 AND read_at IS NULL`,
		id, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	if result.RowsAffected() == 0 {
		if err := r.exists(ctx, id); err != nil {
			return err
		}
	}

	return nil
}

func (r *Repository) exists(ctx context.Context, id uuid.UUID) error {
	var found bool
	err := r.pool.QueryRow(ctx, `SELECT TRUE FROM notifications WHERE id = $1`, id).Scan(&found)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperr.NotFound("notification not found")
		}
		return fmt.Errorf("failed to check notification: %w", err)
	}
	return nil
}
