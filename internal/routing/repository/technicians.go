// Package repository provides the technician lookup used by route
// application.
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

// Technician is a dispatchable field technician.
type Technician struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Phone     *string   `db:"phone" json:"phone,omitempty"`
	Active    bool      `db:"active" json:"active"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// TechnicianRepository provides database operations for technicians.
type TechnicianRepository struct {
	pool *pgxpool.Pool
}

// NewTechnicianRepository creates a new technician repository.
func NewTechnicianRepository(pool *pgxpool.Pool) *TechnicianRepository {
	return &TechnicianRepository{pool: pool}
}

// ResolveName returns the technician's display name.
func (r *TechnicianRepository) ResolveName(ctx context.Context, id uuid.UUID) (string, error) {
	var name string
	err := r.pool.QueryRow(ctx, `SELECT name FROM tecnicos WHERE id = $1`, id).Scan(&name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", apperr.NotFound("technician not found")
		}
		return "", fmt.Errorf("failed to resolve technician name: %w", err)
	}
	return name, nil
}

// ListActive returns the active technicians ordered by name.
func (r *TechnicianRepository) ListActive(ctx context.Context) ([]Technician, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, phone, active, created_at
		FROM tecnicos
		WHERE active = TRUE
		ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list technicians: %w", err)
	}
	defer rows.Close()

	technicians := make([]Technician, 0)
	for rows.Next() {
		var t Technician
		if err := rows.Scan(&t.ID, &t.Name, &t.Phone, &t.Active, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan technician: %w", err)
		}
		technicians = append(technicians, t)
	}

	return technicians, rows.Err()
}
