// Package clients maintains the client records upserted from appointment
// contact data during conversion. Callers treat failures here as non-fatal.
package clients

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

// Client represents the client database model.
type Client struct {
	ID        uuid.UUID `db:"id"`
	Name      string    `db:"name"`
	Phone     string    `db:"phone"`
	Email     *string   `db:"email"`
	Address   *string   `db:"address"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// Repository provides database operations for clients.
type Repository struct {
	pool *pgxpool.Pool
}

// New creates a new clients repository.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Upsert inserts a client keyed by normalized phone, updating name, email
// and address when the phone already exists. Returns the client id.
func (r *Repository) Upsert(ctx context.Context, client Client) (uuid.UUID, error) {
	query := `
		INSERT INTO clientes (id, name, phone, email, address, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $6)
		ON CONFLICT (phone) DO UPDATE SET
			name = EXCLUDED.name,
			email = COALESCE(EXCLUDED.email, clientes.email),
			address = COALESCE(EXCLUDED.address, clientes.address),
			updated_at = EXCLUDED.updated_at
		RETURNING id`

	var id uuid.UUID
	err := r.pool.QueryRow(ctx, query,
		client.ID, client.Name, client.Phone, client.Email, client.Address, time.Now(),
	).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to upsert client: %w", err)
	}

	return id, nil
}

// GetByID retrieves a client by its ID.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Client, error) {
	query := `SELECT id, name, phone, email, address, created_at, updated_at
		FROM clientes WHERE id = $1`

	var client Client
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&client.ID, &client.Name, &client.Phone, &client.Email, &client.Address,
		&client.CreatedAt, &client.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("client not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get client: %w", err)
	}

	return &client, nil
}

// GetByPhone retrieves a client by its normalized phone number.
func (r *Repository) GetByPhone(ctx context.Context, normalizedPhone string) (*Client, error) {
	query := `SELECT id, name, phone, email, address, created_at, updated_at
		FROM clientes WHERE phone = $1`

	var client Client
	err := r.pool.QueryRow(ctx, query, normalizedPhone).Scan(
		&client.ID, &client.Name, &client.Phone, &client.Email, &client.Address,
		&client.CreatedAt, &client.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("client not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get client by phone: %w", err)
	}

	return &client, nil
}
