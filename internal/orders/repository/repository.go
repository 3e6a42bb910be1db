package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"assistec_backend/internal/orders/transport"
	"assistec_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// ServiceOrder represents the service order database model.
type ServiceOrder struct {
	ID             uuid.UUID                `db:"id"`
	DisplayNumber  string                   `db:"display_number"`
	ClientID       *uuid.UUID               `db:"client_id"`
	ClientName     string                   `db:"client_name"`
	ClientPhone    string                   `db:"client_phone"`
	Equipment      string                   `db:"equipment"`
	Problem        string                   `db:"problem"`
	Status         transport.Status         `db:"status"`
	ScheduledAt    *time.Time               `db:"scheduled_at"`
	TechnicianID   *uuid.UUID               `db:"technician_id"`
	AttendanceType transport.AttendanceType `db:"attendance_type"`
	EstimatedCost  decimal.NullDecimal      `db:"estimated_cost"`
	FinalCost      decimal.NullDecimal      `db:"final_cost"`
	AppointmentID  *uuid.UUID               `db:"appointment_id"`
	LogisticsGroup *string                  `db:"logistics_group"`
	CreatedAt      time.Time                `db:"created_at"`
	UpdatedAt      time.Time                `db:"updated_at"`
}

// ToResponse converts the model to its transport representation.
func (o *ServiceOrder) ToResponse() transport.OrderResponse {
	resp := transport.OrderResponse{
		ID:             o.ID,
		DisplayNumber:  o.DisplayNumber,
		ClientID:       o.ClientID,
		ClientName:     o.ClientName,
		ClientPhone:    o.ClientPhone,
		Equipment:      o.Equipment,
		Problem:        o.Problem,
		Status:         o.Status,
		ScheduledAt:    o.ScheduledAt,
		TechnicianID:   o.TechnicianID,
		AttendanceType: o.AttendanceType,
		AppointmentID:  o.AppointmentID,
		LogisticsGroup: o.LogisticsGroup,
		CreatedAt:      o.CreatedAt,
		UpdatedAt:      o.UpdatedAt,
	}
	if o.EstimatedCost.Valid {
		value := o.EstimatedCost.Decimal
		resp.EstimatedCost = &value
	}
	if o.FinalCost.Valid {
		value := o.FinalCost.Decimal
		resp.FinalCost = &value
	}
	return resp
}

// ListFilter narrows List results.
type ListFilter struct {
	Status       *transport.Status
	TechnicianID *uuid.UUID
	Date         *time.Time
	Limit        int
	Offset       int
}

// Repository provides database operations for service orders.
type Repository struct {
	pool *pgxpool.Pool
}

const orderNotFoundMsg = "service order not found"

const orderColumns = `id, display_number, client_id, client_name, client_phone, equipment, problem,
	status, scheduled_at, technician_id, attendance_type, estimated_cost, final_cost,
	appointment_id, logistics_group, created_at, updated_at`

const orderInsert = `
	INSERT INTO ordens_servico (
		id, display_number, client_id, client_name, client_phone, equipment, problem,
		status, scheduled_at, technician_id, attendance_type, estimated_cost, final_cost,
		appointment_id, logistics_group, created_at, updated_at
	) VALUES (
		$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17
	)`

// New creates a new service order repository.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func scanOrder(row pgx.Row) (*ServiceOrder, error) {
	var o ServiceOrder
	err := row.Scan(
		&o.ID, &o.DisplayNumber, &o.ClientID, &o.ClientName, &o.ClientPhone, &o.Equipment,
		&o.Problem, &o.Status, &o.ScheduledAt, &o.TechnicianID, &o.AttendanceType,
		&o.EstimatedCost, &o.FinalCost, &o.AppointmentID, &o.LogisticsGroup,
		&o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func insertArgs(o *ServiceOrder) []interface{} {
	return []interface{}{
		o.ID, o.DisplayNumber, o.ClientID, o.ClientName, o.ClientPhone, o.Equipment,
		o.Problem, o.Status, o.ScheduledAt, o.TechnicianID, o.AttendanceType,
		o.EstimatedCost, o.FinalCost, o.AppointmentID, o.LogisticsGroup,
		o.CreatedAt, o.UpdatedAt,
	}
}

// Create inserts a single service order.
func (r *Repository) Create(ctx context.Context, o *ServiceOrder) error {
	if _, err := r.pool.Exec(ctx, orderInsert, insertArgs(o)...); err != nil {
		return fmt.Errorf("failed to create service order: %w", err)
	}
	return nil
}

// CreateMany inserts the orders inside one transaction: either every group's
// order lands or none does. This backs the multi-equipment conversion.
func (r *Repository) CreateMany(ctx context.Context, orders []*ServiceOrder) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, o := range orders {
		if _, err := tx.Exec(ctx, orderInsert, insertArgs(o)...); err != nil {
			return fmt.Errorf("failed to create service order %s: %w", o.DisplayNumber, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit service orders: %w", err)
	}

	return nil
}

// GetByID retrieves a service order by its ID.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*ServiceOrder, error) {
	query := `SELECT ` + orderColumns + ` FROM ordens_servico WHERE id = $1`

	o, err := scanOrder(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound(orderNotFoundMsg)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get service order: %w", err)
	}

	return o, nil
}

// List retrieves service orders matching the filter, newest first, plus the
// total row count for pagination.
func (r *Repository) List(ctx context.Context, filter ListFilter) ([]ServiceOrder, int, error) {
	where := " WHERE 1=1"
	args := []interface{}{}
	argIndex := 1

	if filter.Status != nil {
		where += fmt.Sprintf(" AND status = $%d", argIndex)
		args = append(args, *filter.Status)
		argIndex++
	}
	if filter.TechnicianID != nil {
		where += fmt.Sprintf(" AND technician_id = $%d", argIndex)
		args = append(args, *filter.TechnicianID)
		argIndex++
	}
	if filter.Date != nil {
		where += fmt.Sprintf(" AND scheduled_at >= $%d AND scheduled_at < $%d", argIndex, argIndex+1)
		day := filter.Date.Truncate(24 * time.Hour)
		args = append(args, day, day.Add(24*time.Hour))
		argIndex += 2
	}

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM ordens_servico"+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count service orders: %w", err)
	}

	query := "SELECT " + orderColumns + " FROM ordens_servico" + where + " ORDER BY created_at DESC"
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", argIndex, argIndex+1)
		args = append(args, filter.Limit, filter.Offset)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list service orders: %w", err)
	}
	defer rows.Close()

	items := make([]ServiceOrder, 0)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan service order: %w", err)
		}
		items = append(items, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate service orders: %w", err)
	}

	return items, total, nil
}

// ListForDay retrieves a technician's active orders scheduled on the given
// day. Cancelled orders do not occupy the schedule.
func (r *Repository) ListForDay(ctx context.Context, technicianID uuid.UUID, day time.Time) ([]ServiceOrder, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	query := `SELECT ` + orderColumns + ` FROM ordens_servico
		WHERE technician_id = $1 AND scheduled_at >= $2 AND scheduled_at < $3 AND status != $4
		ORDER BY scheduled_at ASC`

	rows, err := r.pool.Query(ctx, query, technicianID, start, start.Add(24*time.Hour), transport.StatusCancelado)
	if err != nil {
		return nil, fmt.Errorf("failed to list day orders: %w", err)
	}
	defer rows.Close()

	items := make([]ServiceOrder, 0)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan service order: %w", err)
		}
		items = append(items, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate day orders: %w", err)
	}

	return items, nil
}

// UpdateStatus sets the order workflow status.
func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, status transport.Status) error {
	query := `UPDATE ordens_servico SET status = $2, updated_at = $3 WHERE id = $1`

	result, err := r.pool.Exec(ctx, query, id, status, time.Now())
	if err != nil {
		return fmt.Errorf("failed to update order status: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound(orderNotFoundMsg)
	}

	return nil
}

// UpdateFinalCost records the workshop's final cost for an order.
func (r *Repository) UpdateFinalCost(ctx context.Context, id uuid.UUID, cost decimal.Decimal) error {
	query := `UPDATE ordens_servico SET final_cost = $2, updated_at = $3 WHERE id = $1`

	result, err := r.pool.Exec(ctx, query, id, cost, time.Now())
	if err != nil {
		return fmt.Errorf("failed to update final cost: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound(orderNotFoundMsg)
	}

	return nil
}

// MaxDisplayNumber returns the highest OS display number, or "" when the
// table is empty. Implements numbering.MaxNumberStore.
func (r *Repository) MaxDisplayNumber(ctx context.Context) (string, error) {
	query := `SELECT display_number FROM ordens_servico
		WHERE display_number ~ '^OS #\d+$'
		ORDER BY (substring(display_number FROM '\d+'))::int DESC
		LIMIT 1`

	var number string
	err := r.pool.QueryRow(ctx, query).Scan(&number)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read max display number: %w", err)
	}

	return number, nil
}
