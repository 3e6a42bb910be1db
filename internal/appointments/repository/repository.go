package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"assistec_backend/internal/appointments/transport"
	"assistec_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Agendamento represents the appointment database model.
type Agendamento struct {
	ID              uuid.UUID                `db:"id"`
	DisplayNumber   string                   `db:"display_number"`
	ClientName      string                   `db:"client_name"`
	ClientPhone     string                   `db:"client_phone"`
	ClientEmail     *string                  `db:"client_email"`
	Address         string                   `db:"address"`
	Latitude        *float64                 `db:"latitude"`
	Longitude       *float64                 `db:"longitude"`
	ScheduledAt     *time.Time               `db:"scheduled_at"`
	Status          transport.Status         `db:"status"`
	Urgent          bool                     `db:"urgent"`
	ServiceKind     transport.ServiceKind    `db:"service_kind"`
	LogisticsGroup  *string                  `db:"logistics_group"`
	TechnicianID    *uuid.UUID               `db:"technician_id"`
	OrderID         *uuid.UUID               `db:"order_id"`
	Equipments      []string                 `db:"equipments"`
	Problems        []string                 `db:"problems"`
	AttendanceTypes []string                 `db:"attendance_types"`
	Processado      bool                     `db:"processado"`
	DataConversao   *time.Time               `db:"data_conversao"`
	Motivo          *transport.ProcessReason `db:"motivo_processamento"`
	CreatedAt       time.Time                `db:"created_at"`
	UpdatedAt       time.Time                `db:"updated_at"`
}

// ToResponse converts the model to its transport representation.
func (a *Agendamento) ToResponse() transport.AgendamentoResponse {
	return transport.AgendamentoResponse{
		ID:              a.ID,
		DisplayNumber:   a.DisplayNumber,
		ClientName:      a.ClientName,
		ClientPhone:     a.ClientPhone,
		ClientEmail:     a.ClientEmail,
		Address:         a.Address,
		Latitude:        a.Latitude,
		Longitude:       a.Longitude,
		ScheduledAt:     a.ScheduledAt,
		Status:          a.Status,
		Urgent:          a.Urgent,
		ServiceKind:     a.ServiceKind,
		LogisticsGroup:  a.LogisticsGroup,
		TechnicianID:    a.TechnicianID,
		OrderID:         a.OrderID,
		Equipments:      a.Equipments,
		Problems:        a.Problems,
		AttendanceTypes: a.AttendanceTypes,
		Processado:      a.Processado,
		DataConversao:   a.DataConversao,
		Motivo:          a.Motivo,
		CreatedAt:       a.CreatedAt,
		UpdatedAt:       a.UpdatedAt,
	}
}

// ListFilter narrows List results.
type ListFilter struct {
	Status       *transport.Status
	Date         *time.Time // matches the scheduled day
	TechnicianID *uuid.UUID
	Limit        int
	Offset       int
}

// Repository provides database operations for appointments.
type Repository struct {
	pool *pgxpool.Pool
}

const agendamentoNotFoundMsg = "appointment not found"

const agendamentoColumns = `id, display_number, client_name, client_phone, client_email, address,
	latitude, longitude, scheduled_at, status, urgent, service_kind, logistics_group,
	technician_id, order_id, equipments, problems, attendance_types,
	processado, data_conversao, motivo_processamento, created_at, updated_at`

// New creates a new appointments repository.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func scanAgendamento(row pgx.Row) (*Agendamento, error) {
	var a Agendamento
	err := row.Scan(
		&a.ID, &a.DisplayNumber, &a.ClientName, &a.ClientPhone, &a.ClientEmail, &a.Address,
		&a.Latitude, &a.Longitude, &a.ScheduledAt, &a.Status, &a.Urgent, &a.ServiceKind,
		&a.LogisticsGroup, &a.TechnicianID, &a.OrderID, &a.Equipments, &a.Problems,
		&a.AttendanceTypes, &a.Processado, &a.DataConversao, &a.Motivo, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// Create inserts a new appointment.
func (r *Repository) Create(ctx context.Context, a *Agendamento) error {
	query := `
		INSERT INTO agendamentos (
			id, display_number, client_name, client_phone, client_email, address,
			latitude, longitude, scheduled_at, status, urgent, service_kind, logistics_group,
			technician_id, order_id, equipments, problems, attendance_types,
			processado, data_conversao, motivo_processamento, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13,
			$14, $15, $16, $17, $18, $19, $20, $21, $22, $23
		)`

	_, err := r.pool.Exec(ctx, query,
		a.ID, a.DisplayNumber, a.ClientName, a.ClientPhone, a.ClientEmail, a.Address,
		a.Latitude, a.Longitude, a.ScheduledAt, a.Status, a.Urgent, a.ServiceKind,
		a.LogisticsGroup, a.TechnicianID, a.OrderID, a.Equipments, a.Problems,
		a.AttendanceTypes, a.Processado, a.DataConversao, a.Motivo, a.CreatedAt, a.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create appointment: %w", err)
	}

	return nil
}

// GetByID retrieves an appointment by its ID.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Agendamento, error) {
	query := `SELECT ` + agendamentoColumns + ` FROM agendamentos WHERE id = $1`

	a, err := scanAgendamento(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound(agendamentoNotFoundMsg)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}

	return a, nil
}

// List retrieves appointments matching the filter, newest first, plus the
// total row count for pagination.
func (r *Repository) List(ctx context.Context, filter ListFilter) ([]Agendamento, int, error) {
	where := " WHERE 1=1"
	args := []interface{}{}
	argIndex := 1

	if filter.Status != nil {
		where += fmt.Sprintf(" AND status = $%d", argIndex)
		args = append(args, *filter.Status)
		argIndex++
	}
	if filter.Date != nil {
		where += fmt.Sprintf(" AND scheduled_at >= $%d AND scheduled_at < $%d", argIndex, argIndex+1)
		day := filter.Date.Truncate(24 * time.Hour)
		args = append(args, day, day.Add(24*time.Hour))
		argIndex += 2
	}
	if filter.TechnicianID != nil {
		where += fmt.Sprintf(" AND technician_id = $%d", argIndex)
		args = append(args, *filter.TechnicianID)
		argIndex++
	}

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM agendamentos"+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count appointments: %w", err)
	}

	query := "SELECT " + agendamentoColumns + " FROM agendamentos" + where + " ORDER BY created_at DESC"
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", argIndex, argIndex+1)
		args = append(args, filter.Limit, filter.Offset)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list appointments: %w", err)
	}
	defer rows.Close()

	items := make([]Agendamento, 0)
	for rows.Next() {
		a, err := scanAgendamento(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan appointment: %w", err)
		}
		items = append(items, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate appointments: %w", err)
	}

	return items, total, nil
}

// ListForDay retrieves a technician's appointments scheduled on the given day,
// ordered by scheduled time. Used by the calendar slot projection.
func (r *Repository) ListForDay(ctx context.Context, technicianID uuid.UUID, day time.Time) ([]Agendamento, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	query := `SELECT ` + agendamentoColumns + ` FROM agendamentos
		WHERE technician_id = $1 AND scheduled_at >= $2 AND scheduled_at < $3
		ORDER BY scheduled_at ASC`

	rows, err := r.pool.Query(ctx, query, technicianID, start, start.Add(24*time.Hour))
	if err != nil {
		return nil, fmt.Errorf("failed to list day appointments: %w", err)
	}
	defer rows.Close()

	items := make([]Agendamento, 0)
	for rows.Next() {
		a, err := scanAgendamento(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan appointment: %w", err)
		}
		items = append(items, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate day appointments: %w", err)
	}

	return items, nil
}

// Update updates the mutable intake fields of an appointment.
func (r *Repository) Update(ctx context.Context, a *Agendamento) error {
	query := `
		UPDATE agendamentos SET
			client_name = $2,
			client_phone = $3,
			client_email = $4,
			address = $5,
			latitude = $6,
			longitude = $7,
			scheduled_at = $8,
			urgent = $9,
			logistics_group = $10,
			equipments = $11,
			problems = $12,
			updated_at = $13
		WHERE id = $1`

	result, err := r.pool.Exec(ctx, query,
		a.ID, a.ClientName, a.ClientPhone, a.ClientEmail, a.Address,
		a.Latitude, a.Longitude, a.ScheduledAt, a.Urgent, a.LogisticsGroup,
		a.Equipments, a.Problems, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("failed to update appointment: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound(agendamentoNotFoundMsg)
	}

	return nil
}

// UpdateStatus sets the appointment status. Terminal-state guards live in the
// service layer; the conversion transition has its own CAS query below.
func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, status transport.Status) error {
	query := `UPDATE agendamentos SET status = $2, updated_at = $3 WHERE id = $1`

	result, err := r.pool.Exec(ctx, query, id, status, time.Now())
	if err != nil {
		return fmt.Errorf("failed to update appointment status: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound(agendamentoNotFoundMsg)
	}

	return nil
}

// Confirm assigns a technician and scheduled time and moves the appointment
// to confirmado. Terminal appointments are not touched.
func (r *Repository) Confirm(ctx context.Context, id uuid.UUID, technicianID uuid.UUID, scheduledAt time.Time) error {
	query := `
		UPDATE agendamentos SET
			status = $2,
			technician_id = $3,
			scheduled_at = $4,
			updated_at = $5
		WHERE id = $1 AND status NOT IN ($6, $7)`

	result, err := r.pool.Exec(ctx, query,
		id, transport.StatusConfirmado, technicianID, scheduledAt, time.Now(),
		transport.StatusCancelado, transport.StatusConvertido,
	)
	if err != nil {
		return fmt.Errorf("failed to confirm appointment: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound(agendamentoNotFoundMsg)
	}

	return nil
}

// ResetToPending is the compensating update for route cancellation: the
// appointment returns to the pending pool with technician and date cleared.
func (r *Repository) ResetToPending(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE agendamentos SET
			status = $2,
			technician_id = NULL,
			scheduled_at = NULL,
			updated_at = $3
		WHERE id = $1 AND status NOT IN ($4, $5)`

	result, err := r.pool.Exec(ctx, query,
		id, transport.StatusPendente, time.Now(),
		transport.StatusCancelado, transport.StatusConvertido,
	)
	if err != nil {
		return fmt.Errorf("failed to reset appointment: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound(agendamentoNotFoundMsg)
	}

	return nil
}

// MarkConverted flips the appointment into its terminal converted state and
// links the first created order. The WHERE clause is the compare-and-swap
// guard: concurrent conversion attempts cannot both observe processado=false,
// so at most one caller wins. The loser gets apperr.Conflict.
func (r *Repository) MarkConverted(ctx context.Context, id uuid.UUID, orderID uuid.UUID, technicianID *uuid.UUID) error {
	query := `
		UPDATE agendamentos SET
			status = $2,
			processado = TRUE,
			data_conversao = $3,
			motivo_processamento = $4,
			order_id = $5,
			technician_id = COALESCE($6, technician_id),
			updated_at = $3
		WHERE id = $1 AND processado = FALSE AND status NOT IN ($2, $7)`

	result, err := r.pool.Exec(ctx, query,
		id, transport.StatusConvertido, time.Now(), transport.ProcessReasonConvertidoOS,
		orderID, technicianID, transport.StatusCancelado,
	)
	if err != nil {
		return fmt.Errorf("failed to mark appointment converted: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.Conflict("appointment already processed or converted")
	}

	return nil
}

// RevertConversion is the compensating transition back to confirmado used
// after a downstream failure. Conversion fields are cleared.
func (r *Repository) RevertConversion(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE agendamentos SET
			status = $2,
			processado = FALSE,
			data_conversao = NULL,
			motivo_processamento = NULL,
			order_id = NULL,
			updated_at = $3
		WHERE id = $1 AND status = $4`

	result, err := r.pool.Exec(ctx, query,
		id, transport.StatusConfirmado, time.Now(), transport.StatusConvertido,
	)
	if err != nil {
		return fmt.Errorf("failed to revert conversion: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.Conflict("appointment is not converted")
	}

	return nil
}

// Delete removes an appointment.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM agendamentos WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete appointment: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound(agendamentoNotFoundMsg)
	}

	return nil
}

// ListWithoutCoordinates returns appointments lacking geocoded coordinates,
// oldest first, for the batch geocoder.
func (r *Repository) ListWithoutCoordinates(ctx context.Context, limit int) ([]Agendamento, error) {
	query := `SELECT ` + agendamentoColumns + ` FROM agendamentos
		WHERE latitude IS NULL AND status NOT IN ($1, $2)
		ORDER BY created_at ASC LIMIT $3`

	rows, err := r.pool.Query(ctx, query, transport.StatusCancelado, transport.StatusConvertido, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list ungeocoded appointments: %w", err)
	}
	defer rows.Close()

	items := make([]Agendamento, 0)
	for rows.Next() {
		a, err := scanAgendamento(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan appointment: %w", err)
		}
		items = append(items, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate ungeocoded appointments: %w", err)
	}

	return items, nil
}

// UpdateCoordinates stores geocoded coordinates for an appointment.
func (r *Repository) UpdateCoordinates(ctx context.Context, id uuid.UUID, lat, lng float64) error {
	query := `UPDATE agendamentos SET latitude = $2, longitude = $3, updated_at = $4 WHERE id = $1`

	_, err := r.pool.Exec(ctx, query, id, lat, lng, time.Now())
	if err != nil {
		return fmt.Errorf("failed to update coordinates: %w", err)
	}
	return nil
}

// MaxDisplayNumber returns the highest AG display number, or "" when the
// table is empty. Implements numbering.MaxNumberStore.
func (r *Repository) MaxDisplayNumber(ctx context.Context) (string, error) {
	query := `SELECT display_number FROM agendamentos
		WHERE display_number ~ '^AG #\d+$'
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
