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

// OutboxStatus tracks the dispatch state of an outbox row. Failures stay
// visible in the table instead of disappearing into a swallowed error.
type OutboxStatus string

const (
	OutboxPending   OutboxStatus = "pending"
	OutboxEnqueued  OutboxStatus = "enqueued"
	OutboxSucceeded OutboxStatus = "succeeded"
	OutboxFailed    OutboxStatus = "failed"
)

// OutboxEntry is one pending outbound notification.
type OutboxEntry struct {
	ID        uuid.UUID    `db:"id" json:"id"`
	Channel   string       `db:"channel" json:"channel"`
	Recipient string       `db:"recipient" json:"recipient"`
	Subject   string       `db:"subject" json:"subject"`
	Body      string       `db:"body" json:"body"`
	Status    OutboxStatus `db:"status" json:"status"`
	Attempts  int          `db:"attempts" json:"attempts"`
	LastError *string      `db:"last_error" json:"lastError,omitempty"`
	DueAt     time.Time    `db:"due_at" json:"dueAt"`
	CreatedAt time.Time    `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time    `db:"updated_at" json:"updatedAt"`
}

const outboxColumns = `id, channel, recipient, subject, body, status, attempts, last_error, due_at, created_at, updated_at`

// OutboxRepository provides database operations for the outbox.
type OutboxRepository struct {
	pool *pgxpool.Pool
}

// NewOutboxRepository creates a new outbox repository.
func NewOutboxRepository(pool *pgxpool.Pool) *OutboxRepository {
	return &OutboxRepository{pool: pool}
}

// Enqueue inserts one pending outbox row.
func (r *OutboxRepository) Enqueue(ctx context.Context, e *OutboxEntry) error {
	query := `
		INSERT INTO notification_outbox (` + outboxColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := r.pool.Exec(ctx, query,
		e.ID, e.Channel, e.Recipient, e.Subject, e.Body, e.Status,
		e.Attempts, e.LastError, e.DueAt, e.CreatedAt, e.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to enqueue outbox entry: %w", err)
	}

	return nil
}

// GetByID retrieves one outbox row.
func (r *OutboxRepository) GetByID(ctx context.Context, id uuid.UUID) (*OutboxEntry, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+outboxColumns+` FROM notification_outbox WHERE id = $1`, id)

	e, err := scanOutbox(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("outbox entry not found")
		}
		return nil, fmt.Errorf("failed to get outbox entry: %w", err)
	}

	return e, nil
}

// ListDue retrieves pending rows whose due time has passed, oldest first.
func (r *OutboxRepository) ListDue(ctx context.Context, now time.Time, limit int) ([]OutboxEntry, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `
		SELECT ` + outboxColumns + `
		FROM notification_outbox
		WHERE status = $1 AND due_at <= $2
		ORDER BY due_at
		LIMIT $3`

	rows, err := r.pool.Query(ctx, query, OutboxPending, now, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list due outbox entries: %w", err)
	}
	defer rows.Close()

	entries := make([]OutboxEntry, 0)
	for rows.Next() {
		e, err := scanOutbox(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan outbox entry: %w", err)
		}
		entries = append(entries, *e)
	}

	return entries, rows.Err()
}

// MarkEnqueued claims a pending row for dispatch. The WHERE clause makes the
// claim exclusive: a second worker sees zero rows affected.
func (r *OutboxRepository) MarkEnqueued(ctx context.Context, id uuid.UUID) error {
	result, err := r.pool.Exec(ctx, `
		UPDATE notification_outbox
		SET status = $2, attempts = attempts + 1, updated_at = $3
		WHERE id = $1 AND status = $4`,
		id, OutboxEnqueued, time.Now(), OutboxPending,
	)
	if err != nil {
		return fmt.Errorf("failed to claim outbox entry: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.Conflict("outbox entry already claimed")
	}

	return nil
}

// MarkSucceeded records a successful dispatch.
func (r *OutboxRepository) MarkSucceeded(ctx context.Context, id uuid.UUID) error {
	return r.finish(ctx, id, OutboxSucceeded, nil)
}

// MarkFailed records a failed dispatch with its error.
func (r *OutboxRepository) MarkFailed(ctx context.Context, id uuid.UUID, dispatchErr error) error {
	message := dispatchErr.Error()
	return r.finish(ctx, id, OutboxFailed, &message)
}

func (r *OutboxRepository) finish(ctx context.Context, id uuid.UUID, status OutboxStatus, lastError *string) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE notification_outbox
		SET status = $2, last_error = $3, updated_at = $4
		WHERE id = $1`,
		id, status, lastError, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("failed to update outbox entry: %w", err)
	}
	return nil
}

func scanOutbox(row pgx.Row) (*OutboxEntry, error) {
	var e OutboxEntry
	err := row.Scan(
		&e.ID, &e.Channel, &e.Recipient, &e.Subject, &e.Body, &e.Status,
		&e.Attempts, &e.LastError, &e.DueAt, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}
