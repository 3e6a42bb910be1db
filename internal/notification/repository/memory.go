package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"assistec_backend/platform/apperr"

	"github.com/google/uuid"
)

// Memory is an in-memory notification store for tests.
type Memory struct {
	mu    sync.RWMutex
	items map[uuid.UUID]Notification
}

// NewMemory creates an empty in-memory notification store.
func NewMemory() *Memory {
	return &Memory{items: make(map[uuid.UUID]Notification)}
}

// Len returns the number of stored notifications.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items)
}

// Create inserts one notification.
func (m *Memory) Create(_ context.Context, n *Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[n.ID] = *n
	return nil
}

// ListRecent retrieves the latest notifications.
func (m *Memory) ListRecent(_ context.Context, limit int) ([]Notification, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if limit <= 0 {
		limit = 50
	}

	items := make([]Notification, 0, len(m.items))
	for _, n := range m.items {
		items = append(items, n)
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
	if len(items) > limit {
		items = items[:limit]
	}

	return items, nil
}

// MarkRead stamps the notification as read.
func (m *Memory) MarkRead(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	n, ok := m.items[id]
	if !ok {
		return apperr.NotFound("notification not found")
	}
	if n.ReadAt == nil {
		now := time.Now()
		n.ReadAt = &now
		m.items[id] = n
	}

	return nil
}

// OutboxMemory is an in-memory outbox store for tests.
type OutboxMemory struct {
	mu    sync.RWMutex
	items map[uuid.UUID]OutboxEntry
}

// NewOutboxMemory creates an empty in-memory outbox.
func NewOutboxMemory() *OutboxMemory {
	return &OutboxMemory{items: make(map[uuid.UUID]OutboxEntry)}
}

// Enqueue inserts one pending outbox row.
func (m *OutboxMemory) Enqueue(_ context.Context, e *OutboxEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[e.ID] = *e
	return nil
}

// GetByID retrieves one outbox row.
func (m *OutboxMemory) GetByID(_ context.Context, id uuid.UUID) (*OutboxEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.items[id]
	if !ok {
		return nil, apperr.NotFound("outbox entry not found")
	}
	copied := e
	return &copied, nil
}

// ListDue retrieves pending rows whose due time has passed.
func (m *OutboxMemory) ListDue(_ context.Context, now time.Time, limit int) ([]OutboxEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if limit <= 0 {
		limit = 20
	}

	entries := make([]OutboxEntry, 0)
	for _, e := range m.items {
		if e.Status == OutboxPending && !e.DueAt.After(now) {
			entries = append(entries, e)
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].DueAt.Before(entries[j].DueAt)
	})
	if len(entries) > limit {
		entries = entries[:limit]
	}

	return entries, nil
}

// MarkEnqueued claims a pending row; only the first claimer wins.
func (m *OutboxMemory) MarkEnqueued(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.items[id]
	if !ok || e.Status != OutboxPending {
		return apperr.Conflict("outbox entry already claimed")
	}
	e.Status = OutboxEnqueued
	e.Attempts++
	e.UpdatedAt = time.Now()
	m.items[id] = e

	return nil
}

// MarkSucceeded records a successful dispatch.
func (m *OutboxMemory) MarkSucceeded(_ context.Context, id uuid.UUID) error {
	return m.finish(id, OutboxSucceeded, nil)
}

// MarkFailed records a failed dispatch.
func (m *OutboxMemory) MarkFailed(_ context.Context, id uuid.UUID, dispatchErr error) error {
	message := dispatchErr.Error()
	return m.finish(id, OutboxFailed, &message)
}

func (m *OutboxMemory) finish(id uuid.UUID, status OutboxStatus, lastError *string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.items[id]
	if !ok {
		return apperr.NotFound("outbox entry not found")
	}
	e.Status = status
	e.LastError = lastError
	e.UpdatedAt = time.Now()
	m.items[id] = e

	return nil
}
