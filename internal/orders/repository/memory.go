package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"assistec_backend/internal/numbering"
	"assistec_backend/internal/orders/transport"
	"assistec_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Memory is an in-memory service order store keyed by id, for tests only.
type Memory struct {
	mu    sync.RWMutex
	items map[uuid.UUID]ServiceOrder

	// FailCreateFor makes CreateMany fail when it encounters an order with
	// this display number, simulating a mid-batch insert failure.
	FailCreateFor string
}

// NewMemory creates an empty in-memory order store.
func NewMemory() *Memory {
	return &Memory{items: make(map[uuid.UUID]ServiceOrder)}
}

// Seed inserts an order directly.
func (m *Memory) Seed(o ServiceOrder) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[o.ID] = o
}

// Len returns the number of stored orders.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items)
}

// Create inserts a single service order.
func (m *Memory) Create(_ context.Context, o *ServiceOrder) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailCreateFor != "" && o.DisplayNumber == m.FailCreateFor {
		return apperr.Internal("simulated insert failure")
	}
	m.items[o.ID] = *o
	return nil
}

// CreateMany mirrors the transactional Postgres path: if any order fails,
// none are stored.
func (m *Memory) CreateMany(_ context.Context, orders []*ServiceOrder) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, o := range orders {
		if m.FailCreateFor != "" && o.DisplayNumber == m.FailCreateFor {
			return apperr.Internal("simulated insert failure")
		}
	}
	for _, o := range orders {
		m.items[o.ID] = *o
	}

	return nil
}

// GetByID retrieves an order by its ID.
func (m *Memory) GetByID(_ context.Context, id uuid.UUID) (*ServiceOrder, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	o, ok := m.items[id]
	if !ok {
		return nil, apperr.NotFound(orderNotFoundMsg)
	}
	copied := o
	return &copied, nil
}

// List retrieves orders matching the filter, newest first.
func (m *Memory) List(_ context.Context, filter ListFilter) ([]ServiceOrder, int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	matched := make([]ServiceOrder, 0)
	for _, o := range m.items {
		if filter.Status != nil && o.Status != *filter.Status {
			continue
		}
		if filter.TechnicianID != nil && (o.TechnicianID == nil || *o.TechnicianID != *filter.TechnicianID) {
			continue
		}
		if filter.Date != nil {
			if o.ScheduledAt == nil || !sameDay(*o.ScheduledAt, *filter.Date) {
				continue
			}
		}
		matched = append(matched, o)
	}

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := len(matched)
	if filter.Limit > 0 {
		start := filter.Offset
		if start > total {
			start = total
		}
		end := start + filter.Limit
		if end > total {
			end = total
		}
		matched = matched[start:end]
	}

	return matched, total, nil
}

// ListForDay retrieves a technician's active orders on the given day.
func (m *Memory) ListForDay(_ context.Context, technicianID uuid.UUID, day time.Time) ([]ServiceOrder, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	items := make([]ServiceOrder, 0)
	for _, o := range m.items {
		if o.TechnicianID == nil || *o.TechnicianID != technicianID {
			continue
		}
		if o.ScheduledAt == nil || !sameDay(*o.ScheduledAt, day) {
			continue
		}
		if o.Status == transport.StatusCancelado {
			continue
		}
		items = append(items, o)
	}

	sort.Slice(items, func(i, j int) bool {
		return items[i].ScheduledAt.Before(*items[j].ScheduledAt)
	})

	return items, nil
}

// UpdateStatus sets the order workflow status.
func (m *Memory) UpdateStatus(_ context.Context, id uuid.UUID, status transport.Status) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	o, ok := m.items[id]
	if !ok {
		return apperr.NotFound(orderNotFoundMsg)
	}
	o.Status = status
	o.UpdatedAt = time.Now()
	m.items[id] = o

	return nil
}

// UpdateFinalCost records the final cost for an order.
func (m *Memory) UpdateFinalCost(_ context.Context, id uuid.UUID, cost decimal.Decimal) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	o, ok := m.items[id]
	if !ok {
		return apperr.NotFound(orderNotFoundMsg)
	}
	o.FinalCost = decimal.NewNullDecimal(cost)
	o.UpdatedAt = time.Now()
	m.items[id] = o

	return nil
}

// MaxDisplayNumber returns the highest OS display number.
func (m *Memory) MaxDisplayNumber(_ context.Context) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	best := 0
	bestText := ""
	for _, o := range m.items {
		if value, ok := numbering.Extract(o.DisplayNumber, numbering.KindServiceOrder); ok && value > best {
			best = value
			bestText = o.DisplayNumber
		}
	}

	return bestText, nil
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
