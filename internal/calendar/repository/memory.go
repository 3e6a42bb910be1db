package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"assistec_backend/platform/apperr"

	"github.com/google/uuid"
)

// Memory is an in-memory calendar event store for tests.
type Memory struct {
	mu    sync.RWMutex
	items map[uuid.UUID]CalendarEvent

	// FailWrites makes every Create fail, simulating a broken mirror.
	FailWrites bool
}

// NewMemory creates an empty in-memory calendar event store.
func NewMemory() *Memory {
	return &Memory{items: make(map[uuid.UUID]CalendarEvent)}
}

// Len returns the number of stored events.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items)
}

// Create inserts one mirror event.
func (m *Memory) Create(_ context.Context, e *CalendarEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWrites {
		return apperr.Internal("simulated calendar write failure")
	}
	m.items[e.ID] = *e
	return nil
}

// ListForDay retrieves a technician's mirror events for one day.
func (m *Memory) ListForDay(_ context.Context, technicianID uuid.UUID, day time.Time) ([]CalendarEvent, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	events := make([]CalendarEvent, 0)
	for _, e := range m.items {
		if e.TechnicianID != technicianID {
			continue
		}
		if e.StartsAt.Year() != day.Year() || e.StartsAt.YearDay() != day.YearDay() {
			continue
		}
		events = append(events, e)
	}

	sort.Slice(events, func(i, j int) bool {
		return events[i].StartsAt.Before(events[j].StartsAt)
	})

	return events, nil
}

// DeleteByAppointmentIDs removes the mirror events for the given appointments.
func (m *Memory) DeleteByAppointmentIDs(_ context.Context, ids []uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	wanted := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		wanted[id] = struct{}{}
	}

	for id, e := range m.items {
		if e.AppointmentID == nil {
			continue
		}
		if _, ok := wanted[*e.AppointmentID]; ok {
			delete(m.items, id)
		}
	}

	return nil
}
