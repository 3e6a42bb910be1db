package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"assistec_backend/internal/appointments/transport"
	"assistec_backend/internal/numbering"
	"assistec_backend/platform/apperr"

	"github.com/google/uuid"
)

// Memory is an in-memory appointment store keyed by id. It exists for tests
// and offline tooling; production code always runs against the Postgres
// repository. Both satisfy the consumer-side interfaces declared by the
// service packages.
type Memory struct {
	mu    sync.RWMutex
	items map[uuid.UUID]Agendamento
}

// NewMemory creates an empty in-memory appointment store.
func NewMemory() *Memory {
	return &Memory{items: make(map[uuid.UUID]Agendamento)}
}

// Seed inserts an appointment directly, bypassing lifecycle rules.
func (m *Memory) Seed(a Agendamento) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[a.ID] = a
}

// Create inserts a new appointment.
func (m *Memory) Create(_ context.Context, a *Agendamento) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[a.ID] = *a
	return nil
}

// GetByID retrieves an appointment by its ID.
func (m *Memory) GetByID(_ context.Context, id uuid.UUID) (*Agendamento, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.items[id]
	if !ok {
		return nil, apperr.NotFound(agendamentoNotFoundMsg)
	}
	copied := a
	return &copied, nil
}

// List retrieves appointments matching the filter, newest first.
func (m *Memory) List(_ context.Context, filter ListFilter) ([]Agendamento, int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	matched := make([]Agendamento, 0)
	for _, a := range m.items {
		if filter.Status != nil && a.Status != *filter.Status {
			continue
		}
		if filter.TechnicianID != nil && (a.TechnicianID == nil || *a.TechnicianID != *filter.TechnicianID) {
			continue
		}
		if filter.Date != nil {
			if a.ScheduledAt == nil || !sameDay(*a.ScheduledAt, *filter.Date) {
				continue
			}
		}
		matched = append(matched, a)
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

// ListForDay retrieves a technician's appointments on the given day.
func (m *Memory) ListForDay(_ context.Context, technicianID uuid.UUID, day time.Time) ([]Agendamento, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	items := make([]Agendamento, 0)
	for _, a := range m.items {
		if a.TechnicianID == nil || *a.TechnicianID != technicianID {
			continue
		}
		if a.ScheduledAt == nil || !sameDay(*a.ScheduledAt, day) {
			continue
		}
		items = append(items, a)
	}

	sort.Slice(items, func(i, j int) bool {
		return items[i].ScheduledAt.Before(*items[j].ScheduledAt)
	})

	return items, nil
}

// Update updates the mutable intake fields of an appointment.
func (m *Memory) Update(_ context.Context, a *Agendamento) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.items[a.ID]
	if !ok {
		return apperr.NotFound(agendamentoNotFoundMsg)
	}

	existing.ClientName = a.ClientName
	existing.ClientPhone = a.ClientPhone
	existing.ClientEmail = a.ClientEmail
	existing.Address = a.Address
	existing.Latitude = a.Latitude
	existing.Longitude = a.Longitude
	existing.ScheduledAt = a.ScheduledAt
	existing.Urgent = a.Urgent
	existing.LogisticsGroup = a.LogisticsGroup
	existing.Equipments = a.Equipments
	existing.Problems = a.Problems
	existing.UpdatedAt = time.Now()
	m.items[a.ID] = existing

	return nil
}

// UpdateStatus sets the appointment status.
func (m *Memory) UpdateStatus(_ context.Context, id uuid.UUID, status transport.Status) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	a, ok := m.items[id]
	if !ok {
		return apperr.NotFound(agendamentoNotFoundMsg)
	}
	a.Status = status
	a.UpdatedAt = time.Now()
	m.items[id] = a

	return nil
}

// Confirm assigns a technician and scheduled time.
func (m *Memory) Confirm(_ context.Context, id uuid.UUID, technicianID uuid.UUID, scheduledAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	a, ok := m.items[id]
	if !ok || a.Status.Terminal() {
		return apperr.NotFound(agendamentoNotFoundMsg)
	}

	a.Status = transport.StatusConfirmado
	a.TechnicianID = &technicianID
	a.ScheduledAt = &scheduledAt
	a.UpdatedAt = time.Now()
	m.items[id] = a

	return nil
}

// ResetToPending clears technician and date.
func (m *Memory) ResetToPending(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	a, ok := m.items[id]
	if !ok || a.Status.Terminal() {
		return apperr.NotFound(agendamentoNotFoundMsg)
	}

	a.Status = transport.StatusPendente
	a.TechnicianID = nil
	a.ScheduledAt = nil
	a.UpdatedAt = time.Now()
	m.items[id] = a

	return nil
}

// MarkConverted mirrors the Postgres compare-and-swap semantics: the first
// caller wins, later callers get apperr.Conflict.
func (m *Memory) MarkConverted(_ context.Context, id uuid.UUID, orderID uuid.UUID, technicianID *uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	a, ok := m.items[id]
	if !ok {
		return apperr.NotFound(agendamentoNotFoundMsg)
	}
	if a.Processado || a.Status.Terminal() {
		return apperr.Conflict("appointment already processed or converted")
	}

	now := time.Now()
	reason := transport.ProcessReasonConvertidoOS
	a.Status = transport.StatusConvertido
	a.Processado = true
	a.DataConversao = &now
	a.Motivo = &reason
	a.OrderID = &orderID
	if technicianID != nil {
		a.TechnicianID = technicianID
	}
	a.UpdatedAt = now
	m.items[id] = a

	return nil
}

// RevertConversion returns a converted appointment to confirmado.
func (m *Memory) RevertConversion(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	a, ok := m.items[id]
	if !ok {
		return apperr.NotFound(agendamentoNotFoundMsg)
	}
	if a.Status != transport.StatusConvertido {
		return apperr.Conflict("appointment is not converted")
	}

	a.Status = transport.StatusConfirmado
	a.Processado = false
	a.DataConversao = nil
	a.Motivo = nil
	a.OrderID = nil
	a.UpdatedAt = time.Now()
	m.items[id] = a

	return nil
}

// Delete removes an appointment.
func (m *Memory) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.items[id]; !ok {
		return apperr.NotFound(agendamentoNotFoundMsg)
	}
	delete(m.items, id)

	return nil
}

// ListWithoutCoordinates returns active appointments lacking coordinates.
func (m *Memory) ListWithoutCoordinates(_ context.Context, limit int) ([]Agendamento, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	items := make([]Agendamento, 0)
	for _, a := range m.items {
		if a.Latitude == nil && !a.Status.Terminal() {
			items = append(items, a)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}

	return items, nil
}

// UpdateCoordinates stores geocoded coordinates.
func (m *Memory) UpdateCoordinates(_ context.Context, id uuid.UUID, lat, lng float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	a, ok := m.items[id]
	if !ok {
		return apperr.NotFound(agendamentoNotFoundMsg)
	}
	a.Latitude = &lat
	a.Longitude = &lng
	m.items[id] = a

	return nil
}

// MaxDisplayNumber returns the highest AG display number.
func (m *Memory) MaxDisplayNumber(_ context.Context) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	best := 0
	bestText := ""
	for _, a := range m.items {
		if !strings.HasPrefix(a.DisplayNumber, "AG #") {
			continue
		}
		if value, ok := numbering.Extract(a.DisplayNumber, numbering.KindPreSchedule); ok && value > best {
			best = value
			bestText = a.DisplayNumber
		}
	}

	return bestText, nil
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
