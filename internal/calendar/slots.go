package calendar

import (
	"fmt"
	"strings"
	"time"

	apptrepo "assistec_backend/internal/appointments/repository"
	"assistec_backend/internal/appointments/transport"
	ordrepo "assistec_backend/internal/orders/repository"
	"assistec_backend/platform/config"

	"github.com/google/uuid"
)

// SlotStatus classifies one slot of a technician's day.
type SlotStatus string

const (
	SlotLivre      SlotStatus = "livre"
	SlotBloqueado  SlotStatus = "bloqueado"
	SlotConfirmado SlotStatus = "confirmado"
	SlotSugerido   SlotStatus = "sugerido"
)

// Workday is the slot-generation window.
type Workday struct {
	StartHour      int
	EndHour        int
	LunchStartHour int
	LunchEndHour   int
	SlotMinutes    int
}

// WorkdayFromConfig builds the window from application configuration.
func WorkdayFromConfig(cfg config.WorkdayConfig) Workday {
	return Workday{
		StartHour:      cfg.GetWorkStartHour(),
		EndHour:        cfg.GetWorkEndHour(),
		LunchStartHour: cfg.GetLunchStartHour(),
		LunchEndHour:   cfg.GetLunchEndHour(),
		SlotMinutes:    cfg.GetSlotMinutes(),
	}
}

// InWindow reports whether the hour lies inside working hours.
func (w Workday) InWindow(hour int) bool {
	return hour >= w.StartHour && hour < w.EndHour
}

// InLunch reports whether the hour lies inside the lunch window.
func (w Workday) InLunch(hour int) bool {
	return hour >= w.LunchStartHour && hour < w.LunchEndHour
}

// Occupant is one appointment mapped into a slot.
type Occupant struct {
	AppointmentID uuid.UUID        `json:"appointmentId"`
	DisplayNumber string           `json:"displayNumber"`
	ClientName    string           `json:"clientName"`
	Status        transport.Status `json:"status"`
	OrderID       *uuid.UUID       `json:"orderId,omitempty"`
}

// Slot is a fixed-width time bucket in a technician's day. It is a computed
// view, regenerated from the appointment and order snapshot on every read.
type Slot struct {
	Start        time.Time  `json:"start"`
	End          time.Time  `json:"end"`
	TechnicianID uuid.UUID  `json:"technicianId"`
	Status       SlotStatus `json:"status"`
	// Occupants lists every appointment whose truncated hour falls in this
	// slot. The first entry is the primary occupant that determined the
	// slot status.
	Occupants    []Occupant `json:"occupants,omitempty"`
	IsLunchTime  bool       `json:"isLunchTime"`
	IsSuggestion bool       `json:"isSuggestion"`
	Score        int        `json:"score,omitempty"`
	Reason       string     `json:"reason,omitempty"`
}

// TruncateToHour normalizes a timestamp to the start of its containing hour.
// An appointment stored at 08:37 belongs to the 08:00 slot.
func TruncateToHour(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), 0, 0, 0, t.Location())
}

// GenerateDaySlots tiles the technician's work window with fixed-width slots
// and maps the given appointments onto them. Pure: deterministic for
// identical inputs, no side effects. The returned slice always has exactly
// EndHour-StartHour entries.
func GenerateDaySlots(w Workday, day time.Time, technicianID uuid.UUID, appointments []apptrepo.Agendamento, orders []ordrepo.ServiceOrder) []Slot {
	orderIDs := make(map[uuid.UUID]struct{}, len(orders))
	for i := range orders {
		orderIDs[orders[i].ID] = struct{}{}
	}

	slots := make([]Slot, 0, w.EndHour-w.StartHour)
	for h := w.StartHour; h < w.EndHour; h++ {
		start := time.Date(day.Year(), day.Month(), day.Day(), h, 0, 0, 0, day.Location())
		slot := Slot{
			Start:        start,
			End:          start.Add(time.Hour),
			TechnicianID: technicianID,
			Status:       SlotLivre,
		}

		if w.InLunch(h) {
			// lunch always wins, even over a scheduled appointment
			slot.Status = SlotBloqueado
			slot.IsLunchTime = true
			slots = append(slots, slot)
			continue
		}

		for i := range appointments {
			a := &appointments[i]
			if a.ScheduledAt == nil {
				continue
			}
			at := TruncateToHour(*a.ScheduledAt)
			if !at.Equal(start) {
				continue
			}
			slot.Occupants = append(slot.Occupants, Occupant{
				AppointmentID: a.ID,
				DisplayNumber: a.DisplayNumber,
				ClientName:    a.ClientName,
				Status:        a.Status,
				OrderID:       a.OrderID,
			})
		}

		if len(slot.Occupants) > 0 {
			primary := appointmentByID(appointments, slot.Occupants[0].AppointmentID)
			classifySlot(&slot, primary, orderIDs)
		}

		slots = append(slots, slot)
	}

	return slots
}

func appointmentByID(appointments []apptrepo.Agendamento, id uuid.UUID) *apptrepo.Agendamento {
	for i := range appointments {
		if appointments[i].ID == id {
			return &appointments[i]
		}
	}
	return nil
}

func classifySlot(slot *Slot, primary *apptrepo.Agendamento, orderIDs map[uuid.UUID]struct{}) {
	if primary == nil {
		return
	}

	hasOrder := false
	if primary.OrderID != nil {
		_, hasOrder = orderIDs[*primary.OrderID]
	}

	switch {
	case hasOrder || primary.Status == transport.StatusConfirmado:
		slot.Status = SlotConfirmado
	case primary.Status == transport.StatusRoteirizado:
		slot.Status = SlotSugerido
		slot.IsSuggestion = true
		slot.Score, slot.Reason = suggestionScore(primary)
	}
}

// suggestionScore ranks a routed appointment: base 50, +30 when urgent, +20
// when a logistics group is set, capped at 100.
func suggestionScore(a *apptrepo.Agendamento) (int, string) {
	score := 50
	reasons := []string{"selecionado na roteirização"}

	if a.Urgent {
		score += 30
		reasons = append(reasons, "atendimento urgente")
	}
	if a.LogisticsGroup != nil && *a.LogisticsGroup != "" {
		score += 20
		reasons = append(reasons, fmt.Sprintf("grupo logístico %s", *a.LogisticsGroup))
	}
	if score > 100 {
		score = 100
	}

	return score, strings.Join(reasons, "; ")
}

// FindNextAvailable returns the first n free slots of the day, in order.
func FindNextAvailable(slots []Slot, n int) []Slot {
	free := make([]Slot, 0, n)
	for _, s := range slots {
		if s.Status != SlotLivre {
			continue
		}
		free = append(free, s)
		if len(free) == n {
			break
		}
	}
	return free
}

// SuggestAlternatives returns up to n free slots whose hours are not in the
// excluded set. Used to offer replacements for conflicting requests.
func SuggestAlternatives(slots []Slot, exclude map[int]bool, n int) []Slot {
	alternatives := make([]Slot, 0, n)
	for _, s := range slots {
		if s.Status != SlotLivre || exclude[s.Start.Hour()] {
			continue
		}
		alternatives = append(alternatives, s)
		if len(alternatives) == n {
			break
		}
	}
	return alternatives
}
