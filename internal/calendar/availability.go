package calendar

import (
	"fmt"
	"time"

	ordrepo "assistec_backend/internal/orders/repository"
)

// Conflict reasons reported by the availability validator, checked in order.
const (
	ReasonOutsideWorkingHours = "outside working hours"
	ReasonLunchBreak          = "lunch break"
	ReasonExistingAppointment = "existing appointment"
)

// HourRequest is one requested slot to validate.
type HourRequest struct {
	Hour            int `json:"hour" validate:"min=0,max=23"`
	DurationMinutes int `json:"durationMinutes" validate:"min=1"`
}

// Conflict describes why a requested hour was rejected.
type Conflict struct {
	Hour   int    `json:"hour"`
	Reason string `json:"reason"`
}

func (c Conflict) String() string {
	return fmt.Sprintf("%02d:00 - %s", c.Hour, c.Reason)
}

// AvailabilityResult aggregates every requested hour's outcome. Checks never
// short-circuit: the caller sees all conflicts at once.
type AvailabilityResult struct {
	Available        bool       `json:"available"`
	AvailableHours   []int      `json:"availableHours"`
	ConflictingHours []int      `json:"conflictingHours"`
	Conflicts        []Conflict `json:"conflicts"`
}

// CheckWindow validates an hour against the work window only (rules 1 and
// 2). Returns the empty string when the hour is acceptable.
func CheckWindow(w Workday, hour int) string {
	if !w.InWindow(hour) {
		return ReasonOutsideWorkingHours
	}
	if w.InLunch(hour) {
		return ReasonLunchBreak
	}
	return ""
}

// BusyHours maps each hour occupied by an active service order for the day.
func BusyHours(orders []ordrepo.ServiceOrder, day time.Time) map[int]bool {
	busy := make(map[int]bool)
	for i := range orders {
		at := orders[i].ScheduledAt
		if at == nil {
			continue
		}
		if at.Year() != day.Year() || at.YearDay() != day.YearDay() {
			continue
		}
		busy[at.Hour()] = true
	}
	return busy
}

// CheckHours validates every request in order: working hours, then lunch,
// then collision with an existing order at the same hour.
func CheckHours(w Workday, requests []HourRequest, busy map[int]bool) AvailabilityResult {
	result := AvailabilityResult{
		Available:        true,
		AvailableHours:   make([]int, 0, len(requests)),
		ConflictingHours: make([]int, 0),
		Conflicts:        make([]Conflict, 0),
	}

	for _, req := range requests {
		reason := CheckWindow(w, req.Hour)
		if reason == "" && busy[req.Hour] {
			reason = ReasonExistingAppointment
		}
		if reason != "" {
			result.Available = false
			result.ConflictingHours = append(result.ConflictingHours, req.Hour)
			result.Conflicts = append(result.Conflicts, Conflict{Hour: req.Hour, Reason: reason})
			continue
		}
		result.AvailableHours = append(result.AvailableHours, req.Hour)
	}

	return result
}
