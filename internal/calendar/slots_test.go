package calendar

import (
	"testing"
	"time"

	apptrepo "assistec_backend/internal/appointments/repository"
	"assistec_backend/internal/appointments/transport"
	ordrepo "assistec_backend/internal/orders/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testWorkday = Workday{
	StartHour:      8,
	EndHour:        18,
	LunchStartHour: 12,
	LunchEndHour:   13,
	SlotMinutes:    60,
}

func testDay() time.Time {
	return time.Date(2026, 3, 10, 0, 0, 0, 0, time.Local)
}

func appointmentAt(day time.Time, hour, minute int, status transport.Status) apptrepo.Agendamento {
	at := time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, day.Location())
	return apptrepo.Agendamento{
		ID:          uuid.New(),
		ClientName:  "Cliente Teste",
		Status:      status,
		ScheduledAt: &at,
	}
}

func TestGenerateDaySlots_TilesTheWindow(t *testing.T) {
	slots := GenerateDaySlots(testWorkday, testDay(), uuid.New(), nil, nil)

	require.Len(t, slots, 10)
	for i, s := range slots {
		assert.Equal(t, testWorkday.StartHour+i, s.Start.Hour())
		assert.Equal(t, s.Start.Add(time.Hour), s.End)
		if i > 0 {
			assert.Equal(t, slots[i-1].End, s.Start, "slots must be contiguous")
		}
	}
}

func TestGenerateDaySlots_LunchAlwaysBlocked(t *testing.T) {
	day := testDay()
	lunch := appointmentAt(day, 12, 0, transport.StatusConfirmado)

	slots := GenerateDaySlots(testWorkday, day, uuid.New(), []apptrepo.Agendamento{lunch}, nil)

	slot := slots[12-testWorkday.StartHour]
	assert.Equal(t, SlotBloqueado, slot.Status)
	assert.True(t, slot.IsLunchTime)
	assert.Empty(t, slot.Occupants)
}

func TestGenerateDaySlots_TruncatesToHour(t *testing.T) {
	day := testDay()
	a := appointmentAt(day, 8, 37, transport.StatusConfirmado)

	slots := GenerateDaySlots(testWorkday, day, uuid.New(), []apptrepo.Agendamento{a}, nil)

	require.Len(t, slots[0].Occupants, 1)
	assert.Equal(t, a.ID, slots[0].Occupants[0].AppointmentID)
	assert.Equal(t, SlotConfirmado, slots[0].Status)
	assert.Empty(t, slots[1].Occupants, "08:37 must never land in the 09:00 slot")
}

func TestGenerateDaySlots_SuggestedWithScore(t *testing.T) {
	day := testDay()
	group := "B"

	urgent := appointmentAt(day, 9, 0, transport.StatusRoteirizado)
	urgent.Urgent = true
	urgent.LogisticsGroup = &group

	plain := appointmentAt(day, 10, 0, transport.StatusRoteirizado)

	slots := GenerateDaySlots(testWorkday, day, uuid.New(), []apptrepo.Agendamento{urgent, plain}, nil)

	nine := slots[1]
	assert.Equal(t, SlotSugerido, nine.Status)
	assert.True(t, nine.IsSuggestion)
	assert.Equal(t, 100, nine.Score, "50+30+20 capped at 100")
	assert.Contains(t, nine.Reason, "urgente")
	assert.Contains(t, nine.Reason, "grupo logístico B")

	ten := slots[2]
	assert.Equal(t, 50, ten.Score)
}

func TestGenerateDaySlots_LinkedOrderConfirms(t *testing.T) {
	day := testDay()
	order := ordrepo.ServiceOrder{ID: uuid.New()}

	a := appointmentAt(day, 14, 0, transport.StatusRoteirizado)
	a.OrderID = &order.ID

	slots := GenerateDaySlots(testWorkday, day, uuid.New(), []apptrepo.Agendamento{a}, []ordrepo.ServiceOrder{order})

	assert.Equal(t, SlotConfirmado, slots[14-testWorkday.StartHour].Status)
}

func TestGenerateDaySlots_MultipleOccupantsSameHour(t *testing.T) {
	day := testDay()
	first := appointmentAt(day, 15, 0, transport.StatusConfirmado)
	second := appointmentAt(day, 15, 30, transport.StatusRoteirizado)

	slots := GenerateDaySlots(testWorkday, day, uuid.New(), []apptrepo.Agendamento{first, second}, nil)

	slot := slots[15-testWorkday.StartHour]
	require.Len(t, slot.Occupants, 2)
	assert.Equal(t, first.ID, slot.Occupants[0].AppointmentID, "first match by input order is primary")
	assert.Equal(t, SlotConfirmado, slot.Status, "primary occupant determines the status")
}

func TestFindNextAvailable(t *testing.T) {
	day := testDay()
	busy := appointmentAt(day, 8, 0, transport.StatusConfirmado)

	slots := GenerateDaySlots(testWorkday, day, uuid.New(), []apptrepo.Agendamento{busy}, nil)
	free := FindNextAvailable(slots, 2)

	require.Len(t, free, 2)
	assert.Equal(t, 9, free[0].Start.Hour())
	assert.Equal(t, 10, free[1].Start.Hour())
}

func TestSuggestAlternatives_ExcludesConflictingHours(t *testing.T) {
	slots := GenerateDaySlots(testWorkday, testDay(), uuid.New(), nil, nil)

	alternatives := SuggestAlternatives(slots, map[int]bool{8: true, 9: true}, 3)

	require.Len(t, alternatives, 3)
	assert.Equal(t, 10, alternatives[0].Start.Hour())
	assert.Equal(t, 11, alternatives[1].Start.Hour())
	assert.Equal(t, 13, alternatives[2].Start.Hour(), "lunch slot is skipped")
}
