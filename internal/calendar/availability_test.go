package calendar

import (
	"testing"
	"time"

	ordrepo "assistec_backend/internal/orders/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckWindow(t *testing.T) {
	assert.Equal(t, ReasonOutsideWorkingHours, CheckWindow(testWorkday, 7))
	assert.Equal(t, ReasonOutsideWorkingHours, CheckWindow(testWorkday, 18))
	assert.Equal(t, ReasonLunchBreak, CheckWindow(testWorkday, 12))
	assert.Equal(t, "", CheckWindow(testWorkday, 8))
	assert.Equal(t, "", CheckWindow(testWorkday, 17))
}

func TestCheckHours_ReportsAllConflicts(t *testing.T) {
	requests := []HourRequest{
		{Hour: 7, DurationMinutes: 60},
		{Hour: 9, DurationMinutes: 60},
		{Hour: 12, DurationMinutes: 60},
		{Hour: 14, DurationMinutes: 60},
	}
	busy := map[int]bool{14: true}

	result := CheckHours(testWorkday, requests, busy)

	assert.False(t, result.Available)
	assert.Equal(t, []int{9}, result.AvailableHours)
	assert.Equal(t, []int{7, 12, 14}, result.ConflictingHours)
	require.Len(t, result.Conflicts, 3)
	assert.Equal(t, ReasonOutsideWorkingHours, result.Conflicts[0].Reason)
	assert.Equal(t, ReasonLunchBreak, result.Conflicts[1].Reason)
	assert.Equal(t, ReasonExistingAppointment, result.Conflicts[2].Reason)
}

func TestCheckHours_AllAvailable(t *testing.T) {
	result := CheckHours(testWorkday, []HourRequest{{Hour: 8, DurationMinutes: 60}, {Hour: 10, DurationMinutes: 60}}, nil)

	assert.True(t, result.Available)
	assert.Equal(t, []int{8, 10}, result.AvailableHours)
	assert.Empty(t, result.Conflicts)
}

func TestCheckHours_WindowBeatsExistingOrder(t *testing.T) {
	// an order parked at lunch still reports the lunch reason first
	result := CheckHours(testWorkday, []HourRequest{{Hour: 12, DurationMinutes: 60}}, map[int]bool{12: true})

	require.Len(t, result.Conflicts, 1)
	assert.Equal(t, ReasonLunchBreak, result.Conflicts[0].Reason)
}

func TestBusyHours(t *testing.T) {
	day := testDay()
	sameDay := time.Date(day.Year(), day.Month(), day.Day(), 10, 30, 0, 0, day.Location())
	otherDay := sameDay.AddDate(0, 0, 1)

	orders := []ordrepo.ServiceOrder{
		{ScheduledAt: &sameDay},
		{ScheduledAt: &otherDay},
		{ScheduledAt: nil},
	}

	busy := BusyHours(orders, day)

	assert.True(t, busy[10])
	assert.Len(t, busy, 1)
}
