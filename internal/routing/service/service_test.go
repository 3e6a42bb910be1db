package service

import (
	"context"
	"testing"
	"time"

	apptrepo "assistec_backend/internal/appointments/repository"
	appttransport "assistec_backend/internal/appointments/transport"
	"assistec_backend/internal/calendar"
	calrepo "assistec_backend/internal/calendar/repository"
	"assistec_backend/internal/routing/transport"
	"assistec_backend/platform/apperr"
	"assistec_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testWorkday = calendar.Workday{
	StartHour:      8,
	EndHour:        18,
	LunchStartHour: 12,
	LunchEndHour:   13,
	SlotMinutes:    60,
}

type stubMirror struct {
	created []calrepo.CalendarEvent
	dropped []uuid.UUID
	fail    bool
}

func (m *stubMirror) MirrorConfirmation(_ context.Context, e *calrepo.CalendarEvent) bool {
	if m.fail {
		return false
	}
	m.created = append(m.created, *e)
	return true
}

func (m *stubMirror) DropMirrors(_ context.Context, ids []uuid.UUID) {
	m.dropped = append(m.dropped, ids...)
}

type stubDirectory struct{ name string }

func (d stubDirectory) ResolveName(_ context.Context, _ uuid.UUID) (string, error) {
	return d.name, nil
}

type stubNotifier struct {
	calls int
	err   error
}

func (n *stubNotifier) NotifyConfirmation(_ context.Context, _ uuid.UUID, _, _ string, _ time.Time) error {
	n.calls++
	return n.err
}

func newTestService(appointments AppointmentStore, mirror Mirror, notifier Notifier) *Service {
	return New(testWorkday, appointments, mirror, stubDirectory{name: "Carlos Lima"}, notifier, nil, logger.New("test"))
}

func seedPending(store *apptrepo.Memory, name string) apptrepo.Agendamento {
	a := apptrepo.Agendamento{
		ID:            uuid.New(),
		DisplayNumber: "AG #001",
		ClientName:    name,
		ClientPhone:   "+5511988887777",
		Address:       "Av. Central, 55",
		Status:        appttransport.StatusPendente,
		ServiceKind:   appttransport.ServiceKindEmDomicilio,
	}
	store.Seed(a)
	return a
}

func TestApply_ConfirmsAllItems(t *testing.T) {
	store := apptrepo.NewMemory()
	mirror := &stubMirror{}
	notifier := &stubNotifier{}
	svc := newTestService(store, mirror, notifier)

	first := seedPending(store, "Ana Costa")
	second := seedPending(store, "Bruno Dias")
	technicianID := uuid.New()

	resp, err := svc.Apply(context.Background(), transport.ApplyRouteRequest{
		TechnicianID: technicianID,
		Date:         "2026-03-10",
		Items: []transport.RouteItem{
			{AppointmentID: first.ID, Hour: 8, DurationMinutes: 60},
			{AppointmentID: second.ID, Hour: 9, DurationMinutes: 60},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, 2, resp.ConfirmedCount)
	assert.Equal(t, 0, resp.FailedCount)
	assert.Empty(t, resp.Errors)
	require.Len(t, resp.Slots, 2)
	assert.Equal(t, 8, resp.Slots[0].Start.Hour())
	assert.Equal(t, calendar.SlotConfirmado, resp.Slots[0].Status)

	stored, err := store.GetByID(context.Background(), first.ID)
	require.NoError(t, err)
	assert.Equal(t, appttransport.StatusConfirmado, stored.Status)
	require.NotNil(t, stored.TechnicianID)
	assert.Equal(t, technicianID, *stored.TechnicianID)
	require.NotNil(t, stored.ScheduledAt)
	assert.Equal(t, 8, stored.ScheduledAt.Hour())

	require.Len(t, mirror.created, 2)
	assert.Contains(t, mirror.created[0].Title, "Ana Costa")
	assert.Contains(t, mirror.created[0].Description, "Carlos Lima")
	assert.Equal(t, 2, notifier.calls)
}

func TestApply_RejectsMisalignedBatchBeforeMutation(t *testing.T) {
	store := apptrepo.NewMemory()
	svc := newTestService(store, &stubMirror{}, nil)

	a := seedPending(store, "Ana Costa")

	_, err := svc.Apply(context.Background(), transport.ApplyRouteRequest{
		TechnicianID: uuid.New(),
		Date:         "2026-03-10",
		Items: []transport.RouteItem{
			{AppointmentID: a.ID, Hour: 8, DurationMinutes: 60},
			{AppointmentID: a.ID, Hour: 8, Minute: 30, DurationMinutes: 60},
		},
	})
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.GetKind(err))

	// a single violation rejects the whole batch: the valid 08:00 item
	// must not have been confirmed
	stored, getErr := store.GetByID(context.Background(), a.ID)
	require.NoError(t, getErr)
	assert.Equal(t, appttransport.StatusPendente, stored.Status)
}

func TestValidateItems_CollectsAllViolations(t *testing.T) {
	svc := newTestService(apptrepo.NewMemory(), &stubMirror{}, nil)

	violations := svc.ValidateItems([]transport.RouteItem{
		{Hour: 6, DurationMinutes: 60},               // outside the window
		{Hour: 12, DurationMinutes: 60},              // lunch
		{Hour: 9, Minute: 30, DurationMinutes: 60},   // misaligned
		{Hour: 10, DurationMinutes: 90},              // too long
		{Hour: 6, Minute: 30, DurationMinutes: 60},   // two violations at once
	})

	require.Len(t, violations, 6)
	assert.Contains(t, violations[0], calendar.ReasonOutsideWorkingHours)
	assert.Contains(t, violations[1], calendar.ReasonLunchBreak)
	assert.Contains(t, violations[2], "on the hour")
	assert.Contains(t, violations[3], "exceeds")
}

func TestApply_PartialFailureKeepsEarlierSuccesses(t *testing.T) {
	store := apptrepo.NewMemory()
	svc := newTestService(store, &stubMirror{}, nil)

	first := seedPending(store, "Ana Costa")

	// the second appointment is already converted, so its confirm fails
	broken := seedPending(store, "Bruno Dias")
	require.NoError(t, store.MarkConverted(context.Background(), broken.ID, uuid.New(), nil))

	third := seedPending(store, "Carla Souza")

	resp, err := svc.Apply(context.Background(), transport.ApplyRouteRequest{
		TechnicianID: uuid.New(),
		Date:         "2026-03-10",
		Items: []transport.RouteItem{
			{AppointmentID: first.ID, Hour: 8, DurationMinutes: 60},
			{AppointmentID: broken.ID, Hour: 9, DurationMinutes: 60},
			{AppointmentID: third.ID, Hour: 10, DurationMinutes: 60},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, 2, resp.ConfirmedCount)
	assert.Equal(t, 1, resp.FailedCount)
	require.Len(t, resp.Errors, 1)
	assert.Contains(t, resp.Errors[0], "Bruno Dias")

	// the failure did not roll back the first confirmation
	stored, getErr := store.GetByID(context.Background(), first.ID)
	require.NoError(t, getErr)
	assert.Equal(t, appttransport.StatusConfirmado, stored.Status)
}

func TestApply_NotifierFailureIsNonFatal(t *testing.T) {
	store := apptrepo.NewMemory()
	notifier := &stubNotifier{err: apperr.Internal("outbox unavailable")}
	svc := newTestService(store, &stubMirror{}, notifier)

	a := seedPending(store, "Ana Costa")

	resp, err := svc.Apply(context.Background(), transport.ApplyRouteRequest{
		TechnicianID: uuid.New(),
		Date:         "2026-03-10",
		Items:        []transport.RouteItem{{AppointmentID: a.ID, Hour: 8, DurationMinutes: 60}},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, resp.ConfirmedCount)
	assert.Equal(t, 0, resp.FailedCount)
}

func TestCancel_ResetsAndDropsMirrors(t *testing.T) {
	store := apptrepo.NewMemory()
	mirror := &stubMirror{}
	svc := newTestService(store, mirror, nil)

	a := seedPending(store, "Ana Costa")
	require.NoError(t, store.Confirm(context.Background(), a.ID, uuid.New(), time.Now()))

	resp, err := svc.Cancel(context.Background(), transport.CancelRouteRequest{
		AppointmentIDs: []uuid.UUID{a.ID, uuid.New()},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, resp.ConfirmedCount)
	assert.Equal(t, 1, resp.FailedCount)
	assert.Equal(t, []uuid.UUID{a.ID}, mirror.dropped)

	stored, getErr := store.GetByID(context.Background(), a.ID)
	require.NoError(t, getErr)
	assert.Equal(t, appttransport.StatusPendente, stored.Status)
	assert.Nil(t, stored.TechnicianID)
	assert.Nil(t, stored.ScheduledAt)
}
