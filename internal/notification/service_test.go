package notification

import (
	"context"
	"testing"
	"time"

	"assistec_backend/internal/events"
	"assistec_backend/internal/notification/repository"
	"assistec_backend/platform/apperr"
	"assistec_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingSender struct{ err error }

func (s failingSender) Send(_ context.Context, _ *repository.OutboxEntry) error {
	return s.err
}

func newTestService(sender Sender) (*Service, *repository.Memory, *repository.OutboxMemory) {
	store := repository.NewMemory()
	outbox := repository.NewOutboxMemory()
	log := logger.New("test")
	if sender == nil {
		sender = LogSender{Log: log}
	}
	return NewService(store, outbox, sender, log), store, outbox
}

func TestNotifyConfirmation(t *testing.T) {
	svc, store, outbox := newTestService(nil)

	scheduledAt := time.Date(2026, 3, 10, 9, 0, 0, 0, time.Local)
	err := svc.NotifyConfirmation(context.Background(), uuid.New(), "Ana Costa", "Carlos Lima", scheduledAt)
	require.NoError(t, err)

	assert.Equal(t, 1, store.Len())

	due, err := outbox.ListDue(context.Background(), time.Now(), 10)
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, repository.OutboxPending, due[0].Status)
	assert.Contains(t, due[0].Body, "Ana Costa")
	assert.Contains(t, due[0].Body, "09:00")
}

func TestDispatch_Succeeds(t *testing.T) {
	svc, _, outbox := newTestService(nil)

	require.NoError(t, svc.NotifyConfirmation(context.Background(), uuid.New(), "Ana", "Carlos", time.Now()))
	due, _ := outbox.ListDue(context.Background(), time.Now(), 1)
	require.Len(t, due, 1)

	require.NoError(t, svc.Dispatch(context.Background(), due[0].ID))

	entry, err := outbox.GetByID(context.Background(), due[0].ID)
	require.NoError(t, err)
	assert.Equal(t, repository.OutboxSucceeded, entry.Status)
	assert.Equal(t, 1, entry.Attempts)
}

func TestDispatch_FailureStaysVisible(t *testing.T) {
	svc, _, outbox := newTestService(failingSender{err: apperr.Internal("channel down")})

	require.NoError(t, svc.NotifyConfirmation(context.Background(), uuid.New(), "Ana", "Carlos", time.Now()))
	due, _ := outbox.ListDue(context.Background(), time.Now(), 1)
	require.Len(t, due, 1)

	require.NoError(t, svc.Dispatch(context.Background(), due[0].ID))

	entry, err := outbox.GetByID(context.Background(), due[0].ID)
	require.NoError(t, err)
	assert.Equal(t, repository.OutboxFailed, entry.Status)
	require.NotNil(t, entry.LastError)
	assert.Contains(t, *entry.LastError, "channel down")
}

func TestDispatch_SecondClaimIsNoOp(t *testing.T) {
	svc, _, outbox := newTestService(nil)

	require.NoError(t, svc.NotifyConfirmation(context.Background(), uuid.New(), "Ana", "Carlos", time.Now()))
	due, _ := outbox.ListDue(context.Background(), time.Now(), 1)
	require.Len(t, due, 1)

	require.NoError(t, svc.Dispatch(context.Background(), due[0].ID))
	require.NoError(t, svc.Dispatch(context.Background(), due[0].ID))

	entry, err := outbox.GetByID(context.Background(), due[0].ID)
	require.NoError(t, err)
	assert.Equal(t, 1, entry.Attempts)
}

func TestDispatchDue(t *testing.T) {
	svc, _, _ := newTestService(nil)

	for i := 0; i < 3; i++ {
		require.NoError(t, svc.NotifyConfirmation(context.Background(), uuid.New(), "Ana", "Carlos", time.Now()))
	}

	processed, err := svc.DispatchDue(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, 3, processed)

	processed, err = svc.DispatchDue(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, 0, processed)
}

func TestEventHandlers(t *testing.T) {
	svc, store, outbox := newTestService(nil)
	bus := events.NewInMemoryBus(logger.New("test"))
	svc.RegisterEventHandlers(bus)

	err := bus.PublishSync(context.Background(), events.AppointmentCreated{
		BaseEvent:     events.NewBaseEvent(),
		AppointmentID: uuid.New(),
		DisplayNumber: "AG #007",
		ClientName:    "Ana Costa",
		Address:       "Rua A, 1",
		Urgent:        true,
	})
	require.NoError(t, err)

	items, err := store.ListRecent(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, repository.KindAppointmentCreated, items[0].Kind)
	assert.Contains(t, items[0].Title, "urgente")

	err = bus.PublishSync(context.Background(), events.AppointmentReminderDue{
		BaseEvent:   events.NewBaseEvent(),
		ClientName:  "Ana Costa",
		ClientPhone: "+5511999998888",
		ScheduledAt: time.Date(2026, 3, 11, 14, 0, 0, 0, time.Local),
	})
	require.NoError(t, err)

	due, err := outbox.ListDue(context.Background(), time.Now(), 10)
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, "whatsapp", due[0].Channel)
	assert.Equal(t, "+5511999998888", due[0].Recipient)
}
