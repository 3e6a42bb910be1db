package service

import (
	"context"
	"testing"
	"time"

	"assistec_backend/internal/appointments/repository"
	"assistec_backend/internal/appointments/transport"
	"assistec_backend/internal/numbering"
	"assistec_backend/platform/apperr"
	"assistec_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) (*Service, *repository.Memory) {
	t.Helper()

	store := repository.NewMemory()
	log := logger.New("test")
	numbers := numbering.NewGenerator(store, numbering.KindPreSchedule, log)

	return New(store, numbers, nil, log), store
}

func intakeRequest() transport.CreateAgendamentoRequest {
	return transport.CreateAgendamentoRequest{
		ClientName:  "João Pereira",
		ClientPhone: "11 98765-4321",
		Address:     "Av. Paulista, 1000",
		ServiceKind: transport.ServiceKindEmDomicilio,
		Equipments:  []string{"Máquina de lavar"},
		Problems:    []string{"Não centrifuga"},
	}
}

func TestCreateAssignsSequentialDisplayNumbers(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	first, err := svc.Create(ctx, intakeRequest())
	require.NoError(t, err)
	second, err := svc.Create(ctx, intakeRequest())
	require.NoError(t, err)

	assert.Equal(t, "AG #001", first.DisplayNumber)
	assert.Equal(t, "AG #002", second.DisplayNumber)
	assert.Equal(t, transport.StatusPendente, first.Status)
}

func TestCreateNormalizesClientPhone(t *testing.T) {
	svc, _ := newTestService(t)

	resp, err := svc.Create(context.Background(), intakeRequest())
	require.NoError(t, err)

	assert.Equal(t, "+5511987654321", resp.ClientPhone)
}

func TestCreateRejectsMismatchedAttendanceTypes(t *testing.T) {
	svc, _ := newTestService(t)

	req := intakeRequest()
	req.Equipments = []string{"Geladeira", "Fogão"}
	req.Problems = []string{"Não gela", "Não acende"}
	req.AttendanceTypes = []string{"coleta_diagnostico"}

	_, err := svc.Create(context.Background(), req)
	require.Error(t, err)

	var domainErr *apperr.Error
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, apperr.KindValidation, domainErr.Kind)
}

func TestUpdateStatusAllowsForwardTransition(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	resp, err := svc.Create(ctx, intakeRequest())
	require.NoError(t, err)

	require.NoError(t, svc.UpdateStatus(ctx, resp.ID, transport.StatusRoteirizado))

	stored, err := store.GetByID(ctx, resp.ID)
	require.NoError(t, err)
	assert.Equal(t, transport.StatusRoteirizado, stored.Status)
}

func TestUpdateStatusRejectsTerminalStates(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	a := repository.Agendamento{
		ID:            uuid.New(),
		DisplayNumber: "AG #009",
		ClientName:    "Ana Lima",
		Status:        transport.StatusCancelado,
	}
	store.Seed(a)

	err := svc.UpdateStatus(ctx, a.ID, transport.StatusPendente)
	require.Error(t, err)

	var domainErr *apperr.Error
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, apperr.KindConflict, domainErr.Kind)
}

func TestUpdateStatusRejectsConvertido(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	resp, err := svc.Create(ctx, intakeRequest())
	require.NoError(t, err)

	err = svc.UpdateStatus(ctx, resp.ID, transport.StatusConvertido)
	require.Error(t, err)

	var domainErr *apperr.Error
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, apperr.KindBadRequest, domainErr.Kind)
}

func TestUpdateClearsStaleCoordinatesOnNewAddress(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	lat, lng := -23.561, -46.655
	req := intakeRequest()
	req.Latitude = &lat
	req.Longitude = &lng
	resp, err := svc.Create(ctx, req)
	require.NoError(t, err)

	newAddress := "Rua Augusta, 500"
	_, err = svc.Update(ctx, resp.ID, transport.UpdateAgendamentoRequest{Address: &newAddress})
	require.NoError(t, err)

	stored, err := store.GetByID(ctx, resp.ID)
	require.NoError(t, err)
	assert.Equal(t, newAddress, stored.Address)
	assert.Nil(t, stored.Latitude)
	assert.Nil(t, stored.Longitude)
}

func TestDeleteRefusesConvertedAppointments(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	orderID := uuid.New()
	now := time.Now()
	a := repository.Agendamento{
		ID:            uuid.New(),
		DisplayNumber: "AG #010",
		ClientName:    "Carlos Dias",
		Status:        transport.StatusConvertido,
		Processado:    true,
		OrderID:       &orderID,
		DataConversao: &now,
	}
	store.Seed(a)

	err := svc.Delete(ctx, a.ID)
	require.Error(t, err)

	var domainErr *apperr.Error
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, apperr.KindConflict, domainErr.Kind)

	_, err = store.GetByID(ctx, a.ID)
	assert.NoError(t, err)
}

func TestRevertConversionRestoresConfirmado(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	orderID := uuid.New()
	now := time.Now()
	reason := transport.ProcessReasonConvertidoOS
	a := repository.Agendamento{
		ID:            uuid.New(),
		DisplayNumber: "AG #011",
		ClientName:    "Paula Reis",
		Status:        transport.StatusConvertido,
		Processado:    true,
		OrderID:       &orderID,
		DataConversao: &now,
		Motivo:        &reason,
	}
	store.Seed(a)

	require.NoError(t, svc.RevertConversion(ctx, a.ID))

	stored, err := store.GetByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, transport.StatusConfirmado, stored.Status)
	assert.False(t, stored.Processado)
	assert.Nil(t, stored.OrderID)
	assert.Nil(t, stored.DataConversao)
	assert.Nil(t, stored.Motivo)
}
