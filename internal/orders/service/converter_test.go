package service

import (
	"context"
	"testing"

	apptrepo "assistec_backend/internal/appointments/repository"
	appttransport "assistec_backend/internal/appointments/transport"
	"assistec_backend/internal/clients"
	"assistec_backend/internal/numbering"
	"assistec_backend/internal/orders/repository"
	"assistec_backend/internal/orders/transport"
	"assistec_backend/platform/apperr"
	"assistec_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubUpserter struct {
	id    *uuid.UUID
	err   error
	calls int
}

func (s *stubUpserter) CreateOrUpdate(_ context.Context, _ clients.Contact) (*uuid.UUID, error) {
	s.calls++
	return s.id, s.err
}

func newTestConverter(t *testing.T, upserter *stubUpserter) (*Converter, *repository.Memory, *apptrepo.Memory) {
	t.Helper()

	orders := repository.NewMemory()
	appointments := apptrepo.NewMemory()
	log := logger.New("test")
	numbers := numbering.NewGenerator(orders, numbering.KindServiceOrder, log)

	if upserter == nil {
		upserter = &stubUpserter{}
	}
	converter := NewConverter(orders, appointments, upserter, numbers, nil, log)

	return converter, orders, appointments
}

func seedConfirmed(appointments *apptrepo.Memory) apptrepo.Agendamento {
	a := apptrepo.Agendamento{
		ID:              uuid.New(),
		DisplayNumber:   "AG #001",
		ClientName:      "Maria Souza",
		ClientPhone:     "+5511999998888",
		Address:         "Rua das Flores, 100",
		Status:          appttransport.StatusConfirmado,
		ServiceKind:     appttransport.ServiceKindColeta,
		Equipments:      []string{"Geladeira"},
		Problems:        []string{"Não gela"},
		AttendanceTypes: []string{"coleta_diagnostico"},
	}
	appointments.Seed(a)
	return a
}

func TestCreateFromAgendamento(t *testing.T) {
	clientID := uuid.New()
	upserter := &stubUpserter{id: &clientID}
	converter, orders, appointments := newTestConverter(t, upserter)
	seed := seedConfirmed(appointments)

	result, err := converter.CreateFromAgendamento(context.Background(), seed.ID, transport.ConvertRequest{})
	require.NoError(t, err)
	require.Len(t, result.Orders, 1)

	order := result.Orders[0]
	assert.Equal(t, "OS #001", order.DisplayNumber)
	assert.Equal(t, "Geladeira", order.Equipment)
	assert.Equal(t, "Não gela", order.Problem)
	assert.Equal(t, transport.AttendanceColetaDiagnostico, order.AttendanceType)
	assert.Equal(t, &clientID, order.ClientID)
	require.NotNil(t, order.AppointmentID)
	assert.Equal(t, seed.ID, *order.AppointmentID)
	assert.Equal(t, 1, upserter.calls)
	assert.Equal(t, 1, orders.Len())

	// the source appointment is terminal and mutually consistent
	stored, err := appointments.GetByID(context.Background(), seed.ID)
	require.NoError(t, err)
	assert.Equal(t, appttransport.StatusConvertido, stored.Status)
	assert.True(t, stored.Processado)
	require.NotNil(t, stored.OrderID)
	assert.Equal(t, order.ID, *stored.OrderID)
}

func TestCreateFromAgendamento_SecondCallFails(t *testing.T) {
	converter, orders, appointments := newTestConverter(t, nil)
	seed := seedConfirmed(appointments)

	_, err := converter.CreateFromAgendamento(context.Background(), seed.ID, transport.ConvertRequest{})
	require.NoError(t, err)

	_, err = converter.CreateFromAgendamento(context.Background(), seed.ID, transport.ConvertRequest{})
	require.Error(t, err)
	assert.Equal(t, apperr.KindConflict, apperr.GetKind(err))
	assert.Equal(t, 1, orders.Len())
}

func TestCreateFromAgendamento_RejectsProcessed(t *testing.T) {
	converter, _, appointments := newTestConverter(t, nil)
	a := seedConfirmed(appointments)
	a.ID = uuid.New()
	a.Processado = true
	appointments.Seed(a)

	_, err := converter.CreateFromAgendamento(context.Background(), a.ID, transport.ConvertRequest{})
	require.Error(t, err)
	assert.Equal(t, apperr.KindConflict, apperr.GetKind(err))
}

func TestCreateFromAgendamento_NotFound(t *testing.T) {
	converter, _, _ := newTestConverter(t, nil)

	_, err := converter.CreateFromAgendamento(context.Background(), uuid.New(), transport.ConvertRequest{})
	require.Error(t, err)
	assert.Equal(t, apperr.KindNotFound, apperr.GetKind(err))
}

func TestCreateFromAgendamento_ClientUpsertFailureIsNonFatal(t *testing.T) {
	upserter := &stubUpserter{err: apperr.Internal("clients table unavailable")}
	converter, orders, appointments := newTestConverter(t, upserter)
	seed := seedConfirmed(appointments)

	result, err := converter.CreateFromAgendamento(context.Background(), seed.ID, transport.ConvertRequest{})
	require.NoError(t, err)
	assert.Nil(t, result.Orders[0].ClientID)
	assert.Equal(t, 1, orders.Len())
}

func TestCreateFromAgendamento_Overrides(t *testing.T) {
	converter, _, appointments := newTestConverter(t, nil)
	seed := seedConfirmed(appointments)

	domicilio := transport.AttendanceEmDomicilio
	cost := decimal.NewFromInt(120)
	result, err := converter.CreateFromAgendamento(context.Background(), seed.ID, transport.ConvertRequest{
		Equipment:      "Lava-louças",
		Problem:        "Vazamento",
		AttendanceType: &domicilio,
		EstimatedCost:  &cost,
	})
	require.NoError(t, err)

	order := result.Orders[0]
	assert.Equal(t, "Lava-louças", order.Equipment)
	assert.Equal(t, "Vazamento", order.Problem)
	assert.Equal(t, transport.AttendanceEmDomicilio, order.AttendanceType)
	require.True(t, order.EstimatedCost.Valid)
	assert.True(t, order.EstimatedCost.Decimal.Equal(cost))
}

func TestCreateMultipleFromAgendamento(t *testing.T) {
	converter, orders, appointments := newTestConverter(t, nil)
	seed := seedConfirmed(appointments)

	value := decimal.NewFromInt(200)
	result, err := converter.CreateMultipleFromAgendamento(context.Background(), seed.ID, transport.MultiConvertRequest{
		Groups: []transport.EquipmentGroup{
			{
				Equipments:     []string{"Geladeira", "Freezer"},
				Problems:       []string{"Não gela", "Barulho"},
				AttendanceType: transport.AttendanceColetaConserto,
				EstimatedValue: &value,
			},
			{
				Equipments:     []string{"Fogão"},
				Problems:       []string{"Não acende"},
				AttendanceType: transport.AttendanceEmDomicilio,
			},
		},
	})
	require.NoError(t, err)
	require.Len(t, result.Orders, 2)
	assert.Equal(t, 2, orders.Len())

	first, second := result.Orders[0], result.Orders[1]
	assert.Equal(t, "OS #001", first.DisplayNumber)
	assert.Equal(t, "OS #002", second.DisplayNumber)
	assert.Equal(t, "Múltiplos equipamentos (2)", first.Equipment)
	assert.Equal(t, "Fogão", second.Equipment)
	assert.Contains(t, first.Problem, "Não gela; Barulho")
	assert.Contains(t, first.Problem, "Fluxo de pagamento")
	assert.Contains(t, first.Problem, "R$ 100.00")
	assert.NotContains(t, second.Problem, "Fluxo de pagamento")

	// the appointment links back to the first order only
	stored, err := appointments.GetByID(context.Background(), seed.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.OrderID)
	assert.Equal(t, first.ID, *stored.OrderID)
	assert.True(t, stored.Processado)
}

func TestCreateMultipleFromAgendamento_FailedGroupLeavesNothing(t *testing.T) {
	converter, orders, appointments := newTestConverter(t, nil)
	seed := seedConfirmed(appointments)
	orders.FailCreateFor = "OS #002"

	_, err := converter.CreateMultipleFromAgendamento(context.Background(), seed.ID, transport.MultiConvertRequest{
		Groups: []transport.EquipmentGroup{
			{Equipments: []string{"Geladeira"}, Problems: []string{"Não gela"}, AttendanceType: transport.AttendanceColetaConserto},
			{Equipments: []string{"Fogão"}, Problems: []string{"Não acende"}, AttendanceType: transport.AttendanceEmDomicilio},
		},
	})
	require.Error(t, err)
	assert.Equal(t, 0, orders.Len())

	stored, getErr := appointments.GetByID(context.Background(), seed.ID)
	require.NoError(t, getErr)
	assert.False(t, stored.Processado)
	assert.Equal(t, appttransport.StatusConfirmado, stored.Status)
}
