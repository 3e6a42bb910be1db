package service

import (
	"testing"

	apptrepo "assistec_backend/internal/appointments/repository"
	appttransport "assistec_backend/internal/appointments/transport"
	"assistec_backend/internal/orders/transport"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSuggestEquipmentGrouping_OneGroupPerAttendanceType(t *testing.T) {
	agendamento := &apptrepo.Agendamento{
		Equipments:      []string{"Geladeira", "Fogão"},
		Problems:        []string{"Não gela", "Forno não acende"},
		AttendanceTypes: []string{"em_domicilio", "coleta_diagnostico"},
	}

	groups := SuggestEquipmentGrouping(agendamento)

	require.Len(t, groups, 2)
	assert.Equal(t, transport.AttendanceEmDomicilio, groups[0].AttendanceType)
	assert.Equal(t, []string{"Geladeira"}, groups[0].Equipments)
	assert.Equal(t, []int{0}, groups[0].EquipmentIndices)
	assert.Equal(t, transport.AttendanceColetaDiagnostico, groups[1].AttendanceType)
	assert.Equal(t, []string{"Fogão"}, groups[1].Equipments)
	assert.Equal(t, []string{"Forno não acende"}, groups[1].Problems)
}

func TestSuggestEquipmentGrouping_MergesSameType(t *testing.T) {
	agendamento := &apptrepo.Agendamento{
		Equipments:      []string{"Geladeira", "Freezer", "Fogão"},
		Problems:        []string{"Não gela", "Barulho", "Não acende"},
		AttendanceTypes: []string{"coleta_conserto", "coleta_conserto", "em_domicilio"},
	}

	groups := SuggestEquipmentGrouping(agendamento)

	require.Len(t, groups, 2)
	assert.Equal(t, transport.AttendanceColetaConserto, groups[0].AttendanceType)
	assert.Equal(t, []int{0, 1}, groups[0].EquipmentIndices)
	assert.NotEmpty(t, groups[0].Reasoning)
}

func TestSuggestEquipmentGrouping_NormalizesLegacyLabels(t *testing.T) {
	agendamento := &apptrepo.Agendamento{
		Equipments:      []string{"Micro-ondas"},
		Problems:        []string{"Não esquenta"},
		AttendanceTypes: []string{"in-home"},
	}

	groups := SuggestEquipmentGrouping(agendamento)

	require.Len(t, groups, 1)
	assert.Equal(t, transport.AttendanceEmDomicilio, groups[0].AttendanceType)
}

func TestSuggestEquipmentGrouping_LengthMismatchFallsBackToSingleGroup(t *testing.T) {
	agendamento := &apptrepo.Agendamento{
		ServiceKind:     appttransport.ServiceKindColeta,
		Equipments:      []string{"Geladeira", "Fogão"},
		Problems:        []string{"Não gela", "Não acende"},
		AttendanceTypes: []string{"em_domicilio"},
	}

	groups := SuggestEquipmentGrouping(agendamento)

	require.Len(t, groups, 1)
	assert.Equal(t, transport.AttendanceColetaDiagnostico, groups[0].AttendanceType)
	assert.Equal(t, []int{0, 1}, groups[0].EquipmentIndices)
}

func TestSuggestEquipmentGrouping_NoEquipment(t *testing.T) {
	assert.Nil(t, SuggestEquipmentGrouping(&apptrepo.Agendamento{}))
}

func TestNormalizeEquipmentList(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, NormalizeEquipmentList([]string{"a", "b"}))
	assert.Equal(t, []string{"a", "b"}, NormalizeEquipmentList(`["a","b"]`))
	assert.Equal(t, []string{"Geladeira"}, NormalizeEquipmentList("Geladeira"))
	assert.Nil(t, NormalizeEquipmentList(nil))
	assert.Nil(t, NormalizeEquipmentList("  "))
}

func TestHasMultipleEquipments(t *testing.T) {
	assert.True(t, HasMultipleEquipments([]string{"a", "b"}))
	assert.True(t, HasMultipleEquipments(`["a","b"]`))
	assert.False(t, HasMultipleEquipments("Geladeira"))
	assert.False(t, HasMultipleEquipments(nil))
}
