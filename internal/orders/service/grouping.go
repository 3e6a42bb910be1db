package service

import (
	"encoding/json"
	"fmt"
	"strings"

	apptrepo "assistec_backend/internal/appointments/repository"
	"assistec_backend/internal/orders/transport"
)

// NormalizeEquipmentList coerces a raw equipment field into a list. Intake
// records arrive with the field as a native list, a JSON-encoded string, or a
// single scalar, depending on the channel that created them.
func NormalizeEquipmentList(raw interface{}) []string {
	switch v := raw.(type) {
	case nil:
		return nil
	case []string:
		return v
	case []interface{}:
		items := make([]string, 0, len(v))
		for _, item := range v {
			items = append(items, fmt.Sprint(item))
		}
		return items
	case string:
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			return nil
		}
		if strings.HasPrefix(trimmed, "[") {
			var decoded []string
			if err := json.Unmarshal([]byte(trimmed), &decoded); err == nil {
				return decoded
			}
		}
		return []string{trimmed}
	default:
		return []string{fmt.Sprint(v)}
	}
}

// HasMultipleEquipments reports whether a raw equipment field holds more
// than one item after normalization.
func HasMultipleEquipments(raw interface{}) bool {
	return len(NormalizeEquipmentList(raw)) > 1
}

// SuggestEquipmentGrouping groups an appointment's equipment indices by
// normalized attendance type, one group per distinct type in first-appearance
// order. When the attendance-type list does not line up with the equipment
// list, everything falls into a single group derived from the appointment's
// overall service kind.
func SuggestEquipmentGrouping(agendamento *apptrepo.Agendamento) []transport.GroupSuggestion {
	equipments := agendamento.Equipments
	if len(equipments) == 0 {
		return nil
	}

	if len(agendamento.AttendanceTypes) != len(equipments) {
		fallback := transport.NormalizeAttendanceType(string(agendamento.ServiceKind))
		group := transport.GroupSuggestion{
			AttendanceType: fallback,
			Reasoning: fmt.Sprintf(
				"Tipos de atendimento incompletos; grupo único com %d equipamento(s) pelo tipo de serviço %s",
				len(equipments), fallback),
		}
		for i, eq := range equipments {
			group.EquipmentIndices = append(group.EquipmentIndices, i)
			group.Equipments = append(group.Equipments, eq)
			group.Problems = append(group.Problems, problemAt(agendamento.Problems, i))
		}
		return []transport.GroupSuggestion{group}
	}

	order := make([]transport.AttendanceType, 0)
	byType := make(map[transport.AttendanceType]*transport.GroupSuggestion)
	for i, eq := range equipments {
		at := transport.NormalizeAttendanceType(agendamento.AttendanceTypes[i])
		group, ok := byType[at]
		if !ok {
			group = &transport.GroupSuggestion{AttendanceType: at}
			byType[at] = group
			order = append(order, at)
		}
		group.EquipmentIndices = append(group.EquipmentIndices, i)
		group.Equipments = append(group.Equipments, eq)
		group.Problems = append(group.Problems, problemAt(agendamento.Problems, i))
	}

	groups := make([]transport.GroupSuggestion, 0, len(order))
	for _, at := range order {
		group := byType[at]
		group.Reasoning = fmt.Sprintf("%d equipamento(s) com atendimento %s", len(group.Equipments), at)
		groups = append(groups, *group)
	}

	return groups
}

func problemAt(problems []string, i int) string {
	if i < len(problems) {
		return problems[i]
	}
	return ""
}
