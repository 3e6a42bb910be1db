package service

import (
	"fmt"

	"assistec_backend/internal/orders/transport"

	"github.com/shopspring/decimal"
)

// PaymentBreakdown is the informational payment split for an order. It does
// not create ledger entries or enforce collection: the summary text appended
// to the order description is the only persisted record.
type PaymentBreakdown struct {
	TotalValue    decimal.Decimal
	FirstPayment  decimal.Decimal
	SecondPayment *decimal.Decimal
	Flow          string
}

// CalculatePaymentBreakdown computes the split for an attendance type.
//
//   - coleta_diagnostico: full estimated value at pickup, second stage set to
//     zero until the workshop quote exists.
//   - coleta_conserto: 50% at pickup, remainder at delivery.
//   - em_domicilio (default): single stage, 100% on completion.
func CalculatePaymentBreakdown(attendanceType transport.AttendanceType, estimatedValue decimal.Decimal) PaymentBreakdown {
	switch attendanceType {
	case transport.AttendanceColetaDiagnostico:
		second := decimal.Zero
		return PaymentBreakdown{
			TotalValue:    estimatedValue,
			FirstPayment:  estimatedValue,
			SecondPayment: &second,
			Flow:          "2 etapas: valor estimado na coleta + orçamento na entrega",
		}
	case transport.AttendanceColetaConserto:
		first := estimatedValue.Div(decimal.NewFromInt(2)).Round(2)
		second := estimatedValue.Sub(first)
		return PaymentBreakdown{
			TotalValue:    estimatedValue,
			FirstPayment:  first,
			SecondPayment: &second,
			Flow:          "2 etapas: 50% na coleta + 50% na entrega",
		}
	default:
		return PaymentBreakdown{
			TotalValue:   estimatedValue,
			FirstPayment: estimatedValue,
			Flow:         "Etapa única: 100% na conclusão do serviço",
		}
	}
}

// Summary renders the breakdown as the human-readable text appended to the
// order description.
func (b PaymentBreakdown) Summary() string {
	text := fmt.Sprintf("Fluxo de pagamento: %s. 1ª parcela: R$ %s", b.Flow, b.FirstPayment.StringFixed(2))
	if b.SecondPayment != nil {
		text += fmt.Sprintf(", 2ª parcela: R$ %s", b.SecondPayment.StringFixed(2))
	}
	return text + fmt.Sprintf(" (total R$ %s)", b.TotalValue.StringFixed(2))
}
