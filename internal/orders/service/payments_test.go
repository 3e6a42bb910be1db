package service

import (
	"testing"

	"assistec_backend/internal/orders/transport"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculatePaymentBreakdown_ColetaConserto(t *testing.T) {
	b := CalculatePaymentBreakdown(transport.AttendanceColetaConserto, decimal.NewFromInt(200))

	assert.True(t, b.TotalValue.Equal(decimal.NewFromInt(200)))
	assert.True(t, b.FirstPayment.Equal(decimal.NewFromInt(100)))
	require.NotNil(t, b.SecondPayment)
	assert.True(t, b.SecondPayment.Equal(decimal.NewFromInt(100)))
}

func TestCalculatePaymentBreakdown_ColetaConsertoOddCents(t *testing.T) {
	b := CalculatePaymentBreakdown(transport.AttendanceColetaConserto, decimal.RequireFromString("99.99"))

	require.NotNil(t, b.SecondPayment)
	// No cent is lost: the two stages always add back to the total.
	assert.True(t, b.FirstPayment.Add(*b.SecondPayment).Equal(b.TotalValue))
}

func TestCalculatePaymentBreakdown_EmDomicilio(t *testing.T) {
	b := CalculatePaymentBreakdown(transport.AttendanceEmDomicilio, decimal.NewFromInt(150))

	assert.True(t, b.TotalValue.Equal(decimal.NewFromInt(150)))
	assert.True(t, b.FirstPayment.Equal(decimal.NewFromInt(150)))
	assert.Nil(t, b.SecondPayment)
}

func TestCalculatePaymentBreakdown_ColetaDiagnostico(t *testing.T) {
	b := CalculatePaymentBreakdown(transport.AttendanceColetaDiagnostico, decimal.NewFromInt(80))

	assert.True(t, b.TotalValue.Equal(decimal.NewFromInt(80)))
	assert.True(t, b.FirstPayment.Equal(decimal.NewFromInt(80)))
	require.NotNil(t, b.SecondPayment)
	assert.True(t, b.SecondPayment.IsZero())
}

func TestPaymentBreakdownSummary(t *testing.T) {
	b := CalculatePaymentBreakdown(transport.AttendanceColetaConserto, decimal.NewFromInt(200))
	summary := b.Summary()

	assert.Contains(t, summary, "50% na coleta")
	assert.Contains(t, summary, "R$ 100.00")
	assert.Contains(t, summary, "total R$ 200.00")

	single := CalculatePaymentBreakdown(transport.AttendanceEmDomicilio, decimal.NewFromInt(150))
	assert.NotContains(t, single.Summary(), "2ª parcela")
}
