package csvexport

import (
	"bytes"
	"encoding/csv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pratyek/medical-amount-detection/internal/domain"
)

func TestWriteHeader(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	require.NoError(t, w.WriteHeader())
	w.Flush()
	require.NoError(t, w.Error())

	r := csv.NewReader(&buf)
	row, err := r.Read()
	require.NoError(t, err)

	assert.Len(t, row, 12)
	assert.Equal(t, "Request ID", row[0])
	assert.Equal(t, "Status", row[1])
	assert.Equal(t, "Recommended Action", row[11])
}

func TestWriteResponse_OneRowPerAmount(t *testing.T) {
	resp := &domain.DocumentResponse{
		RequestID: "req-123",
		Status:    domain.StatusOK,
		Currency:  domain.CurrencyUSD,
		Amounts: []domain.AmountDetail{
			{Type: domain.AmountTypeTotalBill, Value: 1500, Source: "Total: $1500", Confidence: 0.95},
			{Type: domain.AmountTypePaid, Value: 1000.50, Source: "Paid: $1000.50", Confidence: 0.9},
		},
		ProcessingDetails: domain.ProcessingDetails{
			TokensExtracted:    2,
			CorrectionsApplied: []string{"O->0", "l->1"},
			ProcessingTimeMs:   42,
		},
		GuardrailsResult: &domain.GuardrailResult{
			Passed:            true,
			RiskLevel:         domain.RiskLow,
			RecommendedAction: domain.ActionProceed,
		},
	}

	var buf bytes.Buffer
	w := NewWriter(&buf)
	require.NoError(t, w.WriteHeader())
	require.NoError(t, w.WriteResponse(resp))
	w.Flush()
	require.NoError(t, w.Error())

	r := csv.NewReader(&buf)
	rows, err := r.ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)

	first := rows[1]
	assert.Equal(t, "req-123", first[0])
	assert.Equal(t, "ok", first[1])
	assert.Equal(t, "USD", first[2])
	assert.Equal(t, "total_bill", first[3])
	assert.Equal(t, "1500.00", first[4])
	assert.Equal(t, "Total: $1500", first[5])
	assert.Equal(t, "0.95", first[6])
	assert.Equal(t, "O->0; l->1", first[7])
	assert.Equal(t, "2", first[8])
	assert.Equal(t, "42", first[9])
	assert.Equal(t, "LOW", first[10])
	assert.Equal(t, "PROCEED", first[11])

	second := rows[2]
	assert.Equal(t, "paid", second[3])
	assert.Equal(t, "1000.50", second[4])
}

func TestWriteResponse_NoAmounts(t *testing.T) {
	resp := &domain.DocumentResponse{
		RequestID: "req-empty",
		Status:    domain.StatusNoAmountsFound,
		Currency:  domain.CurrencyUSD,
		GuardrailsResult: &domain.GuardrailResult{
			RiskLevel:         domain.RiskHigh,
			RecommendedAction: domain.ActionProceedWithCaution,
		},
	}

	var buf bytes.Buffer
	w := NewWriter(&buf)
	require.NoError(t, w.WriteResponse(resp))
	w.Flush()
	require.NoError(t, w.Error())

	r := csv.NewReader(&buf)
	rows, err := r.ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 1)

	row := rows[0]
	assert.Equal(t, "req-empty", row[0])
	assert.Equal(t, "no_amounts_found", row[1])
	assert.Empty(t, row[3])
	assert.Empty(t, row[4])
	assert.Equal(t, "HIGH", row[10])
}

func TestWriteResponse_NilGuardrails(t *testing.T) {
	resp := &domain.DocumentResponse{
		RequestID: "req-nil",
		Status:    domain.StatusError,
		Currency:  domain.CurrencyUSD,
	}

	var buf bytes.Buffer
	w := NewWriter(&buf)
	require.NoError(t, w.WriteResponse(resp))
	w.Flush()
	require.NoError(t, w.Error())

	r := csv.NewReader(&buf)
	rows, err := r.ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Empty(t, rows[0][10])
	assert.Empty(t, rows[0][11])
}
