package csvexport

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"

	"github.com/pratyek/medical-amount-detection/internal/domain"
)

// UTF-8 BOM bytes for Excel compatibility on Windows.
var BOM = []byte{0xEF, 0xBB, 0xBF}

// columns defines the CSV header row, one row per classified amount.
var columns = []string{
	"Request ID",
	"Status",
	"Currency",
	"Amount Type",
	"Value",
	"Source",
	"Confidence",
	"Corrections Applied",
	"Tokens Extracted",
	"Processing Time (ms)",
	"Risk Level",
	"Recommended Action",
}

// Writer wraps csv.Writer for exporting detection results as CSV.
type Writer struct {
	csv *csv.Writer
}

// NewWriter creates a Writer that writes CSV to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{csv: csv.NewWriter(w)}
}

// WriteHeader writes the header row.
func (w *Writer) WriteHeader() error {
	return w.csv.Write(columns)
}

// WriteResponse writes one row per amount in the response. A response with
// no amounts still produces a single row carrying the request metadata.
func (w *Writer) WriteResponse(resp *domain.DocumentResponse) error {
	if len(resp.Amounts) == 0 {
		return w.csv.Write(responseRow(resp, nil))
	}
	for i := range resp.Amounts {
		if err := w.csv.Write(responseRow(resp, &resp.Amounts[i])); err != nil {
			return err
		}
	}
	return nil
}

// Flush flushes the underlying csv.Writer buffer.
func (w *Writer) Flush() {
	w.csv.Flush()
}

// Error returns any error from the underlying csv.Writer.
func (w *Writer) Error() error {
	return w.csv.Error()
}

func responseRow(resp *domain.DocumentResponse, amt *domain.AmountDetail) []string {
	amountType, value, source, confidence := "", "", "", ""
	if amt != nil {
		amountType = string(amt.Type)
		value = strconv.FormatFloat(amt.Value, 'f', 2, 64)
		source = amt.Source
		confidence = strconv.FormatFloat(amt.Confidence, 'f', 2, 64)
	}

	risk, action := "", ""
	if resp.GuardrailsResult != nil {
		risk = string(resp.GuardrailsResult.RiskLevel)
		action = string(resp.GuardrailsResult.RecommendedAction)
	}

	return []string{
		resp.RequestID,
		string(resp.Status),
		string(resp.Currency),
		amountType,
		value,
		source,
		confidence,
		strings.Join(resp.ProcessingDetails.CorrectionsApplied, "; "),
		strconv.Itoa(resp.ProcessingDetails.TokensExtracted),
		strconv.FormatInt(resp.ProcessingDetails.ProcessingTimeMs, 10),
		risk,
		action,
	}
}
