package extractor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pratyek/medical-amount-detection/internal/domain"
)

func TestFromText_KeyValuePairs(t *testing.T) {
	e := New()

	tokens := e.FromText("Total: $450.75 | Insurance Paid: $300.50 | Patient Due: $150.25")

	require.Len(t, tokens, 3)
	assert.Equal(t, "$450.75", tokens[0].Value)
	assert.Equal(t, "Total", tokens[0].Context)
	assert.Equal(t, keyValueConfidence, tokens[0].Confidence)
	assert.Equal(t, "$300.50", tokens[1].Value)
	assert.Equal(t, "Insurance Paid", tokens[1].Context)
	assert.Equal(t, "$150.25", tokens[2].Value)
	assert.Equal(t, "Patient Due", tokens[2].Context)
}

func TestFromText_PipePairs(t *testing.T) {
	e := New()

	tokens := e.FromText("Amount Due | 150.00\nCopay | $25")

	require.Len(t, tokens, 2)
	assert.Equal(t, "150.00", tokens[0].Value)
	assert.Equal(t, "Amount Due", tokens[0].Context)
	assert.Equal(t, keyValueConfidence, tokens[0].Confidence)
	assert.Equal(t, "$25", tokens[1].Value)
	assert.Equal(t, "Copay", tokens[1].Context)
}

func TestFromText_StandaloneTokens(t *testing.T) {
	e := New()

	tokens := e.FromText("Please remit 1500 to the billing office by Friday")

	require.Len(t, tokens, 1)
	assert.Equal(t, "1500", tokens[0].Value)
	assert.Equal(t, standaloneConfidence, tokens[0].Confidence)
	assert.Contains(t, tokens[0].Context, "remit")
	assert.Contains(t, tokens[0].Context, "billing")
	assert.NotContains(t, tokens[0].Context, "1500")
}

func TestFromText_DeduplicatesByValue(t *testing.T) {
	e := New()

	tokens := e.FromText("Total: 500\nBalance: 500\nsome filler 500 here")

	// The value 500 appears three times but is captured once, from the
	// highest-priority strategy.
	require.Len(t, tokens, 1)
	assert.Equal(t, "Total", tokens[0].Context)
	assert.Equal(t, keyValueConfidence, tokens[0].Confidence)
}

func TestFromText_IgnoresIrrelevantText(t *testing.T) {
	e := New()

	assert.Empty(t, e.FromText("Patient was advised to rest and hydrate."))
	assert.Empty(t, e.FromText(""))
}

func TestFromText_OCRMangledValuesSurvive(t *testing.T) {
	e := New()

	tokens := e.FromText("T0tal: I5OO")

	require.Len(t, tokens, 1)
	assert.Equal(t, "I5OO", tokens[0].Value)
	assert.Equal(t, "T0tal", tokens[0].Context)
}

func TestIsRelevant(t *testing.T) {
	assert.True(t, IsRelevant("450.75"))
	assert.True(t, IsRelevant("$"))
	assert.True(t, IsRelevant("Insurance Paid"))
	assert.True(t, IsRelevant("TOTAL"))
	assert.False(t, IsRelevant("patient name"))
	assert.False(t, IsRelevant(""))
}

func TestFromOCR_SortsTopToBottomLeftToRight(t *testing.T) {
	e := New()

	result := &domain.OCRResult{
		Words: []domain.OCRWord{
			{Text: "200.00", Confidence: 0.9, BoundingBox: domain.BoundingBox{X: 120, Y: 105}},
			{Text: "Total", Confidence: 0.9, BoundingBox: domain.BoundingBox{X: 10, Y: 40}},
			{Text: "100.00", Confidence: 0.9, BoundingBox: domain.BoundingBox{X: 120, Y: 45}},
			{Text: "Due", Confidence: 0.9, BoundingBox: domain.BoundingBox{X: 10, Y: 110}},
		},
	}

	tokens := e.FromOCR(result, 0.5)

	require.Len(t, tokens, 2)
	// Y=45 groups with Y=40 (within tolerance), so 100.00 comes first.
	assert.Equal(t, "100.00", tokens[0].Value)
	assert.Equal(t, "Total", tokens[0].Context)
	require.NotNil(t, tokens[0].Position)
	assert.Equal(t, 120.0, tokens[0].Position.X)
	assert.Equal(t, "200.00", tokens[1].Value)
	assert.Equal(t, "Due", tokens[1].Context)
}

func TestFromOCR_FiltersLowConfidenceWords(t *testing.T) {
	e := New()

	result := &domain.OCRResult{
		Words: []domain.OCRWord{
			{Text: "999.99", Confidence: 0.2, BoundingBox: domain.BoundingBox{X: 0, Y: 0}},
			{Text: "42.00", Confidence: 0.8, BoundingBox: domain.BoundingBox{X: 0, Y: 50}},
		},
	}

	tokens := e.FromOCR(result, 0.5)

	require.Len(t, tokens, 1)
	assert.Equal(t, "42.00", tokens[0].Value)
}

func TestFromOCR_FallsBackToFullText(t *testing.T) {
	e := New()

	result := &domain.OCRResult{FullText: "Total: 75.00", OverallConfidence: 0.9}

	tokens := e.FromOCR(result, 0.5)

	require.Len(t, tokens, 1)
	assert.Equal(t, "75.00", tokens[0].Value)
}

func TestFromOCR_NilResult(t *testing.T) {
	assert.Nil(t, New().FromOCR(nil, 0.5))
}
