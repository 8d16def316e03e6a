package classifier

import (
	"fmt"
	"strings"

	"github.com/pratyek/medical-amount-detection/internal/domain"
)

// BuildClassificationPrompt returns the prompt asking the model to assign a
// category to each detected amount.
func BuildClassificationPrompt(text string, amounts []domain.NormalizedAmount) string {
	var list strings.Builder
	for i, amt := range amounts {
		fmt.Fprintf(&list, "%d. %.2f (from %q)\n", i+1, amt.Normalized, sourceSnippet(amt))
	}

	return `You are a medical billing assistant. Classify each of the following amounts found in a medical bill into exactly one category.

Categories: total_bill, paid, due, insurance_coverage, copay, deductible, discount, tax, other

BILL TEXT:
` + text + `

DETECTED AMOUNTS:
` + list.String() + `
Return ONLY valid JSON with no markdown formatting, no code fences, no explanation — just the raw JSON object:
{
  "classifications": [
    {"amount": 0, "type": "", "confidence": 0.0, "reasoning": ""}
  ],
  "overall_confidence": 0.0
}

Rules:
- "amount" must exactly repeat one of the detected amounts.
- "type" must be one of the listed categories; use "other" when unsure.
- "confidence" is your certainty for that single classification, between 0.0 and 1.0.
- "reasoning" is one short sentence naming the label or phrase you relied on.`
}
