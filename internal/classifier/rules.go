package classifier

import (
	"strings"

	"github.com/pratyek/medical-amount-detection/internal/domain"
)

const (
	contextHitScore = 0.9
	windowHitScore  = 0.5
	windowRadius    = 50
	maxRuleScore    = 0.9
	otherConfidence = 0.3
)

// categoryRule scores one amount category. Rules are ordered by priority;
// the priority also scales the final score so that specific labels beat
// generic ones.
type categoryRule struct {
	Type     domain.AmountType
	Priority int
	Keywords []string
}

var categoryRules = []categoryRule{
	{domain.AmountTypeTotalBill, 10, []string{"total", "grand total", "bill amount", "invoice amount", "charges"}},
	{domain.AmountTypePaid, 9, []string{"paid", "payment received", "received", "payment made"}},
	{domain.AmountTypeDue, 8, []string{"due", "balance", "owed", "outstanding", "payable"}},
	{domain.AmountTypeInsuranceCoverage, 7, []string{"insurance", "coverage", "covered", "insurer"}},
	{domain.AmountTypeCopay, 6, []string{"copay", "co-pay", "copayment"}},
	{domain.AmountTypeDeductible, 5, []string{"deductible"}},
	{domain.AmountTypeDiscount, 4, []string{"discount", "rebate", "concession"}},
	{domain.AmountTypeTax, 3, []string{"tax", "gst", "vat"}},
	{domain.AmountTypeOther, 2, nil},
}

// classifyByRules assigns a category to each amount by keyword scoring
// against its context label and a window of the source text around the
// amount's original token.
func classifyByRules(text string, amounts []domain.NormalizedAmount) []domain.AmountDetail {
	lowerText := strings.ToLower(text)

	details := make([]domain.AmountDetail, 0, len(amounts))
	for _, amt := range amounts {
		category, score := scoreCategories(lowerText, amt)
		details = append(details, domain.AmountDetail{
			Type:       category,
			Value:      amt.Normalized,
			Source:     sourceSnippet(amt),
			Confidence: score,
		})
	}
	return details
}

func scoreCategories(lowerText string, amt domain.NormalizedAmount) (domain.AmountType, float64) {
	context := strings.ToLower(amt.Context)
	window := textWindow(lowerText, strings.ToLower(amt.Original))

	best := domain.AmountTypeOther
	bestScore := 0.0
	for _, rule := range categoryRules {
		var sum float64
		for _, kw := range rule.Keywords {
			if strings.Contains(context, kw) {
				sum += contextHitScore
			}
			if window != "" && strings.Contains(window, kw) {
				sum += windowHitScore
			}
		}
		score := sum * float64(rule.Priority) / 10
		if score > maxRuleScore {
			score = maxRuleScore
		}
		if score > bestScore {
			best = rule.Type
			bestScore = score
		}
	}

	if bestScore <= otherConfidence {
		return domain.AmountTypeOther, otherConfidence
	}
	return best, bestScore
}

// textWindow returns the region of text surrounding the first occurrence of
// the original token, clipped to the window radius on both sides.
func textWindow(lowerText, original string) string {
	if original == "" {
		return ""
	}
	idx := strings.Index(lowerText, original)
	if idx < 0 {
		return ""
	}
	lo := idx - windowRadius
	if lo < 0 {
		lo = 0
	}
	hi := idx + len(original) + windowRadius
	if hi > len(lowerText) {
		hi = len(lowerText)
	}
	return lowerText[lo:hi]
}

func sourceSnippet(amt domain.NormalizedAmount) string {
	if amt.Context != "" {
		return amt.Context + ": " + amt.Original
	}
	return amt.Original
}
