package guardrails

import "github.com/pratyek/medical-amount-detection/internal/domain"

const (
	criticalPenalty = 0.5
	errorPenalty    = 0.3
	warningPenalty  = 0.1
)

// Pass is the neutral result a gate returns when every check comes back
// clean.
func Pass() *domain.GuardrailResult {
	return &domain.GuardrailResult{
		Passed:            true,
		RiskLevel:         domain.RiskLow,
		Confidence:        1.0,
		RecommendedAction: domain.ActionProceed,
	}
}

// Merge combines sub-results into one verdict: violations concatenate, risk
// takes the maximum, confidence starts at 1.0 and pays a per-violation
// penalty, and the recommended action follows from severity and risk
// together.
func Merge(results ...*domain.GuardrailResult) *domain.GuardrailResult {
	merged := Pass()

	for _, r := range results {
		if r == nil {
			continue
		}
		merged.Violations = append(merged.Violations, r.Violations...)
		merged.RiskLevel = domain.MaxRisk(merged.RiskLevel, r.RiskLevel)
	}

	hasError, hasCritical := false, false
	confidence := 1.0
	for _, v := range merged.Violations {
		switch v.Severity {
		case domain.SeverityCritical:
			hasCritical = true
			confidence -= criticalPenalty
		case domain.SeverityError:
			hasError = true
			confidence -= errorPenalty
		case domain.SeverityWarning:
			confidence -= warningPenalty
		}
	}
	if confidence < 0 {
		confidence = 0
	}

	merged.Passed = !hasError && !hasCritical
	merged.Confidence = confidence
	merged.RecommendedAction = recommendAction(merged.RiskLevel, hasError, hasCritical)
	return merged
}

func recommendAction(risk domain.RiskLevel, hasError, hasCritical bool) domain.RecommendedAction {
	switch {
	case hasCritical:
		return domain.ActionReject
	case hasError && risk == domain.RiskHigh:
		return domain.ActionManualReview
	case risk == domain.RiskHigh, hasError && risk == domain.RiskMedium:
		return domain.ActionProceedWithCaution
	default:
		return domain.ActionProceed
	}
}

// violationResult wraps a single violation in a result at the given risk, the
// shape every sub-check produces.
func violationResult(risk domain.RiskLevel, v domain.GuardrailViolation) *domain.GuardrailResult {
	return &domain.GuardrailResult{
		Passed:            v.Severity == domain.SeverityWarning,
		RiskLevel:         risk,
		Violations:        []domain.GuardrailViolation{v},
		Confidence:        1.0,
		RecommendedAction: domain.ActionProceed,
	}
}
