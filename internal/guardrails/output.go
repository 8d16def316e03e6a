package guardrails

import (
	"context"
	"fmt"
	"math"

	"github.com/pratyek/medical-amount-detection/internal/config"
	"github.com/pratyek/medical-amount-detection/internal/domain"
	"github.com/pratyek/medical-amount-detection/internal/port"
)

const (
	maxAmountCount      = 50
	amountSanityCeiling = 1_000_000
	amountSanityFloor   = 0.01
	lowConfidenceFloor  = 0.7
)

// OutputGate screens the assembled response before it leaves the service.
// It implements port.OutputValidator.
type OutputGate struct {
	tolerance float64
}

// NewOutputGate creates an OutputGate from the guardrails config.
func NewOutputGate(cfg *config.GuardrailsConfig) *OutputGate {
	return &OutputGate{tolerance: cfg.ArithmeticTolerance}
}

func (g *OutputGate) ValidateOutput(_ context.Context, check port.OutputCheck) *domain.GuardrailResult {
	results := []*domain.GuardrailResult{
		checkAmountCount(check.Amounts),
		checkStatusConsistency(check.Response, check.Amounts),
		checkCurrency(check.Response),
		checkDuplicateCategories(check.Amounts),
		g.checkArithmetic(check.Amounts),
	}
	results = append(results, checkAmountSanity(check.Amounts)...)

	return Merge(results...)
}

func checkAmountCount(amounts []domain.AmountDetail) *domain.GuardrailResult {
	if len(amounts) > maxAmountCount {
		return violationResult(domain.RiskHigh, domain.GuardrailViolation{
			Rule:     "amount_count_exceeded",
			Severity: domain.SeverityError,
			Message:  fmt.Sprintf("%d amounts detected, ceiling is %d", len(amounts), maxAmountCount),
			Context:  map[string]interface{}{"count": len(amounts), "limit": maxAmountCount},
		})
	}
	return Pass()
}

func checkStatusConsistency(resp *domain.DocumentResponse, amounts []domain.AmountDetail) *domain.GuardrailResult {
	if resp != nil && resp.Status == domain.StatusOK && len(amounts) == 0 {
		return violationResult(domain.RiskHigh, domain.GuardrailViolation{
			Rule:     "status_amounts_mismatch",
			Severity: domain.SeverityError,
			Message:  "status is ok but no amounts were detected",
		})
	}
	return Pass()
}

func checkCurrency(resp *domain.DocumentResponse) *domain.GuardrailResult {
	if resp != nil && !domain.SupportedCurrencies[resp.Currency] {
		return violationResult(domain.RiskLow, domain.GuardrailViolation{
			Rule:     "unsupported_currency",
			Severity: domain.SeverityWarning,
			Message:  fmt.Sprintf("currency %q is not in the supported set", resp.Currency),
		})
	}
	return Pass()
}

// checkDuplicateCategories flags two amounts claiming the same category. The
// OTHER bucket is exempt, it is the designated overflow.
func checkDuplicateCategories(amounts []domain.AmountDetail) *domain.GuardrailResult {
	seen := make(map[domain.AmountType]bool, len(amounts))
	for _, a := range amounts {
		if a.Type == domain.AmountTypeOther {
			continue
		}
		if seen[a.Type] {
			return violationResult(domain.RiskMedium, domain.GuardrailViolation{
				Rule:     "duplicate_category",
				Severity: domain.SeverityError,
				Message:  fmt.Sprintf("category %s assigned to more than one amount", a.Type),
				Context:  map[string]interface{}{"category": string(a.Type)},
			})
		}
		seen[a.Type] = true
	}
	return Pass()
}

func (g *OutputGate) checkArithmetic(amounts []domain.AmountDetail) *domain.GuardrailResult {
	var total, paid, due *domain.AmountDetail
	for i := range amounts {
		switch amounts[i].Type {
		case domain.AmountTypeTotalBill:
			if total == nil {
				total = &amounts[i]
			}
		case domain.AmountTypePaid:
			if paid == nil {
				paid = &amounts[i]
			}
		case domain.AmountTypeDue:
			if due == nil {
				due = &amounts[i]
			}
		}
	}
	if total == nil || paid == nil || due == nil {
		return Pass()
	}

	diff := math.Abs(total.Value - paid.Value - due.Value)
	if diff > g.tolerance {
		return violationResult(domain.RiskLow, domain.GuardrailViolation{
			Rule:     "amount_arithmetic_mismatch",
			Severity: domain.SeverityWarning,
			Message:  fmt.Sprintf("total %.2f does not equal paid %.2f plus due %.2f", total.Value, paid.Value, due.Value),
			Context: map[string]interface{}{
				"total": total.Value,
				"paid":  paid.Value,
				"due":   due.Value,
				"diff":  diff,
			},
			SuggestedFix: "review the due amount against the bill",
		})
	}
	return Pass()
}

func checkAmountSanity(amounts []domain.AmountDetail) []*domain.GuardrailResult {
	var results []*domain.GuardrailResult
	lowConfidenceFlagged := false
	for _, a := range amounts {
		if a.Value > amountSanityCeiling || a.Value < amountSanityFloor {
			results = append(results, violationResult(domain.RiskMedium, domain.GuardrailViolation{
				Rule:     "unreasonable_amount",
				Severity: domain.SeverityWarning,
				Message:  fmt.Sprintf("amount %.2f is outside the plausible billing range", a.Value),
				Context:  map[string]interface{}{"value": a.Value, "type": string(a.Type)},
			}))
		}
		if a.Confidence < lowConfidenceFloor && !lowConfidenceFlagged {
			lowConfidenceFlagged = true
			results = append(results, violationResult(domain.RiskLow, domain.GuardrailViolation{
				Rule:     "low_confidence_amount",
				Severity: domain.SeverityWarning,
				Message:  fmt.Sprintf("amount %.2f classified with confidence %.2f", a.Value, a.Confidence),
				Context:  map[string]interface{}{"value": a.Value, "confidence": a.Confidence},
			}))
		}
	}
	return results
}
