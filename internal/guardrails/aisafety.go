package guardrails

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/pratyek/medical-amount-detection/internal/domain"
	"github.com/pratyek/medical-amount-detection/internal/port"
)

// hallucinationRatio is the fraction of reasoning numbers absent from the
// input above which the AI output is flagged.
const hallucinationRatio = 0.3

var offDomainKeywords = []string{
	"password", "credit card", "social security", "ssn",
	"api key", "bank account", "routing number",
}

var numberRe = regexp.MustCompile(`\d+(?:\.\d+)?`)

// AISafetyGate screens the AI exchange after classification. It implements
// port.AISafetyValidator and only runs when the AI path produced the result.
type AISafetyGate struct{}

// NewAISafetyGate creates an AISafetyGate.
func NewAISafetyGate() *AISafetyGate {
	return &AISafetyGate{}
}

func (g *AISafetyGate) ValidateAISafety(_ context.Context, check port.AISafetyCheck) *domain.GuardrailResult {
	return Merge(
		checkInjection(check.InputText),
		checkOffDomainLeakage(check.AIResponse),
		checkHallucinatedNumbers(check.InputText, check.AIReasoning),
	)
}

// checkInjection re-runs the prompt-injection patterns over the original
// input. The input gate already ran them, but a request that reached the AI
// with an injection aboard is a critical finding in its own right.
func checkInjection(text string) *domain.GuardrailResult {
	for _, p := range suspiciousPatterns {
		if p.Rule != "prompt_injection" {
			continue
		}
		if p.Re.MatchString(text) {
			return violationResult(domain.RiskCritical, domain.GuardrailViolation{
				Rule:     "prompt_injection",
				Severity: domain.SeverityCritical,
				Message:  "prompt injection phrasing reached the AI classifier",
				Context:  map[string]interface{}{"pattern": p.Re.String()},
			})
		}
	}
	return Pass()
}

func checkOffDomainLeakage(response string) *domain.GuardrailResult {
	lower := strings.ToLower(response)
	for _, kw := range offDomainKeywords {
		if strings.Contains(lower, kw) {
			return violationResult(domain.RiskMedium, domain.GuardrailViolation{
				Rule:     "off_domain_response",
				Severity: domain.SeverityWarning,
				Message:  fmt.Sprintf("AI response mentions %q, which has no place in billing output", kw),
			})
		}
	}
	return Pass()
}

// checkHallucinatedNumbers compares the numbers the model reasoned about
// with the numbers actually present in the input.
func checkHallucinatedNumbers(inputText string, reasoning []string) *domain.GuardrailResult {
	inputNumbers := numberSet(inputText)
	outputNumbers := numberSet(strings.Join(reasoning, " "))
	if len(outputNumbers) == 0 {
		return Pass()
	}

	hallucinated := 0
	for n := range outputNumbers {
		if !inputNumbers[n] {
			hallucinated++
		}
	}
	ratio := float64(hallucinated) / float64(len(outputNumbers))
	if ratio > hallucinationRatio {
		return violationResult(domain.RiskMedium, domain.GuardrailViolation{
			Rule:     "hallucinated_numbers",
			Severity: domain.SeverityWarning,
			Message:  fmt.Sprintf("%.0f%% of the numbers in the AI reasoning do not appear in the input", ratio*100),
			Context:  map[string]interface{}{"hallucinated": hallucinated, "total": len(outputNumbers)},
		})
	}
	return Pass()
}

// numberSet collects the numbers in s keyed by canonical form, so "450.50"
// and "450.5" count as the same number.
func numberSet(s string) map[string]bool {
	set := make(map[string]bool)
	for _, m := range numberRe.FindAllString(s, -1) {
		f, err := strconv.ParseFloat(m, 64)
		if err != nil {
			continue
		}
		set[strconv.FormatFloat(f, 'f', -1, 64)] = true
	}
	return set
}
