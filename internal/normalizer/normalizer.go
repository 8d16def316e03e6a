package normalizer

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/pratyek/medical-amount-detection/internal/domain"
)

const (
	minValidAmount = 0.01
	maxValidAmount = 10_000_000

	correctionPenalty    = 0.05
	strongIndicatorBonus = 0.1
	keywordContextBonus  = 0.1
	shortNoCurrencyMalus = 0.2
)

var (
	// Digit run with an optional 1-2 digit decimal part, comma or dot.
	numberRe = regexp.MustCompile(`\d+(?:[.,]\d{1,2})?`)

	trailingCommaDecimalRe = regexp.MustCompile(`,(\d{2})$`)
	thousandsCommaRe       = regexp.MustCompile(`(\d),(\d{3})`)
	digitGroupSpaceRe      = regexp.MustCompile(`(\d)\s+(\d)`)
	trimEdgesRe            = regexp.MustCompile(`^[^\d$€£₹¢]+|[^\d$€£₹¢]+$`)
	pureNumericRe          = regexp.MustCompile(`^[$€£₹¢]?\d+(?:[.,]\d{1,2})?$`)

	twoDecimalRe    = regexp.MustCompile(`\d+\.\d{2}`)
	threeDigitRunRe = regexp.MustCompile(`\d{3}`)
)

var contextKeywords = []string{
	"total", "paid", "due", "balance", "copay", "deductible",
	"insurance", "tax", "discount", "fee", "amount", "charge",
	"bill", "payment", "owed",
}

// Normalizer converts raw tokens into validated numeric amounts.
type Normalizer struct {
	minConfidence float64
}

// New creates a Normalizer that drops amounts scoring below minConfidence.
func New(minConfidence float64) *Normalizer {
	return &Normalizer{minConfidence: minConfidence}
}

// Normalize runs every token through correction, extraction, range
// validation and confidence scoring. Tokens that yield no valid value, or a
// confidence below the floor, are dropped. The function is pure: the same
// tokens always produce the same output.
func (n *Normalizer) Normalize(tokens []domain.RawToken) []domain.NormalizedAmount {
	amounts := make([]domain.NormalizedAmount, 0, len(tokens))
	for _, tok := range tokens {
		amt, ok := n.normalizeOne(tok)
		if ok {
			amounts = append(amounts, amt)
		}
	}
	return amounts
}

func (n *Normalizer) normalizeOne(tok domain.RawToken) (domain.NormalizedAmount, bool) {
	corrected, corrections := applyCorrections(tok.Value)
	cleaned := applyPatternFixes(corrected)

	digits, ok := extractNumber(cleaned)
	if !ok {
		return domain.NormalizedAmount{}, false
	}
	value, ok := parseAmount(digits)
	if !ok {
		return domain.NormalizedAmount{}, false
	}

	conf := scoreConfidence(tok, digits, len(corrections))
	if conf < n.minConfidence {
		return domain.NormalizedAmount{}, false
	}

	return domain.NormalizedAmount{
		Original:           tok.Value,
		Normalized:         value,
		Confidence:         conf,
		CorrectionsApplied: corrections,
		Context:            tok.Context,
	}, true
}

// applyPatternFixes repairs separator damage: a trailing ",dd" group becomes
// a decimal point, thousands commas and spaces between digit groups are
// dropped, and non-numeric edges are trimmed when what remains is purely
// numeric (currency glyphs survive the trim).
func applyPatternFixes(s string) string {
	s = trailingCommaDecimalRe.ReplaceAllString(s, ".$1")
	for thousandsCommaRe.MatchString(s) {
		s = thousandsCommaRe.ReplaceAllString(s, "$1$2")
	}
	s = digitGroupSpaceRe.ReplaceAllString(s, "$1$2")

	trimmed := trimEdgesRe.ReplaceAllString(s, "")
	if pureNumericRe.MatchString(trimmed) {
		return trimmed
	}
	return s
}

// extractNumber picks the longest numeric match in s; ties go to the first
// seen.
func extractNumber(s string) (string, bool) {
	matches := numberRe.FindAllString(s, -1)
	if len(matches) == 0 {
		return "", false
	}
	best := matches[0]
	for _, m := range matches[1:] {
		if len(m) > len(best) {
			best = m
		}
	}
	return best, true
}

func parseAmount(digits string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.ReplaceAll(digits, ",", "."), 64)
	if err != nil {
		return 0, false
	}
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 || v < minValidAmount || v > maxValidAmount {
		return 0, false
	}
	return v, true
}

func scoreConfidence(tok domain.RawToken, digits string, correctionCount int) float64 {
	conf := tok.Confidence
	conf -= correctionPenalty * float64(correctionCount)

	if hasStrongIndicator(tok.Value) {
		conf += strongIndicatorBonus
	}
	if containsKeyword(tok.Context) {
		conf += keywordContextBonus
	}
	if len(strings.Map(keepDigits, digits)) <= 2 && !hasCurrencyGlyph(tok.Value) {
		// Short bare numbers are usually page numbers or dates.
		conf -= shortNoCurrencyMalus
	}

	return clamp01(conf)
}

// hasStrongIndicator reports whether the original token text looks
// unmistakably like money: a currency glyph, a two-decimal pattern, or at
// least three consecutive digits.
func hasStrongIndicator(s string) bool {
	return hasCurrencyGlyph(s) || twoDecimalRe.MatchString(s) || threeDigitRunRe.MatchString(s)
}

func hasCurrencyGlyph(s string) bool {
	return strings.ContainsAny(s, "$€£₹¢")
}

func containsKeyword(s string) bool {
	lower := strings.ToLower(s)
	for _, kw := range contextKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

func keepDigits(r rune) rune {
	if r >= '0' && r <= '9' {
		return r
	}
	return -1
}

func clamp01(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}
