package normalizer

import (
	"regexp"
	"strings"

	"github.com/pratyek/medical-amount-detection/internal/domain"
)

// currencyPatterns is scanned in order; the first currency with any matching
// pattern wins, so the order encodes precedence.
var currencyPatterns = []struct {
	Currency domain.Currency
	Patterns []*regexp.Regexp
}{
	{domain.CurrencyUSD, []*regexp.Regexp{
		regexp.MustCompile(`\$`),
		regexp.MustCompile(`(?i)\busd\b`),
		regexp.MustCompile(`(?i)\bdollars?\b`),
	}},
	{domain.CurrencyINR, []*regexp.Regexp{
		regexp.MustCompile(`₹`),
		regexp.MustCompile(`(?i)\binr\b`),
		regexp.MustCompile(`(?i)\brs\.?\s*\d`),
		regexp.MustCompile(`(?i)\brupees?\b`),
	}},
	{domain.CurrencyEUR, []*regexp.Regexp{
		regexp.MustCompile(`€`),
		regexp.MustCompile(`(?i)\beur\b`),
		regexp.MustCompile(`(?i)\beuros?\b`),
	}},
	{domain.CurrencyGBP, []*regexp.Regexp{
		regexp.MustCompile(`£`),
		regexp.MustCompile(`(?i)\bgbp\b`),
		regexp.MustCompile(`(?i)\bpounds?\b`),
	}},
	{domain.CurrencyCAD, []*regexp.Regexp{
		regexp.MustCompile(`(?i)\bcad\b`),
		regexp.MustCompile(`(?i)c\$`),
	}},
}

// DetectCurrency scans the values and contexts of all tokens and returns the
// first currency whose pattern set matches, defaulting to USD. A hint, when
// valid, overrides detection.
func DetectCurrency(tokens []domain.RawToken, hint string) domain.Currency {
	if hint != "" {
		c := domain.Currency(strings.ToUpper(hint))
		if domain.SupportedCurrencies[c] {
			return c
		}
	}

	var sb strings.Builder
	for _, tok := range tokens {
		sb.WriteString(tok.Value)
		sb.WriteByte(' ')
		sb.WriteString(tok.Context)
		sb.WriteByte(' ')
	}
	haystack := sb.String()

	for _, cp := range currencyPatterns {
		for _, re := range cp.Patterns {
			if re.MatchString(haystack) {
				return cp.Currency
			}
		}
	}
	return domain.CurrencyUSD
}
