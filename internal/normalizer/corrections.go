package normalizer

import (
	"regexp"
	"strings"
)

// charCorrection maps one OCR-confused character to a digit.
type charCorrection struct {
	From rune
	To   rune
}

// charCorrections is an ordered table; a later entry for the same character
// overwrites an earlier one. Lowercase 'g' appears twice because scanned
// sixes and nines are confused about equally often; the final entry wins, so
// 'g' reads as 9. Keep the order, it is load-bearing.
var charCorrections = []charCorrection{
	{'O', '0'},
	{'o', '0'},
	{'I', '1'},
	{'l', '1'},
	{'|', '1'},
	{'S', '5'},
	{'s', '5'},
	{'G', '6'},
	{'g', '6'},
	{'T', '7'},
	{'B', '8'},
	{'Z', '2'},
	{'z', '2'},
	{'g', '9'},
}

// patternCorrection is a multi-character substitution for currency notation
// that OCR tends to mangle.
type patternCorrection struct {
	Re  *regexp.Regexp
	To  string
	Tag string
}

var patternCorrections = []patternCorrection{
	{regexp.MustCompile(`(?i)\brs\.?\s*`), "₹", "Rs->₹"},
	{regexp.MustCompile(`(?i)\binr\s*`), "₹", "INR->₹"},
	{regexp.MustCompile(`\$\s+`), "$", "$ ->$"},
}

// correctionFor resolves the effective substitution for r: the table is
// scanned front to back and the last matching entry wins.
func correctionFor(r rune) (rune, bool) {
	to := rune(0)
	found := false
	for _, c := range charCorrections {
		if c.From == r {
			to = c.To
			found = true
		}
	}
	return to, found
}

// applyCorrections runs the pattern table and then the character table over
// s, returning the corrected string and one "X->Y" tag per rule that fired.
func applyCorrections(s string) (string, []string) {
	var applied []string

	for _, p := range patternCorrections {
		if p.Re.MatchString(s) {
			s = p.Re.ReplaceAllString(s, p.To)
			applied = append(applied, p.Tag)
		}
	}

	var out strings.Builder
	fired := make(map[rune]bool)
	for _, r := range s {
		to, ok := correctionFor(r)
		if !ok {
			out.WriteRune(r)
			continue
		}
		out.WriteRune(to)
		if !fired[r] {
			fired[r] = true
			applied = append(applied, string(r)+"->"+string(to))
		}
	}
	return out.String(), applied
}
