package extractor

import (
	"regexp"
	"sort"
	"strings"

	"github.com/pratyek/medical-amount-detection/internal/domain"
)

const (
	keyValueConfidence   = 0.95
	standaloneConfidence = 0.85

	// Words closer than this vertical distance are treated as one row when
	// ordering OCR tokens.
	rowGroupingTolerance = 20.0

	// Context window (words on each side) for standalone numeric tokens.
	contextWindow = 3
)

// amountKeywords is the closed list of labels that mark a token as relevant
// even without a digit or currency glyph.
var amountKeywords = []string{
	"total", "paid", "due", "balance", "copay", "deductible",
	"insurance", "tax", "discount", "fee", "amount", "charge",
	"bill", "payment", "owed",
}

var currencyGlyphs = "$€£₹¢"

var (
	// Label: Amount — label up to the first colon, amount until a delimiter.
	keyValueRe = regexp.MustCompile(`^\s*([^:|]{1,60}?)\s*:\s*(.+?)\s*$`)
	digitRe    = regexp.MustCompile(`\d`)
	// A pipe segment that is only an amount (digits with optional glyph,
	// separators and OCR-mangled characters).
	amountOnlyRe = regexp.MustCompile(`^[\s$€£₹¢]*[0-9OIlSGTBZo|.,\s]+$`)
)

// Extractor turns raw text or OCR output into candidate amount tokens.
type Extractor struct{}

// New creates an Extractor.
func New() *Extractor {
	return &Extractor{}
}

// FromText extracts candidate tokens from free-form text, applying the three
// strategies in priority order and de-duplicating by token value.
func (e *Extractor) FromText(text string) []domain.RawToken {
	var tokens []domain.RawToken
	seen := make(map[string]bool)

	add := func(tok domain.RawToken) {
		key := strings.TrimSpace(tok.Value)
		if key == "" || seen[key] {
			return
		}
		seen[key] = true
		tokens = append(tokens, tok)
	}

	// Strategy 1+2: key-value and pipe-separated pairs. Splitting on newlines
	// and pipes reduces both forms to "Label: Amount" segments or adjacent
	// label/amount segment pairs.
	segments := splitSegments(text)
	for i, seg := range segments {
		if m := keyValueRe.FindStringSubmatch(seg); m != nil {
			label, value := strings.TrimSpace(m[1]), strings.TrimSpace(m[2])
			if IsRelevant(value) && digitLike(value) {
				add(domain.RawToken{Value: value, Confidence: keyValueConfidence, Context: label})
			}
			continue
		}
		// Pipe pair: a bare label segment followed by an amount-only segment.
		if i+1 < len(segments) && !digitRe.MatchString(seg) && IsRelevant(seg) {
			next := strings.TrimSpace(segments[i+1])
			if next != "" && amountOnlyRe.MatchString(next) && digitLike(next) {
				add(domain.RawToken{Value: next, Confidence: keyValueConfidence, Context: strings.TrimSpace(seg)})
			}
		}
	}

	// Strategy 3: standalone numeric tokens not captured above.
	words := strings.Fields(text)
	for i, w := range words {
		cleaned := strings.Trim(w, ":|,;")
		if cleaned == "" || !digitLike(cleaned) || !IsRelevant(cleaned) {
			continue
		}
		add(domain.RawToken{
			Value:      cleaned,
			Confidence: standaloneConfidence,
			Context:    surroundingWords(words, i, contextWindow),
		})
	}

	return tokens
}

// FromOCR builds tokens from recognised words at or above minConfidence,
// ordered top-to-bottom then left-to-right. Words on the same row provide
// each other's context.
func (e *Extractor) FromOCR(result *domain.OCRResult, minConfidence float64) []domain.RawToken {
	if result == nil {
		return nil
	}
	if len(result.Words) == 0 {
		// Engines without word-level output still give us the full text.
		return e.FromText(result.FullText)
	}

	rows := groupRows(result.Words, minConfidence)

	var tokens []domain.RawToken
	seen := make(map[string]bool)
	for _, row := range rows {
		for i, w := range row {
			if !digitLike(w.Text) || !IsRelevant(w.Text) {
				continue
			}
			key := strings.TrimSpace(w.Text)
			if key == "" || seen[key] {
				continue
			}
			seen[key] = true
			box := w.BoundingBox
			tokens = append(tokens, domain.RawToken{
				Value:      w.Text,
				Confidence: w.Confidence,
				Position:   &box,
				Context:    rowContext(row, i),
			})
		}
	}
	return tokens
}

// IsRelevant reports whether a piece of text can plausibly name or contain an
// amount: it has a digit, a currency glyph, or one of the amount keywords.
func IsRelevant(s string) bool {
	if digitRe.MatchString(s) || strings.ContainsAny(s, currencyGlyphs) {
		return true
	}
	lower := strings.ToLower(s)
	for _, kw := range amountKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// digitLike reports whether the text contains a digit or a currency glyph,
// which is the minimum for a token to carry a value.
func digitLike(s string) bool {
	return digitRe.MatchString(s) || strings.ContainsAny(s, currencyGlyphs)
}

func splitSegments(text string) []string {
	var segments []string
	for _, line := range strings.Split(text, "\n") {
		for _, seg := range strings.Split(line, "|") {
			seg = strings.TrimSpace(seg)
			if seg != "" {
				segments = append(segments, seg)
			}
		}
	}
	return segments
}

// surroundingWords returns up to n words on each side of index i, excluding
// the token itself.
func surroundingWords(words []string, i, n int) string {
	lo := i - n
	if lo < 0 {
		lo = 0
	}
	hi := i + n + 1
	if hi > len(words) {
		hi = len(words)
	}
	ctx := make([]string, 0, hi-lo-1)
	ctx = append(ctx, words[lo:i]...)
	ctx = append(ctx, words[i+1:hi]...)
	return strings.Join(ctx, " ")
}

// groupRows buckets words into rows by vertical proximity, then orders rows
// top-to-bottom and words within a row left-to-right.
func groupRows(words []domain.OCRWord, minConfidence float64) [][]domain.OCRWord {
	kept := make([]domain.OCRWord, 0, len(words))
	for _, w := range words {
		if w.Confidence >= minConfidence && strings.TrimSpace(w.Text) != "" {
			kept = append(kept, w)
		}
	}
	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].BoundingBox.Y < kept[j].BoundingBox.Y
	})

	var rows [][]domain.OCRWord
	for _, w := range kept {
		placed := false
		for ri := range rows {
			if abs(rows[ri][0].BoundingBox.Y-w.BoundingBox.Y) <= rowGroupingTolerance {
				rows[ri] = append(rows[ri], w)
				placed = true
				break
			}
		}
		if !placed {
			rows = append(rows, []domain.OCRWord{w})
		}
	}
	for ri := range rows {
		sort.SliceStable(rows[ri], func(i, j int) bool {
			return rows[ri][i].BoundingBox.X < rows[ri][j].BoundingBox.X
		})
	}
	return rows
}

// rowContext joins the other words of a row, preferring those to the left of
// the token because labels usually precede values.
func rowContext(row []domain.OCRWord, i int) string {
	ctx := make([]string, 0, len(row)-1)
	for j, w := range row {
		if j != i {
			ctx = append(ctx, w.Text)
		}
	}
	return strings.Join(ctx, " ")
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
