package classifier

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/pratyek/medical-amount-detection/internal/domain"
)

// amountMatchTolerance is the numeric closeness required to pair a model
// classification with a detected amount.
const amountMatchTolerance = 0.01

type aiClassification struct {
	Amount     interface{} `json:"amount"`
	Type       string      `json:"type"`
	Confidence interface{} `json:"confidence"`
	Reasoning  string      `json:"reasoning"`
}

type aiResponse struct {
	Classifications   []aiClassification `json:"classifications"`
	OverallConfidence interface{}        `json:"overall_confidence"`
}

// extractJSON returns the first brace-delimited substring of s. Models wrap
// JSON in prose or code fences often enough that strict unmarshalling of the
// whole response is a losing game.
func extractJSON(s string) (string, error) {
	start := strings.Index(s, "{")
	if start < 0 {
		return "", domain.ErrNoJSONInResponse
	}
	depth := 0
	for i := start; i < len(s); i++ {
		switch s[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1], nil
			}
		}
	}
	return "", domain.ErrNoJSONInResponse
}

// parseAIResponse extracts the JSON object from the model's free text,
// matches each classification back to a detected amount by numeric
// closeness, and silently discards entries that match nothing. The returned
// overall confidence is the mean of matched confidences scaled by the
// matched fraction.
func parseAIResponse(raw string, amounts []domain.NormalizedAmount) ([]domain.AmountDetail, float64, []string, error) {
	jsonStr, err := extractJSON(raw)
	if err != nil {
		return nil, 0, nil, err
	}

	var resp aiResponse
	if err := json.Unmarshal([]byte(jsonStr), &resp); err != nil {
		return nil, 0, nil, fmt.Errorf("parsing model JSON output: %w", err)
	}

	details := make([]domain.AmountDetail, 0, len(resp.Classifications))
	reasoning := make([]string, 0, len(resp.Classifications))
	claimed := make([]bool, len(amounts))
	var confSum float64

	for _, c := range resp.Classifications {
		value, ok := parseNumber(c.Amount)
		if !ok {
			continue
		}
		idx := matchAmount(value, amounts, claimed)
		if idx < 0 {
			continue
		}
		claimed[idx] = true

		category := domain.AmountType(strings.ToLower(strings.TrimSpace(c.Type)))
		if !domain.ValidAmountTypes[category] {
			category = domain.AmountTypeOther
		}
		conf, ok := parseNumber(c.Confidence)
		if !ok {
			conf = 0
		}
		conf = clamp01(conf)

		details = append(details, domain.AmountDetail{
			Type:       category,
			Value:      amounts[idx].Normalized,
			Source:     sourceSnippet(amounts[idx]),
			Confidence: conf,
		})
		if c.Reasoning != "" {
			reasoning = append(reasoning, c.Reasoning)
		}
		confSum += conf
	}

	if len(details) == 0 || len(amounts) == 0 {
		return nil, 0, nil, fmt.Errorf("model response matched none of %d amounts", len(amounts))
	}

	overall := (confSum / float64(len(details))) * (float64(len(details)) / float64(len(amounts)))
	return details, overall, reasoning, nil
}

// matchAmount finds the first unclaimed amount within tolerance of value.
func matchAmount(value float64, amounts []domain.NormalizedAmount, claimed []bool) int {
	for i, amt := range amounts {
		if !claimed[i] && math.Abs(amt.Normalized-value) < amountMatchTolerance {
			return i
		}
	}
	return -1
}

// parseNumber accepts the number representations models actually emit:
// JSON numbers, quoted numbers, and quoted numbers with thousands commas.
func parseNumber(v interface{}) (float64, bool) {
	switch val := v.(type) {
	case float64:
		return val, true
	case int:
		return float64(val), true
	case string:
		cleaned := strings.ReplaceAll(strings.TrimSpace(val), ",", "")
		if cleaned == "" {
			return 0, false
		}
		d, err := decimal.NewFromString(cleaned)
		if err != nil {
			return 0, false
		}
		f, _ := d.Float64()
		return f, true
	case json.Number:
		d, err := decimal.NewFromString(string(val))
		if err != nil {
			return 0, false
		}
		f, _ := d.Float64()
		return f, true
	default:
		return 0, false
	}
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
