package classifier

import (
	"context"
	"fmt"
	"log"
	"math"
	"time"

	"github.com/pratyek/medical-amount-detection/internal/config"
	"github.com/pratyek/medical-amount-detection/internal/domain"
	"github.com/pratyek/medical-amount-detection/internal/port"
)

// dueConfidencePenalty softens the DUE classification when the bill's
// arithmetic does not add up.
const dueConfidencePenalty = 0.7

// Result is the outcome of classifying one document's amounts.
type Result struct {
	Amounts           []domain.AmountDetail
	OverallConfidence float64
	AIUsed            bool
	FallbackUsed      bool
	Reasoning         []string
	RawResponse       string
}

// Engine assigns a category to each normalized amount, via a completion
// provider when one is configured and rule-based keyword scoring otherwise.
// It holds no per-request state.
type Engine struct {
	aiEnabled       bool
	fallbackEnabled bool
	maxRetries      int
	timeout         time.Duration
	tolerance       float64
	provider        port.CompletionProvider
	sleep           func(time.Duration)
}

// NewEngine creates an Engine. provider may be nil, in which case every
// request takes the rule-based path.
func NewEngine(cfg *config.ClassifierConfig, tolerance float64, provider port.CompletionProvider) *Engine {
	return &Engine{
		aiEnabled:       cfg.AIEnabled,
		fallbackEnabled: cfg.FallbackEnabled,
		maxRetries:      cfg.MaxRetries,
		timeout:         cfg.Timeout(),
		tolerance:       tolerance,
		provider:        provider,
		sleep:           time.Sleep,
	}
}

// Classify categorises the given amounts against the source text. The
// per-request options can force the rule-based path regardless of config.
func (e *Engine) Classify(ctx context.Context, text string, amounts []domain.NormalizedAmount, opts domain.ProcessingOptions) (*Result, error) {
	aiEnabled := e.aiEnabled
	if opts.EnableAI != nil {
		aiEnabled = *opts.EnableAI
	}
	if !aiEnabled || e.provider == nil {
		return e.ruleBased(text, amounts, false), nil
	}

	prompt := BuildClassificationPrompt(text, amounts)
	var lastErr error

	for attempt := 0; attempt < e.maxRetries; attempt++ {
		if attempt > 0 {
			e.sleep(time.Duration(1<<attempt) * time.Second)
		}

		raw, err := e.completeWithTimeout(ctx, prompt)
		if err != nil {
			log.Printf("classifier.Engine: attempt %d/%d failed: %v", attempt+1, e.maxRetries, err)
			lastErr = err
			continue
		}

		details, overall, reasoning, err := parseAIResponse(raw, amounts)
		if err != nil {
			log.Printf("classifier.Engine: attempt %d/%d returned unusable output: %v", attempt+1, e.maxRetries, err)
			lastErr = err
			continue
		}

		enforceConsistency(details, e.tolerance)
		return &Result{
			Amounts:           details,
			OverallConfidence: overall,
			AIUsed:            true,
			Reasoning:         reasoning,
			RawResponse:       raw,
		}, nil
	}

	if !e.fallbackEnabled {
		return nil, fmt.Errorf("classification failed after %d attempts: %w", e.maxRetries, lastErr)
	}

	log.Printf("classifier.Engine: falling back to rule-based classification: %v", lastErr)
	return e.ruleBased(text, amounts, true), nil
}

func (e *Engine) ruleBased(text string, amounts []domain.NormalizedAmount, fallback bool) *Result {
	details := classifyByRules(text, amounts)
	enforceConsistency(details, e.tolerance)
	return &Result{
		Amounts:           details,
		OverallConfidence: meanConfidence(details),
		FallbackUsed:      fallback,
	}
}

// completeWithTimeout races one provider call against the attempt timeout.
// The first to settle wins; a timed-out call is abandoned, not cancelled, so
// it may still complete in the background and consume quota.
func (e *Engine) completeWithTimeout(ctx context.Context, prompt string) (string, error) {
	type outcome struct {
		text string
		err  error
	}
	ch := make(chan outcome, 1)
	go func() {
		text, err := e.provider.Complete(ctx, prompt)
		ch <- outcome{text, err}
	}()

	timer := time.NewTimer(e.timeout)
	defer timer.Stop()

	select {
	case out := <-ch:
		return out.text, out.err
	case <-timer.C:
		return "", fmt.Errorf("completion timed out after %s", e.timeout)
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// enforceConsistency softens the DUE confidence when TOTAL_BILL, PAID and
// DUE are all present but total - paid - due exceeds the tolerance. The
// value itself is never altered.
func enforceConsistency(details []domain.AmountDetail, tolerance float64) {
	var total, paid, due *domain.AmountDetail
	for i := range details {
		switch details[i].Type {
		case domain.AmountTypeTotalBill:
			if total == nil {
				total = &details[i]
			}
		case domain.AmountTypePaid:
			if paid == nil {
				paid = &details[i]
			}
		case domain.AmountTypeDue:
			if due == nil {
				due = &details[i]
			}
		}
	}
	if total == nil || paid == nil || due == nil {
		return
	}
	if math.Abs(total.Value-paid.Value-due.Value) > tolerance {
		due.Confidence *= dueConfidencePenalty
	}
}

func meanConfidence(details []domain.AmountDetail) float64 {
	if len(details) == 0 {
		return 0
	}
	var sum float64
	for _, d := range details {
		sum += d.Confidence
	}
	return sum / float64(len(details))
}
