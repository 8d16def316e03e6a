package pipeline

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/pratyek/medical-amount-detection/internal/classifier"
	"github.com/pratyek/medical-amount-detection/internal/config"
	"github.com/pratyek/medical-amount-detection/internal/domain"
	"github.com/pratyek/medical-amount-detection/internal/extractor"
	"github.com/pratyek/medical-amount-detection/internal/guardrails"
	"github.com/pratyek/medical-amount-detection/internal/metrics"
	"github.com/pratyek/medical-amount-detection/internal/normalizer"
	"github.com/pratyek/medical-amount-detection/internal/port"
)

// Deps are the collaborators a Pipeline is assembled from. OCR and Metrics
// may be nil; the other fields are required.
type Deps struct {
	Extractor    *extractor.Extractor
	Classifier   *classifier.Engine
	InputGate    port.InputValidator
	OutputGate   port.OutputValidator
	AISafetyGate port.AISafetyValidator
	OCR          port.OCREngine
	Metrics      *metrics.Metrics
}

// Pipeline runs one document through extraction, normalization,
// classification and the guardrail gates. It holds no per-request state, so
// a single instance serves concurrent requests.
type Pipeline struct {
	cfg  *config.Config
	deps Deps
}

// New assembles a Pipeline.
func New(cfg *config.Config, deps Deps) *Pipeline {
	return &Pipeline{cfg: cfg, deps: deps}
}

// run accumulates per-request state as the document moves through the
// stages.
type run struct {
	id       string
	state    domain.PipelineState
	start    time.Time
	kind     string
	gateRuns []*domain.GuardrailResult
	details  domain.ProcessingDetails
}

func (r *run) advance(state domain.PipelineState) {
	r.state = state
	log.Printf("pipeline.Pipeline: [%s] %s", r.id, state)
}

// ProcessText runs the pipeline over free-form billing text.
func (p *Pipeline) ProcessText(ctx context.Context, text string, opts domain.ProcessingOptions) (*domain.DocumentResponse, error) {
	r := newRun("text")

	inputRes := p.validateInput(ctx, port.InputCheck{Text: text, Options: opts})
	r.gateRuns = append(r.gateRuns, inputRes)
	if inputRes.RecommendedAction == domain.ActionReject {
		return p.finish(r, rejectedResponse(r, inputRes)), nil
	}
	r.advance(domain.StateInputValidated)

	tokens := p.deps.Extractor.FromText(text)
	return p.detect(ctx, r, text, tokens, opts)
}

// ProcessImage runs the pipeline over a scanned bill image.
func (p *Pipeline) ProcessImage(ctx context.Context, imageBytes []byte, filename string, opts domain.ProcessingOptions) (*domain.DocumentResponse, error) {
	r := newRun("image")

	inputRes := p.validateInput(ctx, port.InputCheck{FileBytes: imageBytes, Filename: filename, Options: opts})
	r.gateRuns = append(r.gateRuns, inputRes)
	if inputRes.RecommendedAction == domain.ActionReject {
		return p.finish(r, rejectedResponse(r, inputRes)), nil
	}
	r.advance(domain.StateInputValidated)

	if p.deps.OCR == nil {
		return nil, fmt.Errorf("image processing requested but no ocr engine is configured")
	}
	ocrResult, err := p.deps.OCR.Recognize(ctx, port.OCRInput{
		ImageBytes: imageBytes,
		Filename:   filename,
		Language:   p.cfg.OCR.Language,
	})
	if err != nil {
		return nil, err
	}
	r.advance(domain.StateOCRDone)
	conf := ocrResult.OverallConfidence
	r.details.OCRConfidence = &conf
	if p.deps.Metrics != nil {
		p.deps.Metrics.ObserveOCRConfidence(conf)
	}

	minConf := p.cfg.OCR.MinConfidence
	if opts.MinOCRConfidence > 0 {
		minConf = opts.MinOCRConfidence
	}
	tokens := p.deps.Extractor.FromOCR(ocrResult, minConf)
	return p.detect(ctx, r, ocrResult.FullText, tokens, opts)
}

// detect is the shared tail of both entry points: everything after tokens
// exist.
func (p *Pipeline) detect(ctx context.Context, r *run, text string, tokens []domain.RawToken, opts domain.ProcessingOptions) (*domain.DocumentResponse, error) {
	r.advance(domain.StateTokensExtracted)
	r.details.TokensExtracted = len(tokens)

	currency := normalizer.DetectCurrency(tokens, opts.CurrencyHint)
	if len(tokens) == 0 {
		return p.finish(r, emptyResponse(r, currency)), nil
	}

	floor := p.cfg.Normalization.MinConfidence
	if opts.ConfidenceThreshold > 0 {
		floor = opts.ConfidenceThreshold
	}
	amounts := normalizer.New(floor).Normalize(tokens)
	r.advance(domain.StateNormalized)
	r.details.NormalizationConfidence = meanAmountConfidence(amounts)
	r.details.CorrectionsApplied = collectCorrections(amounts)
	if len(amounts) == 0 {
		return p.finish(r, emptyResponse(r, currency)), nil
	}

	result, err := p.deps.Classifier.Classify(ctx, text, amounts, opts)
	if err != nil {
		return nil, err
	}
	r.advance(domain.StateClassified)
	r.details.ClassificationConfidence = result.OverallConfidence
	if result.FallbackUsed && p.deps.Metrics != nil {
		p.deps.Metrics.ObserveAIFallback()
	}

	if result.AIUsed && p.cfg.Guardrails.AISafetyEnabled {
		aiRes := p.deps.AISafetyGate.ValidateAISafety(ctx, port.AISafetyCheck{
			InputText:   text,
			AIResponse:  result.RawResponse,
			AIReasoning: result.Reasoning,
			Amounts:     result.Amounts,
		})
		r.gateRuns = append(r.gateRuns, aiRes)
		r.advance(domain.StateAISafetyChecked)
	}

	resp := &domain.DocumentResponse{
		Currency:  currency,
		Amounts:   result.Amounts,
		Status:    domain.StatusOK,
		RequestID: r.id,
	}

	if p.cfg.Guardrails.OutputEnabled {
		outputRes := p.deps.OutputGate.ValidateOutput(ctx, port.OutputCheck{Response: resp, Amounts: result.Amounts})
		r.gateRuns = append(r.gateRuns, outputRes)
	}
	r.advance(domain.StateOutputValidated)

	merged := guardrails.Merge(r.gateRuns...)
	resp.GuardrailsResult = merged
	resp.Warnings = warningMessages(merged)
	if !merged.Passed {
		// The result is still usable, but something downstream should look
		// at it before money moves.
		resp.Status = domain.StatusPartial
	}

	return p.finish(r, resp), nil
}

func (p *Pipeline) validateInput(ctx context.Context, check port.InputCheck) *domain.GuardrailResult {
	if !p.cfg.Guardrails.InputEnabled {
		return guardrails.Pass()
	}
	return p.deps.InputGate.ValidateInput(ctx, check)
}

// finish stamps timing, records metrics and marks the run responded.
func (p *Pipeline) finish(r *run, resp *domain.DocumentResponse) *domain.DocumentResponse {
	r.details.ProcessingTimeMs = time.Since(r.start).Milliseconds()
	resp.ProcessingDetails = r.details
	r.advance(domain.StateResponded)

	if p.deps.Metrics != nil {
		p.deps.Metrics.ObserveDocument(r.kind, string(resp.Status), time.Since(r.start), len(resp.Amounts))
		if resp.GuardrailsResult != nil {
			for _, v := range resp.GuardrailsResult.Violations {
				p.deps.Metrics.ObserveGuardrailViolation(v.Rule, string(v.Severity))
			}
		}
	}
	return resp
}

func newRun(kind string) *run {
	r := &run{
		id:    uuid.NewString(),
		start: time.Now(),
		kind:  kind,
	}
	r.advance(domain.StateReceived)
	return r
}

func rejectedResponse(r *run, inputRes *domain.GuardrailResult) *domain.DocumentResponse {
	return &domain.DocumentResponse{
		Currency:         domain.CurrencyUSD,
		Status:           domain.StatusError,
		RequestID:        r.id,
		GuardrailsResult: inputRes,
		Warnings:         warningMessages(inputRes),
	}
}

func emptyResponse(r *run, currency domain.Currency) *domain.DocumentResponse {
	merged := guardrails.Merge(r.gateRuns...)
	return &domain.DocumentResponse{
		Currency:         currency,
		Status:           domain.StatusNoAmountsFound,
		RequestID:        r.id,
		GuardrailsResult: merged,
		Warnings:         warningMessages(merged),
	}
}

func warningMessages(res *domain.GuardrailResult) []string {
	if res == nil {
		return nil
	}
	var warnings []string
	for _, v := range res.Violations {
		if v.Severity == domain.SeverityWarning {
			warnings = append(warnings, v.Message)
		}
	}
	return warnings
}

func meanAmountConfidence(amounts []domain.NormalizedAmount) float64 {
	if len(amounts) == 0 {
		return 0
	}
	var sum float64
	for _, a := range amounts {
		sum += a.Confidence
	}
	return sum / float64(len(amounts))
}

func collectCorrections(amounts []domain.NormalizedAmount) []string {
	seen := make(map[string]bool)
	var out []string
	for _, a := range amounts {
		for _, c := range a.CorrectionsApplied {
			if !seen[c] {
				seen[c] = true
				out = append(out, c)
			}
		}
	}
	return out
}
