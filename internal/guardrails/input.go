package guardrails

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/pratyek/medical-amount-detection/internal/config"
	"github.com/pratyek/medical-amount-detection/internal/domain"
	"github.com/pratyek/medical-amount-detection/internal/port"
)

// lowThresholdFloor marks a caller-supplied confidence threshold as
// suspiciously permissive.
const lowThresholdFloor = 0.3

// suspiciousPattern flags input text nobody should be feeding a billing
// service. Every hit is CRITICAL; the table is ordered from most to least
// specific so the first match names the attack.
type suspiciousPattern struct {
	Rule string
	Re   *regexp.Regexp
}

var suspiciousPatterns = []suspiciousPattern{
	{"prompt_injection", regexp.MustCompile(`(?i)ignore\s+(all\s+)?previous\s+instructions?`)},
	{"prompt_injection", regexp.MustCompile(`(?i)disregard\s+(all\s+)?(previous|prior)\s+instructions?`)},
	{"prompt_injection", regexp.MustCompile(`(?i)you\s+are\s+now\s+(a|an)\s`)},
	{"prompt_injection", regexp.MustCompile(`(?i)system\s+prompt`)},
	{"script_injection", regexp.MustCompile(`(?i)<\s*script`)},
	{"script_injection", regexp.MustCompile(`(?i)javascript\s*:`)},
	{"script_injection", regexp.MustCompile(`(?i)\beval\s*\(`)},
	{"sql_injection", regexp.MustCompile(`(?i)\bdrop\s+table\b`)},
	{"sql_injection", regexp.MustCompile(`(?i)\bunion\s+select\b`)},
	{"sql_injection", regexp.MustCompile(`(?i)'\s*or\s+1\s*=\s*1`)},
	{"suspicious_amount", regexp.MustCompile(`\$\s*\d{9,}`)},
	{"scam_phrasing", regexp.MustCompile(`(?i)you\s+have\s+won`)},
	{"scam_phrasing", regexp.MustCompile(`(?i)\blottery\b`)},
	{"scam_phrasing", regexp.MustCompile(`(?i)claim\s+your\s+(prize|reward)`)},
	{"scam_phrasing", regexp.MustCompile(`(?i)wire\s+transfer\s+immediately`)},
}

// fileSignatures maps an extension to the magic bytes a genuine file of that
// type starts with.
var fileSignatures = map[string][][]byte{
	".jpg":  {{0xFF, 0xD8, 0xFF}},
	".jpeg": {{0xFF, 0xD8, 0xFF}},
	".png":  {{0x89, 0x50, 0x4E, 0x47}},
}

// InputGate screens a request before OCR or AI cost is incurred. It
// implements port.InputValidator.
type InputGate struct {
	maxFileSize   int64
	maxTextLength int
}

// NewInputGate creates an InputGate from the guardrails config.
func NewInputGate(cfg *config.GuardrailsConfig) *InputGate {
	return &InputGate{
		maxFileSize:   cfg.MaxFileSizeBytes(),
		maxTextLength: cfg.MaxTextLength,
	}
}

func (g *InputGate) ValidateInput(_ context.Context, check port.InputCheck) *domain.GuardrailResult {
	var results []*domain.GuardrailResult

	if len(check.FileBytes) > 0 {
		results = append(results, g.checkFile(check.FileBytes, check.Filename))
	} else {
		results = append(results, g.checkText(check.Text))
	}
	results = append(results, checkOptions(check.Options))

	return Merge(results...)
}

func (g *InputGate) checkText(text string) *domain.GuardrailResult {
	if strings.TrimSpace(text) == "" {
		return violationResult(domain.RiskHigh, domain.GuardrailViolation{
			Rule:     "empty_input",
			Severity: domain.SeverityError,
			Message:  "input text is empty",
		})
	}
	if g.maxTextLength > 0 && len(text) > g.maxTextLength {
		return violationResult(domain.RiskHigh, domain.GuardrailViolation{
			Rule:     "text_too_long",
			Severity: domain.SeverityError,
			Message:  fmt.Sprintf("input text exceeds %d characters", g.maxTextLength),
			Context:  map[string]interface{}{"length": len(text), "limit": g.maxTextLength},
		})
	}
	for _, p := range suspiciousPatterns {
		if p.Re.MatchString(text) {
			return violationResult(domain.RiskCritical, domain.GuardrailViolation{
				Rule:         p.Rule,
				Severity:     domain.SeverityCritical,
				Message:      "input text matches a " + strings.ReplaceAll(p.Rule, "_", " ") + " pattern",
				Context:      map[string]interface{}{"pattern": p.Re.String()},
				SuggestedFix: "remove the flagged phrasing and resubmit",
			})
		}
	}
	return Pass()
}

func (g *InputGate) checkFile(data []byte, filename string) *domain.GuardrailResult {
	ext := strings.ToLower(filepath.Ext(filename))
	_, allowed := domain.AllowedExtensions[strings.TrimPrefix(ext, ".")]
	signatures, ok := fileSignatures[ext]
	if !ok || !allowed {
		return violationResult(domain.RiskHigh, domain.GuardrailViolation{
			Rule:         "unsupported_file_type",
			Severity:     domain.SeverityError,
			Message:      fmt.Sprintf("file type %q is not supported", ext),
			Context:      map[string]interface{}{"filename": filename},
			SuggestedFix: "upload a jpg or png image",
		})
	}

	if g.maxFileSize > 0 && int64(len(data)) > g.maxFileSize {
		return violationResult(domain.RiskHigh, domain.GuardrailViolation{
			Rule:     "file_too_large",
			Severity: domain.SeverityError,
			Message:  fmt.Sprintf("file exceeds %d bytes", g.maxFileSize),
			Context:  map[string]interface{}{"size": len(data), "limit": g.maxFileSize},
		})
	}

	if !matchesSignature(data, signatures) {
		// Extension says image, bytes say otherwise. Treat as hostile.
		return violationResult(domain.RiskCritical, domain.GuardrailViolation{
			Rule:     "file_signature_mismatch",
			Severity: domain.SeverityCritical,
			Message:  fmt.Sprintf("file content does not match the %s extension", ext),
			Context:  map[string]interface{}{"filename": filename},
		})
	}
	return Pass()
}

func checkOptions(opts domain.ProcessingOptions) *domain.GuardrailResult {
	if opts.ConfidenceThreshold > 0 && opts.ConfidenceThreshold < lowThresholdFloor {
		return violationResult(domain.RiskLow, domain.GuardrailViolation{
			Rule:     "low_confidence_threshold",
			Severity: domain.SeverityWarning,
			Message:  fmt.Sprintf("confidence threshold %.2f admits unreliable detections", opts.ConfidenceThreshold),
			Context:  map[string]interface{}{"threshold": opts.ConfidenceThreshold},
		})
	}
	return Pass()
}

func matchesSignature(data []byte, signatures [][]byte) bool {
	for _, sig := range signatures {
		if len(data) >= len(sig) && bytes.Equal(data[:len(sig)], sig) {
			return true
		}
	}
	return false
}
