package port

import (
	"context"

	"github.com/pratyek/medical-amount-detection/internal/domain"
)

// InputCheck carries everything the input gate can see before any processing
// cost is incurred.
type InputCheck struct {
	Text      string
	FileBytes []byte
	Filename  string
	Options   domain.ProcessingOptions
}

// OutputCheck carries the assembled response for the output gate.
type OutputCheck struct {
	Response *domain.DocumentResponse
	Amounts  []domain.AmountDetail
}

// AISafetyCheck carries the AI exchange for the safety gate.
type AISafetyCheck struct {
	InputText   string
	AIResponse  string
	AIReasoning []string
	Amounts     []domain.AmountDetail
}

// InputValidator gates a request before OCR or AI cost is incurred.
type InputValidator interface {
	ValidateInput(ctx context.Context, check InputCheck) *domain.GuardrailResult
}

// OutputValidator gates the assembled response.
type OutputValidator interface {
	ValidateOutput(ctx context.Context, check OutputCheck) *domain.GuardrailResult
}

// AISafetyValidator screens the AI branch of classification.
type AISafetyValidator interface {
	ValidateAISafety(ctx context.Context, check AISafetyCheck) *domain.GuardrailResult
}
