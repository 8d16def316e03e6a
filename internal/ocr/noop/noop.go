// Package noop provides an OCR engine for deployments without a Tesseract
// installation; every image request fails cleanly instead of at link time.
package noop

import (
	"context"
	"fmt"

	"github.com/pratyek/medical-amount-detection/internal/domain"
	"github.com/pratyek/medical-amount-detection/internal/port"
)

// Engine implements port.OCREngine by rejecting every request.
type Engine struct{}

// NewEngine constructs a noop OCR engine.
func NewEngine() *Engine {
	return &Engine{}
}

func (e *Engine) Recognize(_ context.Context, _ port.OCRInput) (*domain.OCRResult, error) {
	return nil, fmt.Errorf("%w: ocr is not enabled on this deployment", domain.ErrOCRFailed)
}
