package port

import (
	"context"

	"github.com/pratyek/medical-amount-detection/internal/domain"
)

// OCRInput carries the image submitted for recognition.
type OCRInput struct {
	ImageBytes []byte
	Filename   string
	Language   string
}

// OCREngine abstracts the optical character recognition collaborator.
type OCREngine interface {
	Recognize(ctx context.Context, input OCRInput) (*domain.OCRResult, error)
}
