package tesseract

import (
	"context"
	"fmt"
	"strings"

	"github.com/otiai10/gosseract/v2"

	"github.com/pratyek/medical-amount-detection/internal/domain"
	"github.com/pratyek/medical-amount-detection/internal/port"
)

// Engine implements port.OCREngine using the gosseract client. A fresh
// client is created per request; gosseract clients are not safe for
// concurrent use.
type Engine struct {
	clientFactory func() *gosseract.Client
}

// NewEngine constructs a Tesseract-backed OCR engine.
func NewEngine() *Engine {
	return &Engine{clientFactory: gosseract.NewClient}
}

// Recognize performs OCR on the given image and returns the full text plus
// per-word confidences and bounding boxes.
func (e *Engine) Recognize(ctx context.Context, in port.OCRInput) (*domain.OCRResult, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	c := e.clientFactory()
	defer c.Close()

	if err := c.SetImageFromBytes(in.ImageBytes); err != nil {
		return nil, fmt.Errorf("%w: set image: %v", domain.ErrOCRFailed, err)
	}
	if in.Language != "" {
		if err := c.SetLanguage(in.Language); err != nil {
			return nil, fmt.Errorf("%w: set language: %v", domain.ErrOCRFailed, err)
		}
	}

	text, err := c.Text()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrOCRFailed, err)
	}

	words, avgConf := extractWords(c)
	return &domain.OCRResult{
		FullText:          strings.TrimSpace(text),
		OverallConfidence: avgConf,
		Words:             words,
	}, nil
}

func extractWords(c *gosseract.Client) ([]domain.OCRWord, float64) {
	boxes, err := c.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil || len(boxes) == 0 {
		return nil, 0
	}
	words := make([]domain.OCRWord, 0, len(boxes))
	var sum float64
	for _, b := range boxes {
		conf := b.Confidence / 100.0
		sum += conf
		words = append(words, domain.OCRWord{
			Text:       b.Word,
			Confidence: conf,
			BoundingBox: domain.BoundingBox{
				X:      float64(b.Box.Min.X),
				Y:      float64(b.Box.Min.Y),
				Width:  float64(b.Box.Dx()),
				Height: float64(b.Box.Dy()),
			},
		})
	}
	return words, sum / float64(len(words))
}
