package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/pratyek/medical-amount-detection/internal/domain"
	"github.com/pratyek/medical-amount-detection/internal/port"
)

// MockOCREngine is a mock implementation of port.OCREngine.
type MockOCREngine struct {
	mock.Mock
}

func (m *MockOCREngine) Recognize(ctx context.Context, input port.OCRInput) (*domain.OCRResult, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.OCRResult), args.Error(1)
}
