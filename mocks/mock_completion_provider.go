package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockCompletionProvider is a mock implementation of port.CompletionProvider.
type MockCompletionProvider struct {
	mock.Mock
}

func (m *MockCompletionProvider) Complete(ctx context.Context, prompt string) (string, error) {
	args := m.Called(ctx, prompt)
	return args.String(0), args.Error(1)
}
