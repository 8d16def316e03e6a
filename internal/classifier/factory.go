package classifier

import (
	"fmt"

	"github.com/pratyek/medical-amount-detection/internal/config"
	"github.com/pratyek/medical-amount-detection/internal/domain"
	"github.com/pratyek/medical-amount-detection/internal/port"
)

// ProviderFactory creates a CompletionProvider from the classifier config.
type ProviderFactory func(cfg *config.ClassifierConfig) (port.CompletionProvider, error)

// registry of completion provider factories, populated by init() in each
// provider package or explicitly via RegisterProvider.
var providers = map[string]ProviderFactory{}

// RegisterProvider registers a completion provider factory by name.
func RegisterProvider(name string, factory ProviderFactory) {
	providers[name] = factory
}

// NewProvider creates a CompletionProvider using the registered factory for
// the configured provider name.
func NewProvider(cfg *config.ClassifierConfig) (port.CompletionProvider, error) {
	factory, ok := providers[cfg.Provider]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownProvider, cfg.Provider)
	}
	return factory(cfg)
}
