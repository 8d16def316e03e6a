package openai

import (
	"context"
	"fmt"
	"time"

	gopenai "github.com/sashabaranov/go-openai"

	"github.com/pratyek/medical-amount-detection/internal/classifier"
	"github.com/pratyek/medical-amount-detection/internal/config"
	"github.com/pratyek/medical-amount-detection/internal/port"
)

func init() {
	classifier.RegisterProvider("openai", func(cfg *config.ClassifierConfig) (port.CompletionProvider, error) {
		return NewProvider(cfg), nil
	})
}

// Provider implements port.CompletionProvider using the OpenAI Chat
// Completions API.
type Provider struct {
	client *gopenai.Client
	model  string
}

// NewProvider creates an OpenAI-based completion provider.
func NewProvider(cfg *config.ClassifierConfig) *Provider {
	model := cfg.Model
	if model == "" {
		model = "gpt-4o-mini"
	}
	clientCfg := gopenai.DefaultConfig(cfg.APIKey)
	timeout := cfg.Timeout()
	if timeout == 0 {
		timeout = 120 * time.Second
	}
	clientCfg.HTTPClient.Timeout = timeout
	return &Provider{
		client: gopenai.NewClientWithConfig(clientCfg),
		model:  model,
	}
}

// Complete sends the prompt and returns the model's raw text response.
func (p *Provider) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := p.client.CreateChatCompletion(ctx, gopenai.ChatCompletionRequest{
		Model: p.model,
		Messages: []gopenai.ChatCompletionMessage{
			{
				Role:    gopenai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
		ResponseFormat: &gopenai.ChatCompletionResponseFormat{
			Type: gopenai.ChatCompletionResponseFormatTypeJSONObject,
		},
		MaxTokens: 4096,
	})
	if err != nil {
		return "", fmt.Errorf("calling openai API: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty response from API: no choices")
	}
	return resp.Choices[0].Message.Content, nil
}
