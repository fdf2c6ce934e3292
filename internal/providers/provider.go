package providers

import (
	"context"
	"fmt"
)

// GenerateRequest contains the data sent to a generative model.
type GenerateRequest struct {
	SystemInstruction string
	Prompt            string
	MaxTokens         int
	Temperature       float64
}

// GenerateResponse contains the raw text returned by a generative model.
// Content is untrusted prose: expected to parse as JSON, not guaranteed to.
type GenerateResponse struct {
	Content    string
	TokensUsed int
}

// Generator is the provider abstraction for the external generative model.
type Generator interface {
	Generate(ctx context.Context, req GenerateRequest) (GenerateResponse, error)
	Name() string
}

// New creates a provider by name.
func New(ctx context.Context, provider, model string) (Generator, error) {
	switch provider {
	case "gemini", "google":
		return NewGemini(ctx, model)
	case "openai":
		return NewOpenAI(model)
	case "anthropic":
		return NewAnthropic(model)
	case "ollama", "lmstudio":
		return NewOllama(model)
	default:
		return nil, fmt.Errorf("unknown provider: %s", provider)
	}
}
