package llm

import (
	"context"
	"fmt"
	"strings"
)

type Options struct {
	Provider    string
	APIKey      string
	Model       string
	BaseURL     string
	Temperature float64
}

// New selects a client implementation by provider name. Ollama exposes an
// OpenAI-compatible endpoint, so it shares the HTTP client.
func New(ctx context.Context, opts Options) (Client, error) {
	provider := strings.ToLower(strings.TrimSpace(opts.Provider))
	if provider == "" {
		provider = "openai"
	}

	switch provider {
	case "gemini":
		return NewGeminiClient(ctx, opts.APIKey, opts.Model, opts.Temperature)
	case "openai":
		return NewOpenAIClient(opts.APIKey, opts.Model, opts.BaseURL, opts.Temperature), nil
	case "ollama":
		baseURL := opts.BaseURL
		if baseURL == "" {
			baseURL = "http://127.0.0.1:11434"
		}
		return NewOpenAIClient(opts.APIKey, opts.Model, baseURL, opts.Temperature), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", opts.Provider)
	}
}
