package llm

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// GeminiClient implements Client using Gemini text generation.
type GeminiClient struct {
	client      *genai.Client
	model       string
	temperature float64
}

func NewGeminiClient(ctx context.Context, apiKey string, model string, temperature float64) (*GeminiClient, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}
	return &GeminiClient{client: client, model: model, temperature: temperature}, nil
}

// generationConfig carries the temperature into each call; zero means the
// model default.
func (c *GeminiClient) generationConfig() *genai.GenerateContentConfig {
	if c.temperature <= 0 {
		return nil
	}
	return &genai.GenerateContentConfig{Temperature: genai.Ptr(float32(c.temperature))}
}

func (c *GeminiClient) Complete(ctx context.Context, prompt string) (string, error) {
	contents := genai.Text(prompt)
	resp, err := c.client.Models.GenerateContent(ctx, c.model, contents, c.generationConfig())
	if err != nil {
		return "", err
	}
	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("gemini response contained no content")
	}
	return cleanMarkdownOutput(text), nil
}
