package llm

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"
)

const (
	// DefaultTimeout bounds a single generation call.
	DefaultTimeout = 60 * time.Second
	// maxAttempts is the total number of tries per prompt, not extra retries.
	maxAttempts  = 3
	initialDelay = 1 * time.Second
)

// Client is a single synchronous call to a language model.
type Client interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// DryRunClient rejects every completion. It backs dry runs, which render
// prompts but must stay offline: no provider construction, no credentials,
// no calls.
type DryRunClient struct{}

func (DryRunClient) Complete(context.Context, string) (string, error) {
	return "", errors.New("model calls are disabled in dry-run mode")
}

// SummarizationError reports that generation failed after all attempts.
type SummarizationError struct {
	Attempts int
	Err      error
}

func (e *SummarizationError) Error() string {
	return fmt.Sprintf("summarization failed after %d attempts: %v", e.Attempts, e.Err)
}

func (e *SummarizationError) Unwrap() error { return e.Err }

// Generator wraps a Client with the per-call timeout and retry policy shared
// by every generation in the pipeline.
type Generator struct {
	client  Client
	timeout time.Duration
}

func NewGenerator(client Client, timeout time.Duration) *Generator {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Generator{client: client, timeout: timeout}
}

// Generate runs the prompt with exponential backoff between attempts and
// returns a SummarizationError once every attempt has failed. The error
// reports the number of attempts actually made, which is lower than
// maxAttempts when the caller cancels mid-run.
func (g *Generator) Generate(ctx context.Context, prompt string) (string, error) {
	var lastErr error
	attempts := 0
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			delay := time.Duration(math.Pow(2, float64(attempt-1))) * initialDelay
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return "", &SummarizationError{Attempts: attempts, Err: ctx.Err()}
			}
		}

		attempts++
		callCtx, cancel := context.WithTimeout(ctx, g.timeout)
		text, err := g.client.Complete(callCtx, prompt)
		cancel()
		if err == nil {
			return text, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			break
		}
	}
	return "", &SummarizationError{Attempts: attempts, Err: lastErr}
}
