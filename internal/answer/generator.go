// Package answer sends assembled prompts to the LLM and returns the
// completion, either as one blocking call or as incremental deltas.
package answer

import (
	"context"
	"fmt"

	"github.com/travel-rag/backend/internal/llm"
	"github.com/travel-rag/backend/internal/metrics"
	"github.com/travel-rag/backend/internal/prompt"
)

// DefaultTemperature is the sampling temperature for user-facing answers.
const DefaultTemperature float32 = 0.7

// Completer is implemented by *llm.Client.
type Completer interface {
	Complete(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error)
	CompleteStream(ctx context.Context, req llm.CompletionRequest, deliver func(delta string) error) error
}

type Generator struct {
	completer   Completer
	temperature float32
}

// NewGenerator builds a Generator sampling at temperature. Zero is a
// valid temperature; a negative value selects DefaultTemperature.
func NewGenerator(completer Completer, temperature float32) *Generator {
	if temperature < 0 {
		temperature = DefaultTemperature
	}
	return &Generator{
		completer:   completer,
		temperature: temperature,
	}
}

// Generate returns the complete answer in one blocking call.
func (g *Generator) Generate(ctx context.Context, p prompt.Prompt) (string, error) {
	resp, err := g.completer.Complete(ctx, llm.CompletionRequest{
		SystemPrompt: p.System,
		UserPrompt:   p.User,
		Temperature:  g.temperature,
	})
	if err != nil {
		return "", fmt.Errorf("failed to generate answer: %w", err)
	}

	metrics.LLMTokensUsed.WithLabelValues("completion").Add(float64(resp.Usage.TotalTokens))

	return resp.Content, nil
}

// Stream delivers the answer incrementally as the upstream produces it,
// stopping on completion, a deliver error, or context cancellation.
func (g *Generator) Stream(ctx context.Context, p prompt.Prompt, deliver func(delta string) error) error {
	return g.completer.CompleteStream(ctx, llm.CompletionRequest{
		SystemPrompt: p.System,
		UserPrompt:   p.User,
		Temperature:  g.temperature,
	}, deliver)
}
