// Package judge scores generated answers against retrieved context with a
// second LLM call on a fixed rubric.
package judge

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/travel-rag/backend/internal/llm"
	"github.com/travel-rag/backend/internal/metrics"
	"github.com/travel-rag/backend/internal/prompt"
	"github.com/travel-rag/backend/pkg/logger"
)

const judgeSystemPrompt = "You are a strict and fair AI judge evaluating another AI's response."

// DefaultTemperature keeps the evaluation near-deterministic.
const DefaultTemperature float32 = 0.2

const rubricTemplate = `You are an expert evaluator. You will assess the answer quality of an AI system.

**Context from the database:**
%s

**User's Question:**
%s

**AI's Answer:**
%s

Evaluate the answer based on:
- **Correctness** (Does it match the database info?)
- **Completeness** (Does it include all relevant details?)
- **Conciseness** (Is it clear and to the point?)

Provide a score (1-10) based on accuracy, completeness, and conciseness.
The explanation should follow the following structure and be separated with proper line breaks between each section:

**Score:** [Score]

**Explanation:**
- **Correctness:** [Evaluation of correctness]
- **Completeness:** [Evaluation of completeness]
- **Conciseness:** [Evaluation of conciseness]

**Final Note:** [Conclude with any necessary explanation of errors, if present]

Now, please evaluate the response.`

// AnswerGenerator is implemented by *answer.Generator (blocking mode).
type AnswerGenerator interface {
	Generate(ctx context.Context, p prompt.Prompt) (string, error)
}

// Completer issues the evaluation call. Implemented by *llm.Client.
type Completer interface {
	Complete(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error)
}

type Judge struct {
	retriever   prompt.ChunkRetriever
	builder     *prompt.Builder
	generator   AnswerGenerator
	completer   Completer
	temperature float32
}

// New builds a Judge evaluating at temperature. Zero is a valid
// temperature; a negative value selects DefaultTemperature.
func New(retriever prompt.ChunkRetriever, builder *prompt.Builder, generator AnswerGenerator, completer Completer, temperature float32) *Judge {
	if temperature < 0 {
		temperature = DefaultTemperature
	}
	return &Judge{
		retriever:   retriever,
		builder:     builder,
		generator:   generator,
		completer:   completer,
		temperature: temperature,
	}
}

// Evaluate re-runs retrieval and answer generation for question, then asks
// the evaluator to score the answer. It returns the raw evaluator text;
// parsing the score is the caller's concern.
func (j *Judge) Evaluate(ctx context.Context, question string) (string, error) {
	chunks, err := j.retriever.Retrieve(ctx, question)
	if err != nil {
		return "", fmt.Errorf("failed to retrieve context: %w", err)
	}

	p, err := j.builder.Build(ctx, question)
	if err != nil {
		return "", fmt.Errorf("failed to build prompt: %w", err)
	}

	answerText, err := j.generator.Generate(ctx, p)
	if err != nil {
		return "", fmt.Errorf("failed to generate candidate answer: %w", err)
	}

	rubric := fmt.Sprintf(rubricTemplate, strings.Join(chunks, "\n\n"), question, answerText)

	resp, err := j.completer.Complete(ctx, llm.CompletionRequest{
		SystemPrompt: judgeSystemPrompt,
		UserPrompt:   rubric,
		Temperature:  j.temperature,
	})
	if err != nil {
		return "", fmt.Errorf("failed to evaluate answer: %w", err)
	}

	metrics.EvaluationsTotal.Inc()
	logger.Info("Answer evaluated",
		zap.Int("context_chunks", len(chunks)),
		zap.Int("evaluation_length", len(resp.Content)),
	)

	return resp.Content, nil
}
