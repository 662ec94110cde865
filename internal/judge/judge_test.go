package judge

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/travel-rag/backend/internal/llm"
	"github.com/travel-rag/backend/internal/prompt"
)

type fixedRetriever struct {
	chunks []string
}

func (f *fixedRetriever) Retrieve(_ context.Context, _ string) ([]string, error) {
	return f.chunks, nil
}

type fixedGenerator struct {
	answer string
	err    error
}

func (f *fixedGenerator) Generate(_ context.Context, _ prompt.Prompt) (string, error) {
	return f.answer, f.err
}

type capturingCompleter struct {
	lastReq llm.CompletionRequest
	content string
}

func (c *capturingCompleter) Complete(_ context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	c.lastReq = req
	return &llm.CompletionResponse{Content: c.content}, nil
}

func TestEvaluate_RubricContainsContextQuestionAndAnswer(t *testing.T) {
	retriever := &fixedRetriever{chunks: []string{
		"Gullfoss waterfall, free entry",
		"Skógafoss waterfall, free entry, open 24h",
	}}
	generator := &fixedGenerator{answer: "Gullfoss is a waterfall with free entry."}
	completer := &capturingCompleter{content: "**Score:** 9"}

	j := New(retriever, prompt.NewBuilder(retriever), generator, completer, -1)

	got, err := j.Evaluate(context.Background(), "tell me about Gullfoss")
	require.NoError(t, err)
	assert.Equal(t, "**Score:** 9", got)

	rubric := completer.lastReq.UserPrompt
	assert.Contains(t, rubric, "Gullfoss waterfall, free entry\n\nSkógafoss waterfall, free entry, open 24h")
	assert.Contains(t, rubric, "tell me about Gullfoss")
	assert.Contains(t, rubric, "Gullfoss is a waterfall with free entry.")
	assert.Contains(t, rubric, "Provide a score (1-10)")
	assert.Contains(t, rubric, "**Correctness**")
	assert.Contains(t, rubric, "**Completeness**")
	assert.Contains(t, rubric, "**Conciseness**")
}

func TestEvaluate_RunsAtLowTemperature(t *testing.T) {
	retriever := &fixedRetriever{}
	completer := &capturingCompleter{content: "**Score:** 5"}

	j := New(retriever, prompt.NewBuilder(retriever), &fixedGenerator{answer: "x"}, completer, -1)

	_, err := j.Evaluate(context.Background(), "any question")
	require.NoError(t, err)
	assert.Equal(t, DefaultTemperature, completer.lastReq.Temperature)
	assert.Equal(t, judgeSystemPrompt, completer.lastReq.SystemPrompt)
}

func TestEvaluate_ZeroTemperatureIsHonored(t *testing.T) {
	retriever := &fixedRetriever{}
	completer := &capturingCompleter{content: "**Score:** 5"}

	j := New(retriever, prompt.NewBuilder(retriever), &fixedGenerator{answer: "x"}, completer, 0)

	_, err := j.Evaluate(context.Background(), "any question")
	require.NoError(t, err)
	assert.Zero(t, completer.lastReq.Temperature)
}

func TestEvaluate_GeneratorErrorPropagates(t *testing.T) {
	retriever := &fixedRetriever{}
	j := New(retriever, prompt.NewBuilder(retriever),
		&fixedGenerator{err: errors.New("completion failed")},
		&capturingCompleter{}, 0.2)

	_, err := j.Evaluate(context.Background(), "any question")
	assert.Error(t, err)
}
