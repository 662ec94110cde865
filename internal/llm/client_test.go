package llm

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCountTokens(t *testing.T) {
	assert.Equal(t, 0, CountTokens(""))
	assert.Equal(t, 1, CountTokens("Reykjavik"))
	assert.Equal(t, 4, CountTokens("  best  waterfalls near   Vik "))
}

func TestGenerateEmbedding_RejectsOversizedInput(t *testing.T) {
	client := NewClient("test-key", "gpt-4o", "text-embedding-3-large", 0.7, 2048)

	oversized := strings.Repeat("word ", MaxEmbeddingTokens+1)

	// The ceiling check runs before any request is built, so no network
	// access happens here despite the bogus API key.
	_, err := client.GenerateEmbedding(context.Background(), oversized)
	require.Error(t, err)

	var tooLarge *InputTooLargeError
	require.ErrorAs(t, err, &tooLarge)
	assert.Equal(t, MaxEmbeddingTokens+1, tooLarge.Tokens)
	assert.Equal(t, MaxEmbeddingTokens, tooLarge.Limit)
}

func TestInputTooLargeError_Message(t *testing.T) {
	err := &InputTooLargeError{Tokens: 9001, Limit: 8000}
	assert.Equal(t, "input of 9001 tokens exceeds embedding limit of 8000", err.Error())
}
