package retriever

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/travel-rag/backend/internal/vector"
	"github.com/travel-rag/backend/internal/vector/memory"
)

type stubResolver struct {
	embedding []float32
	err       error
}

func (s *stubResolver) LookupOrCreate(_ context.Context, _ string) ([]float32, error) {
	return s.embedding, s.err
}

func TestRetrieve_EmptyIndexReturnsEmptySlice(t *testing.T) {
	r := New(&stubResolver{embedding: []float32{1, 0}}, memory.NewIndex(), 10)

	chunks, err := r.Retrieve(context.Background(), "tell me about Gullfoss")
	require.NoError(t, err)
	assert.Empty(t, chunks)
}

func TestRetrieve_ReturnsRankedChunkTexts(t *testing.T) {
	idx := memory.NewIndex()
	require.NoError(t, idx.Upsert(context.Background(), []vector.Record{
		{ID: "a", Embedding: []float32{0, 1}, Text: "Gullfoss waterfall, free entry"},
		{ID: "b", Embedding: []float32{1, 0}, Text: "Skógafoss waterfall, free entry, open 24h"},
	}))

	r := New(&stubResolver{embedding: []float32{0, 1}}, idx, 1)

	chunks, err := r.Retrieve(context.Background(), "tell me about Gullfoss")
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, "Gullfoss waterfall, free entry", chunks[0])
}

func TestRetrieve_EmbeddingErrorPropagates(t *testing.T) {
	r := New(&stubResolver{err: errors.New("embedding service down")}, memory.NewIndex(), 10)

	_, err := r.Retrieve(context.Background(), "anything")
	assert.Error(t, err)
}

func TestNew_DefaultsTopK(t *testing.T) {
	r := New(&stubResolver{}, memory.NewIndex(), 0)
	assert.Equal(t, DefaultTopK, r.topK)
}
