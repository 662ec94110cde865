package ingestion

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/travel-rag/backend/internal/chunker"
	"github.com/travel-rag/backend/internal/embedding"
	"github.com/travel-rag/backend/internal/llm"
	"github.com/travel-rag/backend/internal/prompt"
	"github.com/travel-rag/backend/internal/retriever"
	"github.com/travel-rag/backend/internal/vector/memory"
)

// bagEmbedder embeds text as keyword counts so similarity ranking in tests
// is deterministic.
type bagEmbedder struct {
	vocab []string
	calls int
}

func (b *bagEmbedder) GenerateEmbedding(_ context.Context, text string) ([]float32, error) {
	b.calls++
	lowered := strings.ToLower(text)
	vec := make([]float32, len(b.vocab))
	for i, word := range b.vocab {
		vec[i] = float32(strings.Count(lowered, word))
	}
	return vec, nil
}

func TestProcessDocument_UpsertsOneRecordPerChunk(t *testing.T) {
	embedder := &bagEmbedder{vocab: []string{"gullfoss", "skógafoss"}}
	idx := memory.NewIndex()
	p := NewProcessor(embedder, idx, chunker.NewSplitter(10000, 100), "iceland")

	n, err := p.ProcessDocument(context.Background(), Document{
		Name: "waterfalls.txt",
		Pages: []string{
			"Skógafoss waterfall, free entry, open 24h",
			"Gullfoss waterfall, free entry",
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, 2, idx.Len())
}

func TestProcessDocument_ReingestionDoesNotDuplicate(t *testing.T) {
	embedder := &bagEmbedder{vocab: []string{"gullfoss"}}
	idx := memory.NewIndex()
	p := NewProcessor(embedder, idx, chunker.NewSplitter(10000, 100), "iceland")

	doc := Document{Name: "waterfalls.txt", Pages: []string{"Gullfoss waterfall, free entry"}}

	_, err := p.ProcessDocument(context.Background(), doc)
	require.NoError(t, err)
	_, err = p.ProcessDocument(context.Background(), doc)
	require.NoError(t, err)

	assert.Equal(t, 1, idx.Len(), "deterministic IDs overwrite on re-ingestion")
}

// failingEmbedder fails every call with a fixed error.
type failingEmbedder struct {
	calls int
	err   error
}

func (f *failingEmbedder) GenerateEmbedding(_ context.Context, _ string) ([]float32, error) {
	f.calls++
	return nil, f.err
}

func TestProcessDocument_OversizedChunkFailsWithoutRetry(t *testing.T) {
	embedder := &failingEmbedder{err: &llm.InputTooLargeError{Tokens: 9000, Limit: llm.MaxEmbeddingTokens}}
	p := NewProcessor(embedder, memory.NewIndex(), chunker.NewSplitter(10000, 100), "iceland")

	_, err := p.ProcessDocument(context.Background(), Document{
		Name:  "huge.txt",
		Pages: []string{"some page"},
	})

	var tooLarge *llm.InputTooLargeError
	require.ErrorAs(t, err, &tooLarge)
	assert.Equal(t, 1, embedder.calls, "a permanent failure must not be retried")
}

func TestProcessDocument_TransientEmbeddingFailureIsRetried(t *testing.T) {
	embedder := &failingEmbedder{err: fmt.Errorf("%w: rate limited", llm.ErrEmbeddingService)}
	p := NewProcessor(embedder, memory.NewIndex(), chunker.NewSplitter(10000, 100), "iceland")

	_, err := p.ProcessDocument(context.Background(), Document{
		Name:  "busy.txt",
		Pages: []string{"some page"},
	})

	require.ErrorIs(t, err, llm.ErrEmbeddingService)
	assert.Equal(t, 3, embedder.calls, "transient service failures retry to exhaustion")
}

func TestProcessDocument_EmptyDocument(t *testing.T) {
	embedder := &bagEmbedder{vocab: []string{"x"}}
	p := NewProcessor(embedder, memory.NewIndex(), chunker.NewSplitter(100, 0), "iceland")

	n, err := p.ProcessDocument(context.Background(), Document{Name: "empty.txt"})
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Zero(t, embedder.calls)
}

// End-to-end: ingest, retrieve with topK=1, and check the built prompt
// grounds on the right chunk.
func TestIngestRetrievePrompt_EndToEnd(t *testing.T) {
	ctx := context.Background()
	embedder := &bagEmbedder{vocab: []string{"gullfoss", "skógafoss"}}
	idx := memory.NewIndex()

	p := NewProcessor(embedder, idx, chunker.NewSplitter(10000, 100), "iceland")
	_, err := p.ProcessDocument(ctx, Document{
		Name: "waterfalls.txt",
		Pages: []string{
			"Skógafoss waterfall, free entry, open 24h",
			"Gullfoss waterfall, free entry",
		},
	})
	require.NoError(t, err)

	cachePath := filepath.Join(t.TempDir(), "cache.json")
	cache, err := embedding.Open(ctx, embedder, embedding.NewFileStore(cachePath))
	require.NoError(t, err)
	defer cache.Close()

	r := retriever.New(cache, idx, 1)

	chunks, err := r.Retrieve(ctx, "tell me about Gullfoss")
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, "Gullfoss waterfall, free entry", chunks[0])

	built, err := prompt.NewBuilder(r).Build(ctx, "tell me about Gullfoss")
	require.NoError(t, err)
	assert.True(t, built.Grounded)
	assert.Contains(t, built.User, "Gullfoss waterfall, free entry")
	assert.NotContains(t, built.User, "Skógafoss")
}
