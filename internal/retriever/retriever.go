// Package retriever resolves a free-text query to the most relevant chunk
// texts via the embedding cache and the vector index.
package retriever

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/travel-rag/backend/internal/metrics"
	"github.com/travel-rag/backend/internal/vector"
	"github.com/travel-rag/backend/pkg/logger"
)

const DefaultTopK = 10

// EmbeddingResolver yields the query embedding, cached or fresh.
// Implemented by *embedding.Cache.
type EmbeddingResolver interface {
	LookupOrCreate(ctx context.Context, query string) ([]float32, error)
}

type Retriever struct {
	cache EmbeddingResolver
	index vector.Index
	topK  int
}

func New(cache EmbeddingResolver, index vector.Index, topK int) *Retriever {
	if topK <= 0 {
		topK = DefaultTopK
	}
	return &Retriever{
		cache: cache,
		index: index,
		topK:  topK,
	}
}

// Retrieve returns up to topK chunk texts ranked by similarity to query.
// An empty index yields an empty slice and no error: callers treat that as
// "no grounding available", not a fault.
func (r *Retriever) Retrieve(ctx context.Context, query string) ([]string, error) {
	embedding, err := r.cache.LookupOrCreate(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve query embedding: %w", err)
	}

	results, err := r.index.Search(ctx, embedding, r.topK)
	if err != nil {
		return nil, fmt.Errorf("failed to search index: %w", err)
	}

	chunks := make([]string, 0, len(results))
	for _, result := range results {
		chunks = append(chunks, result.Text)
	}

	metrics.RetrievalResults.Observe(float64(len(chunks)))
	logger.Debug("Chunks retrieved",
		zap.Int("top_k", r.topK),
		zap.Int("results", len(chunks)),
	)

	return chunks, nil
}
