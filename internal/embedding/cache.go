// Package embedding provides a durable query-text to embedding-vector
// cache in front of the embedding service. Lookups are exact string match
// only.
package embedding

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/travel-rag/backend/internal/metrics"
	"github.com/travel-rag/backend/pkg/logger"
)

// Embedder produces an embedding vector for a piece of text. Implemented
// by *llm.Client.
type Embedder interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
}

// Store persists the whole cache mapping. Load distinguishes an absent
// store (found=false, start empty) from a populated one.
type Store interface {
	Load(ctx context.Context) (entries map[string][]float32, found bool, err error)
	Save(ctx context.Context, entries map[string][]float32) error
	Close() error
}

// Cache holds every entry in memory and writes the store through
// synchronously on each miss. Single-process use only: concurrent
// processes sharing one store lose updates last-writer-wins.
type Cache struct {
	mu       sync.Mutex
	embedder Embedder
	store    Store
	entries  map[string][]float32
}

// Open loads the store wholesale. An absent store starts the cache empty.
func Open(ctx context.Context, embedder Embedder, store Store) (*Cache, error) {
	entries, found, err := store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load embedding cache: %w", err)
	}

	if !found {
		entries = make(map[string][]float32)
		logger.Info("Embedding cache store absent, starting empty")
	} else {
		logger.Info("Embedding cache loaded", zap.Int("entries", len(entries)))
	}

	return &Cache{
		embedder: embedder,
		store:    store,
		entries:  entries,
	}, nil
}

// LookupOrCreate returns the cached embedding for query, or embeds it,
// stores the result under the exact query string, and persists the cache
// before returning.
func (c *Cache) LookupOrCreate(ctx context.Context, query string) ([]float32, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if embedding, ok := c.entries[query]; ok {
		metrics.CacheHits.WithLabelValues("embedding").Inc()
		logger.Debug("Embedding cache hit", zap.Int("query_length", len(query)))
		return embedding, nil
	}

	metrics.CacheMisses.WithLabelValues("embedding").Inc()

	embedding, err := c.embedder.GenerateEmbedding(ctx, query)
	if err != nil {
		return nil, err
	}

	c.entries[query] = embedding
	if err := c.store.Save(ctx, c.entries); err != nil {
		return nil, fmt.Errorf("failed to persist embedding cache: %w", err)
	}

	return embedding, nil
}

// Len reports the number of cached entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *Cache) Close() error {
	return c.store.Close()
}
