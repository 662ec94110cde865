// Package memory provides an in-process vector.Index backed by exhaustive
// cosine search. It backs tests and local runs without a Milvus instance.
package memory

import (
	"context"
	"math"
	"sort"
	"sync"

	"github.com/travel-rag/backend/internal/vector"
)

type Index struct {
	mu      sync.RWMutex
	records map[string]vector.Record
}

func NewIndex() *Index {
	return &Index{records: make(map[string]vector.Record)}
}

func (i *Index) Upsert(_ context.Context, records []vector.Record) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	for _, record := range records {
		i.records[record.ID] = record
	}
	return nil
}

func (i *Index) Search(_ context.Context, embedding []float32, topK int) ([]vector.Result, error) {
	i.mu.RLock()
	defer i.mu.RUnlock()

	results := make([]vector.Result, 0, len(i.records))
	for _, record := range i.records {
		if record.Text == "" {
			continue
		}
		results = append(results, vector.Result{
			Record: record,
			Score:  float32(cosineSimilarity(embedding, record.Embedding)),
		})
	}

	sort.Slice(results, func(a, b int) bool {
		return results[a].Score > results[b].Score
	})

	if topK < len(results) {
		results = results[:topK]
	}
	return results, nil
}

func (i *Index) Len() int {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return len(i.records)
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}

	var dotProduct, normA, normB float64
	for i := range a {
		dotProduct += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))
}
