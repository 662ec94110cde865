// Package vector defines the index boundary: insertion and
// nearest-neighbor search over chunk records keyed by dataset, file, and
// chunk position.
package vector

import (
	"context"
	"errors"
	"fmt"
)

// ErrIndexUnavailable reports an unreachable store or missing collection.
var ErrIndexUnavailable = errors.New("vector index unavailable")

// Record is one stored chunk: identifier, embedding, and metadata. Text is
// duplicated into the record so retrieval needs no second lookup.
type Record struct {
	ID         string
	Embedding  []float32
	Dataset    string
	FileName   string
	ChunkIndex int
	Text       string
}

// Result is a search hit with the store's distance score.
type Result struct {
	Record
	Score float32
}

// Index is implemented by the Milvus adapter and the in-memory index.
type Index interface {
	// Upsert writes records; an existing ID is overwritten, making
	// re-ingestion of the same inputs idempotent.
	Upsert(ctx context.Context, records []Record) error
	// Search returns up to topK nearest records. Records without text are
	// excluded rather than failing the query.
	Search(ctx context.Context, embedding []float32, topK int) ([]Result, error)
}

// RecordID forms the globally unique chunk identifier.
func RecordID(dataset, fileName string, chunkIndex int) string {
	return fmt.Sprintf("%s_%s_chunk_%d", dataset, fileName, chunkIndex)
}
