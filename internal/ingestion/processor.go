// Package ingestion runs the offline build: documents are chunked,
// embedded, and upserted into the vector index.
package ingestion

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/travel-rag/backend/internal/chunker"
	"github.com/travel-rag/backend/internal/embedding"
	"github.com/travel-rag/backend/internal/llm"
	"github.com/travel-rag/backend/internal/metrics"
	"github.com/travel-rag/backend/internal/vector"
	"github.com/travel-rag/backend/pkg/logger"
	"github.com/travel-rag/backend/pkg/retry"
)

type Processor struct {
	embedder embedding.Embedder
	index    vector.Index
	splitter *chunker.Splitter
	dataset  string
	retryCfg retry.Config
}

func NewProcessor(embedder embedding.Embedder, index vector.Index, splitter *chunker.Splitter, dataset string) *Processor {
	retryCfg := retry.DefaultConfig()
	retryCfg.Logger = logger.GetLogger()
	// Only transient service failures are retried. An oversized chunk
	// fails the same way on every attempt.
	retryCfg.RetryableErrors = []error{llm.ErrEmbeddingService}

	return &Processor{
		embedder: embedder,
		index:    index,
		splitter: splitter,
		dataset:  dataset,
		retryCfg: retryCfg,
	}
}

// ProcessDocument chunks one document, embeds each chunk, and upserts the
// records. Record IDs are deterministic, so re-running ingestion over the
// same inputs overwrites rather than duplicates.
func (p *Processor) ProcessDocument(ctx context.Context, doc Document) (int, error) {
	var chunks []string
	switch {
	case len(doc.Rows) > 0:
		chunks = p.splitter.SplitRows(doc.Rows)
	case len(doc.Pages) > 0:
		chunks = p.splitter.SplitPages(doc.Pages)
	}

	if len(chunks) == 0 {
		logger.Warn("Document produced no chunks", zap.String("file", doc.Name))
		return 0, nil
	}

	logger.Info("Document chunked",
		zap.String("file", doc.Name),
		zap.Int("chunks", len(chunks)),
	)

	records := make([]vector.Record, 0, len(chunks))
	for i, text := range chunks {
		var emb []float32
		err := retry.Do(ctx, p.retryCfg, func() error {
			var embedErr error
			emb, embedErr = p.embedder.GenerateEmbedding(ctx, text)
			return embedErr
		})
		if err != nil {
			return 0, fmt.Errorf("failed to embed chunk %d of %s: %w", i, doc.Name, err)
		}

		records = append(records, vector.Record{
			ID:         vector.RecordID(p.dataset, doc.Name, i),
			Embedding:  emb,
			Dataset:    p.dataset,
			FileName:   doc.Name,
			ChunkIndex: i,
			Text:       text,
		})
	}

	if err := p.index.Upsert(ctx, records); err != nil {
		return 0, fmt.Errorf("failed to upsert chunks for %s: %w", doc.Name, err)
	}

	metrics.DocumentsIngested.Inc()
	metrics.ChunksIngested.Add(float64(len(records)))

	logger.Info("Document ingested",
		zap.String("file", doc.Name),
		zap.String("dataset", p.dataset),
		zap.Int("chunks", len(records)),
	)

	return len(records), nil
}

// ProcessDirectory ingests every supported file in dir.
func (p *Processor) ProcessDirectory(ctx context.Context, dir string) (int, error) {
	docs, err := DiscoverDocuments(dir)
	if err != nil {
		return 0, err
	}

	total := 0
	for _, doc := range docs {
		n, err := p.ProcessDocument(ctx, doc)
		if err != nil {
			return total, err
		}
		total += n
	}

	logger.Info("Ingestion complete",
		zap.String("dir", dir),
		zap.Int("documents", len(docs)),
		zap.Int("chunks", total),
	)

	return total, nil
}
