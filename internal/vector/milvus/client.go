// Package milvus adapts the Milvus vector store to the vector.Index
// boundary.
package milvus

import (
	"context"
	"fmt"

	"github.com/milvus-io/milvus-sdk-go/v2/client"
	"github.com/milvus-io/milvus-sdk-go/v2/entity"
	"go.uber.org/zap"

	"github.com/travel-rag/backend/internal/vector"
	"github.com/travel-rag/backend/pkg/logger"
)

const searchEf = 64

type Client struct {
	client         client.Client
	collectionName string
	vectorDim      int
	efConstruction int
	m              int
}

func NewClient(endpoint, collectionName string, vectorDim, efConstruction, m int) (*Client, error) {
	c, err := client.NewGrpcClient(context.Background(), endpoint)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to connect to %s: %v", vector.ErrIndexUnavailable, endpoint, err)
	}

	logger.Info("Milvus client initialized",
		zap.String("endpoint", endpoint),
		zap.String("collection", collectionName),
	)

	return &Client{
		client:         c,
		collectionName: collectionName,
		vectorDim:      vectorDim,
		efConstruction: efConstruction,
		m:              m,
	}, nil
}

func (c *Client) Close() error {
	return c.client.Close()
}

// EnsureCollection creates and loads the collection if absent. The HNSW
// build parameters apply at creation time only.
func (c *Client) EnsureCollection(ctx context.Context) error {
	has, err := c.client.HasCollection(ctx, c.collectionName)
	if err != nil {
		return fmt.Errorf("%w: failed to check collection: %v", vector.ErrIndexUnavailable, err)
	}

	if has {
		logger.Info("Collection already exists", zap.String("collection", c.collectionName))
		return nil
	}

	schema := &entity.Schema{
		CollectionName: c.collectionName,
		Description:    "Travel document chunk embeddings",
		Fields: []*entity.Field{
			{
				Name:       "chunk_id",
				DataType:   entity.FieldTypeVarChar,
				PrimaryKey: true,
				AutoID:     false,
				TypeParams: map[string]string{
					"max_length": "512",
				},
			},
			{
				Name:     "embedding",
				DataType: entity.FieldTypeFloatVector,
				TypeParams: map[string]string{
					"dim": fmt.Sprintf("%d", c.vectorDim),
				},
			},
			{
				Name:     "dataset",
				DataType: entity.FieldTypeVarChar,
				TypeParams: map[string]string{
					"max_length": "128",
				},
			},
			{
				Name:     "file_name",
				DataType: entity.FieldTypeVarChar,
				TypeParams: map[string]string{
					"max_length": "256",
				},
			},
			{
				Name:     "chunk_index",
				DataType: entity.FieldTypeInt64,
			},
			{
				Name:     "text",
				DataType: entity.FieldTypeVarChar,
				TypeParams: map[string]string{
					"max_length": "65535",
				},
			},
		},
	}

	if err := c.client.CreateCollection(ctx, schema, entity.DefaultShardNumber); err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}

	idx, err := entity.NewIndexHNSW(entity.L2, c.m, c.efConstruction)
	if err != nil {
		return fmt.Errorf("failed to build index definition: %w", err)
	}
	if err := c.client.CreateIndex(ctx, c.collectionName, "embedding", idx, false); err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}

	if err := c.client.LoadCollection(ctx, c.collectionName, false); err != nil {
		return fmt.Errorf("failed to load collection: %w", err)
	}

	logger.Info("Collection created and loaded",
		zap.String("collection", c.collectionName),
		zap.Int("ef_construction", c.efConstruction),
		zap.Int("m", c.m),
	)

	return nil
}

func (c *Client) Upsert(ctx context.Context, records []vector.Record) error {
	if len(records) == 0 {
		return nil
	}

	chunkIDs := make([]string, len(records))
	embeddings := make([][]float32, len(records))
	datasets := make([]string, len(records))
	fileNames := make([]string, len(records))
	chunkIndexes := make([]int64, len(records))
	texts := make([]string, len(records))

	for i, record := range records {
		chunkIDs[i] = record.ID
		embeddings[i] = record.Embedding
		datasets[i] = record.Dataset
		fileNames[i] = record.FileName
		chunkIndexes[i] = int64(record.ChunkIndex)
		texts[i] = record.Text
	}

	_, err := c.client.Upsert(
		ctx,
		c.collectionName,
		"",
		entity.NewColumnVarChar("chunk_id", chunkIDs),
		entity.NewColumnFloatVector("embedding", c.vectorDim, embeddings),
		entity.NewColumnVarChar("dataset", datasets),
		entity.NewColumnVarChar("file_name", fileNames),
		entity.NewColumnInt64("chunk_index", chunkIndexes),
		entity.NewColumnVarChar("text", texts),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert chunks: %w", err)
	}

	if err := c.client.Flush(ctx, c.collectionName, false); err != nil {
		return fmt.Errorf("failed to flush: %w", err)
	}

	logger.Info("Chunks upserted into vector index", zap.Int("count", len(records)))

	return nil
}

func (c *Client) Search(ctx context.Context, embedding []float32, topK int) ([]vector.Result, error) {
	sp, err := entity.NewIndexHNSWSearchParam(searchEf)
	if err != nil {
		return nil, fmt.Errorf("failed to build search params: %w", err)
	}

	searchResult, err := c.client.Search(
		ctx,
		c.collectionName,
		[]string{},
		"",
		[]string{"chunk_id", "dataset", "file_name", "chunk_index", "text"},
		[]entity.Vector{entity.FloatVector(embedding)},
		"embedding",
		entity.L2,
		topK,
		sp,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: search failed: %v", vector.ErrIndexUnavailable, err)
	}

	results := make([]vector.Result, 0)
	for _, sr := range searchResult {
		chunkIDCol := sr.Fields.GetColumn("chunk_id")
		datasetCol := sr.Fields.GetColumn("dataset")
		fileNameCol := sr.Fields.GetColumn("file_name")
		chunkIndexCol := sr.Fields.GetColumn("chunk_index")
		textCol := sr.Fields.GetColumn("text")

		for i := 0; i < sr.ResultCount; i++ {
			text, err := textCol.GetAsString(i)
			if err != nil || text == "" {
				// Partial metadata must not abort the query.
				continue
			}

			chunkID, _ := chunkIDCol.GetAsString(i)
			dataset, _ := datasetCol.GetAsString(i)
			fileName, _ := fileNameCol.GetAsString(i)
			chunkIndex, _ := chunkIndexCol.GetAsInt64(i)

			results = append(results, vector.Result{
				Record: vector.Record{
					ID:         chunkID,
					Dataset:    dataset,
					FileName:   fileName,
					ChunkIndex: int(chunkIndex),
					Text:       text,
				},
				Score: sr.Scores[i],
			})
		}
	}

	logger.Debug("Vector search completed",
		zap.Int("top_k", topK),
		zap.Int("results", len(results)),
	)

	return results, nil
}
