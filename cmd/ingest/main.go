package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/travel-rag/backend/internal/chunker"
	"github.com/travel-rag/backend/internal/ingestion"
	"github.com/travel-rag/backend/internal/llm"
	"github.com/travel-rag/backend/internal/metrics"
	"github.com/travel-rag/backend/internal/vector/milvus"
	"github.com/travel-rag/backend/pkg/config"
	appLogger "github.com/travel-rag/backend/pkg/logger"
)

func main() {
	dir := flag.String("dir", "", "directory of documents to ingest (defaults to ingestion.dataDir)")
	dataset := flag.String("dataset", "", "dataset name for record IDs (defaults to ingestion.datasetName)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	err = appLogger.Init(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.OutputPath)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer appLogger.Sync()

	metrics.Init()

	if *dir == "" {
		*dir = cfg.Ingestion.DataDir
	}
	if *dataset == "" {
		*dataset = cfg.Ingestion.DatasetName
	}

	appLogger.Info("Starting ingestion",
		zap.String("dir", *dir),
		zap.String("dataset", *dataset),
	)

	milvusClient, err := milvus.NewClient(
		cfg.Milvus.Endpoint,
		cfg.Milvus.CollectionName,
		cfg.Milvus.VectorDim,
		cfg.Milvus.EfConstruction,
		cfg.Milvus.M,
	)
	if err != nil {
		appLogger.Fatal("Failed to create Milvus client", zap.Error(err))
	}
	defer milvusClient.Close()

	ctx := context.Background()

	err = milvusClient.EnsureCollection(ctx)
	if err != nil {
		appLogger.Fatal("Failed to ensure collection", zap.Error(err))
	}

	llmClient := llm.NewClient(
		cfg.LLM.APIKey,
		cfg.LLM.Model,
		cfg.LLM.EmbeddingModel,
		cfg.LLM.Temperature,
		cfg.LLM.MaxTokens,
	)

	splitter := chunker.NewSplitter(cfg.Retrieval.ChunkSize, cfg.Retrieval.ChunkOverlap)
	processor := ingestion.NewProcessor(llmClient, milvusClient, splitter, *dataset)

	chunks, err := processor.ProcessDirectory(ctx, *dir)
	if err != nil {
		appLogger.Fatal("Ingestion failed", zap.Error(err))
	}

	appLogger.Info("Ingestion finished", zap.Int("chunks", chunks))
}
