package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"github.com/travel-rag/backend/internal/answer"
	"github.com/travel-rag/backend/internal/api/handlers"
	"github.com/travel-rag/backend/internal/chat"
	"github.com/travel-rag/backend/internal/chunker"
	"github.com/travel-rag/backend/internal/embedding"
	"github.com/travel-rag/backend/internal/ingestion"
	"github.com/travel-rag/backend/internal/judge"
	"github.com/travel-rag/backend/internal/llm"
	"github.com/travel-rag/backend/internal/metrics"
	"github.com/travel-rag/backend/internal/prompt"
	"github.com/travel-rag/backend/internal/retriever"
	"github.com/travel-rag/backend/internal/storage/sqlite"
	"github.com/travel-rag/backend/internal/vector/milvus"
	"github.com/travel-rag/backend/pkg/config"
	appLogger "github.com/travel-rag/backend/pkg/logger"
)

func main() {
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

	appLogger.Info("Starting Travel RAG API Server")

	metrics.Init()

	sqliteClient, err := sqlite.NewClient(cfg.SQLite.Path)
	if err != nil {
		appLogger.Fatal("Failed to create SQLite client", zap.Error(err))
	}
	defer sqliteClient.Close()

	err = sqliteClient.InitSchema()
	if err != nil {
		appLogger.Fatal("Failed to initialize schema", zap.Error(err))
	}

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

	err = milvusClient.EnsureCollection(context.Background())
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

	store, err := newCacheStore(cfg)
	if err != nil {
		appLogger.Fatal("Failed to create embedding cache store", zap.Error(err))
	}

	cache, err := embedding.Open(context.Background(), llmClient, store)
	if err != nil {
		appLogger.Fatal("Failed to open embedding cache", zap.Error(err))
	}
	defer cache.Close()

	chunkRetriever := retriever.New(cache, milvusClient, cfg.Retrieval.TopK)
	promptBuilder := prompt.NewBuilder(chunkRetriever)
	generator := answer.NewGenerator(llmClient, cfg.LLM.Temperature)

	chatService := chat.NewService(promptBuilder, generator, sqliteClient)
	answerJudge := judge.New(chunkRetriever, promptBuilder, generator, llmClient, cfg.LLM.JudgeTemperature)

	splitter := chunker.NewSplitter(cfg.Retrieval.ChunkSize, cfg.Retrieval.ChunkOverlap)
	processor := ingestion.NewProcessor(llmClient, milvusClient, splitter, cfg.Ingestion.DatasetName)

	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    cfg.Server.BodyLimit,
	})

	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, PUT, DELETE, OPTIONS",
	}))

	chatHandler := handlers.NewChatHandler(chatService)
	evaluateHandler := handlers.NewEvaluateHandler(answerJudge, sqliteClient)
	ingestHandler := handlers.NewIngestHandler(processor, cfg.Ingestion.DataDir)
	wsHandler := handlers.NewWebSocketHandler(chatService)

	api := app.Group("/api/v1")

	api.Post("/chat", chatHandler.HandleChat)
	api.Get("/chat/history", chatHandler.GetHistory)

	api.Post("/evaluate", evaluateHandler.HandleEvaluate)
	api.Get("/evaluations", evaluateHandler.ListEvaluations)

	api.Post("/ingest", ingestHandler.HandleIngest)

	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Unix(),
		})
	})

	app.Get("/metrics", metrics.MetricsHandler())

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			c.Locals("allowed", true)
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/chat", websocket.New(wsHandler.HandleConnection))

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	appLogger.Info("Server starting", zap.String("address", addr))

	go func() {
		if err := app.Listen(addr); err != nil {
			appLogger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Server shutting down gracefully...")
	app.Shutdown()
	appLogger.Info("Server stopped")
}

func newCacheStore(cfg *config.Config) (embedding.Store, error) {
	switch cfg.Cache.Backend {
	case "redis":
		return embedding.NewRedisStore(
			cfg.Redis.Host,
			cfg.Redis.Port,
			cfg.Redis.Password,
			cfg.Redis.DB,
		)
	case "file", "":
		return embedding.NewFileStore(cfg.Cache.FilePath), nil
	default:
		return nil, fmt.Errorf("unknown cache backend: %s", cfg.Cache.Backend)
	}
}
