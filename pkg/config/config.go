package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Milvus    MilvusConfig
	Redis     RedisConfig
	SQLite    SQLiteConfig
	LLM       LLMConfig
	Retrieval RetrievalConfig
	Cache     CacheConfig
	Ingestion IngestionConfig
	Logging   LoggingConfig
}

type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  int
	WriteTimeout int
	BodyLimit    int
}

type MilvusConfig struct {
	Endpoint       string
	CollectionName string
	VectorDim      int
	// HNSW build parameters, applied at collection creation only.
	EfConstruction int
	M              int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type SQLiteConfig struct {
	Path string
}

type LLMConfig struct {
	APIKey         string
	Model          string
	EmbeddingModel string
	// Temperature for user-facing answers. The judge runs at JudgeTemperature.
	Temperature      float32
	JudgeTemperature float32
	MaxTokens        int
}

type RetrievalConfig struct {
	// ChunkSize and ChunkOverlap are in characters.
	ChunkSize    int
	ChunkOverlap int
	TopK         int
}

type CacheConfig struct {
	// Backend selects the embedding cache store: "file" or "redis".
	Backend  string
	FilePath string
}

type IngestionConfig struct {
	DataDir     string
	DatasetName string
}

type LoggingConfig struct {
	Level      string
	Format     string
	OutputPath string
}

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("/etc/travel-rag")

	viper.SetEnvPrefix("TRAVEL_RAG")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &config, nil
}

func setDefaults() {
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.readTimeout", 30)
	viper.SetDefault("server.writeTimeout", 120)
	viper.SetDefault("server.bodyLimit", 10485760)

	viper.SetDefault("milvus.endpoint", "localhost:19530")
	viper.SetDefault("milvus.collectionName", "csv_embeddings")
	viper.SetDefault("milvus.vectorDim", 3072)
	viper.SetDefault("milvus.efConstruction", 200)
	viper.SetDefault("milvus.m", 16)

	viper.SetDefault("redis.host", "localhost")
	viper.SetDefault("redis.port", 6379)
	viper.SetDefault("redis.db", 0)

	viper.SetDefault("sqlite.path", "./data/travelrag.db")

	viper.SetDefault("llm.model", "gpt-4o")
	viper.SetDefault("llm.embeddingModel", "text-embedding-3-large")
	viper.SetDefault("llm.temperature", 0.7)
	viper.SetDefault("llm.judgeTemperature", 0.2)
	viper.SetDefault("llm.maxTokens", 2048)

	viper.SetDefault("retrieval.chunkSize", 10000)
	viper.SetDefault("retrieval.chunkOverlap", 100)
	viper.SetDefault("retrieval.topK", 10)

	viper.SetDefault("cache.backend", "file")
	viper.SetDefault("cache.filePath", "./data/query_embeddings_cache.json")

	viper.SetDefault("ingestion.dataDir", "./data/documents")
	viper.SetDefault("ingestion.datasetName", "iceland")

	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "json")
	viper.SetDefault("logging.outputPath", "stdout")
}
