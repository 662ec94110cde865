package embedding

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/travel-rag/backend/pkg/logger"
)

const redisHashKey = "embedding:query_cache"

// RedisStore keeps the cache mapping in a single Redis hash, one field per
// query string with a JSON-encoded vector.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(host string, port int, password string, db int) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", host, port),
		Password: password,
		DB:       db,
	})

	if _, err := client.Ping(context.Background()).Result(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	logger.Info("Redis cache store initialized", zap.String("addr", fmt.Sprintf("%s:%d", host, port)))

	return &RedisStore{client: client}, nil
}

func (s *RedisStore) Load(ctx context.Context) (map[string][]float32, bool, error) {
	fields, err := s.client.HGetAll(ctx, redisHashKey).Result()
	if err != nil {
		return nil, false, fmt.Errorf("failed to load cache hash: %w", err)
	}

	if len(fields) == 0 {
		return nil, false, nil
	}

	entries := make(map[string][]float32, len(fields))
	for query, raw := range fields {
		var embedding []float32
		if err := json.Unmarshal([]byte(raw), &embedding); err != nil {
			logger.Warn("Skipping corrupt cache entry", zap.Error(err))
			continue
		}
		entries[query] = embedding
	}

	return entries, true, nil
}

func (s *RedisStore) Save(ctx context.Context, entries map[string][]float32) error {
	pipe := s.client.Pipeline()
	for query, embedding := range entries {
		data, err := json.Marshal(embedding)
		if err != nil {
			return fmt.Errorf("failed to marshal embedding: %w", err)
		}
		pipe.HSet(ctx, redisHashKey, query, data)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save cache hash: %w", err)
	}

	return nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
