package embedding

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/travel-rag/backend/pkg/logger"
)

// FileStore serializes the cache mapping as a single JSON file, rewritten
// wholesale on each save.
type FileStore struct {
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Load(_ context.Context) (map[string][]float32, bool, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read cache file: %w", err)
	}

	var entries map[string][]float32
	if err := json.Unmarshal(data, &entries); err != nil {
		// A corrupt file is not fatal: start over rather than refuse to run.
		logger.Warn("Embedding cache file corrupt, starting empty",
			zap.String("path", s.path),
			zap.Error(err),
		)
		return nil, false, nil
	}

	return entries, true, nil
}

func (s *FileStore) Save(_ context.Context, entries map[string][]float32) error {
	data, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("failed to marshal cache entries: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}

	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write cache file: %w", err)
	}

	return nil
}

func (s *FileStore) Close() error {
	return nil
}
