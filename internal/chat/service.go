// Package chat orchestrates one question/answer exchange: prompt
// assembly, answer generation, and history recording.
package chat

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/travel-rag/backend/internal/answer"
	"github.com/travel-rag/backend/internal/metrics"
	"github.com/travel-rag/backend/internal/prompt"
	"github.com/travel-rag/backend/internal/storage/models"
	"github.com/travel-rag/backend/internal/storage/sqlite"
	"github.com/travel-rag/backend/pkg/logger"
)

type Service struct {
	builder   *prompt.Builder
	generator *answer.Generator
	db        *sqlite.Client
}

type Response struct {
	ID        string
	Question  string
	Answer    string
	Grounded  bool
	LatencyMS int
}

// NewService wires the pipeline. db may be nil to disable history.
func NewService(builder *prompt.Builder, generator *answer.Generator, db *sqlite.Client) *Service {
	return &Service{
		builder:   builder,
		generator: generator,
		db:        db,
	}
}

// Ask answers question in one blocking call.
func (s *Service) Ask(ctx context.Context, sessionID, question string) (*Response, error) {
	start := time.Now()

	p, err := s.builder.Build(ctx, question)
	if err != nil {
		metrics.QueryTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	text, err := s.generator.Generate(ctx, p)
	if err != nil {
		metrics.QueryTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("failed to answer question: %w", err)
	}

	return s.finish(sessionID, question, text, p.Grounded, start, "blocking"), nil
}

// AskStream answers question incrementally, delivering partial text as it
// arrives, and returns the assembled response once the stream completes.
func (s *Service) AskStream(ctx context.Context, sessionID, question string, deliver func(delta string) error) (*Response, error) {
	start := time.Now()

	p, err := s.builder.Build(ctx, question)
	if err != nil {
		metrics.QueryTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	var full strings.Builder
	err = s.generator.Stream(ctx, p, func(delta string) error {
		full.WriteString(delta)
		return deliver(delta)
	})
	if err != nil {
		metrics.QueryTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("failed to stream answer: %w", err)
	}

	return s.finish(sessionID, question, full.String(), p.Grounded, start, "streaming"), nil
}

func (s *Service) finish(sessionID, question, text string, grounded bool, start time.Time, mode string) *Response {
	latency := time.Since(start)
	metrics.QueryTotal.WithLabelValues("success").Inc()
	metrics.QueryDuration.WithLabelValues(mode).Observe(latency.Seconds())

	resp := &Response{
		ID:        uuid.New().String(),
		Question:  question,
		Answer:    text,
		Grounded:  grounded,
		LatencyMS: int(latency.Milliseconds()),
	}

	s.record(sessionID, question, resp)

	logger.Info("Question answered",
		zap.String("id", resp.ID),
		zap.String("mode", mode),
		zap.Bool("grounded", grounded),
		zap.Int("latency_ms", resp.LatencyMS),
	)

	return resp
}

// record persists both turns. History failures are logged, not surfaced:
// losing a history row must not fail an answered question.
func (s *Service) record(sessionID, question string, resp *Response) {
	if s.db == nil || sessionID == "" {
		return
	}

	now := time.Now()
	if err := s.db.InsertMessage(&models.ChatMessage{
		ID:        uuid.New().String(),
		SessionID: sessionID,
		Role:      "user",
		Content:   question,
		CreatedAt: now,
	}); err != nil {
		logger.Warn("Failed to record user message", zap.Error(err))
	}

	if err := s.db.InsertMessage(&models.ChatMessage{
		ID:        resp.ID,
		SessionID: sessionID,
		Role:      "assistant",
		Content:   resp.Answer,
		CreatedAt: now,
	}); err != nil {
		logger.Warn("Failed to record assistant message", zap.Error(err))
	}
}

// History returns the session's messages, oldest first.
func (s *Service) History(sessionID string, limit int) ([]models.ChatMessage, error) {
	if s.db == nil {
		return nil, nil
	}
	return s.db.ListMessages(sessionID, limit)
}
