package handlers

import (
	"context"

	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"github.com/travel-rag/backend/internal/chat"
	"github.com/travel-rag/backend/pkg/logger"
)

// WebSocketHandler streams answer deltas to the client as the LLM
// produces them.
type WebSocketHandler struct {
	service *chat.Service
}

func NewWebSocketHandler(service *chat.Service) *WebSocketHandler {
	return &WebSocketHandler{service: service}
}

func (h *WebSocketHandler) HandleConnection(c *websocket.Conn) {
	logger.Info("WebSocket connection established")

	defer func() {
		c.Close()
		logger.Info("WebSocket connection closed")
	}()

	for {
		var msg struct {
			Type      string `json:"type"`
			Content   string `json:"content"`
			SessionID string `json:"session_id"`
		}

		if err := c.ReadJSON(&msg); err != nil {
			logger.Debug("WebSocket read ended", zap.Error(err))
			break
		}

		if msg.Type != "query" || msg.Content == "" {
			continue
		}

		if err := h.streamResponse(c, msg.SessionID, msg.Content); err != nil {
			logger.Error("Failed to stream response", zap.Error(err))
			h.sendError(c, "Failed to answer question")
		}
	}
}

func (h *WebSocketHandler) streamResponse(c *websocket.Conn, sessionID, question string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	resp, err := h.service.AskStream(ctx, sessionID, question, func(delta string) error {
		return c.WriteJSON(map[string]interface{}{
			"type":    "chunk",
			"content": delta,
		})
	})
	if err != nil {
		return err
	}

	return c.WriteJSON(map[string]interface{}{
		"type":       "complete",
		"message_id": resp.ID,
		"grounded":   resp.Grounded,
		"latency_ms": resp.LatencyMS,
	})
}

func (h *WebSocketHandler) sendError(c *websocket.Conn, errorMsg string) {
	c.WriteJSON(map[string]interface{}{
		"type":  "error",
		"error": errorMsg,
	})
}
