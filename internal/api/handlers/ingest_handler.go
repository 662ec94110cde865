package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/travel-rag/backend/internal/ingestion"
	"github.com/travel-rag/backend/pkg/logger"
)

type IngestHandler struct {
	processor *ingestion.Processor
	dataDir   string
}

func NewIngestHandler(processor *ingestion.Processor, dataDir string) *IngestHandler {
	return &IngestHandler{processor: processor, dataDir: dataDir}
}

// HandleIngest re-runs ingestion over the configured document directory.
// Record IDs are deterministic, so repeated calls are safe.
func (h *IngestHandler) HandleIngest(c *fiber.Ctx) error {
	var req struct {
		Dir string `json:"dir"`
	}

	// Body is optional; an empty body means the configured directory.
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			logger.Error("Failed to parse request body", zap.Error(err))
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid request body",
			})
		}
	}

	dir := req.Dir
	if dir == "" {
		dir = h.dataDir
	}

	chunks, err := h.processor.ProcessDirectory(c.Context(), dir)
	if err != nil {
		logger.Error("Ingestion failed", zap.String("dir", dir), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Ingestion failed",
		})
	}

	return c.JSON(fiber.Map{
		"dir":    dir,
		"chunks": chunks,
	})
}
