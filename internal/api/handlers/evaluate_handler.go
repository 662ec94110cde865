package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/travel-rag/backend/internal/judge"
	"github.com/travel-rag/backend/internal/storage/models"
	"github.com/travel-rag/backend/internal/storage/sqlite"
	"github.com/travel-rag/backend/pkg/logger"
)

type EvaluateHandler struct {
	judge *judge.Judge
	db    *sqlite.Client
}

func NewEvaluateHandler(j *judge.Judge, db *sqlite.Client) *EvaluateHandler {
	return &EvaluateHandler{judge: j, db: db}
}

func (h *EvaluateHandler) HandleEvaluate(c *fiber.Ctx) error {
	var req struct {
		Question string `json:"question"`
	}

	if err := c.BodyParser(&req); err != nil {
		logger.Error("Failed to parse request body", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if req.Question == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Question is required",
		})
	}

	verdict, err := h.judge.Evaluate(c.Context(), req.Question)
	if err != nil {
		logger.Error("Failed to evaluate question", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to evaluate question",
		})
	}

	if h.db != nil {
		if err := h.db.InsertEvaluation(&models.Evaluation{
			Question:  req.Question,
			Verdict:   verdict,
			CreatedAt: time.Now(),
		}); err != nil {
			logger.Warn("Failed to store evaluation", zap.Error(err))
		}
	}

	return c.JSON(fiber.Map{
		"question":   req.Question,
		"evaluation": verdict,
	})
}

func (h *EvaluateHandler) ListEvaluations(c *fiber.Ctx) error {
	if h.db == nil {
		return c.JSON(fiber.Map{"evaluations": []fiber.Map{}})
	}

	limit := c.QueryInt("limit", 20)
	evals, err := h.db.ListEvaluations(limit)
	if err != nil {
		logger.Error("Failed to list evaluations", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to list evaluations",
		})
	}

	out := make([]fiber.Map, 0, len(evals))
	for _, eval := range evals {
		out = append(out, fiber.Map{
			"id":         eval.ID,
			"question":   eval.Question,
			"evaluation": eval.Verdict,
			"created_at": eval.CreatedAt.Unix(),
		})
	}

	return c.JSON(fiber.Map{"evaluations": out})
}
