package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/support-desk/internal/api/dto"
	"github.com/spec-kit/support-desk/internal/auth"
	"github.com/spec-kit/support-desk/internal/service"
)

// AIHandler exposes synchronous text processing.
type AIHandler struct {
	enrichment *service.EnrichmentService
}

// NewAIHandler constructs handler.
func NewAIHandler(enrichment *service.EnrichmentService) *AIHandler {
	return &AIHandler{enrichment: enrichment}
}

// ProcessText POST /ai/process.
func (h *AIHandler) ProcessText(c *fiber.Ctx) error {
	actor, err := auth.CurrentUser(c)
	if err != nil {
		return err
	}
	var req dto.ProcessTextRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	out, err := h.enrichment.ProcessText(c.UserContext(), actor, req.Text, req.Instruction)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.ProcessTextResponse{Result: out}})
}
