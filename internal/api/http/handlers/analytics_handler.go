package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/support-desk/internal/auth"
	"github.com/spec-kit/support-desk/internal/service"
)

// AnalyticsHandler serves ticket metrics.
type AnalyticsHandler struct {
	analytics *service.AnalyticsService
}

// NewAnalyticsHandler constructs handler.
func NewAnalyticsHandler(analytics *service.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{analytics: analytics}
}

// Dashboard GET /analytics/dashboard?period=.
func (h *AnalyticsHandler) Dashboard(c *fiber.Ctx) error {
	actor, err := auth.CurrentUser(c)
	if err != nil {
		return err
	}
	metrics, err := h.analytics.Dashboard(c.UserContext(), actor, c.Query("period"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": metrics})
}

// Advanced GET /analytics/advanced?period=&agentId=.
func (h *AnalyticsHandler) Advanced(c *fiber.Ctx) error {
	actor, err := auth.CurrentUser(c)
	if err != nil {
		return err
	}
	agentID, err := optionalID("agentId", optionalQuery(c, "agentId"))
	if err != nil {
		return err
	}
	metrics, err := h.analytics.Advanced(c.UserContext(), actor, agentID, c.Query("period"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": metrics})
}
