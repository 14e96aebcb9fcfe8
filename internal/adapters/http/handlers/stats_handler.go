package handlers

import (
	"aquahope-backend/internal/core/services"
	"aquahope-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// StatsHandler handles platform statistics endpoints
type StatsHandler struct {
	statsService *services.StatsService
}

// NewStatsHandler creates a new stats handler
func NewStatsHandler(statsService *services.StatsService) *StatsHandler {
	return &StatsHandler{statsService: statsService}
}

// Platform handles the public platform statistics view
// @Summary Get platform stats
// @Description Get aggregate donation, badge, credit, proposal and pool figures
// @Tags Stats
// @Produce json
// @Success 200 {object} response.Response
// @Router /stats [get]
func (h *StatsHandler) Platform(c *fiber.Ctx) error {
	stats, err := h.statsService.GetPlatformStats(c.Context())
	if err != nil {
		return response.InternalServerError(c, "Failed to load platform stats")
	}

	return response.Success(c, "Platform stats retrieved successfully", stats)
}
