package handlers

import (
	"errors"
	"strconv"

	"aquahope-backend/internal/core/domain"
	"aquahope-backend/internal/core/services"
	"aquahope-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// BadgeHandler handles donor badge endpoints
type BadgeHandler struct {
	ledgerService *services.LedgerService
}

// NewBadgeHandler creates a new badge handler
func NewBadgeHandler(ledgerService *services.LedgerService) *BadgeHandler {
	return &BadgeHandler{ledgerService: ledgerService}
}

// Get handles fetching a badge by ID
// @Summary Get a badge
// @Description Get one minted badge by ID
// @Tags Badges
// @Produce json
// @Param id path int true "Badge ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /badges/{id} [get]
func (h *BadgeHandler) Get(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid badge ID")
	}

	badge, err := h.ledgerService.GetBadge(c.Context(), uint(id))
	if err != nil {
		if errors.Is(err, domain.ErrBadgeNotFound) {
			return response.NotFound(c, "Badge not found")
		}
		return response.InternalServerError(c, "Failed to get badge")
	}

	return response.Success(c, "Badge retrieved successfully", badge.ToResponse())
}

// GetBySerial handles public badge verification by serial
// @Summary Verify a badge by serial
// @Description Look up a minted badge by its public serial number
// @Tags Badges
// @Produce json
// @Param serial path string true "Badge serial"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /badges/serial/{serial} [get]
func (h *BadgeHandler) GetBySerial(c *fiber.Ctx) error {
	serial := c.Params("serial")
	if serial == "" {
		return response.BadRequest(c, "Badge serial is required")
	}

	badge, err := h.ledgerService.GetBadgeBySerial(c.Context(), serial)
	if err != nil {
		if errors.Is(err, domain.ErrBadgeNotFound) {
			return response.NotFound(c, "Badge not found")
		}
		return response.InternalServerError(c, "Failed to get badge")
	}

	return response.Success(c, "Badge retrieved successfully", badge.ToResponse())
}

// VerifyRequest represents a badge verification request body
type VerifyRequest struct {
	Verified bool `json:"verified"`
}

// Verify handles marking a badge as verified
// @Summary Mark a badge verified
// @Description Set a badge's verified flag (operator only)
// @Tags Badges
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Badge ID"
// @Param body body VerifyRequest true "Verification flag"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /badges/{id}/verify [patch]
func (h *BadgeHandler) Verify(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid badge ID")
	}

	req := VerifyRequest{Verified: true}
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return response.BadRequest(c, "Invalid request body")
		}
	}

	if err := h.ledgerService.VerifyBadge(c.Context(), uint(id), req.Verified); err != nil {
		if errors.Is(err, domain.ErrBadgeNotFound) {
			return response.NotFound(c, "Badge not found")
		}
		return response.InternalServerError(c, "Failed to update badge")
	}

	return response.Success(c, "Badge verification updated", fiber.Map{
		"id":       uint(id),
		"verified": req.Verified,
	})
}
