package handlers

import (
	"errors"

	"aquahope-backend/internal/core/domain"
	"aquahope-backend/internal/core/services"
	"aquahope-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// ClaimHandler handles claim code redemption
type ClaimHandler struct {
	claimService *services.ClaimService
}

// NewClaimHandler creates a new claim handler
func NewClaimHandler(claimService *services.ClaimService) *ClaimHandler {
	return &ClaimHandler{claimService: claimService}
}

// ClaimRequest represents a claim request body
type ClaimRequest struct {
	Code string `json:"code"`
}

// Claim handles redeeming a claim code for a badge and credits
// @Summary Redeem a claim code
// @Description Redeem a one-time claim code, minting the donor badge and crediting reward credits
// @Tags Claims
// @Accept json
// @Produce json
// @Param body body ClaimRequest true "Claim code"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /claims [post]
func (h *ClaimHandler) Claim(c *fiber.Ctx) error {
	var req ClaimRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	result, err := h.claimService.Claim(c.Context(), req.Code)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidCode):
			return response.BadRequest(c, "Claim code must be 16 hexadecimal characters")
		case errors.Is(err, domain.ErrCodeNotFound):
			return response.NotFound(c, "Claim code not found")
		default:
			return response.InternalServerError(c, "Failed to redeem claim code")
		}
	}

	return response.Success(c, "Claim code redeemed successfully", result)
}
