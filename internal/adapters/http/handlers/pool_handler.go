package handlers

import (
	"errors"

	"aquahope-backend/internal/core/domain"
	"aquahope-backend/internal/core/services"
	"aquahope-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// PoolHandler handles yield pool endpoints
type PoolHandler struct {
	poolService *services.PoolService
}

// NewPoolHandler creates a new pool handler
func NewPoolHandler(poolService *services.PoolService) *PoolHandler {
	return &PoolHandler{poolService: poolService}
}

// DepositRequest represents a pool deposit request body
type DepositRequest struct {
	Amount string `json:"amount"`
}

// Deposit handles adding principal to the yield pool
// @Summary Deposit into the pool
// @Description Add principal to the authenticated contributor's pool account
// @Tags Pool
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body DepositRequest true "Deposit amount"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /pool/deposits [post]
func (h *PoolHandler) Deposit(c *fiber.Ctx) error {
	var req DepositRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	address, ok := c.Locals("address").(string)
	if !ok || address == "" {
		return response.Unauthorized(c, "Unauthorized")
	}

	account, err := h.poolService.Deposit(c.Context(), address, req.Amount)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidAmount):
			return response.BadRequest(c, "Amount must be a positive decimal with at most 6 decimal places")
		case errors.Is(err, domain.ErrInvalidInput):
			return response.BadRequest(c, "Contributor is required")
		default:
			return response.InternalServerError(c, "Failed to deposit")
		}
	}

	return response.Created(c, "Deposit recorded successfully", account.ToResponse())
}

// AccrueRequest represents a yield accrual request body
type AccrueRequest struct {
	Amount string `json:"amount"`
}

// Accrue handles distributing a yield payout across the pool
// @Summary Accrue yield
// @Description Distribute a yield payout pro rata across pool accounts (operator only)
// @Tags Pool
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body AccrueRequest true "Yield amount"
// @Success 200 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /pool/accruals [post]
func (h *PoolHandler) Accrue(c *fiber.Ctx) error {
	var req AccrueRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	allocated, err := h.poolService.AccrueYield(c.Context(), req.Amount)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidAmount):
			return response.BadRequest(c, "Amount must be a positive decimal with at most 6 decimal places")
		case errors.Is(err, domain.ErrNoPooledPrincipal):
			return response.Conflict(c, "No principal in the pool to accrue against")
		default:
			return response.InternalServerError(c, "Failed to accrue yield")
		}
	}

	return response.Success(c, "Yield accrued successfully", fiber.Map{
		"allocated": allocated.String(),
	})
}

// Withdraw handles withdrawing accrued yield
// @Summary Withdraw yield
// @Description Withdraw the authenticated contributor's available yield in full
// @Tags Pool
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /pool/withdrawals [post]
func (h *PoolHandler) Withdraw(c *fiber.Ctx) error {
	address, ok := c.Locals("address").(string)
	if !ok || address == "" {
		return response.Unauthorized(c, "Unauthorized")
	}

	amount, err := h.poolService.WithdrawYield(c.Context(), address)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNothingToWithdraw):
			return response.Conflict(c, "No yield available to withdraw")
		default:
			return response.InternalServerError(c, "Failed to withdraw yield")
		}
	}

	return response.Success(c, "Yield withdrawn successfully", fiber.Map{
		"amount": amount.String(),
	})
}

// Account handles the authenticated contributor's pool account view
// @Summary Get my pool account
// @Description Get the authenticated contributor's pool principal and yield figures
// @Tags Pool
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /pool/accounts/me [get]
func (h *PoolHandler) Account(c *fiber.Ctx) error {
	address, ok := c.Locals("address").(string)
	if !ok || address == "" {
		return response.Unauthorized(c, "Unauthorized")
	}

	account, err := h.poolService.GetAccount(c.Context(), address)
	if err != nil {
		if errors.Is(err, domain.ErrDonorNotFound) {
			return response.NotFound(c, "No pool account for this contributor")
		}
		return response.InternalServerError(c, "Failed to load pool account")
	}

	return response.Success(c, "Pool account retrieved successfully", account.ToResponse())
}

// Stats handles the public pool totals view
// @Summary Get pool stats
// @Description Get aggregate pool principal, yield and bucket totals
// @Tags Pool
// @Produce json
// @Success 200 {object} response.Response
// @Router /pool/stats [get]
func (h *PoolHandler) Stats(c *fiber.Ctx) error {
	totals, err := h.poolService.GetStats(c.Context())
	if err != nil {
		return response.InternalServerError(c, "Failed to load pool stats")
	}

	return response.Success(c, "Pool stats retrieved successfully", totals.ToResponse())
}
