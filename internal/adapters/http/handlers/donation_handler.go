package handlers

import (
	"errors"
	"strconv"

	"aquahope-backend/internal/adapters/persistence/models"
	"aquahope-backend/internal/core/domain"
	"aquahope-backend/internal/core/services"
	"aquahope-backend/internal/pkg/pagination"
	"aquahope-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// DonationHandler handles donation ledger endpoints
type DonationHandler struct {
	ledgerService *services.LedgerService
}

// NewDonationHandler creates a new donation handler
func NewDonationHandler(ledgerService *services.LedgerService) *DonationHandler {
	return &DonationHandler{ledgerService: ledgerService}
}

// RecordDonationRequest represents a donation request body
type RecordDonationRequest struct {
	Contributor string `json:"contributor"`
	Amount      string `json:"amount"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	Message     string `json:"message"`
	Location    string `json:"location"`
}

// Record handles recording a new donation
// @Summary Record a donation
// @Description Append a donation to the ledger and issue its claim code
// @Tags Donations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body RecordDonationRequest true "Donation data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /donations [post]
func (h *DonationHandler) Record(c *fiber.Ctx) error {
	var req RecordDonationRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	// Donors donate as themselves; operators may record on behalf of any
	// contributor
	address, _ := c.Locals("address").(string)
	role, _ := c.Locals("role").(string)
	contributor := req.Contributor
	if contributor == "" {
		contributor = address
	}
	if contributor != address && role != string(domain.RoleOperator) && role != string(domain.RoleAdmin) {
		return response.Forbidden(c, "Cannot record donations for another contributor")
	}

	input := &services.RecordDonationInput{
		Contributor: contributor,
		Amount:      req.Amount,
		Name:        req.Name,
		Email:       req.Email,
		Message:     req.Message,
		Location:    req.Location,
	}

	contribution, err := h.ledgerService.RecordDonation(c.Context(), input)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidAmount):
			return response.BadRequest(c, "Amount must be a positive decimal with at most 6 decimal places")
		case errors.Is(err, domain.ErrInvalidInput):
			return response.BadRequest(c, "Contributor is required")
		case errors.Is(err, domain.ErrCodeSpaceExhausted):
			return response.Gone(c, "Could not issue a claim code, please retry")
		default:
			return response.InternalServerError(c, "Failed to record donation")
		}
	}

	return response.Created(c, "Donation recorded, claim code sent", contribution.ToResponse())
}

// List handles listing the donation ledger
// @Summary List donations
// @Description List recorded donations, newest first
// @Tags Donations
// @Produce json
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Success 200 {object} pagination.Response
// @Router /donations [get]
func (h *DonationHandler) List(c *fiber.Ctx) error {
	params := pagination.GetParams(c)

	contributions, total, err := h.ledgerService.ListContributions(c.Context(), params.Offset, params.Limit)
	if err != nil {
		return response.InternalServerError(c, "Failed to list donations")
	}

	items := make([]*models.ContributionResponse, 0, len(contributions))
	for _, contribution := range contributions {
		items = append(items, contribution.ToResponse())
	}

	return c.JSON(pagination.NewResponse(items, params, total))
}

// Get handles fetching one donation
// @Summary Get a donation
// @Description Get one recorded donation by ID
// @Tags Donations
// @Produce json
// @Param id path int true "Donation ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /donations/{id} [get]
func (h *DonationHandler) Get(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid donation ID")
	}

	contribution, err := h.ledgerService.GetContribution(c.Context(), uint(id))
	if err != nil {
		if errors.Is(err, domain.ErrContributionNotFound) {
			return response.NotFound(c, "Donation not found")
		}
		return response.InternalServerError(c, "Failed to get donation")
	}

	return response.Success(c, "Donation retrieved successfully", contribution.ToResponse())
}

// GetByCode handles looking up a donation by its claim code
// @Summary Look up a donation by claim code
// @Description Get the donation a claim code belongs to, so a donor can check it before redeeming
// @Tags Donations
// @Produce json
// @Param code path string true "Claim code"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /donations/code/{code} [get]
func (h *DonationHandler) GetByCode(c *fiber.Ctx) error {
	contribution, err := h.ledgerService.GetContributionByCode(c.Context(), c.Params("code"))
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidCode):
			return response.BadRequest(c, "Claim code must be 16 hexadecimal characters")
		case errors.Is(err, domain.ErrCodeNotFound):
			return response.NotFound(c, "Claim code not found")
		default:
			return response.InternalServerError(c, "Failed to get donation")
		}
	}

	return response.Success(c, "Donation retrieved successfully", contribution.ToResponse())
}

// Account handles the authenticated contributor's account view
// @Summary Get my account
// @Description Get the authenticated contributor's credits, donations and badges
// @Tags Donations
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /account [get]
func (h *DonationHandler) Account(c *fiber.Ctx) error {
	address, ok := c.Locals("address").(string)
	if !ok || address == "" {
		return response.Unauthorized(c, "Unauthorized")
	}

	summary, err := h.ledgerService.GetAccount(c.Context(), address)
	if err != nil {
		return response.InternalServerError(c, "Failed to load account")
	}

	return response.Success(c, "Account retrieved successfully", summary)
}
