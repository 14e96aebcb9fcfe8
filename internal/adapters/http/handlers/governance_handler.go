package handlers

import (
	"errors"
	"strconv"
	"time"

	"aquahope-backend/internal/adapters/persistence/models"
	"aquahope-backend/internal/core/domain"
	"aquahope-backend/internal/core/services"
	"aquahope-backend/internal/pkg/pagination"
	"aquahope-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// GovernanceHandler handles proposal and voting endpoints
type GovernanceHandler struct {
	governanceService *services.GovernanceService
}

// NewGovernanceHandler creates a new governance handler
func NewGovernanceHandler(governanceService *services.GovernanceService) *GovernanceHandler {
	return &GovernanceHandler{governanceService: governanceService}
}

// CreateProposalRequest represents a proposal creation request body
type CreateProposalRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Location    string `json:"location"`
	Budget      string `json:"budget"`
}

// Create handles opening a new proposal
// @Summary Create a proposal
// @Description Open a new project proposal with a fixed voting window
// @Tags Governance
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body CreateProposalRequest true "Proposal data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /proposals [post]
func (h *GovernanceHandler) Create(c *fiber.Ctx) error {
	var req CreateProposalRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	address, ok := c.Locals("address").(string)
	if !ok || address == "" {
		return response.Unauthorized(c, "Unauthorized")
	}

	input := &services.CreateProposalInput{
		Title:       req.Title,
		Description: req.Description,
		Location:    req.Location,
		Budget:      req.Budget,
		Proposer:    address,
	}

	proposal, err := h.governanceService.CreateProposal(c.Context(), input)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidProposal):
			return response.BadRequest(c, "Title, description and a positive budget are required")
		case errors.Is(err, domain.ErrInvalidAmount):
			return response.BadRequest(c, "Budget must be a positive decimal with at most 6 decimal places")
		default:
			return response.InternalServerError(c, "Failed to create proposal")
		}
	}

	return response.Created(c, "Proposal created successfully", proposal.ToResponse(time.Now()))
}

// List handles listing proposals
// @Summary List proposals
// @Description List proposals, newest first
// @Tags Governance
// @Produce json
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Success 200 {object} pagination.Response
// @Router /proposals [get]
func (h *GovernanceHandler) List(c *fiber.Ctx) error {
	params := pagination.GetParams(c)

	proposals, total, err := h.governanceService.ListProposals(c.Context(), params.Offset, params.Limit)
	if err != nil {
		return response.InternalServerError(c, "Failed to list proposals")
	}

	now := time.Now()
	items := make([]*models.ProposalResponse, 0, len(proposals))
	for _, proposal := range proposals {
		items = append(items, proposal.ToResponse(now))
	}

	return c.JSON(pagination.NewResponse(items, params, total))
}

// Get handles fetching one proposal
// @Summary Get a proposal
// @Description Get one proposal by ID, including its current status and tallies
// @Tags Governance
// @Produce json
// @Param id path int true "Proposal ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /proposals/{id} [get]
func (h *GovernanceHandler) Get(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid proposal ID")
	}

	proposal, err := h.governanceService.GetProposal(c.Context(), uint(id))
	if err != nil {
		if errors.Is(err, domain.ErrProposalNotFound) {
			return response.NotFound(c, "Proposal not found")
		}
		return response.InternalServerError(c, "Failed to get proposal")
	}

	return response.Success(c, "Proposal retrieved successfully", proposal.ToResponse(time.Now()))
}

// GetBySlug handles fetching one proposal by slug
// @Summary Get a proposal by slug
// @Description Get one proposal by its URL slug
// @Tags Governance
// @Produce json
// @Param slug path string true "Proposal slug"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /proposals/slug/{slug} [get]
func (h *GovernanceHandler) GetBySlug(c *fiber.Ctx) error {
	proposalSlug := c.Params("slug")
	if proposalSlug == "" {
		return response.BadRequest(c, "Proposal slug is required")
	}

	proposal, err := h.governanceService.GetProposalBySlug(c.Context(), proposalSlug)
	if err != nil {
		if errors.Is(err, domain.ErrProposalNotFound) {
			return response.NotFound(c, "Proposal not found")
		}
		return response.InternalServerError(c, "Failed to get proposal")
	}

	return response.Success(c, "Proposal retrieved successfully", proposal.ToResponse(time.Now()))
}

// ListVotes handles listing the votes cast on one proposal
// @Summary List votes
// @Description List the votes cast on one proposal
// @Tags Governance
// @Produce json
// @Param id path int true "Proposal ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /proposals/{id}/votes [get]
func (h *GovernanceHandler) ListVotes(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid proposal ID")
	}

	votes, err := h.governanceService.ListVotes(c.Context(), uint(id))
	if err != nil {
		if errors.Is(err, domain.ErrProposalNotFound) {
			return response.NotFound(c, "Proposal not found")
		}
		return response.InternalServerError(c, "Failed to list votes")
	}

	return response.Success(c, "Votes retrieved successfully", votes)
}

// MyVote handles fetching the authenticated voter's own ballot
// @Summary Get my vote
// @Description Get the vote you cast on one proposal
// @Tags Governance
// @Produce json
// @Security BearerAuth
// @Param id path int true "Proposal ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /proposals/{id}/votes/me [get]
func (h *GovernanceHandler) MyVote(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid proposal ID")
	}

	address, ok := c.Locals("address").(string)
	if !ok || address == "" {
		return response.Unauthorized(c, "Unauthorized")
	}

	vote, err := h.governanceService.GetVoterBallot(c.Context(), uint(id), address)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrProposalNotFound):
			return response.NotFound(c, "Proposal not found")
		case errors.Is(err, domain.ErrVoteNotFound):
			return response.NotFound(c, "You have not voted on this proposal")
		default:
			return response.InternalServerError(c, "Failed to get vote")
		}
	}

	return response.Success(c, "Vote retrieved successfully", vote)
}

// VoteRequest represents a vote request body
type VoteRequest struct {
	Support bool `json:"support"`
}

// Vote handles casting a vote on a proposal
// @Summary Cast a vote
// @Description Cast a credit-weighted vote on an active proposal
// @Tags Governance
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Proposal ID"
// @Param body body VoteRequest true "Vote direction"
// @Success 201 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /proposals/{id}/votes [post]
func (h *GovernanceHandler) Vote(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid proposal ID")
	}

	var req VoteRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	address, ok := c.Locals("address").(string)
	if !ok || address == "" {
		return response.Unauthorized(c, "Unauthorized")
	}

	vote, err := h.governanceService.Vote(c.Context(), uint(id), address, req.Support)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrProposalNotFound):
			return response.NotFound(c, "Proposal not found")
		case errors.Is(err, domain.ErrVotingClosed):
			return response.Conflict(c, "Voting window has ended")
		case errors.Is(err, domain.ErrProposalFinalized):
			return response.Conflict(c, "Proposal has been finalized")
		case errors.Is(err, domain.ErrAlreadyVoted):
			return response.Conflict(c, "You have already voted on this proposal")
		case errors.Is(err, domain.ErrNoVotingPower):
			return response.Forbidden(c, "You need reward credits to vote")
		default:
			return response.InternalServerError(c, "Failed to cast vote")
		}
	}

	return response.Created(c, "Vote cast successfully", vote)
}

// Execute handles marking a passed proposal as executed
// @Summary Execute a proposal
// @Description Mark a passed proposal as executed (operator only)
// @Tags Governance
// @Produce json
// @Security BearerAuth
// @Param id path int true "Proposal ID"
// @Success 200 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /proposals/{id}/execute [post]
func (h *GovernanceHandler) Execute(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid proposal ID")
	}

	proposal, err := h.governanceService.Execute(c.Context(), uint(id))
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrProposalNotFound):
			return response.NotFound(c, "Proposal not found")
		case errors.Is(err, domain.ErrVotingOpen):
			return response.Conflict(c, "Voting is still open")
		case errors.Is(err, domain.ErrProposalNotPassed):
			return response.Conflict(c, "Proposal was not passed")
		case errors.Is(err, domain.ErrProposalFinalized):
			return response.Conflict(c, "Proposal has already been finalized")
		default:
			return response.InternalServerError(c, "Failed to execute proposal")
		}
	}

	return response.Success(c, "Proposal executed successfully", proposal.ToResponse(time.Now()))
}

// Cancel handles cancelling a proposal
// @Summary Cancel a proposal
// @Description Cancel a proposal before it is executed (proposer or admin)
// @Tags Governance
// @Produce json
// @Security BearerAuth
// @Param id path int true "Proposal ID"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /proposals/{id}/cancel [post]
func (h *GovernanceHandler) Cancel(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid proposal ID")
	}

	address, ok := c.Locals("address").(string)
	if !ok || address == "" {
		return response.Unauthorized(c, "Unauthorized")
	}
	role, _ := c.Locals("role").(string)
	isAdmin := role == string(domain.RoleAdmin)

	proposal, err := h.governanceService.Cancel(c.Context(), uint(id), address, isAdmin)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrProposalNotFound):
			return response.NotFound(c, "Proposal not found")
		case errors.Is(err, services.ErrNotProposer):
			return response.Forbidden(c, "Only the proposer or an admin can cancel a proposal")
		case errors.Is(err, domain.ErrProposalFinalized):
			return response.Conflict(c, "Proposal has already been finalized")
		default:
			return response.InternalServerError(c, "Failed to cancel proposal")
		}
	}

	return response.Success(c, "Proposal cancelled successfully", proposal.ToResponse(time.Now()))
}
