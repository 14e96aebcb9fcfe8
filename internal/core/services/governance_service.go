package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"aquahope-backend/internal/adapters/persistence/models"
	"aquahope-backend/internal/adapters/persistence/repositories"
	"aquahope-backend/internal/config"
	"aquahope-backend/internal/core/domain"
	"aquahope-backend/internal/pkg/keylock"

	"github.com/gosimple/slug"
	"github.com/microcosm-cc/bluemonday"
	"gorm.io/gorm"
)

// Governance errors
var (
	ErrNotProposer = errors.New("only the proposer or an admin may cancel a proposal")
)

// GovernanceService handles proposal lifecycle and weighted voting
type GovernanceService struct {
	govRepo      repositories.GovernanceRepository
	balanceRepo  repositories.CreditBalanceRepository
	notifier     Notifier
	locks        *keylock.KeyLock
	sanitizer    *bluemonday.Policy
	votingPeriod time.Duration
}

// NewGovernanceService creates a new governance service
func NewGovernanceService(
	govRepo repositories.GovernanceRepository,
	balanceRepo repositories.CreditBalanceRepository,
	notifier Notifier,
	cfg *config.Config,
) *GovernanceService {
	return &GovernanceService{
		govRepo:      govRepo,
		balanceRepo:  balanceRepo,
		notifier:     notifier,
		locks:        keylock.New(),
		sanitizer:    bluemonday.StrictPolicy(),
		votingPeriod: time.Duration(cfg.Platform.VotingPeriodDays) * 24 * time.Hour,
	}
}

// CreateProposalInput represents a new allocation proposal
type CreateProposalInput struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description" validate:"required"`
	Location    string `json:"location" validate:"required"`
	Budget      string `json:"budget" validate:"required"`
	Proposer    string `json:"proposer" validate:"required"`
}

// CreateProposal opens a new proposal. Voting starts immediately and runs
// for the configured window.
func (s *GovernanceService) CreateProposal(ctx context.Context, input *CreateProposalInput) (*models.Proposal, error) {
	// 1. Validate
	title := s.sanitizer.Sanitize(strings.TrimSpace(input.Title))
	description := s.sanitizer.Sanitize(strings.TrimSpace(input.Description))
	location := s.sanitizer.Sanitize(strings.TrimSpace(input.Location))
	proposer := strings.TrimSpace(input.Proposer)

	if title == "" || description == "" || location == "" || proposer == "" {
		return nil, domain.ErrInvalidProposal
	}

	budget, err := domain.ParseAmount(input.Budget)
	if err != nil || !budget.IsPositive() {
		return nil, domain.ErrInvalidProposal
	}

	// 2. Pick a unique slug
	proposalSlug, err := s.uniqueSlug(ctx, title)
	if err != nil {
		return nil, err
	}

	// 3. Open the voting window
	now := time.Now()
	proposal := &models.Proposal{
		Slug:        proposalSlug,
		Title:       title,
		Description: description,
		Location:    location,
		BudgetMicro: int64(budget),
		Proposer:    proposer,
		EndAt:       now.Add(s.votingPeriod),
	}

	if err := s.govRepo.CreateProposal(ctx, proposal); err != nil {
		return nil, err
	}

	log.Printf("✅ Proposal created: #%d %q, voting until %s", proposal.ID, title, proposal.EndAt.Format(time.RFC3339))

	s.notifier.NotifyProposalCreated(proposal)

	return proposal, nil
}

// uniqueSlug derives a slug from the title, suffixing a counter when the
// plain slug is taken
func (s *GovernanceService) uniqueSlug(ctx context.Context, title string) (string, error) {
	base := slug.Make(title)

	candidate := base
	for i := 2; ; i++ {
		exists, err := s.govRepo.SlugExists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
}

// GetProposal gets a proposal by ID
func (s *GovernanceService) GetProposal(ctx context.Context, id uint) (*models.Proposal, error) {
	proposal, err := s.govRepo.GetProposal(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrProposalNotFound
		}
		return nil, err
	}
	return proposal, nil
}

// GetProposalBySlug gets a proposal by its slug
func (s *GovernanceService) GetProposalBySlug(ctx context.Context, proposalSlug string) (*models.Proposal, error) {
	proposal, err := s.govRepo.GetProposalBySlug(ctx, proposalSlug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrProposalNotFound
		}
		return nil, err
	}
	return proposal, nil
}

// ListProposals lists proposals with pagination, newest first
func (s *GovernanceService) ListProposals(ctx context.Context, offset, limit int) ([]*models.Proposal, int64, error) {
	return s.govRepo.ListProposals(ctx, offset, limit)
}

// ListVotes lists the votes on a proposal
func (s *GovernanceService) ListVotes(ctx context.Context, proposalID uint) ([]*models.Vote, error) {
	if _, err := s.GetProposal(ctx, proposalID); err != nil {
		return nil, err
	}
	return s.govRepo.ListVotes(ctx, proposalID)
}

// GetVoterBallot returns the vote one voter cast on a proposal
func (s *GovernanceService) GetVoterBallot(ctx context.Context, proposalID uint, voter string) (*models.Vote, error) {
	if _, err := s.GetProposal(ctx, proposalID); err != nil {
		return nil, err
	}

	vote, err := s.govRepo.GetVote(ctx, proposalID, voter)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrVoteNotFound
		}
		return nil, err
	}
	return vote, nil
}

// Vote casts a weighted vote. The weight is the voter's credit balance at
// this instant; later balance changes never touch the recorded tally.
func (s *GovernanceService) Vote(ctx context.Context, proposalID uint, voter string, support bool) (*models.Vote, error) {
	voter = strings.TrimSpace(voter)
	if voter == "" {
		return nil, domain.ErrInvalidInput
	}

	// Serialize votes per (proposal, voter) within this process
	key := fmt.Sprintf("vote:%d:%s", proposalID, voter)
	s.locks.Lock(key)
	defer s.locks.Unlock(key)

	// 1. The proposal must be in its voting window
	proposal, err := s.GetProposal(ctx, proposalID)
	if err != nil {
		return nil, err
	}

	switch proposal.StatusAt(time.Now()) {
	case domain.ProposalActive:
		// voting open
	case domain.ProposalExecuted, domain.ProposalCancelled:
		return nil, domain.ErrProposalFinalized
	default:
		return nil, domain.ErrVotingClosed
	}

	// 2. Snapshot the voting weight
	weight, err := s.balanceRepo.Get(ctx, voter)
	if err != nil {
		return nil, err
	}
	if weight <= 0 {
		return nil, domain.ErrNoVotingPower
	}

	// 3. Record the vote and accumulate the tally
	vote := &models.Vote{
		ProposalID: proposalID,
		Voter:      voter,
		Support:    support,
		Weight:     weight,
	}
	if err := s.govRepo.CastVote(ctx, vote); err != nil {
		return nil, err
	}

	log.Printf("✅ Vote cast: proposal #%d, voter %s, support=%t, weight=%d", proposalID, voter, support, weight)

	return vote, nil
}

// Execute marks a succeeded proposal as executed. This is the only
// externally visible side effect of governance; disbursement itself happens
// downstream.
func (s *GovernanceService) Execute(ctx context.Context, proposalID uint) (*models.Proposal, error) {
	proposal, err := s.GetProposal(ctx, proposalID)
	if err != nil {
		return nil, err
	}

	switch proposal.StatusAt(time.Now()) {
	case domain.ProposalSucceeded:
		// eligible
	case domain.ProposalActive:
		return nil, domain.ErrVotingOpen
	case domain.ProposalDefeated:
		return nil, domain.ErrProposalNotPassed
	default:
		return nil, domain.ErrProposalFinalized
	}

	flipped, err := s.govRepo.MarkExecuted(ctx, proposalID)
	if err != nil {
		return nil, err
	}
	if !flipped {
		return nil, domain.ErrProposalFinalized
	}

	log.Printf("✅ Proposal executed: #%d %q", proposal.ID, proposal.Title)

	proposal.Executed = true
	return proposal, nil
}

// Cancel withdraws a proposal before it is executed. Only the proposer or
// an admin may cancel.
func (s *GovernanceService) Cancel(ctx context.Context, proposalID uint, requester string, isAdmin bool) (*models.Proposal, error) {
	proposal, err := s.GetProposal(ctx, proposalID)
	if err != nil {
		return nil, err
	}

	if !isAdmin && proposal.Proposer != requester {
		return nil, ErrNotProposer
	}

	switch proposal.StatusAt(time.Now()) {
	case domain.ProposalExecuted, domain.ProposalCancelled:
		return nil, domain.ErrProposalFinalized
	}

	flipped, err := s.govRepo.MarkCancelled(ctx, proposalID)
	if err != nil {
		return nil, err
	}
	if !flipped {
		return nil, domain.ErrProposalFinalized
	}

	log.Printf("✅ Proposal cancelled: #%d %q by %s", proposal.ID, proposal.Title, requester)

	proposal.Cancelled = true
	return proposal, nil
}

// Resolve reports the outcome of a proposal whose voting window has closed
func (s *GovernanceService) Resolve(ctx context.Context, proposalID uint) (domain.ProposalStatus, error) {
	proposal, err := s.GetProposal(ctx, proposalID)
	if err != nil {
		return "", err
	}

	status := proposal.StatusAt(time.Now())
	if status == domain.ProposalActive {
		return "", domain.ErrVotingOpen
	}
	return status, nil
}
