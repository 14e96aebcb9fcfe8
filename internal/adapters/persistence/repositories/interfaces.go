package repositories

import (
	"context"
	"time"

	"aquahope-backend/internal/adapters/persistence/models"
)

// UserRepository defines user repository interface
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByAddress(ctx context.Context, address string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	List(ctx context.Context, offset, limit int) ([]*models.User, int64, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	ExistsByAddress(ctx context.Context, address string) (bool, error)
}

// RefreshTokenRepository defines refresh token repository interface
type RefreshTokenRepository interface {
	Create(ctx context.Context, token *models.RefreshToken) error
	GetByTokenHash(ctx context.Context, tokenHash string) (*models.RefreshToken, error)
	RevokeByTokenHash(ctx context.Context, tokenHash string) error
	RevokeAllByUserID(ctx context.Context, userID uint) error
	DeleteExpired(ctx context.Context) error
}

// ContributionRepository defines the donation ledger repository interface.
// The ledger is append-only: rows are created once and only the claim flags
// ever change, inside the claim transaction.
type ContributionRepository interface {
	Create(ctx context.Context, contribution *models.Contribution) error
	GetByID(ctx context.Context, id uint) (*models.Contribution, error)
	GetByCode(ctx context.Context, code string) (*models.Contribution, error)
	CodeExists(ctx context.Context, code string) (bool, error)
	List(ctx context.Context, offset, limit int) ([]*models.Contribution, int64, error)
	ListByContributor(ctx context.Context, contributor string) ([]*models.Contribution, error)
	TotalRaised(ctx context.Context) (int64, error)
	CountDistinctContributors(ctx context.Context) (int64, error)
}

// BadgeRepository defines badge repository interface
type BadgeRepository interface {
	GetByID(ctx context.Context, id uint) (*models.Badge, error)
	GetBySerial(ctx context.Context, serial string) (*models.Badge, error)
	ListByContributor(ctx context.Context, contributor string) ([]*models.Badge, error)
	Count(ctx context.Context) (int64, error)
	SetVerified(ctx context.Context, id uint, verified bool) error
}

// CreditBalanceRepository defines reward credit balance repository interface
type CreditBalanceRepository interface {
	Get(ctx context.Context, contributor string) (int64, error)
	TotalCredits(ctx context.Context) (int64, error)
}

// ClaimRepository performs the claim/mint transaction: flip the contribution
// to claimed, insert the badge, and add credits onto the contributor's
// balance, all or nothing. Returns domain.ErrAlreadyClaimed when another
// writer got there first.
type ClaimRepository interface {
	ClaimMint(ctx context.Context, code string, badge *models.Badge, credits int64) error
}

// GovernanceRepository defines proposal and vote repository interface
type GovernanceRepository interface {
	CreateProposal(ctx context.Context, proposal *models.Proposal) error
	GetProposal(ctx context.Context, id uint) (*models.Proposal, error)
	GetProposalBySlug(ctx context.Context, slug string) (*models.Proposal, error)
	ListProposals(ctx context.Context, offset, limit int) ([]*models.Proposal, int64, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
	// CastVote inserts the vote and accumulates its weight onto the proposal
	// in one transaction. Returns domain.ErrAlreadyVoted when the (proposal,
	// voter) pair already has a row.
	CastVote(ctx context.Context, vote *models.Vote) error
	GetVote(ctx context.Context, proposalID uint, voter string) (*models.Vote, error)
	ListVotes(ctx context.Context, proposalID uint) ([]*models.Vote, error)
	// MarkExecuted and MarkCancelled flip the terminal flags conditionally;
	// the bool reports whether this call won the flip.
	MarkExecuted(ctx context.Context, id uint) (bool, error)
	MarkCancelled(ctx context.Context, id uint) (bool, error)
	FindEndedUnnotified(ctx context.Context, now time.Time) ([]*models.Proposal, error)
	MarkOutcomeNotified(ctx context.Context, id uint) error
}

// PoolRepository defines yield pool repository interface. Deposit, Accrue and
// Withdraw each run as a single transaction keeping the per-contributor rows
// and the totals row consistent.
type PoolRepository interface {
	GetAccount(ctx context.Context, contributor string) (*models.PoolAccount, error)
	ListAccounts(ctx context.Context) ([]*models.PoolAccount, error)
	GetTotals(ctx context.Context) (*models.PoolTotals, error)
	Deposit(ctx context.Context, contributor string, amountMicro int64) error
	Accrue(ctx context.Context, shares map[string]int64, totalMicro, maintenanceMicro, projectMicro int64) error
	Withdraw(ctx context.Context, contributor string, amountMicro int64) error
}
