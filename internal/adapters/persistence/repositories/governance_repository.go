package repositories

import (
	"context"
	"errors"
	"time"

	"aquahope-backend/internal/adapters/persistence/models"
	"aquahope-backend/internal/core/domain"

	"github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
)

// governanceRepository implements GovernanceRepository interface
type governanceRepository struct {
	db *gorm.DB
}

// NewGovernanceRepository creates a new governance repository
func NewGovernanceRepository(db *gorm.DB) GovernanceRepository {
	return &governanceRepository{db: db}
}

// CreateProposal creates a new proposal
func (r *governanceRepository) CreateProposal(ctx context.Context, proposal *models.Proposal) error {
	return r.db.WithContext(ctx).Create(proposal).Error
}

// GetProposal gets a proposal by ID
func (r *governanceRepository) GetProposal(ctx context.Context, id uint) (*models.Proposal, error) {
	var proposal models.Proposal
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&proposal).Error
	if err != nil {
		return nil, err
	}
	return &proposal, nil
}

// GetProposalBySlug gets a proposal by its slug
func (r *governanceRepository) GetProposalBySlug(ctx context.Context, slug string) (*models.Proposal, error) {
	var proposal models.Proposal
	err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&proposal).Error
	if err != nil {
		return nil, err
	}
	return &proposal, nil
}

// ListProposals lists proposals with pagination, newest first
func (r *governanceRepository) ListProposals(ctx context.Context, offset, limit int) ([]*models.Proposal, int64, error) {
	var proposals []*models.Proposal
	var total int64

	if err := r.db.WithContext(ctx).Model(&models.Proposal{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&proposals).Error
	if err != nil {
		return nil, 0, err
	}

	return proposals, total, nil
}

// SlugExists checks if a proposal slug is already taken
func (r *governanceRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Proposal{}).Where("slug = ?", slug).Count(&count).Error
	return count > 0, err
}

// CastVote records a vote and accumulates its weight onto the proposal.
// The composite unique index on votes catches concurrent duplicates that
// slipped past the pre-check.
func (r *governanceRepository) CastVote(ctx context.Context, vote *models.Vote) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 1. Reject a second vote from the same voter
		var count int64
		if err := tx.Model(&models.Vote{}).
			Where("proposal_id = ?", vote.ProposalID).
			Where("voter = ?", vote.Voter).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return domain.ErrAlreadyVoted
		}

		// 2. Insert the vote. Another process may have slipped a row in
		// between the pre-check and here; the unique index reports it.
		if err := tx.Create(vote).Error; err != nil {
			if isDuplicateKey(err) {
				return domain.ErrAlreadyVoted
			}
			return err
		}

		// 3. Accumulate the snapshotted weight onto the tally
		column := "against_weight"
		if vote.Support {
			column = "for_weight"
		}
		return tx.Model(&models.Proposal{}).
			Where("id = ?", vote.ProposalID).
			UpdateColumn(column, gorm.Expr(column+" + ?", vote.Weight)).Error
	})
}

// isDuplicateKey reports whether err is a unique index violation, either
// gorm's translated error or the raw MySQL error 1062
func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var mysqlErr *mysql.MySQLError
	return errors.As(err, &mysqlErr) && mysqlErr.Number == 1062
}

// GetVote gets the vote of one voter on one proposal
func (r *governanceRepository) GetVote(ctx context.Context, proposalID uint, voter string) (*models.Vote, error) {
	var vote models.Vote
	err := r.db.WithContext(ctx).
		Where("proposal_id = ?", proposalID).
		Where("voter = ?", voter).
		First(&vote).Error
	if err != nil {
		return nil, err
	}
	return &vote, nil
}

// ListVotes lists all votes on a proposal, oldest first
func (r *governanceRepository) ListVotes(ctx context.Context, proposalID uint) ([]*models.Vote, error) {
	var votes []*models.Vote
	err := r.db.WithContext(ctx).
		Where("proposal_id = ?", proposalID).
		Order("created_at ASC").
		Find(&votes).Error
	return votes, err
}

// MarkExecuted conditionally flips the executed flag
func (r *governanceRepository) MarkExecuted(ctx context.Context, id uint) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Proposal{}).
		Where("id = ?", id).
		Where("executed = ?", false).
		Where("cancelled = ?", false).
		Update("executed", true)
	return res.RowsAffected > 0, res.Error
}

// MarkCancelled conditionally flips the cancelled flag
func (r *governanceRepository) MarkCancelled(ctx context.Context, id uint) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Proposal{}).
		Where("id = ?", id).
		Where("executed = ?", false).
		Where("cancelled = ?", false).
		Update("cancelled", true)
	return res.RowsAffected > 0, res.Error
}

// FindEndedUnnotified finds proposals whose voting window has closed but
// whose outcome notification has not gone out yet
func (r *governanceRepository) FindEndedUnnotified(ctx context.Context, now time.Time) ([]*models.Proposal, error) {
	var proposals []*models.Proposal
	err := r.db.WithContext(ctx).
		Where("end_at < ?", now).
		Where("outcome_notified = ?", false).
		Where("cancelled = ?", false).
		Order("end_at ASC").
		Find(&proposals).Error
	return proposals, err
}

// MarkOutcomeNotified marks a proposal's outcome notification as sent
func (r *governanceRepository) MarkOutcomeNotified(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).
		Model(&models.Proposal{}).
		Where("id = ?", id).
		Update("outcome_notified", true).Error
}
