package repositories

import (
	"context"
	"errors"

	"aquahope-backend/internal/adapters/persistence/models"
	"aquahope-backend/internal/core/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// contributionRepository implements ContributionRepository interface
type contributionRepository struct {
	db *gorm.DB
}

// NewContributionRepository creates a new contribution repository
func NewContributionRepository(db *gorm.DB) ContributionRepository {
	return &contributionRepository{db: db}
}

// Create records a new contribution in the ledger
func (r *contributionRepository) Create(ctx context.Context, contribution *models.Contribution) error {
	return r.db.WithContext(ctx).Create(contribution).Error
}

// GetByID gets a contribution by ID
func (r *contributionRepository) GetByID(ctx context.Context, id uint) (*models.Contribution, error) {
	var contribution models.Contribution
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&contribution).Error
	if err != nil {
		return nil, err
	}
	return &contribution, nil
}

// GetByCode gets a contribution by its claim code
func (r *contributionRepository) GetByCode(ctx context.Context, code string) (*models.Contribution, error) {
	var contribution models.Contribution
	err := r.db.WithContext(ctx).Where("claim_code = ?", code).First(&contribution).Error
	if err != nil {
		return nil, err
	}
	return &contribution, nil
}

// CodeExists checks if a claim code is already taken
func (r *contributionRepository) CodeExists(ctx context.Context, code string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Contribution{}).Where("claim_code = ?", code).Count(&count).Error
	return count > 0, err
}

// List lists contributions with pagination, newest first
func (r *contributionRepository) List(ctx context.Context, offset, limit int) ([]*models.Contribution, int64, error) {
	var contributions []*models.Contribution
	var total int64

	if err := r.db.WithContext(ctx).Model(&models.Contribution{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&contributions).Error
	if err != nil {
		return nil, 0, err
	}

	return contributions, total, nil
}

// ListByContributor lists all contributions of one contributor, newest first
func (r *contributionRepository) ListByContributor(ctx context.Context, contributor string) ([]*models.Contribution, error) {
	var contributions []*models.Contribution
	err := r.db.WithContext(ctx).
		Where("contributor = ?", contributor).
		Order("created_at DESC").
		Find(&contributions).Error
	return contributions, err
}

// TotalRaised sums all contribution amounts
func (r *contributionRepository) TotalRaised(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&models.Contribution{}).
		Select("COALESCE(SUM(amount_micro), 0)").
		Scan(&total).Error
	return total, err
}

// CountDistinctContributors counts unique contributors in the ledger
func (r *contributionRepository) CountDistinctContributors(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Contribution{}).
		Distinct("contributor").
		Count(&count).Error
	return count, err
}

// badgeRepository implements BadgeRepository interface
type badgeRepository struct {
	db *gorm.DB
}

// NewBadgeRepository creates a new badge repository
func NewBadgeRepository(db *gorm.DB) BadgeRepository {
	return &badgeRepository{db: db}
}

// GetByID gets a badge by ID
func (r *badgeRepository) GetByID(ctx context.Context, id uint) (*models.Badge, error) {
	var badge models.Badge
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&badge).Error
	if err != nil {
		return nil, err
	}
	return &badge, nil
}

// GetBySerial gets a badge by its serial
func (r *badgeRepository) GetBySerial(ctx context.Context, serial string) (*models.Badge, error) {
	var badge models.Badge
	err := r.db.WithContext(ctx).Where("serial = ?", serial).First(&badge).Error
	if err != nil {
		return nil, err
	}
	return &badge, nil
}

// ListByContributor lists badges held by one contributor, newest first
func (r *badgeRepository) ListByContributor(ctx context.Context, contributor string) ([]*models.Badge, error) {
	var badges []*models.Badge
	err := r.db.WithContext(ctx).
		Where("contributor = ?", contributor).
		Order("issued_at DESC").
		Find(&badges).Error
	return badges, err
}

// Count counts all minted badges
func (r *badgeRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Badge{}).Count(&count).Error
	return count, err
}

// SetVerified updates the operator-set verified flag
func (r *badgeRepository) SetVerified(ctx context.Context, id uint, verified bool) error {
	res := r.db.WithContext(ctx).
		Model(&models.Badge{}).
		Where("id = ?", id).
		Update("verified", verified)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// creditBalanceRepository implements CreditBalanceRepository interface
type creditBalanceRepository struct {
	db *gorm.DB
}

// NewCreditBalanceRepository creates a new credit balance repository
func NewCreditBalanceRepository(db *gorm.DB) CreditBalanceRepository {
	return &creditBalanceRepository{db: db}
}

// Get returns the credit balance of a contributor, zero when no row exists
func (r *creditBalanceRepository) Get(ctx context.Context, contributor string) (int64, error) {
	var balance models.CreditBalance
	err := r.db.WithContext(ctx).Where("contributor = ?", contributor).First(&balance).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return balance.Credits, nil
}

// TotalCredits sums all issued credits
func (r *creditBalanceRepository) TotalCredits(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&models.CreditBalance{}).
		Select("COALESCE(SUM(credits), 0)").
		Scan(&total).Error
	return total, err
}

// claimRepository implements ClaimRepository interface
type claimRepository struct {
	db *gorm.DB
}

// NewClaimRepository creates a new claim repository
func NewClaimRepository(db *gorm.DB) ClaimRepository {
	return &claimRepository{db: db}
}

// ClaimMint runs the claim transaction. The conditional update on the
// claimed flag is what makes the claim exactly-once across processes: only
// the writer whose UPDATE actually flips the row gets to mint.
func (r *claimRepository) ClaimMint(ctx context.Context, code string, badge *models.Badge, credits int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 1. Flip the claimed flag, but only if nobody beat us to it
		res := tx.Model(&models.Contribution{}).
			Where("claim_code = ?", code).
			Where("claimed = ?", false).
			Update("claimed", true)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrAlreadyClaimed
		}

		// 2. Mint the badge
		if err := tx.Create(badge).Error; err != nil {
			return err
		}

		// 3. Link the badge back to the ledger row
		if err := tx.Model(&models.Contribution{}).
			Where("claim_code = ?", code).
			Update("badge_id", badge.ID).Error; err != nil {
			return err
		}

		// 4. Add credits onto the contributor's balance
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "contributor"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"credits": gorm.Expr("credits + ?", credits),
			}),
		}).Create(&models.CreditBalance{
			Contributor: badge.Contributor,
			Credits:     credits,
		}).Error
	})
}
