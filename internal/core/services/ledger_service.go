package services

import (
	"context"
	"errors"
	"log"
	"strings"

	"aquahope-backend/internal/adapters/persistence/models"
	"aquahope-backend/internal/adapters/persistence/repositories"
	"aquahope-backend/internal/config"
	"aquahope-backend/internal/core/domain"
	"aquahope-backend/internal/pkg/claimcode"

	"github.com/microcosm-cc/bluemonday"
	"gorm.io/gorm"
)

// LedgerService handles the donation ledger business logic
type LedgerService struct {
	contributionRepo repositories.ContributionRepository
	balanceRepo      repositories.CreditBalanceRepository
	badgeRepo        repositories.BadgeRepository
	pool             *PoolService
	notifier         Notifier
	sanitizer        *bluemonday.Policy
	maxCodeRetries   int
}

// NewLedgerService creates a new ledger service
func NewLedgerService(
	contributionRepo repositories.ContributionRepository,
	balanceRepo repositories.CreditBalanceRepository,
	badgeRepo repositories.BadgeRepository,
	pool *PoolService,
	notifier Notifier,
	cfg *config.Config,
) *LedgerService {
	return &LedgerService{
		contributionRepo: contributionRepo,
		balanceRepo:      balanceRepo,
		badgeRepo:        badgeRepo,
		pool:             pool,
		notifier:         notifier,
		sanitizer:        bluemonday.StrictPolicy(),
		maxCodeRetries:   cfg.Platform.ClaimCodeMaxRetries,
	}
}

// RecordDonationInput represents a new donation
type RecordDonationInput struct {
	Contributor string `json:"contributor" validate:"required"`
	Amount      string `json:"amount" validate:"required"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	Message     string `json:"message"`
	Location    string `json:"location"`
}

// RecordDonation appends a donation to the ledger and issues its one-time
// claim code. The code only leaves the system through the notification
// channel; list and detail responses never carry it.
func (s *LedgerService) RecordDonation(ctx context.Context, input *RecordDonationInput) (*models.Contribution, error) {
	// 1. Validate contributor and amount
	contributor := strings.TrimSpace(input.Contributor)
	if contributor == "" {
		return nil, domain.ErrInvalidInput
	}

	amount, err := domain.ParseAmount(input.Amount)
	if err != nil {
		return nil, domain.ErrInvalidAmount
	}
	if !amount.IsPositive() {
		return nil, domain.ErrInvalidAmount
	}

	// 2. Issue a claim code nobody else holds
	code, err := s.issueClaimCode(ctx)
	if err != nil {
		return nil, err
	}

	// 3. Record the contribution
	contribution := &models.Contribution{
		Contributor: contributor,
		AmountMicro: int64(amount),
		Name:        s.sanitizer.Sanitize(strings.TrimSpace(input.Name)),
		Email:       strings.TrimSpace(input.Email),
		Message:     s.sanitizer.Sanitize(strings.TrimSpace(input.Message)),
		Location:    s.sanitizer.Sanitize(strings.TrimSpace(input.Location)),
		ClaimCode:   code,
	}

	if err := s.contributionRepo.Create(ctx, contribution); err != nil {
		return nil, err
	}

	log.Printf("✅ Donation recorded: #%d %s from %s", contribution.ID, amount.String(), contributor)

	// 4. Every recorded contribution also stakes the yield pool
	if _, err := s.pool.DepositAmount(ctx, contributor, amount); err != nil {
		log.Printf("🚨 Pool deposit for contribution #%d failed: %v", contribution.ID, err)
		return nil, err
	}

	// 5. Hand the claim code to the donor
	s.notifier.NotifyContribution(contribution, code)

	return contribution, nil
}

// issueClaimCode generates a claim code not yet present in the ledger.
// The unique index on claim_code is the backstop for the race between the
// existence check and the insert.
func (s *LedgerService) issueClaimCode(ctx context.Context) (string, error) {
	for i := 0; i < s.maxCodeRetries; i++ {
		code, err := claimcode.Generate()
		if err != nil {
			return "", err
		}

		exists, err := s.contributionRepo.CodeExists(ctx, code)
		if err != nil {
			return "", err
		}
		if !exists {
			return code, nil
		}
	}
	return "", domain.ErrCodeSpaceExhausted
}

// GetContribution gets one contribution by ID
func (s *LedgerService) GetContribution(ctx context.Context, id uint) (*models.Contribution, error) {
	contribution, err := s.contributionRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrContributionNotFound
		}
		return nil, err
	}
	return contribution, nil
}

// GetContributionByCode gets one contribution by its claim code
func (s *LedgerService) GetContributionByCode(ctx context.Context, rawCode string) (*models.Contribution, error) {
	code, err := claimcode.Normalize(rawCode)
	if err != nil {
		return nil, domain.ErrInvalidCode
	}

	contribution, err := s.contributionRepo.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrCodeNotFound
		}
		return nil, err
	}
	return contribution, nil
}

// ListContributions lists the ledger with pagination, newest first
func (s *LedgerService) ListContributions(ctx context.Context, offset, limit int) ([]*models.Contribution, int64, error) {
	return s.contributionRepo.List(ctx, offset, limit)
}

// AccountSummary bundles everything one contributor holds
type AccountSummary struct {
	Contributor   string                         `json:"contributor"`
	Credits       int64                          `json:"credits"`
	Contributions []*models.ContributionResponse `json:"contributions"`
	Badges        []*models.BadgeResponse        `json:"badges"`
}

// GetAccount builds the account view of one contributor: the credit
// balance, the donation history and the badges held.
func (s *LedgerService) GetAccount(ctx context.Context, contributor string) (*AccountSummary, error) {
	credits, err := s.balanceRepo.Get(ctx, contributor)
	if err != nil {
		return nil, err
	}

	contributions, err := s.contributionRepo.ListByContributor(ctx, contributor)
	if err != nil {
		return nil, err
	}

	badges, err := s.badgeRepo.ListByContributor(ctx, contributor)
	if err != nil {
		return nil, err
	}

	summary := &AccountSummary{
		Contributor:   contributor,
		Credits:       credits,
		Contributions: make([]*models.ContributionResponse, 0, len(contributions)),
		Badges:        make([]*models.BadgeResponse, 0, len(badges)),
	}
	for _, c := range contributions {
		summary.Contributions = append(summary.Contributions, c.ToResponse())
	}
	for _, b := range badges {
		summary.Badges = append(summary.Badges, b.ToResponse())
	}

	return summary, nil
}

// GetCredits gets the reward credit balance of a contributor
func (s *LedgerService) GetCredits(ctx context.Context, contributor string) (int64, error) {
	return s.balanceRepo.Get(ctx, contributor)
}

// GetBadge gets a badge by ID
func (s *LedgerService) GetBadge(ctx context.Context, id uint) (*models.Badge, error) {
	badge, err := s.badgeRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrBadgeNotFound
		}
		return nil, err
	}
	return badge, nil
}

// GetBadgeBySerial gets a badge by its public serial
func (s *LedgerService) GetBadgeBySerial(ctx context.Context, serial string) (*models.Badge, error) {
	badge, err := s.badgeRepo.GetBySerial(ctx, serial)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrBadgeNotFound
		}
		return nil, err
	}
	return badge, nil
}

// VerifyBadge sets the operator-reviewed verified flag on a badge
func (s *LedgerService) VerifyBadge(ctx context.Context, id uint, verified bool) error {
	if err := s.badgeRepo.SetVerified(ctx, id, verified); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrBadgeNotFound
		}
		return err
	}

	log.Printf("✅ Badge #%d verified=%t", id, verified)
	return nil
}
