package services

import (
	"context"
	"errors"
	"log"

	"aquahope-backend/internal/adapters/cache"
	"aquahope-backend/internal/adapters/persistence/models"
	"aquahope-backend/internal/adapters/persistence/repositories"
	"aquahope-backend/internal/config"
	"aquahope-backend/internal/core/domain"
	"aquahope-backend/internal/pkg/claimcode"
	"aquahope-backend/internal/pkg/keylock"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ClaimService handles claim code redemption: minting the badge and the
// reward credits for a recorded contribution, exactly once per code.
type ClaimService struct {
	contributionRepo repositories.ContributionRepository
	badgeRepo        repositories.BadgeRepository
	claimRepo        repositories.ClaimRepository
	notifier         Notifier
	statsCache       *cache.StatsCache
	locks            *keylock.KeyLock
	rules            domain.TierRules
}

// NewClaimService creates a new claim service
func NewClaimService(
	contributionRepo repositories.ContributionRepository,
	badgeRepo repositories.BadgeRepository,
	claimRepo repositories.ClaimRepository,
	notifier Notifier,
	statsCache *cache.StatsCache,
	cfg *config.Config,
) *ClaimService {
	return &ClaimService{
		contributionRepo: contributionRepo,
		badgeRepo:        badgeRepo,
		claimRepo:        claimRepo,
		notifier:         notifier,
		statsCache:       statsCache,
		locks:            keylock.New(),
		rules:            domain.NewTierRules(cfg.Platform.CreditRate),
	}
}

// Claim redeems a claim code. The first successful call mints the badge and
// the credits; every later call with the same code returns the identical
// result without minting anything again.
func (s *ClaimService) Claim(ctx context.Context, rawCode string) (*domain.ClaimResult, error) {
	// 1. Normalize and validate the code shape
	code, err := claimcode.Normalize(rawCode)
	if err != nil {
		return nil, domain.ErrInvalidCode
	}

	// 2. Serialize claims on the same code within this process
	s.locks.Lock("claim:" + code)
	defer s.locks.Unlock("claim:" + code)

	// 3. Look up the contribution
	contribution, err := s.contributionRepo.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrCodeNotFound
		}
		return nil, err
	}

	// 4. Replay an already-redeemed code
	if contribution.Claimed {
		return s.replay(ctx, contribution)
	}

	// 5. Compute what this contribution redeems into
	amount := contribution.Amount()
	tier := s.rules.TierFor(amount)
	credits := s.rules.CreditsFor(amount)

	badge := &models.Badge{
		Serial:      uuid.New().String(),
		Contributor: contribution.Contributor,
		Tier:        uint8(tier),
		AmountMicro: contribution.AmountMicro,
		Credits:     credits,
		Location:    contribution.Location,
		Message:     contribution.Message,
	}

	// 6. Mint atomically; another process may still win the race
	if err := s.claimRepo.ClaimMint(ctx, code, badge, credits); err != nil {
		if errors.Is(err, domain.ErrAlreadyClaimed) {
			contribution, err = s.contributionRepo.GetByCode(ctx, code)
			if err != nil {
				return nil, err
			}
			return s.replay(ctx, contribution)
		}
		return nil, err
	}

	s.statsCache.Invalidate(ctx, statsCacheKey)

	log.Printf("✅ Claim redeemed: %s tier badge #%d, %d credits to %s",
		tier.String(), badge.ID, credits, contribution.Contributor)

	s.notifier.NotifyBadgeMinted(badge, credits)

	return &domain.ClaimResult{
		Contributor: contribution.Contributor,
		Credits:     credits,
		BadgeID:     badge.ID,
		Tier:        tier,
		Amount:      amount,
	}, nil
}

// replay rebuilds the result of a claim that already happened, from the
// recorded badge rather than the current rules: the credit rate may have
// changed since the mint, and the replay must report what was minted. A
// claimed contribution without a badge row means the mint transaction was
// broken by hand; that is never healed here.
func (s *ClaimService) replay(ctx context.Context, contribution *models.Contribution) (*domain.ClaimResult, error) {
	if contribution.BadgeID == nil {
		log.Printf("🚨 Contribution #%d is claimed but has no badge", contribution.ID)
		return nil, domain.ErrInternalInconsistency
	}

	badge, err := s.badgeRepo.GetByID(ctx, *contribution.BadgeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("🚨 Contribution #%d references missing badge #%d", contribution.ID, *contribution.BadgeID)
			return nil, domain.ErrInternalInconsistency
		}
		return nil, err
	}

	return &domain.ClaimResult{
		Contributor: contribution.Contributor,
		Credits:     badge.Credits,
		BadgeID:     badge.ID,
		Tier:        domain.BadgeTier(badge.Tier),
		Amount:      contribution.Amount(),
	}, nil
}
