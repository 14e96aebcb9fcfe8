package services

import (
	"context"

	"aquahope-backend/internal/adapters/cache"
	"aquahope-backend/internal/adapters/persistence/models"
	"aquahope-backend/internal/adapters/persistence/repositories"
	"aquahope-backend/internal/core/domain"
)

const statsCacheKey = "stats:platform"

// StatsService builds the read-only platform projection: totals across the
// ledger, badges, credits, governance and the pool
type StatsService struct {
	contributionRepo repositories.ContributionRepository
	badgeRepo        repositories.BadgeRepository
	balanceRepo      repositories.CreditBalanceRepository
	govRepo          repositories.GovernanceRepository
	poolRepo         repositories.PoolRepository
	statsCache       *cache.StatsCache
}

// NewStatsService creates a new stats service
func NewStatsService(
	contributionRepo repositories.ContributionRepository,
	badgeRepo repositories.BadgeRepository,
	balanceRepo repositories.CreditBalanceRepository,
	govRepo repositories.GovernanceRepository,
	poolRepo repositories.PoolRepository,
	statsCache *cache.StatsCache,
) *StatsService {
	return &StatsService{
		contributionRepo: contributionRepo,
		badgeRepo:        badgeRepo,
		balanceRepo:      balanceRepo,
		govRepo:          govRepo,
		poolRepo:         poolRepo,
		statsCache:       statsCache,
	}
}

// PlatformStats is the aggregate dashboard view
type PlatformStats struct {
	TotalRaised   string                    `json:"total_raised"`
	Contributors  int64                     `json:"contributors"`
	BadgesMinted  int64                     `json:"badges_minted"`
	CreditsIssued int64                     `json:"credits_issued"`
	Proposals     int64                     `json:"proposals"`
	Pool          *models.PoolStatsResponse `json:"pool"`
}

// GetPlatformStats computes the aggregate figures, served from the cache
// when one is configured
func (s *StatsService) GetPlatformStats(ctx context.Context) (*PlatformStats, error) {
	var cached PlatformStats
	if s.statsCache.Get(ctx, statsCacheKey, &cached) {
		return &cached, nil
	}

	totalRaised, err := s.contributionRepo.TotalRaised(ctx)
	if err != nil {
		return nil, err
	}

	contributors, err := s.contributionRepo.CountDistinctContributors(ctx)
	if err != nil {
		return nil, err
	}

	badges, err := s.badgeRepo.Count(ctx)
	if err != nil {
		return nil, err
	}

	credits, err := s.balanceRepo.TotalCredits(ctx)
	if err != nil {
		return nil, err
	}

	_, proposals, err := s.govRepo.ListProposals(ctx, 0, 1)
	if err != nil {
		return nil, err
	}

	totals, err := s.poolRepo.GetTotals(ctx)
	if err != nil {
		return nil, err
	}

	stats := &PlatformStats{
		TotalRaised:   domain.Amount(totalRaised).String(),
		Contributors:  contributors,
		BadgesMinted:  badges,
		CreditsIssued: credits,
		Proposals:     proposals,
		Pool:          totals.ToResponse(),
	}

	s.statsCache.Set(ctx, statsCacheKey, stats)

	return stats, nil
}
