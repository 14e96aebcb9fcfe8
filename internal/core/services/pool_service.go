package services

import (
	"context"
	"errors"
	"log"
	"math/big"
	"sync"

	"aquahope-backend/internal/adapters/cache"
	"aquahope-backend/internal/adapters/persistence/models"
	"aquahope-backend/internal/adapters/persistence/repositories"
	"aquahope-backend/internal/config"
	"aquahope-backend/internal/core/domain"

	"gorm.io/gorm"
)

// PoolService handles yield pool accounting: principal deposits, pro-rata
// yield accrual and per-contributor withdrawals. All mutating operations
// serialize through one mutex because every accrual reads the whole account
// set.
type PoolService struct {
	poolRepo   repositories.PoolRepository
	statsCache *cache.StatsCache
	mu         sync.Mutex
	splitPct   int64
}

// NewPoolService creates a new pool service
func NewPoolService(poolRepo repositories.PoolRepository, statsCache *cache.StatsCache, cfg *config.Config) *PoolService {
	return &PoolService{
		poolRepo:   poolRepo,
		statsCache: statsCache,
		splitPct:   cfg.Platform.MaintenanceSplitPct,
	}
}

// Deposit adds principal to a contributor's pool stake
func (s *PoolService) Deposit(ctx context.Context, contributor string, rawAmount string) (*models.PoolAccount, error) {
	amount, err := domain.ParseAmount(rawAmount)
	if err != nil || !amount.IsPositive() {
		return nil, domain.ErrInvalidAmount
	}

	return s.DepositAmount(ctx, contributor, amount)
}

// DepositAmount adds an already-parsed principal amount. Recording a
// contribution funnels through here as well, so every ledger entry also
// grows the contributor's pool stake.
func (s *PoolService) DepositAmount(ctx context.Context, contributor string, amount domain.Amount) (*models.PoolAccount, error) {
	if contributor == "" {
		return nil, domain.ErrInvalidInput
	}
	if !amount.IsPositive() {
		return nil, domain.ErrInvalidAmount
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Totals row must exist before the transaction increments it
	if _, err := s.poolRepo.GetTotals(ctx); err != nil {
		return nil, err
	}

	if err := s.poolRepo.Deposit(ctx, contributor, int64(amount)); err != nil {
		return nil, err
	}

	s.statsCache.Invalidate(ctx, statsCacheKey)

	log.Printf("✅ Pool deposit: %s from %s", amount.String(), contributor)

	return s.poolRepo.GetAccount(ctx, contributor)
}

// AccrueYield distributes a yield amount across pool accounts pro rata to
// principal, flooring each share, and records the allocated sum's split
// into the maintenance and project buckets. Flooring means the allocated
// sum may fall short of the nominal amount; both the aggregate earned
// figure and the bucket split track what was actually allocated so
// per-account sums always reconcile.
func (s *PoolService) AccrueYield(ctx context.Context, rawAmount string) (domain.Amount, error) {
	amount, err := domain.ParseAmount(rawAmount)
	if err != nil || !amount.IsPositive() {
		return 0, domain.ErrInvalidAmount
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.poolRepo.GetTotals(ctx); err != nil {
		return 0, err
	}

	accounts, err := s.poolRepo.ListAccounts(ctx)
	if err != nil {
		return 0, err
	}

	var totalPrincipal int64
	for _, account := range accounts {
		totalPrincipal += account.PrincipalMicro
	}
	if totalPrincipal <= 0 {
		return 0, domain.ErrNoPooledPrincipal
	}

	// Floor pro-rata shares; big.Int keeps the product exact
	nominal := int64(amount)
	shares := make(map[string]int64, len(accounts))
	var allocated int64
	for _, account := range accounts {
		if account.PrincipalMicro <= 0 {
			continue
		}
		share := new(big.Int).Mul(big.NewInt(nominal), big.NewInt(account.PrincipalMicro))
		share.Div(share, big.NewInt(totalPrincipal))
		shares[account.Contributor] = share.Int64()
		allocated += share.Int64()
	}

	// Split the allocated figure, not the nominal one, so the two buckets
	// always sum to what the accounts actually earned
	split := new(big.Int).Mul(big.NewInt(allocated), big.NewInt(s.splitPct))
	split.Quo(split, big.NewInt(100))
	maintenance := split.Int64()
	project := allocated - maintenance

	if err := s.poolRepo.Accrue(ctx, shares, allocated, maintenance, project); err != nil {
		return 0, err
	}

	s.statsCache.Invalidate(ctx, statsCacheKey)

	log.Printf("✅ Yield accrued: %s nominal, %d allocated across %d accounts", amount.String(), allocated, len(shares))

	return domain.Amount(allocated), nil
}

// WithdrawYield moves a contributor's entire unwithdrawn yield out of the
// pool and returns the amount withdrawn
func (s *PoolService) WithdrawYield(ctx context.Context, contributor string) (domain.Amount, error) {
	if contributor == "" {
		return 0, domain.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	account, err := s.poolRepo.GetAccount(ctx, contributor)
	if err != nil {
		return 0, err
	}
	if account == nil {
		return 0, domain.ErrNothingToWithdraw
	}

	available := account.Unwithdrawn()
	if available == 0 {
		return 0, domain.ErrNothingToWithdraw
	}
	if available < 0 {
		log.Printf("🚨 Pool account %s has withdrawn %d > earned %d", contributor, account.WithdrawnMicro, account.EarnedMicro)
		return 0, domain.ErrPoolInvariantBreach
	}

	if err := s.poolRepo.Withdraw(ctx, contributor, available); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, domain.ErrNothingToWithdraw
		}
		return 0, err
	}

	s.statsCache.Invalidate(ctx, statsCacheKey)

	log.Printf("✅ Yield withdrawn: %s by %s", domain.Amount(available).String(), contributor)

	return domain.Amount(available), nil
}

// GetAccount gets one contributor's pool account
func (s *PoolService) GetAccount(ctx context.Context, contributor string) (*models.PoolAccount, error) {
	account, err := s.poolRepo.GetAccount(ctx, contributor)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, domain.ErrDonorNotFound
	}
	return account, nil
}

// GetStats gets the pool aggregate figures, checking the withdrawal
// invariant on the way out
func (s *PoolService) GetStats(ctx context.Context) (*models.PoolTotals, error) {
	totals, err := s.poolRepo.GetTotals(ctx)
	if err != nil {
		return nil, err
	}

	if totals.WithdrawnMicro > totals.EarnedMicro {
		log.Printf("🚨 Pool totals withdrawn %d > earned %d", totals.WithdrawnMicro, totals.EarnedMicro)
		return nil, domain.ErrPoolInvariantBreach
	}

	return totals, nil
}
