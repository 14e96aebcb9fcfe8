package services

import (
	"context"
	"sync"
	"testing"

	"aquahope-backend/internal/core/domain"
)

type claimFixture struct {
	ledger *LedgerService
	claims *ClaimService
	repo   *fakeClaimRepo
	store  *memStore
}

func newClaimFixture() *claimFixture {
	store := newMemStore()
	cfg := newTestConfig()
	contributionRepo := &fakeContributionRepo{store: store}
	badgeRepo := &fakeBadgeRepo{store: store}
	claimRepo := &fakeClaimRepo{store: store}

	pool := NewPoolService(&fakePoolRepo{store: store}, nil, cfg)

	return &claimFixture{
		ledger: NewLedgerService(contributionRepo, &fakeBalanceRepo{store: store}, badgeRepo, pool, NopNotifier{}, cfg),
		claims: NewClaimService(contributionRepo, badgeRepo, claimRepo, NopNotifier{}, nil, cfg),
		repo:   claimRepo,
		store:  store,
	}
}

func (f *claimFixture) donate(t *testing.T, contributor, amount string) string {
	t.Helper()
	c, err := f.ledger.RecordDonation(context.Background(), &RecordDonationInput{
		Contributor: contributor,
		Amount:      amount,
	})
	if err != nil {
		t.Fatalf("RecordDonation: %v", err)
	}
	return c.ClaimCode
}

func TestClaim(t *testing.T) {
	f := newClaimFixture()
	code := f.donate(t, "0xabc", "0.5")

	result, err := f.claims.Claim(context.Background(), code)
	if err != nil {
		t.Fatalf("Claim: %v", err)
	}

	if result.Credits != 500 {
		t.Errorf("credits = %d, want 500", result.Credits)
	}
	if result.Tier != domain.TierSilver {
		t.Errorf("tier = %s, want Silver", result.Tier)
	}
	if result.Contributor != "0xabc" {
		t.Errorf("contributor = %s", result.Contributor)
	}

	f.store.mu.Lock()
	balance := f.store.balances["0xabc"]
	f.store.mu.Unlock()
	if balance != 500 {
		t.Errorf("stored balance = %d, want 500", balance)
	}
}

func TestClaimLowercaseCodeAccepted(t *testing.T) {
	f := newClaimFixture()
	code := f.donate(t, "0xabc", "1")

	lower := ""
	for _, r := range code {
		if r >= 'A' && r <= 'Z' {
			r += 'a' - 'A'
		}
		lower += string(r)
	}

	if _, err := f.claims.Claim(context.Background(), lower); err != nil {
		t.Fatalf("Claim with lowercase code: %v", err)
	}
}

func TestClaimErrors(t *testing.T) {
	f := newClaimFixture()
	ctx := context.Background()

	if _, err := f.claims.Claim(ctx, "not-a-code"); err != domain.ErrInvalidCode {
		t.Errorf("malformed code: err = %v, want ErrInvalidCode", err)
	}

	if _, err := f.claims.Claim(ctx, "00112233AABBCCDD"); err != domain.ErrCodeNotFound {
		t.Errorf("unknown code: err = %v, want ErrCodeNotFound", err)
	}
}

func TestClaimIsIdempotent(t *testing.T) {
	f := newClaimFixture()
	code := f.donate(t, "0xabc", "0.5")
	ctx := context.Background()

	first, err := f.claims.Claim(ctx, code)
	if err != nil {
		t.Fatalf("first claim: %v", err)
	}

	second, err := f.claims.Claim(ctx, code)
	if err != nil {
		t.Fatalf("second claim: %v", err)
	}

	if second.BadgeID != first.BadgeID || second.Credits != first.Credits || second.Tier != first.Tier {
		t.Errorf("second claim %+v differs from first %+v", second, first)
	}

	if f.repo.mints != 1 {
		t.Errorf("mints = %d, want exactly 1", f.repo.mints)
	}

	f.store.mu.Lock()
	balance := f.store.balances["0xabc"]
	f.store.mu.Unlock()
	if balance != 500 {
		t.Errorf("balance after re-claim = %d, want 500", balance)
	}
}

func TestClaimReplayKeepsMintedCredits(t *testing.T) {
	f := newClaimFixture()
	code := f.donate(t, "0xabc", "0.5")
	ctx := context.Background()

	first, err := f.claims.Claim(ctx, code)
	if err != nil {
		t.Fatalf("first claim: %v", err)
	}
	if first.Credits != 500 {
		t.Fatalf("credits = %d, want 500", first.Credits)
	}

	// Rebuild the service with a tenfold credit rate over the same
	// storage, as a restart with a changed rate would
	cfg := newTestConfig()
	cfg.Platform.CreditRate = 10000
	reclaims := NewClaimService(
		&fakeContributionRepo{store: f.store},
		&fakeBadgeRepo{store: f.store},
		&fakeClaimRepo{store: f.store},
		NopNotifier{},
		nil,
		cfg,
	)

	replayed, err := reclaims.Claim(ctx, code)
	if err != nil {
		t.Fatalf("replay claim: %v", err)
	}
	if replayed.Credits != first.Credits {
		t.Errorf("replayed credits = %d, want the minted %d", replayed.Credits, first.Credits)
	}

	f.store.mu.Lock()
	balance := f.store.balances["0xabc"]
	f.store.mu.Unlock()
	if balance != 500 {
		t.Errorf("balance after replay = %d, want 500", balance)
	}
}

func TestClaimConcurrentSameCode(t *testing.T) {
	f := newClaimFixture()
	code := f.donate(t, "0xabc", "1")
	ctx := context.Background()

	const callers = 50
	results := make([]*domain.ClaimResult, callers)
	errs := make([]error, callers)

	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = f.claims.Claim(ctx, code)
		}(i)
	}
	wg.Wait()

	for i := 0; i < callers; i++ {
		if errs[i] != nil {
			t.Fatalf("caller %d failed: %v", i, errs[i])
		}
		if results[i].BadgeID != results[0].BadgeID {
			t.Fatalf("caller %d saw badge %d, caller 0 saw %d", i, results[i].BadgeID, results[0].BadgeID)
		}
	}

	if f.repo.mints != 1 {
		t.Errorf("mints = %d, want exactly 1", f.repo.mints)
	}

	f.store.mu.Lock()
	balance := f.store.balances["0xabc"]
	f.store.mu.Unlock()
	if balance != 1000 {
		t.Errorf("balance = %d, want 1000", balance)
	}
}

func TestClaimDetectsBrokenLedger(t *testing.T) {
	f := newClaimFixture()
	code := f.donate(t, "0xabc", "1")

	// Simulate a row claimed by hand with no badge behind it
	f.store.mu.Lock()
	for _, c := range f.store.contributions {
		if c.ClaimCode == code {
			c.Claimed = true
		}
	}
	f.store.mu.Unlock()

	if _, err := f.claims.Claim(context.Background(), code); err != domain.ErrInternalInconsistency {
		t.Errorf("err = %v, want ErrInternalInconsistency", err)
	}
}

func TestClaimTierBoundaries(t *testing.T) {
	cases := []struct {
		amount string
		tier   domain.BadgeTier
	}{
		{"0.005", domain.TierBronze},
		{"0.01", domain.TierBronze},
		{"0.1", domain.TierSilver},
		{"1", domain.TierGold},
		{"10", domain.TierPlatinum},
		{"100", domain.TierDiamond},
		{"250", domain.TierDiamond},
	}

	for _, tc := range cases {
		t.Run(tc.amount, func(t *testing.T) {
			f := newClaimFixture()
			code := f.donate(t, "0xabc", tc.amount)

			result, err := f.claims.Claim(context.Background(), code)
			if err != nil {
				t.Fatalf("Claim: %v", err)
			}
			if result.Tier != tc.tier {
				t.Errorf("tier for %s = %s, want %s", tc.amount, result.Tier, tc.tier)
			}
		})
	}
}
