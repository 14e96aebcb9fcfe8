package services

import (
	"context"
	"testing"

	"aquahope-backend/internal/core/domain"
)

func newPoolFixture() (*PoolService, *memStore) {
	store := newMemStore()
	return NewPoolService(&fakePoolRepo{store: store}, nil, newTestConfig()), store
}

func TestPoolDeposit(t *testing.T) {
	svc, _ := newPoolFixture()
	ctx := context.Background()

	account, err := svc.Deposit(ctx, "0xX", "10")
	if err != nil {
		t.Fatalf("Deposit: %v", err)
	}
	if account.PrincipalMicro != 10_000_000 {
		t.Errorf("principal = %d, want 10000000", account.PrincipalMicro)
	}

	account, err = svc.Deposit(ctx, "0xX", "5")
	if err != nil {
		t.Fatalf("second deposit: %v", err)
	}
	if account.PrincipalMicro != 15_000_000 {
		t.Errorf("principal = %d, want 15000000", account.PrincipalMicro)
	}

	if _, err := svc.Deposit(ctx, "0xX", "0"); err != domain.ErrInvalidAmount {
		t.Errorf("zero deposit: err = %v, want ErrInvalidAmount", err)
	}
	if _, err := svc.Deposit(ctx, "", "1"); err != domain.ErrInvalidInput {
		t.Errorf("empty contributor: err = %v, want ErrInvalidInput", err)
	}
}

func TestAccrueYieldProRata(t *testing.T) {
	svc, _ := newPoolFixture()
	ctx := context.Background()

	// X deposits 10, yield 1 accrues: X earns all of it
	if _, err := svc.Deposit(ctx, "0xX", "10"); err != nil {
		t.Fatalf("Deposit: %v", err)
	}
	if _, err := svc.AccrueYield(ctx, "1"); err != nil {
		t.Fatalf("AccrueYield: %v", err)
	}

	x, err := svc.GetAccount(ctx, "0xX")
	if err != nil {
		t.Fatalf("GetAccount: %v", err)
	}
	if x.EarnedMicro != 1_000_000 {
		t.Errorf("X earned = %d, want 1000000", x.EarnedMicro)
	}

	// Y deposits 10, yield 2 accrues: split evenly, X now holds 2 total
	if _, err := svc.Deposit(ctx, "0xY", "10"); err != nil {
		t.Fatalf("Deposit Y: %v", err)
	}
	if _, err := svc.AccrueYield(ctx, "2"); err != nil {
		t.Fatalf("second AccrueYield: %v", err)
	}

	x, _ = svc.GetAccount(ctx, "0xX")
	y, _ := svc.GetAccount(ctx, "0xY")
	if x.EarnedMicro != 2_000_000 {
		t.Errorf("X earned = %d, want 2000000", x.EarnedMicro)
	}
	if y.EarnedMicro != 1_000_000 {
		t.Errorf("Y earned = %d, want 1000000", y.EarnedMicro)
	}
}

func TestAccrueYieldFloorsShares(t *testing.T) {
	svc, _ := newPoolFixture()
	ctx := context.Background()

	if _, err := svc.Deposit(ctx, "0xX", "1"); err != nil {
		t.Fatalf("Deposit: %v", err)
	}
	if _, err := svc.Deposit(ctx, "0xY", "2"); err != nil {
		t.Fatalf("Deposit: %v", err)
	}

	// 0.000001 over a 1:2 split floors to 0 for X, 0 for Y (2/3 of a micro)
	allocated, err := svc.AccrueYield(ctx, "0.000001")
	if err != nil {
		t.Fatalf("AccrueYield: %v", err)
	}
	if allocated != 0 {
		t.Errorf("allocated = %d, want 0", allocated)
	}

	// 0.000100 over a 1:2 split gives X 33, Y 66
	allocated, err = svc.AccrueYield(ctx, "0.0001")
	if err != nil {
		t.Fatalf("AccrueYield: %v", err)
	}
	if allocated != 99 {
		t.Errorf("allocated = %d, want 99", allocated)
	}

	x, _ := svc.GetAccount(ctx, "0xX")
	y, _ := svc.GetAccount(ctx, "0xY")
	if x.EarnedMicro != 33 || y.EarnedMicro != 66 {
		t.Errorf("earned = %d/%d, want 33/66", x.EarnedMicro, y.EarnedMicro)
	}
}

func TestAccrueYieldWithoutPrincipal(t *testing.T) {
	svc, _ := newPoolFixture()

	if _, err := svc.AccrueYield(context.Background(), "1"); err != domain.ErrNoPooledPrincipal {
		t.Errorf("err = %v, want ErrNoPooledPrincipal", err)
	}
}

func TestAccrueYieldBucketSplit(t *testing.T) {
	svc, _ := newPoolFixture()
	ctx := context.Background()

	if _, err := svc.Deposit(ctx, "0xX", "10"); err != nil {
		t.Fatalf("Deposit: %v", err)
	}
	if _, err := svc.AccrueYield(ctx, "10"); err != nil {
		t.Fatalf("AccrueYield: %v", err)
	}

	stats, err := svc.GetStats(ctx)
	if err != nil {
		t.Fatalf("GetStats: %v", err)
	}
	if stats.MaintenanceMicro != 3_000_000 {
		t.Errorf("maintenance bucket = %d, want 3000000 (30%%)", stats.MaintenanceMicro)
	}
	if stats.ProjectMicro != 7_000_000 {
		t.Errorf("project bucket = %d, want 7000000 (70%%)", stats.ProjectMicro)
	}
	if stats.MaintenanceMicro+stats.ProjectMicro != 10_000_000 {
		t.Error("buckets do not sum to the accrued amount")
	}
}

func TestAccrueYieldBucketsSplitAllocated(t *testing.T) {
	svc, _ := newPoolFixture()
	ctx := context.Background()

	if _, err := svc.Deposit(ctx, "0xX", "1"); err != nil {
		t.Fatalf("Deposit: %v", err)
	}
	if _, err := svc.Deposit(ctx, "0xY", "2"); err != nil {
		t.Fatalf("Deposit: %v", err)
	}

	// Flooring over a 1:2 split allocates 99 of the 100 nominal micros.
	// The buckets split the 99, matching the aggregate earned figure.
	allocated, err := svc.AccrueYield(ctx, "0.0001")
	if err != nil {
		t.Fatalf("AccrueYield: %v", err)
	}
	if allocated != 99 {
		t.Fatalf("allocated = %d, want 99", allocated)
	}

	stats, err := svc.GetStats(ctx)
	if err != nil {
		t.Fatalf("GetStats: %v", err)
	}
	if stats.MaintenanceMicro != 29 {
		t.Errorf("maintenance bucket = %d, want 29", stats.MaintenanceMicro)
	}
	if stats.ProjectMicro != 70 {
		t.Errorf("project bucket = %d, want 70", stats.ProjectMicro)
	}
	if stats.MaintenanceMicro+stats.ProjectMicro != stats.EarnedMicro {
		t.Errorf("buckets sum to %d, earned total is %d",
			stats.MaintenanceMicro+stats.ProjectMicro, stats.EarnedMicro)
	}
}

func TestWithdrawYield(t *testing.T) {
	svc, _ := newPoolFixture()
	ctx := context.Background()

	if _, err := svc.Deposit(ctx, "0xX", "10"); err != nil {
		t.Fatalf("Deposit: %v", err)
	}
	if _, err := svc.AccrueYield(ctx, "3"); err != nil {
		t.Fatalf("AccrueYield: %v", err)
	}

	withdrawn, err := svc.WithdrawYield(ctx, "0xX")
	if err != nil {
		t.Fatalf("WithdrawYield: %v", err)
	}
	if withdrawn != 3_000_000 {
		t.Errorf("withdrawn = %d, want 3000000", withdrawn)
	}

	// Nothing left: a retry is rejected, not double-paid
	if _, err := svc.WithdrawYield(ctx, "0xX"); err != domain.ErrNothingToWithdraw {
		t.Errorf("second withdraw: err = %v, want ErrNothingToWithdraw", err)
	}

	// Unknown contributor
	if _, err := svc.WithdrawYield(ctx, "0xnobody"); err != domain.ErrNothingToWithdraw {
		t.Errorf("unknown contributor: err = %v, want ErrNothingToWithdraw", err)
	}

	account, _ := svc.GetAccount(ctx, "0xX")
	if account.Unwithdrawn() != 0 {
		t.Errorf("available after withdraw = %d, want 0", account.Unwithdrawn())
	}
	if account.PrincipalMicro != 10_000_000 {
		t.Errorf("principal touched by withdraw: %d", account.PrincipalMicro)
	}
}

func TestWithdrawThenAccrueAgain(t *testing.T) {
	svc, _ := newPoolFixture()
	ctx := context.Background()

	if _, err := svc.Deposit(ctx, "0xX", "10"); err != nil {
		t.Fatalf("Deposit: %v", err)
	}
	if _, err := svc.AccrueYield(ctx, "1"); err != nil {
		t.Fatalf("AccrueYield: %v", err)
	}
	if _, err := svc.WithdrawYield(ctx, "0xX"); err != nil {
		t.Fatalf("WithdrawYield: %v", err)
	}
	if _, err := svc.AccrueYield(ctx, "2"); err != nil {
		t.Fatalf("second AccrueYield: %v", err)
	}

	withdrawn, err := svc.WithdrawYield(ctx, "0xX")
	if err != nil {
		t.Fatalf("second WithdrawYield: %v", err)
	}
	if withdrawn != 2_000_000 {
		t.Errorf("withdrawn = %d, want 2000000", withdrawn)
	}
}

func TestPoolInvariantBreachDetected(t *testing.T) {
	svc, store := newPoolFixture()
	ctx := context.Background()

	store.mu.Lock()
	store.totals.EarnedMicro = 100
	store.totals.WithdrawnMicro = 200
	store.mu.Unlock()

	if _, err := svc.GetStats(ctx); err != domain.ErrPoolInvariantBreach {
		t.Errorf("err = %v, want ErrPoolInvariantBreach", err)
	}
}
