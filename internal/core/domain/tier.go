package domain

import "math/big"

// BadgeTier is the ordered rank of a donor badge, lowest to highest.
type BadgeTier uint8

const (
	TierBronze BadgeTier = iota
	TierSilver
	TierGold
	TierPlatinum
	TierDiamond
)

var tierNames = [...]string{"Bronze", "Silver", "Gold", "Platinum", "Diamond"}

// String returns the display name of the tier.
func (t BadgeTier) String() string {
	if int(t) < len(tierNames) {
		return tierNames[t]
	}
	return "Unknown"
}

// DefaultCreditRate is the number of impact credits minted per base unit
// donated (1000 credits per 1 unit).
const DefaultCreditRate = 1000

// Default tier thresholds in base units: 0.01 / 0.1 / 1 / 10 / 100.
var defaultTierThresholds = [5]Amount{
	10_000,      // Bronze  0.01
	100_000,     // Silver  0.1
	1_000_000,   // Gold    1
	10_000_000,  // Platinum 10
	100_000_000, // Diamond 100
}

// TierRules maps contribution amounts to credit quantities and badge tiers.
// Both functions are pure and total: every amount resolves to some tier and
// some (possibly zero) credit quantity.
type TierRules struct {
	creditRate int64
	thresholds [5]Amount
}

// DefaultTierRules returns the reference rule set.
func DefaultTierRules() TierRules {
	return TierRules{creditRate: DefaultCreditRate, thresholds: defaultTierThresholds}
}

// NewTierRules builds a rule set with a custom credit rate. Non-positive
// rates fall back to the default.
func NewTierRules(creditRate int64) TierRules {
	if creditRate <= 0 {
		creditRate = DefaultCreditRate
	}
	return TierRules{creditRate: creditRate, thresholds: defaultTierThresholds}
}

// CreditsFor returns floor(amount * creditRate) in whole credits. The
// intermediate product amount*rate can exceed int64 for amounts ParseAmount
// accepts, so it is widened through big.Int.
func (r TierRules) CreditsFor(amount Amount) int64 {
	if amount <= 0 {
		return 0
	}
	credits := new(big.Int).Mul(big.NewInt(int64(amount)), big.NewInt(r.creditRate))
	credits.Quo(credits, big.NewInt(MicroUnitsPerBase))
	return credits.Int64()
}

// TierFor classifies an amount against the threshold table. Lower bounds are
// inclusive; anything below the Bronze threshold is still Bronze, so every
// contribution earns a badge.
func (r TierRules) TierFor(amount Amount) BadgeTier {
	tier := TierBronze
	for i := len(r.thresholds) - 1; i >= 1; i-- {
		if amount >= r.thresholds[i] {
			tier = BadgeTier(i)
			break
		}
	}
	return tier
}

// CreditRate exposes the configured rate for read-model responses.
func (r TierRules) CreditRate() int64 {
	return r.creditRate
}
