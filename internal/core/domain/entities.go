package domain

import "time"

// Role represents a user role in the system
type Role string

const (
	RoleDonor    Role = "DONOR"
	RoleOperator Role = "OPERATOR"
	RoleAdmin    Role = "ADMIN"
)

// ProposalStatus is the computed lifecycle state of a proposal. Terminal
// flags (executed/cancelled) are stored; everything else is derived from the
// vote tallies and the clock, never persisted.
type ProposalStatus string

const (
	ProposalActive    ProposalStatus = "Active"
	ProposalSucceeded ProposalStatus = "Succeeded"
	ProposalDefeated  ProposalStatus = "Defeated"
	ProposalExecuted  ProposalStatus = "Executed"
	ProposalCancelled ProposalStatus = "Cancelled"
)

// ResolveProposal computes the status of a proposal. It is a pure function of
// (executed, cancelled, forWeight, againstWeight, endAt, now) so the outcome
// is reproducible wherever it is evaluated. Ties resolve to Defeated.
func ResolveProposal(executed, cancelled bool, forWeight, againstWeight int64, endAt, now time.Time) ProposalStatus {
	switch {
	case cancelled:
		return ProposalCancelled
	case executed:
		return ProposalExecuted
	case !now.After(endAt):
		return ProposalActive
	case forWeight > againstWeight:
		return ProposalSucceeded
	default:
		return ProposalDefeated
	}
}

// ClaimResult is what a claim code redeems into: the credit quantity minted
// for the contribution and the id of the issued badge. Re-claiming a code
// returns the identical result.
type ClaimResult struct {
	Contributor string
	Credits     int64
	BadgeID     uint
	Tier        BadgeTier
	Amount      Amount
}
