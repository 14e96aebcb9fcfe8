package domain

import "errors"

// Validation errors
var (
	ErrInvalidAmount   = errors.New("amount must be positive")
	ErrInvalidInput    = errors.New("invalid input")
	ErrInvalidCode     = errors.New("malformed claim code")
	ErrInvalidProposal = errors.New("proposal requires title, description, location and a positive budget")
)

// Not-found errors
var (
	ErrCodeNotFound         = errors.New("claim code not found")
	ErrContributionNotFound = errors.New("contribution not found")
	ErrProposalNotFound     = errors.New("proposal not found")
	ErrBadgeNotFound        = errors.New("badge not found")
	ErrDonorNotFound        = errors.New("donor not found")
	ErrVoteNotFound         = errors.New("voter has not voted on this proposal")
)

// Conflict errors, surfaced to the caller verbatim
var (
	ErrAlreadyClaimed    = errors.New("contribution already claimed")
	ErrAlreadyVoted      = errors.New("voter has already voted on this proposal")
	ErrVotingClosed      = errors.New("voting period has ended")
	ErrVotingOpen        = errors.New("voting period has not ended yet")
	ErrProposalNotPassed = errors.New("proposal did not succeed")
	ErrProposalFinalized = errors.New("proposal already executed or cancelled")
	ErrNoVotingPower     = errors.New("voter holds no credits")
)

// State violations. These mean the stored data itself broke an invariant;
// callers log them loudly and never try to heal the row.
var (
	ErrInternalInconsistency = errors.New("claimed contribution has no recorded badge")
	ErrPoolInvariantBreach   = errors.New("withdrawn yield exceeds earned yield")
)

// Resource exhaustion
var (
	ErrCodeSpaceExhausted = errors.New("claim code generation retries exhausted")
	ErrNothingToWithdraw  = errors.New("no unwithdrawn yield")
	ErrNoPooledPrincipal  = errors.New("pool holds no principal to accrue against")
)
