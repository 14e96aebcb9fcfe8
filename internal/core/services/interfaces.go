package services

import (
	"aquahope-backend/internal/adapters/persistence/models"
	"aquahope-backend/internal/core/domain"
)

// Note: AuthService implementation is in auth_service.go
// Note: LedgerService implementation is in ledger_service.go
// Note: ClaimService implementation is in claim_service.go

// Notifier delivers donor-facing notifications. Delivery is fire-and-forget:
// implementations must never block a request on the outbound channel.
type Notifier interface {
	NotifyContribution(contribution *models.Contribution, claimCode string)
	NotifyBadgeMinted(badge *models.Badge, credits int64)
	NotifyProposalCreated(proposal *models.Proposal)
	NotifyProposalOutcome(proposal *models.Proposal, status domain.ProposalStatus)
}

// NopNotifier is the Notifier used when no webhook is configured
type NopNotifier struct{}

func (NopNotifier) NotifyContribution(*models.Contribution, string)               {}
func (NopNotifier) NotifyBadgeMinted(*models.Badge, int64)                        {}
func (NopNotifier) NotifyProposalCreated(*models.Proposal)                        {}
func (NopNotifier) NotifyProposalOutcome(*models.Proposal, domain.ProposalStatus) {}
