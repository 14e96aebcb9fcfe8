package services

import (
	"testing"
	"time"

	"aquahope-backend/internal/adapters/persistence/models"
	"aquahope-backend/internal/core/domain"
)

func TestSweepProposalOutcomes(t *testing.T) {
	store := newMemStore()
	notifier := &recordingNotifier{}
	svc := NewCronService(&fakeGovRepo{store: store}, nil, notifier)

	now := time.Now()
	store.proposals[1] = &models.Proposal{
		ID: 1, Slug: "won", Title: "Won", EndAt: now.Add(-time.Hour),
		ForWeight: 100, AgainstWeight: 50,
	}
	store.proposals[2] = &models.Proposal{
		ID: 2, Slug: "lost", Title: "Lost", EndAt: now.Add(-time.Hour),
		ForWeight: 10, AgainstWeight: 50,
	}
	store.proposals[3] = &models.Proposal{
		ID: 3, Slug: "open", Title: "Still open", EndAt: now.Add(time.Hour),
	}

	svc.SweepProposalOutcomes()

	if len(notifier.outcomes) != 2 {
		t.Fatalf("outcomes notified = %d, want 2", len(notifier.outcomes))
	}
	seen := map[domain.ProposalStatus]int{}
	for _, s := range notifier.outcomes {
		seen[s]++
	}
	if seen[domain.ProposalSucceeded] != 1 || seen[domain.ProposalDefeated] != 1 {
		t.Errorf("outcomes = %v", notifier.outcomes)
	}

	// A second sweep finds nothing: notifications are one-shot
	svc.SweepProposalOutcomes()
	if len(notifier.outcomes) != 2 {
		t.Errorf("second sweep re-notified: %d outcomes", len(notifier.outcomes))
	}
}
