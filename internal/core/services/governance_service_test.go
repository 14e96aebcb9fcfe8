package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"aquahope-backend/internal/core/domain"
)

type govFixture struct {
	svc   *GovernanceService
	store *memStore
}

func newGovFixture() *govFixture {
	store := newMemStore()
	return &govFixture{
		svc: NewGovernanceService(
			&fakeGovRepo{store: store},
			&fakeBalanceRepo{store: store},
			NopNotifier{},
			newTestConfig(),
		),
		store: store,
	}
}

func (f *govFixture) giveCredits(contributor string, credits int64) {
	f.store.mu.Lock()
	f.store.balances[contributor] = credits
	f.store.mu.Unlock()
}

func (f *govFixture) propose(t *testing.T, title string) *testProposal {
	t.Helper()
	p, err := f.svc.CreateProposal(context.Background(), &CreateProposalInput{
		Title:       title,
		Description: "drill a new borehole",
		Location:    "Kisumu",
		Budget:      "50",
		Proposer:    "0xproposer",
	})
	if err != nil {
		t.Fatalf("CreateProposal: %v", err)
	}
	return &testProposal{fixture: f, id: p.ID}
}

type testProposal struct {
	fixture *govFixture
	id      uint
}

// closeVoting moves the proposal's end time into the past
func (p *testProposal) closeVoting() {
	p.fixture.store.mu.Lock()
	p.fixture.store.proposals[p.id].EndAt = time.Now().Add(-time.Minute)
	p.fixture.store.mu.Unlock()
}

func TestCreateProposal(t *testing.T) {
	f := newGovFixture()

	p, err := f.svc.CreateProposal(context.Background(), &CreateProposalInput{
		Title:       "Borehole for Kisumu East",
		Description: "drill a new borehole",
		Location:    "Kisumu",
		Budget:      "50",
		Proposer:    "0xproposer",
	})
	if err != nil {
		t.Fatalf("CreateProposal: %v", err)
	}

	if p.Slug != "borehole-for-kisumu-east" {
		t.Errorf("slug = %q", p.Slug)
	}
	wantEnd := time.Now().Add(7 * 24 * time.Hour)
	if diff := p.EndAt.Sub(wantEnd); diff < -time.Minute || diff > time.Minute {
		t.Errorf("end time %v not ~7 days out", p.EndAt)
	}
	if p.StatusAt(time.Now()) != domain.ProposalActive {
		t.Errorf("new proposal status = %s, want Active", p.StatusAt(time.Now()))
	}
}

func TestCreateProposalValidation(t *testing.T) {
	f := newGovFixture()
	ctx := context.Background()

	cases := []struct {
		name  string
		input CreateProposalInput
	}{
		{"empty title", CreateProposalInput{Description: "d", Location: "l", Budget: "1", Proposer: "p"}},
		{"empty description", CreateProposalInput{Title: "t", Location: "l", Budget: "1", Proposer: "p"}},
		{"empty location", CreateProposalInput{Title: "t", Description: "d", Budget: "1", Proposer: "p"}},
		{"zero budget", CreateProposalInput{Title: "t", Description: "d", Location: "l", Budget: "0", Proposer: "p"}},
		{"negative budget", CreateProposalInput{Title: "t", Description: "d", Location: "l", Budget: "-5", Proposer: "p"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := f.svc.CreateProposal(ctx, &tc.input); err != domain.ErrInvalidProposal {
				t.Errorf("err = %v, want ErrInvalidProposal", err)
			}
		})
	}
}

func TestCreateProposalSlugCollision(t *testing.T) {
	f := newGovFixture()

	first := f.propose(t, "New Well")
	second := f.propose(t, "New Well")

	f.store.mu.Lock()
	slug1 := f.store.proposals[first.id].Slug
	slug2 := f.store.proposals[second.id].Slug
	f.store.mu.Unlock()

	if slug1 != "new-well" || slug2 != "new-well-2" {
		t.Errorf("slugs = %q, %q", slug1, slug2)
	}
}

func TestVote(t *testing.T) {
	f := newGovFixture()
	f.giveCredits("0xvoter", 750)
	p := f.propose(t, "New Well")
	ctx := context.Background()

	vote, err := f.svc.Vote(ctx, p.id, "0xvoter", true)
	if err != nil {
		t.Fatalf("Vote: %v", err)
	}
	if vote.Weight != 750 {
		t.Errorf("weight = %d, want 750", vote.Weight)
	}

	got, err := f.svc.GetProposal(ctx, p.id)
	if err != nil {
		t.Fatalf("GetProposal: %v", err)
	}
	if got.ForWeight != 750 || got.AgainstWeight != 0 {
		t.Errorf("tally = %d/%d, want 750/0", got.ForWeight, got.AgainstWeight)
	}
}

func TestGetVoterBallot(t *testing.T) {
	f := newGovFixture()
	f.giveCredits("0xvoter", 750)
	p := f.propose(t, "New Well")
	ctx := context.Background()

	if _, err := f.svc.GetVoterBallot(ctx, p.id, "0xvoter"); err != domain.ErrVoteNotFound {
		t.Errorf("before voting: err = %v, want ErrVoteNotFound", err)
	}

	if _, err := f.svc.Vote(ctx, p.id, "0xvoter", false); err != nil {
		t.Fatalf("Vote: %v", err)
	}

	ballot, err := f.svc.GetVoterBallot(ctx, p.id, "0xvoter")
	if err != nil {
		t.Fatalf("GetVoterBallot: %v", err)
	}
	if ballot.Support || ballot.Weight != 750 {
		t.Errorf("ballot = support %t weight %d, want support false weight 750", ballot.Support, ballot.Weight)
	}

	if _, err := f.svc.GetVoterBallot(ctx, 999, "0xvoter"); err != domain.ErrProposalNotFound {
		t.Errorf("unknown proposal: err = %v, want ErrProposalNotFound", err)
	}
}

func TestVoteWeightIsSnapshotted(t *testing.T) {
	f := newGovFixture()
	f.giveCredits("0xvoter", 100)
	p := f.propose(t, "New Well")
	ctx := context.Background()

	if _, err := f.svc.Vote(ctx, p.id, "0xvoter", true); err != nil {
		t.Fatalf("Vote: %v", err)
	}

	// Balance changes after the vote must not touch the tally
	f.giveCredits("0xvoter", 9999)

	got, _ := f.svc.GetProposal(ctx, p.id)
	if got.ForWeight != 100 {
		t.Errorf("tally = %d, want the snapshotted 100", got.ForWeight)
	}
}

func TestVoteErrors(t *testing.T) {
	f := newGovFixture()
	f.giveCredits("0xvoter", 100)
	p := f.propose(t, "New Well")
	ctx := context.Background()

	if _, err := f.svc.Vote(ctx, 999, "0xvoter", true); err != domain.ErrProposalNotFound {
		t.Errorf("unknown proposal: err = %v, want ErrProposalNotFound", err)
	}

	if _, err := f.svc.Vote(ctx, p.id, "0xbroke", true); err != domain.ErrNoVotingPower {
		t.Errorf("zero balance: err = %v, want ErrNoVotingPower", err)
	}

	if _, err := f.svc.Vote(ctx, p.id, "0xvoter", true); err != nil {
		t.Fatalf("first vote: %v", err)
	}
	// Second vote rejected regardless of support value
	if _, err := f.svc.Vote(ctx, p.id, "0xvoter", false); err != domain.ErrAlreadyVoted {
		t.Errorf("second vote: err = %v, want ErrAlreadyVoted", err)
	}

	p.closeVoting()
	f.giveCredits("0xlate", 50)
	if _, err := f.svc.Vote(ctx, p.id, "0xlate", true); err != domain.ErrVotingClosed {
		t.Errorf("late vote: err = %v, want ErrVotingClosed", err)
	}
}

func TestVoteConcurrentDistinctVoters(t *testing.T) {
	f := newGovFixture()
	p := f.propose(t, "New Well")
	ctx := context.Background()

	const voters = 40
	for i := 0; i < voters; i++ {
		f.giveCredits(voterName(i), 10)
	}

	var wg sync.WaitGroup
	for i := 0; i < voters; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if _, err := f.svc.Vote(ctx, p.id, voterName(i), true); err != nil {
				t.Errorf("voter %d: %v", i, err)
			}
		}(i)
	}
	wg.Wait()

	got, _ := f.svc.GetProposal(ctx, p.id)
	if got.ForWeight != voters*10 {
		t.Errorf("tally = %d, want %d", got.ForWeight, voters*10)
	}
}

func voterName(i int) string {
	return "0xvoter" + string(rune('A'+i%26)) + string(rune('a'+i/26))
}

func TestResolveTieIsDefeated(t *testing.T) {
	f := newGovFixture()
	f.giveCredits("0xfor", 500)
	f.giveCredits("0xagainst", 500)
	p := f.propose(t, "New Well")
	ctx := context.Background()

	if _, err := f.svc.Vote(ctx, p.id, "0xfor", true); err != nil {
		t.Fatalf("Vote: %v", err)
	}
	if _, err := f.svc.Vote(ctx, p.id, "0xagainst", false); err != nil {
		t.Fatalf("Vote: %v", err)
	}

	if _, err := f.svc.Resolve(ctx, p.id); err != domain.ErrVotingOpen {
		t.Errorf("resolve while open: err = %v, want ErrVotingOpen", err)
	}

	p.closeVoting()
	status, err := f.svc.Resolve(ctx, p.id)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if status != domain.ProposalDefeated {
		t.Errorf("tie resolved to %s, want Defeated", status)
	}
}

func TestExecute(t *testing.T) {
	f := newGovFixture()
	f.giveCredits("0xvoter", 100)
	p := f.propose(t, "New Well")
	ctx := context.Background()

	if _, err := f.svc.Vote(ctx, p.id, "0xvoter", true); err != nil {
		t.Fatalf("Vote: %v", err)
	}

	// Not executable while voting is open
	if _, err := f.svc.Execute(ctx, p.id); err != domain.ErrVotingOpen {
		t.Errorf("execute while open: err = %v, want ErrVotingOpen", err)
	}

	p.closeVoting()
	executed, err := f.svc.Execute(ctx, p.id)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !executed.Executed {
		t.Error("proposal not marked executed")
	}

	// Second execute is rejected
	if _, err := f.svc.Execute(ctx, p.id); err != domain.ErrProposalFinalized {
		t.Errorf("re-execute: err = %v, want ErrProposalFinalized", err)
	}
}

func TestExecuteDefeatedProposal(t *testing.T) {
	f := newGovFixture()
	f.giveCredits("0xvoter", 100)
	p := f.propose(t, "New Well")
	ctx := context.Background()

	if _, err := f.svc.Vote(ctx, p.id, "0xvoter", false); err != nil {
		t.Fatalf("Vote: %v", err)
	}
	p.closeVoting()

	if _, err := f.svc.Execute(ctx, p.id); err != domain.ErrProposalNotPassed {
		t.Errorf("err = %v, want ErrProposalNotPassed", err)
	}
}

func TestCancel(t *testing.T) {
	f := newGovFixture()
	p := f.propose(t, "New Well")
	ctx := context.Background()

	if _, err := f.svc.Cancel(ctx, p.id, "0xsomeoneelse", false); err != ErrNotProposer {
		t.Errorf("stranger cancel: err = %v, want ErrNotProposer", err)
	}

	cancelled, err := f.svc.Cancel(ctx, p.id, "0xproposer", false)
	if err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if !cancelled.Cancelled {
		t.Error("proposal not marked cancelled")
	}

	if _, err := f.svc.Cancel(ctx, p.id, "0xproposer", false); err != domain.ErrProposalFinalized {
		t.Errorf("re-cancel: err = %v, want ErrProposalFinalized", err)
	}

	// Votes on a cancelled proposal are rejected as finalized
	f.giveCredits("0xvoter", 10)
	if _, err := f.svc.Vote(ctx, p.id, "0xvoter", true); err != domain.ErrProposalFinalized {
		t.Errorf("vote on cancelled: err = %v, want ErrProposalFinalized", err)
	}
}

func TestCancelByAdmin(t *testing.T) {
	f := newGovFixture()
	p := f.propose(t, "New Well")

	if _, err := f.svc.Cancel(context.Background(), p.id, "0xadmin", true); err != nil {
		t.Fatalf("admin cancel: %v", err)
	}
}
