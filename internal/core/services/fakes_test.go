package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"aquahope-backend/internal/adapters/persistence/models"
	"aquahope-backend/internal/config"
	"aquahope-backend/internal/core/domain"

	"gorm.io/gorm"
)

// In-memory repository fakes shared by the service tests. They reproduce
// the semantics the gorm implementations promise, including the
// exactly-once claim flip and the one-vote-per-pair rejection.

func newTestConfig() *config.Config {
	return &config.Config{
		Platform: config.PlatformConfig{
			CreditRate:          1000,
			VotingPeriodDays:    7,
			MaintenanceSplitPct: 30,
			ClaimCodeMaxRetries: 5,
		},
	}
}

type memStore struct {
	mu            sync.Mutex
	nextID        uint
	contributions map[uint]*models.Contribution
	badges        map[uint]*models.Badge
	balances      map[string]int64
	proposals     map[uint]*models.Proposal
	votes         map[string]*models.Vote
	pool          map[string]*models.PoolAccount
	totals        models.PoolTotals
}

func newMemStore() *memStore {
	return &memStore{
		contributions: make(map[uint]*models.Contribution),
		badges:        make(map[uint]*models.Badge),
		balances:      make(map[string]int64),
		proposals:     make(map[uint]*models.Proposal),
		votes:         make(map[string]*models.Vote),
		pool:          make(map[string]*models.PoolAccount),
		totals:        models.PoolTotals{ID: 1},
	}
}

func (m *memStore) id() uint {
	m.nextID++
	return m.nextID
}

func voteKey(proposalID uint, voter string) string {
	return fmt.Sprintf("%d:%s", proposalID, voter)
}

// fakeContributionRepo implements repositories.ContributionRepository
type fakeContributionRepo struct {
	store *memStore
	// codeExistsAlways forces every generated code to collide
	codeExistsAlways bool
}

func (f *fakeContributionRepo) Create(_ context.Context, c *models.Contribution) error {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	for _, existing := range f.store.contributions {
		if existing.ClaimCode == c.ClaimCode {
			return gorm.ErrDuplicatedKey
		}
	}
	c.ID = f.store.id()
	c.CreatedAt = time.Now()
	f.store.contributions[c.ID] = c
	return nil
}

func (f *fakeContributionRepo) GetByID(_ context.Context, id uint) (*models.Contribution, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	c, ok := f.store.contributions[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return c, nil
}

func (f *fakeContributionRepo) GetByCode(_ context.Context, code string) (*models.Contribution, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	for _, c := range f.store.contributions {
		if c.ClaimCode == code {
			return c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeContributionRepo) CodeExists(_ context.Context, code string) (bool, error) {
	if f.codeExistsAlways {
		return true, nil
	}
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	for _, c := range f.store.contributions {
		if c.ClaimCode == code {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeContributionRepo) List(_ context.Context, offset, limit int) ([]*models.Contribution, int64, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	all := make([]*models.Contribution, 0, len(f.store.contributions))
	for _, c := range f.store.contributions {
		all = append(all, c)
	}
	total := int64(len(all))
	if offset > len(all) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (f *fakeContributionRepo) ListByContributor(_ context.Context, contributor string) ([]*models.Contribution, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	var out []*models.Contribution
	for _, c := range f.store.contributions {
		if c.Contributor == contributor {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeContributionRepo) TotalRaised(_ context.Context) (int64, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	var total int64
	for _, c := range f.store.contributions {
		total += c.AmountMicro
	}
	return total, nil
}

func (f *fakeContributionRepo) CountDistinctContributors(_ context.Context) (int64, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	seen := make(map[string]bool)
	for _, c := range f.store.contributions {
		seen[c.Contributor] = true
	}
	return int64(len(seen)), nil
}

// fakeBadgeRepo implements repositories.BadgeRepository
type fakeBadgeRepo struct {
	store *memStore
}

func (f *fakeBadgeRepo) GetByID(_ context.Context, id uint) (*models.Badge, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	b, ok := f.store.badges[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return b, nil
}

func (f *fakeBadgeRepo) GetBySerial(_ context.Context, serial string) (*models.Badge, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	for _, b := range f.store.badges {
		if b.Serial == serial {
			return b, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeBadgeRepo) ListByContributor(_ context.Context, contributor string) ([]*models.Badge, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	var out []*models.Badge
	for _, b := range f.store.badges {
		if b.Contributor == contributor {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *fakeBadgeRepo) Count(_ context.Context) (int64, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	return int64(len(f.store.badges)), nil
}

func (f *fakeBadgeRepo) SetVerified(_ context.Context, id uint, verified bool) error {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	b, ok := f.store.badges[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	b.Verified = verified
	return nil
}

// fakeBalanceRepo implements repositories.CreditBalanceRepository
type fakeBalanceRepo struct {
	store *memStore
}

func (f *fakeBalanceRepo) Get(_ context.Context, contributor string) (int64, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	return f.store.balances[contributor], nil
}

func (f *fakeBalanceRepo) TotalCredits(_ context.Context) (int64, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	var total int64
	for _, credits := range f.store.balances {
		total += credits
	}
	return total, nil
}

// fakeClaimRepo implements repositories.ClaimRepository with the same
// conditional-flip semantics as the transactional implementation
type fakeClaimRepo struct {
	store *memStore
	mints int
}

func (f *fakeClaimRepo) ClaimMint(_ context.Context, code string, badge *models.Badge, credits int64) error {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()

	var contribution *models.Contribution
	for _, c := range f.store.contributions {
		if c.ClaimCode == code {
			contribution = c
			break
		}
	}
	if contribution == nil || contribution.Claimed {
		return domain.ErrAlreadyClaimed
	}

	contribution.Claimed = true
	badge.ID = f.store.id()
	badge.IssuedAt = time.Now()
	f.store.badges[badge.ID] = badge
	contribution.BadgeID = &badge.ID
	f.store.balances[badge.Contributor] += credits
	f.mints++
	return nil
}

// fakeGovRepo implements repositories.GovernanceRepository
type fakeGovRepo struct {
	store *memStore
}

func (f *fakeGovRepo) CreateProposal(_ context.Context, p *models.Proposal) error {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	p.ID = f.store.id()
	p.CreatedAt = time.Now()
	f.store.proposals[p.ID] = p
	return nil
}

func (f *fakeGovRepo) GetProposal(_ context.Context, id uint) (*models.Proposal, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	p, ok := f.store.proposals[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *p
	return &copied, nil
}

func (f *fakeGovRepo) GetProposalBySlug(_ context.Context, slug string) (*models.Proposal, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	for _, p := range f.store.proposals {
		if p.Slug == slug {
			copied := *p
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeGovRepo) ListProposals(_ context.Context, offset, limit int) ([]*models.Proposal, int64, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	all := make([]*models.Proposal, 0, len(f.store.proposals))
	for _, p := range f.store.proposals {
		all = append(all, p)
	}
	total := int64(len(all))
	if offset > len(all) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (f *fakeGovRepo) SlugExists(_ context.Context, slug string) (bool, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	for _, p := range f.store.proposals {
		if p.Slug == slug {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeGovRepo) CastVote(_ context.Context, vote *models.Vote) error {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	key := voteKey(vote.ProposalID, vote.Voter)
	if _, exists := f.store.votes[key]; exists {
		return domain.ErrAlreadyVoted
	}
	vote.ID = f.store.id()
	vote.CreatedAt = time.Now()
	f.store.votes[key] = vote
	p := f.store.proposals[vote.ProposalID]
	if vote.Support {
		p.ForWeight += vote.Weight
	} else {
		p.AgainstWeight += vote.Weight
	}
	return nil
}

func (f *fakeGovRepo) GetVote(_ context.Context, proposalID uint, voter string) (*models.Vote, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	v, ok := f.store.votes[voteKey(proposalID, voter)]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return v, nil
}

func (f *fakeGovRepo) ListVotes(_ context.Context, proposalID uint) ([]*models.Vote, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	var out []*models.Vote
	for _, v := range f.store.votes {
		if v.ProposalID == proposalID {
			out = append(out, v)
		}
	}
	return out, nil
}

func (f *fakeGovRepo) MarkExecuted(_ context.Context, id uint) (bool, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	p, ok := f.store.proposals[id]
	if !ok || p.Executed || p.Cancelled {
		return false, nil
	}
	p.Executed = true
	return true, nil
}

func (f *fakeGovRepo) MarkCancelled(_ context.Context, id uint) (bool, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	p, ok := f.store.proposals[id]
	if !ok || p.Executed || p.Cancelled {
		return false, nil
	}
	p.Cancelled = true
	return true, nil
}

func (f *fakeGovRepo) FindEndedUnnotified(_ context.Context, now time.Time) ([]*models.Proposal, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	var out []*models.Proposal
	for _, p := range f.store.proposals {
		if p.EndAt.Before(now) && !p.OutcomeNotified && !p.Cancelled {
			copied := *p
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (f *fakeGovRepo) MarkOutcomeNotified(_ context.Context, id uint) error {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	p, ok := f.store.proposals[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	p.OutcomeNotified = true
	return nil
}

// fakePoolRepo implements repositories.PoolRepository
type fakePoolRepo struct {
	store *memStore
}

func (f *fakePoolRepo) GetAccount(_ context.Context, contributor string) (*models.PoolAccount, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	a, ok := f.store.pool[contributor]
	if !ok {
		return nil, nil
	}
	copied := *a
	return &copied, nil
}

func (f *fakePoolRepo) ListAccounts(_ context.Context) ([]*models.PoolAccount, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	out := make([]*models.PoolAccount, 0, len(f.store.pool))
	for _, a := range f.store.pool {
		copied := *a
		out = append(out, &copied)
	}
	return out, nil
}

func (f *fakePoolRepo) GetTotals(_ context.Context) (*models.PoolTotals, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	copied := f.store.totals
	return &copied, nil
}

func (f *fakePoolRepo) Deposit(_ context.Context, contributor string, amountMicro int64) error {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	a, ok := f.store.pool[contributor]
	if !ok {
		a = &models.PoolAccount{Contributor: contributor}
		f.store.pool[contributor] = a
	}
	a.PrincipalMicro += amountMicro
	f.store.totals.PrincipalMicro += amountMicro
	return nil
}

func (f *fakePoolRepo) Accrue(_ context.Context, shares map[string]int64, totalMicro, maintenanceMicro, projectMicro int64) error {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	for contributor, share := range shares {
		a, ok := f.store.pool[contributor]
		if !ok {
			return gorm.ErrRecordNotFound
		}
		a.EarnedMicro += share
	}
	f.store.totals.EarnedMicro += totalMicro
	f.store.totals.MaintenanceMicro += maintenanceMicro
	f.store.totals.ProjectMicro += projectMicro
	return nil
}

func (f *fakePoolRepo) Withdraw(_ context.Context, contributor string, amountMicro int64) error {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	a, ok := f.store.pool[contributor]
	if !ok || a.EarnedMicro-a.WithdrawnMicro < amountMicro {
		return gorm.ErrRecordNotFound
	}
	a.WithdrawnMicro += amountMicro
	f.store.totals.WithdrawnMicro += amountMicro
	return nil
}

// recordingNotifier captures notifications for assertions
type recordingNotifier struct {
	mu            sync.Mutex
	contributions []string // claim codes handed out
	badges        []*models.Badge
	proposals     []*models.Proposal
	outcomes      []domain.ProposalStatus
}

func (n *recordingNotifier) NotifyContribution(_ *models.Contribution, claimCode string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.contributions = append(n.contributions, claimCode)
}

func (n *recordingNotifier) NotifyBadgeMinted(badge *models.Badge, _ int64) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.badges = append(n.badges, badge)
}

func (n *recordingNotifier) NotifyProposalCreated(p *models.Proposal) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.proposals = append(n.proposals, p)
}

func (n *recordingNotifier) NotifyProposalOutcome(_ *models.Proposal, status domain.ProposalStatus) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.outcomes = append(n.outcomes, status)
}
