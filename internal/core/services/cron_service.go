package services

import (
	"context"
	"log"
	"time"

	"aquahope-backend/internal/adapters/persistence/repositories"

	"github.com/robfig/cron/v3"
)

// CronService runs the background jobs: the proposal outcome sweep and the
// expired refresh token cleanup
type CronService struct {
	govRepo          repositories.GovernanceRepository
	refreshTokenRepo repositories.RefreshTokenRepository
	notifier         Notifier
	cron             *cron.Cron
}

// NewCronService creates a new cron service
func NewCronService(
	govRepo repositories.GovernanceRepository,
	refreshTokenRepo repositories.RefreshTokenRepository,
	notifier Notifier,
) *CronService {
	return &CronService{
		govRepo:          govRepo,
		refreshTokenRepo: refreshTokenRepo,
		notifier:         notifier,
		cron:             cron.New(),
	}
}

// Start schedules and launches all jobs
func (s *CronService) Start() {
	// Proposal outcomes: every 5 minutes
	s.cron.AddFunc("*/5 * * * *", s.SweepProposalOutcomes)

	// Expired refresh tokens: daily at 03:00
	s.cron.AddFunc("0 3 * * *", s.CleanupExpiredTokens)

	s.cron.Start()
	log.Println("🚀 CronService started")
}

// Stop stops the scheduler and waits for running jobs
func (s *CronService) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Println("🛑 CronService stopped")
}

// SweepProposalOutcomes notifies the outcome of proposals whose voting
// window closed since the last sweep. Resolution itself is computed on
// read; the sweep only exists so donors hear about the outcome without
// anyone polling.
func (s *CronService) SweepProposalOutcomes() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	now := time.Now()
	proposals, err := s.govRepo.FindEndedUnnotified(ctx, now)
	if err != nil {
		log.Printf("⚠️ Outcome sweep failed: %v", err)
		return
	}

	for _, proposal := range proposals {
		status := proposal.StatusAt(now)
		s.notifier.NotifyProposalOutcome(proposal, status)

		if err := s.govRepo.MarkOutcomeNotified(ctx, proposal.ID); err != nil {
			log.Printf("⚠️ Could not mark proposal #%d notified: %v", proposal.ID, err)
			continue
		}
		log.Printf("✅ Proposal #%d outcome notified: %s", proposal.ID, status)
	}
}

// CleanupExpiredTokens deletes refresh tokens past their expiry
func (s *CronService) CleanupExpiredTokens() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.refreshTokenRepo.DeleteExpired(ctx); err != nil {
		log.Printf("⚠️ Token cleanup failed: %v", err)
		return
	}
	log.Println("✅ Expired refresh tokens cleaned up")
}
