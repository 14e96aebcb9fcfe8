package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"aquahope-backend/internal/adapters/persistence/models"
	"aquahope-backend/internal/config"
	"aquahope-backend/internal/core/domain"
)

// NotificationService delivers donor notifications through an outbound
// webhook. The webhook target owns formatting and transport (email, chat);
// this service only posts structured events and never blocks a request on
// delivery.
type NotificationService struct {
	webhookURL string
	enabled    bool
	client     *http.Client
}

// NewNotificationService creates a new notification service
func NewNotificationService(cfg *config.Config) *NotificationService {
	return &NotificationService{
		webhookURL: cfg.Notify.WebhookURL,
		enabled:    cfg.Notify.Enabled,
		client:     &http.Client{Timeout: 10 * time.Second},
	}
}

// IsEnabled checks if notification is enabled
func (s *NotificationService) IsEnabled() bool {
	return s.enabled
}

// webhookEvent is the envelope posted to the webhook
type webhookEvent struct {
	Event   string      `json:"event"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// send posts an event to the webhook in the background
func (s *NotificationService) send(event webhookEvent) {
	if !s.enabled {
		return
	}

	go func() {
		body, err := json.Marshal(event)
		if err != nil {
			log.Printf("⚠️ Notification marshal failed: %v", err)
			return
		}

		resp, err := s.client.Post(s.webhookURL, "application/json", bytes.NewReader(body))
		if err != nil {
			log.Printf("⚠️ Notification delivery failed: %v", err)
			return
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 300 {
			log.Printf("⚠️ Notification webhook returned %d for event %s", resp.StatusCode, event.Event)
		}
	}()
}

// NotifyContribution sends the donation receipt carrying the one-time claim
// code. This is the only channel the code ever travels through.
func (s *NotificationService) NotifyContribution(contribution *models.Contribution, claimCode string) {
	s.send(webhookEvent{
		Event: "contribution.recorded",
		Message: fmt.Sprintf("💧 Donation of %s received from %s. Claim code: %s",
			contribution.Amount().String(), contribution.Contributor, claimCode),
		Data: map[string]interface{}{
			"contribution_id": contribution.ID,
			"contributor":     contribution.Contributor,
			"amount":          contribution.Amount().String(),
			"email":           contribution.Email,
			"claim_code":      claimCode,
		},
	})
}

// NotifyBadgeMinted sends the badge issuance notice
func (s *NotificationService) NotifyBadgeMinted(badge *models.Badge, credits int64) {
	s.send(webhookEvent{
		Event: "badge.minted",
		Message: fmt.Sprintf("🏅 %s badge %s minted for %s (+%d credits)",
			domain.BadgeTier(badge.Tier).String(), badge.Serial, badge.Contributor, credits),
		Data: map[string]interface{}{
			"badge_id":    badge.ID,
			"serial":      badge.Serial,
			"contributor": badge.Contributor,
			"tier":        domain.BadgeTier(badge.Tier).String(),
			"credits":     credits,
		},
	})
}

// NotifyProposalCreated announces a new proposal and its voting deadline
func (s *NotificationService) NotifyProposalCreated(proposal *models.Proposal) {
	s.send(webhookEvent{
		Event: "proposal.created",
		Message: fmt.Sprintf("🗳️ New proposal #%d %q (%s). Voting closes %s",
			proposal.ID, proposal.Title, proposal.Location, proposal.EndAt.Format(time.RFC3339)),
		Data: map[string]interface{}{
			"proposal_id": proposal.ID,
			"slug":        proposal.Slug,
			"title":       proposal.Title,
			"end_at":      proposal.EndAt,
		},
	})
}

// NotifyProposalOutcome announces the outcome of a closed voting window
func (s *NotificationService) NotifyProposalOutcome(proposal *models.Proposal, status domain.ProposalStatus) {
	s.send(webhookEvent{
		Event: "proposal.outcome",
		Message: fmt.Sprintf("📊 Proposal #%d %q resolved: %s (for %d / against %d)",
			proposal.ID, proposal.Title, status, proposal.ForWeight, proposal.AgainstWeight),
		Data: map[string]interface{}{
			"proposal_id":    proposal.ID,
			"slug":           proposal.Slug,
			"status":         string(status),
			"for_weight":     proposal.ForWeight,
			"against_weight": proposal.AgainstWeight,
		},
	})
}
