package models

import (
	"time"

	"gorm.io/gorm"

	"aquahope-backend/internal/core/domain"
)

// ============================================================
// Auth & User Tables
// ============================================================

// User represents the users table. Address is the donor's wallet address and
// doubles as the opaque contributor key on contributions and pool accounts.
type User struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Address   string         `gorm:"uniqueIndex;size:64;not null" json:"address"`
	Username  string         `gorm:"uniqueIndex;size:50;not null" json:"username"`
	Email     string         `gorm:"uniqueIndex;size:100;not null" json:"email"`
	Password  string         `gorm:"size:255;not null" json:"-"`
	Role      string         `gorm:"size:20;default:'DONOR'" json:"role"`
	IsActive  bool           `gorm:"default:true" json:"is_active"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string {
	return "users"
}

// UserResponse DTO
type UserResponse struct {
	ID        uint      `json:"id"`
	Address   string    `json:"address"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

func (u *User) ToResponse() *UserResponse {
	return &UserResponse{
		ID:        u.ID,
		Address:   u.Address,
		Username:  u.Username,
		Email:     u.Email,
		Role:      u.Role,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
	}
}

// RefreshToken represents refresh_tokens table
type RefreshToken struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	UserID    uint       `gorm:"index;not null" json:"user_id"`
	TokenHash string     `gorm:"size:255;not null;index" json:"-"`
	ExpiresAt time.Time  `gorm:"not null" json:"expires_at"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	RevokedAt *time.Time `gorm:"index" json:"revoked_at"`
	User      User       `gorm:"foreignKey:UserID" json:"-"`
}

func (RefreshToken) TableName() string {
	return "refresh_tokens"
}

func (rt *RefreshToken) IsRevoked() bool {
	return rt.RevokedAt != nil
}

func (rt *RefreshToken) IsExpired() bool {
	return time.Now().After(rt.ExpiresAt)
}

// ============================================================
// Donation Ledger Tables
// ============================================================

// Contribution represents the append-only donations ledger. Records are
// created once, flipped claimed=false→true exactly once, and never deleted.
type Contribution struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Contributor string    `gorm:"size:64;not null;index" json:"contributor"`
	AmountMicro int64     `gorm:"not null" json:"amount_micro"`
	Name        string    `gorm:"size:100" json:"name"`
	Email       string    `gorm:"size:100" json:"-"`
	Message     string    `gorm:"size:500" json:"message"`
	Location    string    `gorm:"size:100" json:"location"`
	ClaimCode   string    `gorm:"uniqueIndex;size:16;not null" json:"-"`
	Claimed     bool      `gorm:"default:false;not null" json:"claimed"`
	BadgeID     *uint     `json:"badge_id"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (Contribution) TableName() string {
	return "contributions"
}

// Amount returns the fixed-point amount of the contribution.
func (c *Contribution) Amount() domain.Amount {
	return domain.Amount(c.AmountMicro)
}

// ContributionResponse DTO. Claim code and email are deliberately absent:
// the code is the bearer secret for the mint and only travels through the
// notification channel.
type ContributionResponse struct {
	ID          uint      `json:"id"`
	Contributor string    `json:"contributor"`
	Amount      string    `json:"amount"`
	Name        string    `json:"name,omitempty"`
	Message     string    `json:"message,omitempty"`
	Location    string    `json:"location,omitempty"`
	Claimed     bool      `json:"claimed"`
	BadgeID     *uint     `json:"badge_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

func (c *Contribution) ToResponse() *ContributionResponse {
	return &ContributionResponse{
		ID:          c.ID,
		Contributor: c.Contributor,
		Amount:      c.Amount().String(),
		Name:        c.Name,
		Message:     c.Message,
		Location:    c.Location,
		Claimed:     c.Claimed,
		BadgeID:     c.BadgeID,
		CreatedAt:   c.CreatedAt,
	}
}

// Badge represents the badges table. One badge per successful claim,
// immutable except for the operator-set verified flag.
type Badge struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Serial      string    `gorm:"uniqueIndex;size:36;not null" json:"serial"`
	Contributor string    `gorm:"size:64;not null;index" json:"contributor"`
	Tier        uint8     `gorm:"not null" json:"tier"`
	AmountMicro int64     `gorm:"not null" json:"amount_micro"`
	Credits     int64     `gorm:"not null" json:"credits"`
	Location    string    `gorm:"size:100" json:"location"`
	Message     string    `gorm:"size:500" json:"message"`
	Verified    bool      `gorm:"default:false" json:"verified"`
	IssuedAt    time.Time `gorm:"autoCreateTime" json:"issued_at"`
}

func (Badge) TableName() string {
	return "badges"
}

// BadgeResponse DTO
type BadgeResponse struct {
	ID          uint      `json:"id"`
	Serial      string    `json:"serial"`
	Contributor string    `json:"contributor"`
	Tier        string    `json:"tier"`
	Amount      string    `json:"amount"`
	Credits     int64     `json:"credits"`
	Location    string    `json:"location,omitempty"`
	Message     string    `json:"message,omitempty"`
	Verified    bool      `json:"verified"`
	IssuedAt    time.Time `json:"issued_at"`
}

func (b *Badge) ToResponse() *BadgeResponse {
	return &BadgeResponse{
		ID:          b.ID,
		Serial:      b.Serial,
		Contributor: b.Contributor,
		Tier:        domain.BadgeTier(b.Tier).String(),
		Amount:      domain.Amount(b.AmountMicro).String(),
		Credits:     b.Credits,
		Location:    b.Location,
		Message:     b.Message,
		Verified:    b.Verified,
		IssuedAt:    b.IssuedAt,
	}
}

// CreditBalance represents the credit_balances table: one row per
// contributor, written only by the claim/mint path.
type CreditBalance struct {
	Contributor string    `gorm:"primaryKey;size:64" json:"contributor"`
	Credits     int64     `gorm:"not null;default:0" json:"credits"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (CreditBalance) TableName() string {
	return "credit_balances"
}

// ============================================================
// Governance Tables
// ============================================================

// Proposal represents the proposals table. ForWeight/AgainstWeight are
// accumulators; the lifecycle state is computed, not stored (only the
// terminal executed/cancelled flags persist).
type Proposal struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	Slug            string    `gorm:"uniqueIndex;size:220;not null" json:"slug"`
	Title           string    `gorm:"size:200;not null" json:"title"`
	Description     string    `gorm:"size:2000;not null" json:"description"`
	Location        string    `gorm:"size:100;not null" json:"location"`
	BudgetMicro     int64     `gorm:"not null" json:"budget_micro"`
	Proposer        string    `gorm:"size:64;not null;index" json:"proposer"`
	ForWeight       int64     `gorm:"not null;default:0" json:"for_weight"`
	AgainstWeight   int64     `gorm:"not null;default:0" json:"against_weight"`
	EndAt           time.Time `gorm:"not null;index" json:"end_at"`
	Executed        bool      `gorm:"default:false;not null" json:"executed"`
	Cancelled       bool      `gorm:"default:false;not null" json:"cancelled"`
	OutcomeNotified bool      `gorm:"default:false;not null" json:"-"`
	CreatedAt       time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (Proposal) TableName() string {
	return "proposals"
}

// StatusAt computes the proposal status at the given instant.
func (p *Proposal) StatusAt(now time.Time) domain.ProposalStatus {
	return domain.ResolveProposal(p.Executed, p.Cancelled, p.ForWeight, p.AgainstWeight, p.EndAt, now)
}

// ProposalResponse DTO
type ProposalResponse struct {
	ID            uint      `json:"id"`
	Slug          string    `json:"slug"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	Location      string    `json:"location"`
	Budget        string    `json:"budget"`
	Proposer      string    `json:"proposer"`
	ForWeight     int64     `json:"for_weight"`
	AgainstWeight int64     `json:"against_weight"`
	Status        string    `json:"status"`
	EndAt         time.Time `json:"end_at"`
	CreatedAt     time.Time `json:"created_at"`
}

func (p *Proposal) ToResponse(now time.Time) *ProposalResponse {
	return &ProposalResponse{
		ID:            p.ID,
		Slug:          p.Slug,
		Title:         p.Title,
		Description:   p.Description,
		Location:      p.Location,
		Budget:        domain.Amount(p.BudgetMicro).String(),
		Proposer:      p.Proposer,
		ForWeight:     p.ForWeight,
		AgainstWeight: p.AgainstWeight,
		Status:        string(p.StatusAt(now)),
		EndAt:         p.EndAt,
		CreatedAt:     p.CreatedAt,
	}
}

// Vote represents the votes table. The composite unique index is the
// storage-level backstop for the one-vote-per-(proposal, voter) invariant.
type Vote struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	ProposalID uint      `gorm:"not null;uniqueIndex:idx_votes_proposal_voter" json:"proposal_id"`
	Voter      string    `gorm:"size:64;not null;uniqueIndex:idx_votes_proposal_voter" json:"voter"`
	Support    bool      `gorm:"not null" json:"support"`
	Weight     int64     `gorm:"not null" json:"weight"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (Vote) TableName() string {
	return "votes"
}

// ============================================================
// Yield Pool Tables
// ============================================================

// PoolAccount represents per-contributor pool accounting.
type PoolAccount struct {
	Contributor    string    `gorm:"primaryKey;size:64" json:"contributor"`
	PrincipalMicro int64     `gorm:"not null;default:0" json:"principal_micro"`
	EarnedMicro    int64     `gorm:"not null;default:0" json:"earned_micro"`
	WithdrawnMicro int64     `gorm:"not null;default:0" json:"withdrawn_micro"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (PoolAccount) TableName() string {
	return "pool_accounts"
}

// Unwithdrawn returns the yield the contributor may still withdraw.
func (a *PoolAccount) Unwithdrawn() int64 {
	return a.EarnedMicro - a.WithdrawnMicro
}

// PoolAccountResponse DTO
type PoolAccountResponse struct {
	Contributor string `json:"contributor"`
	Principal   string `json:"principal"`
	Earned      string `json:"earned"`
	Withdrawn   string `json:"withdrawn"`
	Available   string `json:"available"`
}

func (a *PoolAccount) ToResponse() *PoolAccountResponse {
	return &PoolAccountResponse{
		Contributor: a.Contributor,
		Principal:   domain.Amount(a.PrincipalMicro).String(),
		Earned:      domain.Amount(a.EarnedMicro).String(),
		Withdrawn:   domain.Amount(a.WithdrawnMicro).String(),
		Available:   domain.Amount(a.Unwithdrawn()).String(),
	}
}

// PoolTotals is the single-row aggregate of the pool. Maintenance/Project
// are the fixed-split buckets of everything accrued so far.
type PoolTotals struct {
	ID               uint      `gorm:"primaryKey" json:"-"`
	PrincipalMicro   int64     `gorm:"not null;default:0" json:"principal_micro"`
	EarnedMicro      int64     `gorm:"not null;default:0" json:"earned_micro"`
	WithdrawnMicro   int64     `gorm:"not null;default:0" json:"withdrawn_micro"`
	MaintenanceMicro int64     `gorm:"not null;default:0" json:"maintenance_micro"`
	ProjectMicro     int64     `gorm:"not null;default:0" json:"project_micro"`
	UpdatedAt        time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (PoolTotals) TableName() string {
	return "pool_totals"
}

// PoolStatsResponse DTO
type PoolStatsResponse struct {
	Principal   string `json:"principal"`
	Earned      string `json:"earned"`
	Withdrawn   string `json:"withdrawn"`
	Maintenance string `json:"maintenance_bucket"`
	Project     string `json:"project_bucket"`
}

func (t *PoolTotals) ToResponse() *PoolStatsResponse {
	return &PoolStatsResponse{
		Principal:   domain.Amount(t.PrincipalMicro).String(),
		Earned:      domain.Amount(t.EarnedMicro).String(),
		Withdrawn:   domain.Amount(t.WithdrawnMicro).String(),
		Maintenance: domain.Amount(t.MaintenanceMicro).String(),
		Project:     domain.Amount(t.ProjectMicro).String(),
	}
}

// ============================================================
// Auto Migration
// ============================================================

// AutoMigrate runs auto migration for all tables
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		// Auth
		&User{},
		&RefreshToken{},
		// Ledger
		&Contribution{},
		&Badge{},
		&CreditBalance{},
		// Governance
		&Proposal{},
		&Vote{},
		// Yield pool
		&PoolAccount{},
		&PoolTotals{},
	)
}
