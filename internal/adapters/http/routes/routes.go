package routes

import (
	"time"

	"aquahope-backend/internal/adapters/cache"
	"aquahope-backend/internal/adapters/http/handlers"
	"aquahope-backend/internal/adapters/http/middleware"
	"aquahope-backend/internal/adapters/persistence/repositories"
	"aquahope-backend/internal/config"
	"aquahope-backend/internal/core/services"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// Setup configures all routes for the application
func Setup(app *fiber.App, db *gorm.DB, cfg *config.Config) {
	// Initialize repositories
	userRepo := repositories.NewUserRepository(db)
	refreshTokenRepo := repositories.NewRefreshTokenRepository(db)

	// Ledger repositories
	contributionRepo := repositories.NewContributionRepository(db)
	badgeRepo := repositories.NewBadgeRepository(db)
	balanceRepo := repositories.NewCreditBalanceRepository(db)
	claimRepo := repositories.NewClaimRepository(db)

	// Governance and pool repositories
	govRepo := repositories.NewGovernanceRepository(db)
	poolRepo := repositories.NewPoolRepository(db)

	// Notification service (webhook, or a no-op when disabled)
	var notifier services.Notifier = services.NopNotifier{}
	if cfg.Notify.Enabled {
		notifier = services.NewNotificationService(cfg)
	}

	// Optional Redis stats cache
	statsCache := cache.New(cfg)

	// Initialize services
	authService := services.NewAuthService(userRepo, refreshTokenRepo, cfg)
	userService := services.NewUserService(userRepo)
	poolService := services.NewPoolService(poolRepo, statsCache, cfg)
	ledgerService := services.NewLedgerService(contributionRepo, balanceRepo, badgeRepo, poolService, notifier, cfg)
	claimService := services.NewClaimService(contributionRepo, badgeRepo, claimRepo, notifier, statsCache, cfg)
	governanceService := services.NewGovernanceService(govRepo, balanceRepo, notifier, cfg)
	statsService := services.NewStatsService(contributionRepo, badgeRepo, balanceRepo, govRepo, poolRepo, statsCache)

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler()
	authHandler := handlers.NewAuthHandler(authService, cfg)
	userHandler := handlers.NewUserHandler(userService)
	donationHandler := handlers.NewDonationHandler(ledgerService)
	claimHandler := handlers.NewClaimHandler(claimService)
	badgeHandler := handlers.NewBadgeHandler(ledgerService)
	governanceHandler := handlers.NewGovernanceHandler(governanceService)
	poolHandler := handlers.NewPoolHandler(poolService)
	statsHandler := handlers.NewStatsHandler(statsService)

	// Health check & root routes
	app.Get("/", healthHandler.Root)
	app.Get("/health", healthHandler.HealthCheck)

	// API v1 group
	apiV1 := app.Group("/api/v1")
	setupAPIV1Routes(apiV1, healthHandler, authHandler, userHandler,
		donationHandler, claimHandler, badgeHandler, governanceHandler,
		poolHandler, statsHandler, cfg)
}

// setupAPIV1Routes configures API v1 routes
func setupAPIV1Routes(
	router fiber.Router,
	healthHandler *handlers.HealthHandler,
	authHandler *handlers.AuthHandler,
	userHandler *handlers.UserHandler,
	donationHandler *handlers.DonationHandler,
	claimHandler *handlers.ClaimHandler,
	badgeHandler *handlers.BadgeHandler,
	governanceHandler *handlers.GovernanceHandler,
	poolHandler *handlers.PoolHandler,
	statsHandler *handlers.StatsHandler,
	cfg *config.Config,
) {
	// API Info
	router.Get("/", healthHandler.APIInfo)

	// Auth routes (public)
	authRoutes := router.Group("/auth")
	setupAuthRoutes(authRoutes, authHandler, cfg)

	// User management routes (Admin only)
	userRoutes := router.Group("/users")
	userRoutes.Use(middleware.AuthMiddleware(cfg))
	userRoutes.Use(middleware.AdminOnly())
	setupUserRoutes(userRoutes, userHandler)

	// Profile routes (Authenticated users)
	profileRoutes := router.Group("/profile")
	profileRoutes.Use(middleware.AuthMiddleware(cfg))
	setupProfileRoutes(profileRoutes, userHandler)

	// Donation ledger routes
	donationRoutes := router.Group("/donations")
	setupDonationRoutes(donationRoutes, donationHandler, cfg)

	// Claim routes (public, rate limited)
	router.Post("/claims", middleware.ClaimRateLimiter(), claimHandler.Claim)

	// Badge routes
	badgeRoutes := router.Group("/badges")
	setupBadgeRoutes(badgeRoutes, badgeHandler, cfg)

	// Governance routes
	proposalRoutes := router.Group("/proposals")
	setupGovernanceRoutes(proposalRoutes, governanceHandler, cfg)

	// Pool routes
	poolRoutes := router.Group("/pool")
	setupPoolRoutes(poolRoutes, poolHandler, cfg)

	// Account routes (authenticated)
	router.Get("/account", middleware.AuthMiddleware(cfg), middleware.PrivateCacheHeaders(10*time.Second), donationHandler.Account)

	// Platform stats (public, cached)
	router.Get("/stats", middleware.CacheControl(time.Minute), statsHandler.Platform)
}

// setupAuthRoutes configures authentication routes
func setupAuthRoutes(router fiber.Router, handler *handlers.AuthHandler, cfg *config.Config) {
	// Public routes
	router.Post("/register", middleware.AuthRateLimiter(), handler.Register)
	router.Post("/login", middleware.AuthRateLimiter(), handler.Login)
	router.Post("/refresh", handler.RefreshToken)
	router.Post("/logout", handler.Logout)

	// Protected routes
	router.Get("/me", middleware.AuthMiddleware(cfg), handler.Me)
	router.Post("/logout-all", middleware.AuthMiddleware(cfg), handler.LogoutAll)
}

// setupUserRoutes configures user management routes (Admin only)
func setupUserRoutes(router fiber.Router, handler *handlers.UserHandler) {
	router.Get("/", handler.ListUsers)
	router.Get("/:id", handler.GetUser)
	router.Put("/:id", handler.UpdateUser)
}

// setupProfileRoutes configures profile routes (Authenticated)
func setupProfileRoutes(router fiber.Router, handler *handlers.UserHandler) {
	router.Get("/", handler.GetProfile)
	router.Put("/", handler.UpdateProfile)
	router.Put("/password", handler.ChangePassword)
}

// setupDonationRoutes configures donation ledger routes
func setupDonationRoutes(router fiber.Router, handler *handlers.DonationHandler, cfg *config.Config) {
	// Public ledger views
	router.Get("/", middleware.CacheControl(30*time.Second), handler.List)
	router.Get("/code/:code", middleware.ClaimRateLimiter(), handler.GetByCode)
	router.Get("/:id", handler.Get)

	// Recording requires authentication
	router.Post("/", middleware.AuthMiddleware(cfg), handler.Record)
}

// setupBadgeRoutes configures badge routes
func setupBadgeRoutes(router fiber.Router, handler *handlers.BadgeHandler, cfg *config.Config) {
	// Public verification
	router.Get("/serial/:serial", handler.GetBySerial)
	router.Get("/:id", handler.Get)

	// Operator/Admin only
	router.Patch("/:id/verify", middleware.AuthMiddleware(cfg), middleware.OperatorOrAdmin(), handler.Verify)
}

// setupGovernanceRoutes configures proposal and voting routes
func setupGovernanceRoutes(router fiber.Router, handler *handlers.GovernanceHandler, cfg *config.Config) {
	// Public proposal views
	router.Get("/", handler.List)
	router.Get("/slug/:slug", handler.GetBySlug)
	router.Get("/:id", handler.Get)
	router.Get("/:id/votes", handler.ListVotes)

	// Authenticated actions
	router.Post("/", middleware.AuthMiddleware(cfg), handler.Create)
	router.Get("/:id/votes/me", middleware.AuthMiddleware(cfg), handler.MyVote)
	router.Post("/:id/votes", middleware.AuthMiddleware(cfg), handler.Vote)
	router.Post("/:id/cancel", middleware.AuthMiddleware(cfg), handler.Cancel)

	// Operator/Admin only
	router.Post("/:id/execute", middleware.AuthMiddleware(cfg), middleware.OperatorOrAdmin(), handler.Execute)
}

// setupPoolRoutes configures yield pool routes
func setupPoolRoutes(router fiber.Router, handler *handlers.PoolHandler, cfg *config.Config) {
	// Public totals
	router.Get("/stats", middleware.CacheControl(30*time.Second), handler.Stats)

	// Authenticated actions
	router.Post("/deposits", middleware.AuthMiddleware(cfg), handler.Deposit)
	router.Post("/withdrawals", middleware.AuthMiddleware(cfg), handler.Withdraw)
	router.Get("/accounts/me", middleware.AuthMiddleware(cfg), middleware.NoCacheHeaders(), handler.Account)

	// Operator/Admin only
	router.Post("/accruals", middleware.AuthMiddleware(cfg), middleware.OperatorOrAdmin(), handler.Accrue)
}
