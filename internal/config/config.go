package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	AppMode  string
	Port     string
	Database DatabaseConfig
	JWT      JWTConfig
	Cookie   CookieConfig
	Platform PlatformConfig
	Notify   NotifyConfig
	Redis    RedisConfig
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret           string
	RefreshSecret    string
	AccessTokenMins  int
	RefreshTokenDays int
}

// CookieConfig holds cookie configuration
type CookieConfig struct {
	Secure   bool
	SameSite string
	Domain   string
}

// PlatformConfig holds the donation platform rules
type PlatformConfig struct {
	CreditRate          int64
	VotingPeriodDays    int
	MaintenanceSplitPct int64
	ClaimCodeMaxRetries int
}

// NotifyConfig holds the outbound notification webhook settings
type NotifyConfig struct {
	WebhookURL string
	Enabled    bool
}

// RedisConfig holds the optional stats cache settings
type RedisConfig struct {
	Addr         string
	Password     string
	DB           int
	StatsTTLSecs int
}

// Global config instance
var AppConfig *Config

// Load reads configuration from .env file and environment variables
func Load() (*Config, error) {
	// Load .env file (ignore error if file doesn't exist in production)
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using environment variables")
	}

	// Get APP_MODE (default to "dev") - trim spaces for Windows compatibility
	appMode := strings.TrimSpace(getEnv("APP_MODE", "dev"))
	if appMode != "dev" && appMode != "prod" {
		return nil, fmt.Errorf("invalid APP_MODE: '%s' (must be 'dev' or 'prod')", appMode)
	}

	// Build config based on APP_MODE
	config := &Config{
		AppMode:  appMode,
		Port:     getEnv("PORT", "3000"),
		Database: loadDatabaseConfig(appMode),
		JWT:      loadJWTConfig(appMode),
		Cookie:   loadCookieConfig(appMode),
		Platform: loadPlatformConfig(),
		Notify:   loadNotifyConfig(),
		Redis:    loadRedisConfig(),
	}

	// Set global config
	AppConfig = config

	log.Printf("✅ Configuration loaded successfully [MODE: %s]", appMode)
	return config, nil
}

// loadDatabaseConfig loads database config based on mode
func loadDatabaseConfig(mode string) DatabaseConfig {
	prefix := "DEV_"
	if mode == "prod" {
		prefix = "PROD_"
	}

	return DatabaseConfig{
		Host:     getEnv(prefix+"DB_HOST", "localhost"),
		Port:     getEnv(prefix+"DB_PORT", "3306"),
		User:     getEnv(prefix+"DB_USER", "root"),
		Password: getEnv(prefix+"DB_PASS", ""),
		DBName:   getEnv(prefix+"DB_NAME", "aquahope"),
	}
}

// loadJWTConfig loads JWT config based on mode
func loadJWTConfig(mode string) JWTConfig {
	prefix := "DEV_"
	if mode == "prod" {
		prefix = "PROD_"
	}

	accessMins, _ := strconv.Atoi(getEnv("ACCESS_TOKEN_MINUTES", "15"))
	refreshDays, _ := strconv.Atoi(getEnv("REFRESH_TOKEN_DAYS", "7"))

	return JWTConfig{
		Secret:           getEnv(prefix+"JWT_SECRET", "default_secret"),
		RefreshSecret:    getEnv(prefix+"JWT_REFRESH_SECRET", "default_refresh_secret"),
		AccessTokenMins:  accessMins,
		RefreshTokenDays: refreshDays,
	}
}

// loadCookieConfig loads cookie config based on mode
func loadCookieConfig(mode string) CookieConfig {
	prefix := "DEV_"
	if mode == "prod" {
		prefix = "PROD_"
	}

	secure, _ := strconv.ParseBool(getEnv(prefix+"COOKIE_SECURE", "false"))

	return CookieConfig{
		Secure:   secure,
		SameSite: getEnv("COOKIE_SAMESITE", "lax"),
		Domain:   getEnv("COOKIE_DOMAIN", ""),
	}
}

// loadPlatformConfig loads the donation platform rules.
// Changing the credit rate or the split only affects events after the
// change; already-recorded balances and buckets are never restated.
func loadPlatformConfig() PlatformConfig {
	creditRate, _ := strconv.ParseInt(getEnv("CREDIT_RATE", "1000"), 10, 64)
	votingDays, _ := strconv.Atoi(getEnv("VOTING_PERIOD_DAYS", "7"))
	splitPct, _ := strconv.ParseInt(getEnv("MAINTENANCE_SPLIT_PCT", "30"), 10, 64)
	maxRetries, _ := strconv.Atoi(getEnv("CLAIM_CODE_MAX_RETRIES", "5"))

	if creditRate <= 0 {
		creditRate = 1000
	}
	if votingDays <= 0 {
		votingDays = 7
	}
	if splitPct < 0 || splitPct > 100 {
		splitPct = 30
	}
	if maxRetries <= 0 {
		maxRetries = 5
	}

	return PlatformConfig{
		CreditRate:          creditRate,
		VotingPeriodDays:    votingDays,
		MaintenanceSplitPct: splitPct,
		ClaimCodeMaxRetries: maxRetries,
	}
}

// loadNotifyConfig loads the notification webhook config
func loadNotifyConfig() NotifyConfig {
	url := getEnv("NOTIFY_WEBHOOK_URL", "")
	return NotifyConfig{
		WebhookURL: url,
		Enabled:    url != "",
	}
}

// loadRedisConfig loads the optional Redis stats cache config.
// An empty REDIS_ADDR disables the cache entirely.
func loadRedisConfig() RedisConfig {
	db, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	ttl, _ := strconv.Atoi(getEnv("STATS_CACHE_TTL_SECONDS", "30"))

	return RedisConfig{
		Addr:         getEnv("REDIS_ADDR", ""),
		Password:     getEnv("REDIS_PASSWORD", ""),
		DB:           db,
		StatsTTLSecs: ttl,
	}
}

// getEnv gets environment variable with default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// IsDev returns true if running in development mode
func (c *Config) IsDev() bool {
	return c.AppMode == "dev"
}

// IsProd returns true if running in production mode
func (c *Config) IsProd() bool {
	return c.AppMode == "prod"
}

// GetAllowedOrigins returns allowed origins for CORS
func (c *Config) GetAllowedOrigins() string {
	origins := getEnv("ALLOWED_ORIGINS", "")
	if origins == "" {
		if c.IsDev() {
			return "*"
		}
		// Default production origins
		return "https://donate.aquahope.org"
	}
	return origins
}
