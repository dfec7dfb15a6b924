package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	// Environment
	Env string // "development", "production", etc.

	// Server
	ServerAddr string
	BaseURL    string

	// Database
	DatabaseURL string
	SeedDevData bool

	// Redis backs the dashboard cache, rate limiter and sessions when set.
	RedisURL string

	// TLS
	TLSEnabled  bool
	TLSCertFile string
	TLSKeyFile  string

	// OIDC. Mutating API routes require a session when OIDCIssuer is set.
	OIDCIssuer       string
	OIDCClientID     string
	OIDCClientSecret string
	OIDCRedirectURL  string

	// Session
	SessionSecret string // Used for signing cookies (min 32 chars)

	// CORS
	CORSOrigins string // Comma-separated allowed origins

	// Rate limiting
	RateLimitMax    int
	RateLimitWindow time.Duration

	// Search results API
	SerpAPIKey     string
	SerpAPIBaseURL string

	// Generative text API
	GeminiAPIKey  string
	GeminiBaseURL string
	GeminiModel   string

	// Outbound retry policy
	RetryBaseDelay time.Duration
	MaxAttempts    int

	// Dashboard cache
	CacheTTL        time.Duration
	CacheMaxEntries int

	// Background jobs
	JobWorkers      int
	JobQueueSize    int
	RefreshSchedule string        // cron spec; empty disables scheduled refresh
	RefreshDelay    time.Duration // pause between citation queries during a refresh

	// TrackingConfigFile points at the optional tracking YAML.
	TrackingConfigFile string
}

// Load reads configuration from the environment and an optional .env file.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Env:                getEnv("ENV", "development"),
		ServerAddr:         getEnv("SERVER_ADDR", ":8000"),
		BaseURL:            getEnv("BASE_URL", "http://localhost:8000"),
		DatabaseURL:        getEnv("DATABASE_URL", "postgres://localhost:5432/brandwatch?sslmode=disable"),
		SeedDevData:        getEnvBool("SEED_DEV_DATA", false),
		RedisURL:           getEnv("REDIS_URL", ""),
		TLSEnabled:         getEnv("TLS_ENABLED", "") != "",
		TLSCertFile:        getEnv("TLS_CERT_FILE", ""),
		TLSKeyFile:         getEnv("TLS_KEY_FILE", ""),
		OIDCIssuer:         getEnv("OIDC_ISSUER", ""),
		OIDCClientID:       getEnv("OIDC_CLIENT_ID", ""),
		OIDCClientSecret:   getEnv("OIDC_CLIENT_SECRET", ""),
		OIDCRedirectURL:    getEnv("OIDC_REDIRECT_URL", "http://localhost:8000/auth/callback"),
		SessionSecret:      getEnv("SESSION_SECRET", "change-me-in-production-min-32-chars"),
		CORSOrigins:        getEnv("CORS_ORIGINS", "http://localhost:5173"),
		RateLimitMax:       clampInt(getEnvInt("RATE_LIMIT_MAX", 100), 1, 100000),
		RateLimitWindow:    getEnvDuration("RATE_LIMIT_WINDOW", time.Hour),
		SerpAPIKey:         getEnv("SERPAPI_KEY", ""),
		SerpAPIBaseURL:     getEnv("SERPAPI_BASE_URL", "https://serpapi.com"),
		GeminiAPIKey:       getEnv("GEMINI_API_KEY", ""),
		GeminiBaseURL:      getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta"),
		GeminiModel:        getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
		RetryBaseDelay:     getEnvDuration("EXTERNAL_RETRY_BASE_DELAY", 5*time.Second),
		MaxAttempts:        clampInt(getEnvInt("EXTERNAL_MAX_ATTEMPTS", 3), 1, 10),
		CacheTTL:           getEnvDuration("DASHBOARD_CACHE_TTL", 5*time.Minute),
		CacheMaxEntries:    clampInt(getEnvInt("DASHBOARD_CACHE_MAX_ENTRIES", 1000), 1, 100000),
		JobWorkers:         clampInt(getEnvInt("JOB_WORKERS", 2), 1, 64),
		JobQueueSize:       clampInt(getEnvInt("JOB_QUEUE_SIZE", 64), 1, 4096),
		RefreshSchedule:    getEnv("REFRESH_SCHEDULE", ""),
		RefreshDelay:       getEnvDuration("REFRESH_DELAY", 2*time.Second),
		TrackingConfigFile: getEnv("TRACKING_CONFIG_FILE", "tracking.yaml"),
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	n, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return n
}

func getEnvBool(key string, fallback bool) bool {
	b, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return b
}

// getEnvDuration accepts Go duration strings ("300ms", "5s") or a bare number of seconds.
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Second
	}
	return fallback
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// IsDev returns true if the environment is set to development.
func (c *Config) IsDev() bool {
	return c.Env == "development" || c.Env == "dev"
}

// AuthEnabled returns true if OIDC sign-in is configured.
func (c *Config) AuthEnabled() bool {
	return c.OIDCIssuer != ""
}
