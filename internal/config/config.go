package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
type Config struct {
	Port        string
	Env         string
	DatabaseURL string
	RedisURL    string
	SQLitePath  string // fallback store when DATABASE_URL is unset

	// Session
	JWTSecret  string
	SessionTTL time.Duration

	// Model calls
	OpenAIModel  string
	ModelTimeout time.Duration
	AgentKeys    map[string]string // logical agent id -> API key

	// Team
	Roster []string // overrides the default roster when set

	// Rate limiting
	RateLimitWhitelist []string // IPs or CIDRs exempt from rate limiting
	AutoBlockEnabled   bool     // Enable auto-blocking after repeated violations

	// CORS
	CORSOrigins []string // origins allowed to send credentialed requests
}

// Load reads configuration from environment variables.
// In development, it loads from .env file if present.
// In production, it panics on missing required variables.
func Load() *Config {
	// Load .env file if it exists (for development)
	_ = godotenv.Load()

	cfg := &Config{
		Port:             getEnv("PORT", "8080"),
		Env:              getEnv("ENV", "development"),
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		RedisURL:         os.Getenv("REDIS_URL"),
		SQLitePath:       getEnv("SQLITE_PATH", "./data/parallel.db"),
		JWTSecret:        getEnv("SECRET_KEY", "dev-secret"),
		SessionTTL:       getDuration("SESSION_TTL_MINUTES", 1440) * time.Minute,
		OpenAIModel:      getEnv("OPENAI_MODEL", "gpt-4.1-mini"),
		ModelTimeout:     getDuration("MODEL_TIMEOUT_SECONDS", 60) * time.Second,
		AutoBlockEnabled: getEnv("AUTO_BLOCK_ENABLED", "false") == "true",
	}

	// Per-agent API keys; any agent without its own key falls back to
	// OPENAI_API_KEY.
	fallbackKey := os.Getenv("OPENAI_API_KEY")
	cfg.AgentKeys = map[string]string{
		"yug":         getEnv("OPENAI_API_KEY_A", fallbackKey),
		"sean":        getEnv("OPENAI_API_KEY_B", fallbackKey),
		"severin":     getEnv("OPENAI_API_KEY_C", fallbackKey),
		"nayab":       getEnv("OPENAI_API_KEY_D", fallbackKey),
		"coordinator": getEnv("OPENAI_API_KEY_COORDINATOR", fallbackKey),
	}

	// Optional roster override (comma-separated agent ids)
	if roster := os.Getenv("TEAM_ROSTER"); roster != "" {
		for _, entry := range strings.Split(roster, ",") {
			entry = strings.TrimSpace(strings.ToLower(entry))
			if entry != "" {
				cfg.Roster = append(cfg.Roster, entry)
			}
		}
	}

	// Parse CORS origins (comma-separated)
	if origins := os.Getenv("CORS_ORIGINS"); origins != "" {
		for _, entry := range strings.Split(origins, ",") {
			entry = strings.TrimSpace(entry)
			if entry != "" {
				cfg.CORSOrigins = append(cfg.CORSOrigins, entry)
			}
		}
	}

	// Parse whitelist (comma-separated IPs or CIDRs)
	if whitelist := os.Getenv("RATE_LIMIT_WHITELIST"); whitelist != "" {
		for _, entry := range strings.Split(whitelist, ",") {
			entry = strings.TrimSpace(entry)
			if entry != "" {
				cfg.RateLimitWhitelist = append(cfg.RateLimitWhitelist, entry)
			}
		}
	}

	// In production, require real secrets and backing services
	if cfg.Env == "production" {
		if cfg.DatabaseURL == "" {
			panic("DATABASE_URL is required in production")
		}
		if cfg.RedisURL == "" {
			panic("REDIS_URL is required in production")
		}
		if cfg.JWTSecret == "dev-secret" {
			panic("SECRET_KEY is required in production")
		}
	}

	return cfg
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue int64) time.Duration {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.ParseInt(value, 10, 64); err == nil && n > 0 {
			return time.Duration(n)
		}
	}
	return time.Duration(defaultValue)
}
