package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Provider  ProviderConfig
	Geography GeographyConfig
	Session   SessionConfig
	RateLimit RateLimitConfig
	Webhook   WebhookConfig
	Log       LogConfig
}

// ServerConfig controls the HTTP server.
type ServerConfig struct {
	Host string // default: "0.0.0.0"
	Port int    // default: 8080
	Mode string // "debug", "release", "test"; default: "release"
}

// ProviderConfig controls the search-results provider client.
type ProviderConfig struct {
	// APIKey authenticates against the provider. Only ever read from the
	// environment; never serialized or logged.
	APIKey string

	// BaseURL is the provider's search endpoint.
	BaseURL string // default: "https://serpapi.com/search.json"

	// Engine selects the provider's search engine.
	Engine string // default: "google"

	// Language is sent as the hl parameter.
	Language string // default: "en"

	// Timeout bounds a single provider request.
	Timeout time.Duration // default: 30s
}

// GeographyConfig controls the country directory source.
type GeographyConfig struct {
	URL     string        // default: restcountries v3.1, cca2 and name fields only
	Timeout time.Duration // default: 15s
}

// SessionConfig controls the lookup session registry.
type SessionConfig struct {
	// TTL is how long an untouched session survives.
	TTL time.Duration // default: 1h

	// MaxSessions caps the registry; the least recently used session is evicted.
	MaxSessions int // default: 1000

	// Ordering decides which completion wins when lookups overlap:
	// "arrival" (last to complete) or "issue" (last submitted).
	Ordering string // default: "arrival"
}

// RateLimitConfig controls per-client rate limiting.
type RateLimitConfig struct {
	// RequestsPerSecond is the sustained rate per client.
	RequestsPerSecond float64 // default: 2

	// Burst is the maximum burst size per client.
	Burst int // default: 5
}

// WebhookConfig controls session callback delivery.
type WebhookConfig struct {
	// Secret signs callback bodies with HMAC-SHA256 when non-empty.
	Secret  string
	Timeout time.Duration // default: 10s
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string // default: "info"
	Format string // "json" or "text"; default: "json"
}

// Load reads configuration from environment variables with sane defaults.
// Values from .env files fill in variables not already set in the process
// environment.
func Load() (*Config, error) {
	if err := loadEnvFiles(); err != nil {
		return nil, err
	}

	cfg := &Config{
		Server: ServerConfig{
			Host: envOr("RANKCHECK_HOST", "0.0.0.0"),
			Port: envIntOr("RANKCHECK_PORT", 8080),
			Mode: envOr("RANKCHECK_MODE", "release"),
		},
		Provider: ProviderConfig{
			APIKey:   os.Getenv("RANKCHECK_SERPAPI_KEY"),
			BaseURL:  envOr("RANKCHECK_SERPAPI_URL", "https://serpapi.com/search.json"),
			Engine:   envOr("RANKCHECK_SERPAPI_ENGINE", "google"),
			Language: envOr("RANKCHECK_LANGUAGE", "en"),
			Timeout:  envDurationOr("RANKCHECK_PROVIDER_TIMEOUT", 30*time.Second),
		},
		Geography: GeographyConfig{
			URL:     envOr("RANKCHECK_GEO_URL", "https://restcountries.com/v3.1/all?fields=cca2,name"),
			Timeout: envDurationOr("RANKCHECK_GEO_TIMEOUT", 15*time.Second),
		},
		Session: SessionConfig{
			TTL:         envDurationOr("RANKCHECK_SESSION_TTL", time.Hour),
			MaxSessions: envIntOr("RANKCHECK_MAX_SESSIONS", 1000),
			Ordering:    strings.ToLower(envOr("RANKCHECK_ORDERING", "arrival")),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: envFloatOr("RANKCHECK_RATE_RPS", 2.0),
			Burst:             envIntOr("RANKCHECK_RATE_BURST", 5),
		},
		Webhook: WebhookConfig{
			Secret:  os.Getenv("RANKCHECK_WEBHOOK_SECRET"),
			Timeout: envDurationOr("RANKCHECK_WEBHOOK_TIMEOUT", 10*time.Second),
		},
		Log: LogConfig{
			Level:  envOr("RANKCHECK_LOG_LEVEL", "info"),
			Format: envOr("RANKCHECK_LOG_FORMAT", "json"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the service cannot run with. A missing provider
// key is not an error here: the server still serves locations and health,
// and lookups fail with PROVIDER_UNAVAILABLE.
func (c *Config) Validate() error {
	switch c.Session.Ordering {
	case "arrival", "issue":
	default:
		return fmt.Errorf("config: RANKCHECK_ORDERING must be \"arrival\" or \"issue\", got %q", c.Session.Ordering)
	}
	if c.Session.MaxSessions <= 0 {
		return fmt.Errorf("config: RANKCHECK_MAX_SESSIONS must be positive, got %d", c.Session.MaxSessions)
	}
	if c.RateLimit.RequestsPerSecond <= 0 || c.RateLimit.Burst <= 0 {
		return fmt.Errorf("config: rate limit must be positive (rps=%v burst=%d)", c.RateLimit.RequestsPerSecond, c.RateLimit.Burst)
	}
	return nil
}

// loadEnvFiles loads ENV_FILE when set, otherwise .env.local then .env.
// Missing files are ignored.
func loadEnvFiles() error {
	if envFile := os.Getenv("ENV_FILE"); envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("config: load env file %s: %w", envFile, err)
		}
		return nil
	}
	for _, f := range []string{".env.local", ".env"} {
		if err := godotenv.Load(f); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("config: load %s: %w", f, err)
		}
	}
	return nil
}

// --- helper functions ---

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envFloatOr(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
