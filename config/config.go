package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Browser   BrowserConfig
	Scraper   ScraperConfig
	Sinks     SinkConfig
	Auth      AuthConfig
	RateLimit RateLimitConfig
	Log       LogConfig
}

// ServerConfig controls the HTTP server.
type ServerConfig struct {
	Host string // default: "0.0.0.0"
	Port int    // default: 8080
	Mode string // "debug", "release", "test"; default: "release"
}

// BrowserConfig controls the per-request Rod browser instance.
type BrowserConfig struct {
	// Headless controls whether the browser runs headless.
	Headless bool // default: true

	// NoSandbox disables Chrome's sandbox (needed in Docker/serverless).
	NoSandbox bool // default: false

	// Bin overrides the browser binary path. When empty, a fallback chain
	// of well-known install locations is probed.
	Bin string

	// UserAgent is presented to the target page.
	UserAgent string

	// Locale is the Accept-Language value and navigator.language override.
	Locale string // default: "es-AR"

	// Timezone is the emulated timezone ID.
	Timezone string // default: "America/Argentina/Buenos_Aires"

	// ViewportWidth/ViewportHeight size the emulated viewport.
	ViewportWidth  int // default: 1366
	ViewportHeight int // default: 768
}

// ScraperConfig controls the quote pipeline.
type ScraperConfig struct {
	// TargetURL is the insurer's quoting page.
	TargetURL string

	// Insurer is the name reported in successful responses.
	Insurer string // default: "Meridional Seguros"

	// DefaultTimeout is the end-to-end budget per request.
	DefaultTimeout time.Duration // default: 55s

	// MaxTimeout caps the budget regardless of deployment config.
	MaxTimeout time.Duration // default: 120s

	// NavigationTimeout bounds page.Navigate alone.
	NavigationTimeout time.Duration // default: 30s

	// LocateBudget is the total element-location budget per semantic field,
	// divided across candidate selectors.
	LocateBudget time.Duration // default: 8s

	// SettleDelay is the pause after submission before inspecting results.
	SettleDelay time.Duration // default: 3s
}

// SinkConfig controls the best-effort collaborator sinks.
type SinkConfig struct {
	// SheetsURL is the quote-persistence endpoint. Empty disables the sink.
	SheetsURL string

	// Timeout bounds each sink call; sink failures are logged, never surfaced.
	Timeout time.Duration // default: 3s

	SMTPHost string
	SMTPPort int
	SMTPUser string
	SMTPPass string
	EmailTo  string
}

// AuthConfig controls API key authentication.
type AuthConfig struct {
	Enabled bool // default: false
	APIKeys []string
}

// RateLimitConfig controls per-key rate limiting.
type RateLimitConfig struct {
	RequestsPerSecond float64 // default: 2
	Burst             int     // default: 5
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string // default: "info"
	Format string // "json" or "text"; default: "json"
}

// Load reads configuration from environment variables with sane defaults.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Host: envOr("COTIZADOR_HOST", "0.0.0.0"),
			Port: envIntOr("COTIZADOR_PORT", 8080),
			Mode: envOr("COTIZADOR_MODE", "release"),
		},
		Browser: BrowserConfig{
			Headless:  envBoolOr("COTIZADOR_HEADLESS", true),
			NoSandbox: envBoolOr("COTIZADOR_NO_SANDBOX", false),
			Bin:       os.Getenv("COTIZADOR_BROWSER_BIN"),
			UserAgent: envOr("COTIZADOR_USER_AGENT",
				"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"),
			Locale:         envOr("COTIZADOR_LOCALE", "es-AR"),
			Timezone:       envOr("COTIZADOR_TIMEZONE", "America/Argentina/Buenos_Aires"),
			ViewportWidth:  envIntOr("COTIZADOR_VIEWPORT_WIDTH", 1366),
			ViewportHeight: envIntOr("COTIZADOR_VIEWPORT_HEIGHT", 768),
		},
		Scraper: ScraperConfig{
			TargetURL: envOr("COTIZADOR_TARGET_URL",
				"https://meridionalseguros.seg.ar/auto-cotizador"),
			Insurer:           envOr("COTIZADOR_INSURER", "Meridional Seguros"),
			DefaultTimeout:    envDurationOr("COTIZADOR_DEFAULT_TIMEOUT", 55*time.Second),
			MaxTimeout:        envDurationOr("COTIZADOR_MAX_TIMEOUT", 120*time.Second),
			NavigationTimeout: envDurationOr("COTIZADOR_NAV_TIMEOUT", 30*time.Second),
			LocateBudget:      envDurationOr("COTIZADOR_LOCATE_BUDGET", 8*time.Second),
			SettleDelay:       envDurationOr("COTIZADOR_SETTLE_DELAY", 3*time.Second),
		},
		Sinks: SinkConfig{
			SheetsURL: os.Getenv("COTIZADOR_SHEETS_SINK_URL"),
			Timeout:   envDurationOr("COTIZADOR_SINK_TIMEOUT", 3*time.Second),
			SMTPHost:  os.Getenv("COTIZADOR_SMTP_HOST"),
			SMTPPort:  envIntOr("COTIZADOR_SMTP_PORT", 587),
			SMTPUser:  os.Getenv("COTIZADOR_SMTP_USER"),
			SMTPPass:  os.Getenv("COTIZADOR_SMTP_PASS"),
			EmailTo:   os.Getenv("COTIZADOR_EMAIL_TO"),
		},
		Auth: AuthConfig{
			Enabled: envBoolOr("COTIZADOR_AUTH_ENABLED", false),
			APIKeys: envSliceOr("COTIZADOR_API_KEYS", nil),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: envFloatOr("COTIZADOR_RATE_RPS", 2.0),
			Burst:             envIntOr("COTIZADOR_RATE_BURST", 5),
		},
		Log: LogConfig{
			Level:  envOr("COTIZADOR_LOG_LEVEL", "info"),
			Format: envOr("COTIZADOR_LOG_FORMAT", "json"),
		},
	}
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

func envBoolOr(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
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

func envSliceOr(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		return result
	}
	return fallback
}
