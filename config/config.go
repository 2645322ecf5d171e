package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/andybalholm/cascadia"
)

// Config holds all application configuration.
type Config struct {
	Fetch     FetchConfig
	Export    ExportConfig
	Browser   BrowserConfig
	Server    ServerConfig
	Auth      AuthConfig
	RateLimit RateLimitConfig
	Cache     CacheConfig
	Webhook   WebhookConfig
	Log       LogConfig
}

// FetchConfig controls how profile pages are fetched and parsed.
type FetchConfig struct {
	// Site is the host used to build profile URLs from bare usernames.
	Site string // default: "backloggd.com"

	// Engine selects the fetch engine: "http" or "browser".
	Engine string // default: "http"

	// Timeout is the per-request deadline. Zero disables it.
	Timeout time.Duration // default: 30s

	// ChromeTLS dials HTTPS with a Chrome TLS fingerprint (http engine only).
	ChromeTLS bool // default: false

	// UserAgent overrides the client's User-Agent header when set.
	UserAgent string

	// Headers are extra request headers. Empty by default.
	Headers map[string]string

	// MaxPages caps the number of pages fetched. Zero means unlimited.
	MaxPages int // default: 0

	// Strict turns fetch failures and defaulted fields into a failed run.
	Strict bool // default: false

	Selectors SelectorConfig
}

// SelectorConfig holds the CSS markers for entries on a profile page.
type SelectorConfig struct {
	Entry string // default: ".rating-hover"
	Title string // default: ".game-text-centered"
	Stars string // default: ".stars-top"
}

// ExportConfig controls where CSV files are written.
type ExportConfig struct {
	OutputDir string // default: "."
}

// BrowserConfig controls the Rod browser used by the "browser" engine.
type BrowserConfig struct {
	Headless   bool // default: true
	NoSandbox  bool // default: false
	Stealth    bool // default: true
	BrowserBin string
}

// ServerConfig controls the HTTP API server.
type ServerConfig struct {
	Host string // default: "0.0.0.0"
	Port int    // default: 8080
	Mode string // "debug", "release", "test"; default: "release"
}

// AuthConfig controls API key authentication.
type AuthConfig struct {
	// Enabled toggles API key authentication.
	Enabled bool // default: true

	// APIKeys is the list of valid API keys. Empty means open access.
	APIKeys []string
}

// RateLimitConfig controls per-key rate limiting of API requests.
type RateLimitConfig struct {
	// RequestsPerSecond is the sustained rate per API key.
	RequestsPerSecond float64 // default: 1

	// Burst is the maximum burst size per API key.
	Burst int // default: 3
}

// CacheConfig controls the export result cache used by the API.
type CacheConfig struct {
	MaxEntries int           // default: 100
	TTL        time.Duration // default: 10m
}

// WebhookConfig controls the completion webhook sent by the CLI.
type WebhookConfig struct {
	URL     string
	Secret  string
	Timeout time.Duration // default: 10s
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string // default: "info"
	Format string // "pretty", "json" or "text"; default: "pretty"
}

// Defaults returns a Config populated with the built-in defaults.
func Defaults() Config {
	return Config{
		Fetch: FetchConfig{
			Site:    "backloggd.com",
			Engine:  "http",
			Timeout: 30 * time.Second,
			Selectors: SelectorConfig{
				Entry: ".rating-hover",
				Title: ".game-text-centered",
				Stars: ".stars-top",
			},
		},
		Export: ExportConfig{
			OutputDir: ".",
		},
		Browser: BrowserConfig{
			Headless: true,
			Stealth:  true,
		},
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
			Mode: "release",
		},
		Auth: AuthConfig{
			Enabled: true,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 1,
			Burst:             3,
		},
		Cache: CacheConfig{
			MaxEntries: 100,
			TTL:        10 * time.Minute,
		},
		Webhook: WebhookConfig{
			Timeout: 10 * time.Second,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "pretty",
		},
	}
}

// Load builds the configuration from defaults, the optional json5 file at
// path (plus its ".local" override), and finally environment variables.
// A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Defaults()
	if path != "" {
		if err := applyFile(&cfg, path); err != nil {
			return nil, err
		}
	}
	cfg = FromEnv(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// FromEnv overlays GAMEXPORT_* environment variables on base.
func FromEnv(base Config) Config {
	return Config{
		Fetch: FetchConfig{
			Site:      envOr("GAMEXPORT_SITE", base.Fetch.Site),
			Engine:    envOr("GAMEXPORT_ENGINE", base.Fetch.Engine),
			Timeout:   envDurationOr("GAMEXPORT_TIMEOUT", base.Fetch.Timeout),
			ChromeTLS: envBoolOr("GAMEXPORT_CHROME_TLS", base.Fetch.ChromeTLS),
			UserAgent: envOr("GAMEXPORT_USER_AGENT", base.Fetch.UserAgent),
			Headers:   envMapOr("GAMEXPORT_HEADERS", base.Fetch.Headers),
			MaxPages:  envIntOr("GAMEXPORT_MAX_PAGES", base.Fetch.MaxPages),
			Strict:    envBoolOr("GAMEXPORT_STRICT", base.Fetch.Strict),
			Selectors: SelectorConfig{
				Entry: envOr("GAMEXPORT_ENTRY_SELECTOR", base.Fetch.Selectors.Entry),
				Title: envOr("GAMEXPORT_TITLE_SELECTOR", base.Fetch.Selectors.Title),
				Stars: envOr("GAMEXPORT_STARS_SELECTOR", base.Fetch.Selectors.Stars),
			},
		},
		Export: ExportConfig{
			OutputDir: envOr("GAMEXPORT_OUTPUT_DIR", base.Export.OutputDir),
		},
		Browser: BrowserConfig{
			Headless:   envBoolOr("GAMEXPORT_HEADLESS", base.Browser.Headless),
			NoSandbox:  envBoolOr("GAMEXPORT_NO_SANDBOX", base.Browser.NoSandbox),
			Stealth:    envBoolOr("GAMEXPORT_STEALTH", base.Browser.Stealth),
			BrowserBin: envOr("GAMEXPORT_BROWSER_BIN", base.Browser.BrowserBin),
		},
		Server: ServerConfig{
			Host: envOr("GAMEXPORT_HOST", base.Server.Host),
			Port: envIntOr("GAMEXPORT_PORT", base.Server.Port),
			Mode: envOr("GAMEXPORT_MODE", base.Server.Mode),
		},
		Auth: AuthConfig{
			Enabled: envBoolOr("GAMEXPORT_AUTH_ENABLED", base.Auth.Enabled),
			APIKeys: envSliceOr("GAMEXPORT_API_KEYS", base.Auth.APIKeys),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: envFloatOr("GAMEXPORT_RATE_RPS", base.RateLimit.RequestsPerSecond),
			Burst:             envIntOr("GAMEXPORT_RATE_BURST", base.RateLimit.Burst),
		},
		Cache: CacheConfig{
			MaxEntries: envIntOr("GAMEXPORT_CACHE_MAX_ENTRIES", base.Cache.MaxEntries),
			TTL:        envDurationOr("GAMEXPORT_CACHE_TTL", base.Cache.TTL),
		},
		Webhook: WebhookConfig{
			URL:     envOr("GAMEXPORT_WEBHOOK_URL", base.Webhook.URL),
			Secret:  envOr("GAMEXPORT_WEBHOOK_SECRET", base.Webhook.Secret),
			Timeout: envDurationOr("GAMEXPORT_WEBHOOK_TIMEOUT", base.Webhook.Timeout),
		},
		Log: LogConfig{
			Level:  envOr("GAMEXPORT_LOG_LEVEL", base.Log.Level),
			Format: envOr("GAMEXPORT_LOG_FORMAT", base.Log.Format),
		},
	}
}

// Validate reports configuration values that would make a run meaningless.
func (c *Config) Validate() error {
	if c.Fetch.Site == "" {
		return fmt.Errorf("config: site host must not be empty")
	}
	switch c.Fetch.Engine {
	case "http", "browser":
	default:
		return fmt.Errorf("config: unknown engine %q (want \"http\" or \"browser\")", c.Fetch.Engine)
	}
	if c.Fetch.MaxPages < 0 {
		return fmt.Errorf("config: max pages must be >= 0, got %d", c.Fetch.MaxPages)
	}
	if c.Fetch.Timeout < 0 {
		return fmt.Errorf("config: timeout must be >= 0, got %s", c.Fetch.Timeout)
	}
	for name, sel := range map[string]string{
		"entry": c.Fetch.Selectors.Entry,
		"title": c.Fetch.Selectors.Title,
		"stars": c.Fetch.Selectors.Stars,
	} {
		if _, err := cascadia.Compile(sel); err != nil {
			return fmt.Errorf("config: invalid %s selector %q: %w", name, sel, err)
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

// envMapOr parses "Key=Value,Key2=Value2".
func envMapOr(key string, fallback map[string]string) map[string]string {
	pairs := envSliceOr(key, nil)
	if len(pairs) == 0 {
		return fallback
	}
	result := make(map[string]string, len(pairs))
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		if !ok || strings.TrimSpace(k) == "" {
			continue
		}
		result[strings.TrimSpace(k)] = strings.TrimSpace(v)
	}
	if len(result) == 0 {
		return fallback
	}
	return result
}
