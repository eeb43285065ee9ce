// Package config loads the tracker configuration from a YAML file and the environment.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jonathan/media-workflow/internal/llm"
)

// Environment variables
const (
	EnvConfigPath      = "MEDIA_TRACKER_CONFIG"
	EnvStorage         = "MEDIA_TRACKER_STORAGE"
	EnvLogLevel        = "MEDIA_TRACKER_LOG_LEVEL"
	EnvProvider        = "MEDIA_TRACKER_PROVIDER"
	EnvGeminiAPIKey    = "GEMINI_API_KEY"
	EnvAnthropicAPIKey = "ANTHROPIC_API_KEY"
	EnvDatabaseURL     = "DATABASE_URL"
)

// Storage backends
const (
	BackendFile     = "file"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
)

// DefaultSlot is the name under which the collection is stored
const DefaultSlot = "media_items"

// Config is the full tracker configuration
type Config struct {
	Storage  StorageConfig  `yaml:"storage"`
	Analysis AnalysisConfig `yaml:"analysis"`
	Server   ServerConfig   `yaml:"server"`
	LogLevel string         `yaml:"log_level"`
}

// StorageConfig selects where the collection document lives
type StorageConfig struct {
	Backend     string `yaml:"backend"` // file, sqlite or postgres
	Path        string `yaml:"path"`    // file or sqlite database path
	DatabaseURL string `yaml:"database_url"`
	Slot        string `yaml:"slot"`
	// SkipEmptySave keeps an existing document when the collection becomes empty
	SkipEmptySave bool `yaml:"skip_empty_save"`
}

// AnalysisConfig configures the LLM behind the analysis gateway
type AnalysisConfig struct {
	Provider        string        `yaml:"provider"`
	Tier            string        `yaml:"tier"`
	Timeout         time.Duration `yaml:"timeout"`
	Concurrency     int           `yaml:"concurrency"`
	GeminiAPIKey    string        `yaml:"gemini_api_key"`
	AnthropicAPIKey string        `yaml:"anthropic_api_key"`
}

// APIKey returns the key for the configured provider
func (a AnalysisConfig) APIKey() string {
	if a.Provider == string(llm.ProviderAnthropic) {
		return a.AnthropicAPIKey
	}
	return a.GeminiAPIKey
}

// ServerConfig configures the local HTTP front end
type ServerConfig struct {
	Port      int             `yaml:"port"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
}

// RateLimitConfig configures request limiting
type RateLimitConfig struct {
	Disabled bool `yaml:"disabled"`
	// DefaultPerMinute applies to every route without its own limit
	DefaultPerMinute int `yaml:"default_per_minute"`
	// AnalyzePerHour limits calls that reach the LLM
	AnalyzePerHour int      `yaml:"analyze_per_hour"`
	Whitelist      []string `yaml:"whitelist"`
}

// LoadError reports a config file that could not be used
type LoadError struct {
	Path  string
	Cause error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("config %s: %v", e.Path, e.Cause)
}

func (e *LoadError) Unwrap() error {
	return e.Cause
}

// Default returns the configuration used when no file is given
func Default() Config {
	return Config{
		Storage: StorageConfig{
			Backend: BackendFile,
			Path:    "data/media_items.json",
			Slot:    DefaultSlot,
		},
		Analysis: AnalysisConfig{
			Provider:    string(llm.ProviderGemini),
			Tier:        string(llm.TierStandard),
			Timeout:     30 * time.Second,
			Concurrency: 4,
		},
		Server: ServerConfig{
			Port: 8080,
			RateLimit: RateLimitConfig{
				DefaultPerMinute: 600,
				AnalyzePerHour:   60,
			},
		},
		LogLevel: "info",
	}
}

// Load reads the YAML file at path over the defaults and applies environment overrides.
// An empty path falls back to MEDIA_TRACKER_CONFIG; with neither, only defaults and the
// environment are used.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv(EnvConfigPath)
	}
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, &LoadError{Path: path, Cause: fmt.Errorf("failed to read config file: %w", err)}
		}
		var fileCfg Config
		if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
			return nil, &LoadError{Path: path, Cause: fmt.Errorf("failed to parse config YAML: %w", err)}
		}
		cfg = merge(cfg, fileCfg)
	}

	cfg.applyEnvOverrides()
	return &cfg, nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(EnvStorage); v != "" {
		c.Storage.Backend = strings.ToLower(v)
	}
	if v := os.Getenv(EnvDatabaseURL); v != "" {
		c.Storage.DatabaseURL = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv(EnvProvider); v != "" {
		c.Analysis.Provider = strings.ToLower(v)
	}
	if v := os.Getenv(EnvGeminiAPIKey); v != "" {
		c.Analysis.GeminiAPIKey = v
	}
	if v := os.Getenv(EnvAnthropicAPIKey); v != "" {
		c.Analysis.AnthropicAPIKey = v
	}
}

// merge returns base with every non-zero field of override applied
func merge(base, override Config) Config {
	s := override.Storage
	if s.Backend != "" {
		base.Storage.Backend = strings.ToLower(s.Backend)
	}
	if s.Path != "" {
		base.Storage.Path = s.Path
	}
	if s.DatabaseURL != "" {
		base.Storage.DatabaseURL = s.DatabaseURL
	}
	if s.Slot != "" {
		base.Storage.Slot = s.Slot
	}
	if s.SkipEmptySave {
		base.Storage.SkipEmptySave = true
	}

	a := override.Analysis
	if a.Provider != "" {
		base.Analysis.Provider = strings.ToLower(a.Provider)
	}
	if a.Tier != "" {
		base.Analysis.Tier = a.Tier
	}
	if a.Timeout != 0 {
		base.Analysis.Timeout = a.Timeout
	}
	if a.Concurrency != 0 {
		base.Analysis.Concurrency = a.Concurrency
	}
	if a.GeminiAPIKey != "" {
		base.Analysis.GeminiAPIKey = a.GeminiAPIKey
	}
	if a.AnthropicAPIKey != "" {
		base.Analysis.AnthropicAPIKey = a.AnthropicAPIKey
	}

	if override.Server.Port != 0 {
		base.Server.Port = override.Server.Port
	}
	rl := override.Server.RateLimit
	if rl.Disabled {
		base.Server.RateLimit.Disabled = true
	}
	if rl.DefaultPerMinute != 0 {
		base.Server.RateLimit.DefaultPerMinute = rl.DefaultPerMinute
	}
	if rl.AnalyzePerHour != 0 {
		base.Server.RateLimit.AnalyzePerHour = rl.AnalyzePerHour
	}
	if len(rl.Whitelist) > 0 {
		base.Server.RateLimit.Whitelist = rl.Whitelist
	}

	if override.LogLevel != "" {
		base.LogLevel = override.LogLevel
	}
	return base
}

// Validate checks that the configuration has usable values.
// A missing API key is not an error: analysis then falls back to manual review.
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case BackendFile, BackendSQLite:
		if strings.TrimSpace(c.Storage.Path) == "" {
			return fmt.Errorf("config error: 'storage.path' is required for the %s backend", c.Storage.Backend)
		}
	case BackendPostgres:
		if strings.TrimSpace(c.Storage.DatabaseURL) == "" {
			return fmt.Errorf("config error: 'storage.database_url' is required for the postgres backend")
		}
	default:
		return fmt.Errorf("config error: unknown storage backend %q", c.Storage.Backend)
	}
	if strings.TrimSpace(c.Storage.Slot) == "" {
		return fmt.Errorf("config error: 'storage.slot' must not be empty")
	}

	if _, err := llm.ParseProvider(c.Analysis.Provider); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	switch llm.ModelTier(c.Analysis.Tier) {
	case llm.TierLite, llm.TierStandard, llm.TierAdvanced:
	default:
		return fmt.Errorf("config error: unknown analysis tier %q", c.Analysis.Tier)
	}
	if c.Analysis.Timeout <= 0 {
		return fmt.Errorf("config error: 'analysis.timeout' must be positive")
	}
	if c.Analysis.Concurrency < 1 {
		return fmt.Errorf("config error: 'analysis.concurrency' must be at least 1")
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("config error: 'server.port' must be between 1 and 65535")
	}
	if c.Server.RateLimit.DefaultPerMinute < 0 || c.Server.RateLimit.AnalyzePerHour < 0 {
		return fmt.Errorf("config error: rate limits must be non-negative")
	}

	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("config error: unknown log level %q", c.LogLevel)
	}
	return nil
}
