// Package config provides configuration loading and validation for the
// matcher service. Values come from an optional JSON file, overridden by
// environment variables, with working defaults for everything.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
)

// Storage backend names.
const (
	BackendPostgres = "postgres"
	BackendFile     = "file"
	BackendMemory   = "memory"
)

// Config represents the service configuration. JSON fields are the ones
// useful in a checked-in config file; tuning intervals are env-only.
type Config struct {
	Port        int    `json:"port,omitempty" validate:"gte=0,lte=65535"`
	DatabaseURL string `json:"database_url,omitempty"`
	APIKey      string `json:"api_key,omitempty"`

	// Backend selects where cache entries and usage records live.
	Backend   string `json:"backend,omitempty" validate:"omitempty,oneof=postgres file memory"`
	DataDir   string `json:"data_dir,omitempty"`
	UploadDir string `json:"upload_dir,omitempty"`

	// Per-hour quotas
	AnalyzeLimit     int `json:"analyze_limit,omitempty" validate:"gte=0"`
	TailorLimit      int `json:"tailor_limit,omitempty" validate:"gte=0"`
	SuggestionsLimit int `json:"suggestions_limit,omitempty" validate:"gte=0"`

	// TitleSimilarity is the Jaro-Winkler threshold for title matching.
	TitleSimilarity float64 `json:"title_similarity,omitempty" validate:"gte=0,lte=1"`

	// Tuning intervals, env-only.
	CacheTTL            time.Duration `json:"-"`
	CacheSweepInterval  time.Duration `json:"-"`
	UsageWindow         time.Duration `json:"-"`
	UsageRetention      time.Duration `json:"-"`
	UsagePruneInterval  time.Duration `json:"-"`
	UploadMaxAge        time.Duration `json:"-"`
	UploadSweepInterval time.Duration `json:"-"`
}

// Default returns the configuration used when nothing else is specified.
func Default() Config {
	return Config{
		Port:             8080,
		Backend:          BackendFile,
		DataDir:          "data",
		UploadDir:        "uploads",
		AnalyzeLimit:     5,
		TailorLimit:      2,
		SuggestionsLimit: 2,
		TitleSimilarity:  0.85,

		CacheTTL:            72 * time.Hour,
		CacheSweepInterval:  time.Hour,
		UsageWindow:         time.Hour,
		UsageRetention:      24 * time.Hour,
		UsagePruneInterval:  6 * time.Hour,
		UploadMaxAge:        time.Hour,
		UploadSweepInterval: time.Hour,
	}
}

// Load builds the effective configuration: defaults, then the JSON file at
// path (when non-empty), then environment overrides.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if !filepath.IsAbs(path) {
			cwd, err := os.Getwd()
			if err != nil {
				return nil, fmt.Errorf("failed to get current directory: %w", err)
			}
			path = filepath.Join(cwd, path)
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config JSON: %w", err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyEnv overrides configuration with environment variables.
func (c *Config) applyEnv() {
	c.Port = getEnvInt("PORT", c.Port)
	c.DatabaseURL = getEnvString("DATABASE_URL", c.DatabaseURL)
	c.APIKey = getEnvString("GEMINI_API_KEY", c.APIKey)
	c.Backend = getEnvString("STORE_BACKEND", c.Backend)
	c.DataDir = getEnvString("DATA_DIR", c.DataDir)
	c.UploadDir = getEnvString("UPLOAD_DIR", c.UploadDir)

	c.AnalyzeLimit = getEnvInt("ANALYZE_LIMIT", c.AnalyzeLimit)
	c.TailorLimit = getEnvInt("TAILOR_LIMIT", c.TailorLimit)
	c.SuggestionsLimit = getEnvInt("SUGGESTIONS_LIMIT", c.SuggestionsLimit)

	c.CacheTTL = getEnvDuration("CACHE_TTL", c.CacheTTL)
	c.CacheSweepInterval = getEnvDuration("CACHE_SWEEP_INTERVAL", c.CacheSweepInterval)
	c.UsageWindow = getEnvDuration("USAGE_WINDOW", c.UsageWindow)
	c.UsageRetention = getEnvDuration("USAGE_RETENTION", c.UsageRetention)
	c.UsagePruneInterval = getEnvDuration("USAGE_PRUNE_INTERVAL", c.UsagePruneInterval)
	c.UploadMaxAge = getEnvDuration("UPLOAD_MAX_AGE", c.UploadMaxAge)
	c.UploadSweepInterval = getEnvDuration("UPLOAD_SWEEP_INTERVAL", c.UploadSweepInterval)
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	if c.Backend == BackendPostgres && c.DatabaseURL == "" {
		return fmt.Errorf("config error: postgres backend requires 'database_url' or DATABASE_URL")
	}
	if c.UsageRetention < c.UsageWindow {
		return fmt.Errorf("config error: usage retention %s is shorter than the window %s",
			c.UsageRetention, c.UsageWindow)
	}
	return nil
}

// getEnvString gets an environment variable as a string with a default value.
func getEnvString(key string, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt gets an environment variable as an integer with a default value.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvDuration gets an environment variable as a duration with a default value.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
