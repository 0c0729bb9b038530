// Package config provides configuration loading and validation for the pipeline.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Config holds every tunable threshold in the pipeline. The quality and
// chunking thresholds are hand-tuned values carried over from production; they
// are deliberately configuration, not business rules.
type Config struct {
	// Quality thresholds
	MinBulletsRecentRoles int `json:"min_bullets_recent_roles,omitempty"` // Minimum bullets for roles started within RecentYearsThreshold
	MinBulletsOlderRoles  int `json:"min_bullets_older_roles,omitempty"`  // Minimum bullets for older roles
	MaxBulletsPerRole     int `json:"max_bullets_per_role,omitempty"`     // Verbosity warning threshold
	RecentYearsThreshold  int `json:"recent_years_threshold,omitempty"`   // Years back a role counts as recent

	// Chunking thresholds
	SingleChunkMaxRoles int `json:"single_chunk_max_roles,omitempty"` // At or below this role count (and under SingleChunkMaxKB) the profile stays unchunked
	SingleChunkMaxKB    int `json:"single_chunk_max_kb,omitempty"`
	DualChunkMaxRoles   int `json:"dual_chunk_max_roles,omitempty"`
	TripleChunkMaxRoles int `json:"triple_chunk_max_roles,omitempty"`

	// Session lifecycle
	SessionTTLHours      int `json:"session_ttl_hours,omitempty"`
	SweepIntervalMinutes int `json:"sweep_interval_minutes,omitempty"`
	MaxExtensionHours    int `json:"max_extension_hours,omitempty"` // Cap per extend call, enforced by the pipeline facade

	// Batched retrieval protocol
	RoleBatchSize   int `json:"role_batch_size,omitempty"`
	MaxIterations   int `json:"max_iterations,omitempty"`
	CallTimeoutSecs int `json:"call_timeout_secs,omitempty"`

	// Storage
	MetricsPath string `json:"metrics_path,omitempty"` // JSONL quality metrics log
	DatabaseURL string `json:"database_url,omitempty"` // Optional PostgreSQL session store

	// Behavior
	APIKey  string `json:"api_key,omitempty"`
	Verbose bool   `json:"verbose,omitempty"`
}

// Default returns the production defaults for every threshold
func Default() *Config {
	return &Config{
		MinBulletsRecentRoles: 5,
		MinBulletsOlderRoles:  3,
		MaxBulletsPerRole:     12,
		RecentYearsThreshold:  3,

		SingleChunkMaxRoles: 3,
		SingleChunkMaxKB:    20,
		DualChunkMaxRoles:   6,
		TripleChunkMaxRoles: 10,

		SessionTTLHours:      24,
		SweepIntervalMinutes: 60,
		MaxExtensionHours:    168,

		RoleBatchSize:   5,
		MaxIterations:   10,
		CallTimeoutSecs: 120,

		MetricsPath: "/tmp/cv_quality_metrics.jsonl",
	}
}

// Load reads configuration from a JSON file and fills missing values with defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

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

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	cfg.ApplyDefaults()
	return &cfg, nil
}

// ApplyDefaults fills zero-valued fields with production defaults
func (c *Config) ApplyDefaults() {
	d := Default()
	if c.MinBulletsRecentRoles == 0 {
		c.MinBulletsRecentRoles = d.MinBulletsRecentRoles
	}
	if c.MinBulletsOlderRoles == 0 {
		c.MinBulletsOlderRoles = d.MinBulletsOlderRoles
	}
	if c.MaxBulletsPerRole == 0 {
		c.MaxBulletsPerRole = d.MaxBulletsPerRole
	}
	if c.RecentYearsThreshold == 0 {
		c.RecentYearsThreshold = d.RecentYearsThreshold
	}
	if c.SingleChunkMaxRoles == 0 {
		c.SingleChunkMaxRoles = d.SingleChunkMaxRoles
	}
	if c.SingleChunkMaxKB == 0 {
		c.SingleChunkMaxKB = d.SingleChunkMaxKB
	}
	if c.DualChunkMaxRoles == 0 {
		c.DualChunkMaxRoles = d.DualChunkMaxRoles
	}
	if c.TripleChunkMaxRoles == 0 {
		c.TripleChunkMaxRoles = d.TripleChunkMaxRoles
	}
	if c.SessionTTLHours == 0 {
		c.SessionTTLHours = d.SessionTTLHours
	}
	if c.SweepIntervalMinutes == 0 {
		c.SweepIntervalMinutes = d.SweepIntervalMinutes
	}
	if c.MaxExtensionHours == 0 {
		c.MaxExtensionHours = d.MaxExtensionHours
	}
	if c.RoleBatchSize == 0 {
		c.RoleBatchSize = d.RoleBatchSize
	}
	if c.MaxIterations == 0 {
		c.MaxIterations = d.MaxIterations
	}
	if c.CallTimeoutSecs == 0 {
		c.CallTimeoutSecs = d.CallTimeoutSecs
	}
	if c.MetricsPath == "" {
		c.MetricsPath = d.MetricsPath
	}
}

// Validate checks that the configuration has coherent values
func (c *Config) Validate() error {
	if c.MinBulletsRecentRoles < c.MinBulletsOlderRoles {
		return fmt.Errorf("config error: 'min_bullets_recent_roles' must be >= 'min_bullets_older_roles'")
	}
	if c.MaxBulletsPerRole < c.MinBulletsRecentRoles {
		return fmt.Errorf("config error: 'max_bullets_per_role' must be >= 'min_bullets_recent_roles'")
	}
	if c.SingleChunkMaxRoles >= c.DualChunkMaxRoles || c.DualChunkMaxRoles >= c.TripleChunkMaxRoles {
		return fmt.Errorf("config error: chunking thresholds must be strictly increasing")
	}
	if c.RoleBatchSize <= 0 {
		return fmt.Errorf("config error: 'role_batch_size' must be positive")
	}
	if c.MaxIterations <= 0 {
		return fmt.Errorf("config error: 'max_iterations' must be positive")
	}
	if c.SessionTTLHours <= 0 {
		return fmt.Errorf("config error: 'session_ttl_hours' must be positive")
	}
	return nil
}

// SessionTTL returns the session time-to-live as a duration
func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLHours) * time.Hour
}

// SweepInterval returns the background sweep cadence as a duration
func (c *Config) SweepInterval() time.Duration {
	return time.Duration(c.SweepIntervalMinutes) * time.Minute
}

// CallTimeout returns the per-backend-call timeout as a duration
func (c *Config) CallTimeout() time.Duration {
	return time.Duration(c.CallTimeoutSecs) * time.Second
}
