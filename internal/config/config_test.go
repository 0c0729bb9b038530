package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, 5, cfg.MinBulletsRecentRoles)
	assert.Equal(t, 3, cfg.MinBulletsOlderRoles)
	assert.Equal(t, 12, cfg.MaxBulletsPerRole)
	assert.Equal(t, 5, cfg.RoleBatchSize)
	assert.Equal(t, 10, cfg.MaxIterations)
	assert.Equal(t, 24*time.Hour, cfg.SessionTTL())
	assert.Equal(t, time.Hour, cfg.SweepInterval())
	require.NoError(t, cfg.Validate())
}

func TestLoad_FillsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	content := `{"min_bullets_recent_roles": 6, "metrics_path": "/var/log/quality.jsonl"}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 6, cfg.MinBulletsRecentRoles)
	assert.Equal(t, "/var/log/quality.jsonl", cfg.MetricsPath)
	// Unset fields take defaults
	assert.Equal(t, 3, cfg.MinBulletsOlderRoles)
	assert.Equal(t, 10, cfg.MaxIterations)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestLoad_InvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))
	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"recent below older", func(c *Config) { c.MinBulletsRecentRoles = 2 }},
		{"max below recent", func(c *Config) { c.MaxBulletsPerRole = 4 }},
		{"non increasing chunk thresholds", func(c *Config) { c.DualChunkMaxRoles = 3 }},
		{"zero batch size", func(c *Config) { c.RoleBatchSize = -1 }},
		{"zero iterations", func(c *Config) { c.MaxIterations = -1 }},
		{"zero ttl", func(c *Config) { c.SessionTTLHours = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
