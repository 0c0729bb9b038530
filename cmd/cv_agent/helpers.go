package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/jonathan/cv-pipeline/internal/config"
	"github.com/jonathan/cv-pipeline/internal/db"
	"github.com/jonathan/cv-pipeline/internal/llm"
	"github.com/jonathan/cv-pipeline/internal/metrics"
	"github.com/jonathan/cv-pipeline/internal/session"
	"github.com/jonathan/cv-pipeline/internal/types"
)

// loadConfigFile loads a config file or falls back to defaults
func loadConfigFile(path string) (*config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// buildLogger creates a zap logger for the selected verbosity
func buildLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// resolveAPIKey returns the flag value or the GEMINI_API_KEY env var
func resolveAPIKey(flag string) (string, error) {
	if flag != "" {
		return flag, nil
	}
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		return key, nil
	}
	return "", fmt.Errorf("no API key: pass --api-key or set GEMINI_API_KEY")
}

// resolveDatabaseURL returns the flag value or the DATABASE_URL env var;
// empty means no persistence
func resolveDatabaseURL(flag string) string {
	if flag != "" {
		return flag
	}
	return os.Getenv("DATABASE_URL")
}

// readProfileFile loads a profile JSON document
func readProfileFile(path string) (*types.Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read profile file: %w", err)
	}
	var profile types.Profile
	if err := json.Unmarshal(data, &profile); err != nil {
		return nil, fmt.Errorf("failed to parse profile JSON: %w", err)
	}
	return &profile, nil
}

// readResultFile loads a generated result JSON document
func readResultFile(path string) (*types.GeneratedResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read result file: %w", err)
	}
	var result types.GeneratedResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("failed to parse result JSON: %w", err)
	}
	return &result, nil
}

// readTargetContext loads the job description from a file or inline flag
func readTargetContext(path, inline string) (string, error) {
	if path != "" && inline != "" {
		return "", fmt.Errorf("--job and --job-text are mutually exclusive; provide only one")
	}
	if inline != "" {
		return inline, nil
	}
	if path == "" {
		return "", fmt.Errorf("either --job or --job-text must be provided")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read job description: %w", err)
	}
	return string(data), nil
}

// newBackendClient builds the Gemini client from config and the API key
func newBackendClient(ctx context.Context, cfg *config.Config, apiKeyFlag string) (llm.Client, error) {
	apiKey, err := resolveAPIKey(apiKeyFlag)
	if err != nil {
		return nil, err
	}
	llmCfg := llm.DefaultGeminiConfig().WithTimeout(cfg.CallTimeout())
	return llm.NewClient(ctx, llmCfg, apiKey)
}

// newSessionManager builds a session manager over a Postgres store when a
// database URL is configured, otherwise over the in-memory store. The
// returned cleanup closes the database connection if one was opened.
func newSessionManager(ctx context.Context, cfg *config.Config, dbURL string, backend session.ContextBackend, logger *zap.Logger) (*session.Manager, *db.DB, func(), error) {
	var store session.Store = session.NewMemoryStore()
	var database *db.DB
	cleanup := func() {}

	if dbURL != "" {
		var err error
		database, err = db.Connect(ctx, dbURL)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		if err := database.Migrate(ctx); err != nil {
			database.Close()
			return nil, nil, nil, err
		}
		store = db.NewSessionStore(database)
		cleanup = database.Close
	}

	mgr := session.NewManager(backend, store, cfg.SessionTTL(), cfg.SweepInterval(), logger)
	return mgr, database, cleanup, nil
}

// newTracker builds the metrics tracker at the configured path
func newTracker(cfg *config.Config, logger *zap.Logger) (*metrics.Tracker, error) {
	return metrics.NewTracker(cfg.MetricsPath, logger)
}

// writeJSON writes v as indented JSON to path, or to stdout when path is empty
func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	if path == "" {
		fmt.Println(string(data))
		return nil
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
