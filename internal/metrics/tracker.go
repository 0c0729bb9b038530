// Package metrics records generation outcomes to an append-only JSONL store
// for trend analysis. Appends are line-atomic via O_APPEND, so concurrent
// processes can share one file without cross-process locking.
package metrics

import (
	"bufio"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"math"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/jonathan/cv-pipeline/internal/types"
)

// Record is one logged generation event. Session IDs are stored as a small
// hash, never verbatim.
type Record struct {
	Timestamp        string         `json:"timestamp"`
	SessionIDHash    uint32         `json:"session_id_hash"`
	Model            string         `json:"model"`
	ProfileSize      string         `json:"profile_size"`
	GenerationTimeS  float64        `json:"generation_time_s"`
	WasAutoCorrected bool           `json:"was_auto_corrected"`
	Passed           bool           `json:"passed"`
	ErrorCount       int            `json:"error_count"`
	WarningCount     int            `json:"warning_count"`
	Metrics          map[string]any `json:"metrics"`
}

// SizePassRate is the pass-rate breakdown for one profile size category.
type SizePassRate struct {
	Total       int     `json:"total"`
	Passed      int     `json:"passed"`
	PassRatePct float64 `json:"pass_rate_pct"`
}

// Summary aggregates the most recent records. HasData is false when the
// store is empty; every other field is zero in that case.
type Summary struct {
	HasData               bool                    `json:"has_data"`
	TotalGenerations      int                     `json:"total_generations"`
	Passed                int                     `json:"passed"`
	Failed                int                     `json:"failed"`
	PassRatePct           float64                 `json:"pass_rate_pct"`
	AutoCorrectedCount    int                     `json:"auto_corrected_count"`
	AutoCorrectionRatePct float64                 `json:"auto_correction_rate_pct"`
	AvgRoleCompleteness   float64                 `json:"avg_role_completeness_pct"`
	AvgBulletsPerRole     float64                 `json:"avg_bullets_per_role"`
	AvgGenerationTimeS    float64                 `json:"avg_generation_time_s"`
	ByProfileSize         map[string]SizePassRate `json:"by_profile_size"`
	LastUpdated           string                  `json:"last_updated"`
}

// Tracker appends generation records to a JSONL file.
type Tracker struct {
	path   string
	logger *zap.Logger

	mu  sync.Mutex
	now func() time.Time
}

// NewTracker creates a Tracker writing to path, creating parent directories
// as needed.
func NewTracker(path string, logger *zap.Logger) (*Tracker, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create metrics directory: %w", err)
	}
	return &Tracker{path: path, logger: logger, now: time.Now}, nil
}

// HashSessionID reduces a session ID to a small anonymized bucket.
func HashSessionID(sessionID string) uint32 {
	h := fnv.New32a()
	h.Write([]byte(sessionID))
	return h.Sum32() % 10000
}

// LogGeneration appends one record for a completed generation.
func (t *Tracker) LogGeneration(sessionID string, report *types.QualityReport, durationSeconds float64, model, sizeCategory string, wasAutoCorrected bool) error {
	rec := Record{
		Timestamp:        t.now().UTC().Format(time.RFC3339),
		SessionIDHash:    HashSessionID(sessionID),
		Model:            model,
		ProfileSize:      sizeCategory,
		GenerationTimeS:  math.Round(durationSeconds*100) / 100,
		WasAutoCorrected: wasAutoCorrected,
		Metrics:          map[string]any{},
	}
	if report != nil {
		rec.Passed = report.Passed
		rec.ErrorCount = len(report.Errors)
		rec.WarningCount = len(report.Warnings)
		rec.Metrics = report.Metrics
	}

	line, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to encode metrics record: %w", err)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	f, err := os.OpenFile(t.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open metrics store: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("failed to append metrics record: %w", err)
	}

	t.logger.Debug("logged generation",
		zap.Bool("passed", rec.Passed),
		zap.String("profile_size", sizeCategory))
	return nil
}

// Recent returns up to limit of the most recent records, oldest first.
// A missing store is an empty result, not an error.
func (t *Tracker) Recent(limit int) ([]Record, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	f, err := os.Open(t.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read metrics store: %w", err)
	}
	defer f.Close()

	var records []Record
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		var rec Record
		if err := json.Unmarshal(scanner.Bytes(), &rec); err != nil {
			// A torn or hand-edited line should not poison the whole store.
			t.logger.Warn("skipping malformed metrics line", zap.Error(err))
			continue
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan metrics store: %w", err)
	}

	if limit > 0 && len(records) > limit {
		records = records[len(records)-limit:]
	}
	return records, nil
}

// SummaryStats aggregates the most recent limit records.
func (t *Tracker) SummaryStats(limit int) (*Summary, error) {
	records, err := t.Recent(limit)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return &Summary{HasData: false, ByProfileSize: map[string]SizePassRate{}}, nil
	}

	total := len(records)
	summary := &Summary{
		HasData:          true,
		TotalGenerations: total,
		ByProfileSize:    map[string]SizePassRate{},
		LastUpdated:      t.now().UTC().Format(time.RFC3339),
	}

	var completenessSum, bulletsSum, durationSum float64
	for _, rec := range records {
		if rec.Passed {
			summary.Passed++
		}
		if rec.WasAutoCorrected {
			summary.AutoCorrectedCount++
		}
		completenessSum += metricFloat(rec.Metrics, "role_completeness_pct")
		bulletsSum += metricFloat(rec.Metrics, "avg_bullets_per_role")
		durationSum += rec.GenerationTimeS

		size := rec.ProfileSize
		if size == "" {
			size = "unknown"
		}
		bucket := summary.ByProfileSize[size]
		bucket.Total++
		if rec.Passed {
			bucket.Passed++
		}
		summary.ByProfileSize[size] = bucket
	}

	summary.Failed = total - summary.Passed
	summary.PassRatePct = round1(float64(summary.Passed) / float64(total) * 100)
	summary.AutoCorrectionRatePct = round1(float64(summary.AutoCorrectedCount) / float64(total) * 100)
	summary.AvgRoleCompleteness = round1(completenessSum / float64(total))
	summary.AvgBulletsPerRole = round1(bulletsSum / float64(total))
	summary.AvgGenerationTimeS = round1(durationSum / float64(total))

	for size, bucket := range summary.ByProfileSize {
		bucket.PassRatePct = round1(float64(bucket.Passed) / float64(bucket.Total) * 100)
		summary.ByProfileSize[size] = bucket
	}
	return summary, nil
}

func metricFloat(metrics map[string]any, name string) float64 {
	switch n := metrics[name].(type) {
	case float64:
		return n
	case int:
		return float64(n)
	}
	return 0
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
