package observability

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/jonathan/cv-pipeline/internal/metrics"
	"github.com/jonathan/cv-pipeline/internal/types"
)

func TestPrintAnalysis(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintAnalysis(
		types.PayloadAnalysis{SizeKB: 14, RoleCount: 7, CareerYears: 12},
		types.ChunkPlan{Strategy: "triple_chunk", ChunkCount: 3, RoleRanges: []types.RoleRange{{Start: 0, End: 3}, {Start: 3, End: 5}, {Start: 5, End: 7}}},
	)

	out := buf.String()
	assert.Contains(t, out, "PAYLOAD ANALYSIS")
	assert.Contains(t, out, "triple_chunk")
	assert.Contains(t, out, "roles 0..2")
}

func TestPrintQualityReport_Failed(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	report := types.NewQualityReport()
	report.AddError("Missing roles: Globex")
	report.AddWarning("Role 'Acme' has 13 bullets")
	report.AddMetric("role_completeness_pct", 80.0)
	report.AddRecommendation("Run auto-correction")

	p.PrintQualityReport(report)

	out := buf.String()
	assert.Contains(t, out, "FAILED")
	assert.Contains(t, out, "Missing roles: Globex")
	assert.Contains(t, out, "80.0%")
	assert.Contains(t, out, "Run auto-correction")
}

func TestPrintQualityReport_NilIsNoop(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintQualityReport(nil)
	assert.Empty(t, buf.String())
}

func TestPrintSessions_Empty(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintSessions(nil)
	assert.Contains(t, buf.String(), "none")
}

func TestPrintSessions(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintSessions([]types.Session{{
		ID:           "0123456789abcdef",
		RequestCount: 3,
		ExpiresAt:    time.Date(2026, time.September, 1, 12, 0, 0, 0, time.UTC),
	}})

	out := buf.String()
	assert.Contains(t, out, "0123456789ab")
	assert.NotContains(t, out, "0123456789abcdef")
	assert.Contains(t, out, "requests=3")
}

func TestPrintSummaryStats_NoData(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintSummaryStats(&metrics.Summary{})
	assert.Contains(t, buf.String(), "no data recorded yet")
}

func TestPrintSummaryStats(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintSummaryStats(&metrics.Summary{
		HasData:          true,
		TotalGenerations: 4,
		PassRatePct:      75.0,
		ByProfileSize: map[string]metrics.SizePassRate{
			"small": {Total: 2, Passed: 2, PassRatePct: 100.0},
			"large": {Total: 2, Passed: 1, PassRatePct: 50.0},
		},
	})

	out := buf.String()
	assert.Contains(t, out, "75.0%")
	assert.Contains(t, out, "small")
	assert.Contains(t, out, "large")
}
