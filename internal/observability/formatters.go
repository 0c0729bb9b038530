// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jonathan/cv-pipeline/internal/metrics"
	"github.com/jonathan/cv-pipeline/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		// Truncate long lines
		if len(line) > boxWidth-4 {
			line = line[:boxWidth-7] + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintAnalysis outputs the payload analysis and the chunk plan derived from it.
func (p *Printer) PrintAnalysis(analysis types.PayloadAnalysis, plan types.ChunkPlan) {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Size:       %d KB\n", analysis.SizeKB))
	sb.WriteString(fmt.Sprintf("Roles:      %d\n", analysis.RoleCount))
	sb.WriteString(fmt.Sprintf("Career:     %d years\n", analysis.CareerYears))
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("Strategy:   %s (%d chunks)\n", plan.Strategy, plan.ChunkCount))

	for i, r := range plan.RoleRanges {
		sb.WriteString(fmt.Sprintf("  chunk %d: roles %d..%d\n", i, r.Start, r.End-1))
	}

	p.printBox("PAYLOAD ANALYSIS", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintQualityReport outputs a human-readable summary of a quality report.
func (p *Printer) PrintQualityReport(report *types.QualityReport) {
	if report == nil {
		return
	}

	var sb strings.Builder
	if report.Passed {
		sb.WriteString("✅ PASSED\n")
	} else {
		sb.WriteString("❌ FAILED\n")
	}
	sb.WriteString("\n")

	if len(report.Errors) > 0 {
		sb.WriteString("Errors:\n")
		count := min(len(report.Errors), maxItemsToShow)
		for i := 0; i < count; i++ {
			sb.WriteString(fmt.Sprintf("  ⚠ %s\n", report.Errors[i]))
		}
		if len(report.Errors) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(report.Errors)-maxItemsToShow))
		}
		sb.WriteString("\n")
	}

	if len(report.Warnings) > 0 {
		sb.WriteString("Warnings:\n")
		count := min(len(report.Warnings), maxItemsToShow)
		for i := 0; i < count; i++ {
			sb.WriteString(fmt.Sprintf("  • %s\n", report.Warnings[i]))
		}
		if len(report.Warnings) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(report.Warnings)-maxItemsToShow))
		}
		sb.WriteString("\n")
	}

	if completeness, ok := report.MetricFloat("role_completeness_pct"); ok {
		sb.WriteString(fmt.Sprintf("Completeness: %.1f%%\n", completeness))
	}
	if compression, ok := report.MetricFloat("bullet_compression_pct"); ok {
		sb.WriteString(fmt.Sprintf("Compression:  %.1f%%\n", compression))
	}

	for _, rec := range report.Recommendations {
		sb.WriteString(fmt.Sprintf("→ %s\n", rec))
	}

	p.printBox("QUALITY REPORT", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintSessions outputs a table of active sessions.
func (p *Printer) PrintSessions(sessions []types.Session) {
	if len(sessions) == 0 {
		p.printBox("ACTIVE SESSIONS", "none")
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d active:\n\n", len(sessions)))

	for i, s := range sessions {
		id := s.ID
		if len(id) > 12 {
			id = id[:12]
		}
		sb.WriteString(fmt.Sprintf("%s  requests=%d\n", id, s.RequestCount))
		sb.WriteString(fmt.Sprintf("  expires %s\n", s.ExpiresAt.Format(time.RFC3339)))
		if i < len(sessions)-1 {
			sb.WriteString("\n")
		}
	}

	p.printBox("ACTIVE SESSIONS", sb.String())
}

// PrintSummaryStats outputs aggregated generation metrics.
func (p *Printer) PrintSummaryStats(summary *metrics.Summary) {
	if summary == nil || !summary.HasData {
		p.printBox("GENERATION METRICS", "no data recorded yet")
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Generations:     %d\n", summary.TotalGenerations))
	sb.WriteString(fmt.Sprintf("Pass rate:       %.1f%%\n", summary.PassRatePct))
	sb.WriteString(fmt.Sprintf("Auto-corrected:  %.1f%%\n", summary.AutoCorrectionRatePct))
	sb.WriteString(fmt.Sprintf("Completeness:    %.1f%%\n", summary.AvgRoleCompleteness))
	sb.WriteString(fmt.Sprintf("Bullets/role:    %.1f\n", summary.AvgBulletsPerRole))
	sb.WriteString(fmt.Sprintf("Avg duration:    %.1fs\n", summary.AvgGenerationTimeS))

	if len(summary.ByProfileSize) > 0 {
		sb.WriteString("\nBy profile size:\n")
		for _, size := range []string{"small", "medium", "large", "very_large"} {
			bucket, ok := summary.ByProfileSize[size]
			if !ok {
				continue
			}
			sb.WriteString(fmt.Sprintf("  %-11s %d/%d passed (%.1f%%)\n",
				size, bucket.Passed, bucket.Total, bucket.PassRatePct))
		}
	}

	p.printBox("GENERATION METRICS", strings.TrimSuffix(sb.String(), "\n"))
}
