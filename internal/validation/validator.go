// Package validation checks generated results against the source profile:
// role completeness, bullet distribution, chronology, content quality, and
// profile-size metrics. Validation is pure; it never calls the backend and
// never mutates its inputs.
package validation

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/jonathan/cv-pipeline/internal/config"
	"github.com/jonathan/cv-pipeline/internal/types"
)

// Placeholder tokens that must never survive into a final document.
var placeholderTokens = []string{
	"{{CANDIDATE_NAME}}",
	"{{CANDIDATE_EMAIL}}",
	"{{CANDIDATE_LOCATION_FROM_PROFILE}}",
	"{{CONTACT_INFO}}",
}

// Profile size categories
const (
	SizeSmall     = "small"
	SizeMedium    = "medium"
	SizeLarge     = "large"
	SizeVeryLarge = "very_large"
)

// Validator applies quality rules to generated results. Thresholds come from
// configuration; they are hand-tuned defaults, not load-bearing rules.
type Validator struct {
	minBulletsRecent int
	minBulletsOlder  int
	maxBullets       int
	recentYears      int
	logger           *zap.Logger

	now func() time.Time
}

// NewValidator creates a Validator with thresholds from cfg.
func NewValidator(cfg *config.Config, logger *zap.Logger) *Validator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Validator{
		minBulletsRecent: cfg.MinBulletsRecentRoles,
		minBulletsOlder:  cfg.MinBulletsOlderRoles,
		maxBullets:       cfg.MaxBulletsPerRole,
		recentYears:      cfg.RecentYearsThreshold,
		logger:           logger,
		now:              time.Now,
	}
}

// MinBullets returns the bullet threshold for a role given its start date.
func (v *Validator) MinBullets(startDate string) int {
	if IsRecentRole(startDate, v.now().Year(), v.recentYears) {
		return v.minBulletsRecent
	}
	return v.minBulletsOlder
}

// Validate runs every check and returns the combined report. passed is false
// iff at least one error was recorded; warnings never affect it.
func (v *Validator) Validate(result *types.GeneratedResult, profile *types.Profile, targetContext string) *types.QualityReport {
	report := types.NewQualityReport()

	cvRoles := result.Roles()
	profileRoles := profile.WorkExperience

	v.checkRoleCompleteness(cvRoles, profileRoles, report)
	v.checkBulletDistribution(cvRoles, report)
	v.checkChronology(cvRoles, report)
	v.checkContentQuality(result, cvRoles, report)
	v.addProfileMetrics(profileRoles, cvRoles, profile, result, report)

	if !report.Passed {
		report.AddRecommendation("Run auto-correction to repair structural issues before delivery")
	}

	v.logger.Info("quality report",
		zap.Bool("passed", report.Passed),
		zap.Int("errors", len(report.Errors)),
		zap.Int("warnings", len(report.Warnings)))
	return report
}

// checkRoleCompleteness compares result roles against profile roles by
// normalized company name. A shortfall is an error naming the missing
// companies; a surplus is only a warning, additive content is not
// structurally wrong.
func (v *Validator) checkRoleCompleteness(cvRoles []types.CVRole, profileRoles []types.Role, report *types.QualityReport) {
	expected := len(profileRoles)
	actual := len(cvRoles)

	report.AddMetric("expected_role_count", expected)
	report.AddMetric("actual_role_count", actual)
	completeness := 100.0
	if expected > 0 {
		completeness = math.Round(float64(actual)/float64(expected)*1000) / 10
	}
	report.AddMetric("role_completeness_pct", completeness)

	switch {
	case actual < expected:
		included := make(map[string]bool, actual)
		for _, r := range cvRoles {
			included[NormalizeCompany(r.Company)] = true
		}
		var missing []string
		for _, r := range profileRoles {
			if !included[NormalizeCompany(r.Company)] {
				missing = append(missing, r.Company)
			}
		}

		report.AddError(fmt.Sprintf("Missing %d roles (%d/%d included): %v",
			expected-actual, actual, expected, missing))
		report.AddMetric("missing_companies", missing)
	case actual > expected:
		report.AddWarning(fmt.Sprintf("Result has more roles than profile (%d vs %d)", actual, expected))
	}
}

// checkBulletDistribution enforces per-role bullet minimums weighted by
// recency. A shortfall on one of the first three roles is an error; top
// roles matter most. Elsewhere it is a warning, as is verbosity past the
// maximum.
func (v *Validator) checkBulletDistribution(cvRoles []types.CVRole, report *types.QualityReport) {
	if len(cvRoles) == 0 {
		report.AddError("No roles found in result")
		return
	}

	insufficient := 0
	totalBullets := 0

	for i, role := range cvRoles {
		count := len(role.Bullets)
		totalBullets += count

		minExpected := v.MinBullets(role.StartDate)

		switch {
		case count < minExpected:
			insufficient++
			msg := fmt.Sprintf("Role '%s' has only %d bullets (expected >=%d)", role.Company, count, minExpected)
			if i < 3 {
				report.AddError(msg)
			} else {
				report.AddWarning(msg)
			}
		case count > v.maxBullets:
			report.AddWarning(fmt.Sprintf("Role '%s' has %d bullets (max recommended: %d)", role.Company, count, v.maxBullets))
		}
	}

	report.AddMetric("total_bullets", totalBullets)
	report.AddMetric("avg_bullets_per_role", math.Round(float64(totalBullets)/float64(len(cvRoles))*10)/10)
	if insufficient > 0 {
		report.AddMetric("roles_with_insufficient_bullets", insufficient)
	}
}

// checkChronology warns when roles are not in non-increasing start-date
// order. Ordering problems are repairable, so this never fails the report.
func (v *Validator) checkChronology(cvRoles []types.CVRole, report *types.QualityReport) {
	for i := 0; i+1 < len(cvRoles); i++ {
		curYear, curMonth := DateSortKey(cvRoles[i].StartDate)
		nextYear, nextMonth := DateSortKey(cvRoles[i+1].StartDate)

		if curYear < nextYear || (curYear == nextYear && curMonth < nextMonth) {
			report.AddWarning(fmt.Sprintf("Roles not in reverse chronological order (position %d-%d)", i+1, i+2))
			return
		}
	}
}

// checkContentQuality flags unreplaced placeholder tokens and per-role
// duplicate bullets.
func (v *Validator) checkContentQuality(result *types.GeneratedResult, cvRoles []types.CVRole, report *types.QualityReport) {
	serialized, err := json.Marshal(result)
	if err == nil {
		text := string(serialized)
		var found []string
		for _, token := range placeholderTokens {
			if strings.Contains(text, token) {
				found = append(found, token)
			}
		}
		if len(found) > 0 {
			report.AddWarning(fmt.Sprintf("Found unreplaced placeholders: %v", found))
		}
	}

	for _, role := range cvRoles {
		seen := make(map[string]bool, len(role.Bullets))
		duplicates := 0
		for _, bullet := range role.Bullets {
			if seen[bullet] {
				duplicates++
			}
			seen[bullet] = true
		}
		if duplicates > 0 {
			report.AddWarning(fmt.Sprintf("Role '%s' has %d duplicate bullets", role.Company, duplicates))
		}
	}
}

// addProfileMetrics records size context and the bullet compression ratio.
// Both extremes are warnings: under 30% the result is losing too much, over
// 90% nothing was actually summarized.
func (v *Validator) addProfileMetrics(profileRoles []types.Role, cvRoles []types.CVRole, profile *types.Profile, result *types.GeneratedResult, report *types.QualityReport) {
	report.AddMetric("profile_size", CategorizeProfileSize(len(profileRoles)))

	profileBullets := profile.BulletCount()
	cvBullets := result.BulletCount()

	if profileBullets > 0 {
		ratio := math.Round(float64(cvBullets)/float64(profileBullets)*1000) / 10
		report.AddMetric("bullet_compression_pct", ratio)

		if ratio < 30 {
			report.AddWarning(fmt.Sprintf("High compression: only %.1f%% of original bullets retained", ratio))
		} else if ratio > 90 {
			report.AddWarning(fmt.Sprintf("Low compression: %.1f%% of original bullets retained (may be too verbose)", ratio))
		}
	}
}

// CategorizeProfileSize buckets a profile by role count.
func CategorizeProfileSize(roleCount int) string {
	switch {
	case roleCount <= 3:
		return SizeSmall
	case roleCount <= 8:
		return SizeMedium
	case roleCount <= 15:
		return SizeLarge
	default:
		return SizeVeryLarge
	}
}

