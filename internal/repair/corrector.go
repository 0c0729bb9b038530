// Package repair applies deterministic, profile-driven fixes to generated
// results that failed validation. It never calls the generation backend:
// every repair is a pure patch sourced from the original profile, so
// correction is synchronous, cheap, and idempotent.
package repair

import (
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/jonathan/cv-pipeline/internal/config"
	"github.com/jonathan/cv-pipeline/internal/types"
	"github.com/jonathan/cv-pipeline/internal/validation"
)

// Corrector repairs generated results against their source profile.
type Corrector struct {
	minBulletsRecent int
	minBulletsOlder  int
	recentYears      int
	logger           *zap.Logger

	now func() time.Time
}

// NewCorrector creates a Corrector sharing the validator's thresholds.
func NewCorrector(cfg *config.Config, logger *zap.Logger) *Corrector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Corrector{
		minBulletsRecent: cfg.MinBulletsRecentRoles,
		minBulletsOlder:  cfg.MinBulletsOlderRoles,
		recentYears:      cfg.RecentYearsThreshold,
		logger:           logger,
		now:              time.Now,
	}
}

// Correct applies three independent repairs in sequence, each only if
// needed: append minimally-populated entries for profile roles absent from
// the result, top up roles below their bullet minimum from the matching
// profile role, and restore reverse chronological order. Inputs are not
// mutated; the returned result is a copy. The second return value reports
// whether anything changed.
func (c *Corrector) Correct(result *types.GeneratedResult, profile *types.Profile, report *types.QualityReport) (*types.GeneratedResult, bool) {
	corrected := *result
	if report != nil && report.Passed {
		return &corrected, false
	}

	roles := append([]types.CVRole(nil), result.Roles()...)
	modified := false

	roles, added := c.addMissingRoles(roles, profile.WorkExperience)
	if added > 0 {
		modified = true
		c.logger.Info("added missing roles", zap.Int("count", added))
	}

	roles, topped := c.ensureMinimumBullets(roles, profile.WorkExperience)
	if topped > 0 {
		modified = true
		c.logger.Info("topped up bullet counts", zap.Int("roles", topped))
	}

	roles, sorted := c.sortChronologically(roles)
	if sorted {
		modified = true
		c.logger.Info("restored reverse chronological order")
	}

	corrected.SetRoles(roles)
	return &corrected, modified
}

// addMissingRoles appends a basic entry for every profile company absent
// from the result: title and dates copied verbatim, first three profile
// bullets as content.
func (c *Corrector) addMissingRoles(roles []types.CVRole, profileRoles []types.Role) ([]types.CVRole, int) {
	included := make(map[string]bool, len(roles))
	for _, r := range roles {
		included[validation.NormalizeCompany(r.Company)] = true
	}

	added := 0
	for _, pr := range profileRoles {
		key := validation.NormalizeCompany(pr.Company)
		if included[key] {
			continue
		}

		basic := types.CVRole{
			Company:   pr.Company,
			Title:     pr.Title,
			StartDate: pr.StartDate,
			EndDate:   pr.EndDate,
			Location:  pr.Location,
			Bullets:   firstN(pr.Description, 3),
		}
		if basic.EndDate == "" {
			basic.EndDate = "Present"
		}

		roles = append(roles, basic)
		included[key] = true
		added++
	}
	return roles, added
}

// ensureMinimumBullets tops up each undersized role with profile bullets not
// already present, stopping at the threshold or when the profile source is
// exhausted.
func (c *Corrector) ensureMinimumBullets(roles []types.CVRole, profileRoles []types.Role) ([]types.CVRole, int) {
	byCompany := make(map[string]types.Role, len(profileRoles))
	for _, pr := range profileRoles {
		byCompany[validation.NormalizeCompany(pr.Company)] = pr
	}

	currentYear := c.now().Year()
	topped := 0

	for i := range roles {
		min := c.minBulletsOlder
		if validation.IsRecentRole(roles[i].StartDate, currentYear, c.recentYears) {
			min = c.minBulletsRecent
		}
		if len(roles[i].Bullets) >= min {
			continue
		}

		source, ok := byCompany[validation.NormalizeCompany(roles[i].Company)]
		if !ok {
			continue
		}

		existing := make(map[string]bool, len(roles[i].Bullets))
		for _, b := range roles[i].Bullets {
			existing[b] = true
		}

		appended := false
		for _, b := range source.Description {
			if len(roles[i].Bullets) >= min {
				break
			}
			if b == "" || existing[b] {
				continue
			}
			roles[i].Bullets = append(roles[i].Bullets, b)
			existing[b] = true
			appended = true
		}
		if appended {
			topped++
		}
	}
	return roles, topped
}

// sortChronologically stable-sorts roles newest first. Ongoing and
// unparsable dates sort as maximal so current roles stay on top.
func (c *Corrector) sortChronologically(roles []types.CVRole) ([]types.CVRole, bool) {
	if len(roles) < 2 {
		return roles, false
	}

	before := make([]string, len(roles))
	for i, r := range roles {
		before[i] = r.Company
	}

	sort.SliceStable(roles, func(i, j int) bool {
		yi, mi := sortKey(roles[i].StartDate)
		yj, mj := sortKey(roles[j].StartDate)
		if yi != yj {
			return yi > yj
		}
		return mi > mj
	})

	for i, r := range roles {
		if r.Company != before[i] {
			return roles, true
		}
	}
	return roles, false
}

// sortKey treats unparsable dates as maximal, unlike the chronology check:
// when ordering for output, an unknown date must not bury a role at the
// bottom of the document.
func sortKey(dateStr string) (int, int) {
	year, month := validation.DateSortKey(dateStr)
	if year == 0 {
		return 9999, 12
	}
	return year, month
}

func firstN(items []string, n int) types.BulletList {
	if len(items) < n {
		n = len(items)
	}
	return types.BulletList(append([]string(nil), items[:n]...))
}
