package repair

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/cv-pipeline/internal/config"
	"github.com/jonathan/cv-pipeline/internal/types"
	"github.com/jonathan/cv-pipeline/internal/validation"
)

// thisYear keeps recency-sensitive fixtures valid no matter when the suite
// runs; the validator reads the real clock.
var thisYear = time.Now().Year()

func newTestCorrector(t *testing.T) *Corrector {
	t.Helper()
	return NewCorrector(config.Default(), nil)
}

func newTestValidator(t *testing.T) *validation.Validator {
	t.Helper()
	return validation.NewValidator(config.Default(), nil)
}

func profileRole(company string, startYear int, descriptions int) types.Role {
	desc := make([]string, descriptions)
	for i := range desc {
		desc[i] = fmt.Sprintf("%s achievement %d with measurable impact", company, i)
	}
	return types.Role{
		Company:     company,
		Title:       "Engineer",
		StartDate:   fmt.Sprintf("%d", startYear),
		EndDate:     "Present",
		Description: desc,
	}
}

func cvRole(company string, startYear int, bulletCount int) types.CVRole {
	b := make(types.BulletList, bulletCount)
	for i := range b {
		b[i] = fmt.Sprintf("%s achievement %d with measurable impact", company, i)
	}
	return types.CVRole{
		Company:   company,
		Title:     "Engineer",
		StartDate: fmt.Sprintf("%d", startYear),
		EndDate:   "Present",
		Bullets:   b,
	}
}

func resultWithRoles(roles ...types.CVRole) *types.GeneratedResult {
	r := &types.GeneratedResult{}
	r.SetRoles(roles)
	return r
}

func TestCorrect_AddsMissingRoles(t *testing.T) {
	c := newTestCorrector(t)

	profile := &types.Profile{WorkExperience: []types.Role{
		profileRole("Acme", thisYear-1, 6),
		profileRole("Globex", thisYear-6, 4),
	}}
	result := resultWithRoles(cvRole("Acme", thisYear-1, 5))

	corrected, modified := c.Correct(result, profile, nil)
	require.True(t, modified)

	roles := corrected.Roles()
	require.Len(t, roles, 2)
	assert.Equal(t, "Globex", roles[1].Company)
	assert.Equal(t, "Engineer", roles[1].Title)
	assert.Equal(t, fmt.Sprintf("%d", thisYear-6), roles[1].StartDate)
	assert.Len(t, roles[1].Bullets, 3, "basic entries carry at most three profile bullets")
}

func TestCorrect_MissingRoleDefaultsEndDate(t *testing.T) {
	c := newTestCorrector(t)

	role := profileRole("Globex", thisYear-6, 2)
	role.EndDate = ""
	profile := &types.Profile{WorkExperience: []types.Role{role}}

	corrected, modified := c.Correct(resultWithRoles(), profile, nil)
	require.True(t, modified)
	require.Len(t, corrected.Roles(), 1)
	assert.Equal(t, "Present", corrected.Roles()[0].EndDate)
}

func TestCorrect_NormalizedCompanyMatchSkipsAdd(t *testing.T) {
	c := newTestCorrector(t)

	profile := &types.Profile{WorkExperience: []types.Role{profileRole("Acme Ltd.", thisYear-1, 6)}}
	result := resultWithRoles(cvRole("ACME", thisYear-1, 5))

	corrected, _ := c.Correct(result, profile, nil)
	assert.Len(t, corrected.Roles(), 1)
}

func TestCorrect_TopsUpRecentRoleBullets(t *testing.T) {
	c := newTestCorrector(t)

	profile := &types.Profile{WorkExperience: []types.Role{profileRole("Acme", thisYear-1, 8)}}
	result := resultWithRoles(cvRole("Acme", thisYear-1, 2))

	corrected, modified := c.Correct(result, profile, nil)
	require.True(t, modified)

	roles := corrected.Roles()
	require.Len(t, roles, 1)
	assert.Len(t, roles[0].Bullets, 5, "recent roles are topped up to the recent minimum")

	seen := map[string]bool{}
	for _, b := range roles[0].Bullets {
		assert.False(t, seen[b], "top-up must not duplicate bullets")
		seen[b] = true
	}
}

func TestCorrect_OlderRoleUsesLowerThreshold(t *testing.T) {
	c := newTestCorrector(t)

	profile := &types.Profile{WorkExperience: []types.Role{profileRole("Globex", thisYear-11, 8)}}
	result := resultWithRoles(cvRole("Globex", thisYear-11, 1))

	corrected, _ := c.Correct(result, profile, nil)
	assert.Len(t, corrected.Roles()[0].Bullets, 3)
}

func TestCorrect_TopUpStopsWhenProfileExhausted(t *testing.T) {
	c := newTestCorrector(t)

	profile := &types.Profile{WorkExperience: []types.Role{profileRole("Acme", thisYear-1, 3)}}
	result := resultWithRoles(cvRole("Acme", thisYear-1, 1))

	corrected, modified := c.Correct(result, profile, nil)
	require.True(t, modified)
	assert.Len(t, corrected.Roles()[0].Bullets, 3, "cannot exceed what the profile provides")
}

func TestCorrect_RestoresReverseChronologicalOrder(t *testing.T) {
	c := newTestCorrector(t)

	profile := &types.Profile{WorkExperience: []types.Role{
		profileRole("Newest", thisYear-1, 6),
		profileRole("Middle", thisYear-6, 6),
		profileRole("Oldest", thisYear-11, 6),
	}}
	result := resultWithRoles(
		cvRole("Oldest", thisYear-11, 5),
		cvRole("Newest", thisYear-1, 5),
		cvRole("Middle", thisYear-6, 5),
	)

	corrected, modified := c.Correct(result, profile, nil)
	require.True(t, modified)

	var companies []string
	for _, r := range corrected.Roles() {
		companies = append(companies, r.Company)
	}
	assert.Equal(t, []string{"Newest", "Middle", "Oldest"}, companies)
}

func TestCorrect_UnparsableDateSortsFirst(t *testing.T) {
	c := newTestCorrector(t)

	unknown := cvRole("Mystery", thisYear-6, 5)
	unknown.StartDate = "unknown"

	result := resultWithRoles(cvRole("Acme", thisYear-1, 5), unknown)
	corrected, _ := c.Correct(result, &types.Profile{}, nil)

	assert.Equal(t, "Mystery", corrected.Roles()[0].Company)
}

func TestCorrect_CleanResultUntouched(t *testing.T) {
	c := newTestCorrector(t)

	profile := &types.Profile{WorkExperience: []types.Role{
		profileRole("Acme", thisYear-1, 6),
		profileRole("Globex", thisYear-6, 6),
	}}
	result := resultWithRoles(cvRole("Acme", thisYear-1, 5), cvRole("Globex", thisYear-6, 4))

	corrected, modified := c.Correct(result, profile, nil)
	assert.False(t, modified)
	assert.Equal(t, result.Roles(), corrected.Roles())
}

func TestCorrect_PassedReportShortCircuits(t *testing.T) {
	c := newTestCorrector(t)

	report := types.NewQualityReport()
	profile := &types.Profile{WorkExperience: []types.Role{profileRole("Globex", thisYear-6, 6)}}

	_, modified := c.Correct(resultWithRoles(), profile, report)
	assert.False(t, modified)
}

func TestCorrect_DoesNotMutateInput(t *testing.T) {
	c := newTestCorrector(t)

	profile := &types.Profile{WorkExperience: []types.Role{
		profileRole("Acme", thisYear-1, 8),
		profileRole("Globex", thisYear-6, 6),
	}}
	result := resultWithRoles(cvRole("Acme", thisYear-1, 2))

	_, modified := c.Correct(result, profile, nil)
	require.True(t, modified)

	assert.Len(t, result.Roles(), 1, "input result must not gain roles")
	assert.Len(t, result.Roles()[0].Bullets, 2, "input bullets must not grow")
}

func TestCorrect_Idempotent(t *testing.T) {
	c := newTestCorrector(t)

	profile := &types.Profile{WorkExperience: []types.Role{
		profileRole("Acme", thisYear-1, 8),
		profileRole("Globex", thisYear-6, 6),
		profileRole("Initech", thisYear-10, 4),
	}}
	result := resultWithRoles(cvRole("Globex", thisYear-6, 1))

	once, modified := c.Correct(result, profile, nil)
	require.True(t, modified)

	twice, modifiedAgain := c.Correct(once, profile, nil)
	assert.False(t, modifiedAgain, "a corrected result needs no further correction")
	assert.Equal(t, once.Roles(), twice.Roles())
}

// Failing validation, correction, and re-validation form a closed loop: the
// corrector repairs exactly the structural defects the validator reports.
func TestCorrect_ValidateCorrectRevalidate(t *testing.T) {
	c := newTestCorrector(t)
	v := newTestValidator(t)

	profile := &types.Profile{WorkExperience: []types.Role{
		profileRole("Acme Ltd", thisYear, 8),
		profileRole("Globex", thisYear-2, 8),
		profileRole("Initech", thisYear-5, 6),
		profileRole("Umbrella", thisYear-8, 5),
		profileRole("Hooli", thisYear-11, 5),
	}}

	// Acme Ltd is missing entirely, and the most recent surviving role is
	// two bullets short of the recent-role minimum.
	result := resultWithRoles(
		cvRole("Globex", thisYear-2, 3),
		cvRole("Initech", thisYear-5, 4),
		cvRole("Umbrella", thisYear-8, 3),
		cvRole("Hooli", thisYear-11, 3),
	)

	report := v.Validate(result, profile, "")
	require.False(t, report.Passed)

	corrected, modified := c.Correct(result, profile, report)
	require.True(t, modified)
	require.Len(t, corrected.Roles(), 5)
	assert.Equal(t, "Acme Ltd", corrected.Roles()[0].Company, "restored role sorts to the top")

	after := v.Validate(corrected, profile, "")
	assert.True(t, after.Passed, "errors: %v", after.Errors)
}
