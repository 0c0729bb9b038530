package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBulletList_UnmarshalStrings(t *testing.T) {
	var role CVRole
	data := `{"company": "Acme", "bullets": ["Led migration", "Cut costs 20%"]}`
	err := json.Unmarshal([]byte(data), &role)
	require.NoError(t, err)
	assert.Equal(t, BulletList{"Led migration", "Cut costs 20%"}, role.Bullets)
}

func TestBulletList_UnmarshalObjects(t *testing.T) {
	var role CVRole
	data := `{"company": "Acme", "bullets": [{"content": "Led migration", "priority": 1}, {"content": ""}, {"content": "Cut costs 20%"}]}`
	err := json.Unmarshal([]byte(data), &role)
	require.NoError(t, err)
	// Empty content entries are dropped during normalization
	assert.Equal(t, BulletList{"Led migration", "Cut costs 20%"}, role.Bullets)
}

func TestBulletList_UnmarshalInvalid(t *testing.T) {
	var bullets BulletList
	err := json.Unmarshal([]byte(`{"not": "an array"}`), &bullets)
	assert.Error(t, err)
}

func TestGeneratedResult_Roles_NilReceiver(t *testing.T) {
	var result *GeneratedResult
	assert.Nil(t, result.Roles())
}

func TestGeneratedResult_BulletCount(t *testing.T) {
	result := &GeneratedResult{}
	result.SetRoles([]CVRole{
		{Company: "Acme", Bullets: BulletList{"a", "b"}},
		{Company: "Globex", Bullets: BulletList{"c"}},
	})
	assert.Equal(t, 3, result.BulletCount())
}

func TestQualityReport_ErrorsFlipPassed(t *testing.T) {
	report := NewQualityReport()
	assert.True(t, report.Passed)

	report.AddWarning("minor issue")
	assert.True(t, report.Passed, "warnings must not affect passed")

	report.AddError("missing role")
	assert.False(t, report.Passed)
	assert.Len(t, report.Errors, 1)
	assert.Len(t, report.Warnings, 1)
}

func TestQualityReport_MetricFloat(t *testing.T) {
	report := NewQualityReport()
	report.AddMetric("role_completeness_pct", 80.0)
	report.AddMetric("expected_role_count", 5)
	report.AddMetric("profile_size", "medium")

	v, ok := report.MetricFloat("role_completeness_pct")
	require.True(t, ok)
	assert.InDelta(t, 80.0, v, 0.001)

	v, ok = report.MetricFloat("expected_role_count")
	require.True(t, ok)
	assert.InDelta(t, 5.0, v, 0.001)

	_, ok = report.MetricFloat("profile_size")
	assert.False(t, ok)

	_, ok = report.MetricFloat("absent")
	assert.False(t, ok)
}
