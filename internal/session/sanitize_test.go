package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/cv-pipeline/internal/types"
)

func TestSanitize_ReplacesContactFields(t *testing.T) {
	profile := &types.Profile{
		Name:     "Jane Smith",
		Email:    "jane@example.com",
		Phone:    "555-0100",
		Location: "London",
		WorkExperience: []types.Role{
			{Company: "Acme", Title: "Engineer"},
		},
	}

	sanitized := Sanitize(profile)

	assert.Equal(t, PlaceholderName, sanitized.Name)
	assert.Equal(t, PlaceholderEmail, sanitized.Email)
	assert.Empty(t, sanitized.Phone)
	assert.Equal(t, "Acme", sanitized.WorkExperience[0].Company)

	// Original is untouched
	assert.Equal(t, "Jane Smith", profile.Name)
	assert.Equal(t, "555-0100", profile.Phone)
}

func TestFingerprint_Stable(t *testing.T) {
	profile := &types.Profile{Name: "Jane Smith", Summary: "Engineer"}

	h1, err := Fingerprint(profile)
	require.NoError(t, err)
	h2, err := Fingerprint(profile)
	require.NoError(t, err)

	assert.Equal(t, h1, h2)
	assert.Len(t, h1, 64)
}

func TestFingerprint_ChangesWithContent(t *testing.T) {
	h1, err := Fingerprint(&types.Profile{Summary: "Engineer"})
	require.NoError(t, err)
	h2, err := Fingerprint(&types.Profile{Summary: "Manager"})
	require.NoError(t, err)

	assert.NotEqual(t, h1, h2)
}
