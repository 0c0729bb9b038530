package session

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/jonathan/cv-pipeline/internal/types"
)

// Placeholder values substituted for personally identifying fields before a
// profile leaves the pipeline boundary.
const (
	PlaceholderName  = "Candidate Name"
	PlaceholderEmail = "candidate@email.com"
)

// Sanitize returns a copy of the profile with identifying contact fields
// replaced by placeholders. The work history itself is left intact; it is the
// content the backend needs.
func Sanitize(profile *types.Profile) *types.Profile {
	sanitized := *profile
	sanitized.Name = PlaceholderName
	sanitized.Email = PlaceholderEmail
	sanitized.Phone = ""
	return &sanitized
}

// Fingerprint serializes a profile and returns its SHA-256 hex digest, used
// for change detection across sessions.
func Fingerprint(profile *types.Profile) (string, error) {
	data, err := json.Marshal(profile)
	if err != nil {
		return "", fmt.Errorf("failed to fingerprint profile: %w", err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
