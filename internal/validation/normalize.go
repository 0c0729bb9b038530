package validation

import "strings"

// NormalizeCompany canonicalizes a company name for comparison: lowercased,
// trimmed, with "ltd"/"ltd." suffixes and periods stripped. "Acme Ltd." and
// "ACME" compare equal.
func NormalizeCompany(company string) string {
	s := strings.ToLower(strings.TrimSpace(company))
	s = strings.ReplaceAll(s, "ltd.", "")
	s = strings.ReplaceAll(s, "ltd", "")
	s = strings.ReplaceAll(s, ".", "")
	return strings.TrimSpace(s)
}
