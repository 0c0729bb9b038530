package types

import (
	"regexp"
	"strconv"
	"strings"
)

// Date parsing shared by the payload analyzer, validator, and corrector.
// Profiles carry free-text dates in a handful of shapes ("Feb 2025",
// "2025-01", "2024", "Present"); anything beyond year/month precision is
// ignored on purpose.

var (
	yearPattern      = regexp.MustCompile(`\d{4}`)
	monthYearPattern = regexp.MustCompile(`(?i)(jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*\s+(\d{4})`)
	yearMonthPattern = regexp.MustCompile(`(\d{4})-(\d{2})`)
)

var monthNumbers = map[string]int{
	"jan": 1, "feb": 2, "mar": 3, "apr": 4, "may": 5, "jun": 6,
	"jul": 7, "aug": 8, "sep": 9, "oct": 10, "nov": 11, "dec": 12,
}

// IsPresent reports whether a date string means "still ongoing"
func IsPresent(dateStr string) bool {
	switch strings.ToLower(strings.TrimSpace(dateStr)) {
	case "present", "current", "now":
		return true
	}
	return false
}

// ParseYear extracts the first 4-digit year from a date string.
// Returns false if no year is parseable.
func ParseYear(dateStr string) (int, bool) {
	match := yearPattern.FindString(dateStr)
	if match == "" {
		return 0, false
	}
	year, err := strconv.Atoi(match)
	if err != nil {
		return 0, false
	}
	return year, true
}

// ParseYearMonth extracts (year, month) from a date string, trying
// "Mon YYYY", then "YYYY-MM", then a bare year (month defaults to mid-year so
// bare years sort between explicit early and late months).
// Returns false if no year is parseable.
func ParseYearMonth(dateStr string) (year, month int, ok bool) {
	if m := monthYearPattern.FindStringSubmatch(dateStr); m != nil {
		year, _ = strconv.Atoi(m[2])
		return year, monthNumbers[strings.ToLower(m[1])], true
	}

	if m := yearMonthPattern.FindStringSubmatch(dateStr); m != nil {
		year, _ = strconv.Atoi(m[1])
		month, _ = strconv.Atoi(m[2])
		if month < 1 || month > 12 {
			month = 1
		}
		return year, month, true
	}

	year, found := ParseYear(dateStr)
	if !found {
		return 0, 0, false
	}
	return year, 6, true
}
