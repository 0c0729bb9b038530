package validation

import (
	"strings"

	"github.com/jonathan/cv-pipeline/internal/types"
)

// DateSortKey maps a date string onto a (year, month) sort key for reverse
// chronological ordering. Empty, "present", and similar ongoing markers sort
// maximal; a string with no 4-digit year sorts minimal; a parseable year
// without a month defaults to mid-year.
func DateSortKey(dateStr string) (int, int) {
	s := strings.TrimSpace(dateStr)
	if s == "" || types.IsPresent(s) {
		return 9999, 12
	}
	year, month, ok := types.ParseYearMonth(s)
	if !ok {
		return 0, 0
	}
	return year, month
}

// IsRecentRole reports whether a start date falls within thresholdYears of
// currentYear. Unparseable dates are not recent.
func IsRecentRole(startDate string, currentYear, thresholdYears int) bool {
	year, ok := types.ParseYear(startDate)
	if !ok {
		return false
	}
	return currentYear-year <= thresholdYears
}
