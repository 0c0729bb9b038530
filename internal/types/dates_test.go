package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseYearMonth(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantYear  int
		wantMonth int
		wantOK    bool
	}{
		{"month year", "Feb 2025", 2025, 2, true},
		{"full month name", "February 2025", 2025, 2, true},
		{"lowercase", "mar 2019", 2019, 3, true},
		{"iso year month", "2025-01", 2025, 1, true},
		{"bare year", "2024", 2024, 6, true},
		{"year embedded", "Since 2018", 2018, 6, true},
		{"range keeps month next to year", "Jan - Mar 2020", 2020, 3, true},
		{"empty", "", 0, 0, false},
		{"garbage", "unknown", 0, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			year, month, ok := ParseYearMonth(tt.input)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.wantYear, year)
				assert.Equal(t, tt.wantMonth, month)
			}
		})
	}
}

func TestIsPresent(t *testing.T) {
	assert.True(t, IsPresent("Present"))
	assert.True(t, IsPresent("present"))
	assert.True(t, IsPresent(" Current "))
	assert.True(t, IsPresent("now"))
	assert.False(t, IsPresent("2024"))
	assert.False(t, IsPresent(""))
}

func TestParseYear(t *testing.T) {
	year, ok := ParseYear("Jan 2015")
	assert.True(t, ok)
	assert.Equal(t, 2015, year)

	_, ok = ParseYear("no digits here")
	assert.False(t, ok)
}
