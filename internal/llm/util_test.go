package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanJSONBlock(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "json fenced block",
			input:    "```json\n{\"a\": 1}\n```",
			expected: "{\"a\": 1}",
		},
		{
			name:     "generic fenced block",
			input:    "```\n{\"a\": 1}\n```",
			expected: "{\"a\": 1}",
		},
		{
			name:     "bare json untouched",
			input:    "{\"a\": 1}",
			expected: "{\"a\": 1}",
		},
		{
			name:     "whitespace trimmed",
			input:    "  {\"a\": 1}\n",
			expected: "{\"a\": 1}",
		},
		{
			name:     "fence with language identifier",
			input:    "```JSON\n{\"a\": 1}\n```",
			expected: "{\"a\": 1}",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CleanJSONBlock(tt.input))
		})
	}
}

func TestExtractJSONObject(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "prose around object",
			input:    "Here is the result:\n{\"cv\": {}}\nLet me know.",
			expected: "{\"cv\": {}}",
		},
		{
			name:     "fenced with prose",
			input:    "```json\n{\"cv\": {}}\n```",
			expected: "{\"cv\": {}}",
		},
		{
			name:     "no braces returned as-is",
			input:    "not json at all",
			expected: "not json at all",
		},
		{
			name:     "nested objects keep outermost",
			input:    "x {\"a\": {\"b\": 2}} y",
			expected: "{\"a\": {\"b\": 2}}",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ExtractJSONObject(tt.input))
		})
	}
}
