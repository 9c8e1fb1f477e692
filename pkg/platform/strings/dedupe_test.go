package strings

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDedupeAndTrim(t *testing.T) {
	tests := []struct {
		name  string
		input []string
		want  []string
	}{
		{name: "nil input", input: nil, want: nil},
		{name: "empty input", input: []string{}, want: []string{}},
		{
			name:  "dedupes preserving first-seen order",
			input: []string{"research", "training", "research"},
			want:  []string{"research", "training"},
		},
		{
			name:  "trims whitespace and drops empties",
			input: []string{"  research ", "", "  ", "training"},
			want:  []string{"research", "training"},
		},
		{
			name:  "trimmed values collapse to one",
			input: []string{" research", "research "},
			want:  []string{"research"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DedupeAndTrim(tt.input))
		})
	}
}

func TestContainsAll(t *testing.T) {
	granted := []string{"research", "training"}

	assert.True(t, ContainsAll(granted, nil))
	assert.True(t, ContainsAll(granted, []string{"research"}))
	assert.True(t, ContainsAll(granted, []string{"research", "training"}))
	assert.False(t, ContainsAll(granted, []string{"publishing"}))
	assert.False(t, ContainsAll(nil, []string{"research"}))
}
