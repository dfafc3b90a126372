package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		name string
		in   string
		max  int
		want string
	}{
		{"short string unchanged", "run42", 18, "run42"},
		{"exact length unchanged", "abcdef", 6, "abcdef"},
		{"long string truncated", "a-very-long-instance-name_7ms", 18, "a-very-long-ins..."},
		{"tiny limit", "abcdef", 3, "..."},
		{"empty", "", 10, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Truncate(tt.in, tt.max)
			assert.Equal(t, tt.want, got)
			if len(tt.in) > tt.max {
				assert.LessOrEqual(t, len(got), tt.max)
			}
		})
	}
}

func TestJoinOrDefault(t *testing.T) {
	assert.Equal(t, "(none)", JoinOrDefault(nil, "(none)"))
	assert.Equal(t, "a, b", JoinOrDefault([]string{"a", "b"}, "(none)"))
}

func TestPluralize(t *testing.T) {
	assert.Equal(t, "instance", Pluralize(1, "instance", "instances"))
	assert.Equal(t, "instances", Pluralize(0, "instance", "instances"))
	assert.Equal(t, "instances", Pluralize(5, "instance", "instances"))
}

func TestShellQuote(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"simple", "'simple'"},
		{"with space", "'with space'"},
		{"it's", `'it'\''s'`},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ShellQuote(tt.in))
	}
}
