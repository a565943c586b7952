package chatbot

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPresent(t *testing.T) {
	defaults := []string{"d1", "d2", "d3", "d4"}

	tests := []struct {
		name        string
		suggestions []string
		expected    []string
	}{
		{"truncates to three", []string{"a", "b", "c", "d"}, []string{"a", "b", "c"}},
		{"keeps order", []string{"b", "a"}, []string{"b", "a"}},
		{"falls back to defaults", nil, []string{"d1", "d2", "d3"}},
		{"empty falls back to defaults", []string{}, []string{"d1", "d2", "d3"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Present(tt.suggestions, defaults))
		})
	}
}

func TestPresent_DoesNotAlias(t *testing.T) {
	src := []string{"a", "b"}
	out := Present(src, nil)
	out[0] = "z"
	assert.Equal(t, "a", src[0])
}
