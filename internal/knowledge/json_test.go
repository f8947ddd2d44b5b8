package knowledge

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanJSON(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"bare object", `{"a":1}`, `{"a":1}`},
		{"json fence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"plain fence", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"prose wrapping", `Here you go: {"a":1}. Hope that helps!`, `{"a":1}`},
		{"nested braces", `{"a":{"b":2}}`, `{"a":{"b":2}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, cleanJSON(tt.input))
		})
	}
}

func TestCleanJSONArray(t *testing.T) {
	assert.Equal(t, `[{"a":1}]`, cleanJSONArray("```json\n[{\"a\":1}]\n```"))
	assert.Equal(t, `[]`, cleanJSONArray("The list is: []"))
}

func TestFirstNumber(t *testing.T) {
	tests := []struct {
		input string
		want  float64
		ok    bool
	}{
		{"120", 120, true},
		{"-0.08", -0.08, true},
		{"42.", 42, true},
		{"around 1,234.5 USD", 1234.5, true},
		{"value: 0.08 (typical)", 0.08, true},
		{"I don't know", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		got, ok := firstNumber(tt.input)
		assert.Equal(t, tt.ok, ok, "input=%q", tt.input)
		if tt.ok {
			assert.InDelta(t, tt.want, got, 1e-9, "input=%q", tt.input)
		}
	}
}
