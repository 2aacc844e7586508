package template

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/taskmill/taskmill/pkg/models"
)

func TestSubstitute_NoPlaceholders(t *testing.T) {
	inputs := []string{
		"",
		"plain text",
		"almost {{ a placeholder",
		"closing }} only",
	}

	for _, input := range inputs {
		assert.Equal(t, input, Substitute(input, map[string]any{"a": "x"}))
	}
}

func TestSubstitute_ResolvesPaths(t *testing.T) {
	task := &models.Task{ID: "task-9", Title: "Fix login", Priority: models.TaskPriorityHigh}
	data := map[string]any{
		"task": task,
		"a":    map[string]any{"b": "X"},
		"n":    float64(3),
	}

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "map path",
			input:    "value is {{a.b}}",
			expected: "value is X",
		},
		{
			name:     "resolvable record",
			input:    "Task {{task.title}} ({{task.priority}})",
			expected: "Task Fix login (high)",
		},
		{
			name:     "numeric value",
			input:    "count={{n}}",
			expected: "count=3",
		},
		{
			name:     "whitespace inside delimiters",
			input:    "{{ a.b }}",
			expected: "X",
		},
		{
			name:     "adjacent placeholders",
			input:    "{{a.b}}{{a.b}}",
			expected: "XX",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Substitute(tt.input, data))
		})
	}
}

func TestSubstitute_UnresolvedLeftVerbatim(t *testing.T) {
	data := map[string]any{"a": map[string]any{"b": "X"}}

	input := "known {{a.b}}, unknown {{a.c}} and {{missing.path}}"
	expected := "known X, unknown {{a.c}} and {{missing.path}}"

	once := Substitute(input, data)
	assert.Equal(t, expected, once)

	// Idempotent: substituting twice gives the same result.
	assert.Equal(t, once, Substitute(once, data))
}

func TestSubstituteMap(t *testing.T) {
	data := map[string]any{"task": map[string]any{"id": "task-1"}}

	params := map[string]any{
		"url":     "https://hooks.example.com/{{task.id}}",
		"retries": 3,
		"broken":  "{{nope}}",
	}

	out := SubstituteMap(params, data)
	assert.Equal(t, "https://hooks.example.com/task-1", out["url"])
	assert.Equal(t, 3, out["retries"])
	assert.Equal(t, "{{nope}}", out["broken"])

	assert.Nil(t, SubstituteMap(nil, data))
}
