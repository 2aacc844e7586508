package conditional

import (
	"github.com/taskmill/taskmill/pkg/protocol"
)

// ActionFactory creates conditional actions.
type ActionFactory struct{}

// NewActionFactory creates the factory.
func NewActionFactory() *ActionFactory {
	return &ActionFactory{}
}

func (f *ActionFactory) Create(params map[string]any) (protocol.Action, error) {
	return NewAction(params)
}

func (f *ActionFactory) ID() string {
	return "conditional"
}

// Schema returns the JSON schema for configuring this action.
func (f *ActionFactory) Schema() map[string]any {
	conditionSchema := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"field": map[string]any{"type": "string"},
			"operator": map[string]any{
				"type": "string",
				"enum": []string{"equals", "not_equals", "contains", "greater_than", "less_than", "in"},
			},
			"value": map[string]any{},
		},
		"required": []string{"field", "operator"},
	}

	branchSchema := map[string]any{
		"type":        "array",
		"description": "Sub-action descriptors for the branch.",
		"items":       map[string]any{"type": "object"},
	}

	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"condition": conditionSchema,
			"if_true":   branchSchema,
			"if_false":  branchSchema,
		},
		"required":             []string{"condition"},
		"additionalProperties": false,
	}
}
