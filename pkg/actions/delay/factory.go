package delay

import (
	"github.com/taskmill/taskmill/pkg/protocol"
)

// ActionFactory creates delay actions.
type ActionFactory struct{}

// NewActionFactory creates the factory.
func NewActionFactory() *ActionFactory {
	return &ActionFactory{}
}

func (f *ActionFactory) Create(params map[string]any) (protocol.Action, error) {
	return NewAction(params)
}

func (f *ActionFactory) ID() string {
	return "delay"
}

// Schema returns the JSON schema for configuring this action.
func (f *ActionFactory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"seconds": map[string]any{
				"type":        "number",
				"description": "How long to pause the execution.",
				"minimum":     0,
			},
		},
		"required":             []string{"seconds"},
		"additionalProperties": false,
	}
}
