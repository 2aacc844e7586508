package changestatus

import (
	"github.com/taskmill/taskmill/pkg/persistence"
	"github.com/taskmill/taskmill/pkg/protocol"
)

// ActionFactory creates change_status actions bound to the task store.
type ActionFactory struct {
	tasks persistence.TaskRepository
}

// NewActionFactory creates the factory.
func NewActionFactory(tasks persistence.TaskRepository) *ActionFactory {
	return &ActionFactory{tasks: tasks}
}

func (f *ActionFactory) Create(params map[string]any) (protocol.Action, error) {
	return NewAction(f.tasks, params)
}

func (f *ActionFactory) ID() string {
	return "change_status"
}

// Schema returns the JSON schema for configuring this action.
func (f *ActionFactory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"status": map[string]any{
				"type":        "string",
				"description": "Target task status.",
				"enum":        []string{"todo", "in_progress", "blocked", "done"},
			},
		},
		"required":             []string{"status"},
		"additionalProperties": false,
	}
}
