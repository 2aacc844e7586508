package updatetask

import (
	"github.com/taskmill/taskmill/pkg/persistence"
	"github.com/taskmill/taskmill/pkg/protocol"
)

// ActionFactory creates update_task actions bound to the task store.
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
	return "update_task"
}

// Schema returns the JSON schema for configuring this action.
func (f *ActionFactory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"title":       map[string]any{"type": "string"},
			"description": map[string]any{"type": "string"},
			"status": map[string]any{
				"type": "string",
				"enum": []string{"todo", "in_progress", "blocked", "done"},
			},
			"priority": map[string]any{
				"type": "string",
				"enum": []string{"low", "medium", "high", "critical"},
			},
			"assignee": map[string]any{"type": "string"},
			"due_date": map[string]any{
				"type":        "string",
				"description": "RFC 3339 timestamp.",
			},
		},
		"additionalProperties": false,
	}
}
