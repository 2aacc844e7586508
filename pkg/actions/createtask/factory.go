package createtask

import (
	"github.com/taskmill/taskmill/pkg/persistence"
	"github.com/taskmill/taskmill/pkg/protocol"
)

// ActionFactory creates create_task actions bound to the task store.
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
	return "create_task"
}

// Schema returns the JSON schema for configuring this action.
func (f *ActionFactory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"project_id": map[string]any{
				"type":        "string",
				"description": "Project to create the task in. Falls back to the context's project.",
			},
			"title": map[string]any{
				"type":        "string",
				"description": "Task title. Supports templating.",
				"examples":    []string{"Follow up on {{task.title}}"},
			},
			"description": map[string]any{"type": "string"},
			"status": map[string]any{
				"type":    "string",
				"enum":    []string{"todo", "in_progress", "blocked", "done"},
				"default": "todo",
			},
			"priority": map[string]any{
				"type":    "string",
				"enum":    []string{"low", "medium", "high", "critical"},
				"default": "medium",
			},
			"assignee": map[string]any{"type": "string"},
		},
		"required":             []string{"title"},
		"additionalProperties": false,
	}
}
