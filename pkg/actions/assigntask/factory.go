package assigntask

import (
	"github.com/taskmill/taskmill/pkg/persistence"
	"github.com/taskmill/taskmill/pkg/protocol"
)

// ActionFactory creates assign_task actions bound to the task store.
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
	return "assign_task"
}

// Schema returns the JSON schema for configuring this action.
func (f *ActionFactory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"assignee": map[string]any{
				"type":        "string",
				"description": "User to assign the context task to. Supports templating.",
				"examples":    []string{"alice", "{{project.owner}}"},
			},
		},
		"required":             []string{"assignee"},
		"additionalProperties": false,
	}
}
