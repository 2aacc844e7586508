package addcomment

import (
	"github.com/taskmill/taskmill/pkg/persistence"
	"github.com/taskmill/taskmill/pkg/protocol"
)

// ActionFactory creates add_comment actions bound to the comment store.
type ActionFactory struct {
	comments persistence.CommentRepository
}

// NewActionFactory creates the factory.
func NewActionFactory(comments persistence.CommentRepository) *ActionFactory {
	return &ActionFactory{comments: comments}
}

func (f *ActionFactory) Create(params map[string]any) (protocol.Action, error) {
	return NewAction(f.comments, params)
}

func (f *ActionFactory) ID() string {
	return "add_comment"
}

// Schema returns the JSON schema for configuring this action.
func (f *ActionFactory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"text": map[string]any{
				"type":        "string",
				"description": "Comment body. Supports templating.",
				"examples":    []string{"Status changed to {{task.status}} by workflow"},
			},
			"author": map[string]any{
				"type":        "string",
				"description": "Comment author shown in the activity feed.",
				"default":     "taskmill",
			},
		},
		"required":             []string{"text"},
		"additionalProperties": false,
	}
}
