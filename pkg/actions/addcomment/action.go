// Package addcomment provides the add_comment workflow action.
package addcomment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/taskmill/taskmill/pkg/models"
	"github.com/taskmill/taskmill/pkg/persistence"
)

var (
	// ErrNoTaskInContext is returned when the execution context carries no task.
	ErrNoTaskInContext = errors.New("no task in execution context")
	// ErrMissingText is returned when the 'text' parameter is absent.
	ErrMissingText = errors.New("missing 'text' parameter")
)

const defaultAuthor = "taskmill"

// Action attaches a comment to the context task.
type Action struct {
	Text   string
	Author string

	comments persistence.CommentRepository
}

// NewAction creates an add_comment action from the step parameters.
func NewAction(comments persistence.CommentRepository, params map[string]any) (*Action, error) {
	text, _ := params["text"].(string)
	if text == "" {
		return nil, ErrMissingText
	}

	author, _ := params["author"].(string)
	if author == "" {
		author = defaultAuthor
	}

	return &Action{Text: text, Author: author, comments: comments}, nil
}

func (a *Action) Execute(ctx context.Context, executionCtx models.ExecutionContext, logger *slog.Logger) (map[string]any, error) {
	task, ok := executionCtx.Task()
	if !ok {
		return nil, ErrNoTaskInContext
	}

	comment := &models.Comment{
		ID:     uuid.New().String(),
		TaskID: task.ID,
		Author: a.Author,
		Body:   a.Text,
	}

	err := a.comments.Create(ctx, comment)
	if err != nil {
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}

	logger.InfoContext(ctx, "Added comment", "comment_id", comment.ID, "task_id", task.ID)

	return map[string]any{
		"comment_id": comment.ID,
		"task_id":    task.ID,
	}, nil
}
