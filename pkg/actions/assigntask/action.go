// Package assigntask provides the assign_task workflow action.
package assigntask

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/taskmill/taskmill/pkg/models"
	"github.com/taskmill/taskmill/pkg/persistence"
)

var (
	// ErrNoTaskInContext is returned when the execution context carries no task.
	ErrNoTaskInContext = errors.New("no task in execution context")
	// ErrMissingAssignee is returned when the 'assignee' parameter is absent.
	ErrMissingAssignee = errors.New("missing 'assignee' parameter")
)

// Action assigns the context task to a user and persists it.
type Action struct {
	Assignee string

	tasks persistence.TaskRepository
}

// NewAction creates an assign_task action from the step parameters.
func NewAction(tasks persistence.TaskRepository, params map[string]any) (*Action, error) {
	assignee, _ := params["assignee"].(string)
	if assignee == "" {
		return nil, ErrMissingAssignee
	}

	return &Action{Assignee: assignee, tasks: tasks}, nil
}

func (a *Action) Execute(ctx context.Context, executionCtx models.ExecutionContext, logger *slog.Logger) (map[string]any, error) {
	task, ok := executionCtx.Task()
	if !ok {
		return nil, ErrNoTaskInContext
	}

	previous := task.Assignee
	task.Assignee = a.Assignee

	err := a.tasks.Save(ctx, task)
	if err != nil {
		return nil, fmt.Errorf("failed to save task %s: %w", task.ID, err)
	}

	logger.InfoContext(ctx, "Assigned task", "task_id", task.ID, "assignee", a.Assignee)

	return map[string]any{
		"task_id":           task.ID,
		"assignee":          a.Assignee,
		"previous_assignee": previous,
	}, nil
}
