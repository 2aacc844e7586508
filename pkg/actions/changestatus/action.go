// Package changestatus provides the change_status workflow action.
package changestatus

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
	// ErrMissingStatus is returned when the 'status' parameter is absent.
	ErrMissingStatus = errors.New("missing 'status' parameter")
)

// Action moves the context task to a target status and persists it, recording
// the transition in its output.
type Action struct {
	Status string

	tasks persistence.TaskRepository
}

// NewAction creates a change_status action from the step parameters.
func NewAction(tasks persistence.TaskRepository, params map[string]any) (*Action, error) {
	status, _ := params["status"].(string)
	if status == "" {
		return nil, ErrMissingStatus
	}

	return &Action{Status: status, tasks: tasks}, nil
}

func (a *Action) Execute(ctx context.Context, executionCtx models.ExecutionContext, logger *slog.Logger) (map[string]any, error) {
	task, ok := executionCtx.Task()
	if !ok {
		return nil, ErrNoTaskInContext
	}

	oldStatus := task.Status
	task.Status = a.Status

	err := a.tasks.Save(ctx, task)
	if err != nil {
		return nil, fmt.Errorf("failed to save task %s: %w", task.ID, err)
	}

	logger.InfoContext(ctx, "Changed task status",
		"task_id", task.ID,
		"old_status", oldStatus,
		"new_status", a.Status)

	return map[string]any{
		"task_id":    task.ID,
		"old_status": oldStatus,
		"new_status": a.Status,
	}, nil
}
