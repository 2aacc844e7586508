// Package updatetask provides the update_task workflow action.
package updatetask

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/taskmill/taskmill/pkg/models"
	"github.com/taskmill/taskmill/pkg/persistence"
)

// ErrNoTaskInContext is returned when the execution context carries no task.
var ErrNoTaskInContext = errors.New("no task in execution context")

// Action overwrites task attributes named by the step parameters and persists
// the task. Parameter keys that do not name a settable task attribute are
// ignored.
type Action struct {
	Fields map[string]any

	tasks persistence.TaskRepository
}

// NewAction creates an update_task action from the step parameters.
func NewAction(tasks persistence.TaskRepository, params map[string]any) (*Action, error) {
	fields := make(map[string]any, len(params))
	for key, value := range params {
		fields[key] = value
	}

	return &Action{Fields: fields, tasks: tasks}, nil
}

func (a *Action) Execute(ctx context.Context, executionCtx models.ExecutionContext, logger *slog.Logger) (map[string]any, error) {
	task, ok := executionCtx.Task()
	if !ok {
		return nil, ErrNoTaskInContext
	}

	updated := make([]string, 0, len(a.Fields))

	for field, value := range a.Fields {
		if task.Set(field, value) {
			updated = append(updated, field)
		}
	}

	sort.Strings(updated)

	err := a.tasks.Save(ctx, task)
	if err != nil {
		return nil, fmt.Errorf("failed to save task %s: %w", task.ID, err)
	}

	logger.InfoContext(ctx, "Updated task", "task_id", task.ID, "fields", updated)

	return map[string]any{
		"task_id":        task.ID,
		"updated_fields": updated,
	}, nil
}
