package updatetask_test

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskmill/taskmill/pkg/actions/updatetask"
	"github.com/taskmill/taskmill/pkg/models"
)

type fakeTaskRepo struct {
	saved *models.Task
}

func (r *fakeTaskRepo) GetByID(_ context.Context, _ string) (*models.Task, error) { return nil, nil }

func (r *fakeTaskRepo) Save(_ context.Context, task *models.Task) error {
	r.saved = task

	return nil
}

func (r *fakeTaskRepo) ListDueBetween(_ context.Context, _, _ time.Time) ([]*models.Task, error) {
	return nil, nil
}

func TestExecute_RequiresTaskInContext(t *testing.T) {
	action, err := updatetask.NewAction(&fakeTaskRepo{}, map[string]any{"status": "done"})
	require.NoError(t, err)

	_, err = action.Execute(t.Context(), models.ExecutionContext{Data: map[string]any{}}, slog.Default())
	assert.ErrorIs(t, err, updatetask.ErrNoTaskInContext)
}

func TestExecute_OverwritesMatchingAttributes(t *testing.T) {
	repo := &fakeTaskRepo{}
	action, err := updatetask.NewAction(repo, map[string]any{
		"status":   "done",
		"priority": "low",
		"unknown":  "ignored",
	})
	require.NoError(t, err)

	task := &models.Task{ID: "task-1", Title: "Ship release", Status: models.TaskStatusInProgress}
	executionCtx := models.ExecutionContext{Data: map[string]any{"task": task}}

	output, err := action.Execute(t.Context(), executionCtx, slog.Default())
	require.NoError(t, err)

	assert.Equal(t, []string{"priority", "status"}, output["updated_fields"])
	require.NotNil(t, repo.saved)
	assert.Equal(t, models.TaskStatusDone, repo.saved.Status)
	assert.Equal(t, models.TaskPriorityLow, repo.saved.Priority)
	assert.Equal(t, "Ship release", repo.saved.Title)
}
