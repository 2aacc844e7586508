// Package createtask provides the create_task workflow action.
package createtask

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/taskmill/taskmill/pkg/models"
	"github.com/taskmill/taskmill/pkg/persistence"
)

// ErrNoProjectID is returned when neither the parameters nor the context
// provide a project to create the task in.
var ErrNoProjectID = errors.New("no project id resolvable")

// Action creates a new task. The project is taken from the 'project_id'
// parameter, falling back to the project or task in the execution context.
type Action struct {
	ProjectID   string
	Title       string
	Description string
	Status      string
	Priority    string
	Assignee    string

	tasks persistence.TaskRepository
}

// NewAction creates a create_task action from the step parameters.
func NewAction(tasks persistence.TaskRepository, params map[string]any) (*Action, error) {
	projectID, _ := params["project_id"].(string)
	title, _ := params["title"].(string)
	description, _ := params["description"].(string)
	assignee, _ := params["assignee"].(string)

	status := models.TaskStatusTodo
	if s, ok := params["status"].(string); ok && s != "" {
		status = s
	}

	priority := models.TaskPriorityMedium
	if p, ok := params["priority"].(string); ok && p != "" {
		priority = p
	}

	return &Action{
		ProjectID:   projectID,
		Title:       title,
		Description: description,
		Status:      status,
		Priority:    priority,
		Assignee:    assignee,
		tasks:       tasks,
	}, nil
}

func (a *Action) Execute(ctx context.Context, executionCtx models.ExecutionContext, logger *slog.Logger) (map[string]any, error) {
	projectID := a.resolveProjectID(executionCtx)
	if projectID == "" {
		return nil, ErrNoProjectID
	}

	now := time.Now().UTC()
	task := &models.Task{
		ID:          uuid.New().String(),
		ProjectID:   projectID,
		Title:       a.Title,
		Description: a.Description,
		Status:      a.Status,
		Priority:    a.Priority,
		Assignee:    a.Assignee,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err := a.tasks.Save(ctx, task)
	if err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	logger.InfoContext(ctx, "Created task", "task_id", task.ID, "project_id", projectID)

	return map[string]any{
		"task_id":    task.ID,
		"project_id": projectID,
	}, nil
}

func (a *Action) resolveProjectID(executionCtx models.ExecutionContext) string {
	if a.ProjectID != "" {
		return a.ProjectID
	}

	if project, ok := executionCtx.Project(); ok {
		return project.ID
	}

	if task, ok := executionCtx.Task(); ok {
		return task.ProjectID
	}

	return ""
}
