// Package persistence provides the data storage abstraction for workflows,
// executions and the domain records workflow actions read and mutate.
package persistence

import (
	"context"
	"time"

	"github.com/taskmill/taskmill/pkg/models"
)

type Persistence interface {
	WorkflowRepository() WorkflowRepository
	ExecutionRepository() ExecutionRepository
	TaskRepository() TaskRepository
	NotificationRepository() NotificationRepository
	CommentRepository() CommentRepository

	HealthCheck(ctx context.Context) error
	Close(ctx context.Context) error
}

// WorkflowRepository stores workflow definitions. Counter increments are
// single atomic operations so concurrent triggering cannot lose updates.
type WorkflowRepository interface {
	List(ctx context.Context) ([]*models.Workflow, error)
	ListByStatus(ctx context.Context, status models.WorkflowStatus) ([]*models.Workflow, error)
	GetByID(ctx context.Context, id string) (*models.Workflow, error)
	Save(ctx context.Context, workflow *models.Workflow) error
	Delete(ctx context.Context, id string) error

	IncrementExecutionCount(ctx context.Context, workflowID string) error
	IncrementTriggerCount(ctx context.Context, workflowID, triggerID string) error
}

// ListExecutionsOptions filters the execution audit log.
type ListExecutionsOptions struct {
	WorkflowID string
	Status     *models.ExecutionStatus
	Since      *time.Time
	Until      *time.Time
	Limit      int
	Offset     int
}

// ExecutionRepository stores the append-only execution audit records.
type ExecutionRepository interface {
	Create(ctx context.Context, execution *models.WorkflowExecution) error
	Save(ctx context.Context, execution *models.WorkflowExecution) error
	GetByID(ctx context.Context, id string) (*models.WorkflowExecution, error)
	List(ctx context.Context, opts ListExecutionsOptions) ([]*models.WorkflowExecution, error)
}

// TaskRepository is the task record store the task actions mutate.
type TaskRepository interface {
	GetByID(ctx context.Context, id string) (*models.Task, error)
	Save(ctx context.Context, task *models.Task) error
	ListDueBetween(ctx context.Context, from, until time.Time) ([]*models.Task, error)
}

// NotificationRepository creates in-app notification records.
type NotificationRepository interface {
	Create(ctx context.Context, notification *models.Notification) error
}

// CommentRepository creates task comment records.
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
}
