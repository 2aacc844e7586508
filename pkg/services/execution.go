package services

import (
	"context"
	"fmt"

	"github.com/taskmill/taskmill/pkg/engine"
	"github.com/taskmill/taskmill/pkg/models"
	"github.com/taskmill/taskmill/pkg/persistence"
)

// ErrExecutionNotFound is returned when an execution record is not found.
var ErrExecutionNotFound = persistence.ErrExecutionNotFound

const (
	defaultExecutionPageSize = 20
	maxExecutionPageSize     = 100
)

// Execution serves manual workflow runs and the execution audit log.
type Execution struct {
	engine      *engine.Engine
	persistence persistence.Persistence
}

// NewExecution creates a new execution service.
func NewExecution(eng *engine.Engine, persist persistence.Persistence) *Execution {
	return &Execution{
		engine:      eng,
		persistence: persist,
	}
}

// Run executes a workflow immediately on behalf of userID, bypassing trigger
// matching. The returned execution record is terminal: an inactive workflow
// yields a failed record, not an error.
func (e *Execution) Run(ctx context.Context, workflowID string, data map[string]any, userID string) (*models.WorkflowExecution, error) {
	execution, err := e.engine.RunWorkflow(ctx, workflowID, data, userID)
	if err != nil {
		return nil, err
	}

	return execution, nil
}

// FetchByID retrieves one execution record.
func (e *Execution) FetchByID(ctx context.Context, id string) (*models.WorkflowExecution, error) {
	execution, err := e.persistence.ExecutionRepository().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	return execution, nil
}

// ListExecutionsRequest filters the execution audit log.
type ListExecutionsRequest struct {
	WorkflowID string
	Status     *models.ExecutionStatus
	Limit      int
	Offset     int
}

// List returns execution records, newest first.
func (e *Execution) List(ctx context.Context, req ListExecutionsRequest) ([]*models.WorkflowExecution, error) {
	if req.Limit <= 0 {
		req.Limit = defaultExecutionPageSize
	}

	if req.Limit > maxExecutionPageSize {
		req.Limit = maxExecutionPageSize
	}

	if req.Offset < 0 {
		req.Offset = 0
	}

	if req.Status != nil && !validExecutionStatus(*req.Status) {
		return nil, NewValidationError("List", "INVALID_STATUS",
			fmt.Sprintf("invalid execution status '%s'", *req.Status), ErrInvalidStatus)
	}

	executions, err := e.persistence.ExecutionRepository().List(ctx, persistence.ListExecutionsOptions{
		WorkflowID: req.WorkflowID,
		Status:     req.Status,
		Limit:      req.Limit,
		Offset:     req.Offset,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list executions: %w", err)
	}

	return executions, nil
}

func validExecutionStatus(status models.ExecutionStatus) bool {
	switch status {
	case models.ExecutionStatusPending, models.ExecutionStatusRunning,
		models.ExecutionStatusCompleted, models.ExecutionStatusFailed:
		return true
	default:
		return false
	}
}
