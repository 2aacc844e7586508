package services

import (
	"context"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/taskmill/taskmill/pkg/engine"
	"github.com/taskmill/taskmill/pkg/eventbus"
	"github.com/taskmill/taskmill/pkg/models"
	"github.com/taskmill/taskmill/pkg/persistence"
	"github.com/taskmill/taskmill/pkg/persistence/file"
	"github.com/taskmill/taskmill/pkg/registry"
)

type discardPublisher struct{}

func (discardPublisher) Publish(_ context.Context, _ string, _ eventbus.Event) error { return nil }

func newExecutionService(t *testing.T) (*Execution, persistence.Persistence) {
	t.Helper()

	persist := file.NewPersistence(t.TempDir())
	logger := slog.Default()
	reg := registry.NewRegistry(logger)
	tracer := noop.NewTracerProvider().Tracer("test")
	eng := engine.New(logger, persist, reg, discardPublisher{}, tracer)

	return NewExecution(eng, persist), persist
}

func TestExecution_Run_InactiveWorkflowYieldsFailedRecord(t *testing.T) {
	service, persist := newExecutionService(t)

	workflow := &models.Workflow{
		ID:     uuid.New().String(),
		Name:   "Paused workflow",
		Status: models.WorkflowStatusInactive,
		Actions: []*models.WorkflowAction{
			{ID: "a1", Type: models.ActionDelay, IsActive: true},
		},
	}
	require.NoError(t, persist.WorkflowRepository().Save(t.Context(), workflow))

	execution, err := service.Run(t.Context(), workflow.ID, nil, "alice")
	require.NoError(t, err)

	assert.Equal(t, models.ExecutionStatusFailed, execution.Status)
	assert.Equal(t, "workflow not active", execution.Error)
	assert.Equal(t, "user:alice", execution.TriggeredBy)
}

func TestExecution_Run_UnknownWorkflow(t *testing.T) {
	service, _ := newExecutionService(t)

	_, err := service.Run(t.Context(), "missing", nil, "")
	assert.True(t, persistence.IsWorkflowNotFound(err))
}

func TestExecution_FetchByID(t *testing.T) {
	service, persist := newExecutionService(t)

	record := &models.WorkflowExecution{
		ID:         uuid.New().String(),
		WorkflowID: "wf-1",
		Status:     models.ExecutionStatusCompleted,
	}
	require.NoError(t, persist.ExecutionRepository().Create(t.Context(), record))

	fetched, err := service.FetchByID(t.Context(), record.ID)
	require.NoError(t, err)
	assert.Equal(t, record.ID, fetched.ID)

	_, err = service.FetchByID(t.Context(), "missing")
	assert.True(t, persistence.IsExecutionNotFound(err))
}

func TestExecution_List(t *testing.T) {
	service, persist := newExecutionService(t)

	for range 3 {
		record := &models.WorkflowExecution{
			ID:         uuid.New().String(),
			WorkflowID: "wf-1",
			Status:     models.ExecutionStatusCompleted,
		}
		require.NoError(t, persist.ExecutionRepository().Create(t.Context(), record))
	}

	executions, err := service.List(t.Context(), ListExecutionsRequest{WorkflowID: "wf-1"})
	require.NoError(t, err)
	assert.Len(t, executions, 3)

	limited, err := service.List(t.Context(), ListExecutionsRequest{WorkflowID: "wf-1", Limit: 2})
	require.NoError(t, err)
	assert.Len(t, limited, 2)

	bad := models.ExecutionStatus("archived")
	_, err = service.List(t.Context(), ListExecutionsRequest{Status: &bad})
	assert.ErrorIs(t, err, ErrInvalidStatus)
}
