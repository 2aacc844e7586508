package engine_test

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/taskmill/taskmill/pkg/engine"
	"github.com/taskmill/taskmill/pkg/eventbus"
	"github.com/taskmill/taskmill/pkg/models"
	"github.com/taskmill/taskmill/pkg/persistence"
	"github.com/taskmill/taskmill/pkg/persistence/file"
	"github.com/taskmill/taskmill/pkg/protocol"
	"github.com/taskmill/taskmill/pkg/registry"
)

type recordedCall struct {
	actionType string
	params     map[string]any
}

// stubAction returns its configured output, or fails.
type stubAction struct {
	output map[string]any
	err    error
}

func (a *stubAction) Execute(_ context.Context, _ models.ExecutionContext, _ *slog.Logger) (map[string]any, error) {
	return a.output, a.err
}

type stubFactory struct {
	id    string
	err   error
	calls *[]recordedCall
}

func (f *stubFactory) Create(params map[string]any) (protocol.Action, error) {
	if f.calls != nil {
		*f.calls = append(*f.calls, recordedCall{actionType: f.id, params: params})
	}

	return &stubAction{output: map[string]any{"done": true}, err: f.err}, nil
}

func (f *stubFactory) ID() string { return f.id }

func (f *stubFactory) Schema() map[string]any { return nil }

// mutatingAction flips the task status in the live execution context.
type mutatingAction struct{}

func (mutatingAction) Execute(_ context.Context, execCtx models.ExecutionContext, _ *slog.Logger) (map[string]any, error) {
	task, ok := execCtx.Data["task"].(map[string]any)
	if !ok {
		return nil, errors.New("no task in context")
	}

	task["status"] = "done"

	return map[string]any{"mutated": true}, nil
}

type mutatingFactory struct {
	id string
}

func (f *mutatingFactory) Create(_ map[string]any) (protocol.Action, error) {
	return mutatingAction{}, nil
}

func (f *mutatingFactory) ID() string { return f.id }

func (f *mutatingFactory) Schema() map[string]any { return nil }

type nullPublisher struct{}

func (nullPublisher) Publish(_ context.Context, _ string, _ eventbus.Event) error { return nil }

func newTestEngine(t *testing.T, calls *[]recordedCall, failingTypes ...string) (*engine.Engine, persistence.Persistence) {
	t.Helper()

	persist := file.NewPersistence(t.TempDir())

	t.Cleanup(func() { _ = persist.Close(context.Background()) })

	logger := slog.Default()
	reg := registry.NewRegistry(logger)

	failing := make(map[string]bool, len(failingTypes))
	for _, actionType := range failingTypes {
		failing[actionType] = true
	}

	for _, kind := range models.ActionTypes() {
		var actionErr error
		if failing[string(kind)] {
			actionErr = errors.New("handler blew up")
		}

		reg.RegisterAction(&stubFactory{id: string(kind), err: actionErr, calls: calls})
	}

	tracer := noop.NewTracerProvider().Tracer("test")

	return engine.New(logger, persist, reg, nullPublisher{}, tracer), persist
}

func saveWorkflow(t *testing.T, persist persistence.Persistence, workflow *models.Workflow) {
	t.Helper()
	require.NoError(t, persist.WorkflowRepository().Save(t.Context(), workflow))
}

func activeWorkflow(id string, triggers []*models.WorkflowTrigger, actions []*models.WorkflowAction) *models.Workflow {
	return &models.Workflow{
		ID:       id,
		Name:     "workflow " + id,
		Status:   models.WorkflowStatusActive,
		Triggers: triggers,
		Actions:  actions,
	}
}

func TestNotifyEvent_MatchesAndExecutes(t *testing.T) {
	var calls []recordedCall

	eng, persist := newTestEngine(t, &calls)

	saveWorkflow(t, persist, activeWorkflow("wf-1",
		[]*models.WorkflowTrigger{
			{ID: "tr-1", WorkflowID: "wf-1", EventType: "task_created", IsActive: true},
		},
		[]*models.WorkflowAction{
			{ID: "a-1", Type: models.ActionSendNotification, Order: 1, IsActive: true},
		},
	))

	executions, err := eng.NotifyEvent(t.Context(), "task_created", map[string]any{"priority": "high"})
	require.NoError(t, err)
	require.Len(t, executions, 1)

	execution := executions[0]
	assert.Equal(t, models.ExecutionStatusCompleted, execution.Status)
	assert.Equal(t, "tr-1", execution.TriggerID)
	assert.Equal(t, "event:task_created", execution.TriggeredBy)
	require.Len(t, execution.Results, 1)
	assert.Equal(t, models.ActionResultSuccess, execution.Results[0].Status)

	require.Len(t, calls, 1)

	// counters incremented exactly once
	workflow, err := persist.WorkflowRepository().GetByID(t.Context(), "wf-1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), workflow.ExecutionCount)
	assert.Equal(t, int64(1), workflow.TriggerByID("tr-1").TriggerCount)
}

func TestNotifyEvent_NoMatchForOtherEventTypes(t *testing.T) {
	eng, persist := newTestEngine(t, nil)

	saveWorkflow(t, persist, activeWorkflow("wf-1",
		[]*models.WorkflowTrigger{
			{ID: "tr-1", WorkflowID: "wf-1", EventType: "task_created", IsActive: true},
		},
		[]*models.WorkflowAction{
			{ID: "a-1", Type: models.ActionSendNotification, Order: 1, IsActive: true},
		},
	))

	executions, err := eng.NotifyEvent(t.Context(), "task_completed", nil)
	require.NoError(t, err)
	assert.Empty(t, executions)
}

func TestNotifyEvent_SkipsInactiveWorkflowsAndTriggers(t *testing.T) {
	eng, persist := newTestEngine(t, nil)

	inactive := activeWorkflow("wf-1",
		[]*models.WorkflowTrigger{{ID: "tr-1", EventType: "task_created", IsActive: true}},
		[]*models.WorkflowAction{{ID: "a-1", Type: models.ActionWebhook, Order: 1, IsActive: true}},
	)
	inactive.Status = models.WorkflowStatusInactive
	saveWorkflow(t, persist, inactive)

	saveWorkflow(t, persist, activeWorkflow("wf-2",
		[]*models.WorkflowTrigger{{ID: "tr-2", EventType: "task_created", IsActive: false}},
		[]*models.WorkflowAction{{ID: "a-2", Type: models.ActionWebhook, Order: 1, IsActive: true}},
	))

	executions, err := eng.NotifyEvent(t.Context(), "task_created", nil)
	require.NoError(t, err)
	assert.Empty(t, executions)
}

func TestNotifyEvent_TriggerConditionGatesMatch(t *testing.T) {
	eng, persist := newTestEngine(t, nil)

	saveWorkflow(t, persist, activeWorkflow("wf-1",
		[]*models.WorkflowTrigger{
			{
				ID:        "tr-1",
				EventType: "task_updated",
				IsActive:  true,
				Condition: &models.Condition{Field: "priority", Operator: models.OperatorEquals, Value: "critical"},
			},
		},
		[]*models.WorkflowAction{
			{ID: "a-1", Type: models.ActionSendNotification, Order: 1, IsActive: true},
		},
	))

	executions, err := eng.NotifyEvent(t.Context(), "task_updated", map[string]any{"priority": "low"})
	require.NoError(t, err)
	assert.Empty(t, executions)

	executions, err = eng.NotifyEvent(t.Context(), "task_updated", map[string]any{"priority": "critical"})
	require.NoError(t, err)
	assert.Len(t, executions, 1)
}

func TestNotifyEvent_DeterministicOrderAcrossTriggers(t *testing.T) {
	eng, persist := newTestEngine(t, nil)

	saveWorkflow(t, persist, activeWorkflow("wf-b",
		[]*models.WorkflowTrigger{{ID: "tr-2", EventType: "task_created", IsActive: true}},
		[]*models.WorkflowAction{{ID: "a-1", Type: models.ActionDelay, Order: 1, IsActive: true}},
	))
	saveWorkflow(t, persist, activeWorkflow("wf-a",
		[]*models.WorkflowTrigger{
			{ID: "tr-9", EventType: "task_created", IsActive: true},
			{ID: "tr-1", EventType: "task_created", IsActive: true},
		},
		[]*models.WorkflowAction{{ID: "a-1", Type: models.ActionDelay, Order: 1, IsActive: true}},
	))

	executions, err := eng.NotifyEvent(t.Context(), "task_created", nil)
	require.NoError(t, err)
	require.Len(t, executions, 3)

	assert.Equal(t, "wf-a", executions[0].WorkflowID)
	assert.Equal(t, "tr-1", executions[0].TriggerID)
	assert.Equal(t, "wf-a", executions[1].WorkflowID)
	assert.Equal(t, "tr-9", executions[1].TriggerID)
	assert.Equal(t, "wf-b", executions[2].WorkflowID)
	assert.Equal(t, "tr-2", executions[2].TriggerID)
}

func TestRunWorkflow_AbortOnFailure(t *testing.T) {
	var calls []recordedCall

	eng, persist := newTestEngine(t, &calls, string(models.ActionWebhook))

	saveWorkflow(t, persist, activeWorkflow("wf-1", nil,
		[]*models.WorkflowAction{
			{ID: "a-1", Type: models.ActionWebhook, Order: 1, IsActive: true},
			{ID: "a-2", Type: models.ActionSendNotification, Order: 2, IsActive: true},
		},
	))

	execution, err := eng.RunWorkflow(t.Context(), "wf-1", nil, "ops")
	require.NoError(t, err)

	assert.Equal(t, models.ExecutionStatusFailed, execution.Status)
	assert.Equal(t, "user:ops", execution.TriggeredBy)
	require.Len(t, execution.Results, 1)
	assert.Equal(t, models.ActionResultFailure, execution.Results[0].Status)
	assert.Contains(t, execution.Results[0].Error, "handler blew up")

	// second action never dispatched
	require.Len(t, calls, 1)

	// failed runs do not bump the execution counter
	workflow, err := persist.WorkflowRepository().GetByID(t.Context(), "wf-1")
	require.NoError(t, err)
	assert.Equal(t, int64(0), workflow.ExecutionCount)
}

func TestRunWorkflow_ContinueOnError(t *testing.T) {
	var calls []recordedCall

	eng, persist := newTestEngine(t, &calls, string(models.ActionWebhook))

	saveWorkflow(t, persist, activeWorkflow("wf-1", nil,
		[]*models.WorkflowAction{
			{ID: "a-1", Type: models.ActionWebhook, Order: 1, IsActive: true, ContinueOnError: true},
			{ID: "a-2", Type: models.ActionSendNotification, Order: 2, IsActive: true},
		},
	))

	execution, err := eng.RunWorkflow(t.Context(), "wf-1", nil, "")
	require.NoError(t, err)

	assert.Equal(t, models.ExecutionStatusCompleted, execution.Status)
	require.Len(t, execution.Results, 2)
	assert.Equal(t, models.ActionResultFailure, execution.Results[0].Status)
	assert.Equal(t, models.ActionResultSuccess, execution.Results[1].Status)
	require.Len(t, calls, 2)
}

func TestRunWorkflow_ActionConditionRecordsSkipped(t *testing.T) {
	var calls []recordedCall

	eng, persist := newTestEngine(t, &calls)

	saveWorkflow(t, persist, activeWorkflow("wf-1", nil,
		[]*models.WorkflowAction{
			{
				ID: "a-1", Type: models.ActionSendEmail, Order: 1, IsActive: true,
				Condition: &models.Condition{Field: "priority", Operator: models.OperatorEquals, Value: "high"},
			},
			{ID: "a-2", Type: models.ActionSendNotification, Order: 2, IsActive: true},
		},
	))

	execution, err := eng.RunWorkflow(t.Context(), "wf-1", map[string]any{"priority": "low"}, "")
	require.NoError(t, err)

	assert.Equal(t, models.ExecutionStatusCompleted, execution.Status)
	require.Len(t, execution.Results, 2)
	assert.Equal(t, models.ActionResultSkipped, execution.Results[0].Status)
	assert.Equal(t, "a-1", execution.Results[0].ActionID)
	assert.Equal(t, models.ActionResultSuccess, execution.Results[1].Status)

	// only the unconditioned action reached its handler
	require.Len(t, calls, 1)
}

func TestRunWorkflow_InactiveWorkflowYieldsFailedExecution(t *testing.T) {
	eng, persist := newTestEngine(t, nil)

	draft := activeWorkflow("wf-1", nil,
		[]*models.WorkflowAction{{ID: "a-1", Type: models.ActionDelay, Order: 1, IsActive: true}},
	)
	draft.Status = models.WorkflowStatusDraft
	saveWorkflow(t, persist, draft)

	execution, err := eng.RunWorkflow(t.Context(), "wf-1", nil, "")
	require.NoError(t, err)

	assert.Equal(t, models.ExecutionStatusFailed, execution.Status)
	assert.Equal(t, "workflow not active", execution.Error)
	assert.Empty(t, execution.Results)
}

func TestRunWorkflow_UnknownWorkflow(t *testing.T) {
	eng, _ := newTestEngine(t, nil)

	_, err := eng.RunWorkflow(t.Context(), "missing", nil, "")
	require.Error(t, err)
	assert.True(t, persistence.IsWorkflowNotFound(err))
}

func TestRunWorkflow_ParametersAreSubstituted(t *testing.T) {
	var calls []recordedCall

	eng, persist := newTestEngine(t, &calls)

	saveWorkflow(t, persist, activeWorkflow("wf-1", nil,
		[]*models.WorkflowAction{
			{
				ID: "a-1", Type: models.ActionSendEmail, Order: 1, IsActive: true,
				Parameters: map[string]any{
					"subject": "Task {{task.title}} is due",
					"retries": 3,
				},
			},
		},
	))

	task := &models.Task{ID: "task-1", Title: "Ship release"}
	execution, err := eng.RunWorkflow(t.Context(), "wf-1", map[string]any{"task": task}, "")
	require.NoError(t, err)
	assert.Equal(t, models.ExecutionStatusCompleted, execution.Status)

	require.Len(t, calls, 1)
	assert.Equal(t, "Task Ship release is due", calls[0].params["subject"])
	assert.Equal(t, 3, calls[0].params["retries"])
}

func TestRunWorkflow_SnapshotKeepsInvocationState(t *testing.T) {
	persist := file.NewPersistence(t.TempDir())

	t.Cleanup(func() { _ = persist.Close(context.Background()) })

	logger := slog.Default()
	reg := registry.NewRegistry(logger)
	reg.RegisterAction(&mutatingFactory{id: string(models.ActionChangeStatus)})

	tracer := noop.NewTracerProvider().Tracer("test")
	eng := engine.New(logger, persist, reg, nullPublisher{}, tracer)

	saveWorkflow(t, persist, activeWorkflow("wf-1", nil,
		[]*models.WorkflowAction{{ID: "a-1", Type: models.ActionChangeStatus, Order: 1, IsActive: true}},
	))

	execution, err := eng.RunWorkflow(t.Context(), "wf-1", map[string]any{
		"task": map[string]any{"status": "todo"},
	}, "")
	require.NoError(t, err)
	assert.Equal(t, models.ExecutionStatusCompleted, execution.Status)

	// the action mutated the live context, not the snapshot
	snapshotTask, ok := execution.ContextSnapshot["task"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "todo", snapshotTask["status"])

	stored, err := persist.ExecutionRepository().GetByID(t.Context(), execution.ID)
	require.NoError(t, err)

	storedTask, ok := stored.ContextSnapshot["task"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "todo", storedTask["status"])
}

func TestRunWorkflow_ExecutionRecordPersisted(t *testing.T) {
	eng, persist := newTestEngine(t, nil)

	saveWorkflow(t, persist, activeWorkflow("wf-1", nil,
		[]*models.WorkflowAction{{ID: "a-1", Type: models.ActionDelay, Order: 1, IsActive: true}},
	))

	execution, err := eng.RunWorkflow(t.Context(), "wf-1", map[string]any{"key": "value"}, "")
	require.NoError(t, err)

	stored, err := persist.ExecutionRepository().GetByID(t.Context(), execution.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ExecutionStatusCompleted, stored.Status)
	assert.Equal(t, "value", stored.ContextSnapshot["key"])
	require.NotNil(t, stored.StartedAt)
	require.NotNil(t, stored.FinishedAt)
}
