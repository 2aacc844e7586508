package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"maps"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/taskmill/taskmill/pkg/eventbus"
	"github.com/taskmill/taskmill/pkg/events"
	"github.com/taskmill/taskmill/pkg/models"
	"github.com/taskmill/taskmill/pkg/otelhelper"
	"github.com/taskmill/taskmill/pkg/persistence"
	"github.com/taskmill/taskmill/pkg/registry"
	"github.com/taskmill/taskmill/pkg/template"
)

// Executor runs a workflow's active actions in order against a context
// snapshot, producing an immutable execution record.
//
// States: pending -> running -> completed | failed. A failing action aborts
// the run unless it is marked continue_on_error; action panics and errors
// never escape the per-action loop.
type Executor struct {
	logger      *slog.Logger
	persistence persistence.Persistence
	registry    *registry.Registry
	publisher   eventbus.EventPublisher
	tracer      trace.Tracer
}

// NewExecutor creates a new workflow executor.
func NewExecutor(
	logger *slog.Logger,
	persist persistence.Persistence,
	reg *registry.Registry,
	publisher eventbus.EventPublisher,
	tracer trace.Tracer,
) *Executor {
	return &Executor{
		logger:      logger.With("module", "executor"),
		persistence: persist,
		registry:    reg,
		publisher:   publisher,
		tracer:      tracer,
	}
}

// Run executes the workflow against data. trigger may be nil for manual
// invocations. The returned execution is terminal; a non-nil error means an
// infrastructure failure (persistence), not a failed workflow.
func (x *Executor) Run(
	ctx context.Context,
	workflow *models.Workflow,
	data map[string]any,
	triggeredBy string,
	trigger *models.WorkflowTrigger,
) (*models.WorkflowExecution, error) {
	execution := &models.WorkflowExecution{
		ID:              uuid.New().String(),
		WorkflowID:      workflow.ID,
		TriggeredBy:     triggeredBy,
		Status:          models.ExecutionStatusPending,
		ContextSnapshot: snapshotContext(data),
		Results:         make([]models.ActionResult, 0),
		MaxAttempts:     workflow.MaxRetries,
		CreatedAt:       time.Now().UTC(),
	}
	if trigger != nil {
		execution.TriggerID = trigger.ID
	}

	err := x.persistence.ExecutionRepository().Create(ctx, execution)
	if err != nil {
		return nil, fmt.Errorf("failed to create execution record: %w", err)
	}

	ctx, span := otelhelper.StartSpan(ctx, x.tracer, "engine.execute",
		attribute.String(otelhelper.WorkflowIDKey, workflow.ID),
		attribute.String(otelhelper.WorkflowNameKey, workflow.Name),
		attribute.String(otelhelper.ExecutionIDKey, execution.ID),
	)
	defer span.End()

	logger := x.logger.With("workflow_id", workflow.ID, "execution_id", execution.ID)

	if !workflow.IsExecutable() {
		execution.Fail("workflow not active", execution.Results)

		err = x.persistence.ExecutionRepository().Save(ctx, execution)
		if err != nil {
			return nil, fmt.Errorf("failed to save execution record: %w", err)
		}

		x.publishFailed(ctx, workflow, execution, "", 0)
		logger.WarnContext(ctx, "Refused to execute inactive workflow", "status", workflow.Status)

		return execution, nil
	}

	execution.Start()

	err = x.persistence.ExecutionRepository().Save(ctx, execution)
	if err != nil {
		return nil, fmt.Errorf("failed to save execution record: %w", err)
	}

	x.publishStarted(ctx, workflow, execution)
	logger.InfoContext(ctx, "Starting workflow execution", "triggered_by", triggeredBy)

	executionCtx := models.ExecutionContext{
		ExecutionID: execution.ID,
		WorkflowID:  workflow.ID,
		Data:        data,
	}

	results := execution.Results

	var abortErr error

	var failedActionID string

	for _, action := range workflow.ActiveActions() {
		result := x.runAction(ctx, action, executionCtx, logger)
		results = append(results, result)

		if result.Status == models.ActionResultFailure && !action.ContinueOnError {
			abortErr = fmt.Errorf("action %s (%s) failed: %s", action.ID, action.Type, result.Error)
			failedActionID = action.ID

			break
		}
	}

	if abortErr != nil {
		execution.Fail(abortErr.Error(), results)
		otelhelper.SetError(span, abortErr)
	} else {
		execution.Complete(results)
	}

	err = x.persistence.ExecutionRepository().Save(ctx, execution)
	if err != nil {
		return nil, fmt.Errorf("failed to save execution record: %w", err)
	}

	executed, skipped := countResults(results)

	if abortErr != nil {
		x.publishFailed(ctx, workflow, execution, failedActionID, executed)
		logger.WarnContext(ctx, "Workflow execution failed",
			"failed_action_id", failedActionID,
			"error", abortErr)

		return execution, nil
	}

	err = x.persistence.WorkflowRepository().IncrementExecutionCount(ctx, workflow.ID)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to increment execution count", "error", err)
	}

	x.publishCompleted(ctx, workflow, execution, executed, skipped)
	logger.InfoContext(ctx, "Workflow execution completed",
		"actions_executed", executed,
		"actions_skipped", skipped)

	return execution, nil
}

// runAction gates the action on its condition, substitutes templated
// parameters and dispatches to the registered handler. Handler errors are
// converted to failure results, never propagated.
func (x *Executor) runAction(
	ctx context.Context,
	action *models.WorkflowAction,
	executionCtx models.ExecutionContext,
	logger *slog.Logger,
) models.ActionResult {
	ctx, span := otelhelper.StartSpan(ctx, x.tracer, "engine.action",
		attribute.String(otelhelper.ActionIDKey, action.ID),
		attribute.String(otelhelper.ActionTypeKey, string(action.Type)),
	)
	defer span.End()

	actionLogger := logger.With("action_id", action.ID, "action_type", string(action.Type))

	if !action.Condition.IsZero() {
		holds, err := action.Condition.Evaluate(executionCtx.Data)
		if err != nil {
			actionLogger.WarnContext(ctx, "Action condition evaluation failed, skipping action", "error", err)
		}

		if !holds {
			actionLogger.DebugContext(ctx, "Action condition did not hold, skipping")
			span.AddEvent("action_skipped")

			return models.ActionResult{
				ActionID:   action.ID,
				ActionType: action.Type,
				Status:     models.ActionResultSkipped,
			}
		}
	}

	params := template.SubstituteMap(action.Parameters, executionCtx.Data)

	handler, err := x.registry.CreateAction(string(action.Type), params)
	if err != nil {
		otelhelper.SetError(span, err)
		actionLogger.ErrorContext(ctx, "Failed to create action handler", "error", err)

		return models.ActionResult{
			ActionID:   action.ID,
			ActionType: action.Type,
			Status:     models.ActionResultFailure,
			Error:      err.Error(),
		}
	}

	output, err := handler.Execute(ctx, executionCtx, actionLogger)
	if err != nil {
		otelhelper.SetError(span, err)
		actionLogger.ErrorContext(ctx, "Action failed", "error", err)

		return models.ActionResult{
			ActionID:   action.ID,
			ActionType: action.Type,
			Status:     models.ActionResultFailure,
			Error:      err.Error(),
		}
	}

	actionLogger.DebugContext(ctx, "Action completed")

	return models.ActionResult{
		ActionID:   action.ID,
		ActionType: action.Type,
		Status:     models.ActionResultSuccess,
		Output:     output,
	}
}

// snapshotContext deep-copies the execution context so the persisted
// snapshot keeps the state at invocation time. Actions mutate the live
// context (task records in particular), not the snapshot.
func snapshotContext(data map[string]any) map[string]any {
	if data == nil {
		return map[string]any{}
	}

	payload, err := json.Marshal(data)
	if err != nil {
		return maps.Clone(data)
	}

	snapshot := make(map[string]any, len(data))

	err = json.Unmarshal(payload, &snapshot)
	if err != nil {
		return maps.Clone(data)
	}

	return snapshot
}

func countResults(results []models.ActionResult) (executed, skipped int) {
	for _, result := range results {
		switch result.Status {
		case models.ActionResultSkipped:
			skipped++
		case models.ActionResultSuccess, models.ActionResultFailure:
			executed++
		}
	}

	return executed, skipped
}

func (x *Executor) publishStarted(ctx context.Context, workflow *models.Workflow, execution *models.WorkflowExecution) {
	event := events.ExecutionStarted{
		BaseEvent:    events.NewBaseEvent(events.ExecutionStartedEvent, workflow.ID),
		ExecutionID:  execution.ID,
		WorkflowName: workflow.Name,
		TriggerID:    execution.TriggerID,
		TriggeredBy:  execution.TriggeredBy,
	}

	err := x.publisher.Publish(ctx, workflow.ID, event)
	if err != nil {
		x.logger.ErrorContext(ctx, "Failed to publish execution started event", "error", err)
	}
}

func (x *Executor) publishCompleted(ctx context.Context, workflow *models.Workflow, execution *models.WorkflowExecution, executed, skipped int) {
	event := events.ExecutionCompleted{
		BaseEvent:       events.NewBaseEvent(events.ExecutionCompletedEvent, workflow.ID),
		ExecutionID:     execution.ID,
		DurationMs:      executionDurationMs(execution),
		ActionsExecuted: executed,
		ActionsSkipped:  skipped,
	}

	err := x.publisher.Publish(ctx, workflow.ID, event)
	if err != nil {
		x.logger.ErrorContext(ctx, "Failed to publish execution completed event", "error", err)
	}
}

func (x *Executor) publishFailed(ctx context.Context, workflow *models.Workflow, execution *models.WorkflowExecution, failedActionID string, executed int) {
	event := events.ExecutionFailed{
		BaseEvent:       events.NewBaseEvent(events.ExecutionFailedEvent, workflow.ID),
		ExecutionID:     execution.ID,
		DurationMs:      executionDurationMs(execution),
		Error:           execution.Error,
		FailedActionID:  failedActionID,
		ActionsExecuted: executed,
	}

	err := x.publisher.Publish(ctx, workflow.ID, event)
	if err != nil {
		x.logger.ErrorContext(ctx, "Failed to publish execution failed event", "error", err)
	}
}

func executionDurationMs(execution *models.WorkflowExecution) int64 {
	if execution.StartedAt == nil || execution.FinishedAt == nil {
		return 0
	}

	return execution.FinishedAt.Sub(*execution.StartedAt).Milliseconds()
}
