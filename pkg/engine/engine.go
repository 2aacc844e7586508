// Package engine matches domain events to workflow triggers and executes the
// matched workflows.
package engine

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/taskmill/taskmill/pkg/eventbus"
	"github.com/taskmill/taskmill/pkg/models"
	"github.com/taskmill/taskmill/pkg/otelhelper"
	"github.com/taskmill/taskmill/pkg/persistence"
	"github.com/taskmill/taskmill/pkg/registry"
)

// Engine is the entry point for both event-driven and manual workflow
// execution. All collaborators are injected; the engine holds no global
// state.
type Engine struct {
	logger      *slog.Logger
	persistence persistence.Persistence
	matcher     *TriggerMatcher
	executor    *Executor
	tracer      trace.Tracer
}

// New creates an engine wired to the given persistence, action registry and
// event publisher.
func New(
	logger *slog.Logger,
	persist persistence.Persistence,
	reg *registry.Registry,
	publisher eventbus.EventPublisher,
	tracer trace.Tracer,
) *Engine {
	return &Engine{
		logger:      logger.With("module", "engine"),
		persistence: persist,
		matcher:     NewTriggerMatcher(logger),
		executor:    NewExecutor(logger, persist, reg, publisher, tracer),
		tracer:      tracer,
	}
}

// NotifyEvent matches the domain event against all active workflows and
// executes each match synchronously, in deterministic trigger order. Every
// matched trigger's counter is incremented whether or not its execution
// succeeds. Executions that fail do not prevent later matches from running.
func (e *Engine) NotifyEvent(ctx context.Context, eventType string, data map[string]any) ([]*models.WorkflowExecution, error) {
	ctx, span := otelhelper.StartSpan(ctx, e.tracer, "engine.notify_event",
		attribute.String(otelhelper.EventTypeKey, eventType),
	)
	defer span.End()

	if data == nil {
		data = make(map[string]any)
	}

	e.hydrateContext(ctx, data)

	workflows, err := e.persistence.WorkflowRepository().ListByStatus(ctx, models.WorkflowStatusActive)
	if err != nil {
		otelhelper.SetError(span, err)

		return nil, fmt.Errorf("failed to list active workflows: %w", err)
	}

	matches := e.matcher.Match(eventType, data, workflows)

	executions := make([]*models.WorkflowExecution, 0, len(matches))

	for _, match := range matches {
		err := e.persistence.WorkflowRepository().IncrementTriggerCount(ctx, match.Workflow.ID, match.Trigger.ID)
		if err != nil {
			e.logger.ErrorContext(ctx, "Failed to increment trigger count",
				"workflow_id", match.Workflow.ID,
				"trigger_id", match.Trigger.ID,
				"error", err)
		}

		execution, err := e.executor.Run(ctx, match.Workflow, data, "event:"+eventType, match.Trigger)
		if err != nil {
			e.logger.ErrorContext(ctx, "Workflow execution aborted on infrastructure failure",
				"workflow_id", match.Workflow.ID,
				"error", err)
			otelhelper.SetError(span, err)

			continue
		}

		executions = append(executions, execution)
	}

	return executions, nil
}

// RunWorkflow executes a single workflow outside any trigger, on behalf of
// userID. The inactive-workflow guard still applies and yields a failed
// execution record rather than an error.
func (e *Engine) RunWorkflow(ctx context.Context, workflowID string, data map[string]any, userID string) (*models.WorkflowExecution, error) {
	ctx, span := otelhelper.StartSpan(ctx, e.tracer, "engine.run_workflow",
		attribute.String(otelhelper.WorkflowIDKey, workflowID),
	)
	defer span.End()

	workflow, err := e.persistence.WorkflowRepository().GetByID(ctx, workflowID)
	if err != nil {
		otelhelper.SetError(span, err)

		return nil, err
	}

	if data == nil {
		data = make(map[string]any)
	}

	e.hydrateContext(ctx, data)

	triggeredBy := "manual"
	if userID != "" {
		triggeredBy = "user:" + userID
	}

	return e.executor.Run(ctx, workflow, data, triggeredBy, nil)
}

// hydrateContext replaces serialized task references in the context with the
// stored task record, so handlers that mutate the task operate on the
// canonical copy. Events arriving over the bus carry the task as a plain
// JSON map; an in-process caller may already pass *models.Task.
func (e *Engine) hydrateContext(ctx context.Context, data map[string]any) {
	raw, ok := data["task"]
	if !ok {
		return
	}

	if _, ok := raw.(*models.Task); ok {
		return
	}

	taskMap, ok := raw.(map[string]any)
	if !ok {
		return
	}

	taskID, ok := taskMap["id"].(string)
	if !ok || taskID == "" {
		return
	}

	task, err := e.persistence.TaskRepository().GetByID(ctx, taskID)
	if err != nil {
		e.logger.WarnContext(ctx, "Failed to hydrate task from context, keeping raw payload",
			"task_id", taskID,
			"error", err)

		return
	}

	data["task"] = task
}
