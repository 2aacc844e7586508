package models

import "time"

// ExecutionStatus represents the state of one workflow invocation.
// Transitions: pending -> running -> completed | failed. Terminal states are
// final; the execution record is an append-only audit artifact afterwards.
type ExecutionStatus string

const (
	ExecutionStatusPending   ExecutionStatus = "pending"
	ExecutionStatusRunning   ExecutionStatus = "running"
	ExecutionStatusCompleted ExecutionStatus = "completed"
	ExecutionStatusFailed    ExecutionStatus = "failed"
)

// ActionResultStatus classifies one entry of an execution's result list.
type ActionResultStatus string

const (
	ActionResultSuccess ActionResultStatus = "success"
	ActionResultFailure ActionResultStatus = "failure"
	ActionResultSkipped ActionResultStatus = "skipped"
)

// ActionResult records the outcome of a single action within an execution.
type ActionResult struct {
	ActionID   string             `json:"action_id"`
	ActionType ActionType         `json:"action_type"`
	Status     ActionResultStatus `json:"status"`
	Output     map[string]any     `json:"output,omitempty"`
	Error      string             `json:"error,omitempty"`
}

// WorkflowExecution is one concrete, audited run of a workflow's actions
// against a context snapshot. TriggerID and TriggeredBy are empty for
// manual runs without an originating trigger or user.
type WorkflowExecution struct {
	ID              string          `json:"id"`
	WorkflowID      string          `json:"workflow_id"`
	TriggerID       string          `json:"trigger_id,omitempty"`
	TriggeredBy     string          `json:"triggered_by,omitempty"`
	Status          ExecutionStatus `json:"status"`
	Error           string          `json:"error,omitempty"`
	ContextSnapshot map[string]any  `json:"context_snapshot"`
	Results         []ActionResult  `json:"results"`
	MaxAttempts     int             `json:"max_attempts"`
	CreatedAt       time.Time       `json:"created_at"`
	StartedAt       *time.Time      `json:"started_at,omitempty"`
	FinishedAt      *time.Time      `json:"finished_at,omitempty"`
}

// IsTerminal reports whether the execution reached a final state.
func (e *WorkflowExecution) IsTerminal() bool {
	return e.Status == ExecutionStatusCompleted || e.Status == ExecutionStatusFailed
}

// Start transitions the execution from pending to running.
func (e *WorkflowExecution) Start() {
	now := time.Now().UTC()
	e.Status = ExecutionStatusRunning
	e.StartedAt = &now
}

// Complete marks the execution as completed with the full ordered result list.
// It is a no-op on executions that already reached a terminal state.
func (e *WorkflowExecution) Complete(results []ActionResult) {
	if e.IsTerminal() {
		return
	}

	now := time.Now().UTC()
	e.Status = ExecutionStatusCompleted
	e.Results = results
	e.FinishedAt = &now
}

// Fail marks the execution as failed, keeping whatever partial results were
// gathered before the abort. It is a no-op on terminal executions.
func (e *WorkflowExecution) Fail(reason string, results []ActionResult) {
	if e.IsTerminal() {
		return
	}

	now := time.Now().UTC()
	e.Status = ExecutionStatusFailed
	e.Error = reason
	e.Results = results
	e.FinishedAt = &now
}
