// Package events defines the domain events that can trigger workflows and
// the lifecycle events emitted while executions run.
package events

import (
	"time"

	"github.com/google/uuid"
)

type EventType string

// Kafka topics.
const DomainEventsTopic = "taskmill.domain-events" // Events from the project management platform
const ExecutionsTopic = "taskmill.executions"      // Execution lifecycle events

const EventMetadataKey = "key"
const EventTypeMetadataKey = "event_type"

const (
	// Execution lifecycle events.
	ExecutionStartedEvent   EventType = "execution.started"
	ExecutionCompletedEvent EventType = "execution.completed"
	ExecutionFailedEvent    EventType = "execution.failed"
)

type BaseEvent struct {
	ID         string         `json:"id"`
	Type       EventType      `json:"type"`
	Timestamp  time.Time      `json:"timestamp"`
	WorkflowID string         `json:"workflow_id"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

func NewBaseEvent(eventType EventType, workflowID string) BaseEvent {
	return BaseEvent{
		ID:         uuid.New().String(),
		Type:       eventType,
		Timestamp:  time.Now().UTC(),
		WorkflowID: workflowID,
		Metadata:   make(map[string]any),
	}
}

type ExecutionStarted struct {
	BaseEvent

	ExecutionID  string `json:"execution_id"`
	WorkflowName string `json:"workflow_name"`
	TriggerID    string `json:"trigger_id,omitempty"`
	TriggeredBy  string `json:"triggered_by"`
}

func (e ExecutionStarted) GetType() EventType {
	return ExecutionStartedEvent
}

type ExecutionCompleted struct {
	BaseEvent

	ExecutionID     string `json:"execution_id"`
	DurationMs      int64  `json:"duration_ms"`
	ActionsExecuted int    `json:"actions_executed"`
	ActionsSkipped  int    `json:"actions_skipped"`
}

func (e ExecutionCompleted) GetType() EventType {
	return ExecutionCompletedEvent
}

type ExecutionFailed struct {
	BaseEvent

	ExecutionID     string `json:"execution_id"`
	DurationMs      int64  `json:"duration_ms"`
	Error           string `json:"error"`
	FailedActionID  string `json:"failed_action_id,omitempty"`
	ActionsExecuted int    `json:"actions_executed"`
}

func (e ExecutionFailed) GetType() EventType {
	return ExecutionFailedEvent
}
