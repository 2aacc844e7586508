package events

import "errors"

// ErrInvalidEventData is returned when a domain event cannot be parsed or is
// missing required fields.
var ErrInvalidEventData = errors.New("invalid event data")

// Event types emitted by the project management platform. Workflow triggers
// match against these values.
const (
	TaskCreated         = "task_created"
	TaskUpdated         = "task_updated"
	TaskCompleted       = "task_completed"
	DeadlineApproaching = "deadline_approaching"
)

// DomainEvent is an event from the project management platform that may
// trigger workflows. The dispatcher consumes these and hands them to the
// engine, which matches them against workflow triggers.
type DomainEvent struct {
	// ID uniquely identifies this event occurrence.
	ID string `json:"id" validate:"required"`

	// EventType names what happened, e.g. "task_created" or
	// "deadline_approaching". Trigger matching is exact on this value.
	EventType string `json:"event_type" validate:"required"`

	// Source identifies the emitter, e.g. "api", "deadline-scanner".
	Source string `json:"source"`

	// Data carries the event payload. For task events this holds the task
	// fields under the "task" key plus any top-level attributes; the whole
	// map is exposed to trigger conditions and action templates.
	Data map[string]any `json:"data"`
}

// NewDomainEvent creates a DomainEvent with the provided parameters.
func NewDomainEvent(id, eventType, source string, data map[string]any) *DomainEvent {
	if data == nil {
		data = make(map[string]any)
	}

	return &DomainEvent{
		ID:        id,
		EventType: eventType,
		Source:    source,
		Data:      data,
	}
}

// GetDataMap safely extracts a nested map from the event data.
func (e *DomainEvent) GetDataMap(key string) (map[string]any, bool) {
	value, exists := e.Data[key]
	if !exists {
		return nil, false
	}

	mapValue, ok := value.(map[string]any)

	return mapValue, ok
}

// Validate performs basic validation on the event structure.
func (e *DomainEvent) Validate() error {
	if e.ID == "" {
		return errors.New("id is required")
	}

	if e.EventType == "" {
		return errors.New("event_type is required")
	}

	return nil
}
