package models

// WorkflowTrigger pairs a domain event type with an optional condition.
// Whenever a matching event occurs system-wide, active triggers of active
// workflows whose condition holds start an execution.
type WorkflowTrigger struct {
	ID           string     `json:"id"            validate:"required"`
	WorkflowID   string     `json:"workflow_id"`
	EventType    string     `json:"event_type"    validate:"required,min=3"`
	Condition    *Condition `json:"condition,omitempty"`
	IsActive     bool       `json:"is_active"`
	TriggerCount int64      `json:"trigger_count"`
}
