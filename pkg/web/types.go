// Package web provides the HTTP API for workflow management, manual runs,
// the execution audit log and domain event intake.
package web

import "github.com/taskmill/taskmill/pkg/models"

// CreateWorkflowRequest is the request body for creating a workflow. Trigger
// and action IDs may be omitted; the service assigns them.
type CreateWorkflowRequest struct {
	Name        string                    `json:"name"        validate:"required,min=3"`
	Description string                    `json:"description"`
	Owner       string                    `json:"owner"`
	Status      models.WorkflowStatus     `json:"status"      validate:"omitempty,oneof=active inactive draft"`
	MaxRetries  int                       `json:"max_retries" validate:"min=0"`
	Triggers    []*models.WorkflowTrigger `json:"triggers"    validate:"required,min=1"`
	Actions     []*models.WorkflowAction  `json:"actions"     validate:"required,min=1"`
}

// UpdateWorkflowRequest is the request body for updating a workflow. All
// fields are optional to support partial updates; triggers and actions are
// replaced wholesale when present.
type UpdateWorkflowRequest struct {
	Name        *string                   `json:"name,omitempty"        validate:"omitempty,min=3"`
	Description *string                   `json:"description,omitempty"`
	Status      *models.WorkflowStatus    `json:"status,omitempty"      validate:"omitempty,oneof=active inactive draft"`
	MaxRetries  *int                      `json:"max_retries,omitempty" validate:"omitempty,min=0"`
	Triggers    []*models.WorkflowTrigger `json:"triggers,omitempty"`
	Actions     []*models.WorkflowAction  `json:"actions,omitempty"`
}

// RunWorkflowRequest is the request body for a manual workflow run.
type RunWorkflowRequest struct {
	Data   map[string]any `json:"data"`
	UserID string         `json:"user_id"`
}

// IngestEventRequest is the request body for publishing a domain event.
type IngestEventRequest struct {
	EventType string         `json:"event_type" validate:"required"`
	Source    string         `json:"source"`
	Data      map[string]any `json:"data"`
}

// ActionTypeResponse describes one registered action kind.
type ActionTypeResponse struct {
	Type   string         `json:"type"`
	Schema map[string]any `json:"schema,omitempty"`
}
