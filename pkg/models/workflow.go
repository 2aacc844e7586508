// Package models defines the core domain models for workflow automation.
package models

import (
	"sort"
	"time"
)

// WorkflowStatus represents the lifecycle state of a workflow.
type WorkflowStatus string

const (
	WorkflowStatusActive   WorkflowStatus = "active"   // Executable, triggers are live
	WorkflowStatusInactive WorkflowStatus = "inactive" // Paused, triggers ignored
	WorkflowStatusDraft    WorkflowStatus = "draft"    // Editable, never executed
)

// Workflow is a named, ordered set of actions gated by triggers.
type Workflow struct {
	ID             string             `json:"id"`
	Name           string             `json:"name"                      validate:"required,min=3"`
	Description    string             `json:"description"`
	Status         WorkflowStatus     `json:"status"                    validate:"required,oneof=active inactive draft"`
	Owner          string             `json:"owner"`
	MaxRetries     int                `json:"max_retries"               validate:"min=0"`
	ExecutionCount int64              `json:"execution_count"`
	Triggers       []*WorkflowTrigger `json:"triggers"                  validate:"dive"`
	Actions        []*WorkflowAction  `json:"actions"                   validate:"dive"`
	CreatedAt      time.Time          `json:"created_at"`
	UpdatedAt      time.Time          `json:"updated_at"`
	DeletedAt      *time.Time         `json:"deleted_at,omitempty"`
}

// IsExecutable reports whether the workflow may be run.
func (w *Workflow) IsExecutable() bool {
	return w.Status == WorkflowStatusActive
}

// ActiveActions returns the enabled actions sorted by ascending order.
func (w *Workflow) ActiveActions() []*WorkflowAction {
	actions := make([]*WorkflowAction, 0, len(w.Actions))

	for _, action := range w.Actions {
		if action.IsActive {
			actions = append(actions, action)
		}
	}

	sort.SliceStable(actions, func(i, j int) bool {
		return actions[i].Order < actions[j].Order
	})

	return actions
}

// TriggerByID returns the trigger with the given ID, or nil.
func (w *Workflow) TriggerByID(id string) *WorkflowTrigger {
	for _, trigger := range w.Triggers {
		if trigger.ID == id {
			return trigger
		}
	}

	return nil
}
