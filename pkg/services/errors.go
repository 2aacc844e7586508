// Package services provides the application layer between the HTTP API and
// the engine/persistence: request validation, workflow CRUD, manual runs,
// execution queries and domain event intake.
package services

import (
	"errors"
	"fmt"
)

// Business logic errors. These indicate client errors (4xx responses).
var (
	ErrInvalidRequest = errors.New("invalid request")

	ErrWorkflowNameRequired = errors.New("workflow name is required")
	ErrTriggersRequired     = errors.New("workflow must have at least one trigger")
	ErrActionsRequired      = errors.New("workflow must have at least one action")
	ErrUnknownActionType    = errors.New("unknown action type")
	ErrInvalidParameters    = errors.New("invalid action parameters")
	ErrInvalidStatus        = errors.New("invalid workflow status")
	ErrWorkflowNil          = errors.New("workflow cannot be nil")

	ErrUnknownEventType = errors.New("unknown event type")
)

// ServiceError wraps service-level errors with additional context.
type ServiceError struct {
	Op      string // Operation name
	Code    string // Error code for API responses
	Message string // Human-readable message
	Err     error  // Underlying error
}

func (e *ServiceError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}

	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

func (e *ServiceError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// IsValidationError checks if an error is a validation error that should
// return HTTP 400.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidRequest) ||
		errors.Is(err, ErrWorkflowNameRequired) ||
		errors.Is(err, ErrTriggersRequired) ||
		errors.Is(err, ErrActionsRequired) ||
		errors.Is(err, ErrUnknownActionType) ||
		errors.Is(err, ErrInvalidParameters) ||
		errors.Is(err, ErrInvalidStatus) ||
		errors.Is(err, ErrWorkflowNil) ||
		errors.Is(err, ErrUnknownEventType)
}

// NewValidationError creates a new validation error with context.
func NewValidationError(op, code, message string, err error) *ServiceError {
	return &ServiceError{
		Op:      op,
		Code:    code,
		Message: message,
		Err:     err,
	}
}
