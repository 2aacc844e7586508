// Package protocol defines the interfaces and contracts for pluggable actions.
package protocol

import (
	"context"
	"log/slog"

	"github.com/taskmill/taskmill/pkg/models"
)

// Action is one side-effecting workflow step. Execute receives the execution
// context snapshot and returns a result map recorded in the execution audit.
type Action interface {
	Execute(ctx context.Context, executionCtx models.ExecutionContext, logger *slog.Logger) (map[string]any, error)
}

// ActionFactory creates action instances for one action kind and describes
// the parameter shape it accepts.
type ActionFactory interface {
	// Create instantiates an action from the step's parameter map.
	Create(params map[string]any) (Action, error)

	// ID returns the action kind this factory serves.
	ID() string

	// Schema returns the JSON schema for the action's parameters.
	Schema() map[string]any
}
