// Package conditional provides the conditional workflow action.
package conditional

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/taskmill/taskmill/pkg/models"
)

// ErrMissingCondition is returned when the 'condition' parameter is absent.
var ErrMissingCondition = errors.New("missing 'condition' parameter")

// Action evaluates a nested condition against the execution context and
// selects the matching branch's sub-action descriptors. The selected branch
// is reported in the output; its descriptors are not dispatched.
//
// TODO: dispatch the selected branch through the executor once nested
// execution ordering and abort semantics are settled.
type Action struct {
	Condition *models.Condition
	IfTrue    []any
	IfFalse   []any
}

// NewAction creates a conditional action from the step parameters.
func NewAction(params map[string]any) (*Action, error) {
	rawCondition, ok := params["condition"].(map[string]any)
	if !ok {
		return nil, ErrMissingCondition
	}

	condition, err := parseCondition(rawCondition)
	if err != nil {
		return nil, err
	}

	ifTrue, _ := params["if_true"].([]any)
	ifFalse, _ := params["if_false"].([]any)

	return &Action{
		Condition: condition,
		IfTrue:    ifTrue,
		IfFalse:   ifFalse,
	}, nil
}

func parseCondition(raw map[string]any) (*models.Condition, error) {
	encoded, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid condition descriptor: %w", err)
	}

	var condition models.Condition

	err = json.Unmarshal(encoded, &condition)
	if err != nil {
		return nil, fmt.Errorf("invalid condition descriptor: %w", err)
	}

	if condition.IsZero() {
		return nil, ErrMissingCondition
	}

	return &condition, nil
}

func (a *Action) Execute(ctx context.Context, executionCtx models.ExecutionContext, logger *slog.Logger) (map[string]any, error) {
	holds, err := a.Condition.Evaluate(executionCtx.Data)
	if err != nil {
		logger.WarnContext(ctx, "Conditional branch condition evaluation failed", "error", err)
	}

	branch := "if_false"
	actions := a.IfFalse

	if holds {
		branch = "if_true"
		actions = a.IfTrue
	}

	logger.InfoContext(ctx, "Selected conditional branch", "branch", branch, "actions", len(actions))

	return map[string]any{
		"condition_result": holds,
		"branch":           branch,
		"actions":          actions,
	}, nil
}
