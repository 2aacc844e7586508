// Package delay provides the delay workflow action.
//
// The action blocks the execution until the configured duration elapses.
// Workflow executions run inline with the event that caused them, so a long
// delay holds that caller for its full duration; schedule such workflows
// behind the dispatcher rather than the synchronous API path.
package delay

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/taskmill/taskmill/pkg/models"
)

// ErrInvalidSeconds is returned when the 'seconds' parameter is absent or not
// a positive number.
var ErrInvalidSeconds = errors.New("invalid 'seconds' parameter")

// Action pauses the execution for a configured number of seconds. Context
// cancellation interrupts the pause.
type Action struct {
	Duration time.Duration
}

// NewAction creates a delay action from the step parameters.
func NewAction(params map[string]any) (*Action, error) {
	seconds, ok := toFloat(params["seconds"])
	if !ok || seconds < 0 {
		return nil, ErrInvalidSeconds
	}

	return &Action{Duration: time.Duration(seconds * float64(time.Second))}, nil
}

func toFloat(raw any) (float64, bool) {
	switch v := raw.(type) {
	case int:
		return float64(v), true
	case float64:
		return v, true
	default:
		return 0, false
	}
}

func (a *Action) Execute(ctx context.Context, _ models.ExecutionContext, logger *slog.Logger) (map[string]any, error) {
	logger.InfoContext(ctx, "Delaying execution", "duration", a.Duration)

	timer := time.NewTimer(a.Duration)
	defer timer.Stop()

	select {
	case <-timer.C:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	return map[string]any{
		"delayed_seconds": a.Duration.Seconds(),
	}, nil
}
