package engine

import (
	"log/slog"
	"sort"

	"github.com/taskmill/taskmill/pkg/models"
)

// TriggerMatch pairs a workflow with one of its triggers that matched an
// incoming domain event.
type TriggerMatch struct {
	Workflow *models.Workflow
	Trigger  *models.WorkflowTrigger
}

// TriggerMatcher decides which workflow triggers fire for a domain event.
type TriggerMatcher struct {
	logger *slog.Logger
}

// NewTriggerMatcher creates a new trigger matcher.
func NewTriggerMatcher(logger *slog.Logger) *TriggerMatcher {
	return &TriggerMatcher{
		logger: logger.With("module", "trigger_matcher"),
	}
}

// Match returns every active trigger of an active workflow whose event type
// equals eventType and whose condition holds against data. Results are
// ordered by workflow ID, then trigger ID, so repeated runs over the same
// definitions fire in the same sequence.
func (tm *TriggerMatcher) Match(eventType string, data map[string]any, workflows []*models.Workflow) []TriggerMatch {
	matches := make([]TriggerMatch, 0)

	for _, workflow := range workflows {
		if !workflow.IsExecutable() {
			continue
		}

		for _, trigger := range workflow.Triggers {
			if !trigger.IsActive || trigger.EventType != eventType {
				continue
			}

			holds, err := trigger.Condition.Evaluate(data)
			if err != nil {
				tm.logger.Warn("Trigger condition evaluation failed, treating as non-match",
					"workflow_id", workflow.ID,
					"trigger_id", trigger.ID,
					"error", err)
			}

			if !holds {
				continue
			}

			matches = append(matches, TriggerMatch{Workflow: workflow, Trigger: trigger})
		}
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Workflow.ID != matches[j].Workflow.ID {
			return matches[i].Workflow.ID < matches[j].Workflow.ID
		}

		return matches[i].Trigger.ID < matches[j].Trigger.ID
	})

	tm.logger.Debug("Completed trigger matching",
		"event_type", eventType,
		"workflows_considered", len(workflows),
		"matches_found", len(matches))

	return matches
}
