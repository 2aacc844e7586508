package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/taskmill/taskmill/pkg/eventbus"
	"github.com/taskmill/taskmill/pkg/events"
)

// EventIntake accepts domain events from the platform and publishes them for
// the dispatcher to consume.
type EventIntake struct {
	publisher eventbus.DomainEventPublisher
}

// NewEventIntake creates a new event intake service.
func NewEventIntake(publisher eventbus.DomainEventPublisher) *EventIntake {
	return &EventIntake{publisher: publisher}
}

// Ingest validates and publishes a domain event. An empty event ID is
// assigned; an empty source defaults to "api".
func (s *EventIntake) Ingest(ctx context.Context, eventType, source string, data map[string]any) (*events.DomainEvent, error) {
	if !knownEventType(eventType) {
		return nil, NewValidationError("Ingest", "UNKNOWN_EVENT_TYPE",
			fmt.Sprintf("unknown event type '%s'", eventType), ErrUnknownEventType)
	}

	if source == "" {
		source = "api"
	}

	event := events.NewDomainEvent(uuid.New().String(), eventType, source, data)

	err := s.publisher.PublishDomainEvent(ctx, event)
	if err != nil {
		return nil, fmt.Errorf("failed to publish domain event: %w", err)
	}

	return event, nil
}

func knownEventType(eventType string) bool {
	switch eventType {
	case events.TaskCreated, events.TaskUpdated, events.TaskCompleted, events.DeadlineApproaching:
		return true
	default:
		return false
	}
}
