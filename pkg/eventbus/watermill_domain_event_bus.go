package eventbus

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/taskmill/taskmill/pkg/events"
	"github.com/taskmill/taskmill/pkg/log"
)

// watermillDomainEventBus implements DomainEventBus on top of any Watermill
// publisher and subscriber pair, so the same code serves the in-memory
// channel and Kafka.
type watermillDomainEventBus struct {
	publisher  message.Publisher
	subscriber message.Subscriber
	handlers   []DomainEventHandler
	logger     *slog.Logger
}

// NewWatermillDomainEventBus creates a domain event bus over the given
// publisher and subscriber.
func NewWatermillDomainEventBus(logger *slog.Logger, pub message.Publisher, sub message.Subscriber) DomainEventBus {
	return &watermillDomainEventBus{
		publisher:  pub,
		subscriber: sub,
		handlers:   make([]DomainEventHandler, 0),
		logger:     logger.With("module", "domain-event-bus"),
	}
}

func (b *watermillDomainEventBus) PublishDomainEvent(ctx context.Context, event *events.DomainEvent) error {
	err := event.Validate()
	if err != nil {
		return err
	}

	payload, err := json.Marshal(event)
	if err != nil {
		b.logger.ErrorContext(ctx, "Failed to marshal domain event", "error", err, "event_id", event.ID)

		return err
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.Metadata.Set(events.EventMetadataKey, event.ID)
	msg.Metadata.Set(events.EventTypeMetadataKey, event.EventType)
	msg.Metadata.Set("source", event.Source)

	b.logger.DebugContext(ctx, "Publishing domain event",
		"event_id", event.ID,
		"event_type", event.EventType,
		"topic", events.DomainEventsTopic)

	return b.publisher.Publish(events.DomainEventsTopic, msg)
}

func (b *watermillDomainEventBus) HandleDomainEvents(handler DomainEventHandler) error {
	b.handlers = append(b.handlers, handler)

	return nil
}

func (b *watermillDomainEventBus) SubscribeToDomainEvents(ctx context.Context) error {
	if len(b.handlers) == 0 {
		b.logger.Warn("No handlers registered for domain events")

		return nil
	}

	messages, err := b.subscriber.Subscribe(ctx, events.DomainEventsTopic)
	if err != nil {
		return err
	}

	b.logger.InfoContext(ctx, "Domain event subscription started", "topic", events.DomainEventsTopic)

	go func() {
		for msg := range messages {
			var event events.DomainEvent

			err := json.Unmarshal(msg.Payload, &event)
			if err != nil {
				b.logger.Error("Failed to unmarshal domain event", "error", err, "message_id", msg.UUID)
				msg.Nack()

				continue
			}

			// Handlers get an event-scoped logger via log.FromContext.
			handlerCtx := log.IntoContext(ctx, b.logger.With(
				"event_id", event.ID,
				"event_type", event.EventType,
			))

			success := true

			for _, handler := range b.handlers {
				err := handler(handlerCtx, &event)
				if err != nil {
					b.logger.Error("Domain event handler failed",
						"error", err,
						"event_id", event.ID,
						"event_type", event.EventType)

					success = false
				}
			}

			if success {
				msg.Ack()
			} else {
				msg.Nack()
			}
		}
	}()

	return nil
}

func (b *watermillDomainEventBus) Close() error {
	err := b.publisher.Close()
	if err != nil {
		return err
	}

	return b.subscriber.Close()
}
