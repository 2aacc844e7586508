package eventbus

import (
	"context"

	"github.com/taskmill/taskmill/pkg/events"
)

// DomainEventHandler is called for each domain event received from the
// project management platform.
type DomainEventHandler func(ctx context.Context, event *events.DomainEvent) error

// DomainEventPublisher publishes domain events.
type DomainEventPublisher interface {
	PublishDomainEvent(ctx context.Context, event *events.DomainEvent) error
}

// DomainEventSubscriber subscribes to domain events.
type DomainEventSubscriber interface {
	HandleDomainEvents(handler DomainEventHandler) error
	SubscribeToDomainEvents(ctx context.Context) error
}

// DomainEventBus combines publishing and subscribing for domain events.
type DomainEventBus interface {
	DomainEventPublisher
	DomainEventSubscriber
	Close() error
}
