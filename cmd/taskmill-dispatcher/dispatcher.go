// Package main provides the Taskmill dispatcher: it consumes domain events,
// runs matching workflows through the engine and hosts the deadline scanner.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/taskmill/taskmill/pkg/engine"
	"github.com/taskmill/taskmill/pkg/eventbus"
	"github.com/taskmill/taskmill/pkg/events"
	"github.com/taskmill/taskmill/pkg/log"
	"github.com/taskmill/taskmill/pkg/persistence"
	"github.com/taskmill/taskmill/pkg/registry"
	"github.com/taskmill/taskmill/pkg/sources/deadline"
)

// DispatcherConfig carries the collaborators the dispatcher needs.
type DispatcherConfig struct {
	ID               string
	Logger           *slog.Logger
	Persistence      persistence.Persistence
	Registry         *registry.Registry
	EventBus         eventbus.EventBus
	DomainBus        eventbus.DomainEventBus
	Tracer           trace.Tracer
	DeadlineSchedule string
	DeadlineWindow   time.Duration
}

// Dispatcher ties the domain event subscription to the engine and runs the
// deadline scanner alongside.
type Dispatcher struct {
	id        string
	logger    *slog.Logger
	engine    *engine.Engine
	domainBus eventbus.DomainEventBus
	scanner   *deadline.Scanner
	schedule  string
}

func NewDispatcher(cfg DispatcherConfig) *Dispatcher {
	eng := engine.New(cfg.Logger, cfg.Persistence, cfg.Registry, cfg.EventBus, cfg.Tracer)

	scanner := deadline.NewScanner(
		cfg.Logger,
		cfg.Persistence.TaskRepository(),
		cfg.DomainBus,
		cfg.DeadlineWindow,
	)

	return &Dispatcher{
		id:        cfg.ID,
		logger:    cfg.Logger,
		engine:    eng,
		domainBus: cfg.DomainBus,
		scanner:   scanner,
		schedule:  cfg.DeadlineSchedule,
	}
}

// Run starts the domain event subscription and the deadline scanner, then
// blocks until the context is cancelled or a termination signal arrives.
func (d *Dispatcher) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := d.domainBus.HandleDomainEvents(d.handleDomainEvent)
	if err != nil {
		return err
	}

	err = d.domainBus.SubscribeToDomainEvents(ctx)
	if err != nil {
		return err
	}

	err = d.scanner.Start(ctx, d.schedule)
	if err != nil {
		return err
	}

	d.logger.InfoContext(ctx, "Dispatcher started")

	<-ctx.Done()

	d.logger.Info("Dispatcher shutting down")

	stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return d.scanner.Stop(stopCtx)
}

// handleDomainEvent runs every matching workflow synchronously. Execution
// failures are recorded on the execution records; only infrastructure errors
// propagate and Nack the message for redelivery.
func (d *Dispatcher) handleDomainEvent(ctx context.Context, event *events.DomainEvent) error {
	// The bus scopes the context logger with event_id and event_type.
	logger := log.FromContext(ctx).With("source", event.Source)

	if task, ok := event.GetDataMap("task"); ok {
		logger = logger.With("task_id", task["id"])
	}

	logger.InfoContext(ctx, "Received domain event")

	executions, err := d.engine.NotifyEvent(ctx, event.EventType, event.Data)
	if err != nil {
		return err
	}

	if len(executions) > 0 {
		logger.InfoContext(ctx, "Domain event processed", "executions", len(executions))
	}

	return nil
}
