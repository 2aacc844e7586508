package main

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	cli "github.com/urfave/cli/v3"

	"github.com/taskmill/taskmill/pkg/cmd"
	"github.com/taskmill/taskmill/pkg/log"
	"github.com/taskmill/taskmill/pkg/otelhelper"
	"github.com/taskmill/taskmill/pkg/sources/deadline"
)

func main() {
	command := &cli.Command{
		Name:                  "taskmill-dispatcher",
		Usage:                 "Consume domain events and execute matching workflows",
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "dispatcher-id",
				Aliases: []string{"id"},
				Usage:   "Custom dispatcher ID (auto-generated if not provided)",
				Value:   "",
				Sources: cli.EnvVars("DISPATCHER_ID"),
			},
			&cli.StringFlag{
				Name:     "database-url",
				Usage:    "Database connection URL for persistence",
				Required: true,
				Sources:  cli.EnvVars("DATABASE_URL"),
			},
			&cli.StringFlag{
				Name:    "event-bus",
				Usage:   "Event bus type (kafka, gochannel)",
				Value:   "kafka",
				Sources: cli.EnvVars("EVENT_BUS_TYPE"),
			},
			&cli.StringFlag{
				Name:    "deadline-schedule",
				Usage:   "Cron schedule for the deadline scanner",
				Value:   deadline.DefaultSchedule,
				Sources: cli.EnvVars("DEADLINE_SCHEDULE"),
			},
			&cli.DurationFlag{
				Name:    "deadline-window",
				Usage:   "Look-ahead window for deadline_approaching events",
				Value:   deadline.DefaultWindow,
				Sources: cli.EnvVars("DEADLINE_WINDOW"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "info",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			log.Setup(command.String("log-level"))

			dispatcherID := command.String("dispatcher-id")
			if dispatcherID == "" {
				dispatcherID = "dispatcher-" + uuid.New().String()[:8]
			}

			logger := log.WithModule("dispatcher").With("dispatcher_id", dispatcherID)
			logger.InfoContext(ctx, "Initializing Taskmill Dispatcher")

			tracer, err := otelhelper.NewTracer(ctx, "taskmill-dispatcher")
			if err != nil {
				return fmt.Errorf("failed to initialize tracer: %w", err)
			}

			persist, err := cmd.NewPersistence(ctx, logger, command.String("database-url"))
			if err != nil {
				return err
			}

			defer func() {
				err := persist.Close(ctx)
				if err != nil {
					logger.ErrorContext(ctx, "Failed to close persistence", "error", err)
				}
			}()

			mailer, err := cmd.NewMailer(logger)
			if err != nil {
				return fmt.Errorf("failed to initialize mailer: %w", err)
			}

			registry := cmd.NewRegistry(logger, persist, mailer)

			eventBus, err := cmd.NewEventBus(command.String("event-bus"), "taskmill-dispatcher", logger)
			if err != nil {
				return err
			}

			defer func() {
				err := eventBus.Close()
				if err != nil {
					logger.ErrorContext(ctx, "Failed to close event bus", "error", err)
				}
			}()

			domainBus, err := cmd.NewDomainEventBus(command.String("event-bus"), "taskmill-dispatcher", logger)
			if err != nil {
				return err
			}

			defer func() {
				err := domainBus.Close()
				if err != nil {
					logger.ErrorContext(ctx, "Failed to close domain event bus", "error", err)
				}
			}()

			dispatcher := NewDispatcher(DispatcherConfig{
				ID:               dispatcherID,
				Logger:           logger,
				Persistence:      persist,
				Registry:         registry,
				EventBus:         eventBus,
				DomainBus:        domainBus,
				Tracer:           tracer,
				DeadlineSchedule: command.String("deadline-schedule"),
				DeadlineWindow:   command.Duration("deadline-window"),
			})

			return dispatcher.Run(ctx)
		},
	}

	err := command.Run(context.Background(), os.Args)
	if err != nil {
		panic(err)
	}
}
