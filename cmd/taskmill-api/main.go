package main

import (
	"context"
	"fmt"
	"os"

	cli "github.com/urfave/cli/v3"

	"github.com/taskmill/taskmill/pkg/cmd"
	"github.com/taskmill/taskmill/pkg/log"
	"github.com/taskmill/taskmill/pkg/otelhelper"
)

const defaultPort = 9091

func main() {
	logger := log.WithModule("api")

	command := &cli.Command{
		Name:                  "taskmill-api",
		Usage:                 "Create and manage workflows",
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port to run the API server on",
				Value:   defaultPort,
				Sources: cli.EnvVars("PORT"),
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
				Value:   "gochannel",
				Sources: cli.EnvVars("EVENT_BUS_TYPE"),
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

			logger.InfoContext(ctx, "Initializing Taskmill API")

			tracer, err := otelhelper.NewTracer(ctx, "taskmill-api")
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

			eventBus, err := cmd.NewEventBus(command.String("event-bus"), "taskmill-api", logger)
			if err != nil {
				return err
			}

			defer func() {
				err := eventBus.Close()
				if err != nil {
					logger.ErrorContext(ctx, "Failed to close event bus", "error", err)
				}
			}()

			domainBus, err := cmd.NewDomainEventBus(command.String("event-bus"), "taskmill-api", logger)
			if err != nil {
				return err
			}

			defer func() {
				err := domainBus.Close()
				if err != nil {
					logger.ErrorContext(ctx, "Failed to close domain event bus", "error", err)
				}
			}()

			api := NewAPI(logger, persist, registry, eventBus, domainBus, tracer)

			return api.Start(command.Int("port"))
		},
	}

	err := command.Run(context.Background(), os.Args)
	if err != nil {
		panic(err)
	}
}
