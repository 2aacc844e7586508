// Package main provides the Taskmill API server implementation.
package main

import (
	"log/slog"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	fiberlogger "github.com/gofiber/fiber/v3/middleware/logger"
	"go.opentelemetry.io/otel/trace"

	"github.com/taskmill/taskmill/pkg/engine"
	"github.com/taskmill/taskmill/pkg/eventbus"
	"github.com/taskmill/taskmill/pkg/persistence"
	"github.com/taskmill/taskmill/pkg/registry"
	"github.com/taskmill/taskmill/pkg/services"
	"github.com/taskmill/taskmill/pkg/web"
)

type API struct {
	logger      *slog.Logger
	persistence persistence.Persistence
	registry    *registry.Registry
	eventBus    eventbus.EventBus
	domainBus   eventbus.DomainEventBus
	tracer      trace.Tracer
	validate    *validator.Validate
}

func NewAPI(
	logger *slog.Logger,
	persist persistence.Persistence,
	reg *registry.Registry,
	eventBus eventbus.EventBus,
	domainBus eventbus.DomainEventBus,
	tracer trace.Tracer,
) *API {
	return &API{
		logger:      logger,
		persistence: persist,
		registry:    reg,
		eventBus:    eventBus,
		domainBus:   domainBus,
		tracer:      tracer,
		validate:    validator.New(),
	}
}

func (a *API) App() *fiber.App {
	eng := engine.New(a.logger, a.persistence, a.registry, a.eventBus, a.tracer)

	handlers := web.NewAPIHandlers(
		services.NewWorkflow(a.persistence, a.registry),
		services.NewExecution(eng, a.persistence),
		services.NewEventIntake(a.domainBus),
		a.validate,
		a.registry,
	)

	app := fiber.New()
	app.Use(cors.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		DisableColors: true,
	}))

	app.Get(healthcheck.DefaultLivenessEndpoint, healthcheck.NewHealthChecker())
	app.Get(healthcheck.DefaultReadinessEndpoint, healthcheck.NewHealthChecker())

	app.Get("/", func(c fiber.Ctx) error {
		return c.SendString("Taskmill API")
	})

	web.RegisterRoutes(app, handlers)

	return app
}

func (a *API) Start(port int) error {
	return a.App().Listen(":" + strconv.Itoa(port))
}
