// Package main provides the Inkwell API server implementation.
package main

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/gofiber/fiber/v3/middleware/logger"

	"github.com/inkwell-ai/inkwell/pkg/eventbus"
	"github.com/inkwell-ai/inkwell/pkg/persistence"
	"github.com/inkwell-ai/inkwell/pkg/web"
)

type API struct {
	logger      *slog.Logger
	persistence persistence.SessionRepository
	runner      *web.Runner
	broker      *web.ProgressBroker
	eventBus    eventbus.EventBus
	validate    *validator.Validate
}

func NewAPI(
	logger *slog.Logger,
	persistence persistence.SessionRepository,
	runner *web.Runner,
	broker *web.ProgressBroker,
	eventBus eventbus.EventBus,
) *API {
	return &API{
		logger:      logger,
		persistence: persistence,
		runner:      runner,
		broker:      broker,
		eventBus:    eventBus,
		validate:    validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (a *API) App() *fiber.App {
	handlers := web.NewAPIHandlers(a.persistence, a.runner, a.broker, a.validate, a.logger)

	app := fiber.New()
	app.Use(cors.New())
	app.Use(logger.New(logger.Config{
		DisableColors: true,
	}))

	app.Get(healthcheck.DefaultLivenessEndpoint, healthcheck.NewHealthChecker())
	app.Get(healthcheck.DefaultReadinessEndpoint, healthcheck.NewHealthChecker())

	app.Get("/", func(c fiber.Ctx) error {
		return c.SendString("Inkwell API")
	})

	s := app.Group("/sessions")
	s.Post("/", handlers.CreateSession)
	s.Get("/", handlers.GetSessions)
	s.Get("/:id", handlers.GetSession)
	s.Get("/:id/draft", handlers.GetDraft)
	s.Post("/:id/feedback", handlers.PostFeedback)
	s.Post("/:id/reset", handlers.ResetSession)
	s.Get("/:id/progress", handlers.StreamProgress)

	app.Get("/health", handlers.HealthCheck)

	return app
}

func (a *API) Start(ctx context.Context, port int) error {
	if err := a.broker.Attach(ctx, a.eventBus); err != nil {
		return err
	}

	app := a.App()

	return app.Listen(":" + strconv.Itoa(port))
}
