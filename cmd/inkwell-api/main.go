package main

import (
	"context"
	"os"

	cli "github.com/urfave/cli/v3"

	"github.com/inkwell-ai/inkwell/pkg/cmd"
	"github.com/inkwell-ai/inkwell/pkg/config"
	"github.com/inkwell-ai/inkwell/pkg/generation"
	"github.com/inkwell-ai/inkwell/pkg/illustrator"
	"github.com/inkwell-ai/inkwell/pkg/log"
	"github.com/inkwell-ai/inkwell/pkg/web"
)

const defaultPort = 9091

func main() {
	command := &cli.Command{
		Name:                  "inkwell-api",
		Usage:                 "Create and manage blog creation sessions",
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
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to the configuration file",
				Sources: cli.EnvVars("INKWELL_CONFIG"),
			},
			&cli.StringFlag{
				Name:    "database-url",
				Usage:   "Database connection URL for persistence",
				Sources: cli.EnvVars("DATABASE_URL"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
		},
		Action: runAPI,
	}

	if err := command.Run(context.Background(), os.Args); err != nil {
		panic(err)
	}
}

func runAPI(ctx context.Context, command *cli.Command) error {
	cfg, err := config.Load(command.String("config"))
	if err != nil {
		return err
	}

	if v := command.String("database-url"); v != "" {
		cfg.DatabaseURL = v
	}

	if v := command.String("log-level"); v != "" {
		cfg.LogLevel = v
	}

	log.Setup(cfg.LogLevel)

	logger := log.WithModule("api")
	logger.InfoContext(ctx, "Initializing Inkwell API")

	repo, err := cmd.NewPersistence(cfg.DatabaseURL)
	if err != nil {
		return err
	}

	defer func() {
		if err := repo.Close(ctx); err != nil {
			logger.ErrorContext(ctx, "Failed to close persistence", "error", err)
		}
	}()

	eventBus := cmd.NewEventBus(logger)
	defer func() {
		if err := eventBus.Close(); err != nil {
			logger.ErrorContext(ctx, "Failed to close event bus", "error", err)
		}
	}()

	client, err := generation.NewClient(generation.Config{
		APIKey:  cfg.LLM.APIKey,
		Model:   cfg.LLM.Model,
		BaseURL: cfg.LLM.BaseURL,
	}, logger)
	if err != nil {
		return err
	}

	imageGenerator, err := illustrator.NewOpenAIImageGenerator(cfg.LLM.APIKey, cfg.Images.Model, cfg.LLM.BaseURL)
	if err != nil {
		return err
	}

	broker := web.NewProgressBroker(logger)
	runner := web.NewRunner(repo, web.Capabilities{
		Styles:         client,
		Drafts:         client,
		SourceReviewer: client,
		StyleReviewer:  client,
		Illustrator:    illustrator.NewPipeline(imageGenerator, logger, nil),
	}, eventBus, logger)
	defer runner.Shutdown()

	api := NewAPI(logger, repo, runner, broker, eventBus)

	return api.Start(ctx, command.Int("port"))
}
