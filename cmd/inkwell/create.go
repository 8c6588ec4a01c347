package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	cli "github.com/urfave/cli/v3"

	"github.com/inkwell-ai/inkwell/pkg/cmd"
	"github.com/inkwell-ai/inkwell/pkg/config"
	"github.com/inkwell-ai/inkwell/pkg/generation"
	"github.com/inkwell-ai/inkwell/pkg/illustrator"
	"github.com/inkwell-ai/inkwell/pkg/log"
	"github.com/inkwell-ai/inkwell/pkg/persistence"
	"github.com/inkwell-ai/inkwell/pkg/session"
	"github.com/inkwell-ai/inkwell/pkg/workflow"
)

func CreateCommand() *cli.Command {
	return &cli.Command{
		Name:    "create",
		Aliases: []string{"c"},
		Usage:   "Create a blog post from an idea file",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "idea",
				Aliases: []string{"i"},
				Usage:   "Path to the idea file describing what to write about",
			},
			&cli.StringFlag{
				Name:    "writings-dir",
				Aliases: []string{"w"},
				Usage:   "Directory of writing samples used to extract your style",
			},
			&cli.StringFlag{
				Name:  "instructions",
				Usage: "Extra instructions for the writer",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Copy the final article to this path",
			},
			&cli.IntFlag{
				Name:  "max-iterations",
				Usage: "Bound on review iterations (-1 for unbounded)",
			},
			&cli.BoolFlag{
				Name:  "with-images",
				Usage: "Generate illustrations for the final article",
			},
			&cli.IntFlag{
				Name:  "max-images",
				Usage: "Maximum number of illustrations",
			},
			&cli.StringFlag{
				Name:  "image-style",
				Usage: "Style hint for generated illustrations",
			},
			&cli.StringFlag{
				Name:  "resume",
				Usage: "Resume a session by ID, or 'latest' for the most recent one",
			},
			&cli.BoolFlag{
				Name:  "reset",
				Usage: "Reset the resumed session to a fresh start",
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
		Action: runCreate,
	}
}

func runCreate(ctx context.Context, command *cli.Command) error {
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

	logger := log.WithModule("cli")

	repo, err := cmd.NewPersistence(cfg.DatabaseURL)
	if err != nil {
		return err
	}

	defer func() {
		if err := repo.Close(ctx); err != nil {
			logger.Error("Failed to close persistence", "error", err)
		}
	}()

	manager, err := openSession(ctx, command, repo, logger)
	if err != nil {
		return err
	}

	brief, err := readBrief(manager.State().IdeaPath)
	if err != nil {
		return err
	}

	client, err := generation.NewClient(generation.Config{
		APIKey:  cfg.LLM.APIKey,
		Model:   cfg.LLM.Model,
		BaseURL: cfg.LLM.BaseURL,
	}, logger)
	if err != nil {
		return err
	}

	eventBus := cmd.NewEventBus(logger)
	defer func() {
		if err := eventBus.Close(); err != nil {
			logger.Error("Failed to close event bus", "error", err)
		}
	}()

	if err := attachDisplay(ctx, eventBus); err != nil {
		return err
	}

	var images illustrator.Illustrator

	if command.Bool("with-images") {
		generator, err := illustrator.NewOpenAIImageGenerator(cfg.LLM.APIKey, cfg.Images.Model, cfg.LLM.BaseURL)
		if err != nil {
			return err
		}

		images = illustrator.NewPipeline(generator, logger, func(message string, generated, total int) {
			if total > 0 {
				fmt.Printf("  %s (%d/%d)\n", message, generated, total)
			} else {
				fmt.Printf("  %s\n", message)
			}
		})
	}

	orchestrator := workflow.NewOrchestrator(workflow.Deps{
		Session:        manager,
		Repo:           repo,
		Styles:         client,
		Drafts:         client,
		SourceReviewer: client,
		StyleReviewer:  client,
		Feedback:       newConsoleFeedback(os.Stdin, os.Stdout),
		Illustrator:    images,
		Bus:            eventBus,
		Logger:         logger,
	})

	result, err := orchestrator.Run(ctx, brief, workflow.RunOptions{
		WithImages: command.Bool("with-images"),
		MaxImages:  maxImages(command, cfg),
		ImageStyle: imageStyle(command, cfg),
	})
	if err != nil {
		return err
	}

	finalPath := result.OutputPath
	if result.IllustratedOutputPath != "" {
		finalPath = result.IllustratedOutputPath
	}

	if target := command.String("output"); target != "" {
		if err := copyArticle(finalPath, target); err != nil {
			return err
		}

		finalPath = target
	}

	fmt.Printf("\nDone. Blog post written to %s after %d iteration(s).\n", finalPath, result.Iterations)

	return nil
}

// openSession resumes, resets or creates the session the run will use.
func openSession(ctx context.Context, command *cli.Command, repo persistence.SessionRepository, logger *slog.Logger) (*session.Manager, error) {
	if resume := command.String("resume"); resume != "" {
		var (
			manager *session.Manager
			err     error
		)

		if resume == "latest" {
			manager, err = session.LoadLatest(ctx, repo, logger)
		} else {
			manager, err = session.Load(ctx, repo, logger, resume)
		}

		if err != nil {
			return nil, err
		}

		if command.Bool("reset") {
			if err := manager.Reset(ctx); err != nil {
				return nil, err
			}
		}

		return manager, nil
	}

	idea := command.String("idea")
	if idea == "" {
		return nil, errors.New("an idea file is required for a new session, pass --idea")
	}

	return session.New(ctx, repo, logger, session.Options{
		IdeaPath:      idea,
		WritingsDir:   command.String("writings-dir"),
		Instructions:  command.String("instructions"),
		MaxIterations: command.Int("max-iterations"),
	})
}

func readBrief(ideaPath string) (string, error) {
	data, err := os.ReadFile(filepath.Clean(ideaPath))
	if err != nil {
		return "", fmt.Errorf("reading idea file: %w", err)
	}

	brief := strings.TrimSpace(string(data))
	if brief == "" {
		return "", fmt.Errorf("idea file %s is empty", ideaPath)
	}

	return brief, nil
}

func maxImages(command *cli.Command, cfg *config.Config) int {
	if v := command.Int("max-images"); v > 0 {
		return v
	}

	return cfg.Images.MaxImages
}

func imageStyle(command *cli.Command, cfg *config.Config) string {
	if v := command.String("image-style"); v != "" {
		return v
	}

	return cfg.Images.Style
}

func copyArticle(from, to string) error {
	data, err := os.ReadFile(filepath.Clean(from))
	if err != nil {
		return fmt.Errorf("reading final article: %w", err)
	}

	if dir := filepath.Dir(to); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("creating output directory: %w", err)
		}
	}

	if err := os.WriteFile(to, data, 0o600); err != nil {
		return fmt.Errorf("writing output file: %w", err)
	}

	return nil
}
