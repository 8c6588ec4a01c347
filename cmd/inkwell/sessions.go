package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	cli "github.com/urfave/cli/v3"

	"github.com/inkwell-ai/inkwell/pkg/cmd"
	"github.com/inkwell-ai/inkwell/pkg/config"
	"github.com/inkwell-ai/inkwell/pkg/log"
	"github.com/inkwell-ai/inkwell/pkg/persistence"
)

func SessionsCommand() *cli.Command {
	databaseFlags := []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Usage:   "Path to the configuration file",
			Sources: cli.EnvVars("INKWELL_CONFIG"),
		},
		&cli.StringFlag{
			Name:    "database-url",
			Usage:   "Database connection URL for persistence",
			Sources: cli.EnvVars("DATABASE_URL"),
		},
	}

	return &cli.Command{
		Name:    "sessions",
		Aliases: []string{"s"},
		Usage:   "Inspect and manage stored sessions",
		Commands: []*cli.Command{
			{
				Name:    "list",
				Aliases: []string{"ls"},
				Usage:   "List stored sessions, newest first",
				Flags:   databaseFlags,
				Action:  withRepository(listSessions),
			},
			{
				Name:      "show",
				Usage:     "Print one session's full state as JSON",
				ArgsUsage: "<session-id>",
				Flags:     databaseFlags,
				Action:    withRepository(showSession),
			},
			{
				Name:      "delete",
				Usage:     "Delete a session and its artifacts",
				ArgsUsage: "<session-id>",
				Flags:     databaseFlags,
				Action:    withRepository(deleteSession),
			},
		},
	}
}

func withRepository(action func(ctx context.Context, command *cli.Command, repo persistence.SessionRepository) error) cli.ActionFunc {
	return func(ctx context.Context, command *cli.Command) error {
		cfg, err := config.Load(command.String("config"))
		if err != nil {
			return err
		}

		if v := command.String("database-url"); v != "" {
			cfg.DatabaseURL = v
		}

		log.Setup(cfg.LogLevel)

		repo, err := cmd.NewPersistence(cfg.DatabaseURL)
		if err != nil {
			return err
		}

		defer func() {
			_ = repo.Close(ctx)
		}()

		return action(ctx, command, repo)
	}
}

func listSessions(ctx context.Context, _ *cli.Command, repo persistence.SessionRepository) error {
	sessions, err := repo.Sessions(ctx)
	if err != nil {
		return err
	}

	if len(sessions) == 0 {
		fmt.Println("No sessions found.")

		return nil
	}

	for _, info := range sessions {
		fmt.Printf("%s  %-18s  iteration %d  %s\n",
			info.SessionID, info.Stage, info.Iteration, info.UpdatedAt.Format("2006-01-02 15:04"))
	}

	return nil
}

func showSession(ctx context.Context, command *cli.Command, repo persistence.SessionRepository) error {
	sessionID := command.Args().First()
	if sessionID == "" {
		return fmt.Errorf("a session ID is required")
	}

	state, err := repo.StateByID(ctx, sessionID)
	if err != nil {
		return err
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")

	return encoder.Encode(state)
}

func deleteSession(ctx context.Context, command *cli.Command, repo persistence.SessionRepository) error {
	sessionID := command.Args().First()
	if sessionID == "" {
		return fmt.Errorf("a session ID is required")
	}

	if err := repo.DeleteSession(ctx, sessionID); err != nil {
		return err
	}

	fmt.Printf("Deleted session %s\n", sessionID)

	return nil
}
