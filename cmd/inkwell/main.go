// Package main provides the inkwell CLI for creating blog posts from a brief
// and a set of writing samples.
package main

import (
	"context"
	"fmt"
	"os"

	cli "github.com/urfave/cli/v3"
)

func main() {
	command := &cli.Command{
		Name:                  "inkwell",
		Usage:                 "Write blog posts in your own voice",
		EnableShellCompletion: true,
		Commands: []*cli.Command{
			CreateCommand(),
			SessionsCommand(),
		},
	}

	if err := command.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "inkwell:", err)
		os.Exit(1)
	}
}
