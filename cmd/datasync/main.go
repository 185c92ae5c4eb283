package main

import (
	"context"
	"fmt"
	"os"

	_ "github.com/joho/godotenv/autoload"

	"datasync/internal/app"
	"datasync/internal/cli"
	"datasync/internal/config"
	"datasync/internal/logging"
	"datasync/internal/service"
)

func main() {
	cfg := config.Load()

	// Diagnostics go to stderr so json/yaml output stays parseable.
	logger := logging.New(os.Stderr, cfg.Location())

	// Components are built lazily, so a command that fails flag validation opens nothing.
	a, err := app.New(cfg, logger)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(cli.ExitCommandError)
	}

	open := func(ctx context.Context) (service.ItemService, func() error, error) {
		svc, err := a.Items(ctx)
		if err != nil {
			a.Close()
			return nil, nil, err
		}
		return svc, a.Close, nil
	}

	cmd := cli.NewRootCommand(open, a.DefaultPolicy)
	if err := cmd.Execute(); err != nil {
		if cli.GetExitCode(err) == cli.ExitCommandError {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(cli.GetExitCode(err))
	}
}
