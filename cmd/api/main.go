package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk/internal/config"
	"github.com/spec-kit/helpdesk/internal/observability"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := &cli.Command{
		Name:  "helpdesk",
		Usage: "Helpdesk API for roles, employees and tickets",
		Commands: []*cli.Command{
			serveCommand(),
			migrateCommand(),
			seedCommand(),
		},
		Action: func(ctx context.Context, _ *cli.Command) error {
			return withRuntime(ctx, serve)
		},
	}

	if err := root.Run(ctx, os.Args); err != nil {
		log.Fatal(err)
	}
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the HTTP API",
		Action: func(ctx context.Context, _ *cli.Command) error {
			return withRuntime(ctx, serve)
		},
	}
}

func migrateCommand() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "Apply database migrations and exit",
		Action: func(ctx context.Context, _ *cli.Command) error {
			return withRuntime(ctx, func(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
				store, err := openStorage(ctx, cfg, logger)
				if err != nil {
					return err
				}
				defer store.close()
				return store.migrate(ctx, logger)
			})
		},
	}
}

func seedCommand() *cli.Command {
	return &cli.Command{
		Name:  "seed",
		Usage: "Create the administrator and optional seed data, then exit",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "file", Usage: "YAML file with extra roles and employees (overrides SEED_FILE)"},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			return withRuntime(ctx, func(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
				if file := c.String("file"); file != "" {
					cfg.Seed.File = file
				}
				store, err := openStorage(ctx, cfg, logger)
				if err != nil {
					return err
				}
				defer store.close()
				if err := store.migrate(ctx, logger); err != nil {
					return err
				}
				services := newServices(cfg, store, logger)
				return services.bootstrap.Run(ctx, cfg.Seed)
			})
		},
	}
}

// withRuntime loads configuration and the logger before running fn.
func withRuntime(ctx context.Context, fn func(context.Context, *config.Config, *zap.Logger) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	if err := fn(ctx, cfg, logger); err != nil {
		logger.Error("command failed", zap.Error(err))
		return err
	}
	return nil
}
