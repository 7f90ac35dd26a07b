package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/berkana/internal"
	pkgconfig "github.com/starford/berkana/pkg/config"
)

// runFunc is one of the internal entry points.
type runFunc func(ctx context.Context, opts ...internal.Option) error

func action(run runFunc) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		configPath := cmd.String("config")

		cfg := internal.NewDefaultConfig()
		if err := pkgconfig.LoadIfPresent(configPath, cfg); err != nil {
			return fmt.Errorf("failed to parse config: %w", err)
		}
		if cmd.Bool("update") {
			cfg.Shelf.UpdateOnStart = true
		}

		if err := run(ctx, internal.WithConfig(cfg)); err != nil {
			return fmt.Errorf("app run error: %w", err)
		}
		return nil
	}
}

func main() {
	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Aliases:     []string{"c"},
			Usage:       "Path to config file",
			DefaultText: "config/config.yaml",
			Value:       "config/config.yaml",
			Sources:     cli.EnvVars("BERKANA_CONFIG_FILE"),
		},
		&cli.BoolFlag{
			Name:    "update",
			Aliases: []string{"u"},
			Usage:   "Refresh every cached record before substitution",
			Sources: cli.EnvVars("BERKANA_UPDATE"),
		},
	}

	cmd := &cli.Command{
		Name:   "berkana",
		Usage:  "Enrich generated HTML with book cards fetched from a remote catalog",
		Flags:  flags,
		Action: action(internal.RunSync),
		Commands: []*cli.Command{
			{
				Name:   "sync",
				Usage:  "Enrich every document under the site root once",
				Action: action(internal.RunSync),
			},
			{
				Name:   "watch",
				Usage:  "Enrich documents as the generator writes them",
				Action: action(internal.RunWatch),
			},
			{
				Name:   "refresh",
				Usage:  "Re-fetch every cached record and rewrite the shelf",
				Action: action(internal.RunRefresh),
			},
			{
				Name:   "mcp",
				Usage:  "Serve the shelf over MCP stdio transport",
				Action: action(internal.RunMCP),
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
