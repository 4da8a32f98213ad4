package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/jasminestrone/tachylite/internal"
	"github.com/jasminestrone/tachylite/internal/export"
	"github.com/jasminestrone/tachylite/internal/markdown"
	"github.com/jasminestrone/tachylite/internal/mcpserver"
	pkgconfig "github.com/jasminestrone/tachylite/pkg/config"
)

func loadConfig(cmd *cli.Command) *internal.Config {
	cfg := internal.NewDefaultConfig()
	pkgconfig.LoadOrWarn(cmd.String("config"), cfg, *internal.NewDefaultConfig())
	if vault := cmd.String("vault"); vault != "" {
		cfg.Vault.Path = vault
	}
	return cfg
}

func serve(ctx context.Context, cmd *cli.Command) error {
	cfg := loadConfig(cmd)
	if err := internal.Run(ctx, internal.WithConfig(cfg)); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}
	return nil
}

func runExport(ctx context.Context, cmd *cli.Command) error {
	cfg := loadConfig(cmd)

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	v, err := internal.NewVault(cfg)
	if err != nil {
		return fmt.Errorf("open vault: %w", err)
	}

	output := cfg.Export.OutputDir
	if !filepath.IsAbs(output) {
		output = filepath.Join(cfg.Vault.Path, output)
	}
	return export.NewBuilder(v, output, logger).Build()
}

func runMCP(ctx context.Context, cmd *cli.Command) error {
	cfg := loadConfig(cmd)

	// MCP talks JSON-RPC on stdout; keep logs on stderr.
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	v, err := internal.NewVault(cfg)
	if err != nil {
		return fmt.Errorf("open vault: %w", err)
	}

	return mcpserver.New(v, markdown.NewRenderer("/raw/")).ServeStdio()
}

func main() {
	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Aliases:     []string{"c"},
			Usage:       "Path to config file",
			DefaultText: internal.ConfigFileName,
			Value:       internal.ConfigFileName,
			Sources:     cli.EnvVars("APP_CONFIG_FILE"),
		},
		&cli.StringFlag{
			Name:    "vault",
			Usage:   "Vault directory (overrides config)",
			Sources: cli.EnvVars("VAULT_PATH"),
		},
	}

	cmd := &cli.Command{
		Name:   "tachylite",
		Usage:  "Personal knowledge-vault server with wikilink rendering, graph view, and static export",
		Action: serve,
		Flags:  flags,
		Commands: []*cli.Command{
			{
				Name:   "export",
				Usage:  "Write a read-only static snapshot of the vault",
				Action: runExport,
			},
			{
				Name:   "mcp",
				Usage:  "Serve read-only vault tools over MCP stdio",
				Action: runMCP,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
