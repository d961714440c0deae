package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"

	"github.com/dtnitsch/linkslug/internal/analyze"
	"github.com/dtnitsch/linkslug/internal/cache"
	"github.com/dtnitsch/linkslug/internal/db"
	"github.com/dtnitsch/linkslug/internal/generate"
	"github.com/dtnitsch/linkslug/internal/server"
	"github.com/dtnitsch/linkslug/pkg/help"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("failed to load .env: %v", err)
	}

	app := &cli.App{
		Name:  "linkslug",
		Usage: "Generate readable, meaningful slugs for short links",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Value: "linkslug.yaml", Usage: "Path to YAML config (optional)", EnvVars: []string{"LINKSLUG_CONFIG"}},
			&cli.StringFlag{Name: "db", Usage: "SQLite database path", EnvVars: []string{"LINKSLUG_DB"}},
			&cli.StringFlag{Name: "cache", Usage: "Cache backend: memory, file, redis", EnvVars: []string{"LINKSLUG_CACHE"}},
			&cli.StringFlag{Name: "log-level", Usage: "debug, info, warn, error"},
			&cli.BoolFlag{Name: "quiet", Aliases: []string{"q"}, Usage: "Only log errors"},
			&cli.BoolFlag{Name: "no-ai", Usage: "Skip the AI tier"},
		},
		Commands: []*cli.Command{
			{
				Name:      "generate",
				Aliases:   []string{"g"},
				Usage:     "Generate a slug for each URL",
				ArgsUsage: "[url...]",
				Flags:     generate.Flags,
				Action:    generate.GenerateAction,
			},
			{
				Name:      "multiple",
				Usage:     "Generate alternative slugs for one URL",
				ArgsUsage: "<url>",
				Flags: append([]cli.Flag{
					&cli.IntFlag{Name: "count", Aliases: []string{"n"}, Value: 5, Usage: "Number of alternatives (1-10)"},
				}, generate.Flags...),
				Action: generate.MultipleAction,
			},
			{
				Name:      "analyze",
				Usage:     "Learn naming patterns from recorded slug history",
				ArgsUsage: "[identity...]",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "all", Usage: "Analyze every identity with history"},
					&cli.BoolFlag{Name: "force", Usage: "Re-analyze even if the profile is fresh"},
					&cli.StringFlag{Name: "format", Value: "json", Usage: "Output format: json or yaml"},
				},
				Action: analyze.AnalyzeAction,
			},
			{
				Name:  "cache",
				Usage: "Inspect or clear the slug cache",
				Subcommands: []*cli.Command{
					{
						Name:  "stats",
						Usage: "Show cache size and recent entries",
						Flags: []cli.Flag{
							&cli.IntFlag{Name: "limit", Value: 10, Usage: "Recent entries to show"},
							&cli.StringFlag{Name: "format", Value: "json", Usage: "json, yaml or table"},
						},
						Action: cache.StatsAction,
					},
					{
						Name:   "clear",
						Usage:  "Remove every cached slug",
						Action: cache.ClearAction,
					},
				},
			},
			{
				Name:  "db",
				Usage: "Database operations",
				Subcommands: []*cli.Command{
					{
						Name:      "history",
						Usage:     "List recorded slugs for an identity",
						ArgsUsage: "<identity>",
						Flags: []cli.Flag{
							&cli.IntFlag{Name: "limit", Value: 20, Usage: "Maximum entries"},
						},
						Action: db.HistoryAction,
					},
					{
						Name:  "profiles",
						Usage: "List naming profiles",
						Flags: []cli.Flag{
							&cli.IntFlag{Name: "limit", Value: 50, Usage: "Maximum profiles"},
						},
						Action: db.ProfilesAction,
					},
					{
						Name:      "profile",
						Usage:     "Show one naming profile",
						ArgsUsage: "<identity>",
						Flags: []cli.Flag{
							&cli.StringFlag{Name: "format", Value: "yaml", Usage: "json or yaml"},
						},
						Action: db.ProfileAction,
					},
					{
						Name:      "record",
						Usage:     "Record a hand-written slug in an identity's history",
						ArgsUsage: "<identity>",
						Flags: []cli.Flag{
							&cli.StringFlag{Name: "url", Required: true, Usage: "Destination URL"},
							&cli.StringFlag{Name: "slug", Required: true, Usage: "Slug that was used"},
						},
						Action: db.RecordAction,
					},
				},
			},
			{
				Name:  "serve",
				Usage: "Run the HTTP API",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "addr", Usage: "Listen address (default from config, :8080)"},
					&cli.StringFlag{Name: "analyze-schedule", Usage: `Cron schedule for pattern analysis, e.g. "@daily"`},
				},
				Action: server.ServeAction,
			},
			{
				Name:  "quickstart",
				Usage: "Print a quick start guide",
				Action: func(c *cli.Context) error {
					fmt.Print(help.ColdstartYAML)
					return nil
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
