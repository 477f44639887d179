// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/poiesic/taskrag"
	"github.com/poiesic/taskrag/config"
	"github.com/urfave/cli/v2"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "taskrag",
		Usage: "Exam task catalogue with hybrid search and duplicate-free selection",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to a YAML configuration file",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:      "import",
				Usage:     "Import tasks from a .jsonl, .csv or .yaml file, or a directory of them",
				ArgsUsage: "<path>",
				Action:    importCommand,
				Flags:     append(databaseFlags(), &cli.IntFlag{Name: "workers", Usage: "Concurrent task imports (0 uses the configured value)"}),
			},
			{
				Name:      "search",
				Usage:     "Run a hybrid search",
				ArgsUsage: "<query>",
				Action:    searchCommand,
				Flags: append(databaseFlags(),
					&cli.StringFlag{Name: "topic", Usage: "Restrict to an exact topic"},
					&cli.IntFlag{Name: "min-difficulty", Usage: "Lowest difficulty (1-5)"},
					&cli.IntFlag{Name: "max-difficulty", Usage: "Highest difficulty (1-5)"},
					&cli.IntFlag{Name: "limit", Usage: "Maximum number of results", Value: 20},
				),
			},
			{
				Name:   "assign",
				Usage:  "Generate an assignment from a topic request",
				Action: assignCommand,
				Flags: append(databaseFlags(),
					&cli.StringFlag{
						Name:     "topics",
						Aliases:  []string{"t"},
						Usage:    `Topic request, e.g. "Algebra — 3, Geometry - 2"`,
						Required: true,
					},
					&cli.StringFlag{Name: "student", Usage: "Student name"},
					&cli.IntFlag{Name: "target-score", Usage: "Student target score (0-100)", Value: 80},
				),
			},
			{
				Name:   "reindex",
				Usage:  "Rebuild the vector and lexical indexes from stored tasks",
				Action: reindexCommand,
				Flags: append(databaseFlags(),
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of tasks to process in each batch",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "report-interval",
						Usage: "Report progress every N tasks",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "max-retries",
						Usage: "Maximum retry attempts for failed operations",
						Value: 3,
					},
					&cli.DurationFlag{
						Name:  "retry-delay",
						Usage: "Base delay for exponential backoff",
						Value: 1 * time.Second,
					},
				),
			},
			{
				Name:   "info",
				Usage:  "Show catalogue and index statistics",
				Action: infoCommand,
				Flags:  databaseFlags(),
			},
			{
				Name:      "session",
				Usage:     "Show an import session",
				ArgsUsage: "<key>",
				Action:    sessionCommand,
				Flags:     databaseFlags(),
			},
		},
	}
}

func databaseFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "db",
			Aliases: []string{"d"},
			Usage:   "Path to BadgerDB database directory (overrides storage.path)",
		},
		&cli.StringFlag{
			Name:  "embedding-host",
			Usage: "Embedding service host URL (overrides embedding.host)",
		},
		&cli.StringFlag{
			Name:  "embedding-model",
			Usage: "Embedding model name (overrides embedding.model)",
		},
	}
}

// loadConfig reads the configuration file and environment, then applies
// command-line overrides.
func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, err
	}
	if c.IsSet("db") {
		cfg.Storage.Path = c.String("db")
	}
	if c.IsSet("embedding-host") {
		cfg.Embedding.Host = c.String("embedding-host")
	}
	if c.IsSet("embedding-model") {
		cfg.Embedding.Model = c.String("embedding-model")
	}
	if c.IsSet("workers") {
		cfg.Import.Workers = c.Int("workers")
	}
	return cfg, cfg.Validate()
}

func openDatabase(c *cli.Context) (*taskrag.Database, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	db, err := taskrag.NewDatabase(c.Context, cfg.Storage.Path, taskrag.OptionsFromConfig(cfg)...)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
