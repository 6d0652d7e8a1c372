// Copyright 2025 Lekodex Labs
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
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/lekodex/lekodex"
	"github.com/lekodex/lekodex/ai"
	"github.com/lekodex/lekodex/core"
	"github.com/lekodex/lekodex/enrich"
	"github.com/lekodex/lekodex/index"
	"github.com/lekodex/lekodex/ingest"
	"github.com/lekodex/lekodex/registry"
)

func main() {
	app := &cli.App{
		Name:   "lekodex",
		Usage:  "Medicinal product catalog pipeline and search",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Before: setup,
		Commands: []*cli.Command{
			{
				Name:   "ingest",
				Usage:  "Fetch products and documents from the registry into the catalog",
				Action: ingestCommand,
				Flags: append(dbFlags(),
					&cli.StringFlag{
						Name:  "base-url",
						Usage: "Registry API base URL",
						Value: "https://prehledy.sukl.cz/dlp/v1",
					},
					&cli.StringFlag{
						Name:  "period",
						Usage: "Catalog period to list products for",
						Value: "2025.07",
					},
					&cli.StringFlag{
						Name:  "doc-type",
						Usage: "Document type to download for each product",
						Value: "spc",
					},
					&cli.IntFlag{
						Name:  "target-count",
						Usage: "Stop after this many products are stored",
						Value: 10,
					},
					&cli.IntFlag{
						Name:  "max-attempts",
						Usage: "Hard ceiling on product attempts (0 = 10x target)",
						Value: 0,
					},
					&cli.BoolFlag{
						Name:  "include-eu",
						Usage: "Process centrally registered products instead of skipping them",
					},
					&cli.IntFlag{
						Name:  "max-retries",
						Usage: "Maximum download attempts per document",
						Value: 3,
					},
					&cli.DurationFlag{
						Name:  "timeout",
						Usage: "HTTP request timeout",
						Value: 60 * time.Second,
					},
				),
			},
			{
				Name:   "extract",
				Usage:  "Extract structured facts from stored documents",
				Action: extractCommand,
				Flags: append(dbFlags(),
					append([]cli.Flag{
						&cli.StringFlag{
							Name:  "doc-type",
							Usage: "Document type to read text from",
							Value: "spc",
						},
						&cli.IntFlag{
							Name:  "text-budget",
							Usage: "Character budget for document text sent to the model",
							Value: 2000,
						},
					}, aiFlags()...)...,
				),
			},
			{
				Name:   "index",
				Usage:  "Embed extracted facts that have no vectors yet",
				Action: indexCommand,
				Flags: append(dbFlags(),
					append([]cli.Flag{
						&cli.IntFlag{
							Name:  "pool-size",
							Usage: "Number of concurrent embedding workers (0 = half the CPUs)",
							Value: 0,
						},
					}, aiFlags()...)...,
				),
			},
			{
				Name:      "search",
				Usage:     "Lexical search over product names and extracted facts",
				ArgsUsage: "<query>",
				Action:    searchCommand,
				Flags:     dbFlags(),
			},
			{
				Name:      "similar",
				Usage:     "Semantic search over combined fact vectors",
				ArgsUsage: "<query>",
				Action:    similarCommand,
				Flags: append(dbFlags(),
					append([]cli.Flag{limitFlag()}, aiFlags()...)...,
				),
			},
			{
				Name:      "symptoms",
				Usage:     "Semantic search restricted to indication vectors",
				ArgsUsage: "<symptom description>",
				Action:    symptomsCommand,
				Flags: append(dbFlags(),
					append([]cli.Flag{limitFlag()}, aiFlags()...)...,
				),
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func dbFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "db",
			Aliases: []string{"d"},
			Usage:   "Path to BadgerDB database directory",
			EnvVars: []string{"LEKODEX_DB"},
			Value:   "./lekodex_db",
		},
	}
}

func aiFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "ai-host",
			Usage:   "OpenAI-compatible service host URL",
			EnvVars: []string{"LEKODEX_AI_HOST"},
			Value:   "http://localhost:11434/v1",
		},
		&cli.StringFlag{
			Name:    "embedding-model",
			Usage:   "Embedding model name",
			EnvVars: []string{"LEKODEX_EMBEDDING_MODEL"},
			Value:   "embeddinggemma",
		},
		&cli.StringFlag{
			Name:    "extraction-model",
			Usage:   "Extraction model name",
			EnvVars: []string{"LEKODEX_EXTRACTION_MODEL"},
			Value:   "gemma3",
		},
		&cli.IntFlag{
			Name:  "seed",
			Usage: "Sampling seed for reproducible extraction",
			Value: 42,
		},
	}
}

func limitFlag() cli.Flag {
	return &cli.IntFlag{
		Name:    "limit",
		Aliases: []string{"n"},
		Usage:   "Maximum number of results",
		Value:   5,
	}
}

func openDatabase(c *cli.Context) (*lekodex.Database, error) {
	opts := []ai.ConfigOption{
		ai.WithHost(c.String("ai-host")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
		ai.WithExtractionModel(c.String("extraction-model")),
		ai.WithSeed(c.Int("seed")),
	}
	if budget := c.Int("text-budget"); budget > 0 {
		opts = append(opts, ai.WithTextBudget(budget))
	}
	aiConfig := ai.NewConfig(opts...)
	if err := aiConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid AI configuration: %w", err)
	}

	db, err := lekodex.NewDatabase(c.String("db"), lekodex.WithAIConfig(aiConfig))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}

func ingestCommand(c *cli.Context) error {
	ctx := context.Background()

	regConfig := registry.NewConfig(
		registry.WithBaseURL(c.String("base-url")),
		registry.WithPeriod(c.String("period")),
		registry.WithDocumentType(c.String("doc-type")),
		registry.WithMaxRetries(c.Int("max-retries")),
		registry.WithTimeout(c.Duration("timeout")),
	)
	if err := regConfig.Validate(); err != nil {
		return fmt.Errorf("invalid registry configuration: %w", err)
	}

	client, err := registry.NewClient(regConfig)
	if err != nil {
		return fmt.Errorf("failed to create registry client: %w", err)
	}

	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	opts := []ingest.Option{
		ingest.WithDocumentType(c.String("doc-type")),
		ingest.WithSkipEU(!c.Bool("include-eu")),
		ingest.WithTargetCount(c.Int("target-count")),
	}
	if n := c.Int("max-attempts"); n > 0 {
		opts = append(opts, ingest.WithMaxAttempts(n))
	}

	driver, err := db.NewIngestDriver(client, opts...)
	if err != nil {
		return fmt.Errorf("failed to create ingest driver: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Database: %s\n", c.String("db"))
	fmt.Fprintf(os.Stderr, "Registry: %s (period %s)\n", c.String("base-url"), c.String("period"))
	fmt.Fprintln(os.Stderr)

	report, err := driver.Run(ctx)
	if err != nil {
		return fmt.Errorf("ingest failed: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Attempted: %d\n", report.Attempted)
	fmt.Fprintf(os.Stderr, "Stored: %d\n", report.Stored)
	fmt.Fprintf(os.Stderr, "Skipped (EU): %d\n", report.SkippedEU)
	fmt.Fprintf(os.Stderr, "Skipped (empty): %d\n", report.SkippedEmpty)
	fmt.Fprintf(os.Stderr, "Failed: %d\n", report.Failed)
	return nil
}

func extractCommand(c *cli.Context) error {
	ctx := context.Background()

	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	pipeline, err := db.NewEnrichPipeline(enrich.WithDocumentType(c.String("doc-type")))
	if err != nil {
		return fmt.Errorf("failed to create extraction pipeline: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Database: %s\n", c.String("db"))
	fmt.Fprintf(os.Stderr, "Extraction host: %s\n", c.String("ai-host"))
	fmt.Fprintf(os.Stderr, "Extraction model: %s\n", c.String("extraction-model"))
	fmt.Fprintln(os.Stderr)

	processed, err := pipeline.Run(ctx)
	if err != nil {
		return fmt.Errorf("extraction failed: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Processed %d documents\n", processed)
	return nil
}

func indexCommand(c *cli.Context) error {
	ctx := context.Background()

	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	opts := []index.Option{index.WithProgressWriter(os.Stderr)}
	if size := c.Int("pool-size"); size > 0 {
		opts = append(opts, index.WithPoolSize(size))
	}

	indexer, err := db.NewIndexer(opts...)
	if err != nil {
		return fmt.Errorf("failed to create indexer: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Database: %s\n", c.String("db"))
	fmt.Fprintf(os.Stderr, "Embedding host: %s\n", c.String("ai-host"))
	fmt.Fprintf(os.Stderr, "Embedding model: %s\n", c.String("embedding-model"))
	fmt.Fprintln(os.Stderr)

	indexed, err := indexer.BatchReindex(ctx)
	if err != nil {
		return fmt.Errorf("indexing failed: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Indexed %d products\n", indexed)
	return nil
}

func searchCommand(c *cli.Context) error {
	query, err := queryArg(c)
	if err != nil {
		return err
	}

	db, err := openDatabaseForQuery(c)
	if err != nil {
		return err
	}
	defer db.Close()

	gateway, err := db.NewGateway()
	if err != nil {
		return fmt.Errorf("failed to create search gateway: %w", err)
	}

	results, err := gateway.SearchLexical(context.Background(), query)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	printMatches(results)
	return nil
}

func similarCommand(c *cli.Context) error {
	query, err := queryArg(c)
	if err != nil {
		return err
	}

	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	gateway, err := db.NewGateway()
	if err != nil {
		return fmt.Errorf("failed to create search gateway: %w", err)
	}

	results, err := gateway.SearchSemantic(context.Background(), query, c.Int("limit"))
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	printMatches(results)
	return nil
}

func symptomsCommand(c *cli.Context) error {
	query, err := queryArg(c)
	if err != nil {
		return err
	}

	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	gateway, err := db.NewGateway()
	if err != nil {
		return fmt.Errorf("failed to create search gateway: %w", err)
	}

	results, err := gateway.SearchBySymptoms(context.Background(), query, c.Int("limit"))
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	printMatches(results)
	return nil
}

// openDatabaseForQuery opens the database with default AI settings for
// commands that never call the model.
func openDatabaseForQuery(c *cli.Context) (*lekodex.Database, error) {
	db, err := lekodex.NewDatabase(c.String("db"))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}

func queryArg(c *cli.Context) (string, error) {
	query := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if query == "" {
		return "", fmt.Errorf("query argument is required")
	}
	return query, nil
}

func printMatches(results []*core.ProductMatch) {
	fmt.Printf("Found %d hits\n", len(results))
	for i, hit := range results {
		fmt.Printf("%d: %s '%s' [%0.3f]\n", i, hit.Code, hit.Name, hit.Similarity)
		for _, field := range core.DefaultIndexedFields {
			if fragments := hit.Fields[field]; len(fragments) > 0 {
				fmt.Printf("   %s: %s\n", field, strings.Join(fragments, "; "))
			}
		}
	}
}

func setup(c *cli.Context) error {
	// Local .env files supply host and model settings during development.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to load .env: %w", err)
	}
	return setupLogger(c)
}

func setupLogger(c *cli.Context) error {
	// Get log level from flag and normalize to lowercase
	levelStr := strings.ToLower(c.String("log-level"))

	// Map string to slog.Level
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

	// Configure slog with the specified level
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
