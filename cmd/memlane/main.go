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
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"maps"
	"net/http"
	"os"
	"os/signal"
	"slices"
	"strings"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"

	"github.com/poiesic/memlane"
	"github.com/poiesic/memlane/api"
	"github.com/poiesic/memlane/config"
	"github.com/poiesic/memlane/core"
	"github.com/poiesic/memlane/ingestion"
	"github.com/poiesic/memlane/reenrich"
	"github.com/poiesic/memlane/search"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	userFlag := &cli.Uint64Flag{
		Name:     "user",
		Aliases:  []string{"u"},
		Usage:    "Numeric id of the user owning the items",
		EnvVars:  []string{"MEMLANE_USER"},
		Required: true,
	}

	return &cli.App{
		Name:  "memlane",
		Usage: "Capture content, enrich it in the background and search it by tag",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
				EnvVars: []string{config.EnvLogLevel},
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to YAML config file",
				Value:   "memlane.yaml",
				EnvVars: []string{"MEMLANE_CONFIG"},
			},
			&cli.StringFlag{
				Name:    "db",
				Aliases: []string{"d"},
				Usage:   "Path to BadgerDB database directory (overrides config)",
			},
			&cli.BoolFlag{
				Name:  "live",
				Usage: "Use the external summarizer and tagger for background enrichment (overrides config)",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the HTTP API",
				Action: serveCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "addr",
						Usage: "Listen address (overrides config)",
					},
				},
			},
			{
				Name:      "capture",
				Usage:     "Capture content and enrich it",
				ArgsUsage: "[content]",
				Action:    captureCommand,
				Flags: []cli.Flag{
					userFlag,
					&cli.StringFlag{Name: "title", Usage: "Item title"},
					&cli.StringFlag{Name: "url", Usage: "Source URL"},
					&cli.StringFlag{Name: "mime-type", Usage: "MIME type used to infer the content type"},
					&cli.StringFlag{Name: "content-type", Usage: "Explicit content type"},
				},
			},
			{
				Name:      "search",
				Usage:     "Search captured items",
				ArgsUsage: "[query]",
				Action:    searchCommand,
				Flags: []cli.Flag{
					userFlag,
					&cli.StringFlag{Name: "emotion", Usage: "Only items with this emotion"},
					&cli.IntFlag{Name: "limit", Usage: "Maximum results", Value: search.DefaultLimit},
					&cli.BoolFlag{Name: "semantic", Usage: "Broaden the query with similar tags"},
				},
			},
			{
				Name:   "status",
				Usage:  "Show how many items still await enrichment",
				Action: statusCommand,
				Flags:  []cli.Flag{userFlag},
			},
			{
				Name:   "insights",
				Usage:  "Summarize a user's items",
				Action: insightsCommand,
				Flags:  []cli.Flag{userFlag},
			},
			{
				Name:   "seed",
				Usage:  "Capture sample content, or one item per line of a file",
				Action: seedCommand,
				Flags: []cli.Flag{
					userFlag,
					&cli.StringFlag{Name: "src", Usage: "File of seed data, one capture per line"},
				},
			},
			{
				Name:   "reenrich",
				Usage:  "Re-run enrichment for unprocessed and failed items",
				Action: reenrichCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of items to process in each batch",
						Value: reenrich.DefaultBatchSize,
					},
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum items to visit (0 for all)",
					},
					&cli.IntFlag{
						Name:  "concurrency",
						Usage: "Items enriched at once within a batch",
						Value: 2,
					},
					&cli.IntFlag{
						Name:  "report-interval",
						Usage: "Report progress every N items",
						Value: 10,
					},
					&cli.IntFlag{
						Name:  "max-retries",
						Usage: "Maximum attempts while every service fails",
						Value: 3,
					},
					&cli.DurationFlag{
						Name:  "retry-delay",
						Usage: "Base delay for exponential backoff",
						Value: 1 * time.Second,
					},
				},
			},
		},
	}
}

// loadConfig reads the config file and applies global flag overrides.
func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, err
	}
	if c.IsSet("db") {
		cfg.Database.Path = c.String("db")
	}
	if c.IsSet("live") {
		cfg.AI.Live = c.Bool("live")
	}
	return cfg, nil
}

func openDatabase(c *cli.Context) (*memlane.Database, *config.Config, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, nil, err
	}
	db, err := memlane.NewDatabase(cfg.Database.Path, memlane.OptionsFromConfig(cfg)...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, cfg, nil
}

func serveCommand(c *cli.Context) error {
	db, cfg, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	if c.IsSet("addr") {
		cfg.Server.Addr = c.String("addr")
	}

	pipeline, err := db.NewPipeline()
	if err != nil {
		return fmt.Errorf("failed to create pipeline: %w", err)
	}
	searcher, err := db.NewSearcher()
	if err != nil {
		return fmt.Errorf("failed to create searcher: %w", err)
	}

	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      api.NewHandler(api.Deps{Pipeline: pipeline, Searcher: searcher}),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("memlane listening", "addr", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		// Stop taking requests first so no capture lands on a closed scheduler.
		err := srv.Shutdown(shutdownCtx)
		if perr := pipeline.Close(shutdownCtx); perr != nil {
			slog.Warn("enrichment did not drain before shutdown", "err", perr, "pending", pipeline.Pending())
		}
		return err
	})
	return g.Wait()
}

func captureCommand(c *cli.Context) error {
	content := strings.Join(c.Args().Slice(), " ")
	if strings.TrimSpace(content) == "" {
		return fmt.Errorf("content is required")
	}

	db, _, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	pipeline, err := db.NewPipeline()
	if err != nil {
		return fmt.Errorf("failed to create pipeline: %w", err)
	}

	ctx := c.Context
	userID := core.ID(c.Uint64("user"))
	item, queued, err := pipeline.Capture(ctx, userID, core.CapturePayload{
		URL:         c.String("url"),
		Title:       c.String("title"),
		ContentType: c.String("content-type"),
		MimeType:    c.String("mime-type"),
		Content:     content,
	})
	if err != nil {
		pipeline.Close(ctx)
		return fmt.Errorf("capture failed: %w", err)
	}

	// Closing drains the queued enrichment before the process exits.
	if err := pipeline.Close(ctx); err != nil {
		return fmt.Errorf("enrichment did not finish: %w", err)
	}
	if queued {
		if item, err = pipeline.Get(ctx, userID, item.Id); err != nil {
			return err
		}
	}

	printItem(c, item)
	return nil
}

func searchCommand(c *cli.Context) error {
	db, _, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	searcher, err := db.NewSearcher()
	if err != nil {
		return fmt.Errorf("failed to create searcher: %w", err)
	}

	resp, err := searcher.Search(c.Context, search.SearchRequest{
		UserId:      core.ID(c.Uint64("user")),
		Query:       strings.Join(c.Args().Slice(), " "),
		Emotion:     c.String("emotion"),
		Limit:       c.Int("limit"),
		UseSemantic: c.Bool("semantic"),
	})
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	w := c.App.Writer
	fmt.Fprintf(w, "%d results (semantic used: %t)\n", len(resp.Items), resp.SemanticUsed)
	for _, item := range resp.Items {
		fmt.Fprintln(w)
		printItem(c, item)
	}
	return nil
}

func statusCommand(c *cli.Context) error {
	db, _, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	count, err := db.ItemRepository().CountUnprocessed(c.Context, core.ID(c.Uint64("user")))
	if err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "pending: %t\ncount: %d\n", count > 0, count)
	return nil
}

func insightsCommand(c *cli.Context) error {
	db, _, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	in, err := db.ItemRepository().Insights(c.Context, core.ID(c.Uint64("user")), ingestion.DefaultInsightTags)
	if err != nil {
		return err
	}

	w := c.App.Writer
	fmt.Fprintf(w, "Total items: %d\n", in.TotalItems)
	fmt.Fprintln(w, "By content type:")
	for _, kind := range slices.Sorted(maps.Keys(in.ByContentType)) {
		fmt.Fprintf(w, "  %s: %d\n", kind, in.ByContentType[kind])
	}
	fmt.Fprintln(w, "By emotion:")
	for _, emotion := range slices.Sorted(maps.Keys(in.ByEmotion)) {
		fmt.Fprintf(w, "  %s: %d\n", emotion, in.ByEmotion[emotion])
	}
	fmt.Fprintln(w, "Top tags:")
	for _, tc := range in.TopTags {
		fmt.Fprintf(w, "  %s: %d\n", tc.Tag, tc.Count)
	}
	return nil
}

func reenrichCommand(c *cli.Context) error {
	// Create re-enrichment config
	reenrichConfig := &reenrich.Config{
		BatchSize:      c.Int("batch-size"),
		Limit:          c.Int("limit"),
		Concurrency:    c.Int("concurrency"),
		ReportInterval: c.Int("report-interval"),
		MaxRetries:     c.Int("max-retries"),
		RetryDelay:     c.Duration("retry-delay"),
	}

	// Validate config
	if reenrichConfig.BatchSize <= 0 {
		return fmt.Errorf("batch-size must be greater than 0")
	}
	if reenrichConfig.Concurrency <= 0 {
		return fmt.Errorf("concurrency must be greater than 0")
	}
	if reenrichConfig.ReportInterval <= 0 {
		return fmt.Errorf("report-interval must be greater than 0")
	}
	if reenrichConfig.MaxRetries <= 0 {
		return fmt.Errorf("max-retries must be greater than 0")
	}

	db, cfg, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	reenricher, err := db.NewReenricher(reenrichConfig, os.Stderr)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "Database: %s\n", cfg.Database.Path)
	fmt.Fprintf(os.Stderr, "Live enrichment: %t\n", cfg.AI.Live)
	if cfg.AI.Live {
		fmt.Fprintf(os.Stderr, "Generation host: %s\n", cfg.AI.GenerationHost)
		fmt.Fprintf(os.Stderr, "Generation model: %s\n", cfg.AI.GenerationModel)
	}
	fmt.Fprintln(os.Stderr)

	report, err := reenricher.Run(c.Context)
	if err != nil {
		return fmt.Errorf("re-enrichment failed: %w", err)
	}
	fmt.Fprintf(c.App.Writer, "%d items: %d ok, %d degraded, %d failed\n",
		report.Total, report.Succeeded, report.Degraded, report.Failed)
	return nil
}

func printItem(c *cli.Context, item *core.Item) {
	w := c.App.Writer
	fmt.Fprintf(w, "[%d] %s\n", item.Id, item.Title)
	fmt.Fprintf(w, "  source: %s (%s)\n", item.Source, item.ContentType)
	fmt.Fprintf(w, "  summary: %s\n", item.Summary)
	fmt.Fprintf(w, "  tags: %s\n", strings.Join(item.Keywords, ", "))
	fmt.Fprintf(w, "  emotion: %s (%.2f)\n", item.Emotion, item.SentimentScore)
	fmt.Fprintf(w, "  processed: %t\n", item.Processed)
	if item.ProcessingError != "" {
		fmt.Fprintf(w, "  error: %s\n", item.ProcessingError)
	}
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
