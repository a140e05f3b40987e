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

package reenrich

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/poiesic/memlane/core"
	"github.com/poiesic/memlane/enrichment"
	"github.com/poiesic/memlane/storage"
)

// Config holds configuration for a re-enrichment run.
type Config struct {
	// BatchSize is the number of items processed in each batch
	BatchSize int

	// Limit caps how many items are visited (0 means all)
	Limit int

	// Concurrency is how many items of a batch are enriched at once
	Concurrency int

	// ReportInterval is how often to report progress (number of items)
	ReportInterval int

	// MaxRetries is the maximum number of attempts while every service fails
	MaxRetries int

	// RetryDelay is the base delay for exponential backoff
	RetryDelay time.Duration

	// OnWrite runs after each stored result, typically to invalidate caches
	OnWrite func(userID core.ID)
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		BatchSize:      DefaultBatchSize,
		Concurrency:    2,
		ReportInterval: 10,
		MaxRetries:     3,
		RetryDelay:     1 * time.Second,
	}
}

// Report summarizes a finished run.
type Report struct {
	Total     int
	Succeeded int
	Degraded  int
	Failed    int
	Elapsed   time.Duration
}

// Reenricher re-runs enrichment for unprocessed and failed items.
type Reenricher struct {
	config    *Config
	progress  io.Writer
	processor *BatchProcessor
	iterator  *ItemIterator
	logger    *slog.Logger
}

// NewReenricher creates a new re-enricher.
// progress: where to write progress output (typically os.Stderr)
func NewReenricher(repo storage.ItemRepository, enricher enrichment.Enricher, config *Config, progress io.Writer) (*Reenricher, error) {
	if repo == nil {
		return nil, ErrItemRepositoryRequired
	}
	if enricher == nil {
		return nil, ErrEnricherRequired
	}
	if config == nil {
		config = DefaultConfig()
	}
	if progress == nil {
		progress = io.Discard
	}

	processor := NewBatchProcessor(repo, enricher, config.MaxRetries, config.RetryDelay, config.Concurrency)
	processor.onWrite = config.OnWrite

	return &Reenricher{
		config:    config,
		progress:  progress,
		processor: processor,
		iterator:  NewItemIterator(repo, config.BatchSize, config.Limit),
		logger:    slog.Default().With("component", "reenrich"),
	}, nil
}

// Run re-enriches every item that is unprocessed or carries a processing error.
func (r *Reenricher) Run(ctx context.Context) (*Report, error) {
	items, err := r.iterator.Pending(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to query items: %w", err)
	}

	report := &Report{Total: len(items)}
	if len(items) == 0 {
		fmt.Fprintf(r.progress, "No items need enrichment\n")
		return report, nil
	}

	fmt.Fprintf(r.progress, "Re-enriching %d items (batch size: %d)\n", len(items), r.iterator.batchSize)
	r.logger.Info("starting re-enrichment", "items", len(items))

	tracker := NewProgressTracker(r.progress, len(items), r.config.ReportInterval)
	tracker.Start()

	err = r.iterator.ForEach(ctx, items, func(batch []*core.Item) error {
		if err := r.processor.Process(ctx, batch, tracker.Record); err != nil {
			return fmt.Errorf("failed to process batch: %w", err)
		}
		return nil
	})

	report.Succeeded = tracker.Count(enrichment.Success)
	report.Degraded = tracker.Count(enrichment.DegradedHeuristic)
	report.Failed = tracker.Count(enrichment.Failed)
	report.Elapsed = tracker.Elapsed()
	if err != nil {
		return report, err
	}

	tracker.Finish()
	fmt.Fprintf(r.progress, "Re-enrichment complete. %d items in %v (%d ok, %d degraded, %d failed)\n",
		report.Total, report.Elapsed.Round(time.Millisecond), report.Succeeded, report.Degraded, report.Failed)

	return report, nil
}
