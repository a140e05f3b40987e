package reenrich

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/poiesic/memlane/core"
	"github.com/poiesic/memlane/enrichment"
	"github.com/poiesic/memlane/storage"
	"golang.org/x/sync/errgroup"
)

var errAllServicesFailed = errors.New("all enrichment services failed")

// BatchProcessor re-enriches batches of items and stores the results.
type BatchProcessor struct {
	repo           storage.ItemRepository
	enricher       enrichment.Enricher
	maxRetries     int
	retryBaseDelay time.Duration
	concurrency    int
	onWrite        func(userID core.ID)
	logger         *slog.Logger
}

// NewBatchProcessor creates a new batch processor.
// maxRetries: maximum attempts per item while every service is failing
// retryBaseDelay: base delay for exponential backoff
// concurrency: items enriched at once within a batch
func NewBatchProcessor(repo storage.ItemRepository, enricher enrichment.Enricher, maxRetries int, retryBaseDelay time.Duration, concurrency int) *BatchProcessor {
	if maxRetries < 1 {
		maxRetries = 1
	}
	if concurrency < 1 {
		concurrency = 1
	}
	return &BatchProcessor{
		repo:           repo,
		enricher:       enricher,
		maxRetries:     maxRetries,
		retryBaseDelay: retryBaseDelay,
		concurrency:    concurrency,
		logger:         slog.Default().With("component", "reenrich"),
	}
}

// Process enriches each item and writes the result. record, when non-nil, is
// called once per item with its final outcome kind. Items deleted meanwhile are skipped.
func (bp *BatchProcessor) Process(ctx context.Context, items []*core.Item, record func(enrichment.Kind)) error {
	if len(items) == 0 {
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(bp.concurrency)

	for _, item := range items {
		g.Go(func() error {
			kind, err := bp.processItem(gctx, item)
			if err != nil {
				return err
			}
			if record != nil {
				record(kind)
			}
			return nil
		})
	}

	return g.Wait()
}

func (bp *BatchProcessor) processItem(ctx context.Context, item *core.Item) (enrichment.Kind, error) {
	text := core.CaptureText(item.Title, item.Content)

	var outcome enrichment.Outcome
	err := RetryWithBackoff(ctx, func(ctx context.Context) error {
		outcome = bp.enricher.Enrich(ctx, text, item.Title)
		if outcome.Kind == enrichment.Failed {
			if outcome.Err != nil {
				return outcome.Err
			}
			return errAllServicesFailed
		}
		return nil
	}, bp.maxRetries, bp.retryBaseDelay)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return outcome.Kind, ctxErr
	}
	if err != nil {
		bp.logger.Warn("enrichment still failing after retries", "item", item.Id, "attempts", bp.maxRetries, "err", err)
	}

	result, errText := outcome.Resolve(item.Enrichment())
	if _, err := bp.repo.UpdateItemEnrichment(ctx, item.UserId, item.Id, result, errText); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			bp.logger.Info("item removed before re-enrichment finished", "item", item.Id)
			return outcome.Kind, nil
		}
		return outcome.Kind, fmt.Errorf("failed to update item %d: %w", item.Id, err)
	}
	if bp.onWrite != nil {
		bp.onWrite(item.UserId)
	}
	return outcome.Kind, nil
}
