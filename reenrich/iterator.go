package reenrich

import (
	"context"

	"github.com/poiesic/memlane/core"
	"github.com/poiesic/memlane/storage"
)

const (
	// DefaultBatchSize is the default number of items handed to each batch
	DefaultBatchSize = 50
)

// ItemIterator walks every item that still needs enrichment, in batches.
type ItemIterator struct {
	repo      storage.ItemRepository
	batchSize int
	limit     int
}

// NewItemIterator creates a new item iterator.
// batchSize: number of items per batch; limit caps the total (0 means all).
func NewItemIterator(repo storage.ItemRepository, batchSize, limit int) *ItemIterator {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	if limit < 0 {
		limit = 0
	}
	return &ItemIterator{repo: repo, batchSize: batchSize, limit: limit}
}

// Pending returns the items the iterator would visit, oldest first.
func (it *ItemIterator) Pending(ctx context.Context) ([]*core.Item, error) {
	return it.repo.ListItemsNeedingEnrichment(ctx, it.limit)
}

// ForEach calls fn for each batch of items.
// Iteration stops on the first error from fn. Context cancellation is checked between batches.
func (it *ItemIterator) ForEach(ctx context.Context, items []*core.Item, fn func([]*core.Item) error) error {
	for i := 0; i < len(items); i += it.batchSize {
		if err := ctx.Err(); err != nil {
			return err
		}
		end := min(i+it.batchSize, len(items))
		if err := fn(items[i:end]); err != nil {
			return err
		}
	}
	return nil
}
