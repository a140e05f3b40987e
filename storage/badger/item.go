package badger

import (
	"bytes"
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/memlane/core"
	"github.com/poiesic/memlane/storage"
)

// ItemRepository implements storage.ItemRepository for BadgerDB.
type ItemRepository struct {
	backend *Backend
	idSeq   *badger.Sequence
}

var _ storage.ItemRepository = (*ItemRepository)(nil)

// NewItemRepository creates a new ItemRepository.
func NewItemRepository(backend *Backend) (*ItemRepository, error) {
	idSeq, err := backend.GetSequence(itemIDSeq)
	if err != nil {
		return nil, err
	}

	return &ItemRepository{
		backend: backend,
		idSeq:   idSeq,
	}, nil
}

// Close releases the ID sequence.
func (r *ItemRepository) Close() error {
	return r.idSeq.Release()
}

// WithTransaction delegates to the backend.
func (r *ItemRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// AddItem stores a new item with a sequence-generated ID.
func (r *ItemRepository) AddItem(ctx context.Context, item *core.Item) (*core.Item, error) {
	if err := core.ValidateItem(item); err != nil {
		return nil, err
	}

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		nextID, err := r.idSeq.Next()
		if err != nil {
			return err
		}
		// BadgerDB sequences can return 0 on first call, so we skip it
		if nextID == 0 {
			nextID, err = r.idSeq.Next()
			if err != nil {
				return err
			}
		}
		item.Id = core.ID(nextID)

		now := time.Now().UTC().Truncate(time.Microsecond)
		if item.CreatedAt.IsZero() {
			item.CreatedAt = now
		}
		item.CreatedAt = item.CreatedAt.UTC().Truncate(time.Microsecond)
		item.UpdatedAt = now
		item.Keywords = core.NormalizeTags(item.Keywords)

		itemKey := makeItemKey(item.Id)
		if _, err := tx.Get(itemKey); err == nil {
			return fmt.Errorf("%w: item %d", storage.ErrDuplicateKey, item.Id)
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		if err := tx.Set(itemKey, storage.MarshalItem(item)); err != nil {
			return err
		}
		timelineKey := makeTimelineKey(item.UserId, item.CreatedAt, item.Id)
		if err := tx.Set(timelineKey, storage.MarshalID(item.Id)); err != nil {
			return err
		}
		if err := r.updateTagIndex(tx, item); err != nil {
			return err
		}
		return commit(tx)
	}, true)
	if err != nil {
		return nil, err
	}
	return item, nil
}

// UpdateItemEnrichment replaces an item's enrichment and marks it processed.
func (r *ItemRepository) UpdateItemEnrichment(ctx context.Context, userID, itemID core.ID, e core.Enrichment, errText string) (*core.Item, error) {
	var updated *core.Item
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		item, err := r.readOwnedItem(tx, userID, itemID)
		if err != nil {
			return err
		}

		if err := r.deleteTagIndex(tx, item); err != nil {
			return err
		}

		item.ApplyEnrichment(e)
		item.Processed = true
		item.ProcessingError = errText
		item.UpdatedAt = time.Now().UTC().Truncate(time.Microsecond)

		if err := core.ValidateItem(item); err != nil {
			return err
		}

		if err := tx.Set(makeItemKey(item.Id), storage.MarshalItem(item)); err != nil {
			return err
		}
		if err := r.updateTagIndex(tx, item); err != nil {
			return err
		}
		updated = item
		return commit(tx)
	}, true)
	return updated, err
}

// GetItem retrieves a single item owned by userID.
func (r *ItemRepository) GetItem(ctx context.Context, userID, itemID core.ID) (*core.Item, error) {
	var result *core.Item
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		result, err = r.readOwnedItem(tx, userID, itemID)
		return err
	}, false)
	return result, err
}

// DeleteItem removes an item and its timeline and tag index entries.
func (r *ItemRepository) DeleteItem(ctx context.Context, userID, itemID core.ID) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		item, err := r.readOwnedItem(tx, userID, itemID)
		if err != nil {
			return err
		}

		if err := tx.Delete(makeTimelineKey(item.UserId, item.CreatedAt, item.Id)); err != nil {
			return err
		}
		if err := r.deleteTagIndex(tx, item); err != nil {
			return err
		}
		if err := tx.Delete(makeItemKey(item.Id)); err != nil {
			return err
		}
		return commit(tx)
	}, true)
}

// ListDistinctTags returns the user's distinct tags in lexical order.
func (r *ItemRepository) ListDistinctTags(ctx context.Context, userID core.ID) ([]string, error) {
	seen := make(map[string]bool)
	var tags []string
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makePartialTagKey(userID)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			err := iter.Item().Value(func(val []byte) error {
				tag := string(val)
				if !seen[tag] {
					seen[tag] = true
					tags = append(tags, tag)
				}
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}
	slices.Sort(tags)
	return tags, nil
}

// SearchItems returns the user's items matching q, newest first.
func (r *ItemRepository) SearchItems(ctx context.Context, userID core.ID, q storage.ItemQuery) ([]*core.Item, error) {
	var results []*core.Item
	err := r.eachUserItem(ctx, userID, func(item *core.Item) bool {
		if q.Matches(item) {
			results = append(results, item)
		}
		return q.Limit <= 0 || len(results) < q.Limit
	})
	return results, err
}

// ListRecentItems returns up to limit of the user's items, newest first.
func (r *ItemRepository) ListRecentItems(ctx context.Context, userID core.ID, limit int) ([]*core.Item, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("%w: limit must be positive", storage.ErrInvalidQuery)
	}
	return r.SearchItems(ctx, userID, storage.ItemQuery{Limit: limit})
}

// CountUnprocessed returns how many of the user's items still await enrichment.
func (r *ItemRepository) CountUnprocessed(ctx context.Context, userID core.ID) (int, error) {
	count := 0
	err := r.eachUserItem(ctx, userID, func(item *core.Item) bool {
		if !item.Processed {
			count++
		}
		return true
	})
	return count, err
}

// ListItemsNeedingEnrichment returns unprocessed or failed items across all users, oldest first.
func (r *ItemRepository) ListItemsNeedingEnrichment(ctx context.Context, limit int) ([]*core.Item, error) {
	var results []*core.Item
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = itemKeyPrefix()
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			var item *core.Item
			err := iter.Item().Value(func(val []byte) error {
				var err error
				item, err = storage.UnmarshalItem(val)
				return err
			})
			if err != nil {
				return err
			}
			if !item.Processed || item.ProcessingError != "" {
				results = append(results, item)
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	slices.SortFunc(results, func(a, b *core.Item) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.Id, b.Id)
	})
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// Insights aggregates the user's items.
func (r *ItemRepository) Insights(ctx context.Context, userID core.ID, topTags int) (*core.Insights, error) {
	insights := &core.Insights{
		ByContentType: make(map[string]int),
		ByEmotion:     make(map[string]int),
	}
	tagCounts := make(map[string]int)

	err := r.eachUserItem(ctx, userID, func(item *core.Item) bool {
		insights.TotalItems++
		insights.ByContentType[item.ContentType]++
		if item.Emotion != "" {
			insights.ByEmotion[string(item.Emotion)]++
		}
		for _, tag := range item.Tags() {
			tagCounts[tag]++
		}
		return true
	})
	if err != nil {
		return nil, err
	}

	for tag, count := range tagCounts {
		insights.TopTags = append(insights.TopTags, core.TagCount{Tag: tag, Count: count})
	}
	slices.SortFunc(insights.TopTags, func(a, b core.TagCount) int {
		if a.Count != b.Count {
			return b.Count - a.Count
		}
		return cmp.Compare(a.Tag, b.Tag)
	})
	if topTags > 0 && len(insights.TopTags) > topTags {
		insights.TopTags = insights.TopTags[:topTags]
	}
	return insights, nil
}

// Helper methods

// eachUserItem walks the user's timeline index newest first, stopping when fn returns false.
func (r *ItemRepository) eachUserItem(ctx context.Context, userID core.ID, fn func(item *core.Item) bool) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true
		iter := tx.NewIterator(opts)
		defer iter.Close()

		prefix := makePartialTimelineKey(userID)
		for iter.Seek(seekLast(prefix)); iter.Valid(); iter.Next() {
			if !bytes.HasPrefix(iter.Item().Key(), prefix) {
				break
			}
			if err := ctx.Err(); err != nil {
				return err
			}

			var itemID core.ID
			if err := iter.Item().Value(func(val []byte) error {
				var err error
				itemID, err = storage.UnmarshalID(val)
				return err
			}); err != nil {
				return err
			}

			item, err := r.readItem(tx, makeItemKey(itemID))
			if err != nil {
				return err
			}
			if item == nil {
				continue
			}
			if !fn(item) {
				break
			}
		}
		return nil
	}, false)
}

// readItem reads an item from the transaction. Returns nil, nil when absent.
func (r *ItemRepository) readItem(tx *badger.Txn, key []byte) (*core.Item, error) {
	entry, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var item *core.Item
	err = entry.Value(func(val []byte) error {
		var unmarshalErr error
		item, unmarshalErr = storage.UnmarshalItem(val)
		return unmarshalErr
	})
	return item, err
}

// readOwnedItem reads an item and hides it from every user but its owner.
func (r *ItemRepository) readOwnedItem(tx *badger.Txn, userID, itemID core.ID) (*core.Item, error) {
	item, err := r.readItem(tx, makeItemKey(itemID))
	if err != nil {
		return nil, err
	}
	if item == nil || item.UserId != userID {
		return nil, storage.ErrNotFound
	}
	return item, nil
}

// updateTagIndex adds tag index entries for an item.
func (r *ItemRepository) updateTagIndex(tx *badger.Txn, item *core.Item) error {
	for _, tag := range item.Tags() {
		if err := tx.Set(makeTagKey(item.UserId, tag, item.Id), []byte(tag)); err != nil {
			return err
		}
	}
	return nil
}

// deleteTagIndex removes tag index entries for an item.
func (r *ItemRepository) deleteTagIndex(tx *badger.Txn, item *core.Item) error {
	for _, tag := range item.Tags() {
		if err := tx.Delete(makeTagKey(item.UserId, tag, item.Id)); err != nil {
			return err
		}
	}
	return nil
}
