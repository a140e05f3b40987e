package storage

import (
	"context"

	"github.com/poiesic/memlane/core"
)

// Repository provides common storage operations shared across all repositories.
// Implementations must be thread-safe and support concurrent access.
type Repository interface {
	// WithTransaction executes a function within a transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn returns nil, the transaction is committed.
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error

	// Close closes the storage backend and releases resources.
	Close() error
}

// ItemQuery selects a user's items.
//
// An item matches when its text or tags contain Substring (case-insensitive), OR when
// one of its tags is in AnyTags. When both are empty every item matches. Emotion, when
// set, is an additional case-insensitive equality filter.
type ItemQuery struct {
	Substring string
	AnyTags   []string
	Emotion   string
	// Limit caps the result. Zero or negative means no limit.
	Limit int
}

// ItemRepository provides operations for managing captured items.
type ItemRepository interface {
	Repository

	// AddItem stores a new item.
	// Generates the ID from a sequence and sets CreatedAt/UpdatedAt if unset.
	// Returns the item with its ID and timestamps populated.
	AddItem(ctx context.Context, item *core.Item) (*core.Item, error)

	// UpdateItemEnrichment replaces the item's enrichment, marks it processed and
	// records errText as its processing error (empty clears it).
	// Returns ErrNotFound if the item doesn't exist or belongs to another user.
	UpdateItemEnrichment(ctx context.Context, userID, itemID core.ID, e core.Enrichment, errText string) (*core.Item, error)

	// GetItem retrieves a single item owned by userID.
	// Returns ErrNotFound if the item doesn't exist or belongs to another user.
	GetItem(ctx context.Context, userID, itemID core.ID) (*core.Item, error)

	// DeleteItem removes an item and its indices.
	// Returns ErrNotFound if the item doesn't exist or belongs to another user.
	DeleteItem(ctx context.Context, userID, itemID core.ID) error

	// ListDistinctTags returns every distinct tag across the user's items, sorted.
	ListDistinctTags(ctx context.Context, userID core.ID) ([]string, error)

	// SearchItems returns the user's items matching q, newest first.
	SearchItems(ctx context.Context, userID core.ID, q ItemQuery) ([]*core.Item, error)

	// ListRecentItems returns up to limit of the user's items, newest first.
	ListRecentItems(ctx context.Context, userID core.ID, limit int) ([]*core.Item, error)

	// CountUnprocessed returns how many of the user's items still await enrichment.
	CountUnprocessed(ctx context.Context, userID core.ID) (int, error)

	// ListItemsNeedingEnrichment returns items of every user that are unprocessed or
	// carry a processing error, oldest first, up to limit (zero means no limit).
	ListItemsNeedingEnrichment(ctx context.Context, limit int) ([]*core.Item, error)

	// Insights aggregates the user's items. topTags caps the tag ranking.
	Insights(ctx context.Context, userID core.ID, topTags int) (*core.Insights, error)
}
