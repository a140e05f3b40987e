package search

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/poiesic/memlane/ai"
	"github.com/poiesic/memlane/core"
	"golang.org/x/sync/singleflight"
)

// TagLister supplies a user's distinct tag vocabulary.
type TagLister interface {
	ListDistinctTags(ctx context.Context, userID core.ID) ([]string, error)
}

// TagEmbeddingSnapshot is a user's tag vocabulary with one vector per tag.
// Snapshots are immutable once published by the cache.
type TagEmbeddingSnapshot struct {
	Owner   core.ID
	Tags    []string
	Vectors [][]float32
}

// CacheStats are cumulative counters for diagnostics.
type CacheStats struct {
	Hits   int64
	Misses int64
	Loads  int64
	Users  int
}

// HitRate returns hits / (hits + misses), or 0 before any lookup.
func (s CacheStats) HitRate() float64 {
	if s.Hits+s.Misses > 0 {
		return float64(s.Hits) / float64(s.Hits+s.Misses)
	}
	return 0.0
}

// DefaultLoadTimeout bounds one vocabulary load and its embedding call.
const DefaultLoadTimeout = 30 * time.Second

type generation struct {
	epoch uint64
	user  uint64
}

// EmbeddingCache lazily builds and holds tag embedding snapshots per user.
// Concurrent misses for the same user share one load. A snapshot whose load
// overlapped an invalidation is handed to its waiters but not kept.
type EmbeddingCache struct {
	tags     TagLister
	embedder    ai.Embedder
	loadTimeout time.Duration
	logger      *slog.Logger

	mu          sync.Mutex
	snapshots   map[core.ID]*TagEmbeddingSnapshot
	generations map[core.ID]uint64
	epoch       uint64

	group  singleflight.Group
	hits   atomic.Int64
	misses atomic.Int64
	loads  atomic.Int64
}

// CacheOption configures an EmbeddingCache.
type CacheOption func(*EmbeddingCache) error

// WithCacheLogger sets a custom logger.
// Default is slog.Default().
func WithCacheLogger(logger *slog.Logger) CacheOption {
	return func(c *EmbeddingCache) error {
		if logger == nil {
			logger = slog.Default()
		}
		c.logger = logger
		return nil
	}
}

// WithLoadTimeout bounds each snapshot build. Non-positive values are ignored.
// Default is DefaultLoadTimeout.
func WithLoadTimeout(d time.Duration) CacheOption {
	return func(c *EmbeddingCache) error {
		if d > 0 {
			c.loadTimeout = d
		}
		return nil
	}
}

// NewEmbeddingCache creates an empty cache.
func NewEmbeddingCache(tags TagLister, embedder ai.Embedder, opts ...CacheOption) (*EmbeddingCache, error) {
	if tags == nil {
		return nil, ErrItemRepositoryRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}
	c := &EmbeddingCache{
		tags:        tags,
		embedder:    embedder,
		loadTimeout: DefaultLoadTimeout,
		logger:      slog.Default(),
		snapshots:   make(map[core.ID]*TagEmbeddingSnapshot),
		generations: make(map[core.ID]uint64),
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	c.logger = c.logger.With("component", "embedding-cache")
	return c, nil
}

// Snapshot returns the user's snapshot, building it on a miss.
// The shared build is detached from ctx, so one caller giving up does not
// fail the others waiting on the same user; that caller returns ctx.Err().
func (c *EmbeddingCache) Snapshot(ctx context.Context, userID core.ID) (*TagEmbeddingSnapshot, error) {
	c.mu.Lock()
	if snap, ok := c.snapshots[userID]; ok {
		c.mu.Unlock()
		c.hits.Add(1)
		return snap, nil
	}
	c.mu.Unlock()
	c.misses.Add(1)

	ch := c.group.DoChan(strconv.FormatUint(uint64(userID), 10), func() (any, error) {
		c.mu.Lock()
		if snap, ok := c.snapshots[userID]; ok {
			c.mu.Unlock()
			return snap, nil
		}
		gen := c.generationLocked(userID)
		c.mu.Unlock()

		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.loadTimeout)
		defer cancel()
		snap, err := c.load(loadCtx, userID)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		if c.generationLocked(userID) == gen {
			c.snapshots[userID] = snap
		} else {
			c.logger.Debug("discarding snapshot built across an invalidation", "user", userID)
		}
		c.mu.Unlock()
		return snap, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*TagEmbeddingSnapshot), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Invalidate discards the user's snapshot. The next Snapshot call rebuilds it.
func (c *EmbeddingCache) Invalidate(userID core.ID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.snapshots, userID)
	c.generations[userID]++
}

// InvalidateAll discards every snapshot.
func (c *EmbeddingCache) InvalidateAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	clear(c.snapshots)
	c.epoch++
}

// Stats returns the cache counters.
func (c *EmbeddingCache) Stats() CacheStats {
	c.mu.Lock()
	users := len(c.snapshots)
	c.mu.Unlock()
	return CacheStats{
		Hits:   c.hits.Load(),
		Misses: c.misses.Load(),
		Loads:  c.loads.Load(),
		Users:  users,
	}
}

func (c *EmbeddingCache) generationLocked(userID core.ID) generation {
	return generation{epoch: c.epoch, user: c.generations[userID]}
}

func (c *EmbeddingCache) load(ctx context.Context, userID core.ID) (*TagEmbeddingSnapshot, error) {
	c.loads.Add(1)

	tags, err := c.tags.ListDistinctTags(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("loading tags: %w", err)
	}
	tags = core.NormalizeTags(tags)

	snap := &TagEmbeddingSnapshot{Owner: userID, Tags: tags}
	if len(tags) == 0 {
		return snap, nil
	}

	vectors, err := c.embedder.EmbedTexts(ctx, tags)
	if err != nil {
		return nil, fmt.Errorf("embedding tags: %w", err)
	}
	if len(vectors) != len(tags) {
		return nil, fmt.Errorf("%w: %d tags, %d vectors", ErrVectorCountMismatch, len(tags), len(vectors))
	}
	snap.Vectors = vectors

	c.logger.Debug("built tag embedding snapshot", "user", userID, "tags", len(tags))
	return snap, nil
}
