package search

import (
	"context"
	"log/slog"
	"math"
	"strings"

	"github.com/poiesic/memlane/ai"
	"github.com/poiesic/memlane/core"
)

// DefaultSimilarityThreshold is the minimum cosine similarity for a tag to count as related.
const DefaultSimilarityThreshold = 0.5

// Matcher finds a user's tags that are semantically close to a query.
type Matcher struct {
	cache    *EmbeddingCache
	embedder ai.Embedder
	logger   *slog.Logger
}

// NewMatcher creates a matcher over cache. Queries are embedded with embedder.
func NewMatcher(cache *EmbeddingCache, embedder ai.Embedder, logger *slog.Logger) (*Matcher, error) {
	if cache == nil {
		return nil, ErrCacheRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Matcher{
		cache:    cache,
		embedder: embedder,
		logger:   logger.With("component", "matcher"),
	}, nil
}

// SimilarTags returns the user's lowercase tags whose cosine similarity to query
// is at least threshold. Any failure yields an empty set.
func (m *Matcher) SimilarTags(ctx context.Context, query string, userID core.ID, threshold float64) map[string]struct{} {
	similar := make(map[string]struct{})
	query = strings.TrimSpace(query)
	if query == "" {
		return similar
	}

	snap, err := m.cache.Snapshot(ctx, userID)
	if err != nil {
		m.logger.Warn("tag embeddings unavailable", "user", userID, "err", err)
		return similar
	}
	if len(snap.Tags) == 0 {
		return similar
	}

	qv, err := m.embedder.EmbedText(ctx, query)
	if err != nil {
		m.logger.Warn("error embedding query", "err", err)
		return similar
	}

	for i, tag := range snap.Tags {
		tv := snap.Vectors[i]
		if len(tv) != len(qv) {
			m.logger.Warn("embedding dimension mismatch", "tag", tag, "tag_dim", len(tv), "query_dim", len(qv))
			return make(map[string]struct{})
		}
		if cosineSimilarity(qv, tv) >= threshold {
			similar[strings.ToLower(tag)] = struct{}{}
		}
	}
	return similar
}

// cosineSimilarity returns 0 when either vector has zero magnitude.
func cosineSimilarity(a, b []float32) float64 {
	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
