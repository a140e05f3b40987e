package search

import (
	"context"
	"log/slog"
	"slices"
	"sort"
	"strings"

	"github.com/poiesic/memlane/core"
	"github.com/poiesic/memlane/storage"
)

// DefaultLimit caps search results when the request does not.
const DefaultLimit = 25

// SearchRequest describes one search over a user's items.
type SearchRequest struct {
	UserId      core.ID
	Query       string
	Emotion     string
	Limit       int
	UseSemantic bool
}

// SearchResponse carries the matching items, newest first.
// SemanticUsed is true only when related tags were found and broadened the match.
type SearchResponse struct {
	Items        []*core.Item
	SemanticUsed bool
}

// Searcher combines literal and semantic matching over a user's items.
type Searcher struct {
	repo      storage.ItemRepository
	matcher   *Matcher
	threshold float64
	logger    *slog.Logger
}

// Option configures a Searcher.
type Option func(*Searcher) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Searcher) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// WithMatcher enables semantic broadening. Without a matcher semantic
// requests fall back to literal matching.
func WithMatcher(m *Matcher) Option {
	return func(s *Searcher) error {
		s.matcher = m
		return nil
	}
}

// WithThreshold sets the similarity threshold for semantic matches.
// Default is DefaultSimilarityThreshold.
func WithThreshold(threshold float64) Option {
	return func(s *Searcher) error {
		s.threshold = threshold
		return nil
	}
}

// NewSearcher creates a new searcher.
func NewSearcher(repo storage.ItemRepository, opts ...Option) (*Searcher, error) {
	if repo == nil {
		return nil, ErrItemRepositoryRequired
	}

	s := &Searcher{
		repo:      repo,
		threshold: DefaultSimilarityThreshold,
		logger:    slog.Default(),
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	s.logger = s.logger.With("component", "searcher")

	return s, nil
}

// Search returns the user's items matching req.
// Only storage errors are returned; semantic matching problems degrade to literal search.
func (s *Searcher) Search(ctx context.Context, req SearchRequest) (SearchResponse, error) {
	return s.SearchWithMonitor(ctx, req, nil)
}

// SearchWithMonitor is Search with callbacks at each stage.
func (s *Searcher) SearchWithMonitor(ctx context.Context, req SearchRequest, monitor SearchMonitor) (SearchResponse, error) {
	// Use noop monitor if none provided
	if monitor == nil {
		monitor = &noopMonitor{}
	}
	if req.UserId == 0 {
		return SearchResponse{}, core.ErrMissingUser
	}
	if req.Limit <= 0 {
		req.Limit = DefaultLimit
	}
	req.Query = strings.TrimSpace(req.Query)
	req.Emotion = strings.TrimSpace(req.Emotion)

	monitor.Start(req)

	// 1. Related tags, if asked for and available
	var related []string
	if req.UseSemantic && req.Query != "" && s.matcher != nil {
		for tag := range s.matcher.SimilarTags(ctx, req.Query, req.UserId, s.threshold) {
			related = append(related, tag)
		}
		sort.Strings(related)
	}
	monitor.AfterSemanticMatch(related)

	// 2. Retrieve matching items
	items, err := s.repo.SearchItems(ctx, req.UserId, storage.ItemQuery{
		Substring: req.Query,
		AnyTags:   related,
		Emotion:   req.Emotion,
		Limit:     req.Limit,
	})
	if err != nil {
		s.logger.Error("error searching items", "user", req.UserId, "err", err)
		return SearchResponse{}, err
	}
	monitor.AfterItemRetrieval(items)

	// 3. Dedup, order newest first, cap
	seen := make(map[core.ID]struct{}, len(items))
	results := make([]*core.Item, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		if _, dup := seen[item.Id]; dup {
			continue
		}
		seen[item.Id] = struct{}{}
		results = append(results, item)
	}
	slices.SortStableFunc(results, func(a, b *core.Item) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		switch {
		case a.Id > b.Id:
			return -1
		case a.Id < b.Id:
			return 1
		}
		return 0
	})
	if len(results) > req.Limit {
		results = results[:req.Limit]
	}

	resp := SearchResponse{Items: results, SemanticUsed: len(related) > 0}
	monitor.Finish(resp)
	return resp, nil
}
