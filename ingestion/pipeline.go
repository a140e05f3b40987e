package ingestion

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/poiesic/memlane/core"
	"github.com/poiesic/memlane/enrichment"
	"github.com/poiesic/memlane/storage"
	"github.com/poiesic/memlane/tagging"
)

const (
	DefaultQuickInputLimit = 2000
	DefaultTimelineLimit   = 20
	DefaultInsightTags     = 10
)

// Invalidator discards cached per-user state derived from items.
type Invalidator interface {
	Invalidate(userID core.ID)
}

// Pipeline captures items and hands their enrichment to the background scheduler.
type Pipeline struct {
	repo            storage.ItemRepository
	scheduler       *Scheduler
	tagger          *tagging.Tagger
	invalidator     Invalidator
	workers         int
	queueSize       int
	quickInputLimit int
	logger          *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// WithWorkers sets the number of concurrent enrichment workers.
// Default is DefaultWorkers.
func WithWorkers(n int) Option {
	return func(p *Pipeline) error {
		if n < 1 {
			n = 1
		}
		p.workers = n
		return nil
	}
}

// WithQueueSize sets how many jobs may wait for a worker before captures are
// marked as not queued. Default is DefaultQueueSize.
func WithQueueSize(n int) Option {
	return func(p *Pipeline) error {
		if n < 1 {
			n = 1
		}
		p.queueSize = n
		return nil
	}
}

// WithQuickInputLimit caps the runes the quick pass looks at.
func WithQuickInputLimit(n int) Option {
	return func(p *Pipeline) error {
		if n > 0 {
			p.quickInputLimit = n
		}
		return nil
	}
}

// WithTagger sets the heuristic tagger used for the quick pass.
func WithTagger(tagger *tagging.Tagger) Option {
	return func(p *Pipeline) error {
		if tagger != nil {
			p.tagger = tagger
		}
		return nil
	}
}

// WithInvalidator registers the cache to invalidate whenever a user's items change.
func WithInvalidator(inv Invalidator) Option {
	return func(p *Pipeline) error {
		p.invalidator = inv
		return nil
	}
}

// NewPipeline creates a capture pipeline and starts its scheduler.
func NewPipeline(repo storage.ItemRepository, enricher enrichment.Enricher, opts ...Option) (*Pipeline, error) {
	if repo == nil {
		return nil, ErrItemRepositoryRequired
	}
	if enricher == nil {
		return nil, ErrEnricherRequired
	}

	p := &Pipeline{
		repo:            repo,
		tagger:          tagging.New(),
		workers:         DefaultWorkers,
		queueSize:       DefaultQueueSize,
		quickInputLimit: DefaultQuickInputLimit,
		logger:          slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(p); err != nil {
			return nil, err
		}
	}
	p.logger = p.logger.With("component", "pipeline")

	scheduler, err := NewScheduler(repo, enricher, SchedulerConfig{
		Workers:    p.workers,
		QueueSize:  p.queueSize,
		OnComplete: p.invalidate,
		Logger:     p.logger,
	})
	if err != nil {
		return nil, err
	}
	p.scheduler = scheduler
	return p, nil
}

// Capture stores a new item carrying the quick enrichment and queues the full one.
// queued is false when the scheduler could not take the job; the item is then
// already marked processed with the rejection as its error.
func (p *Pipeline) Capture(ctx context.Context, userID core.ID, payload core.CapturePayload) (*core.Item, bool, error) {
	if userID == 0 {
		return nil, false, core.ErrMissingUser
	}

	title := strings.TrimSpace(payload.Title)
	if title == "" {
		title = core.DefaultCaptureTitle
	}
	source := strings.TrimSpace(payload.Source)
	if source == "" {
		source = DeriveSource(payload.URL)
	}
	contentType := strings.TrimSpace(payload.ContentType)
	if contentType == "" {
		contentType = InferContentType(payload.MimeType)
	}
	content := payload.Content
	if strings.TrimSpace(content) == "" {
		content = payload.Selection
	}

	text := core.CaptureText(title, content)
	quick := p.tagger.Process(truncateRunes(text, p.quickInputLimit))

	item := &core.Item{
		UserId:      userID,
		URL:         payload.URL,
		Title:       title,
		Source:      source,
		ContentType: contentType,
		Content:     content,
		Thumbnail:   payload.Thumbnail,
		CreatedAt:   time.Now().UTC(),
	}
	item.ApplyEnrichment(quick)

	added, err := p.repo.AddItem(ctx, item)
	if err != nil {
		return nil, false, err
	}
	p.invalidate(userID)

	_, err = p.scheduler.Submit(EnrichmentJob{
		ItemId:    added.Id,
		UserId:    userID,
		Text:      text,
		TitleHint: title,
		Quick:     quick,
	})
	if err == nil {
		return added, true, nil
	}
	if !errors.Is(err, ErrQueueFull) && !errors.Is(err, ErrSchedulerClosed) {
		return added, false, err
	}

	updated, uerr := p.repo.UpdateItemEnrichment(ctx, userID, added.Id, quick, err.Error())
	if uerr != nil {
		return added, false, uerr
	}
	p.invalidate(userID)
	return updated, false, nil
}

// ProcessingStatus reports whether any of the user's items still await enrichment.
func (p *Pipeline) ProcessingStatus(ctx context.Context, userID core.ID) (bool, int, error) {
	count, err := p.repo.CountUnprocessed(ctx, userID)
	if err != nil {
		return false, 0, err
	}
	return count > 0, count, nil
}

// Get returns one of the user's items.
func (p *Pipeline) Get(ctx context.Context, userID, itemID core.ID) (*core.Item, error) {
	return p.repo.GetItem(ctx, userID, itemID)
}

// Delete removes one of the user's items.
func (p *Pipeline) Delete(ctx context.Context, userID, itemID core.ID) error {
	if err := p.repo.DeleteItem(ctx, userID, itemID); err != nil {
		return err
	}
	p.invalidate(userID)
	return nil
}

// Timeline returns the user's most recent items. A non-positive limit uses DefaultTimelineLimit.
func (p *Pipeline) Timeline(ctx context.Context, userID core.ID, limit int) ([]*core.Item, error) {
	if limit <= 0 {
		limit = DefaultTimelineLimit
	}
	return p.repo.ListRecentItems(ctx, userID, limit)
}

// Insights aggregates the user's items.
func (p *Pipeline) Insights(ctx context.Context, userID core.ID) (*core.Insights, error) {
	return p.repo.Insights(ctx, userID, DefaultInsightTags)
}

// Pending returns the number of enrichment jobs waiting for a worker.
func (p *Pipeline) Pending() int {
	return p.scheduler.Pending()
}

// Close stops accepting captures and waits for queued enrichment to finish.
func (p *Pipeline) Close(ctx context.Context) error {
	return p.scheduler.Close(ctx)
}

func (p *Pipeline) invalidate(userID core.ID) {
	if p.invalidator != nil {
		p.invalidator.Invalidate(userID)
	}
}

// DeriveSource returns the URL's host without a leading "www.", or
// core.DefaultCaptureSource when there is none.
func DeriveSource(rawURL string) string {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return core.DefaultCaptureSource
	}
	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	if host == "" {
		return core.DefaultCaptureSource
	}
	return host
}

// InferContentType maps a MIME type to video, image, document or web.
func InferContentType(mimeType string) string {
	mimeType = strings.ToLower(strings.TrimSpace(mimeType))
	switch {
	case strings.Contains(mimeType, "video"):
		return "video"
	case strings.Contains(mimeType, "image"):
		return "image"
	case strings.Contains(mimeType, "pdf"):
		return "document"
	default:
		return "web"
	}
}

func truncateRunes(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	return string([]rune(s)[:limit])
}
