package ingestion

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/poiesic/memlane/ai/mock"
	"github.com/poiesic/memlane/core"
	"github.com/poiesic/memlane/enrichment"
	"github.com/poiesic/memlane/storage"
	"github.com/poiesic/memlane/tagging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingInvalidator struct {
	mu    sync.Mutex
	calls map[core.ID]int
}

func (c *countingInvalidator) Invalidate(userID core.ID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.calls == nil {
		c.calls = make(map[core.ID]int)
	}
	c.calls[userID]++
}

func (c *countingInvalidator) count(userID core.ID) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls[userID]
}

func newPipeline(t *testing.T, repo storage.ItemRepository, e enrichment.Enricher, opts ...Option) *Pipeline {
	t.Helper()
	p, err := NewPipeline(repo, e, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { p.Close(context.Background()) })
	return p
}

func TestPipeline_CaptureDerivesFields(t *testing.T) {
	repo := newTestRepo(t)
	p := newPipeline(t, repo, enrichment.NewHeuristic(nil))
	ctx := context.Background()

	item, queued, err := p.Capture(ctx, testUser, core.CapturePayload{
		URL:       "https://www.example.com/articles/1",
		MimeType:  "application/pdf",
		Selection: "Congress passed a new bill today. It affects healthcare.",
	})
	require.NoError(t, err)
	assert.True(t, queued)
	assert.NotZero(t, item.Id)
	assert.Equal(t, core.DefaultCaptureTitle, item.Title)
	assert.Equal(t, "example.com", item.Source)
	assert.Equal(t, "document", item.ContentType)
	assert.Equal(t, "Congress passed a new bill today. It affects healthcare.", item.Content)
	assert.False(t, item.Processed)

	quick := tagging.New().Process(core.DefaultCaptureTitle + ". " + item.Content)
	assert.True(t, quick.Equal(item.Enrichment()))

	require.NoError(t, p.Close(ctx))
	stored, err := p.Get(ctx, testUser, item.Id)
	require.NoError(t, err)
	assert.True(t, stored.Processed)
}

func TestPipeline_CaptureKeepsExplicitFields(t *testing.T) {
	repo := newTestRepo(t)
	p := newPipeline(t, repo, enrichment.NewHeuristic(nil))

	item, _, err := p.Capture(context.Background(), testUser, core.CapturePayload{
		URL:         "https://news.example.org/x",
		Title:       "  Budget vote  ",
		Source:      "Newsletter",
		ContentType: "note",
		MimeType:    "video/mp4",
		Content:     "The vote was close.",
		Selection:   "ignored",
	})
	require.NoError(t, err)
	assert.Equal(t, "Budget vote", item.Title)
	assert.Equal(t, "Newsletter", item.Source)
	assert.Equal(t, "note", item.ContentType)
	assert.Equal(t, "The vote was close.", item.Content)
}

func TestPipeline_CaptureRequiresUser(t *testing.T) {
	p := newPipeline(t, newTestRepo(t), enrichment.NewHeuristic(nil))

	_, _, err := p.Capture(context.Background(), 0, core.CapturePayload{Content: "x"})
	assert.ErrorIs(t, err, core.ErrMissingUser)
}

func TestPipeline_QuickInputIsCapped(t *testing.T) {
	repo := newTestRepo(t)
	p := newPipeline(t, repo, enrichment.NewHeuristic(nil), WithQuickInputLimit(20))

	content := "Short lead sentence here. " + strings.Repeat("awesome wonderful ", 200)
	item, _, err := p.Capture(context.Background(), testUser, core.CapturePayload{Title: "Cap", Content: content})
	require.NoError(t, err)

	expected := tagging.New().Process(truncateRunes("Cap. "+content, 20))
	assert.True(t, expected.Equal(item.Enrichment()))
}

// With every external service down, each captured item still ends up processed
// with a valid enrichment and the failure recorded.
func TestPipeline_AllServicesDownFallsBack(t *testing.T) {
	repo := newTestRepo(t)
	down := errors.New("connection refused")
	summarizer := mock.NewMockSummarizer().WithSummarizeFunc(func(ctx context.Context, text, titleHint string) (string, error) {
		return "", down
	})
	tagger := mock.NewMockTagger().WithTagFunc(func(ctx context.Context, text string) (string, error) {
		return "", down
	})
	adapter, err := enrichment.NewAdapter(summarizer, tagger)
	require.NoError(t, err)
	p := newPipeline(t, repo, adapter)
	ctx := context.Background()

	texts := []string{
		"Congress passed a new bill today. It affects healthcare.",
		"",
		"I absolutely love the new park! It is wonderful.",
		"The storm caused a terrible disaster downtown.",
	}
	var ids []core.ID
	quick := make(map[core.ID]core.Enrichment)
	for _, text := range texts {
		item, queued, err := p.Capture(ctx, testUser, core.CapturePayload{Title: "Note", Content: text})
		require.NoError(t, err)
		require.True(t, queued)
		ids = append(ids, item.Id)
		quick[item.Id] = item.Enrichment()
	}

	require.NoError(t, p.Close(ctx))

	for _, id := range ids {
		item, err := p.Get(ctx, testUser, id)
		require.NoError(t, err)
		assert.True(t, item.Processed)
		assert.Contains(t, item.ProcessingError, "connection refused")
		assert.True(t, quick[id].Equal(item.Enrichment()))
		assert.NoError(t, core.ValidateEnrichment(item.Enrichment(), core.DefaultKeywordLimit))
	}

	pending, count, err := p.ProcessingStatus(ctx, testUser)
	require.NoError(t, err)
	assert.False(t, pending)
	assert.Zero(t, count)
}

func TestPipeline_QueueFullMarksItem(t *testing.T) {
	repo := newTestRepo(t)
	release := make(chan struct{})
	blocking := enricherFunc(func(ctx context.Context, text, titleHint string) enrichment.Outcome {
		<-release
		return enrichment.Outcome{Kind: enrichment.Success, Result: tagging.New().Process(text)}
	})
	p := newPipeline(t, repo, blocking, WithWorkers(1), WithQueueSize(1))
	ctx := context.Background()

	var rejected *core.Item
	for i := 0; i < 4 && rejected == nil; i++ {
		item, queued, err := p.Capture(ctx, testUser, core.CapturePayload{Title: "Busy", Content: "Some text."})
		require.NoError(t, err)
		if !queued {
			rejected = item
		}
	}
	require.NotNil(t, rejected)
	assert.True(t, rejected.Processed)
	assert.Equal(t, ErrQueueFull.Error(), rejected.ProcessingError)
	assert.LessOrEqual(t, p.Pending(), 1)

	pending, _, err := p.ProcessingStatus(ctx, testUser)
	require.NoError(t, err)
	assert.True(t, pending)

	close(release)
	require.NoError(t, p.Close(ctx))

	pending, count, err := p.ProcessingStatus(ctx, testUser)
	require.NoError(t, err)
	assert.False(t, pending)
	assert.Zero(t, count)
}

func TestPipeline_InvalidatesOnEveryChange(t *testing.T) {
	repo := newTestRepo(t)
	inv := &countingInvalidator{}
	p := newPipeline(t, repo, enrichment.NewHeuristic(nil), WithInvalidator(inv))
	ctx := context.Background()

	item, _, err := p.Capture(ctx, testUser, core.CapturePayload{Title: "One", Content: "First item."})
	require.NoError(t, err)
	require.NoError(t, p.Close(ctx))
	// insert plus enrichment write
	assert.Equal(t, 2, inv.count(testUser))

	require.NoError(t, p.Delete(ctx, testUser, item.Id))
	assert.Equal(t, 3, inv.count(testUser))

	_, err = p.Get(ctx, testUser, item.Id)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestPipeline_TimelineAndInsights(t *testing.T) {
	repo := newTestRepo(t)
	p := newPipeline(t, repo, enrichment.NewHeuristic(nil))
	ctx := context.Background()

	for _, title := range []string{"Alpha", "Beta", "Gamma"} {
		_, _, err := p.Capture(ctx, testUser, core.CapturePayload{Title: title, Content: "Gardening notes about tomatoes.", MimeType: "text/html"})
		require.NoError(t, err)
	}
	require.NoError(t, p.Close(ctx))

	items, err := p.Timeline(ctx, testUser, 0)
	require.NoError(t, err)
	assert.Len(t, items, 3)

	items, err = p.Timeline(ctx, testUser, 2)
	require.NoError(t, err)
	assert.Len(t, items, 2)

	insights, err := p.Insights(ctx, testUser)
	require.NoError(t, err)
	assert.Equal(t, 3, insights.TotalItems)
	assert.Equal(t, 3, insights.ByContentType["web"])
	require.NotEmpty(t, insights.TopTags)
	assert.Equal(t, 3, insights.TopTags[0].Count)
}

func TestDeriveSource(t *testing.T) {
	tests := map[string]string{
		"https://www.example.com/a":  "example.com",
		"http://blog.example.com:80": "blog.example.com",
		"HTTPS://WWW.Example.COM":    "example.com",
		"":                           core.DefaultCaptureSource,
		"not a url":                  core.DefaultCaptureSource,
		"://bad":                     core.DefaultCaptureSource,
	}
	for in, want := range tests {
		assert.Equal(t, want, DeriveSource(in), "url %q", in)
	}
}

func TestInferContentType(t *testing.T) {
	assert.Equal(t, "video", InferContentType("video/mp4"))
	assert.Equal(t, "image", InferContentType("image/png"))
	assert.Equal(t, "document", InferContentType("application/pdf"))
	assert.Equal(t, "web", InferContentType("text/html"))
	assert.Equal(t, "web", InferContentType(""))
}

func TestNewPipeline_RequiresCollaborators(t *testing.T) {
	_, err := NewPipeline(nil, enrichment.NewHeuristic(nil))
	assert.ErrorIs(t, err, ErrItemRepositoryRequired)

	_, err = NewPipeline(newTestRepo(t), nil)
	assert.ErrorIs(t, err, ErrEnricherRequired)
}
