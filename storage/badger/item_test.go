package badger

import (
	"context"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/memlane/core"
	"github.com/poiesic/memlane/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepo(t *testing.T) storage.ItemRepository {
	t.Helper()
	repo, backend, err := NewMemoryRepository()
	require.NoError(t, err)
	t.Cleanup(func() {
		repo.Close()
		backend.Close()
	})
	return repo
}

func addItem(t *testing.T, repo storage.ItemRepository, user core.ID, title string, tags []string, created time.Time) *core.Item {
	t.Helper()
	item, err := repo.AddItem(context.Background(), &core.Item{
		UserId:      user,
		Title:       title,
		ContentType: "web",
		Summary:     title,
		Keywords:    tags,
		Emotion:     core.EmotionNeutral,
		CreatedAt:   created,
	})
	require.NoError(t, err)
	return item
}

func TestItemBasics(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	added, err := repo.AddItem(ctx, &core.Item{
		UserId:   1,
		Title:    "Hello",
		Content:  "Hello, world!",
		Keywords: []string{"Hello", "world", "hello"},
	})
	require.NoError(t, err)
	require.NotZero(t, added.Id)
	assert.False(t, added.CreatedAt.IsZero())
	assert.Equal(t, []string{"hello", "world"}, added.Keywords)

	retrieved, err := repo.GetItem(ctx, 1, added.Id)
	require.NoError(t, err)
	assert.Equal(t, "Hello, world!", retrieved.Content)
	assert.False(t, retrieved.Processed)
}

func TestAddItem_RequiresUser(t *testing.T) {
	repo := newTestRepo(t)

	_, err := repo.AddItem(context.Background(), &core.Item{Content: "orphan"})
	assert.ErrorIs(t, err, core.ErrMissingUser)
}

func TestGetItem_OtherUserIsNotFound(t *testing.T) {
	repo := newTestRepo(t)
	item := addItem(t, repo, 1, "mine", nil, time.Time{})

	_, err := repo.GetItem(context.Background(), 2, item.Id)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	_, err = repo.GetItem(context.Background(), 1, item.Id+1000)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestUpdateItemEnrichment(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	item := addItem(t, repo, 1, "draft", []string{"quick", "placeholder"}, time.Time{})

	updated, err := repo.UpdateItemEnrichment(ctx, 1, item.Id, core.Enrichment{
		Summary:        "Final summary.",
		Keywords:       []string{"Politics", "healthcare"},
		Emotion:        core.EmotionThoughtful,
		SentimentScore: -0.2,
	}, "")
	require.NoError(t, err)
	assert.True(t, updated.Processed)
	assert.Empty(t, updated.ProcessingError)
	assert.Equal(t, []string{"politics", "healthcare"}, updated.Keywords)

	tags, err := repo.ListDistinctTags(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"healthcare", "politics"}, tags, "old tags must leave the index")

	retrieved, err := repo.GetItem(ctx, 1, item.Id)
	require.NoError(t, err)
	assert.Equal(t, "Final summary.", retrieved.Summary)
	assert.Equal(t, core.EmotionThoughtful, retrieved.Emotion)
}

func TestUpdateItemEnrichment_RecordsError(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	item := addItem(t, repo, 1, "draft", []string{"quick"}, time.Time{})

	updated, err := repo.UpdateItemEnrichment(ctx, 1, item.Id, item.Enrichment(), "tagger: timeout")
	require.NoError(t, err)
	assert.True(t, updated.Processed)
	assert.Equal(t, "tagger: timeout", updated.ProcessingError)
	assert.Equal(t, []string{"quick"}, updated.Keywords)

	_, err = repo.UpdateItemEnrichment(ctx, 2, item.Id, item.Enrichment(), "")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestListDistinctTags_ScopedToUser(t *testing.T) {
	repo := newTestRepo(t)
	addItem(t, repo, 1, "a", []string{"congress", "bill"}, time.Time{})
	addItem(t, repo, 1, "b", []string{"bill", "senate"}, time.Time{})
	addItem(t, repo, 2, "c", []string{"football"}, time.Time{})

	tags, err := repo.ListDistinctTags(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"bill", "congress", "senate"}, tags)

	tags, err = repo.ListDistinctTags(context.Background(), 3)
	require.NoError(t, err)
	assert.Empty(t, tags)
}

func TestSearchItems_NewestFirstWithLimit(t *testing.T) {
	repo := newTestRepo(t)
	base := time.Now().UTC().Add(-time.Hour)
	first := addItem(t, repo, 1, "Go pipelines", []string{"go"}, base)
	second := addItem(t, repo, 1, "Go channels", []string{"go"}, base.Add(time.Minute))
	third := addItem(t, repo, 1, "Go generics", []string{"go"}, base.Add(2*time.Minute))
	addItem(t, repo, 2, "Go for user two", []string{"go"}, base.Add(3*time.Minute))

	results, err := repo.SearchItems(context.Background(), 1, storage.ItemQuery{Substring: "go"})
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, third.Id, results[0].Id)
	assert.Equal(t, second.Id, results[1].Id)
	assert.Equal(t, first.Id, results[2].Id)

	results, err = repo.SearchItems(context.Background(), 1, storage.ItemQuery{Substring: "go", Limit: 2})
	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestSearchItems_AnyTags(t *testing.T) {
	repo := newTestRepo(t)
	politics := addItem(t, repo, 1, "Senate vote", []string{"politics"}, time.Time{})
	addItem(t, repo, 1, "Cake recipe", []string{"baking"}, time.Time{})

	results, err := repo.SearchItems(context.Background(), 1, storage.ItemQuery{
		Substring: "congress",
		AnyTags:   []string{"politics"},
	})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, politics.Id, results[0].Id)
}

func TestListRecentItems(t *testing.T) {
	repo := newTestRepo(t)
	base := time.Now().UTC().Add(-time.Hour)
	for i := 0; i < 5; i++ {
		addItem(t, repo, 1, "item", nil, base.Add(time.Duration(i)*time.Minute))
	}

	recent, err := repo.ListRecentItems(context.Background(), 1, 3)
	require.NoError(t, err)
	require.Len(t, recent, 3)
	assert.True(t, recent[0].CreatedAt.After(recent[1].CreatedAt))

	_, err = repo.ListRecentItems(context.Background(), 1, 0)
	assert.ErrorIs(t, err, storage.ErrInvalidQuery)
}

func TestDeleteItem(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	item := addItem(t, repo, 1, "gone soon", []string{"ephemeral"}, time.Time{})

	assert.ErrorIs(t, repo.DeleteItem(ctx, 2, item.Id), storage.ErrNotFound)
	require.NoError(t, repo.DeleteItem(ctx, 1, item.Id))

	_, err := repo.GetItem(ctx, 1, item.Id)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	tags, err := repo.ListDistinctTags(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, tags)

	results, err := repo.SearchItems(ctx, 1, storage.ItemQuery{})
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestCountUnprocessedAndNeedingEnrichment(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	base := time.Now().UTC().Add(-time.Hour)
	a := addItem(t, repo, 1, "a", nil, base)
	b := addItem(t, repo, 1, "b", nil, base.Add(time.Minute))
	c := addItem(t, repo, 2, "c", nil, base.Add(2*time.Minute))

	_, err := repo.UpdateItemEnrichment(ctx, 1, a.Id, a.Enrichment(), "")
	require.NoError(t, err)
	_, err = repo.UpdateItemEnrichment(ctx, 2, c.Id, c.Enrichment(), "enrichment queue full")
	require.NoError(t, err)

	count, err := repo.CountUnprocessed(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	needing, err := repo.ListItemsNeedingEnrichment(ctx, 0)
	require.NoError(t, err)
	require.Len(t, needing, 2)
	assert.Equal(t, b.Id, needing[0].Id)
	assert.Equal(t, c.Id, needing[1].Id)

	needing, err = repo.ListItemsNeedingEnrichment(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, needing, 1)
}

func TestInsights(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	addItem(t, repo, 1, "a", []string{"go", "testing"}, time.Time{})
	addItem(t, repo, 1, "b", []string{"go", "badger"}, time.Time{})
	video, err := repo.AddItem(ctx, &core.Item{
		UserId:      1,
		ContentType: "video",
		Keywords:    []string{"go"},
		Emotion:     core.EmotionExcited,
	})
	require.NoError(t, err)
	require.NotZero(t, video.Id)

	insights, err := repo.Insights(ctx, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, insights.TotalItems)
	assert.Equal(t, map[string]int{"web": 2, "video": 1}, insights.ByContentType)
	assert.Equal(t, map[string]int{"neutral": 2, "excited": 1}, insights.ByEmotion)
	require.Len(t, insights.TopTags, 2)
	assert.Equal(t, core.TagCount{Tag: "go", Count: 3}, insights.TopTags[0])
	assert.Equal(t, core.TagCount{Tag: "badger", Count: 1}, insights.TopTags[1])
}

func TestRepository_ClosedBackend(t *testing.T) {
	repo, backend, err := NewMemoryRepository()
	require.NoError(t, err)
	ctx := context.Background()
	added := addItem(t, repo, 1, "before close", []string{"go"}, time.Now())

	require.NoError(t, repo.Close())
	require.NoError(t, backend.Close())

	_, err = repo.AddItem(ctx, &core.Item{UserId: 1, Title: "after close"})
	assert.ErrorIs(t, err, storage.ErrStorageClosed)
	_, err = repo.GetItem(ctx, 1, added.Id)
	assert.ErrorIs(t, err, storage.ErrStorageClosed)
	_, err = repo.UpdateItemEnrichment(ctx, 1, added.Id, core.Enrichment{Summary: "s"}, "")
	assert.ErrorIs(t, err, storage.ErrStorageClosed)
	assert.ErrorIs(t, repo.DeleteItem(ctx, 1, added.Id), storage.ErrStorageClosed)
	_, err = repo.ListDistinctTags(ctx, 1)
	assert.ErrorIs(t, err, storage.ErrStorageClosed)
	_, err = repo.SearchItems(ctx, 1, storage.ItemQuery{Substring: "go"})
	assert.ErrorIs(t, err, storage.ErrStorageClosed)
	_, err = repo.ListRecentItems(ctx, 1, 5)
	assert.ErrorIs(t, err, storage.ErrStorageClosed)
	_, err = repo.CountUnprocessed(ctx, 1)
	assert.ErrorIs(t, err, storage.ErrStorageClosed)
	_, err = repo.ListItemsNeedingEnrichment(ctx, 0)
	assert.ErrorIs(t, err, storage.ErrStorageClosed)
	_, err = repo.Insights(ctx, 1, 5)
	assert.ErrorIs(t, err, storage.ErrStorageClosed)
}

func TestAddItem_ExistingKeyIsDuplicate(t *testing.T) {
	backend, err := OpenBackend("", true)
	require.NoError(t, err)
	defer backend.Close()
	repo, err := NewItemRepository(backend)
	require.NoError(t, err)
	defer repo.Close()

	// The sequence hands out 1 first, so occupy that key.
	squatter := &core.Item{Id: 1, UserId: 9, Title: "squatter"}
	require.NoError(t, backend.WithTx(func(tx *badger.Txn) error {
		if err := tx.Set(makeItemKey(1), storage.MarshalItem(squatter)); err != nil {
			return err
		}
		return commit(tx)
	}, true))

	ctx := context.Background()
	_, err = repo.AddItem(ctx, &core.Item{UserId: 1, Title: "new"})
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)

	kept, err := repo.GetItem(ctx, 9, 1)
	require.NoError(t, err)
	assert.Equal(t, "squatter", kept.Title)

	added, err := repo.AddItem(ctx, &core.Item{UserId: 1, Title: "new"})
	require.NoError(t, err)
	assert.Equal(t, core.ID(2), added.Id)
}

func TestGetItem_CorruptValue(t *testing.T) {
	backend, err := OpenBackend("", true)
	require.NoError(t, err)
	defer backend.Close()
	repo, err := NewItemRepository(backend)
	require.NoError(t, err)
	defer repo.Close()

	require.NoError(t, backend.WithTx(func(tx *badger.Txn) error {
		if err := tx.Set(makeItemKey(5), []byte{0x80}); err != nil {
			return err
		}
		return commit(tx)
	}, true))

	_, err = repo.GetItem(context.Background(), 1, 5)
	assert.ErrorIs(t, err, storage.ErrSerializationFailed)
	assert.ErrorIs(t, err, storage.ErrTruncatedData)
}

func TestUpdateItemEnrichment_DedupsRepeatedKeywords(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	item := addItem(t, repo, 1, "it is", nil, time.Now())

	updated, err := repo.UpdateItemEnrichment(ctx, 1, item.Id, core.Enrichment{
		Keywords: []string{"it", "is", "as", "it", "is"},
		Emotion:  core.EmotionNeutral,
	}, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"it", "is", "as"}, updated.Keywords)
}
