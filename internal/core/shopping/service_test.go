package shopping

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"meal-planner/internal/core/ai/queue"
	"meal-planner/internal/core/ingredient"
	"meal-planner/internal/infrastructure/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 10, 16, 9, 30, 0, 0, time.UTC)

type fakeCategorizer struct {
	mu      sync.Mutex
	answers map[string]string
	err     error
	calls   []string
}

func (f *fakeCategorizer) Categorize(_ context.Context, name string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, name)
	if f.err != nil {
		return OtherSection, f.err
	}
	if section, ok := f.answers[name]; ok {
		return section, nil
	}
	return OtherSection, nil
}

type failingStore struct{}

func (failingStore) Load(context.Context) (Document, error) {
	return Document{}, errors.New("connection refused")
}

func (failingStore) Save(context.Context, Document) error {
	return errors.New("connection refused")
}

func newTestService(opts ...ServiceOption) *Service {
	opts = append([]ServiceOption{WithClock(func() time.Time { return fixedNow })}, opts...)
	return NewService(NewCombiner(nil, nil, nil), NewMemoryStore(), opts...)
}

func TestServiceAddItems(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc := newTestService()

	added, err := svc.AddItems(ctx, "Chili", []string{"2 cans black beans", "", "  1 onion ", "1 onion"})
	require.NoError(t, err)
	require.Len(t, added, 2)

	assert.Equal(t, "2 cans black beans", added[0].Item)
	assert.Equal(t, "Canned & Dried", added[0].Category)
	assert.Equal(t, "1 onion", added[1].Item)
	assert.Equal(t, "Produce", added[1].Category)
	for _, item := range added {
		assert.NotEmpty(t, item.ID)
		assert.Equal(t, "Chili", item.Recipe)
		assert.Equal(t, "2026-10-16", item.Added)
		assert.False(t, item.Checked)
	}

	// 同一食譜的相同項目不重複加入
	again, err := svc.AddItems(ctx, "Chili", []string{"1 onion"})
	require.NoError(t, err)
	assert.Empty(t, again)

	// 不同食譜可以有相同項目
	other, err := svc.AddItems(ctx, "Soup", []string{"1 onion"})
	require.NoError(t, err)
	assert.Len(t, other, 1)

	doc, err := svc.Snapshot(ctx)
	require.NoError(t, err)
	assert.Len(t, doc.Items, 3)
	require.NotNil(t, doc.LastUpdated)
	assert.True(t, fixedNow.Equal(*doc.LastUpdated))
}

func TestServiceRemoveItems(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc := newTestService()

	_, err := svc.AddItems(ctx, "Chili", []string{"1 onion", "2 cans black beans", "1 tsp cumin"})
	require.NoError(t, err)
	_, err = svc.AddItems(ctx, "Soup", []string{"1 onion"})
	require.NoError(t, err)

	removed, err := svc.RemoveItems(ctx, "Chili", []string{"1 onion", "not there"})
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	removed, err = svc.RemoveItems(ctx, "Chili", nil)
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	items, err := svc.Items(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Soup", items[0].Recipe)
}

func TestServiceToggleItem(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc := newTestService()

	_, err := svc.AddItems(ctx, "Chili", []string{"1 onion"})
	require.NoError(t, err)

	item, err := svc.ToggleItem(ctx, "Chili", "1 onion", true)
	require.NoError(t, err)
	assert.True(t, item.Checked)

	_, err = svc.ToggleItem(ctx, "Soup", "1 onion", true)
	assert.True(t, errors.Is(err, ErrItemNotFound))

	items, err := svc.Items(ctx)
	require.NoError(t, err)
	assert.True(t, items[0].Checked)
}

func TestServiceClear(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc := newTestService()

	_, err := svc.AddItems(ctx, "Chili", []string{"1 onion"})
	require.NoError(t, err)
	require.NoError(t, svc.Clear(ctx))

	doc, err := svc.Snapshot(ctx)
	require.NoError(t, err)
	assert.Empty(t, doc.Items)
	assert.NotNil(t, doc.LastUpdated)
}

func TestServiceItemsEmpty(t *testing.T) {
	t.Parallel()

	items, err := newTestService().Items(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)
}

func TestServiceCombinedListSkipsChecked(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc := newTestService()

	_, err := svc.AddItems(ctx, "Pasta", []string{"16 oz mushrooms", "1 lb spaghetti"})
	require.NoError(t, err)
	_, err = svc.AddItems(ctx, "Risotto", []string{"6 oz mushrooms"})
	require.NoError(t, err)
	_, err = svc.ToggleItem(ctx, "Pasta", "1 lb spaghetti", true)
	require.NoError(t, err)

	list, err := svc.CombinedList(ctx, false)
	require.NoError(t, err)
	require.Len(t, list.Entries, 1)
	assert.Equal(t, []string{"Pasta", "Risotto"}, list.Entries[0].ContributingSources)
	assert.Equal(t, "- mushroom: 22 oz (for: Pasta, Risotto)\n", list.Markdown)
	assert.Empty(t, list.Sections)
}

func TestServiceBuild(t *testing.T) {
	t.Parallel()

	svc := newTestService()
	lines := []ingredient.Line{
		{Text: "2 tomatoes", SourceRecipe: "Salad"},
		{Text: "", SourceRecipe: "Salad"},
		{Text: "1 cup rice", SourceRecipe: "Bowl"},
	}

	list := svc.Build(context.Background(), lines, true)
	assert.Len(t, list.Entries, 2)
	assert.Len(t, list.Warnings, 1)
	require.Len(t, list.Sections, 2)
	assert.Equal(t, "Produce", list.Sections[0].Section)
	assert.Equal(t, "Grains & Pasta", list.Sections[1].Section)
	assert.Contains(t, list.Markdown, "## Produce\n- tomato: 2 (for: Salad)\n")
}

func TestServiceCategorizerFallback(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	fake := &fakeCategorizer{answers: map[string]string{
		"sumac":  "Spices & Seasonings",
		"widget": "Garden Center",
	}}
	svc := newTestService(WithCategorizer(fake))

	added, err := svc.AddItems(ctx, "Kebab", []string{"1 tsp sumac", "2 tomatoes", "widget"})
	require.NoError(t, err)
	require.Len(t, added, 3)
	assert.Equal(t, "Spices & Seasonings", added[0].Category)
	assert.Equal(t, "Produce", added[1].Category)
	assert.Equal(t, OtherSection, added[2].Category, "unknown sections fall back to Other")

	// 關鍵字能分類的項目不詢問分類器
	assert.Equal(t, []string{"sumac", "widget"}, fake.calls)
}

func TestServiceBuildRefinesOtherSections(t *testing.T) {
	t.Parallel()

	fake := &fakeCategorizer{answers: map[string]string{"sumac": "Spices & Seasonings"}}
	svc := newTestService(WithCategorizer(fake))

	list := svc.Build(context.Background(), []ingredient.Line{
		{Text: "1 tsp sumac"},
		{Text: "2 tomatoes"},
	}, true)

	require.Len(t, list.Entries, 2)
	assert.Equal(t, "Spices & Seasonings", list.Entries[0].StoreSection)
	assert.Equal(t, "Produce", list.Entries[1].StoreSection)
	assert.Equal(t, []string{"sumac"}, fake.calls)
	assert.Contains(t, list.Markdown, "## Spices & Seasonings\n- sumac: 1 tsp\n")
}

func TestServiceBuildWithRunner(t *testing.T) {
	t.Parallel()

	q := queue.NewManager(&config.QueueConfig{Workers: 2, MaxSize: 10})
	defer q.Close()

	fake := &fakeCategorizer{answers: map[string]string{
		"sumac":     "Spices & Seasonings",
		"gochujang": "Condiments & Oils",
	}}
	svc := newTestService(WithCategorizer(fake), WithRunner(q))

	list := svc.Build(context.Background(), []ingredient.Line{
		{Text: "1 tsp sumac"},
		{Text: "2 tomatoes"},
		{Text: "3 tbsp gochujang"},
		{Text: "1 widget"},
	}, false)

	require.Len(t, list.Entries, 4)
	assert.Equal(t, "Spices & Seasonings", list.Entries[0].StoreSection)
	assert.Equal(t, "Produce", list.Entries[1].StoreSection)
	assert.Equal(t, "Condiments & Oils", list.Entries[2].StoreSection)
	assert.Equal(t, OtherSection, list.Entries[3].StoreSection)
	assert.ElementsMatch(t, []string{"sumac", "gochujang", "widget"}, fake.calls)
	assert.Equal(t, 3, q.GetQueueStatus().ProcessedCount)
}

func TestServiceCategorizerError(t *testing.T) {
	t.Parallel()

	fake := &fakeCategorizer{err: errors.New("upstream down")}
	svc := newTestService(WithCategorizer(fake))

	added, err := svc.AddItems(context.Background(), "Kebab", []string{"1 tsp sumac"})
	require.NoError(t, err)
	require.Len(t, added, 1)
	assert.Equal(t, OtherSection, added[0].Category)
}

func TestServiceStoreFailure(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc := NewService(nil, failingStore{})

	_, err := svc.Items(ctx)
	assert.True(t, errors.Is(err, ErrStoreUnavailable))

	_, err = svc.AddItems(ctx, "Chili", []string{"1 onion"})
	assert.True(t, errors.Is(err, ErrStoreUnavailable))

	assert.True(t, errors.Is(svc.Clear(ctx), ErrStoreUnavailable))

	_, err = svc.CombinedList(ctx, true)
	assert.True(t, errors.Is(err, ErrStoreUnavailable))
}

func TestServiceParseLine(t *testing.T) {
	t.Parallel()

	svc := newTestService()
	record, err := svc.ParseLine("2 cans (14.5 oz) diced tomatoes", "Chili")
	require.NoError(t, err)
	assert.Equal(t, "tomato", record.Name)
	assert.Equal(t, "can", record.Unit)

	_, err = svc.ParseLine("  ", "")
	assert.True(t, errors.Is(err, ingredient.ErrEmptyIngredient))
}

func TestMemoryStoreCopiesDocuments(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewMemoryStore()
	doc := Document{Items: []Item{{ID: "1", Item: "1 onion"}}}
	require.NoError(t, store.Save(ctx, doc))

	doc.Items[0].Item = "changed"
	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "1 onion", loaded.Items[0].Item)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = store.Load(cancelled)
	assert.ErrorIs(t, err, context.Canceled)
}
