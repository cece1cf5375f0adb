package shopping

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"meal-planner/internal/core/ai/queue"
	"meal-planner/internal/core/ingredient"
	"meal-planner/internal/pkg/common"

	"go.uber.org/zap"
)

// Service 購物清單服務：即時合併與持久化清單
type Service struct {
	combiner    *Combiner
	store       Store
	categorizer Categorizer
	runner      Runner
	now         func() time.Time

	mu sync.Mutex // 序列化 load-modify-save
}

// ServiceOption 服務選項
type ServiceOption func(*Service)

// WithCategorizer 關鍵字無法分類時改用的分類器
func WithCategorizer(c Categorizer) ServiceOption {
	return func(s *Service) {
		s.categorizer = c
	}
}

// Runner 限制同時進行的分類工作，由 queue.Manager 實作
type Runner interface {
	Do(ctx context.Context, job queue.Job) (string, error)
}

// WithRunner 合併時透過 runner 並行分類
func WithRunner(r Runner) ServiceOption {
	return func(s *Service) {
		s.runner = r
	}
}

// WithClock 替換時間來源
func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// NewService 創建購物清單服務；combiner 為 nil 時使用預設，store 為 nil 時使用記憶體儲存
func NewService(combiner *Combiner, store Store, opts ...ServiceOption) *Service {
	if combiner == nil {
		combiner = Default()
	}
	if store == nil {
		store = NewMemoryStore()
	}
	s := &Service{
		combiner: combiner,
		store:    store,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Combiner 回傳使用中的合併器
func (s *Service) Combiner() *Combiner {
	return s.combiner
}

// ParseLine 解析單行食材
func (s *Service) ParseLine(raw, source string) (ingredient.Record, error) {
	return s.combiner.Parser().Parse(raw, source)
}

// Build 合併傳入的食材行並產生清單
func (s *Service) Build(ctx context.Context, lines []ingredient.Line, groupBySection bool) List {
	entries, warnings := s.combiner.CombineLines(lines)
	s.refineSections(ctx, entries)

	list := List{
		Entries:  entries,
		Warnings: warnings,
		Markdown: s.combiner.Render(entries, groupBySection),
	}
	if groupBySection {
		list.Sections = s.combiner.GroupByStoreSection(entries)
	}
	return list
}

// refineSections 只對落在 Other 的項目詢問分類器
func (s *Service) refineSections(ctx context.Context, entries []CombinedEntry) {
	if s.categorizer == nil {
		return
	}
	if s.runner == nil {
		for i := range entries {
			if entries[i].StoreSection != OtherSection {
				continue
			}
			if ctx.Err() != nil {
				return
			}
			entries[i].StoreSection = s.categorize(ctx, entries[i].DisplayName)
		}
		return
	}

	var wg sync.WaitGroup
	for i := range entries {
		if entries[i].StoreSection != OtherSection {
			continue
		}
		wg.Add(1)
		go func(entry *CombinedEntry) {
			defer wg.Done()
			section, err := s.runner.Do(ctx, func(ctx context.Context) (string, error) {
				return s.categorize(ctx, entry.DisplayName), nil
			})
			if errors.Is(err, queue.ErrQueueFull) {
				section, err = s.categorize(ctx, entry.DisplayName), nil
			}
			if err != nil {
				common.LogWarn("Categorize job failed",
					zap.String("name", entry.DisplayName),
					zap.Error(err),
				)
				return
			}
			entry.StoreSection = section
		}(&entries[i])
	}
	wg.Wait()
}

// categorize 關鍵字優先，其次分類器，皆失敗時為 Other
func (s *Service) categorize(ctx context.Context, name string) string {
	sections := s.combiner.Sections()
	if section := sections.Categorize(name); section != OtherSection {
		return section
	}
	if s.categorizer == nil {
		return OtherSection
	}
	section, err := s.categorizer.Categorize(ctx, name)
	if err != nil || !sections.Has(section) {
		return OtherSection
	}
	return section
}

// Snapshot 目前儲存的完整內容
func (s *Service) Snapshot(ctx context.Context) (Document, error) {
	doc, err := s.load(ctx)
	if err != nil {
		return Document{}, err
	}
	if doc.Items == nil {
		doc.Items = []Item{}
	}
	return doc, nil
}

// Items 目前儲存的項目
func (s *Service) Items(ctx context.Context) ([]Item, error) {
	doc, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return doc.Items, nil
}

// AddItems 將食譜的食材加入清單，略過空白行與同一食譜的重複項目，回傳新增的項目
func (s *Service) AddItems(ctx context.Context, recipe string, lines []string) ([]Item, error) {
	recipe = strings.TrimSpace(recipe)

	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now()
	added := []Item{}
	for _, line := range lines {
		text := strings.TrimSpace(line)
		if text == "" || indexOf(doc.Items, recipe, text) >= 0 {
			continue
		}

		name := text
		if record, err := s.ParseLine(text, recipe); err == nil {
			name = record.Name
		}

		item := Item{
			ID:       common.GenerateUUID(),
			Item:     text,
			Recipe:   recipe,
			Added:    common.Today(now),
			Category: s.categorize(ctx, name),
		}
		doc.Items = append(doc.Items, item)
		added = append(added, item)
	}

	if err := s.save(ctx, doc); err != nil {
		return nil, err
	}

	common.LogInfo("Added items to shopping list",
		zap.String("recipe", recipe),
		zap.Int("count", len(added)),
	)
	return added, nil
}

// RemoveItems 移除食譜的指定項目；items 為空時移除該食譜全部項目，回傳移除數量
func (s *Service) RemoveItems(ctx context.Context, recipe string, items []string) (int, error) {
	recipe = strings.TrimSpace(recipe)
	targets := make(map[string]struct{}, len(items))
	for _, item := range items {
		targets[strings.TrimSpace(item)] = struct{}{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load(ctx)
	if err != nil {
		return 0, err
	}

	kept := make([]Item, 0, len(doc.Items))
	for _, item := range doc.Items {
		if item.Recipe == recipe {
			if _, ok := targets[item.Item]; ok || len(targets) == 0 {
				continue
			}
		}
		kept = append(kept, item)
	}
	removed := len(doc.Items) - len(kept)
	doc.Items = kept

	if err := s.save(ctx, doc); err != nil {
		return 0, err
	}

	common.LogInfo("Removed items from shopping list",
		zap.String("recipe", recipe),
		zap.Int("count", removed),
	)
	return removed, nil
}

// ToggleItem 設定項目的勾選狀態
func (s *Service) ToggleItem(ctx context.Context, recipe, item string, checked bool) (Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load(ctx)
	if err != nil {
		return Item{}, err
	}

	idx := indexOf(doc.Items, strings.TrimSpace(recipe), strings.TrimSpace(item))
	if idx < 0 {
		return Item{}, ErrItemNotFound
	}
	doc.Items[idx].Checked = checked

	if err := s.save(ctx, doc); err != nil {
		return Item{}, err
	}
	return doc.Items[idx], nil
}

// Clear 清空清單
func (s *Service) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.save(ctx, Document{Items: []Item{}}); err != nil {
		return err
	}
	common.LogInfo("Cleared shopping list")
	return nil
}

// CombinedList 合併尚未勾選的項目
func (s *Service) CombinedList(ctx context.Context, groupBySection bool) (List, error) {
	items, err := s.Items(ctx)
	if err != nil {
		return List{}, err
	}

	lines := make([]ingredient.Line, 0, len(items))
	for _, item := range items {
		if item.Checked {
			continue
		}
		lines = append(lines, ingredient.Line{Text: item.Item, SourceRecipe: item.Recipe})
	}
	return s.Build(ctx, lines, groupBySection), nil
}

func (s *Service) load(ctx context.Context) (Document, error) {
	doc, err := s.store.Load(ctx)
	if err != nil {
		common.LogError("Failed to load shopping list", zap.Error(err))
		return Document{}, ErrStoreUnavailable.Wrap(err)
	}
	return doc, nil
}

// save 更新 LastUpdated 後寫入
func (s *Service) save(ctx context.Context, doc Document) error {
	now := s.now()
	doc.LastUpdated = &now
	if err := s.store.Save(ctx, doc); err != nil {
		common.LogError("Failed to save shopping list", zap.Error(err))
		return ErrStoreUnavailable.Wrap(err)
	}
	return nil
}

func indexOf(items []Item, recipe, text string) int {
	for i, item := range items {
		if item.Recipe == recipe && item.Item == text {
			return i
		}
	}
	return -1
}
