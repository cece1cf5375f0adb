package shopping

import (
	"sync"

	"meal-planner/internal/core/ingredient"
)

var (
	defaultCombiner     *Combiner
	defaultCombinerOnce sync.Once
)

// Default 使用內建詞表與分類表的合併器
func Default() *Combiner {
	defaultCombinerOnce.Do(func() {
		defaultCombiner = NewCombiner(nil, nil, nil)
	})
	return defaultCombiner
}

// Combine 以預設合併器合併
func Combine(records []ingredient.Record) []CombinedEntry {
	return Default().Combine(records)
}

// GroupByStoreSection 以內建分類表分組
func GroupByStoreSection(entries []CombinedEntry) []SectionGroup {
	return Default().GroupByStoreSection(entries)
}

// Render 以預設合併器輸出 markdown
func Render(entries []CombinedEntry, groupBySection bool) string {
	return Default().Render(entries, groupBySection)
}
