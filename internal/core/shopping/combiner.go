package shopping

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"meal-planner/internal/core/ingredient"
	"meal-planner/internal/pkg/common"

	"go.uber.org/zap"
)

// Combiner 將多份食譜的食材合併為購物清單
//
// 不持有可變狀態，可在多個請求間共用。
type Combiner struct {
	parser   *ingredient.Parser
	matcher  *ingredient.Matcher
	sections *SectionTable

	// 預設為 parser.Parse 與 matcher.NamesMatch
	parse      func(raw, source string) (ingredient.Record, error)
	namesMatch func(a, b string) bool
}

// NewCombiner 創建合併器，nil 參數使用預設值
func NewCombiner(parser *ingredient.Parser, matcher *ingredient.Matcher, sections *SectionTable) *Combiner {
	if parser == nil {
		parser = ingredient.NewParser(nil)
	}
	if matcher == nil {
		matcher = ingredient.NewMatcher(parser.Vocabulary())
	}
	if sections == nil {
		sections = DefaultSectionTable()
	}
	return &Combiner{
		parser:     parser,
		matcher:    matcher,
		sections:   sections,
		parse:      parser.Parse,
		namesMatch: matcher.NamesMatch,
	}
}

// Parser 回傳使用中的解析器
func (c *Combiner) Parser() *ingredient.Parser {
	return c.parser
}

// Matcher 回傳使用中的比對器
func (c *Combiner) Matcher() *ingredient.Matcher {
	return c.matcher
}

// Sections 回傳使用中的分類表
func (c *Combiner) Sections() *SectionTable {
	return c.sections
}

type group struct {
	representative string
	members        []ingredient.Record
}

// Combine 合併食材紀錄；每筆輸入恰好出現在一個輸出項目中
func (c *Combiner) Combine(records []ingredient.Record) []CombinedEntry {
	entries, warnings := c.combine(records, nil)
	logWarnings(warnings)
	return entries
}

// CombineLines 解析並合併原始文字行，單行失敗不影響整批
//
// 空白行略過並回報警告；解析發生異常時以原始文字作為名稱繼續處理。
func (c *Combiner) CombineLines(lines []ingredient.Line) ([]CombinedEntry, []MalformedLineWarning) {
	records := make([]ingredient.Record, 0, len(lines))
	indexes := make([]int, 0, len(lines))
	var warnings []MalformedLineWarning

	for i, line := range lines {
		record, warning, ok := c.parseLine(i, line)
		if warning != nil {
			warnings = append(warnings, *warning)
		}
		if !ok {
			continue
		}
		records = append(records, record)
		indexes = append(indexes, i)
	}

	entries, matchWarnings := c.combine(records, indexes)
	warnings = append(warnings, matchWarnings...)
	logWarnings(warnings)
	return entries, warnings
}

func (c *Combiner) parseLine(index int, line ingredient.Line) (record ingredient.Record, warning *MalformedLineWarning, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			record = fallbackRecord(line.Text, line.SourceRecipe)
			warning = &MalformedLineWarning{
				Index:        index,
				RawText:      line.Text,
				SourceRecipe: line.SourceRecipe,
				Reason:       fmt.Sprintf("parse failed: %v", r),
			}
			ok = true
		}
	}()

	record, err := c.parse(line.Text, line.SourceRecipe)
	if err != nil {
		reason := err.Error()
		if errors.Is(err, ingredient.ErrEmptyIngredient) {
			reason = "empty ingredient line"
		}
		return ingredient.Record{}, &MalformedLineWarning{
			Index:        index,
			RawText:      line.Text,
			SourceRecipe: line.SourceRecipe,
			Reason:       reason,
		}, false
	}
	return record, nil, true
}

// combine 分組並建立輸出；indexes 為紀錄對應的原始行號，可為 nil
func (c *Combiner) combine(records []ingredient.Record, indexes []int) ([]CombinedEntry, []MalformedLineWarning) {
	var groups []*group
	var warnings []MalformedLineWarning

	for i, record := range records {
		if strings.TrimSpace(record.Name) == "" {
			record.Name = fallbackName(record.RawText)
		}

		idx, err := c.findGroup(groups, record.Name)
		if err != nil {
			index := i
			if indexes != nil {
				index = indexes[i]
			}
			warnings = append(warnings, MalformedLineWarning{
				Index:        index,
				RawText:      record.RawText,
				SourceRecipe: record.SourceRecipe,
				Reason:       err.Error(),
			})
			idx = -1
		}

		if idx < 0 {
			groups = append(groups, &group{representative: record.Name})
			idx = len(groups) - 1
		}
		groups[idx].members = append(groups[idx].members, record)
	}

	entries := make([]CombinedEntry, 0, len(groups))
	for _, g := range groups {
		entries = append(entries, c.buildEntry(g))
	}
	return entries, warnings
}

// findGroup 找出第一個代表名稱相符的群組
func (c *Combiner) findGroup(groups []*group, name string) (idx int, err error) {
	defer func() {
		if r := recover(); r != nil {
			idx, err = -1, fmt.Errorf("match failed: %v", r)
		}
	}()
	for i, g := range groups {
		if c.namesMatch(g.representative, name) {
			return i, nil
		}
	}
	return -1, nil
}

func (c *Combiner) buildEntry(g *group) CombinedEntry {
	entry := CombinedEntry{
		DisplayName:         displayName(g.members),
		ContributingSources: []string{},
		Members:             g.members,
	}
	entry.TotalQuantity, entry.Unit = sumQuantities(g.members)

	names := make([]string, 0, len(g.members))
	for _, m := range g.members {
		names = append(names, m.Name)
		if m.SourceRecipe != "" {
			entry.ContributingSources = append(entry.ContributingSources, m.SourceRecipe)
		}
	}
	entry.StoreSection = c.sections.Lookup(entry.DisplayName, names)
	return entry
}

// displayName 取最長的名稱，同長度取先出現者
func displayName(members []ingredient.Record) string {
	best := ""
	for _, m := range members {
		if utf8.RuneCountInString(m.Name) > utf8.RuneCountInString(best) {
			best = m.Name
		}
	}
	return best
}

func fallbackName(raw string) string {
	return strings.Join(strings.Fields(strings.ToLower(raw)), " ")
}

func fallbackRecord(raw, source string) ingredient.Record {
	return ingredient.Record{
		RawText:      raw,
		Name:         fallbackName(raw),
		SourceRecipe: strings.TrimSpace(source),
	}
}

func logWarnings(warnings []MalformedLineWarning) {
	for _, w := range warnings {
		common.LogWarn("Malformed ingredient line",
			zap.Int("index", w.Index),
			zap.String("raw_text", w.RawText),
			zap.String("source_recipe", w.SourceRecipe),
			zap.String("reason", w.Reason),
		)
	}
}
