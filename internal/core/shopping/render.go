package shopping

import (
	"math"
	"strconv"
	"strings"
)

// GroupByStoreSection 依分類表順序分組
func (c *Combiner) GroupByStoreSection(entries []CombinedEntry) []SectionGroup {
	return c.sections.Group(entries)
}

// Render 輸出 markdown 清單，groupBySection 時每個區域加上標題
func (c *Combiner) Render(entries []CombinedEntry, groupBySection bool) string {
	var b strings.Builder
	if !groupBySection {
		for _, e := range entries {
			b.WriteString(c.renderLine(e))
			b.WriteString("\n")
		}
		return b.String()
	}

	for i, g := range c.sections.Group(entries) {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString("## " + g.Section + "\n")
		for _, e := range g.Entries {
			b.WriteString(c.renderLine(e))
			b.WriteString("\n")
		}
	}
	return b.String()
}

// renderLine 單一項目：有總量時顯示總量，否則列出各來源的原始數量
func (c *Combiner) renderLine(e CombinedEntry) string {
	line := "- " + e.DisplayName

	if e.TotalQuantity != nil {
		return line + ": " + c.amount(*e.TotalQuantity, e.Unit) + forSources(e.ContributingSources)
	}

	var parts []string
	for _, m := range e.Members {
		if m.Quantity == nil {
			continue
		}
		part := c.amount(*m.Quantity, m.Unit)
		if m.SourceRecipe != "" {
			part += " for " + m.SourceRecipe
		}
		parts = append(parts, part)
	}
	if len(parts) > 0 {
		return line + " (" + strings.Join(parts, ", ") + ")"
	}
	return line + forSources(e.ContributingSources)
}

func (c *Combiner) amount(quantity float64, unit string) string {
	text := FormatQuantity(quantity)
	if unit == "" {
		return text
	}
	return text + " " + c.parser.Vocabulary().UnitLabel(unit, quantity)
}

// forSources 來源清單，重複的來源只顯示一次
func forSources(sources []string) string {
	seen := make(map[string]struct{}, len(sources))
	var unique []string
	for _, s := range sources {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		unique = append(unique, s)
	}
	if len(unique) == 0 {
		return ""
	}
	return " (for: " + strings.Join(unique, ", ") + ")"
}

// FormatQuantity 整數不顯示小數，其餘最多兩位小數
func FormatQuantity(q float64) string {
	if q == math.Trunc(q) {
		return strconv.FormatFloat(q, 'f', 0, 64)
	}
	text := strconv.FormatFloat(q, 'f', 2, 64)
	text = strings.TrimRight(text, "0")
	return strings.TrimSuffix(text, ".")
}
