package shopping

import (
	"strings"
	"testing"

	"meal-planner/internal/core/ingredient"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseAll(t *testing.T, source string, lines ...string) []ingredient.Record {
	t.Helper()
	parser := ingredient.NewParser(nil)
	records := make([]ingredient.Record, 0, len(lines))
	for _, line := range lines {
		r, err := parser.Parse(line, source)
		require.NoError(t, err)
		records = append(records, r)
	}
	return records
}

func memberCount(entries []CombinedEntry) int {
	n := 0
	for _, e := range entries {
		n += len(e.Members)
	}
	return n
}

func TestCombineKeepsEveryRecord(t *testing.T) {
	t.Parallel()

	records := parseAll(t, "Stir Fry",
		"mushroom", "2 mushrooms", "chives", "1 tsp chili powder",
		"1 red bell pepper", "1 bell pepper", "garlic", "2 cloves garlic",
		"salt to taste", "1 cup rice", "1/2 cup fresh basil, chopped",
	)

	entries := NewCombiner(nil, nil, nil).Combine(records)
	assert.Equal(t, len(records), memberCount(entries))

	seen := make(map[string]int)
	for _, e := range entries {
		for _, m := range e.Members {
			seen[m.RawText]++
		}
	}
	for _, r := range records {
		assert.Equal(t, 1, seen[r.RawText], "record %q must appear exactly once", r.RawText)
	}
}

func TestCombineDuplicatedInput(t *testing.T) {
	t.Parallel()

	c := NewCombiner(nil, nil, nil)
	records := parseAll(t, "Soup", "16 oz mushrooms", "2 cups rice", "salt to taste", "1 onion")

	once := c.Combine(records)
	twice := c.Combine(append(append([]ingredient.Record{}, records...), records...))

	require.Len(t, twice, len(once))
	for i := range once {
		assert.Equal(t, once[i].DisplayName, twice[i].DisplayName)
		assert.Len(t, twice[i].Members, 2*len(once[i].Members))
	}
}

func TestCombineSumsQuantities(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		lines     []string
		wantTotal float64
		wantUnit  string
	}{
		{name: "same unit", lines: []string{"16 oz mushrooms", "6 oz mushrooms"}, wantTotal: 22, wantUnit: "oz"},
		{name: "convertible mass", lines: []string{"16 oz mushrooms", "1 lb mushrooms"}, wantTotal: 32, wantUnit: "oz"},
		{name: "convertible volume", lines: []string{"1 tbsp olive oil", "3 tsp olive oil"}, wantTotal: 2, wantUnit: "tbsp"},
		{name: "unitless counts", lines: []string{"1 onion", "2 onions"}, wantTotal: 3, wantUnit: ""},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			entries := NewCombiner(nil, nil, nil).Combine(parseAll(t, "", tc.lines...))
			require.Len(t, entries, 1)
			require.NotNil(t, entries[0].TotalQuantity)
			assert.InDelta(t, tc.wantTotal, *entries[0].TotalQuantity, 1e-9)
			assert.Equal(t, tc.wantUnit, entries[0].Unit)
		})
	}
}

func TestCombineUnitMismatch(t *testing.T) {
	t.Parallel()

	entries := NewCombiner(nil, nil, nil).Combine(parseAll(t, "", "2 cups rice", "1 lb rice"))
	require.Len(t, entries, 1)

	e := entries[0]
	assert.Nil(t, e.TotalQuantity)
	assert.Empty(t, e.Unit)
	require.Len(t, e.Members, 2)
	assert.InDelta(t, 2.0, *e.Members[0].Quantity, 1e-9)
	assert.Equal(t, "cup", e.Members[0].Unit)
	assert.InDelta(t, 1.0, *e.Members[1].Quantity, 1e-9)
	assert.Equal(t, "lb", e.Members[1].Unit)
}

func TestCombineMatching(t *testing.T) {
	t.Parallel()

	c := NewCombiner(nil, nil, nil)

	merged := c.Combine(parseAll(t, "", "mushroom", "mushrooms"))
	assert.Len(t, merged, 1)

	separate := c.Combine(parseAll(t, "", "1 tsp chili powder", "chives"))
	assert.Len(t, separate, 2)
}

func TestCombineEmpty(t *testing.T) {
	t.Parallel()

	entries := NewCombiner(nil, nil, nil).Combine(nil)
	assert.NotNil(t, entries)
	assert.Empty(t, entries)

	entries, warnings := NewCombiner(nil, nil, nil).CombineLines([]ingredient.Line{})
	assert.Empty(t, entries)
	assert.Empty(t, warnings)
}

func TestCombineSaltWithoutQuantity(t *testing.T) {
	t.Parallel()

	entries := NewCombiner(nil, nil, nil).Combine(parseAll(t, "", "salt to taste", "salt"))
	require.Len(t, entries, 1)
	assert.Equal(t, "salt", entries[0].DisplayName)
	assert.Nil(t, entries[0].TotalQuantity)
	assert.Len(t, entries[0].Members, 2)
}

func TestCombineEntryFields(t *testing.T) {
	t.Parallel()

	records := append(parseAll(t, "Fajitas", "1 bell pepper", "1 onion"), parseAll(t, "Salad", "1 red bell pepper")...)
	records = append(records, parseAll(t, "Fajitas", "2 onions")...)
	records = append(records, parseAll(t, "", "1 onion")...)

	entries := NewCombiner(nil, nil, nil).Combine(records)
	require.Len(t, entries, 2)

	pepper := entries[0]
	assert.Equal(t, "red bell pepper", pepper.DisplayName)
	assert.Equal(t, []string{"Fajitas", "Salad"}, pepper.ContributingSources)
	assert.Equal(t, "Produce", pepper.StoreSection)

	onion := entries[1]
	assert.Equal(t, "onion", onion.DisplayName)
	assert.Equal(t, []string{"Fajitas", "Fajitas"}, onion.ContributingSources)
	require.NotNil(t, onion.TotalQuantity)
	assert.InDelta(t, 4.0, *onion.TotalQuantity, 1e-9)
}

func TestCombineFallbackName(t *testing.T) {
	t.Parallel()

	entries := NewCombiner(nil, nil, nil).Combine([]ingredient.Record{{RawText: "  Mystery  Item "}})
	require.Len(t, entries, 1)
	assert.Equal(t, "mystery item", entries[0].DisplayName)
	assert.Equal(t, OtherSection, entries[0].StoreSection)
	assert.Equal(t, []string{}, entries[0].ContributingSources)
}

func TestCombineLinesWarnings(t *testing.T) {
	t.Parallel()

	lines := []ingredient.Line{
		{Text: "1 onion", SourceRecipe: "Soup"},
		{Text: "   ", SourceRecipe: "Soup"},
		{Text: "2 onions", SourceRecipe: "Stew"},
	}

	entries, warnings := NewCombiner(nil, nil, nil).CombineLines(lines)
	require.Len(t, entries, 1)
	assert.Len(t, entries[0].Members, 2)
	assert.Equal(t, []string{"Soup", "Stew"}, entries[0].ContributingSources)

	require.Len(t, warnings, 1)
	assert.Equal(t, 1, warnings[0].Index)
	assert.Equal(t, "Soup", warnings[0].SourceRecipe)
	assert.Equal(t, "empty ingredient line", warnings[0].Reason)
}

func TestCombineLinesRecoversFromParsePanic(t *testing.T) {
	t.Parallel()

	c := NewCombiner(nil, nil, nil)
	parse := c.parse
	c.parse = func(raw, source string) (ingredient.Record, error) {
		if raw == "Smoked  PAPRIKA!!" {
			panic("unexpected token")
		}
		return parse(raw, source)
	}

	entries, warnings := c.CombineLines([]ingredient.Line{
		{Text: "16 oz mushrooms", SourceRecipe: "Pasta"},
		{Text: "Smoked  PAPRIKA!!", SourceRecipe: "Pasta"},
		{Text: "6 oz mushrooms", SourceRecipe: "Risotto"},
	})

	require.Len(t, entries, 2)
	assert.Equal(t, "mushroom", entries[0].DisplayName)
	require.NotNil(t, entries[0].TotalQuantity)
	assert.Equal(t, 22.0, *entries[0].TotalQuantity)
	assert.Equal(t, []string{"Pasta", "Risotto"}, entries[0].ContributingSources)

	require.Len(t, entries[1].Members, 1)
	assert.Equal(t, "smoked paprika!!", entries[1].DisplayName)
	assert.Equal(t, "Smoked  PAPRIKA!!", entries[1].Members[0].RawText)
	assert.Nil(t, entries[1].TotalQuantity)

	require.Len(t, warnings, 1)
	assert.Equal(t, 1, warnings[0].Index)
	assert.Equal(t, "Pasta", warnings[0].SourceRecipe)
	assert.True(t, strings.HasPrefix(warnings[0].Reason, "parse failed:"), warnings[0].Reason)
}

func TestCombineRecoversFromMatchPanic(t *testing.T) {
	t.Parallel()

	c := NewCombiner(nil, nil, nil)
	namesMatch := c.namesMatch
	c.namesMatch = func(a, b string) bool {
		if b == "carrot" {
			panic("bad rune")
		}
		return namesMatch(a, b)
	}

	entries, warnings := c.CombineLines([]ingredient.Line{
		{Text: "1 onion"},
		{Text: "2 carrots"},
		{Text: "1 onion"},
	})

	require.Len(t, entries, 2)
	assert.Equal(t, "onion", entries[0].DisplayName)
	assert.Len(t, entries[0].Members, 2)
	assert.Equal(t, "carrot", entries[1].DisplayName)
	assert.Len(t, entries[1].Members, 1)

	require.Len(t, warnings, 1)
	assert.Equal(t, 1, warnings[0].Index)
	assert.True(t, strings.HasPrefix(warnings[0].Reason, "match failed:"), warnings[0].Reason)
}

func TestCombineKeepsFirstSeenOrder(t *testing.T) {
	t.Parallel()

	entries := NewCombiner(nil, nil, nil).Combine(parseAll(t, "", "1 cup flour", "2 eggs", "1 cup sugar", "1 egg"))
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.DisplayName)
	}
	assert.Equal(t, []string{"flour", "egg", "sugar"}, names)
}

func TestDefaultCombiner(t *testing.T) {
	t.Parallel()

	assert.Same(t, Default(), Default())
	entries := Combine(parseAll(t, "", "16 oz mushrooms", "6 oz mushrooms"))
	require.Len(t, entries, 1)
	assert.Equal(t, "- mushroom: 22 oz\n", Render(entries, false))
}
