package ingredient

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeName(t *testing.T) {
	t.Parallel()

	vocab := DefaultVocabulary()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "lowercases and strips fresh", input: "Fresh Basil", want: "basil"},
		{name: "lone descriptor is kept", input: "fresh", want: "fresh"},
		{name: "repeated descriptors", input: "large ripe avocados", want: "avocado"},
		{name: "collapses whitespace", input: "  ground   cumin ", want: "cumin"},
		{name: "variety words survive", input: "red bell peppers", want: "red bell pepper"},
		{name: "punctuation removed", input: "Dried oregano.", want: "oregano"},
		{name: "hyphenated word kept", input: "extra-virgin olive oil", want: "extra-virgin olive oil"},
		{name: "empty input", input: "   ", want: ""},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, vocab.NormalizeName(tc.input))
		})
	}
}

func TestNormalizeNameIsIdempotent(t *testing.T) {
	t.Parallel()

	vocab := DefaultVocabulary()
	inputs := []string{
		"tomatoes", "glasses", "molasses", "fresh basil leaves", "cherries",
		"roma tomatoes", "peaches", "boxes", "chives", "cookies", "swiss chard",
	}
	for _, input := range inputs {
		once := vocab.NormalizeName(input)
		assert.Equal(t, once, vocab.NormalizeName(once), input)
	}
}

func TestSingularize(t *testing.T) {
	t.Parallel()

	vocab := DefaultVocabulary()

	tests := []struct {
		input string
		want  string
	}{
		{"tomatoes", "tomato"},
		{"berries", "berry"},
		{"peaches", "peach"},
		{"radishes", "radish"},
		{"glasses", "glass"},
		{"boxes", "box"},
		{"eggs", "egg"},
		{"peas", "pea"},
		{"grapes", "grape"},
		{"cheeses", "cheese"},
		{"pies", "pie"},
		{"leaves", "leaf"},
		{"cookies", "cookie"},
		{"molasses", "molasses"},
		{"couscous", "couscous"},
		{"asparagus", "asparagus"},
		{"hummus", "hummus"},
		{"oats", "oats"},
		{"gas", "gas"},
		{"rice", "rice"},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.input, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, vocab.Singularize(tc.input))
		})
	}
}

func TestStripVarieties(t *testing.T) {
	t.Parallel()

	vocab := DefaultVocabulary()

	got, stripped := vocab.StripVarieties("red bell pepper")
	assert.Equal(t, "bell pepper", got)
	assert.True(t, stripped)

	got, stripped = vocab.StripVarieties("cherry")
	assert.Equal(t, "cherry", got)
	assert.False(t, stripped)

	got, stripped = vocab.StripVarieties("yukon gold potato")
	assert.Equal(t, "potato", got)
	assert.True(t, stripped)
}

func TestUnitLabel(t *testing.T) {
	t.Parallel()

	vocab := DefaultVocabulary()
	assert.Equal(t, "cups", vocab.UnitLabel("cup", 2))
	assert.Equal(t, "cup", vocab.UnitLabel("cup", 1))
	assert.Equal(t, "cup", vocab.UnitLabel("cup", 0.5))
	assert.Equal(t, "oz", vocab.UnitLabel("oz", 22))
	assert.Equal(t, "bunches", vocab.UnitLabel("bunch", 3))
}
