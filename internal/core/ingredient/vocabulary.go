package ingredient

import (
	"sort"
	"strings"
)

// Vocabulary 解析與比對用的詞表，建立後唯讀，可跨 goroutine 共用
type Vocabulary struct {
	units       map[string]string
	unitPlurals map[string]string
	descriptors map[string]struct{}
	varieties   map[string]struct{}
	trailing    []string
	singular    map[string]struct{}
	irregular   map[string]string
}

// Extras 由設定檔追加的詞彙
type Extras struct {
	Units         map[string]string // 別名 -> 標準單位
	Descriptors   []string
	Varieties     []string
	SingularWords []string
}

var defaultUnits = map[string][]string{
	"tsp":       {"tsp", "tsps", "teaspoon", "teaspoons"},
	"tbsp":      {"tbsp", "tbsps", "tbs", "tbl", "tablespoon", "tablespoons"},
	"cup":       {"cup", "cups", "c"},
	"oz":        {"oz", "ozs", "ounce", "ounces"},
	"fl oz":     {"fl oz", "fl. oz", "floz", "fluid ounce", "fluid ounces"},
	"lb":        {"lb", "lbs", "pound", "pounds"},
	"g":         {"g", "gr", "gram", "grams", "gramme", "grammes"},
	"kg":        {"kg", "kgs", "kilo", "kilos", "kilogram", "kilograms"},
	"mg":        {"mg", "milligram", "milligrams"},
	"ml":        {"ml", "mls", "milliliter", "milliliters", "millilitre", "millilitres"},
	"l":         {"l", "liter", "liters", "litre", "litres"},
	"pt":        {"pt", "pint", "pints"},
	"qt":        {"qt", "quart", "quarts"},
	"gal":       {"gal", "gallon", "gallons"},
	"can":       {"can", "cans", "tin", "tins"},
	"jar":       {"jar", "jars"},
	"bottle":    {"bottle", "bottles"},
	"package":   {"package", "packages", "pkg", "pkgs", "packet", "packets", "pack", "packs"},
	"box":       {"box", "boxes"},
	"bag":       {"bag", "bags"},
	"container": {"container", "containers", "carton", "cartons"},
	"bunch":     {"bunch", "bunches"},
	"clove":     {"clove", "cloves"},
	"head":      {"head", "heads"},
	"stalk":     {"stalk", "stalks"},
	"sprig":     {"sprig", "sprigs"},
	"slice":     {"slice", "slices"},
	"stick":     {"stick", "sticks"},
	"piece":     {"piece", "pieces"},
	"pinch":     {"pinch", "pinches"},
	"dash":      {"dash", "dashes"},
	"handful":   {"handful", "handfuls"},
}

var defaultUnitPlurals = map[string]string{
	"cup":       "cups",
	"can":       "cans",
	"jar":       "jars",
	"bottle":    "bottles",
	"package":   "packages",
	"box":       "boxes",
	"bag":       "bags",
	"container": "containers",
	"bunch":     "bunches",
	"clove":     "cloves",
	"head":      "heads",
	"stalk":     "stalks",
	"sprig":     "sprigs",
	"slice":     "slices",
	"stick":     "sticks",
	"piece":     "pieces",
	"pinch":     "pinches",
	"dash":      "dashes",
	"handful":   "handfuls",
}

// 名稱前綴的狀態與處理方式描述詞
var defaultDescriptors = []string{
	"fresh", "freshly", "dried", "dry", "ground", "large", "small", "medium",
	"ripe", "organic", "extra", "jumbo", "whole", "frozen", "raw", "cooked",
	"chopped", "diced", "minced", "sliced", "grated", "shredded", "crushed",
	"peeled", "cubed", "halved", "quartered", "julienned", "mashed", "melted",
	"softened", "beaten", "packed", "sifted", "toasted", "rinsed", "drained",
	"trimmed", "finely", "thinly", "roughly", "coarsely", "lightly", "very",
	"boneless", "skinless", "virgin",
}

// 顏色與品種描述詞，只用於結構比對
var defaultVarieties = []string{
	"red", "green", "yellow", "white", "black", "purple", "orange", "golden",
	"baby", "roma", "plum", "cherry", "grape", "heirloom", "vine", "russet",
	"yukon", "gold", "vidalia", "english", "italian", "flat-leaf", "curly",
}

var defaultTrailing = []string{
	"to taste", "as needed", "as desired", "if desired", "for garnish",
	"for serving", "for topping", "optional", "or more", "or to taste",
	"plus more",
}

// 結尾為 s 但本身是單數的詞
var defaultSingular = []string{
	"hummus", "couscous", "asparagus", "molasses", "citrus", "swiss",
	"oats", "grits", "greens", "brussels", "bitters", "schnapps", "hibiscus",
	"octopus", "series", "species", "lemongrass", "watercress", "haggis",
}

var defaultIrregular = map[string]string{
	"leaves":    "leaf",
	"halves":    "half",
	"loaves":    "loaf",
	"knives":    "knife",
	"cookies":   "cookie",
	"brownies":  "brownie",
	"smoothies": "smoothie",
	"veggies":   "veggie",
	"chilies":   "chili",
	"chillies":  "chilli",
	"quiches":   "quiche",
	"brioches":  "brioche",
	"geese":     "goose",
}

// DefaultVocabulary 內建詞表
func DefaultVocabulary() *Vocabulary {
	v := &Vocabulary{
		units:       make(map[string]string),
		unitPlurals: make(map[string]string, len(defaultUnitPlurals)),
		descriptors: toSet(defaultDescriptors),
		varieties:   toSet(defaultVarieties),
		trailing:    append([]string(nil), defaultTrailing...),
		singular:    toSet(defaultSingular),
		irregular:   make(map[string]string, len(defaultIrregular)),
	}
	for canonical, aliases := range defaultUnits {
		for _, alias := range aliases {
			v.units[alias] = canonical
		}
	}
	for k, val := range defaultUnitPlurals {
		v.unitPlurals[k] = val
	}
	for k, val := range defaultIrregular {
		v.irregular[k] = val
	}
	v.sortTrailing()
	return v
}

// Extend 回傳合併額外詞彙後的新詞表，原詞表不變
func (v *Vocabulary) Extend(extra Extras) *Vocabulary {
	out := v.clone()
	for alias, canonical := range extra.Units {
		alias = strings.ToLower(strings.TrimSpace(alias))
		canonical = strings.ToLower(strings.TrimSpace(canonical))
		if alias == "" || canonical == "" {
			continue
		}
		out.units[alias] = canonical
	}
	addWords(out.descriptors, extra.Descriptors)
	addWords(out.varieties, extra.Varieties)
	addWords(out.singular, extra.SingularWords)
	return out
}

// LookupUnit 將單位別名轉為標準單位
func (v *Vocabulary) LookupUnit(token string) (string, bool) {
	token = strings.TrimSuffix(strings.ToLower(strings.TrimSpace(token)), ".")
	canonical, ok := v.units[token]
	return canonical, ok
}

// UnitLabel 顯示用單位，數量大於一時使用複數
func (v *Vocabulary) UnitLabel(unit string, quantity float64) string {
	if quantity > 1 {
		if plural, ok := v.unitPlurals[unit]; ok {
			return plural
		}
	}
	return unit
}

// IsDescriptor 是否為可去除的前綴描述詞
func (v *Vocabulary) IsDescriptor(word string) bool {
	_, ok := v.descriptors[word]
	return ok
}

// IsVariety 是否為顏色或品種描述詞
func (v *Vocabulary) IsVariety(word string) bool {
	_, ok := v.varieties[word]
	return ok
}

func (v *Vocabulary) clone() *Vocabulary {
	out := &Vocabulary{
		units:       make(map[string]string, len(v.units)),
		unitPlurals: make(map[string]string, len(v.unitPlurals)),
		descriptors: make(map[string]struct{}, len(v.descriptors)),
		varieties:   make(map[string]struct{}, len(v.varieties)),
		trailing:    append([]string(nil), v.trailing...),
		singular:    make(map[string]struct{}, len(v.singular)),
		irregular:   make(map[string]string, len(v.irregular)),
	}
	for k, val := range v.units {
		out.units[k] = val
	}
	for k, val := range v.unitPlurals {
		out.unitPlurals[k] = val
	}
	for k := range v.descriptors {
		out.descriptors[k] = struct{}{}
	}
	for k := range v.varieties {
		out.varieties[k] = struct{}{}
	}
	for k := range v.singular {
		out.singular[k] = struct{}{}
	}
	for k, val := range v.irregular {
		out.irregular[k] = val
	}
	return out
}

// 長片語優先比對
func (v *Vocabulary) sortTrailing() {
	sort.SliceStable(v.trailing, func(i, j int) bool {
		return len(v.trailing[i]) > len(v.trailing[j])
	})
}

func toSet(words []string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	addWords(set, words)
	return set
}

func addWords(set map[string]struct{}, words []string) {
	for _, w := range words {
		w = strings.ToLower(strings.TrimSpace(w))
		if w != "" {
			set[w] = struct{}{}
		}
	}
}
