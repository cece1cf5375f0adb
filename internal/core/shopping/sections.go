package shopping

import (
	"sort"
	"strings"
)

// OtherSection 無法分類時的區域，輸出時永遠排最後
const OtherSection = "Other"

// Section 賣場區域與對應關鍵字
type Section struct {
	Name     string
	Keywords []string
}

// SectionTable 依賣場動線排序的靜態分類表，建立後唯讀
type SectionTable struct {
	sections []Section
	order    map[string]int
}

var defaultSections = []Section{
	{Name: "Produce", Keywords: []string{
		"apple", "arugula", "asparagus", "avocado", "banana", "basil", "beet",
		"bell pepper", "berry", "blueberry", "broccoli", "cabbage", "carrot",
		"cauliflower", "celery", "cherry", "chili pepper", "chive", "cilantro",
		"corn", "cucumber", "dill", "eggplant", "garlic", "ginger", "grape",
		"green bean", "herb", "jalapeno", "jalapeño", "kale", "leek", "lemon",
		"lemon juice", "lettuce", "lime", "lime juice", "mango", "mint", "mushroom", "onion", "orange",
		"parsley", "peach", "pear", "potato", "radish", "rosemary", "sage",
		"scallion", "shallot", "spinach", "squash", "strawberry", "sweet potato",
		"thyme", "tomato", "zucchini",
	}},
	{Name: "Meat & Seafood", Keywords: []string{
		"anchovy", "bacon", "beef", "chicken", "chicken breast", "chicken thigh",
		"chorizo", "cod", "crab", "fish", "ham", "lamb", "pork", "prosciutto",
		"salmon", "sausage", "scallop", "shrimp", "steak", "tilapia", "tuna",
		"turkey",
	}},
	{Name: "Dairy & Eggs", Keywords: []string{
		"butter", "buttermilk", "cheddar", "cheese", "cream", "cream cheese",
		"egg", "feta", "half-and-half", "heavy cream", "milk", "mozzarella",
		"parmesan", "ricotta", "sour cream", "yogurt",
	}},
	{Name: "Bakery", Keywords: []string{
		"bagel", "baguette", "bread", "bun", "croissant", "muffin", "naan",
		"pita", "roll", "tortilla",
	}},
	{Name: "Grains & Pasta", Keywords: []string{
		"barley", "cereal", "couscous", "farro", "lasagna", "macaroni",
		"noodle", "oats", "orzo", "pasta", "penne", "quinoa", "rice",
		"spaghetti",
	}},
	{Name: "Canned & Dried", Keywords: []string{
		"bean", "beef broth", "black bean", "broth", "canned", "canned tuna",
		"chicken broth", "chicken stock", "chickpea", "coconut milk",
		"kidney bean", "lentil", "split pea", "stock", "tomato paste",
		"tomato sauce", "vegetable broth",
	}},
	{Name: "Baking Supplies", Keywords: []string{
		"baking powder", "baking soda", "breadcrumb", "brown sugar",
		"chocolate", "chocolate chip", "cocoa", "corn starch", "cornstarch",
		"flour", "panko", "powdered sugar", "sugar", "vanilla",
		"vanilla extract", "yeast",
	}},
	{Name: "Condiments & Oils", Keywords: []string{
		"dressing", "fish sauce", "honey", "hot sauce", "hummus", "jam",
		"ketchup", "maple syrup", "mayonnaise", "mustard", "oil", "olive oil",
		"peanut butter", "salsa", "sauce", "soy sauce", "sriracha", "tahini",
		"vegetable oil", "vinegar", "worcestershire sauce",
	}},
	{Name: "Spices & Seasonings", Keywords: []string{
		"bay leaf", "black pepper", "cayenne", "chili powder", "cinnamon",
		"coriander", "cumin", "curry powder", "garlic powder", "italian seasoning",
		"nutmeg", "onion powder", "oregano", "paprika", "pepper",
		"red pepper flake", "salt", "seasoning", "spice", "turmeric",
	}},
	{Name: "Frozen", Keywords: []string{
		"edamame", "frozen", "ice", "ice cream", "pea", "tater tot",
	}},
	{Name: "Beverages", Keywords: []string{
		"beer", "coffee", "juice", "kombucha", "orange juice", "soda",
		"sparkling water", "tea", "water", "wine",
	}},
	{Name: "Snacks", Keywords: []string{
		"almond", "cashew", "chip", "cookie", "cracker", "granola", "nut",
		"peanut", "pecan", "popcorn", "pretzel", "raisin", "trail mix",
		"walnut",
	}},
	{Name: OtherSection},
}

// DefaultSectionTable 內建分類表
func DefaultSectionTable() *SectionTable {
	return NewSectionTable(defaultSections)
}

// NewSectionTable 依宣告順序建立分類表，未宣告 Other 時自動補上
func NewSectionTable(sections []Section) *SectionTable {
	t := &SectionTable{order: make(map[string]int)}
	for _, s := range sections {
		name := strings.TrimSpace(s.Name)
		if name == "" {
			continue
		}
		if idx, ok := t.order[name]; ok {
			t.sections[idx].Keywords = append(t.sections[idx].Keywords, normalizeKeywords(s.Keywords)...)
			continue
		}
		t.order[name] = len(t.sections)
		t.sections = append(t.sections, Section{Name: name, Keywords: normalizeKeywords(s.Keywords)})
	}
	if _, ok := t.order[OtherSection]; !ok {
		t.order[OtherSection] = len(t.sections)
		t.sections = append(t.sections, Section{Name: OtherSection})
	}
	return t
}

// WithKeywords 回傳追加關鍵字後的新分類表；區域名稱不分大小寫，未知區域會插在 Other 之前
func (t *SectionTable) WithKeywords(extra map[string][]string) *SectionTable {
	extra = t.canonicalNames(extra)
	sections := make([]Section, 0, len(t.sections)+len(extra))
	for _, s := range t.sections {
		if s.Name == OtherSection {
			continue
		}
		sections = append(sections, Section{Name: s.Name, Keywords: append([]string(nil), s.Keywords...)})
	}
	// 已知區域依原順序，未知區域依名稱排序以保持穩定
	var added []string
	for name := range extra {
		if _, ok := t.order[name]; !ok {
			added = append(added, name)
		}
	}
	sort.Strings(added)
	for _, name := range added {
		sections = append(sections, Section{Name: name})
	}
	for i := range sections {
		sections[i].Keywords = append(sections[i].Keywords, extra[sections[i].Name]...)
	}
	other := append([]string(nil), t.sections[t.order[OtherSection]].Keywords...)
	sections = append(sections, Section{Name: OtherSection, Keywords: append(other, extra[OtherSection]...)})
	return NewSectionTable(sections)
}

// canonicalNames 將設定檔中的區域名稱對應到既有名稱
func (t *SectionTable) canonicalNames(extra map[string][]string) map[string][]string {
	out := make(map[string][]string, len(extra))
	for name, keywords := range extra {
		name = strings.TrimSpace(name)
		for _, s := range t.sections {
			if strings.EqualFold(s.Name, name) {
				name = s.Name
				break
			}
		}
		if name != "" {
			out[name] = append(out[name], keywords...)
		}
	}
	return out
}

// Names 依輸出順序回傳區域名稱，Other 在最後
func (t *SectionTable) Names() []string {
	names := make([]string, 0, len(t.sections))
	for _, s := range t.sections {
		if s.Name != OtherSection {
			names = append(names, s.Name)
		}
	}
	return append(names, OtherSection)
}

// Has 是否為已宣告的區域
func (t *SectionTable) Has(name string) bool {
	_, ok := t.order[name]
	return ok
}

// Categorize 以關鍵字判斷名稱所屬區域，找不到回傳 Other
func (t *SectionTable) Categorize(name string) string {
	if section, ok := t.match(name); ok {
		return section
	}
	return OtherSection
}

// Lookup 依序以顯示名稱、各成員名稱、顯示名稱的每個字查找區域
func (t *SectionTable) Lookup(displayName string, names []string) string {
	if section, ok := t.match(displayName); ok {
		return section
	}
	for _, n := range names {
		if section, ok := t.match(n); ok {
			return section
		}
	}
	for _, word := range strings.Fields(displayName) {
		if section, ok := t.match(word); ok {
			return section
		}
	}
	return OtherSection
}

// Group 依分類表順序分組，區域內維持輸入順序，空區域省略
func (t *SectionTable) Group(entries []CombinedEntry) []SectionGroup {
	buckets := make(map[string][]CombinedEntry)
	for _, e := range entries {
		section := e.StoreSection
		if !t.Has(section) {
			section = OtherSection
		}
		buckets[section] = append(buckets[section], e)
	}

	groups := make([]SectionGroup, 0, len(buckets))
	for _, name := range t.Names() {
		if len(buckets[name]) == 0 {
			continue
		}
		groups = append(groups, SectionGroup{Section: name, Entries: buckets[name]})
	}
	return groups
}

// match 取最長的相符關鍵字，同長度時較早宣告的區域優先
func (t *SectionTable) match(name string) (string, bool) {
	name = strings.Join(strings.Fields(strings.ToLower(name)), " ")
	if name == "" {
		return "", false
	}
	best, bestLen := "", 0
	for _, s := range t.sections {
		for _, kw := range s.Keywords {
			if len(kw) > bestLen && containsWord(name, kw) {
				best, bestLen = s.Name, len(kw)
			}
		}
	}
	return best, bestLen > 0
}

func containsWord(name, keyword string) bool {
	return name == keyword ||
		strings.HasPrefix(name, keyword+" ") ||
		strings.HasSuffix(name, " "+keyword) ||
		strings.Contains(name, " "+keyword+" ")
}

func normalizeKeywords(keywords []string) []string {
	out := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		kw = strings.Join(strings.Fields(strings.ToLower(kw)), " ")
		if kw != "" {
			out = append(out, kw)
		}
	}
	return out
}
