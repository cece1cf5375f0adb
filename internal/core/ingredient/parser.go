package ingredient

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

const number = `(?:\d+\s+\d+/\d+|\d+/\d+|\d*\.\d+|\d+)`

var (
	quantityPattern    = regexp.MustCompile(`^(` + number + `)(?:\s*[-–—]\s*(` + number + `)|\s+to\s+(` + number + `))?`)
	parentheticalRegex = regexp.MustCompile(`\(([^()]*)\)`)
)

// Parser 食材行解析器，無狀態，可並行呼叫
type Parser struct {
	vocab *Vocabulary
}

// NewParser 創建解析器，vocab 為 nil 時使用內建詞表
func NewParser(vocab *Vocabulary) *Parser {
	if vocab == nil {
		vocab = DefaultVocabulary()
	}
	return &Parser{vocab: vocab}
}

// Vocabulary 回傳解析器使用的詞表
func (p *Parser) Vocabulary() *Vocabulary {
	return p.vocab
}

// NormalizeName 使用解析器詞表正規化名稱
func (p *Parser) NormalizeName(name string) string {
	return p.vocab.NormalizeName(name)
}

// Parse 將一行食材文字轉為 Record
//
// 只有空白輸入會回傳 ErrEmptyIngredient；其餘無法辨識的部分一律併入名稱。
func (p *Parser) Parse(rawText, sourceRecipe string) (Record, error) {
	text := prepareText(rawText)
	if text == "" {
		return Record{}, ErrEmptyIngredient
	}

	record := Record{
		RawText:      rawText,
		SourceRecipe: strings.TrimSpace(sourceRecipe),
	}

	// 括號內容不屬於名稱，先取出備用
	var notes []string
	for _, m := range parentheticalRegex.FindAllStringSubmatch(text, -1) {
		notes = append(notes, strings.TrimSpace(m[1]))
	}
	body := collapse(parentheticalRegex.ReplaceAllString(text, " "))

	quantity, rest, glued, ok := leadingQuantity(body)
	if ok && glued {
		// "16oz" 可以，"1e5 eggs" 不是數量
		if unit, _ := p.leadingUnit(rest); unit == "" {
			ok = false
		}
	}
	if ok {
		record.Quantity = &quantity
		rest = p.dropPackageSize(rest)
		var unit string
		unit, rest = p.leadingUnit(rest)
		record.Unit = unit
	} else {
		rest = body
		// "mushrooms (16 oz)" 這類寫法
		for _, note := range notes {
			if q, u, found := p.measure(note); found {
				record.Quantity = &q
				record.Unit = u
				break
			}
		}
	}

	segment := rest
	if idx := strings.Index(segment, ","); idx >= 0 {
		segment = segment[:idx]
	}
	segment = p.vocab.stripTrailing(segment)

	record.Name = p.vocab.NormalizeName(segment)
	if record.Name == "" {
		record.Name = collapse(strings.ToLower(strings.TrimSpace(rawText)))
	}
	return record, nil
}

// leadingUnit 取出數量後緊接的單位，並吃掉 "of"
func (p *Parser) leadingUnit(rest string) (string, string) {
	tokens := strings.Fields(rest)
	if len(tokens) == 0 {
		return "", ""
	}

	unit := ""
	consumed := 0
	if len(tokens) >= 2 {
		if u, ok := p.vocab.LookupUnit(tokens[0] + " " + tokens[1]); ok {
			unit, consumed = u, 2
		}
	}
	if unit == "" {
		if u, ok := p.vocab.LookupUnit(tokens[0]); ok {
			unit, consumed = u, 1
		}
	}
	tokens = tokens[consumed:]
	if unit != "" && len(tokens) > 1 && strings.EqualFold(tokens[0], "of") {
		tokens = tokens[1:]
	}
	return unit, strings.Join(tokens, " ")
}

// dropPackageSize 移除數量後的包裝規格："2 14.5 oz cans tomatoes" 視同 "2 cans (14.5 oz) tomatoes"
func (p *Parser) dropPackageSize(rest string) string {
	_, after, _, ok := leadingQuantity(rest)
	if !ok {
		return rest
	}
	unit, remaining := p.leadingUnit(after)
	if unit == "" || remaining == "" {
		return rest
	}
	return remaining
}

// measure 解析只含 "<數量> <單位>" 的片段
func (p *Parser) measure(note string) (float64, string, bool) {
	quantity, rest, _, ok := leadingQuantity(note)
	if !ok {
		return 0, "", false
	}
	rest = strings.TrimSpace(rest)
	if rest == "" {
		return 0, "", false
	}
	unit, ok := p.vocab.LookupUnit(rest)
	if !ok {
		return 0, "", false
	}
	return quantity, unit, true
}

// leadingQuantity 解析開頭的數量，支援整數、小數、分數、帶分數與範圍
//
// glued 表示數字後直接接字母（"16oz"），由呼叫端確認是否為單位。
func leadingQuantity(s string) (value float64, rest string, glued bool, ok bool) {
	m := quantityPattern.FindStringSubmatchIndex(s)
	if m == nil {
		return 0, s, false, false
	}

	low, ok := parseNumber(s[m[2]:m[3]])
	if !ok {
		return 0, s, false, false
	}
	value = low
	for _, g := range [][2]int{{m[4], m[5]}, {m[6], m[7]}} {
		if g[0] < 0 {
			continue
		}
		high, ok := parseNumber(s[g[0]:g[1]])
		if !ok {
			return 0, s, false, false
		}
		// 範圍取中間值
		value = (low + high) / 2
	}

	rest = s[m[1]:]
	if rest != "" {
		r := []rune(rest)[0]
		if unicode.IsDigit(r) || r == '/' || r == '.' {
			return 0, s, false, false
		}
		glued = unicode.IsLetter(r)
	}
	return value, strings.TrimSpace(rest), glued, true
}

// parseNumber 解析 "1", "1.5", "1/2", "1 1/2"
func parseNumber(s string) (float64, bool) {
	parts := strings.Fields(s)
	total := 0.0
	for _, part := range parts {
		if num, den, found := strings.Cut(part, "/"); found {
			n, err := strconv.ParseFloat(num, 64)
			if err != nil {
				return 0, false
			}
			d, err := strconv.ParseFloat(den, 64)
			if err != nil || d == 0 {
				return 0, false
			}
			total += n / d
			continue
		}
		v, err := strconv.ParseFloat(part, 64)
		if err != nil {
			return 0, false
		}
		total += v
	}
	return total, len(parts) > 0
}

// prepareText Unicode 正規化，並將 "½" 等分數字元展開為 "1/2"
func prepareText(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.Is(unicode.No, r) {
			expanded := norm.NFKC.String(string(r))
			if strings.ContainsRune(expanded, '⁄') {
				b.WriteString(" " + strings.ReplaceAll(expanded, "⁄", "/") + " ")
				continue
			}
		}
		b.WriteRune(r)
	}
	out := norm.NFKC.String(b.String())
	out = strings.ReplaceAll(out, "⁄", "/")
	return collapse(out)
}
