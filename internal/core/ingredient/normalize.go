package ingredient

import (
	"strings"
	"unicode"
)

// NormalizeName 名稱正規化：小寫、去除前綴描述詞、最後一個字轉單數
//
// 對自身輸出為冪等；結果為空時回傳空字串，由呼叫端決定後備值。
func (v *Vocabulary) NormalizeName(name string) string {
	words := strings.Fields(cleanName(name))
	if len(words) == 0 {
		return ""
	}

	// 前綴描述詞可連續出現，但至少保留一個字
	for len(words) > 1 && v.IsDescriptor(words[0]) {
		words = words[1:]
	}

	last := len(words) - 1
	words[last] = v.Singularize(words[last])

	return strings.Join(words, " ")
}

// Singularize 單字轉單數的簡易規則
func (v *Vocabulary) Singularize(word string) string {
	if singular, ok := v.irregular[word]; ok {
		return singular
	}
	if _, ok := v.singular[word]; ok {
		return word
	}
	if len(word) <= 3 || !strings.HasSuffix(word, "s") {
		return word
	}
	switch {
	case strings.HasSuffix(word, "us"), strings.HasSuffix(word, "ss"), strings.HasSuffix(word, "is"):
		return word
	case strings.HasSuffix(word, "ies") && len(word) > 4:
		return word[:len(word)-3] + "y"
	case strings.HasSuffix(word, "oes"):
		return word[:len(word)-2]
	case strings.HasSuffix(word, "ches"), strings.HasSuffix(word, "shes"),
		strings.HasSuffix(word, "sses"), strings.HasSuffix(word, "xes"),
		strings.HasSuffix(word, "zes"):
		return word[:len(word)-2]
	}
	return word[:len(word)-1]
}

// StripVarieties 去除開頭的顏色與品種詞，回傳剩餘名稱與是否有去除
func (v *Vocabulary) StripVarieties(name string) (string, bool) {
	words := strings.Fields(name)
	stripped := false
	for len(words) > 1 && v.IsVariety(words[0]) {
		words = words[1:]
		stripped = true
	}
	return strings.Join(words, " "), stripped
}

// stripTrailing 去除名稱結尾的 "to taste" 之類片語
func (v *Vocabulary) stripTrailing(segment string) string {
	segment = collapse(strings.ToLower(segment))
	for {
		trimmed := false
		for _, phrase := range v.trailing {
			if segment == phrase {
				return ""
			}
			if strings.HasSuffix(segment, " "+phrase) {
				segment = strings.TrimSpace(segment[:len(segment)-len(phrase)])
				trimmed = true
				break
			}
		}
		if !trimmed {
			return segment
		}
	}
}

// cleanName 小寫並將標點換成空白，保留字內的連字號與撇號
func cleanName(s string) string {
	s = strings.ToLower(s)
	var b strings.Builder
	b.Grow(len(s))
	runes := []rune(s)
	for i, r := range runes {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r):
			b.WriteRune(r)
		case (r == '-' || r == '\'') && i > 0 && i < len(runes)-1 &&
			unicode.IsLetter(runes[i-1]) && unicode.IsLetter(runes[i+1]):
			b.WriteRune(r)
		case r == '&':
			b.WriteRune(r)
		default:
			b.WriteRune(' ')
		}
	}
	return b.String()
}

// collapse 合併連續空白
func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
