package ingredient

import (
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
)

const (
	// DefaultSimilarityThreshold 模糊比對門檻
	DefaultSimilarityThreshold = 0.85
	// DefaultStructuralMaxDiff 結構比對允許的長度差
	DefaultStructuralMaxDiff = 3
)

// Matcher 食材名稱比對，依序為完全相同、結構、相似度
type Matcher struct {
	vocab     *Vocabulary
	threshold float64
	maxDiff   int
}

// MatcherOption 比對器選項
type MatcherOption func(*Matcher)

// WithThreshold 設定相似度門檻
func WithThreshold(threshold float64) MatcherOption {
	return func(m *Matcher) {
		if threshold > 0 && threshold <= 1 {
			m.threshold = threshold
		}
	}
}

// WithStructuralMaxDiff 設定結構比對的長度差上限
func WithStructuralMaxDiff(diff int) MatcherOption {
	return func(m *Matcher) {
		if diff >= 0 {
			m.maxDiff = diff
		}
	}
}

// NewMatcher 創建比對器
func NewMatcher(vocab *Vocabulary, opts ...MatcherOption) *Matcher {
	if vocab == nil {
		vocab = DefaultVocabulary()
	}
	m := &Matcher{
		vocab:     vocab,
		threshold: DefaultSimilarityThreshold,
		maxDiff:   DefaultStructuralMaxDiff,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Threshold 目前的相似度門檻
func (m *Matcher) Threshold() float64 {
	return m.threshold
}

// NamesMatch 判斷兩個名稱是否指同一食材
func (m *Matcher) NamesMatch(a, b string) bool {
	a = m.vocab.NormalizeName(a)
	b = m.vocab.NormalizeName(b)
	if a == "" || b == "" {
		return false
	}
	if a == b {
		return true
	}
	if m.structuralMatch(a, b) {
		return true
	}
	return Similarity(a, b) >= m.threshold
}

// structuralMatch 去除品種詞後，一方等於或是另一方的前後綴
//
// 兩邊都去除過品種詞時不算相符，避免 "red bell pepper" 與 "green bell pepper" 合併。
func (m *Matcher) structuralMatch(a, b string) bool {
	sa, strippedA := m.vocab.StripVarieties(a)
	sb, strippedB := m.vocab.StripVarieties(b)
	if strippedA && strippedB {
		return false
	}
	if sa == sb {
		return true
	}

	short, long := sa, sb
	if len(short) > len(long) {
		short, long = long, short
	}
	if len(long)-len(short) > m.maxDiff {
		return false
	}
	return strings.HasPrefix(long, short+" ") || strings.HasSuffix(long, " "+short)
}

// Similarity 以 Levenshtein 距離計算 0 到 1 的相似度
func Similarity(a, b string) float64 {
	if a == b {
		return 1
	}
	maxLen := utf8.RuneCountInString(a)
	if n := utf8.RuneCountInString(b); n > maxLen {
		maxLen = n
	}
	if maxLen == 0 {
		return 1
	}
	dist := levenshtein.ComputeDistance(a, b)
	return 1 - float64(dist)/float64(maxLen)
}
