// Package analytics ranks the meaningful words of a piece of text.
package analytics

import (
	"sort"
	"strings"
	"unicode"

	"github.com/dtnitsch/linkslug/pkg/lexicon"
)

// Analytics counts words, skipping the lexicon's stop words.
type Analytics struct {
	lex *lexicon.Lexicon
}

func New(lex *lexicon.Lexicon) *Analytics {
	return &Analytics{lex: lex}
}

// Words splits text into lower-cased alphanumeric tokens, dropping stop
// words, single characters and pure numbers. Order is preserved.
func (a *Analytics) Words(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '\''
	})

	words := make([]string, 0, len(fields))
	for _, word := range fields {
		word = strings.Trim(word, "'")
		word = strings.TrimSuffix(word, "'s")
		if len([]rune(word)) < 2 || isNumber(word) || a.lex.IsStopWord(word) {
			continue
		}
		words = append(words, word)
	}
	return words
}

func (a *Analytics) WordFrequency(text string) map[string]int {
	frequencies := make(map[string]int)
	for _, word := range a.Words(text) {
		frequencies[word]++
	}
	return frequencies
}

type wordCount struct {
	Word  string
	Count int
}

// TopNWords returns the n most frequent words. Ties keep the order in
// which the words first appear.
func (a *Analytics) TopNWords(text string, n int) []string {
	words := a.Words(text)

	index := make(map[string]int)
	var counts []wordCount
	for _, w := range words {
		if j, ok := index[w]; ok {
			counts[j].Count++
			continue
		}
		index[w] = len(counts)
		counts = append(counts, wordCount{Word: w, Count: 1})
	}

	sort.SliceStable(counts, func(i, j int) bool {
		return counts[i].Count > counts[j].Count
	})

	limit := n
	if len(counts) < n {
		limit = len(counts)
	}

	topN := make([]string, limit)
	for i := 0; i < limit; i++ {
		topN[i] = counts[i].Word
	}
	return topN
}

func isNumber(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return s != ""
}
