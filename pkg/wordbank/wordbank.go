package wordbank

import (
	"errors"
	"sort"
	"strings"
)

// ErrEmptyVocabulary is returned when a word bank would hold no words.
var ErrEmptyVocabulary = errors.New("vocabulary is empty")

// WordBank is an immutable set of normalized words. It is built once by New
// and only read afterwards, so it is safe for concurrent use without locking.
type WordBank struct {
	words  map[string]struct{}
	sorted []string
	stats  Stats
}

// Stats describes what happened to the raw input while building a WordBank.
type Stats struct {
	Raw        int `json:"raw"`
	Skipped    int `json:"skipped"`
	Duplicates int `json:"duplicates"`
}

// Normalize trims surrounding whitespace and uppercases s. It is applied
// both when loading words and when looking them up.
func Normalize(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// New builds a word bank from raw words. Entries that normalize to the empty
// string are skipped.
func New(raw []string) (*WordBank, error) {
	wb := &WordBank{
		words: make(map[string]struct{}, len(raw)),
		stats: Stats{Raw: len(raw)},
	}

	for _, word := range raw {
		word = Normalize(word)
		if word == "" {
			wb.stats.Skipped++
			continue
		}
		if _, exists := wb.words[word]; exists {
			wb.stats.Duplicates++
			continue
		}
		wb.words[word] = struct{}{}
		wb.sorted = append(wb.sorted, word)
	}

	if len(wb.words) == 0 {
		return nil, ErrEmptyVocabulary
	}

	sort.Strings(wb.sorted)
	return wb, nil
}

// Contains reports whether the normalized form of word is in the bank.
func (wb *WordBank) Contains(word string) bool {
	word = Normalize(word)
	if word == "" {
		return false
	}
	_, exists := wb.words[word]
	return exists
}

// Words returns a copy of every word in the bank. Callers must not depend on
// the order.
func (wb *WordBank) Words() []string {
	out := make([]string, len(wb.sorted))
	copy(out, wb.sorted)
	return out
}

// Len returns the number of distinct words.
func (wb *WordBank) Len() int {
	return len(wb.sorted)
}

// Stats returns load statistics gathered by New.
func (wb *WordBank) Stats() Stats {
	return wb.stats
}
