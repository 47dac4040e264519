package usecase

import (
	"strings"

	"chatsearch/config"
	"chatsearch/internal/adapter/analyzer"
)

// Splitter breaks a compound utterance into sub-queries. It cuts at
// sentence punctuation and connector words first, then again wherever the
// trigger category of consecutive words changes ("harga iphone fiturnya
// apa" becomes a price part and a feature part).
type Splitter struct {
	punctuation string
	connectors  map[string]struct{}
	triggers    map[string]string // word -> category, first table entry wins
	pre         *analyzer.Preprocessor
}

// NewSplitter builds a splitter. pre may be nil, in which case trigger
// words only match verbatim.
func NewSplitter(cfg config.SearchConfig, pre *analyzer.Preprocessor) *Splitter {
	s := &Splitter{
		punctuation: cfg.SplitPunctuation,
		connectors:  make(map[string]struct{}, len(cfg.Connectors)),
		triggers:    make(map[string]string),
		pre:         pre,
	}
	for _, c := range cfg.Connectors {
		s.connectors[strings.ToLower(strings.TrimSpace(c))] = struct{}{}
	}
	for _, e := range cfg.TriggerCategories {
		for _, w := range e.Words {
			w = strings.ToLower(w)
			if _, ok := s.triggers[w]; !ok {
				s.triggers[w] = e.Key
			}
		}
	}
	return s
}

// Split returns the non-empty sub-queries of text in order. Text without
// any boundary comes back as a single part; text made only of separators
// yields none.
func (s *Splitter) Split(text string) []string {
	var parts []string
	for _, piece := range s.splitPunctuation(text) {
		for _, clause := range s.splitConnectors(piece) {
			parts = append(parts, s.splitCategories(clause)...)
		}
	}
	return parts
}

func (s *Splitter) splitPunctuation(text string) []string {
	if s.punctuation == "" {
		return []string{text}
	}
	return strings.FieldsFunc(text, func(r rune) bool {
		return strings.ContainsRune(s.punctuation, r)
	})
}

func (s *Splitter) splitConnectors(text string) [][]string {
	var clauses [][]string
	var current []string
	for _, w := range strings.Fields(text) {
		if _, ok := s.connectors[strings.ToLower(w)]; ok {
			if len(current) > 0 {
				clauses = append(clauses, current)
			}
			current = nil
			continue
		}
		current = append(current, w)
	}
	if len(current) > 0 {
		clauses = append(clauses, current)
	}
	return clauses
}

func (s *Splitter) splitCategories(words []string) []string {
	var parts []string
	start := 0
	active := ""
	for i, w := range words {
		category := s.category(w)
		if category == "" {
			continue
		}
		if active != "" && category != active && i > start {
			parts = append(parts, strings.Join(words[start:i], " "))
			start = i
		}
		active = category
	}
	if start < len(words) {
		parts = append(parts, strings.Join(words[start:], " "))
	}
	return parts
}

// category looks a word up verbatim, after phonetic correction and after
// stemming, so "fiturnya" and "hrg" both count.
func (s *Splitter) category(word string) string {
	for _, w := range analyzer.Words(word) {
		if c, ok := s.triggers[w]; ok {
			return c
		}
		if s.pre == nil {
			continue
		}
		corrected := s.pre.AutoCorrect(w)
		if c, ok := s.triggers[corrected]; ok {
			return c
		}
		if c, ok := s.triggers[s.pre.Provider().Stem(corrected)]; ok {
			return c
		}
	}
	return ""
}
