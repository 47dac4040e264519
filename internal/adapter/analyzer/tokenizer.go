package analyzer

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"chatsearch/internal/port"
)

// Tokenizer splits normalized text into word tokens longer than a minimum rune length.
type Tokenizer struct {
	provider port.LinguisticProvider
	minLen   int
}

// NewTokenizer creates a Tokenizer that normalizes through provider and keeps
// words strictly longer than minLen runes. A nil provider only lowercases.
func NewTokenizer(provider port.LinguisticProvider, minLen int) *Tokenizer {
	return &Tokenizer{provider: provider, minLen: minLen}
}

// Tokenize normalizes text and splits it into tokens.
func (t *Tokenizer) Tokenize(text string) []string {
	if !utf8.ValidString(text) {
		text = strings.ToValidUTF8(text, " ")
	}
	if t.provider != nil {
		text = t.provider.Normalize(text)
	} else {
		text = strings.ToLower(text)
	}

	words := splitWords(text)
	tokens := make([]string, 0, len(words))
	for _, word := range words {
		if utf8.RuneCountInString(word) <= t.minLen {
			continue
		}
		tokens = append(tokens, word)
	}
	return tokens
}

// Words lowercases text and splits it on anything that is not a letter or digit.
func Words(text string) []string {
	return splitWords(strings.ToLower(text))
}

// splitWords splits text into runs of letters and digits. Everything else,
// punctuation included, separates words.
func splitWords(text string) []string {
	var words []string
	var current strings.Builder

	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			current.WriteRune(r)
		} else {
			if current.Len() > 0 {
				words = append(words, current.String())
				current.Reset()
			}
		}
	}
	if current.Len() > 0 {
		words = append(words, current.String())
	}

	return words
}

func toSet(words []string) map[string]struct{} {
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[strings.ToLower(w)] = struct{}{}
	}
	return m
}

// appendUnique appends s to list unless seen already holds it.
func appendUnique(list []string, seen map[string]struct{}, s string) []string {
	if _, ok := seen[s]; ok {
		return list
	}
	seen[s] = struct{}{}
	return append(list, s)
}
