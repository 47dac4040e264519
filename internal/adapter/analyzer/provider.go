package analyzer

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"chatsearch/internal/port"
)

// foldText lowercases s and removes combining marks, so "Café" becomes "cafe".
// A new transformer is built per call because transform chains keep state.
func foldText(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	return strings.ToLower(folded)
}

// EnglishProvider stems with the Porter algorithm.
type EnglishProvider struct {
	stemmer *PorterStemmer
}

// NewEnglishProvider creates an English linguistic provider.
func NewEnglishProvider() *EnglishProvider {
	return &EnglishProvider{stemmer: NewPorterStemmer()}
}

func (p *EnglishProvider) Normalize(text string) string { return foldText(text) }

func (p *EnglishProvider) Stem(word string) string { return p.stemmer.Stem(word) }

func (p *EnglishProvider) StopWords() []string {
	return append([]string(nil), englishStopWords...)
}

// NewProvider returns the provider for a language code.
func NewProvider(language, dictPath string) (port.LinguisticProvider, error) {
	switch strings.ToLower(language) {
	case "", "id", "indonesian":
		return NewIndonesianProvider(dictPath), nil
	case "en", "english":
		return NewEnglishProvider(), nil
	default:
		return nil, fmt.Errorf("unsupported language %q", language)
	}
}

var englishStopWords = []string{
	"a", "an", "and", "are", "as", "at", "be", "by", "for",
	"from", "has", "he", "in", "is", "it", "its", "of", "on",
	"that", "the", "to", "was", "were", "will", "with", "this",
	"have", "had", "but", "not", "you", "your", "we", "our",
	"they", "their", "she", "her", "his", "if", "or", "so",
	"no", "can", "do", "does", "did", "been", "being", "would",
	"could", "should", "may", "might", "must", "shall", "which",
	"who", "whom", "what", "when", "where", "why", "how", "all",
	"each", "every", "both", "few", "more", "most", "other",
	"some", "such", "than", "too", "very", "just", "also", "me",
	"please", "want", "i",
}
