package usecase

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	scriptBlock = regexp.MustCompile(`(?is)<(script|style)[^>]*>.*?</(script|style)>`)
	markupTag   = regexp.MustCompile(`<[^>]*>`)
)

// Sanitize strips markup and control characters from raw input, collapses
// whitespace and caps the result at maxLen runes (0 means no cap).
func Sanitize(text string, maxLen int) string {
	if !utf8.ValidString(text) {
		text = strings.ToValidUTF8(text, "")
	}
	text = scriptBlock.ReplaceAllString(text, " ")
	text = markupTag.ReplaceAllString(text, " ")
	text = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			if unicode.IsSpace(r) {
				return ' '
			}
			return -1
		}
		return r
	}, text)
	text = strings.Join(strings.Fields(text), " ")

	if maxLen > 0 && utf8.RuneCountInString(text) > maxLen {
		runes := []rune(text)
		text = strings.TrimSpace(string(runes[:maxLen]))
	}
	return text
}
