package analyzer

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"unicode/utf8"
)

const minRootLength = 3

var (
	particleSuffixes   = []string{"lah", "kah", "tah", "pun"}
	possessiveSuffixes = []string{"nya", "ku", "mu"}
)

// prefixRule strips a prefix and optionally tries a recoded first letter
// when the remainder starts with a vowel (meny-apu -> sapu).
type prefixRule struct {
	prefix  string
	recode  string // letter restored before a vowel, "" for none
	minRest int
}

// Ordered so the longest prefix of each family is tried first.
var prefixRules = []prefixRule{
	{prefix: "meny", recode: "s", minRest: 3},
	{prefix: "meng", recode: "k", minRest: 3},
	{prefix: "mem", recode: "p", minRest: 3},
	{prefix: "men", recode: "t", minRest: 3},
	{prefix: "me", minRest: 4},
	{prefix: "peny", recode: "s", minRest: 3},
	{prefix: "peng", recode: "k", minRest: 3},
	{prefix: "pem", recode: "p", minRest: 3},
	{prefix: "pen", recode: "t", minRest: 3},
	{prefix: "per", minRest: 4},
	{prefix: "pe", minRest: 5},
	{prefix: "ber", minRest: 4},
	{prefix: "be", minRest: 5},
	{prefix: "ter", minRest: 4},
	{prefix: "te", minRest: 5},
	{prefix: "di", minRest: 4},
	{prefix: "ke", minRest: 5},
	{prefix: "se", minRest: 5},
}

var stackedPrefixRules = []prefixRule{
	{prefix: "per", minRest: 4},
	{prefix: "ber", minRest: 4},
	{prefix: "ter", minRest: 4},
}

// IndonesianProvider is the default linguistic provider: diacritic folding,
// a rule-based affix stripper and an Indonesian stop-word list. An optional
// root-word dictionary, loaded by Init, stops stripping at known roots and
// picks between recoded prefix variants.
type IndonesianProvider struct {
	dictPath string

	mu    sync.RWMutex
	roots map[string]struct{}
	ready bool
}

// NewIndonesianProvider creates a provider. dictPath may be empty, in which
// case the provider is ready immediately and stems without a dictionary.
func NewIndonesianProvider(dictPath string) *IndonesianProvider {
	return &IndonesianProvider{
		dictPath: dictPath,
		ready:    dictPath == "",
	}
}

// Init loads the root-word dictionary, one word per line.
func (p *IndonesianProvider) Init(ctx context.Context) error {
	if p.dictPath == "" {
		return nil
	}

	f, err := os.Open(p.dictPath)
	if err != nil {
		return fmt.Errorf("open dictionary: %w", err)
	}
	defer f.Close()

	roots := make(map[string]struct{})
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		word := strings.ToLower(strings.TrimSpace(scanner.Text()))
		if word == "" || strings.HasPrefix(word, "#") {
			continue
		}
		roots[word] = struct{}{}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read dictionary: %w", err)
	}

	p.mu.Lock()
	p.roots = roots
	p.ready = true
	p.mu.Unlock()
	return nil
}

// IsReady reports whether the dictionary (if any) has been loaded.
func (p *IndonesianProvider) IsReady() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.ready
}

// Normalize lowercases text and folds diacritics.
func (p *IndonesianProvider) Normalize(text string) string {
	return foldText(text)
}

// StopWords returns the default Indonesian stop words.
func (p *IndonesianProvider) StopWords() []string {
	return append([]string(nil), indonesianStopWords...)
}

// Stem strips Indonesian inflectional and derivational affixes.
func (p *IndonesianProvider) Stem(word string) string {
	word = strings.ToLower(word)
	if runeLen(word) <= minRootLength || p.isRoot(word) {
		return word
	}

	w := stripSuffix(word, particleSuffixes, minRootLength)
	if p.isRoot(w) {
		return w
	}
	w = stripSuffix(w, possessiveSuffixes, minRootLength)
	if p.isRoot(w) {
		return w
	}

	prefixed := false
	candidates := []string{w}
	if cands := p.prefixCandidates(w, prefixRules); len(cands) > 0 {
		prefixed = true
		candidates = cands
	}

	// The first candidate is the answer unless the dictionary confirms a later one.
	var fallback string
	for i, c := range candidates {
		// memper-, diper-: one stacked per/ber/ter prefix.
		if stacked := p.prefixCandidates(c, stackedPrefixRules); len(stacked) > 0 {
			c = stacked[0]
		}
		if p.isRoot(c) {
			return c
		}
		stripped := stripDerivational(c, prefixed)
		if p.isRoot(stripped) {
			return stripped
		}
		if i == 0 {
			fallback = stripped
		}
	}
	return fallback
}

func stripDerivational(w string, prefixed bool) string {
	if stripped := stripSuffix(w, []string{"kan"}, minRootLength); stripped != w {
		return stripped
	}
	if stripped := stripSuffix(w, []string{"an"}, minRootLength+1); stripped != w {
		return stripped
	}
	if prefixed {
		return stripSuffix(w, []string{"i"}, minRootLength+1)
	}
	return w
}

func (p *IndonesianProvider) isRoot(word string) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.roots == nil {
		return false
	}
	_, ok := p.roots[word]
	return ok
}

// prefixCandidates strips the first matching prefix. Nasal prefixes before
// a vowel yield both the plain and the recoded remainder (meng-irim could be
// irim or kirim); meny- always drops an s.
func (p *IndonesianProvider) prefixCandidates(word string, rules []prefixRule) []string {
	for _, rule := range rules {
		if !strings.HasPrefix(word, rule.prefix) {
			continue
		}
		rest := word[len(rule.prefix):]
		if runeLen(rest) < rule.minRest || !plausibleRoot(rest) {
			continue
		}
		if rule.recode != "" && startsWithVowel(rest) {
			if rule.recode == "s" {
				return []string{"s" + rest}
			}
			return []string{rest, rule.recode + rest}
		}
		return []string{rest}
	}
	return nil
}

func stripSuffix(word string, suffixes []string, minRest int) string {
	for _, s := range suffixes {
		if strings.HasSuffix(word, s) {
			rest := word[:len(word)-len(s)]
			if runeLen(rest) >= minRest {
				return rest
			}
		}
	}
	return word
}

// plausibleRoot rejects remainders starting with a consonant cluster, which
// native roots rarely do (di-skon is not a prefix).
func plausibleRoot(s string) bool {
	if len(s) < 2 {
		return false
	}
	if startsWithVowel(s) {
		return true
	}
	return isVowel(s[1])
}

func startsWithVowel(s string) bool {
	return s != "" && isVowel(s[0])
}

func isVowel(c byte) bool {
	switch c {
	case 'a', 'e', 'i', 'o', 'u':
		return true
	}
	return false
}

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}

var indonesianStopWords = []string{
	"yang", "dan", "di", "ke", "dari", "ini", "itu", "untuk", "dengan", "atau",
	"ada", "apa", "adalah", "akan", "juga", "saya", "aku", "kamu", "anda", "kak",
	"min", "gan", "sis", "bang", "ya", "dong", "deh", "sih", "nih", "kok",
	"mau", "ingin", "tolong", "bisa", "gimana", "apakah", "bagaimana", "kapan",
	"dimana", "pada", "oleh", "sudah", "belum", "lagi", "saja", "aja", "nya",
	"kah", "lah", "pun", "the", "is", "of",
}
