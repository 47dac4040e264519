package analyzer

import (
	"fmt"
	"regexp"
	"strings"

	"chatsearch/config"
	"chatsearch/internal/domain"
	"chatsearch/internal/port"
)

type extractor struct {
	name string
	re   *regexp.Regexp
}

// Preprocessor turns raw user text into a ProcessedQuery.
// It holds only immutable tables and is safe for concurrent use.
type Preprocessor struct {
	provider  port.LinguisticProvider
	tokenizer *Tokenizer

	corrections map[string]string // variant -> canonical
	synonyms    map[string][]string
	entities    config.Table
	stopwords   map[string]struct{}

	extractors []extractor
	features   *regexp.Regexp
}

// NewPreprocessor builds a preprocessor from the merged configuration tables.
func NewPreprocessor(provider port.LinguisticProvider, cfg config.PreprocessConfig) (*Preprocessor, error) {
	p := &Preprocessor{
		provider:    provider,
		tokenizer:   NewTokenizer(provider, 1),
		corrections: make(map[string]string),
		synonyms:    make(map[string][]string, len(cfg.Synonyms)),
		entities:    cfg.Entities,
	}

	// Walk in table order and keep the first canonical for a variant.
	for _, e := range cfg.Phonetic {
		for _, v := range e.Words {
			v = strings.ToLower(v)
			if _, seen := p.corrections[v]; !seen {
				p.corrections[v] = strings.ToLower(e.Key)
			}
		}
	}
	for _, e := range cfg.Synonyms {
		key := strings.ToLower(e.Key)
		p.synonyms[key] = append(p.synonyms[key], e.Words...)
	}

	stops := provider.StopWords()
	if len(cfg.StopWords) > 0 {
		if cfg.MergeStopWords {
			stops = append(stops, cfg.StopWords...)
		} else {
			stops = cfg.StopWords
		}
	}
	p.stopwords = toSet(stops)

	for _, ex := range cfg.Extractors {
		re, err := regexp.Compile(ex.Pattern)
		if err != nil {
			return nil, fmt.Errorf("extractor %s: %w", ex.Name, err)
		}
		if re.NumSubexp() < 1 {
			return nil, fmt.Errorf("extractor %s: pattern needs a capture group", ex.Name)
		}
		p.extractors = append(p.extractors, extractor{name: ex.Name, re: re})
	}
	if cfg.FeaturePattern != "" {
		re, err := regexp.Compile(cfg.FeaturePattern)
		if err != nil {
			return nil, fmt.Errorf("feature pattern: %w", err)
		}
		p.features = re
	}

	return p, nil
}

// Provider returns the linguistic provider the preprocessor stems with.
func (p *Preprocessor) Provider() port.LinguisticProvider {
	return p.provider
}

// Process runs signal detection, normalization, phonetic correction,
// stemming, stop-word filtering, entity extraction and synonym expansion.
// Empty or unusable input yields an empty query with false signals.
func (p *Preprocessor) Process(query string) domain.ProcessedQuery {
	pq := domain.ProcessedQuery{
		Original: query,
		Words:    []string{},
		Tokens:   []string{},
		Stems:    []string{},
		Expanded: []string{},
		Entities: make(map[string]bool, len(p.entities)),
	}
	for _, e := range p.entities {
		pq.Entities[e.Key] = false
	}

	words := p.tokenizer.Tokenize(query)
	if len(words) == 0 {
		return pq
	}

	pq.IsQuestion, pq.IsUrgent = Signals(query)

	// Corrected and stemmed forms both stay in the working set.
	seen := make(map[string]struct{}, len(words)*2)
	var working []string
	for _, w := range words {
		corrected := p.AutoCorrect(w)
		if _, stop := p.stopwords[corrected]; !stop {
			pq.Words = append(pq.Words, corrected)
		}
		working = appendUnique(working, seen, corrected)
		if stem := p.provider.Stem(corrected); stem != corrected && runeLen(stem) > 1 {
			working = appendUnique(working, seen, stem)
		}
	}

	for _, tok := range working {
		if _, stop := p.stopwords[tok]; stop {
			continue
		}
		pq.Tokens = append(pq.Tokens, tok)
	}
	if len(pq.Tokens) == 0 {
		return pq
	}

	tokenSet := make(map[string]struct{}, len(pq.Tokens))
	for _, tok := range pq.Tokens {
		tokenSet[tok] = struct{}{}
	}
	for _, e := range p.entities {
		for _, w := range e.Words {
			if _, ok := tokenSet[w]; ok {
				pq.Entities[e.Key] = true
				break
			}
		}
	}

	stemSeen := make(map[string]struct{}, len(pq.Tokens))
	expSeen := make(map[string]struct{}, len(pq.Tokens)*2)
	for _, tok := range pq.Tokens {
		pq.Expanded = appendUnique(pq.Expanded, expSeen, tok)
	}
	for _, tok := range pq.Tokens {
		stem := p.provider.Stem(tok)
		pq.Stems = appendUnique(pq.Stems, stemSeen, stem)
		for _, syn := range p.synonyms[tok] {
			pq.Expanded = appendUnique(pq.Expanded, expSeen, strings.ToLower(syn))
		}
		if stem != tok {
			for _, syn := range p.synonyms[stem] {
				pq.Expanded = appendUnique(pq.Expanded, expSeen, strings.ToLower(syn))
			}
		}
	}

	return pq
}

// Signals reports whether raw text asks a question or sounds urgent. It
// must see the text before punctuation is split away.
func Signals(text string) (question, urgent bool) {
	return strings.Contains(text, "?"), strings.Contains(text, "!")
}

// AutoCorrect maps a known misspelling or shorthand to its canonical word.
func (p *Preprocessor) AutoCorrect(word string) string {
	w := strings.ToLower(word)
	if canonical, ok := p.corrections[w]; ok {
		return canonical
	}
	return w
}
