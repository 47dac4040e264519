package retriever

import (
	"context"
	"sort"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/sahilm/fuzzy"

	"chatsearch/config"
	"chatsearch/internal/domain"
)

const (
	fieldTitle = iota
	fieldKeywords
	fieldDescription
	fieldContent
	numFields
)

// minMatchQuality drops subsequence matches scattered over a long field.
const minMatchQuality = 0.5

// TermSeparator combines alternative terms in a single query.
const TermSeparator = "|"

// FuzzyIndex is an in-memory fuzzy index over the catalog. Each query term
// is matched against the title, keywords, description and content of every
// item; matches are weighted by field and by how contiguous they are.
type FuzzyIndex struct {
	mu        sync.RWMutex
	items     []domain.CatalogItem
	fields    [numFields][]string
	weights   [numFields]float64
	threshold float64
	ready     bool
}

// NewFuzzyIndex creates an empty index. It serves no results until the
// first Reindex.
func NewFuzzyIndex(cfg config.RetrievalConfig) *FuzzyIndex {
	threshold := cfg.Threshold
	if threshold <= 0 || threshold > 1 {
		threshold = 0.6
	}
	fw := cfg.FieldWeights
	return &FuzzyIndex{
		threshold: threshold,
		weights:   [numFields]float64{fw.Title, fw.Keywords, fw.Description, fw.Content},
	}
}

// Reindex replaces the indexed catalog. The new index is built before the
// write lock is taken.
func (x *FuzzyIndex) Reindex(items []domain.CatalogItem) {
	var fields [numFields][]string
	for f := range fields {
		fields[f] = make([]string, len(items))
	}
	for i, item := range items {
		fields[fieldTitle][i] = strings.ToLower(item.Title)
		fields[fieldKeywords][i] = strings.ToLower(strings.Join(item.Keywords, " "))
		fields[fieldDescription][i] = strings.ToLower(item.Description)
		fields[fieldContent][i] = strings.ToLower(item.Content)
	}
	snapshot := make([]domain.CatalogItem, len(items))
	copy(snapshot, items)

	x.mu.Lock()
	x.items = snapshot
	x.fields = fields
	x.ready = true
	x.mu.Unlock()
}

// Ready reports whether the index has been built at least once.
func (x *FuzzyIndex) Ready() bool {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return x.ready
}

// Len returns the number of indexed items.
func (x *FuzzyIndex) Len() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.items)
}

// Search returns items whose distance to the query is within the threshold,
// closest first. Ties keep catalog order.
func (x *FuzzyIndex) Search(ctx context.Context, query string) ([]domain.RetrievalHit, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	x.mu.RLock()
	defer x.mu.RUnlock()

	if !x.ready {
		return nil, domain.ErrIndexNotReady
	}

	terms := SplitTerms(query)
	if len(terms) == 0 || len(x.items) == 0 {
		return nil, nil
	}

	best := make([]float64, len(x.items))
	matched := make([]int, len(x.items))

	for _, term := range terms {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		termBest := make(map[int]float64)
		for f := 0; f < numFields; f++ {
			if x.weights[f] <= 0 {
				continue
			}
			for _, m := range fuzzy.Find(term, x.fields[f]) {
				q := matchQuality(term, m)
				if q < minMatchQuality {
					continue
				}
				if v := q * x.weights[f]; v > termBest[m.Index] {
					termBest[m.Index] = v
				}
			}
		}
		for i, v := range termBest {
			matched[i]++
			if v > best[i] {
				best[i] = v
			}
		}
	}

	var hits []domain.RetrievalHit
	for i, item := range x.items {
		if matched[i] == 0 {
			continue
		}
		coverage := float64(matched[i]) / float64(len(terms))
		relevance := 0.8*best[i] + 0.2*coverage
		if relevance > 1 {
			relevance = 1
		}
		distance := 1 - relevance
		if distance > x.threshold {
			continue
		}
		hits = append(hits, domain.RetrievalHit{Item: item, Score: distance})
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Score < hits[j].Score
	})
	return hits, nil
}

// SplitTerms splits a `|`-combined query into lowercase, deduplicated terms.
func SplitTerms(query string) []string {
	var terms []string
	seen := make(map[string]struct{})
	for _, t := range strings.Split(query, TermSeparator) {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		terms = append(terms, t)
	}
	return terms
}

// JoinTerms is the inverse of SplitTerms.
func JoinTerms(terms []string) string {
	return strings.Join(terms, TermSeparator)
}

// matchQuality is 1 for a contiguous match and falls towards 0 as the
// matched characters spread out.
func matchQuality(term string, m fuzzy.Match) float64 {
	idx := m.MatchedIndexes
	if len(idx) == 0 {
		return 0
	}
	last := idx[len(idx)-1]
	_, size := utf8.DecodeRuneInString(m.Str[last:])
	span := last - idx[0] + size
	if span <= 0 {
		return 0
	}
	q := float64(len(term)) / float64(span)
	if q > 1 {
		q = 1
	}
	return q
}
