package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"chatsearch/internal/adapter/analyzer"
	"chatsearch/internal/domain"
)

// IsComparisonQuery reports whether text asks to compare items
// ("bandingkan iphone dan samsung", "iphone vs samsung").
func (e *Engine) IsComparisonQuery(text string) bool {
	padded := " " + strings.Join(analyzer.Words(text), " ") + " "
	for _, t := range e.cfg.Search.ComparisonTriggers {
		t = strings.Join(analyzer.Words(t), " ")
		if t != "" && strings.Contains(padded, " "+t+" ") {
			return true
		}
	}
	return false
}

// CompareProducts lines up the best matches for text side by side. An
// empty category compares across categories; maxItems <= 0 uses the
// configured default. The only error returned is the context's.
func (e *Engine) CompareProducts(ctx context.Context, text, category string, maxItems int) (domain.ComparisonResult, error) {
	if err := ctx.Err(); err != nil {
		return domain.ComparisonResult{}, err
	}
	if maxItems <= 0 {
		maxItems = e.cfg.Search.CompareMaxItems
	}
	logger := e.logger.WithOperation("compare")

	cat := e.snapshot()
	pq := e.pre.Process(e.stripComparison(Sanitize(text, e.cfg.Search.MaxQueryLength)))

	hits, degraded, err := e.retrieve(ctx, pq.Expanded, cat, logger)
	if err != nil {
		return domain.ComparisonResult{}, err
	}
	ranked := e.scorer.Rank(hits, pq, "", e.conv.NewState())
	if !degraded {
		ranked = filterByScore(ranked, e.cfg.Search.MinScore)
	}

	var items []domain.CatalogItem
	seen := make(map[string]struct{})
	add := func(item domain.CatalogItem) {
		if len(items) >= maxItems {
			return
		}
		if category != "" && !strings.EqualFold(item.Category, category) {
			return
		}
		if _, dup := seen[item.Title]; dup {
			return
		}
		seen[item.Title] = struct{}{}
		items = append(items, item)
	}
	for _, r := range ranked {
		add(r.Item)
	}
	if category != "" && len(items) < 2 {
		for _, item := range cat.items {
			add(item)
		}
	}

	result := e.buildComparison(items)
	logger.Debug().Int("items", len(items)).Str("category", category).Msg("comparison built")
	return result, nil
}

// stripComparison drops the comparison trigger words so they do not steer
// retrieval.
func (e *Engine) stripComparison(text string) string {
	triggers := make(map[string]struct{})
	for _, t := range e.cfg.Search.ComparisonTriggers {
		for _, w := range analyzer.Words(t) {
			triggers[w] = struct{}{}
		}
	}
	var kept []string
	for _, w := range analyzer.Words(text) {
		if _, ok := triggers[w]; !ok {
			kept = append(kept, w)
		}
	}
	return strings.Join(kept, " ")
}

func (e *Engine) buildComparison(items []domain.CatalogItem) domain.ComparisonResult {
	result := domain.ComparisonResult{
		Items: items,
		Table: make(map[string]map[string]string),
	}
	if len(items) == 0 {
		result.Summary = "Belum ada produk yang bisa dibandingkan."
		return result
	}

	for _, item := range items {
		attrs := e.pre.ExtractAttributes(item)
		if price := e.templates.FormatPrice(item); price != "" {
			attrs[analyzer.AttrPrice] = price
			delete(attrs, analyzer.AttrSalePrice)
		}

		keys := make([]string, 0, len(attrs))
		for k := range attrs {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			row, ok := result.Table[k]
			if !ok {
				row = make(map[string]string)
				result.Table[k] = row
				result.Attributes = append(result.Attributes, k)
			}
			row[item.Title] = attrs[k]
		}
	}
	sortAttributes(result.Attributes)

	cheapest := -1
	var low float64
	for i, item := range items {
		if p, ok := item.EffectivePrice(); ok && (cheapest < 0 || p < low) {
			cheapest, low = i, p
		}
	}
	if cheapest >= 0 {
		result.Cheapest = items[cheapest].Title
	}

	result.Recommended = items[0].Title
	for _, item := range items {
		if item.Recommended {
			result.Recommended = item.Title
			break
		}
	}

	titles := make([]string, len(items))
	for i, item := range items {
		titles[i] = item.Title
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Perbandingan %s.", joinTitles(titles))
	if cheapest >= 0 {
		fmt.Fprintf(&b, " Termurah: %s (%s).", items[cheapest].Title, e.templates.FormatPrice(items[cheapest]))
	}
	fmt.Fprintf(&b, " Rekomendasi kami: %s.", result.Recommended)
	result.Summary = b.String()
	return result
}

// sortAttributes puts the schema attributes first in a fixed order and the
// rest alphabetically.
func sortAttributes(attrs []string) {
	rank := map[string]int{
		analyzer.AttrPrice:       0,
		analyzer.AttrCategory:    1,
		analyzer.AttrBadge:       2,
		analyzer.AttrFeatures:    3,
		analyzer.AttrRecommended: 4,
	}
	sort.SliceStable(attrs, func(i, j int) bool {
		ri, iok := rank[attrs[i]]
		rj, jok := rank[attrs[j]]
		switch {
		case iok && jok:
			return ri < rj
		case iok != jok:
			return iok
		default:
			return attrs[i] < attrs[j]
		}
	})
}

func joinTitles(titles []string) string {
	switch len(titles) {
	case 0:
		return ""
	case 1:
		return titles[0]
	}
	return strings.Join(titles[:len(titles)-1], ", ") + " dan " + titles[len(titles)-1]
}
