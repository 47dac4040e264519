// Package scoring computes additive, auditable relevance scores. Every
// contribution is a named, configurable term; nothing is learned.
package scoring

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"chatsearch/config"
	"chatsearch/internal/domain"
	"chatsearch/internal/observability"
)

// Breakdown keys.
const (
	KeyRetrieval       = "retrieval"
	KeyTokenMatch      = "token_match"
	KeySequence        = "sequence"
	KeyTitleSimilarity = "title_similarity"
	KeyTitleHit        = "title_hit"
	KeyCategoryHit     = "category_hit"
	KeyContextCategory = "context_category"
	KeyContextItem     = "context_item"
	KeyRecommended     = "recommended"
	KeyUrgent          = "urgent"
	KeyUrgentStock     = "urgent_stock"
	KeySalesPrice      = "sales_price"
	KeySalesProduct    = "sales_product"
	KeyCrawlerPenalty  = "crawler_penalty"
	RulePrefix         = "rule:"
)

// Scorer scores one candidate item against a processed query.
type Scorer struct {
	weights     config.Weights
	stock       *regexp.Regexp
	product     *regexp.Regexp
	crawler     string
	salesPrefix string
	rules       []boostRule
}

// NewScorer creates a scorer. Invalid boost rules are dropped with a warning.
func NewScorer(cfg config.ScoringConfig, salesPrefix string, logger *observability.Logger) (*Scorer, error) {
	if logger == nil {
		logger = observability.NopLogger()
	}

	s := &Scorer{
		weights:     cfg.Weights,
		crawler:     strings.ToLower(cfg.CrawlerCategory),
		salesPrefix: salesPrefix,
	}

	var err error
	if cfg.StockPattern != "" {
		if s.stock, err = regexp.Compile(cfg.StockPattern); err != nil {
			return nil, fmt.Errorf("stock pattern: %w", err)
		}
	}
	if cfg.ProductPattern != "" {
		if s.product, err = regexp.Compile(cfg.ProductPattern); err != nil {
			return nil, fmt.Errorf("product pattern: %w", err)
		}
	}

	for _, r := range cfg.BoostRules {
		rule, problem := compileRule(r)
		if problem != "" {
			logger.Warn().Str("rule", r.Name).Str("problem", problem).Msg("dropping boost rule")
			continue
		}
		s.rules = append(s.rules, rule)
	}

	return s, nil
}

// Calculate returns the score of item and the named contributions that
// produced it. retrievalScore is the index's 0..1 distance, lower is closer.
func (s *Scorer) Calculate(item domain.CatalogItem, pq domain.ProcessedQuery, retrievalScore float64, intent string, state domain.ConversationState) (float64, map[string]float64) {
	w := s.weights
	b := make(map[string]float64)
	b[KeyRetrieval] = (1 - clamp(retrievalScore, 0, 1)) * w.Retrieval

	text := item.SearchText()
	title := strings.ToLower(item.Title)
	category := strings.ToLower(item.Category)

	titleHit, categoryHit := false, false
	for _, tok := range pq.Tokens {
		if strings.Contains(text, tok) {
			b[KeyTokenMatch] += w.TokenMatch
		}
		if sim := Dice(tok, title); sim > w.SimilarityThreshold {
			b[KeyTitleSimilarity] += sim * w.TitleSimilarity
		}
		if strings.Contains(title, tok) {
			titleHit = true
		}
		if category != "" && strings.Contains(category, tok) {
			categoryHit = true
		}
	}
	// Adjacent pairs come from the words as written; Tokens interleaves stems.
	words := pq.Words
	if len(words) == 0 {
		words = pq.Tokens
	}
	for i := 1; i < len(words); i++ {
		if strings.Contains(text, words[i-1]+" "+words[i]) {
			b[KeySequence] += w.Sequence
		}
	}

	if titleHit {
		b[KeyTitleHit] = w.TitleHit
	}
	if categoryHit {
		b[KeyCategoryHit] = w.CategoryHit
	}

	if state.LastCategory != "" && item.Category == state.LastCategory {
		b[KeyContextCategory] = w.ContextCategory
	}
	subject := state.LockedItem
	if subject == "" {
		subject = state.LastItem
	}
	if subject != "" && item.Title == subject {
		b[KeyContextItem] = w.ContextItem
	}

	if item.Recommended {
		b[KeyRecommended] = w.Recommended
	}

	if pq.IsUrgent {
		b[KeyUrgent] = w.Urgent
		if s.stock != nil && s.stock.MatchString(item.Category) {
			b[KeyUrgentStock] = w.UrgentStock
		}
	}

	if s.salesPrefix != "" && strings.HasPrefix(intent, s.salesPrefix) {
		if item.HasPrice() {
			b[KeySalesPrice] = w.SalesPrice
		}
		if s.product != nil && s.product.MatchString(item.Category) {
			b[KeySalesProduct] = w.SalesProduct
		}
	}

	if s.crawler != "" && category == s.crawler {
		b[KeyCrawlerPenalty] = -w.CrawlerPenalty
	}

	if len(s.rules) > 0 {
		words := make(map[string]struct{}, len(pq.Tokens)+len(pq.Stems))
		for _, t := range pq.Tokens {
			words[t] = struct{}{}
		}
		for _, t := range pq.Stems {
			words[t] = struct{}{}
		}
		for _, r := range s.rules {
			if r.matches(item, words, pq.Entities, intent) {
				b[RulePrefix+r.name] += r.boost
			}
		}
	}

	// Sum in key order so float rounding is the same on every call.
	keys := make([]string, 0, len(b))
	for k, v := range b {
		if v == 0 && k != KeyRetrieval {
			delete(b, k)
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var score float64
	for _, k := range keys {
		score += b[k]
	}
	return score, b
}

// Rank scores every hit and sorts descending by score. Ties keep the
// retrieval order.
func (s *Scorer) Rank(hits []domain.RetrievalHit, pq domain.ProcessedQuery, intent string, state domain.ConversationState) []domain.ScoredCandidate {
	out := make([]domain.ScoredCandidate, 0, len(hits))
	for _, h := range hits {
		score, breakdown := s.Calculate(h.Item, pq, h.Score, intent, state)
		out = append(out, domain.ScoredCandidate{Item: h.Item, Score: score, Breakdown: breakdown})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})
	return out
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
