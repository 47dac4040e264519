package domain

import (
	"strings"
	"time"
)

// CatalogItem is one product or page the engine can return.
type CatalogItem struct {
	ID          string            `json:"id,omitempty" yaml:"id,omitempty"`
	Title       string            `json:"title" yaml:"title"`
	Description string            `json:"description,omitempty" yaml:"description,omitempty"`
	Category    string            `json:"category,omitempty" yaml:"category,omitempty"`
	Keywords    []string          `json:"keywords,omitempty" yaml:"keywords,omitempty"`
	Price       *float64          `json:"price_numeric,omitempty" yaml:"price_numeric,omitempty"`
	SalePrice   *float64          `json:"sale_price_numeric,omitempty" yaml:"sale_price_numeric,omitempty"`
	Badge       string            `json:"badge,omitempty" yaml:"badge,omitempty"`
	Recommended bool              `json:"recommended,omitempty" yaml:"recommended,omitempty"`
	Content     string            `json:"content,omitempty" yaml:"content,omitempty"`
	Extra       map[string]string `json:"extra,omitempty" yaml:"extra,omitempty"`
}

// Key identifies an item within a catalog. Titles double as identifiers for
// the conversation context, so the title is used when no ID is set.
func (i CatalogItem) Key() string {
	if i.ID != "" {
		return i.ID
	}
	return i.Title
}

// HasPrice reports whether the item carries a numeric price.
func (i CatalogItem) HasPrice() bool {
	return i.Price != nil || i.SalePrice != nil
}

// EffectivePrice returns the sale price when present, otherwise the list price.
func (i CatalogItem) EffectivePrice() (float64, bool) {
	if i.SalePrice != nil {
		return *i.SalePrice, true
	}
	if i.Price != nil {
		return *i.Price, true
	}
	return 0, false
}

// SearchText is the lowercased concatenation used for token matching.
func (i CatalogItem) SearchText() string {
	parts := []string{i.Title, strings.Join(i.Keywords, " "), i.Description, i.Content}
	return strings.ToLower(strings.Join(parts, " "))
}

// ProcessedQuery is the structured form of one utterance. It is built once
// per search call and never mutated afterwards.
type ProcessedQuery struct {
	Original   string          `json:"original"`
	Words      []string        `json:"words"` // corrected, stop-filtered, in query order
	Tokens     []string        `json:"tokens"`
	Stems      []string        `json:"stems"`
	Expanded   []string        `json:"expanded"`
	Entities   map[string]bool `json:"entities"`
	IsQuestion bool            `json:"is_question"`
	IsUrgent   bool            `json:"is_urgent"`
}

// Empty reports whether the query produced no usable tokens.
func (q ProcessedQuery) Empty() bool {
	return len(q.Tokens) == 0
}

// ConversationState is the per-session memory of the context engine.
type ConversationState struct {
	LastCategory string          `json:"last_category,omitempty"`
	LastItem     string          `json:"last_item,omitempty"`
	LockedItem   string          `json:"locked_item,omitempty"`
	Entities     map[string]bool `json:"entities,omitempty"`
	Interactions int             `json:"interactions"`
	LastActive   time.Time       `json:"last_active"`
}

// RetrievalHit is one candidate returned by a retrieval index.
// Score is distance-like: 0 is a perfect match, 1 the weakest.
type RetrievalHit struct {
	Item  CatalogItem `json:"item"`
	Score float64     `json:"score"`
}

// ScoredCandidate is an item with its relevance score and the named
// contributions that produced it.
type ScoredCandidate struct {
	Item      CatalogItem        `json:"item"`
	Score     float64            `json:"score"`
	Breakdown map[string]float64 `json:"breakdown,omitempty"`
}

// SubQueryResult summarises one part of a compound query.
type SubQueryResult struct {
	Query      string  `json:"query"`
	Intent     string  `json:"intent"`
	Confidence float64 `json:"confidence"`
	Answer     string  `json:"answer,omitempty"`
	Results    int     `json:"results"`
}

// SearchResult is what one search call returns to the caller.
type SearchResult struct {
	Query       string            `json:"query"`
	Results     []ScoredCandidate `json:"results"`
	Intent      string            `json:"intent"`
	Entities    map[string]bool   `json:"entities"`
	Confidence  float64           `json:"confidence"`
	Answer      string            `json:"answer,omitempty"`
	Sentiment   string            `json:"sentiment,omitempty"`
	Parts       []SubQueryResult  `json:"parts,omitempty"`
	Diagnostics []DiagnosticEvent `json:"diagnostics,omitempty"`
}

// Top returns the best candidate, if any.
func (r SearchResult) Top() (ScoredCandidate, bool) {
	if len(r.Results) == 0 {
		return ScoredCandidate{}, false
	}
	return r.Results[0], true
}

// Diagnostic markers.
const (
	MarkerStart = "start"
	MarkerStop  = "stop"
)

// DiagnosticEvent is one timing marker recorded during a search call.
type DiagnosticEvent struct {
	Phase   string            `json:"phase"`
	Marker  string            `json:"marker"`
	Offset  time.Duration     `json:"offset"`
	Elapsed time.Duration     `json:"elapsed,omitempty"`
	Detail  map[string]string `json:"detail,omitempty"`
}

// ComposeRequest is handed to the response composer once per sub-query.
type ComposeRequest struct {
	Result         SearchResult
	Intent         string
	Conversational bool
	Sentiment      string
	Attributes     func(CatalogItem) map[string]string
}

// ComparisonResult lines up several items attribute by attribute.
type ComparisonResult struct {
	Items       []CatalogItem                `json:"items"`
	Attributes  []string                     `json:"attributes"`
	Table       map[string]map[string]string `json:"table"`
	Cheapest    string                       `json:"cheapest,omitempty"`
	Recommended string                       `json:"recommended,omitempty"`
	Summary     string                       `json:"summary"`
}
