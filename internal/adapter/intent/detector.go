package intent

import (
	"strings"

	"chatsearch/config"
	"chatsearch/internal/domain"
)

// Detection stages, in resolution order.
const (
	StageClassifier     = "classifier"
	StageContact        = "contact"
	StageRule           = "rule"
	StageConversational = "conversational"
	StageSales          = "sales"
	StageWeakClassifier = "classifier_weak"
	StageFallback       = "fallback"
)

// Detection explains how a label was chosen.
type Detection struct {
	Label      string
	Stage      string
	Confidence float64 // classifier confidence for the query, whichever stage won
}

// Detector resolves an intent label by fixed priority: a confident
// classifier, then contact triggers, custom rules, conversational and sales
// tables, then a weakly confident classifier, then the fallback label.
type Detector struct {
	classifier *Classifier
	cfg        config.IntentConfig
}

// NewDetector creates a detector. classifier may be nil.
func NewDetector(classifier *Classifier, cfg config.IntentConfig) *Detector {
	if classifier == nil {
		classifier = NewClassifier()
	}
	return &Detector{classifier: classifier, cfg: cfg}
}

// Classifier returns the underlying statistical classifier.
func (d *Detector) Classifier() *Classifier {
	return d.classifier
}

// Detect returns the intent label for a processed query.
func (d *Detector) Detect(pq domain.ProcessedQuery) string {
	return d.Explain(pq).Label
}

// Explain returns the label along with the stage that produced it.
func (d *Detector) Explain(pq domain.ProcessedQuery) Detection {
	label, conf := d.classifier.Classify(pq.Original)
	if label != UnknownLabel && conf > d.cfg.HighThreshold {
		return Detection{Label: label, Stage: StageClassifier, Confidence: conf}
	}

	m := newMatcher(pq)

	if m.any(d.cfg.ContactTriggers) {
		return Detection{Label: d.cfg.ContactLabel, Stage: StageContact, Confidence: conf}
	}
	for _, rule := range d.cfg.Rules {
		if m.rule(rule) {
			return Detection{Label: rule.Label, Stage: StageRule, Confidence: conf}
		}
	}
	for _, e := range d.cfg.Conversational {
		if m.any(e.Words) {
			return Detection{Label: d.cfg.ConversationalPrefix + e.Key, Stage: StageConversational, Confidence: conf}
		}
	}
	for _, e := range d.cfg.Sales {
		if m.any(e.Words) {
			return Detection{Label: d.cfg.SalesPrefix + e.Key, Stage: StageSales, Confidence: conf}
		}
	}

	if label != UnknownLabel && conf > d.cfg.LowThreshold {
		return Detection{Label: label, Stage: StageWeakClassifier, Confidence: conf}
	}
	return Detection{Label: d.cfg.FallbackLabel, Stage: StageFallback, Confidence: conf}
}

// IsConversational reports whether label belongs to the conversational family.
func (d *Detector) IsConversational(label string) bool {
	return d.cfg.ConversationalPrefix != "" && strings.HasPrefix(label, d.cfg.ConversationalPrefix)
}

// IsSales reports whether label belongs to the sales family.
func (d *Detector) IsSales(label string) bool {
	return d.cfg.SalesPrefix != "" && strings.HasPrefix(label, d.cfg.SalesPrefix)
}

// matcher checks trigger words against tokens and stems, and multi-word
// phrases against the normalized query text.
type matcher struct {
	words    map[string]struct{}
	text     string
	entities map[string]bool
}

func newMatcher(pq domain.ProcessedQuery) matcher {
	words := make(map[string]struct{}, len(pq.Tokens)+len(pq.Stems))
	for _, t := range pq.Tokens {
		words[t] = struct{}{}
	}
	for _, s := range pq.Stems {
		words[s] = struct{}{}
	}
	return matcher{
		words:    words,
		text:     " " + strings.Join(strings.Fields(strings.ToLower(pq.Original)), " ") + " ",
		entities: pq.Entities,
	}
}

func (m matcher) has(trigger string) bool {
	trigger = strings.ToLower(strings.TrimSpace(trigger))
	if trigger == "" {
		return false
	}
	if strings.Contains(trigger, " ") {
		return strings.Contains(m.text, " "+trigger)
	}
	_, ok := m.words[trigger]
	return ok
}

func (m matcher) any(triggers []string) bool {
	for _, t := range triggers {
		if m.has(t) {
			return true
		}
	}
	return false
}

func (m matcher) rule(rule config.IntentRule) bool {
	if len(rule.Entities) > 0 {
		found := false
		for _, e := range rule.Entities {
			if m.entities[e] {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if len(rule.Tokens) > 0 && !m.any(rule.Tokens) {
		return false
	}
	return true
}
