package scoring

import (
	"strings"

	"chatsearch/config"
	"chatsearch/internal/domain"
)

// boostRule is a validated config.BoostRule. Every non-empty condition list
// must have at least one match; each list is OR-matched internally.
type boostRule struct {
	name       string
	entities   []string
	tokens     []string
	categories []string
	intents    []string
	boost      float64
}

func compileRule(r config.BoostRule) (boostRule, string) {
	switch {
	case r.Name == "":
		return boostRule{}, "rule has no name"
	case r.Boost == 0:
		return boostRule{}, "rule has zero boost"
	case len(r.Entities) == 0 && len(r.Tokens) == 0 && len(r.Categories) == 0 && len(r.Intents) == 0:
		return boostRule{}, "rule has no conditions"
	}
	return boostRule{
		name:       r.Name,
		entities:   r.Entities,
		tokens:     lowerAll(r.Tokens),
		categories: lowerAll(r.Categories),
		intents:    r.Intents,
		boost:      r.Boost,
	}, ""
}

func (r boostRule) matches(item domain.CatalogItem, words map[string]struct{}, entities map[string]bool, intent string) bool {
	if len(r.entities) > 0 && !anyEntity(r.entities, entities) {
		return false
	}
	if len(r.tokens) > 0 && !anyWord(r.tokens, words) {
		return false
	}
	if len(r.categories) > 0 && !contains(r.categories, strings.ToLower(item.Category)) {
		return false
	}
	if len(r.intents) > 0 && !anyPrefix(r.intents, intent) {
		return false
	}
	return true
}

func anyEntity(names []string, entities map[string]bool) bool {
	for _, n := range names {
		if entities[n] {
			return true
		}
	}
	return false
}

func anyWord(list []string, words map[string]struct{}) bool {
	for _, w := range list {
		if _, ok := words[w]; ok {
			return true
		}
	}
	return false
}

func anyPrefix(prefixes []string, s string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func lowerAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.ToLower(s)
	}
	return out
}
