// Package convctx keeps per-session conversational memory: the last topic,
// a locked item that survives weak follow-ups, and anaphora resolution.
package convctx

import (
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"chatsearch/config"
	"chatsearch/internal/domain"
)

// Engine applies the context rules to a ConversationState value. It holds
// no session data itself; callers own the state and serialize access to it
// per session.
type Engine struct {
	cfg config.ContextConfig
	now func() time.Time
}

// NewEngine creates a context engine.
func NewEngine(cfg config.ContextConfig) *Engine {
	return &Engine{cfg: cfg, now: time.Now}
}

// WithClock replaces the engine's time source.
func (e *Engine) WithClock(now func() time.Time) *Engine {
	e.now = now
	return e
}

// NewState returns an empty state stamped with the current time.
func (e *Engine) NewState() domain.ConversationState {
	return domain.ConversationState{
		Entities:   make(map[string]bool),
		LastActive: e.now(),
	}
}

// Reset clears every field and stamps LastActive.
func (e *Engine) Reset(s *domain.ConversationState) {
	*s = e.NewState()
}

// Refresh resets s when it has been idle longer than the TTL and reports
// whether it did.
func (e *Engine) Refresh(s *domain.ConversationState) bool {
	if s.Entities == nil {
		s.Entities = make(map[string]bool)
	}
	if s.LastActive.IsZero() || e.cfg.TTL <= 0 {
		return false
	}
	if e.now().Sub(s.LastActive) > e.cfg.TTL {
		e.Reset(s)
		return true
	}
	return false
}

// Subject returns the item a reference points at: the locked item if any,
// otherwise the last matched item.
func (e *Engine) Subject(s domain.ConversationState) string {
	if s.LockedItem != "" {
		return s.LockedItem
	}
	return s.LastItem
}

// Resolve appends the current subject to a short query that refers back to
// it ("harganya berapa" becomes "harganya berapa iPhone 15 Pro"). Long
// queries, queries without a reference trigger and queries that already
// name the subject come back unchanged.
func (e *Engine) Resolve(s *domain.ConversationState, query string) string {
	e.Refresh(s)

	if utf8.RuneCountInString(query) >= e.cfg.MaxAnaphoraLength {
		return query
	}
	subject := e.Subject(*s)
	if subject == "" {
		return query
	}

	lower := strings.ToLower(query)
	if strings.Contains(lower, strings.ToLower(subject)) {
		return query
	}
	if hasReference(lower, e.cfg.ReferenceTriggers) {
		return strings.TrimSpace(query) + " " + subject
	}
	return query
}

// hasReference matches triggers as whole words, phrases with spaces as
// word sequences, and triggers written "-nya" as word suffixes. Short
// triggers such as "it" or "dia" would otherwise fire inside "fitur" and
// "media".
func hasReference(lower string, triggers []string) bool {
	words := strings.FieldsFunc(lower, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	padded := " " + strings.Join(words, " ") + " "

	for _, trigger := range triggers {
		trigger = strings.ToLower(strings.TrimSpace(trigger))
		switch {
		case trigger == "" || trigger == "-":
			continue
		case strings.HasPrefix(trigger, "-"):
			suffix := trigger[1:]
			for _, w := range words {
				if strings.HasSuffix(w, suffix) {
					return true
				}
			}
		case strings.Contains(padded, " "+trigger+" "):
			return true
		}
	}
	return false
}

// Update records one completed sub-search.
func (e *Engine) Update(s *domain.ConversationState, result domain.SearchResult) {
	e.Refresh(s)

	s.Interactions++
	s.LastActive = e.now()
	if e.cfg.MaxInteractions > 0 && s.Interactions > e.cfg.MaxInteractions {
		e.Reset(s)
		return
	}

	if top, ok := result.Top(); ok {
		s.LastCategory = top.Item.Category
		s.LastItem = top.Item.Title
		if result.Confidence > e.cfg.LockAbove {
			s.LockedItem = top.Item.Title
		}
	}
	// A turn with nothing to show has confidence 0 and breaks a stale lock.
	if result.Confidence < e.cfg.UnlockBelow {
		s.LockedItem = ""
	}

	for name, present := range result.Entities {
		if present {
			s.Entities[name] = true
		}
	}
}
