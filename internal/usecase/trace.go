package usecase

import (
	"time"

	"chatsearch/internal/domain"
)

// Pipeline phases recorded in SearchResult.Diagnostics.
const (
	PhaseSecurity      = "security"
	PhaseMiddleware    = "middleware"
	PhaseAnaphora      = "anaphora"
	PhaseSentiment     = "sentiment"
	PhaseSplit         = "split"
	PhasePreprocessing = "preprocessing"
	PhaseRetrieval     = "retrieval"
	PhaseIntent        = "intent"
	PhaseScoring       = "scoring"
	PhaseContext       = "context"
	PhaseResponse      = "response"
)

// trace collects start/stop markers for one search call. It is owned by a
// single call and needs no locking.
type trace struct {
	now    func() time.Time
	origin time.Time
	events []domain.DiagnosticEvent
}

func newTrace(now func() time.Time) *trace {
	return &trace{now: now, origin: now()}
}

// start records a start marker and returns the matching stop.
func (t *trace) start(phase string, detail map[string]string) func() {
	begin := t.now()
	t.events = append(t.events, domain.DiagnosticEvent{
		Phase:  phase,
		Marker: domain.MarkerStart,
		Offset: begin.Sub(t.origin),
		Detail: detail,
	})
	return func() {
		end := t.now()
		t.events = append(t.events, domain.DiagnosticEvent{
			Phase:   phase,
			Marker:  domain.MarkerStop,
			Offset:  end.Sub(t.origin),
			Elapsed: end.Sub(begin),
			Detail:  detail,
		})
	}
}

func (t *trace) Events() []domain.DiagnosticEvent {
	return t.events
}
