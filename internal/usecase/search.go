package usecase

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"chatsearch/internal/adapter/analyzer"
	"chatsearch/internal/adapter/retriever"
	"chatsearch/internal/domain"
	"chatsearch/internal/observability"
)

// CompoundIntent labels a result merged from several sub-queries.
const CompoundIntent = "compound"

// Search answers one utterance within a session. The only error it returns
// is the context's; every collaborator failure degrades to fewer or weaker
// results.
func (e *Engine) Search(ctx context.Context, sessionID, text string) (*domain.SearchResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	logger := e.logger.WithSession(sessionID).WithOperation("search")
	tr := newTrace(e.now)

	stop := tr.start(PhaseSecurity, nil)
	query := Sanitize(text, e.cfg.Search.MaxQueryLength)
	stop()

	stop = tr.start(PhaseMiddleware, nil)
	for _, mw := range e.middleware {
		query = mw.Apply(query)
		logger.Debug().Str("middleware", mw.Name()).Str("query", query).Msg("query rewritten")
	}
	stop()

	unlock := e.locker.Lock(sessionID)
	defer unlock()

	state := e.loadState(ctx, sessionID)

	stop = tr.start(PhaseAnaphora, nil)
	resolved := e.conv.Resolve(&state, query)
	stop()
	if resolved != query {
		logger.Debug().Str("query", query).Str("resolved", resolved).Msg("anaphora resolved")
	}

	stop = tr.start(PhaseSentiment, nil)
	sentiment := e.sentiment.Analyze(resolved)
	stop()

	question, urgent := analyzer.Signals(resolved)

	stop = tr.start(PhaseSplit, nil)
	parts := e.splitter.Split(resolved)
	stop()
	if len(parts) == 0 {
		parts = []string{resolved}
	}

	cat := e.snapshot()
	results := make([]domain.SearchResult, 0, len(parts))
	for i, part := range parts {
		var detail map[string]string
		if len(parts) > 1 {
			detail = map[string]string{"part": strconv.Itoa(i), "query": part}
		}
		r, err := e.searchPart(ctx, part, signals{question: question, urgent: urgent}, &state, cat, sentiment, tr, detail, logger)
		if err != nil {
			return nil, err
		}
		results = append(results, r)
	}

	var result domain.SearchResult
	if len(results) == 1 {
		result = results[0]
	} else {
		result = e.merge(results)
	}
	result.Query = query
	result.Sentiment = sentiment
	result.Diagnostics = tr.Events()

	if err := e.sessions.Save(ctx, sessionID, state); err != nil {
		logger.Warn().Err(err).Msg("cannot save session")
	}

	logger.Info().
		Str("intent", result.Intent).
		Int("results", len(result.Results)).
		Float64("confidence", result.Confidence).
		Int("parts", len(parts)).
		Msg("search complete")

	return &result, nil
}

// signals are detected on the whole utterance, since splitting drops the
// punctuation that carries them.
type signals struct {
	question bool
	urgent   bool
}

// searchPart runs one sub-query through the pipeline and updates state.
func (e *Engine) searchPart(
	ctx context.Context,
	text string,
	sig signals,
	state *domain.ConversationState,
	cat *catalog,
	sentiment string,
	tr *trace,
	detail map[string]string,
	logger *observability.Logger,
) (domain.SearchResult, error) {
	stop := tr.start(PhasePreprocessing, detail)
	pq := e.pre.Process(text)
	if !pq.Empty() {
		pq.IsQuestion = pq.IsQuestion || sig.question
		pq.IsUrgent = pq.IsUrgent || sig.urgent
	}
	stop()

	stop = tr.start(PhaseRetrieval, detail)
	hits, degraded, err := e.retrieve(ctx, pq.Expanded, cat, logger)
	if err == nil && !degraded {
		hits = e.injectSubject(hits, *state, cat)
	}
	stop()
	if err != nil {
		return domain.SearchResult{}, err
	}

	stop = tr.start(PhaseIntent, detail)
	detection := e.detector.Explain(pq)
	conversational := e.detector.IsConversational(detection.Label)
	stop()
	logger.Debug().
		Str("intent", detection.Label).
		Str("stage", detection.Stage).
		Float64("classifier", detection.Confidence).
		Msg("intent detected")

	stop = tr.start(PhaseScoring, detail)
	ranked := e.scorer.Rank(hits, pq, detection.Label, *state)
	if !degraded {
		threshold := e.cfg.Search.MinScore
		if conversational {
			threshold = e.cfg.Search.MinScoreConversational
		}
		ranked = filterByScore(ranked, threshold)
	}
	if limit := e.cfg.Search.Limit; limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	stop()

	result := domain.SearchResult{
		Query:     text,
		Results:   ranked,
		Intent:    detection.Label,
		Entities:  pq.Entities,
		Sentiment: sentiment,
	}
	if top, ok := result.Top(); ok {
		result.Confidence = clampScore(top.Score)
	}

	stop = tr.start(PhaseContext, detail)
	e.conv.Update(state, result)
	stop()

	stop = tr.start(PhaseResponse, detail)
	answer, err := e.composer.Compose(ctx, domain.ComposeRequest{
		Result:         result,
		Intent:         detection.Label,
		Conversational: conversational,
		Sentiment:      sentiment,
		Attributes:     e.pre.ExtractAttributes,
	})
	stop()
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return domain.SearchResult{}, ctxErr
		}
		logger.Warn().Err(err).Str("intent", detection.Label).Msg("response composer failed")
		answer = ""
	}
	result.Answer = answer

	return result, nil
}

// retrieve queries the retrieval chain with the expanded terms. Without a
// usable index every catalog item comes back as an equally weak candidate
// and degraded is true.
func (e *Engine) retrieve(ctx context.Context, terms []string, cat *catalog, logger *observability.Logger) ([]domain.RetrievalHit, bool, error) {
	if e.retriever == nil {
		return weakCandidates(cat), true, nil
	}
	if len(terms) == 0 {
		return nil, false, nil
	}

	hits, err := e.retriever.Search(ctx, retriever.JoinTerms(terms))
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, false, ctxErr
		}
		if errors.Is(err, domain.ErrIndexNotReady) {
			logger.Debug().Msg("retrieval index not ready, using whole catalog")
		} else {
			logger.Warn().Err(err).Msg("retrieval failed, using whole catalog")
		}
		return weakCandidates(cat), true, nil
	}
	return hits, false, nil
}

func weakCandidates(cat *catalog) []domain.RetrievalHit {
	hits := make([]domain.RetrievalHit, len(cat.items))
	for i, item := range cat.items {
		hits[i] = domain.RetrievalHit{Item: item, Score: 1}
	}
	return hits
}

// injectSubject appends the conversation's current subject so follow-ups
// stay answerable when the index alone would not surface it.
func (e *Engine) injectSubject(hits []domain.RetrievalHit, state domain.ConversationState, cat *catalog) []domain.RetrievalHit {
	subject := e.conv.Subject(state)
	if subject == "" {
		return hits
	}
	for _, h := range hits {
		if h.Item.Title == subject {
			return hits
		}
	}
	i, ok := cat.title[subject]
	if !ok {
		return hits
	}
	return append(hits, domain.RetrievalHit{Item: cat.items[i], Score: e.cfg.Search.ContextInjectScore})
}

func filterByScore(results []domain.ScoredCandidate, threshold float64) []domain.ScoredCandidate {
	filtered := make([]domain.ScoredCandidate, 0, len(results))
	for _, r := range results {
		if r.Score >= threshold {
			filtered = append(filtered, r)
		}
	}
	return filtered
}

func clampScore(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// merge combines sub-query results in order. Results are deduplicated by
// title with the first occurrence kept.
func (e *Engine) merge(parts []domain.SearchResult) domain.SearchResult {
	merged := domain.SearchResult{
		Intent:   CompoundIntent,
		Results:  []domain.ScoredCandidate{},
		Entities: make(map[string]bool),
		Parts:    make([]domain.SubQueryResult, 0, len(parts)),
	}

	seen := make(map[string]struct{})
	var answers []string
	for _, p := range parts {
		for _, r := range p.Results {
			if _, dup := seen[r.Item.Title]; dup {
				continue
			}
			seen[r.Item.Title] = struct{}{}
			merged.Results = append(merged.Results, r)
		}
		if p.Answer != "" {
			answers = append(answers, p.Answer)
		}
		if p.Confidence > merged.Confidence {
			merged.Confidence = p.Confidence
		}
		for name, present := range p.Entities {
			merged.Entities[name] = merged.Entities[name] || present
		}
		merged.Parts = append(merged.Parts, domain.SubQueryResult{
			Query:      p.Query,
			Intent:     p.Intent,
			Confidence: p.Confidence,
			Answer:     p.Answer,
			Results:    len(p.Results),
		})
	}
	merged.Answer = strings.Join(answers, e.cfg.Search.AnswerJoiner)
	return merged
}
