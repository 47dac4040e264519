package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"chatsearch/config"
	"chatsearch/internal/adapter/analyzer"
	"chatsearch/internal/adapter/cache"
	"chatsearch/internal/adapter/convctx"
	"chatsearch/internal/adapter/intent"
	"chatsearch/internal/adapter/memstore"
	"chatsearch/internal/adapter/responder"
	"chatsearch/internal/adapter/retriever"
	"chatsearch/internal/adapter/scoring"
	"chatsearch/internal/domain"
	"chatsearch/internal/observability"
	"chatsearch/internal/port"
)

// Option customizes an Engine.
type Option func(*Engine)

// WithLogger sets the engine's logger.
func WithLogger(logger *observability.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// WithSessionStore replaces the in-memory session store.
func WithSessionStore(store port.SessionStore) Option {
	return func(e *Engine) { e.sessions = store }
}

// WithRetriever sets a primary retriever that is tried before the local
// index. It replaces the configured remote endpoints.
func WithRetriever(r port.Retriever) Option {
	return func(e *Engine) { e.primary = r }
}

// WithComposer replaces the template composer.
func WithComposer(c port.ResponseComposer) Option {
	return func(e *Engine) { e.composer = c }
}

// WithProvider replaces the configured linguistic provider.
func WithProvider(p port.LinguisticProvider) Option {
	return func(e *Engine) { e.provider = p }
}

// WithMiddleware appends query rewriters, applied in order.
func WithMiddleware(mw ...port.QueryMiddleware) Option {
	return func(e *Engine) { e.middleware = append(e.middleware, mw...) }
}

// WithClock sets the time source for diagnostics and conversation state.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// catalog is an immutable snapshot of the items the engine searches.
type catalog struct {
	items []domain.CatalogItem
	index map[string]int // key -> position
	title map[string]int // title -> position
}

func newCatalog(items []domain.CatalogItem) *catalog {
	c := &catalog{
		items: items,
		index: make(map[string]int, len(items)),
		title: make(map[string]int, len(items)),
	}
	for i, item := range items {
		c.index[item.Key()] = i
		if _, ok := c.title[item.Title]; !ok {
			c.title[item.Title] = i
		}
	}
	return c
}

// Engine answers conversational catalog queries. It is safe for concurrent
// use: calls for one session are serialized, different sessions run in
// parallel, and re-indexing is a write barrier for the catalog.
type Engine struct {
	cfg    *config.Config
	logger *observability.Logger
	now    func() time.Time

	provider   port.LinguisticProvider
	pre        *analyzer.Preprocessor
	sentiment  *analyzer.SentimentAnalyzer
	detector   *intent.Detector
	scorer     *scoring.Scorer
	conv       *convctx.Engine
	composer   port.ResponseComposer
	templates  *responder.TemplateComposer
	splitter   *Splitter
	middleware []port.QueryMiddleware

	sessions port.SessionStore
	locker   *memstore.Locker

	mu      sync.RWMutex
	catalog *catalog

	primary   port.Retriever
	index     *retriever.FuzzyIndex // nil when running without a local index
	cache     *cache.QueryCache
	retriever port.Retriever // nil in degraded mode
}

// NewEngine builds an engine from configuration. The catalog starts empty;
// load it with AddData or SetCatalog.
func NewEngine(cfg *config.Config, opts ...Option) (*Engine, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	e := &Engine{
		cfg:     cfg,
		now:     time.Now,
		locker:  memstore.NewLocker(),
		catalog: newCatalog(nil),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = observability.NopLogger()
	}
	if e.sessions == nil {
		e.sessions = memstore.NewMemoryStore()
	}

	if e.provider == nil {
		provider, err := analyzer.NewProvider(cfg.Preprocess.Language, cfg.Preprocess.Dictionary)
		if err != nil {
			return nil, fmt.Errorf("linguistic provider: %w", err)
		}
		e.provider = provider
	}

	pre, err := analyzer.NewPreprocessor(e.provider, cfg.Preprocess)
	if err != nil {
		return nil, fmt.Errorf("preprocessor: %w", err)
	}
	e.pre = pre
	e.sentiment = analyzer.NewSentimentAnalyzer(cfg.Preprocess.Positive, cfg.Preprocess.Negative)
	e.detector = intent.NewDetector(intent.NewTrainedClassifier(cfg.Intent.Training), cfg.Intent)
	e.conv = convctx.NewEngine(cfg.Context).WithClock(e.now)
	e.splitter = NewSplitter(cfg.Search, pre)

	e.scorer, err = scoring.NewScorer(cfg.Scoring, cfg.Intent.SalesPrefix, e.logger)
	if err != nil {
		return nil, fmt.Errorf("scorer: %w", err)
	}

	e.templates, err = responder.NewTemplateComposer(cfg.Response, cfg.Intent.SalesPrefix, cfg.Intent.ConversationalPrefix)
	if err != nil {
		return nil, fmt.Errorf("composer: %w", err)
	}
	if e.composer == nil {
		e.composer = e.templates
	}

	e.buildRetrieval()
	return e, nil
}

// buildRetrieval assembles primary -> local fallback behind the hit cache.
func (e *Engine) buildRetrieval() {
	rc := e.cfg.Retrieval

	var local port.Retriever
	if rc.Index {
		e.index = retriever.NewFuzzyIndex(rc)
		local = e.index
	}

	primary := e.primary
	if primary == nil && len(rc.Remote) > 0 {
		primary = retriever.NewRemoteRetriever(rc.Remote, rc.Timeout, e.logger)
	}

	var chain port.Retriever
	switch {
	case primary != nil:
		chain = retriever.NewFallbackRetriever(primary, local, e.logger)
	case local != nil:
		chain = local
	default:
		e.logger.Info().Msg("no retrieval index configured, every catalog item is a weak candidate")
		return
	}

	if rc.CacheSize > 0 {
		e.cache = cache.NewQueryCache(rc.CacheSize, rc.CacheTTL)
		chain = cache.NewCachedRetriever(chain, e.cache)
	}
	e.retriever = chain
}

// Init loads lazy linguistic resources, such as a stemming dictionary.
// Searching before Init is allowed and stems without them.
func (e *Engine) Init(ctx context.Context) error {
	if ini, ok := e.provider.(port.Initializer); ok && !ini.IsReady() {
		if err := ini.Init(ctx); err != nil {
			return fmt.Errorf("init linguistic provider: %w", err)
		}
	}
	return nil
}

// Config returns the engine's configuration.
func (e *Engine) Config() *config.Config {
	return e.cfg
}

// Preprocessor returns the engine's query preprocessor.
func (e *Engine) Preprocessor() *analyzer.Preprocessor {
	return e.pre
}

// AddData adds items to the catalog and re-indexes. An item whose key is
// already present replaces the old one in place.
func (e *Engine) AddData(items []domain.CatalogItem) error {
	if err := validateItems(items); err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	merged := make([]domain.CatalogItem, len(e.catalog.items), len(e.catalog.items)+len(items))
	copy(merged, e.catalog.items)
	pos := make(map[string]int, len(merged))
	for i, item := range merged {
		pos[item.Key()] = i
	}
	for _, item := range items {
		if i, ok := pos[item.Key()]; ok {
			merged[i] = item
			continue
		}
		pos[item.Key()] = len(merged)
		merged = append(merged, item)
	}

	e.reindexLocked(merged)
	return nil
}

// SetCatalog replaces the whole catalog and re-indexes.
func (e *Engine) SetCatalog(items []domain.CatalogItem) error {
	if err := validateItems(items); err != nil {
		return err
	}
	snapshot := make([]domain.CatalogItem, len(items))
	copy(snapshot, items)

	e.mu.Lock()
	defer e.mu.Unlock()
	e.reindexLocked(snapshot)
	return nil
}

func (e *Engine) reindexLocked(items []domain.CatalogItem) {
	start := e.now()
	if e.index != nil {
		e.index.Reindex(items)
	}
	e.catalog = newCatalog(items)
	if e.cache != nil {
		e.cache.Invalidate()
	}
	e.logger.Debug().
		Int("items", len(items)).
		Dur("elapsed", e.now().Sub(start)).
		Msg("catalog re-indexed")
}

func validateItems(items []domain.CatalogItem) error {
	for i, item := range items {
		if item.Title == "" {
			return fmt.Errorf("item %d: %w", i, domain.ErrInvalidCatalog)
		}
	}
	return nil
}

// Items returns a copy of the current catalog.
func (e *Engine) Items() []domain.CatalogItem {
	c := e.snapshot()
	out := make([]domain.CatalogItem, len(c.items))
	copy(out, c.items)
	return out
}

func (e *Engine) snapshot() *catalog {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.catalog
}

// Retrieve runs the raw retrieval chain for a query, without scoring. Terms
// may be combined with `|`.
func (e *Engine) Retrieve(ctx context.Context, query string) ([]domain.RetrievalHit, error) {
	if e.retriever == nil {
		return nil, domain.ErrIndexNotReady
	}
	return e.retriever.Search(ctx, query)
}

// Session returns the stored conversation state of a session.
func (e *Engine) Session(ctx context.Context, sessionID string) (domain.ConversationState, error) {
	unlock := e.locker.Lock(sessionID)
	defer unlock()
	return e.sessions.Load(ctx, sessionID)
}

// ResetSession forgets a session's conversation state.
func (e *Engine) ResetSession(ctx context.Context, sessionID string) error {
	unlock := e.locker.Lock(sessionID)
	defer unlock()

	err := e.sessions.Delete(ctx, sessionID)
	if errors.Is(err, domain.ErrSessionNotFound) {
		return nil
	}
	return err
}

func (e *Engine) loadState(ctx context.Context, sessionID string) domain.ConversationState {
	state, err := e.sessions.Load(ctx, sessionID)
	if err != nil {
		if !errors.Is(err, domain.ErrSessionNotFound) {
			e.logger.WithSession(sessionID).Warn().Err(err).Msg("cannot load session, starting fresh")
		}
		return e.conv.NewState()
	}
	if state.Entities == nil {
		state.Entities = make(map[string]bool)
	}
	return state
}
