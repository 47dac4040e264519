package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chatsearch/config"
	"chatsearch/internal/domain"
)

func price(v float64) *float64 { return &v }

func testCatalog() []domain.CatalogItem {
	return []domain.CatalogItem{
		{Title: "iPhone 15 Pro", Category: "Smartphone", Keywords: []string{"apple", "hp"}, Description: "Chip A17 Pro, kamera 48MP", Price: price(20000000)},
		{Title: "Samsung Galaxy S24", Category: "Smartphone", Keywords: []string{"android", "hp"}, Description: "Layar Dynamic AMOLED", Price: price(15000000), Recommended: true},
		{Title: "Charger 20W", Category: "Aksesoris", Keywords: []string{"adaptor"}, Description: "Fast charging untuk iphone", Price: price(299000)},
		{Title: "Tentang Kami", Category: "Halaman", Content: "Toko elektronik terpercaya sejak 2010"},
	}
}

func newTestEngine(t *testing.T, cfg *config.Config, opts ...Option) *Engine {
	t.Helper()
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	e, err := NewEngine(cfg, opts...)
	require.NoError(t, err)
	require.NoError(t, e.AddData(testCatalog()))
	return e
}

type stubRetriever struct {
	hits []domain.RetrievalHit
	err  error
}

func (s *stubRetriever) Search(ctx context.Context, query string) ([]domain.RetrievalHit, error) {
	return s.hits, s.err
}

type stubComposer struct{ err error }

func (s stubComposer) Compose(ctx context.Context, req domain.ComposeRequest) (string, error) {
	return "", s.err
}

type replaceMiddleware struct{ old, new string }

func (m replaceMiddleware) Name() string { return "replace" }

func (m replaceMiddleware) Apply(q string) string { return strings.ReplaceAll(q, m.old, m.new) }

func TestSearch_BuyIphone(t *testing.T) {
	e := newTestEngine(t, nil)

	result, err := e.Search(context.Background(), "s1", "beli iphone")
	require.NoError(t, err)

	assert.Equal(t, "sales_beli", result.Intent)
	require.Len(t, result.Results, 1)
	assert.Equal(t, "iPhone 15 Pro", result.Results[0].Item.Title)
	assert.Equal(t, "iPhone 15 Pro bisa langsung dipesan, harganya Rp 20.000.000.", result.Answer)
	assert.Greater(t, result.Confidence, 80.0)
	assert.LessOrEqual(t, result.Confidence, 100.0)
	assert.Empty(t, result.Parts)
}

func TestSearch_CompoundQuery(t *testing.T) {
	e := newTestEngine(t, nil)

	result, err := e.Search(context.Background(), "s1", "harga iphone? fiturnya apa")
	require.NoError(t, err)

	assert.Equal(t, CompoundIntent, result.Intent)
	require.Len(t, result.Parts, 2)
	assert.Equal(t, "harga iphone", result.Parts[0].Query)
	assert.Equal(t, "sales_harga", result.Parts[0].Intent)
	assert.Equal(t, "fiturnya apa", result.Parts[1].Query)
	assert.Equal(t, "sales_fitur", result.Parts[1].Intent)

	assert.Contains(t, result.Answer, "Harga iPhone 15 Pro Rp 20.000.000.")
	assert.Contains(t, result.Answer, "Fitur iPhone 15 Pro:")
	assert.Equal(t, 2, len(strings.Split(result.Answer, e.cfg.Search.AnswerJoiner)))

	titles := make(map[string]int)
	for _, r := range result.Results {
		titles[r.Item.Title]++
	}
	for title, n := range titles {
		if n != 1 {
			t.Errorf("expected %q once in merged results, got %d", title, n)
		}
	}

	best := 0.0
	for _, p := range result.Parts {
		if p.Confidence > best {
			best = p.Confidence
		}
	}
	assert.Equal(t, best, result.Confidence)
}

func TestSearch_FollowUpUsesContext(t *testing.T) {
	e := newTestEngine(t, nil)
	ctx := context.Background()

	_, err := e.Search(ctx, "s1", "beli iphone")
	require.NoError(t, err)

	result, err := e.Search(ctx, "s1", "harganya berapa")
	require.NoError(t, err)

	assert.Equal(t, "harganya berapa", result.Query)
	assert.Equal(t, "sales_harga", result.Intent)
	require.NotEmpty(t, result.Results)
	assert.Equal(t, "iPhone 15 Pro", result.Results[0].Item.Title)

	state, err := e.Session(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "iPhone 15 Pro", state.LockedItem)
	assert.Equal(t, 2, state.Interactions)
}

func TestSearch_SessionsAreIsolated(t *testing.T) {
	e := newTestEngine(t, nil)
	ctx := context.Background()

	_, err := e.Search(ctx, "s1", "beli iphone")
	require.NoError(t, err)

	_, err = e.Session(ctx, "s2")
	assert.True(t, errors.Is(err, domain.ErrSessionNotFound), "expected ErrSessionNotFound, got %v", err)

	require.NoError(t, e.ResetSession(ctx, "s1"))
	_, err = e.Session(ctx, "s1")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)

	assert.NoError(t, e.ResetSession(ctx, "never-seen"))
}

func TestSearch_DegradesWithoutIndex(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Retrieval.Index = false
	e := newTestEngine(t, cfg)

	result, err := e.Search(context.Background(), "s1", "ada apa saja")
	require.NoError(t, err)

	if len(result.Results) != len(testCatalog()) {
		t.Fatalf("expected every item as a weak candidate, got %d", len(result.Results))
	}
	for _, r := range result.Results {
		assert.Equal(t, 0.0, r.Breakdown["retrieval"], "weak candidates carry no retrieval score")
	}
}

func TestSearch_FailingPrimaryFallsBackToIndex(t *testing.T) {
	primary := &stubRetriever{err: domain.ErrAllEndpointsFailed}
	e := newTestEngine(t, nil, WithRetriever(primary))

	result, err := e.Search(context.Background(), "s1", "beli iphone")
	require.NoError(t, err)
	require.Len(t, result.Results, 1)
	assert.Equal(t, "iPhone 15 Pro", result.Results[0].Item.Title)
}

func TestSearch_FailingPrimaryWithoutIndexDegrades(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Retrieval.Index = false
	e := newTestEngine(t, cfg, WithRetriever(&stubRetriever{err: errors.New("boom")}))

	result, err := e.Search(context.Background(), "s1", "beli iphone")
	require.NoError(t, err)
	assert.Len(t, result.Results, len(testCatalog()))
}

func TestSearch_ComposerErrorLeavesEmptyAnswer(t *testing.T) {
	e := newTestEngine(t, nil, WithComposer(stubComposer{err: errors.New("template broke")}))

	result, err := e.Search(context.Background(), "s1", "beli iphone")
	require.NoError(t, err)
	assert.Empty(t, result.Answer)
	assert.NotEmpty(t, result.Results)
}

func TestSearch_Middleware(t *testing.T) {
	e := newTestEngine(t, nil, WithMiddleware(replaceMiddleware{old: "ayfon", new: "iphone"}))

	result, err := e.Search(context.Background(), "s1", "beli ayfon")
	require.NoError(t, err)
	assert.Equal(t, "beli iphone", result.Query)
	require.NotEmpty(t, result.Results)
	assert.Equal(t, "iPhone 15 Pro", result.Results[0].Item.Title)
}

func TestSearch_EmptyInput(t *testing.T) {
	e := newTestEngine(t, nil)

	result, err := e.Search(context.Background(), "s1", "  <br>  ")
	require.NoError(t, err)
	assert.Empty(t, result.Results)
	assert.Equal(t, 0.0, result.Confidence)
	assert.Equal(t, "Maaf, belum ada yang cocok. Coba kata kunci lain ya.", result.Answer)
	for name, present := range result.Entities {
		assert.False(t, present, "entity %s", name)
	}
}

func TestSearch_Diagnostics(t *testing.T) {
	e := newTestEngine(t, nil)

	result, err := e.Search(context.Background(), "s1", "beli iphone")
	require.NoError(t, err)
	require.NotEmpty(t, result.Diagnostics)

	first := result.Diagnostics[0]
	assert.Equal(t, PhaseSecurity, first.Phase)
	assert.Equal(t, domain.MarkerStart, first.Marker)

	open := make(map[string]bool)
	seen := make(map[string]bool)
	for _, ev := range result.Diagnostics {
		switch ev.Marker {
		case domain.MarkerStart:
			assert.False(t, open[ev.Phase], "phase %s started twice", ev.Phase)
			open[ev.Phase] = true
		case domain.MarkerStop:
			assert.True(t, open[ev.Phase], "phase %s stopped before start", ev.Phase)
			open[ev.Phase] = false
			assert.GreaterOrEqual(t, ev.Elapsed.Nanoseconds(), int64(0))
		}
		seen[ev.Phase] = true
	}
	for _, phase := range []string{PhaseSecurity, PhaseMiddleware, PhaseAnaphora, PhaseSentiment, PhasePreprocessing, PhaseRetrieval, PhaseIntent, PhaseScoring, PhaseResponse} {
		assert.True(t, seen[phase], "missing phase %s", phase)
	}
}

func TestSearch_UrgencySurvivesSplit(t *testing.T) {
	e := newTestEngine(t, nil)
	require.NoError(t, e.AddData([]domain.CatalogItem{
		{Title: "iPhone 14", Category: "Stok Ready", Keywords: []string{"apple"}, Price: price(12000000)},
	}))
	w := e.cfg.Scoring.Weights

	result, err := e.Search(context.Background(), "s1", "iphone ready!")
	require.NoError(t, err)
	require.NotEmpty(t, result.Results)

	found := false
	for _, r := range result.Results {
		assert.Equal(t, w.Urgent, r.Breakdown["urgent"], "item %s", r.Item.Title)
		if r.Item.Title == "iPhone 14" {
			found = true
			assert.Equal(t, w.UrgentStock, r.Breakdown["urgent_stock"])
		}
	}
	assert.True(t, found, "expected the in-stock item among the results")
}

func TestSearch_Cancelled(t *testing.T) {
	e := newTestEngine(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := e.Search(ctx, "s1", "beli iphone")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSearch_NegativeSentimentApologizes(t *testing.T) {
	e := newTestEngine(t, nil)

	result, err := e.Search(context.Background(), "s1", "beli iphone, kecewa pengiriman lambat")
	require.NoError(t, err)
	assert.Equal(t, "negative", result.Sentiment)
	assert.True(t, strings.HasPrefix(result.Answer, "Mohon maaf"), "got %q", result.Answer)
}

func TestAddData(t *testing.T) {
	e := newTestEngine(t, nil)

	updated := testCatalog()[0]
	updated.Description = "Chip A18"
	require.NoError(t, e.AddData([]domain.CatalogItem{updated, {Title: "Casing iPhone"}}))

	items := e.Items()
	require.Len(t, items, 5)
	assert.Equal(t, "Chip A18", items[0].Description)
	assert.Equal(t, "Casing iPhone", items[4].Title)

	err := e.AddData([]domain.CatalogItem{{Description: "no title"}})
	assert.ErrorIs(t, err, domain.ErrInvalidCatalog)
	assert.Len(t, e.Items(), 5)
}

func TestAddData_InvalidatesCache(t *testing.T) {
	e := newTestEngine(t, nil)
	ctx := context.Background()

	_, err := e.Retrieve(ctx, "casing")
	require.NoError(t, err)

	require.NoError(t, e.AddData([]domain.CatalogItem{{Title: "Casing iPhone"}}))
	hits, err := e.Retrieve(ctx, "casing")
	require.NoError(t, err)
	require.NotEmpty(t, hits)
	assert.Equal(t, "Casing iPhone", hits[0].Item.Title)
}

func TestRetrieve_NoIndex(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Retrieval.Index = false
	e := newTestEngine(t, cfg)

	_, err := e.Retrieve(context.Background(), "iphone")
	assert.ErrorIs(t, err, domain.ErrIndexNotReady)
}
