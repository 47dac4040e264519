package retriever

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chatsearch/config"
	"chatsearch/internal/domain"
)

func testCatalog() []domain.CatalogItem {
	return []domain.CatalogItem{
		{Title: "iPhone 15 Pro", Category: "Smartphone", Keywords: []string{"apple", "hp"}, Description: "Chip A17 Pro, kamera 48MP"},
		{Title: "Samsung Galaxy S24", Category: "Smartphone", Keywords: []string{"android", "hp"}, Description: "Layar Dynamic AMOLED"},
		{Title: "Charger 20W", Category: "Aksesoris", Keywords: []string{"adaptor"}, Description: "Fast charging untuk iphone"},
		{Title: "Tentang Kami", Category: "Halaman", Content: "Toko elektronik terpercaya sejak 2010"},
	}
}

func newTestIndex(t *testing.T) *FuzzyIndex {
	t.Helper()
	idx := NewFuzzyIndex(config.DefaultConfig().Retrieval)
	idx.Reindex(testCatalog())
	return idx
}

func TestFuzzyIndex_NotReady(t *testing.T) {
	idx := NewFuzzyIndex(config.DefaultConfig().Retrieval)
	_, err := idx.Search(context.Background(), "iphone")
	if !errors.Is(err, domain.ErrIndexNotReady) {
		t.Errorf("expected ErrIndexNotReady, got %v", err)
	}
	assert.False(t, idx.Ready())
}

func TestFuzzyIndex_TitleMatchRanksFirst(t *testing.T) {
	idx := newTestIndex(t)

	hits, err := idx.Search(context.Background(), "iphone")
	require.NoError(t, err)
	require.NotEmpty(t, hits)
	assert.Equal(t, "iPhone 15 Pro", hits[0].Item.Title)
	assert.InDelta(t, 0.0, hits[0].Score, 1e-9)

	for i := 1; i < len(hits); i++ {
		assert.LessOrEqual(t, hits[i-1].Score, hits[i].Score)
	}
}

func TestFuzzyIndex_OrSyntax(t *testing.T) {
	idx := newTestIndex(t)

	hits, err := idx.Search(context.Background(), "beli | iphone | order | pesan | checkout")
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "iPhone 15 Pro", hits[0].Item.Title)
	assert.InDelta(t, 0.16, hits[0].Score, 1e-9)
}

func TestFuzzyIndex_FieldWeights(t *testing.T) {
	idx := newTestIndex(t)

	hits, err := idx.Search(context.Background(), "samsung")
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "Samsung Galaxy S24", hits[0].Item.Title)

	hits, err = idx.Search(context.Background(), "adaptor")
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Greater(t, hits[0].Score, 0.0, "keyword hits are weaker than title hits")
}

func TestFuzzyIndex_EmptyQuery(t *testing.T) {
	idx := newTestIndex(t)

	for _, q := range []string{"", "   ", "|", " | "} {
		hits, err := idx.Search(context.Background(), q)
		require.NoError(t, err)
		assert.Empty(t, hits, "query %q", q)
	}
}

func TestFuzzyIndex_Reindex(t *testing.T) {
	idx := newTestIndex(t)
	assert.Equal(t, 4, idx.Len())

	idx.Reindex([]domain.CatalogItem{{Title: "Paket Hemat"}})
	assert.Equal(t, 1, idx.Len())

	hits, err := idx.Search(context.Background(), "iphone")
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestFuzzyIndex_Cancelled(t *testing.T) {
	idx := newTestIndex(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := idx.Search(ctx, "iphone")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSplitTerms(t *testing.T) {
	terms := SplitTerms(" Beli | iphone|beli||  ")
	assert.Equal(t, []string{"beli", "iphone"}, terms)
	assert.Equal(t, "beli|iphone", JoinTerms(terms))
}
