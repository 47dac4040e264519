package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsComparisonQuery(t *testing.T) {
	e := newTestEngine(t, nil)

	cases := map[string]bool{
		"bandingkan iphone dan samsung": true,
		"iPhone vs Samsung":             true,
		"mana yang lebih awet?":         true,
		"harga iphone":                  false,
		"vsync laptop":                  false,
	}
	for text, want := range cases {
		if got := e.IsComparisonQuery(text); got != want {
			t.Errorf("IsComparisonQuery(%q): expected %v, got %v", text, want, got)
		}
	}
}

func TestCompareProducts(t *testing.T) {
	e := newTestEngine(t, nil)

	result, err := e.CompareProducts(context.Background(), "bandingkan iphone dan samsung", "", 0)
	require.NoError(t, err)

	require.Len(t, result.Items, 2)
	titles := []string{result.Items[0].Title, result.Items[1].Title}
	assert.ElementsMatch(t, []string{"iPhone 15 Pro", "Samsung Galaxy S24"}, titles)

	assert.Equal(t, "Samsung Galaxy S24", result.Cheapest)
	assert.Equal(t, "Samsung Galaxy S24", result.Recommended)
	require.NotEmpty(t, result.Attributes)
	assert.Equal(t, "price", result.Attributes[0])
	assert.Equal(t, "Rp 15.000.000", result.Table["price"]["Samsung Galaxy S24"])
	assert.Equal(t, "Rp 20.000.000", result.Table["price"]["iPhone 15 Pro"])
	assert.Equal(t, "Smartphone", result.Table["category"]["iPhone 15 Pro"])
	assert.Contains(t, result.Summary, "Termurah: Samsung Galaxy S24 (Rp 15.000.000).")
}

func TestCompareProducts_CategoryAndLimit(t *testing.T) {
	e := newTestEngine(t, nil)
	ctx := context.Background()

	result, err := e.CompareProducts(ctx, "charger", "aksesoris", 0)
	require.NoError(t, err)
	require.Len(t, result.Items, 1)
	assert.Equal(t, "Charger 20W", result.Items[0].Title)

	result, err = e.CompareProducts(ctx, "bandingkan iphone dan samsung", "", 1)
	require.NoError(t, err)
	assert.Len(t, result.Items, 1)
}

func TestCompareProducts_NothingFound(t *testing.T) {
	e := newTestEngine(t, nil)

	result, err := e.CompareProducts(context.Background(), "xyzzy", "", 0)
	require.NoError(t, err)
	assert.Empty(t, result.Items)
	assert.Empty(t, result.Cheapest)
	assert.NotEmpty(t, result.Summary)
}

func TestCompareProducts_Cancelled(t *testing.T) {
	e := newTestEngine(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := e.CompareProducts(ctx, "iphone vs samsung", "", 0)
	assert.ErrorIs(t, err, context.Canceled)
}
