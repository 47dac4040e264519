package retriever

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chatsearch/config"
	"chatsearch/internal/domain"
)

func TestRemoteRetriever_MergesEndpointsInOrder(t *testing.T) {
	seen := make(chan [2]string, 1)
	first := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen <- [2]string{r.URL.Query().Get("q"), r.Header.Get("Authorization")}
		w.Write([]byte(`{"results":[{"item":{"title":"iPhone 15 Pro"},"score":0.3},{"item":{"title":"Charger 20W"},"score":0.5}]}`))
	}))
	defer first.Close()
	second := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"item":{"title":"iPhone 15 Pro"},"score":0.1},{"item":{"title":"Case iPhone"},"score":0.2}]`))
	}))
	defer second.Close()

	r := NewRemoteRetriever([]config.RemoteEndpoint{
		{URL: first.URL + "/search", Headers: map[string]string{"Authorization": "Bearer secret"}},
		{URL: second.URL},
	}, time.Second, nil)

	hits, err := r.Search(context.Background(), "beli|iphone")
	require.NoError(t, err)
	got := <-seen
	assert.Equal(t, "beli|iphone", got[0])
	assert.Equal(t, "Bearer secret", got[1])

	require.Len(t, hits, 3)
	assert.Equal(t, "iPhone 15 Pro", hits[0].Item.Title)
	assert.Equal(t, 0.1, hits[0].Score, "closest score wins for repeats")
	assert.Equal(t, "Charger 20W", hits[1].Item.Title)
	assert.Equal(t, "Case iPhone", hits[2].Item.Title)
}

func TestRemoteRetriever_PartialFailure(t *testing.T) {
	ok := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"item":{"title":"iPhone 15 Pro"},"score":0.2}]`))
	}))
	defer ok.Close()
	broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer broken.Close()

	r := NewRemoteRetriever([]config.RemoteEndpoint{{URL: broken.URL}, {URL: ok.URL}}, time.Second, nil)
	hits, err := r.Search(context.Background(), "iphone")
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "iPhone 15 Pro", hits[0].Item.Title)
}

func TestRemoteRetriever_AllFailed(t *testing.T) {
	garbage := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	}))
	defer garbage.Close()

	r := NewRemoteRetriever([]config.RemoteEndpoint{{URL: garbage.URL}, {URL: "http://127.0.0.1:1"}}, time.Second, nil)
	_, err := r.Search(context.Background(), "iphone")
	if !errors.Is(err, domain.ErrAllEndpointsFailed) {
		t.Errorf("expected ErrAllEndpointsFailed, got %v", err)
	}

	empty := NewRemoteRetriever(nil, 0, nil)
	_, err = empty.Search(context.Background(), "iphone")
	assert.ErrorIs(t, err, domain.ErrAllEndpointsFailed)
}

func TestDecodeHits(t *testing.T) {
	hits, err := decodeHits([]byte(`  {"results": []}`))
	require.NoError(t, err)
	assert.Empty(t, hits)

	_, err = decodeHits([]byte("   "))
	assert.Error(t, err)
}

type stubRetriever struct {
	hits  []domain.RetrievalHit
	err   error
	calls int
}

func (s *stubRetriever) Search(ctx context.Context, query string) ([]domain.RetrievalHit, error) {
	s.calls++
	return s.hits, s.err
}

func TestFallbackRetriever(t *testing.T) {
	local := &stubRetriever{hits: []domain.RetrievalHit{{Item: domain.CatalogItem{Title: "local"}}}}

	remote := &stubRetriever{hits: []domain.RetrievalHit{{Item: domain.CatalogItem{Title: "remote"}}}}
	hits, err := NewFallbackRetriever(remote, local, nil).Search(context.Background(), "q")
	require.NoError(t, err)
	assert.Equal(t, "remote", hits[0].Item.Title)
	assert.Equal(t, 0, local.calls)

	failing := &stubRetriever{err: domain.ErrAllEndpointsFailed}
	hits, err = NewFallbackRetriever(failing, local, nil).Search(context.Background(), "q")
	require.NoError(t, err)
	assert.Equal(t, "local", hits[0].Item.Title)

	_, err = NewFallbackRetriever(failing, nil, nil).Search(context.Background(), "q")
	assert.ErrorIs(t, err, domain.ErrAllEndpointsFailed)

	_, err = NewFallbackRetriever(nil, nil, nil).Search(context.Background(), "q")
	assert.ErrorIs(t, err, domain.ErrIndexNotReady)
}

func TestFallbackRetriever_CancelledDoesNotFallBack(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	local := &stubRetriever{}
	primary := &stubRetriever{err: context.Canceled}
	_, err := NewFallbackRetriever(primary, local, nil).Search(ctx, "q")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, local.calls)
}
