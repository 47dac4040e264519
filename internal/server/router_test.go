package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chatsearch/config"
	"chatsearch/internal/domain"
	"chatsearch/internal/usecase"
)

func newTestServer(t *testing.T) http.Handler {
	t.Helper()
	cfg := config.DefaultConfig()
	engine, err := usecase.NewEngine(cfg)
	require.NoError(t, err)

	p := 20000000.0
	require.NoError(t, engine.AddData([]domain.CatalogItem{
		{Title: "iPhone 15 Pro", Category: "Smartphone", Keywords: []string{"apple"}, Price: &p},
	}))
	return NewRouter(engine, nil, cfg.Server)
}

func do(t *testing.T, h http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	var resp struct {
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NoError(t, json.Unmarshal(resp.Data, v))
}

func TestHealth(t *testing.T) {
	rec := do(t, newTestServer(t), http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "healthy")
}

func TestSearchAndSession(t *testing.T) {
	h := newTestServer(t)

	rec := do(t, h, http.MethodPost, "/v1/sessions/s1/search", searchRequest{Query: "beli iphone"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var result domain.SearchResult
	decodeData(t, rec, &result)
	assert.Equal(t, "sales_beli", result.Intent)
	require.NotEmpty(t, result.Results)
	assert.Equal(t, "iPhone 15 Pro", result.Results[0].Item.Title)

	rec = do(t, h, http.MethodGet, "/v1/sessions/s1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var sess sessionResponse
	decodeData(t, rec, &sess)
	require.NotNil(t, sess.State)
	assert.Equal(t, 1, sess.State.Interactions)

	rec = do(t, h, http.MethodDelete, "/v1/sessions/s1", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, h, http.MethodGet, "/v1/sessions/s1", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSearch_BadRequests(t *testing.T) {
	h := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/v1/sessions/s1/search", bytes.NewBufferString("{not json"))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodPost, "/v1/sessions/s1/search", searchRequest{Query: "  "})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestNewSession(t *testing.T) {
	rec := do(t, newTestServer(t), http.MethodPost, "/v1/sessions", nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	var sess sessionResponse
	decodeData(t, rec, &sess)
	assert.Len(t, sess.ID, 36)
}

func TestItems(t *testing.T) {
	h := newTestServer(t)

	rec := do(t, h, http.MethodPost, "/v1/items", []domain.CatalogItem{{Title: "Samsung Galaxy S24", Category: "Smartphone"}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(t, h, http.MethodGet, "/v1/items", nil)
	var items []domain.CatalogItem
	decodeData(t, rec, &items)
	assert.Len(t, items, 2)

	rec = do(t, h, http.MethodPost, "/v1/items", []domain.CatalogItem{{Description: "untitled"}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCompareAndRetrieve(t *testing.T) {
	h := newTestServer(t)
	do(t, h, http.MethodPost, "/v1/items", []domain.CatalogItem{{Title: "Samsung Galaxy S24", Category: "Smartphone"}})

	rec := do(t, h, http.MethodGet, "/v1/compare?q=iphone+vs+samsung&category=smartphone", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var cmp domain.ComparisonResult
	decodeData(t, rec, &cmp)
	assert.Len(t, cmp.Items, 2)

	rec = do(t, h, http.MethodGet, "/v1/compare?q=iphone&max=abc", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodGet, "/v1/retrieve?q=iphone", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var hits []domain.RetrievalHit
	decodeData(t, rec, &hits)
	require.NotEmpty(t, hits)
	assert.Equal(t, "iPhone 15 Pro", hits[0].Item.Title)

	rec = do(t, h, http.MethodGet, "/v1/retrieve", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, statusFor(domain.ErrSessionNotFound))
	assert.Equal(t, http.StatusServiceUnavailable, statusFor(domain.ErrIndexNotReady))
	assert.Equal(t, http.StatusBadRequest, statusFor(domain.ErrInvalidCatalog))
	assert.Equal(t, http.StatusInternalServerError, statusFor(assert.AnError))
}
