package retriever

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/sync/errgroup"

	"chatsearch/config"
	"chatsearch/internal/domain"
	"chatsearch/internal/observability"
)

// maxResponseBytes caps how much of a remote response is read.
const maxResponseBytes = 4 << 20

// RemoteRetriever queries one or more HTTP retrieval endpoints concurrently
// and merges their hits. An endpoint that fails contributes nothing; only
// when every endpoint fails does Search return an error.
type RemoteRetriever struct {
	endpoints []config.RemoteEndpoint
	client    *http.Client
	logger    *observability.Logger
}

// NewRemoteRetriever creates a retriever over endpoints. A zero timeout
// means 3 seconds per request.
func NewRemoteRetriever(endpoints []config.RemoteEndpoint, timeout time.Duration, logger *observability.Logger) *RemoteRetriever {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	if logger == nil {
		logger = observability.NopLogger()
	}
	return &RemoteRetriever{
		endpoints: endpoints,
		client:    &http.Client{Timeout: timeout},
		logger:    logger,
	}
}

type remoteResponse struct {
	Results []domain.RetrievalHit `json:"results"`
}

// Search fans the query out to every endpoint and concatenates the hits in
// endpoint order. When an item is returned by several endpoints it keeps its
// first position and the closest score.
func (r *RemoteRetriever) Search(ctx context.Context, query string) ([]domain.RetrievalHit, error) {
	if len(r.endpoints) == 0 {
		return nil, domain.ErrAllEndpointsFailed
	}

	results := make([][]domain.RetrievalHit, len(r.endpoints))
	failed := make([]bool, len(r.endpoints))

	g, gCtx := errgroup.WithContext(ctx)
	for i, ep := range r.endpoints {
		i, ep := i, ep
		g.Go(func() error {
			hits, err := r.fetch(gCtx, ep, query)
			if err != nil {
				r.logger.Warn().Str("endpoint", ep.URL).Err(err).Msg("remote retrieval failed")
				failed[i] = true
				return nil
			}
			results[i] = hits
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	allFailed := true
	for _, f := range failed {
		if !f {
			allFailed = false
			break
		}
	}
	if allFailed {
		return nil, domain.ErrAllEndpointsFailed
	}

	return mergeHits(results...), nil
}

func (r *RemoteRetriever) fetch(ctx context.Context, ep config.RemoteEndpoint, query string) ([]domain.RetrievalHit, error) {
	u, err := url.Parse(ep.URL)
	if err != nil {
		return nil, fmt.Errorf("parse endpoint: %w", err)
	}
	q := u.Query()
	q.Set("q", query)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	for k, v := range ep.Headers {
		req.Header.Set(k, v)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return decodeHits(body)
}

// decodeHits accepts either {"results": [...]} or a bare array of hits.
func decodeHits(body []byte) ([]domain.RetrievalHit, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return nil, fmt.Errorf("empty response")
	}
	if body[0] == '[' {
		var hits []domain.RetrievalHit
		if err := json.Unmarshal(body, &hits); err != nil {
			return nil, fmt.Errorf("decode hits: %w", err)
		}
		return hits, nil
	}
	var wrapped remoteResponse
	if err := json.Unmarshal(body, &wrapped); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return wrapped.Results, nil
}

// mergeHits concatenates hit lists, collapsing repeats of an item into its
// first occurrence with the lowest score seen.
func mergeHits(lists ...[]domain.RetrievalHit) []domain.RetrievalHit {
	index := make(map[string]int)
	var merged []domain.RetrievalHit
	for _, list := range lists {
		for _, h := range list {
			if h.Item.Title == "" && h.Item.ID == "" {
				continue
			}
			key := h.Item.Key()
			if i, ok := index[key]; ok {
				if h.Score < merged[i].Score {
					merged[i].Score = h.Score
				}
				continue
			}
			index[key] = len(merged)
			merged = append(merged, h)
		}
	}
	return merged
}
