package retriever

import (
	"context"

	"chatsearch/internal/domain"
	"chatsearch/internal/observability"
	"chatsearch/internal/port"
)

// FallbackRetriever tries a primary retriever and falls back to a secondary
// one when the primary fails.
type FallbackRetriever struct {
	primary   port.Retriever
	secondary port.Retriever
	logger    *observability.Logger
}

// NewFallbackRetriever creates a fallback chain. Either side may be nil.
func NewFallbackRetriever(primary, secondary port.Retriever, logger *observability.Logger) *FallbackRetriever {
	if logger == nil {
		logger = observability.NopLogger()
	}
	return &FallbackRetriever{
		primary:   primary,
		secondary: secondary,
		logger:    logger,
	}
}

// Search queries the primary retriever. If it fails for any reason other
// than cancellation, the secondary answers instead.
func (r *FallbackRetriever) Search(ctx context.Context, query string) ([]domain.RetrievalHit, error) {
	if r.primary == nil {
		return r.secondarySearch(ctx, query)
	}

	hits, err := r.primary.Search(ctx, query)
	if err == nil {
		return hits, nil
	}
	if ctx.Err() != nil {
		return nil, err
	}
	if r.secondary == nil {
		return nil, err
	}

	r.logger.Warn().Err(err).Msg("primary retrieval failed, falling back")
	return r.secondary.Search(ctx, query)
}

func (r *FallbackRetriever) secondarySearch(ctx context.Context, query string) ([]domain.RetrievalHit, error) {
	if r.secondary == nil {
		return nil, domain.ErrIndexNotReady
	}
	return r.secondary.Search(ctx, query)
}
