package port

import (
	"context"

	"chatsearch/internal/domain"
)

// ResponseComposer turns a ranked result into a natural-language answer.
type ResponseComposer interface {
	Compose(ctx context.Context, req domain.ComposeRequest) (string, error)
}

// QueryMiddleware rewrites raw query text before it reaches the pipeline.
type QueryMiddleware interface {
	Name() string
	Apply(query string) string
}
