package port

import (
	"context"

	"chatsearch/internal/domain"
)

// Retriever defines the interface for searching the catalog.
type Retriever interface {
	// Search returns ranked hits for the query. Multiple terms may be
	// combined with the `|` operator. Lower hit scores are closer matches.
	Search(ctx context.Context, query string) ([]domain.RetrievalHit, error)
}

// Indexer is a Retriever that can be rebuilt over a new catalog.
type Indexer interface {
	Retriever

	// Reindex replaces the indexed catalog. Implementations must not serve
	// reads against a partially built index.
	Reindex(items []domain.CatalogItem)
}
