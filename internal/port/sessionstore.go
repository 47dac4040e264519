package port

import (
	"context"

	"chatsearch/internal/domain"
)

// SessionStore persists conversation state between search calls.
// Load returns domain.ErrSessionNotFound for unknown sessions.
type SessionStore interface {
	Load(ctx context.Context, sessionID string) (domain.ConversationState, error)
	Save(ctx context.Context, sessionID string, state domain.ConversationState) error
	Delete(ctx context.Context, sessionID string) error
}

// CatalogStore persists catalog items.
type CatalogStore interface {
	PutItems(items []domain.CatalogItem) error
	ListItems() ([]domain.CatalogItem, error)
	DeleteItem(key string) error
	Close() error
}
