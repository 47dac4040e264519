package memstore

import (
	"context"
	"fmt"
	"sync"

	"chatsearch/internal/domain"
)

// MemoryStore keeps sessions and catalog items in process memory. It
// implements port.SessionStore and port.CatalogStore.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]domain.ConversationState
	items    map[string]domain.CatalogItem
	order    []string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]domain.ConversationState),
		items:    make(map[string]domain.CatalogItem),
	}
}

func (s *MemoryStore) Load(ctx context.Context, sessionID string) (domain.ConversationState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	state, ok := s.sessions[sessionID]
	if !ok {
		return domain.ConversationState{}, domain.ErrSessionNotFound
	}
	return cloneState(state), nil
}

func (s *MemoryStore) Save(ctx context.Context, sessionID string, state domain.ConversationState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sessionID] = cloneState(state)
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
	return nil
}

// PutItems upserts items by key. New keys keep insertion order.
func (s *MemoryStore) PutItems(items []domain.CatalogItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, item := range items {
		key := item.Key()
		if key == "" {
			return fmt.Errorf("%w: item has no title", domain.ErrInvalidCatalog)
		}
		if _, exists := s.items[key]; !exists {
			s.order = append(s.order, key)
		}
		s.items[key] = item
	}
	return nil
}

func (s *MemoryStore) ListItems() ([]domain.CatalogItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]domain.CatalogItem, 0, len(s.order))
	for _, key := range s.order {
		items = append(items, s.items[key])
	}
	return items, nil
}

func (s *MemoryStore) DeleteItem(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[key]; !ok {
		return fmt.Errorf("%w: %s", domain.ErrItemNotFound, key)
	}
	delete(s.items, key)
	for i, k := range s.order {
		if k == key {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

func (s *MemoryStore) Close() error {
	return nil
}

// SessionCount returns the number of stored sessions.
func (s *MemoryStore) SessionCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

func cloneState(state domain.ConversationState) domain.ConversationState {
	if state.Entities != nil {
		entities := make(map[string]bool, len(state.Entities))
		for k, v := range state.Entities {
			entities[k] = v
		}
		state.Entities = entities
	}
	return state
}
