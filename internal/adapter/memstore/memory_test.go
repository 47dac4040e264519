package memstore

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"chatsearch/internal/domain"
)

func TestMemoryStore_Sessions(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	if _, err := s.Load(ctx, "s1"); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}

	state := domain.ConversationState{LastItem: "iPhone 15 Pro", Entities: map[string]bool{"isPremium": true}, Interactions: 2}
	if err := s.Save(ctx, "s1", state); err != nil {
		t.Fatal(err)
	}

	state.Entities["isPremium"] = false
	got, err := s.Load(ctx, "s1")
	if err != nil {
		t.Fatal(err)
	}
	if got.LastItem != "iPhone 15 Pro" || got.Interactions != 2 {
		t.Errorf("unexpected state %+v", got)
	}
	if !got.Entities["isPremium"] {
		t.Error("expected stored entities to be isolated from the caller")
	}

	if err := s.Delete(ctx, "s1"); err != nil {
		t.Fatal(err)
	}
	if s.SessionCount() != 0 {
		t.Errorf("expected 0 sessions, got %d", s.SessionCount())
	}
}

func TestMemoryStore_Items(t *testing.T) {
	s := NewMemoryStore()

	err := s.PutItems([]domain.CatalogItem{{Title: "B"}, {Title: "A"}, {Title: "B", Category: "x"}})
	if err != nil {
		t.Fatal(err)
	}
	items, _ := s.ListItems()
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if items[0].Title != "B" || items[0].Category != "x" {
		t.Errorf("expected upserted B first, got %+v", items[0])
	}

	if err := s.DeleteItem("B"); err != nil {
		t.Fatal(err)
	}
	if err := s.DeleteItem("B"); !errors.Is(err, domain.ErrItemNotFound) {
		t.Errorf("expected ErrItemNotFound, got %v", err)
	}
	if err := s.PutItems([]domain.CatalogItem{{}}); !errors.Is(err, domain.ErrInvalidCatalog) {
		t.Errorf("expected ErrInvalidCatalog, got %v", err)
	}
}

func TestLocker_SerializesSameSession(t *testing.T) {
	l := NewLocker()
	var mu sync.Mutex
	active, maxActive := 0, 0

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := l.Lock("s1")
			defer unlock()

			mu.Lock()
			active++
			if active > maxActive {
				maxActive = active
			}
			mu.Unlock()

			time.Sleep(time.Millisecond)

			mu.Lock()
			active--
			mu.Unlock()
		}()
	}
	wg.Wait()

	if maxActive != 1 {
		t.Errorf("expected at most 1 concurrent holder, got %d", maxActive)
	}
	if l.Len() != 0 {
		t.Errorf("expected locks to be released, got %d", l.Len())
	}
}

func TestLocker_IndependentSessions(t *testing.T) {
	l := NewLocker()
	unlockA := l.Lock("a")
	done := make(chan struct{})
	go func() {
		unlock := l.Lock("b")
		unlock()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("session b blocked on session a")
	}
	unlockA()
}
