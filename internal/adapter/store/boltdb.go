package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"go.etcd.io/bbolt"

	"chatsearch/internal/domain"
)

var (
	bucketItems    = []byte("items")
	bucketSessions = []byte("sessions")
	bucketMeta     = []byte("meta")
)

type BoltStore struct {
	db *bbolt.DB
}

func NewBoltStore(path string) (*BoltStore, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, b := range [][]byte{bucketItems, bucketSessions, bucketMeta} {
			if _, err := tx.CreateBucketIfNotExists(b); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", b, err)
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &BoltStore{db: db}, nil
}

func (s *BoltStore) DB() *bbolt.DB {
	return s.db
}

// itemRecord keeps the insertion sequence next to the item so ListItems can
// return catalog order rather than bbolt's key order.
type itemRecord struct {
	Seq  uint64             `json:"seq"`
	Item domain.CatalogItem `json:"item"`
}

type sessionRecord struct {
	State   domain.ConversationState `json:"state"`
	SavedAt int64                    `json:"saved_at"`
}

// PutItems upserts items in a single transaction. An item that already
// exists keeps its position.
func (s *BoltStore) PutItems(items []domain.CatalogItem) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketItems)
		for _, item := range items {
			key := item.Key()
			if key == "" {
				return fmt.Errorf("%w: item has no title", domain.ErrInvalidCatalog)
			}

			rec := itemRecord{Item: item}
			if existing := b.Get([]byte(key)); existing != nil {
				var old itemRecord
				if err := json.Unmarshal(existing, &old); err == nil {
					rec.Seq = old.Seq
				}
			}
			if rec.Seq == 0 {
				seq, err := b.NextSequence()
				if err != nil {
					return err
				}
				rec.Seq = seq
			}

			data, err := json.Marshal(rec)
			if err != nil {
				return err
			}
			if err := b.Put([]byte(key), data); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *BoltStore) ListItems() ([]domain.CatalogItem, error) {
	var records []itemRecord
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketItems).ForEach(func(k, v []byte) error {
			var rec itemRecord
			if err := json.Unmarshal(v, &rec); err != nil {
				return fmt.Errorf("decode item %s: %w", k, err)
			}
			records = append(records, rec)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].Seq < records[j].Seq
	})
	items := make([]domain.CatalogItem, len(records))
	for i, rec := range records {
		items[i] = rec.Item
	}
	return items, nil
}

func (s *BoltStore) DeleteItem(key string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketItems)
		if b.Get([]byte(key)) == nil {
			return fmt.Errorf("%w: %s", domain.ErrItemNotFound, key)
		}
		return b.Delete([]byte(key))
	})
}

// ItemCount returns the number of stored items.
func (s *BoltStore) ItemCount() (int, error) {
	var n int
	err := s.db.View(func(tx *bbolt.Tx) error {
		n = tx.Bucket(bucketItems).Stats().KeyN
		return nil
	})
	return n, err
}

func (s *BoltStore) Load(ctx context.Context, sessionID string) (domain.ConversationState, error) {
	var state domain.ConversationState
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketSessions).Get([]byte(sessionID))
		if data == nil {
			return domain.ErrSessionNotFound
		}
		var rec sessionRecord
		if err := json.Unmarshal(data, &rec); err != nil {
			return fmt.Errorf("decode session %s: %w", sessionID, err)
		}
		state = rec.State
		return nil
	})
	return state, err
}

func (s *BoltStore) Save(ctx context.Context, sessionID string, state domain.ConversationState) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		data, err := json.Marshal(sessionRecord{State: state, SavedAt: time.Now().Unix()})
		if err != nil {
			return err
		}
		return tx.Bucket(bucketSessions).Put([]byte(sessionID), data)
	})
}

func (s *BoltStore) Delete(ctx context.Context, sessionID string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketSessions).Delete([]byte(sessionID))
	})
}

// PruneSessions deletes sessions saved before cutoff and returns how many
// were removed.
func (s *BoltStore) PruneSessions(cutoff time.Time) (int, error) {
	removed := 0
	err := s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketSessions)
		var stale [][]byte
		err := b.ForEach(func(k, v []byte) error {
			var rec sessionRecord
			if err := json.Unmarshal(v, &rec); err != nil || rec.SavedAt < cutoff.Unix() {
				stale = append(stale, append([]byte(nil), k...))
			}
			return nil
		})
		if err != nil {
			return err
		}
		for _, k := range stale {
			if err := b.Delete(k); err != nil {
				return err
			}
		}
		removed = len(stale)
		return nil
	})
	return removed, err
}

func (s *BoltStore) Close() error {
	return s.db.Close()
}
