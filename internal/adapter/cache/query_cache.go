package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"

	"chatsearch/internal/domain"
	"chatsearch/internal/port"
)

type QueryCache struct {
	mu       sync.Mutex
	entries  map[string]*cacheEntry
	order    []string
	maxSize  int
	ttl      time.Duration
	indexGen uint64
	now      func() time.Time
}

type cacheEntry struct {
	hits      []domain.RetrievalHit
	timestamp time.Time
	indexGen  uint64
}

func NewQueryCache(maxSize int, ttl time.Duration) *QueryCache {
	if maxSize <= 0 {
		maxSize = 100
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &QueryCache{
		entries: make(map[string]*cacheEntry),
		order:   make([]string, 0, maxSize),
		maxSize: maxSize,
		ttl:     ttl,
		now:     time.Now,
	}
}

func cacheKey(query string) string {
	hash := sha256.Sum256([]byte(query))
	return hex.EncodeToString(hash[:16])
}

// Get returns a copy of the cached hits for query. Entries older than the
// TTL or from an earlier index generation are misses.
func (c *QueryCache) Get(query string) ([]domain.RetrievalHit, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := cacheKey(query)
	entry, exists := c.entries[key]
	if !exists {
		return nil, false
	}

	if c.now().Sub(entry.timestamp) > c.ttl || entry.indexGen != c.indexGen {
		delete(c.entries, key)
		c.removeFromOrder(key)
		return nil, false
	}

	c.moveToEnd(key)
	return copyHits(entry.hits), true
}

func (c *QueryCache) Put(query string, hits []domain.RetrievalHit) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := cacheKey(query)
	entry := &cacheEntry{
		hits:      copyHits(hits),
		timestamp: c.now(),
		indexGen:  c.indexGen,
	}

	if _, exists := c.entries[key]; exists {
		c.entries[key] = entry
		c.moveToEnd(key)
		return
	}

	if len(c.entries) >= c.maxSize {
		c.evictOldest()
	}

	c.entries[key] = entry
	c.order = append(c.order, key)
}

// Invalidate drops every entry and bumps the index generation, so a Put
// racing with a re-index cannot resurrect stale hits.
func (c *QueryCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]*cacheEntry)
	c.order = c.order[:0]
	c.indexGen++
}

func (c *QueryCache) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Generation returns the current index generation.
func (c *QueryCache) Generation() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.indexGen
}

func (c *QueryCache) evictOldest() {
	if len(c.order) == 0 {
		return
	}
	oldest := c.order[0]
	c.order = c.order[1:]
	delete(c.entries, oldest)
}

func (c *QueryCache) moveToEnd(key string) {
	c.removeFromOrder(key)
	c.order = append(c.order, key)
}

func (c *QueryCache) removeFromOrder(key string) {
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			return
		}
	}
}

func copyHits(hits []domain.RetrievalHit) []domain.RetrievalHit {
	if hits == nil {
		return nil
	}
	out := make([]domain.RetrievalHit, len(hits))
	copy(out, hits)
	return out
}

// CachedRetriever serves repeated queries from a QueryCache. Errors are not
// cached.
type CachedRetriever struct {
	retriever port.Retriever
	cache     *QueryCache
}

func NewCachedRetriever(retriever port.Retriever, cache *QueryCache) *CachedRetriever {
	return &CachedRetriever{
		retriever: retriever,
		cache:     cache,
	}
}

func (r *CachedRetriever) Search(ctx context.Context, query string) ([]domain.RetrievalHit, error) {
	if hits, hit := r.cache.Get(query); hit {
		return hits, nil
	}

	gen := r.cache.Generation()
	hits, err := r.retriever.Search(ctx, query)
	if err != nil {
		return nil, err
	}

	// Skip the store if the catalog was re-indexed while searching.
	if r.cache.Generation() == gen {
		r.cache.Put(query, hits)
	}

	return hits, nil
}

// Invalidate clears the underlying cache.
func (r *CachedRetriever) Invalidate() {
	r.cache.Invalidate()
}
