package cache

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/dgraph-io/ristretto/v2"

	"postboard/internal/domain"
)

const (
	memoryNumCounters = 10_000
	memoryMaxEntries  = 1_000
)

// memoryEntry holds a cached list with its own sliding deadline. Reads
// extend the deadline in place instead of re-inserting the value, so a
// re-arm racing an Invalidate can only touch an already-unreachable entry
// and can never resurrect pre-write data.
type memoryEntry struct {
	posts     []domain.Post
	expiresAt atomic.Int64 // unix nanoseconds
}

// MemoryCache is the in-process PostCache backend on top of ristretto.
type MemoryCache struct {
	c   *ristretto.Cache[string, *memoryEntry]
	ttl time.Duration
}

// NewMemoryCache returns a MemoryCache with the given entry TTL.
func NewMemoryCache(ttl time.Duration) (*MemoryCache, error) {
	c, err := ristretto.NewCache(&ristretto.Config[string, *memoryEntry]{
		NumCounters: memoryNumCounters,
		MaxCost:     memoryMaxEntries,
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}
	return &MemoryCache{c: c, ttl: ttl}, nil
}

// GetPosts returns the cached list and re-arms the deadline on a hit.
func (m *MemoryCache) GetPosts(_ context.Context, userID string) ([]domain.Post, bool, error) {
	e, ok := m.c.Get(userID)
	if !ok {
		return nil, false, nil
	}
	now := time.Now()
	if now.UnixNano() > e.expiresAt.Load() {
		m.c.Del(userID)
		return nil, false, nil
	}
	// Sliding window: each read extends the entry's lifetime.
	e.expiresAt.Store(now.Add(m.ttl).UnixNano())
	return e.posts, true, nil
}

// SetPosts stores the list. Wait flushes ristretto's set buffer so the
// entry is visible to the next read; writes stay ordered with respect to
// a following Invalidate.
func (m *MemoryCache) SetPosts(_ context.Context, userID string, posts []domain.Post) error {
	e := &memoryEntry{posts: posts}
	e.expiresAt.Store(time.Now().Add(m.ttl).UnixNano())
	m.c.Set(userID, e, 1)
	m.c.Wait()
	return nil
}

// Invalidate removes the entry; absent keys are a no-op.
func (m *MemoryCache) Invalidate(_ context.Context, userID string) error {
	m.c.Del(userID)
	m.c.Wait()
	return nil
}

// Close releases the underlying cache.
func (m *MemoryCache) Close() {
	m.c.Close()
}
