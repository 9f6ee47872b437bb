// Package cache provides the per-user post-list cache. Two backends
// implement the same narrow interface: an in-process ristretto cache
// (default) and Redis.
package cache

import (
	"context"

	"postboard/internal/domain"
)

// PostCache memoizes a user's post list, keyed by user id. Entries use a
// sliding freshness window: every hit re-arms the TTL.
//
// Invalidate is an idempotent best-effort removal; removing an absent key
// is a no-op. Concurrent population of the same key may race and
// redundantly recompute.
type PostCache interface {
	// GetPosts returns the cached list for userID. ok is false on a miss.
	GetPosts(ctx context.Context, userID string) (posts []domain.Post, ok bool, err error)
	// SetPosts stores the list for userID with the configured TTL.
	SetPosts(ctx context.Context, userID string, posts []domain.Post) error
	// Invalidate removes the entry for userID.
	Invalidate(ctx context.Context, userID string) error
}
