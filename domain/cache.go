package domain

import (
	"context"
	"time"
)

// PageCache stores fully rendered responses keyed by route and query.
// Entries expire after their TTL; there is no invalidation on writes, so a
// cached page may be stale for up to the TTL window until Clear is called.
type PageCache interface {
	// Get returns the cached body for key. The boolean is false on a miss.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, body []byte, ttl time.Duration) error
	// Clear drops every cached page.
	Clear(ctx context.Context) error
}
