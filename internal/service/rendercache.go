package service

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const renderCacheTTL = 10 * time.Minute

// RenderCache stores the fully rendered HTML of shared notes in Redis,
// keyed by public identifier. Share toggles and note updates invalidate
// the entry, so a stale page is never served after an unshare. A nil
// Redis client disables the cache entirely and every call degrades to a
// miss.
type RenderCache struct {
	rdb *redis.Client
}

func NewRenderCache(rdb *redis.Client) *RenderCache {
	return &RenderCache{rdb: rdb}
}

func key(publicID string) string { return "shared:html:" + publicID }

// Get returns the cached page for publicID, or "" on a miss (including
// Redis being unavailable).
func (c *RenderCache) Get(ctx context.Context, publicID string) string {
	if c.rdb == nil {
		return ""
	}
	v, err := c.rdb.Get(ctx, key(publicID)).Result()
	if err != nil {
		return ""
	}
	return v
}

// Set stores a rendered page. Errors are ignored: the cache is an
// optimization, not a source of truth.
func (c *RenderCache) Set(ctx context.Context, publicID, html string) {
	if c.rdb == nil {
		return
	}
	_ = c.rdb.Set(ctx, key(publicID), html, renderCacheTTL).Err()
}

// Invalidate drops the cached page for publicID.
func (c *RenderCache) Invalidate(ctx context.Context, publicID string) {
	if c.rdb == nil {
		return
	}
	_ = c.rdb.Del(ctx, key(publicID)).Err()
}
