package cache

import (
	"context"
	"time"
)

const (
	// AnonymousFeedNamespace holds the capped feed served to unauthenticated callers.
	AnonymousFeedNamespace = "feed:anonymous"
)

const (
	AnonymousFeedTTL = 30 * time.Second
)

// InvalidateFeed retires cached feed pages after any post, comment or like write.
func (c *Cache) InvalidateFeed(ctx context.Context) {
	c.Bump(ctx, AnonymousFeedNamespace)
}
