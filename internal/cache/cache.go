package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"fakex/internal/middleware"

	"github.com/redis/go-redis/v9"
)

// Cache is a JSON cache over Redis. A nil *Cache or one without a client
// behaves as an always-missing cache.
type Cache struct {
	client *redis.Client

	mu sync.Mutex
	// pending holds namespaces whose last Bump did not reach Redis.
	pending map[string]struct{}
}

// New wraps client; client may be nil.
func New(client *redis.Client) *Cache {
	return &Cache{client: client}
}

// Enabled reports whether a Redis client is configured.
func (c *Cache) Enabled() bool {
	return c != nil && c.client != nil
}

// GetJSON reads key into dest. It returns (false, nil) on a miss.
func (c *Cache) GetJSON(ctx context.Context, key string, dest any) (bool, error) {
	if !c.Enabled() {
		return false, nil
	}
	s, err := c.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal([]byte(s), dest); err != nil {
		return false, err
	}
	return true, nil
}

// SetJSON marshals v and stores it under key with ttl.
func (c *Cache) SetJSON(ctx context.Context, key string, v any, ttl time.Duration) error {
	if !c.Enabled() {
		return nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, b, ttl).Err()
}

// GenerationKey holds the invalidation counter for namespace ns.
func GenerationKey(ns string) string {
	return ns + ":gen"
}

// PageKey is where a value cached under generation gen of ns lives.
func PageKey(ns string, gen int64) string {
	return fmt.Sprintf("%s:v%d", ns, gen)
}

// Aside serves ns from Redis, or calls fetch to fill dest and stores the result.
// Values are stored under the generation read before fetch runs, so a fetch
// that overlaps a Bump can only write a page no later reader looks at.
// Cache failures are logged and never fail the read. It reports whether dest
// came from the cache.
func (c *Cache) Aside(ctx context.Context, ns string, dest any, ttl time.Duration, fetch func() error) (bool, error) {
	if !c.Enabled() {
		return false, fetch()
	}

	gen, err := c.generation(ctx, ns)
	if err != nil {
		middleware.Logger.WarnContext(ctx, "cache bypassed", "namespace", ns, "error", err)
		return false, fetch()
	}
	key := PageKey(ns, gen)

	found, err := c.GetJSON(ctx, key, dest)
	if err != nil {
		middleware.Logger.WarnContext(ctx, "cache read failed", "key", key, "error", err)
	}
	if found {
		return true, nil
	}

	if err := fetch(); err != nil {
		return false, err
	}

	if err := c.SetJSON(ctx, key, dest, ttl); err != nil {
		middleware.Logger.WarnContext(ctx, "cache write failed", "key", key, "error", err)
	}
	return false, nil
}

// Bump invalidates every page of ns by advancing its generation. A failed
// bump is remembered and retried before ns is read again; until it succeeds
// this process serves ns from fetch only.
func (c *Cache) Bump(ctx context.Context, ns string) {
	if !c.Enabled() {
		return
	}
	if err := c.client.Incr(ctx, GenerationKey(ns)).Err(); err != nil {
		middleware.Logger.WarnContext(ctx, "cache invalidation failed", "namespace", ns, "error", err)
		c.setPending(ns, true)
		return
	}
	c.setPending(ns, false)
}

func (c *Cache) generation(ctx context.Context, ns string) (int64, error) {
	if c.isPending(ns) {
		if err := c.client.Incr(ctx, GenerationKey(ns)).Err(); err != nil {
			return 0, fmt.Errorf("retry invalidation: %w", err)
		}
		c.setPending(ns, false)
	}

	gen, err := c.client.Get(ctx, GenerationKey(ns)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

func (c *Cache) isPending(ns string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.pending[ns]
	return ok
}

func (c *Cache) setPending(ns string, pending bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !pending {
		delete(c.pending, ns)
		return
	}
	if c.pending == nil {
		c.pending = make(map[string]struct{})
	}
	c.pending[ns] = struct{}{}
}
