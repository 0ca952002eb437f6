package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type feedItem struct {
	ID      uint   `json:"id"`
	Content string `json:"content"`
}

func newTestCache(t *testing.T) (*miniredis.Miniredis, *Cache) {
	t.Helper()
	mr := miniredis.RunT(t)
	client, err := NewClient("redis://" + mr.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return mr, New(client)
}

func TestAside_MissThenHit(t *testing.T) {
	mr, c := newTestCache(t)
	ctx := context.Background()
	calls := 0
	fetch := func(dest *[]feedItem) func() error {
		return func() error {
			calls++
			*dest = []feedItem{{ID: 1, Content: "hello"}}
			return nil
		}
	}

	var first []feedItem
	hit, err := c.Aside(ctx, AnonymousFeedNamespace, &first, AnonymousFeedTTL, fetch(&first))
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, 1, calls)
	page := PageKey(AnonymousFeedNamespace, 0)
	assert.True(t, mr.Exists(page))
	assert.Equal(t, AnonymousFeedTTL, mr.TTL(page))

	var second []feedItem
	hit, err = c.Aside(ctx, AnonymousFeedNamespace, &second, AnonymousFeedTTL, fetch(&second))
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, 1, calls)
	assert.Equal(t, first, second)
}

func TestAside_FetchErrorNotCached(t *testing.T) {
	mr, c := newTestCache(t)
	var dest []feedItem
	_, err := c.Aside(context.Background(), AnonymousFeedNamespace, &dest, time.Minute, func() error {
		return errors.New("db down")
	})
	assert.Error(t, err)
	assert.False(t, mr.Exists(PageKey(AnonymousFeedNamespace, 0)))
}

func TestAside_RedisDownFallsBackToFetch(t *testing.T) {
	mr, c := newTestCache(t)
	mr.Close()

	var dest []feedItem
	hit, err := c.Aside(context.Background(), AnonymousFeedNamespace, &dest, time.Minute, func() error {
		dest = []feedItem{{ID: 2}}
		return nil
	})
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Len(t, dest, 1)
}

func TestInvalidateFeed_RetiresCachedPage(t *testing.T) {
	mr, c := newTestCache(t)
	ctx := context.Background()

	var dest []feedItem
	_, err := c.Aside(ctx, AnonymousFeedNamespace, &dest, time.Minute, func() error {
		dest = []feedItem{{ID: 1}}
		return nil
	})
	require.NoError(t, err)

	c.InvalidateFeed(ctx)
	gen, err := mr.Get(GenerationKey(AnonymousFeedNamespace))
	require.NoError(t, err)
	assert.Equal(t, "1", gen)

	hit, err := c.Aside(ctx, AnonymousFeedNamespace, &dest, time.Minute, func() error {
		dest = []feedItem{{ID: 2}}
		return nil
	})
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, []feedItem{{ID: 2}}, dest)
}

func TestAside_InvalidationDuringFetchIsNotServedLater(t *testing.T) {
	_, c := newTestCache(t)
	ctx := context.Background()

	// The fetch reads the old rows, then a writer commits and invalidates
	// before the fetch result reaches Redis.
	var inFlight []feedItem
	_, err := c.Aside(ctx, AnonymousFeedNamespace, &inFlight, time.Minute, func() error {
		inFlight = []feedItem{{ID: 1, Content: "deleted"}}
		c.InvalidateFeed(ctx)
		return nil
	})
	require.NoError(t, err)

	var next []feedItem
	hit, err := c.Aside(ctx, AnonymousFeedNamespace, &next, time.Minute, func() error {
		next = []feedItem{}
		return nil
	})
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Empty(t, next)
}

func TestAside_FailedInvalidationRetriedAfterRecovery(t *testing.T) {
	mr, c := newTestCache(t)
	ctx := context.Background()

	var dest []feedItem
	_, err := c.Aside(ctx, AnonymousFeedNamespace, &dest, time.Minute, func() error {
		dest = []feedItem{{ID: 1, Content: "stale"}}
		return nil
	})
	require.NoError(t, err)

	mr.Close()
	c.InvalidateFeed(ctx)

	// While Redis is down reads go straight to fetch.
	hit, err := c.Aside(ctx, AnonymousFeedNamespace, &dest, time.Minute, func() error {
		dest = []feedItem{}
		return nil
	})
	require.NoError(t, err)
	assert.False(t, hit)

	require.NoError(t, mr.Restart())
	assert.True(t, mr.Exists(PageKey(AnonymousFeedNamespace, 0)), "old page survives the outage")

	calls := 0
	hit, err = c.Aside(ctx, AnonymousFeedNamespace, &dest, time.Minute, func() error {
		calls++
		dest = []feedItem{}
		return nil
	})
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, 1, calls)
	assert.Empty(t, dest)

	gen, err := mr.Get(GenerationKey(AnonymousFeedNamespace))
	require.NoError(t, err)
	assert.Equal(t, "1", gen)
}

func TestNilCache(t *testing.T) {
	var c *Cache
	assert.False(t, c.Enabled())
	assert.False(t, New(nil).Enabled())

	called := false
	var dest []feedItem
	hit, err := c.Aside(context.Background(), AnonymousFeedNamespace, &dest, time.Minute, func() error {
		called = true
		return nil
	})
	require.NoError(t, err)
	assert.False(t, hit)
	assert.True(t, called)
	c.InvalidateFeed(context.Background())
}

func TestConnect(t *testing.T) {
	assert.Nil(t, Connect(context.Background(), ""))

	mr := miniredis.RunT(t)
	client := Connect(context.Background(), mr.Addr())
	require.NotNil(t, client)
	defer client.Close()
	assert.NoError(t, client.Ping(context.Background()).Err())
}
