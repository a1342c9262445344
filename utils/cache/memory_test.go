package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCacheExpiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewMemoryCache()
	c.SetClock(func() time.Time { return now })

	require.NoError(t, c.Set(ctx, "k", 42, time.Minute))
	v, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "42", v)

	ttl, err := c.TTL(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, time.Minute, ttl)

	now = now.Add(time.Minute)
	_, err = c.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrNotFound)

	ok, err := c.Exists(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryCacheTTLConventions(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()

	ttl, _ := c.TTL(ctx, "missing")
	assert.Equal(t, -2*time.Second, ttl)

	require.NoError(t, c.Set(ctx, "forever", "x", 0))
	ttl, _ = c.TTL(ctx, "forever")
	assert.Equal(t, -1*time.Second, ttl)
}

func TestMemoryCacheIncrementAndExpire(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewMemoryCache()
	c.SetClock(func() time.Time { return now })

	for want := int64(1); want <= 3; want++ {
		n, err := c.Increment(ctx, "attempts")
		require.NoError(t, err)
		assert.Equal(t, want, n)
	}

	require.NoError(t, c.Expire(ctx, "attempts", time.Second))
	require.NoError(t, c.Expire(ctx, "absent", time.Second), "expiring a missing key is a no-op")

	now = now.Add(2 * time.Second)
	n, err := c.Increment(ctx, "attempts")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n, "an expired counter starts over")

	require.NoError(t, c.Delete(ctx, "attempts", "absent"))
	ok, _ := c.Exists(ctx, "attempts")
	assert.False(t, ok)
}
