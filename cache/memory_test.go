package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/routekit/cache"
)

func TestMemoryBasicOperations(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("set and get", func(t *testing.T) {
		t.Parallel()

		c := cache.NewMemory[string](cache.WithCleanupInterval(0))
		defer c.Close()

		require.NoError(t, c.Set(ctx, "key", "value", time.Minute))

		v, err := c.Get(ctx, "key")
		require.NoError(t, err)
		assert.Equal(t, "value", v)
	})

	t.Run("missing key returns not found", func(t *testing.T) {
		t.Parallel()

		c := cache.NewMemory[string](cache.WithCleanupInterval(0))
		defer c.Close()

		_, err := c.Get(ctx, "missing")
		assert.ErrorIs(t, err, cache.ErrNotFound)
	})

	t.Run("set overwrites existing value", func(t *testing.T) {
		t.Parallel()

		c := cache.NewMemory[int](cache.WithCleanupInterval(0))
		defer c.Close()

		require.NoError(t, c.Set(ctx, "n", 1, time.Minute))
		require.NoError(t, c.Set(ctx, "n", 2, time.Minute))

		v, err := c.Get(ctx, "n")
		require.NoError(t, err)
		assert.Equal(t, 2, v)
	})

	t.Run("delete removes the key", func(t *testing.T) {
		t.Parallel()

		c := cache.NewMemory[string](cache.WithCleanupInterval(0))
		defer c.Close()

		require.NoError(t, c.Set(ctx, "key", "value", time.Minute))
		require.NoError(t, c.Delete(ctx, "key"))

		_, err := c.Get(ctx, "key")
		assert.ErrorIs(t, err, cache.ErrNotFound)
	})

	t.Run("delete of a missing key is a no-op", func(t *testing.T) {
		t.Parallel()

		c := cache.NewMemory[string](cache.WithCleanupInterval(0))
		defer c.Close()

		assert.NoError(t, c.Delete(ctx, "missing"))
	})

	t.Run("has reports presence", func(t *testing.T) {
		t.Parallel()

		c := cache.NewMemory[string](cache.WithCleanupInterval(0))
		defer c.Close()

		require.NoError(t, c.Set(ctx, "key", "value", time.Minute))

		ok, err := c.Has(ctx, "key")
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = c.Has(ctx, "missing")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("clear removes everything", func(t *testing.T) {
		t.Parallel()

		c := cache.NewMemory[string](cache.WithCleanupInterval(0))
		defer c.Close()

		require.NoError(t, c.Set(ctx, "a", "1", time.Minute))
		require.NoError(t, c.Set(ctx, "b", "2", time.Minute))
		require.NoError(t, c.Clear(ctx))

		_, err := c.Get(ctx, "a")
		assert.ErrorIs(t, err, cache.ErrNotFound)
		_, err = c.Get(ctx, "b")
		assert.ErrorIs(t, err, cache.ErrNotFound)
	})

	t.Run("struct values", func(t *testing.T) {
		t.Parallel()

		type user struct {
			Name string
			Age  int
		}

		c := cache.NewMemory[user](cache.WithCleanupInterval(0))
		defer c.Close()

		require.NoError(t, c.Set(ctx, "u", user{Name: "alice", Age: 30}, time.Minute))

		v, err := c.Get(ctx, "u")
		require.NoError(t, err)
		assert.Equal(t, user{Name: "alice", Age: 30}, v)
	})
}

func TestMemoryTTL(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("entries expire", func(t *testing.T) {
		t.Parallel()

		c := cache.NewMemory[string](cache.WithCleanupInterval(0))
		defer c.Close()

		require.NoError(t, c.Set(ctx, "fleeting", "value", 20*time.Millisecond))
		time.Sleep(40 * time.Millisecond)

		_, err := c.Get(ctx, "fleeting")
		assert.ErrorIs(t, err, cache.ErrNotFound)

		ok, err := c.Has(ctx, "fleeting")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("zero ttl uses the default", func(t *testing.T) {
		t.Parallel()

		c := cache.NewMemory[string](
			cache.WithDefaultTTL(20*time.Millisecond),
			cache.WithCleanupInterval(0),
		)
		defer c.Close()

		require.NoError(t, c.Set(ctx, "key", "value", 0))

		_, err := c.Get(ctx, "key")
		require.NoError(t, err)

		time.Sleep(40 * time.Millisecond)
		_, err = c.Get(ctx, "key")
		assert.ErrorIs(t, err, cache.ErrNotFound)
	})

	t.Run("negative ttl never expires", func(t *testing.T) {
		t.Parallel()

		c := cache.NewMemory[string](
			cache.WithDefaultTTL(10*time.Millisecond),
			cache.WithCleanupInterval(0),
		)
		defer c.Close()

		require.NoError(t, c.Set(ctx, "pinned", "value", -1))
		time.Sleep(30 * time.Millisecond)

		v, err := c.Get(ctx, "pinned")
		require.NoError(t, err)
		assert.Equal(t, "value", v)
	})

	t.Run("janitor sweeps expired entries", func(t *testing.T) {
		t.Parallel()

		c := cache.NewMemory[string](cache.WithCleanupInterval(10 * time.Millisecond))
		defer c.Close()

		require.NoError(t, c.Set(ctx, "swept", "value", 10*time.Millisecond))

		assert.Eventually(t, func() bool {
			ok, err := c.Has(ctx, "swept")
			return err == nil && !ok
		}, time.Second, 10*time.Millisecond)
	})
}

func TestMemoryLRUEviction(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("evicts the least recently used entry", func(t *testing.T) {
		t.Parallel()

		c := cache.NewMemory[int](
			cache.WithMaxEntries(2),
			cache.WithCleanupInterval(0),
		)
		defer c.Close()

		require.NoError(t, c.Set(ctx, "a", 1, time.Minute))
		require.NoError(t, c.Set(ctx, "b", 2, time.Minute))

		// Touch "a" so "b" becomes the eviction candidate.
		_, err := c.Get(ctx, "a")
		require.NoError(t, err)

		require.NoError(t, c.Set(ctx, "c", 3, time.Minute))

		_, err = c.Get(ctx, "b")
		assert.ErrorIs(t, err, cache.ErrNotFound)
		_, err = c.Get(ctx, "a")
		assert.NoError(t, err)
		_, err = c.Get(ctx, "c")
		assert.NoError(t, err)
	})

	t.Run("overwriting does not evict", func(t *testing.T) {
		t.Parallel()

		c := cache.NewMemory[int](
			cache.WithMaxEntries(2),
			cache.WithCleanupInterval(0),
		)
		defer c.Close()

		require.NoError(t, c.Set(ctx, "a", 1, time.Minute))
		require.NoError(t, c.Set(ctx, "b", 2, time.Minute))
		require.NoError(t, c.Set(ctx, "a", 10, time.Minute))

		_, err := c.Get(ctx, "b")
		assert.NoError(t, err)
	})
}

func TestMemoryClose(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("operations after close fail", func(t *testing.T) {
		t.Parallel()

		c := cache.NewMemory[string](cache.WithCleanupInterval(0))
		require.NoError(t, c.Close())

		assert.ErrorIs(t, c.Set(ctx, "k", "v", time.Minute), cache.ErrClosed)
		assert.ErrorIs(t, c.Delete(ctx, "k"), cache.ErrClosed)
		assert.ErrorIs(t, c.Clear(ctx), cache.ErrClosed)
	})

	t.Run("close is idempotent", func(t *testing.T) {
		t.Parallel()

		c := cache.NewMemory[string]()
		require.NoError(t, c.Close())
		assert.NoError(t, c.Close())
	})
}
