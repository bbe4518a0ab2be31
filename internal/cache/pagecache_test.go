package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryPageCacheHitAndMiss(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryPageCache("index_page", 20*time.Second)

	_, err := c.Get(ctx, 1)
	assert.ErrorIs(t, err, ErrCacheMiss)

	require.NoError(t, c.Set(ctx, 1, []byte(`{"posts":[]}`)))

	body, err := c.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"posts":[]}`), body)

	// Pages do not collide on one entry.
	_, err = c.Get(ctx, 2)
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestMemoryPageCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryPageCache("index_page", 20*time.Second)

	base := time.Now()
	c.now = func() time.Time { return base }

	require.NoError(t, c.Set(ctx, 1, []byte("stale")))

	// Still inside the window.
	c.now = func() time.Time { return base.Add(19 * time.Second) }
	body, err := c.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []byte("stale"), body)

	// Window lapsed.
	c.now = func() time.Time { return base.Add(21 * time.Second) }
	_, err = c.Get(ctx, 1)
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestMemoryPageCacheEvictsExpiredEntries(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryPageCache("index_page", 20*time.Second)

	base := time.Now()
	c.now = func() time.Time { return base }

	for page := 1; page <= 50; page++ {
		require.NoError(t, c.Set(ctx, page, []byte("stale")))
	}
	assert.Len(t, c.entries, 50)

	c.now = func() time.Time { return base.Add(21 * time.Second) }

	// A miss on an expired key drops that entry.
	_, err := c.Get(ctx, 7)
	assert.ErrorIs(t, err, ErrCacheMiss)
	assert.Len(t, c.entries, 49)

	// A write sweeps everything else that has lapsed.
	require.NoError(t, c.Set(ctx, 1, []byte("fresh")))
	assert.Len(t, c.entries, 1)

	body, err := c.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []byte("fresh"), body)
}

func TestMemoryPageCacheClear(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryPageCache("index_page", time.Minute)

	require.NoError(t, c.Set(ctx, 1, []byte("a")))
	require.NoError(t, c.Set(ctx, 2, []byte("b")))

	require.NoError(t, c.Clear(ctx))

	_, err := c.Get(ctx, 1)
	assert.ErrorIs(t, err, ErrCacheMiss)
	_, err = c.Get(ctx, 2)
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestMemoryPageCacheSetReplacesEntry(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryPageCache("index_page", time.Minute)

	require.NoError(t, c.Set(ctx, 1, []byte("old")))
	require.NoError(t, c.Set(ctx, 1, []byte("new")))

	body, err := c.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []byte("new"), body)
}
