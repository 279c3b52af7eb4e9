package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCache_SetGetDelete(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()

	require.NoError(t, c.Set(ctx, "k", []byte(`{"a":1}`), 0))

	var got []byte
	require.NoError(t, c.Get(ctx, "k", &got))
	assert.JSONEq(t, `{"a":1}`, string(got))

	require.NoError(t, c.Delete(ctx, "k"))
	assert.ErrorIs(t, c.Get(ctx, "k", &got), ErrCacheMiss)
}

func TestMemoryCache_Expiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewMemoryCache()
	c.now = func() time.Time { return now }

	require.NoError(t, c.Set(ctx, "k", "v", time.Minute))

	var got string
	now = now.Add(59 * time.Second)
	require.NoError(t, c.Get(ctx, "k", &got))
	assert.Equal(t, "v", got)

	now = now.Add(time.Second)
	assert.ErrorIs(t, c.Get(ctx, "k", &got), ErrCacheMiss)
}

func TestMemoryCache_DeletePattern(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()
	for _, k := range []string{"doc:exercises/a", "doc:exercises/b", "doc:results/x/y"} {
		require.NoError(t, c.Set(ctx, k, 1, 0))
	}

	require.NoError(t, c.DeletePattern(ctx, "doc:exercises/*"))

	var v int
	assert.ErrorIs(t, c.Get(ctx, "doc:exercises/a", &v), ErrCacheMiss)
	assert.ErrorIs(t, c.Get(ctx, "doc:exercises/b", &v), ErrCacheMiss)
	assert.NoError(t, c.Get(ctx, "doc:results/x/y", &v))
}
