package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"iipviz/internal/config"
)

func TestMemoryClient_GetSetDelete(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryClient(10)

	_, err := c.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrCacheMiss)

	require.NoError(t, c.Set(ctx, "k", []byte(`{"metric":"price"}`), time.Minute))
	got, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, `{"metric":"price"}`, string(got))

	require.NoError(t, c.Delete(ctx, "k"))
	_, err = c.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrCacheMiss)
	assert.NoError(t, c.Close())
}

func TestMemoryClient_Expiry(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryClient(10)
	now := time.Date(2025, 1, 1, 8, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	require.NoError(t, c.Set(ctx, "short", []byte("a"), time.Minute))
	require.NoError(t, c.Set(ctx, "forever", []byte("b"), 0))

	now = now.Add(2 * time.Minute)

	_, err := c.Get(ctx, "short")
	assert.ErrorIs(t, err, ErrCacheMiss)
	got, err := c.Get(ctx, "forever")
	require.NoError(t, err)
	assert.Equal(t, "b", string(got))
	assert.Equal(t, 1, c.Len())
}

func TestMemoryClient_ExpiredReadKeepsConcurrentSet(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryClient(10)
	now := time.Date(2025, 1, 1, 8, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	require.NoError(t, c.Set(ctx, "k", []byte("stale"), time.Minute))
	now = now.Add(2 * time.Minute)

	// the first clock read of Get happens between its read and write locks;
	// a Set for the same key lands there
	refreshed := false
	c.now = func() time.Time {
		if !refreshed {
			refreshed = true
			require.NoError(t, c.Set(ctx, "k", []byte("fresh"), time.Hour))
		}
		return now
	}

	got, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "fresh", string(got))
	assert.Equal(t, 1, c.Len())
}

func TestMemoryClient_EvictsWhenFull(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryClient(2)

	require.NoError(t, c.Set(ctx, "first", []byte("1"), time.Minute))
	require.NoError(t, c.Set(ctx, "second", []byte("2"), time.Hour))
	require.NoError(t, c.Set(ctx, "third", []byte("3"), time.Hour))

	assert.Equal(t, 2, c.Len())
	_, err := c.Get(ctx, "first")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestMemoryClient_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryClient(1)
	value := []byte("abc")
	require.NoError(t, c.Set(ctx, "k", value, time.Minute))
	value[0] = 'x'

	got, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(got))
}

func TestNew_WithoutAddrUsesMemory(t *testing.T) {
	c, err := New(config.RedisConfig{})
	require.NoError(t, err)
	_, ok := c.(*MemoryClient)
	assert.True(t, ok)
}

func TestKey(t *testing.T) {
	a := Key("gpt-4o-mini", "fp1", "gia thue binh duong")
	assert.Equal(t, a, Key("gpt-4o-mini", "fp1", "gia thue binh duong"))
	assert.NotEqual(t, a, Key("gpt-4o-mini", "fp2", "gia thue binh duong"))
	assert.NotEqual(t, Key("ab", "c"), Key("a", "bc"))
	assert.Len(t, a, len("extract:")+64)
}
