package oracle

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingOracle struct {
	calls int
	err   error
}

func (c *countingOracle) VariableGrowth(_ context.Context, from, to int64) (float64, error) {
	c.calls++
	if c.err != nil {
		return 0, c.err
	}
	return float64(to-from) / 1e6, nil
}

type brokenStore struct{}

func (brokenStore) Get(context.Context, string) (float64, bool, error) {
	return 0, false, errors.New("store down")
}

func (brokenStore) Set(context.Context, string, float64) error { return errors.New("store down") }

func fixedNow(unix int64) func() time.Time {
	return func() time.Time { return time.Unix(unix, 0) }
}

func TestCachedMemoizesElapsedIntervals(t *testing.T) {
	t.Parallel()

	inner := &countingOracle{}
	store := NewMemoryStore()
	c := NewCached(inner, store, "pool", zerolog.Nop())
	c.Now = fixedNow(10_000)

	for i := 0; i < 3; i++ {
		g, err := c.VariableGrowth(context.Background(), 1000, 2000)
		require.NoError(t, err)
		assert.InDelta(t, 0.001, g, 1e-15)
	}
	assert.Equal(t, 1, inner.calls)
	assert.Equal(t, 1, store.Len())
}

func TestCachedSkipsRecentIntervals(t *testing.T) {
	t.Parallel()

	inner := &countingOracle{}
	store := NewMemoryStore()
	c := NewCached(inner, store, "pool", zerolog.Nop())
	c.Now = fixedNow(10_000)
	c.MinAge = time.Hour

	_, err := c.VariableGrowth(context.Background(), 1000, 9000)
	require.NoError(t, err)
	_, err = c.VariableGrowth(context.Background(), 1000, 9000)
	require.NoError(t, err)

	assert.Equal(t, 2, inner.calls)
	assert.Equal(t, 0, store.Len())
}

func TestCachedDoesNotStoreFailures(t *testing.T) {
	t.Parallel()

	rpcErr := errors.New("timeout")
	inner := &countingOracle{err: rpcErr}
	store := NewMemoryStore()
	c := NewCached(inner, store, "pool", zerolog.Nop())
	c.Now = fixedNow(10_000)

	_, err := c.VariableGrowth(context.Background(), 1, 2)
	assert.ErrorIs(t, err, rpcErr)
	assert.Equal(t, 0, store.Len())
}

func TestCachedFallsThroughBrokenStore(t *testing.T) {
	t.Parallel()

	inner := &countingOracle{}
	c := NewCached(inner, brokenStore{}, "pool", zerolog.Nop())
	c.Now = fixedNow(10_000)

	g, err := c.VariableGrowth(context.Background(), 0, 500)
	require.NoError(t, err)
	assert.InDelta(t, 0.0005, g, 1e-15)
	assert.Equal(t, 1, inner.calls)
}

func TestRedisStoreUnreachable(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err := NewRedisStore(ctx, RedisConfig{Addr: "127.0.0.1:1"})
	assert.Error(t, err)
}

func TestRedisStoreRoundTrip(t *testing.T) {
	addr := os.Getenv("SWAPFLOW_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("SWAPFLOW_TEST_REDIS_ADDR not set")
	}

	ctx := context.Background()
	store, err := NewRedisStore(ctx, RedisConfig{Addr: addr, TTL: time.Minute})
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	key := "swapflow-test:growth:1:2"
	_, ok, err := store.Get(ctx, key+":missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Set(ctx, key, 0.0123))
	v, ok, err := store.Get(ctx, key)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 0.0123, v)
}
