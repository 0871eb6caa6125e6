package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func useMiniredis(t *testing.T) *miniredis.Miniredis {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	SetClient(rdb)
	t.Cleanup(func() {
		SetClient(nil)
		_ = rdb.Close()
	})
	return mr
}

func TestAside_CachesFetchResult(t *testing.T) {
	useMiniredis(t)
	ctx := context.Background()

	calls := 0
	fetch := func(dest *[]int) func() error {
		return func() error {
			calls++
			*dest = []int{3, 1, 2}
			return nil
		}
	}

	var first []int
	require.NoError(t, Aside(ctx, "k", &first, time.Minute, fetch(&first)))
	var second []int
	require.NoError(t, Aside(ctx, "k", &second, time.Minute, fetch(&second)))

	assert.Equal(t, []int{3, 1, 2}, second)
	assert.Equal(t, 1, calls)
}

func TestAside_ZeroTTLBypassesCache(t *testing.T) {
	useMiniredis(t)
	calls := 0
	var dest int
	for i := 0; i < 2; i++ {
		require.NoError(t, Aside(context.Background(), "k", &dest, 0, func() error {
			calls++
			return nil
		}))
	}
	assert.Equal(t, 2, calls)
}

func TestAside_WithoutRedis(t *testing.T) {
	SetClient(nil)
	sentinel := errors.New("db down")
	var dest int
	err := Aside(context.Background(), "k", &dest, time.Minute, func() error { return sentinel })
	assert.ErrorIs(t, err, sentinel)
}

func TestReportCooldown_ClaimOnce(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	ctx := context.Background()

	cd := NewReportCooldown(rdb, 30*24*time.Hour)
	require.NotNil(t, cd)

	ok, err := cd.Claim(ctx, "198.51.100.1", "post", 7)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = cd.Claim(ctx, "198.51.100.1", "post", 7)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = cd.Claim(ctx, "198.51.100.2", "post", 7)
	require.NoError(t, err)
	assert.True(t, ok)

	mr.FastForward(31 * 24 * time.Hour)
	ok, err = cd.Claim(ctx, "198.51.100.1", "post", 7)
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, cd.Release(ctx, "198.51.100.1", "post", 7))
	ok, err = cd.Claim(ctx, "198.51.100.1", "post", 7)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestNewReportCooldown_NilClient(t *testing.T) {
	assert.Nil(t, NewReportCooldown(nil, time.Hour))
}
