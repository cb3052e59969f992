package redis

import (
	"context"
	"testing"
	"time"

	"wallet-ledger/internal/core/domain"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testTable() domain.RateTable {
	return domain.RateTable{
		"TWD": decimal.RequireFromString("1"),
		"USD": decimal.RequireFromString("0.0317"),
		"JPY": decimal.RequireFromString("4.68"),
	}
}

func TestRateCache_SetAndGet(t *testing.T) {
	s := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: s.Addr()})
	cache := NewRateCache(client)
	ctx := context.Background()

	// Get before set => nil
	table, err := cache.Get(ctx, "TWD")
	assert.NoError(t, err)
	assert.Nil(t, table)

	err = cache.Set(ctx, "TWD", testTable(), time.Hour)
	require.NoError(t, err)

	table, err = cache.Get(ctx, "TWD")
	require.NoError(t, err)
	require.NotNil(t, table)
	assert.True(t, table["USD"].Equal(decimal.RequireFromString("0.0317")))
	assert.True(t, table["JPY"].Equal(decimal.RequireFromString("4.68")))
}

func TestRateCache_TTLExpiry(t *testing.T) {
	s := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: s.Addr()})
	cache := NewRateCache(client)
	ctx := context.Background()

	err := cache.Set(ctx, "USD", testTable(), time.Hour)
	require.NoError(t, err)

	// Fast-forward time in miniredis
	s.FastForward(2 * time.Hour)

	table, err := cache.Get(ctx, "USD")
	assert.NoError(t, err)
	assert.Nil(t, table, "expired key should return nil")
}

func TestRateCache_BasesAreIndependent(t *testing.T) {
	s := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: s.Addr()})
	cache := NewRateCache(client)
	ctx := context.Background()

	err := cache.Set(ctx, "TWD", testTable(), time.Hour)
	require.NoError(t, err)

	table, err := cache.Get(ctx, "EUR")
	assert.NoError(t, err)
	assert.Nil(t, table)
}
