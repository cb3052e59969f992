package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"wallet-ledger/internal/core/domain"

	goredis "github.com/redis/go-redis/v9"
)

// RateCache implements ports.RateCache using Redis. One key holds the full
// conversion table for a base currency, JSON-encoded.
type RateCache struct {
	client *goredis.Client
	prefix string
}

// NewRateCache creates a new Redis-backed exchange-rate cache.
func NewRateCache(client *goredis.Client) *RateCache {
	return &RateCache{
		client: client,
		prefix: "rates:",
	}
}

// Get retrieves a cached rate table for a base currency.
// Returns nil, nil if the key does not exist.
func (c *RateCache) Get(ctx context.Context, base string) (domain.RateTable, error) {
	val, err := c.client.Get(ctx, c.prefix+base).Bytes()
	if err != nil {
		if err == goredis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("redis rates get: %w", err)
	}

	var table domain.RateTable
	if err := json.Unmarshal(val, &table); err != nil {
		return nil, fmt.Errorf("decode cached rates: %w", err)
	}
	return table, nil
}

// Set stores a rate table for a base currency with TTL.
func (c *RateCache) Set(ctx context.Context, base string, rates domain.RateTable, ttl time.Duration) error {
	val, err := json.Marshal(rates)
	if err != nil {
		return fmt.Errorf("encode rates: %w", err)
	}
	if err := c.client.Set(ctx, c.prefix+base, val, ttl).Err(); err != nil {
		return fmt.Errorf("redis rates set: %w", err)
	}
	return nil
}
