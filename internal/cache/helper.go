package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// load decodes key into dest. A miss is reported as (false, nil).
func load(ctx context.Context, rdb *redis.Client, key string, dest any) (bool, error) {
	raw, err := rdb.Get(ctx, key).Bytes()
	switch {
	case errors.Is(err, redis.Nil):
		return false, nil
	case err != nil:
		return false, err
	}
	return true, json.Unmarshal(raw, dest)
}

func store(ctx context.Context, rdb *redis.Client, key string, v any, ttl time.Duration) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return rdb.Set(ctx, key, raw, ttl).Err()
}

// Aside serves key from Redis when present. Otherwise fetch fills dest and
// the result is written back with ttl. Redis errors never fail the call, and
// a non-positive ttl or missing client skips the cache.
func Aside(ctx context.Context, key string, dest any, ttl time.Duration, fetch func() error) error {
	rdb := client
	if rdb == nil || ttl <= 0 {
		return fetch()
	}

	hit, err := load(ctx, rdb, key, dest)
	if err != nil {
		slog.DebugContext(ctx, "cache read failed", slog.String("key", key), slog.String("error", err.Error()))
	}
	if hit && err == nil {
		return nil
	}

	if err := fetch(); err != nil {
		return err
	}
	if err := store(ctx, rdb, key, dest, ttl); err != nil {
		slog.DebugContext(ctx, "cache write failed", slog.String("key", key), slog.String("error", err.Error()))
	}
	return nil
}
