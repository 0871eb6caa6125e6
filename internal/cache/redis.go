// Package cache provides the Redis client, cache-aside helpers and report cooldown markers.
package cache

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"postboard/internal/observability"

	"github.com/redis/go-redis/v9"
)

const pingTimeout = 5 * time.Second

var client *redis.Client

// errorCounter feeds every failed command into RedisErrorRate. A miss
// (redis.Nil) is not a failure.
type errorCounter struct{}

func (errorCounter) DialHook(next redis.DialHook) redis.DialHook { return next }

func (errorCounter) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		err := next(ctx, cmd)
		countFailure(cmd.Name(), err)
		return err
	}
}

func (errorCounter) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []redis.Cmder) error {
		err := next(ctx, cmds)
		countFailure("pipeline", err)
		return err
	}
}

func countFailure(command string, err error) {
	if err == nil || errors.Is(err, redis.Nil) {
		return
	}
	observability.RedisErrorRate.WithLabelValues(command).Inc()
}

// clientOptions accepts either a redis:// URL or a bare host:port.
func clientOptions(addr string) (*redis.Options, error) {
	if strings.Contains(addr, "://") {
		return redis.ParseURL(addr)
	}
	return &redis.Options{Addr: addr}, nil
}

// InitRedis connects the shared client. Any failure leaves the client nil and
// the rest of the service runs against the database alone.
func InitRedis(addr string) {
	client = nil
	opts, err := clientOptions(addr)
	if err != nil {
		slog.Warn("invalid REDIS_URL, running without redis", slog.String("addr", addr), slog.String("error", err.Error()))
		return
	}

	rdb := redis.NewClient(opts)
	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		slog.Warn("redis unreachable, running without redis", slog.String("addr", opts.Addr), slog.String("error", err.Error()))
		_ = rdb.Close()
		return
	}

	SetClient(rdb)
	slog.Info("redis connected", slog.String("addr", opts.Addr))
}

// GetClient returns the shared client, or nil when Redis is unavailable.
func GetClient() *redis.Client {
	return client
}

// SetClient swaps the shared client; tests point it at miniredis.
func SetClient(c *redis.Client) {
	if c != nil {
		c.AddHook(errorCounter{})
	}
	client = c
}
