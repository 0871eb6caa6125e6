package middleware

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"time"

	"postboard/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// FailPolicy decides what a limiter does when Redis cannot answer.
type FailPolicy int

const (
	// FailOpen lets the request through.
	FailOpen FailPolicy = iota
	// FailClosed answers 503 RETRY_LATER.
	FailClosed
)

// ErrNoLimiterStore is returned when enforcement is on but no Redis client exists.
var ErrNoLimiterStore = errors.New("rate limit store unavailable")

// Limit is a fixed-window quota applied per visitor to one named action.
type Limit struct {
	Name   string
	Max    int
	Window time.Duration
	Policy FailPolicy
}

// limitsEnforced is false in test, development and stress environments so
// local and load-test traffic is never throttled. An unset APP_ENV counts as
// development.
func limitsEnforced() bool {
	switch os.Getenv("APP_ENV") {
	case "", "test", "development", "stress":
		return false
	}
	return true
}

// CheckRateLimit counts one hit for id against resource and reports whether
// it is still within limit for the current window.
func CheckRateLimit(ctx context.Context, rdb *redis.Client, resource, id string, limit int, window time.Duration) (bool, error) {
	if !limitsEnforced() {
		return true, nil
	}
	if rdb == nil {
		return false, ErrNoLimiterStore
	}

	// The first hit of a window sets the TTL; later hits only increment.
	key := "rl:" + resource + ":" + id
	var hits *redis.IntCmd
	_, err := rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		hits = pipe.Incr(ctx, key)
		pipe.ExpireNX(ctx, key, window)
		return nil
	})
	if err != nil {
		return false, err
	}
	return hits.Val() <= int64(limit), nil
}

// RateLimit enforces l for every visitor, keyed by l.Name or the request path
// when the limit is unnamed.
func RateLimit(rdb *redis.Client, l Limit) fiber.Handler {
	return func(c *fiber.Ctx) error {
		resource := l.Name
		if resource == "" {
			resource = c.Path()
		}

		allowed, err := CheckRateLimit(c.UserContext(), rdb, resource, "ip:"+VisitorFrom(c), l.Max, l.Window)
		switch {
		case err != nil && l.Policy == FailClosed:
			Logger.WarnContext(c.UserContext(), "rate limit store unavailable, rejecting",
				slog.String("resource", resource),
				slog.String("error", err.Error()))
			return reject(c, fiber.StatusServiceUnavailable, models.CodeRetryLater, "rate limit unavailable")
		case err != nil:
			return c.Next()
		case !allowed:
			return reject(c, fiber.StatusTooManyRequests, "RATE_LIMITED", "rate limit exceeded")
		}
		return c.Next()
	}
}
