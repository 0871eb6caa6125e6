package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// ReportCooldown stores one marker per (reporter, target) with a TTL equal to
// the cooldown window. Claims are atomic via SET NX.
type ReportCooldown struct {
	rdb    *redis.Client
	window time.Duration
}

// NewReportCooldown returns a cooldown store; a nil client yields nil so
// callers fall back to the database check.
func NewReportCooldown(rdb *redis.Client, window time.Duration) *ReportCooldown {
	if rdb == nil || window <= 0 {
		return nil
	}
	return &ReportCooldown{rdb: rdb, window: window}
}

// Claim marks the target as reported by reporter. It returns false when a
// marker already exists.
func (c *ReportCooldown) Claim(ctx context.Context, reporter, targetType string, targetID uint) (bool, error) {
	return c.rdb.SetNX(ctx, ReportCooldownKey(reporter, targetType, targetID), time.Now().Unix(), c.window).Result()
}

// Release removes a marker, used when the report it guarded was not stored.
func (c *ReportCooldown) Release(ctx context.Context, reporter, targetType string, targetID uint) error {
	return c.rdb.Del(ctx, ReportCooldownKey(reporter, targetType, targetID)).Err()
}
