package cache

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

const (
	TrendingKeyPrefix       = "trending:v%d:w%d:%d"
	trendingPattern         = "trending:*"
	ReportCooldownKeyPrefix = "report_cooldown:%s:%s:%d"
	BannedKeyPrefix         = "banned:%s"
)

const (
	// BannedTTL bounds how long a ban lookup is served from cache.
	BannedTTL = 30 * time.Second
)

// TrendingKey identifies a trending result for one weighting and limit.
func TrendingKey(viewWeight, likeWeight int64, limit int) string {
	return fmt.Sprintf(TrendingKeyPrefix, viewWeight, likeWeight, limit)
}

// ReportCooldownKey identifies one reporter's marker for one target.
func ReportCooldownKey(reporter, targetType string, targetID uint) string {
	return fmt.Sprintf(ReportCooldownKeyPrefix, reporter, targetType, targetID)
}

func BannedKey(address string) string {
	return fmt.Sprintf(BannedKeyPrefix, address)
}

func Invalidate(ctx context.Context, keys ...string) {
	if client != nil && len(keys) > 0 {
		client.Del(ctx, keys...)
	}
}

func InvalidateBan(ctx context.Context, address string) {
	Invalidate(ctx, BannedKey(address))
}

// InvalidateTrending drops every cached trending result, whatever weighting
// produced it. Called whenever a post leaves or re-enters the active set.
func InvalidateTrending(ctx context.Context) {
	if client == nil {
		return
	}
	var keys []string
	iter := client.Scan(ctx, 0, trendingPattern, 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		slog.WarnContext(ctx, "trending cache scan failed", slog.String("error", err.Error()))
	}
	Invalidate(ctx, keys...)
}
