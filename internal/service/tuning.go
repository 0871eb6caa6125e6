package service

import (
	"time"

	"postboard/internal/config"
)

// Defaults for the moderation and ranking knobs.
const (
	DefaultReportFlagThreshold = 3
	DefaultReportCooldown      = 30 * 24 * time.Hour
	DefaultTrendingViewWeight  = 1
	DefaultTrendingLikeWeight  = 5
	DefaultTrendingLimit       = 10
	DefaultPostPageSize        = 5
	MaxPostPageSize            = 100
	AdminListLimit             = 50
)

// Tuning carries the configurable thresholds and weights used by the services.
type Tuning struct {
	ReportFlagThreshold int64
	ReportCooldown      time.Duration
	TrendingViewWeight  int64
	TrendingLikeWeight  int64
	TrendingLimit       int
	TrendingCacheTTL    time.Duration
	LockTimeout         time.Duration
}

// DefaultTuning returns the built-in values with trending caching disabled.
func DefaultTuning() Tuning {
	return Tuning{
		ReportFlagThreshold: DefaultReportFlagThreshold,
		ReportCooldown:      DefaultReportCooldown,
		TrendingViewWeight:  DefaultTrendingViewWeight,
		TrendingLikeWeight:  DefaultTrendingLikeWeight,
		TrendingLimit:       DefaultTrendingLimit,
	}
}

// TuningFromConfig maps configuration onto Tuning, keeping defaults for unset values.
func TuningFromConfig(cfg *config.Config) Tuning {
	t := DefaultTuning()
	if cfg == nil {
		return t
	}
	if cfg.ReportFlagThreshold > 0 {
		t.ReportFlagThreshold = int64(cfg.ReportFlagThreshold)
	}
	// REPORT_COOLDOWN_HOURS=0 switches the cooldown off.
	t.ReportCooldown = cfg.ReportCooldown()
	// Zero weights are valid and switch a signal off.
	t.TrendingViewWeight = int64(cfg.TrendingViewWeight)
	t.TrendingLikeWeight = int64(cfg.TrendingLikeWeight)
	if cfg.TrendingLimit > 0 {
		t.TrendingLimit = cfg.TrendingLimit
	}
	t.TrendingCacheTTL = cfg.TrendingCacheTTL()
	t.LockTimeout = cfg.BusyTimeout()
	return t
}
