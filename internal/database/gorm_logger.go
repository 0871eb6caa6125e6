package database

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"postboard/internal/middleware"

	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const slowStatement = 200 * time.Millisecond

// GormLogger routes GORM output through the application's slog logger so
// statements carry request correlation attributes.
type GormLogger struct {
	log   *slog.Logger
	level logger.LogLevel
	slow  time.Duration
}

// NewGormLogger logs failed and slow statements only.
func NewGormLogger() *GormLogger {
	return &GormLogger{log: middleware.Logger, level: logger.Warn, slow: slowStatement}
}

func (l *GormLogger) LogMode(level logger.LogLevel) logger.Interface {
	cp := *l
	cp.level = level
	return &cp
}

func (l *GormLogger) Info(ctx context.Context, msg string, data ...interface{}) {
	l.printf(ctx, logger.Info, slog.LevelInfo, msg, data)
}

func (l *GormLogger) Warn(ctx context.Context, msg string, data ...interface{}) {
	l.printf(ctx, logger.Warn, slog.LevelWarn, msg, data)
}

func (l *GormLogger) Error(ctx context.Context, msg string, data ...interface{}) {
	l.printf(ctx, logger.Error, slog.LevelError, msg, data)
}

func (l *GormLogger) printf(ctx context.Context, threshold logger.LogLevel, level slog.Level, msg string, data []interface{}) {
	if l.level >= threshold {
		l.log.Log(ctx, level, fmt.Sprintf(msg, data...))
	}
}

// Trace logs one executed statement. A missing row is not an error, and a
// unique violation is the engagement ledger rejecting a repeat, so it only
// shows at debug.
func (l *GormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.level <= logger.Silent {
		return
	}
	elapsed := time.Since(begin)
	statement, rows := fc()
	attrs := []any{
		slog.String("sql", statement),
		slog.Int64("rows", rows),
		slog.Duration("elapsed", elapsed),
	}

	switch {
	case err != nil && IsDuplicate(err):
		l.log.DebugContext(ctx, "statement hit unique constraint", attrs...)
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound):
		if l.level >= logger.Error {
			l.log.ErrorContext(ctx, "statement failed", append(attrs, slog.String("error", err.Error()))...)
		}
	case l.slow > 0 && elapsed > l.slow:
		if l.level >= logger.Warn {
			l.log.WarnContext(ctx, "slow statement", attrs...)
		}
	case l.level >= logger.Info:
		l.log.InfoContext(ctx, "statement", attrs...)
	}
}
