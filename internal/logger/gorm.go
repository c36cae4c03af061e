//nolint:goprintffuncname // Method names are dictated by gorm's logger interface.
package logger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// DefaultSlowQueryThreshold marks SQL statements that deserve a warning.
const DefaultSlowQueryThreshold = 200 * time.Millisecond

// nanosecondsPerMillisecond converts elapsed durations for the "elapsed" field.
const nanosecondsPerMillisecond = 1e6

// GormConfig tunes the gorm adapter.
type GormConfig struct {
	// Level is the minimum level at which SQL statements are traced.
	Level zapcore.Level
	// SlowThreshold marks statements slower than this as warnings.
	SlowThreshold time.Duration
	// IgnoreRecordNotFoundError suppresses gorm.ErrRecordNotFound noise.
	IgnoreRecordNotFoundError bool
}

// gormAdapter routes gorm log output into the context logger.
type gormAdapter struct {
	// config holds the adapter thresholds.
	config GormConfig
}

// NewGormLogger creates a gorm logger.Interface backed by zap.
//
//nolint:ireturn // gorm expects the interface type.
func NewGormLogger(cfg GormConfig) gormlogger.Interface {
	if cfg.SlowThreshold <= 0 {
		cfg.SlowThreshold = DefaultSlowQueryThreshold
	}

	return &gormAdapter{config: cfg}
}

// LogMode implements gormlogger.Interface and is a no-op: levels come from zap.
//
//nolint:ireturn // gorm expects the interface type.
func (a *gormAdapter) LogMode(gormlogger.LogLevel) gormlogger.Interface {
	return a
}

// Info logs message at info level.
func (a *gormAdapter) Info(ctx context.Context, format string, args ...any) {
	a.scoped(ctx).Infof(format, args...)
}

// Warn logs message at warn level.
func (a *gormAdapter) Warn(ctx context.Context, format string, args ...any) {
	a.scoped(ctx).Warnf(format, args...)
}

// Error logs message at error level.
func (a *gormAdapter) Error(ctx context.Context, format string, args ...any) {
	a.scoped(ctx).Errorf(format, args...)
}

// Trace logs the SQL statement, amount of affected rows and elapsed time.
func (a *gormAdapter) Trace(
	ctx context.Context,
	begin time.Time,
	function func() (sql string, rowsAffected int64),
	err error,
) {
	elapsed := time.Since(begin)
	log := a.scoped(ctx)

	var kvs []any

	if function != nil {
		sql, rows := function()
		kvs = append(kvs,
			"elapsed", fmt.Sprintf("%.3fms", float64(elapsed.Nanoseconds())/nanosecondsPerMillisecond),
			"sql", sql,
		)

		if rows >= 0 {
			kvs = append(kvs, "rows", rows)
		}
	}

	switch {
	case err != nil && (!errors.Is(err, gorm.ErrRecordNotFound) || !a.config.IgnoreRecordNotFoundError):
		log.Errorw("SQL error", append(kvs, "error", err)...)
	case elapsed > a.config.SlowThreshold:
		log.Warnw("Slow SQL", kvs...)
	default:
		log.Debugw("SQL", kvs...)
	}
}

// scoped returns the context logger with the adapter's own level applied.
func (a *gormAdapter) scoped(ctx context.Context) *zap.SugaredLogger {
	return FromContext(ctx).Named("gorm").WithOptions(WithLevel(a.config.Level))
}
