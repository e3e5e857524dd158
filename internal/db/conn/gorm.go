package conn

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// GormLogger routes gorm's log output into zerolog at the matching level.
// Failed statements go out at error, slow ones at warn and the rest at debug.
type GormLogger struct {
	Logger        zerolog.Logger
	SlowThreshold time.Duration
	LogLevel      gormlogger.LogLevel
}

var _ gormlogger.Interface = (*GormLogger)(nil)

// NewGormLogger returns a gorm logger writing to zl at gorm's warn level.
func NewGormLogger(zl zerolog.Logger, slow time.Duration) *GormLogger {
	return &GormLogger{
		Logger:        zl.With().Str("component", "gorm").Logger(),
		SlowThreshold: slow,
		LogLevel:      gormlogger.Warn,
	}
}

// LogMode implements gormlogger.Interface.
func (l *GormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	next := *l
	next.LogLevel = level

	return &next
}

func (l *GormLogger) Info(_ context.Context, msg string, data ...any) {
	if l.LogLevel >= gormlogger.Info {
		l.Logger.Info().Msgf(msg, data...)
	}
}

func (l *GormLogger) Warn(_ context.Context, msg string, data ...any) {
	if l.LogLevel >= gormlogger.Warn {
		l.Logger.Warn().Msgf(msg, data...)
	}
}

func (l *GormLogger) Error(_ context.Context, msg string, data ...any) {
	if l.LogLevel >= gormlogger.Error {
		l.Logger.Error().Msgf(msg, data...)
	}
}

// Trace logs one executed statement. Record-not-found is not an error here.
func (l *GormLogger) Trace(_ context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.LogLevel <= gormlogger.Silent {
		return
	}

	elapsed := time.Since(begin)

	switch {
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound) && l.LogLevel >= gormlogger.Error:
		sql, rows := fc()
		l.Logger.Error().Err(err).Str("sql", sql).Int64("rows", rows).Dur("elapsed", elapsed).Msg("gorm error")
	case l.SlowThreshold != 0 && elapsed > l.SlowThreshold && l.LogLevel >= gormlogger.Warn:
		sql, rows := fc()
		l.Logger.Warn().Str("sql", sql).Int64("rows", rows).Dur("elapsed", elapsed).
			Dur("threshold", l.SlowThreshold).Msg("gorm slow query")
	case l.LogLevel >= gormlogger.Info:
		sql, rows := fc()
		l.Logger.Debug().Str("sql", sql).Int64("rows", rows).Dur("elapsed", elapsed).Msg("gorm query")
	}
}
