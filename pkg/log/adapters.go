package log

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm/logger"
)

// GormLogger forwards gorm messages and slow or failed queries to a
// LoggerService.
type GormLogger struct {
	log           LoggerService
	level         logger.LogLevel
	slowThreshold time.Duration
}

// NewGormLogger maps the level of log onto gorm's levels. Queries are only
// traced at debug level.
func NewGormLogger(log LoggerService, level string) *GormLogger {
	gl := &GormLogger{
		log:           log,
		slowThreshold: 200 * time.Millisecond,
	}

	switch Parse(level) {
	case Debug:
		gl.level = logger.Info
	case Info, Warn:
		gl.level = logger.Warn
	default:
		gl.level = logger.Error
	}
	return gl
}

func (gl *GormLogger) LogMode(level logger.LogLevel) logger.Interface {
	clone := *gl
	clone.level = level
	return &clone
}

func (gl *GormLogger) Info(_ context.Context, msg string, data ...any) {
	if gl.level >= logger.Info {
		gl.log.Debug(msg, data...)
	}
}

func (gl *GormLogger) Warn(_ context.Context, msg string, data ...any) {
	if gl.level >= logger.Warn {
		gl.log.Warn(msg, data...)
	}
}

func (gl *GormLogger) Error(_ context.Context, msg string, data ...any) {
	if gl.level >= logger.Error {
		gl.log.Error(msg, data...)
	}
}

func (gl *GormLogger) Trace(_ context.Context, begin time.Time, fc func() (sql string, rowsAffected int64), err error) {
	if gl.level <= logger.Silent {
		return
	}

	elapsed := time.Since(begin)
	switch {
	case err != nil && !errors.Is(err, logger.ErrRecordNotFound) && gl.level >= logger.Error:
		sql, rows := fc()
		gl.log.Error("Query failed after %s (%d rows): %s: %v", elapsed, rows, sql, err)
	case gl.slowThreshold > 0 && elapsed > gl.slowThreshold && gl.level >= logger.Warn:
		sql, rows := fc()
		gl.log.Warn("Slow query took %s (%d rows): %s", elapsed, rows, sql)
	case gl.level >= logger.Info:
		sql, rows := fc()
		gl.log.Debug("Query took %s (%d rows): %s", elapsed, rows, sql)
	}
}

// LeveledLogger adapts a LoggerService to the key/value logging interface of
// go-retryablehttp.
type LeveledLogger struct {
	log LoggerService
}

func NewLeveledLogger(log LoggerService) *LeveledLogger {
	return &LeveledLogger{log: log}
}

func (ll *LeveledLogger) Error(msg string, keysAndValues ...any) {
	ll.log.Error("%s", withFields(msg, keysAndValues))
}

func (ll *LeveledLogger) Info(msg string, keysAndValues ...any) {
	ll.log.Info("%s", withFields(msg, keysAndValues))
}

func (ll *LeveledLogger) Debug(msg string, keysAndValues ...any) {
	ll.log.Debug("%s", withFields(msg, keysAndValues))
}

func (ll *LeveledLogger) Warn(msg string, keysAndValues ...any) {
	ll.log.Warn("%s", withFields(msg, keysAndValues))
}

func withFields(msg string, keysAndValues []any) string {
	if len(keysAndValues) == 0 {
		return msg
	}

	var sb strings.Builder
	sb.WriteString(msg)
	for i := 0; i < len(keysAndValues); i += 2 {
		if i+1 < len(keysAndValues) {
			fmt.Fprintf(&sb, " %v=%v", keysAndValues[i], keysAndValues[i+1])
		} else {
			fmt.Fprintf(&sb, " %v", keysAndValues[i])
		}
	}
	return sb.String()
}
