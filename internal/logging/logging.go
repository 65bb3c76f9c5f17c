// Package logging adapts the shared go-common logger to the places this module
// logs from: adapters, the CLI and gorm.
package logging

import (
	"context"
	"strings"
	"time"

	"github.com/shopmonkeyus/go-common/logger"
	glogger "gorm.io/gorm/logger"
)

// Log wraps an optional logger. The zero value discards everything.
type Log struct {
	l logger.Logger
}

// New wraps l, scoping it with prefix when one is given.
func New(l logger.Logger, prefix string) Log {
	if l != nil && strings.TrimSpace(prefix) != "" {
		l = l.WithPrefix(prefix)
	}
	return Log{l: l}
}

// Logger returns the wrapped logger, or nil.
func (g Log) Logger() logger.Logger {
	return g.l
}

func (g Log) Trace(msg string, args ...any) {
	if g.l != nil {
		g.l.Trace(msg, args...)
	}
}

func (g Log) Debug(msg string, args ...any) {
	if g.l != nil {
		g.l.Debug(msg, args...)
	}
}

func (g Log) Info(msg string, args ...any) {
	if g.l != nil {
		g.l.Info(msg, args...)
	}
}

func (g Log) Warn(msg string, args ...any) {
	if g.l != nil {
		g.l.Warn(msg, args...)
	}
}

func (g Log) Error(msg string, args ...any) {
	if g.l != nil {
		g.l.Error(msg, args...)
	}
}

type gormLoggerAdapter struct {
	log Log
}

var _ glogger.Interface = (*gormLoggerAdapter)(nil)

// NewGormLogAdapter returns a gorm logger writing through l. A nil l yields a
// silent gorm logger.
func NewGormLogAdapter(l logger.Logger) glogger.Interface {
	return &gormLoggerAdapter{log: New(l, "")}
}

func (a *gormLoggerAdapter) LogMode(level glogger.LogLevel) glogger.Interface {
	return a
}

func (a *gormLoggerAdapter) Info(ctx context.Context, msg string, data ...interface{}) {
	if strings.Contains(msg, "replacing callback `") {
		a.log.Trace(strings.TrimSpace(msg), data...)
		return
	}
	a.log.Info(strings.TrimSpace(msg), data...)
}

func (a *gormLoggerAdapter) Warn(ctx context.Context, msg string, data ...interface{}) {
	a.log.Warn(strings.TrimSpace(msg), data...)
}

func (a *gormLoggerAdapter) Error(ctx context.Context, msg string, data ...interface{}) {
	a.log.Error(strings.TrimSpace(msg), data...)
}

func (a *gormLoggerAdapter) Trace(ctx context.Context, begin time.Time, fc func() (sql string, rowsAffected int64), err error) {
	if err != nil {
		// gorm reports lookup misses here as well.
		if sql, _ := fc(); sql != "" {
			a.log.Debug("sql failed: %s: %s", sql, err)
		}
		return
	}
	sql, count := fc()
	a.log.Trace("sql executed: %s, affected %d rows in %v", sql, count, time.Since(begin))
}
