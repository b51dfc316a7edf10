package database

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm/logger"

	coreport "github.com/littlehunt-studios/generation-processor/internal/domain/port/core"
)

// DatabaseLogger is a custom GORM logger that uses our core logger
type DatabaseLogger struct {
	coreLogger    coreport.Logger
	logLevel      logger.LogLevel
	slowThreshold time.Duration
	timeProvider  coreport.TimeProvider
}

// NewDatabaseLogger creates a new database logger at the given level
func NewDatabaseLogger(coreLogger coreport.Logger, timeProvider coreport.TimeProvider, level string) logger.Interface {
	var logLevel logger.LogLevel
	switch strings.ToLower(level) {
	case "silent":
		logLevel = logger.Silent
	case "error":
		logLevel = logger.Error
	case "warn":
		logLevel = logger.Warn
	default:
		logLevel = logger.Info
	}

	return &DatabaseLogger{
		coreLogger:    coreLogger,
		logLevel:      logLevel,
		slowThreshold: 200 * time.Millisecond,
		timeProvider:  timeProvider,
	}
}

// LogMode sets the log level for the logger
func (l *DatabaseLogger) LogMode(level logger.LogLevel) logger.Interface {
	newLogger := *l
	newLogger.logLevel = level
	return &newLogger
}

// Info logs info messages
func (l *DatabaseLogger) Info(ctx context.Context, msg string, data ...interface{}) {
	if l.logLevel >= logger.Info {
		l.coreLogger.Info(msg, map[string]any{"source": "database"})
	}
}

// Warn logs warn messages
func (l *DatabaseLogger) Warn(ctx context.Context, msg string, data ...interface{}) {
	if l.logLevel >= logger.Warn {
		l.coreLogger.Warn(msg, map[string]any{"source": "database"})
	}
}

// Error logs error messages
func (l *DatabaseLogger) Error(ctx context.Context, msg string, data ...interface{}) {
	if l.logLevel >= logger.Error {
		l.coreLogger.Error(msg, map[string]any{"source": "database"})
	}
}

// Trace logs SQL operations
func (l *DatabaseLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.logLevel <= logger.Silent {
		return
	}

	var elapsed time.Duration
	if l.timeProvider != nil {
		elapsed = l.timeProvider.Since(begin).Std()
	} else {
		elapsed = time.Since(begin)
	}

	sql, rows := fc()

	fields := map[string]any{
		"elapsed": elapsed.String(),
		"rows":    rows,
		"sql":     sql,
		"source":  "database",
	}
	if queryType := extractQueryType(sql); queryType != "" {
		fields["type"] = queryType
	}
	if err != nil {
		fields["error"] = err.Error()
	}

	switch {
	case err != nil && l.logLevel >= logger.Error:
		l.coreLogger.Error("SQL Error", fields)
	case elapsed > l.slowThreshold && l.slowThreshold > 0:
		l.coreLogger.Warn("Slow SQL Query", fields)
	case l.logLevel >= logger.Info:
		// Debug level for regular queries to reduce noise
		l.coreLogger.Debug("SQL Query", fields)
	}
}

// extractQueryType determines the type of SQL query
func extractQueryType(sql string) string {
	sqlUpper := strings.ToUpper(strings.TrimSpace(sql))

	switch {
	case strings.HasPrefix(sqlUpper, "SELECT"):
		return "SELECT"
	case strings.HasPrefix(sqlUpper, "INSERT"):
		return "INSERT"
	case strings.HasPrefix(sqlUpper, "UPDATE"):
		return "UPDATE"
	case strings.HasPrefix(sqlUpper, "DELETE"):
		return "DELETE"
	}
	return ""
}
