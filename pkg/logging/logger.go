package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"stats-tool/pkg/errors"
)

// LogContext represents contextual information for log entries
type LogContext map[string]interface{}

// StructuredLogger provides structured logging capabilities
type StructuredLogger struct {
	logger    *slog.Logger
	component string
	context   LogContext

	// manager is nil for standalone loggers, which then log every level
	manager *LoggingManager
}

// NewStructuredLogger creates a new structured logger writing JSON lines to w.
// The protocol owns stdout, so callers pass stderr or a file here.
func NewStructuredLogger(component string, w io.Writer) *StructuredLogger {
	opts := &slog.HandlerOptions{
		Level: slog.LevelDebug,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				return slog.Attr{
					Key:   "timestamp",
					Value: slog.StringValue(time.Now().UTC().Format(time.RFC3339Nano)),
				}
			}
			if a.Key == slog.MessageKey {
				return slog.Attr{
					Key:   "message",
					Value: a.Value,
				}
			}
			return a
		},
	}

	return &StructuredLogger{
		logger:    slog.New(slog.NewJSONHandler(w, opts)),
		component: component,
		context:   make(LogContext),
	}
}

// WithContext adds context to the logger (returns a new logger instance)
func (sl *StructuredLogger) WithContext(key string, value interface{}) *StructuredLogger {
	newLogger := &StructuredLogger{
		logger:    sl.logger,
		component: sl.component,
		context:   make(LogContext, len(sl.context)+1),
		manager:   sl.manager,
	}

	for k, v := range sl.context {
		newLogger.context[k] = v
	}

	newLogger.context[key] = value
	return newLogger
}

// WithError adds error information to the logger context
func (sl *StructuredLogger) WithError(err error) *StructuredLogger {
	if err == nil {
		return sl
	}

	newLogger := sl.WithContext("error", err.Error())

	if structuredErr, ok := err.(*errors.StructuredError); ok {
		newLogger = newLogger.
			WithContext("error_category", structuredErr.Category).
			WithContext("error_code", structuredErr.Code).
			WithContext("error_severity", structuredErr.Severity).
			WithContext("error_recoverable", structuredErr.IsRecoverable())

		for k, v := range structuredErr.Context {
			newLogger = newLogger.WithContext(fmt.Sprintf("error_ctx_%s", k), v)
		}
	}

	return newLogger
}

// buildLogAttributes creates slog attributes from context
func (sl *StructuredLogger) buildLogAttributes() []slog.Attr {
	attrs := []slog.Attr{
		slog.String("component", sl.component),
	}

	for key, value := range sl.context {
		attrs = append(attrs, slog.Any(key, value))
	}

	return attrs
}

func (sl *StructuredLogger) log(level LogLevel, message string) {
	if sl.manager != nil && !sl.manager.shouldLog(level) {
		return
	}
	sl.logger.LogAttrs(context.Background(), level.slogLevel(), message, sl.buildLogAttributes()...)
	if sl.manager != nil {
		sl.manager.updateStats(sl.component, level.String())
	}
}

// Debug logs a debug message
func (sl *StructuredLogger) Debug(message string) {
	sl.log(LogLevelDEBUG, message)
}

// Info logs an info message
func (sl *StructuredLogger) Info(message string) {
	sl.log(LogLevelINFO, message)
}

// Warn logs a warning message
func (sl *StructuredLogger) Warn(message string) {
	sl.log(LogLevelWARN, message)
}

// Error logs an error message
func (sl *StructuredLogger) Error(message string) {
	sl.log(LogLevelERROR, message)
}

// LogRequest logs one processed protocol line with timing information
func (sl *StructuredLogger) LogRequest(messageType string, callID string, duration time.Duration, success bool) {
	logger := sl.WithContext("message_type", messageType).
		WithContext("duration_ms", duration.Milliseconds()).
		WithContext("success", success)
	if callID != "" {
		logger = logger.WithContext("call_id", callID)
	}

	if success {
		logger.Info("Request processed")
	} else {
		logger.Warn("Request failed")
	}
}

// LogStartup logs application startup events
func (sl *StructuredLogger) LogStartup(event string, details map[string]interface{}) {
	logger := sl.WithContext("startup_event", event)
	for k, v := range details {
		logger = logger.WithContext(k, v)
	}
	logger.Info("Application startup event")
}

// LogShutdown logs application shutdown events
func (sl *StructuredLogger) LogShutdown(event string, details map[string]interface{}) {
	logger := sl.WithContext("shutdown_event", event)
	for k, v := range details {
		logger = logger.WithContext(k, v)
	}
	logger.Info("Application shutdown event")
}

// LogFileSystemEvent logs file system monitoring events
func (sl *StructuredLogger) LogFileSystemEvent(eventType string, path string, details map[string]interface{}) {
	logger := sl.WithContext("fs_event_type", eventType).
		WithContext("fs_path", path)

	for k, v := range details {
		logger = logger.WithContext(k, v)
	}

	logger.Info("File system event detected")
}
