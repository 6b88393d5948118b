package logging

import (
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"
)

// LogLevel represents the logging level
type LogLevel int

const (
	LogLevelDEBUG LogLevel = iota
	LogLevelINFO
	LogLevelWARN
	LogLevelERROR
)

// String returns the upper-case level name
func (l LogLevel) String() string {
	switch l {
	case LogLevelDEBUG:
		return "DEBUG"
	case LogLevelWARN:
		return "WARN"
	case LogLevelERROR:
		return "ERROR"
	default:
		return "INFO"
	}
}

func (l LogLevel) slogLevel() slog.Level {
	switch l {
	case LogLevelDEBUG:
		return slog.LevelDebug
	case LogLevelWARN:
		return slog.LevelWarn
	case LogLevelERROR:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// ParseLogLevel converts a level name to a LogLevel.
// Matching is case-insensitive and unknown names map to INFO.
func ParseLogLevel(level string) LogLevel {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "DEBUG":
		return LogLevelDEBUG
	case "WARN", "WARNING":
		return LogLevelWARN
	case "ERROR":
		return LogLevelERROR
	default:
		return LogLevelINFO
	}
}

// LoggingManager manages structured logging across the application
type LoggingManager struct {
	output  io.Writer
	loggers map[string]*StructuredLogger
	mutex   sync.RWMutex

	// Global context that gets added to all log entries
	globalContext LogContext

	stats LoggingStats

	logLevel LogLevel
}

// LoggingStats tracks logging statistics
type LoggingStats struct {
	TotalMessages    int64            `json:"totalMessages"`
	MessagesByLevel  map[string]int64 `json:"messagesByLevel"`
	MessagesByLogger map[string]int64 `json:"messagesByLogger"`
	ErrorCount       int64            `json:"errorCount"`
	LastLogTime      time.Time        `json:"lastLogTime"`
}

// NewLoggingManager creates a new logging manager whose loggers write to output
func NewLoggingManager(output io.Writer) *LoggingManager {
	if output == nil {
		output = io.Discard
	}
	return &LoggingManager{
		output:        output,
		loggers:       make(map[string]*StructuredLogger),
		globalContext: make(LogContext),
		stats: LoggingStats{
			MessagesByLevel:  make(map[string]int64),
			MessagesByLogger: make(map[string]int64),
		},
		logLevel: LogLevelINFO,
	}
}

// GetLogger gets or creates a logger for a specific component
func (lm *LoggingManager) GetLogger(component string) *StructuredLogger {
	lm.mutex.Lock()
	defer lm.mutex.Unlock()

	if logger, exists := lm.loggers[component]; exists {
		return logger
	}

	logger := NewStructuredLogger(component, lm.output)
	logger.manager = lm

	for key, value := range lm.globalContext {
		logger = logger.WithContext(key, value)
	}

	lm.loggers[component] = logger
	return logger
}

// SetLogLevel sets the logging level for all loggers
// Accepts any string and defaults to INFO for invalid levels
func (lm *LoggingManager) SetLogLevel(level string) {
	parsed := ParseLogLevel(level)

	lm.mutex.Lock()
	defer lm.mutex.Unlock()
	lm.logLevel = parsed
}

// GetLogLevel returns the active logging level
func (lm *LoggingManager) GetLogLevel() LogLevel {
	lm.mutex.RLock()
	defer lm.mutex.RUnlock()
	return lm.logLevel
}

// shouldLog checks if a message at the given level should be logged
func (lm *LoggingManager) shouldLog(level LogLevel) bool {
	lm.mutex.RLock()
	defer lm.mutex.RUnlock()
	return level >= lm.logLevel
}

// SetGlobalContext sets global context that will be added to all log entries
func (lm *LoggingManager) SetGlobalContext(key string, value interface{}) {
	lm.mutex.Lock()
	defer lm.mutex.Unlock()

	lm.globalContext[key] = value

	for component, logger := range lm.loggers {
		lm.loggers[component] = logger.WithContext(key, value)
	}
}

// LogError logs an error with full context
func (lm *LoggingManager) LogError(component string, err error, message string, context map[string]interface{}) {
	logger := lm.GetLogger(component).WithError(err)

	for k, v := range context {
		logger = logger.WithContext(k, v)
	}

	logger.Error(message)
}

// LogRequest logs a processed protocol line with timing
func (lm *LoggingManager) LogRequest(messageType string, callID string, duration time.Duration, success bool, errorMsg string) {
	logger := lm.GetLogger("protocol")

	if !success && errorMsg != "" {
		logger = logger.WithContext("error_message", errorMsg)
	}

	logger.LogRequest(messageType, callID, duration, success)
}

// LogConfigReload logs a live configuration change
func (lm *LoggingManager) LogConfigReload(path string, changes map[string]interface{}, err error) {
	logger := lm.GetLogger("config").WithContext("config_file", path)

	if err != nil {
		logger.WithError(err).Warn("Configuration reload failed")
		return
	}

	for k, v := range changes {
		logger = logger.WithContext(k, v)
	}
	logger.Info("Configuration reloaded")
}

// LogStartupSequence logs application startup sequence
func (lm *LoggingManager) LogStartupSequence(phase string, details map[string]interface{}, duration time.Duration, success bool) {
	startupDetails := make(map[string]interface{}, len(details)+2)
	for k, v := range details {
		startupDetails[k] = v
	}
	startupDetails["duration_ms"] = duration.Milliseconds()
	startupDetails["success"] = success

	lm.GetLogger("startup").LogStartup(phase, startupDetails)
}

// LogShutdownSequence logs application shutdown sequence
func (lm *LoggingManager) LogShutdownSequence(phase string, details map[string]interface{}, duration time.Duration, success bool) {
	shutdownDetails := make(map[string]interface{}, len(details)+2)
	for k, v := range details {
		shutdownDetails[k] = v
	}
	shutdownDetails["duration_ms"] = duration.Milliseconds()
	shutdownDetails["success"] = success

	lm.GetLogger("shutdown").LogShutdown(phase, shutdownDetails)
}

// updateStats updates logging statistics
func (lm *LoggingManager) updateStats(component, level string) {
	lm.mutex.Lock()
	defer lm.mutex.Unlock()

	lm.stats.TotalMessages++
	lm.stats.MessagesByLevel[level]++
	lm.stats.MessagesByLogger[component]++
	lm.stats.LastLogTime = time.Now()

	if level == "ERROR" {
		lm.stats.ErrorCount++
	}
}

// GetStats returns current logging statistics
func (lm *LoggingManager) GetStats() LoggingStats {
	lm.mutex.RLock()
	defer lm.mutex.RUnlock()

	stats := LoggingStats{
		TotalMessages:    lm.stats.TotalMessages,
		ErrorCount:       lm.stats.ErrorCount,
		LastLogTime:      lm.stats.LastLogTime,
		MessagesByLevel:  make(map[string]int64, len(lm.stats.MessagesByLevel)),
		MessagesByLogger: make(map[string]int64, len(lm.stats.MessagesByLogger)),
	}

	for k, v := range lm.stats.MessagesByLevel {
		stats.MessagesByLevel[k] = v
	}
	for k, v := range lm.stats.MessagesByLogger {
		stats.MessagesByLogger[k] = v
	}

	return stats
}
