// Package tools runs a plugin's single tool with logging, panic recovery and
// invocation statistics.
//
// Execution Features:
// - Argument sanitization for safe logging
// - Advisory schema check of call parameters (logged, never enforced)
// - Panic recovery into an error result so one bad call cannot end the session
// - Invocation counters reported at shutdown
//
// Tools implement the Tool interface and are executed through the ToolExecutor.
package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/jsonschema-go/jsonschema"

	"stats-tool/pkg/errors"
	"stats-tool/pkg/logging"
)

const (
	// SlowCallThreshold marks calls that are logged at warn level
	SlowCallThreshold = time.Second

	maxLogLength = 100
)

// ToolStats tracks invocation statistics of a ToolExecutor
type ToolStats struct {
	TotalInvocations   int64         `json:"total_invocations"`
	FailedInvocations  int64         `json:"failed_invocations"`
	RecoveredPanics    int64         `json:"recovered_panics"`
	TotalExecutionTime time.Duration `json:"total_execution_time"`
}

// ToolExecutor handles tool execution with logging and panic recovery
type ToolExecutor struct {
	tool     Tool
	resolved *jsonschema.Resolved
	logger   *logging.StructuredLogger

	mu    sync.Mutex
	stats ToolStats
}

// NewToolExecutor resolves the tool's input schema once and returns an executor for it
func NewToolExecutor(tool Tool, logger *logging.StructuredLogger) (*ToolExecutor, error) {
	te := &ToolExecutor{
		tool:   tool,
		logger: logger.WithContext("tool", tool.Name()),
	}

	if schema := tool.InputSchema(); schema != nil {
		resolved, err := schema.Resolve(nil)
		if err != nil {
			return nil, errors.NewSystemError(errors.ErrCodeSchemaInvalid,
				fmt.Sprintf("input schema of tool %s cannot be resolved", tool.Name()), err).
				WithDetails(err.Error())
		}
		te.resolved = resolved
	}

	return te, nil
}

// Tool returns the executed tool
func (te *ToolExecutor) Tool() Tool {
	return te.tool
}

// Execute runs one call. A panic inside the tool is reported as an error result.
func (te *ToolExecutor) Execute(ctx context.Context, params map[string]json.RawMessage) (text string, isError bool) {
	start := time.Now()

	logger := te.logger
	for k, v := range te.sanitizeArguments(params) {
		logger = logger.WithContext(fmt.Sprintf("arg_%s", k), v)
	}
	logger.Debug("Executing tool")

	te.checkSchema(logger, params)

	panicked := false
	defer func() {
		if r := recover(); r != nil {
			panicked = true
			se := errors.NewSystemError(errors.ErrCodeHandlerPanic, "internal error", nil).
				WithDetails(fmt.Sprint(r))
			logger.WithError(se).Error("Tool panicked")
			text, isError = se.ToolText(), true
		}

		duration := time.Since(start)
		te.record(isError, panicked, duration)

		if duration > SlowCallThreshold {
			logger.WithContext("duration_ms", duration.Milliseconds()).Warn("Slow tool execution")
		}
		if isError {
			logger.WithContext("result", text).Debug("Tool execution returned an error result")
		} else {
			logger.Debug("Tool execution completed")
		}
	}()

	return te.tool.Call(ctx, params)
}

// checkSchema compares params with the advertised schema. The tool's own
// decoding is more lenient, so a mismatch is only logged.
func (te *ToolExecutor) checkSchema(logger *logging.StructuredLogger, params map[string]json.RawMessage) {
	if te.resolved == nil {
		return
	}

	instance := make(map[string]interface{}, len(params))
	for k, raw := range params {
		var v interface{}
		if err := json.Unmarshal(raw, &v); err != nil {
			continue
		}
		instance[k] = v
	}

	if err := te.resolved.Validate(instance); err != nil {
		logger.WithContext("schema_error", err.Error()).Warn("Call parameters do not match input schema")
	}
}

func (te *ToolExecutor) record(failed, panicked bool, duration time.Duration) {
	te.mu.Lock()
	defer te.mu.Unlock()

	te.stats.TotalInvocations++
	te.stats.TotalExecutionTime += duration
	if failed {
		te.stats.FailedInvocations++
	}
	if panicked {
		te.stats.RecoveredPanics++
	}
}

// GetStats returns a snapshot of the invocation statistics
func (te *ToolExecutor) GetStats() ToolStats {
	te.mu.Lock()
	defer te.mu.Unlock()
	return te.stats
}

// sanitizeArguments renders raw parameter values for logging, truncating
// anything longer than maxLogLength and showing the total length instead.
func (te *ToolExecutor) sanitizeArguments(params map[string]json.RawMessage) map[string]string {
	sanitized := make(map[string]string, len(params))
	for key, raw := range params {
		value := string(raw)
		if len(value) > maxLogLength {
			sanitized[key] = fmt.Sprintf("%s... [%d chars]", value[:maxLogLength], len(value))
		} else {
			sanitized[key] = value
		}
	}
	return sanitized
}
