package server

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"time"

	"stats-tool/internal/models"
	"stats-tool/pkg/errors"
	"stats-tool/pkg/logging"
	"stats-tool/pkg/tools"
)

// Message kinds used in request logs for lines without a recognised type
const (
	messageTypeInvalid = "invalid"
	messageTypeUnknown = "unknown"
)

// PluginServer serves one tool over line-delimited JSON. Lines are handled
// strictly in order, one response per non-blank line.
type PluginServer struct {
	executor *tools.ToolExecutor

	// describeResponse is encoded once; the descriptor never changes
	describeResponse []byte

	// Logging
	loggingManager *logging.LoggingManager
	logger         *logging.StructuredLogger
}

// NewPluginServer creates a server for tool
func NewPluginServer(tool tools.Tool, loggingManager *logging.LoggingManager) (*PluginServer, error) {
	executor, err := tools.NewToolExecutor(tool, loggingManager.GetLogger("tools"))
	if err != nil {
		return nil, err
	}

	describeResponse, err := encodeResponse(tools.NewToolDefinition(tool))
	if err != nil {
		return nil, errors.NewSystemError(errors.ErrCodeOutputFailed,
			"tool descriptor cannot be encoded", err).WithDetails(err.Error())
	}

	return &PluginServer{
		executor:         executor,
		describeResponse: describeResponse,
		loggingManager:   loggingManager,
		logger:           loggingManager.GetLogger("server"),
	}, nil
}

// Start serves lines from reader until end of input. It returns nil on a
// clean end of input and an error if reading or writing fails.
func (s *PluginServer) Start(ctx context.Context, reader io.Reader, writer io.Writer) error {
	startTime := time.Now()

	s.loggingManager.LogStartupSequence("server_ready", map[string]interface{}{
		"tool": s.executor.Tool().Name(),
	}, time.Since(startTime), true)

	s.logger.Info("Plugin server started, waiting for requests")

	return s.processMessages(ctx, reader, writer)
}

// Shutdown logs the final invocation statistics
func (s *PluginServer) Shutdown(ctx context.Context) error {
	shutdownStart := time.Now()

	stats := s.executor.GetStats()
	logStats := s.loggingManager.GetStats()
	s.loggingManager.LogShutdownSequence("shutdown_complete", map[string]interface{}{
		"total_invocations":       stats.TotalInvocations,
		"failed_invocations":      stats.FailedInvocations,
		"recovered_panics":        stats.RecoveredPanics,
		"total_execution_time_ms": stats.TotalExecutionTime.Milliseconds(),
		"log_messages":            logStats.TotalMessages,
		"log_errors":              logStats.ErrorCount,
		"log_messages_by_level":   logStats.MessagesByLevel,
	}, time.Since(shutdownStart), true)

	s.logger.Info("Plugin server shutdown completed")

	return nil
}

// ToolStats returns the invocation statistics of the served tool
func (s *PluginServer) ToolStats() tools.ToolStats {
	return s.executor.GetStats()
}

// processMessages handles the line processing loop. Lines have no length
// limit and a final line without a trailing newline is still processed.
func (s *PluginServer) processMessages(ctx context.Context, reader io.Reader, writer io.Writer) error {
	in := bufio.NewReader(reader)
	out := bufio.NewWriter(writer)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		line, readErr := in.ReadBytes('\n')

		if trimmed := bytes.TrimSpace(line); len(trimmed) > 0 {
			if err := writeLine(out, s.handleLine(ctx, trimmed)); err != nil {
				return errors.NewSystemError(errors.ErrCodeOutputFailed,
					"failed to write response", err).WithDetails(err.Error())
			}
		}

		if readErr != nil {
			if readErr == io.EOF {
				s.logger.Debug("End of input reached")
				return nil
			}
			return errors.NewSystemError(errors.ErrCodeInputReadFailed,
				"failed to read input", readErr).WithDetails(readErr.Error())
		}
	}
}

// HandleLine processes a single input line and returns the encoded response
// without its trailing newline, or nil for a blank line (exported for testing)
func (s *PluginServer) HandleLine(ctx context.Context, line []byte) []byte {
	trimmed := bytes.TrimSpace(line)
	if len(trimmed) == 0 {
		return nil
	}
	return s.handleLine(ctx, trimmed)
}

// handleLine parses and dispatches one non-blank line
func (s *PluginServer) handleLine(ctx context.Context, line []byte) []byte {
	startTime := time.Now()
	messageType := messageTypeInvalid
	var callID string
	var success = true
	var errorMsg string

	defer func() {
		duration := time.Since(startTime)
		s.loggingManager.LogRequest(messageType, callID, duration, success, errorMsg)
	}()

	request, err := models.ParsePluginRequest(line)
	if err != nil {
		success = false
		errorMsg = err.Error()
		return s.handleParseError(err)
	}

	callID = request.CallIdentifier()

	kind, _ := request.MessageType()
	switch kind {
	case models.MessageTypeDescribe:
		messageType = kind
		return s.handleDescribe()
	case models.MessageTypeCall:
		messageType = kind
		response, isError := s.handleCall(ctx, request)
		if isError {
			success = false
			errorMsg = "call returned an error result"
		}
		return response
	default:
		messageType = messageTypeUnknown
		success = false
		errorMsg = "unknown message type " + request.RawType()
		return s.handleUnknownType(request)
	}
}

func writeLine(out *bufio.Writer, response []byte) error {
	if _, err := out.Write(response); err != nil {
		return err
	}
	if err := out.WriteByte('\n'); err != nil {
		return err
	}
	return out.Flush()
}
