package server

import (
	"bytes"
	"encoding/json"
	"fmt"

	"stats-tool/internal/models"
	"stats-tool/pkg/errors"
)

// encodeFailureResponse is written when a result cannot be encoded at all
var encodeFailureResponse = []byte(`{"content":[{"type":"text","text":"Error: internal error: response could not be encoded"}],"error":true}`)

// handleParseError reports a line that is not a JSON object
func (s *PluginServer) handleParseError(err error) []byte {
	structuredErr := errors.NewProtocolError(errors.ErrCodeParseError, "JSON parse error", err).
		WithDetails(err.Error())
	s.logger.WithError(structuredErr).Debug("Rejected malformed line")

	return s.createResultResponse(fmt.Sprintf("JSON parse error: %s", err), true)
}

// handleUnknownType reports a discriminator other than describe or call.
// The value is echoed exactly as it appeared on the wire.
func (s *PluginServer) handleUnknownType(request *models.PluginRequest) []byte {
	structuredErr := errors.NewProtocolError(errors.ErrCodeUnknownMessageType, "Unknown message type", nil).
		WithDetails(request.RawType())
	s.logger.WithError(structuredErr).Debug("Rejected unknown message type")

	return s.createResultResponse(fmt.Sprintf("Unknown message type: %s", request.RawType()), true)
}

// createResultResponse encodes a single-block text result
func (s *PluginServer) createResultResponse(text string, isError bool) []byte {
	response, err := encodeResponse(models.NewTextResult(text, isError))
	if err != nil {
		s.logger.WithError(err).Error("Failed to encode response")
		return encodeFailureResponse
	}
	return response
}

// encodeResponse renders v as compact JSON without HTML escaping or a trailing newline
func encodeResponse(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
