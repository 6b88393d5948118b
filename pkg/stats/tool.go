package stats

import (
	"context"
	"encoding/json"

	"github.com/google/jsonschema-go/jsonschema"

	"stats-tool/pkg/tools"
)

var _ tools.Tool = (*StatsTool)(nil)

// StatsTool computes descriptive statistics on a list of numbers
type StatsTool struct{}

// NewStatsTool creates a new StatsTool
func NewStatsTool() *StatsTool {
	return &StatsTool{}
}

// Name returns the tool name
func (t *StatsTool) Name() string {
	return ToolName
}

// Description returns the tool description
func (t *StatsTool) Description() string {
	return ToolDescription
}

// InputSchema returns a fresh copy of the JSON schema for tool parameters
func (t *StatsTool) InputSchema() *jsonschema.Schema {
	return parametersSchema()
}

// Call decodes the parameter bag and renders the report. Invalid numbers fail
// the call; invalid precision or percentiles fall back silently.
func (t *StatsTool) Call(ctx context.Context, params map[string]json.RawMessage) (string, bool) {
	decoded, se := DecodeCallParams(params)
	if se != nil {
		return se.ToolText(), true
	}

	summary, err := Summarize(decoded.Numbers, decoded.Percentiles)
	if err != nil {
		// decoding already rejects empty input
		return errInvalidNumbers(err).ToolText(), true
	}

	return summary.Format(decoded.Precision), false
}
