package tools

import (
	"context"
	"encoding/json"

	"github.com/google/jsonschema-go/jsonschema"

	"stats-tool/internal/models"
)

// Tool represents the single capability a plugin process exposes
type Tool interface {
	// Name returns the unique identifier for the tool
	Name() string

	// Description returns a human-readable description
	Description() string

	// InputSchema returns JSON schema for tool parameters
	InputSchema() *jsonschema.Schema

	// Call runs the tool against a raw parameter bag. It never fails
	// structurally: problems are reported as text with isError set.
	Call(ctx context.Context, params map[string]json.RawMessage) (text string, isError bool)
}

// NewToolDefinition builds the describe document for a Tool
func NewToolDefinition(tool Tool) models.ToolDescriptor {
	return models.ToolDescriptor{
		Name:        tool.Name(),
		Description: tool.Description(),
		Parameters:  tool.InputSchema(),
	}
}
