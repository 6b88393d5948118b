package models

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"
)

// Message kinds accepted on the input stream
const (
	MessageTypeDescribe = "describe"
	MessageTypeCall     = "call"
)

// ContentTypeText is the only content block type the plugin emits
const ContentTypeText = "text"

// PluginRequest is one input line. Fields stay raw so each one can be
// decoded with its own fallback rules.
type PluginRequest struct {
	Type   json.RawMessage `json:"type,omitempty"`
	CallID json.RawMessage `json:"call_id,omitempty"`
	Params json.RawMessage `json:"params,omitempty"`
}

// ErrNotAnObject is returned for lines that are valid JSON but not an object
var ErrNotAnObject = errors.New("expected a JSON object")

// ParsePluginRequest decodes one input line. Keys are matched exactly, so
// "Type" or "TYPE" do not count as the discriminator.
func ParsePluginRequest(line []byte) (*PluginRequest, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(line, &fields); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return nil, fmt.Errorf("%w, got %s", ErrNotAnObject, typeErr.Value)
		}
		return nil, err
	}
	if fields == nil {
		return nil, fmt.Errorf("%w, got null", ErrNotAnObject)
	}

	return &PluginRequest{
		Type:   fields["type"],
		CallID: fields["call_id"],
		Params: fields["params"],
	}, nil
}

// MessageType returns the discriminator as a string and whether it was a JSON string
func (r *PluginRequest) MessageType() (string, bool) {
	if len(r.Type) == 0 {
		return "", false
	}
	var value string
	if err := json.Unmarshal(r.Type, &value); err != nil {
		return "", false
	}
	return value, true
}

// RawType returns the discriminator exactly as it appeared on the wire, or
// "null" when it was missing.
func (r *PluginRequest) RawType() string {
	if len(r.Type) == 0 {
		return "null"
	}
	return string(r.Type)
}

// CallIdentifier returns call_id for logging. Non-string ids are returned in
// their JSON form; a missing id yields "".
func (r *PluginRequest) CallIdentifier() string {
	if len(r.CallID) == 0 {
		return ""
	}
	var value string
	if err := json.Unmarshal(r.CallID, &value); err == nil {
		return value
	}
	return string(r.CallID)
}

// ParamBag decodes params into a field bag. Absent, null or non-object
// params yield an empty bag.
func (r *PluginRequest) ParamBag() map[string]json.RawMessage {
	bag := make(map[string]json.RawMessage)
	if len(r.Params) == 0 {
		return bag
	}
	if err := json.Unmarshal(r.Params, &bag); err != nil || bag == nil {
		return make(map[string]json.RawMessage)
	}
	return bag
}

// ToolDescriptor is the document returned for a describe request
type ToolDescriptor struct {
	Name        string             `json:"name"`
	Description string             `json:"description"`
	Parameters  *jsonschema.Schema `json:"parameters"`
}

// ContentBlock is a single block of call output
type ContentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// ToolResult is the response document for call requests and for any line
// that could not be handled
type ToolResult struct {
	Content []ContentBlock `json:"content"`
	Error   bool           `json:"error"`
}

// NewTextResult wraps text into a single-block result
func NewTextResult(text string, isError bool) ToolResult {
	return ToolResult{
		Content: []ContentBlock{
			{
				Type: ContentTypeText,
				Text: text,
			},
		},
		Error: isError,
	}
}
