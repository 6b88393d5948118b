package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stats-tool/internal/models"
	"stats-tool/pkg/logging"
	"stats-tool/pkg/stats"
)

func newTestServer(t *testing.T) (*PluginServer, *bytes.Buffer) {
	t.Helper()

	logs := &bytes.Buffer{}
	server, err := NewPluginServer(stats.NewStatsTool(), logging.NewLoggingManager(logs))
	require.NoError(t, err)
	return server, logs
}

func decodeResult(t *testing.T, line []byte) models.ToolResult {
	t.Helper()

	var result models.ToolResult
	require.NoError(t, json.Unmarshal(line, &result), "response: %s", line)
	require.Len(t, result.Content, 1)
	assert.Equal(t, models.ContentTypeText, result.Content[0].Type)
	return result
}

func TestHandleLine_Describe(t *testing.T) {
	server, _ := newTestServer(t)
	ctx := context.Background()

	response := server.HandleLine(ctx, []byte(`{"type":"describe"}`))

	var doc map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(response, &doc))
	assert.Len(t, doc, 3)
	assert.JSONEq(t, `"stats"`, string(doc["name"]))
	assert.Contains(t, doc, "description")
	assert.Contains(t, doc, "parameters")
	assert.NotContains(t, doc, "content")

	t.Run("Idempotent", func(t *testing.T) {
		again := server.HandleLine(ctx, []byte(`  {"type":"describe","call_id":"x"}  `))
		assert.Equal(t, response, again)
	})
}

func TestHandleLine_Call(t *testing.T) {
	server, _ := newTestServer(t)
	ctx := context.Background()

	t.Run("Report", func(t *testing.T) {
		response := server.HandleLine(ctx, []byte(`{"type":"call","call_id":"c1","params":{"numbers":[1,2,3,4,5]}}`))

		result := decodeResult(t, response)
		assert.False(t, result.Error)
		assert.Equal(t, "n        = 5\nmin      = 1.0000\nmax      = 5.0000\n"+
			"mean     = 3.0000\nmedian   = 3.0000\nstd_dev  = 1.4142", result.Content[0].Text)
		assert.NotContains(t, string(response), "c1")
	})

	t.Run("ResponseShape", func(t *testing.T) {
		response := server.HandleLine(ctx, []byte(`{"type":"call","params":{"numbers":[2]}}`))

		var doc map[string]json.RawMessage
		require.NoError(t, json.Unmarshal(response, &doc))
		assert.Len(t, doc, 2)
		assert.JSONEq(t, `false`, string(doc["error"]))
	})

	t.Run("EmptyNumbers", func(t *testing.T) {
		result := decodeResult(t, server.HandleLine(ctx, []byte(`{"type":"call","params":{"numbers":[]}}`)))
		assert.True(t, result.Error)
		assert.Equal(t, "Error: 'numbers' must be a non-empty array", result.Content[0].Text)
	})

	t.Run("MissingParams", func(t *testing.T) {
		result := decodeResult(t, server.HandleLine(ctx, []byte(`{"type":"call"}`)))
		assert.True(t, result.Error)
		assert.Equal(t, "Error: 'numbers' must be a non-empty array", result.Content[0].Text)
	})

	t.Run("ParamsNotAnObject", func(t *testing.T) {
		result := decodeResult(t, server.HandleLine(ctx, []byte(`{"type":"call","params":[1,2]}`)))
		assert.True(t, result.Error)
		assert.Equal(t, "Error: 'numbers' must be a non-empty array", result.Content[0].Text)
	})

	t.Run("NonNumericValue", func(t *testing.T) {
		result := decodeResult(t, server.HandleLine(ctx, []byte(`{"type":"call","params":{"numbers":["a"]}}`)))
		assert.True(t, result.Error)
		assert.True(t, strings.HasPrefix(result.Content[0].Text, "Error: non-numeric value in numbers: "))
	})
}

func TestHandleLine_Errors(t *testing.T) {
	server, _ := newTestServer(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		line     string
		wantText string
		prefix   bool
	}{
		{name: "malformed", line: `{"type":`, wantText: "JSON parse error: ", prefix: true},
		{name: "not json", line: `hello`, wantText: "JSON parse error: ", prefix: true},
		{name: "array document", line: `[1,2]`, wantText: "JSON parse error: ", prefix: true},
		{name: "null document", line: `null`, wantText: "JSON parse error: ", prefix: true},
		{name: "unknown type", line: `{"type":"foo"}`, wantText: `Unknown message type: "foo"`},
		{name: "missing type", line: `{"params":{}}`, wantText: "Unknown message type: null"},
		{name: "numeric type", line: `{"type":3}`, wantText: "Unknown message type: 3"},
		{name: "case sensitive", line: `{"type":"DESCRIBE"}`, wantText: `Unknown message type: "DESCRIBE"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := decodeResult(t, server.HandleLine(ctx, []byte(tt.line)))
			assert.True(t, result.Error)
			if tt.prefix {
				assert.True(t, strings.HasPrefix(result.Content[0].Text, tt.wantText), result.Content[0].Text)
			} else {
				assert.Equal(t, tt.wantText, result.Content[0].Text)
			}
		})
	}

	t.Run("BlankLine", func(t *testing.T) {
		assert.Nil(t, server.HandleLine(ctx, []byte(" \t ")))
	})
}

func TestStart_Stream(t *testing.T) {
	t.Run("OneResponsePerNonBlankLine", func(t *testing.T) {
		server, _ := newTestServer(t)
		input := strings.Join([]string{
			`not json`,
			``,
			`   `,
			`{"type":"describe"}`,
			`{"type":"call","params":{"numbers":[1,2,3,4],"percentiles":[50]}}`,
			`{"type":"nope"}`,
		}, "\n")
		out := &bytes.Buffer{}

		require.NoError(t, server.Start(context.Background(), strings.NewReader(input), out))

		lines := strings.Split(strings.TrimSuffix(out.String(), "\n"), "\n")
		require.Len(t, lines, 4)

		first := decodeResult(t, []byte(lines[0]))
		assert.True(t, first.Error)
		assert.True(t, strings.HasPrefix(first.Content[0].Text, "JSON parse error: "))

		assert.Contains(t, lines[1], `"name":"stats"`)

		third := decodeResult(t, []byte(lines[2]))
		assert.False(t, third.Error)
		assert.True(t, strings.HasSuffix(third.Content[0].Text, "p50      = 2.5000"))

		fourth := decodeResult(t, []byte(lines[3]))
		assert.Equal(t, `Unknown message type: "nope"`, fourth.Content[0].Text)
	})

	t.Run("EmptyInput", func(t *testing.T) {
		server, _ := newTestServer(t)
		out := &bytes.Buffer{}

		require.NoError(t, server.Start(context.Background(), strings.NewReader(""), out))
		assert.Empty(t, out.String())
	})

	t.Run("LongLine", func(t *testing.T) {
		server, _ := newTestServer(t)
		numbers := strings.TrimSuffix(strings.Repeat("1.5,", 50000), ",")
		input := `{"type":"call","params":{"numbers":[` + numbers + `]}}` + "\n"
		out := &bytes.Buffer{}

		require.NoError(t, server.Start(context.Background(), strings.NewReader(input), out))

		result := decodeResult(t, bytes.TrimSuffix(out.Bytes(), []byte("\n")))
		assert.False(t, result.Error)
		assert.True(t, strings.HasPrefix(result.Content[0].Text, "n        = 50000\n"))
	})

	t.Run("CancelledContext", func(t *testing.T) {
		server, _ := newTestServer(t)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		err := server.Start(ctx, strings.NewReader(`{"type":"describe"}`+"\n"), &bytes.Buffer{})
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("WriteFailure", func(t *testing.T) {
		server, _ := newTestServer(t)

		err := server.Start(context.Background(), strings.NewReader(`{"type":"describe"}`+"\n"), failingWriter{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "OUTPUT_WRITE_FAILED")
	})

	t.Run("ReadFailure", func(t *testing.T) {
		server, _ := newTestServer(t)

		err := server.Start(context.Background(), failingReader{}, &bytes.Buffer{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "INPUT_READ_FAILED")
	})
}

func TestPanickingToolDoesNotStopLoop(t *testing.T) {
	server, err := NewPluginServer(&panickingTool{}, logging.NewLoggingManager(nil))
	require.NoError(t, err)

	input := `{"type":"call","params":{}}` + "\n" + `{"type":"describe"}` + "\n"
	out := &bytes.Buffer{}
	require.NoError(t, server.Start(context.Background(), strings.NewReader(input), out))

	lines := strings.Split(strings.TrimSuffix(out.String(), "\n"), "\n")
	require.Len(t, lines, 2)

	result := decodeResult(t, []byte(lines[0]))
	assert.True(t, result.Error)
	assert.Equal(t, "Error: internal error: kaboom", result.Content[0].Text)
	assert.Contains(t, lines[1], `"name":"panicky"`)

	require.NoError(t, server.Shutdown(context.Background()))
	assert.Equal(t, int64(1), server.ToolStats().RecoveredPanics)
}

func TestShutdownReportsStats(t *testing.T) {
	server, logs := newTestServer(t)
	ctx := context.Background()

	server.HandleLine(ctx, []byte(`{"type":"call","params":{"numbers":[1,2]}}`))
	server.HandleLine(ctx, []byte(`{"type":"call","params":{"numbers":[]}}`))
	require.NoError(t, server.Shutdown(ctx))

	var shutdown map[string]interface{}
	for _, line := range strings.Split(strings.TrimSpace(logs.String()), "\n") {
		var entry map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(line), &entry))
		if entry["shutdown_event"] == "shutdown_complete" {
			shutdown = entry
		}
	}

	require.NotNil(t, shutdown, "logs: %s", logs.String())
	assert.EqualValues(t, 2, shutdown["total_invocations"])
	assert.EqualValues(t, 1, shutdown["failed_invocations"])
	assert.Greater(t, shutdown["log_messages"], float64(0))
	assert.Contains(t, shutdown, "log_errors")
	assert.Contains(t, shutdown, "log_messages_by_level")
}

func TestRequestLogging(t *testing.T) {
	server, logs := newTestServer(t)

	server.HandleLine(context.Background(), []byte(`{"type":"call","call_id":"abc-123","params":{"numbers":[1]}}`))

	assert.Contains(t, logs.String(), `"call_id":"abc-123"`)
	assert.Contains(t, logs.String(), `"message_type":"call"`)
	assert.Contains(t, logs.String(), "Request processed")
}

type failingWriter struct{}

func (failingWriter) Write(p []byte) (int, error) {
	return 0, errors.New("broken pipe")
}

type failingReader struct{}

func (failingReader) Read(p []byte) (int, error) {
	return 0, errors.New("device gone")
}

type panickingTool struct{}

func (*panickingTool) Name() string { return "panicky" }

func (*panickingTool) Description() string { return "always panics" }

func (*panickingTool) InputSchema() *jsonschema.Schema { return &jsonschema.Schema{Type: "object"} }

func (*panickingTool) Call(ctx context.Context, params map[string]json.RawMessage) (string, bool) {
	panic("kaboom")
}
