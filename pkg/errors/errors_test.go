package errors

import (
	"testing"
	"time"
)

func TestStructuredError(t *testing.T) {
	t.Run("NewStructuredError creates error with correct fields", func(t *testing.T) {
		err := NewStructuredError(ErrorCategoryProtocol, ErrorSeverityMedium, "TEST_CODE", "Test message")

		if err.Category != ErrorCategoryProtocol {
			t.Errorf("Expected category %s, got %s", ErrorCategoryProtocol, err.Category)
		}
		if err.Severity != ErrorSeverityMedium {
			t.Errorf("Expected severity %s, got %s", ErrorSeverityMedium, err.Severity)
		}
		if err.Code != "TEST_CODE" {
			t.Errorf("Expected code TEST_CODE, got %s", err.Code)
		}
		if err.Message != "Test message" {
			t.Errorf("Expected message 'Test message', got %s", err.Message)
		}
		if err.Recoverable != true {
			t.Errorf("Expected recoverable to be true for non-critical error")
		}
	})

	t.Run("Critical errors are not recoverable", func(t *testing.T) {
		err := NewStructuredError(ErrorCategorySystem, ErrorSeverityCritical, "CRITICAL", "Critical error")

		if err.Recoverable != false {
			t.Errorf("Expected critical error to not be recoverable")
		}
	})

	t.Run("WithContext adds context", func(t *testing.T) {
		err := NewValidationError(ErrCodeNonNumericValue, "non-numeric value in numbers", nil).
			WithContext("field", "numbers").
			WithContext("index", 2)

		if err.Context["field"] != "numbers" {
			t.Errorf("Expected context field 'numbers', got %v", err.Context["field"])
		}
		if err.Context["index"] != 2 {
			t.Errorf("Expected context index 2, got %v", err.Context["index"])
		}
	})

	t.Run("Error method returns formatted string", func(t *testing.T) {
		err := NewProtocolError(ErrCodeUnknownMessageType, "Unknown message type", nil)
		expected := "[protocol:UNKNOWN_MESSAGE_TYPE] Unknown message type"

		if err.Error() != expected {
			t.Errorf("Expected error string '%s', got '%s'", expected, err.Error())
		}
	})

	t.Run("Error method includes details when present", func(t *testing.T) {
		err := NewProtocolError(ErrCodeParseError, "JSON parse error", nil).
			WithDetails("unexpected end of JSON input")
		expected := "[protocol:PARSE_ERROR] JSON parse error: unexpected end of JSON input"

		if err.Error() != expected {
			t.Errorf("Expected error string '%s', got '%s'", expected, err.Error())
		}
	})
}

func TestToolText(t *testing.T) {
	tests := []struct {
		name string
		err  *StructuredError
		want string
	}{
		{
			name: "message only",
			err:  NewValidationError(ErrCodeInvalidNumbers, "'numbers' must be a non-empty array", nil),
			want: "Error: 'numbers' must be a non-empty array",
		},
		{
			name: "message with details",
			err: NewValidationError(ErrCodeNonNumericValue, "non-numeric value in numbers", nil).
				WithDetails(`unable to cast "a" of type string to float64`),
			want: `Error: non-numeric value in numbers: unable to cast "a" of type string to float64`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.ToolText(); got != tt.want {
				t.Errorf("ToolText() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPredefinedErrorConstructors(t *testing.T) {
	t.Run("NewProtocolError creates correct error", func(t *testing.T) {
		err := NewProtocolError(ErrCodeParseError, "JSON parse error", nil)

		if err.Category != ErrorCategoryProtocol {
			t.Errorf("Expected category %s, got %s", ErrorCategoryProtocol, err.Category)
		}
		if err.Severity != ErrorSeverityMedium {
			t.Errorf("Expected severity %s, got %s", ErrorSeverityMedium, err.Severity)
		}
	})

	t.Run("NewValidationError creates correct error", func(t *testing.T) {
		err := NewValidationError(ErrCodeInvalidNumbers, "bad numbers", nil)

		if err.Category != ErrorCategoryValidation {
			t.Errorf("Expected category %s, got %s", ErrorCategoryValidation, err.Category)
		}
		if err.Severity != ErrorSeverityLow {
			t.Errorf("Expected severity %s for validation error, got %s", ErrorSeverityLow, err.Severity)
		}
	})

	t.Run("NewSystemError has critical severity", func(t *testing.T) {
		err := NewSystemError(ErrCodeHandlerPanic, "panic", nil)

		if err.Category != ErrorCategorySystem {
			t.Errorf("Expected category %s, got %s", ErrorCategorySystem, err.Category)
		}
		if err.Severity != ErrorSeverityCritical {
			t.Errorf("Expected severity %s for system error, got %s", ErrorSeverityCritical, err.Severity)
		}
		if err.IsRecoverable() {
			t.Errorf("Expected system error to not be recoverable")
		}
	})
}

func TestErrorUnwrapping(t *testing.T) {
	t.Run("Unwrap returns underlying error", func(t *testing.T) {
		originalErr := NewValidationError("ORIGINAL", "Original error", nil)
		structuredErr := NewProtocolError(ErrCodeParseError, "Wrapped error", originalErr)

		if structuredErr.Unwrap() != originalErr {
			t.Errorf("Expected unwrapped error to be original error")
		}
	})

	t.Run("Unwrap returns nil when no cause", func(t *testing.T) {
		structuredErr := NewValidationError("VALIDATION", "No cause", nil)

		if structuredErr.Unwrap() != nil {
			t.Errorf("Expected unwrapped error to be nil when no cause")
		}
	})
}

func TestErrorTimestamp(t *testing.T) {
	before := time.Now()
	err := NewValidationError("TEST", "Test error", nil)
	after := time.Now()

	if err.Timestamp.Before(before) || err.Timestamp.After(after) {
		t.Errorf("Expected error timestamp to be between %v and %v, got %v",
			before, after, err.Timestamp)
	}
}
