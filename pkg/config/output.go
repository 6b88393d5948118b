package config

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// OpenLogOutput resolves a log destination. The returned close function is
// always non-nil.
func OpenLogOutput(target string, stderr io.Writer) (io.Writer, func() error, error) {
	noop := func() error { return nil }

	switch strings.ToLower(strings.TrimSpace(target)) {
	case "", OutputStderr:
		return stderr, noop, nil
	case OutputDiscard:
		return io.Discard, noop, nil
	}

	f, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, noop, fmt.Errorf("open log output %s: %w", target, err)
	}
	return f, f.Close, nil
}
