package cmdrun

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrToolFailed means the tool could not run or reported an internal
	// error, as opposed to reporting findings.
	ErrToolFailed = errors.New("tool execution failed")

	// ErrParseOutput means the tool ran but its output was not understood.
	ErrParseOutput = errors.New("failed to parse tool output")
)

// ToolError carries the context of a failed tool invocation.
type ToolError struct {
	Tool     string
	ExitCode int
	Stderr   string
	Err      error
}

func (e *ToolError) Error() string {
	msg := fmt.Sprintf("%s: %v", e.Tool, e.Err)
	if e.ExitCode != 0 {
		msg = fmt.Sprintf("%s (exit %d)", msg, e.ExitCode)
	}
	if s := strings.TrimSpace(e.Stderr); s != "" {
		msg += ": " + firstLine(s)
	}
	return msg
}

// Unwrap supports errors.Is/As.
func (e *ToolError) Unwrap() error {
	return e.Err
}

// NewToolError wraps cause under ErrToolFailed.
func NewToolError(tool string, exitCode int, stderr []byte, cause error) *ToolError {
	err := ErrToolFailed
	if cause != nil {
		err = fmt.Errorf("%w: %w", ErrToolFailed, cause)
	}
	return &ToolError{Tool: tool, ExitCode: exitCode, Stderr: string(stderr), Err: err}
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
