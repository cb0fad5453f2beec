// Package eslint runs ESLint against a path and normalizes its JSON output.
package eslint

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/dkoosis/lintbridge/pkg/cmdrun"
	"github.com/dkoosis/lintbridge/pkg/metrics"
)

// ToolName is the label used in errors, logs and metrics.
const ToolName = "eslint"

// LintableExtensions are the file types ESLint is asked to check.
var LintableExtensions = []string{".ts", ".tsx", ".js", ".jsx"}

// documentExtensions are supported by the formatter but have nothing to lint.
var documentExtensions = []string{".json", ".md"}

// ESLint exit statuses: 0 clean, 1 lint problems, 2 configuration or
// internal error.
const exitFindings = 1

// Message is one raw finding as ESLint reported it.
type Message struct {
	RuleID      string
	Line        int
	Column      int
	Message     string
	Severity    int // 1 = warning, 2 = error
	AutoFixable bool
}

// IsError reports whether ESLint flagged the message as an error.
func (m Message) IsError() bool {
	return m.Severity == 2
}

// FileResult groups the messages for a single file.
type FileResult struct {
	FilePath string
	Messages []Message
}

// FixableCount returns how many messages ESLint can fix on its own.
func (f FileResult) FixableCount() int {
	n := 0
	for _, m := range f.Messages {
		if m.AutoFixable {
			n++
		}
	}
	return n
}

// Runner invokes ESLint through a cmdrun.Runner.
type Runner struct {
	cmd    cmdrun.Runner
	bin    string
	logger *slog.Logger
}

// NewRunner returns a Runner that launches bin (usually "eslint").
func NewRunner(cmd cmdrun.Runner, bin string, logger *slog.Logger) *Runner {
	if bin == "" {
		bin = ToolName
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{cmd: cmd, bin: bin, logger: logger}
}

// Run lints path. With fix set, ESLint rewrites fixable problems in place and
// reports what remains. Findings are never an error; a launch failure or an
// ESLint internal error is returned as *cmdrun.ToolError.
func (r *Runner) Run(ctx context.Context, path string, fix bool) ([]FileResult, error) {
	mode := "report"
	if fix {
		mode = "fix"
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", path, err)
	}

	pattern, dir, ok := Target(abs)
	if !ok {
		r.logger.Debug("nothing to lint", slog.String("path", abs))
		return nil, nil
	}

	args := []string{pattern, "--format", "json", "--no-error-on-unmatched-pattern"}
	if fix {
		args = append(args, "--fix")
	}

	start := time.Now()
	out, err := r.cmd.Run(ctx, cmdrun.Command{Name: r.bin, Args: args, Dir: dir})
	if err != nil {
		metrics.ObserveToolRun(ToolName, mode, metrics.OutcomeFailed, time.Since(start))
		return nil, cmdrun.NewToolError(ToolName, 0, nil, err)
	}
	if out.ExitCode > exitFindings {
		metrics.ObserveToolRun(ToolName, mode, metrics.OutcomeFailed, time.Since(start))
		return nil, cmdrun.NewToolError(ToolName, out.ExitCode, out.Stderr, nil)
	}

	results, err := Parse(out.Stdout)
	if err != nil {
		metrics.ObserveToolRun(ToolName, mode, metrics.OutcomeFailed, time.Since(start))
		return nil, err
	}

	metrics.ObserveToolRun(ToolName, mode, metrics.OutcomeOK, time.Since(start))
	r.logger.Debug("eslint completed",
		slog.String("path", abs),
		slog.String("mode", mode),
		slog.Int("files", len(results)),
		slog.Duration("duration", time.Since(start)),
	)
	return results, nil
}

// Target picks the ESLint argument and working directory for an absolute
// path. A lintable file is passed as-is from its own directory; any other
// path is treated as a directory and expanded to a recursive glob. ok is
// false for document files that ESLint has nothing to say about.
func Target(abs string) (pattern, dir string, ok bool) {
	ext := strings.ToLower(filepath.Ext(abs))
	if hasExt(LintableExtensions, ext) {
		return abs, filepath.Dir(abs), true
	}
	if hasExt(documentExtensions, ext) {
		return "", "", false
	}
	return abs + "/**/*.{ts,tsx,js,jsx}", abs, true
}

func hasExt(exts []string, ext string) bool {
	for _, e := range exts {
		if e == ext {
			return true
		}
	}
	return false
}

type jsonFile struct {
	FilePath string        `json:"filePath"`
	Messages []jsonMessage `json:"messages"`
}

type jsonMessage struct {
	RuleID   *string         `json:"ruleId"`
	Severity int             `json:"severity"`
	Message  string          `json:"message"`
	Line     int             `json:"line"`
	Column   int             `json:"column"`
	Fix      json.RawMessage `json:"fix,omitempty"`
}

// Parse decodes the output of `eslint --format json`. Empty output means no
// files were linted.
func Parse(data []byte) ([]FileResult, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, nil
	}

	var files []jsonFile
	if err := json.Unmarshal(data, &files); err != nil {
		return nil, fmt.Errorf("%w: eslint: %v", cmdrun.ErrParseOutput, err)
	}

	results := make([]FileResult, 0, len(files))
	for _, f := range files {
		fr := FileResult{FilePath: f.FilePath, Messages: make([]Message, 0, len(f.Messages))}
		for _, m := range f.Messages {
			rule := "unknown"
			if m.RuleID != nil && *m.RuleID != "" {
				rule = *m.RuleID
			}
			fr.Messages = append(fr.Messages, Message{
				RuleID:      rule,
				Line:        m.Line,
				Column:      m.Column,
				Message:     m.Message,
				Severity:    m.Severity,
				AutoFixable: len(m.Fix) > 0 && string(m.Fix) != "null",
			})
		}
		results = append(results, fr)
	}
	return results, nil
}
