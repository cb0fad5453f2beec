// Package prettier runs Prettier in check or write mode and reports the files
// that are not formatted.
//
// A formatter that cannot be launched is not an error here: the failure is
// logged at WARN and the check reports no unformatted files.
package prettier

import (
	"bufio"
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/dkoosis/lintbridge/pkg/cmdrun"
	"github.com/dkoosis/lintbridge/pkg/metrics"
)

// ToolName is the label used in errors, logs and metrics.
const ToolName = "prettier"

// SupportedExtensions are the file types the formatter is pointed at.
var SupportedExtensions = []string{".ts", ".tsx", ".js", ".jsx", ".json", ".md"}

const globSuffix = "/**/*.{ts,tsx,js,jsx,json,md}"

// statusPrefixes mark lines Prettier prints that are not file paths.
var statusPrefixes = []string{"Checking", "All", "["}

// Result lists files that do not match Prettier's output, as absolute paths.
type Result struct {
	Unformatted []string
}

// Runner invokes Prettier through a cmdrun.Runner.
type Runner struct {
	cmd    cmdrun.Runner
	bin    string
	logger *slog.Logger
}

// NewRunner returns a Runner that launches bin (usually "prettier").
func NewRunner(cmd cmdrun.Runner, bin string, logger *slog.Logger) *Runner {
	if bin == "" {
		bin = ToolName
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{cmd: cmd, bin: bin, logger: logger}
}

// Target returns the Prettier argument and working directory for path.
func Target(path string) (pattern, dir string) {
	if IsSupported(path) {
		return path, filepath.Dir(path)
	}
	return strings.TrimRight(path, "/") + globSuffix, path
}

// IsSupported reports whether path names a file type Prettier is run on.
func IsSupported(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range SupportedExtensions {
		if e == ext {
			return true
		}
	}
	return false
}

// Check lists the files under path that Prettier would rewrite.
func (r *Runner) Check(ctx context.Context, path string) (Result, error) {
	files, err := r.run(ctx, path, "check", "--list-different")
	return Result{Unformatted: files}, err
}

// Write formats the files under path in place.
func (r *Runner) Write(ctx context.Context, path string) error {
	_, err := r.run(ctx, path, "write", "--write")
	return err
}

func (r *Runner) run(ctx context.Context, path, mode, flag string) ([]string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	pattern, dir := Target(abs)
	cmd := cmdrun.Command{Name: r.bin, Args: []string{pattern, flag, "--ignore-unknown"}, Dir: dir}

	start := time.Now()
	out, err := r.cmd.Run(ctx, cmd)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			metrics.ObserveToolRun(ToolName, mode, metrics.OutcomeFailed, time.Since(start))
			return nil, ctxErr
		}
		metrics.ObserveToolRun(ToolName, mode, metrics.OutcomeIgnored, time.Since(start))
		r.logger.Warn("prettier could not be run, treating as formatted",
			slog.String("path", abs),
			slog.String("mode", mode),
			slog.Any("error", err),
		)
		return nil, nil
	}

	if out.ExitCode == 0 {
		metrics.ObserveToolRun(ToolName, mode, metrics.OutcomeOK, time.Since(start))
		return nil, nil
	}

	outcome := metrics.OutcomeOK
	if out.ExitCode > 1 {
		outcome = metrics.OutcomeFailed
		r.logger.Warn("prettier reported an error",
			slog.String("path", abs),
			slog.Int("exit_code", out.ExitCode),
			slog.String("stderr", firstLine(out.Stderr)),
		)
	}
	metrics.ObserveToolRun(ToolName, mode, outcome, time.Since(start))

	if mode != "check" {
		return nil, nil
	}
	return ParseList(out.Text(), dir), nil
}

// ParseList extracts file paths from Prettier output, dropping blank and
// status lines. Relative paths are resolved against dir.
func ParseList(output, dir string) []string {
	var files []string
	sc := bufio.NewScanner(strings.NewReader(output))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || isStatus(line) {
			continue
		}
		if !filepath.IsAbs(line) {
			line = filepath.Join(dir, line)
		}
		files = append(files, filepath.Clean(line))
	}
	return files
}

func isStatus(line string) bool {
	for _, p := range statusPrefixes {
		if strings.HasPrefix(line, p) {
			return true
		}
	}
	return false
}

func firstLine(b []byte) string {
	s := strings.TrimSpace(string(b))
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
