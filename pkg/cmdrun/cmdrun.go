// Package cmdrun runs external tools and captures their output without
// treating a non-zero exit status as an error.
package cmdrun

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("lintbridge/cmdrun")

// Command describes a single subprocess invocation.
type Command struct {
	Name string
	Args []string
	Dir  string
}

// String renders the command line for logs and error messages.
func (c Command) String() string {
	if len(c.Args) == 0 {
		return c.Name
	}
	return c.Name + " " + strings.Join(c.Args, " ")
}

// Output is what a finished process produced. ExitCode is the raw status;
// interpreting it is up to the caller.
type Output struct {
	Stdout   []byte
	Stderr   []byte
	ExitCode int
}

// Text returns stdout, falling back to stderr when stdout is empty.
func (o Output) Text() string {
	if len(bytes.TrimSpace(o.Stdout)) > 0 {
		return string(o.Stdout)
	}
	return string(o.Stderr)
}

// Runner launches a command and waits for it to finish. An error is returned
// only when the process could not be run at all.
type Runner interface {
	Run(ctx context.Context, cmd Command) (Output, error)
}

// ExecRunner is the os/exec backed Runner.
type ExecRunner struct {
	logger *slog.Logger
}

// NewExecRunner returns a Runner that spawns real processes.
func NewExecRunner(logger *slog.Logger) *ExecRunner {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExecRunner{logger: logger}
}

// Run executes cmd and captures stdout and stderr.
func (r *ExecRunner) Run(ctx context.Context, cmd Command) (Output, error) {
	ctx, span := tracer.Start(ctx, "cmdrun.Run", trace.WithAttributes(
		attribute.String("cmd.name", cmd.Name),
		attribute.String("cmd.dir", cmd.Dir),
	))
	defer span.End()

	start := time.Now()
	c := exec.CommandContext(ctx, cmd.Name, cmd.Args...) //nolint:gosec // G204: tool binaries come from config
	c.Dir = cmd.Dir

	var stdout, stderr bytes.Buffer
	c.Stdout = &stdout
	c.Stderr = &stderr

	err := c.Run()
	out := Output{Stdout: stdout.Bytes(), Stderr: stderr.Bytes()}

	var exitErr *exec.ExitError
	switch {
	case err == nil:
	case errors.As(err, &exitErr) && ctx.Err() == nil:
		out.ExitCode = exitErr.ExitCode()
	default:
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		r.logger.Debug("command failed to run",
			slog.String("cmd", cmd.String()),
			slog.String("dir", cmd.Dir),
			slog.Any("error", err),
		)
		return out, fmt.Errorf("run %s: %w", cmd.Name, err)
	}

	span.SetAttributes(attribute.Int("cmd.exit_code", out.ExitCode))
	r.logger.Debug("command finished",
		slog.String("cmd", cmd.String()),
		slog.String("dir", cmd.Dir),
		slog.Int("exit_code", out.ExitCode),
		slog.Duration("duration", time.Since(start)),
	)
	return out, nil
}
