package toolcall

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dkoosis/lintbridge/pkg/eslint"
	"github.com/dkoosis/lintbridge/pkg/metrics"
	"github.com/dkoosis/lintbridge/pkg/prettier"
)

// FixCounts is how many issues each tool resolved. Counts can be negative
// when a fix introduced more fixable issues than it removed.
type FixCounts struct {
	ESLint   int `json:"eslint" yaml:"eslint"`
	Prettier int `json:"prettier" yaml:"prettier"`
	Total    int `json:"total" yaml:"total"`
}

// FixResult is the output of the fix tool-call.
type FixResult struct {
	Fixed FixCounts `json:"fixed" yaml:"fixed"`
	Files []string  `json:"files" yaml:"files"`
}

type fileCount struct {
	file     string
	messages int
	fixable  int
}

// LintSnapshot captures per-file lint counts at one point in time.
type LintSnapshot struct {
	files []fileCount
}

// NewLintSnapshot records the message and fixable counts of results.
func NewLintSnapshot(results []eslint.FileResult) LintSnapshot {
	files := make([]fileCount, 0, len(results))
	for _, r := range results {
		files = append(files, fileCount{file: r.FilePath, messages: len(r.Messages), fixable: r.FixableCount()})
	}
	return LintSnapshot{files: files}
}

// Fixable returns the number of tool-fixable issues in the snapshot.
func (s LintSnapshot) Fixable() int {
	n := 0
	for _, f := range s.files {
		n += f.fixable
	}
	return n
}

// LintDelta is the difference between two lint snapshots.
type LintDelta struct {
	Resolved int
	Touched  []string
}

// DiffLint compares fixable counts and reports files whose message count
// dropped or that no longer appear. Files whose count stayed the same are
// not reported even if the messages themselves changed.
func DiffLint(before, after LintSnapshot) LintDelta {
	counts := make(map[string]int, len(after.files))
	for _, f := range after.files {
		counts[f.file] = f.messages
	}

	d := LintDelta{Resolved: before.Fixable() - after.Fixable()}
	for _, f := range before.files {
		n, ok := counts[f.file]
		if !ok || n < f.messages {
			d.Touched = append(d.Touched, f.file)
		}
	}
	return d
}

// FormatSnapshot captures the unformatted file list at one point in time.
type FormatSnapshot struct {
	unformatted []string
}

// NewFormatSnapshot records res.
func NewFormatSnapshot(res prettier.Result) FormatSnapshot {
	return FormatSnapshot{unformatted: append([]string(nil), res.Unformatted...)}
}

// FormatDelta is the difference between two format snapshots.
type FormatDelta struct {
	Resolved int
	Touched  []string
}

// DiffFormat reports files that were unformatted before and are not after.
func DiffFormat(before, after FormatSnapshot) FormatDelta {
	still := make(map[string]struct{}, len(after.unformatted))
	for _, f := range after.unformatted {
		still[f] = struct{}{}
	}

	d := FormatDelta{Resolved: len(before.unformatted) - len(after.unformatted)}
	for _, f := range before.unformatted {
		if _, ok := still[f]; !ok {
			d.Touched = append(d.Touched, f)
		}
	}
	return d
}

// Fix applies ESLint and Prettier fixes under in.Path and reports what
// changed.
func (s *Service) Fix(ctx context.Context, in Input) (*FixResult, error) {
	start := time.Now()
	res, err := s.runFix(ctx, in)
	outcome := metrics.OutcomeOK
	if err != nil {
		outcome = metrics.OutcomeFailed
	}
	metrics.ObserveToolCall("fix", outcome, time.Since(start))
	return res, err
}

func (s *Service) runFix(ctx context.Context, in Input) (*FixResult, error) {
	if _, err := s.prepare("fix", in); err != nil {
		return nil, err
	}

	lintDelta, err := s.fixLint(ctx, in.Path)
	if err != nil {
		return nil, fmt.Errorf("fix %s: %w", in.Path, err)
	}
	formatDelta, err := s.fixFormat(ctx, in.Path)
	if err != nil {
		return nil, fmt.Errorf("fix %s: %w", in.Path, err)
	}

	res := &FixResult{
		Fixed: FixCounts{
			ESLint:   lintDelta.Resolved,
			Prettier: formatDelta.Resolved,
			Total:    lintDelta.Resolved + formatDelta.Resolved,
		},
		Files: union(lintDelta.Touched, formatDelta.Touched),
	}
	metrics.AddResolved(eslint.ToolName, res.Fixed.ESLint)
	metrics.AddResolved(prettier.ToolName, res.Fixed.Prettier)

	s.logger.Info("fix completed",
		slog.String("path", in.Path),
		slog.Int("eslint", res.Fixed.ESLint),
		slog.Int("prettier", res.Fixed.Prettier),
		slog.Int("files", len(res.Files)),
	)
	return res, nil
}

func (s *Service) fixLint(ctx context.Context, path string) (LintDelta, error) {
	before, err := s.lint.Run(ctx, path, false)
	if err != nil {
		return LintDelta{}, fmt.Errorf("eslint before: %w", err)
	}
	if _, err := s.lint.Run(ctx, path, true); err != nil {
		return LintDelta{}, fmt.Errorf("eslint --fix: %w", err)
	}
	after, err := s.lint.Run(ctx, path, false)
	if err != nil {
		return LintDelta{}, fmt.Errorf("eslint after: %w", err)
	}
	return DiffLint(NewLintSnapshot(before), NewLintSnapshot(after)), nil
}

func (s *Service) fixFormat(ctx context.Context, path string) (FormatDelta, error) {
	before, err := s.format.Check(ctx, path)
	if err != nil {
		return FormatDelta{}, fmt.Errorf("prettier before: %w", err)
	}
	if err := s.format.Write(ctx, path); err != nil {
		return FormatDelta{}, fmt.Errorf("prettier --write: %w", err)
	}
	after, err := s.format.Check(ctx, path)
	if err != nil {
		return FormatDelta{}, fmt.Errorf("prettier after: %w", err)
	}
	return DiffFormat(NewFormatSnapshot(before), NewFormatSnapshot(after)), nil
}

// union merges path lists in first-seen order without duplicates.
func union(lists ...[]string) []string {
	out := make([]string, 0)
	seen := make(map[string]struct{})
	for _, l := range lists {
		for _, p := range l {
			if _, ok := seen[p]; ok {
				continue
			}
			seen[p] = struct{}{}
			out = append(out, p)
		}
	}
	return out
}
