package toolcall

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dkoosis/lintbridge/pkg/classify"
	"github.com/dkoosis/lintbridge/pkg/eslint"
	"github.com/dkoosis/lintbridge/pkg/metrics"
)

// Severity of an issue.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// FormatRule labels the synthetic issue raised for an unformatted file.
const FormatRule = "prettier/prettier"

const formatMessage = "File is not formatted according to Prettier rules"

// Issue is one normalized finding. Fixable and ClaudeFixable are never both
// true.
type Issue struct {
	File          string   `json:"file" yaml:"file"`
	Line          int      `json:"line" yaml:"line"`
	Column        int      `json:"column" yaml:"column"`
	Rule          string   `json:"rule" yaml:"rule"`
	Message       string   `json:"message" yaml:"message"`
	Severity      Severity `json:"severity" yaml:"severity"`
	Fixable       bool     `json:"fixable" yaml:"fixable"`
	ClaudeFixable bool     `json:"claudeFixable" yaml:"claudeFixable"`
}

// Summary aggregates a lint report.
type Summary struct {
	Errors        int `json:"errors" yaml:"errors"`
	Warnings      int `json:"warnings" yaml:"warnings"`
	Fixable       int `json:"fixable" yaml:"fixable"`
	ClaudeFixable int `json:"claudeFixable" yaml:"claudeFixable"`
	Total         int `json:"total" yaml:"total"`
}

// LintResult is the output of the lint tool-call.
type LintResult struct {
	Issues  []Issue `json:"issues" yaml:"issues"`
	Summary Summary `json:"summary" yaml:"summary"`
}

// Lint reports lint and formatting issues under in.Path without modifying
// anything on disk.
func (s *Service) Lint(ctx context.Context, in Input) (*LintResult, error) {
	start := time.Now()
	res, err := s.runLint(ctx, in)
	outcome := metrics.OutcomeOK
	if err != nil {
		outcome = metrics.OutcomeFailed
	}
	metrics.ObserveToolCall("lint", outcome, time.Since(start))
	return res, err
}

func (s *Service) runLint(ctx context.Context, in Input) (*LintResult, error) {
	l, err := s.prepare("lint", in)
	if err != nil {
		return nil, err
	}

	files, err := s.lint.Run(ctx, in.Path, false)
	if err != nil {
		return nil, fmt.Errorf("lint %s: %w", in.Path, err)
	}
	format, err := s.format.Check(ctx, in.Path)
	if err != nil {
		return nil, fmt.Errorf("lint %s: format check: %w", in.Path, err)
	}

	issues := make([]Issue, 0)
	for _, f := range files {
		for _, m := range f.Messages {
			issues = append(issues, issueFromESLint(f.FilePath, m))
		}
	}
	for _, file := range format.Unformatted {
		issues = append(issues, Issue{
			File:     file,
			Line:     1,
			Column:   1,
			Rule:     FormatRule,
			Message:  formatMessage,
			Severity: SeverityError,
			Fixable:  true,
		})
	}

	res := &LintResult{Issues: issues, Summary: Summarize(issues)}
	metrics.AddIssues("fixable", res.Summary.Fixable)
	metrics.AddIssues("contextual", res.Summary.ClaudeFixable)
	metrics.AddIssues("other", res.Summary.Total-res.Summary.Fixable-res.Summary.ClaudeFixable)

	s.logger.Info("lint completed",
		slog.String("path", in.Path),
		slog.String("language", string(l)),
		slog.Int("issues", res.Summary.Total),
		slog.Int("fixable", res.Summary.Fixable),
	)
	return res, nil
}

func issueFromESLint(file string, m eslint.Message) Issue {
	fixable, contextual := classify.Classify(m.RuleID, m.AutoFixable)
	sev := SeverityWarning
	if m.IsError() {
		sev = SeverityError
	}
	return Issue{
		File:          file,
		Line:          m.Line,
		Column:        m.Column,
		Rule:          m.RuleID,
		Message:       m.Message,
		Severity:      sev,
		Fixable:       fixable,
		ClaudeFixable: contextual,
	}
}

// Summarize counts issues by severity and resolution class.
func Summarize(issues []Issue) Summary {
	sum := Summary{Total: len(issues)}
	for _, is := range issues {
		if is.Severity == SeverityError {
			sum.Errors++
		} else {
			sum.Warnings++
		}
		if is.Fixable {
			sum.Fixable++
		}
		if is.ClaudeFixable {
			sum.ClaudeFixable++
		}
	}
	return sum
}
