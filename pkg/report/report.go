// Package report renders tool-call results for the command line.
package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/fatih/color"
	"gopkg.in/yaml.v3"

	"github.com/dkoosis/lintbridge/pkg/classify"
	"github.com/dkoosis/lintbridge/pkg/logscan"
	"github.com/dkoosis/lintbridge/pkg/sarif"
	"github.com/dkoosis/lintbridge/pkg/toolcall"
)

// Output formats.
const (
	FormatHuman = "human"
	FormatJSON  = "json"
	FormatYAML  = "yaml"
	FormatSARIF = "sarif"
)

// ErrUnknownFormat is returned for an unsupported -o value.
var ErrUnknownFormat = errors.New("unknown output format")

// CheckFormat rejects formats Lint or Fix cannot render. SARIF only applies
// to lint reports.
func CheckFormat(format string, lint bool) error {
	switch format {
	case FormatHuman, FormatJSON, FormatYAML:
		return nil
	case FormatSARIF:
		if lint {
			return nil
		}
	}
	return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
}

// Lint writes a lint report in format.
func Lint(w io.Writer, res *toolcall.LintResult, format, version string) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, res)
	case FormatYAML:
		return writeYAML(w, res)
	case FormatSARIF:
		return sarif.NewEncoder(w).Encode(toolcall.ToSARIF(res, version))
	case FormatHuman:
		lintHuman(w, res)
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// Fix writes a fix report in format.
func Fix(w io.Writer, res *toolcall.FixResult, format string) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, res)
	case FormatYAML:
		return writeYAML(w, res)
	case FormatHuman:
		fixHuman(w, res)
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

func lintHuman(w io.Writer, res *toolcall.LintResult) {
	red := color.New(color.FgRed, color.Bold)
	yellow := color.New(color.FgYellow, color.Bold)
	green := color.New(color.FgGreen, color.Bold)
	cyan := color.New(color.FgCyan)

	if len(res.Issues) == 0 {
		green.Fprintln(w, "✓ No issues found")
		return
	}

	byFile := map[string][]toolcall.Issue{}
	var files []string
	for _, is := range res.Issues {
		if _, ok := byFile[is.File]; !ok {
			files = append(files, is.File)
		}
		byFile[is.File] = append(byFile[is.File], is)
	}

	for _, file := range files {
		color.New(color.Underline).Fprintln(w, file)
		issues := byFile[file]
		sort.SliceStable(issues, func(i, j int) bool {
			if issues[i].Line != issues[j].Line {
				return issues[i].Line < issues[j].Line
			}
			return issues[i].Column < issues[j].Column
		})
		for _, is := range issues {
			sev := yellow.Sprint("warning")
			if is.Severity == toolcall.SeverityError {
				sev = red.Sprint("error  ")
			}
			fmt.Fprintf(w, "  %4d:%-3d %s  %s  %s%s\n",
				is.Line, is.Column, sev, is.Message, color.HiBlackString(is.Rule), tag(is, cyan))
		}
		fmt.Fprintln(w)
	}

	s := res.Summary
	fmt.Fprintf(w, "%s %s (%s, %s)\n",
		red.Sprint("✖"), plural(s.Total, "problem"),
		plural(s.Errors, "error"), plural(s.Warnings, "warning"))
	fmt.Fprintf(w, "  %s fixable with `lintbridge fix`\n", green.Sprint(s.Fixable))
	fmt.Fprintf(w, "  %s need contextual changes\n", cyan.Sprint(s.ClaudeFixable))
}

func tag(is toolcall.Issue, c *color.Color) string {
	switch {
	case is.Fixable:
		return " " + c.Sprint("[fixable]")
	case is.ClaudeFixable:
		return " " + c.Sprintf("[%s]", classify.CategoryOf(is.Rule))
	default:
		return ""
	}
}

func fixHuman(w io.Writer, res *toolcall.FixResult) {
	green := color.New(color.FgGreen, color.Bold)
	red := color.New(color.FgRed, color.Bold)

	total := green.Sprint(res.Fixed.Total)
	if res.Fixed.Total < 0 {
		total = red.Sprint(res.Fixed.Total)
	}
	fmt.Fprintf(w, "Resolved %s issues (eslint %d, prettier %d)\n", total, res.Fixed.ESLint, res.Fixed.Prettier)
	if len(res.Files) == 0 {
		return
	}
	fmt.Fprintf(w, "Changed %s:\n", plural(len(res.Files), "file"))
	for _, f := range res.Files {
		fmt.Fprintf(w, "  %s\n", f)
	}
}

func plural(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, noun)
	}
	return fmt.Sprintf("%d %ss", n, strings.TrimSuffix(noun, "s"))
}

// Logs writes a log scan in format (human, json or yaml).
func Logs(w io.Writer, rep *logscan.Report, format string) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, rep)
	case FormatYAML:
		return writeYAML(w, rep)
	case FormatHuman:
		logsHuman(w, rep)
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

func logsHuman(w io.Writer, rep *logscan.Report) {
	if rep.ErrorCount == 0 && rep.WarnCount == 0 {
		color.New(color.FgGreen, color.Bold).Fprintln(w, "✓ No failed tool calls")
		return
	}
	fmt.Fprintf(w, "Recent problems (%s, %s)\n", plural(rep.ErrorCount, "error"), plural(rep.WarnCount, "warning"))

	byFile := map[string][]logscan.Entry{}
	for _, e := range rep.Entries {
		byFile[e.LogFile] = append(byFile[e.LogFile], e)
	}

	red := color.New(color.FgRed)
	yellow := color.New(color.FgYellow)
	for _, file := range rep.LogFiles {
		entries := byFile[file]
		if len(entries) == 0 {
			continue
		}
		fmt.Fprintf(w, "\n  %s\n", file)

		// entries are newest first, so dates come out in descending order
		lastDate := ""
		for _, e := range entries {
			if d := e.Time.Format("2006-01-02"); d != lastDate {
				fmt.Fprintf(w, "  %s\n", d)
				lastDate = d
			}
			mark := red.Sprint("✗")
			if e.Level == "WARN" {
				mark = yellow.Sprint("!")
			}
			subject := e.Message
			if e.Tool != "" {
				subject = fmt.Sprintf("%s %s %s", e.Tool, e.Path, color.HiBlackString(e.CallID))
			}
			fmt.Fprintf(w, "  %s %s %s\n", mark, e.Time.Format("15:04:05"), subject)
			if e.Detail != "" {
				fmt.Fprintf(w, "      %s\n", e.Detail)
			}
		}
	}
}
