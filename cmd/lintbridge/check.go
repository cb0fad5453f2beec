package main

import (
	"context"
	"os"
	"time"

	"github.com/briandowns/spinner"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/dkoosis/lintbridge/pkg/report"
	"github.com/dkoosis/lintbridge/pkg/toolcall"
)

type checkOptions struct {
	language string
	output   string
}

func (o *checkOptions) bind(cmd *cobra.Command, formats string) {
	cmd.Flags().StringVarP(&o.language, "language", "l", "auto", "Language (typescript, python, auto)")
	cmd.Flags().StringVarP(&o.output, "output", "o", report.FormatHuman, "Output format ("+formats+")")
}

func newLintCmd(a *app) *cobra.Command {
	var opts checkOptions
	cmd := &cobra.Command{
		Use:   "lint PATH",
		Short: "Report lint and formatting issues without changing files",
		Long: `Run ESLint and a Prettier check on PATH and classify each issue.

Examples:
  # Lint a project directory
  lintbridge lint ./src

  # Lint one file and emit SARIF for code scanning
  lintbridge lint src/app.ts -o sarif`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := report.CheckFormat(opts.output, true); err != nil {
				return err
			}
			in := toolcall.Input{Path: args[0], Language: opts.language}

			var res *toolcall.LintResult
			err := a.withSpinner(cmd.Context(), opts.output, " Linting "+in.Path+"...", func(ctx context.Context) error {
				var err error
				res, err = a.service().Lint(ctx, in)
				return err
			})
			if err != nil {
				return err
			}

			if err := report.Lint(cmd.OutOrStdout(), res, opts.output, version); err != nil {
				return err
			}
			if res.Summary.Total > 0 {
				return errIssuesFound
			}
			return nil
		},
	}
	opts.bind(cmd, "human, json, yaml, sarif")
	return cmd
}

func newFixCmd(a *app) *cobra.Command {
	var opts checkOptions
	cmd := &cobra.Command{
		Use:   "fix PATH",
		Short: "Apply ESLint and Prettier fixes in place",
		Long: `Run ESLint --fix and Prettier --write on PATH, then report how many
issues were resolved and which files changed.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := report.CheckFormat(opts.output, false); err != nil {
				return err
			}
			in := toolcall.Input{Path: args[0], Language: opts.language}

			var res *toolcall.FixResult
			err := a.withSpinner(cmd.Context(), opts.output, " Fixing "+in.Path+"...", func(ctx context.Context) error {
				var err error
				res, err = a.service().Fix(ctx, in)
				return err
			})
			if err != nil {
				return err
			}
			return report.Fix(cmd.OutOrStdout(), res, opts.output)
		},
	}
	opts.bind(cmd, "human, json, yaml")
	return cmd
}

// withSpinner runs fn, showing a spinner on stderr for human output on a
// terminal.
func (a *app) withSpinner(ctx context.Context, format, suffix string, fn func(context.Context) error) error {
	if ctx == nil {
		ctx = context.Background()
	}
	f, ok := a.stderr.(*os.File)
	if format != report.FormatHuman || !ok || !(isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())) {
		return fn(ctx)
	}

	s := spinner.New(spinner.CharSets[11], 100*time.Millisecond, spinner.WithWriter(f))
	s.Suffix = suffix
	s.Start()
	defer s.Stop()
	return fn(ctx)
}
