package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dkoosis/lintbridge/pkg/cmdrun"
	"github.com/dkoosis/lintbridge/pkg/config"
	"github.com/dkoosis/lintbridge/pkg/eslint"
	"github.com/dkoosis/lintbridge/pkg/prettier"
	"github.com/dkoosis/lintbridge/pkg/toolcall"
)

var version = "dev" // Overwritten at build time

// errIssuesFound makes `lint` exit non-zero without printing an error.
var errIssuesFound = errors.New("issues found")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := &app{stdin: os.Stdin, stdout: os.Stdout, stderr: os.Stderr}
	if err := newRootCmd(a).ExecuteContext(ctx); err != nil {
		if !errors.Is(err, errIssuesFound) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

// app carries what subcommands share once flags are parsed.
type app struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	configPath string
	logLevel   string

	cfg    config.Config
	logger *slog.Logger
	// runner replaces subprocess execution in tests.
	runner cmdrun.Runner
}

func newRootCmd(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "lintbridge",
		Short: "ESLint and Prettier as agent tool-calls",
		Long: `lintbridge runs ESLint and Prettier against a path, classifies every issue
as tool-fixable, fixable with contextual understanding, or neither, and
applies automatic fixes. It serves the same lint and fix calls over MCP.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return a.setup()
		},
	}
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.SetIn(a.stdin)
	rootCmd.SetOut(a.stdout)
	rootCmd.SetErr(a.stderr)

	rootCmd.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "Path to config file (default "+config.DefaultFile+" if present)")
	rootCmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "Override log level (debug, info, warn, error)")

	rootCmd.AddCommand(
		newServeCmd(a),
		newLintCmd(a),
		newFixCmd(a),
		newLogsCmd(),
		newVersionCmd(),
	)
	return rootCmd
}

func (a *app) setup() error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		if err := cfg.OverrideLogLevel(a.logLevel); err != nil {
			return err
		}
	}
	a.cfg = cfg
	a.logger = cfg.Log.NewLogger(a.stderr)
	slog.SetDefault(a.logger)
	return nil
}

func (a *app) service() *toolcall.Service {
	runner := a.runner
	if runner == nil {
		runner = cmdrun.NewExecRunner(a.logger)
	}
	return toolcall.New(
		eslint.NewRunner(runner, a.cfg.ESLintBin(), a.logger),
		prettier.NewRunner(runner, a.cfg.PrettierBin(), a.logger),
		a.logger,
	)
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		// Skip config loading so version works anywhere.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "lintbridge version %s\n", version)
		},
	}
}
