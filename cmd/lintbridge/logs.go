package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/dkoosis/lintbridge/pkg/logscan"
	"github.com/dkoosis/lintbridge/pkg/report"
)

func newLogsCmd() *cobra.Command {
	var (
		dir    string
		glob   string
		days   int
		output string
	)
	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show failed tool calls from the MCP host's lintbridge logs",
		Long: `Scan the log files an MCP host keeps for lintbridge and list tool calls
that failed or produced warnings, newest first.

Examples:
  # Last three days from the default Claude Desktop log directory
  lintbridge logs

  # A week of logs elsewhere, as JSON
  lintbridge logs --dir /var/log/mcp --days 7 -o json`,
		Args: cobra.NoArgs,
		// Only reads log files, so no config or tools are needed.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		RunE: func(cmd *cobra.Command, _ []string) error {
			rep, err := logscan.Scan(logscan.Options{
				Dir:   dir,
				Glob:  glob,
				Since: time.Now().AddDate(0, 0, -days),
			})
			if err != nil {
				return err
			}
			return report.Logs(cmd.OutOrStdout(), rep, output)
		},
	}
	cmd.Flags().StringVar(&dir, "dir", logscan.DefaultDir(), "Directory holding MCP server logs")
	cmd.Flags().StringVar(&glob, "glob", logscan.DefaultGlob, "Log file pattern within --dir")
	cmd.Flags().IntVar(&days, "days", 3, "Scan logs from the past N days")
	cmd.Flags().StringVarP(&output, "output", "o", report.FormatHuman, "Output format (human, json, yaml)")
	return cmd
}
