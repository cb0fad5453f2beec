package logscan_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkoosis/lintbridge/pkg/logscan"
)

func writeLog(t *testing.T, dir, name string, lines ...string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(strings.Join(lines, "\n")+"\n"), 0o600))
}

func TestScan_CollectsFailedCalls_When_LogsMixFormats(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeLog(t, dir, "mcp-server-lintbridge.log",
		`{"time":"2026-10-18T09:00:00.123Z","level":"INFO","msg":"tool call completed","call_id":"a1","tool":"lint","path":"/r"}`,
		`{"time":"2026-10-18T09:01:00Z","level":"ERROR","msg":"tool call failed","call_id":"b2","tool":"fix","path":"/r","error":"fix /r: eslint before: eslint: tool execution failed (exit 2)"}`,
		`not a log line`,
		`{"time":"2026-10-18T09:02:00Z","level":"WARN","msg":"prettier could not be run, treating as formatted","path":"/r","mode":"check","error":"run prettier: exec: \"prettier\": executable file not found in $PATH"}`,
		`time=2026-10-19T08:00:00.000Z level=ERROR msg="tool call failed" call_id=c3 tool=lint path=/src error="lint /src: language not supported: python"`,
		`{"time":"2020-01-01T00:00:00Z","level":"ERROR","msg":"too old"}`,
		`{broken json`,
	)
	writeLog(t, dir, "mcp-server-other.log",
		`{"time":"2026-10-18T09:01:00Z","level":"ERROR","msg":"not ours"}`,
	)

	rep, err := logscan.Scan(logscan.Options{Dir: dir, Since: time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)})
	require.NoError(t, err)

	assert.Equal(t, []string{"mcp-server-lintbridge.log"}, rep.LogFiles)
	assert.Equal(t, 2, rep.ErrorCount)
	assert.Equal(t, 1, rep.WarnCount)
	require.Len(t, rep.Entries, 3)

	newest := rep.Entries[0]
	assert.Equal(t, "c3", newest.CallID)
	assert.Equal(t, "lint", newest.Tool)
	assert.Equal(t, "/src", newest.Path)
	assert.Equal(t, "tool call failed", newest.Message)
	assert.Equal(t, "lint /src: language not supported: python", newest.Detail)

	assert.Equal(t, "WARN", rep.Entries[1].Level)
	assert.Equal(t, "b2", rep.Entries[2].CallID)
	assert.Equal(t, "mcp-server-lintbridge.log", rep.Entries[2].LogFile)
}

func TestScan_SkipsStaleFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeLog(t, dir, "mcp-server-lintbridge.log", `{"time":"2026-10-18T09:01:00Z","level":"ERROR","msg":"tool call failed"}`)
	old := time.Now().Add(-72 * time.Hour)
	require.NoError(t, os.Chtimes(filepath.Join(dir, "mcp-server-lintbridge.log"), old, old))

	rep, err := logscan.Scan(logscan.Options{Dir: dir, Since: time.Now().Add(-24 * time.Hour)})
	require.NoError(t, err)
	assert.Empty(t, rep.LogFiles)
	assert.Empty(t, rep.Entries)
}

func TestScan_ReportsNothing_When_DirHasNoLogs(t *testing.T) {
	t.Parallel()

	rep, err := logscan.Scan(logscan.Options{Dir: t.TempDir(), Glob: "*.log"})
	require.NoError(t, err)
	assert.Zero(t, rep.ErrorCount)
	assert.NotNil(t, rep.Entries)
}
