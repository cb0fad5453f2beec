package prettier_test

import (
	"context"
	"errors"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkoosis/lintbridge/pkg/cmdrun"
	"github.com/dkoosis/lintbridge/pkg/cmdrun/cmdruntest"
	"github.com/dkoosis/lintbridge/pkg/prettier"
)

func TestTarget_SelectsPatternAndDir_When_GivenFileOrDirectory(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		path        string
		wantPattern string
		wantDir     string
	}{
		{name: "success: supported file runs from its directory", path: "/repo/src/a.ts", wantPattern: "/repo/src/a.ts", wantDir: "/repo/src"},
		{name: "success: markdown file is supported", path: "/repo/README.md", wantPattern: "/repo/README.md", wantDir: "/repo"},
		{name: "success: directory expands to recursive glob", path: "/repo/src", wantPattern: "/repo/src/**/*.{ts,tsx,js,jsx,json,md}", wantDir: "/repo/src"},
		{name: "success: trailing slash is not doubled", path: "/repo/src/", wantPattern: "/repo/src/**/*.{ts,tsx,js,jsx,json,md}", wantDir: "/repo/src/"},
		{name: "success: unsupported file is treated as directory", path: "/repo/main.py", wantPattern: "/repo/main.py/**/*.{ts,tsx,js,jsx,json,md}", wantDir: "/repo/main.py"},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			pattern, dir := prettier.Target(tc.path)
			assert.Equal(t, tc.wantPattern, pattern)
			assert.Equal(t, tc.wantDir, dir)
		})
	}
}

func TestParseList_DropsStatusLines_When_OutputIsMixed(t *testing.T) {
	t.Parallel()

	output := "Checking formatting...\n" +
		"\n" +
		"src/a.ts\n" +
		"[warn] src/b.ts\n" +
		"  docs/readme.md  \n" +
		"/abs/c.json\n" +
		"All matched files use Prettier code style!\n"

	got := prettier.ParseList(output, "/repo")
	assert.Equal(t, []string{"/repo/src/a.ts", "/repo/docs/readme.md", "/abs/c.json"}, got)
}

func TestRunner_Check_ReportsUnformatted_When_ToolRuns(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		resp cmdruntest.Response
		want []string
	}{
		{
			name: "success: exit 0 means everything formatted",
			resp: cmdruntest.Response{Stdout: "ignored output\n"},
		},
		{
			name: "success: exit 1 lists differing files",
			resp: cmdruntest.Response{Stdout: "a.ts\nnested/b.md\n", ExitCode: 1},
			want: []string{"/repo/src/a.ts", "/repo/src/nested/b.md"},
		},
		{
			name: "success: falls back to stderr when stdout is empty",
			resp: cmdruntest.Response{Stderr: "[warn] a.ts\na.ts\n", ExitCode: 1},
			want: []string{"/repo/src/a.ts"},
		},
		{
			name: "success: launch failure is swallowed",
			resp: cmdruntest.Response{Err: exec.ErrNotFound},
		},
		{
			name: "success: internal error keeps listed files",
			resp: cmdruntest.Response{Stdout: "a.ts\n", Stderr: "[error] b.ts: SyntaxError", ExitCode: 2},
			want: []string{"/repo/src/a.ts"},
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			fake := cmdruntest.New().On("prettier", tc.resp)
			r := prettier.NewRunner(fake, "", nil)

			got, err := r.Check(context.Background(), "/repo/src")
			require.NoError(t, err)
			assert.Equal(t, tc.want, got.Unformatted)

			calls := fake.Calls()
			require.Len(t, calls, 1)
			assert.Equal(t, []string{"/repo/src/**/*.{ts,tsx,js,jsx,json,md}", "--list-different", "--ignore-unknown"}, calls[0].Args)
			assert.Equal(t, "/repo/src", calls[0].Dir)
		})
	}
}

func TestRunner_Check_ReturnsContextError_When_Cancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	fake := cmdruntest.New().On("prettier", cmdruntest.Response{Err: context.Canceled})
	r := prettier.NewRunner(fake, "prettier", nil)

	_, err := r.Check(ctx, "/repo/a.ts")
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestRunner_Write_UsesWriteFlag(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		resp cmdruntest.Response
	}{
		{name: "success: clean write", resp: cmdruntest.Response{Stdout: "a.ts 12ms\n"}},
		{name: "success: launch failure is swallowed", resp: cmdruntest.Response{Err: errors.New("permission denied")}},
		{name: "success: tool error is logged only", resp: cmdruntest.Response{ExitCode: 2, Stderr: "[error] boom"}},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			fake := cmdruntest.New().On("npx-prettier", tc.resp)
			r := prettier.NewRunner(fake, "npx-prettier", nil)

			require.NoError(t, r.Write(context.Background(), "/repo/a.ts"))

			calls := fake.Calls()
			require.Len(t, calls, 1)
			assert.Equal(t, cmdrun.Command{
				Name: "npx-prettier",
				Args: []string{"/repo/a.ts", "--write", "--ignore-unknown"},
				Dir:  "/repo",
			}, calls[0])
		})
	}
}
