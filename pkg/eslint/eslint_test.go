package eslint_test

import (
	"context"
	"errors"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkoosis/lintbridge/pkg/cmdrun"
	"github.com/dkoosis/lintbridge/pkg/cmdrun/cmdruntest"
	"github.com/dkoosis/lintbridge/pkg/eslint"
)

const twoFindings = `[
  {
    "filePath": "/repo/src/a.ts",
    "messages": [
      {"ruleId": "indent", "severity": 2, "message": "Expected indentation of 2 spaces", "line": 3, "column": 1,
       "fix": {"range": [10, 14], "text": "  "}},
      {"ruleId": "complexity", "severity": 1, "message": "Function has a complexity of 12", "line": 8, "column": 1}
    ],
    "errorCount": 1,
    "warningCount": 1
  }
]`

func TestParse_NormalizesMessages_When_OutputIsValid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		want    []eslint.FileResult
		wantErr error
	}{
		{
			name:  "success: empty output means no results",
			input: "  \n",
			want:  nil,
		},
		{
			name:  "success: empty array",
			input: "[]",
			want:  []eslint.FileResult{},
		},
		{
			name:  "success: fix presence marks message auto-fixable",
			input: twoFindings,
			want: []eslint.FileResult{{
				FilePath: "/repo/src/a.ts",
				Messages: []eslint.Message{
					{RuleID: "indent", Line: 3, Column: 1, Message: "Expected indentation of 2 spaces", Severity: 2, AutoFixable: true},
					{RuleID: "complexity", Line: 8, Column: 1, Message: "Function has a complexity of 12", Severity: 1},
				},
			}},
		},
		{
			name:  "success: null rule id becomes unknown",
			input: `[{"filePath":"/x.js","messages":[{"ruleId":null,"severity":2,"message":"Parsing error","line":1,"column":1}]}]`,
			want: []eslint.FileResult{{
				FilePath: "/x.js",
				Messages: []eslint.Message{{RuleID: "unknown", Line: 1, Column: 1, Message: "Parsing error", Severity: 2}},
			}},
		},
		{
			name:    "error: output is not json",
			input:   "Oops! Something went wrong!",
			wantErr: cmdrun.ErrParseOutput,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got, err := eslint.Parse([]byte(tc.input))
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestTarget_ScopesInvocation_When_GivenFileOrDirectory(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		path        string
		wantPattern string
		wantDir     string
		wantOK      bool
	}{
		{name: "success: lintable file runs from its directory", path: "/repo/src/a.tsx", wantPattern: "/repo/src/a.tsx", wantDir: "/repo/src", wantOK: true},
		{name: "success: directory expands to glob", path: "/repo/src", wantPattern: "/repo/src/**/*.{ts,tsx,js,jsx}", wantDir: "/repo/src", wantOK: true},
		{name: "success: upper-case extension still lintable", path: "/repo/A.JS", wantPattern: "/repo/A.JS", wantDir: "/repo", wantOK: true},
		{name: "success: markdown file is skipped", path: "/repo/README.md", wantOK: false},
		{name: "success: json file is skipped", path: "/repo/package.json", wantOK: false},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			pattern, dir, ok := eslint.Target(tc.path)
			assert.Equal(t, tc.wantOK, ok)
			assert.Equal(t, tc.wantPattern, pattern)
			assert.Equal(t, tc.wantDir, dir)
		})
	}
}

func TestRunner_Run_MapsExitCodes_When_ToolCompletes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		resp      cmdruntest.Response
		fix       bool
		wantFiles int
		wantErr   error
		wantArgs  []string
	}{
		{
			name:     "success: exit 0 with no findings",
			resp:     cmdruntest.Response{Stdout: "[]"},
			wantArgs: []string{"--format", "json", "--no-error-on-unmatched-pattern"},
		},
		{
			name:      "success: exit 1 means findings, not failure",
			resp:      cmdruntest.Response{Stdout: twoFindings, ExitCode: 1},
			wantFiles: 1,
		},
		{
			name:     "success: fix mode passes --fix",
			resp:     cmdruntest.Response{Stdout: "[]"},
			fix:      true,
			wantArgs: []string{"--fix"},
		},
		{
			name:    "error: exit 2 is an internal failure",
			resp:    cmdruntest.Response{Stderr: "Oops! Something went wrong!", ExitCode: 2},
			wantErr: cmdrun.ErrToolFailed,
		},
		{
			name:    "error: binary missing",
			resp:    cmdruntest.Response{Err: exec.ErrNotFound},
			wantErr: exec.ErrNotFound,
		},
		{
			name:    "error: malformed json on exit 1",
			resp:    cmdruntest.Response{Stdout: "{not json", ExitCode: 1},
			wantErr: cmdrun.ErrParseOutput,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			fake := cmdruntest.New().On("eslint", tc.resp)
			r := eslint.NewRunner(fake, "", nil)

			got, err := r.Run(context.Background(), "/repo/src", tc.fix)
			if tc.wantErr != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tc.wantErr), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Len(t, got, tc.wantFiles)

			calls := fake.Calls()
			require.Len(t, calls, 1)
			assert.Equal(t, "/repo/src", calls[0].Dir)
			for _, a := range tc.wantArgs {
				assert.Contains(t, calls[0].Args, a)
			}
		})
	}
}

func TestRunner_Run_SkipsProcess_When_TargetIsDocument(t *testing.T) {
	t.Parallel()

	fake := cmdruntest.New()
	r := eslint.NewRunner(fake, "eslint", nil)

	got, err := r.Run(context.Background(), filepath.Join(t.TempDir(), "notes.md"), false)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Empty(t, fake.Calls())
}

func TestFileResult_FixableCount(t *testing.T) {
	t.Parallel()

	got, err := eslint.Parse([]byte(twoFindings))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 1, got[0].FixableCount())
	assert.True(t, got[0].Messages[0].IsError())
	assert.False(t, got[0].Messages[1].IsError())
}
