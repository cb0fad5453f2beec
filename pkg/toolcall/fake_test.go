package toolcall_test

import (
	"context"
	"sync"

	"github.com/dkoosis/lintbridge/pkg/eslint"
	"github.com/dkoosis/lintbridge/pkg/prettier"
)

// project simulates a source tree: --fix drops every auto-fixable message,
// a Prettier write formats every file.
type project struct {
	mu          sync.Mutex
	files       []eslint.FileResult
	unformatted []string
	lintErr     error
	// introduce is added to a file's messages by --fix, to model fixes that
	// create new problems.
	introduce map[string][]eslint.Message
	steps     []string
}

func (p *project) Run(_ context.Context, _ string, fix bool) ([]eslint.FileResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if fix {
		p.steps = append(p.steps, "eslint --fix")
	} else {
		p.steps = append(p.steps, "eslint")
	}
	if p.lintErr != nil {
		return nil, p.lintErr
	}
	if fix {
		var next []eslint.FileResult
		for _, f := range p.files {
			var kept []eslint.Message
			for _, m := range f.Messages {
				if !m.AutoFixable {
					kept = append(kept, m)
				}
			}
			kept = append(kept, p.introduce[f.FilePath]...)
			if len(kept) > 0 {
				next = append(next, eslint.FileResult{FilePath: f.FilePath, Messages: kept})
			}
		}
		p.files = next
		p.introduce = nil
	}
	return clone(p.files), nil
}

func (p *project) Check(_ context.Context, _ string) (prettier.Result, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.steps = append(p.steps, "prettier --list-different")
	return prettier.Result{Unformatted: append([]string(nil), p.unformatted...)}, nil
}

func (p *project) Write(_ context.Context, _ string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.steps = append(p.steps, "prettier --write")
	p.unformatted = nil
	return nil
}

func (p *project) Steps() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.steps...)
}

func clone(in []eslint.FileResult) []eslint.FileResult {
	out := make([]eslint.FileResult, 0, len(in))
	for _, f := range in {
		out = append(out, eslint.FileResult{FilePath: f.FilePath, Messages: append([]eslint.Message(nil), f.Messages...)})
	}
	return out
}

func spacingAndComplexity() *project {
	return &project{files: []eslint.FileResult{{
		FilePath: "/repo/src/a.ts",
		Messages: []eslint.Message{
			{RuleID: "indent", Line: 3, Column: 1, Message: "Expected indentation of 2 spaces", Severity: 2, AutoFixable: true},
			{RuleID: "complexity", Line: 8, Column: 1, Message: "Function has a complexity of 12", Severity: 1},
		},
	}}}
}
