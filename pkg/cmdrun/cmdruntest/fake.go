// Package cmdruntest provides a scripted cmdrun.Runner for tests.
package cmdruntest

import (
	"context"
	"fmt"
	"sync"

	"github.com/dkoosis/lintbridge/pkg/cmdrun"
)

// Response is one canned process result.
type Response struct {
	Stdout   string
	Stderr   string
	ExitCode int
	Err      error
}

// Fake replays scripted responses per command name and records every call.
// Once a script is exhausted its last response repeats.
type Fake struct {
	mu      sync.Mutex
	scripts map[string][]Response
	calls   []cmdrun.Command

	// Hook, when set, runs before a response is returned. Tests use it to
	// mutate the filesystem the way a real fixer would.
	Hook func(cmd cmdrun.Command)
}

// New returns an empty Fake.
func New() *Fake {
	return &Fake{scripts: map[string][]Response{}}
}

// On appends responses for commands named name.
func (f *Fake) On(name string, responses ...Response) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.scripts[name] = append(f.scripts[name], responses...)
	return f
}

// Run implements cmdrun.Runner.
func (f *Fake) Run(_ context.Context, cmd cmdrun.Command) (cmdrun.Output, error) {
	f.mu.Lock()
	f.calls = append(f.calls, cmd)
	queue := f.scripts[cmd.Name]
	var resp Response
	switch len(queue) {
	case 0:
		f.mu.Unlock()
		return cmdrun.Output{}, fmt.Errorf("cmdruntest: no script for %q", cmd.Name)
	case 1:
		resp = queue[0]
	default:
		resp = queue[0]
		f.scripts[cmd.Name] = queue[1:]
	}
	hook := f.Hook
	f.mu.Unlock()

	if hook != nil {
		hook(cmd)
	}
	if resp.Err != nil {
		return cmdrun.Output{}, resp.Err
	}
	return cmdrun.Output{
		Stdout:   []byte(resp.Stdout),
		Stderr:   []byte(resp.Stderr),
		ExitCode: resp.ExitCode,
	}, nil
}

// Calls returns a copy of the recorded commands in call order.
func (f *Fake) Calls() []cmdrun.Command {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]cmdrun.Command, len(f.calls))
	copy(out, f.calls)
	return out
}
