//go:build mage

// Build, lint and test targets.
//
//	mage       Build, vet, test (default)
//	mage qa    Race detection, golangci-lint, govulncheck
//	mage smoke Lint this repo's testdata with the real node tools
//
// Set CLI=1 for console output instead of the fo dashboard.
package main

import (
	"fmt"
	"os"
	"os/exec"
	"strings"
)

const binary = "bin/lintbridge"

func cli() bool {
	return os.Getenv("CLI") != ""
}

// ldflags stamps the version from git describe into main.version.
func ldflags() string {
	out, err := exec.Command("git", "describe", "--tags", "--always", "--dirty").Output()
	v := strings.TrimSpace(string(out))
	if err != nil || v == "" {
		v = "dev"
	}
	return "-X main.version=" + v
}

// Default target runs build, vet and test.
var Default = All

// All builds the binary, vets and runs the unit tests.
func All() error {
	build := "go build -ldflags '" + ldflags() + "' -o " + binary + " ./cmd/lintbridge"
	if cli() {
		return runSequential(
			step{"Build", "go", []string{"build", "-ldflags", ldflags(), "-o", binary, "./cmd/lintbridge"}},
			step{"Test", "go", []string{"test", "-cover", "./..."}},
			step{"Vet", "go", []string{"vet", "./..."}},
			step{"Gofmt", "gofmt", []string{"-l", "."}},
		)
	}
	return runFoDashboard(
		"Build/lintbridge:"+build,
		"Test/unit:go test -json -cover ./...",
		"Lint/vet:go vet ./...",
		"Lint/gofmt:gofmt -l .",
		"Lint/staticcheck:golangci-lint run --allow-parallel-runners --enable-only staticcheck --output.sarif.path=stdout ./...",
	)
}

// Qa adds race detection, the full linter set and govulncheck.
func Qa() error {
	if cli() {
		return runSequential(
			step{"Test", "go", []string{"test", "-cover", "./..."}},
			step{"Race", "go", []string{"test", "-race", "-timeout=5m", "./..."}},
			step{"Golangci-lint", "golangci-lint", []string{"run", "./..."}},
			step{"Govulncheck", "govulncheck", []string{"./..."}},
		)
	}
	return runFoDashboard(
		"Test/unit:go test -json -cover ./...",
		"Test/race:go test -race -json -timeout=5m ./...",
		"Lint/gosec:golangci-lint run --allow-parallel-runners --enable-only gosec --output.sarif.path=stdout ./...",
		"Lint/errcheck:golangci-lint run --allow-parallel-runners --enable-only errcheck --output.sarif.path=stdout ./...",
		"Lint/revive:golangci-lint run --allow-parallel-runners --enable-only revive --output.sarif.path=stdout ./...",
		"Security/govulncheck:govulncheck ./...",
	)
}

// Smoke runs the built binary against a path (SMOKE_PATH, default ".")
// using whatever eslint and prettier are on PATH.
func Smoke() error {
	path := os.Getenv("SMOKE_PATH")
	if path == "" {
		path = "."
	}
	return runSequential(
		step{"Build", "go", []string{"build", "-o", binary, "./cmd/lintbridge"}},
		step{"Lint", binary, []string{"lint", path, "-o", "json"}},
	)
}

// Clean removes build artifacts.
func Clean() error {
	fmt.Println("Cleaning build artifacts...")
	return os.RemoveAll("bin")
}

type step struct {
	name string
	cmd  string
	args []string
}

func runSequential(steps ...step) error {
	for _, s := range steps {
		fmt.Printf("→ %s\n", s.name)
		cmd := exec.Command(s.cmd, s.args...)
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr
		if err := cmd.Run(); err != nil {
			return fmt.Errorf("%s failed: %w", s.name, err)
		}
	}
	return nil
}

func runFoDashboard(tasks ...string) error {
	foBin, err := exec.LookPath("fo")
	if err != nil {
		return fmt.Errorf("fo not found in PATH (set CLI=1 for plain output)")
	}

	args := []string{"--dashboard"}
	for _, t := range tasks {
		args = append(args, "--task", t)
	}

	cmd := exec.Command(foBin, args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}
