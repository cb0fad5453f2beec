// Package lang maps language selectors and file paths to the toolchain that
// should handle them.
package lang

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// Language selects which toolchain a tool-call uses.
type Language string

const (
	TypeScript Language = "typescript"
	Python     Language = "python"
	Auto       Language = "auto"
)

// ErrUnknownLanguage is returned by Parse for selectors outside the enum.
var ErrUnknownLanguage = errors.New("unknown language")

// Parse converts a selector string. An empty selector means Auto.
func Parse(s string) (Language, error) {
	switch Language(strings.ToLower(strings.TrimSpace(s))) {
	case "", Auto:
		return Auto, nil
	case TypeScript:
		return TypeScript, nil
	case Python:
		return Python, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownLanguage, s)
	}
}

// Detect guesses the language from the path's extension. Directories and
// anything unrecognized stay Auto.
func Detect(path string) Language {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".ts", ".tsx", ".js", ".jsx":
		return TypeScript
	case ".py":
		return Python
	default:
		return Auto
	}
}

// Resolve returns the effective language for a request: an explicit selector
// wins, Auto falls back to Detect.
func Resolve(requested Language, path string) Language {
	if requested == "" || requested == Auto {
		return Detect(path)
	}
	return requested
}

// UsesNodeTools reports whether ESLint and Prettier handle l. Auto targets
// (usually directories) are treated as JavaScript/TypeScript projects.
func (l Language) UsesNodeTools() bool {
	return l == TypeScript || l == Auto
}
