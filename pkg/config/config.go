// Package config loads lintbridge settings from an optional YAML file with
// environment overrides.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// DefaultFile is looked up in the working directory when no path is given.
const DefaultFile = ".lintbridge.yaml"

// Environment overrides, applied after the file.
const (
	EnvESLint    = "LINTBRIDGE_ESLINT"
	EnvPrettier  = "LINTBRIDGE_PRETTIER"
	EnvNodeBin   = "LINTBRIDGE_NODE_BIN"
	EnvLogLevel  = "LINTBRIDGE_LOG_LEVEL"
	EnvLogFormat = "LINTBRIDGE_LOG_FORMAT"
)

// Config holds tool locations and logging settings.
type Config struct {
	ESLint   string `yaml:"eslint" validate:"required"`
	Prettier string `yaml:"prettier" validate:"required"`
	// NodeBin is a directory such as node_modules/.bin searched before PATH
	// for bare tool names.
	NodeBin string    `yaml:"node_bin,omitempty"`
	Log     LogConfig `yaml:"log"`
}

// LogConfig selects the slog handler.
type LogConfig struct {
	Level  string `yaml:"level" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" validate:"oneof=text json"`
}

// Default returns the settings used when nothing is configured.
func Default() Config {
	return Config{
		ESLint:   "eslint",
		Prettier: "prettier",
		Log:      LogConfig{Level: "info", Format: "text"},
	}
}

var validate = validator.New()

const logLevels = "oneof=debug info warn error"

// Load reads path (or DefaultFile when path is empty) and applies
// environment overrides from the process environment. A missing default
// file is not an error; a missing explicit file is.
func Load(path string) (Config, error) {
	return LoadWith(path, os.Getenv)
}

// LoadWith is Load with an injectable environment lookup.
func LoadWith(path string, getenv func(string) string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
	default:
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}

	cfg.applyEnv(getenv)

	cfg.Log.Level = strings.ToLower(cfg.Log.Level)
	cfg.Log.Format = strings.ToLower(cfg.Log.Format)
	if err := validate.Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) applyEnv(getenv func(string) string) {
	set := func(dst *string, key string) {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			*dst = v
		}
	}
	set(&c.ESLint, EnvESLint)
	set(&c.Prettier, EnvPrettier)
	set(&c.NodeBin, EnvNodeBin)
	set(&c.Log.Level, EnvLogLevel)
	set(&c.Log.Format, EnvLogFormat)
}

// ESLintBin returns the ESLint executable to launch.
func (c Config) ESLintBin() string {
	return c.resolve(c.ESLint)
}

// PrettierBin returns the Prettier executable to launch.
func (c Config) PrettierBin() string {
	return c.resolve(c.Prettier)
}

// resolve prefers NodeBin for bare names when the executable exists there.
// Paths are made absolute because tools run from the target's directory.
func (c Config) resolve(name string) string {
	if strings.ContainsAny(name, "/"+string(filepath.Separator)) {
		return absolute(name)
	}
	if c.NodeBin == "" {
		return name
	}
	candidate := filepath.Join(c.NodeBin, name)
	if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
		return absolute(candidate)
	}
	return name
}

func absolute(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return path
}

// OverrideLogLevel replaces the configured level, as the --log-level flag does.
func (c *Config) OverrideLogLevel(level string) error {
	level = strings.ToLower(strings.TrimSpace(level))
	if err := validate.Var(level, logLevels); err != nil {
		return fmt.Errorf("invalid log level %q: want one of debug, info, warn, error", level)
	}
	c.Log.Level = level
	return nil
}

// SlogLevel converts the configured level name.
func (l LogConfig) SlogLevel() slog.Level {
	switch l.Level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewLogger builds the process logger writing to w.
func (l LogConfig) NewLogger(w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: l.SlogLevel()}
	if l.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
