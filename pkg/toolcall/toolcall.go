// Package toolcall implements the lint and fix tool-calls on top of the ESLint
// and Prettier runners.
//
// Every tool invocation within a call runs to completion before the next one
// starts; the fix diff depends on that ordering.
package toolcall

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/dkoosis/lintbridge/pkg/eslint"
	"github.com/dkoosis/lintbridge/pkg/lang"
	"github.com/dkoosis/lintbridge/pkg/prettier"
)

var (
	// ErrInvalidInput is returned when a tool-call input fails validation.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedLanguage is returned for languages with no toolchain
	// wired up, currently Python.
	ErrUnsupportedLanguage = errors.New("language not supported")
)

// LintRunner is the subset of *eslint.Runner the tool-calls need.
type LintRunner interface {
	Run(ctx context.Context, path string, fix bool) ([]eslint.FileResult, error)
}

// FormatRunner is the subset of *prettier.Runner the tool-calls need.
type FormatRunner interface {
	Check(ctx context.Context, path string) (prettier.Result, error)
	Write(ctx context.Context, path string) error
}

// Input is the argument of both tool-calls.
type Input struct {
	Path     string `json:"path" yaml:"path" validate:"required"`
	Language string `json:"language,omitempty" yaml:"language,omitempty" validate:"omitempty,language"`
}

var validate = newValidator()

// newValidator reports fields by their JSON names and accepts any selector
// lang.Parse does, so the case policy lives in one place.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("language", func(fl validator.FieldLevel) bool {
		_, err := lang.Parse(fl.Field().String())
		return err == nil
	})
	return v
}

// Validate checks the input and resolves the language to use for it.
func (in Input) Validate() (lang.Language, error) {
	if err := validate.Struct(in); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return "", fmt.Errorf("%w: %s failed %q (got %q)", ErrInvalidInput, fe.Field(), fe.Tag(), fmt.Sprint(fe.Value()))
		}
		return "", fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	requested, err := lang.Parse(in.Language)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return lang.Resolve(requested, in.Path), nil
}

// Service runs tool-calls. It holds no per-call state and may be shared.
type Service struct {
	lint   LintRunner
	format FormatRunner
	logger *slog.Logger
}

// New returns a Service backed by the given runners.
func New(lint LintRunner, format FormatRunner, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{lint: lint, format: format, logger: logger}
}

// prepare validates in and rejects languages without a toolchain.
func (s *Service) prepare(call string, in Input) (lang.Language, error) {
	l, err := in.Validate()
	if err != nil {
		return "", err
	}
	if !l.UsesNodeTools() {
		return "", fmt.Errorf("%s %s: %w: %s", call, in.Path, ErrUnsupportedLanguage, l)
	}
	return l, nil
}
