package toolcall

import (
	"strings"

	"github.com/dkoosis/lintbridge/pkg/classify"
	"github.com/dkoosis/lintbridge/pkg/sarif"
)

// ToSARIF converts a lint report into a single-run SARIF log. The
// resolution flags travel as result properties.
func ToSARIF(res *LintResult, toolVersion string) *sarif.Log {
	b := sarif.NewRunBuilder(sarif.Driver{
		Name:           "lintbridge",
		Version:        toolVersion,
		InformationURI: "https://github.com/dkoosis/lintbridge",
	}, RuleHelpURI)

	if res != nil {
		for _, is := range res.Issues {
			props := map[string]any{
				"fixable":       is.Fixable,
				"claudeFixable": is.ClaudeFixable,
			}
			if c := classify.CategoryOf(is.Rule); c != classify.CategoryNone {
				props["category"] = string(c)
			}
			b.Add(sarif.Result{
				RuleID:     is.Rule,
				Level:      sarifLevel(is.Severity),
				Message:    sarif.Message{Text: is.Message},
				Locations:  []sarif.Location{sarif.FileLocation(is.File, is.Line, is.Column)},
				Properties: props,
			})
		}
	}

	log := sarif.NewLog()
	log.Runs = append(log.Runs, b.Run(true))
	return log
}

func sarifLevel(s Severity) string {
	if s == SeverityError {
		return sarif.LevelError
	}
	return sarif.LevelWarning
}

// RuleHelpURI links a rule id to its documentation. Unknown plugins and
// the "unknown" placeholder get no link.
func RuleHelpURI(rule string) string {
	switch {
	case rule == FormatRule:
		return "https://prettier.io/docs/en/options"
	case strings.HasPrefix(rule, "@typescript-eslint/"):
		return "https://typescript-eslint.io/rules/" + strings.TrimPrefix(rule, "@typescript-eslint/")
	case rule == "" || rule == "unknown" || strings.Contains(rule, "/"):
		return ""
	default:
		return "https://eslint.org/docs/latest/rules/" + rule
	}
}
