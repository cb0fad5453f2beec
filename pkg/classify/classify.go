// Package classify decides how a lint issue can be resolved: mechanically by
// the tool, only with contextual understanding of the code, or neither.
package classify

import "sort"

// Category groups rules that need contextual understanding to fix.
type Category string

const (
	CategoryNone        Category = ""
	CategoryComplexity  Category = "complexity"
	CategoryTypeSafety  Category = "type-safety"
	CategoryDeadCode    Category = "dead-code"
	CategoryAsyncFlow   Category = "async-flow"
	CategoryNaming      Category = "naming"
	CategoryCircularDep Category = "circular-dependency"
)

// contextRules is read-only after package init.
var contextRules = map[string]Category{
	"complexity":                     CategoryComplexity,
	"max-lines-per-function":         CategoryComplexity,
	"max-depth":                      CategoryComplexity,
	"max-params":                     CategoryComplexity,
	"max-statements":                 CategoryComplexity,
	"sonarjs/cognitive-complexity":   CategoryComplexity,
	"sonarjs/no-identical-functions": CategoryComplexity,

	"@typescript-eslint/no-explicit-any":                CategoryTypeSafety,
	"@typescript-eslint/no-unsafe-assignment":           CategoryTypeSafety,
	"@typescript-eslint/no-unsafe-call":                 CategoryTypeSafety,
	"@typescript-eslint/no-unsafe-member-access":        CategoryTypeSafety,
	"@typescript-eslint/no-unsafe-return":               CategoryTypeSafety,
	"@typescript-eslint/no-unsafe-argument":             CategoryTypeSafety,
	"@typescript-eslint/explicit-function-return-type":  CategoryTypeSafety,
	"@typescript-eslint/explicit-module-boundary-types": CategoryTypeSafety,

	"@typescript-eslint/no-unused-vars": CategoryDeadCode,
	"no-unused-vars":                    CategoryDeadCode,

	"@typescript-eslint/no-floating-promises": CategoryAsyncFlow,
	"@typescript-eslint/no-misused-promises":  CategoryAsyncFlow,
	"@typescript-eslint/require-await":        CategoryAsyncFlow,

	"@typescript-eslint/naming-convention": CategoryNaming,
	"camelcase":                            CategoryNaming,

	"import/no-cycle": CategoryCircularDep,
}

// RequiresContext reports whether rule is on the contextual-fix allow-list.
func RequiresContext(rule string) bool {
	_, ok := contextRules[rule]
	return ok
}

// CategoryOf returns the allow-list category for rule, or CategoryNone.
func CategoryOf(rule string) Category {
	return contextRules[rule]
}

// Classify derives the two resolution flags of an issue. A tool-fixable issue
// is never also contextual; an issue may be neither.
func Classify(rule string, autoFixable bool) (fixable, contextual bool) {
	if autoFixable {
		return true, false
	}
	return false, RequiresContext(rule)
}

// Rules returns the allow-list sorted by rule id.
func Rules() []string {
	rules := make([]string, 0, len(contextRules))
	for r := range contextRules {
		rules = append(rules, r)
	}
	sort.Strings(rules)
	return rules
}
