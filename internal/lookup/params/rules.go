package params

import (
	"fmt"
	"regexp"

	"github.com/go-playground/validator/v10"
)

// Rule codes reported in validation messages.
const (
	CodeStringLengthTooShort = "stringLengthTooShort"
	CodeStringLengthTooLong  = "stringLengthTooLong"
	CodeDateFalseFormat      = "dateFalseFormat"
	CodeRegexNotMatch        = "regexNotMatch"
)

// validate is shared by every rule; validator.Validate is safe for concurrent use.
var validate = validator.New()

// Rule is a single structural check on a transformed value.
type Rule struct {
	Code    string
	Message string
	check   func(string) bool
}

// Check reports whether value satisfies the rule.
func (r Rule) Check(value string) bool {
	return r.check(value)
}

// tagRule builds a rule backed by a validator tag such as "min=2".
func tagRule(code, message, tag string) Rule {
	return Rule{
		Code:    code,
		Message: message,
		check: func(value string) bool {
			return validate.Var(value, tag) == nil
		},
	}
}

// StringLength requires the value to be between min and max characters long.
func StringLength(min, max int) []Rule {
	return []Rule{
		tagRule(
			CodeStringLengthTooShort,
			fmt.Sprintf("The input is less than %d characters long", min),
			fmt.Sprintf("min=%d", min),
		),
		tagRule(
			CodeStringLengthTooLong,
			fmt.Sprintf("The input is more than %d characters long", max),
			fmt.Sprintf("max=%d", max),
		),
	}
}

// DateLayoutYMD is the compact calendar date format used by date parameters.
const DateLayoutYMD = "20060102"

// Date requires the value to parse exactly as a calendar date in layout.
func Date(layout, display string) Rule {
	return tagRule(
		CodeDateFalseFormat,
		fmt.Sprintf("The input does not fit the date format '%s'", display),
		"datetime="+layout,
	)
}

// Regex requires the value to match pattern.
func Regex(pattern *regexp.Regexp) Rule {
	return Rule{
		Code:    CodeRegexNotMatch,
		Message: fmt.Sprintf("The input does not match against pattern '%s'", pattern.String()),
		check:   pattern.MatchString,
	}
}
