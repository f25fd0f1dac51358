package params

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrInvalidParameters is matched by every *InvalidParametersError.
var ErrInvalidParameters = errors.New("invalid query parameters")

// Messages maps an input name to its failed rule codes and their messages,
// for example:
//
//	{"verificationSid": {
//	    "stringLengthTooShort": "The input is less than 34 characters long",
//	    "regexNotMatch":        "The input does not match against pattern '...'",
//	}}
type Messages map[string]map[string]string

func (m Messages) add(input, code, message string) {
	if m[input] == nil {
		m[input] = make(map[string]string)
	}
	m[input][code] = message
}

// InvalidParametersError is returned when a known parameter holds a value
// that fails validation. It carries every failure for every input.
type InvalidParametersError struct {
	Messages Messages
}

func (e *InvalidParametersError) Error() string {
	inputs := make([]string, 0, len(e.Messages))
	for name := range e.Messages {
		inputs = append(inputs, name)
	}
	sort.Strings(inputs)
	return fmt.Sprintf("%s: %s", ErrInvalidParameters, strings.Join(inputs, ", "))
}

func (e *InvalidParametersError) Unwrap() error {
	return ErrInvalidParameters
}

// ValidationMessages extracts the per-input messages from err, if it is (or
// wraps) an *InvalidParametersError.
func ValidationMessages(err error) (Messages, bool) {
	var ipe *InvalidParametersError
	if errors.As(err, &ipe) {
		return ipe.Messages, true
	}
	return nil, false
}
