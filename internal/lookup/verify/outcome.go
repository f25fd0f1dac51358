package verify

import "fmt"

// Outcome classifies the result of the most recent check.
type Outcome string

const (
	OutcomeValid          Outcome = "valid"
	OutcomeInvalidFormat  Outcome = "invalid_format"
	OutcomeNetworkFailure Outcome = "network_failure"
)

// Message keys returned by Verifier.Messages.
const (
	MsgInvalidPhoneNumber   = "msgInvalidPhoneNumber"
	MsgNetworkLookupFailure = "msgNetworkLookupFailure"
)

var messageTemplates = map[string]string{
	MsgInvalidPhoneNumber:   "'%s' is not a valid phone number",
	MsgNetworkLookupFailure: "There was a network error while checking if '%s' is valid",
}

// messageKey returns the message key reported for a failed outcome.
func (o Outcome) messageKey() (string, bool) {
	switch o {
	case OutcomeInvalidFormat:
		return MsgInvalidPhoneNumber, true
	case OutcomeNetworkFailure:
		return MsgNetworkLookupFailure, true
	default:
		return "", false
	}
}

func renderMessage(key, value string) string {
	return fmt.Sprintf(messageTemplates[key], value)
}
