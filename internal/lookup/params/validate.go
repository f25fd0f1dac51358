package params

import "regexp"

// verificationSIDPattern matches a Verify service verification SID.
var verificationSIDPattern = regexp.MustCompile(`^VA[0-9a-f]{32}$`)

// input describes how one parameter is cleaned and checked. Transforms run in
// order, then every rule runs against the result; empty values skip the rules.
type input struct {
	key        Key
	transforms []Transform
	rules      []Rule
}

func (in input) apply(value string) string {
	for _, t := range in.transforms {
		value = t(value)
	}
	return value
}

var sanitize = []Transform{StripNewlines, StripTags}

func textInput(key Key) input {
	return input{key: key, transforms: sanitize}
}

func countryCodeInput(key Key) input {
	return input{
		key:        key,
		transforms: []Transform{ToUpper, StripNewlines, StripTags},
		rules:      StringLength(2, 2),
	}
}

func dateInput(key Key) input {
	return input{
		key:        key,
		transforms: sanitize,
		rules:      []Rule{Date(DateLayoutYMD, "YYYYMMDD")},
	}
}

// inputs is evaluated in this order on every Validate call.
var inputs = []input{
	countryCodeInput(KeyAddressCountryCode),
	textInput(KeyAddressLine1),
	textInput(KeyAddressLine2),
	textInput(KeyCity),
	countryCodeInput(KeyCountryCode),
	dateInput(KeyDateOfBirth),
	{
		key:        KeyFields,
		transforms: []Transform{StripNewlines, StripTags, AllowFields},
	},
	textInput(KeyFirstName),
	textInput(KeyLastName),
	dateInput(KeyLastVerifiedDate),
	textInput(KeyNationalID),
	textInput(KeyPostalCode),
	textInput(KeyState),
	{
		key:        KeyVerificationSID,
		transforms: sanitize,
		rules:      append(StringLength(34, 34), Regex(verificationSIDPattern)),
	},
}

// Validate cleans every supported parameter present in raw and checks it
// against its rules. Unsupported keys are ignored. On success the result holds
// each supplied parameter's cleaned value, empty values included. If any value
// fails, Validate returns an *InvalidParametersError describing all failures.
func Validate(raw map[string]string) (Set, error) {
	out := make(Set, len(raw))
	messages := make(Messages)

	for _, in := range inputs {
		value, ok := raw[string(in.key)]
		if !ok {
			continue
		}
		value = in.apply(value)
		out[string(in.key)] = value

		if value == "" {
			continue
		}
		for _, r := range in.rules {
			if !r.Check(value) {
				messages.add(in.key.InputName(), r.Code, r.Message)
			}
		}
	}

	if len(messages) > 0 {
		return nil, &InvalidParametersError{Messages: messages}
	}
	return out, nil
}

// Normalize filters raw and validates the result, returning the set that
// should be sent to the lookup service: empty values are dropped.
func Normalize(raw map[string]string) (Set, error) {
	set, err := Validate(Filter(raw))
	if err != nil {
		return nil, err
	}
	return set.WithoutEmpty(), nil
}
