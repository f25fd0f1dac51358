package params

import "strings"

// Filter drops every key that is not a supported query parameter and every
// Fields value that is not a supported field. It never fails and never
// modifies raw.
func Filter(raw map[string]string) Set {
	if len(raw) == 0 {
		return Set{}
	}

	filtered := make(Set, len(raw))
	for k, v := range raw {
		if !IsSupportedKey(k) {
			continue
		}
		filtered[k] = v
	}

	if fields, ok := filtered[string(KeyFields)]; ok {
		filtered[string(KeyFields)] = AllowFields(fields)
	}
	return filtered
}

// AllowFields keeps the supported elements of a delimited Fields value, in
// input order.
func AllowFields(value string) string {
	parts := strings.Split(value, FieldsDelimiter)
	kept := parts[:0]
	for _, p := range parts {
		if IsSupportedField(p) {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, FieldsDelimiter)
}
