// Package params filters and validates the optional query parameters sent
// alongside a Lookup (v2) request.
package params

import "strings"

// Key is a query parameter name as the lookup service expects it.
type Key string

const (
	KeyAddressCountryCode Key = "AddressCountryCode"
	KeyAddressLine1       Key = "AddressLine1"
	KeyAddressLine2       Key = "AddressLine2"
	KeyCity               Key = "City"
	KeyCountryCode        Key = "CountryCode"
	KeyDateOfBirth        Key = "DateOfBirth"
	KeyFields             Key = "Fields"
	KeyFirstName          Key = "FirstName"
	KeyLastName           Key = "LastName"
	KeyLastVerifiedDate   Key = "LastVerifiedDate"
	KeyNationalID         Key = "NationalId"
	KeyPostalCode         Key = "PostalCode"
	KeyState              Key = "State"
	KeyVerificationSID    Key = "VerificationSid"
)

// SupportedKeys lists every query parameter the lookup service accepts.
var SupportedKeys = []Key{
	KeyAddressCountryCode,
	KeyAddressLine1,
	KeyAddressLine2,
	KeyCity,
	KeyCountryCode,
	KeyDateOfBirth,
	KeyFields,
	KeyFirstName,
	KeyLastName,
	KeyLastVerifiedDate,
	KeyNationalID,
	KeyPostalCode,
	KeyState,
	KeyVerificationSID,
}

// Field is a data package that can be requested through the Fields parameter.
type Field string

const (
	FieldCallForwarding          Field = "call_forwarding"
	FieldCallerName              Field = "caller_name"
	FieldIdentityMatch           Field = "identity_match"
	FieldLineStatus              Field = "line_status"
	FieldLineTypeIntelligence    Field = "line_type_intelligence"
	FieldPhoneNumberQualityScore Field = "phone_number_quality_score"
	FieldPreFill                 Field = "pre_fill"
	FieldReassignedNumber        Field = "reassigned_number"
	FieldSimSwap                 Field = "sim_swap"
	FieldSMSPumpingRisk          Field = "sms_pumping_risk"
	FieldValidation              Field = "validation"
)

// SupportedFields lists every value accepted inside the Fields parameter.
var SupportedFields = []Field{
	FieldCallForwarding,
	FieldCallerName,
	FieldIdentityMatch,
	FieldLineStatus,
	FieldLineTypeIntelligence,
	FieldPhoneNumberQualityScore,
	FieldPreFill,
	FieldReassignedNumber,
	FieldSimSwap,
	FieldSMSPumpingRisk,
	FieldValidation,
}

// FieldsDelimiter separates the values of the Fields parameter.
const FieldsDelimiter = ","

var (
	supportedKeySet   = make(map[Key]struct{}, len(SupportedKeys))
	supportedFieldSet = make(map[Field]struct{}, len(SupportedFields))
)

func init() {
	for _, k := range SupportedKeys {
		supportedKeySet[k] = struct{}{}
	}
	for _, f := range SupportedFields {
		supportedFieldSet[f] = struct{}{}
	}
}

// IsSupportedKey reports whether name exactly matches a supported key.
func IsSupportedKey(name string) bool {
	_, ok := supportedKeySet[Key(name)]
	return ok
}

// IsSupportedField reports whether value exactly matches a supported field.
func IsSupportedField(value string) bool {
	_, ok := supportedFieldSet[Field(value)]
	return ok
}

// InputName is the name a key is reported under in validation messages,
// e.g. "verificationSid" for VerificationSid.
func (k Key) InputName() string {
	s := string(k)
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}

func (k Key) String() string {
	return string(k)
}

// Set is a filtered, validated mapping of lookup query parameters keyed by
// their remote name.
type Set map[string]string

// Clone returns an independent copy of s. A nil Set clones to an empty one.
func (s Set) Clone() Set {
	out := make(Set, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// WithoutEmpty returns a copy of s without entries whose value is empty.
func (s Set) WithoutEmpty() Set {
	out := make(Set, len(s))
	for k, v := range s {
		if v == "" {
			continue
		}
		out[k] = v
	}
	return out
}
