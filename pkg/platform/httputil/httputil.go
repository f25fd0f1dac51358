// Package httputil holds JSON request and response helpers shared by handlers.
package httputil

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Error codes written in the "error" field.
const (
	CodeBadRequest = "bad_request"
	CodeValidation = "validation_error"
	CodeInternal   = "internal_error"
)

const maxBodyBytes = 1 << 20

// validate is initialised once; register custom tags in init() only.
var validate = validator.New()

// ErrorResponse is the body written for every failed request.
type ErrorResponse struct {
	Error       string `json:"error"`
	Description string `json:"error_description,omitempty"`
	Messages    any    `json:"messages,omitempty"`
}

// WriteJSON writes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError writes an ErrorResponse. Descriptions of 5xx errors are dropped
// so internal details never reach the client.
func WriteError(w http.ResponseWriter, status int, code, description string) {
	resp := ErrorResponse{Error: code}
	if status < http.StatusInternalServerError {
		resp.Description = description
	}
	WriteJSON(w, status, resp)
}

// DecodeAndValidate decodes a JSON body into T and checks its validate tags.
// On failure it writes a 400 and returns false.
func DecodeAndValidate[T any](w http.ResponseWriter, r *http.Request) (*T, bool) {
	var req T
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, CodeBadRequest, "invalid json body")
		return nil, false
	}
	if err := ValidateStruct(&req); err != nil {
		WriteError(w, http.StatusBadRequest, CodeValidation, err.Error())
		return nil, false
	}
	return &req, true
}

// ValidateStruct validates s using its validate tags and returns a readable
// error naming every failed field.
func ValidateStruct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return err
	}
	msgs := make([]string, 0, len(ve))
	for _, fe := range ve {
		msgs = append(msgs, fmt.Sprintf("field '%s' failed '%s'", fe.Namespace(), fe.Tag()))
	}
	return errors.New(strings.Join(msgs, "; "))
}
