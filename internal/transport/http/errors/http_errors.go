package errors

import (
	"encoding/json"
	"net/http"
	"sort"
)

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// FieldError is returned when the problem can be attributed to individual form fields.
// Fields lists the offending keys in a stable order for clients that only highlight.
type FieldError struct {
	Code        string            `json:"code"`
	Message     string            `json:"message"`
	Fields      []string          `json:"fields,omitempty"`
	FieldErrors map[string]string `json:"field_errors,omitempty"`
}

func NewFieldError(code, message string, fieldErrors map[string]string) FieldError {
	fields := make([]string, 0, len(fieldErrors))
	for name := range fieldErrors {
		fields = append(fields, name)
	}
	sort.Strings(fields)
	return FieldError{Code: code, Message: message, Fields: fields, FieldErrors: fieldErrors}
}

func Write(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func WriteError(w http.ResponseWriter, status int, code, message string) {
	Write(w, status, APIError{Code: code, Message: message})
}
