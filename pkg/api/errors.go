package api

import (
	"fmt"
	"net/http"
)

// Error is the standard failure shape for the API. The JSON fields are the
// wire contract: callers always receive at least "error"; "details" and
// "errorPosition" are best-effort diagnostics.
type Error struct {
	// HTTP status to respond with (401, 400, 502, ...).
	Code int `json:"-"`
	// Safe message for the client.
	Message string `json:"error"`
	// Optional extra context for the client.
	Details string `json:"details,omitempty"`
	// Byte offset of a JSON parse failure, when known.
	ErrorPosition *int64 `json:"errorPosition,omitempty"`
	// Original error for internal logging; never serialized.
	Log error `json:"-"`
}

func (e *Error) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s", e.Message, e.Details)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Log
}

// NewError creates a generic application error.
func NewError(code int, message, details string) *Error {
	return &Error{Code: code, Message: message, Details: details}
}

// UnauthorizedError creates the 401 envelope. The message is fixed so
// clients can match on it.
func UnauthorizedError(details string) *Error {
	return &Error{Code: http.StatusUnauthorized, Message: "Unauthorized", Details: details}
}

// ValidationError reports missing or invalid request fields.
func ValidationError(message string) *Error {
	return &Error{Code: http.StatusBadRequest, Message: message}
}

// MalformedRequestError reports a JSON parse failure, carrying the parser
// offset and a short excerpt around it for diagnostics.
func MalformedRequestError(details string, offset int64) *Error {
	return &Error{
		Code:          http.StatusBadRequest,
		Message:       "Invalid JSON in request body",
		Details:       details,
		ErrorPosition: &offset,
	}
}

// VendorError wraps an upstream provider failure. 502 Bad Gateway, since
// the failure originated behind the proxy.
func VendorError(message string, err error) *Error {
	return &Error{Code: http.StatusBadGateway, Message: message, Log: err}
}

// InternalError creates a catch-all 500.
func InternalError(message string, err error) *Error {
	return &Error{Code: http.StatusInternalServerError, Message: message, Log: err}
}
