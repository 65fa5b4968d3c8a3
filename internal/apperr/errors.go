package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Code identifies a failure class surfaced by the relay.
type Code string

const (
	CodeAuthHeaderMalformed    Code = "AUTH_HEADER_MALFORMED"    // 401
	CodeTokenInvalid           Code = "TOKEN_INVALID"            // 401
	CodeInvalidRequest         Code = "INVALID_REQUEST"          // 400
	CodePayloadTooLarge        Code = "PAYLOAD_TOO_LARGE"        // 413
	CodeRateLimited            Code = "RATE_LIMITED"             // 429
	CodeUnknownOperation       Code = "UNKNOWN_OPERATION"        // per tool call
	CodeMalformedToolArguments Code = "MALFORMED_TOOL_ARGUMENTS" // per tool call
	CodeUpstreamLLMFailure     Code = "UPSTREAM_LLM_FAILURE"     // 500
	CodeInternal               Code = "INTERNAL"                 // 500
)

// Error is a classified failure. Message is safe to show to callers;
// Cause holds the underlying detail, which is only ever logged.
type Error struct {
	Code    Code
	Status  int
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap exposes the cause to errors.Is / errors.As.
func (e *Error) Unwrap() error {
	return e.Cause
}

// NewAuthHeaderMalformed creates a 401 for an absent or non-Bearer Authorization header.
func NewAuthHeaderMalformed() *Error {
	return &Error{
		Code:    CodeAuthHeaderMalformed,
		Status:  http.StatusUnauthorized,
		Message: "Invalid authorization header",
	}
}

// NewTokenInvalid creates a 401 for a token the identity provider rejected.
func NewTokenInvalid(cause error) *Error {
	return &Error{
		Code:    CodeTokenInvalid,
		Status:  http.StatusUnauthorized,
		Message: "Invalid token",
		Cause:   cause,
	}
}

// NewInvalidRequest creates a 400 for a request body that failed decoding or validation.
func NewInvalidRequest(msg string) *Error {
	return &Error{
		Code:    CodeInvalidRequest,
		Status:  http.StatusBadRequest,
		Message: msg,
	}
}

// NewPayloadTooLarge creates a 413 when a body exceeds the configured ceiling.
func NewPayloadTooLarge(max int64) *Error {
	return &Error{
		Code:    CodePayloadTooLarge,
		Status:  http.StatusRequestEntityTooLarge,
		Message: fmt.Sprintf("request body exceeds %d bytes", max),
	}
}

// NewRateLimited creates a 429.
func NewRateLimited() *Error {
	return &Error{
		Code:    CodeRateLimited,
		Status:  http.StatusTooManyRequests,
		Message: "Too many requests",
	}
}

// NewUnknownOperation reports a tool call naming an operation outside the catalog.
func NewUnknownOperation(name string) *Error {
	return &Error{
		Code:    CodeUnknownOperation,
		Status:  http.StatusUnprocessableEntity,
		Message: fmt.Sprintf("unknown tool: %s", name),
	}
}

// NewMalformedToolArguments reports a tool call whose arguments do not fit its schema.
func NewMalformedToolArguments(name string, cause error) *Error {
	return &Error{
		Code:    CodeMalformedToolArguments,
		Status:  http.StatusUnprocessableEntity,
		Message: fmt.Sprintf("malformed arguments for %s", name),
		Cause:   cause,
	}
}

// NewUpstreamLLMFailure wraps any failure of the model call. The message is
// generic; the cause must not reach the caller.
func NewUpstreamLLMFailure(cause error) *Error {
	return &Error{
		Code:    CodeUpstreamLLMFailure,
		Status:  http.StatusInternalServerError,
		Message: "AI request failed",
		Cause:   cause,
	}
}

// NewInternal creates a 500 for unexpected failures.
func NewInternal(cause error) *Error {
	return &Error{
		Code:    CodeInternal,
		Status:  http.StatusInternalServerError,
		Message: "internal error",
		Cause:   cause,
	}
}

// Is reports whether err is, or wraps, an *Error with the given code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// From classifies err, falling back to INTERNAL for unclassified errors.
func From(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return NewInternal(err)
}
