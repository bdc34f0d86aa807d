package errs

import (
	"errors"
	"fmt"
	"net/http"
)

// Code categorizes a failure for callers and for the HTTP surface.
type Code string

const (
	CodeInvalidQuery     Code = "INVALID_QUERY"
	CodeInsufficientData Code = "INSUFFICIENT_DATA"
	CodeToolUnavailable  Code = "TOOL_UNAVAILABLE"
	CodeBothToolsFailed  Code = "BOTH_TOOLS_FAILED"
)

// Error is a structured failure carrying a code, a retryability hint and an
// optional cause. Messages are plain language; they are shown to users.
type Error struct {
	Code      Code
	Retryable bool
	Message   string
	Cause     error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// InvalidQuery marks a malformed or ticker-less query. Never retryable; it
// short-circuits before any tool dispatch.
func InvalidQuery(format string, args ...any) *Error {
	return &Error{Code: CodeInvalidQuery, Message: fmt.Sprintf(format, args...)}
}

// InsufficientData marks an input set too small to analyze.
func InsufficientData(format string, args ...any) *Error {
	return &Error{Code: CodeInsufficientData, Message: fmt.Sprintf(format, args...)}
}

// ToolUnavailable marks a collaborator failure on one analysis path.
func ToolUnavailable(message string, retryable bool, cause error) *Error {
	return &Error{Code: CodeToolUnavailable, Retryable: retryable, Message: message, Cause: cause}
}

// BothToolsFailed is the terminal failure when no analysis path succeeded.
func BothToolsFailed(message string) *Error {
	return &Error{Code: CodeBothToolsFailed, Message: message}
}

// CodeOf extracts the failure code from an error chain, or empty if the
// chain carries no structured error.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// IsRetryable reports whether a retry could plausibly succeed. Unstructured
// errors are treated as transient, matching how network-level failures
// surface from HTTP clients.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Retryable
	}
	return true
}

// HTTPStatus maps a failure code to the status the outbound envelope uses.
func HTTPStatus(code Code) int {
	switch code {
	case CodeInvalidQuery:
		return http.StatusBadRequest
	case CodeBothToolsFailed:
		return http.StatusInternalServerError
	case "":
		return http.StatusOK
	default:
		return http.StatusInternalServerError
	}
}
