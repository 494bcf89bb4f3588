package core

import "fmt"

// Stable error codes recognized by the retry classifier as non-retryable.
// Anything else is treated as transient and retried per policy.
const (
	CodeScopeViolation       = "SCOPE_VIOLATION"
	CodeAuthenticationFailed = "AUTHENTICATION_FAILED"
	CodeInvalidInput         = "INVALID_INPUT"
)

// CodedError is an error carrying a stable machine-readable code. The retry
// classifier matches on both the code and the rendered message, so wrapping a
// CodedError preserves its classification.
type CodedError struct {
	Code    string
	Message string
	Err     error
}

// Error implements the error interface.
func (e *CodedError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap exposes the wrapped cause for errors.Is / errors.As chains.
func (e *CodedError) Unwrap() error { return e.Err }

// NewCodedError constructs a CodedError with a formatted message.
func NewCodedError(code, format string, args ...any) *CodedError {
	return &CodedError{Code: code, Message: fmt.Sprintf(format, args...)}
}
