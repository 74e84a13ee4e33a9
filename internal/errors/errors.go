// Package errors provides structured error handling for the commitlog CLI.
// It includes categorized errors with actionable remediation guidance.
package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCategory represents the type of error that occurred.
type ErrorCategory int

const (
	// Argument errors are caused by invalid or missing command arguments.
	Argument ErrorCategory = iota
	// Configuration errors are caused by invalid or missing configuration.
	Configuration
	// Input errors are caused by a NEWS document or repository the tool cannot read.
	Input
	// Remote errors occur when GitHub or the download host cannot be reached.
	Remote
	// Runtime errors occur during command execution.
	Runtime
)

// String returns a human-readable name for the error category.
func (c ErrorCategory) String() string {
	switch c {
	case Argument:
		return "Argument Error"
	case Configuration:
		return "Configuration Error"
	case Input:
		return "Input Error"
	case Remote:
		return "Remote Error"
	case Runtime:
		return "Runtime Error"
	default:
		return "Error"
	}
}

// CLIError is a structured error with category and remediation guidance.
type CLIError struct {
	// Category is the type of error (Argument, Configuration, etc.)
	Category ErrorCategory
	// Message is a human-readable description of what went wrong.
	Message string
	// Remediation is a list of actionable steps to resolve the error.
	Remediation []string
	// Usage shows the correct command syntax (optional, for argument errors).
	Usage string
	// Err is the underlying cause, if any.
	Err error
}

// Error implements the error interface.
func (e *CLIError) Error() string {
	return e.Message
}

// Unwrap returns the underlying cause.
func (e *CLIError) Unwrap() error {
	return e.Err
}

func newError(category ErrorCategory, message, usage string, remediation []string) *CLIError {
	return &CLIError{Category: category, Message: message, Usage: usage, Remediation: remediation}
}

// NewArgumentError reports a bad flag or argument.
func NewArgumentError(message string, remediation ...string) *CLIError {
	return newError(Argument, message, "", remediation)
}

// NewArgumentErrorWithUsage is NewArgumentError with the correct syntax shown.
func NewArgumentErrorWithUsage(message, usage string, remediation ...string) *CLIError {
	return newError(Argument, message, usage, remediation)
}

// NewConfigError reports unusable configuration.
func NewConfigError(message string, remediation ...string) *CLIError {
	return newError(Configuration, message, "", remediation)
}

// NewInputError reports a NEWS document or repository that cannot be used.
func NewInputError(message string, remediation ...string) *CLIError {
	return newError(Input, message, "", remediation)
}

// NewRuntimeError reports any other failure.
func NewRuntimeError(message string, remediation ...string) *CLIError {
	return newError(Runtime, message, "", remediation)
}

// Wrap categorizes err and keeps its message. A nil err stays nil.
func Wrap(err error, category ErrorCategory, remediation ...string) *CLIError {
	if err == nil {
		return nil
	}
	e := newError(category, err.Error(), "", remediation)
	e.Err = err
	return e
}

// WrapWithMessage is Wrap with "message: err" as the text.
func WrapWithMessage(err error, category ErrorCategory, message string, remediation ...string) *CLIError {
	if err == nil {
		return nil
	}
	e := newError(category, fmt.Sprintf("%s: %v", message, err), "", remediation)
	e.Err = err
	return e
}

// IsCLIError checks if an error is, or wraps, a CLIError.
func IsCLIError(err error) bool {
	return AsCLIError(err) != nil
}

// AsCLIError attempts to convert an error to a CLIError.
// Returns nil if the error is not a CLIError.
func AsCLIError(err error) *CLIError {
	var cliErr *CLIError
	if stderrors.As(err, &cliErr) {
		return cliErr
	}
	return nil
}
