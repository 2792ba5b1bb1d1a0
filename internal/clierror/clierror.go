// Package clierror provides structured CLI errors that carry a process exit code.
package clierror

import (
	"errors"
	"fmt"
)

// Code identifies a class of CLI failure.
type Code string

const (
	CodeUsage              Code = "USAGE_ERROR"
	CodeValidation         Code = "VALIDATION_FAILED"
	CodeServiceUnavailable Code = "SERVICE_UNAVAILABLE"
	CodeOperation          Code = "OPERATION_FAILED"
	CodeNotFound           Code = "NOT_FOUND"
)

// Exit codes.
const (
	ExitGeneral            = 1
	ExitUsage              = 2
	ExitServiceUnavailable = 3
	ExitNotFound           = 4
)

// CLIError is an error with a recovery suggestion and exit code.
type CLIError struct {
	Code       Code
	Message    string
	Details    string
	Suggestion string
	ExitCode   int
	Err        error
}

func (e *CLIError) Error() string {
	msg := e.Message
	if e.Details != "" {
		msg += ": " + e.Details
	}
	if e.Suggestion != "" {
		msg += "\n\nSuggestion: " + e.Suggestion
	}
	return msg
}

func (e *CLIError) Unwrap() error { return e.Err }

// NewUsageError reports incorrect command usage.
func NewUsageError(details string) *CLIError {
	return &CLIError{
		Code:       CodeUsage,
		Message:    "Incorrect usage",
		Details:    details,
		Suggestion: "Run with --help for usage information.",
		ExitCode:   ExitUsage,
	}
}

// NewValidationError reports configuration or input that failed validation.
func NewValidationError(details, suggestion string) *CLIError {
	return &CLIError{
		Code:       CodeValidation,
		Message:    "Validation failed",
		Details:    details,
		Suggestion: suggestion,
		ExitCode:   ExitUsage,
	}
}

// NewServiceUnavailableError reports an unreachable GraphQL endpoint.
func NewServiceUnavailableError(endpoint string, err error) *CLIError {
	return &CLIError{
		Code:       CodeServiceUnavailable,
		Message:    "Service is unavailable",
		Details:    fmt.Sprintf("endpoint %s: %v", endpoint, err),
		Suggestion: "Check network connectivity, the endpoint URL and the API key.",
		ExitCode:   ExitServiceUnavailable,
		Err:        err,
	}
}

// NewNotFoundError reports a referenced object that does not exist remotely.
func NewNotFoundError(kind, name string, err error) *CLIError {
	return &CLIError{
		Code:       CodeNotFound,
		Message:    fmt.Sprintf("%s not found", kind),
		Details:    name,
		Suggestion: fmt.Sprintf("Verify the %s name exactly as it is shown in the platform UI.", kind),
		ExitCode:   ExitNotFound,
		Err:        err,
	}
}

// NewOperationError reports a failed remote operation.
func NewOperationError(details string, err error) *CLIError {
	return &CLIError{
		Code:     CodeOperation,
		Message:  "Operation failed",
		Details:  details,
		ExitCode: ExitGeneral,
		Err:      err,
	}
}

// ExitCode returns the exit code for err: the CLIError code when err wraps
// one, ExitGeneral for any other error, and zero for nil.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var cliErr *CLIError
	if errors.As(err, &cliErr) {
		return cliErr.ExitCode
	}
	return ExitGeneral
}
