// Package errors provides custom error types for the model runner front-end.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common cases
var (
	ErrEmptyQuery     = errors.New("input field cannot be empty")
	ErrRunnerNotFound = errors.New("runner command not found")
	ErrNonZeroExit    = errors.New("runner exited with non-zero status")
	ErrTimeout        = errors.New("runner timed out")
)

// NotFoundError reports that the runner binary is missing from the environment.
type NotFoundError struct {
	Binary string
	Cause  error
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("'%s' command not found. Please ensure it is installed and in your PATH.", e.Binary)
}

// Unwrap returns the underlying lookup error
func (e *NotFoundError) Unwrap() error {
	return e.Cause
}

// Is allows comparison with sentinel errors
func (e *NotFoundError) Is(target error) bool {
	if target == ErrRunnerNotFound {
		return true
	}
	_, ok := target.(*NotFoundError)
	return ok
}

// NewNotFoundError creates a new NotFoundError
func NewNotFoundError(binary string, cause error) *NotFoundError {
	return &NotFoundError{Binary: binary, Cause: cause}
}

// ExitError represents a runner invocation that completed with a non-zero status.
// Output holds the combined stdout/stderr captured before exit, unmodified.
type ExitError struct {
	Code   int
	Output string
	Args   []string
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("runner exited with status %d", e.Code)
}

// Is allows comparison with sentinel errors
func (e *ExitError) Is(target error) bool {
	if target == ErrNonZeroExit {
		return true
	}
	_, ok := target.(*ExitError)
	return ok
}

// NewExitError creates a new ExitError
func NewExitError(code int, output string, args []string) *ExitError {
	return &ExitError{Code: code, Output: output, Args: args}
}

// TimeoutError represents a runner invocation killed by its deadline
type TimeoutError struct {
	Message string
}

func (e *TimeoutError) Error() string {
	if e.Message == "" {
		return "runner timed out"
	}
	return fmt.Sprintf("runner timed out: %s", e.Message)
}

// Is allows comparison with sentinel errors
func (e *TimeoutError) Is(target error) bool {
	if target == ErrTimeout {
		return true
	}
	_, ok := target.(*TimeoutError)
	return ok
}

// NewTimeoutError creates a new TimeoutError
func NewTimeoutError(message string) *TimeoutError {
	return &TimeoutError{Message: message}
}

// IsNotFound checks if the error means the runner binary is missing
func IsNotFound(err error) bool {
	return errors.Is(err, ErrRunnerNotFound)
}

// IsExitError checks if the error is a non-zero runner exit
func IsExitError(err error) bool {
	return errors.Is(err, ErrNonZeroExit)
}

// IsTimeout checks if the error is a runner timeout
func IsTimeout(err error) bool {
	return errors.Is(err, ErrTimeout)
}

// IsEmptyQuery checks if the error is a validation failure for an empty query
func IsEmptyQuery(err error) bool {
	return errors.Is(err, ErrEmptyQuery)
}

// GetExitOutput extracts the captured output from an ExitError, if present
func GetExitOutput(err error) (string, bool) {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Output, true
	}
	return "", false
}

// GetExitCode extracts the exit code from an ExitError, or -1
func GetExitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return -1
}
