package jobs

import "fmt"

// Well-known execution error codes surfaced on failed jobs.
const (
	ErrCodeInternal             = "internal"
	ErrCodeInvalidInput         = "invalid_input"
	ErrCodeScoring              = "scoring"
	ErrCodeCVNotFound           = "cv_not_found"
	ErrCodeJobDescNotFound      = "job_description_not_found"
	ErrCodeHandlerNotRegistered = "handler_not_registered"
)

// ExecutionError is a structured handler failure. The dispatcher records its
// Code and Message on the job; any other error is recorded under the
// "internal" code. Cancellation is never wrapped in an ExecutionError.
type ExecutionError struct {
	Code    string
	Message string
	Cause   error
}

// Failure constructs an ExecutionError with the given code and message.
func Failure(code, message string) *ExecutionError {
	return &ExecutionError{Code: code, Message: message}
}

// Failuref constructs an ExecutionError with a formatted message.
func Failuref(code, format string, args ...any) *ExecutionError {
	return &ExecutionError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// WrapFailure constructs an ExecutionError that wraps an underlying cause.
func WrapFailure(code, message string, cause error) *ExecutionError {
	return &ExecutionError{Code: code, Message: message, Cause: cause}
}

func (e *ExecutionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("job execution failed [%s]: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("job execution failed [%s]: %s", e.Code, e.Message)
}

func (e *ExecutionError) Unwrap() error {
	return e.Cause
}
