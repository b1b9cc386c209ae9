// Package errors provides coded errors for the watcher's failure
// taxonomy: setup failures abort the process before any episode,
// capture failures abort one episode, everything else degrades a
// stage and is absorbed where it happens.
package errors

import "fmt"

// Code classifies how far a failure is allowed to propagate.
type Code string

const (
	CodeSetup   Code = "SETUP"   // required collaborator unavailable at startup
	CodeCapture Code = "CAPTURE" // episode-fatal, repeating loop continues
)

// AppError is an error with a propagation code and optional cause.
type AppError struct {
	Code    Code
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As.
func (e *AppError) Unwrap() error { return e.Cause }

// New creates an error with the given code.
func New(code Code, msg string) *AppError {
	return &AppError{Code: code, Message: msg}
}

// Newf creates an error with a formatted message.
func Newf(code Code, format string, args ...any) *AppError {
	return &AppError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code to an existing error.
func Wrap(err error, code Code, msg string) *AppError {
	return &AppError{Code: code, Message: msg, Cause: err}
}

// IsCode checks whether err carries the given code anywhere in its
// chain.
func IsCode(err error, code Code) bool {
	for err != nil {
		if appErr, ok := err.(*AppError); ok && appErr.Code == code {
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}
