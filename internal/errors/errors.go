package apperrors

import (
	"errors"
	"fmt"
)

type ErrorType string

const (
	TypeDependency ErrorType = "Dependency" // Missing native tool (e.g. psql)
	TypeConnection ErrorType = "Connection" // Database unreachable
	TypeIntegrity  ErrorType = "Integrity"  // Checksum mismatch, corrupt backup
	TypeConfig     ErrorType = "Config"     // Invalid settings or flags
	TypeResource   ErrorType = "Resource"   // Permission denied, file not found
	TypeInput      ErrorType = "Input"      // Operator typed something unusable
	TypeInternal   ErrorType = "Internal"   // Unexpected internal failure
)

// AppError is a rich error type that provides a category and a hint for operators.
type AppError struct {
	Type    ErrorType
	Message string
	Err     error
	Hint    string
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError
func New(t ErrorType, msg string, hint string) *AppError {
	return &AppError{
		Type:    t,
		Message: msg,
		Hint:    hint,
	}
}

// Wrap wraps an existing error into an AppError
func Wrap(err error, t ErrorType, msg string, hint string) *AppError {
	return &AppError{
		Type:    t,
		Message: msg,
		Err:     err,
		Hint:    hint,
	}
}

// IsType reports whether any AppError in err's chain has type t.
func IsType(err error, t ErrorType) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type == t
	}
	return false
}

// HintOf returns the hint of the first AppError in err's chain.
func HintOf(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Hint
	}
	return ""
}

var (
	ErrIntegrityMismatch = New(TypeIntegrity, "Integrity failure", "The backup file may be corrupt or tampered with. Verify the source integrity.")
)
