package errors

import (
	"fmt"
)

// ErrorType is the category of an AppError. The CLI maps each category to an exit
// status and the store decides from it what to log.
type ErrorType int

const (
	ErrorTypeValidation ErrorType = iota
	ErrorTypeNotFound
	ErrorTypeNotAuthenticated
	ErrorTypeGateway
	ErrorTypeInvalidInput
	ErrorTypeTimeout
	ErrorTypeConflictIgnored
)

var errorTypeNames = [...]string{
	ErrorTypeValidation:       "validation",
	ErrorTypeNotFound:         "not_found",
	ErrorTypeNotAuthenticated: "not_authenticated",
	ErrorTypeGateway:          "gateway",
	ErrorTypeInvalidInput:     "invalid_input",
	ErrorTypeTimeout:          "timeout",
	ErrorTypeConflictIgnored:  "conflict_ignored",
}

func (et ErrorType) String() string {
	if et < 0 || int(et) >= len(errorTypeNames) {
		return "unknown"
	}
	return errorTypeNames[et]
}

// Retryable reports whether the same call may succeed later without any change
// by the user: the backend was unreachable or slow.
func (et ErrorType) Retryable() bool {
	return et == ErrorTypeGateway || et == ErrorTypeTimeout
}

// AppError is the structured error returned by the store, session and gateways.
// Context carries the ids and fields involved, for logs.
type AppError struct {
	Type    ErrorType
	Message string
	Code    string
	Cause   error
	Context map[string]interface{}
}

func (e *AppError) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("%s: %s", e.Type, e.Message)
	}
	return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Cause)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is matches another AppError of the same type and code, so callers can compare
// against a constructor result with errors.Is.
func (e *AppError) Is(target error) bool {
	appErr, ok := target.(*AppError)
	return ok && e.Type == appErr.Type && e.Code == appErr.Code
}

// IsType checks if this error is of the specified type
func (e *AppError) IsType(errorType ErrorType) bool {
	return e.Type == errorType
}

// WithContext records key for logs and returns e
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// GetContext returns a value recorded with WithContext
func (e *AppError) GetContext(key string) (interface{}, bool) {
	value, ok := e.Context[key]
	return value, ok
}
