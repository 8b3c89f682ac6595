package errors

import (
	"errors"
	"fmt"
)

// NewValidationError creates a new validation error
func NewValidationError(message string, cause error) *AppError {
	return &AppError{
		Type:    ErrorTypeValidation,
		Message: message,
		Code:    "VALIDATION_FAILED",
		Cause:   cause,
		Context: make(map[string]interface{}),
	}
}

// NewNotFoundError creates a new not found error
func NewNotFoundError(resource string, identifier string) *AppError {
	return &AppError{
		Type:    ErrorTypeNotFound,
		Message: fmt.Sprintf("%s not found: %s", resource, identifier),
		Code:    "NOT_FOUND",
		Context: map[string]interface{}{
			"resource":   resource,
			"identifier": identifier,
		},
	}
}

// NewNotAuthenticatedError is returned when an operation needs a user and none is signed in
func NewNotAuthenticatedError(operation string) *AppError {
	return &AppError{
		Type:    ErrorTypeNotAuthenticated,
		Message: fmt.Sprintf("not authenticated: %s requires a signed-in user", operation),
		Code:    "NOT_AUTHENTICATED",
		Context: map[string]interface{}{
			"operation": operation,
		},
	}
}

// NewGatewayError creates a new persistence gateway error
func NewGatewayError(operation string, cause error) *AppError {
	return &AppError{
		Type:    ErrorTypeGateway,
		Message: fmt.Sprintf("gateway operation failed: %s", operation),
		Code:    "GATEWAY_ERROR",
		Cause:   cause,
		Context: map[string]interface{}{
			"operation": operation,
		},
	}
}

// NewInvalidInputError creates a new invalid input error
func NewInvalidInputError(field string, value interface{}, reason string) *AppError {
	return &AppError{
		Type:    ErrorTypeInvalidInput,
		Message: fmt.Sprintf("invalid input for %s: %s", field, reason),
		Code:    "INVALID_INPUT",
		Context: map[string]interface{}{
			"field":  field,
			"value":  value,
			"reason": reason,
		},
	}
}

// NewTimeoutError creates a new timeout error
func NewTimeoutError(operation string, timeout interface{}) *AppError {
	return &AppError{
		Type:    ErrorTypeTimeout,
		Message: fmt.Sprintf("operation timed out: %s", operation),
		Code:    "TIMEOUT",
		Context: map[string]interface{}{
			"operation": operation,
			"timeout":   timeout,
		},
	}
}

// NewConflictIgnoredError describes a change event that referenced an id no longer held locally.
// It is never returned to store callers.
func NewConflictIgnoredError(entity string, identifier string) *AppError {
	return &AppError{
		Type:    ErrorTypeConflictIgnored,
		Message: fmt.Sprintf("%s %s is not present locally", entity, identifier),
		Code:    "CONFLICT_IGNORED",
		Context: map[string]interface{}{
			"entity":     entity,
			"identifier": identifier,
		},
	}
}

// IsAppError checks if the error is an AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// AsAppError converts an error to an AppError if possible
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// IsErrorType checks if the error is of the specified type
func IsErrorType(err error, errorType ErrorType) bool {
	if appErr, ok := AsAppError(err); ok {
		return appErr.IsType(errorType)
	}
	return false
}

// GetUserMessage returns a user-friendly error message
func GetUserMessage(err error) string {
	if appErr, ok := AsAppError(err); ok {
		switch appErr.Type {
		case ErrorTypeValidation, ErrorTypeNotFound, ErrorTypeInvalidInput:
			if appErr.Cause != nil && appErr.Type == ErrorTypeValidation {
				return fmt.Sprintf("%s: %v", appErr.Message, appErr.Cause)
			}
			return appErr.Message
		case ErrorTypeNotAuthenticated:
			return "You are not signed in. Set UT_USER or pass --user."
		case ErrorTypeGateway:
			return "The task store could not be reached. Please try again."
		case ErrorTypeTimeout:
			return "The operation timed out. Please try again."
		default:
			return "An unexpected error occurred. Please try again."
		}
	}
	return err.Error()
}

// GetErrorCode returns the error code for the error
func GetErrorCode(err error) string {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Code
	}
	return "UNKNOWN_ERROR"
}

// ShouldLogError determines if an error should be logged based on its type
func ShouldLogError(err error) bool {
	if appErr, ok := AsAppError(err); ok {
		switch appErr.Type {
		case ErrorTypeValidation, ErrorTypeNotFound, ErrorTypeInvalidInput, ErrorTypeNotAuthenticated, ErrorTypeConflictIgnored:
			return false // caller mistakes or expected races
		default:
			return true
		}
	}
	return true
}
