package errors

import (
	"errors"
	"testing"
)

func TestNewValidationError(t *testing.T) {
	cause := errors.New("title is required")
	err := NewValidationError("invalid task title", cause)

	if err.Type != ErrorTypeValidation {
		t.Errorf("NewValidationError type = %v, want %v", err.Type, ErrorTypeValidation)
	}
	if err.Message != "invalid task title" {
		t.Errorf("NewValidationError message = %v, want %v", err.Message, "invalid task title")
	}
	if err.Code != "VALIDATION_FAILED" {
		t.Errorf("NewValidationError code = %v, want %v", err.Code, "VALIDATION_FAILED")
	}
	if err.Cause != cause {
		t.Errorf("NewValidationError cause = %v, want %v", err.Cause, cause)
	}
}

func TestNewNotFoundError(t *testing.T) {
	err := NewNotFoundError("task", "abc")

	if err.Type != ErrorTypeNotFound {
		t.Errorf("NewNotFoundError type = %v, want %v", err.Type, ErrorTypeNotFound)
	}
	if err.Message != "task not found: abc" {
		t.Errorf("NewNotFoundError message = %v, want %v", err.Message, "task not found: abc")
	}
	if err.Code != "NOT_FOUND" {
		t.Errorf("NewNotFoundError code = %v, want %v", err.Code, "NOT_FOUND")
	}

	resource, ok := err.GetContext("resource")
	if !ok || resource != "task" {
		t.Errorf("NewNotFoundError should set resource context")
	}

	identifier, ok := err.GetContext("identifier")
	if !ok || identifier != "abc" {
		t.Errorf("NewNotFoundError should set identifier context")
	}
}

func TestNewNotAuthenticatedError(t *testing.T) {
	err := NewNotAuthenticatedError("add task")

	if err.Type != ErrorTypeNotAuthenticated {
		t.Errorf("NewNotAuthenticatedError type = %v, want %v", err.Type, ErrorTypeNotAuthenticated)
	}
	if err.Code != "NOT_AUTHENTICATED" {
		t.Errorf("NewNotAuthenticatedError code = %v, want %v", err.Code, "NOT_AUTHENTICATED")
	}
	operation, ok := err.GetContext("operation")
	if !ok || operation != "add task" {
		t.Errorf("NewNotAuthenticatedError should set operation context")
	}
}

func TestNewGatewayError(t *testing.T) {
	cause := errors.New("connection reset")
	err := NewGatewayError("insert task", cause)

	if err.Type != ErrorTypeGateway {
		t.Errorf("NewGatewayError type = %v, want %v", err.Type, ErrorTypeGateway)
	}
	if err.Message != "gateway operation failed: insert task" {
		t.Errorf("NewGatewayError message = %v, want %v", err.Message, "gateway operation failed: insert task")
	}
	if err.Code != "GATEWAY_ERROR" {
		t.Errorf("NewGatewayError code = %v, want %v", err.Code, "GATEWAY_ERROR")
	}
	if !errors.Is(err, cause) {
		t.Errorf("NewGatewayError should unwrap to its cause")
	}
}

func TestNewInvalidInputError(t *testing.T) {
	err := NewInvalidInputError("format", "xml", "unsupported format")

	if err.Type != ErrorTypeInvalidInput {
		t.Errorf("NewInvalidInputError type = %v, want %v", err.Type, ErrorTypeInvalidInput)
	}
	if err.Message != "invalid input for format: unsupported format" {
		t.Errorf("NewInvalidInputError message = %v, want %v", err.Message, "invalid input for format: unsupported format")
	}

	value, ok := err.GetContext("value")
	if !ok || value != "xml" {
		t.Errorf("NewInvalidInputError should set value context")
	}
}

func TestNewTimeoutError(t *testing.T) {
	err := NewTimeoutError("list tasks", "10s")

	if err.Type != ErrorTypeTimeout {
		t.Errorf("NewTimeoutError type = %v, want %v", err.Type, ErrorTypeTimeout)
	}
	if err.Code != "TIMEOUT" {
		t.Errorf("NewTimeoutError code = %v, want %v", err.Code, "TIMEOUT")
	}
	timeout, ok := err.GetContext("timeout")
	if !ok || timeout != "10s" {
		t.Errorf("NewTimeoutError should set timeout context")
	}
}

func TestNewConflictIgnoredError(t *testing.T) {
	err := NewConflictIgnoredError("tasks", "t-1")

	if err.Type != ErrorTypeConflictIgnored {
		t.Errorf("NewConflictIgnoredError type = %v, want %v", err.Type, ErrorTypeConflictIgnored)
	}
	if err.Message != "tasks t-1 is not present locally" {
		t.Errorf("NewConflictIgnoredError message = %v", err.Message)
	}
}

func TestIsAppError(t *testing.T) {
	appError := &AppError{Type: ErrorTypeValidation}
	regularError := errors.New("regular error")

	if !IsAppError(appError) {
		t.Errorf("IsAppError should return true for AppError")
	}
	if IsAppError(regularError) {
		t.Errorf("IsAppError should return false for regular error")
	}
	if IsAppError(nil) {
		t.Errorf("IsAppError should return false for nil")
	}
}

func TestAsAppError(t *testing.T) {
	appError := &AppError{Type: ErrorTypeValidation}

	result, ok := AsAppError(appError)
	if !ok || result != appError {
		t.Errorf("AsAppError should return the same AppError instance")
	}

	result, ok = AsAppError(errors.New("regular error"))
	if ok || result != nil {
		t.Errorf("AsAppError should return nil, false for regular error")
	}
}

func TestIsErrorType(t *testing.T) {
	appError := &AppError{Type: ErrorTypeValidation}

	if !IsErrorType(appError, ErrorTypeValidation) {
		t.Errorf("IsErrorType should return true for matching type")
	}
	if IsErrorType(appError, ErrorTypeGateway) {
		t.Errorf("IsErrorType should return false for different type")
	}
	if IsErrorType(errors.New("regular error"), ErrorTypeValidation) {
		t.Errorf("IsErrorType should return false for regular error")
	}
}

func TestGetUserMessage(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{
			name:     "Validation error",
			err:      NewValidationError("invalid input", nil),
			expected: "invalid input",
		},
		{
			name:     "Validation error with cause",
			err:      NewValidationError("invalid task title", errors.New("title is required")),
			expected: "invalid task title: title is required",
		},
		{
			name:     "Not found error",
			err:      NewNotFoundError("project", "p-9"),
			expected: "project not found: p-9",
		},
		{
			name:     "Not authenticated error",
			err:      NewNotAuthenticatedError("add task"),
			expected: "You are not signed in. Set UT_USER or pass --user.",
		},
		{
			name:     "Gateway error",
			err:      NewGatewayError("insert", errors.New("timeout")),
			expected: "The task store could not be reached. Please try again.",
		},
		{
			name:     "Timeout error",
			err:      NewTimeoutError("query", "5s"),
			expected: "The operation timed out. Please try again.",
		},
		{
			name:     "Regular error",
			err:      errors.New("regular error"),
			expected: "regular error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := GetUserMessage(tt.err)
			if result != tt.expected {
				t.Errorf("GetUserMessage() = %v, want %v", result, tt.expected)
			}
		})
	}
}

func TestGetErrorCode(t *testing.T) {
	if GetErrorCode(&AppError{Code: "VALIDATION_FAILED"}) != "VALIDATION_FAILED" {
		t.Errorf("GetErrorCode should return correct code for AppError")
	}
	if GetErrorCode(errors.New("regular error")) != "UNKNOWN_ERROR" {
		t.Errorf("GetErrorCode should return UNKNOWN_ERROR for regular error")
	}
}

func TestShouldLogError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"Validation error", NewValidationError("invalid input", nil), false},
		{"Not found error", NewNotFoundError("task", "1"), false},
		{"Invalid input error", NewInvalidInputError("format", "x", "unknown"), false},
		{"Not authenticated error", NewNotAuthenticatedError("load"), false},
		{"Conflict ignored error", NewConflictIgnoredError("tasks", "1"), false},
		{"Gateway error", NewGatewayError("query", errors.New("timeout")), true},
		{"Timeout error", NewTimeoutError("query", "5s"), true},
		{"Regular error", errors.New("regular error"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ShouldLogError(tt.err)
			if result != tt.expected {
				t.Errorf("ShouldLogError() = %v, want %v", result, tt.expected)
			}
		})
	}
}
