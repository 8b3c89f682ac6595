package cli

import (
	stderrors "errors"
	"fmt"

	"uptask/internal/errors"
	"uptask/internal/logging"
	"uptask/internal/validation"
)

// Process exit codes by error kind.
const (
	ExitOK               = 0
	ExitFailure          = 1
	ExitUsage            = 2
	ExitNotAuthenticated = 3
	ExitNotFound         = 4
	ExitUnavailable      = 5
)

// commandError carries the user-facing text while keeping the cause for exit codes.
type commandError struct {
	message string
	cause   error
}

func (e *commandError) Error() string { return e.message }

func (e *commandError) Unwrap() error { return e.cause }

// ErrorHandler provides centralized error handling for command handlers
type ErrorHandler struct{}

// NewErrorHandler creates a new error handler
func NewErrorHandler() *ErrorHandler {
	return &ErrorHandler{}
}

// Handle provides user-friendly error messages for validation and other errors
func (eh *ErrorHandler) Handle(operation string, err error) error {
	if err == nil {
		return nil
	}
	if errors.ShouldLogError(err) {
		logging.Debugf("%s: %v", operation, err)
	}
	return &commandError{
		message: fmt.Sprintf("failed to %s: %s", operation, eh.message(err)),
		cause:   err,
	}
}

// HandleSimple provides user-friendly error messages without operation context
func (eh *ErrorHandler) HandleSimple(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := errors.AsAppError(err); !ok && !validation.IsValidationError(err) {
		return err
	}
	return &commandError{message: eh.message(err), cause: err}
}

// message prefers the field-level text of a wrapped validation error.
func (eh *ErrorHandler) message(err error) string {
	var ve *validation.ValidationError
	if stderrors.As(err, &ve) {
		if appErr, ok := errors.AsAppError(err); ok && appErr.Cause != nil {
			return fmt.Sprintf("%s: %s", appErr.Message, ve.GetUserFriendlyMessage())
		}
		return ve.GetUserFriendlyMessage()
	}
	if _, ok := errors.AsAppError(err); ok {
		return errors.GetUserMessage(err)
	}
	return err.Error()
}

// IsValidationError checks if an error is a validation error
func (eh *ErrorHandler) IsValidationError(err error) bool {
	if validation.IsValidationError(err) {
		return true
	}
	return errors.IsErrorType(err, errors.ErrorTypeValidation)
}

// IsNotFoundError checks if an error is a not found error
func (eh *ErrorHandler) IsNotFoundError(err error) bool {
	return errors.IsErrorType(err, errors.ErrorTypeNotFound)
}

// IsGatewayError checks if an error came from the persistence gateway
func (eh *ErrorHandler) IsGatewayError(err error) bool {
	appErr, ok := errors.AsAppError(err)
	return ok && appErr.Type.Retryable()
}

// GetErrorCode returns the error code for structured errors
func (eh *ErrorHandler) GetErrorCode(err error) string {
	return errors.GetErrorCode(err)
}

// ExitCode maps an error to the process exit status.
func (eh *ErrorHandler) ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.IsErrorType(err, errors.ErrorTypeNotAuthenticated):
		return ExitNotAuthenticated
	case errors.IsErrorType(err, errors.ErrorTypeNotFound):
		return ExitNotFound
	case eh.IsGatewayError(err):
		return ExitUnavailable
	case eh.IsValidationError(err), errors.IsErrorType(err, errors.ErrorTypeInvalidInput):
		return ExitUsage
	default:
		return ExitFailure
	}
}
