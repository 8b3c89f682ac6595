package validation

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// ValidationErrorType names the rule a field broke
type ValidationErrorType string

const (
	ErrorTypeRequired         ValidationErrorType = "required"
	ErrorTypeTooLong          ValidationErrorType = "too_long"
	ErrorTypeInvalidCharacter ValidationErrorType = "invalid_character"
	ErrorTypeInvalidFormat    ValidationErrorType = "invalid_format"
	ErrorTypeInvalidID        ValidationErrorType = "invalid_id"
	ErrorTypeNoChanges        ValidationErrorType = "no_changes"
	ErrorTypeConflict         ValidationErrorType = "conflict"
)

// FieldError is one broken rule on a task or project field
type FieldError struct {
	Field   string
	Type    ValidationErrorType
	Message string
	Value   interface{}
}

func (fe *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", fe.Field, fe.Message)
}

// ValidationError collects every rule an input broke, in the order checked
type ValidationError struct {
	Errors []FieldError
}

func (ve *ValidationError) Error() string {
	switch len(ve.Errors) {
	case 0:
		return "invalid input"
	case 1:
		return ve.Errors[0].Error()
	}
	parts := make([]string, 0, len(ve.Errors))
	for i := range ve.Errors {
		parts = append(parts, ve.Errors[i].Error())
	}
	return strings.Join(parts, "; ")
}

// IsValidationError checks if an error is, or wraps, a ValidationError
func IsValidationError(err error) bool {
	var ve *ValidationError
	return stderrors.As(err, &ve)
}

// NewValidationError creates an empty ValidationError
func NewValidationError() *ValidationError {
	return &ValidationError{Errors: make([]FieldError, 0)}
}

// HasErrors reports whether any rule was broken
func (ve *ValidationError) HasErrors() bool {
	return len(ve.Errors) > 0
}

// Merge appends the field errors of err when it is a ValidationError.
func (ve *ValidationError) Merge(err error) {
	var other *ValidationError
	if stderrors.As(err, &other) {
		ve.Errors = append(ve.Errors, other.Errors...)
	}
}

// AddError records a broken rule
func (ve *ValidationError) AddError(field string, errorType ValidationErrorType, message string, value interface{}) {
	ve.Errors = append(ve.Errors, FieldError{
		Field:   field,
		Type:    errorType,
		Message: message,
		Value:   value,
	})
}

// AddRequiredError records a blank title or name
func (ve *ValidationError) AddRequiredError(field string) {
	ve.AddError(field, ErrorTypeRequired, fmt.Sprintf("%s is required", field), nil)
}

// AddTooLongError records a value longer than max characters
func (ve *ValidationError) AddTooLongError(field string, value string, max int) {
	ve.AddError(field, ErrorTypeTooLong, fmt.Sprintf("%s must be at most %d characters long", field, max), value)
}

// AddInvalidCharacterError records control characters such as newlines in a single-line field
func (ve *ValidationError) AddInvalidCharacterError(field string, value string) {
	ve.AddError(field, ErrorTypeInvalidCharacter, fmt.Sprintf("%s must be a single line of text", field), value)
}

// AddInvalidDateError records a due date that does not parse, with an example that would
func (ve *ValidationError) AddInvalidDateError(field string, value string, example string) {
	ve.AddError(field, ErrorTypeInvalidFormat, fmt.Sprintf("%s %q is not a date like %s", field, value, example), value)
}

// AddInvalidIDError records a blank or malformed task or project id
func (ve *ValidationError) AddInvalidIDError(field string, id string) {
	ve.AddError(field, ErrorTypeInvalidID, fmt.Sprintf("%s must be a non-empty identifier", field), id)
}

// AddNoChangesError records an update that sets no field
func (ve *ValidationError) AddNoChangesError() {
	ve.AddError("patch", ErrorTypeNoChanges, "nothing to change", nil)
}

// AddConflictError records two fields that cannot be set together
func (ve *ValidationError) AddConflictError(field string, reason string) {
	ve.AddError(field, ErrorTypeConflict, reason, nil)
}

// GetFieldErrors returns all errors for a specific field
func (ve *ValidationError) GetFieldErrors(field string) []FieldError {
	var fieldErrors []FieldError
	for _, err := range ve.Errors {
		if err.Field == field {
			fieldErrors = append(fieldErrors, err)
		}
	}
	return fieldErrors
}

// GetUserFriendlyMessage joins the messages of every broken rule
func (ve *ValidationError) GetUserFriendlyMessage() string {
	if len(ve.Errors) == 0 {
		return "invalid input"
	}
	messages := make([]string, 0, len(ve.Errors))
	for _, err := range ve.Errors {
		messages = append(messages, err.Message)
	}
	return strings.Join(messages, "; ")
}
