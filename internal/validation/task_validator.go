package validation

import (
	"time"

	"uptask/internal/config"
	"uptask/internal/domain"
)

// TaskValidator provides validation for Task-related operations
type TaskValidator struct {
	validator *Validator
}

// NewTaskValidator creates a new task validator
func NewTaskValidator() *TaskValidator {
	return &TaskValidator{
		validator: NewValidator(),
	}
}

// NewTaskValidatorWithConfig creates a task validator honoring configured limits
func NewTaskValidatorWithConfig(cfg *config.Config) *TaskValidator {
	return &TaskValidator{
		validator: NewValidatorWithConfig(cfg),
	}
}

// ValidateTitle validates a task title for creation or update
func (tv *TaskValidator) ValidateTitle(title string) error {
	validationError := NewValidationError()

	trimmed := tv.validator.TrimAndValidateString(title)
	if !tv.validator.IsNonEmptyString(trimmed) {
		validationError.AddRequiredError("title")
		return validationError
	}

	maxLen := tv.validator.getTitleMaxLength()
	if !tv.validator.IsValidStringLength(trimmed, 1, maxLen) {
		validationError.AddTooLongError("title", trimmed, maxLen)
	}

	if tv.validator.HasControlCharacters(trimmed) {
		validationError.AddInvalidCharacterError("title", trimmed)
	}

	if validationError.HasErrors() {
		return validationError
	}
	return nil
}

// GetValidTitle returns a cleaned task title if valid
func (tv *TaskValidator) GetValidTitle(title string) (string, error) {
	if err := tv.ValidateTitle(title); err != nil {
		return "", err
	}
	return tv.validator.TrimAndValidateString(title), nil
}

// ValidateTaskID validates a task ID
func (tv *TaskValidator) ValidateTaskID(id string) error {
	if !tv.validator.IsValidID(id) {
		validationError := NewValidationError()
		validationError.AddInvalidIDError("task_id", id)
		return validationError
	}
	return nil
}

// ValidateTaskIDs validates a batch of task IDs. An empty batch is valid.
func (tv *TaskValidator) ValidateTaskIDs(ids []string) error {
	validationError := NewValidationError()
	for _, id := range ids {
		if !tv.validator.IsValidID(id) {
			validationError.AddInvalidIDError("task_ids", id)
		}
	}
	if validationError.HasErrors() {
		return validationError
	}
	return nil
}

// ValidatePatch validates the fields a task patch sets
func (tv *TaskValidator) ValidatePatch(patch domain.TaskPatch) error {
	validationError := NewValidationError()

	if patch.IsEmpty() {
		validationError.AddNoChangesError()
		return validationError
	}

	if patch.Title != nil {
		validationError.Merge(tv.ValidateTitle(*patch.Title))
	}

	if patch.ProjectID != nil && !tv.validator.IsValidID(*patch.ProjectID) {
		validationError.AddInvalidIDError("project_id", *patch.ProjectID)
	}

	if patch.ClearDueDate && patch.DueDate != nil {
		validationError.AddConflictError("due_date", "cannot set and clear the due date together")
	}

	if validationError.HasErrors() {
		return validationError
	}
	return nil
}

// ParseDueDate validates and parses a YYYY-MM-DD due date
func (tv *TaskValidator) ParseDueDate(s string) (time.Time, error) {
	d, ok := tv.validator.ParseDueDate(s)
	if !ok {
		validationError := NewValidationError()
		validationError.AddInvalidDateError("due_date", s, "2024-03-15")
		return time.Time{}, validationError
	}
	return d, nil
}
