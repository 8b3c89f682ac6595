package validation

import (
	"uptask/internal/config"
	"uptask/internal/domain"
)

// ProjectValidator provides validation for Project-related operations
type ProjectValidator struct {
	validator *Validator
}

// NewProjectValidator creates a new project validator
func NewProjectValidator() *ProjectValidator {
	return &ProjectValidator{validator: NewValidator()}
}

// NewProjectValidatorWithConfig creates a project validator honoring configured limits
func NewProjectValidatorWithConfig(cfg *config.Config) *ProjectValidator {
	return &ProjectValidator{validator: NewValidatorWithConfig(cfg)}
}

// ValidateName validates a project name
func (pv *ProjectValidator) ValidateName(name string) error {
	validationError := NewValidationError()

	trimmed := pv.validator.TrimAndValidateString(name)
	if !pv.validator.IsNonEmptyString(trimmed) {
		validationError.AddRequiredError("name")
		return validationError
	}

	maxLen := pv.validator.getNameMaxLength()
	if !pv.validator.IsValidStringLength(trimmed, 1, maxLen) {
		validationError.AddTooLongError("name", trimmed, maxLen)
	}
	if pv.validator.HasControlCharacters(trimmed) {
		validationError.AddInvalidCharacterError("name", trimmed)
	}

	if validationError.HasErrors() {
		return validationError
	}
	return nil
}

// GetValidName returns a cleaned project name if valid
func (pv *ProjectValidator) GetValidName(name string) (string, error) {
	if err := pv.ValidateName(name); err != nil {
		return "", err
	}
	return pv.validator.TrimAndValidateString(name), nil
}

// ValidateProjectID validates a project ID
func (pv *ProjectValidator) ValidateProjectID(id string) error {
	if !pv.validator.IsValidID(id) {
		validationError := NewValidationError()
		validationError.AddInvalidIDError("project_id", id)
		return validationError
	}
	return nil
}

// ValidatePatch validates the fields a project patch sets. Icons are never rejected; unknown
// symbols are normalized by the domain layer.
func (pv *ProjectValidator) ValidatePatch(patch domain.ProjectPatch) error {
	if patch.IsEmpty() {
		validationError := NewValidationError()
		validationError.AddNoChangesError()
		return validationError
	}
	if patch.Name != nil {
		return pv.ValidateName(*patch.Name)
	}
	return nil
}
