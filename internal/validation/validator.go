package validation

import (
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"uptask/internal/config"
)

// DueDateLayout is the layout accepted for due dates typed by users.
const DueDateLayout = "2006-01-02"

// Validator provides common validation utilities
type Validator struct {
	config *config.Config
}

// NewValidator creates a new validator instance
func NewValidator() *Validator {
	return &Validator{
		config: nil, // Use defaults
	}
}

// NewValidatorWithConfig creates a new validator instance with configuration
func NewValidatorWithConfig(cfg *config.Config) *Validator {
	return &Validator{
		config: cfg,
	}
}

// IsNonEmptyString checks if a string is not empty after trimming whitespace
func (v *Validator) IsNonEmptyString(s string) bool {
	return strings.TrimSpace(s) != ""
}

// IsValidStringLength checks if a trimmed string's rune count is within the specified range
func (v *Validator) IsValidStringLength(s string, min, max int) bool {
	length := utf8.RuneCountInString(strings.TrimSpace(s))
	return length >= min && length <= max
}

// HasControlCharacters reports whether s contains newlines, tabs or other control runes
func (v *Validator) HasControlCharacters(s string) bool {
	return strings.IndexFunc(s, unicode.IsControl) >= 0
}

// IsValidID checks if an entity identifier is usable
func (v *Validator) IsValidID(id string) bool {
	return strings.TrimSpace(id) != "" && !v.HasControlCharacters(id)
}

// ParseDueDate parses a YYYY-MM-DD date
func (v *Validator) ParseDueDate(s string) (time.Time, bool) {
	t, err := time.Parse(DueDateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// TrimAndValidateString trims whitespace and returns the cleaned string
func (v *Validator) TrimAndValidateString(s string) string {
	return strings.TrimSpace(s)
}

// getTitleMaxLength returns configured maximum task title length or default
func (v *Validator) getTitleMaxLength() int {
	if v.config != nil {
		return v.config.Validation.TitleMaxLength
	}
	return 500 // Default maximum
}

// getNameMaxLength returns configured maximum project name length or default
func (v *Validator) getNameMaxLength() int {
	if v.config != nil {
		return v.config.Validation.NameMaxLength
	}
	return 100 // Default maximum
}
