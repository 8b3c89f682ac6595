package validation

import (
	"strings"
	"testing"
	"time"

	"uptask/internal/config"
	"uptask/internal/domain"
)

func TestTaskValidator_ValidateTitle(t *testing.T) {
	validator := NewTaskValidator()

	tests := []struct {
		name        string
		input       string
		expectError bool
		errorType   ValidationErrorType
	}{
		{"Valid title", "Buy milk", false, ""},
		{"Empty title", "", true, ErrorTypeRequired},
		{"Whitespace only", "   ", true, ErrorTypeRequired},
		{"Too long title", strings.Repeat("a", 501), true, ErrorTypeTooLong},
		{"Valid long title", strings.Repeat("a", 500), false, ""},
		{"Embedded newline", "first\nsecond", true, ErrorTypeInvalidCharacter},
		{"Punctuation and unicode", "Call Zoë @ 5pm (re: #42)!", false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validator.ValidateTitle(tt.input)

			if tt.expectError {
				if err == nil {
					t.Errorf("ValidateTitle(%q) expected error but got nil", tt.input)
					return
				}

				validationErr, ok := err.(*ValidationError)
				if !ok {
					t.Errorf("ValidateTitle(%q) expected ValidationError but got %T", tt.input, err)
					return
				}

				if validationErr.Errors[0].Type != tt.errorType {
					t.Errorf("ValidateTitle(%q) expected error type %v but got %v", tt.input, tt.errorType, validationErr.Errors[0].Type)
				}
			} else if err != nil {
				t.Errorf("ValidateTitle(%q) expected no error but got %v", tt.input, err)
			}
		})
	}
}

func TestTaskValidator_ConfiguredTitleLimit(t *testing.T) {
	cfg := config.NewConfig()
	cfg.Validation.TitleMaxLength = 5
	validator := NewTaskValidatorWithConfig(cfg)

	if err := validator.ValidateTitle("short"); err != nil {
		t.Errorf("ValidateTitle() at limit returned %v", err)
	}
	if err := validator.ValidateTitle("longer"); err == nil {
		t.Error("ValidateTitle() over limit expected error")
	}
}

func TestTaskValidator_GetValidTitle(t *testing.T) {
	validator := NewTaskValidator()

	got, err := validator.GetValidTitle("  Write report  ")
	if err != nil {
		t.Fatalf("GetValidTitle() error = %v", err)
	}
	if got != "Write report" {
		t.Errorf("GetValidTitle() = %q, expected %q", got, "Write report")
	}

	if _, err := validator.GetValidTitle("   "); err == nil {
		t.Error("GetValidTitle() expected error for blank title")
	}
}

func TestTaskValidator_ValidateTaskIDs(t *testing.T) {
	validator := NewTaskValidator()

	if err := validator.ValidateTaskID("t1"); err != nil {
		t.Errorf("ValidateTaskID(t1) error = %v", err)
	}
	if err := validator.ValidateTaskID(""); err == nil {
		t.Error("ValidateTaskID(\"\") expected error")
	}
	if err := validator.ValidateTaskIDs(nil); err != nil {
		t.Errorf("ValidateTaskIDs(nil) error = %v", err)
	}

	err := validator.ValidateTaskIDs([]string{"t1", "", " "})
	if err == nil {
		t.Fatal("ValidateTaskIDs() expected error")
	}
	if got := len(err.(*ValidationError).GetFieldErrors("task_ids")); got != 2 {
		t.Errorf("ValidateTaskIDs() reported %d errors, expected 2", got)
	}
}

func TestTaskValidator_ValidatePatch(t *testing.T) {
	validator := NewTaskValidator()
	blank := "  "
	title := "Renamed"
	emptyProject := ""
	due := time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC)
	done := true

	tests := []struct {
		name        string
		patch       domain.TaskPatch
		expectError bool
		field       string
	}{
		{"Empty patch", domain.TaskPatch{}, true, "patch"},
		{"Valid title", domain.TaskPatch{Title: &title}, false, ""},
		{"Blank title", domain.TaskPatch{Title: &blank}, true, "title"},
		{"Completion only", domain.TaskPatch{Completed: &done}, false, ""},
		{"Empty project", domain.TaskPatch{ProjectID: &emptyProject}, true, "project_id"},
		{"Set and clear due date", domain.TaskPatch{DueDate: &due, ClearDueDate: true}, true, "due_date"},
		{"Clear due date", domain.TaskPatch{ClearDueDate: true}, false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validator.ValidatePatch(tt.patch)
			if !tt.expectError {
				if err != nil {
					t.Errorf("ValidatePatch() error = %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("ValidatePatch() expected error")
			}
			if len(err.(*ValidationError).GetFieldErrors(tt.field)) == 0 {
				t.Errorf("ValidatePatch() = %v, expected error on field %s", err, tt.field)
			}
		})
	}
}

func TestTaskValidator_ParseDueDate(t *testing.T) {
	validator := NewTaskValidator()

	got, err := validator.ParseDueDate("2024-03-20")
	if err != nil {
		t.Fatalf("ParseDueDate() error = %v", err)
	}
	if got.Day() != 20 || got.Month() != time.March {
		t.Errorf("ParseDueDate() = %v", got)
	}

	_, err = validator.ParseDueDate("next week")
	if err == nil {
		t.Fatal("ParseDueDate() expected error")
	}
	if err.(*ValidationError).Errors[0].Type != ErrorTypeInvalidFormat {
		t.Errorf("ParseDueDate() error type = %v, expected %v", err.(*ValidationError).Errors[0].Type, ErrorTypeInvalidFormat)
	}
}
