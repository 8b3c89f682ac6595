package validation

import (
	"testing"
	"time"

	"uptask/internal/config"
)

func TestValidator_IsNonEmptyString(t *testing.T) {
	validator := NewValidator()

	tests := []struct {
		name     string
		input    string
		expected bool
	}{
		{"Empty string", "", false},
		{"Whitespace only", "   ", false},
		{"Tab and newline", "\t\n", false},
		{"Valid string", "hello", true},
		{"String with spaces", "hello world", true},
		{"String with leading/trailing spaces", "  hello  ", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := validator.IsNonEmptyString(tt.input)
			if result != tt.expected {
				t.Errorf("IsNonEmptyString(%q) = %v, expected %v", tt.input, result, tt.expected)
			}
		})
	}
}

func TestValidator_IsValidStringLength(t *testing.T) {
	validator := NewValidator()

	tests := []struct {
		name     string
		input    string
		min      int
		max      int
		expected bool
	}{
		{"Empty string, min 1", "", 1, 10, false},
		{"Too short", "a", 2, 10, false},
		{"Too long", "very long string", 1, 5, false},
		{"Valid length", "hello", 1, 10, true},
		{"Exactly max", "hello", 1, 5, true},
		{"With leading/trailing spaces", "  hello  ", 1, 5, true},
		{"Multibyte runes count once", "häuser", 1, 6, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := validator.IsValidStringLength(tt.input, tt.min, tt.max)
			if result != tt.expected {
				t.Errorf("IsValidStringLength(%q, %d, %d) = %v, expected %v", tt.input, tt.min, tt.max, result, tt.expected)
			}
		})
	}
}

func TestValidator_HasControlCharacters(t *testing.T) {
	validator := NewValidator()

	tests := []struct {
		input    string
		expected bool
	}{
		{"plain title", false},
		{"emoji ok 🚀", false},
		{"line\nbreak", true},
		{"tab\there", true},
		{"bell\a", true},
	}

	for _, tt := range tests {
		if got := validator.HasControlCharacters(tt.input); got != tt.expected {
			t.Errorf("HasControlCharacters(%q) = %v, expected %v", tt.input, got, tt.expected)
		}
	}
}

func TestValidator_IsValidID(t *testing.T) {
	validator := NewValidator()

	tests := []struct {
		input    string
		expected bool
	}{
		{"6f1c2d4e-0000-4000-8000-000000000001", true},
		{"p1", true},
		{"", false},
		{"   ", false},
		{"id\n", false},
	}

	for _, tt := range tests {
		if got := validator.IsValidID(tt.input); got != tt.expected {
			t.Errorf("IsValidID(%q) = %v, expected %v", tt.input, got, tt.expected)
		}
	}
}

func TestValidator_ParseDueDate(t *testing.T) {
	validator := NewValidator()

	got, ok := validator.ParseDueDate(" 2024-03-20 ")
	if !ok {
		t.Fatal("ParseDueDate() rejected a valid date")
	}
	if want := time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC); !got.Equal(want) {
		t.Errorf("ParseDueDate() = %v, expected %v", got, want)
	}

	for _, bad := range []string{"", "2024-13-01", "20/03/2024", "tomorrow"} {
		if _, ok := validator.ParseDueDate(bad); ok {
			t.Errorf("ParseDueDate(%q) accepted an invalid date", bad)
		}
	}
}

func TestValidator_ConfiguredLimits(t *testing.T) {
	cfg := config.NewConfig()
	cfg.Validation.TitleMaxLength = 10
	cfg.Validation.NameMaxLength = 3

	validator := NewValidatorWithConfig(cfg)
	if got := validator.getTitleMaxLength(); got != 10 {
		t.Errorf("getTitleMaxLength() = %d, expected 10", got)
	}
	if got := validator.getNameMaxLength(); got != 3 {
		t.Errorf("getNameMaxLength() = %d, expected 3", got)
	}

	defaults := NewValidator()
	if got := defaults.getTitleMaxLength(); got != 500 {
		t.Errorf("default getTitleMaxLength() = %d, expected 500", got)
	}
	if got := defaults.getNameMaxLength(); got != 100 {
		t.Errorf("default getNameMaxLength() = %d, expected 100", got)
	}
}

func TestValidator_TrimAndValidateString(t *testing.T) {
	validator := NewValidator()

	tests := []struct {
		input    string
		expected string
	}{
		{"  hello  ", "hello"},
		{"\tworld\n", "world"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := validator.TrimAndValidateString(tt.input); got != tt.expected {
			t.Errorf("TrimAndValidateString(%q) = %q, expected %q", tt.input, got, tt.expected)
		}
	}
}
