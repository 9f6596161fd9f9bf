package errorutil

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
)

// ValidationError represents a validation error with field context
type ValidationError struct {
	Field       string      // The field that failed validation
	Value       interface{} // The value that was being validated
	Rule        string      // The validation rule that failed
	Message     string      // Human-readable error message
	Suggestions []string    // Suggested corrections
}

func (e *ValidationError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("validation failed for field '%s': %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed for field '%s' with rule '%s'", e.Field, e.Rule)
}

// ValidationErrors represents multiple validation errors
type ValidationErrors struct {
	Errors []ValidationError
}

func (e *ValidationErrors) Error() string {
	if len(e.Errors) == 0 {
		return "validation failed"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	return fmt.Sprintf("validation failed with %d errors: %s", len(e.Errors), e.Errors[0].Error())
}

// Add adds a validation error to the collection
func (e *ValidationErrors) Add(field, rule, message string, value interface{}, suggestions ...string) {
	e.Errors = append(e.Errors, ValidationError{
		Field:       field,
		Value:       value,
		Rule:        rule,
		Message:     message,
		Suggestions: suggestions,
	})
}

// HasErrors returns true if there are validation errors
func (e *ValidationErrors) HasErrors() bool {
	return len(e.Errors) > 0
}

// LogValidationErrors logs validation errors with structured context
func LogValidationErrors(logger *slog.Logger, valErr *ValidationErrors) *ValidationErrors {
	if logger == nil || !valErr.HasErrors() {
		return valErr
	}

	for _, err := range valErr.Errors {
		attrs := []slog.Attr{
			slog.String("field", err.Field),
			slog.String("rule", err.Rule),
			slog.String("message", err.Message),
			slog.Any("value", err.Value),
		}

		if len(err.Suggestions) > 0 {
			attrs = append(attrs, slog.Any("suggestions", err.Suggestions))
		}

		anyAttrs := make([]any, len(attrs))
		for i, attr := range attrs {
			anyAttrs[i] = attr
		}

		logger.Warn("Validation error", anyAttrs...)
	}

	return valErr
}

// ValidateRequired checks if a field has a non-empty value
func ValidateRequired(field string, value string) *ValidationError {
	if strings.TrimSpace(value) == "" {
		return &ValidationError{
			Field:   field,
			Value:   value,
			Rule:    "required",
			Message: "field is required and cannot be empty",
		}
	}
	return nil
}

// ValidateCoordinate checks if a coordinate is within valid range
func ValidateCoordinate(field string, value float64, isLatitude bool) *ValidationError {
	var min, max float64
	var coordType string

	if isLatitude {
		min, max = -90.0, 90.0
		coordType = "latitude"
	} else {
		min, max = -180.0, 180.0
		coordType = "longitude"
	}

	// NaN fails every comparison, so check the inverse
	if !(value >= min && value <= max) {
		return &ValidationError{
			Field:   field,
			Value:   value,
			Rule:    "coordinate",
			Message: fmt.Sprintf("%s must be between %.1f and %.1f, got %.6f", coordType, min, max, value),
			Suggestions: []string{
				fmt.Sprintf("Valid %s range is %.1f to %.1f", coordType, min, max),
				"Check coordinate format (decimal degrees)",
			},
		}
	}

	return nil
}

// ValidateFilePath checks if a file path is valid and accessible
func ValidateFilePath(field string, path string, mustExist bool) *ValidationError {
	if strings.TrimSpace(path) == "" {
		return ValidateRequired(field, path)
	}

	// Check for invalid characters in path
	invalidChars := []string{"\x00", "\x01", "\x02", "\x03", "\x04", "\x05", "\x06", "\x07"}
	for _, char := range invalidChars {
		if strings.Contains(path, char) {
			return &ValidationError{
				Field:   field,
				Value:   path,
				Rule:    "filepath",
				Message: "path contains invalid characters",
				Suggestions: []string{
					"Remove control characters from path",
					"Use only standard ASCII characters in paths",
				},
			}
		}
	}

	if mustExist {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return &ValidationError{
				Field:   field,
				Value:   path,
				Rule:    "file_exists",
				Message: "file or directory does not exist",
				Suggestions: []string{
					"Check that the path is correct",
					"Verify you have permission to access the path",
				},
			}
		}
	}

	return nil
}
