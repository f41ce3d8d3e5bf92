package errors

import (
	"slices"
	"strings"
	"unicode"
)

// Operations accepted by the pipeline and the HTTP API.
var Operations = []string{"convert", "minimize"}

// Formats accepted for definition files.
var Formats = []string{"json", "yaml", "toml"}

// ValidateOperation checks that op names a supported pipeline operation.
func ValidateOperation(op string) error {
	if op == "" {
		return New(ErrCodeInvalidOperation, "operation cannot be empty")
	}
	if !slices.Contains(Operations, op) {
		return New(ErrCodeInvalidOperation, "unknown operation %q (want one of %s)", op, strings.Join(Operations, ", "))
	}
	return nil
}

// ValidateFormat checks that format names a supported definition format.
// Matching is case-insensitive; "yml" is accepted as "yaml".
func ValidateFormat(format string) error {
	f := strings.ToLower(format)
	if f == "yml" {
		f = "yaml"
	}
	if !slices.Contains(Formats, f) {
		return New(ErrCodeInvalidFormat, "unsupported format %q (want one of %s)", format, strings.Join(Formats, ", "))
	}
	return nil
}

// ValidateLimit checks that actual does not exceed limit. A non-positive
// limit disables the check.
func ValidateLimit(what string, actual, limit int) error {
	if limit <= 0 || actual <= limit {
		return nil
	}
	return Wrap(ErrCodeTooLarge, &LimitError{What: what, Limit: limit, Actual: actual},
		"input too large")
}

// ValidatePath validates a user-supplied file path for safety.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 4096 characters
//   - No null bytes or control characters
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 4096
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	return nil
}
