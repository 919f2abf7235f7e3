package errors

import (
	"strings"
	"unicode"
)

// ValidateOutputPath validates a file path supplied for program or report
// output. It rejects paths that could escape the working directory or
// contain characters the NC controller's file transfer chokes on.
func ValidateOutputPath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "output path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "output path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "output path contains invalid characters")
		}
	}

	return nil
}

// ValidateUnitName validates a length-unit name before registry lookup.
// The registry itself decides whether the unit is recognized; this only
// rejects obviously malformed input so error messages stay readable.
func ValidateUnitName(unit string) error {
	if unit == "" {
		return New(ErrCodeUnitMismatch, "length unit cannot be empty")
	}
	if len(unit) > 8 || strings.ContainsAny(unit, " \t\n") {
		return New(ErrCodeUnitMismatch, "malformed length unit %q", unit)
	}
	return nil
}
