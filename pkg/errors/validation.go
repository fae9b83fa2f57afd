package errors

import (
	"strings"
	"unicode"
)

// MaxIdentifierLength bounds class ids and member names.
const MaxIdentifierLength = 256

// ValidateClassID validates a class identifier for safety and correctness.
//
// The validation rules are intentionally conservative:
//   - No empty ids
//   - No control characters or null bytes
//   - No leading or trailing whitespace
//   - Maximum length of 256 characters
//
// Anything else (dots for qualified names, generics brackets, unicode) is
// accepted; the engine treats ids as opaque.
func ValidateClassID(id string) error {
	return validateIdentifier("class id", id)
}

// ValidateMemberName validates a member name with the same rules as
// [ValidateClassID].
func ValidateMemberName(name string) error {
	return validateIdentifier("member name", name)
}

func validateIdentifier(kind, s string) error {
	if s == "" {
		return New(ErrCodeInvalidInput, "%s cannot be empty", kind)
	}

	if len(s) > MaxIdentifierLength {
		return New(ErrCodeInvalidInput, "%s too long (max %d characters)", kind, MaxIdentifierLength)
	}

	for _, r := range s {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "%s contains invalid control characters", kind)
		}
	}

	if strings.TrimSpace(s) != s {
		return New(ErrCodeInvalidInput, "%s %q has surrounding whitespace", kind, s)
	}

	return nil
}

// ValidatePath validates a declaration file path supplied over an API.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
//   - No path traversal sequences (..)
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	if strings.Contains(path, "..") {
		return New(ErrCodeInvalidPath, "path cannot contain path traversal sequences (..)")
	}

	return nil
}
