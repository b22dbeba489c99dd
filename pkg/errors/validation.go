package errors

import (
	"strings"
	"unicode"
)

// MaxSpecLength bounds the DSL text accepted from untrusted callers.
const MaxSpecLength = 64 << 10

// ValidateSpecText validates DSL text received from an untrusted source
// (the HTTP API) before it reaches the parser.
//
// The validation rules are intentionally conservative:
//   - No empty or whitespace-only specs
//   - Maximum length of MaxSpecLength bytes
//   - No control characters other than tab, newline and carriage return
func ValidateSpecText(spec string) error {
	if strings.TrimSpace(spec) == "" {
		return New(ErrCodeInvalidInput, "spec cannot be empty")
	}

	if len(spec) > MaxSpecLength {
		return New(ErrCodeInvalidInput, "spec too long (max %d bytes)", MaxSpecLength)
	}

	for _, r := range spec {
		if r == '\t' || r == '\n' || r == '\r' {
			continue
		}
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "spec contains invalid control characters")
		}
	}

	return nil
}

// ValidateOutputPath validates a file path given for rendered output.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
func ValidateOutputPath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidInput, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidInput, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "path contains invalid characters")
		}
	}

	return nil
}
