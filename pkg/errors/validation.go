package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// maxLabelLength bounds node labels accepted from the CLI and API.
const maxLabelLength = 256

// ValidateLabel validates a node label supplied by a user.
// Empty labels are allowed (the node then renders without text).
func ValidateLabel(label string) error {
	if len(label) > maxLabelLength {
		return New(ErrCodeInvalidInput, "label too long (max %d characters)", maxLabelLength)
	}
	for _, r := range label {
		if r == '\x00' || (unicode.IsControl(r) && r != '\n' && r != '\t') {
			return New(ErrCodeInvalidInput, "label contains invalid control characters")
		}
	}
	return nil
}

// documentIDRegex matches document ids used as store keys and file names.
var documentIDRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]{0,127}$`)

// ValidateDocumentID validates a snapshot id for safety.
// Ids become file names and store keys, so path separators, traversal
// sequences and leading dots are rejected.
func ValidateDocumentID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "document id cannot be empty")
	}
	if strings.Contains(id, "..") {
		return New(ErrCodeInvalidInput, "document id cannot contain path traversal sequences (..)")
	}
	if !documentIDRegex.MatchString(id) {
		return New(ErrCodeInvalidInput, "invalid document id: %q", id)
	}
	return nil
}

// ValidatePath validates a document file path supplied on the command line.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
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
	return nil
}
