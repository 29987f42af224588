package core

import (
	"errors"
	"strings"
)

// ErrStorage marks failures of the underlying storage engine. Callers
// match it with errors.Is and surface a generic server error.
var ErrStorage = errors.New("storage failure")

// Issue is a single violated constraint.
type Issue struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError reports malformed input detected before any storage access.
type ValidationError struct {
	Issues []Issue
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Issues: []Issue{{Field: field, Message: message}}}
}

func (e *ValidationError) Add(field, message string) {
	e.Issues = append(e.Issues, Issue{Field: field, Message: message})
}

func (e *ValidationError) HasIssues() bool {
	return len(e.Issues) > 0
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Issues))
	for _, is := range e.Issues {
		parts = append(parts, is.Field+": "+is.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// IsValidation reports whether err is or wraps a *ValidationError.
func IsValidation(err error) bool {
	var verr *ValidationError
	return errors.As(err, &verr)
}
