package schema

import (
	"fmt"
	"strings"

	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
)

// Schema load error codes.
const (
	ErrCodeSchemaNotFound       = "S001" // schema file missing or unreadable
	ErrCodeSchemaInvalid        = "S002" // schema does not compile or lacks required fields
	ErrCodeOverlappingOperators = "S003" // an operator token appears in two vocabularies
	ErrCodeBadLimitConfig       = "S004" // limit bounds are non-positive or inverted
)

// LoadError reports a failure to load or interpret the schema document.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos // CUE position if available
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// wrapCUEError converts a CUE error into a LoadError, keeping the first
// position when the CUE error carries one.
func wrapCUEError(code string, err error) error {
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return &LoadError{Code: code, Message: err.Error()}
	}
	first := errs[0]
	le := &LoadError{Code: code, Message: first.Error()}
	if positions := errors.Positions(first); len(positions) > 0 {
		le.Pos = positions[0]
	}
	return le
}

// FieldError is one schema violation in an assembled document.
type FieldError struct {
	Path    string `json:"path,omitempty"`
	Message string `json:"message"`
}

// ValidationError reports that an assembled document violates the
// schema. All violations are collected, not just the first.
type ValidationError struct {
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	switch len(e.Errors) {
	case 0:
		return "document does not conform to schema"
	case 1:
		return fmt.Sprintf("document does not conform to schema: %s", e.Errors[0].format())
	default:
		parts := make([]string, len(e.Errors))
		for i, fe := range e.Errors {
			parts[i] = fe.format()
		}
		return fmt.Sprintf("document does not conform to schema (%d violations): %s",
			len(e.Errors), strings.Join(parts, "; "))
	}
}

func (fe FieldError) format() string {
	if fe.Path != "" {
		return fmt.Sprintf("%s: %s", fe.Path, fe.Message)
	}
	return fe.Message
}

// wrapValidationError splits a CUE validation error into per-field
// violations.
func wrapValidationError(err error) error {
	ve := &ValidationError{}
	for _, sub := range errors.Errors(err) {
		fe := FieldError{Message: sub.Error()}
		if path := sub.Path(); len(path) > 0 {
			fe.Path = strings.Join(path, ".")
		}
		ve.Errors = append(ve.Errors, fe)
	}
	if len(ve.Errors) == 0 {
		ve.Errors = append(ve.Errors, FieldError{Message: err.Error()})
	}
	return ve
}
