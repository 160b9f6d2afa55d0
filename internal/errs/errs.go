// Package errs defines the error taxonomy shared by the calculator, storage,
// service and API layers.
//
// Callers classify failures with errors.Is against the sentinels below; the
// API layer is the only place where a class is turned into an HTTP status.
package errs

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrInvalidInput marks a semantic constraint violation such as an
	// unsupported split method or an empty participant list.
	ErrInvalidInput = errors.New("invalid input")

	// ErrValidation marks field-level validation failures. Errors of this
	// class are always *ValidationError values.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound marks a referenced record that does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists marks a unique constraint violation (duplicate email).
	ErrAlreadyExists = errors.New("already exists")
)

// InvalidInput returns an ErrInvalidInput error with a formatted message.
func InvalidInput(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// NotFound returns an ErrNotFound error naming the missing record.
func NotFound(kind, id string) error {
	return fmt.Errorf("%s %w: %s", kind, ErrNotFound, id)
}

// ValidationError collects per-field messages. Keys are JSON field paths
// such as "email" or "participants[1].percentage".
type ValidationError struct {
	Fields map[string][]string
}

// NewValidationError returns an empty ValidationError ready for Add.
func NewValidationError() *ValidationError {
	return &ValidationError{Fields: make(map[string][]string)}
}

// Add appends a message for field.
func (e *ValidationError) Add(field, message string) {
	if e.Fields == nil {
		e.Fields = make(map[string][]string)
	}
	e.Fields[field] = append(e.Fields[field], message)
}

// Empty reports whether no field messages were recorded.
func (e *ValidationError) Empty() bool {
	return len(e.Fields) == 0
}

// OrNil returns e when it holds messages and nil otherwise.
func (e *ValidationError) OrNil() error {
	if e.Empty() {
		return nil
	}
	return e
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, strings.Join(e.Fields[k], "; ")))
	}
	return fmt.Sprintf("%s: %s", ErrValidation, strings.Join(parts, ", "))
}

// Is makes errors.Is(err, ErrValidation) hold for every ValidationError.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// AsValidation extracts a *ValidationError from err's chain.
func AsValidation(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
