package ruledef

import (
	"fmt"
	"strings"
)

// DefinitionError represents an error in a rule set definition.
// It includes line and column information when the failing YAML node is
// known.
type DefinitionError struct {
	// Message describes the error
	Message string

	// Line is the line number where the error occurred (1-indexed)
	Line int

	// Column is the column number where the error occurred (1-indexed)
	Column int

	// Cause is the underlying error, if any
	Cause error
}

// Error implements the error interface.
func (e *DefinitionError) Error() string {
	msg := e.Message
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	if e.Line > 0 && e.Column > 0 {
		return fmt.Sprintf("definition error at line %d, column %d: %s", e.Line, e.Column, msg)
	}
	if e.Line > 0 {
		return fmt.Sprintf("definition error at line %d: %s", e.Line, msg)
	}
	return fmt.Sprintf("definition error: %s", msg)
}

// Unwrap implements the errors.Unwrap interface for error chain support.
func (e *DefinitionError) Unwrap() error {
	return e.Cause
}

// RegistryError represents an error during predicate registry
// operations.
type RegistryError struct {
	// Name is the predicate name involved in the error
	Name string

	// Operation is the operation that failed (e.g., "register")
	Operation string

	// Message describes the registry error
	Message string
}

// Error implements the error interface.
func (e *RegistryError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("registry error for predicate %q during %s: %s", e.Name, e.Operation, e.Message)
	}
	return fmt.Sprintf("registry error during %s: %s", e.Operation, e.Message)
}

// ErrorList collects the definition errors found while building a rule
// set, so a single parse reports every problem instead of stopping at
// the first.
type ErrorList struct {
	Errors []*DefinitionError
}

// NewErrorList creates a new empty error list.
func NewErrorList() *ErrorList {
	return &ErrorList{Errors: make([]*DefinitionError, 0)}
}

// Add appends an error to the list.
func (el *ErrorList) Add(err *DefinitionError) {
	if err != nil {
		el.Errors = append(el.Errors, err)
	}
}

// HasErrors returns true if the list contains any errors.
func (el *ErrorList) HasErrors() bool {
	return len(el.Errors) > 0
}

// Count returns the number of errors in the list.
func (el *ErrorList) Count() int {
	return len(el.Errors)
}

// Error implements the error interface.
func (el *ErrorList) Error() string {
	if len(el.Errors) == 0 {
		return "no errors"
	}
	if len(el.Errors) == 1 {
		return el.Errors[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d errors occurred:\n", len(el.Errors)))
	for i, err := range el.Errors {
		sb.WriteString(fmt.Sprintf("  %d. %v\n", i+1, err))
	}
	return sb.String()
}

// ToError returns nil if there are no errors, the single error if there
// is one, or the ErrorList itself if there are multiple errors.
func (el *ErrorList) ToError() error {
	if len(el.Errors) == 0 {
		return nil
	}
	if len(el.Errors) == 1 {
		return el.Errors[0]
	}
	return el
}
