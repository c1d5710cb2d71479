package annotations

import (
	"fmt"
	"strings"
)

// AnnotationError defines the interface for annotation-related errors
type AnnotationError interface {
	error
	Location() SourceLocation
	Suggestion() string
	Code() ErrorCode
}

// ErrorCode represents different types of annotation errors
type ErrorCode int

const (
	SyntaxErrorCode ErrorCode = iota
	ValidationErrorCode
	SchemaErrorCode
	RegistrationErrorCode
)

// String returns the string representation of the error code
func (e ErrorCode) String() string {
	switch e {
	case SyntaxErrorCode:
		return "SyntaxError"
	case ValidationErrorCode:
		return "ValidationError"
	case SchemaErrorCode:
		return "SchemaError"
	case RegistrationErrorCode:
		return "RegistrationError"
	default:
		return "UnknownError"
	}
}

// ValidationError represents a parameter validation error
type ValidationError struct {
	Parameter string
	Expected  string
	Actual    string
	Loc       SourceLocation
	Hint      string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: parameter '%s' validation failed: expected %s, got %s",
		e.Loc, e.Parameter, e.Expected, e.Actual)
}

func (e *ValidationError) Location() SourceLocation { return e.Loc }
func (e *ValidationError) Suggestion() string       { return e.Hint }
func (e *ValidationError) Code() ErrorCode          { return ValidationErrorCode }

// SyntaxError represents a comment the grammar rejects
type SyntaxError struct {
	Msg  string
	Loc  SourceLocation
	Hint string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s: syntax error: %s", e.Loc, e.Msg)
}

func (e *SyntaxError) Location() SourceLocation { return e.Loc }
func (e *SyntaxError) Suggestion() string       { return e.Hint }
func (e *SyntaxError) Code() ErrorCode          { return SyntaxErrorCode }

// SchemaError represents an annotation that parses but does not fit its schema
type SchemaError struct {
	Msg  string
	Loc  SourceLocation
	Hint string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("%s: schema error: %s", e.Loc, e.Msg)
}

func (e *SchemaError) Location() SourceLocation { return e.Loc }
func (e *SchemaError) Suggestion() string       { return e.Hint }
func (e *SchemaError) Code() ErrorCode          { return SchemaErrorCode }

// RegistrationError represents an error during annotation type registration
type RegistrationError struct {
	Msg  string
	Hint string
}

func (e *RegistrationError) Error() string {
	return "registration error: " + e.Msg
}

func (e *RegistrationError) Location() SourceLocation { return SourceLocation{} }
func (e *RegistrationError) Suggestion() string       { return e.Hint }
func (e *RegistrationError) Code() ErrorCode          { return RegistrationErrorCode }

// MultipleAnnotationErrors collects every annotation error found in a package
type MultipleAnnotationErrors struct {
	Errors []AnnotationError
}

func (e *MultipleAnnotationErrors) Error() string {
	if len(e.Errors) == 0 {
		return "no errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}

	var messages []string
	for i, err := range e.Errors {
		messages = append(messages, fmt.Sprintf("  %d. %s", i+1, err.Error()))
	}
	return fmt.Sprintf("multiple annotation errors (%d total):\n%s", len(e.Errors), strings.Join(messages, "\n"))
}

// Unwrap returns the underlying errors for error inspection
func (e *MultipleAnnotationErrors) Unwrap() []error {
	errs := make([]error, len(e.Errors))
	for i, err := range e.Errors {
		errs[i] = err
	}
	return errs
}

// HasType returns true if any error of the specified type exists
func (e *MultipleAnnotationErrors) HasType(code ErrorCode) bool {
	for _, err := range e.Errors {
		if err.Code() == code {
			return true
		}
	}
	return false
}

// syntaxHint suggests a fix for a grammar failure
func syntaxHint(msg string) string {
	msg = strings.ToLower(msg)

	switch {
	case strings.Contains(msg, "invalid input text"):
		return "Identifiers are letters, digits, '_' or '$' segments joined by '.', and must not start with a digit"
	case strings.Contains(msg, "unterminated"):
		return "Close quoted values with a matching '\"'"
	case strings.Contains(msg, "unexpected token") && strings.Contains(msg, "="):
		return "Parameters are written -Name=value or -Name for flags"
	default:
		return "Annotations look like //didi::inject eventBus canvas"
	}
}

// schemaHint lists what an annotation type accepts
func schemaHint(registry AnnotationRegistry, annotationType AnnotationType) string {
	if registry == nil {
		return ""
	}
	schema, err := registry.GetSchema(annotationType)
	if err != nil {
		return "Supported annotation types: inject, component, factory"
	}
	return "Usage: " + schema.Usage()
}
