package models

import "fmt"

// GeneratorError represents an error that occurred during code generation
type GeneratorError struct {
	Type    ErrorType // type of error
	File    string    // file where error occurred
	Line    int       // line number where error occurred
	Message string    // error message
	Cause   error     // underlying error cause

	Suggestions []string       // fixes shown by the diagnostic reporter
	Context     map[string]any // extra detail shown in verbose mode
}

// Error implements the error interface
func (e *GeneratorError) Error() string {
	if e.File != "" && e.Line > 0 {
		return fmt.Sprintf("%s:%d: %s", e.File, e.Line, e.Message)
	}
	if e.File != "" {
		return fmt.Sprintf("%s: %s", e.File, e.Message)
	}
	return e.Message
}

// Unwrap returns the underlying error cause
func (e *GeneratorError) Unwrap() error {
	return e.Cause
}

// WithSuggestions appends suggestions and returns e
func (e *GeneratorError) WithSuggestions(suggestions ...string) *GeneratorError {
	e.Suggestions = append(e.Suggestions, suggestions...)
	return e
}

// NewGeneratorError builds a GeneratorError located at src
func NewGeneratorError(errType ErrorType, src SourceTrait, message string, cause error) *GeneratorError {
	return &GeneratorError{
		Type:    errType,
		File:    src.FileName,
		Line:    src.Line,
		Message: message,
		Cause:   cause,
	}
}
