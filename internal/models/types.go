package models

// ErrorType represents different types of generator errors
type ErrorType int

const (
	ErrorTypeAnnotationSyntax ErrorType = iota
	ErrorTypeValidation
	ErrorTypeGeneration
	ErrorTypeFileSystem
)

// String returns the label used in diagnostics
func (t ErrorType) String() string {
	switch t {
	case ErrorTypeAnnotationSyntax:
		return "annotation syntax"
	case ErrorTypeValidation:
		return "validation"
	case ErrorTypeGeneration:
		return "generation"
	case ErrorTypeFileSystem:
		return "file system"
	default:
		return "unknown"
	}
}

// SourceTrait locates a declaration for error reporting
type SourceTrait struct {
	FileName string `json:"file" yaml:"file" toml:"file"`
	Line     int    `json:"line" yaml:"line" toml:"line"`
}
