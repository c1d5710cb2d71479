package annotations

import (
	"fmt"
	"strconv"
	"strings"
)

// AnnotationType represents the type of annotation
type AnnotationType int

const (
	InjectAnnotation AnnotationType = iota
	ComponentAnnotation
	FactoryAnnotation
)

// String returns the string representation of the annotation type
func (a AnnotationType) String() string {
	switch a {
	case InjectAnnotation:
		return "inject"
	case ComponentAnnotation:
		return "component"
	case FactoryAnnotation:
		return "factory"
	default:
		return "unknown"
	}
}

// ParseAnnotationType converts string to AnnotationType
func ParseAnnotationType(s string) (AnnotationType, error) {
	switch s {
	case "inject":
		return InjectAnnotation, nil
	case "component":
		return ComponentAnnotation, nil
	case "factory":
		return FactoryAnnotation, nil
	default:
		return 0, fmt.Errorf("unknown annotation type: %s", s)
	}
}

// SourceLocation represents the location of an annotation in source code
type SourceLocation struct {
	File   string // File path
	Line   int    // Line number (1-based)
	Column int    // Column number (1-based)
}

// String formats the location as file:line:column
func (l SourceLocation) String() string {
	return l.File + ":" + strconv.Itoa(l.Line) + ":" + strconv.Itoa(l.Column)
}

// ParsedAnnotation is a //didi:: comment after grammar and schema checks.
type ParsedAnnotation struct {
	Type       AnnotationType
	Positional []string       // bare words in source order
	Parameters map[string]any // -Name or -Name=value, converted per schema
	Location   SourceLocation
	Raw        string
}

// GetString returns a string parameter value with optional default
func (p *ParsedAnnotation) GetString(paramName string, defaultValue ...string) string {
	if value, exists := p.Parameters[paramName]; exists {
		if strValue, ok := value.(string); ok {
			return strValue
		}
	}
	if len(defaultValue) > 0 {
		return defaultValue[0]
	}
	return ""
}

// GetBool returns a boolean parameter value with optional default
func (p *ParsedAnnotation) GetBool(paramName string, defaultValue ...bool) bool {
	if value, exists := p.Parameters[paramName]; exists {
		if boolValue, ok := value.(bool); ok {
			return boolValue
		}
	}
	if len(defaultValue) > 0 {
		return defaultValue[0]
	}
	return false
}

// GetStringSlice returns a string slice parameter value with optional default
func (p *ParsedAnnotation) GetStringSlice(paramName string, defaultValue ...[]string) []string {
	if value, exists := p.Parameters[paramName]; exists {
		if sliceValue, ok := value.([]string); ok {
			return sliceValue
		}
	}
	if len(defaultValue) > 0 {
		return defaultValue[0]
	}
	return nil
}

// HasParameter checks if a parameter exists
func (p *ParsedAnnotation) HasParameter(paramName string) bool {
	_, exists := p.Parameters[paramName]
	return exists
}

// Arg returns the i-th positional word or "" when there is none
func (p *ParsedAnnotation) Arg(i int) string {
	if i < 0 || i >= len(p.Positional) {
		return ""
	}
	return p.Positional[i]
}

// ParameterType represents the type of a parameter
type ParameterType int

const (
	StringType ParameterType = iota
	BoolType
	StringSliceType
)

// String returns the string representation of the parameter type
func (p ParameterType) String() string {
	switch p {
	case StringType:
		return "string"
	case BoolType:
		return "bool"
	case StringSliceType:
		return "[]string"
	default:
		return "unknown"
	}
}

// ParameterSpec defines the specification for an annotation parameter
type ParameterSpec struct {
	Type         ParameterType
	Required     bool
	DefaultValue any
	Description  string
	Validator    func(any) error
}

// PositionalSpec bounds the bare words an annotation accepts. Max < 0 means
// no upper bound.
type PositionalSpec struct {
	Name      string
	Min       int
	Max       int
	Validator func(string) error
}

// accepts reports whether n words fit the spec
func (s PositionalSpec) accepts(n int) bool {
	return n >= s.Min && (s.Max < 0 || n <= s.Max)
}

// describe renders the accepted count, e.g. "at least 1" or "at most 1"
func (s PositionalSpec) describe() string {
	switch {
	case s.Max < 0:
		return "at least " + strconv.Itoa(s.Min)
	case s.Min == s.Max:
		return "exactly " + strconv.Itoa(s.Min)
	case s.Min == 0:
		return "at most " + strconv.Itoa(s.Max)
	default:
		return "between " + strconv.Itoa(s.Min) + " and " + strconv.Itoa(s.Max)
	}
}

// CustomValidator represents a custom validation function for annotations
type CustomValidator func(*ParsedAnnotation) error

// AnnotationSchema defines the schema for an annotation type
type AnnotationSchema struct {
	Type        AnnotationType
	Description string
	Positional  PositionalSpec
	Parameters  map[string]ParameterSpec
	Validators  []CustomValidator
	Examples    []string
}

// Usage renders a one-line synopsis such as
// "//didi::factory <name> [-Deps=...] [-Init]".
func (s AnnotationSchema) Usage() string {
	var b strings.Builder
	b.WriteString(Prefix)
	b.WriteString(s.Type.String())

	word := "<" + s.Positional.Name + ">"
	for i := 0; i < s.Positional.Min; i++ {
		b.WriteString(" " + word)
	}
	switch {
	case s.Positional.Max < 0:
		b.WriteString(" [" + word + "...]")
	case s.Positional.Max > s.Positional.Min:
		b.WriteString(" [" + word + "]")
	}

	for _, name := range sortedParameterNames(s.Parameters) {
		if s.Parameters[name].Type == BoolType {
			b.WriteString(" [-" + name + "]")
		} else {
			b.WriteString(" [-" + name + "=...]")
		}
	}
	return b.String()
}
