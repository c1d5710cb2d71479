package didi

import (
	"errors"
	"strconv"
	"strings"
)

var (
	// ErrConstructorPanic is wrapped by ConstructorError when a constructor panics.
	ErrConstructorPanic = errors.New("didi: panic during construction")

	// ErrNilInjector is returned by methods called on a nil *Injector.
	ErrNilInjector = errors.New("didi: nil injector")
)

func formatPath(path []string) string {
	return strings.Join(path, " -> ")
}

// MissingProviderError is returned when no provider is registered for a name.
type MissingProviderError struct {
	Name string
	Path []string
}

// Error implements the error interface.
func (e *MissingProviderError) Error() string {
	// Example: didi: no provider for "canvas" (resolving: palette -> canvas)
	msg := "didi: no provider for " + strconv.Quote(e.Name)
	if len(e.Path) > 0 {
		msg += " (resolving: " + formatPath(e.Path) + ")"
	}
	return msg
}

// CircularDependencyError is returned when a component depends on itself.
type CircularDependencyError struct {
	Path []string
}

// Error implements the error interface.
func (e *CircularDependencyError) Error() string {
	return "didi: circular dependency (resolving: " + formatPath(e.Path) + ")"
}

// NotAnnotatedError is returned when a constructor takes parameters but
// neither the provider nor the result type names its dependencies.
type NotAnnotatedError struct {
	Type   string
	Params int
}

// Error implements the error interface.
func (e *NotAnnotatedError) Error() string {
	return "didi: " + e.Type + " has no dependency annotation but its constructor takes " +
		strconv.Itoa(e.Params) + " parameter(s)"
}

// ArityError is returned when a dependency list and a constructor disagree
// on the number of arguments.
type ArityError struct {
	Name     string
	Deps     []string
	Expected int
}

// Error implements the error interface.
func (e *ArityError) Error() string {
	return "didi: " + strconv.Quote(e.Name) + " lists " + strconv.Itoa(len(e.Deps)) +
		" dependencies but its constructor takes " + strconv.Itoa(e.Expected)
}

// WrongTypeError is returned when a resolved component cannot be passed
// where it is needed.
type WrongTypeError struct {
	Name     string
	Want     string
	Got      string
	Position int
}

// Error implements the error interface.
func (e *WrongTypeError) Error() string {
	msg := "didi: component " + strconv.Quote(e.Name) + " has type " + e.Got + ", want " + e.Want
	if e.Position > 0 {
		msg += " (argument " + strconv.Itoa(e.Position) + ")"
	}
	return msg
}

// InvalidProviderError is returned for providers that cannot be called.
type InvalidProviderError struct {
	Name   string
	Reason string
}

// Error implements the error interface.
func (e *InvalidProviderError) Error() string {
	if e.Name == "" {
		return "didi: invalid provider: " + e.Reason
	}
	return "didi: invalid provider for " + strconv.Quote(e.Name) + ": " + e.Reason
}

// ConstructorError wraps an error returned (or a panic raised) by a constructor.
type ConstructorError struct {
	Name  string
	Cause error
}

// Error implements the error interface.
func (e *ConstructorError) Error() string {
	return "didi: constructing " + strconv.Quote(e.Name) + ": " + e.Cause.Error()
}

// Unwrap returns the underlying cause.
func (e *ConstructorError) Unwrap() error { return e.Cause }
