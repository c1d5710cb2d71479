// Package didi records which named components a type needs at construction
// time and resolves them.
//
// A type is annotated once, usually from an init function:
//
//	func init() {
//		didi.Annotate("eventBus", "canvas")(reflect.TypeFor[Palette]())
//	}
//
// The list is read back by an Injector (or the fx adapter) which looks each
// identifier up and passes the instances to the constructor in list order:
//
//	func NewPalette(bus *EventBus, canvas *Canvas) *Palette
//
// Annotations live in a process-wide side table keyed by reflect.Type rather
// than on the type itself. Re-annotating a type replaces its list.
package didi

import "reflect"

// Decorator attaches a dependency list to a type and returns the type unchanged.
type Decorator func(target reflect.Type) reflect.Type

// Annotate returns a Decorator that records [first, others...] on a type in
// the default table. Identifiers are not validated; duplicates are kept.
func Annotate(first string, others ...string) Decorator {
	return DefaultTable().Annotate(first, others...)
}

// AnnotateType annotates T in the default table.
func AnnotateType[T any](first string, others ...string) {
	Annotate(first, others...)(reflect.TypeFor[T]())
}

// Dependencies returns the dependency list recorded for target in the
// default table.
func Dependencies(target reflect.Type) ([]string, bool) {
	return DefaultTable().Lookup(target)
}

// DependenciesOf returns the dependency list recorded for T.
func DependenciesOf[T any]() ([]string, bool) {
	return Dependencies(reflect.TypeFor[T]())
}
