package didi

import (
	"fmt"
	"reflect"
	"slices"
)

// ProviderKind says how a component is produced
type ProviderKind int

const (
	TypeProvider ProviderKind = iota
	FactoryProvider
	ValueProvider
)

// String returns the string representation of the provider kind
func (k ProviderKind) String() string {
	switch k {
	case TypeProvider:
		return "type"
	case FactoryProvider:
		return "factory"
	case ValueProvider:
		return "value"
	default:
		return "unknown"
	}
}

// ParseProviderKind converts a string to a ProviderKind
func ParseProviderKind(s string) (ProviderKind, error) {
	switch s {
	case "type":
		return TypeProvider, nil
	case "factory":
		return FactoryProvider, nil
	case "value":
		return ValueProvider, nil
	default:
		return 0, fmt.Errorf("unknown provider kind: %s", s)
	}
}

// Provider describes how to produce one component.
//
// Type and factory providers hold a function. The dependency list of a type
// provider always comes from the annotation on the function's result type;
// a factory may carry its own list.
type Provider struct {
	Kind   ProviderKind
	Target any
	Deps   []string
}

// Type declares a component built by calling ctor with the dependencies
// annotated on its result type. ctor must return T or (T, error).
func Type(ctor any) Provider {
	return Provider{Kind: TypeProvider, Target: ctor}
}

// Factory declares a component built by calling fn with deps. When deps is
// empty and fn takes parameters, the annotation on fn's result type is used.
func Factory(fn any, deps ...string) Provider {
	return Provider{Kind: FactoryProvider, Target: fn, Deps: slices.Clone(deps)}
}

// Value declares a component that is already built
func Value(v any) Provider {
	return Provider{Kind: ValueProvider, Target: v}
}

// ResultType returns the type of the component this provider produces.
// Value providers holding nil report nil.
func (p Provider) ResultType() reflect.Type {
	if p.Kind == ValueProvider {
		return reflect.TypeOf(p.Target)
	}
	fn := reflect.TypeOf(p.Target)
	if fn == nil || fn.Kind() != reflect.Func || fn.NumOut() == 0 {
		return nil
	}
	return fn.Out(0)
}

// validate checks the shape of a function provider without calling it
func (p Provider) validate(name string) error {
	if p.Kind == ValueProvider {
		return nil
	}
	if p.Kind != TypeProvider && p.Kind != FactoryProvider {
		return &InvalidProviderError{Name: name, Reason: "unknown provider kind " + p.Kind.String()}
	}

	fn := reflect.TypeOf(p.Target)
	if fn == nil || fn.Kind() != reflect.Func {
		return &InvalidProviderError{Name: name, Reason: fmt.Sprintf("%s provider must be a function, got %T", p.Kind, p.Target)}
	}
	if fn.IsVariadic() {
		return &InvalidProviderError{Name: name, Reason: "variadic constructors are not supported"}
	}
	switch fn.NumOut() {
	case 1:
		if fn.Out(0) == errorType {
			return &InvalidProviderError{Name: name, Reason: "constructor returns only an error"}
		}
	case 2:
		if fn.Out(1) != errorType {
			return &InvalidProviderError{Name: name, Reason: "second result must be error"}
		}
	default:
		return &InvalidProviderError{Name: name, Reason: fmt.Sprintf("constructor must return 1 or 2 values, got %d", fn.NumOut())}
	}
	return nil
}

var errorType = reflect.TypeFor[error]()

// dependencies returns the ordered identifiers fn must be called with.
func dependencies(table *Table, fn reflect.Type, explicit []string) ([]string, error) {
	if len(explicit) > 0 {
		return slices.Clone(explicit), nil
	}
	if fn.NumIn() == 0 {
		return nil, nil
	}
	if fn.NumOut() > 0 {
		if deps, ok := table.lookupResult(fn.Out(0)); ok {
			return deps, nil
		}
	}
	return nil, &NotAnnotatedError{Type: typeName(fn), Params: fn.NumIn()}
}

func typeName(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}
	if t.Kind() == reflect.Func && t.NumOut() > 0 {
		return t.Out(0).String()
	}
	return t.String()
}
