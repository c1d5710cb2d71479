package annotations

import (
	"fmt"
	"go/token"
	"maps"
	"regexp"
	"slices"
)

// ReservedName resolves to the injector itself and cannot name a component.
const ReservedName = "injector"

var identifierPattern = regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$]*(\.[A-Za-z_$][A-Za-z0-9_$]*)*$`)

// ValidateIdentifier checks the shape of a component identifier such as
// "eventBus" or "config.textRenderer".
func ValidateIdentifier(name string) error {
	if !identifierPattern.MatchString(name) {
		return fmt.Errorf("'%s' is not a valid component identifier", name)
	}
	return nil
}

// ValidateComponentName is ValidateIdentifier plus the reserved name check
func ValidateComponentName(name string) error {
	if name == ReservedName {
		return fmt.Errorf("'%s' is reserved for the injector", name)
	}
	return ValidateIdentifier(name)
}

// ValidateGoIdentifier validates a constructor name given with -Ctor
func ValidateGoIdentifier(v any) error {
	name, ok := v.(string)
	if !ok {
		return fmt.Errorf("expected a function name, got %T", v)
	}
	if !token.IsIdentifier(name) {
		return fmt.Errorf("'%s' is not a Go identifier", name)
	}
	return nil
}

// ValidateIdentifierList validates every entry of a -Deps list
func ValidateIdentifierList(v any) error {
	names, ok := v.([]string)
	if !ok {
		return fmt.Errorf("expected a comma-separated list, got %T", v)
	}
	for _, name := range names {
		if err := ValidateIdentifier(name); err != nil {
			return err
		}
	}
	return nil
}

// InitParameterSpec marks a component for construction when the injector starts
func InitParameterSpec() ParameterSpec {
	return ParameterSpec{
		Type:         BoolType,
		DefaultValue: false,
		Description:  "Build the component eagerly when the injector is created",
	}
}

func sortedParameterNames(params map[string]ParameterSpec) []string {
	return slices.Sorted(maps.Keys(params))
}
