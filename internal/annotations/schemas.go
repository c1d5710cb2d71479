package annotations

import "fmt"

// Builtin annotation schemas

// InjectAnnotationSchema defines the schema for //didi::inject annotations
var InjectAnnotationSchema = AnnotationSchema{
	Type:        InjectAnnotation,
	Description: "Declares the ordered component identifiers a type's constructor receives",
	Positional: PositionalSpec{
		Name:      "identifier",
		Min:       1,
		Max:       -1,
		Validator: ValidateIdentifier,
	},
	Parameters: map[string]ParameterSpec{},
	Examples: []string{
		"//didi::inject eventBus",
		"//didi::inject eventBus canvas",
		"//didi::inject canvas config.textRenderer",
	},
}

// ComponentAnnotationSchema defines the schema for //didi::component annotations
var ComponentAnnotationSchema = AnnotationSchema{
	Type:        ComponentAnnotation,
	Description: "Registers a type's constructor as a named component of the package module",
	Positional: PositionalSpec{
		Name:      "name",
		Min:       0,
		Max:       1,
		Validator: ValidateComponentName,
	},
	Parameters: map[string]ParameterSpec{
		"Ctor": {
			Type:        StringType,
			Description: "Constructor function name, defaults to New<Type>",
			Validator:   ValidateGoIdentifier,
		},
		"Init": InitParameterSpec(),
	},
	Examples: []string{
		"//didi::component",
		"//didi::component canvas",
		"//didi::component canvas -Ctor=NewSVGCanvas",
		"//didi::component eventBus -Init",
	},
}

// FactoryAnnotationSchema defines the schema for //didi::factory annotations
var FactoryAnnotationSchema = AnnotationSchema{
	Type:        FactoryAnnotation,
	Description: "Registers a function as a factory component",
	Positional: PositionalSpec{
		Name:      "name",
		Min:       1,
		Max:       1,
		Validator: ValidateComponentName,
	},
	Parameters: map[string]ParameterSpec{
		"Deps": {
			Type:        StringSliceType,
			Description: "Comma-separated identifiers passed to the function in order",
			Validator:   ValidateIdentifierList,
		},
		"Init": InitParameterSpec(),
	},
	Examples: []string{
		"//didi::factory config.textRenderer",
		"//didi::factory pathMap -Deps=styles",
		"//didi::factory palette -Deps=eventBus,canvas -Init",
	},
}

// BuiltinSchemas returns every schema the generator understands
func BuiltinSchemas() []AnnotationSchema {
	return []AnnotationSchema{
		InjectAnnotationSchema,
		ComponentAnnotationSchema,
		FactoryAnnotationSchema,
	}
}

// RegisterBuiltinSchemas registers all builtin schemas with registry
func RegisterBuiltinSchemas(registry AnnotationRegistry) error {
	for _, schema := range BuiltinSchemas() {
		if err := registry.Register(schema.Type, schema); err != nil {
			return fmt.Errorf("failed to register %s schema: %w", schema.Type, err)
		}
	}
	return nil
}

// ValidateFactoryDeps rejects a -Deps list naming the factory itself
func ValidateFactoryDeps(annotation *ParsedAnnotation) error {
	name := annotation.Arg(0)
	for _, dep := range annotation.GetStringSlice("Deps") {
		if dep == name {
			return fmt.Errorf("factory '%s' cannot depend on itself", name)
		}
	}
	return nil
}

func init() {
	FactoryAnnotationSchema.Validators = []CustomValidator{
		ValidateFactoryDeps,
	}
}
