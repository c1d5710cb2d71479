package annotations

import (
	"fmt"
	"slices"
	"sync"
)

// AnnotationRegistry defines the interface for managing annotation schemas
type AnnotationRegistry interface {
	// Register a new annotation type with its schema
	Register(annotationType AnnotationType, schema AnnotationSchema) error

	// GetSchema retrieves the schema for an annotation type
	GetSchema(annotationType AnnotationType) (AnnotationSchema, error)

	// ListTypes returns all registered annotation types in ascending order
	ListTypes() []AnnotationType

	// IsRegistered checks if an annotation type is registered
	IsRegistered(annotationType AnnotationType) bool
}

type registry struct {
	mu      sync.RWMutex
	schemas map[AnnotationType]AnnotationSchema
}

// NewRegistry creates an empty annotation registry
func NewRegistry() AnnotationRegistry {
	return &registry{
		schemas: make(map[AnnotationType]AnnotationSchema),
	}
}

var (
	defaultRegistry     AnnotationRegistry
	defaultRegistryOnce sync.Once
)

// DefaultRegistry returns the process-wide registry holding the builtin schemas
func DefaultRegistry() AnnotationRegistry {
	defaultRegistryOnce.Do(func() {
		defaultRegistry = NewRegistry()
		if err := RegisterBuiltinSchemas(defaultRegistry); err != nil {
			panic(fmt.Sprintf("registering builtin annotation schemas: %v", err))
		}
	})
	return defaultRegistry
}

// Register adds a new annotation type with its schema to the registry
func (r *registry) Register(annotationType AnnotationType, schema AnnotationSchema) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if schema.Type != annotationType {
		return &RegistrationError{
			Msg:  fmt.Sprintf("schema type %s does not match annotation type %s", schema.Type, annotationType),
			Hint: "Set AnnotationSchema.Type to the type being registered",
		}
	}
	if _, exists := r.schemas[annotationType]; exists {
		return &RegistrationError{Msg: fmt.Sprintf("annotation type %s is already registered", annotationType)}
	}
	if err := validateSchema(schema); err != nil {
		return &RegistrationError{Msg: fmt.Sprintf("invalid schema for %s: %v", annotationType, err)}
	}

	r.schemas[annotationType] = schema
	return nil
}

// GetSchema retrieves the schema for an annotation type
func (r *registry) GetSchema(annotationType AnnotationType) (AnnotationSchema, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	schema, exists := r.schemas[annotationType]
	if !exists {
		return AnnotationSchema{}, fmt.Errorf("annotation type %s is not registered", annotationType)
	}
	return schema, nil
}

// ListTypes returns all registered annotation types
func (r *registry) ListTypes() []AnnotationType {
	r.mu.RLock()
	defer r.mu.RUnlock()

	types := make([]AnnotationType, 0, len(r.schemas))
	for annotationType := range r.schemas {
		types = append(types, annotationType)
	}
	slices.Sort(types)
	return types
}

// IsRegistered checks if an annotation type is registered
func (r *registry) IsRegistered(annotationType AnnotationType) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, exists := r.schemas[annotationType]
	return exists
}

func validateSchema(schema AnnotationSchema) error {
	if schema.Positional.Min < 0 {
		return fmt.Errorf("positional minimum cannot be negative")
	}
	if schema.Positional.Max >= 0 && schema.Positional.Max < schema.Positional.Min {
		return fmt.Errorf("positional maximum %d is below minimum %d", schema.Positional.Max, schema.Positional.Min)
	}
	if (schema.Positional.Min > 0 || schema.Positional.Max != 0) && schema.Positional.Name == "" {
		return fmt.Errorf("positional words need a name")
	}

	for paramName, paramSpec := range schema.Parameters {
		if paramName == "" {
			return fmt.Errorf("parameter name cannot be empty")
		}
		if paramSpec.Type < StringType || paramSpec.Type > StringSliceType {
			return fmt.Errorf("invalid parameter type for %s: %d", paramName, paramSpec.Type)
		}
		if paramSpec.DefaultValue != nil {
			if err := validateDefaultValue(paramName, paramSpec.Type, paramSpec.DefaultValue); err != nil {
				return err
			}
		}
	}
	return nil
}

// validateDefaultValue checks if the default value matches the parameter type
func validateDefaultValue(paramName string, paramType ParameterType, defaultValue any) error {
	switch paramType {
	case StringType:
		if _, ok := defaultValue.(string); !ok {
			return fmt.Errorf("default value for string parameter %s must be string, got %T", paramName, defaultValue)
		}
	case BoolType:
		if _, ok := defaultValue.(bool); !ok {
			return fmt.Errorf("default value for bool parameter %s must be bool, got %T", paramName, defaultValue)
		}
	case StringSliceType:
		if _, ok := defaultValue.([]string); !ok {
			return fmt.Errorf("default value for []string parameter %s must be []string, got %T", paramName, defaultValue)
		}
	}
	return nil
}
