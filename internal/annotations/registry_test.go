package annotations

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_RegisterAndGet(t *testing.T) {
	registry := NewRegistry()
	require.NoError(t, RegisterBuiltinSchemas(registry))

	assert.Equal(t, []AnnotationType{InjectAnnotation, ComponentAnnotation, FactoryAnnotation}, registry.ListTypes())

	schema, err := registry.GetSchema(FactoryAnnotation)
	require.NoError(t, err)
	assert.Equal(t, "name", schema.Positional.Name)
	assert.Len(t, schema.Validators, 1)
}

func TestRegistry_RegisterErrors(t *testing.T) {
	tests := []struct {
		name   string
		typ    AnnotationType
		schema AnnotationSchema
	}{
		{"type mismatch", InjectAnnotation, AnnotationSchema{Type: FactoryAnnotation}},
		{"negative minimum", InjectAnnotation, AnnotationSchema{Type: InjectAnnotation, Positional: PositionalSpec{Name: "x", Min: -1}}},
		{"max below min", InjectAnnotation, AnnotationSchema{Type: InjectAnnotation, Positional: PositionalSpec{Name: "x", Min: 2, Max: 1}}},
		{"unnamed positional", InjectAnnotation, AnnotationSchema{Type: InjectAnnotation, Positional: PositionalSpec{Min: 1, Max: 1}}},
		{"empty parameter name", InjectAnnotation, AnnotationSchema{Type: InjectAnnotation, Parameters: map[string]ParameterSpec{"": {}}}},
		{"bad default", InjectAnnotation, AnnotationSchema{Type: InjectAnnotation, Parameters: map[string]ParameterSpec{
			"Init": {Type: BoolType, DefaultValue: "yes"},
		}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewRegistry().Register(tt.typ, tt.schema)
			var regErr *RegistrationError
			require.ErrorAs(t, err, &regErr)
			assert.Equal(t, RegistrationErrorCode, regErr.Code())
		})
	}

	registry := NewRegistry()
	require.NoError(t, registry.Register(InjectAnnotation, InjectAnnotationSchema))
	assert.Error(t, registry.Register(InjectAnnotation, InjectAnnotationSchema), "duplicate registration")
}

func TestRegistry_Unregistered(t *testing.T) {
	registry := NewRegistry()

	assert.False(t, registry.IsRegistered(ComponentAnnotation))
	_, err := registry.GetSchema(ComponentAnnotation)
	assert.EqualError(t, err, "annotation type component is not registered")

	parser := NewParticipleParser(registry)
	_, err = parser.ParseAnnotation("//didi::component", SourceLocation{File: "x.go"})
	var schemaErr *SchemaError
	assert.ErrorAs(t, err, &schemaErr)
}

func TestDefaultRegistry(t *testing.T) {
	assert.Same(t, DefaultRegistry(), DefaultRegistry())
	assert.True(t, DefaultRegistry().IsRegistered(InjectAnnotation))
}

func TestRegistry_ConcurrentReads(t *testing.T) {
	registry := NewRegistry()
	require.NoError(t, RegisterBuiltinSchemas(registry))

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.True(t, registry.IsRegistered(FactoryAnnotation))
			_, err := registry.GetSchema(InjectAnnotation)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
}

func TestSchemaUsage(t *testing.T) {
	assert.Equal(t, "//didi::inject <identifier> [<identifier>...]", InjectAnnotationSchema.Usage())
	assert.Equal(t, "//didi::factory <name> [-Deps=...] [-Init]", FactoryAnnotationSchema.Usage())
}

func TestAnnotationTypeRoundTrip(t *testing.T) {
	for _, typ := range []AnnotationType{InjectAnnotation, ComponentAnnotation, FactoryAnnotation} {
		parsed, err := ParseAnnotationType(typ.String())
		require.NoError(t, err)
		assert.Equal(t, typ, parsed)
	}
	_, err := ParseAnnotationType("route")
	assert.Error(t, err)
}

func TestValidators(t *testing.T) {
	assert.NoError(t, ValidateIdentifier("config.textRenderer"))
	assert.NoError(t, ValidateIdentifier("$http"))
	assert.Error(t, ValidateIdentifier(""))
	assert.Error(t, ValidateIdentifier("a..b"))
	assert.Error(t, ValidateIdentifier("9lives"))

	assert.Error(t, ValidateComponentName(ReservedName))
	assert.NoError(t, ValidateGoIdentifier("NewCanvas"))
	assert.Error(t, ValidateGoIdentifier(42))
	assert.Error(t, ValidateIdentifierList([]string{"ok", "not ok"}))
}

func TestMultipleAnnotationErrors(t *testing.T) {
	first := &SyntaxError{Msg: "bad", Loc: SourceLocation{File: "a.go", Line: 1, Column: 1}}
	second := &SchemaError{Msg: "worse", Loc: SourceLocation{File: "b.go", Line: 2, Column: 3}}

	errs := &MultipleAnnotationErrors{Errors: []AnnotationError{first, second}}
	assert.Contains(t, errs.Error(), "multiple annotation errors (2 total)")
	assert.Contains(t, errs.Error(), "b.go:2:3: schema error: worse")
	assert.True(t, errs.HasType(SchemaErrorCode))
	assert.False(t, errs.HasType(ValidationErrorCode))
	assert.ErrorIs(t, errs, second)

	single := &MultipleAnnotationErrors{Errors: []AnnotationError{first}}
	assert.Equal(t, first.Error(), single.Error())
}
