package parser

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toyz/didi/internal/models"
)

const modelerSource = `package modeler

// Canvas draws diagram elements.
//didi::inject eventBus elementRegistry
//didi::component -Init
type Canvas struct{}

func NewCanvas(bus *EventBus, registry *ElementRegistry) *Canvas { return &Canvas{} }

//didi::component
type EventBus struct{}

func NewEventBus() *EventBus { return &EventBus{} }

//didi::component elementRegistry -Ctor=newRegistry
type ElementRegistry struct{}

func newRegistry() (*ElementRegistry, error) { return &ElementRegistry{}, nil }

//didi::inject canvas config.textRenderer
type TextRenderer struct{}

//didi::factory config.textRenderer
func TextRendererConfig() map[string]any { return nil }

//didi::factory textRenderer -Init
func NewTextRenderer(canvas *Canvas, config map[string]any) *TextRenderer { return &TextRenderer{} }

type PathMap map[string]string

//didi::factory pathMap -Deps=config.textRenderer
func NewPathMap(config map[string]any) PathMap { return nil }

// didi is not an annotation here
func helper() {}
`

func TestParseSource_Modeler(t *testing.T) {
	meta, err := NewParser().ParseSource("canvas.go", modelerSource)
	require.NoError(t, err)

	assert.Equal(t, "modeler", meta.PackageName)

	require.Len(t, meta.Injections, 2)
	assert.Equal(t, "Canvas", meta.Injections[0].TypeName)
	assert.Equal(t, []string{"eventBus", "elementRegistry"}, meta.Injections[0].Dependencies)
	assert.Equal(t, "canvas.go", meta.Injections[0].FileName)
	assert.Equal(t, 4, meta.Injections[0].Line)

	require.Len(t, meta.Components, 3)
	canvas := meta.Components[0]
	assert.Equal(t, "canvas", canvas.Name)
	assert.Equal(t, "NewCanvas", canvas.Constructor)
	assert.True(t, canvas.Init)
	assert.Equal(t, 2, canvas.ParamCount)
	assert.Equal(t, []string{"eventBus", "elementRegistry"}, canvas.Dependencies)
	assert.False(t, canvas.ReturnsError)

	assert.Equal(t, "eventBus", meta.Components[1].Name)
	assert.Empty(t, meta.Components[1].Dependencies)

	registry := meta.Components[2]
	assert.Equal(t, "elementRegistry", registry.Name)
	assert.Equal(t, "newRegistry", registry.Constructor)
	assert.True(t, registry.ReturnsError)

	require.Len(t, meta.Factories, 3)
	config := meta.Factories[0]
	assert.Equal(t, "config.textRenderer", config.Name)
	assert.Equal(t, "map[string]any", config.ResultType)
	assert.False(t, config.Explicit)
	assert.Empty(t, config.Dependencies)

	renderer := meta.Factories[1]
	assert.Equal(t, "*TextRenderer", renderer.ResultType)
	assert.Equal(t, []string{"canvas", "config.textRenderer"}, renderer.Dependencies)
	assert.False(t, renderer.Explicit)
	assert.True(t, renderer.Init)

	pathMap := meta.Factories[2]
	assert.Equal(t, "PathMap", pathMap.ResultType)
	assert.True(t, pathMap.Explicit)
	assert.Equal(t, []string{"config.textRenderer"}, pathMap.Dependencies)

	assert.Equal(t, []string{"canvas", "textRenderer"}, meta.InitNames())
}

func TestParseSource_GroupedTypes(t *testing.T) {
	source := `package grouped

type (
	//didi::component
	Alpha struct{}

	//didi::inject alpha
	Beta struct{}
)

func NewAlpha() Alpha { return Alpha{} }
`
	meta, err := NewParser().ParseSource("grouped.go", source)
	require.NoError(t, err)

	require.Len(t, meta.Components, 1)
	assert.Equal(t, "alpha", meta.Components[0].Name)
	require.Len(t, meta.Injections, 1)
	assert.Equal(t, "Beta", meta.Injections[0].TypeName)
}

func TestParseSource_NoAnnotations(t *testing.T) {
	meta, err := NewParser().ParseSource("plain.go", "package plain\n\ntype Foo struct{}\n")
	require.NoError(t, err)
	assert.True(t, meta.IsEmpty())
}

func TestParseSource_InvalidGo(t *testing.T) {
	_, err := NewParser().ParseSource("broken.go", "package broken\n\nfunc {")
	assert.ErrorContains(t, err, "failed to parse source")
}

func TestParseSource_Errors(t *testing.T) {
	tests := []struct {
		name     string
		source   string
		contains string
	}{
		{
			name:     "missing constructor",
			source:   "//didi::component\ntype Foo struct{}",
			contains: "constructor NewFoo for component 'foo' not found",
		},
		{
			name:     "constructor returns another type",
			source:   "//didi::component\ntype Foo struct{}\ntype Bar struct{}\nfunc NewFoo() *Bar { return nil }",
			contains: "constructor NewFoo returns *Bar, want Foo or *Foo",
		},
		{
			name:     "constructor parameters without inject",
			source:   "//didi::component\ntype Foo struct{}\nfunc NewFoo(a int) *Foo { return nil }",
			contains: "has no //didi::inject annotation",
		},
		{
			name:     "inject arity",
			source:   "//didi::inject a\n//didi::component\ntype Foo struct{}\nfunc NewFoo(a, b int) *Foo { return nil }",
			contains: "lists 1 identifier(s) but NewFoo takes 2 parameter(s)",
		},
		{
			name:     "variadic constructor",
			source:   "//didi::inject a\n//didi::component\ntype Foo struct{}\nfunc NewFoo(a ...int) *Foo { return nil }",
			contains: "variadic parameters are not supported",
		},
		{
			name:     "second result is not error",
			source:   "//didi::component\ntype Foo struct{}\nfunc NewFoo() (*Foo, int) { return nil, 0 }",
			contains: "must return T or (T, error)",
		},
		{
			name:     "no result",
			source:   "//didi::factory foo\nfunc NewFoo() {}",
			contains: "must return T or (T, error), got ()",
		},
		{
			name:     "duplicate component names",
			source:   "//didi::component shared\ntype Foo struct{}\nfunc NewFoo() *Foo { return nil }\n//didi::factory shared\nfunc Other() int { return 0 }",
			contains: "component 'shared' is registered twice",
		},
		{
			name:     "factory on a type",
			source:   "//didi::factory foo\ntype Foo struct{}",
			contains: "//didi::factory cannot annotate type Foo",
		},
		{
			name:     "inject on a function",
			source:   "//didi::inject a\nfunc Foo(a int) int { return a }",
			contains: "//didi::inject cannot annotate function Foo",
		},
		{
			name:     "annotated method",
			source:   "type Foo struct{}\n//didi::factory run\nfunc (f *Foo) Run() int { return 0 }",
			contains: "method Run cannot be annotated",
		},
		{
			name:     "repeated inject",
			source:   "//didi::inject a\n//didi::inject b\ntype Foo struct{}",
			contains: "more than one //didi::inject annotation",
		},
		{
			name:     "factory without dependencies",
			source:   "//didi::factory foo\nfunc Foo(a int) int { return a }",
			contains: "factory 'foo' takes 1 parameter(s) but names no dependencies",
		},
		{
			name:     "factory deps arity",
			source:   "//didi::factory foo -Deps=a\nfunc Foo(a, b int) int { return a }",
			contains: "factory 'foo' lists 1 dependencies but Foo takes 2 parameter(s)",
		},
		{
			name:     "factory result inject arity",
			source:   "//didi::inject a\ntype Foo struct{}\n//didi::factory foo\nfunc MakeFoo(a, b int) *Foo { return nil }",
			contains: "factory MakeFoo takes 2 parameter(s)",
		},
		{
			name:     "generic type",
			source:   "//didi::inject a\ntype Box[T any] struct{}",
			contains: "generic type Box cannot be annotated",
		},
		{
			name:     "generic factory",
			source:   "//didi::factory box\nfunc Box[T any]() T { var v T; return v }",
			contains: "generic functions cannot be registered",
		},
		{
			name:     "annotation syntax",
			source:   "//didi::inject 1canvas\ntype Foo struct{}",
			contains: "syntax error",
		},
		{
			name:     "annotation schema",
			source:   "//didi::component -Mode=Transient\ntype Foo struct{}",
			contains: "unknown parameter 'Mode'",
		},
		{
			name:     "reserved name",
			source:   "//didi::component injector\ntype Foo struct{}\nfunc NewFoo() *Foo { return nil }",
			contains: "invalid name 'injector'",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewParser().ParseSource("foo.go", "package foo\n\n"+tt.source+"\n")
			require.Error(t, err)

			var parseErrs *Errors
			require.ErrorAs(t, err, &parseErrs)
			assert.Equal(t, "foo", parseErrs.Package)
			assert.ErrorContains(t, err, tt.contains)

			var genErr *models.GeneratorError
			require.ErrorAs(t, err, &genErr)
			assert.Equal(t, "foo.go", genErr.File)
			assert.Positive(t, genErr.Line)
		})
	}
}

func TestParseSource_CollectsAllErrors(t *testing.T) {
	source := `package foo

//didi::component
type Foo struct{}

//didi::inject 1bad
type Bar struct{}
`
	meta, err := NewParser().ParseSource("foo.go", source)
	require.Error(t, err)
	require.NotNil(t, meta)

	var parseErrs *Errors
	require.ErrorAs(t, err, &parseErrs)
	require.Len(t, parseErrs.List, 2)
	assert.Contains(t, err.Error(), "package foo: 2 errors")

	syntax := parseErrs.List[0]
	assert.Equal(t, models.ErrorTypeAnnotationSyntax, syntax.Type)
	assert.Equal(t, 6, syntax.Line)
	assert.NotEmpty(t, syntax.Suggestions)

	missing := parseErrs.List[1]
	assert.Equal(t, models.ErrorTypeValidation, missing.Type)
	assert.Equal(t, 3, missing.Line)
	assert.Contains(t, missing.Suggestions, "Or name an existing function with -Ctor=<Func>")
}

func writeFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
}

func TestParseDirectory(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"bus.go": "package modeler\n\n//didi::component\ntype EventBus struct{}\n\nfunc NewEventBus() *EventBus { return nil }\n",
		"canvas.go": "package modeler\n\n//didi::inject eventBus\n//didi::component\ntype Canvas struct{}\n\n" +
			"func NewCanvas(bus *EventBus) *Canvas { return nil }\n",
		"canvas_test.go":  "package modeler\n\n//didi::component\ntype Broken struct{}\n",
		DefaultOutputFile: "this is not go",
		"notes.txt":       "ignored",
	})
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0o755))

	p := NewParser()
	files, err := p.SourceFiles(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"bus.go", "canvas.go"}, files)

	meta, err := p.ParseDirectory(dir)
	require.NoError(t, err)
	assert.Equal(t, "modeler", meta.PackageName)
	assert.Equal(t, dir, meta.PackagePath)
	assert.Equal(t, []string{"canvas", "eventBus"}, meta.ComponentNames())

	// Components resolve constructors declared in other files.
	assert.Equal(t, "eventBus", meta.Components[0].Name)
	assert.Equal(t, []string{"eventBus"}, meta.Components[1].Dependencies)
	assert.Equal(t, filepath.Join(dir, "canvas.go"), meta.Components[1].FileName)
}

func TestParseDirectory_CustomOutputFile(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"a.go":       "package a\n",
		"wiring.go":  "not go",
		"autogen.go": "package a\n",
	})

	files, err := NewParserWithOutput("wiring.go").SourceFiles(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.go", "autogen.go"}, files)
}

func TestParseDirectory_Errors(t *testing.T) {
	t.Run("missing directory", func(t *testing.T) {
		_, err := NewParser().ParseDirectory(filepath.Join(t.TempDir(), "nope"))
		assert.ErrorContains(t, err, "failed to read directory")
	})

	t.Run("no go files", func(t *testing.T) {
		dir := t.TempDir()
		_, err := NewParser().ParseDirectory(dir)
		assert.ErrorContains(t, err, "no Go packages found")
	})

	t.Run("mixed packages", func(t *testing.T) {
		dir := t.TempDir()
		writeFiles(t, dir, map[string]string{"a.go": "package a\n", "b.go": "package b\n"})
		_, err := NewParser().ParseDirectory(dir)
		assert.ErrorContains(t, err, "multiple packages found")
	})

	t.Run("syntax error", func(t *testing.T) {
		dir := t.TempDir()
		writeFiles(t, dir, map[string]string{"a.go": "package a\nfunc {"})
		_, err := NewParser().ParseDirectory(dir)
		assert.ErrorContains(t, err, "failed to parse")
	})

	t.Run("annotation errors", func(t *testing.T) {
		dir := t.TempDir()
		writeFiles(t, dir, map[string]string{"a.go": "package a\n\n//didi::component\ntype A struct{}\n"})
		_, err := NewParser().ParseDirectory(dir)

		var parseErrs *Errors
		require.True(t, errors.As(err, &parseErrs))
		assert.Len(t, parseErrs.List, 1)
	})
}
