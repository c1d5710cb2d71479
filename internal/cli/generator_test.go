package cli

import (
	"bytes"
	stderrors "errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toyz/didi/internal/errors"
	"github.com/toyz/didi/internal/models"
	"github.com/toyz/didi/internal/parser"
	"github.com/toyz/didi/internal/templates"
	"github.com/toyz/didi/internal/utils"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	os.Exit(m.Run())
}

const busSource = `package modeler

//didi::component
type EventBus struct{}

func NewEventBus() *EventBus { return &EventBus{} }
`

const canvasSource = `package modeler

//didi::inject eventBus
//didi::component -Init
type Canvas struct{ bus *EventBus }

func NewCanvas(bus *EventBus) *Canvas { return &Canvas{bus: bus} }
`

func writeFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
}

// newWorkspace creates a module in a temp directory and makes it the
// working directory
func newWorkspace(t *testing.T, files map[string]string) string {
	t.Helper()
	dir, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)
	writeFiles(t, dir, map[string]string{"go.mod": "module example.com/app\n\ngo 1.25\n"})
	writeFiles(t, dir, files)
	t.Chdir(dir)
	return dir
}

func newTestGenerator(config Config) (*Generator, *bytes.Buffer) {
	diagnostics := utils.NewQuietDiagnostics()
	diagnostics.SetOutput(io.Discard, io.Discard)

	out := &bytes.Buffer{}
	g := NewGenerator(config, diagnostics)
	g.SetReporter(NewDiagnosticReporterTo(out, false))
	return g, out
}

func testConfig() Config {
	config := DefaultConfig()
	config.Directories = []string{"./..."}
	return config
}

func TestGenerator_Run(t *testing.T) {
	dir := newWorkspace(t, map[string]string{
		"modeler/bus.go":    busSource,
		"modeler/canvas.go": canvasSource,
		"plain/plain.go":    "package plain\n\nfunc Hello() string { return \"hi\" }\n",
	})

	g, _ := newTestGenerator(testConfig())
	require.NoError(t, g.Run())

	target := filepath.Join(dir, "modeler", parser.DefaultOutputFile)
	content, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Contains(t, string(content), templates.GeneratedHeader)
	assert.Contains(t, string(content), `didi.AnnotateType[Canvas]("eventBus")`)
	assert.Contains(t, string(content), `Provide("canvas", didi.Type(NewCanvas)).`)
	assert.Contains(t, string(content), `Provide("eventBus", didi.Type(NewEventBus)).`)
	assert.Contains(t, string(content), `InitWith("canvas")`)
	assert.Contains(t, string(content), "func FxModule() fx.Option")
	assert.NoFileExists(t, filepath.Join(dir, "plain", parser.DefaultOutputFile))

	summary := g.GetSummary()
	assert.Equal(t, 2, summary.PackagesProcessed)
	assert.Equal(t, 1, summary.ModulesGenerated)
	assert.Equal(t, 2, summary.ComponentsFound)
	assert.Equal(t, 1, summary.InjectionsFound)
	assert.Equal(t, []string{target}, summary.GeneratedFiles)

	// A second run leaves the file alone.
	require.NoError(t, g.Run())
	assert.Equal(t, 0, g.GetSummary().ModulesGenerated)
	assert.Equal(t, 1, g.GetSummary().ModulesUnchanged)
}

func TestGenerator_RunCustomOutputWithoutFx(t *testing.T) {
	dir := newWorkspace(t, map[string]string{"bus.go": busSource})

	config := testConfig()
	config.Directories = []string{"."}
	config.OutputFile = "wiring.go"
	config.Fx = false

	g, _ := newTestGenerator(config)
	require.NoError(t, g.Run())

	content, err := os.ReadFile(filepath.Join(dir, "wiring.go"))
	require.NoError(t, err)
	assert.NotContains(t, string(content), "FxModule")
	assert.NoFileExists(t, filepath.Join(dir, parser.DefaultOutputFile))
}

func TestGenerator_Check(t *testing.T) {
	dir := newWorkspace(t, map[string]string{"modeler/bus.go": busSource})
	target := filepath.Join(dir, "modeler", parser.DefaultOutputFile)

	g, _ := newTestGenerator(testConfig())
	require.NoError(t, g.Run())
	before, err := os.ReadFile(target)
	require.NoError(t, err)

	config := testConfig()
	config.Check = true
	check, out := newTestGenerator(config)
	require.NoError(t, check.Run(), "fresh files pass the check")

	writeFiles(t, dir, map[string]string{"modeler/canvas.go": canvasSource})
	err = check.Run()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrOutOfDate)
	assert.Equal(t, []string{target}, check.GetSummary().OutOfDate)

	after, readErr := os.ReadFile(target)
	require.NoError(t, readErr)
	assert.Equal(t, before, after, "check mode never writes")
	assert.Contains(t, out.String(), "+\tProvide(\"canvas\", didi.Type(NewCanvas)).")
	assert.Contains(t, out.String(), "--- "+target)
}

func TestGenerator_RemovesStaleFiles(t *testing.T) {
	dir := newWorkspace(t, map[string]string{
		"modeler/bus.go": busSource,
		"foreign/a.go":   "package foreign\n",
		"foreign/" + parser.DefaultOutputFile: "package foreign\n\n// written by hand\n",
	})
	target := filepath.Join(dir, "modeler", parser.DefaultOutputFile)

	g, _ := newTestGenerator(testConfig())
	require.NoError(t, g.Run())
	require.FileExists(t, target)

	writeFiles(t, dir, map[string]string{"modeler/bus.go": "package modeler\n\ntype EventBus struct{}\n"})

	config := testConfig()
	config.Check = true
	check, out := newTestGenerator(config)
	assert.ErrorIs(t, check.Run(), ErrOutOfDate)
	assert.Contains(t, out.String(), "should be removed")
	require.FileExists(t, target)

	require.NoError(t, g.Run())
	assert.NoFileExists(t, target)
	assert.Equal(t, []string{target}, g.GetSummary().RemovedFiles)
	assert.FileExists(t, filepath.Join(dir, "foreign", parser.DefaultOutputFile))
}

func TestGenerator_UnresolvedDependencies(t *testing.T) {
	files := map[string]string{
		"modeler/bus.go": busSource,
		"modeler/palette.go": `package modeler

//didi::inject eventBus commandStack
type Palette struct{}
`,
		"shapes/shapes.go": `package shapes

//didi::factory shapeFactory -Deps=eventBus,injector
func NewShapeFactory(bus any, injector any) int { return 0 }
`,
	}

	t.Run("warns by default", func(t *testing.T) {
		newWorkspace(t, files)
		g, out := newTestGenerator(testConfig())
		require.NoError(t, g.Run())

		assert.Equal(t, []string{"commandStack"}, g.GetSummary().Unresolved)
		assert.Contains(t, out.String(), "Palette depends on 'commandStack', which no scanned package provides")
		assert.NotContains(t, out.String(), "'eventBus'", "dependencies from other packages resolve")
	})

	t.Run("fails when strict", func(t *testing.T) {
		dir := newWorkspace(t, files)
		config := testConfig()
		config.Strict = true
		g, _ := newTestGenerator(config)

		err := g.Run()
		var multi *errors.MultipleErrors
		require.ErrorAs(t, err, &multi)
		require.Len(t, multi.Errors, 1)
		assert.Equal(t, errors.DependencyErrorCode, multi.Errors[0].ErrorCode())
		assert.Equal(t, filepath.Join(dir, "modeler", "palette.go"), multi.Errors[0].Location().File)
		assert.Contains(t, err.Error(), "component 'Palette': dependency 'commandStack' is not provided")
		assert.NoFileExists(t, filepath.Join(dir, "modeler", parser.DefaultOutputFile))
	})
}

func TestGenerator_CollectsParseErrors(t *testing.T) {
	newWorkspace(t, map[string]string{
		"a/a.go": "package a\n\n//didi::component\ntype Missing struct{}\n",
		"b/b.go": "package b\n\n//didi::inject\ntype Empty struct{}\n",
		"c/c.go": busSource,
	})

	g, _ := newTestGenerator(testConfig())
	err := g.Run()
	require.Error(t, err)

	leaves := flattenErrors(err)
	require.Len(t, leaves, 2)
	for _, leaf := range leaves {
		var genErr *models.GeneratorError
		assert.True(t, stderrors.As(leaf, &genErr), leaf.Error())
	}
	assert.Contains(t, err.Error(), "constructor NewMissing for component 'missing' not found")
}

func TestGenerator_LoadErrors(t *testing.T) {
	t.Run("no packages", func(t *testing.T) {
		newWorkspace(t, nil)
		g, _ := newTestGenerator(testConfig())

		var genErr *models.GeneratorError
		require.ErrorAs(t, g.Run(), &genErr)
		assert.Equal(t, "No Go packages found in specified directories", genErr.Message)
	})

	t.Run("missing directory", func(t *testing.T) {
		newWorkspace(t, nil)
		config := testConfig()
		config.Directories = []string{"./nope"}
		g, _ := newTestGenerator(config)

		var genErr *models.GeneratorError
		require.ErrorAs(t, g.Run(), &genErr)
		assert.Equal(t, models.ErrorTypeFileSystem, genErr.Type)
	})
}

func TestGenerator_CachesParsedPackages(t *testing.T) {
	dir := newWorkspace(t, map[string]string{"modeler/bus.go": busSource})
	pkgDir := filepath.Join(dir, "modeler")

	g, _ := newTestGenerator(testConfig())
	first, err := g.parsePackage(pkgDir)
	require.NoError(t, err)
	second, err := g.parsePackage(pkgDir)
	require.NoError(t, err)
	assert.Same(t, first, second)

	writeFiles(t, pkgDir, map[string]string{"canvas.go": canvasSource})
	third, err := g.parsePackage(pkgDir)
	require.NoError(t, err)
	assert.NotSame(t, first, third)
	assert.Len(t, third.Components, 2)
}
