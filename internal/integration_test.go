package internal

import (
	"go/ast"
	goparser "go/parser"
	"go/token"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toyz/didi/internal/generator"
	"github.com/toyz/didi/internal/parser"
	"github.com/toyz/didi/internal/utils"
)

const commandSource = `package command

//didi::inject eventBus injector
//didi::component -Init
type CommandStack struct{}

func NewCommandStack(bus any, injector any) *CommandStack { return &CommandStack{} }

//didi::component
type EventBus struct{}

func NewEventBus() (*EventBus, error) { return &EventBus{}, nil }

//didi::factory config.commandStack -Deps=eventBus
func CommandStackConfig(bus *EventBus) map[string]int { return map[string]int{"limit": 10} }
`

// TestGenerationPipeline runs a package directory through the parser and the
// generator, writes the result and checks a second pass is a no-op.
func TestGenerationPipeline(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "command.go"), []byte(commandSource), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "command_test.go"),
		[]byte("package command\n\n//didi::component\ntype Ignored struct{}\n"), 0o644))

	metadata, err := parser.NewParser().ParseDirectory(dir)
	require.NoError(t, err)
	assert.Equal(t, "command", metadata.PackageName)
	assert.Equal(t, []string{"commandStack", "config.commandStack", "eventBus"}, metadata.ComponentNames())

	gen := generator.NewGenerator()
	module, err := gen.GenerateModule(metadata)
	require.NoError(t, err)
	require.NoError(t, utils.FormatAndWriteGoFile(module.FilePath, module.Content))

	file, err := goparser.ParseFile(token.NewFileSet(), module.FilePath, nil, goparser.ParseComments)
	require.NoError(t, err)
	assert.True(t, ast.IsGenerated(file))

	var decls []string
	for _, decl := range file.Decls {
		switch d := decl.(type) {
		case *ast.FuncDecl:
			decls = append(decls, d.Name.Name)
		case *ast.GenDecl:
			for _, spec := range d.Specs {
				if v, ok := spec.(*ast.ValueSpec); ok {
					decls = append(decls, v.Names[0].Name)
				}
			}
		}
	}
	assert.Equal(t, []string{"init", "DidiModule", "FxModule"}, decls)

	// The generated file is skipped on the next parse.
	again, err := parser.NewParser().ParseDirectory(dir)
	require.NoError(t, err)
	second, err := gen.GenerateModule(again)
	require.NoError(t, err)
	assert.Equal(t, module.Content, second.Content)
}
