package generator

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/toyz/didi/internal/models"
	"github.com/toyz/didi/internal/parser"
	"github.com/toyz/didi/internal/templates"
	"github.com/toyz/didi/internal/utils"
)

// ErrNoAnnotations is returned for packages without //didi:: annotations
var ErrNoAnnotations = errors.New("package has no didi annotations")

// CodeGenerator renders the registration file of a package
type CodeGenerator interface {
	GenerateModule(metadata *models.PackageMetadata) (*models.GeneratedModule, error)
}

// Generator implements the CodeGenerator interface
type Generator struct {
	outputFile string
	fx         bool
}

// Option configures a Generator
type Option func(*Generator)

// WithOutputFile changes the generated file name
func WithOutputFile(name string) Option {
	return func(g *Generator) {
		if name != "" {
			g.outputFile = name
		}
	}
}

// WithFx toggles the FxModule function
func WithFx(enabled bool) Option {
	return func(g *Generator) {
		g.fx = enabled
	}
}

// NewGenerator creates a new code generator instance
func NewGenerator(opts ...Option) *Generator {
	g := &Generator{
		outputFile: parser.DefaultOutputFile,
		fx:         true,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// GenerateModule renders and formats the registration file for metadata
func (g *Generator) GenerateModule(metadata *models.PackageMetadata) (*models.GeneratedModule, error) {
	if metadata == nil {
		return nil, fmt.Errorf("metadata cannot be nil")
	}
	if metadata.IsEmpty() {
		return nil, ErrNoAnnotations
	}

	filePath := filepath.Join(metadata.PackagePath, g.outputFile)
	content, err := g.render(metadata)
	if err != nil {
		return nil, &models.GeneratorError{
			Type:    models.ErrorTypeGeneration,
			File:    filePath,
			Message: "failed to render module",
			Cause:   err,
		}
	}

	formatted, err := utils.FormatGoCodeString(filePath, content)
	if err != nil {
		return nil, &models.GeneratorError{
			Type:    models.ErrorTypeGeneration,
			File:    filePath,
			Message: "generated code does not compile",
			Cause:   err,
			Context: map[string]any{"source": content},
		}
	}

	return &models.GeneratedModule{
		PackageName: metadata.PackageName,
		FilePath:    filePath,
		Content:     formatted,
		Components:  len(metadata.Components) + len(metadata.Factories),
		Injections:  len(metadata.Injections),
	}, nil
}

func (g *Generator) render(metadata *models.PackageMetadata) (string, error) {
	data := templates.ModuleData{
		PackageName: metadata.PackageName,
		Init:        metadata.InitNames(),
		Fx:          g.fx,
	}

	for _, inj := range metadata.Injections {
		data.Injections = append(data.Injections, templates.InjectionData{
			TypeName:     inj.TypeName,
			Dependencies: inj.Dependencies,
		})
	}
	for _, comp := range metadata.Components {
		data.Providers = append(data.Providers, templates.ProviderData{
			Name:     comp.Name,
			Kind:     templates.ProviderType,
			Function: comp.Constructor,
		})
	}
	for _, factory := range metadata.Factories {
		provider := templates.ProviderData{
			Name:     factory.Name,
			Kind:     templates.ProviderFactory,
			Function: factory.FunctionName,
		}
		// Factories without -Deps read the inject list of their result type.
		if factory.Explicit {
			provider.Deps = factory.Dependencies
		}
		data.Providers = append(data.Providers, provider)
	}

	imports := templates.NewImportManager()
	imports.AddImport(templates.RuntimeImport)
	if g.fx && metadata.HasModule() {
		imports.AddImport(templates.FxImport)
	}
	data.Imports = imports.GenerateImports()

	return templates.RenderModule(data)
}
