package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/toyz/didi/internal/models"
)

// Output formats understood by WriteInspection
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
	FormatTOML = "toml"
)

// InspectFormats lists the accepted --format values
var InspectFormats = []string{FormatText, FormatJSON, FormatYAML, FormatTOML}

// Inspection is the document written by didi inspect
type Inspection struct {
	Module     string                    `json:"module,omitempty" yaml:"module,omitempty" toml:"module,omitempty"`
	Packages   []*models.PackageMetadata `json:"packages" yaml:"packages" toml:"packages"`
	Unresolved []string                  `json:"unresolved,omitempty" yaml:"unresolved,omitempty" toml:"unresolved,omitempty"`
}

// Inspect parses the configured directories without generating anything
func (g *Generator) Inspect() (*Inspection, error) {
	g.summary = GenerationSummary{}
	packages, err := g.Load()
	if err != nil {
		return nil, err
	}

	// Unresolved names are part of the report here, not warnings.
	strict, reporter := g.config.Strict, g.reporter
	g.config.Strict, g.reporter = false, NewDiagnosticReporterTo(io.Discard, false)
	err = g.checkDependencies(packages)
	g.config.Strict, g.reporter = strict, reporter
	if err != nil {
		return nil, err
	}

	inspection := &Inspection{
		Packages:   packages,
		Unresolved: g.summary.Unresolved,
	}
	if module, err := g.moduleResolver.ResolveModuleName(g.config.ModuleName); err == nil {
		inspection.Module = module
	}
	return inspection, nil
}

// WriteInspection encodes inspection to w in format
func WriteInspection(w io.Writer, inspection *Inspection, format string) error {
	switch strings.ToLower(format) {
	case FormatText, "":
		return writeInspectionText(w, inspection)
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(inspection)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(inspection); err != nil {
			return err
		}
		return enc.Close()
	case FormatTOML:
		return toml.NewEncoder(w).Encode(inspection)
	default:
		return fmt.Errorf("unknown format %q (want one of %s)", format, strings.Join(InspectFormats, ", "))
	}
}

func writeInspectionText(w io.Writer, inspection *Inspection) error {
	var b strings.Builder
	if inspection.Module != "" {
		fmt.Fprintf(&b, "module %s\n\n", inspection.Module)
	}
	for _, pkg := range inspection.Packages {
		name := pkg.ImportPath
		if name == "" {
			name = pkg.PackagePath
		}
		fmt.Fprintf(&b, "package %s (%s)\n", pkg.PackageName, name)
		if pkg.IsEmpty() {
			b.WriteString("  no annotations\n")
		}
		for _, inj := range pkg.Injections {
			fmt.Fprintf(&b, "  inject    %s <- %s\n", inj.TypeName, strings.Join(inj.Dependencies, ", "))
		}
		for _, comp := range pkg.Components {
			fmt.Fprintf(&b, "  component %s = %s()%s\n", comp.Name, comp.Constructor, initMarker(comp.Init))
		}
		for _, factory := range pkg.Factories {
			deps := ""
			if factory.Explicit {
				deps = " <- " + strings.Join(factory.Dependencies, ", ")
			}
			fmt.Fprintf(&b, "  factory   %s = %s()%s%s\n", factory.Name, factory.FunctionName, deps, initMarker(factory.Init))
		}
		b.WriteString("\n")
	}
	if len(inspection.Unresolved) > 0 {
		fmt.Fprintf(&b, "unresolved: %s\n", strings.Join(inspection.Unresolved, ", "))
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func initMarker(init bool) string {
	if init {
		return " [init]"
	}
	return ""
}
