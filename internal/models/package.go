package models

import (
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"
)

// PackageMetadata represents all annotations found in a package
type PackageMetadata struct {
	PackageName string              `json:"package" yaml:"package" toml:"package"`
	PackagePath string              `json:"path" yaml:"path" toml:"path"`
	ImportPath  string              `json:"import_path,omitempty" yaml:"import_path,omitempty" toml:"import_path,omitempty"`
	Injections  []InjectionMetadata `json:"injections,omitempty" yaml:"injections,omitempty" toml:"injections,omitempty"`
	Components  []ComponentMetadata `json:"components,omitempty" yaml:"components,omitempty" toml:"components,omitempty"`
	Factories   []FactoryMetadata   `json:"factories,omitempty" yaml:"factories,omitempty" toml:"factories,omitempty"`
}

// InjectionMetadata is a type carrying a //didi::inject list
type InjectionMetadata struct {
	TypeName     string   `json:"type" yaml:"type" toml:"type"`
	Dependencies []string `json:"dependencies" yaml:"dependencies" toml:"dependencies"`
	SourceTrait `yaml:",inline"`
}

// ComponentMetadata is a type registered with //didi::component
type ComponentMetadata struct {
	Name         string   `json:"name" yaml:"name" toml:"name"`
	TypeName     string   `json:"type" yaml:"type" toml:"type"`
	Constructor  string   `json:"constructor" yaml:"constructor" toml:"constructor"`
	Init         bool     `json:"init,omitempty" yaml:"init,omitempty" toml:"init,omitempty"`
	Dependencies []string `json:"dependencies,omitempty" yaml:"dependencies,omitempty" toml:"dependencies,omitempty"`
	ParamCount   int      `json:"-" yaml:"-" toml:"-"`
	ReturnsError bool     `json:"returns_error,omitempty" yaml:"returns_error,omitempty" toml:"returns_error,omitempty"`
	SourceTrait `yaml:",inline"`
}

// FactoryMetadata is a function registered with //didi::factory
type FactoryMetadata struct {
	Name         string   `json:"name" yaml:"name" toml:"name"`
	FunctionName string   `json:"function" yaml:"function" toml:"function"`
	Dependencies []string `json:"dependencies,omitempty" yaml:"dependencies,omitempty" toml:"dependencies,omitempty"`
	Explicit     bool     `json:"-" yaml:"-" toml:"-"`
	Init         bool     `json:"init,omitempty" yaml:"init,omitempty" toml:"init,omitempty"`
	ResultType   string   `json:"result" yaml:"result" toml:"result"`
	ParamCount   int      `json:"-" yaml:"-" toml:"-"`
	ReturnsError bool     `json:"returns_error,omitempty" yaml:"returns_error,omitempty" toml:"returns_error,omitempty"`
	SourceTrait `yaml:",inline"`
}

// ModuleReference represents a reference to a generated module
type ModuleReference struct {
	PackageName string // name of the package
	PackagePath string // import path for the package
	ModuleName  string // name of the module variable
}

// IsEmpty reports whether the package has nothing to generate
func (p *PackageMetadata) IsEmpty() bool {
	return len(p.Injections) == 0 && len(p.Components) == 0 && len(p.Factories) == 0
}

// HasModule reports whether the package registers any component
func (p *PackageMetadata) HasModule() bool {
	return len(p.Components) > 0 || len(p.Factories) > 0
}

// InitNames returns the components built eagerly, in declaration order
func (p *PackageMetadata) InitNames() []string {
	var names []string
	for _, c := range p.Components {
		if c.Init {
			names = append(names, c.Name)
		}
	}
	for _, f := range p.Factories {
		if f.Init {
			names = append(names, f.Name)
		}
	}
	return names
}

// ComponentNames returns every registered name, sorted
func (p *PackageMetadata) ComponentNames() []string {
	names := make([]string, 0, len(p.Components)+len(p.Factories))
	for _, c := range p.Components {
		names = append(names, c.Name)
	}
	for _, f := range p.Factories {
		names = append(names, f.Name)
	}
	slices.Sort(names)
	return names
}

// Injection returns the inject list recorded for typeName
func (p *PackageMetadata) Injection(typeName string) (InjectionMetadata, bool) {
	for _, inj := range p.Injections {
		if inj.TypeName == typeName {
			return inj, true
		}
	}
	return InjectionMetadata{}, false
}

// DefaultComponentName lower-cases the first rune of a type name, so
// "EventBus" becomes "eventBus".
func DefaultComponentName(typeName string) string {
	r, size := utf8.DecodeRuneInString(typeName)
	if r == utf8.RuneError {
		return typeName
	}
	return string(unicode.ToLower(r)) + typeName[size:]
}

// DefaultConstructorName returns the conventional constructor for typeName
func DefaultConstructorName(typeName string) string {
	return "New" + strings.TrimPrefix(typeName, "*")
}
