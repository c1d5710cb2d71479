package templates

import (
	"fmt"
	"slices"
	"strings"
)

// ImportManager collects the imports of a generated file
type ImportManager struct {
	imports map[string]string // path -> alias, "" for none
}

// NewImportManager creates a new import manager
func NewImportManager() *ImportManager {
	return &ImportManager{
		imports: make(map[string]string),
	}
}

// AddImport adds an import without an alias
func (im *ImportManager) AddImport(importPath string) {
	if importPath == "" {
		return
	}
	if _, exists := im.imports[importPath]; !exists {
		im.imports[importPath] = ""
	}
}

// AddPackageImport adds an import under alias, replacing any earlier alias
func (im *ImportManager) AddPackageImport(alias, importPath string) {
	if importPath != "" {
		im.imports[importPath] = alias
	}
}

// Has reports whether importPath was added
func (im *ImportManager) Has(importPath string) bool {
	_, exists := im.imports[importPath]
	return exists
}

// Len returns the number of imports
func (im *ImportManager) Len() int {
	return len(im.imports)
}

// GenerateImports renders the import section, standard library first
func (im *ImportManager) GenerateImports() string {
	var std, other []string
	for path := range im.imports {
		if isStandardLibrary(path) {
			std = append(std, path)
		} else {
			other = append(other, path)
		}
	}
	slices.Sort(std)
	slices.Sort(other)

	var lines []string
	for _, path := range std {
		lines = append(lines, im.spec(path))
	}
	if len(std) > 0 && len(other) > 0 {
		lines = append(lines, "")
	}
	for _, path := range other {
		lines = append(lines, im.spec(path))
	}

	switch len(lines) {
	case 0:
		return ""
	case 1:
		return fmt.Sprintf("import %s\n", lines[0])
	}

	var result strings.Builder
	result.WriteString("import (\n")
	for _, line := range lines {
		if line == "" {
			result.WriteString("\n")
			continue
		}
		result.WriteString("\t" + line + "\n")
	}
	result.WriteString(")\n")
	return result.String()
}

func (im *ImportManager) spec(path string) string {
	if alias := im.imports[path]; alias != "" {
		return fmt.Sprintf("%s %q", alias, path)
	}
	return fmt.Sprintf("%q", path)
}

// isStandardLibrary uses the go tool's rule: no dot in the first element
func isStandardLibrary(path string) bool {
	first, _, _ := strings.Cut(path, "/")
	return !strings.Contains(first, ".")
}
