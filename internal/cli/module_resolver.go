package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/toyz/didi/internal/utils"
)

// ModuleResolver handles resolving Go module information
type ModuleResolver struct {
	goMod *utils.GoModParser
}

// NewModuleResolver creates a new module resolver
func NewModuleResolver() *ModuleResolver {
	return &ModuleResolver{
		goMod: utils.NewGoModParser(nil),
	}
}

// ModuleInfo is a module path together with the directory it is rooted at
type ModuleInfo struct {
	Path string
	Root string
}

// ResolveModule finds the module for the working directory. If customModule
// is provided it replaces the path read from go.mod, and the working
// directory becomes the root when no go.mod exists.
func (r *ModuleResolver) ResolveModule(customModule string) (ModuleInfo, error) {
	currentDir, err := os.Getwd()
	if err != nil {
		return ModuleInfo{}, fmt.Errorf("failed to get current directory: %w", err)
	}

	goModPath, findErr := r.goMod.FindGoModFile(currentDir)
	if customModule != "" {
		root := currentDir
		if findErr == nil {
			root = filepath.Dir(goModPath)
		}
		return ModuleInfo{Path: customModule, Root: root}, nil
	}
	if findErr != nil {
		return ModuleInfo{}, fmt.Errorf("failed to determine module name: %w (consider using --module flag)", findErr)
	}

	moduleName, err := r.goMod.ParseModuleName(goModPath)
	if err != nil {
		return ModuleInfo{}, fmt.Errorf("failed to determine module name: %w (consider using --module flag)", err)
	}
	return ModuleInfo{Path: moduleName, Root: filepath.Dir(goModPath)}, nil
}

// ResolveModuleName resolves the module name for imports
func (r *ModuleResolver) ResolveModuleName(customModule string) (string, error) {
	info, err := r.ResolveModule(customModule)
	if err != nil {
		return "", err
	}
	return info.Path, nil
}

// BuildPackagePath builds the full import path for a package directory
func (r *ModuleResolver) BuildPackagePath(module ModuleInfo, packageDir string) (string, error) {
	absPackageDir, err := filepath.Abs(packageDir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve package directory: %w", err)
	}
	return utils.JoinImportPath(module.Path, module.Root, absPackageDir)
}
