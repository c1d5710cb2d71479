package utils

import (
	"fmt"
	"path/filepath"
	"strings"

	"golang.org/x/mod/modfile"
)

// GoModParser provides utilities for parsing go.mod files
type GoModParser struct {
	fileReader *FileReader
}

// NewGoModParser creates a new go.mod parser with caching
func NewGoModParser(fileReader *FileReader) *GoModParser {
	if fileReader == nil {
		fileReader = NewFileReader()
	}
	return &GoModParser{
		fileReader: fileReader,
	}
}

// ParseModuleName extracts the module path from a go.mod file
func (p *GoModParser) ParseModuleName(goModPath string) (string, error) {
	cleanPath := filepath.Clean(goModPath)
	if filepath.Base(cleanPath) != "go.mod" {
		return "", fmt.Errorf("file is not a go.mod file: %s", goModPath)
	}

	content, err := p.fileReader.ReadFile(cleanPath)
	if err != nil {
		return "", fmt.Errorf("failed to read go.mod file: %w", err)
	}

	modFile, err := modfile.ParseLax(cleanPath, []byte(content), nil)
	if err != nil {
		return "", fmt.Errorf("failed to parse go.mod file: %w", err)
	}
	if modFile.Module == nil || modFile.Module.Mod.Path == "" {
		return "", fmt.Errorf("no module declaration found in %s", cleanPath)
	}

	return modFile.Module.Mod.Path, nil
}

// FindGoModFile searches for go.mod starting at startDir and walking up
func (p *GoModParser) FindGoModFile(startDir string) (string, error) {
	currentDir, err := filepath.Abs(startDir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", startDir, err)
	}

	for {
		goModPath := filepath.Join(currentDir, "go.mod")
		if p.fileReader.Exists(goModPath) {
			return goModPath, nil
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			break
		}
		currentDir = parentDir
	}

	return "", fmt.Errorf("go.mod file not found above %s", startDir)
}

// ImportPath returns the import path of the package in dir, computed from
// the nearest go.mod
func (p *GoModParser) ImportPath(dir string) (string, error) {
	goModPath, err := p.FindGoModFile(dir)
	if err != nil {
		return "", err
	}
	modulePath, err := p.ParseModuleName(goModPath)
	if err != nil {
		return "", err
	}

	absDir, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", dir, err)
	}
	return JoinImportPath(modulePath, filepath.Dir(goModPath), absDir)
}

// JoinImportPath appends the path of dir relative to root to modulePath
func JoinImportPath(modulePath, root, dir string) (string, error) {
	rel, err := filepath.Rel(root, dir)
	if err != nil {
		return "", fmt.Errorf("failed to calculate relative path: %w", err)
	}
	rel = filepath.ToSlash(rel)

	switch {
	case rel == ".":
		return modulePath, nil
	case rel == ".." || strings.HasPrefix(rel, "../"):
		return "", fmt.Errorf("%s is outside module root %s", dir, root)
	default:
		return modulePath + "/" + rel, nil
	}
}
