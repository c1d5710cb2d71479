package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// FileProcessor finds package directories and the generated files in them
type FileProcessor struct {
	outputFile string
}

// NewFileProcessor creates a file processor that treats outputFile as the
// generated file name
func NewFileProcessor(outputFile string) *FileProcessor {
	return &FileProcessor{outputFile: outputFile}
}

// FileFilter defines a function that determines whether a file should be processed
type FileFilter func(path string, info os.DirEntry) bool

// DirectoryFilter defines a function that determines whether a directory should be processed
type DirectoryFilter func(path string, info os.DirEntry) bool

// SourceFileFilter accepts .go files other than tests and outputFile
func SourceFileFilter(outputFile string) FileFilter {
	return func(path string, info os.DirEntry) bool {
		if info.IsDir() {
			return false
		}

		name := info.Name()
		return strings.HasSuffix(name, ".go") &&
			!strings.HasSuffix(name, "_test.go") &&
			name != outputFile
	}
}

var skipDirs = map[string]bool{
	"vendor":       true,
	"node_modules": true,
	"testdata":     true,
}

// SkipDirectoryName reports whether a directory called name is never
// scanned. The go tool ignores "." and "_" prefixed directories as well.
func SkipDirectoryName(name string) bool {
	return strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_") || skipDirs[name]
}

// DefaultDirectoryFilter skips common directories that shouldn't contain source code
func DefaultDirectoryFilter() DirectoryFilter {
	return func(path string, info os.DirEntry) bool {
		if !info.IsDir() {
			return true
		}
		return !SkipDirectoryName(info.Name())
	}
}

// ScanDirectoriesWithGoFiles returns the directories under rootDirs that
// hold Go sources, each at most once, sorted
func (fp *FileProcessor) ScanDirectoriesWithGoFiles(rootDirs []string, recursive bool) ([]string, error) {
	var packageDirs []string
	visited := make(map[string]bool)

	for _, rootDir := range rootDirs {
		dirs, err := fp.scanDirectory(rootDir, recursive, visited)
		if err != nil {
			return nil, err
		}
		packageDirs = append(packageDirs, dirs...)
	}

	slices.Sort(packageDirs)
	return packageDirs, nil
}

func (fp *FileProcessor) scanDirectory(dir string, recursive bool, visited map[string]bool) ([]string, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve path %s: %w", dir, err)
	}
	if visited[absDir] {
		return nil, nil
	}
	visited[absDir] = true

	entries, err := os.ReadDir(absDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	var packageDirs []string
	fileFilter := SourceFileFilter(fp.outputFile)
	directoryFilter := DefaultDirectoryFilter()

	for _, entry := range entries {
		if fileFilter(filepath.Join(absDir, entry.Name()), entry) {
			packageDirs = append(packageDirs, absDir)
			break
		}
	}
	if !recursive {
		return packageDirs, nil
	}

	for _, entry := range entries {
		entryPath := filepath.Join(absDir, entry.Name())
		if !entry.IsDir() || !directoryFilter(entryPath, entry) {
			continue
		}
		subDirs, err := fp.scanDirectory(entryPath, true, visited)
		if err != nil {
			return nil, err
		}
		packageDirs = append(packageDirs, subDirs...)
	}

	return packageDirs, nil
}

// HasGoFiles checks if a directory contains any source files
func (fp *FileProcessor) HasGoFiles(dir string) (bool, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return false, err
	}

	fileFilter := SourceFileFilter(fp.outputFile)
	for _, entry := range entries {
		if fileFilter(filepath.Join(dir, entry.Name()), entry) {
			return true, nil
		}
	}
	return false, nil
}

// GeneratedFiles returns the generated files present in dirs
func (fp *FileProcessor) GeneratedFiles(dirs []string) ([]string, error) {
	var found []string
	for _, dir := range dirs {
		path := filepath.Join(dir, fp.outputFile)
		stat, err := os.Stat(path)
		switch {
		case os.IsNotExist(err):
			continue
		case err != nil:
			return found, fmt.Errorf("failed to check file %s: %w", path, err)
		case stat.Mode().IsRegular():
			found = append(found, path)
		}
	}
	return found, nil
}

// OutputFile returns the generated file name
func (fp *FileProcessor) OutputFile() string {
	return fp.outputFile
}
