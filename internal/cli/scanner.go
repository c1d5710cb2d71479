package cli

import (
	"io/fs"
	"path/filepath"
	"slices"
	"strings"

	"github.com/toyz/didi/internal/errors"
	"github.com/toyz/didi/internal/utils"
)

// DirectoryScanner handles recursive directory scanning for Go files
type DirectoryScanner struct {
	fileProcessor *utils.FileProcessor
}

// NewDirectoryScanner creates a scanner that ignores outputFile when
// deciding whether a directory holds sources
func NewDirectoryScanner(outputFile string) *DirectoryScanner {
	return &DirectoryScanner{
		fileProcessor: utils.NewFileProcessor(outputFile),
	}
}

// ScanDirectories returns the package directories matched by patterns.
// A pattern ending in "/..." matches the directory and everything below it.
func (s *DirectoryScanner) ScanDirectories(patterns []string) ([]string, error) {
	var flat, recursive []string

	for _, pattern := range patterns {
		dir, isRecursive := SplitPattern(pattern)
		cleanPath, err := filepath.Abs(dir)
		if err != nil {
			return nil, errors.WrapWithOperation("resolve", "path "+dir, err)
		}
		if isRecursive {
			recursive = append(recursive, cleanPath)
		} else {
			flat = append(flat, cleanPath)
		}
	}

	dirs, err := s.fileProcessor.ScanDirectoriesWithGoFiles(recursive, true)
	if err != nil {
		return nil, errors.WrapWithOperation("scan", "directories", err)
	}
	flatDirs, err := s.fileProcessor.ScanDirectoriesWithGoFiles(flat, false)
	if err != nil {
		return nil, errors.WrapWithOperation("scan", "directories", err)
	}

	return mergeSorted(dirs, flatDirs), nil
}

// GeneratedFiles returns the generated files in the directories matched by
// patterns
func (s *DirectoryScanner) GeneratedFiles(patterns []string) ([]string, error) {
	dirs, err := s.WatchDirectories(patterns)
	if err != nil {
		return nil, err
	}
	return s.fileProcessor.GeneratedFiles(dirs)
}

// WatchDirectories returns every directory matched by patterns, including
// ones that hold no Go files yet
func (s *DirectoryScanner) WatchDirectories(patterns []string) ([]string, error) {
	var dirs []string
	for _, pattern := range patterns {
		dir, isRecursive := SplitPattern(pattern)
		absDir, err := filepath.Abs(dir)
		if err != nil {
			return nil, errors.WrapWithOperation("resolve", "path "+dir, err)
		}
		dirs = append(dirs, absDir)
		if isRecursive {
			below, err := subdirectories(absDir)
			if err != nil {
				return nil, errors.WrapWithOperation("scan", "directory "+dir, err)
			}
			dirs = append(dirs, below...)
		}
	}
	return slices.Compact(dirs), nil
}

// SplitPattern separates the "/..." suffix from a directory pattern
func SplitPattern(pattern string) (dir string, recursive bool) {
	if pattern == "..." {
		return ".", true
	}
	if base, ok := strings.CutSuffix(filepath.ToSlash(pattern), "/..."); ok {
		if base == "" {
			base = "."
		}
		return filepath.FromSlash(base), true
	}
	return pattern, false
}

func mergeSorted(a, b []string) []string {
	seen := make(map[string]bool, len(a)+len(b))
	var out []string
	for _, dir := range append(a, b...) {
		if !seen[dir] {
			seen[dir] = true
			out = append(out, dir)
		}
	}
	slices.Sort(out)
	return out
}

// subdirectories lists every directory below root the scanner would visit
func subdirectories(root string) ([]string, error) {
	filter := utils.DefaultDirectoryFilter()
	var dirs []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() || path == root {
			return nil
		}
		if !filter(path, d) {
			return filepath.SkipDir
		}
		dirs = append(dirs, path)
		return nil
	})
	return dirs, err
}
