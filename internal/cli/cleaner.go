package cli

import (
	"bufio"
	"os"
	"strings"

	"github.com/toyz/didi/internal/errors"
	"github.com/toyz/didi/internal/templates"
)

// Cleaner handles cleaning up generated files
type Cleaner struct {
	scanner *DirectoryScanner
}

// NewCleaner creates a cleaner for generated files named outputFile
func NewCleaner(outputFile string) *Cleaner {
	if outputFile == "" {
		outputFile = DefaultConfig().OutputFile
	}
	return &Cleaner{
		scanner: NewDirectoryScanner(outputFile),
	}
}

// CleanGeneratedFiles removes the generated files in the directories matched
// by patterns and returns their paths. Files with the right name that were
// not written by didi are left alone.
func (c *Cleaner) CleanGeneratedFiles(patterns []string) ([]string, error) {
	files, err := c.scanner.GeneratedFiles(patterns)
	if err != nil {
		return nil, err
	}

	var removed []string
	for _, file := range files {
		generated, err := IsGeneratedFile(file)
		if err != nil {
			return removed, errors.WrapFileSystemError("read", file, err)
		}
		if !generated {
			continue
		}
		if err := os.Remove(file); err != nil {
			return removed, errors.WrapFileSystemError("remove", file, err)
		}
		removed = append(removed, file)
	}
	return removed, nil
}

// IsGeneratedFile reports whether path starts with the generated header
func IsGeneratedFile(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	if !scanner.Scan() {
		return false, scanner.Err()
	}
	return strings.TrimSpace(scanner.Text()) == templates.GeneratedHeader, nil
}
