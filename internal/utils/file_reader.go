package utils

import (
	"fmt"
	"os"
	"path/filepath"
)

// FileReader reads files through a FileCache so repeated reads of an
// unchanged file skip the disk
type FileReader struct {
	contentCache *FileCache[string]
}

// NewFileReader creates a new FileReader instance with caching
func NewFileReader() *FileReader {
	return &FileReader{
		contentCache: NewFileCache[string](DefaultCacheExpiration, DefaultCleanupInterval),
	}
}

// ReadFile returns the contents of filePath
func (fr *FileReader) ReadFile(filePath string) (string, error) {
	if filePath == "" {
		return "", fmt.Errorf("file path cannot be empty")
	}
	cleanPath := filepath.Clean(filePath)

	if cached, ok := fr.contentCache.Get(cleanPath, cleanPath); ok {
		return cached, nil
	}

	content, err := os.ReadFile(cleanPath)
	if err != nil {
		return "", fmt.Errorf("failed to read file %s: %w", filepath.Base(cleanPath), err)
	}

	// A failed stat only costs the cache entry.
	_ = fr.contentCache.Set(cleanPath, string(content), cleanPath)
	return string(content), nil
}

// Exists reports whether filePath names an existing regular file
func (fr *FileReader) Exists(filePath string) bool {
	stat, err := os.Stat(filePath)
	return err == nil && stat.Mode().IsRegular()
}

// InvalidateFile removes a specific file from the cache
func (fr *FileReader) InvalidateFile(filePath string) {
	fr.contentCache.Delete(filepath.Clean(filePath))
}

// ClearCache clears all cached files
func (fr *FileReader) ClearCache() {
	fr.contentCache.Flush()
}

// CachedFiles returns the number of cached files
func (fr *FileReader) CachedFiles() int {
	return fr.contentCache.Len()
}
