package utils

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

const (
	DefaultCacheExpiration = 30 * time.Minute
	DefaultCleanupInterval = time.Hour
)

// fileEntry pairs a cached value with the fingerprint of the files it was
// derived from
type fileEntry[V any] struct {
	value       V
	fingerprint string
}

// FileCache memoizes values derived from files. An entry is only returned
// while the files it was stored with are unchanged.
type FileCache[V any] struct {
	cache *gocache.Cache
}

// NewFileCache creates a cache whose entries expire after expiration
func NewFileCache[V any](expiration, cleanupInterval time.Duration) *FileCache[V] {
	return &FileCache[V]{
		cache: gocache.New(expiration, cleanupInterval),
	}
}

// Get returns the value stored under key if files still match the
// fingerprint taken by Set. Stale entries are evicted.
func (c *FileCache[V]) Get(key string, files ...string) (V, bool) {
	var zero V

	raw, found := c.cache.Get(key)
	if !found {
		return zero, false
	}
	entry, ok := raw.(fileEntry[V])
	if !ok {
		c.cache.Delete(key)
		return zero, false
	}

	current, err := Fingerprint(files...)
	if err != nil || current != entry.fingerprint {
		c.cache.Delete(key)
		return zero, false
	}
	return entry.value, true
}

// Set stores value under key along with the current fingerprint of files
func (c *FileCache[V]) Set(key string, value V, files ...string) error {
	fingerprint, err := Fingerprint(files...)
	if err != nil {
		return err
	}
	c.cache.SetDefault(key, fileEntry[V]{value: value, fingerprint: fingerprint})
	return nil
}

// Delete evicts key
func (c *FileCache[V]) Delete(key string) {
	c.cache.Delete(key)
}

// Flush evicts every entry
func (c *FileCache[V]) Flush() {
	c.cache.Flush()
}

// Len returns the number of entries, expired ones included until cleanup
func (c *FileCache[V]) Len() int {
	return c.cache.ItemCount()
}

// Fingerprint summarizes the names, sizes and modification times of files.
// Order matters, so callers pass files sorted.
func Fingerprint(files ...string) (string, error) {
	var b strings.Builder
	for _, file := range files {
		stat, err := os.Stat(file)
		if err != nil {
			return "", fmt.Errorf("failed to stat %s: %w", file, err)
		}
		b.WriteString(file)
		b.WriteByte('|')
		b.WriteString(strconv.FormatInt(stat.ModTime().UnixNano(), 10))
		b.WriteByte('|')
		b.WriteString(strconv.FormatInt(stat.Size(), 10))
		b.WriteByte('\n')
	}
	return b.String(), nil
}
