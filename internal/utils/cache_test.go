package utils

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTestFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestFileCache_HitAndInvalidate(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "canvas.go")
	writeTestFile(t, file, "package modeler\n")

	cache := NewFileCache[int](time.Minute, time.Minute)
	require.NoError(t, cache.Set(dir, 42, file))

	value, ok := cache.Get(dir, file)
	assert.True(t, ok)
	assert.Equal(t, 42, value)
	assert.Equal(t, 1, cache.Len())

	writeTestFile(t, file, "package modeler\n\ntype Canvas struct{}\n")
	_, ok = cache.Get(dir, file)
	assert.False(t, ok, "changed file must invalidate the entry")
	assert.Equal(t, 0, cache.Len(), "stale entries are evicted")
}

func TestFileCache_FileSetChanges(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.go")
	b := filepath.Join(dir, "b.go")
	writeTestFile(t, a, "package x\n")
	writeTestFile(t, b, "package x\n")

	cache := NewFileCache[string](time.Minute, time.Minute)
	require.NoError(t, cache.Set("pkg", "meta", a))

	_, ok := cache.Get("pkg", a, b)
	assert.False(t, ok, "a new file changes the fingerprint")
}

func TestFileCache_MissingFiles(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "gone.go")

	cache := NewFileCache[string](time.Minute, time.Minute)
	assert.Error(t, cache.Set("k", "v", file))

	writeTestFile(t, file, "package x\n")
	require.NoError(t, cache.Set("k", "v", file))
	require.NoError(t, os.Remove(file))

	_, ok := cache.Get("k", file)
	assert.False(t, ok)
}

func TestFileCache_DeleteAndFlush(t *testing.T) {
	cache := NewFileCache[string](time.Minute, time.Minute)
	require.NoError(t, cache.Set("a", "1"))
	require.NoError(t, cache.Set("b", "2"))

	value, ok := cache.Get("a")
	assert.True(t, ok)
	assert.Equal(t, "1", value)

	cache.Delete("a")
	_, ok = cache.Get("a")
	assert.False(t, ok)

	cache.Flush()
	assert.Equal(t, 0, cache.Len())
}

func TestFileCache_Expiration(t *testing.T) {
	cache := NewFileCache[string](10*time.Millisecond, time.Minute)
	require.NoError(t, cache.Set("a", "1"))

	time.Sleep(30 * time.Millisecond)
	_, ok := cache.Get("a")
	assert.False(t, ok)
}

func TestFingerprint(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "a.go")
	writeTestFile(t, file, "package x\n")

	first, err := Fingerprint(file)
	require.NoError(t, err)
	again, err := Fingerprint(file)
	require.NoError(t, err)
	assert.Equal(t, first, again)

	later := time.Now().Add(time.Hour)
	require.NoError(t, os.Chtimes(file, later, later))
	touched, err := Fingerprint(file)
	require.NoError(t, err)
	assert.NotEqual(t, first, touched)

	empty, err := Fingerprint()
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestFileReader(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "go.mod")
	writeTestFile(t, file, "module example.com/a\n")

	reader := NewFileReader()
	content, err := reader.ReadFile(file)
	require.NoError(t, err)
	assert.Equal(t, "module example.com/a\n", content)
	assert.Equal(t, 1, reader.CachedFiles())

	writeTestFile(t, file, "module example.com/changed\n")
	content, err = reader.ReadFile(file)
	require.NoError(t, err)
	assert.Equal(t, "module example.com/changed\n", content)

	reader.InvalidateFile(file)
	assert.Equal(t, 0, reader.CachedFiles())

	_, err = reader.ReadFile("")
	assert.Error(t, err)
	_, err = reader.ReadFile(filepath.Join(dir, "missing"))
	assert.Error(t, err)

	assert.True(t, reader.Exists(file))
	assert.False(t, reader.Exists(dir))

	reader.ClearCache()
	assert.Equal(t, 0, reader.CachedFiles())
}
