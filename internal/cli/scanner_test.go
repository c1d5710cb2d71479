package cli

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toyz/didi/internal/parser"
)

func TestSplitPattern(t *testing.T) {
	tests := []struct {
		pattern   string
		dir       string
		recursive bool
	}{
		{"./...", ".", true},
		{"...", ".", true},
		{"/...", ".", true},
		{"internal/...", "internal", true},
		{"./internal", "./internal", false},
		{".", ".", false},
		{"foo...", "foo...", false},
	}

	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			dir, recursive := SplitPattern(tt.pattern)
			assert.Equal(t, filepath.FromSlash(tt.dir), dir)
			assert.Equal(t, tt.recursive, recursive)
		})
	}
}

func TestDirectoryScanner_ScanDirectories(t *testing.T) {
	dir := newWorkspace(t, map[string]string{
		"modeler/bus.go":                   busSource,
		"modeler/draw/draw.go":             "package draw\n",
		"services/only_test.go":            "package services\n",
		"generated/" + parser.DefaultOutputFile: "package generated\n",
		"vendor/dep/dep.go":                "package dep\n",
		"_examples/ex/ex.go":               "package ex\n",
		".hidden/h.go":                     "package h\n",
		"root.go":                          "package app\n",
	})
	scanner := NewDirectoryScanner(parser.DefaultOutputFile)

	t.Run("recursive", func(t *testing.T) {
		dirs, err := scanner.ScanDirectories([]string{"./..."})
		require.NoError(t, err)
		assert.Equal(t, []string{
			dir,
			filepath.Join(dir, "modeler"),
			filepath.Join(dir, "modeler", "draw"),
		}, dirs)
	})

	t.Run("flat", func(t *testing.T) {
		dirs, err := scanner.ScanDirectories([]string{"./modeler"})
		require.NoError(t, err)
		assert.Equal(t, []string{filepath.Join(dir, "modeler")}, dirs)
	})

	t.Run("overlapping patterns", func(t *testing.T) {
		dirs, err := scanner.ScanDirectories([]string{"modeler/...", "./modeler", "modeler/draw"})
		require.NoError(t, err)
		assert.Equal(t, []string{
			filepath.Join(dir, "modeler"),
			filepath.Join(dir, "modeler", "draw"),
		}, dirs)
	})

	t.Run("missing directory", func(t *testing.T) {
		_, err := scanner.ScanDirectories([]string{"./missing"})
		assert.ErrorContains(t, err, "failed to scan directories")
	})
}

func TestDirectoryScanner_GeneratedFiles(t *testing.T) {
	dir := newWorkspace(t, map[string]string{
		"a/" + parser.DefaultOutputFile:        "package a\n",
		"a/b/" + parser.DefaultOutputFile:      "package b\n",
		"vendor/v/" + parser.DefaultOutputFile: "package v\n",
		"c/c.go":                               "package c\n",
	})
	scanner := NewDirectoryScanner(parser.DefaultOutputFile)

	files, err := scanner.GeneratedFiles([]string{"./..."})
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "a", parser.DefaultOutputFile),
		filepath.Join(dir, "a", "b", parser.DefaultOutputFile),
	}, files)

	files, err = scanner.GeneratedFiles([]string{"a"})
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "a", parser.DefaultOutputFile)}, files)
}

func TestDirectoryScanner_WatchDirectories(t *testing.T) {
	dir := newWorkspace(t, map[string]string{
		"a/a.go":          "package a\n",
		"a/empty/.keep":   "",
		"vendor/v/v.go":   "package v\n",
		"testdata/t/t.go": "package t\n",
	})
	scanner := NewDirectoryScanner(parser.DefaultOutputFile)

	dirs, err := scanner.WatchDirectories([]string{"./..."})
	require.NoError(t, err)
	assert.Equal(t, []string{
		dir,
		filepath.Join(dir, "a"),
		filepath.Join(dir, "a", "empty"),
	}, dirs)

	_, err = scanner.WatchDirectories([]string{"./missing/..."})
	assert.ErrorContains(t, err, "failed to scan directory")
}
