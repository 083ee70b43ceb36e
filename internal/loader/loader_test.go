package loader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, contents string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
}

func TestResolveRelativeFileDerivesDottedScope(t *testing.T) {
	base := t.TempDir()
	writeFile(t, filepath.Join(base, "utils", "helpers.can"), "let x = 1")

	l := New(base, filepath.Join(base, "include"))
	files, err := l.Resolve("utils/helpers")
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, filepath.Join(base, "utils", "helpers.can"), files[0].Path)
	assert.Equal(t, "utils.helpers", files[0].Scope)
}

func TestResolveRelativeFileWithExplicitExtension(t *testing.T) {
	base := t.TempDir()
	writeFile(t, filepath.Join(base, "utils", "helpers.can"), "let x = 1")

	l := New(base, filepath.Join(base, "include"))
	files, err := l.Resolve("utils/helpers.can")
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "utils.helpers", files[0].Scope)
}

func TestResolveAbsoluteFileUsesBaseNameAsScope(t *testing.T) {
	base := t.TempDir()
	target := filepath.Join(base, "script.can")
	writeFile(t, target, "let x = 1")

	l := New(base, filepath.Join(base, "include"))
	files, err := l.Resolve(target)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, target, files[0].Path)
	assert.Equal(t, "script", files[0].Scope)
}

func TestResolveScopeDottedPathUnderIncludeDir(t *testing.T) {
	base := t.TempDir()
	include := filepath.Join(base, "include")
	writeFile(t, filepath.Join(include, "math", "trig.can"), "let x = 1")

	l := New(base, include)
	files, err := l.Resolve("math.trig")
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, filepath.Join(include, "math", "trig.can"), files[0].Path)
	assert.Equal(t, "math.trig", files[0].Scope)
}

func TestResolveDirectoryRecursesAllCanFiles(t *testing.T) {
	base := t.TempDir()
	dir := filepath.Join(base, "scripts")
	writeFile(t, filepath.Join(dir, "util.can"), "let x = 1")
	writeFile(t, filepath.Join(dir, "math", "trig.can"), "let y = 2")
	writeFile(t, filepath.Join(dir, "notes.txt"), "ignored")

	l := New(base, filepath.Join(base, "include"))
	files, err := l.Resolve(dir)
	require.NoError(t, err)
	require.Len(t, files, 2)

	scopes := map[string]bool{}
	for _, f := range files {
		scopes[f.Scope] = true
	}
	assert.True(t, scopes["scripts.util"])
	assert.True(t, scopes["scripts.math.trig"])
}

func TestResolveMissingFileErrors(t *testing.T) {
	base := t.TempDir()
	l := New(base, filepath.Join(base, "include"))
	_, err := l.Resolve("does/not/exist")
	assert.Error(t, err)
}
