package importer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cascadelang/cascade/core/types"
)

func writeFile(t *testing.T, dir, name, contents string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestResolveDirectExtension(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "colors.dialect", "$blue: blue;")
	importing := filepath.Join(dir, "main.dialect")

	r := NewResolver()
	stubs, handled := r.Resolve("colors", importing, types.SourceRange{})
	require.True(t, handled)
	require.Len(t, stubs, 1)
	want, _ := filepath.Abs(filepath.Join(dir, "colors.dialect"))
	require.Equal(t, want, stubs[0].ResolvedPath)
}

func TestResolveUnderscorePartial(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "_mixins.dl", "@mixin noop() {}")
	importing := filepath.Join(dir, "main.dialect")

	r := NewResolver()
	stubs, handled := r.Resolve("mixins", importing, types.SourceRange{})
	require.True(t, handled)
	require.Len(t, stubs, 1)
	want, _ := filepath.Abs(filepath.Join(dir, "_mixins.dl"))
	require.Equal(t, want, stubs[0].ResolvedPath)
}

func TestResolveDirectoryIndex(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, filepath.Join("theme", "_index.dialect"), "$theme: dark;")
	importing := filepath.Join(dir, "main.dialect")

	r := NewResolver()
	stubs, handled := r.Resolve("theme", importing, types.SourceRange{})
	require.True(t, handled)
	require.Len(t, stubs, 1)
	want, _ := filepath.Abs(filepath.Join(dir, "theme", "_index.dialect"))
	require.Equal(t, want, stubs[0].ResolvedPath)
}

func TestResolveIncludePathFallback(t *testing.T) {
	importingDir := t.TempDir()
	sharedDir := t.TempDir()
	writeFile(t, sharedDir, "shared.dialect", "$shared: 1;")
	importing := filepath.Join(importingDir, "main.dialect")

	r := NewResolver(WithIncludePaths(sharedDir))
	stubs, handled := r.Resolve("shared", importing, types.SourceRange{})
	require.True(t, handled)
	require.Len(t, stubs, 1)
	want, _ := filepath.Abs(filepath.Join(sharedDir, "shared.dialect"))
	require.Equal(t, want, stubs[0].ResolvedPath)
}

func TestResolveNotFoundReportsUnhandled(t *testing.T) {
	dir := t.TempDir()
	importing := filepath.Join(dir, "main.dialect")

	r := NewResolver()
	stubs, handled := r.Resolve("missing", importing, types.SourceRange{})
	require.False(t, handled)
	require.Nil(t, stubs)
}

func TestResolveURLsAreNeverHandled(t *testing.T) {
	r := NewResolver()
	_, handled := r.Resolve("https://example.com/a.dialect", "main.dialect", types.SourceRange{})
	require.False(t, handled)
}

func TestCacheDetectsUnchangedVsChangedContent(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "a.dialect", "$x: 1;")
	data, err := os.ReadFile(path)
	require.NoError(t, err)

	c := newCache()
	require.True(t, c.store(path, data), "first sight should report changed")
	require.False(t, c.store(path, data), "identical content should report unchanged")

	c.invalidate(path)
	require.True(t, c.store(path, data), "after invalidation, even identical content reports changed")
}
