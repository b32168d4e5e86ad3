//go:build unix

package listing

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/mwantia/filechest/internal/config"
	"github.com/mwantia/filechest/pkg/fileref"
	"github.com/mwantia/filechest/pkg/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, paths ...string) {
	t.Helper()
	for _, path := range paths {
		require.NoError(t, os.WriteFile(path, nil, 0644))
	}
}

func names(refs []fileref.FileRef) []string {
	out := make([]string, 0, len(refs))
	for _, ref := range refs {
		out = append(out, filepath.Base(ref.KnownPath))
	}
	return out
}

func newEnumerator(t *testing.T, resolver fileref.Options, opts Options) *Enumerator {
	t.Helper()
	e, err := NewEnumerator(fileref.NewResolver(resolver), nil, opts)
	require.NoError(t, err)
	return e
}

func TestIsHidden(t *testing.T) {
	assert.True(t, IsHidden(".hidden"))
	assert.True(t, IsHidden("."))
	assert.False(t, IsHidden("visible"))
	assert.False(t, IsHidden(""))
	assert.False(t, IsHidden("·dot"))
}

func TestList_HiddenFilteringAndOrder(t *testing.T) {
	dir := t.TempDir()
	touch(t,
		filepath.Join(dir, "b.txt"),
		filepath.Join(dir, ".hidden"),
		filepath.Join(dir, "a.txt"),
	)

	e := newEnumerator(t, fileref.Options{}, Options{})

	visible, err := e.List(dir, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.txt", "b.txt"}, names(visible))

	all, err := e.List(dir, true)
	require.NoError(t, err)
	assert.Equal(t, []string{".hidden", "a.txt", "b.txt"}, names(all))
}

func TestList_ByteWiseOrder(t *testing.T) {
	dir := t.TempDir()
	touch(t,
		filepath.Join(dir, "b"),
		filepath.Join(dir, "B"),
		filepath.Join(dir, "a"),
		filepath.Join(dir, "_"),
	)

	refs, err := newEnumerator(t, fileref.Options{}, Options{}).List(dir, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"B", "_", "a", "b"}, names(refs))
}

func TestList_FullPathsAndIdentity(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.txt")
	touch(t, path)

	resolver := fileref.NewResolver(fileref.Options{})
	e, err := NewEnumerator(resolver, nil, Options{})
	require.NoError(t, err)

	refs, err := e.List(dir, false)
	require.NoError(t, err)
	require.Len(t, refs, 1)

	direct, err := resolver.FromPath(path)
	require.NoError(t, err)
	assert.Equal(t, direct, refs[0])
}

func TestList_IncludesDirectories(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0755))
	touch(t, filepath.Join(dir, "file"))

	refs, err := newEnumerator(t, fileref.Options{}, Options{}).List(dir, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"file", "sub"}, names(refs))
}

func TestList_IgnorePatterns(t *testing.T) {
	dir := t.TempDir()
	touch(t,
		filepath.Join(dir, "keep.txt"),
		filepath.Join(dir, "drop.tmp"),
		filepath.Join(dir, "other.tmp"),
	)

	refs, err := newEnumerator(t, fileref.Options{}, Options{Ignore: []string{"*.tmp"}}).List(dir, true)
	require.NoError(t, err)
	assert.Equal(t, []string{"keep.txt"}, names(refs))
}

func TestNewEnumerator_InvalidPattern(t *testing.T) {
	_, err := NewEnumerator(fileref.NewResolver(fileref.Options{}), nil, Options{Ignore: []string{"[unclosed"}})
	assert.Error(t, err)
}

func TestList_MissingDirectory(t *testing.T) {
	_, err := newEnumerator(t, fileref.Options{}, Options{}).List(filepath.Join(t.TempDir(), "missing"), false)
	require.Error(t, err)

	var ioErr *fileref.IOError
	require.ErrorAs(t, err, &ioErr)
	assert.Equal(t, "readdir", ioErr.Op)
	assert.True(t, fileref.IsNotFound(err))
}

func TestList_NotADirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "file")
	touch(t, path)

	_, err := newEnumerator(t, fileref.Options{}, Options{}).List(path, false)
	require.Error(t, err)
	assert.True(t, fileref.IsNotDirectory(err))
}

func TestList_SkipsUnreadableEntries(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "a.txt"), filepath.Join(dir, "c.txt"))
	require.NoError(t, os.Symlink(filepath.Join(dir, "gone"), filepath.Join(dir, "b.link")))

	var buf bytes.Buffer
	logger := log.NewLoggerServiceWithWriter("listing", config.LogConfig{Level: "WARN", NoColor: true}, &buf)

	var diagnostics []Diagnostic
	e, err := NewEnumerator(
		fileref.NewResolver(fileref.Options{Symlinks: fileref.Follow}),
		logger,
		Options{Reporter: func(d Diagnostic) { diagnostics = append(diagnostics, d) }},
	)
	require.NoError(t, err)

	refs, err := e.List(dir, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.txt", "c.txt"}, names(refs))

	require.Len(t, diagnostics, 1)
	assert.Equal(t, filepath.Join(dir, "b.link"), diagnostics[0].Path)
	assert.True(t, fileref.IsNotFound(diagnostics[0].Err))
	assert.Contains(t, buf.String(), "skipped")
}

func TestList_DanglingLinkListedWithoutFollow(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Symlink(filepath.Join(dir, "gone"), filepath.Join(dir, "b.link")))

	refs, err := newEnumerator(t, fileref.Options{Symlinks: fileref.NoFollow}, Options{}).List(dir, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"b.link"}, names(refs))
}
