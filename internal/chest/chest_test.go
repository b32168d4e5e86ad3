//go:build unix

package chest

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/mwantia/fabric/pkg/container"
	"github.com/mwantia/filechest/internal/config"
	"github.com/mwantia/filechest/pkg/db/store"
	"github.com/mwantia/filechest/pkg/fileref"
	"github.com/mwantia/filechest/pkg/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestChest(t *testing.T) *Chest {
	t.Helper()

	cfg := config.GetDefault()
	cfg.Store.Path = filepath.Join(t.TempDir(), "store", "filechest.db")
	cfg.Log.NoTerminal = true

	c := NewWithLogger(&cfg, log.NewLoggerServiceWithWriter("test", cfg.Log, io.Discard))
	require.NoError(t, c.Open(context.Background()))
	t.Cleanup(func() { c.Close(context.Background()) })
	return c
}

func populate(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(name), 0644))
	}
}

func basenames(refs []fileref.FileRef) []string {
	out := make([]string, 0, len(refs))
	for _, ref := range refs {
		out = append(out, filepath.Base(ref.KnownPath))
	}
	return out
}

func TestChest_NotOpen(t *testing.T) {
	cfg := config.GetDefault()
	c := NewWithLogger(&cfg, log.NewLoggerServiceWithWriter("test", cfg.Log, io.Discard))
	ctx := context.Background()

	_, err := c.Browse(ctx, PathQuery{Dir: "."}, false)
	assert.ErrorIs(t, err, ErrNotOpen)
	_, err = c.Select(ctx, fileref.New(1, "/x"))
	assert.ErrorIs(t, err, ErrNotOpen)
	assert.ErrorIs(t, c.SubmitNote(ctx, fileref.New(1, "/x"), "n"), ErrNotOpen)
	assert.ErrorIs(t, c.SubmitTags(ctx, fileref.New(1, "/x"), "t"), ErrNotOpen)
	_, err = c.Resolve("/x")
	assert.ErrorIs(t, err, ErrNotOpen)
	assert.NoError(t, c.Close(ctx))
}

func TestChest_OpenCreatesDatabase(t *testing.T) {
	c := newTestChest(t)

	_, err := os.Stat(c.Path())
	require.NoError(t, err)

	s, err := c.Store()
	require.NoError(t, err)
	assert.NoError(t, s.Health(context.Background()))

	// A second open is a no-op.
	assert.NoError(t, c.Open(context.Background()))
}

func TestChest_ContainerOwnsStore(t *testing.T) {
	c := newTestChest(t)
	ctx := context.Background()

	s, err := c.Store()
	require.NoError(t, err)

	resolved, err := container.Resolve[store.AnnotationStore](ctx, c.sc)
	require.NoError(t, err)
	assert.Same(t, s, resolved)

	_, err = container.Resolve[log.LoggerService](ctx, c.sc)
	require.NoError(t, err)

	// Container cleanup is the only thing closing the store.
	require.NoError(t, c.Close(ctx))
	assert.Error(t, s.Health(ctx))
}

func TestChest_FailedOpenStaysClosed(t *testing.T) {
	cfg := config.GetDefault()
	// A directory cannot be opened as a database file.
	cfg.Store.Path = t.TempDir()
	cfg.Log.NoTerminal = true

	c := NewWithLogger(&cfg, log.NewLoggerServiceWithWriter("test", cfg.Log, io.Discard))
	ctx := context.Background()

	require.Error(t, c.Open(ctx))
	_, err := c.Store()
	assert.ErrorIs(t, err, ErrNotOpen)
	assert.NoError(t, c.Close(ctx))

	cfg.Store.Path = filepath.Join(t.TempDir(), "retry.db")
	require.NoError(t, c.Open(ctx))
	assert.NoError(t, c.Close(ctx))
}

func TestChest_CloseAndReopen(t *testing.T) {
	c := newTestChest(t)
	ctx := context.Background()

	require.NoError(t, c.SubmitNote(ctx, fileref.New(9, "/n"), "kept"))
	require.NoError(t, c.Close(ctx))

	_, err := c.Store()
	assert.ErrorIs(t, err, ErrNotOpen)

	require.NoError(t, c.Open(ctx))
	annotation, err := c.Select(ctx, fileref.New(9, "/n"))
	require.NoError(t, err)
	assert.Equal(t, "kept", annotation.Note)
}

func TestChest_BrowseDirectory(t *testing.T) {
	c := newTestChest(t)
	ctx := context.Background()
	dir := t.TempDir()
	populate(t, dir, ".hidden", "b.txt", "a.txt")

	refs, err := c.Browse(ctx, PathQuery{Dir: dir}, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.txt", "b.txt"}, basenames(refs))

	refs, err = c.Browse(ctx, PathQuery{Dir: dir}, true)
	require.NoError(t, err)
	assert.Equal(t, []string{".hidden", "a.txt", "b.txt"}, basenames(refs))
}

func TestChest_SelectUnannotated(t *testing.T) {
	c := newTestChest(t)

	annotation, err := c.Select(context.Background(), fileref.New(77, "/fresh"))
	require.NoError(t, err)
	assert.False(t, annotation.HasNote)
	assert.Empty(t, annotation.Note)
	assert.Empty(t, annotation.Tags)
}

func TestChest_SubmitAndSelect(t *testing.T) {
	c := newTestChest(t)
	ctx := context.Background()
	dir := t.TempDir()
	populate(t, dir, "a.txt")

	ref, err := c.Resolve(filepath.Join(dir, "a.txt"))
	require.NoError(t, err)

	require.NoError(t, c.SubmitNote(ctx, ref, "remember this"))
	require.NoError(t, c.SubmitTags(ctx, ref, " foo , BAR ,"))

	annotation, err := c.Select(ctx, ref)
	require.NoError(t, err)
	assert.True(t, annotation.HasNote)
	assert.Equal(t, "remember this", annotation.Note)
	assert.ElementsMatch(t, []string{"foo", "BAR"}, annotation.Tags)

	require.NoError(t, c.SubmitTags(ctx, ref, ""))
	annotation, err = c.Select(ctx, ref)
	require.NoError(t, err)
	assert.Empty(t, annotation.Tags)
	assert.Equal(t, "remember this", annotation.Note)
}

func TestChest_TagQueryBypassesDirectory(t *testing.T) {
	c := newTestChest(t)
	ctx := context.Background()
	dir := t.TempDir()
	populate(t, dir, "a.txt", "b.txt")

	a, err := c.Resolve(filepath.Join(dir, "a.txt"))
	require.NoError(t, err)
	require.NoError(t, c.SubmitTags(ctx, a, "project"))

	query, err := ParseQuery("tag: project ")
	require.NoError(t, err)

	refs, err := c.Browse(ctx, query, false)
	require.NoError(t, err)
	require.Len(t, refs, 1)
	assert.Equal(t, a, refs[0])

	refs, err = c.Browse(ctx, TagQuery{Name: "unknown"}, false)
	require.NoError(t, err)
	assert.Empty(t, refs)
}

func TestChest_RenamePreservesAnnotations(t *testing.T) {
	c := newTestChest(t)
	ctx := context.Background()
	dir := t.TempDir()
	populate(t, dir, "before.txt")

	refs, err := c.Browse(ctx, PathQuery{Dir: dir}, false)
	require.NoError(t, err)
	require.Len(t, refs, 1)
	before := refs[0]

	require.NoError(t, c.SubmitNote(ctx, before, "moving soon"))
	require.NoError(t, c.SubmitTags(ctx, before, "moved"))

	require.NoError(t, os.Rename(filepath.Join(dir, "before.txt"), filepath.Join(dir, "after.txt")))

	refs, err = c.Browse(ctx, PathQuery{Dir: dir}, false)
	require.NoError(t, err)
	require.Len(t, refs, 1)
	after := refs[0]
	assert.True(t, after.SameEntry(before))

	// Tag lookups still report the stale path until the file is seen again.
	tagged, err := c.Browse(ctx, TagQuery{Name: "moved"}, false)
	require.NoError(t, err)
	require.Len(t, tagged, 1)
	assert.Equal(t, before.KnownPath, tagged[0].KnownPath)

	annotation, err := c.Select(ctx, after)
	require.NoError(t, err)
	assert.Equal(t, "moving soon", annotation.Note)
	assert.Equal(t, []string{"moved"}, annotation.Tags)

	tagged, err = c.Browse(ctx, TagQuery{Name: "moved"}, false)
	require.NoError(t, err)
	require.Len(t, tagged, 1)
	assert.Equal(t, after.KnownPath, tagged[0].KnownPath)
}

func TestChest_Enter(t *testing.T) {
	c := newTestChest(t)
	ctx := context.Background()
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0755))
	populate(t, filepath.Join(dir, "sub"), "inner.txt")

	refs, err := c.Browse(ctx, PathQuery{Dir: dir}, false)
	require.NoError(t, err)
	require.Len(t, refs, 1)

	inner, err := c.Enter(ctx, refs[0], false)
	require.NoError(t, err)
	assert.Equal(t, []string{"inner.txt"}, basenames(inner))
}

func TestChest_Tags(t *testing.T) {
	c := newTestChest(t)
	ctx := context.Background()

	require.NoError(t, c.SubmitTags(ctx, fileref.New(1, "/a"), "x, y"))
	require.NoError(t, c.SubmitTags(ctx, fileref.New(2, "/b"), "y"))

	usage, err := c.Tags(ctx)
	require.NoError(t, err)
	require.Len(t, usage, 2)
	assert.Equal(t, "x", usage[0].Name)
	assert.Equal(t, int64(1), usage[0].Files)
	assert.Equal(t, "y", usage[1].Name)
	assert.Equal(t, int64(2), usage[1].Files)
}

func TestChest_InvalidSymlinkPolicy(t *testing.T) {
	cfg := config.GetDefault()
	cfg.Store.Path = filepath.Join(t.TempDir(), "x.db")
	cfg.Resolver.Symlinks = "maybe"

	c := NewWithLogger(&cfg, log.NewLoggerServiceWithWriter("test", cfg.Log, io.Discard))
	assert.Error(t, c.Open(context.Background()))
}

func TestRun_ClosesChest(t *testing.T) {
	cfg := config.GetDefault()
	cfg.Store.Path = filepath.Join(t.TempDir(), "run.db")
	cfg.Log.NoTerminal = true

	var opened *Chest
	err := Run(context.Background(), &cfg, func(c *Chest) error {
		opened = c
		return c.AddTag(context.Background(), fileref.New(3, "/r"), "run")
	})
	require.NoError(t, err)

	_, err = opened.Store()
	assert.ErrorIs(t, err, ErrNotOpen)
}
