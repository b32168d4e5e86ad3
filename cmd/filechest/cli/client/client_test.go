//go:build unix

package client

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) string {
	t.Helper()

	viper.Reset()
	t.Cleanup(viper.Reset)

	viper.Set("store.path", filepath.Join(t.TempDir(), "cli.db"))
	viper.Set("log.no_color", true)
	viper.Set("log.no_terminal", true)

	dir := t.TempDir()
	for _, name := range []string{"a.txt", "b.txt", ".hidden"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(name), 0644))
	}
	return dir
}

func execute(t *testing.T, cmd *cobra.Command, stdin string, args ...string) string {
	t.Helper()

	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)

	require.NoError(t, cmd.Execute())
	return out.String()
}

func TestListCommand(t *testing.T) {
	dir := setup(t)

	out := execute(t, NewListCommand(), "", dir)
	assert.Equal(t, filepath.Join(dir, "a.txt")+"\n"+filepath.Join(dir, "b.txt")+"\n", out)

	out = execute(t, NewListCommand(), "", "-a", dir)
	assert.Contains(t, out, ".hidden")
}

func TestNoteCommands(t *testing.T) {
	dir := setup(t)
	file := filepath.Join(dir, "a.txt")

	execute(t, NewNoteCommand(), "", "set", file, "first", "draft")
	assert.Equal(t, "first draft\n", execute(t, NewNoteCommand(), "", "get", file))

	execute(t, NewNoteCommand(), "from stdin\nsecond line\n", "set", file, "-")
	assert.Equal(t, "from stdin\nsecond line\n", execute(t, NewNoteCommand(), "", "get", file))

	cmd := NewNoteCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"get", filepath.Join(dir, "b.txt")})
	assert.ErrorContains(t, cmd.Execute(), "no note stored")
}

func TestTagsCommands(t *testing.T) {
	dir := setup(t)
	a := filepath.Join(dir, "a.txt")
	b := filepath.Join(dir, "b.txt")

	execute(t, NewTagsCommand(), "", "set", a, "work,", "urgent")
	execute(t, NewTagsCommand(), "", "add", b, "work")

	assert.Equal(t, "work\nurgent\n", execute(t, NewTagsCommand(), "", "get", a))
	assert.Equal(t, a+"\n"+b+"\n", execute(t, NewTagsCommand(), "", "find", "work"))
	assert.Equal(t, a+"\n", execute(t, NewListCommand(), "", "tag:urgent"))

	out := execute(t, NewTagsCommand(), "", "list")
	assert.Contains(t, out, "FILES")
	assert.Regexp(t, `2\s+work`, out)
	assert.Regexp(t, `1\s+urgent`, out)

	execute(t, NewTagsCommand(), "", "set", a)
	assert.Empty(t, execute(t, NewTagsCommand(), "", "get", a))
}

func TestShowCommand(t *testing.T) {
	dir := setup(t)
	file := filepath.Join(dir, "a.txt")

	out := execute(t, NewShowCommand(), "", file)
	assert.Contains(t, out, file)
	assert.Contains(t, out, placeholder)

	execute(t, NewNoteCommand(), "", "set", file, "hello")
	execute(t, NewTagsCommand(), "", "set", file, "greeting")

	out = execute(t, NewShowCommand(), "", file)
	assert.Contains(t, out, "hello")
	assert.Contains(t, out, "greeting")
	assert.NotContains(t, out, placeholder)
}

func TestListCommand_Long(t *testing.T) {
	dir := setup(t)
	file := filepath.Join(dir, "a.txt")

	execute(t, NewNoteCommand(), "", "set", file, "a rather long note that will be shortened in the listing")
	execute(t, NewTagsCommand(), "", "set", file, "x,y")

	out := execute(t, NewListCommand(), "", "-l", "-H", dir)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "INODE")
	assert.Contains(t, lines[1], "…")
	assert.Contains(t, lines[1], "x, y")
	assert.Contains(t, lines[2], "b.txt")
}

func TestSummarize(t *testing.T) {
	assert.Equal(t, "short", summarize("short", 10))
	assert.Equal(t, "first", summarize("first\nsecond", 10))
	assert.Equal(t, "abcd…", summarize("abcdefgh", 5))
}
