package filestore_test

import (
	"io/fs"
	"path/filepath"
	"testing"

	"github.com/Flaque/filet"
	"github.com/UnknownOlympus/waypoint/internal/filestore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppend(t *testing.T) {
	defer filet.CleanUp(t)
	dir := filet.TmpDir(t, "")

	t.Run("creates the file on first write", func(t *testing.T) {
		path := filepath.Join(dir, "first.txt")
		store := filestore.New(path)

		require.False(t, filet.Exists(t, path))
		require.NoError(t, store.Append("a\n"))
		assert.True(t, filet.FileSays(t, path, []byte("a\n")))
	})

	t.Run("appends after existing content", func(t *testing.T) {
		path := filepath.Join(dir, "existing.txt")
		filet.File(t, path, "old\n")
		store := filestore.New(path)

		require.NoError(t, store.Append("new\n"))
		assert.True(t, filet.FileSays(t, path, []byte("old\nnew\n")))
	})

	t.Run("error - directory does not exist", func(t *testing.T) {
		store := filestore.New(filepath.Join(dir, "missing", "logs.txt"))

		err := store.Append("a\n")

		require.Error(t, err)
		require.ErrorContains(t, err, "failed to open backup file")
	})
}

func TestReadAll(t *testing.T) {
	defer filet.CleanUp(t)
	dir := filet.TmpDir(t, "")

	t.Run("drops empty lines and keeps order", func(t *testing.T) {
		path := filepath.Join(dir, "logs.txt")
		filet.File(t, path, "one\n\ntwo\nthree\n\n")

		lines, err := filestore.New(path).ReadAll()

		require.NoError(t, err)
		assert.Equal(t, []string{"one", "two", "three"}, lines)
	})

	t.Run("empty file", func(t *testing.T) {
		path := filepath.Join(dir, "empty.txt")
		filet.File(t, path, "")

		lines, err := filestore.New(path).ReadAll()

		require.NoError(t, err)
		assert.Empty(t, lines)
	})

	t.Run("error - file not found", func(t *testing.T) {
		lines, err := filestore.New(filepath.Join(dir, "nope.txt")).ReadAll()

		require.Nil(t, lines)
		require.ErrorIs(t, err, filestore.ErrNotFound)
		require.ErrorIs(t, err, fs.ErrNotExist)
	})
}
