package vfs

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryDirectory(t *testing.T) {
	md := NewMemoryDirectory("mem")
	md.Put("b.an", []byte{1, 2})
	md.Put("a.an", []byte{3})

	names, err := md.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"a.an", "b.an"}, names)

	data, err := ReadFile(md, "b.an")
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2}, data)

	f, err := DirectoryGetFile(md, "a.an")
	require.NoError(t, err)
	v := f.ModTime()
	md.Put("a.an", []byte{4, 5, 6})
	f, err = DirectoryGetFile(md, "a.an")
	require.NoError(t, err)
	assert.Greater(t, f.ModTime(), v)
	assert.Equal(t, int64(3), f.Size())
}

func TestMemoryFileMustBeOpened(t *testing.T) {
	md := NewMemoryDirectory("mem")
	md.Put("a", nil)
	f, err := DirectoryGetFile(md, "a")
	require.NoError(t, err)

	_, err = f.Reader()
	assert.Error(t, err)
	require.NoError(t, f.Open())
	assert.Error(t, f.Open())
	require.NoError(t, f.Close())
}

func TestNotFound(t *testing.T) {
	for _, d := range []Directory{
		NewMemoryDirectory("mem"),
		NewDirectoryDriver(t.TempDir()),
	} {
		_, err := ReadFile(d, "missing.an")
		var nf *NotFoundError
		require.True(t, errors.As(err, &nf), "%T: %v", d, err)
		assert.Equal(t, "missing.an", nf.Name)
	}
}

func TestDirectoryDriver(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "clip.an"), []byte("data"), 0644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0755))

	dd := NewDirectoryDriver(dir)
	names, err := dd.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"clip.an", "sub"}, names)

	data, err := ReadFile(dd, "clip.an")
	require.NoError(t, err)
	assert.Equal(t, []byte("data"), data)

	_, err = DirectoryGetFile(dd, "sub")
	assert.Error(t, err)

	e, err := dd.GetElement("sub")
	require.NoError(t, err)
	assert.True(t, e.IsDirectory())
}

func TestDirectoryDriverStaysInside(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "anims")
	require.NoError(t, os.Mkdir(dir, 0755))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "secret.an"), []byte("secret"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "clip.an"), []byte("data"), 0644))

	dd := NewDirectoryDriver(dir)
	for _, name := range []string{
		"../secret.an",
		"sub/../../secret.an",
		"..",
		filepath.Join(root, "secret.an"),
		"/etc/passwd",
	} {
		_, err := ReadFile(dd, name)
		var nf *NotFoundError
		assert.True(t, errors.As(err, &nf), "%q: %v", name, err)
	}

	data, err := ReadFile(dd, "sub/../clip.an")
	require.NoError(t, err)
	assert.Equal(t, []byte("data"), data)
}
