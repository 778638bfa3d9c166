package archive

import (
	"archive/zip"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZipDirectory(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "clip")
	require.NoError(t, os.Mkdir(dir, 0o755))
	for _, name := range []string{"1.jpg", "2.jpg", "3.jpg"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(name), 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "skipped"), 0o755))

	out := filepath.Join(root, "clip.zip")
	n, err := NewZipCreator().ZipDirectory(context.Background(), dir, out)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	r, err := zip.OpenReader(out)
	require.NoError(t, err)
	defer r.Close()

	var names []string
	for _, f := range r.File {
		names = append(names, f.Name)
	}
	assert.ElementsMatch(t, []string{"clip/1.jpg", "clip/2.jpg", "clip/3.jpg"}, names)
}

func TestZipDirectoryCancelled(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "1.jpg"), []byte("x"), 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewZipCreator().ZipDirectory(ctx, root, filepath.Join(t.TempDir(), "out.zip"))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestZipDirectoryMissing(t *testing.T) {
	_, err := NewZipCreator().ZipDirectory(context.Background(), filepath.Join(t.TempDir(), "gone"), filepath.Join(t.TempDir(), "out.zip"))
	assert.Error(t, err)
}
