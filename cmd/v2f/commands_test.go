package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupWorkDir(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	t.Setenv("V2F_CONFIG", "")
	t.Setenv("WORK_DIR", root)
	t.Setenv("FFMPEG_PATH", "/nonexistent/ffmpeg")
	t.Setenv("FFPROBE_PATH", "/nonexistent/ffprobe")
	t.Setenv("LOG_LEVEL", "error")
	return root
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestListEmpty(t *testing.T) {
	setupWorkDir(t)

	out, err := run(t, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "is empty!")
}

func TestConvertAlreadyConvertedAndHistory(t *testing.T) {
	root := setupWorkDir(t)
	bin := filepath.Join(root, "application", "bin")
	require.NoError(t, os.MkdirAll(filepath.Join(bin, "video_source"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(bin, "frame_output", "clip"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(bin, "video_source", "clip.mp4"), []byte("x"), 0o644))

	out, err := run(t, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "clip.mp4")
	assert.Contains(t, out, "converted")

	out, err = run(t, "convert", "clip.mp4")
	require.NoError(t, err)
	assert.Contains(t, out, "clip.mp4: Video already converted!")

	out, err = run(t, "history")
	require.NoError(t, err)
	assert.Contains(t, out, "ALREADY_CONVERTED")
	assert.Contains(t, out, "clip.mp4")
}

func TestConvertFailureReturnsError(t *testing.T) {
	root := setupWorkDir(t)
	src := filepath.Join(root, "application", "bin", "video_source")
	require.NoError(t, os.MkdirAll(src, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(src, "broken.mp4"), []byte("x"), 0o644))

	out, err := run(t, "convert", "broken.mp4")
	assert.EqualError(t, err, "1 of 1 conversions failed")
	assert.Contains(t, out, "Something went wrong!")
	assert.NoDirExists(t, filepath.Join(root, "application", "bin", "frame_output", "broken"))
}

func TestConvertRequiresArgument(t *testing.T) {
	setupWorkDir(t)
	_, err := run(t, "convert")
	assert.Error(t, err)
}
