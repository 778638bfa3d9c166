package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := LoadFrom("", nil)
	require.NoError(t, err)

	assert.Equal(t, "application/bin/video_source", cfg.SourceDir)
	assert.Equal(t, "application/bin/frame_output", cfg.OutputDir)
	assert.Equal(t, ".jpg", cfg.FrameExt)
	assert.Equal(t, 95, cfg.JPEGQuality)
	assert.Equal(t, 2, cfg.WorkerCount)
	assert.Equal(t, 5, cfg.MaxAttempts)
	assert.False(t, cfg.ArchiveEnabled)
	assert.Empty(t, cfg.WorkDir)
}

func TestLoadSettingsFileThenEnvironment(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.ini")
	settings := `
log_level = debug

[paths]
source_dir = videos
output_dir = frames

[frames]
frame_ext = .png
jpeg_quality = 80
`
	require.NoError(t, os.WriteFile(path, []byte(settings), 0o644))

	cfg, err := LoadFrom(path, []string{"OUTPUT_DIR=/data/frames", "MALFORMED"})
	require.NoError(t, err)

	assert.Equal(t, "videos", cfg.SourceDir)
	assert.Equal(t, "/data/frames", cfg.OutputDir)
	assert.Equal(t, ".png", cfg.FrameExt)
	assert.Equal(t, 80, cfg.JPEGQuality)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadMissingSettingsFile(t *testing.T) {
	_, err := LoadFrom(filepath.Join(t.TempDir(), "nope.ini"), nil)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name string
		env  []string
	}{
		{"bad extension", []string{"FRAME_EXT=.gif"}},
		{"quality too high", []string{"JPEG_QUALITY=101"}},
		{"negative width", []string{"FRAME_MAX_WIDTH=-1"}},
		{"no workers", []string{"WORKER_COUNT=0"}},
		{"no attempts", []string{"WORKER_MAX_ATTEMPTS=0"}},
		{"bad int", []string{"JPEG_QUALITY=high"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := LoadFrom("", tc.env)
			assert.Error(t, err)
		})
	}
}
