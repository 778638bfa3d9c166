package ffmpeg

import (
	"context"
	"os/exec"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// makeTestVideo renders a synthetic clip with ffmpeg's lavfi test source.
func makeTestVideo(t *testing.T, frames int) string {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping ffmpeg test in short mode")
	}
	for _, bin := range []string{"ffmpeg", "ffprobe"} {
		if _, err := exec.LookPath(bin); err != nil {
			t.Skipf("%s not installed", bin)
		}
	}

	out := filepath.Join(t.TempDir(), "clip.mp4")
	cmd := exec.Command("ffmpeg", "-v", "error",
		"-f", "lavfi", "-i", "testsrc=size=64x48:rate=10",
		"-frames:v", strconv.Itoa(frames),
		"-pix_fmt", "yuv420p",
		out,
	)
	output, err := cmd.CombinedOutput()
	require.NoError(t, err, string(output))
	return out
}

func TestDecoderReadsEveryFrame(t *testing.T) {
	video := makeTestVideo(t, 12)
	d := NewDecoder("", "", zap.NewNop())

	src, err := d.Open(context.Background(), video)
	require.NoError(t, err)
	defer src.Close()

	require.Equal(t, 12, src.FrameCount())
	for i := 0; i < src.FrameCount(); i++ {
		img, err := src.Next()
		require.NoError(t, err, "frame %d", i+1)
		assert.Equal(t, 64, img.Bounds().Dx())
		assert.Equal(t, 48, img.Bounds().Dy())
	}

	_, err = src.Next()
	assert.Error(t, err)
}

func TestDecoderCloseBeforeEnd(t *testing.T) {
	video := makeTestVideo(t, 30)
	d := NewDecoder("ffmpeg", "ffprobe", zap.NewNop())

	src, err := d.Open(context.Background(), video)
	require.NoError(t, err)

	_, err = src.Next()
	require.NoError(t, err)
	assert.NoError(t, src.Close())
	assert.NoError(t, src.Close())
}

func TestDecoderOpenMissingFile(t *testing.T) {
	if _, err := exec.LookPath("ffprobe"); err != nil {
		t.Skip("ffprobe not installed")
	}
	d := NewDecoder("", "", zap.NewNop())

	_, err := d.Open(context.Background(), filepath.Join(t.TempDir(), "missing.mp4"))
	assert.Error(t, err)
}

func TestDecoderUnavailableBinaries(t *testing.T) {
	d := NewDecoder("/nonexistent/ffmpeg", "/nonexistent/ffprobe", zap.NewNop())
	assert.False(t, d.IsAvailable())

	_, err := d.Open(context.Background(), "clip.mp4")
	assert.Error(t, err)
}
