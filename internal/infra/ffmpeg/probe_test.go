package ffmpeg

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseProbe(t *testing.T) {
	raw := []byte(`{
		"streams": [{"codec_type": "video", "width": 320, "height": 240, "nb_frames": "48", "duration": "2.000000"}],
		"format": {"duration": "2.010000"}
	}`)

	info, err := parseProbe(raw)
	require.NoError(t, err)
	assert.Equal(t, &VideoInfo{Width: 320, Height: 240, FrameCount: 48, Duration: 2}, info)
}

func TestParseProbeFallsBackToPacketCount(t *testing.T) {
	raw := []byte(`{"streams": [{"width": 64, "height": 48, "nb_read_packets": "7"}], "format": {"duration": "0.7"}}`)

	info, err := parseProbe(raw)
	require.NoError(t, err)
	assert.Equal(t, 7, info.FrameCount)
	assert.InDelta(t, 0.7, info.Duration, 1e-9)
}

func TestParseProbeUnknownFrameCount(t *testing.T) {
	raw := []byte(`{"streams": [{"width": 64, "height": 48, "nb_frames": "N/A"}]}`)

	_, err := parseProbe(raw)
	assert.ErrorIs(t, err, ErrUnknownFrameCount)
}

func TestParseProbeErrors(t *testing.T) {
	cases := map[string]string{
		"not json":   `nope`,
		"no streams": `{"streams": []}`,
		"zero size":  `{"streams": [{"width": 0, "height": 0, "nb_frames": "1"}]}`,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := parseProbe([]byte(raw))
			assert.Error(t, err)
		})
	}
}
