package ffmpeg

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

var ErrUnknownFrameCount = errors.New("frame count unavailable")

// VideoInfo is what the workflow needs to know before decoding.
type VideoInfo struct {
	Width      int
	Height     int
	FrameCount int
	Duration   float64
}

type probeOutput struct {
	Streams []struct {
		Width         int    `json:"width"`
		Height        int    `json:"height"`
		NbFrames      string `json:"nb_frames"`
		NbReadPackets string `json:"nb_read_packets"`
		Duration      string `json:"duration"`
		CodecType     string `json:"codec_type"`
	} `json:"streams"`
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

// Probe reads the first video stream's geometry and frame count. When the
// container does not carry a frame count, packets are counted instead.
func (d *Decoder) Probe(ctx context.Context, videoPath string) (*VideoInfo, error) {
	out, err := d.runProbe(ctx, videoPath, "stream=codec_type,width,height,nb_frames,duration:format=duration")
	if err != nil {
		return nil, err
	}
	info, err := parseProbe(out)
	if errors.Is(err, ErrUnknownFrameCount) {
		out, err = d.runProbe(ctx, videoPath, "stream=codec_type,width,height,nb_read_packets:format=duration", "-count_packets")
		if err != nil {
			return nil, err
		}
		return parseProbe(out)
	}
	return info, err
}

func (d *Decoder) runProbe(ctx context.Context, videoPath, entries string, extra ...string) ([]byte, error) {
	args := []string{"-v", "error", "-select_streams", "v:0"}
	args = append(args, extra...)
	args = append(args, "-show_entries", entries, "-of", "json", videoPath)

	cmd := exec.CommandContext(ctx, d.ffprobePath, args...)
	output, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return nil, fmt.Errorf("ffprobe: %w, output: %s", err, strings.TrimSpace(string(exitErr.Stderr)))
		}
		return nil, fmt.Errorf("ffprobe: %w", err)
	}
	return output, nil
}

func parseProbe(raw []byte) (*VideoInfo, error) {
	var out probeOutput
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("parse ffprobe output: %w", err)
	}
	if len(out.Streams) == 0 {
		return nil, fmt.Errorf("no video stream found")
	}

	s := out.Streams[0]
	if s.Width <= 0 || s.Height <= 0 {
		return nil, fmt.Errorf("invalid frame size %dx%d", s.Width, s.Height)
	}

	info := &VideoInfo{Width: s.Width, Height: s.Height}
	info.Duration = parseFloat(s.Duration)
	if info.Duration == 0 {
		info.Duration = parseFloat(out.Format.Duration)
	}

	count := s.NbFrames
	if count == "" || count == "N/A" {
		count = s.NbReadPackets
	}
	n, err := strconv.Atoi(count)
	if err != nil || n < 0 {
		return nil, ErrUnknownFrameCount
	}
	info.FrameCount = n
	return info, nil
}

func parseFloat(s string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return f
}
