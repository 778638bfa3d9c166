package ffmpeg

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"io"
	"os/exec"
	"strings"
	"sync"

	"github.com/ryanhaynes01/Individual-Project/internal/domain/port"
	ffmpeggo "github.com/u2takey/ffmpeg-go"
	"go.uber.org/zap"
)

// Decoder opens videos through an ffmpeg subprocess that streams raw RGBA frames.
type Decoder struct {
	ffmpegPath  string
	ffprobePath string
	logger      *zap.Logger
}

func NewDecoder(ffmpegPath, ffprobePath string, logger *zap.Logger) *Decoder {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	if ffprobePath == "" {
		ffprobePath = "ffprobe"
	}
	return &Decoder{ffmpegPath: ffmpegPath, ffprobePath: ffprobePath, logger: logger}
}

// IsAvailable reports whether both ffmpeg and ffprobe can be found.
func (d *Decoder) IsAvailable() bool {
	if _, err := exec.LookPath(d.ffmpegPath); err != nil {
		return false
	}
	_, err := exec.LookPath(d.ffprobePath)
	return err == nil
}

func (d *Decoder) Open(ctx context.Context, videoPath string) (port.FrameSource, error) {
	info, err := d.Probe(ctx, videoPath)
	if err != nil {
		return nil, err
	}

	cmd := ffmpeggo.Input(videoPath).
		Output("pipe:", ffmpeggo.KwArgs{
			"format":   "rawvideo",
			"pix_fmt":  "rgba",
			"s":        fmt.Sprintf("%dx%d", info.Width, info.Height),
			"vsync":    "passthrough",
			"loglevel": "error",
		}).
		SetFfmpegPath(d.ffmpegPath).
		Compile()

	stderr := &lockedBuffer{}
	cmd.Stderr = stderr
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("ffmpeg stdout: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start ffmpeg: %w", err)
	}

	src := &frameSource{
		cmd:    cmd,
		stdout: stdout,
		stderr: stderr,
		info:   *info,
	}
	src.stop = context.AfterFunc(ctx, src.kill)

	d.logger.Debug("ffmpeg decoder started",
		zap.String("video", videoPath),
		zap.Int("frames", info.FrameCount),
		zap.Int("width", info.Width),
		zap.Int("height", info.Height),
	)
	return src, nil
}

type frameSource struct {
	cmd    *exec.Cmd
	stdout io.ReadCloser
	stderr *lockedBuffer
	info   VideoInfo
	stop   func() bool

	closeOnce sync.Once
}

func (s *frameSource) FrameCount() int {
	return s.info.FrameCount
}

func (s *frameSource) Next() (image.Image, error) {
	img := image.NewRGBA(image.Rect(0, 0, s.info.Width, s.info.Height))
	if _, err := io.ReadFull(s.stdout, img.Pix); err != nil {
		if msg := s.stderr.String(); msg != "" {
			return nil, fmt.Errorf("read raw frame: %w, ffmpeg: %s", err, msg)
		}
		return nil, fmt.Errorf("read raw frame: %w", err)
	}
	return img, nil
}

// Close stops ffmpeg whether or not all frames were read.
func (s *frameSource) Close() error {
	s.closeOnce.Do(func() {
		s.stop()
		s.kill()
		_ = s.stdout.Close()
		_ = s.cmd.Wait()
	})
	return nil
}

func (s *frameSource) kill() {
	if s.cmd.Process != nil {
		_ = s.cmd.Process.Kill()
	}
}

type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return strings.TrimSpace(b.buf.String())
}
