package imaging

import (
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/draw"
)

// FrameWriter encodes decoded frames to image files. The encoder is chosen by
// the file extension; frames wider than MaxWidth are downscaled first.
type FrameWriter struct {
	quality  int
	maxWidth int
}

func NewFrameWriter(jpegQuality, maxWidth int) *FrameWriter {
	if jpegQuality <= 0 || jpegQuality > 100 {
		jpegQuality = jpeg.DefaultQuality
	}
	return &FrameWriter{quality: jpegQuality, maxWidth: maxWidth}
}

// WriteFrame creates path exclusively; an existing file is an error.
func (w *FrameWriter) WriteFrame(path string, img image.Image) (err error) {
	encode, err := w.encoderFor(path)
	if err != nil {
		return err
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("create frame file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close frame file: %w", cerr)
		}
	}()

	if err := encode(f, w.fit(img)); err != nil {
		return fmt.Errorf("encode frame: %w", err)
	}
	return nil
}

func (w *FrameWriter) encoderFor(path string) (func(io.Writer, image.Image) error, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		return func(out io.Writer, img image.Image) error {
			return jpeg.Encode(out, img, &jpeg.Options{Quality: w.quality})
		}, nil
	case ".png":
		return png.Encode, nil
	default:
		return nil, fmt.Errorf("unsupported frame extension %q", filepath.Ext(path))
	}
}

func (w *FrameWriter) fit(img image.Image) image.Image {
	b := img.Bounds()
	if w.maxWidth <= 0 || b.Dx() <= w.maxWidth {
		return img
	}

	height := b.Dy() * w.maxWidth / b.Dx()
	if height < 1 {
		height = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, w.maxWidth, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}
