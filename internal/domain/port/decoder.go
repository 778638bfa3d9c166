package port

import (
	"context"
	"image"
)

// FrameSource yields decoded frames of one opened video in decode order.
type FrameSource interface {
	// FrameCount is the total number of frames the container reports.
	FrameCount() int
	// Next decodes the next frame. It returns an error when no frame is available.
	Next() (image.Image, error)
	Close() error
}

type FrameDecoder interface {
	Open(ctx context.Context, videoPath string) (FrameSource, error)
}

type FrameWriter interface {
	WriteFrame(path string, img image.Image) error
}
