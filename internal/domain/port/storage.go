package port

import (
	"context"
	"io"
)

type ArchiveStorage interface {
	DownloadSource(ctx context.Context, objectKey string, destPath string) error
	UploadArchive(ctx context.Context, objectKey string, reader io.Reader, size int64) error
}

type Zipper interface {
	ZipDirectory(ctx context.Context, dir string, outputPath string) (int, error)
}
