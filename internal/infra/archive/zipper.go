package archive

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

type ZipCreator struct{}

func NewZipCreator() *ZipCreator {
	return &ZipCreator{}
}

// ZipDirectory writes every regular file directly under dir into a zip at
// outputPath, entries prefixed with the directory's base name. It returns the
// number of files added.
func (z *ZipCreator) ZipDirectory(ctx context.Context, dir string, outputPath string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("read dir: %w", err)
	}

	zipFile, err := os.Create(outputPath)
	if err != nil {
		return 0, fmt.Errorf("create zip file: %w", err)
	}
	defer zipFile.Close()

	zipWriter := zip.NewWriter(zipFile)
	prefix := filepath.Base(dir)

	added := 0
	for _, entry := range entries {
		select {
		case <-ctx.Done():
			zipWriter.Close()
			return added, ctx.Err()
		default:
		}

		if !entry.Type().IsRegular() {
			continue
		}
		if err := addFileToZip(zipWriter, filepath.Join(dir, entry.Name()), prefix+"/"+entry.Name()); err != nil {
			zipWriter.Close()
			return added, fmt.Errorf("add %s to zip: %w", entry.Name(), err)
		}
		added++
	}

	if err := zipWriter.Close(); err != nil {
		return added, fmt.Errorf("finalize zip: %w", err)
	}
	return added, nil
}

func addFileToZip(zw *zip.Writer, filename, name string) error {
	file, err := os.Open(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return err
	}

	header, err := zip.FileInfoHeader(info)
	if err != nil {
		return err
	}

	header.Name = name
	// Frames are already compressed images.
	header.Method = zip.Store

	writer, err := zw.CreateHeader(header)
	if err != nil {
		return err
	}

	_, err = io.Copy(writer, file)
	return err
}
