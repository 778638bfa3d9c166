package usecase

import (
	"github.com/ryanhaynes01/Individual-Project/internal/domain/entity"
	"github.com/ryanhaynes01/Individual-Project/internal/fsops"
)

// ListSourcesUseCase enumerates the source directory for the selection front ends.
type ListSourcesUseCase struct {
	fs        *fsops.FileSystem
	paths     *fsops.Resolver
	sourceDir string
	extractor *ExtractFramesUseCase
}

func NewListSourcesUseCase(fs *fsops.FileSystem, paths *fsops.Resolver, sourceDir string, extractor *ExtractFramesUseCase) *ListSourcesUseCase {
	return &ListSourcesUseCase{fs: fs, paths: paths, sourceDir: sourceDir, extractor: extractor}
}

func (uc *ListSourcesUseCase) SourceDir() string {
	return uc.paths.Resolve(uc.sourceDir)
}

// Execute returns the entries in filesystem order. A missing source directory
// yields an empty slice.
func (uc *ListSourcesUseCase) Execute() []entity.SourceVideo {
	names, _ := uc.fs.ListDirectory(uc.SourceDir())

	videos := make([]entity.SourceVideo, 0, len(names))
	for _, name := range names {
		out := uc.extractor.OutputDirFor(name)
		videos = append(videos, entity.SourceVideo{
			Name:      name,
			OutputDir: out,
			Converted: uc.fs.Exists(out),
		})
	}
	return videos
}
