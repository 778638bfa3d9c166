package usecase

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/ryanhaynes01/Individual-Project/internal/domain/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListSourcesFlagsConverted(t *testing.T) {
	f := newExtractFixture(t, 2)
	for _, name := range []string{"a.mp4", "b.mp4"} {
		require.True(t, f.fs.CreateFile(filepath.Join(f.root, "videos", name)).OK())
	}
	f.uc.Execute(context.Background(), "b.mp4", nil)

	uc := NewListSourcesUseCase(f.fs, f.paths, "videos", f.uc)
	got := uc.Execute()

	assert.ElementsMatch(t, []entity.SourceVideo{
		{Name: "a.mp4", OutputDir: filepath.Join(f.root, "frames", "a"), Converted: false},
		{Name: "b.mp4", OutputDir: filepath.Join(f.root, "frames", "b"), Converted: true},
	}, got)
}

func TestListSourcesEmptyAndMissing(t *testing.T) {
	f := newExtractFixture(t, 0)
	uc := NewListSourcesUseCase(f.fs, f.paths, "videos", f.uc)
	assert.Empty(t, uc.Execute())

	missing := NewListSourcesUseCase(f.fs, f.paths, "nowhere", f.uc)
	got := missing.Execute()
	assert.NotNil(t, got)
	assert.Empty(t, got)
	assert.Equal(t, filepath.Join(f.root, "nowhere"), missing.SourceDir())
}
