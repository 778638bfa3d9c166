package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/ryanhaynes01/Individual-Project/internal/domain/entity"
	"github.com/ryanhaynes01/Individual-Project/internal/infra/archive"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newConvert(t *testing.T, f *extractFixture, repo *memoryRepo, storage *fakeStorage, archiveOn bool) *ConvertVideoUseCase {
	t.Helper()
	return NewConvertVideoUseCase(f.uc, repo, archive.NewZipCreator(), storage, zap.NewNop(), ConvertVideoConfig{
		TempDir:        t.TempDir(),
		ArchiveEnabled: archiveOn,
	})
}

func TestConvertVideoRecordsCompleted(t *testing.T) {
	f := newExtractFixture(t, 3)
	repo := newMemoryRepo()
	uc := newConvert(t, f, repo, nil, false)

	conv, err := uc.Execute(context.Background(), "clip.mp4", nil)
	require.NoError(t, err)

	assert.Equal(t, entity.ConversionStatusCompleted, conv.Status)
	assert.Equal(t, 3, conv.FrameCount)
	assert.Equal(t, f.outputDir("clip"), conv.OutputDir)
	assert.NotNil(t, conv.CompletedAt)

	stored, err := repo.FindByID(context.Background(), conv.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.ConversionStatusCompleted, stored.Status)
}

func TestConvertVideoRecordsAlreadyConvertedAndFailed(t *testing.T) {
	f := newExtractFixture(t, 2)
	repo := newMemoryRepo()
	uc := newConvert(t, f, repo, nil, false)

	_, err := uc.Execute(context.Background(), "clip.mp4", nil)
	require.NoError(t, err)
	again, err := uc.Execute(context.Background(), "clip.mp4", nil)
	require.NoError(t, err)
	assert.Equal(t, entity.ConversionStatusAlreadyConverted, again.Status)

	f.decoder.failAt = 1
	failed, err := uc.Execute(context.Background(), "other.mp4", nil)
	require.NoError(t, err)
	assert.Equal(t, entity.ConversionStatusFailed, failed.Status)
	assert.Contains(t, failed.ErrorMessage, "corrupt packet")

	history, err := uc.History(context.Background(), 10)
	require.NoError(t, err)
	assert.Len(t, history, 3)
}

func TestConvertVideoArchivesOnlyCompleted(t *testing.T) {
	f := newExtractFixture(t, 4)
	storage := &fakeStorage{}
	uc := newConvert(t, f, newMemoryRepo(), storage, true)

	conv, err := uc.Execute(context.Background(), "clip.mp4", nil)
	require.NoError(t, err)
	require.NotEmpty(t, conv.ArchiveKey)
	assert.True(t, strings.HasPrefix(conv.ArchiveKey, "clip/frames_"))
	assert.Greater(t, storage.uploads[conv.ArchiveKey], int64(0))

	again, err := uc.Execute(context.Background(), "clip.mp4", nil)
	require.NoError(t, err)
	assert.Empty(t, again.ArchiveKey)
	assert.Len(t, storage.uploads, 1)
}

func TestConvertVideoArchiveFailureKeepsFrames(t *testing.T) {
	f := newExtractFixture(t, 2)
	storage := &fakeStorage{uploadErr: errors.New("bucket offline")}
	uc := newConvert(t, f, newMemoryRepo(), storage, true)

	conv, err := uc.Execute(context.Background(), "clip.mp4", nil)
	require.NoError(t, err)

	assert.Equal(t, entity.ConversionStatusCompleted, conv.Status)
	assert.Contains(t, conv.ErrorMessage, "bucket offline")
	assert.DirExists(t, f.outputDir("clip"))
}

func TestConvertVideoCreateFailureStillFinishes(t *testing.T) {
	f := newExtractFixture(t, 2)
	repo := newMemoryRepo()
	repo.createErr = errors.New("database is locked")
	uc := newConvert(t, f, repo, nil, false)
	sink := &recordingSink{}

	conv, err := uc.Execute(context.Background(), "clip.mp4", sink)
	require.ErrorIs(t, err, ErrHistory)
	assert.ErrorContains(t, err, "database is locked")

	require.NotNil(t, conv)
	assert.Equal(t, entity.ConversionStatusCompleted, conv.Status)
	assert.Equal(t, 2, conv.FrameCount)
	assert.Equal(t, 1, sink.dismissed)
	assert.Equal(t, []entity.Outcome{entity.OutcomeCompleted}, f.notifier.outcomes)
	assert.Len(t, listFrames(t, f.outputDir("clip")), 2)
}

func TestConvertVideoUpdateFailureKeepsOutcome(t *testing.T) {
	f := newExtractFixture(t, 1)
	repo := newMemoryRepo()
	repo.updateErr = errors.New("connection reset")
	uc := newConvert(t, f, repo, nil, false)
	sink := &recordingSink{}

	conv, err := uc.Execute(context.Background(), "clip.mp4", sink)
	require.ErrorIs(t, err, ErrHistory)
	require.NotNil(t, conv)
	assert.Equal(t, entity.ConversionStatusCompleted, conv.Status)
	assert.Equal(t, 1, sink.dismissed)
	assert.Len(t, f.notifier.outcomes, 1)
}
