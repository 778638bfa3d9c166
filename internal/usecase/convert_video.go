package usecase

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ryanhaynes01/Individual-Project/internal/domain/entity"
	"github.com/ryanhaynes01/Individual-Project/internal/domain/port"
	"github.com/ryanhaynes01/Individual-Project/internal/infra/metrics"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

type ConvertVideoConfig struct {
	TempDir        string
	ArchiveEnabled bool
}

// ConvertVideoUseCase runs a frame extraction and keeps its history record,
// optionally publishing the frames as a zip archive.
type ConvertVideoUseCase struct {
	extractor *ExtractFramesUseCase
	repo      port.ConversionRepository
	zipper    port.Zipper
	storage   port.ArchiveStorage
	logger    *zap.Logger
	cfg       ConvertVideoConfig
}

func NewConvertVideoUseCase(
	extractor *ExtractFramesUseCase,
	repo port.ConversionRepository,
	zipper port.Zipper,
	storage port.ArchiveStorage,
	logger *zap.Logger,
	cfg ConvertVideoConfig,
) *ConvertVideoUseCase {
	if cfg.TempDir == "" {
		cfg.TempDir = os.TempDir()
	}
	return &ConvertVideoUseCase{
		extractor: extractor,
		repo:      repo,
		zipper:    zipper,
		storage:   storage,
		logger:    logger,
		cfg:       cfg,
	}
}

// ErrHistory wraps failures to write the history record.
var ErrHistory = errors.New("conversion history not recorded")

// Execute always runs the extraction, so the sink is dismissed and the
// notifier called even when the history store is down. The returned record is
// never nil; a non-nil error (wrapping ErrHistory) means it was not persisted.
func (uc *ConvertVideoUseCase) Execute(ctx context.Context, sourceName string, sink port.ProgressSink) (*entity.Conversion, error) {
	ctx, span := otel.Tracer("usecase").Start(ctx, "ConvertVideoUseCase.Execute")
	defer span.End()

	conv := entity.NewConversion(sourceName)
	span.SetAttributes(attribute.String("conversion.id", conv.ID.String()))
	log := uc.logger.With(zap.String("conversion_id", conv.ID.String()), zap.String("source", sourceName))

	conv.MarkProcessing()
	createErr := uc.repo.Create(ctx, conv)
	if createErr != nil {
		log.Error("failed to create conversion record, converting anyway", zap.Error(createErr))
	}

	ex := uc.extractor.Execute(ctx, sourceName, sink)
	conv.Finish(ex)

	if conv.Status == entity.ConversionStatusCompleted && uc.cfg.ArchiveEnabled && uc.storage != nil {
		if err := uc.archive(ctx, conv); err != nil {
			log.Warn("archive upload failed, frames kept locally", zap.Error(err))
			conv.NoteArchiveFailure(err.Error())
		}
	}

	if createErr != nil {
		return conv, fmt.Errorf("%w: create: %w", ErrHistory, createErr)
	}
	if err := uc.repo.Update(ctx, conv); err != nil {
		log.Error("failed to update conversion record", zap.Error(err))
		return conv, fmt.Errorf("%w: update: %w", ErrHistory, err)
	}
	return conv, nil
}

func (uc *ConvertVideoUseCase) archive(ctx context.Context, conv *entity.Conversion) error {
	ctx, span := otel.Tracer("usecase").Start(ctx, "archive_frames")
	defer span.End()
	start := time.Now()

	workDir := filepath.Join(uc.cfg.TempDir, conv.ID.String())
	if err := os.MkdirAll(workDir, 0o755); err != nil {
		return fmt.Errorf("create workdir: %w", err)
	}
	defer os.RemoveAll(workDir)

	zipPath := filepath.Join(workDir, "frames.zip")
	if _, err := uc.zipper.ZipDirectory(ctx, conv.OutputDir, zipPath); err != nil {
		return fmt.Errorf("zip frames: %w", err)
	}

	zipFile, err := os.Open(zipPath)
	if err != nil {
		return fmt.Errorf("open zip: %w", err)
	}
	defer zipFile.Close()

	stat, err := zipFile.Stat()
	if err != nil {
		return fmt.Errorf("stat zip: %w", err)
	}

	key := fmt.Sprintf("%s/frames_%s.zip", StripExtension(conv.SourceName), conv.ID.String())
	if err := uc.storage.UploadArchive(ctx, key, zipFile, stat.Size()); err != nil {
		return fmt.Errorf("upload archive: %w", err)
	}

	conv.MarkArchived(key)
	metrics.ConversionDuration.WithLabelValues("archive").Observe(time.Since(start).Seconds())
	return nil
}

// History returns the most recent conversion records.
func (uc *ConvertVideoUseCase) History(ctx context.Context, limit int) ([]*entity.Conversion, error) {
	return uc.repo.List(ctx, limit)
}
