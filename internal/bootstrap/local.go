package bootstrap

import (
	"context"
	"fmt"

	"github.com/ryanhaynes01/Individual-Project/internal/domain/port"
	"github.com/ryanhaynes01/Individual-Project/internal/fsops"
	"github.com/ryanhaynes01/Individual-Project/internal/infra/archive"
	"github.com/ryanhaynes01/Individual-Project/internal/infra/config"
	"github.com/ryanhaynes01/Individual-Project/internal/infra/ffmpeg"
	"github.com/ryanhaynes01/Individual-Project/internal/infra/imaging"
	miniostorage "github.com/ryanhaynes01/Individual-Project/internal/infra/minio"
	"github.com/ryanhaynes01/Individual-Project/internal/infra/sqlite"
	"github.com/ryanhaynes01/Individual-Project/internal/usecase"
	"go.uber.org/zap"
)

// Local is the conversion core used by the desktop app and the CLI: frames
// on local disk, history in SQLite, archives optionally in MinIO.
type Local struct {
	FS        *fsops.FileSystem
	Paths     *fsops.Resolver
	Extractor *usecase.ExtractFramesUseCase
	Sources   *usecase.ListSourcesUseCase
	Converter *usecase.ConvertVideoUseCase

	repo *sqlite.ConversionRepository
}

// NewLocal resolves the directory layout, creating the source and output
// directories when missing, and wires the use cases around notifier.
func NewLocal(ctx context.Context, cfg *config.Config, notifier port.OutcomeNotifier, log *zap.Logger) (*Local, error) {
	paths, err := resolver(cfg.WorkDir)
	if err != nil {
		return nil, err
	}
	fs := fsops.New(log.Named("fsops"))

	for _, dir := range []string{cfg.SourceDir, cfg.OutputDir} {
		if res := fs.EnsureDirectory(paths.Resolve(dir)); !res.OK() {
			return nil, fmt.Errorf("prepare %s: %s", dir, res.Message())
		}
	}

	decoder := ffmpeg.NewDecoder(cfg.FFmpegPath, cfg.FFprobePath, log.Named("ffmpeg"))
	if !decoder.IsAvailable() {
		log.Warn("ffmpeg not found, conversions will fail", zap.String("ffmpeg", cfg.FFmpegPath))
	}

	repo, err := sqlite.NewConversionRepository(paths.Resolve(cfg.HistoryDB), log.Named("history"))
	if err != nil {
		return nil, fmt.Errorf("open history: %w", err)
	}

	var storage port.ArchiveStorage
	if cfg.ArchiveEnabled {
		s, err := miniostorage.NewStorage(miniostorage.StorageConfig{
			Endpoint:      cfg.MinIOEndpoint,
			AccessKey:     cfg.MinIOAccessKey,
			SecretKey:     cfg.MinIOSecretKey,
			UseSSL:        cfg.MinIOUseSSL,
			SourceBucket:  cfg.MinIOSourceBucket,
			ArchiveBucket: cfg.MinIOArchiveBucket,
		})
		if err != nil {
			repo.Close()
			return nil, err
		}
		if err := s.EnsureBuckets(ctx); err != nil {
			log.Warn("object storage unavailable, archiving disabled", zap.Error(err))
		} else {
			storage = s
		}
	}

	extractor := usecase.NewExtractFramesUseCase(
		fs, paths, decoder,
		imaging.NewFrameWriter(cfg.JPEGQuality, cfg.FrameMaxWidth),
		notifier, log,
		usecase.ExtractFramesConfig{
			SourceDir:  cfg.SourceDir,
			OutputRoot: cfg.OutputDir,
			FrameExt:   cfg.FrameExt,
		},
	)

	converter := usecase.NewConvertVideoUseCase(extractor, repo, archive.NewZipCreator(), storage, log,
		usecase.ConvertVideoConfig{
			TempDir:        cfg.TempDir,
			ArchiveEnabled: storage != nil,
		})

	return &Local{
		FS:        fs,
		Paths:     paths,
		Extractor: extractor,
		Sources:   usecase.NewListSourcesUseCase(fs, paths, cfg.SourceDir, extractor),
		Converter: converter,
		repo:      repo,
	}, nil
}

func (l *Local) Close() error {
	return l.repo.Close()
}

func resolver(workDir string) (*fsops.Resolver, error) {
	if workDir != "" {
		return fsops.NewResolver(workDir), nil
	}
	r, err := fsops.NewWorkingDirResolver()
	if err != nil {
		return nil, fmt.Errorf("resolve working directory: %w", err)
	}
	return r, nil
}
