package usecase

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/ryanhaynes01/Individual-Project/internal/domain/entity"
	"github.com/ryanhaynes01/Individual-Project/internal/domain/port"
	"github.com/ryanhaynes01/Individual-Project/internal/fsops"
	"github.com/ryanhaynes01/Individual-Project/internal/infra/metrics"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

var (
	ErrNoFrame           = errors.New("decoder produced no frame")
	ErrInvalidSourceName = errors.New("source name must be a plain file name")
)

type ExtractFramesConfig struct {
	SourceDir  string
	OutputRoot string
	// FrameExt is appended to the 1-based frame index, e.g. ".jpg".
	FrameExt string
}

// ExtractFramesUseCase converts one source video into a directory of numbered frames.
type ExtractFramesUseCase struct {
	fs       *fsops.FileSystem
	paths    *fsops.Resolver
	decoder  port.FrameDecoder
	writer   port.FrameWriter
	notifier port.OutcomeNotifier
	logger   *zap.Logger
	cfg      ExtractFramesConfig
}

func NewExtractFramesUseCase(
	fs *fsops.FileSystem,
	paths *fsops.Resolver,
	decoder port.FrameDecoder,
	writer port.FrameWriter,
	notifier port.OutcomeNotifier,
	logger *zap.Logger,
	cfg ExtractFramesConfig,
) *ExtractFramesUseCase {
	if cfg.FrameExt == "" {
		cfg.FrameExt = ".jpg"
	}
	return &ExtractFramesUseCase{
		fs:       fs,
		paths:    paths,
		decoder:  decoder,
		writer:   writer,
		notifier: notifier,
		logger:   logger,
		cfg:      cfg,
	}
}

// OutputDirFor returns the output directory a source name converts into.
func (uc *ExtractFramesUseCase) OutputDirFor(sourceName string) string {
	return uc.paths.Resolve(uc.cfg.OutputRoot, StripExtension(sourceName))
}

// Execute runs one conversion to its terminal outcome. It never returns nil.
// The sink is dismissed and the notifier called exactly once on every path.
func (uc *ExtractFramesUseCase) Execute(ctx context.Context, sourceName string, sink port.ProgressSink) *entity.Extraction {
	ctx, span := otel.Tracer("usecase").Start(ctx, "ExtractFramesUseCase.Execute")
	defer span.End()

	if sink == nil {
		sink = port.NopProgress{}
	}
	start := time.Now()

	ex := &entity.Extraction{
		SourceName: sourceName,
		SourcePath: uc.paths.Resolve(uc.cfg.SourceDir, sourceName),
		OutputDir:  uc.OutputDirFor(sourceName),
	}
	span.SetAttributes(
		attribute.String("source.name", sourceName),
		attribute.String("output.dir", ex.OutputDir),
	)
	log := uc.logger.With(zap.String("source", sourceName), zap.String("output_dir", ex.OutputDir))

	metrics.ActiveConversions.Inc()
	defer metrics.ActiveConversions.Dec()

	created := uc.run(ctx, ex, sink, log)

	if d, ok := sink.(port.Dismisser); ok {
		d.Dismiss()
	}
	if ex.Outcome == entity.OutcomeFailed {
		span.SetStatus(codes.Error, ex.Err.Error())
		if created {
			uc.rollback(ex, log)
		}
	}

	metrics.ConversionsTotal.WithLabelValues(ex.Outcome.String()).Inc()
	metrics.ConversionDuration.WithLabelValues("extract").Observe(time.Since(start).Seconds())
	metrics.FramesExtractedTotal.Add(float64(ex.FramesWritten))

	switch ex.Outcome {
	case entity.OutcomeCompleted:
		log.Info("conversion completed", zap.Int("frames", ex.FramesWritten))
	case entity.OutcomeAlreadyConverted:
		log.Info("video already converted")
	default:
		log.Error("conversion failed",
			zap.Error(ex.Err),
			zap.Int("frames_written", ex.FramesWritten),
			zap.Bool("rolled_back", ex.RolledBack),
		)
	}

	if uc.notifier != nil {
		uc.notifier.NotifyOutcome(ctx, ex)
	}
	return ex
}

// run reports whether this run created the output directory.
func (uc *ExtractFramesUseCase) run(ctx context.Context, ex *entity.Extraction, sink port.ProgressSink, log *zap.Logger) bool {
	if !ValidSourceName(ex.SourceName) {
		ex.Outcome = entity.OutcomeFailed
		ex.Err = fmt.Errorf("%q: %w", ex.SourceName, ErrInvalidSourceName)
		return false
	}

	res := uc.fs.CreateDirectory(ex.OutputDir)
	switch {
	case res.Kind == fsops.KindAlreadyExists:
		ex.Outcome = entity.OutcomeAlreadyConverted
		return false
	case !res.OK():
		ex.Outcome = entity.OutcomeFailed
		ex.Err = fmt.Errorf("create output directory: %w", res.Err)
		return false
	}

	if err := uc.decodeAll(ctx, ex, sink, log); err != nil {
		ex.Outcome = entity.OutcomeFailed
		ex.Err = err
		return true
	}
	ex.Outcome = entity.OutcomeCompleted
	return true
}

func (uc *ExtractFramesUseCase) decodeAll(ctx context.Context, ex *entity.Extraction, sink port.ProgressSink, log *zap.Logger) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic during extraction: %v", r)
		}
	}()

	src, err := uc.decoder.Open(ctx, ex.SourcePath)
	if err != nil {
		return fmt.Errorf("open video: %w", err)
	}
	defer func() {
		if cerr := src.Close(); cerr != nil {
			log.Warn("closing frame source", zap.Error(cerr))
		}
	}()

	ex.TotalFrames = src.FrameCount()
	sink.SetUpperBound(ex.TotalFrames)
	log.Debug("decoding frames", zap.Int("total", ex.TotalFrames))

	for i := 0; i < ex.TotalFrames; i++ {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("frame %d: %w", i+1, err)
		}

		img, err := src.Next()
		if err != nil {
			return fmt.Errorf("decode frame %d: %w", i+1, err)
		}
		if img == nil {
			return fmt.Errorf("decode frame %d: %w", i+1, ErrNoFrame)
		}

		framePath := uc.paths.Resolve(ex.OutputDir, strconv.Itoa(i+1)+uc.cfg.FrameExt)
		if err := uc.writer.WriteFrame(framePath, img); err != nil {
			return fmt.Errorf("write frame %d: %w", i+1, err)
		}
		ex.FramesWritten++
		sink.Advance(1)
	}
	return nil
}

func (uc *ExtractFramesUseCase) rollback(ex *entity.Extraction, log *zap.Logger) {
	if res := uc.fs.DeleteDirectoryRecursive(ex.OutputDir); res.OK() {
		ex.RolledBack = true
		log.Info("partial output removed")
	}
}

// StripExtension drops the final '.' and everything after it. Names without an
// extension, and dot-files such as ".mp4", are returned unchanged.
func StripExtension(name string) string {
	if i := strings.LastIndex(name, "."); i > 0 {
		return name[:i]
	}
	return name
}

// ValidSourceName reports whether name is a bare entry of the source directory.
func ValidSourceName(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	return filepath.Base(name) == name && !strings.ContainsAny(name, `/\`)
}
