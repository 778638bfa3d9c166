package usecase

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/ryanhaynes01/Individual-Project/internal/domain/entity"
	"github.com/ryanhaynes01/Individual-Project/internal/domain/port"
	"github.com/ryanhaynes01/Individual-Project/internal/fsops"
	"github.com/ryanhaynes01/Individual-Project/internal/infra/metrics"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// HandleRequestUseCase is the queue entry point: one request message in, one
// status message out.
type HandleRequestUseCase struct {
	convert   *ConvertVideoUseCase
	fs        *fsops.FileSystem
	paths     *fsops.Resolver
	sourceDir string
	storage   port.ArchiveStorage
	publisher port.StatusPublisher
	dlq       port.DLQPublisher
	notifier  port.FailureNotifier
	logger    *zap.Logger
}

func NewHandleRequestUseCase(
	convert *ConvertVideoUseCase,
	fs *fsops.FileSystem,
	paths *fsops.Resolver,
	sourceDir string,
	storage port.ArchiveStorage,
	publisher port.StatusPublisher,
	dlq port.DLQPublisher,
	notifier port.FailureNotifier,
	logger *zap.Logger,
) *HandleRequestUseCase {
	return &HandleRequestUseCase{
		convert:   convert,
		fs:        fs,
		paths:     paths,
		sourceDir: sourceDir,
		storage:   storage,
		publisher: publisher,
		dlq:       dlq,
		notifier:  notifier,
		logger:    logger,
	}
}

// Execute returns an error only for failures worth redelivering, which today
// means the source object could not be fetched.
func (uc *HandleRequestUseCase) Execute(ctx context.Context, rawMsg []byte) error {
	ctx, span := otel.Tracer("usecase").Start(ctx, "HandleRequestUseCase.Execute")
	defer span.End()

	var msg entity.ConversionRequestMessage
	if err := json.Unmarshal(rawMsg, &msg); err != nil {
		uc.logger.Error("failed to unmarshal message", zap.Error(err), zap.ByteString("body", rawMsg))
		uc.deadLetter(ctx, rawMsg, "unmarshal_error: "+err.Error())
		return nil
	}
	if !ValidSourceName(msg.SourceName) {
		uc.logger.Error("rejecting request with invalid source name", zap.String("source", msg.SourceName))
		uc.deadLetter(ctx, rawMsg, "invalid_source_name")
		return nil
	}
	if msg.RequestID == uuid.Nil {
		msg.RequestID = uuid.New()
	}

	span.SetAttributes(
		attribute.String("request.id", msg.RequestID.String()),
		attribute.String("source.name", msg.SourceName),
	)
	log := uc.logger.With(zap.String("request_id", msg.RequestID.String()), zap.String("source", msg.SourceName))

	if msg.SourceKey != "" {
		if err := uc.fetchSource(ctx, msg); err != nil {
			log.Error("failed to fetch source video", zap.Error(err))
			return fmt.Errorf("fetch source: %w", err)
		}
	}

	// The conversion has run even when err is set; redelivering would only
	// report ALREADY_CONVERTED, so a history failure is logged, not retried.
	conv, err := uc.convert.Execute(ctx, msg.SourceName, port.NopProgress{})
	if err != nil {
		log.Error("conversion finished without a history record", zap.Error(err))
		metrics.RequestsTotal.WithLabelValues("history_error").Inc()
	}

	uc.publishStatus(ctx, msg.RequestID, conv, log)
	metrics.RequestsTotal.WithLabelValues(string(conv.Status)).Inc()

	if conv.Status == entity.ConversionStatusFailed && msg.UserEmail != "" && uc.notifier != nil {
		if err := uc.notifier.NotifyFailure(ctx, msg.UserEmail, conv.ID.String(), msg.SourceName, conv.ErrorMessage); err != nil {
			log.Warn("failure notification not sent", zap.Error(err))
		}
	}
	return nil
}

// fetchSource downloads the object into the source directory unless a file of
// that name is already there.
func (uc *HandleRequestUseCase) fetchSource(ctx context.Context, msg entity.ConversionRequestMessage) error {
	dest := uc.paths.Resolve(uc.sourceDir, msg.SourceName)
	if uc.fs.Exists(dest) {
		return nil
	}
	if uc.storage == nil {
		return fmt.Errorf("no object storage configured for key %q", msg.SourceKey)
	}
	return uc.storage.DownloadSource(ctx, msg.SourceKey, dest)
}

func (uc *HandleRequestUseCase) deadLetter(ctx context.Context, rawMsg []byte, reason string) {
	metrics.RequestsTotal.WithLabelValues("dlq").Inc()
	if err := uc.dlq.PublishToDLQ(ctx, rawMsg, reason); err != nil {
		uc.logger.Error("failed to publish to DLQ", zap.Error(err))
	}
}

func (uc *HandleRequestUseCase) publishStatus(ctx context.Context, requestID uuid.UUID, conv *entity.Conversion, log *zap.Logger) {
	data, err := json.Marshal(entity.NewStatusMessage(requestID, conv))
	if err != nil {
		log.Error("failed to encode status", zap.Error(err))
		return
	}
	if err := uc.publisher.PublishStatus(ctx, data); err != nil {
		log.Error("failed to publish status", zap.Error(err))
	}
}
