package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/ryanhaynes01/Individual-Project/internal/fsops"
	"github.com/ryanhaynes01/Individual-Project/internal/infra/archive"
	"github.com/ryanhaynes01/Individual-Project/internal/infra/config"
	"github.com/ryanhaynes01/Individual-Project/internal/infra/email"
	"github.com/ryanhaynes01/Individual-Project/internal/infra/ffmpeg"
	"github.com/ryanhaynes01/Individual-Project/internal/infra/imaging"
	"github.com/ryanhaynes01/Individual-Project/internal/infra/metrics"
	miniostorage "github.com/ryanhaynes01/Individual-Project/internal/infra/minio"
	"github.com/ryanhaynes01/Individual-Project/internal/infra/postgres"
	"github.com/ryanhaynes01/Individual-Project/internal/infra/rabbitmq"
	"github.com/ryanhaynes01/Individual-Project/internal/infra/tracing"
	"github.com/ryanhaynes01/Individual-Project/internal/usecase"
	"github.com/ryanhaynes01/Individual-Project/pkg/logger"
	"go.uber.org/zap"
)

const serviceName = "v2f-worker"

func main() {
	cfg, err := config.Load()
	fatalOnErr(err, "load config")

	log, err := logger.New(cfg.LogLevel)
	fatalOnErr(err, "init logger")
	defer log.Sync()

	log.Info("starting " + serviceName)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Tracing is optional.
	tp, err := tracing.InitTracer(ctx, cfg.JaegerEndpoint, serviceName)
	if err != nil {
		log.Warn("tracing disabled", zap.Error(err))
	} else {
		defer tp.Shutdown(context.Background())
	}

	// Directory layout
	paths := fsops.NewResolver(cfg.WorkDir)
	if cfg.WorkDir == "" {
		paths, err = fsops.NewWorkingDirResolver()
		fatalOnErr(err, "resolve working directory")
	}
	fs := fsops.New(log.Named("fsops"))
	for _, dir := range []string{cfg.SourceDir, cfg.OutputDir} {
		if res := fs.EnsureDirectory(paths.Resolve(dir)); !res.OK() {
			log.Fatal("prepare directory", zap.String("dir", dir), zap.String("error", res.Message()))
		}
	}

	// Database
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	fatalOnErr(err, "connect to postgres")
	defer pool.Close()
	fatalOnErr(postgres.RunMigrations(ctx, pool), "run migrations")

	// MinIO
	storage, err := miniostorage.NewStorage(miniostorage.StorageConfig{
		Endpoint:      cfg.MinIOEndpoint,
		AccessKey:     cfg.MinIOAccessKey,
		SecretKey:     cfg.MinIOSecretKey,
		UseSSL:        cfg.MinIOUseSSL,
		SourceBucket:  cfg.MinIOSourceBucket,
		ArchiveBucket: cfg.MinIOArchiveBucket,
	})
	fatalOnErr(err, "create minio storage")
	fatalOnErr(storage.EnsureBuckets(ctx), "ensure minio buckets")

	// RabbitMQ publisher connection
	rmqConn, err := amqp.Dial(cfg.RabbitMQURL)
	fatalOnErr(err, "connect to rabbitmq for publisher")
	defer rmqConn.Close()

	pub, err := rabbitmq.NewPublisher(rmqConn, cfg.RabbitMQExchange)
	fatalOnErr(err, "create rabbitmq publisher")

	// Use cases
	decoder := ffmpeg.NewDecoder(cfg.FFmpegPath, cfg.FFprobePath, log.Named("ffmpeg"))
	if !decoder.IsAvailable() {
		log.Warn("ffmpeg not found on PATH", zap.String("ffmpeg", cfg.FFmpegPath), zap.String("ffprobe", cfg.FFprobePath))
	}

	extractor := usecase.NewExtractFramesUseCase(
		fs, paths, decoder,
		imaging.NewFrameWriter(cfg.JPEGQuality, cfg.FrameMaxWidth),
		nil, log,
		usecase.ExtractFramesConfig{
			SourceDir:  cfg.SourceDir,
			OutputRoot: cfg.OutputDir,
			FrameExt:   cfg.FrameExt,
		},
	)
	convert := usecase.NewConvertVideoUseCase(
		extractor,
		postgres.NewConversionRepository(pool),
		archive.NewZipCreator(),
		storage,
		log,
		usecase.ConvertVideoConfig{
			TempDir:        cfg.TempDir,
			ArchiveEnabled: cfg.ArchiveEnabled,
		},
	)
	handler := usecase.NewHandleRequestUseCase(
		convert, fs, paths, cfg.SourceDir, storage,
		rabbitmq.NewStatusPublisher(pub),
		rabbitmq.NewDLQPublisher(pub, cfg.RabbitMQDLQ),
		email.NewSMTPNotifier(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPFrom, log),
		log,
	)

	// Metrics server
	metricsSrv := metrics.StartMetricsServer(cfg.MetricsPort, log)

	// Consumer (worker pool)
	consumer, err := rabbitmq.NewConsumer(rabbitmq.ConsumerConfig{
		URL:          cfg.RabbitMQURL,
		RequestQueue: cfg.RabbitMQRequestQueue,
		StatusQueue:  cfg.RabbitMQStatusQueue,
		DLQ:          cfg.RabbitMQDLQ,
		Exchange:     cfg.RabbitMQExchange,
		Prefetch:     cfg.RabbitMQPrefetch,
		WorkerCount:  cfg.WorkerCount,
		BaseDelayMs:  cfg.RetryBaseDelayMs,
		MaxAttempts:  cfg.MaxAttempts,
	}, handler.Execute, log)
	fatalOnErr(err, "create consumer")

	// Graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		log.Info("received shutdown signal", zap.String("signal", sig.String()))
		cancel()
	}()

	log.Info(serviceName+" started, consuming messages",
		zap.String("queue", cfg.RabbitMQRequestQueue),
		zap.Int("workers", cfg.WorkerCount),
	)

	if err := consumer.Start(ctx); err != nil {
		log.Error("consumer error", zap.Error(err))
	}

	// Shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	metricsSrv.Shutdown(shutdownCtx)

	consumer.Close()
	log.Info(serviceName + " stopped")
}

func fatalOnErr(err error, msg string) {
	if err != nil {
		panic(msg + ": " + err.Error())
	}
}
