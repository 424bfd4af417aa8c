package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/setfreedom/moivetext/internal/domain/port"
	"github.com/setfreedom/moivetext/internal/infra/artifact"
	"github.com/setfreedom/moivetext/internal/infra/config"
	"github.com/setfreedom/moivetext/internal/infra/email"
	"github.com/setfreedom/moivetext/internal/infra/engines"
	"github.com/setfreedom/moivetext/internal/infra/ffmpeg"
	"github.com/setfreedom/moivetext/internal/infra/metrics"
	miniostorage "github.com/setfreedom/moivetext/internal/infra/minio"
	"github.com/setfreedom/moivetext/internal/infra/postgres"
	"github.com/setfreedom/moivetext/internal/infra/rabbitmq"
	"github.com/setfreedom/moivetext/internal/infra/tracing"
	"github.com/setfreedom/moivetext/internal/usecase"
	"github.com/setfreedom/moivetext/pkg/logger"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	fatalOnErr(err, "load config")

	log, err := logger.New(cfg.LogLevel)
	fatalOnErr(err, "init logger")
	defer log.Sync()

	log.Info("starting moivetext-worker")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Tracing (non-fatal if the collector is unavailable)
	tp, err := tracing.InitTracer(ctx, cfg.JaegerEndpoint)
	if err != nil {
		log.Warn("tracing init failed, continuing without tracing", zap.Error(err))
	} else {
		defer tp.Shutdown(ctx)
	}

	// Database
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	fatalOnErr(err, "connect to postgres")
	defer pool.Close()

	// Migrations
	err = postgres.RunMigrations(cfg.DatabaseURL, "migrations")
	if err != nil {
		log.Warn("migration warning", zap.Error(err))
	}

	// MinIO
	storage, err := miniostorage.NewStorage(miniostorage.StorageConfig{
		Endpoint:      cfg.MinIOEndpoint,
		AccessKey:     cfg.MinIOAccessKey,
		SecretKey:     cfg.MinIOSecretKey,
		UseSSL:        cfg.MinIOUseSSL,
		UploadBucket:  cfg.MinIOUploadBucket,
		ResultsBucket: cfg.MinIOResultsBucket,
	})
	fatalOnErr(err, "create minio storage")
	fatalOnErr(storage.EnsureBuckets(ctx), "ensure minio buckets")

	// RabbitMQ publisher connection
	rmqConn, err := amqp.Dial(cfg.RabbitMQURL)
	fatalOnErr(err, "connect to rabbitmq for publisher")
	defer rmqConn.Close()

	pub, err := rabbitmq.NewPublisher(rmqConn, cfg.RabbitMQExchange)
	fatalOnErr(err, "create rabbitmq publisher")

	statusPub := rabbitmq.NewStatusPublisher(pub)
	dlqPub := rabbitmq.NewDLQPublisher(pub, cfg.RabbitMQDLQ)

	// Infra adapters
	repo := postgres.NewJobRepository(pool)
	segmenter := ffmpeg.NewSegmenter(log)
	frames := ffmpeg.NewFrameSelector(log)
	audio := ffmpeg.NewAudioExtractor(cfg.AudioSampleRate, log)
	store := artifact.NewStore()
	bundler := ffmpeg.NewBundler()
	notifier := email.NewSMTPNotifier(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPFrom, log)

	// Engine capability handles, constructed once here and passed in
	// explicitly. The OCR handle exists only when subtitles are on.
	engineCfg := func(baseURL string) engines.ClientConfig {
		return engines.ClientConfig{
			BaseURL:        baseURL,
			Timeout:        time.Duration(cfg.EngineTimeoutSecs) * time.Second,
			MaxRetries:     cfg.EngineMaxRetries,
			RetryBaseDelay: time.Duration(cfg.EngineRetryBaseDelayMs) * time.Millisecond,
		}
	}
	var ocr port.SubtitleReader
	if cfg.SubtitlesEnabled {
		ocr = engines.NewOCRClient(engineCfg(cfg.OCRURL), log)
	}
	engineSet := usecase.Engines{
		OCR:       ocr,
		ASR:       engines.NewASRClient(engineCfg(cfg.ASRURL), cfg.ASRLanguage, log),
		Captioner: engines.NewCaptionClient(engineCfg(cfg.CaptionURL), log),
		Generator: engines.NewScriptClient(engineCfg(cfg.LLMURL), cfg.LLMModel, cfg.LLMTemperature, cfg.LLMSeed, cfg.LLMAPIKey, log),
		TTS:       engines.NewTTSClient(engineCfg(cfg.TTSURL), cfg.TTSVoice, cfg.TTSSampleRate, log),
	}

	// Use case
	uc := usecase.NewNarrateVideoUseCase(
		repo, storage, segmenter, frames, audio, store,
		engineSet, bundler,
		statusPub, dlqPub, notifier,
		log,
		usecase.NarrateVideoConfig{
			TempDir:            cfg.TempDir,
			MaxRetries:         cfg.MaxRetries,
			SceneThreshold:     cfg.SceneThreshold,
			SceneMinDuration:   cfg.SceneMinDuration,
			MaxContextScenes:   cfg.MaxContextScenes,
			SentenceMarks:      cfg.SentenceMarks,
			SubtitlesEnabled:   cfg.SubtitlesEnabled,
			SubtitleConfidence: cfg.SubtitleConfidence,
			SkipAudioFailures:  cfg.AudioFailurePolicy == "skip",
		},
	)

	// Metrics server
	metricsSrv := metrics.StartMetricsServer(ctx, cfg.MetricsPort, log)

	// Consumer (worker pool)
	consumer, err := rabbitmq.NewConsumer(rabbitmq.ConsumerConfig{
		URL:         cfg.RabbitMQURL,
		Queue:       cfg.RabbitMQRequestQueue,
		Exchange:    cfg.RabbitMQExchange,
		DLQ:         cfg.RabbitMQDLQ,
		StatusQueue: cfg.RabbitMQStatusQueue,
		Prefetch:    cfg.RabbitMQPrefetch,
		WorkerCount: cfg.WorkerCount,
		BaseDelayMs: cfg.RetryBaseDelayMs,
	}, uc.Execute, log)
	fatalOnErr(err, "create consumer")

	// Graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		log.Info("received shutdown signal", zap.String("signal", sig.String()))
		cancel()
	}()

	log.Info("moivetext-worker started, consuming narration requests")

	if err := consumer.Start(ctx); err != nil {
		log.Error("consumer error", zap.Error(err))
	}

	// Shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	metricsSrv.Shutdown(shutdownCtx)

	consumer.Close()
	log.Info("moivetext-worker stopped")
}

func fatalOnErr(err error, msg string) {
	if err != nil {
		panic(msg + ": " + err.Error())
	}
}
