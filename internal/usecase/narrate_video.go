package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/setfreedom/moivetext/internal/domain/entity"
	"github.com/setfreedom/moivetext/internal/domain/port"
	"github.com/setfreedom/moivetext/internal/infra/metrics"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// NarrateVideoUseCase drives the four-stage narration pipeline for one
// queued job: preprocess (scenes, frames, audio clips), understand (ASR +
// captions), script generation, and speech synthesis, with a checkpoint
// between every stage.
type NarrateVideoUseCase struct {
	repo      port.JobRepository
	storage   port.MediaStorage
	segmenter port.SceneSegmenter
	frames    port.FrameSelector
	audio     port.AudioExtractor
	store     port.ArtifactStore
	ocr       port.SubtitleReader
	asr       port.Transcriber
	captioner port.Captioner
	generator port.ScriptGenerator
	tts       port.SpeechSynthesizer
	bundler   port.Bundler
	publisher port.StatusPublisher
	dlq       port.DLQPublisher
	notifier  port.FailureNotifier
	logger    *zap.Logger
	cfg       NarrateVideoConfig
}

type NarrateVideoConfig struct {
	TempDir          string
	MaxRetries       int
	SceneThreshold   float64
	SceneMinDuration float64
	MaxContextScenes int
	SentenceMarks    string
	// SubtitlesEnabled is the explicit toggle for OCR subtitle fusion,
	// threaded through the whole call chain.
	SubtitlesEnabled   bool
	SubtitleConfidence float64
	// SkipAudioFailures downgrades a per-scene transcode failure from
	// fatal to log-and-continue with an empty audio clip.
	SkipAudioFailures bool
}

// Engines bundles the external capability handles. OCR may be nil when
// subtitle extraction is disabled; ASR and Captioner may be nil when the
// enrichment engines are unavailable (their fields degrade to empty).
type Engines struct {
	OCR       port.SubtitleReader
	ASR       port.Transcriber
	Captioner port.Captioner
	Generator port.ScriptGenerator
	TTS       port.SpeechSynthesizer
}

func NewNarrateVideoUseCase(
	repo port.JobRepository,
	storage port.MediaStorage,
	segmenter port.SceneSegmenter,
	frames port.FrameSelector,
	audio port.AudioExtractor,
	store port.ArtifactStore,
	engines Engines,
	bundler port.Bundler,
	publisher port.StatusPublisher,
	dlq port.DLQPublisher,
	notifier port.FailureNotifier,
	logger *zap.Logger,
	cfg NarrateVideoConfig,
) *NarrateVideoUseCase {
	return &NarrateVideoUseCase{
		repo:      repo,
		storage:   storage,
		segmenter: segmenter,
		frames:    frames,
		audio:     audio,
		store:     store,
		ocr:       engines.OCR,
		asr:       engines.ASR,
		captioner: engines.Captioner,
		generator: engines.Generator,
		tts:       engines.TTS,
		bundler:   bundler,
		publisher: publisher,
		dlq:       dlq,
		notifier:  notifier,
		logger:    logger,
		cfg:       cfg,
	}
}

func (uc *NarrateVideoUseCase) Execute(ctx context.Context, rawMsg []byte) error {
	tracer := otel.Tracer("usecase")
	ctx, span := tracer.Start(ctx, "NarrateVideoUseCase.Execute")
	defer span.End()

	totalTimer := time.Now()

	var msg entity.NarrationRequestMessage
	if err := json.Unmarshal(rawMsg, &msg); err != nil {
		uc.logger.Error("failed to unmarshal message", zap.Error(err), zap.ByteString("body", rawMsg))
		_ = uc.dlq.PublishToDLQ(ctx, rawMsg, "unmarshal_error: "+err.Error())
		return nil
	}

	span.SetAttributes(
		attribute.String("job.id", msg.JobID.String()),
		attribute.String("job.video_key", msg.VideoKey),
	)

	log := uc.logger.With(zap.String("job_id", msg.JobID.String()), zap.String("video_key", msg.VideoKey))

	job, err := uc.repo.FindByID(ctx, msg.JobID)
	if err != nil {
		job = entity.NewJob(msg.UserID, msg.VideoKey, msg.FileSize, uc.cfg.MaxRetries)
		job.ID = msg.JobID
		if err := uc.repo.Create(ctx, job); err != nil {
			log.Error("failed to create job record", zap.Error(err))
			return fmt.Errorf("create job: %w", err)
		}
	}

	if !job.CanRetry() {
		log.Warn("job exhausted retries, sending to DLQ")
		_ = uc.handlePermanentFailure(ctx, job, msg, rawMsg, "max retries exceeded")
		return nil
	}

	job.MarkProcessing()
	if err := uc.repo.Update(ctx, job); err != nil {
		log.Error("failed to update job to PROCESSING", zap.Error(err))
		return fmt.Errorf("update job: %w", err)
	}

	metrics.ActiveWorkers.Inc()
	defer metrics.ActiveWorkers.Dec()

	if err := uc.runPipeline(ctx, job, msg, rawMsg, log); err != nil {
		return err
	}

	metrics.JobsProcessedTotal.WithLabelValues("completed").Inc()
	metrics.StageDuration.WithLabelValues("total").Observe(time.Since(totalTimer).Seconds())

	return nil
}

func (uc *NarrateVideoUseCase) runPipeline(
	ctx context.Context,
	job *entity.Job,
	msg entity.NarrationRequestMessage,
	rawMsg []byte,
	log *zap.Logger,
) error {
	tracer := otel.Tracer("usecase")

	workDir := filepath.Join(uc.cfg.TempDir, job.ID.String())
	if err := os.MkdirAll(workDir, 0755); err != nil {
		return fmt.Errorf("create workdir: %w", err)
	}
	defer os.RemoveAll(workDir)

	// Download source video
	dlStart := time.Now()
	dlCtx, spanDl := tracer.Start(ctx, "download_video")
	videoPath := filepath.Join(workDir, "input.mp4")
	if err := uc.storage.DownloadVideo(dlCtx, msg.VideoKey, videoPath); err != nil {
		spanDl.End()
		log.Error("failed to download video", zap.Error(err))
		return uc.handleRetryableFailure(ctx, job, msg, rawMsg, "download_video: "+err.Error(), log)
	}
	spanDl.End()
	metrics.StageDuration.WithLabelValues("download").Observe(time.Since(dlStart).Seconds())

	// Stage 1: scene segmentation, best frames, audio clips
	s1Start := time.Now()
	s1Ctx, spanS1 := tracer.Start(ctx, "stage1_preprocess")
	scenes, info, err := uc.preprocess(s1Ctx, videoPath, filepath.Join(workDir, "stage1"), log)
	spanS1.End()
	if err != nil {
		log.Error("preprocess failed", zap.Error(err))
		return uc.handleRetryableFailure(ctx, job, msg, rawMsg, "preprocess: "+err.Error(), log)
	}
	metrics.StageDuration.WithLabelValues("preprocess").Observe(time.Since(s1Start).Seconds())

	// Stage 2: ASR + captions
	s2Start := time.Now()
	s2Ctx, spanS2 := tracer.Start(ctx, "stage2_understand")
	enrichedPath, err := uc.enrich(s2Ctx,
		filepath.Join(workDir, "stage1", "scenes.json"),
		filepath.Join(workDir, "stage2"),
		log,
	)
	spanS2.End()
	if err != nil {
		log.Error("enrichment failed", zap.Error(err))
		return uc.handleRetryableFailure(ctx, job, msg, rawMsg, "understand: "+err.Error(), log)
	}
	metrics.StageDuration.WithLabelValues("understand").Observe(time.Since(s2Start).Seconds())

	// Stage 3: narration script
	s3Start := time.Now()
	s3Ctx, spanS3 := tracer.Start(ctx, "stage3_script")
	script, scriptPath, err := uc.generateScript(s3Ctx, enrichedPath, filepath.Join(workDir, "stage3"), log)
	spanS3.End()
	if err != nil {
		log.Error("script generation failed", zap.Error(err))
		return uc.handleRetryableFailure(ctx, job, msg, rawMsg, "script: "+err.Error(), log)
	}
	metrics.StageDuration.WithLabelValues("script").Observe(time.Since(s3Start).Seconds())

	// Stage 4: speech synthesis
	s4Start := time.Now()
	s4Ctx, spanS4 := tracer.Start(ctx, "stage4_synthesize")
	utterances, err := uc.synthesize(s4Ctx, script, filepath.Join(workDir, "stage4"), log)
	spanS4.End()
	if err != nil {
		log.Error("synthesis failed", zap.Error(err))
		return uc.handleRetryableFailure(ctx, job, msg, rawMsg, "synthesize: "+err.Error(), log)
	}
	metrics.StageDuration.WithLabelValues("synthesize").Observe(time.Since(s4Start).Seconds())

	// Bundle and upload results
	upStart := time.Now()
	upCtx, spanUp := tracer.Start(ctx, "upload_results")
	scriptKey, bundleKey, err := uc.uploadResults(upCtx, job, msg, scriptPath, utterances, workDir)
	spanUp.End()
	if err != nil {
		log.Error("result upload failed", zap.Error(err))
		return uc.handleRetryableFailure(ctx, job, msg, rawMsg, "upload_results: "+err.Error(), log)
	}
	metrics.StageDuration.WithLabelValues("upload").Observe(time.Since(upStart).Seconds())

	job.MarkCompleted(scriptKey, bundleKey, len(scenes), len(utterances), info.Duration)
	if err := uc.repo.Update(ctx, job); err != nil {
		log.Error("failed to update job to COMPLETED", zap.Error(err))
		return fmt.Errorf("update job completed: %w", err)
	}

	uc.publishStatus(ctx, job, log)

	log.Info("narration job completed",
		zap.Int("scene_count", len(scenes)),
		zap.Int("utterance_count", len(utterances)),
		zap.Float64("duration_secs", info.Duration),
		zap.String("bundle_key", bundleKey),
	)

	return nil
}

func (uc *NarrateVideoUseCase) uploadResults(
	ctx context.Context,
	job *entity.Job,
	msg entity.NarrationRequestMessage,
	scriptPath string,
	utterances []entity.UtteranceRecord,
	workDir string,
) (scriptKey, bundleKey string, err error) {
	files := []string{scriptPath}
	for _, u := range utterances {
		files = append(files, u.AudioPath)
	}

	bundlePath := filepath.Join(workDir, "narration.zip")
	if err := uc.bundler.CreateZip(ctx, files, bundlePath); err != nil {
		return "", "", fmt.Errorf("create bundle: %w", err)
	}

	scriptKey = fmt.Sprintf("%s/script_%s.txt", msg.UserID, job.ID.String())
	script, err := os.ReadFile(scriptPath)
	if err != nil {
		return "", "", fmt.Errorf("read script: %w", err)
	}
	if err := uc.storage.UploadResult(ctx, scriptKey, strings.NewReader(string(script)), int64(len(script)), "text/plain; charset=utf-8"); err != nil {
		return "", "", fmt.Errorf("upload script: %w", err)
	}

	bundleKey = fmt.Sprintf("%s/narration_%s.zip", msg.UserID, job.ID.String())
	bundleFile, err := os.Open(bundlePath)
	if err != nil {
		return "", "", fmt.Errorf("open bundle: %w", err)
	}
	defer bundleFile.Close()
	stat, err := bundleFile.Stat()
	if err != nil {
		return "", "", fmt.Errorf("stat bundle: %w", err)
	}
	if err := uc.storage.UploadResult(ctx, bundleKey, bundleFile, stat.Size(), "application/zip"); err != nil {
		return "", "", fmt.Errorf("upload bundle: %w", err)
	}

	return scriptKey, bundleKey, nil
}

func (uc *NarrateVideoUseCase) handleRetryableFailure(
	ctx context.Context,
	job *entity.Job,
	msg entity.NarrationRequestMessage,
	rawMsg []byte,
	errMsg string,
	log *zap.Logger,
) error {
	job.MarkFailed(errMsg)
	_ = uc.repo.Update(ctx, job)

	if !job.CanRetry() {
		return uc.handlePermanentFailure(ctx, job, msg, rawMsg, errMsg)
	}

	metrics.RetryTotal.WithLabelValues(strconv.Itoa(job.Attempt)).Inc()
	uc.publishStatus(ctx, job, log)

	return fmt.Errorf("retryable failure (attempt %d/%d): %s", job.Attempt, job.MaxAttempts, errMsg)
}

func (uc *NarrateVideoUseCase) handlePermanentFailure(
	ctx context.Context,
	job *entity.Job,
	msg entity.NarrationRequestMessage,
	rawMsg []byte,
	errMsg string,
) error {
	job.MarkFailed(errMsg)
	_ = uc.repo.Update(ctx, job)

	_ = uc.dlq.PublishToDLQ(ctx, rawMsg, errMsg)

	uc.publishStatus(ctx, job, uc.logger)

	metrics.JobsProcessedTotal.WithLabelValues("dlq").Inc()

	if msg.UserEmail != "" {
		_ = uc.notifier.NotifyFailure(ctx, msg.UserEmail, job.ID.String(), msg.VideoKey, errMsg)
	}

	return nil
}

func (uc *NarrateVideoUseCase) publishStatus(ctx context.Context, job *entity.Job, log *zap.Logger) {
	statusMsg := entity.NarrationStatusMessage{
		JobID:          job.ID,
		UserID:         job.UserID,
		Status:         job.Status,
		VideoKey:       job.VideoKey,
		ScriptKey:      job.ScriptKey,
		BundleKey:      job.BundleKey,
		SceneCount:     job.SceneCount,
		UtteranceCount: job.UtteranceCount,
		Duration:       job.VideoDuration,
		ErrorMessage:   job.ErrorMessage,
		Attempt:        job.Attempt,
		MaxAttempts:    job.MaxAttempts,
	}
	data, _ := json.Marshal(statusMsg)
	if err := uc.publisher.PublishStatus(ctx, data); err != nil {
		log.Error("failed to publish status", zap.Error(err))
	}
}
