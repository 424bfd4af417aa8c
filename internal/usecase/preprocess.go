package usecase

import (
	"context"
	"fmt"
	"image"
	"image/draw"
	"image/jpeg"
	"os"
	"path/filepath"
	"strings"

	"github.com/setfreedom/moivetext/internal/domain/entity"
	"github.com/setfreedom/moivetext/internal/domain/port"
	"github.com/setfreedom/moivetext/internal/infra/metrics"
	"go.uber.org/zap"
)

// Subtitle crop band: rows [0.82h, 0.98h) of the frame.
const (
	subtitleBandTop    = 0.82
	subtitleBandBottom = 0.98
)

// preprocess is stage 1: detect scene boundaries, then extract the audio
// clip, the sharpest frame and (optionally) subtitle text for every scene
// that survives the minimum-duration filter. The checkpoint is rewritten
// after each completed scene, so a crash mid-stage keeps the finished
// subset on disk.
func (uc *NarrateVideoUseCase) preprocess(ctx context.Context, videoPath, stageDir string, log *zap.Logger) ([]entity.SceneRecord, *port.VideoInfo, error) {
	if _, err := os.Stat(videoPath); err != nil {
		return nil, nil, fmt.Errorf("%w: source video %s", entity.ErrInputNotFound, videoPath)
	}

	audioDir := filepath.Join(stageDir, "audio")
	framesDir := filepath.Join(stageDir, "frames")
	for _, dir := range []string{stageDir, audioDir, framesDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, nil, fmt.Errorf("create stage dir: %w", err)
		}
	}

	info, err := uc.segmenter.Probe(ctx, videoPath)
	if err != nil {
		return nil, nil, fmt.Errorf("probe video: %w", err)
	}

	minSceneLen := int(uc.cfg.SceneMinDuration * info.FPS)
	boundaries, err := uc.segmenter.DetectScenes(ctx, videoPath, uc.cfg.SceneThreshold, minSceneLen)
	if err != nil {
		return nil, nil, fmt.Errorf("detect scenes: %w", err)
	}
	metrics.ScenesDetectedTotal.Add(float64(len(boundaries)))
	log.Info("scenes detected", zap.Int("count", len(boundaries)), zap.Float64("fps", info.FPS))

	metaPath := filepath.Join(stageDir, "scenes.json")
	scenes := make([]entity.SceneRecord, 0, len(boundaries))

	for idx, b := range boundaries {
		startTime := float64(b.StartFrame) / info.FPS
		endTime := float64(b.EndFrame) / info.FPS

		// Scenes shorter than the minimum are dropped outright, not
		// merged; the detector index stays as scene_id, leaving gaps.
		if endTime-startTime < uc.cfg.SceneMinDuration {
			log.Debug("dropping short scene",
				zap.Int("scene_id", idx),
				zap.Float64("duration", endTime-startTime),
			)
			continue
		}

		rec := entity.NewSceneRecord(idx, startTime, endTime)
		sceneLog := log.With(zap.Int("scene_id", idx))

		audioPath := filepath.Join(audioDir, fmt.Sprintf("scene_%04d.wav", idx))
		if err := uc.audio.ExtractClip(ctx, videoPath, startTime, endTime, audioPath); err != nil {
			if !uc.cfg.SkipAudioFailures {
				// Persist the completed subset before surfacing the
				// fatal error, so a rerun resumes from here.
				_ = uc.store.WriteScenes(metaPath, scenes)
				return nil, nil, fmt.Errorf("scene %d audio: %w", idx, err)
			}
			sceneLog.Warn("audio transcode failed, skipping clip", zap.Error(err))
			audioPath = ""
		}
		rec.AudioPath = audioPath

		frame, err := uc.frames.SelectBestFrame(ctx, videoPath, b.StartFrame, b.EndFrame)
		if err != nil {
			sceneLog.Warn("frame selection failed", zap.Error(err))
		}
		if frame != nil {
			framePath := filepath.Join(framesDir, fmt.Sprintf("scene_%04d.jpg", idx))
			if err := writeJPEG(framePath, frame); err != nil {
				sceneLog.Warn("frame encode failed", zap.Error(err))
			} else {
				rec.FramePath = framePath
			}

			if uc.cfg.SubtitlesEnabled && uc.ocr != nil {
				rec.SubtitleText = uc.readSubtitle(ctx, frame, sceneLog)
			}
		}

		scenes = append(scenes, rec)
		if err := uc.store.WriteScenes(metaPath, scenes); err != nil {
			return nil, nil, fmt.Errorf("write scene checkpoint: %w", err)
		}
	}

	if len(scenes) == 0 {
		if err := uc.store.WriteScenes(metaPath, scenes); err != nil {
			return nil, nil, fmt.Errorf("write scene checkpoint: %w", err)
		}
	}
	metrics.ScenesKeptTotal.Add(float64(len(scenes)))
	log.Info("preprocess complete", zap.Int("kept", len(scenes)), zap.Int("detected", len(boundaries)))

	return scenes, info, nil
}

// readSubtitle runs OCR over the subtitle crop band and space-joins the
// fragments above the confidence threshold. Any failure degrades to an
// empty string; subtitle extraction never aborts the pipeline.
func (uc *NarrateVideoUseCase) readSubtitle(ctx context.Context, frame image.Image, log *zap.Logger) string {
	fragments, err := uc.ocr.ReadRegion(ctx, cropSubtitleBand(frame))
	if err != nil {
		log.Warn("subtitle ocr failed", zap.Error(err))
		return ""
	}

	var texts []string
	for _, f := range fragments {
		if f.Confidence > uc.cfg.SubtitleConfidence {
			texts = append(texts, f.Text)
		}
	}
	return strings.TrimSpace(strings.Join(texts, " "))
}

func cropSubtitleBand(img image.Image) image.Image {
	b := img.Bounds()
	h := b.Dy()
	band := image.Rect(
		b.Min.X,
		b.Min.Y+int(subtitleBandTop*float64(h)),
		b.Max.X,
		b.Min.Y+int(subtitleBandBottom*float64(h)),
	)

	type subImager interface {
		SubImage(image.Rectangle) image.Image
	}
	if si, ok := img.(subImager); ok {
		return si.SubImage(band)
	}

	out := image.NewRGBA(band)
	draw.Draw(out, band, img, band.Min, draw.Src)
	return out
}

func writeJPEG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := jpeg.Encode(f, img, &jpeg.Options{Quality: 95}); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
