package usecase

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/setfreedom/moivetext/internal/domain/entity"
	"go.uber.org/zap"
)

// enrich is stage 2: transcribe each scene's audio clip and caption its
// frame, producing the enriched generation of the checkpoint. Engine
// failures degrade the affected field to an empty string and never abort
// the stage; a missing or malformed stage 1 checkpoint does abort it.
// Like stage 1, the output checkpoint is rewritten after every scene.
func (uc *NarrateVideoUseCase) enrich(ctx context.Context, scenesPath, stageDir string, log *zap.Logger) (string, error) {
	scenes, err := uc.store.ReadScenes(scenesPath)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(stageDir, 0755); err != nil {
		return "", fmt.Errorf("create stage dir: %w", err)
	}

	metaPath := filepath.Join(stageDir, "scenes_enriched.json")
	enriched := make([]entity.EnrichedSceneRecord, 0, len(scenes))

	for _, scene := range scenes {
		if err := ctx.Err(); err != nil {
			_ = uc.store.WriteEnriched(metaPath, enriched)
			return "", err
		}

		sceneLog := log.With(zap.Int("scene_id", scene.SceneID))

		asrText := ""
		switch {
		case uc.asr == nil:
			// transcription engine unavailable, field stays empty
		case scene.AudioPath == "":
		case !fileExists(scene.AudioPath):
			sceneLog.Warn("audio clip referenced by checkpoint is missing, skipping transcription",
				zap.String("audio_path", scene.AudioPath))
		default:
			asrText, err = uc.asr.Transcribe(ctx, scene.AudioPath)
			if err != nil {
				sceneLog.Warn("transcription failed, degrading to empty", zap.Error(err))
				asrText = ""
			}
		}

		caption := ""
		switch {
		case uc.captioner == nil:
		case scene.FramePath == "":
		case !fileExists(scene.FramePath):
			sceneLog.Warn("frame referenced by checkpoint is missing, skipping caption",
				zap.String("frame_path", scene.FramePath))
		default:
			caption, err = uc.captioner.Caption(ctx, scene.FramePath)
			if err != nil {
				sceneLog.Warn("captioning failed, degrading to empty", zap.Error(err))
				caption = ""
			}
		}

		enriched = append(enriched, scene.Enrich(asrText, caption))
		if err := uc.store.WriteEnriched(metaPath, enriched); err != nil {
			return "", fmt.Errorf("write enriched checkpoint: %w", err)
		}
	}

	if len(enriched) == 0 {
		if err := uc.store.WriteEnriched(metaPath, enriched); err != nil {
			return "", fmt.Errorf("write enriched checkpoint: %w", err)
		}
	}
	log.Info("enrichment complete", zap.Int("scenes", len(enriched)))

	return metaPath, nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
