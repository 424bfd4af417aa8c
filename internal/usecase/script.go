package usecase

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/setfreedom/moivetext/internal/domain/entity"
	"go.uber.org/zap"
)

// generateScript is stage 3: build the bounded context window from the
// enriched checkpoint and submit it to the narrative engine. Only the
// first MaxContextScenes scenes with non-empty context enter the window,
// so long videos bias the narration toward their opening. A non-success
// engine response aborts the stage; no partial script is written.
func (uc *NarrateVideoUseCase) generateScript(ctx context.Context, enrichedPath, stageDir string, log *zap.Logger) (script, scriptPath string, err error) {
	scenes, err := uc.store.ReadEnriched(enrichedPath)
	if err != nil {
		return "", "", err
	}

	window := entity.BuildContextWindow(scenes, uc.cfg.MaxContextScenes)
	if window == "" {
		return "", "", fmt.Errorf("no scene context available for narration (%d scenes, all empty)", len(scenes))
	}
	log.Info("context window built",
		zap.Int("scenes", len(scenes)),
		zap.Int("window_bytes", len(window)),
	)

	script, err = uc.generator.Generate(ctx, window)
	if err != nil {
		return "", "", err
	}

	if err := os.MkdirAll(stageDir, 0755); err != nil {
		return "", "", fmt.Errorf("create stage dir: %w", err)
	}
	scriptPath = filepath.Join(stageDir, "script.txt")
	if err := os.WriteFile(scriptPath, []byte(script), 0644); err != nil {
		return "", "", fmt.Errorf("write script: %w", err)
	}

	log.Info("narration script generated", zap.Int("script_bytes", len(script)))
	return script, scriptPath, nil
}
