package usecase

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/setfreedom/moivetext/internal/domain/entity"
	"github.com/setfreedom/moivetext/internal/infra/metrics"
	"go.uber.org/zap"
)

// synthesize is stage 4: split the narration script into utterances and
// render each one to a WAV file named by its zero-padded 1-based index.
// An empty script produces zero utterances and zero synthesis calls.
func (uc *NarrateVideoUseCase) synthesize(ctx context.Context, script, stageDir string, log *zap.Logger) ([]entity.UtteranceRecord, error) {
	utterances := entity.SplitUtterances(script, uc.cfg.SentenceMarks)
	if len(utterances) == 0 {
		log.Warn("empty narration script, nothing to synthesize")
		return utterances, nil
	}

	audioDir := filepath.Join(stageDir, "audio")
	if err := os.MkdirAll(audioDir, 0755); err != nil {
		return nil, fmt.Errorf("create stage dir: %w", err)
	}

	for i := range utterances {
		wav, sampleRate, err := uc.tts.Synthesize(ctx, utterances[i].Text)
		if err != nil {
			return nil, fmt.Errorf("utterance %d: %w", utterances[i].Index, err)
		}

		path := filepath.Join(audioDir, fmt.Sprintf("audio_%03d.wav", utterances[i].Index))
		if err := os.WriteFile(path, wav, 0644); err != nil {
			return nil, fmt.Errorf("write utterance %d: %w", utterances[i].Index, err)
		}
		utterances[i].AudioPath = path

		metrics.UtterancesSynthesizedTotal.Inc()
		log.Debug("utterance synthesized",
			zap.Int("index", utterances[i].Index),
			zap.Int("sample_rate", sampleRate),
			zap.Int("bytes", len(wav)),
		)
	}

	log.Info("synthesis complete", zap.Int("utterances", len(utterances)))
	return utterances, nil
}
