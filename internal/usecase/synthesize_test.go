package usecase

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestSynthesizeWritesOneWavPerUtterance(t *testing.T) {
	tts := &fakeSynthesizer{}
	uc := &NarrateVideoUseCase{tts: tts, logger: zap.NewNop()}

	stageDir := t.TempDir()
	utterances, err := uc.synthesize(context.Background(), "第一句。第二句！结尾…", stageDir, zap.NewNop())
	require.NoError(t, err)

	require.Len(t, utterances, 3)
	assert.Equal(t, 3, tts.calls)
	for i, u := range utterances {
		assert.Equal(t, i+1, u.Index)
		assert.FileExists(t, u.AudioPath)
	}
	// Zero-padded, 1-based file names.
	assert.Equal(t, filepath.Join(stageDir, "audio", "audio_001.wav"), utterances[0].AudioPath)
	assert.Equal(t, filepath.Join(stageDir, "audio", "audio_003.wav"), utterances[2].AudioPath)
}

func TestSynthesizeEmptyScriptMakesZeroCalls(t *testing.T) {
	tts := &fakeSynthesizer{}
	uc := &NarrateVideoUseCase{tts: tts, logger: zap.NewNop()}

	utterances, err := uc.synthesize(context.Background(), "", t.TempDir(), zap.NewNop())
	require.NoError(t, err)

	assert.Empty(t, utterances)
	assert.Zero(t, tts.calls)
}

func TestSynthesizeEngineFailureIsFatal(t *testing.T) {
	tts := &fakeSynthesizer{err: errors.New("tts backend down")}
	uc := &NarrateVideoUseCase{tts: tts, logger: zap.NewNop()}

	_, err := uc.synthesize(context.Background(), "只有一句。", t.TempDir(), zap.NewNop())
	require.Error(t, err)
	assert.Equal(t, 1, tts.calls)
}
