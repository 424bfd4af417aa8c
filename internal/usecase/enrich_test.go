package usecase

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/setfreedom/moivetext/internal/domain/entity"
	"github.com/setfreedom/moivetext/internal/infra/artifact"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func writeStage1Checkpoint(t *testing.T, store *artifact.Store, dir string, withFiles bool) string {
	t.Helper()

	s1 := entity.NewSceneRecord(1, 0, 2)
	s2 := entity.NewSceneRecord(3, 2, 5)
	if withFiles {
		s1.AudioPath = filepath.Join(dir, "scene_0001.wav")
		s1.FramePath = filepath.Join(dir, "scene_0001.jpg")
		require.NoError(t, os.WriteFile(s1.AudioPath, []byte("RIFF"), 0644))
		require.NoError(t, os.WriteFile(s1.FramePath, []byte("JPEG"), 0644))
		// Scene 3 references files that were never written.
		s2.AudioPath = filepath.Join(dir, "scene_0003.wav")
		s2.FramePath = filepath.Join(dir, "scene_0003.jpg")
	}

	path := filepath.Join(dir, "scenes.json")
	require.NoError(t, store.WriteScenes(path, []entity.SceneRecord{s1, s2}))
	return path
}

func TestEnrichTransformsScenesAndPersists(t *testing.T) {
	dir := t.TempDir()
	store := artifact.NewStore()
	scenesPath := writeStage1Checkpoint(t, store, dir, true)

	asr := &fakeTranscriber{text: "一段对白"}
	cap := &fakeCaptioner{caption: "a busy street"}
	uc := &NarrateVideoUseCase{store: store, asr: asr, captioner: cap, logger: zap.NewNop()}

	metaPath, err := uc.enrich(context.Background(), scenesPath, filepath.Join(dir, "stage2"), zap.NewNop())
	require.NoError(t, err)

	enriched, err := store.ReadEnriched(metaPath)
	require.NoError(t, err)
	require.Len(t, enriched, 2)

	// Scene 1 has both files, scene 3's are missing from disk: the
	// dependent computations are skipped, not fatal.
	assert.Equal(t, 1, enriched[0].SceneID)
	assert.Equal(t, "一段对白", enriched[0].ASRText)
	assert.Equal(t, "a busy street", enriched[0].VisionCaption)
	assert.Equal(t, "a busy street。一段对白。", enriched[0].CombinedContext)

	assert.Equal(t, 3, enriched[1].SceneID)
	assert.Empty(t, enriched[1].ASRText)
	assert.Empty(t, enriched[1].VisionCaption)
	assert.Empty(t, enriched[1].CombinedContext)

	assert.Equal(t, 1, asr.calls)
	assert.Equal(t, 1, cap.calls)
}

func TestEnrichEngineFailuresDegradeToEmpty(t *testing.T) {
	dir := t.TempDir()
	store := artifact.NewStore()
	scenesPath := writeStage1Checkpoint(t, store, dir, true)

	asr := &fakeTranscriber{err: errors.New("asr backend down")}
	cap := &fakeCaptioner{err: errors.New("caption backend down")}
	uc := &NarrateVideoUseCase{store: store, asr: asr, captioner: cap, logger: zap.NewNop()}

	metaPath, err := uc.enrich(context.Background(), scenesPath, filepath.Join(dir, "stage2"), zap.NewNop())
	require.NoError(t, err)

	enriched, err := store.ReadEnriched(metaPath)
	require.NoError(t, err)
	for _, e := range enriched {
		assert.Empty(t, e.ASRText)
		assert.Empty(t, e.VisionCaption)
	}
}

func TestEnrichNilEnginesDegrade(t *testing.T) {
	dir := t.TempDir()
	store := artifact.NewStore()
	scenesPath := writeStage1Checkpoint(t, store, dir, true)

	uc := &NarrateVideoUseCase{store: store, logger: zap.NewNop()}

	metaPath, err := uc.enrich(context.Background(), scenesPath, filepath.Join(dir, "stage2"), zap.NewNop())
	require.NoError(t, err)

	enriched, err := store.ReadEnriched(metaPath)
	require.NoError(t, err)
	require.Len(t, enriched, 2)
}

func TestEnrichMissingCheckpointIsFatal(t *testing.T) {
	uc := &NarrateVideoUseCase{store: artifact.NewStore(), logger: zap.NewNop()}

	_, err := uc.enrich(context.Background(), filepath.Join(t.TempDir(), "scenes.json"), t.TempDir(), zap.NewNop())
	require.Error(t, err)
	assert.ErrorIs(t, err, entity.ErrInputNotFound)
}

func TestEnrichSceneIDSubsetOfSource(t *testing.T) {
	dir := t.TempDir()
	store := artifact.NewStore()
	scenesPath := writeStage1Checkpoint(t, store, dir, false)

	uc := &NarrateVideoUseCase{store: store, logger: zap.NewNop()}
	metaPath, err := uc.enrich(context.Background(), scenesPath, filepath.Join(dir, "stage2"), zap.NewNop())
	require.NoError(t, err)

	source, err := store.ReadScenes(scenesPath)
	require.NoError(t, err)
	enriched, err := store.ReadEnriched(metaPath)
	require.NoError(t, err)

	ids := map[int]bool{}
	for _, s := range source {
		ids[s.SceneID] = true
	}
	for _, e := range enriched {
		assert.True(t, ids[e.SceneID], "scene_id %d not in source checkpoint", e.SceneID)
	}
}
