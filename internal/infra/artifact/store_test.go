package artifact

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/setfreedom/moivetext/internal/domain/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sceneFixture() []entity.SceneRecord {
	s1 := entity.NewSceneRecord(1, 0.5, 2.5)
	s1.AudioPath = "audio/scene_0001.wav"
	s1.FramePath = "frames/scene_0001.jpg"
	s1.SubtitleText = "字幕：你好，世界"

	s2 := entity.NewSceneRecord(4, 2.5, 6.0)
	s2.AudioPath = "audio/scene_0004.wav"

	return []entity.SceneRecord{s1, s2}
}

func TestSceneRoundTrip(t *testing.T) {
	store := NewStore()
	path := filepath.Join(t.TempDir(), "scenes.json")

	in := sceneFixture()
	require.NoError(t, store.WriteScenes(path, in))

	out, err := store.ReadScenes(path)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestEnrichedRoundTrip(t *testing.T) {
	store := NewStore()
	path := filepath.Join(t.TempDir(), "scenes_enriched.json")

	var in []entity.EnrichedSceneRecord
	for _, s := range sceneFixture() {
		in = append(in, s.Enrich("一段台词", "a rainy street at night"))
	}
	require.NoError(t, store.WriteEnriched(path, in))

	out, err := store.ReadEnriched(path)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestNonASCIIPreservedVerbatim(t *testing.T) {
	store := NewStore()
	path := filepath.Join(t.TempDir(), "scenes.json")

	s := entity.NewSceneRecord(0, 0, 1)
	s.SubtitleText = "她说：“再见” <em>μ</em>"
	require.NoError(t, store.WriteScenes(path, []entity.SceneRecord{s}))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "她说：“再见”")
	assert.NotContains(t, string(raw), `\u`)
}

func TestMissingCheckpointIsInputNotFound(t *testing.T) {
	store := NewStore()

	_, err := store.ReadScenes(filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)
	assert.ErrorIs(t, err, entity.ErrInputNotFound)
}

func TestMalformedCheckpointRejected(t *testing.T) {
	store := NewStore()
	dir := t.TempDir()

	cases := map[string]string{
		"truncated":        `{"schema_version":1,"generation":"scenes","scenes":[{`,
		"wrong_version":    `{"schema_version":99,"generation":"scenes","scenes":[]}`,
		"wrong_generation": `{"schema_version":1,"generation":"scenes_enriched","scenes":[]}`,
		"bad_order":        `{"schema_version":1,"generation":"scenes","scenes":[{"scene_id":2,"start_time":0,"end_time":1,"duration":1},{"scene_id":1,"start_time":1,"end_time":2,"duration":1}]}`,
	}

	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name+".json")
			require.NoError(t, os.WriteFile(path, []byte(content), 0644))

			_, err := store.ReadScenes(path)
			require.Error(t, err)
			assert.ErrorIs(t, err, entity.ErrMalformedArtifact)
		})
	}
}

func TestWriteRefusesUnsortedScenes(t *testing.T) {
	store := NewStore()
	path := filepath.Join(t.TempDir(), "scenes.json")

	scenes := []entity.SceneRecord{
		entity.NewSceneRecord(5, 0, 1),
		entity.NewSceneRecord(2, 1, 2),
	}
	assert.Error(t, store.WriteScenes(path, scenes))
}

func TestWriteReplacesAtomically(t *testing.T) {
	store := NewStore()
	dir := t.TempDir()
	path := filepath.Join(dir, "scenes.json")

	require.NoError(t, store.WriteScenes(path, sceneFixture()[:1]))
	require.NoError(t, store.WriteScenes(path, sceneFixture()))

	out, err := store.ReadScenes(path)
	require.NoError(t, err)
	assert.Len(t, out, 2)

	// No stray temp files left behind.
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		assert.False(t, strings.HasPrefix(e.Name(), ".checkpoint-"), "leftover temp file %s", e.Name())
	}
}
