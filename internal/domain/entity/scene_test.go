package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSceneRecordDerivesDuration(t *testing.T) {
	rec := NewSceneRecord(3, 1.5, 4.0)

	assert.Equal(t, 3, rec.SceneID)
	assert.InDelta(t, 2.5, rec.Duration, 1e-9)
	require.NoError(t, rec.Validate())
}

func TestSceneRecordValidateRejectsEmptyRange(t *testing.T) {
	rec := NewSceneRecord(0, 2.0, 2.0)
	assert.Error(t, rec.Validate())

	rec = NewSceneRecord(0, 3.0, 2.0)
	assert.Error(t, rec.Validate())
}

func TestEnrichCopiesIdentityAndTime(t *testing.T) {
	src := NewSceneRecord(7, 10.0, 13.5)
	src.AudioPath = "audio/scene_0007.wav"

	enriched := src.Enrich("两人开始争吵", "a man and a woman in a dim room")

	assert.Equal(t, src.SceneID, enriched.SceneID)
	assert.Equal(t, src.StartTime, enriched.StartTime)
	assert.Equal(t, src.EndTime, enriched.EndTime)
	assert.Equal(t, src.Duration, enriched.Duration)
	assert.Equal(t, "两人开始争吵", enriched.ASRText)
	assert.Equal(t, "a man and a woman in a dim room", enriched.VisionCaption)
	assert.Equal(t, "a man and a woman in a dim room。两人开始争吵。", enriched.CombinedContext)

	// The source record is a separate generation and stays untouched.
	assert.Equal(t, "audio/scene_0007.wav", src.AudioPath)
	assert.Empty(t, src.SubtitleText)
}

func TestEnrichCombinedContext(t *testing.T) {
	src := NewSceneRecord(0, 0, 1)

	assert.Equal(t, "", src.Enrich("", "").CombinedContext)
	assert.Equal(t, "只有台词。", src.Enrich("只有台词", "").CombinedContext)
	assert.Equal(t, "only a caption。", src.Enrich("", "only a caption").CombinedContext)
}

func TestValidateSceneOrderAllowsGaps(t *testing.T) {
	scenes := []SceneRecord{
		NewSceneRecord(1, 0.5, 2.5),
		NewSceneRecord(2, 2.5, 5.5),
		NewSceneRecord(5, 5.5, 9.0),
	}
	require.NoError(t, ValidateSceneOrder(scenes))
}

func TestValidateSceneOrderRejectsNonIncreasing(t *testing.T) {
	scenes := []SceneRecord{
		NewSceneRecord(2, 0.5, 2.5),
		NewSceneRecord(2, 2.5, 5.5),
	}
	assert.Error(t, ValidateSceneOrder(scenes))

	scenes = []SceneRecord{
		NewSceneRecord(3, 0.5, 2.5),
		NewSceneRecord(1, 2.5, 5.5),
	}
	assert.Error(t, ValidateSceneOrder(scenes))
}

func TestValidateEnrichedOrderRecordChecks(t *testing.T) {
	valid := []EnrichedSceneRecord{
		NewSceneRecord(1, 0.5, 2.5).Enrich("台词", ""),
		NewSceneRecord(4, 2.5, 5.5).Enrich("", "a caption"),
	}
	require.NoError(t, ValidateEnrichedOrder(valid))

	negative := NewSceneRecord(-1, 0.5, 2.5).Enrich("", "")
	assert.Error(t, ValidateEnrichedOrder([]EnrichedSceneRecord{negative}))

	emptyRange := NewSceneRecord(0, 2.0, 2.0).Enrich("", "")
	assert.Error(t, ValidateEnrichedOrder([]EnrichedSceneRecord{emptyRange}))
}
