package entity

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func enrichedScene(id int, start float64, context string) EnrichedSceneRecord {
	return EnrichedSceneRecord{
		SceneID:         id,
		StartTime:       start,
		EndTime:         start + 2,
		Duration:        2,
		CombinedContext: context,
	}
}

func TestBuildContextWindowFormat(t *testing.T) {
	scenes := []EnrichedSceneRecord{
		enrichedScene(0, 0, "开场画面。"),
		enrichedScene(1, 12.34, "主角登场。"),
	}

	got := BuildContextWindow(scenes, 50)

	assert.Equal(t, "[0.0s] 开场画面。\n[12.3s] 主角登场。", got)
}

func TestBuildContextWindowSkipsEmptyWithoutConsumingSlot(t *testing.T) {
	scenes := []EnrichedSceneRecord{
		enrichedScene(0, 0, ""),
		enrichedScene(1, 2, "第一段。"),
		enrichedScene(2, 4, ""),
		enrichedScene(3, 6, "第二段。"),
	}

	got := BuildContextWindow(scenes, 2)

	lines := strings.Split(got, "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "第一段")
	assert.Contains(t, lines[1], "第二段")
}

func TestBuildContextWindowKeepsFirstMaxScenes(t *testing.T) {
	var scenes []EnrichedSceneRecord
	for i := 0; i < 5; i++ {
		scenes = append(scenes, enrichedScene(i, float64(i*10), "场景内容。"))
	}

	got := BuildContextWindow(scenes, 2)

	lines := strings.Split(got, "\n")
	require.Len(t, lines, 2)
	// The two lowest scene_ids survive the truncation.
	assert.True(t, strings.HasPrefix(lines[0], "[0.0s]"))
	assert.True(t, strings.HasPrefix(lines[1], "[10.0s]"))
}

func TestBuildContextWindowEmptyInput(t *testing.T) {
	assert.Equal(t, "", BuildContextWindow(nil, 10))
	assert.Equal(t, "", BuildContextWindow([]EnrichedSceneRecord{enrichedScene(0, 0, "")}, 10))
}

func TestBuildContextWindowNonPositiveCap(t *testing.T) {
	scenes := []EnrichedSceneRecord{
		enrichedScene(0, 0, "内容。"),
		enrichedScene(1, 2, "更多内容。"),
	}

	assert.Equal(t, "", BuildContextWindow(scenes, 0))
	assert.Equal(t, "", BuildContextWindow(scenes, -1))
}
