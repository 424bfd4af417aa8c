package port

import "context"

// VideoInfo is the probe result for a source video.
type VideoInfo struct {
	FPS        float64
	Duration   float64
	FrameCount int
}

// SceneBoundary is one detected scene as a half-open frame range.
type SceneBoundary struct {
	StartFrame int
	EndFrame   int
}

// SceneSegmenter detects scene boundaries in a video. minSceneLen is a hard
// floor, in frames, between accepted boundaries; candidate cuts closer than
// that are suppressed by the detector itself. Identical video bytes,
// threshold and minSceneLen yield identical boundaries.
type SceneSegmenter interface {
	Probe(ctx context.Context, videoPath string) (*VideoInfo, error)
	DetectScenes(ctx context.Context, videoPath string, threshold float64, minSceneLen int) ([]SceneBoundary, error)
}
