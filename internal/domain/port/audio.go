package port

import "context"

// AudioExtractor writes the mono, fixed-sample-rate audio segment for a
// time range to destPath. Transcoder diagnostics are surfaced in the error.
type AudioExtractor interface {
	ExtractClip(ctx context.Context, videoPath string, startTime, endTime float64, destPath string) error
}
