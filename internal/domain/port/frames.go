package port

import (
	"context"
	"image"
)

// FrameSelector picks the sharpest frame within [startFrame, endFrame).
// It returns the decoded frame data, not a path; encoding and writing are
// the caller's job. A nil image with a nil error means the range was empty
// or no frame could be decoded.
type FrameSelector interface {
	SelectBestFrame(ctx context.Context, videoPath string, startFrame, endFrame int) (image.Image, error)
}
