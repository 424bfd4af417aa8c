package ffmpeg

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"

	"go.uber.org/zap"
)

// AudioExtractor transcodes a time range into a mono WAV clip at a fixed
// sample rate, the format the ASR engine expects.
type AudioExtractor struct {
	sampleRate int
	logger     *zap.Logger
}

func NewAudioExtractor(sampleRate int, logger *zap.Logger) *AudioExtractor {
	return &AudioExtractor{sampleRate: sampleRate, logger: logger}
}

func (a *AudioExtractor) ExtractClip(ctx context.Context, videoPath string, startTime, endTime float64, destPath string) error {
	cmd := exec.CommandContext(ctx, "ffmpeg",
		"-ss", formatSeconds(startTime),
		"-to", formatSeconds(endTime),
		"-i", videoPath,
		"-vn",
		"-ac", "1",
		"-ar", strconv.Itoa(a.sampleRate),
		"-y",
		destPath,
	)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("ffmpeg audio transcode [%.3f-%.3f]: %w, output: %s",
			startTime, endTime, err, tail(string(output), 2048))
	}
	return nil
}

func formatSeconds(t float64) string {
	return strconv.FormatFloat(t, 'f', 3, 64)
}
