package ffmpeg

import (
	"context"
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"strings"

	"github.com/setfreedom/moivetext/internal/domain/port"
	"go.uber.org/zap"
)

// Segmenter detects scene boundaries with ffmpeg's scene-change filter.
type Segmenter struct {
	logger *zap.Logger
}

func NewSegmenter(logger *zap.Logger) *Segmenter {
	return &Segmenter{logger: logger}
}

// Probe reads fps, duration and frame count from the first video stream.
func (s *Segmenter) Probe(ctx context.Context, videoPath string) (*port.VideoInfo, error) {
	cmd := exec.CommandContext(ctx, "ffprobe",
		"-v", "error",
		"-select_streams", "v:0",
		"-show_entries", "stream=r_frame_rate,nb_frames",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1",
		videoPath,
	)
	output, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("ffprobe: %w", err)
	}

	info := &port.VideoInfo{}
	for _, line := range strings.Split(string(output), "\n") {
		key, value, ok := strings.Cut(strings.TrimSpace(line), "=")
		if !ok || value == "N/A" {
			continue
		}
		switch key {
		case "r_frame_rate":
			info.FPS = parseFrameRate(value)
		case "nb_frames":
			info.FrameCount, _ = strconv.Atoi(value)
		case "duration":
			info.Duration, _ = strconv.ParseFloat(value, 64)
		}
	}

	if info.FPS <= 0 {
		return nil, fmt.Errorf("ffprobe: no frame rate in output: %s", strings.TrimSpace(string(output)))
	}
	if info.FrameCount == 0 && info.Duration > 0 {
		info.FrameCount = int(math.Round(info.Duration * info.FPS))
	}
	return info, nil
}

// DetectScenes runs the scene filter and converts the detected cut
// timestamps into half-open frame ranges covering the whole video.
// Candidate cuts closer than minSceneLen frames to the previously
// accepted boundary are suppressed.
func (s *Segmenter) DetectScenes(ctx context.Context, videoPath string, threshold float64, minSceneLen int) ([]port.SceneBoundary, error) {
	info, err := s.Probe(ctx, videoPath)
	if err != nil {
		return nil, err
	}

	cmd := exec.CommandContext(ctx, "ffmpeg",
		"-i", videoPath,
		"-vf", fmt.Sprintf("select='gt(scene,%.4f)',showinfo", threshold),
		"-f", "null",
		"-",
	)
	// showinfo writes to stderr; ffmpeg exits 0 on a full decode.
	output, err := cmd.CombinedOutput()
	if err != nil {
		return nil, fmt.Errorf("ffmpeg scene detection: %w, output: %s", err, tail(string(output), 2048))
	}

	cuts := parseSceneCuts(string(output))
	boundaries := boundariesFromCuts(cuts, info.FPS, info.FrameCount, minSceneLen)

	s.logger.Info("scene detection complete",
		zap.Int("cuts", len(cuts)),
		zap.Int("scenes", len(boundaries)),
		zap.Float64("fps", info.FPS),
	)
	return boundaries, nil
}

// parseSceneCuts extracts cut timestamps (seconds) from showinfo output.
func parseSceneCuts(output string) []float64 {
	var cuts []float64
	for _, line := range strings.Split(output, "\n") {
		if !strings.Contains(line, "pts_time:") {
			continue
		}
		_, rest, _ := strings.Cut(line, "pts_time:")
		fields := strings.Fields(strings.TrimSpace(rest))
		if len(fields) == 0 {
			continue
		}
		if t, err := strconv.ParseFloat(fields[0], 64); err == nil {
			cuts = append(cuts, t)
		}
	}
	return cuts
}

// boundariesFromCuts builds scene frame ranges from cut timestamps. The
// first scene starts at frame 0; each accepted cut both ends the previous
// scene and starts the next; the final scene ends at totalFrames.
func boundariesFromCuts(cuts []float64, fps float64, totalFrames, minSceneLen int) []port.SceneBoundary {
	if totalFrames <= 0 {
		return nil
	}
	if minSceneLen < 1 {
		minSceneLen = 1
	}

	starts := []int{0}
	for _, t := range cuts {
		frame := int(math.Round(t * fps))
		if frame-starts[len(starts)-1] < minSceneLen {
			continue
		}
		if frame >= totalFrames {
			break
		}
		starts = append(starts, frame)
	}

	boundaries := make([]port.SceneBoundary, 0, len(starts))
	for i, start := range starts {
		end := totalFrames
		if i+1 < len(starts) {
			end = starts[i+1]
		}
		if end > start {
			boundaries = append(boundaries, port.SceneBoundary{StartFrame: start, EndFrame: end})
		}
	}
	return boundaries
}

// parseFrameRate parses ffprobe's rational frame rate ("30000/1001").
func parseFrameRate(value string) float64 {
	num, den, ok := strings.Cut(value, "/")
	if !ok {
		f, _ := strconv.ParseFloat(value, 64)
		return f
	}
	n, err1 := strconv.ParseFloat(num, 64)
	d, err2 := strconv.ParseFloat(den, 64)
	if err1 != nil || err2 != nil || d == 0 {
		return 0
	}
	return n / d
}

func tail(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
