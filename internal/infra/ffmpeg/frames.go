package ffmpeg

import (
	"context"
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// FrameSelector picks the sharpest frame in a frame range by sampling up
// to ~30 candidates and scoring each with the variance of a Laplacian edge
// response on the grayscale image.
type FrameSelector struct {
	logger *zap.Logger
}

func NewFrameSelector(logger *zap.Logger) *FrameSelector {
	return &FrameSelector{logger: logger}
}

// SelectBestFrame returns the decoded sharpest frame in [startFrame,
// endFrame), or nil when the range is empty or nothing decodes.
func (fs *FrameSelector) SelectBestFrame(ctx context.Context, videoPath string, startFrame, endFrame int) (image.Image, error) {
	if endFrame <= startFrame {
		return nil, nil
	}

	stride := (endFrame - startFrame) / 30
	if stride < 1 {
		stride = 1
	}
	var indices []int
	for i := startFrame; i < endFrame; i += stride {
		indices = append(indices, i)
	}

	tmpDir, err := os.MkdirTemp("", "moivetext-probe-")
	if err != nil {
		return nil, fmt.Errorf("create probe dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	// One decode pass selecting exactly the sampled frame numbers.
	var expr strings.Builder
	for i, n := range indices {
		if i > 0 {
			expr.WriteByte('+')
		}
		fmt.Fprintf(&expr, `eq(n\,%d)`, n)
	}
	pattern := filepath.Join(tmpDir, "probe_%03d.jpg")
	cmd := exec.CommandContext(ctx, "ffmpeg",
		"-i", videoPath,
		"-vf", "select="+expr.String(),
		"-vsync", "0",
		"-frames:v", strconv.Itoa(len(indices)),
		"-q:v", "2",
		"-y",
		pattern,
	)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return nil, fmt.Errorf("ffmpeg frame sampling: %w, output: %s", err, tail(string(output), 2048))
	}

	files, err := filepath.Glob(filepath.Join(tmpDir, "probe_*.jpg"))
	if err != nil {
		return nil, fmt.Errorf("glob probe frames: %w", err)
	}
	sort.Strings(files)

	samples := make([]image.Image, 0, len(files))
	for _, f := range files {
		img, err := decodeImageFile(f)
		if err != nil {
			fs.logger.Debug("undecodable probe frame", zap.String("file", f), zap.Error(err))
			continue
		}
		samples = append(samples, img)
	}

	best := pickSharpest(samples)
	if best < 0 {
		return nil, nil
	}
	return samples[best], nil
}

// pickSharpest returns the index of the sampled frame with the strictly
// maximal sharpness score, so on a tie the first sample wins. Returns -1
// for an empty sample set.
func pickSharpest(samples []image.Image) int {
	best := -1
	bestScore := -1.0
	for i, img := range samples {
		score := laplacianVariance(toGray(img))
		if score > bestScore {
			bestScore = score
			best = i
		}
	}
	return best
}

// laplacianVariance is the sharpness score: variance of the 4-neighbor
// Laplacian response over the interior pixels.
func laplacianVariance(img *image.Gray) float64 {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w < 3 || h < 3 {
		return 0
	}

	at := func(x, y int) float64 {
		return float64(img.GrayAt(b.Min.X+x, b.Min.Y+y).Y)
	}

	n := float64((w - 2) * (h - 2))
	var sum, sqSum float64
	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			lap := at(x-1, y) + at(x+1, y) + at(x, y-1) + at(x, y+1) - 4*at(x, y)
			sum += lap
			sqSum += lap * lap
		}
	}

	mean := sum / n
	return sqSum/n - mean*mean
}

func toGray(img image.Image) *image.Gray {
	if g, ok := img.(*image.Gray); ok {
		return g
	}
	b := img.Bounds()
	gray := image.NewGray(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			gray.Set(x, y, color.GrayModel.Convert(img.At(x, y)))
		}
	}
	return gray
}

func decodeImageFile(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	return img, err
}
