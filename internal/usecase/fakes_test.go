package usecase

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"os"

	"github.com/setfreedom/moivetext/internal/domain/port"
)

type fakeSegmenter struct {
	info       port.VideoInfo
	boundaries []port.SceneBoundary
}

func (f *fakeSegmenter) Probe(context.Context, string) (*port.VideoInfo, error) {
	info := f.info
	return &info, nil
}

func (f *fakeSegmenter) DetectScenes(context.Context, string, float64, int) ([]port.SceneBoundary, error) {
	return f.boundaries, nil
}

type fakeFrameSelector struct {
	frame image.Image
	err   error
}

func (f *fakeFrameSelector) SelectBestFrame(context.Context, string, int, int) (image.Image, error) {
	return f.frame, f.err
}

type fakeAudioExtractor struct {
	failFrom float64 // fail every clip starting at or after this time; <0 disables
	calls    int
}

func (f *fakeAudioExtractor) ExtractClip(_ context.Context, _ string, startTime, _ float64, destPath string) error {
	f.calls++
	if f.failFrom >= 0 && startTime >= f.failFrom {
		return fmt.Errorf("ffmpeg audio transcode: exit status 1")
	}
	return os.WriteFile(destPath, []byte("RIFFfake"), 0644)
}

type fakeTranscriber struct {
	text  string
	err   error
	calls int
}

func (f *fakeTranscriber) Transcribe(context.Context, string) (string, error) {
	f.calls++
	return f.text, f.err
}

type fakeCaptioner struct {
	caption string
	err     error
	calls   int
}

func (f *fakeCaptioner) Caption(context.Context, string) (string, error) {
	f.calls++
	return f.caption, f.err
}

type fakeGenerator struct {
	script string
	err    error
	gotCtx string
}

func (f *fakeGenerator) Generate(_ context.Context, contextWindow string) (string, error) {
	f.gotCtx = contextWindow
	if f.err != nil {
		return "", f.err
	}
	return f.script, nil
}

type fakeSynthesizer struct {
	err   error
	calls int
}

func (f *fakeSynthesizer) Synthesize(_ context.Context, text string) ([]byte, int, error) {
	f.calls++
	if f.err != nil {
		return nil, 0, f.err
	}
	return []byte("RIFF" + text), 22050, nil
}

type fakeOCR struct {
	fragments []port.OCRFragment
	err       error
}

func (f *fakeOCR) ReadRegion(context.Context, image.Image) ([]port.OCRFragment, error) {
	return f.fragments, f.err
}

func testFrame() image.Image {
	img := image.NewGray(image.Rect(0, 0, 64, 48))
	for y := 0; y < 48; y++ {
		for x := 0; x < 64; x++ {
			if (x+y)%3 == 0 {
				img.SetGray(x, y, color.Gray{Y: 230})
			}
		}
	}
	return img
}
