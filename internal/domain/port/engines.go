package port

import (
	"context"
	"fmt"
	"image"
)

// OCRFragment is the fixed shape every OCR result is normalized to at the
// boundary, whatever the engine actually returned.
type OCRFragment struct {
	BoundingBox [][]float64 `json:"bounding_box"`
	Text        string      `json:"text"`
	Confidence  float64     `json:"confidence"`
}

// Validate rejects fragments that would otherwise be indexed into on an
// assumed-but-unchecked shape.
func (f OCRFragment) Validate() error {
	if f.Text == "" {
		return fmt.Errorf("ocr fragment: empty text")
	}
	if f.Confidence < 0 || f.Confidence > 1 {
		return fmt.Errorf("ocr fragment: confidence %.3f out of range", f.Confidence)
	}
	return nil
}

// SubtitleReader runs OCR over an image region (the subtitle crop band).
type SubtitleReader interface {
	ReadRegion(ctx context.Context, region image.Image) ([]OCRFragment, error)
}

// Transcriber turns an audio clip into transcript text.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) (string, error)
}

// Captioner describes an image in one sentence.
type Captioner interface {
	Caption(ctx context.Context, imagePath string) (string, error)
}

// ScriptGenerator produces narration text from a scene context window.
// A non-success engine response surfaces as a distinguishable error.
type ScriptGenerator interface {
	Generate(ctx context.Context, contextWindow string) (string, error)
}

// SpeechSynthesizer renders one utterance to waveform samples.
type SpeechSynthesizer interface {
	Synthesize(ctx context.Context, text string) (wav []byte, sampleRate int, err error)
}
