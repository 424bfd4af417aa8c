package engines

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"

	"github.com/setfreedom/moivetext/internal/domain/port"
	"go.uber.org/zap"
)

// OCRClient reads text fragments out of a subtitle crop band. Whatever
// shape the engine returns is normalized to port.OCRFragment on receipt;
// malformed fragments are logged and dropped, never indexed into.
type OCRClient struct {
	c      *Client
	logger *zap.Logger
}

func NewOCRClient(cfg ClientConfig, logger *zap.Logger) *OCRClient {
	return &OCRClient{c: NewClient(cfg, logger), logger: logger}
}

func (o *OCRClient) ReadRegion(ctx context.Context, region image.Image) ([]port.OCRFragment, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, region); err != nil {
		return nil, fmt.Errorf("encode ocr region: %w", err)
	}

	var out struct {
		Fragments []port.OCRFragment `json:"fragments"`
	}
	if err := o.c.postRawFile(ctx, "/ocr", "image", "region.png", buf.Bytes(), &out); err != nil {
		return nil, fmt.Errorf("ocr: %w", err)
	}

	fragments := make([]port.OCRFragment, 0, len(out.Fragments))
	for _, f := range out.Fragments {
		if err := f.Validate(); err != nil {
			o.logger.Warn("dropping malformed ocr fragment", zap.Error(err))
			continue
		}
		fragments = append(fragments, f)
	}
	return fragments, nil
}
