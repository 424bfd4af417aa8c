package engines

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// CaptionClient produces a one-sentence visual description of a frame.
type CaptionClient struct {
	c *Client
}

func NewCaptionClient(cfg ClientConfig, logger *zap.Logger) *CaptionClient {
	return &CaptionClient{c: NewClient(cfg, logger)}
}

func (c *CaptionClient) Caption(ctx context.Context, imagePath string) (string, error) {
	var out struct {
		Caption string `json:"caption"`
	}
	if err := c.c.postMultipart(ctx, "/caption", "image", imagePath, nil, &out); err != nil {
		return "", fmt.Errorf("caption %s: %w", imagePath, err)
	}
	return strings.TrimSpace(out.Caption), nil
}
