package engines

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// ASRClient transcribes an audio clip. Decoding is pinned deterministic
// (temperature 0) and voice-activity filtering strips silence.
type ASRClient struct {
	c        *Client
	language string
}

func NewASRClient(cfg ClientConfig, language string, logger *zap.Logger) *ASRClient {
	return &ASRClient{c: NewClient(cfg, logger), language: language}
}

func (a *ASRClient) Transcribe(ctx context.Context, audioPath string) (string, error) {
	var out struct {
		Text string `json:"text"`
	}
	fields := map[string]string{
		"language":    a.language,
		"temperature": "0",
		"vad_filter":  "true",
	}
	if err := a.c.postMultipart(ctx, "/transcribe", "audio", audioPath, fields, &out); err != nil {
		return "", fmt.Errorf("transcribe %s: %w", audioPath, err)
	}
	return strings.TrimSpace(out.Text), nil
}
